package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/courier/pkg/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// EventClaimFiled is the event_type attribute of claim notifications.
const EventClaimFiled = "claim_filed"

// API is the minimal SQS interface required by Notifier.
type API interface {
	SendMessage(ctx context.Context, in *awssqs.SendMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error)
}

// Notifier implements ports.ClaimNotifier by publishing filed claims to an SQS queue.
type Notifier struct {
	api      API
	queueURL string
}

// NewNotifier returns a Notifier bound to queueURL.
func NewNotifier(api API, queueURL string) (*Notifier, error) {
	if api == nil {
		return nil, errors.New("sqs: api must not be nil")
	}
	if strings.TrimSpace(queueURL) == "" {
		return nil, errors.New("sqs: queue url must not be empty")
	}
	return &Notifier{api: api, queueURL: queueURL}, nil
}

// ClaimFiled sends the claim as a JSON message body.
func (n *Notifier) ClaimFiled(ctx context.Context, claim domain.Claim) error {
	body, err := json.Marshal(claim)
	if err != nil {
		return fmt.Errorf("sqs: marshal claim: %w", err)
	}

	_, err = n.api.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:    aws.String(n.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event_type":      stringAttr(EventClaimFiled),
			"tracking_number": stringAttr(claim.TrackingNumber),
		},
	})
	if err != nil {
		return fmt.Errorf("sqs: send message: %w", err)
	}
	return nil
}

func stringAttr(v string) sqstypes.MessageAttributeValue {
	return sqstypes.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(v),
	}
}
