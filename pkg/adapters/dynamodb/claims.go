package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/courier/pkg/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// API is the minimal DynamoDB interface required by ClaimStore.
// Defined here for testability.
type API interface {
	GetItem(ctx context.Context, in *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error)
	PutItem(ctx context.Context, in *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error)
}

// ClaimStore implements ports.ClaimStore on a DynamoDB table keyed by claim_id.
type ClaimStore struct {
	api       API
	tableName string
}

// NewClaimStore creates a claim store for tableName.
func NewClaimStore(api API, tableName string) (*ClaimStore, error) {
	if api == nil {
		return nil, errors.New("dynamodb: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("dynamodb: table name must not be empty")
	}
	return &ClaimStore{api: api, tableName: tableName}, nil
}

// Create writes the claim with a condition that the ID is not already present.
func (s *ClaimStore) Create(ctx context.Context, claim domain.Claim) error {
	item, err := attributevalue.MarshalMap(claim)
	if err != nil {
		return fmt.Errorf("dynamodb: marshal claim: %w", err)
	}

	_, err = s.api.PutItem(ctx, &dyn.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(claim_id)"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return domain.ErrClaimExists
		}
		return fmt.Errorf("dynamodb: put claim: %w", err)
	}
	return nil
}

// Get reads a claim with strong consistency.
func (s *ClaimStore) Get(ctx context.Context, claimID string) (domain.Claim, error) {
	out, err := s.api.GetItem(ctx, &dyn.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"claim_id": &types.AttributeValueMemberS{Value: claimID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.Claim{}, fmt.Errorf("dynamodb: get claim: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.Claim{}, domain.ErrNotFound
	}

	var claim domain.Claim
	if err := attributevalue.UnmarshalMap(out.Item, &claim); err != nil {
		return domain.Claim{}, fmt.Errorf("dynamodb: unmarshal claim: %w", err)
	}
	return claim, nil
}
