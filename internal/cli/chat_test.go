package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/courier/pkg/adapters/memory"
	"github.com/aretw0/courier/pkg/conversation"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) (*conversation.Engine, *memory.ClaimStore) {
	t.Helper()
	sessions, err := session.NewManager(memory.NewKVStore())
	require.NoError(t, err)
	claims := memory.NewClaimStore()
	engine, err := conversation.NewEngine(sessions, memory.NewConversationStore(), memory.NewSeededDirectory(), claims)
	require.NoError(t, err)
	return engine, claims
}

func TestRunChat_ClaimFlow(t *testing.T) {
	engine, claims := newEngine(t)
	in := strings.NewReader("CD555666777\nyes\njane@example.com\n/quit\n")
	var out bytes.Buffer

	err := RunChat(context.Background(), engine, in, &out, ChatOptions{})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Hello! I'm your package tracking assistant.")
	assert.Contains(t, text, "appears to be lost")
	assert.Contains(t, text, "please provide your email address")
	assert.Contains(t, text, "Your claim has been successfully filed!")
	assert.Equal(t, 1, claims.Len())
}

func TestRunChat_EOF(t *testing.T) {
	engine, _ := newEngine(t)
	var out bytes.Buffer

	err := RunChat(context.Background(), engine, strings.NewReader("AB123456789\n"), &out, ChatOptions{})
	assert.NoError(t, HandleExecutionError(err))
	assert.Contains(t, out.String(), "in transit")
}

func TestRunChat_JSON(t *testing.T) {
	engine, _ := newEngine(t)
	var out bytes.Buffer

	err := RunChat(context.Background(), engine, strings.NewReader("nope\nXY987654321\n"), &out, ChatOptions{JSON: true})
	require.NoError(t, HandleExecutionError(err))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)

	var first, second, third chatLine
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &third))

	assert.NotEmpty(t, first.SessionID)
	assert.Equal(t, first.SessionID, third.SessionID)
	assert.Equal(t, conversation.TagInvalidFormat, second.Error)
	assert.Equal(t, domain.StepAwaitingTracking, third.Step)
	require.NotNil(t, third.Metadata)
	assert.Equal(t, domain.StatusDelivered, third.Metadata.Status)
}

func TestRunChat_NewSession(t *testing.T) {
	engine, _ := newEngine(t)
	var out bytes.Buffer

	err := RunChat(context.Background(), engine, strings.NewReader("/session\n/new\n/session\n/quit\n"), &out, ChatOptions{})
	require.NoError(t, err)

	var ids []string
	for _, line := range strings.Split(out.String(), "\n") {
		if i := strings.Index(line, "Session '"); i >= 0 {
			rest := line[i+len("Session '"):]
			ids = append(ids, rest[:strings.Index(rest, "'")])
		}
	}
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
}

func TestRunChat_ResumesSession(t *testing.T) {
	engine, _ := newEngine(t)
	g, err := engine.Start(context.Background(), "")
	require.NoError(t, err)

	var out bytes.Buffer
	err = RunChat(context.Background(), engine, strings.NewReader("/quit\n"), &out, ChatOptions{SessionID: g.Session.Token})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Resumed session '"+g.Session.Token+"'")
}

func TestRunChat_Cancelled(t *testing.T) {
	engine, _ := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := RunChat(ctx, engine, strings.NewReader("AB123456789\n"), &out, ChatOptions{})
	require.Error(t, err)
	assert.NoError(t, HandleExecutionError(err))
	assert.NotContains(t, out.String(), "in transit")
}
