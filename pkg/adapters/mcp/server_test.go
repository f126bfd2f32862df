package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/courier/pkg/adapters/memory"
	"github.com/aretw0/courier/pkg/conversation"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	sessions, err := session.NewManager(memory.NewKVStore())
	require.NoError(t, err)
	dir := memory.NewSeededDirectory()
	engine, err := conversation.NewEngine(sessions, memory.NewConversationStore(), dir, memory.NewClaimStore())
	require.NoError(t, err)
	return NewServer(engine, "test", WithPackages(dir))
}

func TestTools_ClaimDialogue(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	start, err := s.handleStart(ctx, req, sessionArgs{})
	require.NoError(t, err)
	assert.True(t, start.Created)

	for _, msg := range []string{"GH444555666", "yes"} {
		_, err := s.handleMessage(ctx, req, messageArgs{SessionID: start.SessionID, Message: msg})
		require.NoError(t, err)
	}
	reply, err := s.handleMessage(ctx, req, messageArgs{SessionID: start.SessionID, Message: "jane@example.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.StepAwaitingTracking, reply.Step)
	require.NotNil(t, reply.Metadata)

	claim, err := s.handleGetClaim(ctx, req, getClaimArgs{ClaimID: reply.Metadata.ClaimID})
	require.NoError(t, err)
	assert.Equal(t, "GH444555666", claim.TrackingNumber)
}

func TestTools_DirectQueries(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	start, err := s.handleStart(ctx, req, sessionArgs{})
	require.NoError(t, err)
	sid := start.SessionID

	tr, err := s.handleTrack(ctx, req, trackArgs{SessionID: sid, TrackingNumber: "EF111222333"})
	require.NoError(t, err)
	assert.Equal(t, "status_found", tr.Step)
	assert.False(t, tr.CanClaim)

	st, err := s.handleStatus(ctx, req, trackArgs{SessionID: sid, TrackingNumber: " IJ777888999\n"})
	require.NoError(t, err)
	assert.Equal(t, "delivered", st.Status)
	assert.Equal(t, "IJ777888999", st.TrackingNumber)

	_, err = s.handleStatus(ctx, req, trackArgs{SessionID: sid, TrackingNumber: "ZZ123456789"})
	assert.Equal(t, conversation.KindNotFound, conversation.KindOf(err))

	cr, err := s.handleFileClaim(ctx, req, claimArgs{SessionID: sid, Email: "a@b.co", TrackingNumber: "KL000111222"})
	require.NoError(t, err)
	assert.Equal(t, "claim_denied", cr.Step)
	assert.Equal(t, "not_lost", cr.Error)
	assert.Nil(t, cr.Claim)
}

func TestTools_Unauthorized(t *testing.T) {
	s := newTestServer(t)
	_, err := s.handleMessage(context.Background(), mcp.CallToolRequest{}, messageArgs{SessionID: "bogus", Message: "hi"})
	assert.True(t, conversation.IsUnauthorized(err))
}

func TestServer_ListsTools(t *testing.T) {
	s := newTestServer(t)
	msg := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	resp := s.MCPServer().HandleMessage(context.Background(), msg)

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"start_session", "send_message", "track_package", "package_status", "file_claim", "get_claim"} {
		assert.Contains(t, string(out), `"name":"`+name+`"`)
	}
}
