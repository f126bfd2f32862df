package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/courier/pkg/adapters/memory"
	"github.com/aretw0/courier/pkg/conversation"
	"github.com/aretw0/courier/pkg/observability"
	"github.com/aretw0/courier/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler http.Handler
	claims  *memory.ClaimStore
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	sessions, err := session.NewManager(memory.NewKVStore())
	require.NoError(t, err)
	claims := memory.NewClaimStore()
	engine, err := conversation.NewEngine(sessions, memory.NewConversationStore(), memory.NewSeededDirectory(), claims)
	require.NoError(t, err)

	m := observability.NewMetrics()
	h, err := NewHandler(engine, sessions, Config{Metrics: m, Version: "1.2.3\n"})
	require.NoError(t, err)
	return &testServer{handler: h, claims: claims, metrics: m}
}

func (ts *testServer) do(t *testing.T, method, target string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func (ts *testServer) start(t *testing.T) string {
	t.Helper()
	w, body := ts.do(t, "GET", "/chat/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["bot_message"])
	return body["session_id"].(string)
}

func TestRootAndSession(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.do(t, "GET", "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello, World!", body["message"])
	sid := body["session_id"].(string)
	require.NotEmpty(t, sid)

	_, body = ts.do(t, "GET", "/session?session_id="+sid, nil)
	assert.Equal(t, sid, body["session_id"])

	_, body = ts.do(t, "GET", "/session?session_id=unknown", nil)
	assert.NotEqual(t, "unknown", body["session_id"])
}

func TestChatMessage_ClaimFlow(t *testing.T) {
	ts := newTestServer(t)
	sid := ts.start(t)

	w, body := ts.do(t, "POST", "/chat/message", map[string]string{"session_id": sid, "message": "CD555666777"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["bot_message"])
	assert.NotContains(t, body, "error")
	meta := body["metadata"].(map[string]any)
	assert.Equal(t, "lost", meta["status"])

	_, body = ts.do(t, "POST", "/chat/message", map[string]string{"session_id": sid, "message": "yes"})
	assert.Contains(t, body["message"], "email")

	_, body = ts.do(t, "POST", "/chat/message", map[string]string{"session_id": sid, "message": "nope"})
	assert.Equal(t, "invalid_email", body["error"])

	_, body = ts.do(t, "POST", "/chat/message", map[string]string{"session_id": sid, "message": "jane@example.com"})
	meta = body["metadata"].(map[string]any)
	claimID := meta["claim_id"].(string)
	require.NotEmpty(t, claimID)

	w, body = ts.do(t, "GET", "/chat/claim/"+claimID+"?session_id="+sid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, "jane@example.com", body["email"])
	assert.Equal(t, "CD555666777", body["tracking_number"])
	assert.Contains(t, body, "created_at")
}

func TestChatMessage_Unauthorized(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.do(t, "POST", "/chat/message", map[string]string{"session_id": "bogus", "message": "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired session. Please start a new chat session.", body["detail"])

	w, _ = ts.do(t, "POST", "/chat/message", map[string]string{"session_id": "", "message": "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChatMessage_BadRequests(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.do(t, "POST", "/chat/message", map[string]string{"session_id": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "message is required", body["detail"])

	req := httptest.NewRequest("POST", "/chat/message", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	sid := ts.start(t)
	w, body = ts.do(t, "POST", "/chat/message", map[string]string{"session_id": sid, "message": strings.Repeat("A", conversation.DefaultMaxInputSize+1)})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "invalid_format", body["error"])
	assert.Equal(t, true, body["bot_message"])
}

func TestChatTrack(t *testing.T) {
	ts := newTestServer(t)
	sid := ts.start(t)

	_, body := ts.do(t, "POST", "/chat/track", map[string]string{"session_id": sid, "tracking_number": "CD555666777"})
	assert.Equal(t, "status_found", body["step"])
	assert.Equal(t, true, body["can_claim"])
	assert.Equal(t, "lost", body["status"])

	_, body = ts.do(t, "POST", "/chat/track", map[string]string{"session_id": sid, "tracking_number": "XY987654321"})
	assert.Equal(t, false, body["can_claim"])

	_, body = ts.do(t, "POST", "/chat/track", map[string]string{"session_id": sid, "tracking_number": "bad"})
	assert.Equal(t, "invalid_format", body["step"])
	assert.Equal(t, "invalid_format", body["error"])
	assert.NotContains(t, body, "can_claim")

	w, _ := ts.do(t, "POST", "/chat/track", map[string]string{"session_id": "bogus", "tracking_number": "CD555666777"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChatStatus(t *testing.T) {
	ts := newTestServer(t)
	sid := ts.start(t)

	tests := []struct {
		name   string
		query  string
		code   int
		detail string
	}{
		{name: "found", query: "session_id=" + sid + "&tracking=AB123456789", code: http.StatusOK},
		{name: "padded", query: "session_id=" + sid + "&tracking=%20AB123456789%20", code: http.StatusOK},
		{name: "malformed", query: "session_id=" + sid + "&tracking=AB1", code: http.StatusBadRequest, detail: "Invalid tracking number format"},
		{name: "unknown", query: "session_id=" + sid + "&tracking=ZZ123456789", code: http.StatusNotFound, detail: "Tracking number not found"},
		{name: "no session", query: "tracking=AB123456789", code: http.StatusUnauthorized, detail: "Invalid or expired session"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := ts.do(t, "GET", "/chat/status?"+tt.query, nil)
			assert.Equal(t, tt.code, w.Code)
			if tt.detail != "" {
				assert.Equal(t, tt.detail, body["detail"])
				return
			}
			assert.Equal(t, "AB123456789", body["tracking"])
			assert.Equal(t, "in_transit", body["status"])
		})
	}
}

func TestChatClaim(t *testing.T) {
	ts := newTestServer(t)
	sid := ts.start(t)

	w, body := ts.do(t, "POST", "/chat/claim", map[string]string{"session_id": sid, "email": "jane@example.com", "tracking_number": "IJ777888999"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "claim_denied", body["step"])
	assert.Equal(t, "not_lost", body["error"])
	assert.Equal(t, "delivered", body["status"])

	_, body = ts.do(t, "POST", "/chat/claim", map[string]string{"session_id": sid, "email": "jane@example.com", "tracking_number": "MN333444555"})
	assert.Equal(t, "claim_created", body["step"])
	assert.NotEmpty(t, body["claim_id"])
	assert.Equal(t, "MN333444555", body["tracking_number"])
	assert.Equal(t, 1, ts.claims.Len())

	w, _ = ts.do(t, "POST", "/chat/claim", map[string]string{"session_id": sid, "email": "jane", "tracking_number": "MN333444555"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = ts.do(t, "POST", "/chat/claim", map[string]string{"session_id": sid, "email": "jane@example.com", "tracking_number": "ZZ123456789"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = ts.do(t, "POST", "/chat/claim", map[string]string{"session_id": "bogus", "email": "jane@example.com", "tracking_number": "MN333444555"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 1, ts.claims.Len())
}

func TestGetClaim_Failures(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.do(t, "GET", "/chat/claim/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Claim not found", body["detail"])

	w, _ = ts.do(t, "GET", "/chat/claim/missing?session_id=bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCookies(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.do(t, "POST", "/cookies/theme?value=dark", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", body["status"])

	_, body = ts.do(t, "GET", "/cookies/theme", nil)
	assert.Equal(t, "dark", body["value"])

	w, _ = ts.do(t, "POST", "/cookies/theme?value=x&max_age=soon", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = ts.do(t, "POST", "/cookies/theme", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, body = ts.do(t, "DELETE", "/cookies/theme", nil)
	assert.Equal(t, "Cookie 'theme' deleted", body["message"])

	w, body = ts.do(t, "DELETE", "/cookies/theme", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Cookie not found", body["detail"])

	w, body = ts.do(t, "GET", "/cookies/theme", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Cookie not found or expired", body["detail"])

	ts.do(t, "POST", "/cookies/a?value=1", nil)
	_, body = ts.do(t, "DELETE", "/cookies", nil)
	assert.Equal(t, "All cookies cleared", body["message"])
	w, _ = ts.do(t, "GET", "/cookies/a", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/chat/message", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestInfoAndSpec(t *testing.T) {
	ts := newTestServer(t)

	_, body := ts.do(t, "GET", "/info", nil)
	assert.Equal(t, "1.2.3", body["version"])
	assert.Equal(t, "1.0.0", body["api_version"])

	w, _ := ts.do(t, "GET", "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Courier API")

	_, body = ts.do(t, "GET", "/health", nil)
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.start(t)

	w, _ := ts.do(t, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `courier_http_request_duration_seconds_count{code="200",method="GET",route="/chat/start"} 1`)
}

func TestSpecCoversRoutes(t *testing.T) {
	doc, err := LoadSpec()
	require.NoError(t, err)
	for _, path := range []string{"/", "/session", "/chat/start", "/chat/message", "/chat/track", "/chat/status", "/chat/claim", "/chat/claim/{claim_id}", "/cookies", "/cookies/{key}", "/health", "/info"} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}
}
