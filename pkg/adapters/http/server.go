package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/courier/internal/logging"
	"github.com/aretw0/courier/pkg/conversation"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/observability"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// Engine is the conversation surface served over HTTP.
type Engine interface {
	Start(ctx context.Context, candidate string) (conversation.Greeting, error)
	Message(ctx context.Context, sessionID, text string) (conversation.Reply, error)
	Track(ctx context.Context, sessionID, trackingNumber string) (conversation.TrackResult, error)
	Status(ctx context.Context, sessionID, trackingNumber string) (domain.PackageStatus, error)
	FileClaim(ctx context.Context, sessionID, email, trackingNumber string) (conversation.ClaimResult, error)
	Claim(ctx context.Context, claimID, sessionID string) (domain.Claim, error)
}

// Sessions issues session tokens and backs the key/value endpoints.
type Sessions interface {
	GetOrCreate(ctx context.Context, candidate string) (domain.Session, bool, error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
}

// DefaultAllowedOrigins are the browser origins accepted when none are configured.
var DefaultAllowedOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// Config carries the optional parts of the handler.
type Config struct {
	AllowedOrigins []string
	Metrics        *observability.Metrics
	Logger         *slog.Logger
	Version        string
}

// Server holds the HTTP handlers.
type Server struct {
	Engine   Engine
	Sessions Sessions

	validate *validator.Validate
	spec     *openapi3.T
	version  string
	logger   *slog.Logger
}

// NewHandler creates the HTTP handler for the assistant.
func NewHandler(engine Engine, sessions Sessions, cfg Config) (http.Handler, error) {
	if engine == nil || sessions == nil {
		return nil, errors.New("http: engine and sessions are required")
	}
	spec, err := LoadSpec()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Engine:   engine,
		Sessions: sessions,
		validate: newValidator(),
		spec:     spec,
		version:  cfg.Version,
		logger:   cfg.Logger,
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors(origins))
	if cfg.Metrics != nil {
		r.Use(instrument(cfg.Metrics))
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Get("/", s.Root)
	r.Get("/session", s.Session)
	r.Get("/health", s.Health)
	r.Get("/info", s.Info)
	r.Get("/openapi.yaml", s.OpenAPI)

	r.Route("/chat", func(r chi.Router) {
		r.Get("/start", s.ChatStart)
		r.Post("/message", s.ChatMessage)
		r.Post("/track", s.ChatTrack)
		r.Get("/status", s.ChatStatus)
		r.Post("/claim", s.ChatClaim)
		r.Get("/claim/{claim_id}", s.GetClaim)
	})

	r.Route("/cookies", func(r chi.Router) {
		r.Delete("/", s.ClearCookies)
		r.Post("/{key}", s.SetCookie)
		r.Get("/{key}", s.GetCookie)
		r.Delete("/{key}", s.DeleteCookie)
	})

	return r, nil
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, r *http.Request) {
	sess, _, err := s.Sessions.GetOrCreate(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message":    "Hello, World!",
		"session_id": sess.Token,
	})
}

// Session handles GET /session.
func (s *Server) Session(w http.ResponseWriter, r *http.Request) {
	sess, _, err := s.Sessions.GetOrCreate(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"session_id": sess.Token})
}

// ChatStart handles GET /chat/start.
func (s *Server) ChatStart(w http.ResponseWriter, r *http.Request) {
	g, err := s.Engine.Start(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, startResponse{
		SessionID:  g.Session.Token,
		Message:    g.Message,
		BotMessage: true,
	})
}

// ChatMessage handles POST /chat/message.
func (s *Server) ChatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	if !s.bind(w, r, &req) {
		return
	}
	reply, err := s.Engine.Message(r.Context(), *req.SessionID, *req.Message)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{
		Message:    reply.Message,
		BotMessage: true,
		Error:      string(reply.Error),
		Metadata:   reply.Metadata,
	})
}

// ChatTrack handles POST /chat/track.
func (s *Server) ChatTrack(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if !s.bind(w, r, &req) {
		return
	}
	res, err := s.Engine.Track(r.Context(), *req.SessionID, *req.TrackingNumber)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := trackResponse{
		Step:           string(res.Step),
		Message:        res.Message,
		TrackingNumber: res.TrackingNumber,
		Status:         string(res.Status),
		Error:          string(res.Error),
	}
	if res.Step == conversation.TrackStatusFound {
		resp.CanClaim = &res.CanClaim
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// ChatStatus handles GET /chat/status.
func (s *Server) ChatStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tracking := conversation.NormalizeTrackingNumber(q.Get("tracking"))
	st, err := s.Engine.Status(r.Context(), q.Get("session_id"), tracking)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"tracking": tracking,
		"status":   string(st),
	})
}

// ChatClaim handles POST /chat/claim.
func (s *Server) ChatClaim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if !s.bind(w, r, &req) {
		return
	}
	res, err := s.Engine.FileClaim(r.Context(), *req.SessionID, *req.Email, *req.TrackingNumber)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := claimResponse{
		Step:    string(res.Step),
		Message: res.Message,
		Error:   string(res.Error),
	}
	if res.Claim != nil {
		resp.ClaimID = res.Claim.ID
		resp.TrackingNumber = res.Claim.TrackingNumber
		resp.Email = res.Claim.Email
	} else {
		resp.Status = string(res.Status)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetClaim handles GET /chat/claim/{claim_id}.
func (s *Server) GetClaim(w http.ResponseWriter, r *http.Request) {
	claim, err := s.Engine.Claim(r.Context(), chi.URLParam(r, "claim_id"), r.URL.Query().Get("session_id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, claim)
}

// SetCookie handles POST /cookies/{key}.
func (s *Server) SetCookie(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	q := r.URL.Query()
	if !q.Has("value") {
		s.writeDetail(w, http.StatusBadRequest, "Missing query parameter: value")
		return
	}
	value := q.Get("value")

	var ttl time.Duration
	if raw := q.Get("max_age"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil {
			s.writeDetail(w, http.StatusBadRequest, "max_age must be an integer")
			return
		}
		ttl = time.Duration(secs) * time.Second
	}

	if err := s.Sessions.Put(r.Context(), key, value, ttl); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"key":    key,
		"value":  value,
	})
}

// GetCookie handles GET /cookies/{key}.
func (s *Server) GetCookie(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, ok, err := s.Sessions.Get(r.Context(), key)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !ok {
		s.writeDetail(w, http.StatusNotFound, "Cookie not found or expired")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

// DeleteCookie handles DELETE /cookies/{key}.
func (s *Server) DeleteCookie(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	deleted, err := s.Sessions.Delete(r.Context(), key)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !deleted {
		s.writeDetail(w, http.StatusNotFound, "Cookie not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Cookie '%s' deleted", key),
	})
}

// ClearCookies handles DELETE /cookies.
func (s *Server) ClearCookies(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Clear(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "All cookies cleared",
	})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Info handles GET /info.
func (s *Server) Info(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	version := strings.TrimSpace(s.version)
	if version == "" {
		version = "dev"
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "courier-http",
		"version":     version,
		"api_version": apiVersion,
	})
}

// OpenAPI handles GET /openapi.yaml.
func (s *Server) OpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(openapiSpec)
}
