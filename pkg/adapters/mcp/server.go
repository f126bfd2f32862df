package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/courier/internal/logging"
	"github.com/aretw0/courier/pkg/conversation"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Engine is the conversation surface exposed as MCP tools.
type Engine interface {
	Start(ctx context.Context, candidate string) (conversation.Greeting, error)
	Message(ctx context.Context, sessionID, text string) (conversation.Reply, error)
	Track(ctx context.Context, sessionID, trackingNumber string) (conversation.TrackResult, error)
	Status(ctx context.Context, sessionID, trackingNumber string) (domain.PackageStatus, error)
	FileClaim(ctx context.Context, sessionID, email, trackingNumber string) (conversation.ClaimResult, error)
	Claim(ctx context.Context, claimID, sessionID string) (domain.Claim, error)
}

// PackageLister lists the tracking table for the packages resource.
type PackageLister interface {
	List() []domain.Package
}

// Server wraps the conversation Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	packages  PackageLister
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithPackages exposes the tracking table as the courier://packages resource.
func WithPackages(p PackageLister) Option {
	return func(s *Server) {
		s.packages = p
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("courier-mcp", version),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, mainly for tests.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP protocol over SSE on addr until ctx is canceled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type messageArgs struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type trackArgs struct {
	SessionID      string `json:"session_id"`
	TrackingNumber string `json:"tracking_number"`
}

type claimArgs struct {
	SessionID      string `json:"session_id"`
	Email          string `json:"email"`
	TrackingNumber string `json:"tracking_number"`
}

type getClaimArgs struct {
	ClaimID   string `json:"claim_id"`
	SessionID string `json:"session_id"`
}

// StartResponse is returned by start_session.
type StartResponse struct {
	SessionID string `json:"session_id" jsonschema_description:"Token to pass to the other tools"`
	Created   bool   `json:"created" jsonschema_description:"False when an existing session was resumed"`
	Message   string `json:"message" jsonschema_description:"Assistant greeting"`
}

// MessageResponse is returned by send_message.
type MessageResponse struct {
	Message  string                 `json:"message" jsonschema_description:"Assistant reply"`
	Step     domain.Step            `json:"step" jsonschema_description:"Dialogue step after the message"`
	Error    string                 `json:"error,omitempty" jsonschema_description:"Recoverable error tag"`
	Metadata *conversation.Metadata `json:"metadata,omitempty"`
}

// TrackResponse is returned by track_package.
type TrackResponse struct {
	Step           string `json:"step"`
	Message        string `json:"message"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	Status         string `json:"status,omitempty"`
	CanClaim       bool   `json:"can_claim"`
	Error          string `json:"error,omitempty"`
}

// StatusResponse is returned by package_status.
type StatusResponse struct {
	TrackingNumber string `json:"tracking_number"`
	Status         string `json:"status"`
}

// ClaimResponse is returned by file_claim.
type ClaimResponse struct {
	Step    string        `json:"step"`
	Message string        `json:"message"`
	Claim   *domain.Claim `json:"claim,omitempty"`
	Status  string        `json:"status,omitempty"`
	Error   string        `json:"error,omitempty"`
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a chat session or resume an existing one. Resets the dialogue."),
		mcp.WithString("session_id", mcp.Description("Existing session token (optional)")),
		mcp.WithOutputSchema[StartResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("send_message",
		mcp.WithDescription("Send a free-text message to the package assistant."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session token from start_session")),
		mcp.WithString("message", mcp.Required(), mcp.Description("User message")),
		mcp.WithOutputSchema[MessageResponse](),
	), mcp.NewStructuredToolHandler(s.handleMessage))

	s.mcpServer.AddTool(mcp.NewTool("track_package",
		mcp.WithDescription("Look up a package without advancing the dialogue."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session token")),
		mcp.WithString("tracking_number", mcp.Required(), mcp.Description("Two uppercase letters and nine digits, e.g. AB123456789")),
		mcp.WithOutputSchema[TrackResponse](),
	), mcp.NewStructuredToolHandler(s.handleTrack))

	s.mcpServer.AddTool(mcp.NewTool("package_status",
		mcp.WithDescription("Return the raw status of a package. Fails for malformed or unknown numbers."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session token")),
		mcp.WithString("tracking_number", mcp.Required(), mcp.Description("Tracking number")),
		mcp.WithOutputSchema[StatusResponse](),
	), mcp.NewStructuredToolHandler(s.handleStatus))

	s.mcpServer.AddTool(mcp.NewTool("file_claim",
		mcp.WithDescription("File a claim for a lost package."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session token")),
		mcp.WithString("email", mcp.Required(), mcp.Description("Contact email of the claimant")),
		mcp.WithString("tracking_number", mcp.Required(), mcp.Description("Tracking number of the lost package")),
		mcp.WithOutputSchema[ClaimResponse](),
	), mcp.NewStructuredToolHandler(s.handleFileClaim))

	s.mcpServer.AddTool(mcp.NewTool("get_claim",
		mcp.WithDescription("Fetch a filed claim."),
		mcp.WithString("claim_id", mcp.Required(), mcp.Description("Claim identifier")),
		mcp.WithString("session_id", mcp.Description("Session token (optional)")),
		mcp.WithOutputSchema[domain.Claim](),
	), mcp.NewStructuredToolHandler(s.handleGetClaim))
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (StartResponse, error) {
	g, err := s.engine.Start(ctx, args.SessionID)
	if err != nil {
		return StartResponse{}, err
	}
	return StartResponse{SessionID: g.Session.Token, Created: g.Created, Message: g.Message}, nil
}

func (s *Server) handleMessage(ctx context.Context, request mcp.CallToolRequest, args messageArgs) (MessageResponse, error) {
	reply, err := s.engine.Message(ctx, args.SessionID, args.Message)
	if err != nil {
		s.logger.Warn("MCP send_message failed", "err", err)
		return MessageResponse{}, err
	}
	return MessageResponse{
		Message:  reply.Message,
		Step:     reply.Step,
		Error:    string(reply.Error),
		Metadata: reply.Metadata,
	}, nil
}

func (s *Server) handleTrack(ctx context.Context, request mcp.CallToolRequest, args trackArgs) (TrackResponse, error) {
	res, err := s.engine.Track(ctx, args.SessionID, args.TrackingNumber)
	if err != nil {
		return TrackResponse{}, err
	}
	return TrackResponse{
		Step:           string(res.Step),
		Message:        res.Message,
		TrackingNumber: res.TrackingNumber,
		Status:         string(res.Status),
		CanClaim:       res.CanClaim,
		Error:          string(res.Error),
	}, nil
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest, args trackArgs) (StatusResponse, error) {
	tn := conversation.NormalizeTrackingNumber(args.TrackingNumber)
	st, err := s.engine.Status(ctx, args.SessionID, tn)
	if err != nil {
		return StatusResponse{}, err
	}
	return StatusResponse{TrackingNumber: tn, Status: string(st)}, nil
}

func (s *Server) handleFileClaim(ctx context.Context, request mcp.CallToolRequest, args claimArgs) (ClaimResponse, error) {
	res, err := s.engine.FileClaim(ctx, args.SessionID, args.Email, args.TrackingNumber)
	if err != nil {
		return ClaimResponse{}, err
	}
	return ClaimResponse{
		Step:    string(res.Step),
		Message: res.Message,
		Claim:   res.Claim,
		Status:  string(res.Status),
		Error:   string(res.Error),
	}, nil
}

func (s *Server) handleGetClaim(ctx context.Context, request mcp.CallToolRequest, args getClaimArgs) (domain.Claim, error) {
	return s.engine.Claim(ctx, args.ClaimID, args.SessionID)
}

func (s *Server) registerResources() {
	if s.packages == nil {
		return
	}
	s.mcpServer.AddResource(mcp.NewResource("courier://packages", "Tracking Table",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.packages.List())
		if err != nil {
			return nil, fmt.Errorf("failed to encode packages: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "courier://packages",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
