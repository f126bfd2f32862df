package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/courier/internal/logging"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/ports"
	"github.com/aretw0/courier/pkg/session"
	"github.com/google/uuid"
)

// claimIDAttempts bounds retries when a generated claim ID collides.
const claimIDAttempts = 3

// Engine runs the claim dialogue for every session.
type Engine struct {
	sessions *session.Manager
	states   ports.ConversationStore
	packages ports.PackageDirectory
	claims   ports.ClaimStore
	notifier ports.ClaimNotifier

	locks      *session.Locks
	newClaimID func() string
	now        func() time.Time
	maxInput   int
	hooks      Hooks
	logger     *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger configures a logger for the Engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers activity observers.
func WithHooks(h Hooks) Option {
	return func(e *Engine) {
		e.hooks = h
	}
}

// WithNotifier publishes every created claim. Notification failures are logged, never returned.
func WithNotifier(n ports.ClaimNotifier) Option {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithClaimIDGenerator replaces the UUID claim ID source.
func WithClaimIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		e.newClaimID = gen
	}
}

// WithClock overrides the time source used for claim timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithMaxInputSize bounds the size of a single message.
func WithMaxInputSize(n int) Option {
	return func(e *Engine) {
		e.maxInput = n
	}
}

// NewEngine wires the engine to its collaborators. All of them are required.
func NewEngine(sessions *session.Manager, states ports.ConversationStore, packages ports.PackageDirectory, claims ports.ClaimStore, opts ...Option) (*Engine, error) {
	switch {
	case sessions == nil:
		return nil, errors.New("conversation: session manager must not be nil")
	case states == nil:
		return nil, errors.New("conversation: conversation store must not be nil")
	case packages == nil:
		return nil, errors.New("conversation: package directory must not be nil")
	case claims == nil:
		return nil, errors.New("conversation: claim store must not be nil")
	}

	e := &Engine{
		sessions:   sessions,
		states:     states,
		packages:   packages,
		claims:     claims,
		locks:      session.NewLocks(),
		newClaimID: uuid.NewString,
		now:        time.Now,
		maxInput:   DefaultMaxInputSize,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Sessions returns the session manager the engine authorizes against.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Start resumes or creates a session and resets its dialogue to the first step.
func (e *Engine) Start(ctx context.Context, candidate string) (Greeting, error) {
	s, created, err := e.sessions.GetOrCreate(ctx, candidate)
	if err != nil {
		return Greeting{}, newError(KindInternal, "session unavailable", err)
	}

	err = e.locks.WithLock(ctx, s.Token, func(ctx context.Context) error {
		return e.save(ctx, s, domain.NewConversation())
	})
	if err != nil {
		return Greeting{}, newError(KindInternal, "failed to reset conversation", err)
	}

	return Greeting{Session: s, Created: created, Message: msgGreeting}, nil
}

// Message handles one free-text message of a live session.
func (e *Engine) Message(ctx context.Context, sessionID, text string) (Reply, error) {
	s, err := e.authorize(ctx, sessionID, "message", reasonSessionChat)
	if err != nil {
		return Reply{}, err
	}

	input, inputErr := SanitizeInput(text, e.maxInput)
	if inputErr != nil {
		e.logger.Warn("Message rejected", "session_id", s.Token, "err", inputErr)
	}

	var reply Reply
	err = e.locks.WithLock(ctx, s.Token, func(ctx context.Context) error {
		conv, err := e.load(ctx, s)
		if err != nil {
			return err
		}

		var next *domain.Conversation
		if inputErr != nil {
			reply, next, err = e.rejectInput(ctx, conv)
		} else {
			reply, next, err = e.dispatch(ctx, conv, input)
		}
		if err != nil {
			return err
		}

		reply.Step = conv.Step
		if next != nil {
			if err := e.save(ctx, s, next); err != nil {
				return err
			}
			reply.Step = next.Step
		}

		e.hooks.transition(ctx, Transition{SessionID: s.Token, From: conv.Step, To: reply.Step, Error: reply.Error})
		return nil
	})
	if err != nil {
		var engErr *Error
		if errors.As(err, &engErr) {
			return Reply{}, engErr
		}
		return Reply{}, newError(KindInternal, "failed to handle message", err)
	}
	return reply, nil
}

// Conversation returns the current dialogue state of a live session.
func (e *Engine) Conversation(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	s, err := e.authorize(ctx, sessionID, "conversation", reasonSession)
	if err != nil {
		return nil, err
	}
	conv, err := e.states.Load(ctx, s.Token)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewConversation(), nil
	}
	if err != nil {
		return nil, newError(KindInternal, "failed to load conversation", err)
	}
	return conv, nil
}

// authorize resolves a live session or returns an unauthorized error.
func (e *Engine) authorize(ctx context.Context, sessionID, op, reason string) (domain.Session, error) {
	s, err := e.sessions.Lookup(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		e.hooks.unauthorized(ctx, op)
		return domain.Session{}, newError(KindUnauthorized, reason, nil)
	}
	if err != nil {
		return domain.Session{}, newError(KindInternal, "session unavailable", err)
	}
	return s, nil
}

// load returns the session's dialogue, creating the default one on first use.
func (e *Engine) load(ctx context.Context, s domain.Session) (*domain.Conversation, error) {
	conv, err := e.states.Load(ctx, s.Token)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	conv = domain.NewConversation()
	if err := e.save(ctx, s, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// save stores next bound to the session's expiry.
func (e *Engine) save(ctx context.Context, s domain.Session, next *domain.Conversation) error {
	next.ExpiresAt = s.ExpiresAt
	if err := e.states.Save(ctx, s.Token, next); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

// issueClaim creates a pending claim under a fresh identifier.
func (e *Engine) issueClaim(ctx context.Context, email, trackingNumber string) (domain.Claim, error) {
	var lastErr error
	for attempt := 0; attempt < claimIDAttempts; attempt++ {
		claim := domain.NewClaim(e.newClaimID(), email, trackingNumber, e.now().UTC())
		err := e.claims.Create(ctx, claim)
		if err == nil {
			e.logger.Info("Claim created", "claim_id", claim.ID, "tracking_number", trackingNumber)
			e.hooks.claimCreated(ctx, claim)
			e.notify(ctx, claim)
			return claim, nil
		}
		if !errors.Is(err, domain.ErrClaimExists) {
			return domain.Claim{}, fmt.Errorf("failed to store claim: %w", err)
		}
		lastErr = err
		e.logger.Warn("Claim ID collision, retrying", "claim_id", claim.ID)
	}
	return domain.Claim{}, fmt.Errorf("failed to allocate claim id: %w", lastErr)
}

func (e *Engine) notify(ctx context.Context, claim domain.Claim) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.ClaimFiled(ctx, claim); err != nil {
		e.logger.Warn("Claim notification failed", "claim_id", claim.ID, "err", err)
	}
}

// Sweep drops expired sessions and the dialogues bound to them, for stores that support it.
func (e *Engine) Sweep(ctx context.Context) (int, error) {
	n, err := e.sessions.Sweep(ctx)
	if err != nil {
		return n, err
	}
	if sw, ok := e.states.(ports.Sweeper); ok {
		m, err := sw.Sweep(ctx)
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
