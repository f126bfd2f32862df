package observability

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aretw0/courier/pkg/conversation"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "courier"

// Metrics holds the Courier collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Transitions  *prometheus.CounterVec
	Claims       *prometheus.CounterVec
	Sessions     *prometheus.CounterVec
	Unauthorized *prometheus.CounterVec
	Requests     *prometheus.HistogramVec
}

// NewMetrics registers the Courier collectors together with the Go and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversation_transitions_total",
				Help:      "Messages handled, by step change and reply tag",
			},
			[]string{"from", "to", "error"},
		),
		Claims: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "claims_total",
				Help:      "Claim attempts by outcome",
			},
			[]string{"outcome"},
		),
		Sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_total",
				Help:      "Sessions created or resumed",
			},
			[]string{"event"},
		),
		Unauthorized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unauthorized_total",
				Help:      "Operations refused for lack of a live session",
			},
			[]string{"op"},
		),
		Requests: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method", "code"},
		),
	}
	m.registry.MustRegister(
		m.Transitions,
		m.Claims,
		m.Sessions,
		m.Unauthorized,
		m.Requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// EngineHooks records engine activity and logs claim outcomes. A nil logger disables logging.
func (m *Metrics) EngineHooks(logger *slog.Logger) conversation.Hooks {
	return conversation.Hooks{
		OnTransition: func(ctx context.Context, t conversation.Transition) {
			m.Transitions.WithLabelValues(string(t.From), string(t.To), string(t.Error)).Inc()
			if logger != nil {
				logger.Debug("transition", "session_id", t.SessionID, "from", t.From, "to", t.To, "tag", t.Error)
			}
		},
		OnClaimCreated: func(ctx context.Context, c domain.Claim) {
			m.Claims.WithLabelValues("created").Inc()
			if logger != nil {
				logger.Info("claim_created", "claim_id", c.ID, "tracking_number", c.TrackingNumber)
			}
		},
		OnClaimDenied: func(ctx context.Context, tn string, tag conversation.ErrorTag) {
			m.Claims.WithLabelValues(string(tag)).Inc()
			if logger != nil {
				logger.Info("claim_denied", "tracking_number", tn, "tag", tag)
			}
		},
		OnUnauthorized: func(ctx context.Context, op string) {
			m.Unauthorized.WithLabelValues(op).Inc()
		},
	}
}

// SessionHooks counts created and resumed sessions.
func (m *Metrics) SessionHooks() session.Hooks {
	return session.Hooks{
		OnCreate: func(ctx context.Context, s domain.Session) {
			m.Sessions.WithLabelValues("created").Inc()
		},
		OnResume: func(ctx context.Context, s domain.Session) {
			m.Sessions.WithLabelValues("resumed").Inc()
		},
	}
}
