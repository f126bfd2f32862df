package courier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/courier/internal/config"
	"github.com/aretw0/courier/internal/logging"
	dynamoadapter "github.com/aretw0/courier/pkg/adapters/dynamodb"
	httpadapter "github.com/aretw0/courier/pkg/adapters/http"
	mcpadapter "github.com/aretw0/courier/pkg/adapters/mcp"
	"github.com/aretw0/courier/pkg/adapters/memory"
	redisadapter "github.com/aretw0/courier/pkg/adapters/redis"
	sqsadapter "github.com/aretw0/courier/pkg/adapters/sqs"
	"github.com/aretw0/courier/pkg/conversation"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/observability"
	"github.com/aretw0/courier/pkg/persistence/middleware"
	"github.com/aretw0/courier/pkg/ports"
	"github.com/aretw0/courier/pkg/session"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	goredis "github.com/redis/go-redis/v9"
)

// Config is the runtime configuration of an Assistant.
type Config = config.Config

// DefaultConfig returns the built-in configuration: in-memory stores and the seed tracking table.
func DefaultConfig() Config {
	return config.Default()
}

// LoadConfig reads an optional YAML file and applies COURIER_* overrides from environ.
func LoadConfig(path string, environ []string) (Config, error) {
	return config.Load(path, environ)
}

// Assistant is the high-level entry point: a conversation engine wired to the
// configured stores, plus the transports built on it.
type Assistant struct {
	Engine    *conversation.Engine
	Sessions  *session.Manager
	States    ports.ConversationStore
	Directory ports.PackageDirectory
	Claims    ports.ClaimStore
	Metrics   *observability.Metrics
	Config    Config

	logger  *slog.Logger
	redis   *goredis.Client
	aws     *aws.Config
	closers []func() error
}

// Option defines a functional option for configuring the Assistant.
type Option func(*Assistant)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		a.logger = logger
	}
}

// WithRedisClient injects the Redis connection instead of dialing redis.addr.
// The caller keeps ownership of the client.
func WithRedisClient(c *goredis.Client) Option {
	return func(a *Assistant) {
		a.redis = c
	}
}

// WithAWSConfig injects the AWS configuration instead of loading the default chain.
func WithAWSConfig(cfg aws.Config) Option {
	return func(a *Assistant) {
		a.aws = &cfg
	}
}

// New builds an Assistant from cfg.
func New(ctx context.Context, cfg Config, opts ...Option) (*Assistant, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Assistant{Config: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		a.logger = logging.New(level, cfg.Log.Format)
	}
	if cfg.Metrics.Enabled {
		a.Metrics = observability.NewMetrics()
	}

	if err := a.build(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *Assistant) build(ctx context.Context) error {
	cfg := a.Config

	var local *memory.Directory
	if cfg.Packages.File != "" {
		d, err := memory.LoadDirectory(cfg.Packages.File)
		if err != nil {
			return err
		}
		local = d
	} else {
		local = memory.NewSeededDirectory()
	}

	var (
		kv     ports.KVStore
		states ports.ConversationStore
	)
	switch cfg.Store.Backend {
	case config.BackendRedis:
		client, err := a.redisClient(ctx)
		if err != nil {
			return err
		}
		prefix := redisadapter.WithPrefix(cfg.Redis.Prefix)
		kv = redisadapter.NewKVStore(client, prefix)
		states = redisadapter.NewConversationStore(client, prefix)

		dir := redisadapter.NewDirectory(client, prefix)
		table := make(map[string]domain.PackageStatus)
		for _, p := range local.List() {
			table[p.TrackingNumber] = p.Status
		}
		if err := dir.Seed(ctx, table); err != nil {
			return fmt.Errorf("failed to seed package directory: %w", err)
		}
		a.Directory = dir
	default:
		kv = memory.NewKVStore()
		states = memory.NewConversationStore()
		a.Directory = local
	}

	claims, err := a.claimStore(ctx)
	if err != nil {
		return err
	}
	mws := []middleware.Middleware{middleware.NewAuditMiddleware(a.logger)}
	if cfg.Claims.EncryptionKey != "" {
		enc, err := encryption(cfg.Claims)
		if err != nil {
			return err
		}
		mws = append(mws, enc)
	}
	a.Claims = middleware.Chain(claims, mws...)

	sessionOpts := []session.Option{session.WithTTL(cfg.Session.TTL), session.WithLogger(a.logger)}
	engineOpts := []conversation.Option{
		conversation.WithLogger(a.logger),
		conversation.WithMaxInputSize(cfg.MaxInputSize),
	}
	if a.Metrics != nil {
		sessionOpts = append(sessionOpts, session.WithHooks(a.Metrics.SessionHooks()))
		engineOpts = append(engineOpts, conversation.WithHooks(a.Metrics.EngineHooks(a.logger)))
	}
	if cfg.SQS.QueueURL != "" {
		awsCfg, err := a.awsConfig(ctx)
		if err != nil {
			return err
		}
		n, err := sqsadapter.NewNotifier(sqs.NewFromConfig(awsCfg), cfg.SQS.QueueURL)
		if err != nil {
			return err
		}
		engineOpts = append(engineOpts, conversation.WithNotifier(n))
	}

	a.Sessions, err = session.NewManager(kv, sessionOpts...)
	if err != nil {
		return err
	}
	a.States = states
	a.Engine, err = conversation.NewEngine(a.Sessions, states, a.Directory, a.Claims, engineOpts...)
	return err
}

func (a *Assistant) claimStore(ctx context.Context) (ports.ClaimStore, error) {
	cfg := a.Config
	switch cfg.Claims.Backend {
	case config.BackendRedis:
		client, err := a.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return redisadapter.NewClaimStore(client, redisadapter.WithPrefix(cfg.Redis.Prefix)), nil
	case config.BackendDynamoDB:
		awsCfg, err := a.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.DynamoDB.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.DynamoDB.Endpoint)
			}
		})
		return dynamoadapter.NewClaimStore(client, cfg.DynamoDB.Table)
	}
	return memory.NewClaimStore(), nil
}

func (a *Assistant) redisClient(ctx context.Context) (*goredis.Client, error) {
	if a.redis != nil {
		return a.redis, nil
	}
	cfg := a.Config.Redis
	client := redisadapter.NewClient(cfg.Addr, cfg.Password, cfg.DB)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	a.redis = client
	a.closers = append(a.closers, client.Close)
	return client, nil
}

func (a *Assistant) awsConfig(ctx context.Context) (aws.Config, error) {
	if a.aws != nil {
		return *a.aws, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(a.Config.DynamoDB.Region))
	if err != nil {
		return cfg, fmt.Errorf("failed to load AWS config: %w", err)
	}
	a.aws = &cfg
	return cfg, nil
}

func encryption(cfg config.ClaimsConfig) (middleware.Middleware, error) {
	active, err := middleware.DecodeKey(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}
	ec := middleware.EncryptionConfig{ActiveKey: active}
	for _, k := range cfg.FallbackKeys {
		key, err := middleware.DecodeKey(k)
		if err != nil {
			return nil, fmt.Errorf("fallback key: %w", err)
		}
		ec.FallbackKeys = append(ec.FallbackKeys, key)
	}
	return middleware.NewEncryptionMiddleware(ec)
}

// Logger returns the logger the Assistant was built with.
func (a *Assistant) Logger() *slog.Logger {
	return a.logger
}

// Handler returns the HTTP API.
func (a *Assistant) Handler() (http.Handler, error) {
	return httpadapter.NewHandler(a.Engine, a.Sessions, httpadapter.Config{
		AllowedOrigins: a.Config.CORS.AllowedOrigins,
		Metrics:        a.Metrics,
		Logger:         a.logger,
		Version:        Version,
	})
}

// MCPServer returns the assistant exposed as MCP tools.
func (a *Assistant) MCPServer() *mcpadapter.Server {
	opts := []mcpadapter.Option{mcpadapter.WithLogger(a.logger)}
	if lister, ok := a.Directory.(mcpadapter.PackageLister); ok {
		opts = append(opts, mcpadapter.WithPackages(lister))
	}
	return mcpadapter.NewServer(a.Engine, Version, opts...)
}

// RunJanitor sweeps expired sessions and dialogues every interval until ctx is done.
// A non-positive interval disables it.
func (a *Assistant) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.Engine.Sweep(ctx)
			if err != nil {
				a.logger.Warn("Sweep failed", "err", err)
				continue
			}
			if n > 0 {
				a.logger.Debug("Swept expired entries", "count", n)
			}
		}
	}
}

// Close releases connections opened by New.
func (a *Assistant) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
