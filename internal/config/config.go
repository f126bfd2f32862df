// Package config loads the Courier configuration from a YAML file and COURIER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. COURIER_LOG_LEVEL for log.level.
const EnvPrefix = "COURIER_"

// Config is the full runtime configuration.
type Config struct {
	Addr          string         `mapstructure:"addr"`
	Log           LogConfig      `mapstructure:"log"`
	Session       SessionConfig  `mapstructure:"session"`
	SweepInterval time.Duration  `mapstructure:"sweep_interval"`
	CORS          CORSConfig     `mapstructure:"cors"`
	Store         StoreConfig    `mapstructure:"store"`
	Claims        ClaimsConfig   `mapstructure:"claims"`
	Redis         RedisConfig    `mapstructure:"redis"`
	DynamoDB      DynamoDBConfig `mapstructure:"dynamodb"`
	SQS           SQSConfig      `mapstructure:"sqs"`
	Packages      PackagesConfig `mapstructure:"packages"`
	Metrics       MetricsConfig  `mapstructure:"metrics"`
	MaxInputSize  int            `mapstructure:"max_input_size"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig selects the backend of sessions, key/value entries and dialogue state.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
}

// ClaimsConfig selects the claim backend. A non-empty EncryptionKey (base64, 32 bytes)
// encrypts claimant emails at rest; FallbackKeys still decrypt older records.
type ClaimsConfig struct {
	Backend       string   `mapstructure:"backend"`
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type DynamoDBConfig struct {
	Table    string `mapstructure:"table"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

// SQSConfig enables claim notifications when QueueURL is set.
type SQSConfig struct {
	QueueURL string `mapstructure:"queue_url"`
}

// PackagesConfig points at an optional YAML tracking table replacing the built-in one.
type PackagesConfig struct {
	File string `mapstructure:"file"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
)

func defaults() map[string]any {
	return map[string]any{
		"addr": ":8000",
		"log": map[string]any{
			"level":  "info",
			"format": "text",
		},
		"session":        map[string]any{"ttl": "1h"},
		"sweep_interval": "1m",
		"cors": map[string]any{
			"allowed_origins": []any{"http://localhost:3000", "http://127.0.0.1:3000"},
		},
		"store": map[string]any{"backend": BackendMemory},
		"claims": map[string]any{
			"backend":        BackendMemory,
			"encryption_key": "",
			"fallback_keys":  []any{},
		},
		"redis": map[string]any{
			"addr":     "localhost:6379",
			"password": "",
			"db":       0,
			"prefix":   "courier:",
		},
		"dynamodb": map[string]any{
			"table":    "courier-claims",
			"region":   "us-east-1",
			"endpoint": "",
		},
		"sqs":            map[string]any{"queue_url": ""},
		"packages":       map[string]any{"file": ""},
		"metrics":        map[string]any{"enabled": true},
		"max_input_size": 4096,
	}
}

// Default returns the configuration used when no file or environment is given.
func Default() Config {
	cfg, err := decode(defaults())
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// Load reads path (optional) and applies environment overrides from environ,
// typically os.Environ().
func Load(path string, environ []string) (Config, error) {
	raw := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		var file map[string]any
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		merge(raw, file)
	}

	applyEnv(raw, environ)

	cfg, err := decode(raw)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case BackendMemory, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("store.backend: unsupported %q (memory, redis)", c.Store.Backend))
	}
	switch c.Claims.Backend {
	case BackendMemory, BackendRedis:
	case BackendDynamoDB:
		if c.DynamoDB.Table == "" {
			errs = append(errs, errors.New("dynamodb.table is required for the dynamodb claims backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("claims.backend: unsupported %q (memory, redis, dynamodb)", c.Claims.Backend))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unsupported %q (text, json)", c.Log.Format))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if c.SweepInterval < 0 {
		errs = append(errs, errors.New("sweep_interval must not be negative"))
	}
	if c.MaxInputSize <= 0 {
		errs = append(errs, errors.New("max_input_size must be positive"))
	}
	return errors.Join(errs...)
}

// Keys returns every configuration key in dotted form, sorted.
func Keys() []string {
	var keys []string
	flatten("", defaults(), func(key string) { keys = append(keys, key) })
	sort.Strings(keys)
	return keys
}

// EnvName returns the environment variable overriding key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func decode(raw map[string]any) (Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			durationHook,
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// durationHook accepts Go duration strings ("90s") and bare numbers as seconds.
func durationHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Duration(n) * time.Second, nil
		}
		return time.ParseDuration(s)
	}
	return data, nil
}

// merge copies src into dst, descending into nested maps.
func merge(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				merge(existing, sub)
				continue
			}
		}
		dst[k] = v
	}
}

func applyEnv(raw map[string]any, environ []string) {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}
	if len(env) == 0 {
		return
	}
	for _, key := range Keys() {
		if v, ok := env[EnvName(key)]; ok {
			set(raw, strings.Split(key, "."), v)
		}
	}
}

func set(m map[string]any, path []string, v any) {
	for _, p := range path[:len(path)-1] {
		sub, ok := m[p].(map[string]any)
		if !ok {
			sub = map[string]any{}
			m[p] = sub
		}
		m = sub
	}
	m[path[len(path)-1]] = v
}

func flatten(prefix string, m map[string]any, fn func(string)) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			flatten(key, sub, fn)
			continue
		}
		fn(key)
	}
}
