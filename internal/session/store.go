package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/vacina-dashboard/internal/model"
	"github.com/jwalitptl/vacina-dashboard/pkg/metrics"
)

// State is what pages remember between navigations.
type State struct {
	SelectedPatient *model.Patient `json:"selectedPatient,omitempty"`
}

type Store interface {
	Get(ctx context.Context, key string) (State, error)
	Save(ctx context.Context, key string, st State) error
	Delete(ctx context.Context, key string) error
	Close() error
	Ping(ctx context.Context) error
}

const DefaultTTL = 12 * time.Hour

type MemoryStore struct {
	cache   *cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewMemoryStore(ttl time.Duration, m *metrics.Metrics) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{cache: cache.New(ttl, ttl/2), ttl: ttl, metrics: m}
}

func (s *MemoryStore) Get(_ context.Context, key string) (State, error) {
	observe(s.metrics, "get", nil)
	if v, ok := s.cache.Get(key); ok {
		return v.(State), nil
	}
	return State{}, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, st State) error {
	s.cache.Set(key, st, s.ttl)
	observe(s.metrics, "save", nil)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	observe(s.metrics, "delete", nil)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
func (s *MemoryStore) Close() error               { return nil }

type RedisConfig struct {
	URL          string
	Prefix       string
	TTL          time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	PoolSize     int
	MinIdleConns int
}

// RedisStore keeps states as JSON strings so several dashboard instances
// can share them.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewRedisStore(ctx context.Context, cfg RedisConfig, m *metrics.Metrics, logger zerolog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.MaxRetries = cfg.MaxRetries
	opts.MinRetryBackoff = cfg.RetryBackoff
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "vacina-dashboard:session:"
	}
	return &RedisStore{client: client, prefix: cfg.Prefix, ttl: cfg.TTL, metrics: m, logger: logger}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (State, error) {
	var st State
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err == redis.Nil {
		observe(s.metrics, "get", nil)
		return st, nil
	}
	observe(s.metrics, "get", err)
	if err != nil {
		return st, fmt.Errorf("failed to read session state: %w", err)
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable session state")
		return State{}, nil
	}
	return st, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, st State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}
	err = s.client.Set(ctx, s.prefix+key, payload, s.ttl).Err()
	observe(s.metrics, "save", err)
	if err != nil {
		return fmt.Errorf("failed to save session state: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	err := s.client.Del(ctx, s.prefix+key).Err()
	observe(s.metrics, "delete", err)
	if err != nil {
		return fmt.Errorf("failed to delete session state: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func observe(m *metrics.Metrics, op string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.SessionStoreOps.WithLabelValues(op, status).Inc()
}
