package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/summarize/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "summarize:"

// Sink implements ports.HostRunner using Redis.
// Every result is appended to a list and stored under a per-trial key.
type Sink struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Sink)

// WithTTL sets the expiration of per-trial keys. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Sink) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Sink) {
		s.prefix = prefix
	}
}

// New creates a new Redis sink with options.
func New(address, password string, db int, opts ...Option) *Sink {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis sink from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Sink {
	sink := &Sink{
		client: client,
		prefix: DefaultPrefix,
	}

	for _, opt := range opts {
		opt(sink)
	}

	return sink
}

func (s *Sink) key(trialID string) string {
	return s.prefix + "trial:" + trialID
}

// ListKey is the key of the list holding every finished trial, oldest first.
func (s *Sink) ListKey() string {
	return s.prefix + "results"
}

// FinishTrial stores the result.
func (s *Sink) FinishTrial(ctx context.Context, result domain.TrialResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.ListKey(), data)
	pipe.Set(ctx, s.key(result.TrialID), data, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Result retrieves the stored result of a trial.
func (s *Sink) Result(ctx context.Context, trialID string) (domain.TrialResult, error) {
	val, err := s.client.Get(ctx, s.key(trialID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.TrialResult{}, domain.ErrTrialNotFound
		}
		return domain.TrialResult{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var result domain.TrialResult
	if err := json.Unmarshal(val, &result); err != nil {
		return domain.TrialResult{}, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return result, nil
}

// Results returns up to limit results from the list, oldest first. A limit <= 0 returns all.
func (s *Sink) Results(ctx context.Context, limit int) ([]domain.TrialResult, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	vals, err := s.client.LRange(ctx, s.ListKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	results := make([]domain.TrialResult, 0, len(vals))
	for _, v := range vals {
		var result domain.TrialResult
		if err := json.Unmarshal([]byte(v), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		results = append(results, result)
	}
	return results, nil
}

// Ping checks the connection.
func (s *Sink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *Sink) Close() error {
	return s.client.Close()
}
