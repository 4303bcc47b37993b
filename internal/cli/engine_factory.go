package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/summarize"
	"github.com/aretw0/summarize/internal/config"
	"github.com/aretw0/summarize/pkg/adapters/broker"
	"github.com/aretw0/summarize/pkg/adapters/redis"
	"github.com/aretw0/summarize/pkg/adapters/webhook"
	"github.com/aretw0/summarize/pkg/domain"
	"github.com/aretw0/summarize/pkg/observability"
	"github.com/aretw0/summarize/pkg/ports"
	"github.com/aretw0/summarize/pkg/scoring"
)

// Resources is an engine together with what must be released after it.
type Resources struct {
	Engine  *summarize.Engine
	Metrics *observability.Metrics

	closers []func() error
}

// Close releases the host runner connections.
func (r *Resources) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	return errors.Join(errs...)
}

// createEngine initializes an engine with the scoring client and every host runner the config enables.
// Extra hosts, e.g. a recorder for the terminal runner, are called after the configured ones.
func createEngine(ctx context.Context, cfg config.Config, logger *slog.Logger, extra ...ports.HostRunner) (*Resources, error) {
	res := &Resources{Metrics: observability.NewMetrics()}

	hosts, err := res.hosts(ctx, cfg, logger)
	if err != nil {
		_ = res.Close()
		return nil, err
	}
	hosts = append(hosts, extra...)
	if len(hosts) == 0 {
		logger.Warn("No host runner configured, finished trials are only logged")
		hosts = append(hosts, logHost(logger))
	}

	scorer := scoring.New(cfg.ScoringURL,
		scoring.WithPath(cfg.ScoringPath),
		scoring.WithTimeout(cfg.ScoringTimeout),
		scoring.WithLogger(logger),
	)

	hooks := res.Metrics.Hooks()
	if cfg.LogLevel == "debug" {
		hooks = hooks.Merge(observability.LogHooks(logger))
	}

	res.Engine = summarize.New(
		summarize.WithScorer(scorer),
		summarize.WithHost(ports.MultiHost(hosts)),
		summarize.WithScoringPrompt(cfg.ScoringPrompt()),
		summarize.WithLifecycleHooks(hooks),
		summarize.WithLogger(logger),
		summarize.WithIdleTTL(cfg.TrialIdleTTL),
	)
	logger.Debug("Engine ready", "scoring_endpoint", scorer.Endpoint(), "hosts", len(hosts))
	return res, nil
}

func (r *Resources) hosts(ctx context.Context, cfg config.Config, logger *slog.Logger) ([]ports.HostRunner, error) {
	var hosts []ports.HostRunner

	if cfg.WebhookURL != "" {
		hosts = append(hosts, webhook.New(cfg.WebhookURL, webhook.WithLogger(logger)))
	}

	if cfg.RedisAddr != "" {
		sink := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			redis.WithPrefix(cfg.RedisPrefix),
			redis.WithTTL(cfg.RedisResultTTL),
		)
		r.closers = append(r.closers, sink.Close)
		if err := sink.Ping(ctx); err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		hosts = append(hosts, sink)
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub, err := broker.NewKafkaPublisher(broker.Config{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, pub.Close)
		hosts = append(hosts, pub)
	}

	return hosts, nil
}

func logHost(logger *slog.Logger) ports.HostFunc {
	return func(ctx context.Context, result domain.TrialResult) error {
		data, err := json.Marshal(result)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "Trial finished", "trial_id", result.TrialID, "result", string(data))
		return nil
	}
}
