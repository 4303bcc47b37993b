// Package observability turns trial lifecycle events into Prometheus metrics and log lines.
package observability

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/summarize/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "summarize"

// Metrics holds the trial collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	trialsStarted     prometheus.Counter
	trialsFinished    prometheus.Counter
	responses         *prometheus.CounterVec
	scoringRequests   *prometheus.CounterVec
	scoringDuration   prometheus.Histogram
	trialDuration     prometheus.Histogram
	questionsPerTrial prometheus.Histogram
}

// NewMetrics creates and registers the collectors, plus the Go and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		trialsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trials_started_total",
			Help:      "Total number of rendered trials",
		}),
		trialsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trials_finished_total",
			Help:      "Total number of finished trials",
		}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_total",
			Help:      "Total number of submitted responses by outcome",
		}, []string{"outcome"}),
		scoringRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_requests_total",
			Help:      "Total number of scoring requests by outcome",
		}, []string{"outcome"}),
		scoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scoring_duration_seconds",
			Help:      "Duration of scoring requests",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		trialDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trial_duration_seconds",
			Help:      "Time from render to the final submission",
			Buckets:   prometheus.ExponentialBuckets(15, 2, 9),
		}),
		questionsPerTrial: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trial_questions",
			Help:      "Number of questions per rendered trial",
			Buckets:   []float64{1, 2, 3, 5, 8, 13},
		}),
	}
	m.registry.MustRegister(
		m.trialsStarted,
		m.trialsFinished,
		m.responses,
		m.scoringRequests,
		m.scoringDuration,
		m.trialDuration,
		m.questionsPerTrial,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks records every lifecycle event.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTrialStart: func(_ context.Context, e *domain.TrialEvent) {
			m.trialsStarted.Inc()
			m.questionsPerTrial.Observe(float64(e.Questions))
		},
		OnResponseRejected: func(context.Context, *domain.QuestionEvent) {
			m.responses.WithLabelValues("rejected").Inc()
		},
		OnResponseRecorded: func(context.Context, *domain.QuestionEvent) {
			m.responses.WithLabelValues("recorded").Inc()
		},
		OnScoreReturn: func(_ context.Context, e *domain.ScoreEvent) {
			m.scoringRequests.WithLabelValues(outcome(e.IsError)).Inc()
			m.scoringDuration.Observe(e.Duration.Seconds())
		},
		OnTrialFinish: func(_ context.Context, e *domain.TrialEvent) {
			m.trialsFinished.Inc()
			m.trialDuration.Observe((time.Duration(e.RT) * time.Millisecond).Seconds())
		},
	}
}

func outcome(isError bool) string {
	if isError {
		return "error"
	}
	return "success"
}

// LogHooks writes one structured log line per lifecycle event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTrialStart: func(ctx context.Context, e *domain.TrialEvent) {
			logger.InfoContext(ctx, "trial_start", "trial_id", e.TrialID, "questions", e.Questions)
		},
		OnQuestionEnabled: func(ctx context.Context, e *domain.QuestionEvent) {
			logger.DebugContext(ctx, "question_enabled", "trial_id", e.TrialID, "position", e.Position, "name", e.Name)
		},
		OnResponseRejected: func(ctx context.Context, e *domain.QuestionEvent) {
			logger.InfoContext(ctx, "response_rejected", "trial_id", e.TrialID, "position", e.Position)
		},
		OnResponseRecorded: func(ctx context.Context, e *domain.QuestionEvent) {
			logger.InfoContext(ctx, "response_recorded", "trial_id", e.TrialID, "position", e.Position, "name", e.Name)
		},
		OnScoreReturn: func(ctx context.Context, e *domain.ScoreEvent) {
			logger.InfoContext(ctx, "score_return",
				"trial_id", e.TrialID,
				"position", e.Position,
				"duration", e.Duration,
				"is_error", strconv.FormatBool(e.IsError),
			)
		},
		OnTrialFinish: func(ctx context.Context, e *domain.TrialEvent) {
			logger.InfoContext(ctx, "trial_finish", "trial_id", e.TrialID, "rt", e.RT)
		},
	}
}
