package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
)

// ResilientNotifier wraps a notifier with retry and a circuit breaker so a
// broker outage degrades to fast failures instead of stalled submissions.
type ResilientNotifier struct {
	next           Notifier
	circuitBreaker circuitbreaker.CircuitBreaker[struct{}]
	retrier        retry.Retry[struct{}]
	logger         *slog.Logger
}

// ResilientConfig holds retry and breaker settings
type ResilientConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64

	// FailureThreshold consecutive failures open the breaker
	FailureThreshold int
	// OpenTimeout is how long the breaker stays open before probing
	OpenTimeout time.Duration

	Logger *slog.Logger
}

// DefaultResilientConfig returns sensible defaults for notification delivery
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		MaxAttempts:      3,
		InitialDelay:     200 * time.Millisecond,
		Multiplier:       2.0,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// NewResilientNotifier wraps next with fortify retry and circuit breaker
func NewResilientNotifier(next Notifier, cfg ResilientConfig) *ResilientNotifier {
	def := DefaultResilientConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = def.InitialDelay
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = def.Multiplier
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	threshold := cfg.FailureThreshold
	return &ResilientNotifier{
		next:   next,
		logger: logger,
		circuitBreaker: circuitbreaker.New[struct{}](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return int(counts.ConsecutiveFailures) >= threshold
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				logger.Warn("notifier circuit breaker state change",
					"from", from.String(),
					"to", to.String())
			},
		}),
		retrier: retry.New[struct{}](retry.Config{
			MaxAttempts:   cfg.MaxAttempts,
			InitialDelay:  cfg.InitialDelay,
			MaxDelay:      5 * time.Second,
			Multiplier:    cfg.Multiplier,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
			IsRetryable: func(err error) bool {
				return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			},
		}),
	}
}

func (n *ResilientNotifier) Welcome(ctx context.Context, w Welcome) error {
	return n.execute(ctx, KindWelcome, func(ctx context.Context) error {
		return n.next.Welcome(ctx, w)
	})
}

func (n *ResilientNotifier) SubmissionAnalyzed(ctx context.Context, s Summary) error {
	return n.execute(ctx, KindSubmission, func(ctx context.Context) error {
		return n.next.SubmissionAnalyzed(ctx, s)
	})
}

func (n *ResilientNotifier) execute(ctx context.Context, kind string, fn func(context.Context) error) error {
	_, err := n.circuitBreaker.Execute(ctx, func(ctx context.Context) (struct{}, error) {
		return n.retrier.Do(ctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, fn(ctx)
		})
	})
	if err != nil {
		n.logger.Debug("notification delivery failed", "kind", kind, "error", err)
	}
	return err
}
