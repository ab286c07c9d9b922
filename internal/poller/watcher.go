// internal/poller/watcher.go
//
// Package poller watches a consultation that sits in requested and drives
// exactly one forward navigation once a qualifying status is observed.
// One Watcher instance is scoped to one consultation id and one viewing
// session; cancelling the context tears it down immediately.
package poller

import (
	"context"
	"time"

	"consultation-workers/internal/common/errors"
	"consultation-workers/internal/common/logger"
	"consultation-workers/internal/models"
)

// StatusFetcher returns the current status of a consultation. The fetch
// must be read-only and side-effect free.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, consultationID string) (string, error)
}

// Navigator receives the single forward navigation the watcher performs.
type Navigator interface {
	// ToPayment is called once when the consultation reaches matched or
	// scheduled, after the grace delay.
	ToPayment(consultationID string)
	// ToCompletion is called once when the consultation is completed.
	ToCompletion(consultationID string)
	// ToLogin is called when a status fetch reports the session is invalid.
	ToLogin()
}

// Outcome reports why the watcher stopped.
type Outcome string

const (
	OutcomeNavigated    Outcome = "navigated"
	OutcomeCancelled    Outcome = "cancelled"
	OutcomeUnauthorized Outcome = "unauthorized"
	OutcomeTimedOut     Outcome = "timed_out"
)

// Config controls the watcher's timing.
type Config struct {
	// Interval between status fetches.
	Interval time.Duration
	// GraceDelay between observing matched/scheduled and navigating to
	// payment.
	GraceDelay time.Duration
	// MaxWait bounds the total watch time. Zero means poll indefinitely
	// until teardown or a qualifying status.
	MaxWait time.Duration
}

// DefaultConfig mirrors the portal's processing view timing.
var DefaultConfig = Config{
	Interval:   5 * time.Second,
	GraceDelay: 3 * time.Second,
}

// Watcher polls one consultation's status until a qualifying observation.
type Watcher struct {
	fetcher   StatusFetcher
	navigator Navigator
	cfg       Config
	log       logger.Logger
}

func NewWatcher(fetcher StatusFetcher, navigator Navigator, cfg Config, log logger.Logger) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig.Interval
	}
	if cfg.GraceDelay < 0 {
		cfg.GraceDelay = DefaultConfig.GraceDelay
	}
	return &Watcher{fetcher: fetcher, navigator: navigator, cfg: cfg, log: log}
}

// Run polls until it navigates, the context is cancelled, the session is
// rejected, or MaxWait elapses. Navigation happens at most once per Run,
// even when several ticks observe a qualifying status. A fetch already in
// flight when ctx is cancelled has its result discarded.
func (w *Watcher) Run(ctx context.Context, consultationID string) Outcome {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if w.cfg.MaxWait > 0 {
		timer := time.NewTimer(w.cfg.MaxWait)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return OutcomeCancelled
		case <-deadline:
			w.log.Info("status watch timed out", map[string]interface{}{
				"consultationId": consultationID,
				"maxWait":        w.cfg.MaxWait.String(),
			})
			return OutcomeTimedOut
		case <-ticker.C:
			status, err := w.fetcher.FetchStatus(ctx, consultationID)
			if ctx.Err() != nil {
				// Teardown raced the fetch; discard whatever came back.
				return OutcomeCancelled
			}
			if err != nil {
				if errors.IsUnauthorized(err) {
					w.log.Warn("session rejected during status watch", map[string]interface{}{
						"consultationId": consultationID,
					})
					w.navigator.ToLogin()
					return OutcomeUnauthorized
				}
				// Transient fetch failures keep the loop ticking.
				w.log.Debug("status fetch failed, will retry", map[string]interface{}{
					"consultationId": consultationID,
					"error":          err.Error(),
				})
				continue
			}
			if outcome, done := w.react(ctx, consultationID, status); done {
				return outcome
			}
		}
	}
}

// react performs the at-most-one navigation for a fetched status. The
// caller stops ticking as soon as done is true, which is what disarms any
// later qualifying observation.
func (w *Watcher) react(ctx context.Context, consultationID, status string) (Outcome, bool) {
	switch status {
	case models.ConsultationStatusMatched, models.ConsultationStatusScheduled:
		select {
		case <-ctx.Done():
			return OutcomeCancelled, true
		case <-time.After(w.cfg.GraceDelay):
		}
		if ctx.Err() != nil {
			return OutcomeCancelled, true
		}
		w.log.Info("consultation matched, moving to payment", map[string]interface{}{
			"consultationId": consultationID,
			"status":         status,
		})
		w.navigator.ToPayment(consultationID)
		return OutcomeNavigated, true
	case models.ConsultationStatusCompleted:
		w.log.Info("consultation completed", map[string]interface{}{
			"consultationId": consultationID,
		})
		w.navigator.ToCompletion(consultationID)
		return OutcomeNavigated, true
	default:
		return "", false
	}
}
