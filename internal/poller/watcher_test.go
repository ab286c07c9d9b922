// internal/poller/watcher_test.go
package poller

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consultation-workers/internal/common/errors"
	"consultation-workers/internal/common/logger"
	"consultation-workers/internal/models"
)

// scriptedFetcher replays a fixed sequence of fetch results, repeating the
// last entry once the script runs out.
type scriptedFetcher struct {
	mu      sync.Mutex
	script  []fetchResult
	fetches int
	onFetch func(n int)
}

type fetchResult struct {
	status string
	err    error
}

func (f *scriptedFetcher) FetchStatus(ctx context.Context, consultationID string) (string, error) {
	f.mu.Lock()
	idx := f.fetches
	f.fetches++
	if idx >= len(f.script) {
		idx = len(f.script) - 1
	}
	result := f.script[idx]
	hook := f.onFetch
	n := f.fetches
	f.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	return result.status, result.err
}

func (f *scriptedFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

type recordingNavigator struct {
	mu          sync.Mutex
	payments    int
	completions int
	logins      int
}

func (n *recordingNavigator) ToPayment(consultationID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payments++
}

func (n *recordingNavigator) ToCompletion(consultationID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completions++
}

func (n *recordingNavigator) ToLogin() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.logins++
}

func (n *recordingNavigator) counts() (int, int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.payments, n.completions, n.logins
}

func testConfig() Config {
	return Config{
		Interval:   5 * time.Millisecond,
		GraceDelay: 3 * time.Millisecond,
	}
}

func TestWatcherNavigatesToPaymentOnce(t *testing.T) {
	fetcher := &scriptedFetcher{script: []fetchResult{
		{status: models.ConsultationStatusRequested},
		{status: models.ConsultationStatusRequested},
		{status: models.ConsultationStatusMatched},
		{status: models.ConsultationStatusMatched},
		{status: models.ConsultationStatusMatched},
	}}
	nav := &recordingNavigator{}
	w := NewWatcher(fetcher, nav, testConfig(), logger.NewTestLogger(t))

	outcome := w.Run(context.Background(), "consult-001")

	assert.Equal(t, OutcomeNavigated, outcome)
	payments, completions, logins := nav.counts()
	assert.Equal(t, 1, payments)
	assert.Zero(t, completions)
	assert.Zero(t, logins)
	// The loop disarms on the first matched observation; the remaining
	// scripted entries are never fetched.
	assert.Equal(t, 3, fetcher.count())
}

func TestWatcherNavigatesToPaymentOnScheduled(t *testing.T) {
	fetcher := &scriptedFetcher{script: []fetchResult{
		{status: models.ConsultationStatusScheduled},
	}}
	nav := &recordingNavigator{}
	w := NewWatcher(fetcher, nav, testConfig(), logger.NewTestLogger(t))

	outcome := w.Run(context.Background(), "consult-001")

	assert.Equal(t, OutcomeNavigated, outcome)
	payments, _, _ := nav.counts()
	assert.Equal(t, 1, payments)
}

func TestWatcherNavigatesToCompletionImmediately(t *testing.T) {
	fetcher := &scriptedFetcher{script: []fetchResult{
		{status: models.ConsultationStatusCompleted},
	}}
	nav := &recordingNavigator{}
	w := NewWatcher(fetcher, nav, testConfig(), logger.NewTestLogger(t))

	outcome := w.Run(context.Background(), "consult-001")

	assert.Equal(t, OutcomeNavigated, outcome)
	payments, completions, _ := nav.counts()
	assert.Zero(t, payments)
	assert.Equal(t, 1, completions)
}

func TestWatcherToleratesTransientFetchFailures(t *testing.T) {
	fetcher := &scriptedFetcher{script: []fetchResult{
		{status: models.ConsultationStatusRequested},
		{err: fmt.Errorf("connection reset")},
		{err: errors.NewStatusFetchFailedError(fmt.Errorf("upstream 503"))},
		{status: models.ConsultationStatusMatched},
	}}
	nav := &recordingNavigator{}
	w := NewWatcher(fetcher, nav, testConfig(), logger.NewTestLogger(t))

	outcome := w.Run(context.Background(), "consult-001")

	assert.Equal(t, OutcomeNavigated, outcome)
	payments, _, _ := nav.counts()
	assert.Equal(t, 1, payments)
	assert.Equal(t, 4, fetcher.count())
}

func TestWatcherStopsOnUnauthorized(t *testing.T) {
	fetcher := &scriptedFetcher{script: []fetchResult{
		{status: models.ConsultationStatusRequested},
		{err: errors.NewUnauthorizedError("session expired")},
	}}
	nav := &recordingNavigator{}
	w := NewWatcher(fetcher, nav, testConfig(), logger.NewTestLogger(t))

	outcome := w.Run(context.Background(), "consult-001")

	assert.Equal(t, OutcomeUnauthorized, outcome)
	payments, completions, logins := nav.counts()
	assert.Zero(t, payments)
	assert.Zero(t, completions)
	assert.Equal(t, 1, logins)
	assert.Equal(t, 2, fetcher.count())
}

func TestWatcherTeardownStopsPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetcher := &scriptedFetcher{
		script: []fetchResult{{status: models.ConsultationStatusRequested}},
	}
	nav := &recordingNavigator{}
	w := NewWatcher(fetcher, nav, testConfig(), logger.NewTestLogger(t))

	done := make(chan Outcome, 1)
	go func() { done <- w.Run(ctx, "consult-001") }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case outcome := <-done:
		assert.Equal(t, OutcomeCancelled, outcome)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after teardown")
	}
	payments, completions, _ := nav.counts()
	assert.Zero(t, payments)
	assert.Zero(t, completions)
}

// A qualifying result that arrives while teardown is in progress must be
// discarded, never navigated on.
func TestWatcherDiscardsInFlightResultOnTeardown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetcher := &scriptedFetcher{
		script: []fetchResult{{status: models.ConsultationStatusMatched}},
	}
	// Cancel while the first fetch is "in flight".
	fetcher.onFetch = func(n int) {
		if n == 1 {
			cancel()
		}
	}
	nav := &recordingNavigator{}
	w := NewWatcher(fetcher, nav, testConfig(), logger.NewTestLogger(t))

	outcome := w.Run(ctx, "consult-001")

	assert.Equal(t, OutcomeCancelled, outcome)
	payments, completions, _ := nav.counts()
	assert.Zero(t, payments)
	assert.Zero(t, completions)
}

func TestWatcherMaxWait(t *testing.T) {
	cfg := testConfig()
	cfg.MaxWait = 30 * time.Millisecond
	fetcher := &scriptedFetcher{
		script: []fetchResult{{status: models.ConsultationStatusRequested}},
	}
	nav := &recordingNavigator{}
	w := NewWatcher(fetcher, nav, cfg, logger.NewTestLogger(t))

	outcome := w.Run(context.Background(), "consult-001")

	assert.Equal(t, OutcomeTimedOut, outcome)
	payments, completions, _ := nav.counts()
	assert.Zero(t, payments)
	assert.Zero(t, completions)
	require.GreaterOrEqual(t, fetcher.count(), 1)
}
