// cmd/tools/status-watcher/main.go
//
// status-watcher follows a single consultation request and reports the
// navigation the portal's processing view would perform. It is the
// operational counterpart of the in-process watcher: point it at a
// consultation id and it polls until the request moves forward, the
// session is rejected, or the wait budget runs out.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"consultation-workers/internal/common/config"
	"consultation-workers/internal/common/database"
	"consultation-workers/internal/common/logger"
	"consultation-workers/internal/poller"
	"consultation-workers/internal/store"
)

// consoleNavigator prints the navigation a portal session would take.
type consoleNavigator struct {
	log logger.Logger
}

func (n *consoleNavigator) ToPayment(consultationID string) {
	n.log.Info("navigate: payment", map[string]interface{}{
		"consultationId": consultationID,
	})
	fmt.Printf("-> payment (%s)\n", consultationID)
}

func (n *consoleNavigator) ToCompletion(consultationID string) {
	n.log.Info("navigate: completion", map[string]interface{}{
		"consultationId": consultationID,
	})
	fmt.Printf("-> completion (%s)\n", consultationID)
}

func (n *consoleNavigator) ToLogin() {
	n.log.Warn("navigate: login", nil)
	fmt.Println("-> login (session rejected)")
}

func main() {
	consultationID := flag.String("id", "", "Consultation request ID to watch")
	interval := flag.Duration("interval", 5*time.Second, "Delay between status fetches")
	grace := flag.Duration("grace", 3*time.Second, "Delay before navigating to payment")
	maxWait := flag.Duration("max-wait", 0, "Total watch budget (0 waits indefinitely)")
	flag.Parse()

	if *consultationID == "" {
		fmt.Fprintln(os.Stderr, "Error: -id is required")
		flag.Usage()
		os.Exit(1)
	}

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres failed", zap.Error(err))
	}
	defer pg.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		zapLog.Info("interrupt received, stopping watch")
		cancel()
	}()

	consultations := store.NewConsultationStore(pg.DB, log)

	watcher := poller.NewWatcher(
		statusFetcher{consultations},
		&consoleNavigator{log: log},
		poller.Config{
			Interval:   *interval,
			GraceDelay: *grace,
			MaxWait:    *maxWait,
		},
		log,
	)

	zapLog.Info("watching consultation",
		zap.String("consultationId", *consultationID),
		zap.Duration("interval", *interval),
		zap.Duration("grace", *grace),
	)

	outcome := watcher.Run(ctx, *consultationID)
	fmt.Printf("watch finished: %s\n", outcome)

	if outcome == poller.OutcomeUnauthorized {
		os.Exit(1)
	}
}

// statusFetcher adapts the consultation store to the watcher's read-only
// fetch contract.
type statusFetcher struct {
	consultations *store.ConsultationStore
}

func (f statusFetcher) FetchStatus(ctx context.Context, consultationID string) (string, error) {
	return f.consultations.GetStatus(ctx, consultationID)
}
