// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"consultation-workers/internal/common/auth"
	"consultation-workers/internal/common/config"
	"consultation-workers/internal/common/database"
	"consultation-workers/internal/common/dataportal"
	"consultation-workers/internal/common/logger"
	"consultation-workers/internal/common/observability"
	"consultation-workers/internal/eligibility"
	"consultation-workers/internal/search"
	"consultation-workers/internal/store"
	"consultation-workers/pkg/registry"

	// Consultation Lifecycle Workers (10)
	ar "consultation-workers/internal/workers/consultation/accept-request"
	cnr "consultation-workers/internal/workers/consultation/cancel-request"
	cmr "consultation-workers/internal/workers/consultation/complete-request"
	cr "consultation-workers/internal/workers/consultation/create-request"
	gs "consultation-workers/internal/workers/consultation/get-status"
	lr "consultation-workers/internal/workers/consultation/list-requests"
	mc "consultation-workers/internal/workers/consultation/match-consultant"
	oc "consultation-workers/internal/workers/consultation/open-channel"
	rr "consultation-workers/internal/workers/consultation/reject-request"
	sch "consultation-workers/internal/workers/consultation/schedule-request"

	// Support Program Workers (3)
	ce "consultation-workers/internal/workers/support/check-eligibility"
	sp "consultation-workers/internal/workers/support/search-programs"
	syn "consultation-workers/internal/workers/support/sync-programs"

	// Notification Workers (1)
	dn "consultation-workers/internal/workers/notification/dispatch-notification"
)

// statusCacheTTL bounds how stale a cached consultation status may be.
const statusCacheTTL = 5 * time.Minute

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init External Service Clients ---
	keycloak := auth.NewKeycloakClient(
		cfg.Auth.Keycloak.URL,
		cfg.Auth.Keycloak.Realm,
		cfg.Auth.Keycloak.ClientID,
		cfg.Auth.Keycloak.ClientSecret,
		log,
	)

	portal := dataportal.NewClient(cfg.Integrations.DataPortal.BaseURL, cfg.Integrations.DataPortal.APIKey)

	zapLog.Info("All external service clients initialized")

	// --- Init Stores & Domain Services ---
	consultations := store.NewConsultationStore(pg.DB, log)
	consultants := store.NewConsultantStore(pg.DB, log)
	programs := store.NewProgramStore(pg.DB, log)
	statusCache := store.NewStatusCache(redis.Client, statusCacheTTL, log)

	evaluator := eligibility.New(eligibility.Config{
		AgeMin: cfg.Eligibility.AgeMin,
		AgeMax: cfg.Eligibility.AgeMax,
	})

	programSearch := search.NewProgramSearch(esClient.Client, cfg.Database.Elasticsearch.ProgramIndex, log)

	taskRegistry, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("task registry load failed", zap.Error(err))
	}

	// --- START: Register ALL 14 Workers ---

	// --- 1. Consultation Lifecycle Workers (10) ---
	if cfg.Workers[cr.TaskType].Enabled {
		task, err := taskRegistry.FindTask(cr.TaskType)
		if err != nil {
			zapLog.Fatal("create-request missing from task registry", zap.Error(err))
		}
		handler := cr.NewHandler(
			&cr.Config{
				Timeout: time.Duration(cfg.Workers[cr.TaskType].Timeout) * time.Millisecond,
			},
			consultations, task, log,
		)
		startWorker(zeebeClient, cr.TaskType, cfg.Workers[cr.TaskType], handler.Handle, obs, zapLog)
	}

	if cfg.Workers[mc.TaskType].Enabled {
		handler := mc.NewHandler(
			&mc.Config{
				Timeout:       time.Duration(cfg.Workers[mc.TaskType].Timeout) * time.Millisecond,
				MaxCandidates: 5,
			},
			consultations, consultants, log,
		)
		startWorker(zeebeClient, mc.TaskType, cfg.Workers[mc.TaskType], handler.Handle, obs, zapLog)
	}

	if cfg.Workers[ar.TaskType].Enabled {
		handler := ar.NewHandler(
			&ar.Config{
				Timeout: time.Duration(cfg.Workers[ar.TaskType].Timeout) * time.Millisecond,
			},
			consultations, consultants, statusCache, log,
		)
		startWorker(zeebeClient, ar.TaskType, cfg.Workers[ar.TaskType], handler.Handle, obs, zapLog)
	}

	if cfg.Workers[rr.TaskType].Enabled {
		handler := rr.NewHandler(
			&rr.Config{
				Timeout: time.Duration(cfg.Workers[rr.TaskType].Timeout) * time.Millisecond,
			},
			consultations, log,
		)
		startWorker(zeebeClient, rr.TaskType, cfg.Workers[rr.TaskType], handler.Handle, obs, zapLog)
	}

	if cfg.Workers[cnr.TaskType].Enabled {
		handler := cnr.NewHandler(
			&cnr.Config{
				Timeout: time.Duration(cfg.Workers[cnr.TaskType].Timeout) * time.Millisecond,
			},
			consultations, statusCache, log,
		)
		startWorker(zeebeClient, cnr.TaskType, cfg.Workers[cnr.TaskType], handler.Handle, obs, zapLog)
	}

	if cfg.Workers[sch.TaskType].Enabled {
		handler := sch.NewHandler(
			&sch.Config{
				Timeout: time.Duration(cfg.Workers[sch.TaskType].Timeout) * time.Millisecond,
			},
			consultations, statusCache, log,
		)
		startWorker(zeebeClient, sch.TaskType, cfg.Workers[sch.TaskType], handler.Handle, obs, zapLog)
	}

	if cfg.Workers[oc.TaskType].Enabled {
		handler := oc.NewHandler(
			&oc.Config{
				Timeout: time.Duration(cfg.Workers[oc.TaskType].Timeout) * time.Millisecond,
			},
			consultations, statusCache, log,
		)
		startWorker(zeebeClient, oc.TaskType, cfg.Workers[oc.TaskType], handler.Handle, obs, zapLog)
	}

	if cfg.Workers[cmr.TaskType].Enabled {
		handler := cmr.NewHandler(
			&cmr.Config{
				Timeout: time.Duration(cfg.Workers[cmr.TaskType].Timeout) * time.Millisecond,
			},
			consultations, statusCache, log,
		)
		startWorker(zeebeClient, cmr.TaskType, cfg.Workers[cmr.TaskType], handler.Handle, obs, zapLog)
	}

	if cfg.Workers[gs.TaskType].Enabled {
		handler := gs.NewHandler(
			&gs.Config{
				Timeout: time.Duration(cfg.Workers[gs.TaskType].Timeout) * time.Millisecond,
			},
			consultations, statusCache, keycloak, log,
		)
		startWorker(zeebeClient, gs.TaskType, cfg.Workers[gs.TaskType], handler.Handle, obs, zapLog)
	}

	if cfg.Workers[lr.TaskType].Enabled {
		handler := lr.NewHandler(
			&lr.Config{
				Timeout:      time.Duration(cfg.Workers[lr.TaskType].Timeout) * time.Millisecond,
				DefaultLimit: 50,
			},
			consultations, log,
		)
		startWorker(zeebeClient, lr.TaskType, cfg.Workers[lr.TaskType], handler.Handle, obs, zapLog)
	}

	// --- 2. Support Program Workers (3) ---
	if cfg.Workers[ce.TaskType].Enabled {
		handler := ce.NewHandler(
			&ce.Config{
				Timeout: time.Duration(cfg.Workers[ce.TaskType].Timeout) * time.Millisecond,
			},
			programs, evaluator, log,
		)
		startWorker(zeebeClient, ce.TaskType, cfg.Workers[ce.TaskType], handler.Handle, obs, zapLog)
	}

	if cfg.Workers[sp.TaskType].Enabled {
		handler := sp.NewHandler(
			&sp.Config{
				Timeout:         time.Duration(cfg.Workers[sp.TaskType].Timeout) * time.Millisecond,
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
			programSearch, log,
		)
		startWorker(zeebeClient, sp.TaskType, cfg.Workers[sp.TaskType], handler.Handle, obs, zapLog)
	}

	if cfg.Workers[syn.TaskType].Enabled {
		handler := syn.NewHandler(
			&syn.Config{
				Timeout:  time.Duration(cfg.Workers[syn.TaskType].Timeout) * time.Millisecond,
				PageSize: 100,
				MaxPages: 50,
			},
			portal, programs, log,
		)
		startWorker(zeebeClient, syn.TaskType, cfg.Workers[syn.TaskType], handler.Handle, obs, zapLog)
	}

	// --- 3. Notification Workers (1) ---
	if cfg.Workers[dn.TaskType].Enabled {
		handler, err := dn.NewHandler(
			&dn.Config{
				EmailEnabled:     cfg.Notifications.Email.Enabled,
				SMSEnabled:       cfg.Notifications.SMS.Enabled,
				FromEmail:        cfg.Notifications.Email.FromEmail,
				AWSRegion:        cfg.Integrations.AWS.Region,
				TemplateRegistry: cfg.Notifications.TemplateRegistry,
				Timeout:          time.Duration(cfg.Workers[dn.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		if err != nil {
			zapLog.Fatal("failed to create dispatch-notification handler", zap.Error(err))
		}
		startWorker(zeebeClient, dn.TaskType, cfg.Workers[dn.TaskType], handler.Handle, obs, zapLog)
	}

	zapLog.Info("All 14 workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_ = shutdownCtx

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), obs *observability.Observability, log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	// Wrap the handler so every job feeds the OTel instruments alongside
	// the per-worker Prometheus counters.
	instrumented := func(jobClient worker.JobClient, job entities.Job) {
		start := time.Now()
		handlerFunc(jobClient, job)
		obs.RecordJobDuration(context.Background(), time.Since(start), taskType)
		obs.RecordJobProcessed(context.Background(), taskType)
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(instrumented).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
