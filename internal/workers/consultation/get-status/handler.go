// internal/workers/consultation/get-status/handler.go
package getstatus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"consultation-workers/internal/common/errors"
	"consultation-workers/internal/common/logger"
	"consultation-workers/internal/common/metrics"
	"consultation-workers/internal/store"
)

const (
	TaskType = "get-consultation-status"
)

// SessionVerifier checks that the caller's session is still valid. A nil
// verifier skips the check (internal callers).
type SessionVerifier interface {
	Verify(ctx context.Context, token string) error
}

// Handler answers the status query the processing view polls. It must be
// cheap, idempotent and side-effect free: cache first, database on miss.
type Handler struct {
	config       *Config
	store        *store.ConsultationStore
	cache        *store.StatusCache
	sessions     SessionVerifier
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, consultations *store.ConsultationStore, cache *store.StatusCache, sessions SessionVerifier, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        consultations,
		cache:        cache,
		sessions:     sessions,
		logger:       scoped,
		errorHandler: errors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Debug("processing job", map[string]interface{}{
		"jobKey": job.Key,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ConsultationID == "" {
		return nil, errors.NewInvalidInputError("consultationId is required")
	}
	if h.sessions != nil && input.SessionToken != "" {
		if err := h.sessions.Verify(ctx, input.SessionToken); err != nil {
			return nil, err
		}
	}

	fetchedAt := time.Now().UTC().Format(time.RFC3339)

	if status, ok := h.cache.Get(ctx, input.ConsultationID); ok {
		return &Output{
			ConsultationID: input.ConsultationID,
			Status:         status,
			FromCache:      true,
			FetchedAt:      fetchedAt,
		}, nil
	}

	status, err := h.store.GetStatus(ctx, input.ConsultationID)
	if err != nil {
		return nil, err
	}
	h.cache.Set(ctx, input.ConsultationID, status)

	return &Output{
		ConsultationID: input.ConsultationID,
		Status:         status,
		FetchedAt:      fetchedAt,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
