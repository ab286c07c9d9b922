// internal/workers/consultation/cancel-request/handler.go
package cancelrequest

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
	"consultation-workers/internal/lifecycle"
	"consultation-workers/internal/store"
)

const (
	TaskType = "cancel-consultation-request"
)

type Handler struct {
	config       *Config
	store        *store.ConsultationStore
	cache        *store.StatusCache
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, consultations *store.ConsultationStore, cache *store.StatusCache, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        consultations,
		cache:        cache,
		logger:       scoped,
		errorHandler: errors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
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
		metrics.TransitionsRejected.WithLabelValues(string(errors.CodeOf(err))).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ConsultationID == "" || input.ActorID == "" {
		return nil, errors.NewInvalidInputError("consultationId and actorId are required")
	}

	c, err := h.store.GetByID(ctx, input.ConsultationID)
	if err != nil {
		return nil, err
	}

	actor := lifecycle.Actor{ID: input.ActorID, Role: input.ActorRole}
	transition, err := lifecycle.Cancel(c, actor, input.Reason)
	if err != nil {
		return nil, err
	}
	if err := h.store.ApplyTransition(ctx, c.ID, transition); err != nil {
		return nil, err
	}
	h.cache.Invalidate(ctx, c.ID)
	metrics.LifecycleTransitions.WithLabelValues(transition.To).Inc()

	notifyConsultant := false
	for _, effect := range transition.Effects {
		if effect == lifecycle.EffectNotifyConsultant {
			notifyConsultant = true
		}
	}

	h.logger.Info("consultation cancelled", map[string]interface{}{
		"consultationId": c.ID,
		"actorId":        input.ActorID,
		"fromStatus":     transition.From,
	})

	return &Output{
		ConsultationID:   c.ID,
		Status:           transition.To,
		NotifyConsultant: notifyConsultant,
		UpdatedAt:        time.Now().UTC().Format(time.RFC3339),
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
