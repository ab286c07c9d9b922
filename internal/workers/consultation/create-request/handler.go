// internal/workers/consultation/create-request/handler.go
package createrequest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"consultation-workers/internal/common/errors"
	"consultation-workers/internal/common/logger"
	"consultation-workers/internal/common/metrics"
	"consultation-workers/internal/models"
	"consultation-workers/internal/store"
	"consultation-workers/pkg/registry"
)

const (
	TaskType = "create-consultation-request"
)

type Handler struct {
	config       *Config
	store        *store.ConsultationStore
	task         *registry.Task
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, consultations *store.ConsultationStore, task *registry.Task, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        consultations,
		task:         task,
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
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if h.task != nil {
		doc := map[string]interface{}{
			"requesterId": input.RequesterID,
			"topic":       input.Topic,
			"category":    input.Category,
			"method":      input.Method,
			"feeAmount":   input.FeeAmount,
		}
		if input.Details != "" {
			doc["details"] = input.Details
		}
		if err := h.task.ValidateInput(doc); err != nil {
			return nil, errors.NewInvalidInputError(err.Error())
		}
	}
	if strings.TrimSpace(input.RequesterID) == "" {
		return nil, errors.NewInvalidInputError("requesterId is required")
	}
	if strings.TrimSpace(input.Topic) == "" {
		return nil, errors.NewInvalidInputError("topic is required")
	}
	if !models.ValidCategory(input.Category) {
		return nil, errors.NewInvalidInputError("category must be one of visa, labor, contract, business, other")
	}
	if !models.ValidMethod(input.Method) {
		return nil, errors.NewInvalidInputError("method must be one of email, document, call, video")
	}
	if input.FeeAmount <= 0 {
		return nil, errors.NewInvalidInputError("feeAmount must be a positive integer")
	}

	c, err := h.store.Create(ctx, store.CreateParams{
		RequesterID: input.RequesterID,
		Topic:       input.Topic,
		Details:     input.Details,
		Category:    input.Category,
		Method:      input.Method,
		FeeAmount:   input.FeeAmount,
		Metadata:    input.Metadata,
	})
	if err != nil {
		return nil, err
	}

	metrics.LifecycleTransitions.WithLabelValues(models.ConsultationStatusRequested).Inc()
	h.logger.Info("consultation request created", map[string]interface{}{
		"consultationId": c.ID,
		"requesterId":    c.RequesterID,
		"topic":          c.Topic,
		"category":       c.Category,
	})

	return &Output{
		ConsultationID: c.ID,
		Status:         c.Status,
		CreatedAt:      c.CreatedAt.UTC().Format(time.RFC3339),
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
