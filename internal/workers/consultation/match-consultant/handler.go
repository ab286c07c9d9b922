// internal/workers/consultation/match-consultant/handler.go
package matchconsultant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"consultation-workers/internal/common/errors"
	"consultation-workers/internal/common/logger"
	"consultation-workers/internal/common/metrics"
	"consultation-workers/internal/models"
	"consultation-workers/internal/store"
)

const (
	TaskType = "match-consultant-candidates"
)

// Handler proposes consultant candidates for an open request. It never
// assigns anyone: acceptance stays a consultant decision, so the output
// is a candidate list for the notification step.
type Handler struct {
	config       *Config
	store        *store.ConsultationStore
	consultants  *store.ConsultantStore
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, consultations *store.ConsultationStore, consultants *store.ConsultantStore, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        consultations,
		consultants:  consultants,
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
	if input.ConsultationID == "" {
		return nil, errors.NewInvalidInputError("consultationId is required")
	}

	c, err := h.store.GetByID(ctx, input.ConsultationID)
	if err != nil {
		return nil, err
	}
	if c.Status != models.ConsultationStatusRequested {
		return nil, errors.NewWrongStateError(c.Status, "match")
	}

	// Specialty lookup keys on the request's category; the free-text topic
	// is only a last resort for rows created without one.
	specialty := input.Specialty
	if specialty == "" {
		specialty = c.Category
	}
	if specialty == "" {
		specialty = c.Topic
	}
	limit := input.MaxCandidates
	if limit <= 0 {
		limit = h.config.MaxCandidates
	}

	consultants, err := h.consultants.ListActiveBySpecialty(ctx, specialty, limit)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(consultants))
	for _, consultant := range consultants {
		candidates = append(candidates, Candidate{
			ConsultantID: consultant.ID,
			Name:         consultant.Name,
			Rating:       consultant.Rating,
			Languages:    consultant.Languages,
		})
	}

	h.logger.Info("candidates proposed", map[string]interface{}{
		"consultationId": c.ID,
		"specialty":      specialty,
		"count":          len(candidates),
	})

	return &Output{
		ConsultationID: c.ID,
		Candidates:     candidates,
		Count:          len(candidates),
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
