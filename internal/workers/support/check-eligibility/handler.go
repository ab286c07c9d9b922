// internal/workers/support/check-eligibility/handler.go
package checkeligibility

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"consultation-workers/internal/common/errors"
	"consultation-workers/internal/common/logger"
	"consultation-workers/internal/common/metrics"
	"consultation-workers/internal/eligibility"
	"consultation-workers/internal/store"
)

const (
	TaskType = "check-program-eligibility"
)

type Handler struct {
	config       *Config
	programs     *store.ProgramStore
	evaluator    *eligibility.Evaluator
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, programs *store.ProgramStore, evaluator *eligibility.Evaluator, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		programs:     programs,
		evaluator:    evaluator,
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

// execute loads the program and runs the evaluator. The evaluation itself
// never fails; only the program lookup can.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ProgramID == "" {
		return nil, errors.NewInvalidInputError("programId is required")
	}

	program, err := h.programs.GetByID(ctx, input.ProgramID)
	if err != nil {
		return nil, err
	}

	verdict := h.evaluator.Evaluate(program, &input.Profile)
	metrics.EligibilityVerdicts.WithLabelValues(strconv.FormatBool(verdict.Eligible)).Inc()

	h.logger.Info("eligibility evaluated", map[string]interface{}{
		"programId": program.ID,
		"userId":    input.Profile.UserID,
		"eligible":  verdict.Eligible,
		"criteria":  len(verdict.Criteria),
	})

	return &Output{
		ProgramID: program.ID,
		Eligible:  verdict.Eligible,
		Criteria:  verdict.Criteria,
		CheckedAt: time.Now().UTC().Format(time.RFC3339),
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
