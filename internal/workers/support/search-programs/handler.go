// internal/workers/support/search-programs/handler.go
package searchprograms

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
	"consultation-workers/internal/models"
	"consultation-workers/internal/search"
)

const (
	TaskType = "search-support-programs"
)

// ProgramSearcher is the slice of the search layer this worker needs.
type ProgramSearcher interface {
	Search(ctx context.Context, q search.Query) (*search.Result, error)
}

type Handler struct {
	config       *Config
	searcher     ProgramSearcher
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, searcher ProgramSearcher, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		searcher:     searcher,
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
	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = h.config.DefaultPageSize
	}
	if pageSize > h.config.MaxPageSize {
		pageSize = h.config.MaxPageSize
	}

	result, err := h.searcher.Search(ctx, search.Query{
		Keywords: input.Keywords,
		Category: input.Category,
		Region:   input.Region,
		VisaType: input.VisaType,
		From:     (page - 1) * pageSize,
		Size:     pageSize,
	})
	if err != nil {
		return nil, err
	}

	programs := result.Programs
	if programs == nil {
		programs = []models.SupportProgram{}
	}

	h.logger.Info("program search completed", map[string]interface{}{
		"keywords":  input.Keywords,
		"totalHits": result.TotalHits,
		"returned":  len(programs),
		"tookMs":    result.Took,
	})
	metrics.ProgramSearches.Inc()

	return &Output{
		Programs:   programs,
		TotalHits:  result.TotalHits,
		Page:       page,
		PageSize:   pageSize,
		SearchedAt: time.Now().UTC().Format(time.RFC3339),
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
