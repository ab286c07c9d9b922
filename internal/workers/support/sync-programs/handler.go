// internal/workers/support/sync-programs/handler.go
package syncprograms

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
	"consultation-workers/internal/store"
)

const (
	TaskType = "sync-support-programs"
)

// ProgramFetcher is the portal client surface the sync needs.
type ProgramFetcher interface {
	FetchPrograms(ctx context.Context, pageNo, numOfRows int) ([]models.SupportProgram, int, error)
}

type Handler struct {
	config       *Config
	fetcher      ProgramFetcher
	programs     *store.ProgramStore
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, fetcher ProgramFetcher, programs *store.ProgramStore, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		fetcher:      fetcher,
		programs:     programs,
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

// execute pages through the portal until the page comes back short or
// the page budget runs out, upserting each record.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	pageNo := input.PageNo
	if pageNo < 1 {
		pageNo = 1
	}
	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = h.config.PageSize
	}
	maxPages := input.MaxPages
	if maxPages <= 0 {
		maxPages = h.config.MaxPages
	}

	synced := 0
	pages := 0
	totalCount := 0

	for pages < maxPages {
		programs, total, err := h.fetcher.FetchPrograms(ctx, pageNo, pageSize)
		if err != nil {
			return nil, errors.NewStatusFetchFailedError(fmt.Errorf("fetch programs page %d: %w", pageNo, err))
		}
		totalCount = total
		pages++

		for i := range programs {
			if err := h.programs.Upsert(ctx, &programs[i]); err != nil {
				return nil, err
			}
			synced++
		}

		if len(programs) < pageSize {
			break
		}
		pageNo++
	}

	metrics.ProgramsSynced.Add(float64(synced))
	h.logger.Info("program sync completed", map[string]interface{}{
		"synced":     synced,
		"pages":      pages,
		"totalCount": totalCount,
	})

	return &Output{
		Synced:     synced,
		TotalCount: totalCount,
		Pages:      pages,
		SyncedAt:   time.Now().UTC().Format(time.RFC3339),
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
