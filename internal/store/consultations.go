// internal/store/consultations.go
//
// Package store holds the persistence layer for consultations, consultants
// and support programs. Status updates use an optimistic status compare so
// concurrent accept/cancel races on the same row resolve to exactly one
// winner.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"consultation-workers/internal/common/errors"
	"consultation-workers/internal/common/logger"
	"consultation-workers/internal/lifecycle"
	"consultation-workers/internal/models"
)

type ConsultationStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewConsultationStore(db *sql.DB, log logger.Logger) *ConsultationStore {
	return &ConsultationStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "consultation-store"}),
	}
}

const consultationColumns = `
	id, requester_id, consultant_id, topic, details, category, method,
	fee_amount, status, payment_status, scheduled_at, cancel_reason,
	reject_reason, metadata, created_at, updated_at`

// CreateParams carries the client-submitted fields of a new consultation.
type CreateParams struct {
	RequesterID string
	Topic       string
	Details     string
	Category    string
	Method      string
	FeeAmount   int
	Metadata    map[string]interface{}
}

// Create inserts a new consultation in requested status and returns it.
func (s *ConsultationStore) Create(ctx context.Context, p CreateParams) (*models.Consultation, error) {
	now := time.Now().UTC()
	c := &models.Consultation{
		ID:          uuid.New().String(),
		RequesterID: p.RequesterID,
		Topic:       p.Topic,
		Details:     p.Details,
		Category:    p.Category,
		Method:      p.Method,
		FeeAmount:   p.FeeAmount,
		Status:      models.ConsultationStatusRequested,
		Payment:     models.PaymentStatusPending,
		Metadata:    p.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	metadataJSON, err := json.Marshal(c.Metadata)
	if err != nil {
		metadataJSON = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO consultations (
			id, requester_id, topic, details, category, method, fee_amount,
			status, payment_status, metadata, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		c.ID, c.RequesterID, c.Topic, c.Details, c.Category, c.Method,
		c.FeeAmount, c.Status, c.Payment, metadataJSON, now,
	)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("insert consultation", err)
	}
	return c, nil
}

// GetByID fetches a consultation. Missing rows map to a not-found error.
func (s *ConsultationStore) GetByID(ctx context.Context, id string) (*models.Consultation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+consultationColumns+`
		FROM consultations WHERE id = $1`, id)
	return scanConsultation(row, id)
}

// GetStatus fetches only the status column. Backs the poller's status
// query, which must stay cheap and side-effect free.
func (s *ConsultationStore) GetStatus(ctx context.Context, id string) (string, error) {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM consultations WHERE id = $1`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return "", errors.NewConsultationNotFoundError(id)
	}
	if err != nil {
		return "", errors.NewQueryExecutionFailedError("get consultation status", err)
	}
	return status, nil
}

// ListByRequester returns the requester's consultations, newest first.
func (s *ConsultationStore) ListByRequester(ctx context.Context, requesterID string, statuses []string, limit int) ([]models.ConsultationSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, topic, status, consultant_id, scheduled_at, created_at
		FROM consultations
		WHERE requester_id = $1`
	args := []interface{}{requesterID}
	if len(statuses) > 0 {
		query += ` AND status = ANY($2)`
		args = append(args, pq.Array(statuses))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list consultations", err)
	}
	defer rows.Close()

	var result []models.ConsultationSummary
	for rows.Next() {
		var item models.ConsultationSummary
		var consultantID sql.NullString
		var scheduledAt sql.NullTime
		if err := rows.Scan(&item.ID, &item.Topic, &item.Status, &consultantID, &scheduledAt, &item.CreatedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan consultation row", err)
		}
		if consultantID.Valid {
			item.ConsultantID = &consultantID.String
		}
		if scheduledAt.Valid {
			item.ScheduledAt = &scheduledAt.Time
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("list consultations", err)
	}
	return result, nil
}

// ListOpenRequests returns consultations waiting for a consultant.
func (s *ConsultationStore) ListOpenRequests(ctx context.Context, limit int) ([]models.ConsultationSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, topic, status, consultant_id, scheduled_at, created_at
		FROM consultations
		WHERE status = $1
		ORDER BY created_at ASC LIMIT %d`, limit),
		models.ConsultationStatusRequested)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list open requests", err)
	}
	defer rows.Close()

	var result []models.ConsultationSummary
	for rows.Next() {
		var item models.ConsultationSummary
		var consultantID sql.NullString
		var scheduledAt sql.NullTime
		if err := rows.Scan(&item.ID, &item.Topic, &item.Status, &consultantID, &scheduledAt, &item.CreatedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan consultation row", err)
		}
		if consultantID.Valid {
			item.ConsultantID = &consultantID.String
		}
		if scheduledAt.Valid {
			item.ScheduledAt = &scheduledAt.Time
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("list open requests", err)
	}
	return result, nil
}

// ApplyTransition persists a validated transition with an optimistic
// status compare. The WHERE clause pins the status the transition was
// computed from; zero affected rows means another actor won the race and
// the caller gets a version conflict.
func (s *ConsultationStore) ApplyTransition(ctx context.Context, id string, t *lifecycle.Transition) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE consultations SET
			status = $1,
			consultant_id = COALESCE($2, consultant_id),
			scheduled_at = COALESCE($3, scheduled_at),
			cancel_reason = CASE WHEN $4 <> '' THEN $4 ELSE cancel_reason END,
			reject_reason = CASE WHEN $5 <> '' THEN $5 ELSE reject_reason END,
			updated_at = $6
		WHERE id = $7 AND status = $8`,
		t.To, t.ConsultantID, t.ScheduledAt, t.Reason, t.RejectReason, time.Now().UTC(), id, t.From,
	)
	if err != nil {
		return errors.NewQueryExecutionFailedError("apply transition", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewQueryExecutionFailedError("apply transition", err)
	}
	if affected == 0 {
		s.logger.Warn("transition lost optimistic status race", map[string]interface{}{
			"consultationId": id,
			"expectedStatus": t.From,
			"targetStatus":   t.To,
		})
		return errors.NewVersionConflictError(id, t.From)
	}
	return nil
}

// SetPaymentStatus records a payment collaborator update. Payment status
// is input to the lifecycle guards, never driven by them.
func (s *ConsultationStore) SetPaymentStatus(ctx context.Context, id, paymentStatus string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE consultations SET payment_status = $1, updated_at = $2
		WHERE id = $3`,
		paymentStatus, time.Now().UTC(), id)
	if err != nil {
		return errors.NewQueryExecutionFailedError("set payment status", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewQueryExecutionFailedError("set payment status", err)
	}
	if affected == 0 {
		return errors.NewConsultationNotFoundError(id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConsultation(row rowScanner, id string) (*models.Consultation, error) {
	var c models.Consultation
	var consultantID sql.NullString
	var scheduledAt sql.NullTime
	var details, category, method, cancelReason, rejectReason sql.NullString
	var feeAmount sql.NullInt64
	var metadataJSON []byte

	err := row.Scan(
		&c.ID, &c.RequesterID, &consultantID, &c.Topic, &details,
		&category, &method, &feeAmount, &c.Status, &c.Payment,
		&scheduledAt, &cancelReason, &rejectReason,
		&metadataJSON, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewConsultationNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("scan consultation", err)
	}
	if consultantID.Valid {
		c.ConsultantID = &consultantID.String
	}
	if scheduledAt.Valid {
		c.ScheduledAt = &scheduledAt.Time
	}
	c.Details = details.String
	c.Category = category.String
	c.Method = method.String
	c.FeeAmount = int(feeAmount.Int64)
	c.CancelReason = cancelReason.String
	c.RejectReason = rejectReason.String
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &c.Metadata); err != nil {
			c.Metadata = nil
		}
	}
	return &c, nil
}
