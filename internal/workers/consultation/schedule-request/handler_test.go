// internal/workers/consultation/schedule-request/handler_test.go
package schedulerequest

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consultation-workers/internal/common/errors"
	"consultation-workers/internal/common/logger"
	"consultation-workers/internal/models"
	"consultation-workers/internal/store"
)

var consultationColumns = []string{
	"id", "requester_id", "consultant_id", "topic", "details", "category",
	"method", "fee_amount", "status", "payment_status", "scheduled_at",
	"cancel_reason", "reject_reason", "metadata", "created_at", "updated_at",
}

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	log := logger.NewTestLogger(t)
	handler := NewHandler(
		LoadConfig(),
		store.NewConsultationStore(db, log),
		store.NewStatusCache(redisClient, time.Second, log),
		log,
	)
	return handler, mock
}

func expectLookup(mock sqlmock.Sqlmock, id, status string, consultantID interface{}) {
	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT(.|\s)+FROM consultations WHERE id`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(consultationColumns).AddRow(
			id, "worker-001", consultantID, "visa renewal", "",
			models.CategoryVisa, models.MethodVideo, 50000, status,
			models.PaymentStatusPending, nil, nil, nil, []byte(`{}`), now, now,
		))
}

func TestHandlerExecuteSuccess(t *testing.T) {
	handler, mock := newTestHandler(t)

	expectLookup(mock, "consult-001", models.ConsultationStatusMatched, "consultant-001")
	mock.ExpectExec(`UPDATE consultations SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := handler.Execute(context.Background(), &Input{
		ConsultationID: "consult-001",
		ConsultantID:   "consultant-001",
		ScheduledAt:    "2026-09-15T10:00:00Z",
	})

	require.NoError(t, err)
	assert.Equal(t, models.ConsultationStatusScheduled, output.Status)
	assert.Equal(t, "2026-09-15T10:00:00Z", output.ScheduledAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlerExecuteBadTimestamp(t *testing.T) {
	handler, _ := newTestHandler(t)

	_, err := handler.Execute(context.Background(), &Input{
		ConsultationID: "consult-001",
		ConsultantID:   "consultant-001",
		ScheduledAt:    "next tuesday",
	})

	assert.Equal(t, errors.ErrCodeInvalidInput, errors.CodeOf(err))
}

func TestHandlerExecuteUnassignedConsultant(t *testing.T) {
	handler, mock := newTestHandler(t)

	expectLookup(mock, "consult-001", models.ConsultationStatusMatched, "consultant-001")

	_, err := handler.Execute(context.Background(), &Input{
		ConsultationID: "consult-001",
		ConsultantID:   "consultant-999",
		ScheduledAt:    "2026-09-15T10:00:00Z",
	})

	assert.Equal(t, errors.ErrCodeWrongRole, errors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlerExecuteWrongState(t *testing.T) {
	handler, mock := newTestHandler(t)

	expectLookup(mock, "consult-001", models.ConsultationStatusRequested, nil)

	_, err := handler.Execute(context.Background(), &Input{
		ConsultationID: "consult-001",
		ConsultantID:   "consultant-001",
		ScheduledAt:    "2026-09-15T10:00:00Z",
	})

	assert.Equal(t, errors.ErrCodeWrongState, errors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
