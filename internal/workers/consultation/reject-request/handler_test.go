// internal/workers/consultation/reject-request/handler_test.go
package rejectrequest

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
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

	log := logger.NewTestLogger(t)
	return NewHandler(LoadConfig(), store.NewConsultationStore(db, log), log), mock
}

func expectConsultationLookup(mock sqlmock.Sqlmock, id, status string) {
	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT(.|\s)+FROM consultations WHERE id`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(consultationColumns).AddRow(
			id, "worker-001", nil, "visa renewal", "",
			models.CategoryVisa, models.MethodVideo, 50000, status,
			models.PaymentStatusPending, nil, nil, nil, []byte(`{}`), now, now,
		))
}

func TestHandlerExecuteSuccess(t *testing.T) {
	handler, mock := newTestHandler(t)

	expectConsultationLookup(mock, "consult-001", models.ConsultationStatusRequested)
	mock.ExpectExec(`UPDATE consultations SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := handler.Execute(context.Background(), &Input{
		ConsultationID: "consult-001",
		ConsultantID:   "consultant-001",
		Reason:         "outside my specialty",
	})

	require.NoError(t, err)
	assert.Equal(t, models.ConsultationStatusCancelled, output.Status)
	assert.Equal(t, "outside my specialty", output.Reason)
	assert.Equal(t, "request_declined", output.EventKind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlerExecuteMissingReason(t *testing.T) {
	handler, mock := newTestHandler(t)

	expectConsultationLookup(mock, "consult-001", models.ConsultationStatusRequested)

	_, err := handler.Execute(context.Background(), &Input{
		ConsultationID: "consult-001",
		ConsultantID:   "consultant-001",
		Reason:         "  ",
	})

	assert.Equal(t, errors.ErrCodeRejectReasonMissing, errors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlerExecuteWrongState(t *testing.T) {
	handler, mock := newTestHandler(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT(.|\s)+FROM consultations WHERE id`).
		WithArgs("consult-001").
		WillReturnRows(sqlmock.NewRows(consultationColumns).AddRow(
			"consult-001", "worker-001", "consultant-002", "visa renewal", "",
			models.CategoryVisa, models.MethodVideo, 50000,
			models.ConsultationStatusScheduled, models.PaymentStatusCompleted,
			now.Add(24*time.Hour), nil, nil, []byte(`{}`), now, now,
		))

	_, err := handler.Execute(context.Background(), &Input{
		ConsultationID: "consult-001",
		ConsultantID:   "consultant-001",
		Reason:         "busy",
	})

	assert.Equal(t, errors.ErrCodeWrongState, errors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlerExecuteNotFound(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT(.|\s)+FROM consultations WHERE id`).
		WithArgs("consult-404").
		WillReturnRows(sqlmock.NewRows(consultationColumns))

	_, err := handler.Execute(context.Background(), &Input{
		ConsultationID: "consult-404",
		ConsultantID:   "consultant-001",
		Reason:         "busy",
	})

	assert.Equal(t, errors.ErrCodeConsultationNotFound, errors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
