// internal/workers/consultation/cancel-request/handler_test.go
package cancelrequest

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

func TestHandlerExecuteCancelRequested(t *testing.T) {
	handler, mock := newTestHandler(t)

	expectLookup(mock, "consult-001", models.ConsultationStatusRequested, nil)
	mock.ExpectExec(`UPDATE consultations SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := handler.Execute(context.Background(), &Input{
		ConsultationID: "consult-001",
		ActorID:        "worker-001",
		ActorRole:      models.RoleWorker,
		Reason:         "no longer needed",
	})

	require.NoError(t, err)
	assert.Equal(t, models.ConsultationStatusCancelled, output.Status)
	assert.False(t, output.NotifyConsultant)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlerExecuteCancelMatchedNotifiesConsultant(t *testing.T) {
	handler, mock := newTestHandler(t)

	expectLookup(mock, "consult-001", models.ConsultationStatusMatched, "consultant-001")
	mock.ExpectExec(`UPDATE consultations SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := handler.Execute(context.Background(), &Input{
		ConsultationID: "consult-001",
		ActorID:        "worker-001",
		ActorRole:      models.RoleWorker,
		Reason:         "resolved elsewhere",
	})

	require.NoError(t, err)
	assert.Equal(t, models.ConsultationStatusCancelled, output.Status)
	assert.True(t, output.NotifyConsultant)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlerExecuteCancelWindowClosed(t *testing.T) {
	handler, mock := newTestHandler(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT(.|\s)+FROM consultations WHERE id`).
		WithArgs("consult-001").
		WillReturnRows(sqlmock.NewRows(consultationColumns).AddRow(
			"consult-001", "worker-001", "consultant-001", "visa renewal", "",
			models.CategoryVisa, models.MethodVideo, 50000,
			models.ConsultationStatusScheduled, models.PaymentStatusCompleted,
			now.Add(24*time.Hour), nil, nil, []byte(`{}`), now, now,
		))

	_, err := handler.Execute(context.Background(), &Input{
		ConsultationID: "consult-001",
		ActorID:        "worker-001",
		ActorRole:      models.RoleWorker,
	})

	assert.Equal(t, errors.ErrCodeCancelWindowClosed, errors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlerExecuteOnlyRequesterMayCancel(t *testing.T) {
	handler, mock := newTestHandler(t)

	expectLookup(mock, "consult-001", models.ConsultationStatusMatched, "consultant-001")

	_, err := handler.Execute(context.Background(), &Input{
		ConsultationID: "consult-001",
		ActorID:        "consultant-001",
		ActorRole:      models.RoleConsultant,
	})

	assert.Equal(t, errors.ErrCodeWrongRole, errors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
