// internal/workers/consultation/match-consultant/handler_test.go
package matchconsultant

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

var consultantColumns = []string{
	"id", "name", "email", "phone", "specialties", "regions", "languages",
	"active", "rating", "created_at", "updated_at",
}

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewTestLogger(t)
	return NewHandler(
		LoadConfig(),
		store.NewConsultationStore(db, log),
		store.NewConsultantStore(db, log),
		log,
	), mock
}

func expectConsultationLookup(mock sqlmock.Sqlmock, id, status string) {
	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT(.|\s)+FROM consultations WHERE id`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(consultationColumns).AddRow(
			id, "worker-001", nil, "visa", "",
			models.CategoryVisa, models.MethodVideo, 50000, status,
			models.PaymentStatusPending, nil, nil, nil, []byte(`{}`), now, now,
		))
}

func TestHandlerExecuteProposesCandidates(t *testing.T) {
	handler, mock := newTestHandler(t)

	expectConsultationLookup(mock, "consult-001", models.ConsultationStatusRequested)
	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, name, email, phone, specialties`).
		WithArgs("visa", 5).
		WillReturnRows(sqlmock.NewRows(consultantColumns).
			AddRow("consultant-001", "Kim Minji", "minji@example.com", "", "{visa}", "{서울}", "{ko,en}", true, 4.9, now, now).
			AddRow("consultant-002", "Lee Junho", "junho@example.com", "", "{visa,labor}", "{전국}", "{ko}", true, 4.5, now, now))

	output, err := handler.Execute(context.Background(), &Input{ConsultationID: "consult-001"})

	require.NoError(t, err)
	assert.Equal(t, 2, output.Count)
	assert.Equal(t, "consultant-001", output.Candidates[0].ConsultantID)
	assert.Equal(t, 4.9, output.Candidates[0].Rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlerExecuteWrongState(t *testing.T) {
	handler, mock := newTestHandler(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT(.|\s)+FROM consultations WHERE id`).
		WithArgs("consult-001").
		WillReturnRows(sqlmock.NewRows(consultationColumns).AddRow(
			"consult-001", "worker-001", "consultant-001", "visa", "",
			models.CategoryVisa, models.MethodVideo, 50000,
			models.ConsultationStatusMatched, models.PaymentStatusPending,
			nil, nil, nil, []byte(`{}`), now, now,
		))

	_, err := handler.Execute(context.Background(), &Input{ConsultationID: "consult-001"})

	assert.Equal(t, errors.ErrCodeWrongState, errors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlerExecuteNoCandidates(t *testing.T) {
	handler, mock := newTestHandler(t)

	expectConsultationLookup(mock, "consult-001", models.ConsultationStatusRequested)
	mock.ExpectQuery(`SELECT id, name, email, phone, specialties`).
		WithArgs("visa", 5).
		WillReturnRows(sqlmock.NewRows(consultantColumns))

	output, err := handler.Execute(context.Background(), &Input{ConsultationID: "consult-001"})

	require.NoError(t, err)
	assert.Equal(t, 0, output.Count)
	assert.NotNil(t, output.Candidates)
	assert.NoError(t, mock.ExpectationsWereMet())
}
