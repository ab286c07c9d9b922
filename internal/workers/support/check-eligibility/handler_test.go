// internal/workers/support/check-eligibility/handler_test.go
package checkeligibility

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consultation-workers/internal/common/errors"
	"consultation-workers/internal/common/logger"
	"consultation-workers/internal/eligibility"
	"consultation-workers/internal/models"
	"consultation-workers/internal/store"
)

var programColumns = []string{
	"id", "name", "category", "agency", "description", "eligible_visa_types",
	"location", "application_url", "deadline", "metadata", "created_at", "updated_at",
}

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewTestLogger(t)
	handler := NewHandler(
		LoadConfig(),
		store.NewProgramStore(db, log),
		eligibility.New(eligibility.DefaultConfig),
		log,
	)
	return handler, mock
}

func expectProgramLookup(mock sqlmock.Sqlmock, id string) {
	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT(.|\s)+FROM support_programs WHERE id`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(programColumns).AddRow(
			id, "외국인 근로자 한국어 교육", "education", "고용노동부",
			"기초 한국어 교육 과정", "{E-7,E-9}", "서울",
			"https://example.go.kr/apply", nil, []byte(`{}`), now, now,
		))
}

func intPtr(v int) *int { return &v }

func TestHandlerExecuteEligible(t *testing.T) {
	handler, mock := newTestHandler(t)

	expectProgramLookup(mock, "prog-001")

	output, err := handler.Execute(context.Background(), &Input{
		ProgramID: "prog-001",
		Profile: models.EligibilityProfile{
			UserID:   "worker-001",
			VisaType: "E-9",
			Region:   "서울특별시 구로구",
			Age:      intPtr(30),
		},
	})

	require.NoError(t, err)
	assert.True(t, output.Eligible)
	assert.Equal(t, "prog-001", output.ProgramID)
	assert.Len(t, output.Criteria, 3)
	for _, criterion := range output.Criteria {
		assert.True(t, criterion.Passed, criterion.Label)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlerExecuteIneligibleVisa(t *testing.T) {
	handler, mock := newTestHandler(t)

	expectProgramLookup(mock, "prog-001")

	output, err := handler.Execute(context.Background(), &Input{
		ProgramID: "prog-001",
		Profile: models.EligibilityProfile{
			UserID:   "worker-002",
			VisaType: "D-2",
			Region:   "서울",
			Age:      intPtr(25),
		},
	})

	require.NoError(t, err)
	assert.False(t, output.Eligible)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlerExecuteEmptyProfileSkipsAllCriteria(t *testing.T) {
	handler, mock := newTestHandler(t)

	expectProgramLookup(mock, "prog-001")

	output, err := handler.Execute(context.Background(), &Input{
		ProgramID: "prog-001",
		Profile:   models.EligibilityProfile{UserID: "worker-003"},
	})

	require.NoError(t, err)
	assert.True(t, output.Eligible)
	assert.Empty(t, output.Criteria)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlerExecuteProgramNotFound(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT(.|\s)+FROM support_programs WHERE id`).
		WithArgs("prog-missing").
		WillReturnRows(sqlmock.NewRows(programColumns))

	_, err := handler.Execute(context.Background(), &Input{
		ProgramID: "prog-missing",
		Profile:   models.EligibilityProfile{UserID: "worker-001"},
	})

	assert.Equal(t, errors.ErrCodeProgramNotFound, errors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlerExecuteMissingProgramID(t *testing.T) {
	handler, _ := newTestHandler(t)

	_, err := handler.Execute(context.Background(), &Input{
		Profile: models.EligibilityProfile{UserID: "worker-001"},
	})

	assert.Equal(t, errors.ErrCodeInvalidInput, errors.CodeOf(err))
}
