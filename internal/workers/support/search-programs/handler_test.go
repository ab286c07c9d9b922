// internal/workers/support/search-programs/handler_test.go
package searchprograms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consultation-workers/internal/common/errors"
	"consultation-workers/internal/common/logger"
	"consultation-workers/internal/models"
	"consultation-workers/internal/search"
)

type fakeSearcher struct {
	lastQuery search.Query
	result    *search.Result
	err       error
}

func (f *fakeSearcher) Search(_ context.Context, q search.Query) (*search.Result, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestHandler(t *testing.T, searcher *fakeSearcher) *Handler {
	t.Helper()
	return NewHandler(LoadConfig(), searcher, logger.NewTestLogger(t))
}

func TestHandlerExecuteSuccess(t *testing.T) {
	searcher := &fakeSearcher{
		result: &search.Result{
			Programs: []models.SupportProgram{
				{ID: "prog-001", Name: "한국어 교육", Location: "서울"},
				{ID: "prog-002", Name: "직업 훈련", Location: models.NationwideLocation},
			},
			TotalHits: 2,
			Took:      7,
		},
	}
	handler := newTestHandler(t, searcher)

	output, err := handler.Execute(context.Background(), &Input{
		Keywords: "교육",
		Region:   "서울",
		VisaType: "E-9",
	})

	require.NoError(t, err)
	assert.Len(t, output.Programs, 2)
	assert.Equal(t, 2, output.TotalHits)
	assert.Equal(t, 1, output.Page)
	assert.Equal(t, 20, output.PageSize)
	assert.Equal(t, "교육", searcher.lastQuery.Keywords)
	assert.Equal(t, "E-9", searcher.lastQuery.VisaType)
	assert.Equal(t, 0, searcher.lastQuery.From)
}

func TestHandlerExecutePagination(t *testing.T) {
	searcher := &fakeSearcher{result: &search.Result{TotalHits: 120}}
	handler := newTestHandler(t, searcher)

	output, err := handler.Execute(context.Background(), &Input{
		Page:     3,
		PageSize: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, output.Page)
	assert.Equal(t, 10, output.PageSize)
	assert.Equal(t, 20, searcher.lastQuery.From)
	assert.Equal(t, 10, searcher.lastQuery.Size)
	assert.NotNil(t, output.Programs)
	assert.Empty(t, output.Programs)
}

func TestHandlerExecutePageSizeCapped(t *testing.T) {
	searcher := &fakeSearcher{result: &search.Result{}}
	handler := newTestHandler(t, searcher)

	output, err := handler.Execute(context.Background(), &Input{PageSize: 500})

	require.NoError(t, err)
	assert.Equal(t, 100, output.PageSize)
	assert.Equal(t, 100, searcher.lastQuery.Size)
}

func TestHandlerExecuteSearchFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.NewSearchQueryFailedError("support-programs", assert.AnError)}
	handler := newTestHandler(t, searcher)

	_, err := handler.Execute(context.Background(), &Input{Keywords: "교육"})

	assert.Equal(t, errors.ErrCodeSearchQueryFailed, errors.CodeOf(err))
}
