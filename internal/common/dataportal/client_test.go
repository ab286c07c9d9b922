// internal/common/dataportal/client_test.go
package dataportal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `{
	"response": {
		"body": {
			"totalCount": 2,
			"pageNo": 1,
			"items": [
				{
					"pblancId": "prog-001",
					"pblancNm": "외국인 근로자 한국어 교육",
					"pldirSportRealmLclasCodeNm": "education",
					"jrsdInsttNm": "고용노동부",
					"bsnsSumryCn": "기초 한국어 교육 과정",
					"trgetVisaCodes": "E-7, E-9",
					"areaNm": "서울",
					"pblancUrl": "https://example.go.kr/apply",
					"reqstEndDe": "20261231"
				},
				{
					"pblancId": "prog-002",
					"pblancNm": "전국 취업 상담",
					"areaNm": "전국",
					"trgetVisaCodes": "",
					"reqstEndDe": ""
				}
			]
		}
	}
}`

func TestFetchPrograms(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/supportPrograms", r.URL.Path)
		query := r.URL.Query()
		assert.Equal(t, "test-key", query.Get("serviceKey"))
		assert.Equal(t, "1", query.Get("pageNo"))
		assert.Equal(t, "100", query.Get("numOfRows"))
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	programs, total, err := client.FetchPrograms(context.Background(), 1, 100)

	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, programs, 2)

	first := programs[0]
	assert.Equal(t, "prog-001", first.ID)
	assert.Equal(t, []string{"E-7", "E-9"}, first.EligibleVisaTypes)
	assert.Equal(t, "서울", first.Location)
	require.NotNil(t, first.Deadline)
	assert.Equal(t, 2026, first.Deadline.Year())

	second := programs[1]
	assert.Empty(t, second.EligibleVisaTypes)
	assert.Nil(t, second.Deadline)
	assert.Equal(t, "전국", second.Location)
}

func TestFetchProgramsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, _, err := client.FetchPrograms(context.Background(), 1, 100)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}
