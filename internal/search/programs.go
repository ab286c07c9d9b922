// internal/search/programs.go
//
// Package search queries the support-program index. The index is fed by
// the data portal sync; this side only reads.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"consultation-workers/internal/common/errors"
	"consultation-workers/internal/common/logger"
	"consultation-workers/internal/models"
)

// Query describes one program search.
type Query struct {
	Keywords string
	Category string
	Region   string
	VisaType string
	From     int
	Size     int
}

// Result holds decoded hits plus search metadata.
type Result struct {
	Programs  []models.SupportProgram
	TotalHits int
	Took      int
}

type ProgramSearch struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewProgramSearch(client *elasticsearch.Client, index string, log logger.Logger) *ProgramSearch {
	if index == "" {
		index = "support-programs"
	}
	return &ProgramSearch{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "program-search"}),
	}
}

// Search runs the query and decodes matching programs.
func (s *ProgramSearch) Search(ctx context.Context, q Query) (*Result, error) {
	if q.Size <= 0 {
		q.Size = 20
	}

	body, err := json.Marshal(buildProgramQuery(q))
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(s.index, err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		From:  &q.From,
		Size:  &q.Size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewSearchTimeoutError(s.index)
		}
		return nil, errors.NewSearchQueryFailedError(s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, errors.NewSearchQueryFailedError(s.index,
			fmt.Errorf("search returned %s: %s", res.Status(), string(raw)))
	}

	return decodeSearchResponse(res.Body)
}

// buildProgramQuery assembles the bool query. Keyword search is a
// multi_match over name/description; the rest are filters.
func buildProgramQuery(q Query) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if q.Keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Keywords,
				"fields": []string{"name^3", "description^2", "agency"},
				"type":   "best_fields",
			},
		})
	}
	if q.Category != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"category": q.Category},
		})
	}
	if q.Region != "" {
		// Nationwide programs always match a region-filtered search.
		filterClauses = append(filterClauses, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"location": models.NationwideLocation}},
					map[string]interface{}{"match": map[string]interface{}{"location": q.Region}},
				},
				"minimum_should_match": 1,
			},
		})
	}
	if q.VisaType != "" {
		// Programs without visa restrictions stay visible.
		filterClauses = append(filterClauses, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"eligibleVisaTypes": q.VisaType}},
					map[string]interface{}{
						"bool": map[string]interface{}{
							"must_not": []interface{}{
								map[string]interface{}{"exists": map[string]interface{}{"field": "eligibleVisaTypes"}},
							},
						},
					},
				},
				"minimum_should_match": 1,
			},
		})
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery := map[string]interface{}{"must": mustClauses}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}
}

func decodeSearchResponse(body io.Reader) (*Result, error) {
	var response struct {
		Took int `json:"took"`
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string                `json:"_id"`
				Source models.SupportProgram `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, errors.NewSearchQueryFailedError("", fmt.Errorf("decode search response: %w", err))
	}

	result := &Result{
		TotalHits: response.Hits.Total.Value,
		Took:      response.Took,
		Programs:  make([]models.SupportProgram, 0, len(response.Hits.Hits)),
	}
	for _, hit := range response.Hits.Hits {
		program := hit.Source
		if program.ID == "" {
			program.ID = hit.ID
		}
		result.Programs = append(result.Programs, program)
	}
	return result, nil
}
