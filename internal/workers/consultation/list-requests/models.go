// internal/workers/consultation/list-requests/models.go
package listrequests

import "consultation-workers/internal/models"

type Input struct {
	RequesterID string   `json:"requesterId,omitempty"`
	Statuses    []string `json:"statuses,omitempty"`
	OpenOnly    bool     `json:"openOnly,omitempty"`
	Limit       int      `json:"limit,omitempty"`
}

type Output struct {
	Items []models.ConsultationSummary `json:"items"`
	Count int                          `json:"count"`
}
