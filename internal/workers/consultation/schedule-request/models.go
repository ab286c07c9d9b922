// internal/workers/consultation/schedule-request/models.go
package schedulerequest

type Input struct {
	ConsultationID string `json:"consultationId"`
	ConsultantID   string `json:"consultantId"`
	ScheduledAt    string `json:"scheduledAt"` // ISO 8601
}

type Output struct {
	ConsultationID string `json:"consultationId"`
	Status         string `json:"status"`
	ScheduledAt    string `json:"scheduledAt"` // ISO 8601
	UpdatedAt      string `json:"updatedAt"`   // ISO 8601
}
