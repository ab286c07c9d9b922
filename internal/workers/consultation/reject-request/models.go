// internal/workers/consultation/reject-request/models.go
package rejectrequest

type Input struct {
	ConsultationID string `json:"consultationId"`
	ConsultantID   string `json:"consultantId"`
	Reason         string `json:"reason"`
}

type Output struct {
	ConsultationID string `json:"consultationId"`
	Status         string `json:"status"`
	Reason         string `json:"reason"`
	EventKind      string `json:"eventKind"`
	UpdatedAt      string `json:"updatedAt"` // ISO 8601
}
