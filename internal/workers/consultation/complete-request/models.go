// internal/workers/consultation/complete-request/models.go
package completerequest

type Input struct {
	ConsultationID string `json:"consultationId"`
	ConsultantID   string `json:"consultantId"`
	Summary        string `json:"summary,omitempty"`
}

type Output struct {
	ConsultationID string `json:"consultationId"`
	Status         string `json:"status"`
	EventKind      string `json:"eventKind"`
	CompletedAt    string `json:"completedAt"` // ISO 8601
}
