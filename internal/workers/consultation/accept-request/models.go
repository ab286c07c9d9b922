// internal/workers/consultation/accept-request/models.go
package acceptrequest

type Input struct {
	ConsultationID string `json:"consultationId"`
	ConsultantID   string `json:"consultantId"`
}

type Output struct {
	ConsultationID string `json:"consultationId"`
	Status         string `json:"status"`
	ConsultantID   string `json:"consultantId"`
	UpdatedAt      string `json:"updatedAt"` // ISO 8601
}
