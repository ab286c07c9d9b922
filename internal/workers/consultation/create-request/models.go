// internal/workers/consultation/create-request/models.go
package createrequest

type Input struct {
	RequesterID string                 `json:"requesterId"`
	Topic       string                 `json:"topic"`
	Details     string                 `json:"details,omitempty"`
	Category    string                 `json:"category"`
	Method      string                 `json:"method"`
	FeeAmount   int                    `json:"feeAmount"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	ConsultationID string `json:"consultationId"`
	Status         string `json:"status"`
	CreatedAt      string `json:"createdAt"` // ISO 8601
}
