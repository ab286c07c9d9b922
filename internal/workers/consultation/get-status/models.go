// internal/workers/consultation/get-status/models.go
package getstatus

type Input struct {
	ConsultationID string `json:"consultationId"`
	SessionToken   string `json:"sessionToken,omitempty"`
}

type Output struct {
	ConsultationID string `json:"consultationId"`
	Status         string `json:"status"`
	FromCache      bool   `json:"fromCache"`
	FetchedAt      string `json:"fetchedAt"` // ISO 8601
}
