// internal/workers/consultation/cancel-request/models.go
package cancelrequest

type Input struct {
	ConsultationID string `json:"consultationId"`
	ActorID        string `json:"actorId"`
	ActorRole      string `json:"actorRole"`
	Reason         string `json:"reason,omitempty"`
}

type Output struct {
	ConsultationID   string `json:"consultationId"`
	Status           string `json:"status"`
	NotifyConsultant bool   `json:"notifyConsultant"`
	UpdatedAt        string `json:"updatedAt"` // ISO 8601
}
