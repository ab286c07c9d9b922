// internal/workers/consultation/open-channel/models.go
package openchannel

type Input struct {
	ConsultationID string `json:"consultationId"`
	ActorID        string `json:"actorId"`
	ActorRole      string `json:"actorRole"`
}

type Output struct {
	ConsultationID string `json:"consultationId"`
	Status         string `json:"status"`
	ChannelOpened  bool   `json:"channelOpened"`
	UpdatedAt      string `json:"updatedAt"` // ISO 8601
}
