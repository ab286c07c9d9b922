// internal/workers/notification/dispatch-notification/models.go
package dispatchnotification

// Notification types emitted by the consultation workflow.
const (
	TypeRequestMatched   = "request_matched"
	TypeRequestDeclined  = "request_declined"
	TypeRequestCancelled = "request_cancelled"
	TypeSessionScheduled = "session_scheduled"
	TypePaymentRequired  = "payment_required"
	TypeRequestCompleted = "request_completed"
)

const (
	RecipientTypeWorker     = "worker"
	RecipientTypeConsultant = "consultant"
)

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

type Input struct {
	RecipientID      string                 `json:"recipientId"`
	RecipientType    string                 `json:"recipientType"`
	NotificationType string                 `json:"notificationType"`
	ConsultationID   string                 `json:"consultationId,omitempty"`
	Priority         string                 `json:"priority,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"`
	SentAt         string `json:"sentAt"`
}
