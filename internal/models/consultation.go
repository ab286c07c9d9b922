// internal/models/consultation.go
package models

import "time"

// Consultation statuses. Transitions between them are enforced by the
// lifecycle package, not by callers mutating Status directly.
const (
	ConsultationStatusRequested  = "requested"
	ConsultationStatusMatched    = "matched"
	ConsultationStatusScheduled  = "scheduled"
	ConsultationStatusInProgress = "in_progress"
	ConsultationStatusCompleted  = "completed"
	ConsultationStatusCancelled  = "cancelled"
)

// Payment statuses attached to a consultation.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusRefunded  = "refunded"
)

// Consultation categories. Informational for the lifecycle, but the match
// step keys specialty lookup on them.
const (
	CategoryVisa     = "visa"
	CategoryLabor    = "labor"
	CategoryContract = "contract"
	CategoryBusiness = "business"
	CategoryOther    = "other"
)

// Consultation delivery methods.
const (
	MethodEmail    = "email"
	MethodDocument = "document"
	MethodCall     = "call"
	MethodVideo    = "video"
)

// ValidCategory reports whether s is a known consultation category.
func ValidCategory(s string) bool {
	switch s {
	case CategoryVisa, CategoryLabor, CategoryContract, CategoryBusiness, CategoryOther:
		return true
	}
	return false
}

// ValidMethod reports whether s is a known consultation method.
func ValidMethod(s string) bool {
	switch s {
	case MethodEmail, MethodDocument, MethodCall, MethodVideo:
		return true
	}
	return false
}

// Consultation represents a consultation request between a foreign worker
// and a consultant.
type Consultation struct {
	ID           string                 `json:"id" db:"id"`
	RequesterID  string                 `json:"requesterId" db:"requester_id"`
	ConsultantID *string                `json:"consultantId,omitempty" db:"consultant_id"`
	Topic        string                 `json:"topic" db:"topic"`
	Details      string                 `json:"details,omitempty" db:"details"`
	Category     string                 `json:"category" db:"category"`
	Method       string                 `json:"method" db:"method"`
	FeeAmount    int                    `json:"feeAmount" db:"fee_amount"`
	Status       string                 `json:"status" db:"status"`
	Payment      string                 `json:"paymentStatus" db:"payment_status"`
	ScheduledAt  *time.Time             `json:"scheduledAt,omitempty" db:"scheduled_at"`
	CancelReason string                 `json:"cancelReason,omitempty" db:"cancel_reason"`
	RejectReason string                 `json:"rejectReason,omitempty" db:"reject_reason"`
	Metadata     map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt    time.Time              `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time              `json:"updatedAt" db:"updated_at"`
}

// IsTerminal reports whether the consultation can no longer change status.
func (c *Consultation) IsTerminal() bool {
	return c.Status == ConsultationStatusCompleted || c.Status == ConsultationStatusCancelled
}

// ConsultationSummary is the trimmed representation returned by listing
// operations.
type ConsultationSummary struct {
	ID           string     `json:"id"`
	Topic        string     `json:"topic"`
	Status       string     `json:"status"`
	ConsultantID *string    `json:"consultantId,omitempty"`
	ScheduledAt  *time.Time `json:"scheduledAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}
