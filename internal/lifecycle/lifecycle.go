// internal/lifecycle/lifecycle.go
//
// Package lifecycle implements the consultation status state machine.
// Transition functions are pure: they validate the attempted edge against
// the current consultation and actor, and return the resulting status plus
// side effects for the caller to apply. Persistence happens elsewhere.
package lifecycle

import (
	"strings"
	"time"

	"consultation-workers/internal/common/errors"
	"consultation-workers/internal/models"
)

// Actor identifies who is attempting a transition.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// Effect names a side effect the caller must carry out after the
// transition is persisted.
type Effect string

const (
	EffectNotifyRequester  Effect = "notify_requester"
	EffectNotifyConsultant Effect = "notify_consultant"
	EffectReleaseSlot      Effect = "release_slot"
	EffectOpenChatChannel  Effect = "open_chat_channel"
)

// Transition is the validated outcome of a lifecycle operation.
type Transition struct {
	From         string     `json:"from"`
	To           string     `json:"to"`
	ConsultantID *string    `json:"consultantId,omitempty"`
	ScheduledAt  *time.Time `json:"scheduledAt,omitempty"`
	Reason       string     `json:"reason,omitempty"`
	RejectReason string     `json:"rejectReason,omitempty"`
	Effects      []Effect   `json:"effects,omitempty"`
}

// Accept moves a consultation from requested to matched, binding the
// accepting consultant. The consultant id is set exactly once here and is
// never cleared afterwards.
func Accept(c *models.Consultation, actor Actor) (*Transition, error) {
	if err := guardActive(c, "accept"); err != nil {
		return nil, err
	}
	if actor.Role != models.RoleConsultant && actor.Role != models.RoleAdmin {
		return nil, errors.NewWrongRoleError(actor.Role, "accept")
	}
	if c.Status != models.ConsultationStatusRequested {
		return nil, errors.NewWrongStateError(c.Status, "accept")
	}
	consultantID := actor.ID
	return &Transition{
		From:         c.Status,
		To:           models.ConsultationStatusMatched,
		ConsultantID: &consultantID,
		Effects:      []Effect{EffectNotifyRequester},
	}, nil
}

// Reject declines a requested consultation, cancelling it. A non-empty
// reason is required so the requester learns why; the reason travels with
// the cancellation notification. Any consultant binding is retained for
// audit history.
func Reject(c *models.Consultation, actor Actor, reason string) (*Transition, error) {
	if err := guardActive(c, "reject"); err != nil {
		return nil, err
	}
	if actor.Role != models.RoleConsultant && actor.Role != models.RoleAdmin {
		return nil, errors.NewWrongRoleError(actor.Role, "reject")
	}
	if c.Status != models.ConsultationStatusRequested {
		return nil, errors.NewWrongStateError(c.Status, "reject")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, errors.NewRejectReasonMissingError()
	}
	return &Transition{
		From:         c.Status,
		To:           models.ConsultationStatusCancelled,
		RejectReason: reason,
		Effects:      []Effect{EffectNotifyRequester},
	}, nil
}

// Cancel moves a consultation to cancelled. Only the original requester may
// cancel, and only while the request is still requested or matched. Once a
// session is scheduled the cancel window is closed.
func Cancel(c *models.Consultation, actor Actor, reason string) (*Transition, error) {
	if err := guardActive(c, "cancel"); err != nil {
		return nil, err
	}
	if actor.ID != c.RequesterID {
		return nil, errors.NewWrongRoleError(actor.Role, "cancel")
	}
	switch c.Status {
	case models.ConsultationStatusRequested, models.ConsultationStatusMatched:
		// cancellable
	case models.ConsultationStatusScheduled, models.ConsultationStatusInProgress:
		return nil, errors.NewCancelWindowClosedError(c.Status)
	default:
		return nil, errors.NewWrongStateError(c.Status, "cancel")
	}
	effects := []Effect{}
	if c.ConsultantID != nil {
		effects = append(effects, EffectNotifyConsultant, EffectReleaseSlot)
	}
	return &Transition{
		From:    c.Status,
		To:      models.ConsultationStatusCancelled,
		Reason:  reason,
		Effects: effects,
	}, nil
}

// Schedule moves a matched consultation to scheduled with a concrete
// session time. The acting consultant must be the one bound at accept.
func Schedule(c *models.Consultation, actor Actor, at time.Time) (*Transition, error) {
	if err := guardActive(c, "schedule"); err != nil {
		return nil, err
	}
	if c.Status != models.ConsultationStatusMatched {
		return nil, errors.NewWrongStateError(c.Status, "schedule")
	}
	if err := requireBoundConsultant(c, actor, "schedule"); err != nil {
		return nil, err
	}
	if at.IsZero() {
		return nil, errors.NewInvalidInputError("scheduledAt: session time is required")
	}
	return &Transition{
		From:        c.Status,
		To:          models.ConsultationStatusScheduled,
		ScheduledAt: &at,
		Effects:     []Effect{EffectNotifyRequester},
	}, nil
}

// OpenChannel moves a matched or scheduled consultation to in_progress.
// Payment must be completed before the chat channel opens.
func OpenChannel(c *models.Consultation, actor Actor) (*Transition, error) {
	if err := guardActive(c, "open_channel"); err != nil {
		return nil, err
	}
	if c.Status != models.ConsultationStatusMatched && c.Status != models.ConsultationStatusScheduled {
		return nil, errors.NewWrongStateError(c.Status, "open_channel")
	}
	if !isParticipant(c, actor) {
		return nil, errors.NewWrongRoleError(actor.Role, "open_channel")
	}
	if c.Payment != models.PaymentStatusCompleted {
		return nil, errors.NewPaymentIncompleteError(c.Payment)
	}
	return &Transition{
		From:    c.Status,
		To:      models.ConsultationStatusInProgress,
		Effects: []Effect{EffectOpenChatChannel},
	}, nil
}

// Complete moves a scheduled or in-progress consultation to completed.
// Only the bound consultant or an administrator may complete a session.
func Complete(c *models.Consultation, actor Actor) (*Transition, error) {
	if err := guardActive(c, "complete"); err != nil {
		return nil, err
	}
	if c.Status != models.ConsultationStatusScheduled && c.Status != models.ConsultationStatusInProgress {
		return nil, errors.NewWrongStateError(c.Status, "complete")
	}
	if err := requireBoundConsultant(c, actor, "complete"); err != nil {
		return nil, err
	}
	return &Transition{
		From:    c.Status,
		To:      models.ConsultationStatusCompleted,
		Effects: []Effect{EffectNotifyRequester},
	}, nil
}

// CanEnterChannel reports whether the consultation's chat channel is open
// to the given actor right now. Entry requires completed payment and a
// scheduled or in-progress consultation. Read-only companion of OpenChannel.
func CanEnterChannel(c *models.Consultation, actor Actor) bool {
	if c.Status != models.ConsultationStatusScheduled && c.Status != models.ConsultationStatusInProgress {
		return false
	}
	if c.Payment != models.PaymentStatusCompleted {
		return false
	}
	return isParticipant(c, actor)
}

// Apply mutates the consultation in memory to reflect a validated
// transition. The store layer persists the same change with an optimistic
// status check.
func Apply(c *models.Consultation, t *Transition) {
	c.Status = t.To
	if t.ConsultantID != nil {
		c.ConsultantID = t.ConsultantID
	}
	if t.ScheduledAt != nil {
		c.ScheduledAt = t.ScheduledAt
	}
	if t.To == models.ConsultationStatusCancelled && t.Reason != "" {
		c.CancelReason = t.Reason
	}
	if t.RejectReason != "" {
		c.RejectReason = t.RejectReason
	}
	c.UpdatedAt = time.Now().UTC()
}

// CheckInvariants validates structural invariants that must hold for any
// stored consultation, regardless of which edge produced it.
func CheckInvariants(c *models.Consultation) error {
	switch c.Status {
	case models.ConsultationStatusRequested, models.ConsultationStatusCancelled:
		// consultant binding optional (cancel can happen before or after match)
	case models.ConsultationStatusMatched, models.ConsultationStatusScheduled,
		models.ConsultationStatusInProgress, models.ConsultationStatusCompleted:
		if c.ConsultantID == nil || *c.ConsultantID == "" {
			return errors.NewConsultantNotFoundError(c.ID)
		}
	default:
		return errors.NewInvalidInputError("unknown consultation status: " + c.Status)
	}
	if c.Status == models.ConsultationStatusScheduled && c.ScheduledAt == nil {
		return errors.NewInvalidInputError("scheduled consultation has no session time")
	}
	return nil
}

func guardActive(c *models.Consultation, attempted string) error {
	if c == nil {
		return errors.NewConsultationNotFoundError("")
	}
	if c.IsTerminal() {
		return errors.NewWrongStateError(c.Status, attempted)
	}
	return nil
}

func requireBoundConsultant(c *models.Consultation, actor Actor, attempted string) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.Role != models.RoleConsultant {
		return errors.NewWrongRoleError(actor.Role, attempted)
	}
	if c.ConsultantID == nil || *c.ConsultantID != actor.ID {
		return errors.NewWrongRoleError(actor.Role, attempted)
	}
	return nil
}

func isParticipant(c *models.Consultation, actor Actor) bool {
	if actor.ID == c.RequesterID {
		return true
	}
	return c.ConsultantID != nil && *c.ConsultantID == actor.ID
}
