// internal/lifecycle/lifecycle_test.go
package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consultation-workers/internal/common/errors"
	"consultation-workers/internal/models"
)

func str(s string) *string { return &s }

func consultation(status string, mods ...func(*models.Consultation)) *models.Consultation {
	c := &models.Consultation{
		ID:          "consult-001",
		RequesterID: "worker-001",
		Topic:       "visa renewal",
		Status:      status,
		Payment:     models.PaymentStatusPending,
		CreatedAt:   time.Now().Add(-time.Hour),
	}
	if status != models.ConsultationStatusRequested {
		c.ConsultantID = str("consultant-001")
	}
	if status == models.ConsultationStatusScheduled || status == models.ConsultationStatusInProgress {
		at := time.Now().Add(24 * time.Hour)
		c.ScheduledAt = &at
	}
	for _, mod := range mods {
		mod(c)
	}
	return c
}

func paid(c *models.Consultation) { c.Payment = models.PaymentStatusCompleted }

var (
	requester  = Actor{ID: "worker-001", Role: models.RoleWorker}
	consultant = Actor{ID: "consultant-001", Role: models.RoleConsultant}
	admin      = Actor{ID: "admin-001", Role: models.RoleAdmin}
)

func TestAccept(t *testing.T) {
	t.Run("binds accepting consultant on requested", func(t *testing.T) {
		c := consultation(models.ConsultationStatusRequested)
		tr, err := Accept(c, consultant)
		require.NoError(t, err)
		assert.Equal(t, models.ConsultationStatusMatched, tr.To)
		require.NotNil(t, tr.ConsultantID)
		assert.Equal(t, "consultant-001", *tr.ConsultantID)
		assert.Contains(t, tr.Effects, EffectNotifyRequester)
	})

	t.Run("rejects non-consultant actor", func(t *testing.T) {
		c := consultation(models.ConsultationStatusRequested)
		_, err := Accept(c, requester)
		assert.Equal(t, errors.ErrCodeWrongRole, errors.CodeOf(err))
	})

	t.Run("admin passes the role guard", func(t *testing.T) {
		c := consultation(models.ConsultationStatusRequested)
		tr, err := Accept(c, admin)
		require.NoError(t, err)
		assert.Equal(t, models.ConsultationStatusMatched, tr.To)
	})

	t.Run("rejects every non-requested source state", func(t *testing.T) {
		for _, status := range []string{
			models.ConsultationStatusMatched,
			models.ConsultationStatusScheduled,
			models.ConsultationStatusInProgress,
			models.ConsultationStatusCompleted,
			models.ConsultationStatusCancelled,
		} {
			_, err := Accept(consultation(status), consultant)
			assert.Equal(t, errors.ErrCodeWrongState, errors.CodeOf(err), "status %s", status)
		}
	})
}

func TestReject(t *testing.T) {
	t.Run("cancels the consultation and records the reason", func(t *testing.T) {
		c := consultation(models.ConsultationStatusRequested)
		tr, err := Reject(c, consultant, "outside my specialty")
		require.NoError(t, err)
		assert.Equal(t, models.ConsultationStatusCancelled, tr.To)
		assert.Equal(t, "outside my specialty", tr.RejectReason)
		assert.Contains(t, tr.Effects, EffectNotifyRequester)
	})

	t.Run("admin may reject on the consultant's behalf", func(t *testing.T) {
		c := consultation(models.ConsultationStatusRequested)
		tr, err := Reject(c, admin, "consultant unavailable")
		require.NoError(t, err)
		assert.Equal(t, models.ConsultationStatusCancelled, tr.To)
	})

	t.Run("requires a reason", func(t *testing.T) {
		c := consultation(models.ConsultationStatusRequested)
		_, err := Reject(c, consultant, "   ")
		assert.Equal(t, errors.ErrCodeRejectReasonMissing, errors.CodeOf(err))
	})

	t.Run("rejects non-requested state", func(t *testing.T) {
		_, err := Reject(consultation(models.ConsultationStatusMatched), consultant, "busy")
		assert.Equal(t, errors.ErrCodeWrongState, errors.CodeOf(err))
	})
}

func TestCancel(t *testing.T) {
	t.Run("requester cancels a requested consultation", func(t *testing.T) {
		c := consultation(models.ConsultationStatusRequested)
		tr, err := Cancel(c, requester, "no longer needed")
		require.NoError(t, err)
		assert.Equal(t, models.ConsultationStatusCancelled, tr.To)
		assert.Empty(t, tr.Effects)
	})

	t.Run("requester cancels a matched consultation and consultant is notified", func(t *testing.T) {
		c := consultation(models.ConsultationStatusMatched)
		tr, err := Cancel(c, requester, "resolved elsewhere")
		require.NoError(t, err)
		assert.Equal(t, models.ConsultationStatusCancelled, tr.To)
		assert.Contains(t, tr.Effects, EffectNotifyConsultant)
		assert.Contains(t, tr.Effects, EffectReleaseSlot)
	})

	t.Run("cancel window closes once scheduled", func(t *testing.T) {
		for _, status := range []string{
			models.ConsultationStatusScheduled,
			models.ConsultationStatusInProgress,
		} {
			_, err := Cancel(consultation(status), requester, "changed my mind")
			assert.Equal(t, errors.ErrCodeCancelWindowClosed, errors.CodeOf(err), "status %s", status)
		}
	})

	t.Run("only the requester may cancel", func(t *testing.T) {
		c := consultation(models.ConsultationStatusMatched)
		_, err := Cancel(c, consultant, "conflict")
		assert.Equal(t, errors.ErrCodeWrongRole, errors.CodeOf(err))
	})

	t.Run("terminal states stay terminal", func(t *testing.T) {
		for _, status := range []string{
			models.ConsultationStatusCompleted,
			models.ConsultationStatusCancelled,
		} {
			_, err := Cancel(consultation(status), requester, "again")
			assert.Equal(t, errors.ErrCodeWrongState, errors.CodeOf(err), "status %s", status)
		}
	})
}

func TestSchedule(t *testing.T) {
	sessionTime := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)

	t.Run("bound consultant schedules a matched consultation", func(t *testing.T) {
		c := consultation(models.ConsultationStatusMatched)
		tr, err := Schedule(c, consultant, sessionTime)
		require.NoError(t, err)
		assert.Equal(t, models.ConsultationStatusScheduled, tr.To)
		require.NotNil(t, tr.ScheduledAt)
		assert.True(t, tr.ScheduledAt.Equal(sessionTime))
	})

	t.Run("other consultants cannot schedule", func(t *testing.T) {
		c := consultation(models.ConsultationStatusMatched)
		other := Actor{ID: "consultant-999", Role: models.RoleConsultant}
		_, err := Schedule(c, other, sessionTime)
		assert.Equal(t, errors.ErrCodeWrongRole, errors.CodeOf(err))
	})

	t.Run("rejects zero session time", func(t *testing.T) {
		c := consultation(models.ConsultationStatusMatched)
		_, err := Schedule(c, consultant, time.Time{})
		assert.Equal(t, errors.ErrCodeInvalidInput, errors.CodeOf(err))
	})

	t.Run("only matched consultations can be scheduled", func(t *testing.T) {
		_, err := Schedule(consultation(models.ConsultationStatusRequested), consultant, sessionTime)
		assert.Equal(t, errors.ErrCodeWrongState, errors.CodeOf(err))
	})
}

func TestOpenChannel(t *testing.T) {
	t.Run("opens when payment completed", func(t *testing.T) {
		c := consultation(models.ConsultationStatusScheduled, paid)
		tr, err := OpenChannel(c, requester)
		require.NoError(t, err)
		assert.Equal(t, models.ConsultationStatusInProgress, tr.To)
		assert.Contains(t, tr.Effects, EffectOpenChatChannel)
	})

	t.Run("opens from matched once paid", func(t *testing.T) {
		c := consultation(models.ConsultationStatusMatched, paid)
		tr, err := OpenChannel(c, requester)
		require.NoError(t, err)
		assert.Equal(t, models.ConsultationStatusInProgress, tr.To)
	})

	t.Run("payment guard blocks unpaid consultations", func(t *testing.T) {
		c := consultation(models.ConsultationStatusScheduled)
		_, err := OpenChannel(c, requester)
		assert.Equal(t, errors.ErrCodePaymentIncomplete, errors.CodeOf(err))
	})

	t.Run("non-participants cannot open the channel", func(t *testing.T) {
		c := consultation(models.ConsultationStatusScheduled, paid)
		stranger := Actor{ID: "worker-999", Role: models.RoleWorker}
		_, err := OpenChannel(c, stranger)
		assert.Equal(t, errors.ErrCodeWrongRole, errors.CodeOf(err))
	})

	t.Run("requested consultations cannot open", func(t *testing.T) {
		_, err := OpenChannel(consultation(models.ConsultationStatusRequested, paid), requester)
		assert.Equal(t, errors.ErrCodeWrongState, errors.CodeOf(err))
	})
}

func TestComplete(t *testing.T) {
	t.Run("bound consultant completes an in-progress session", func(t *testing.T) {
		c := consultation(models.ConsultationStatusInProgress, paid)
		tr, err := Complete(c, consultant)
		require.NoError(t, err)
		assert.Equal(t, models.ConsultationStatusCompleted, tr.To)
	})

	t.Run("completes directly from scheduled", func(t *testing.T) {
		c := consultation(models.ConsultationStatusScheduled, paid)
		tr, err := Complete(c, consultant)
		require.NoError(t, err)
		assert.Equal(t, models.ConsultationStatusCompleted, tr.To)
	})

	t.Run("admin may complete", func(t *testing.T) {
		c := consultation(models.ConsultationStatusInProgress, paid)
		tr, err := Complete(c, admin)
		require.NoError(t, err)
		assert.Equal(t, models.ConsultationStatusCompleted, tr.To)
	})

	t.Run("requester cannot complete", func(t *testing.T) {
		c := consultation(models.ConsultationStatusInProgress, paid)
		_, err := Complete(c, requester)
		assert.Equal(t, errors.ErrCodeWrongRole, errors.CodeOf(err))
	})

	t.Run("only scheduled or in-progress sessions can complete", func(t *testing.T) {
		for _, status := range []string{
			models.ConsultationStatusRequested,
			models.ConsultationStatusMatched,
		} {
			_, err := Complete(consultation(status), consultant)
			assert.Equal(t, errors.ErrCodeWrongState, errors.CodeOf(err), "status %s", status)
		}
	})
}

// Every (status, operation) pair outside the transition table must be
// rejected with a precondition error, never silently ignored.
func TestUnlistedTransitionsRejected(t *testing.T) {
	allStatuses := []string{
		models.ConsultationStatusRequested,
		models.ConsultationStatusMatched,
		models.ConsultationStatusScheduled,
		models.ConsultationStatusInProgress,
		models.ConsultationStatusCompleted,
		models.ConsultationStatusCancelled,
	}
	allowed := map[string][]string{
		"accept":       {models.ConsultationStatusRequested},
		"reject":       {models.ConsultationStatusRequested},
		"cancel":       {models.ConsultationStatusRequested, models.ConsultationStatusMatched},
		"schedule":     {models.ConsultationStatusMatched},
		"open_channel": {models.ConsultationStatusMatched, models.ConsultationStatusScheduled},
		"complete":     {models.ConsultationStatusScheduled, models.ConsultationStatusInProgress},
	}
	attempt := func(op, status string) error {
		c := consultation(status, paid)
		var err error
		switch op {
		case "accept":
			_, err = Accept(c, consultant)
		case "reject":
			_, err = Reject(c, consultant, "reason")
		case "cancel":
			_, err = Cancel(c, requester, "reason")
		case "schedule":
			_, err = Schedule(c, consultant, time.Now().Add(time.Hour))
		case "open_channel":
			_, err = OpenChannel(c, requester)
		case "complete":
			_, err = Complete(c, consultant)
		}
		return err
	}
	for op, sources := range allowed {
		allowedSet := map[string]bool{}
		for _, s := range sources {
			allowedSet[s] = true
		}
		for _, status := range allStatuses {
			err := attempt(op, status)
			if allowedSet[status] {
				assert.NoError(t, err, "%s from %s", op, status)
			} else {
				require.Error(t, err, "%s from %s", op, status)
				assert.True(t, errors.IsPrecondition(err), "%s from %s: got %v", op, status, err)
			}
		}
	}
}

func TestApply(t *testing.T) {
	t.Run("accept binds consultant once", func(t *testing.T) {
		c := consultation(models.ConsultationStatusRequested)
		tr, err := Accept(c, consultant)
		require.NoError(t, err)
		Apply(c, tr)
		assert.Equal(t, models.ConsultationStatusMatched, c.Status)
		require.NotNil(t, c.ConsultantID)
		assert.Equal(t, "consultant-001", *c.ConsultantID)
	})

	t.Run("reject persists the reason on the cancelled row", func(t *testing.T) {
		c := consultation(models.ConsultationStatusRequested)
		tr, err := Reject(c, consultant, "outside my specialty")
		require.NoError(t, err)
		Apply(c, tr)
		assert.Equal(t, models.ConsultationStatusCancelled, c.Status)
		assert.Equal(t, "outside my specialty", c.RejectReason)
		assert.Empty(t, c.CancelReason)
	})

	t.Run("cancel preserves the bound consultant", func(t *testing.T) {
		c := consultation(models.ConsultationStatusMatched)
		tr, err := Cancel(c, requester, "resolved")
		require.NoError(t, err)
		Apply(c, tr)
		assert.Equal(t, models.ConsultationStatusCancelled, c.Status)
		require.NotNil(t, c.ConsultantID)
		assert.Equal(t, "resolved", c.CancelReason)
	})
}

func TestCanEnterChannel(t *testing.T) {
	c := consultation(models.ConsultationStatusInProgress, paid)
	assert.True(t, CanEnterChannel(c, requester))
	assert.True(t, CanEnterChannel(c, consultant))
	assert.False(t, CanEnterChannel(c, Actor{ID: "worker-999", Role: models.RoleWorker}))

	t.Run("paid scheduled consultations admit participants", func(t *testing.T) {
		assert.True(t, CanEnterChannel(consultation(models.ConsultationStatusScheduled, paid), requester))
	})

	t.Run("payment gate holds regardless of status", func(t *testing.T) {
		assert.False(t, CanEnterChannel(consultation(models.ConsultationStatusInProgress), requester))
		assert.False(t, CanEnterChannel(consultation(models.ConsultationStatusScheduled), requester))
	})

	t.Run("matched consultations stay closed even when paid", func(t *testing.T) {
		assert.False(t, CanEnterChannel(consultation(models.ConsultationStatusMatched, paid), requester))
	})
}

func TestCheckInvariants(t *testing.T) {
	t.Run("matched requires a bound consultant", func(t *testing.T) {
		c := consultation(models.ConsultationStatusMatched)
		c.ConsultantID = nil
		assert.Error(t, CheckInvariants(c))
	})

	t.Run("scheduled requires a session time", func(t *testing.T) {
		c := consultation(models.ConsultationStatusScheduled)
		c.ScheduledAt = nil
		assert.Error(t, CheckInvariants(c))
	})

	t.Run("valid consultations pass", func(t *testing.T) {
		for _, status := range []string{
			models.ConsultationStatusRequested,
			models.ConsultationStatusMatched,
			models.ConsultationStatusScheduled,
			models.ConsultationStatusInProgress,
			models.ConsultationStatusCompleted,
		} {
			assert.NoError(t, CheckInvariants(consultation(status)), "status %s", status)
		}
	})
}
