// Package errors provides standardized error handling for the consultation
// workflow workers.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Lifecycle precondition errors. Each code identifies the violated guard so
// callers can tell wrong role from wrong state from payment incomplete.
const (
	ErrCodeWrongState          ErrorCode = "PRECONDITION_WRONG_STATE"
	ErrCodeWrongRole           ErrorCode = "PRECONDITION_WRONG_ROLE"
	ErrCodePaymentIncomplete   ErrorCode = "PRECONDITION_PAYMENT_INCOMPLETE"
	ErrCodeCancelWindowClosed  ErrorCode = "PRECONDITION_CANCEL_WINDOW_CLOSED"
	ErrCodeVersionConflict     ErrorCode = "PRECONDITION_VERSION_CONFLICT"
	ErrCodeRejectReasonMissing ErrorCode = "PRECONDITION_REJECT_REASON_MISSING"
)

// Lookup errors.
const (
	ErrCodeConsultationNotFound ErrorCode = "CONSULTATION_NOT_FOUND"
	ErrCodeProgramNotFound      ErrorCode = "PROGRAM_NOT_FOUND"
	ErrCodeConsultantNotFound   ErrorCode = "CONSULTANT_NOT_FOUND"
)

// Session and polling errors.
const (
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeStatusFetchFailed ErrorCode = "STATUS_FETCH_FAILED"
)

// Infrastructure errors.
const (
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout            ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInvalidInput             ErrorCode = "INVALID_INPUT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// CodeOf extracts the error code from any error, walking wrapped chains.
// Returns an empty code when the error carries no StandardError.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsPrecondition reports whether err is any violated lifecycle guard.
func IsPrecondition(err error) bool {
	switch CodeOf(err) {
	case ErrCodeWrongState, ErrCodeWrongRole, ErrCodePaymentIncomplete,
		ErrCodeCancelWindowClosed, ErrCodeVersionConflict, ErrCodeRejectReasonMissing:
		return true
	}
	return false
}

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	switch CodeOf(err) {
	case ErrCodeConsultationNotFound, ErrCodeProgramNotFound, ErrCodeConsultantNotFound:
		return true
	}
	return false
}

// IsUnauthorized reports whether err means the session is invalid. Fatal to
// the current flow: polling stops and the user re-authenticates.
func IsUnauthorized(err error) bool {
	return CodeOf(err) == ErrCodeUnauthorized
}

// IsTransient reports whether err is a recoverable fetch/query failure.
func IsTransient(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ConvertToBPMNError maps a StandardError to its workflow-engine form.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	vars := map[string]interface{}{}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}
	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        GetRetryCount(stdErr.Code),
		ErrorVariables: vars,
	}
}

// GetRetryCount returns how many retries the engine should allow per code.
// Guard violations never retry automatically; the caller must change the
// world first (complete payment, use the right account).
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed, ErrCodeQueryExecutionFailed,
		ErrCodeQueryTimeout, ErrCodeSearchQueryFailed, ErrCodeSearchTimeout,
		ErrCodeStatusFetchFailed, ErrCodeNotificationSendFailed:
		return 3
	default:
		return 0
	}
}

// GetErrorCategory buckets codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeWrongState, ErrCodeWrongRole, ErrCodePaymentIncomplete,
		ErrCodeCancelWindowClosed, ErrCodeVersionConflict, ErrCodeRejectReasonMissing:
		return "precondition"
	case ErrCodeConsultationNotFound, ErrCodeProgramNotFound, ErrCodeConsultantNotFound:
		return "not_found"
	case ErrCodeUnauthorized:
		return "auth"
	case ErrCodeStatusFetchFailed:
		return "transient"
	case ErrCodeInvalidInput:
		return "validation"
	default:
		return "infrastructure"
	}
}

// ==========================
// 3. Error Constructors
// ==========================

// NewWrongStateError reports a transition attempted from a state that does
// not permit it.
func NewWrongStateError(current, attempted string) *StandardError {
	return &StandardError{
		Code:    ErrCodeWrongState,
		Message: "Transition not permitted from current status",
		Details: fmt.Sprintf("status: %s, attempted: %s", current, attempted),
		Metadata: map[string]interface{}{
			"currentStatus": current,
			"attempted":     attempted,
		},
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWrongRoleError reports an actor invoking a transition reserved for
// another role or another account.
func NewWrongRoleError(actorRole, attempted string) *StandardError {
	return &StandardError{
		Code:    ErrCodeWrongRole,
		Message: "Actor is not permitted to perform this transition",
		Details: fmt.Sprintf("role: %s, attempted: %s", actorRole, attempted),
		Metadata: map[string]interface{}{
			"actorRole": actorRole,
			"attempted": attempted,
		},
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPaymentIncompleteError reports a channel-open attempt before payment.
func NewPaymentIncompleteError(paymentStatus string) *StandardError {
	return &StandardError{
		Code:      ErrCodePaymentIncomplete,
		Message:   "Payment must be completed before entering the consultation channel",
		Details:   fmt.Sprintf("paymentStatus: %s", paymentStatus),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCancelWindowClosedError reports a requester cancellation after the
// self-service window (requested/matched) has passed.
func NewCancelWindowClosedError(current string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCancelWindowClosed,
		Message:   "Cancellation is no longer available once the consultation is scheduled",
		Details:   fmt.Sprintf("status: %s", current),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewVersionConflictError reports the loser of a concurrent transition race.
func NewVersionConflictError(id, expected string) *StandardError {
	return &StandardError{
		Code:      ErrCodeVersionConflict,
		Message:   "Consultation was modified concurrently; transition not applied",
		Details:   fmt.Sprintf("consultationId: %s, expectedStatus: %s", id, expected),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRejectReasonMissingError reports a rejection without the required reason.
func NewRejectReasonMissingError() *StandardError {
	return &StandardError{
		Code:      ErrCodeRejectReasonMissing,
		Message:   "Rejection requires a reason for the requester notification",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConsultationNotFoundError creates a non-retryable lookup error.
func NewConsultationNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConsultationNotFound,
		Message:   "Consultation not found",
		Details:   fmt.Sprintf("consultationId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProgramNotFoundError creates a non-retryable lookup error.
func NewProgramNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProgramNotFound,
		Message:   "Support program not found",
		Details:   fmt.Sprintf("programId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConsultantNotFoundError creates a non-retryable lookup error.
func NewConsultantNotFoundError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConsultantNotFound,
		Message:   "No consultant available for this request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnauthorizedError reports an invalid or expired session.
func NewUnauthorizedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthorized,
		Message:   "Session is invalid or expired",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStatusFetchFailedError reports a transient status-query failure. The
// poller swallows these and keeps ticking.
func NewStatusFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStatusFetchFailed,
		Message:   "Status fetch failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search error.
func NewSearchQueryFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Search query error",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable search timeout error.
func NewSearchTimeoutError(index string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Search query timeout",
		Details:   fmt.Sprintf("index: %s", index),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable delivery error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError creates a non-retryable input validation error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
