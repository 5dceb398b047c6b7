// Package errors provides standardized error handling for the packet
// generation and signing pipeline.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeCaseValidationFailed ErrorCode = "CASE_VALIDATION_FAILED"
	ErrCodeMissingCaseField     ErrorCode = "MISSING_CASE_FIELD"
	ErrCodeTemplateNotFound     ErrorCode = "TEMPLATE_NOT_FOUND"

	ErrCodeFieldFillFailed    ErrorCode = "FIELD_FILL_FAILED"
	ErrCodeInstanceFillFailed ErrorCode = "INSTANCE_FILL_FAILED"
	ErrCodeMergeFailed        ErrorCode = "MERGE_FAILED"

	ErrCodeUploadFailed            ErrorCode = "UPLOAD_FAILED"
	ErrCodeFieldRegistrationFailed ErrorCode = "FIELD_REGISTRATION_FAILED"
	ErrCodeInviteDeliveryFailed    ErrorCode = "INVITE_DELIVERY_FAILED"

	ErrCodeTrackerUpdateFailed    ErrorCode = "TRACKER_UPDATE_FAILED"
	ErrCodeArtifactFilingFailed   ErrorCode = "ARTIFACT_FILING_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeUnparseableDocName     ErrorCode = "UNPARSEABLE_DOC_NAME"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
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

// ==========================
// 2. Error Constructors
// ==========================

// NewCaseValidationFailedError creates a non-retryable input error. The whole
// generation request fails with the specific missing-field detail.
func NewCaseValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCaseValidationFailed,
		Message:   "Case data validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingCaseFieldError creates a non-retryable input error naming the
// missing field.
func NewMissingCaseFieldError(field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingCaseField,
		Message:   "Required case field is missing",
		Details:   fmt.Sprintf("field: %s", field),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable catalog error.
func NewTemplateNotFoundError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "Template not found in catalog",
		Details:   fmt.Sprintf("templateKey: %s", key),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInstanceFillFailedError records a per-instance fill failure. The caller
// substitutes the original unfilled document, so this is informational.
func NewInstanceFillFailedError(instanceKey string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInstanceFillFailed,
		Message:   "Instance fill failed, original document substituted",
		Details:   fmt.Sprintf("instance: %s, error: %s", instanceKey, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMergeFailedError creates a fatal merge error.
func NewMergeFailedError(packet string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMergeFailed,
		Message:   "Packet merge failed",
		Details:   fmt.Sprintf("packet: %s, error: %s", packet, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUploadFailedError creates a fatal dispatch error carrying the provider's
// error detail.
func NewUploadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadFailed,
		Message:   "Document upload to e-signature provider failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFieldRegistrationFailedError creates a fatal dispatch error.
func NewFieldRegistrationFailedError(documentID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFieldRegistrationFailed,
		Message:   "Signature field registration failed",
		Details:   fmt.Sprintf("documentId: %s, error: %s", documentID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInviteDeliveryFailedError records a per-signer delivery failure. Other
// signers are still invited.
func NewInviteDeliveryFailedError(role string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInviteDeliveryFailed,
		Message:   "Invite delivery failed for signer",
		Details:   fmt.Sprintf("role: %s, error: %s", role, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTrackerUpdateFailedError creates a retryable persistence error.
func NewTrackerUpdateFailedError(documentID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTrackerUpdateFailed,
		Message:   "Signing tracker update failed",
		Details:   fmt.Sprintf("documentId: %s, error: %s", documentID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewArtifactFilingFailedError creates a retryable filing-store error.
func NewArtifactFilingFailedError(documentID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArtifactFilingFailed,
		Message:   "Signed artifact filing failed",
		Details:   fmt.Sprintf("documentId: %s, error: %s", documentID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
// Notification failures never undo a successful filing.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnparseableDocNameError creates a non-retryable decode error for a
// provider document name that does not match the naming convention.
func NewUnparseableDocNameError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnparseableDocName,
		Message:   "Document name does not match the naming convention",
		Details:   fmt.Sprintf("name: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
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
func NewQueryExecutionFailedError(query string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("query: %s, error: %s", query, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
