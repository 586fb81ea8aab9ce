package core

import (
	"errors"
	"fmt"
)

// ErrorClass groups operation errors for callers that only care about the
// kind of failure (HTTP mapping, retry decisions). Every error is locally
// recoverable: the rejected operation has no side effects.
type ErrorClass string

const (
	ClassNotFound       ErrorClass = "NOT_FOUND"
	ClassAuthorization  ErrorClass = "AUTHORIZATION"
	ClassCapacity       ErrorClass = "CAPACITY"
	ClassStateConflict  ErrorClass = "STATE_CONFLICT"
	ClassProofRejection ErrorClass = "PROOF_REJECTION"
)

type ErrorCode string

const (
	CodeJobNotFound                ErrorCode = "JOB_NOT_FOUND"
	CodeEventNotFound              ErrorCode = "EVENT_NOT_FOUND"
	CodeTriggerNotFound            ErrorCode = "TRIGGER_NOT_FOUND"
	CodeResultNotFound             ErrorCode = "RESULT_NOT_FOUND"
	CodeNotAuthorized              ErrorCode = "NOT_AUTHORIZED"
	CodeMetadataTooLarge           ErrorCode = "METADATA_TOO_LARGE"
	CodeTooManyDependencies        ErrorCode = "TOO_MANY_DEPENDENCIES"
	CodeMaxJobsReached             ErrorCode = "MAX_JOBS_REACHED"
	CodeStatusBucketFull           ErrorCode = "STATUS_BUCKET_FULL"
	CodeProofTooLarge              ErrorCode = "PROOF_TOO_LARGE"
	CodePayloadTooLarge            ErrorCode = "PAYLOAD_TOO_LARGE"
	CodeMaxTriggersReached         ErrorCode = "MAX_TRIGGERS_REACHED"
	CodeMaxEventsReached           ErrorCode = "MAX_EVENTS_REACHED"
	CodeDeadlineInPast             ErrorCode = "DEADLINE_IN_PAST"
	CodeDependencyNotFound         ErrorCode = "DEPENDENCY_NOT_FOUND"
	CodeMaxDependencyDepthExceeded ErrorCode = "MAX_DEPENDENCY_DEPTH_EXCEEDED"
	CodeInvalidStatusTransition    ErrorCode = "INVALID_STATUS_TRANSITION"
	CodeInvalidJobStatus           ErrorCode = "INVALID_JOB_STATUS"
	CodeAlreadyVerified            ErrorCode = "ALREADY_VERIFIED"
	CodeAlreadyProcessed           ErrorCode = "ALREADY_PROCESSED"
	CodeInvalidProof               ErrorCode = "INVALID_PROOF"
)

// Class maps a code onto its taxonomy class.
func (c ErrorCode) Class() ErrorClass {
	switch c {
	case CodeJobNotFound, CodeEventNotFound, CodeTriggerNotFound, CodeResultNotFound:
		return ClassNotFound
	case CodeNotAuthorized:
		return ClassAuthorization
	case CodeMetadataTooLarge, CodeTooManyDependencies, CodeMaxJobsReached,
		CodeStatusBucketFull, CodeProofTooLarge, CodePayloadTooLarge,
		CodeMaxTriggersReached, CodeMaxEventsReached:
		return ClassCapacity
	case CodeInvalidProof:
		return ClassProofRejection
	default:
		return ClassStateConflict
	}
}

// OpError is the single error type every core operation returns on failure.
type OpError struct {
	Code    ErrorCode
	Message string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func opErrorf(code ErrorCode, format string, args ...any) *OpError {
	return &OpError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewError builds an OpError for layers above the core that share its error
// taxonomy.
func NewError(code ErrorCode, format string, args ...any) *OpError {
	return opErrorf(code, format, args...)
}

// CodeOf extracts the error code from a (possibly wrapped) OpError.
// Returns "" for nil and for foreign errors.
func CodeOf(err error) ErrorCode {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
