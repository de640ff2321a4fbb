package errors

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"
)

// Domain is the error domain for proposal service errors.
const Domain = "github.com/louisbranch/proposals"

// FieldViolation names one violated constraint on one input field.
type FieldViolation struct {
	Field       string
	Description string
}

// Error is the domain error type with structured metadata.
type Error struct {
	Code       Code              // Machine-readable error code
	Message    string            // Internal message (for logs/telemetry)
	Metadata   map[string]string // Additional context for templating
	Violations []FieldViolation  // Ordered per-field detail for validation failures
	Cause      error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithMetadata creates a domain error with metadata for i18n templating.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// WithViolations creates a validation error carrying field violations in order.
func WithViolations(message string, violations []FieldViolation) *Error {
	cloned := make([]FieldViolation, len(violations))
	copy(cloned, violations)
	return &Error{
		Code:       CodeValidationFailed,
		Message:    message,
		Violations: cloned,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the domain code carried by err, or CodeUnknown.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeUnknown
}

// ToGRPCStatus converts the error to a gRPC status with errdetails.
// The status message is the code's public message; the internal message and
// cause stay server side. Validation failures attach a BadRequest with one
// field violation per violated constraint.
func (e *Error) ToGRPCStatus(locale string, userMessage string) error {
	grpcCode := e.Code.GRPCCode()
	st := status.New(grpcCode, e.Code.PublicMessage())

	details := make([]protoadapt.MessageV1, 0, 3)
	if len(e.Violations) > 0 {
		badRequest := &errdetails.BadRequest{
			FieldViolations: make([]*errdetails.BadRequest_FieldViolation, 0, len(e.Violations)),
		}
		for _, violation := range e.Violations {
			badRequest.FieldViolations = append(badRequest.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       violation.Field,
				Description: violation.Description,
			})
		}
		details = append(details, badRequest)
	}
	details = append(details,
		&errdetails.ErrorInfo{
			Reason:   string(e.Code),
			Domain:   Domain,
			Metadata: e.Metadata,
		},
		&errdetails.LocalizedMessage{
			Locale:  locale,
			Message: userMessage,
		},
	)

	withDetails, err := st.WithDetails(details...)
	if err != nil {
		// If we can't attach details, return the basic status
		return st.Err()
	}
	return withDetails.Err()
}
