// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unclassified failure.
	CodeUnknown Code = "UNKNOWN"

	// Intake errors
	CodeValidationFailed        Code = "VALIDATION_FAILED"
	CodeProposalAlreadyExists   Code = "PROPOSAL_ALREADY_EXISTS"
	CodeDocumentKindUnsupported Code = "DOCUMENT_KIND_UNSUPPORTED"
	CodeEligibilityUnavailable  Code = "ELIGIBILITY_UNAVAILABLE"
	CodeIntakeBusy              Code = "INTAKE_BUSY"

	// Lookup errors
	CodeProposalIDMissing Code = "PROPOSAL_ID_MISSING"
	CodeProposalNotFound  Code = "PROPOSAL_NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeValidationFailed,
		CodeProposalIDMissing:
		return codes.InvalidArgument

	// FailedPrecondition - business rule or collaborator state prevents the operation
	case CodeDocumentKindUnsupported,
		CodeEligibilityUnavailable:
		return codes.FailedPrecondition

	case CodeProposalNotFound:
		return codes.NotFound

	// Unavailable - retryable, nothing was stored or sent for analysis
	case CodeIntakeBusy:
		return codes.Unavailable

	// AlreadyExists - unique resource constraint
	case CodeProposalAlreadyExists:
		return codes.AlreadyExists

	default:
		return codes.Unknown
	}
}

// PublicMessage is the caller-visible status message for the code.
// It never contains internal cause detail.
func (c Code) PublicMessage() string {
	switch c {
	case CodeValidationFailed:
		return "request with invalid parameters"
	case CodeProposalAlreadyExists:
		return "proposal already exists"
	case CodeDocumentKindUnsupported:
		return "document kind is not accepted"
	case CodeEligibilityUnavailable:
		return "it's impossible to submit proposal for analysis"
	case CodeIntakeBusy:
		return "proposal intake is busy, try again"
	case CodeProposalIDMissing:
		return "proposal id is required"
	case CodeProposalNotFound:
		return "proposal not found"
	default:
		return "unexpected error happened"
	}
}
