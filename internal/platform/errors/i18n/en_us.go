package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown                 = "UNKNOWN"
	CodeValidationFailed        = "VALIDATION_FAILED"
	CodeProposalAlreadyExists   = "PROPOSAL_ALREADY_EXISTS"
	CodeDocumentKindUnsupported = "DOCUMENT_KIND_UNSUPPORTED"
	CodeEligibilityUnavailable  = "ELIGIBILITY_UNAVAILABLE"
	CodeIntakeBusy              = "INTAKE_BUSY"
	CodeProposalIDMissing       = "PROPOSAL_ID_MISSING"
	CodeProposalNotFound        = "PROPOSAL_NOT_FOUND"
)

var enUSMessages = map[Code]string{
	CodeUnknown:                 "An unexpected error happened. Please try again later.",
	CodeValidationFailed:        "Some fields are invalid. Please review them and try again.",
	CodeProposalAlreadyExists:   "A proposal for this document already exists.",
	CodeDocumentKindUnsupported: "Proposals for {{.DocumentKind}} documents are not accepted.",
	CodeEligibilityUnavailable:  "We could not submit your proposal for analysis. It was saved and will be reviewed.",
	CodeIntakeBusy:              "We are receiving too many proposals right now. Nothing was saved, please try again.",
	CodeProposalIDMissing:       "A proposal id is required.",
	CodeProposalNotFound:        "Proposal not found.",
}
