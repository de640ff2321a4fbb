package errors

import (
	"errors"

	"github.com/louisbranch/proposals/internal/platform/errors/i18n"
)

// DefaultLocale is the default locale for error messages.
const DefaultLocale = i18n.BaseLocale

// HandleError converts any error to a gRPC status for client responses.
// Domain errors keep their code; anything else becomes UNKNOWN with a generic
// message. The user-facing message is formatted from the catalog that best
// matches locale.
func HandleError(err error, locale string) error {
	if err == nil {
		return nil
	}
	if locale == "" {
		locale = DefaultLocale
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Wrap(CodeUnknown, "unclassified failure", err)
	}
	catalog := i18n.GetCatalog(locale)
	userMsg := catalog.Format(string(appErr.Code), appErr.Metadata)
	return appErr.ToGRPCStatus(catalog.Locale(), userMsg)
}
