package apperror

import "errors"

// Describe turns an error into the one-line message the TUI status bar and
// the CLI print. It is the front ends' counterpart of mapping domain errors
// to status codes:
//
//	ErrValidation → the rule's own message ("name is required")
//	ErrNotFound   → "item not found"
//	ErrStorage    → "storage error: <operation>: <cause>"
//
// Anything that is not an AppError is reported verbatim.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var appErr *AppError
	isApp := errors.As(err, &appErr)

	switch {
	case errors.Is(err, ErrNotFound):
		return "item not found"
	case errors.Is(err, ErrStorage):
		if isApp {
			return "storage error: " + appErr.Message
		}
		return "storage error: " + err.Error()
	case isApp:
		return appErr.Message
	}

	return "unexpected error: " + err.Error()
}
