package submission

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrForbidden means the actor lacks permission for the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTransition means the current status does not allow the
	// requested transition.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrMissingRequiredField means a transition guard was not satisfied
	// (e.g. reject without a reason).
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrConflict means a concurrent writer won the version race; the
	// caller should refetch and retry.
	ErrConflict = errors.New("conflict")
)

// FieldError is a single validation violation, addressed to a form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every violation so callers can surface them all
// at once instead of one alert at a time.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (v *ValidationErrors) add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}
