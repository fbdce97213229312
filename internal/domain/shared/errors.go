package shared

import "errors"

// DomainError is a failure the shopper can be told about. Code is stable and
// maps to an HTTP status at the edge; Message is user facing.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	cause error
}

// NewDomainError creates a sentinel domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Is matches any DomainError with the same code
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

func (e *DomainError) Unwrap() error { return e.cause }

// Wrap returns a copy of e that keeps cause for logs. The shopper still
// only sees Message.
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, cause: cause}
}

// AsDomain finds the first DomainError in err's chain
func AsDomain(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// CodeOf returns the domain code carried by err, or fallback
func CodeOf(err error, fallback string) string {
	if de, ok := AsDomain(err); ok {
		return de.Code
	}
	return fallback
}

var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
)
