package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lib/pq"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindInternal   Kind = "internal"
)

// Error carries the taxonomy kind alongside a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Internalf(format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// StatusCode maps the taxonomy to HTTP status codes. Anything untyped is a 500.
func StatusCode(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromDB classifies driver errors. Unique violations become conflicts so a
// duplicate key surfaces as 409 instead of a bare 500.
func FromDB(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return Conflictf("duplicate record: %s", pqErr.Constraint)
	}

	return err
}
