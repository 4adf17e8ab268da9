package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Status  int       `json:"-"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to the HTTP status returned to the browser.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrTransport:
		return http.StatusBadGateway
	case ErrUpstream:
		if e.Status >= 400 {
			return e.Status
		}
		return http.StatusBadGateway
	case ErrMalformed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrTransport
	ErrUpstream
	ErrMalformed
)

const (
	MsgAccessDenied   = "ACESSO NEGADO"
	MsgConnection     = "Erro ao conectar com o servidor."
	MsgInvalidSession = "Sessão inválida. Faça login novamente."
	MsgMalformed      = "Resposta inválida do servidor"
)

// Error constructors
func NewNotFound(message string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: message,
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// Common errors
func NotFound(message string, err error) *AppError {
	return NewNotFound(message, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: MsgInvalidSession,
		Err:     err,
	}
}

func Forbidden(err error) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: MsgAccessDenied,
		Err:     err,
	}
}

// Transport is a network or connection failure towards the backend.
func Transport(err error) *AppError {
	return &AppError{
		Code:    ErrTransport,
		Message: MsgConnection,
		Err:     err,
	}
}

// Upstream carries a non-2xx backend answer; message is shown verbatim.
func Upstream(status int, message string, err error) *AppError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &AppError{
		Code:    ErrUpstream,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func Malformed(err error) *AppError {
	return &AppError{
		Code:    ErrMalformed,
		Message: MsgMalformed,
		Err:     err,
	}
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// HTTPStatus returns the status for err, 500 when it is not an AppError.
func HTTPStatus(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode()
	}
	return http.StatusInternalServerError
}

// Message returns the user-facing message for err.
func Message(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Message
	}
	return "Erro interno"
}
