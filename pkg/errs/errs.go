package errs

import "fmt"

// Status classifies an error for transport mapping.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusBadRequest
	StatusNotFound
	StatusConflict
	StatusValidationFailed
	StatusInternalServerError
)

// Error is a typed service error carrying a machine code and a
// client-facing message. The zero value is not useful; build instances
// with the constructors below.
type Error struct {
	parent error
	status Status
	code   string
	msg    string
}

// New initializes an Error.
//
// code example: PRODUCT_NOT_FOUND
func New(parent error, status Status, code, msg string) Error {
	return Error{
		parent: parent,
		status: status,
		code:   code,
		msg:    msg,
	}
}

// Error returns the error message.
func (e Error) Error() string {
	if e.parent != nil {
		return fmt.Sprintf("Code=%s, Msg=%s, Parent=(%v)", e.code, e.msg, e.parent)
	}
	return fmt.Sprintf("Code=%s, Msg=%s", e.code, e.msg)
}

// WrapParent attaches an underlying error to an existing predefined Error.
func (e Error) WrapParent(parent error) Error {
	if parent == nil {
		return e
	}
	e.parent = parent
	return e
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.parent
}

// Status returns the status classification.
func (e Error) Status() Status {
	return e.status
}

// Code returns the machine-readable code.
func (e Error) Code() string {
	return e.code
}

// Msg returns the client-facing message.
func (e Error) Msg() string {
	return e.msg
}

// Parent returns the underlying error.
func (e Error) Parent() error {
	return e.parent
}

func NewBadRequest(code, msg string) Error {
	return New(nil, StatusBadRequest, code, msg)
}

func NewNotFound(code, msg string) Error {
	return New(nil, StatusNotFound, code, msg)
}

func NewConflict(code, msg string) Error {
	return New(nil, StatusConflict, code, msg)
}

func NewValidationFailed(code, msg string) Error {
	return New(nil, StatusValidationFailed, code, msg)
}

func NewInternalServerError(code, msg string) Error {
	return New(nil, StatusInternalServerError, code, msg)
}
