package domain

import "errors"

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrDuplicateRecord  = errors.New("duplicate record")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrRemoteWrite      = errors.New("remote write failed")
	ErrRemoteRead       = errors.New("remote read failed")
	ErrEmptyMessage     = errors.New("message content is empty")
	ErrSelfConversation = errors.New("cannot open a conversation with yourself")
)

type ErrValidation struct {
	Errors map[string]string
}

func NewErrValidation() *ErrValidation {
	return &ErrValidation{Errors: make(map[string]string)}
}

// implements error interface, so unwrap the error to get the validation errors
func (ErrValidation) Error() string {
	return "validation error"
}

func (e *ErrValidation) AddError(field, message string) {
	if _, exists := e.Errors[field]; !exists {
		e.Errors[field] = message
	}
}

func (e *ErrValidation) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *ErrValidation) Evaluate(ok bool, field, message string) {
	if !ok {
		e.AddError(field, message)
	}
}
