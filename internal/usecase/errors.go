package usecase

import (
	"errors"

	"github.com/reverio/leadgen/internal/entity"
)

type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeEmailAlreadyExists = "EMAIL_ALREADY_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNotAdmin           = "NOT_ADMIN"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeInsufficientCredit = "INSUFFICIENT_CREDIT"
	CodeInvalidAmount      = "INVALID_AMOUNT"
	CodeNoLeadsAvailable   = "NO_LEADS_AVAILABLE"
	CodeLeadNotFound       = "LEAD_NOT_FOUND"
	CodeNotOwner           = "NOT_OWNER"
	CodeInvalidStatus      = "INVALID_STATUS"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeInvalidRecord      = "INVALID_RECORD"
	CodeDatabase           = "DATABASE_ERROR"
)

// ConcurrencyConflict is deliberately absent: it is retried inside the
// assignment use case and never reaches a caller.
var domainCodes = []struct {
	err  error
	code string
}{
	{entity.ErrEmailAlreadyExists, CodeEmailAlreadyExists},
	{entity.ErrInvalidCredentials, CodeInvalidCredentials},
	{entity.ErrNotAdmin, CodeNotAdmin},
	{entity.ErrUserNotFound, CodeUserNotFound},
	{entity.ErrInsufficientCredit, CodeInsufficientCredit},
	{entity.ErrInvalidAmount, CodeInvalidAmount},
	{entity.ErrNoLeadsAvailable, CodeNoLeadsAvailable},
	{entity.ErrLeadNotFound, CodeLeadNotFound},
	{entity.ErrNotOwner, CodeNotOwner},
	{entity.ErrInvalidStatus, CodeInvalidStatus},
	{entity.ErrInvalidTransition, CodeInvalidTransition},
	{entity.ErrInvalidRecord, CodeInvalidRecord},
}

// classify turns repository and entity errors into the error types the
// request boundary understands.
func classify(err error) error {
	if err == nil || IsDomainError(err) || IsTechnicalError(err) {
		return err
	}
	for _, dc := range domainCodes {
		if errors.Is(err, dc.err) {
			return &DomainError{Code: dc.code, Message: err.Error(), Err: err}
		}
	}
	return &TechnicalError{Code: CodeDatabase, Message: "storage failure: " + err.Error(), Err: err}
}
