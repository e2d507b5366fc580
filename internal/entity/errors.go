package entity

import "errors"

var (
	ErrEmailAlreadyExists  = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrNotAdmin            = errors.New("admin role required")
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientCredit  = errors.New("insufficient credits")
	ErrInvalidAmount       = errors.New("credit amount must be positive")
	ErrNoLeadsAvailable    = errors.New("no leads available")
	ErrLeadNotFound        = errors.New("lead not found")
	ErrNotOwner            = errors.New("lead belongs to another user")
	ErrInvalidStatus       = errors.New("invalid lead status")
	ErrInvalidTransition   = errors.New("invalid lead status transition")
	ErrConcurrencyConflict = errors.New("lead was assigned concurrently")
	ErrInvalidRecord       = errors.New("invalid source record")
)
