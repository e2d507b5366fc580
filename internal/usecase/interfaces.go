package usecase

import (
	"context"

	"github.com/reverio/leadgen/internal/entity"
)

// Transactor runs fn inside one database transaction. Repository calls made
// with the ctx handed to fn join that transaction; fn returning an error
// rolls everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type EmailService interface {
	SendWelcome(to string) error
}

type UserRepositoryInterface = entity.UserRepositoryInterface

type LeadRepositoryInterface = entity.LeadRepositoryInterface

type LedgerInterface = entity.LedgerInterface
