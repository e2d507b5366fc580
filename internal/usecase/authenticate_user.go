package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/reverio/leadgen/internal/entity"
)

type AuthenticateUserUseCase struct {
	Repo   UserRepositoryInterface
	Hasher PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthenticateUserUseCase(repo UserRepositoryInterface, hasher PasswordHasher) *AuthenticateUserUseCase {
	return &AuthenticateUserUseCase{Repo: repo, Hasher: hasher}
}

// Execute verifies the credential. Unknown email and wrong password give the
// same error so the response does not reveal which accounts exist.
func (uc *AuthenticateUserUseCase) Execute(ctx context.Context, input AuthenticateUserInput) (*UserOutput, error) {
	if input.Email == "" || input.Password == "" {
		return nil, classify(entity.ErrInvalidCredentials)
	}

	user, err := uc.Repo.FindByEmail(ctx, entity.NormalizeEmail(input.Email))
	if errors.Is(err, entity.ErrUserNotFound) {
		// Pay the hashing cost anyway so timing matches a wrong password.
		_ = uc.Hasher.Compare(uc.dummy(), input.Password)
		return nil, classify(entity.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, classify(err)
	}

	if err := uc.Hasher.Compare(user.PasswordHash, input.Password); err != nil {
		return nil, classify(entity.ErrInvalidCredentials)
	}

	if input.RequireAdmin && !user.IsAdmin() {
		return nil, classify(entity.ErrNotAdmin)
	}

	return newUserOutput(user), nil
}

func (uc *AuthenticateUserUseCase) dummy() string {
	uc.dummyOnce.Do(func() {
		uc.dummyHash, _ = uc.Hasher.Hash("leadgen-unknown-account")
	})
	return uc.dummyHash
}

// FindUser is used by session-protected endpoints to reload the caller.
func (uc *AuthenticateUserUseCase) FindUser(ctx context.Context, id string) (*UserOutput, error) {
	user, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	return newUserOutput(user), nil
}

func (uc *AuthenticateUserUseCase) FindUserByEmail(ctx context.Context, email string) (*UserOutput, error) {
	user, err := uc.Repo.FindByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		return nil, classify(err)
	}
	return newUserOutput(user), nil
}
