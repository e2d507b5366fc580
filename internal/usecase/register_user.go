package usecase

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/reverio/leadgen/internal/entity"
)

type RegisterUserUseCase struct {
	Repo         UserRepositoryInterface
	Hasher       PasswordHasher
	EmailService EmailService
	Logger       *zap.Logger

	mail sync.WaitGroup
}

func NewRegisterUserUseCase(
	repo UserRepositoryInterface,
	hasher PasswordHasher,
	emailService EmailService,
	logger *zap.Logger,
) *RegisterUserUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegisterUserUseCase{
		Repo:         repo,
		Hasher:       hasher,
		EmailService: emailService,
		Logger:       logger,
	}
}

func (uc *RegisterUserUseCase) Execute(ctx context.Context, input RegisterUserInput) (*UserOutput, error) {
	user, err := uc.create(ctx, input, entity.RoleCustomer)
	if err != nil {
		return nil, err
	}

	if uc.EmailService != nil {
		uc.mail.Add(1)
		go func(to string) {
			defer uc.mail.Done()
			if err := uc.EmailService.SendWelcome(to); err != nil {
				uc.Logger.Warn("welcome email failed", zap.String("email", to), zap.Error(err))
			}
		}(user.Email)
	}

	return newUserOutput(user), nil
}

// Drain waits for welcome e-mails still being sent, or until ctx is done.
func (uc *RegisterUserUseCase) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		uc.mail.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SeedAdmin creates the administrator account on first start. An existing
// account with the same email is left untouched.
func (uc *RegisterUserUseCase) SeedAdmin(ctx context.Context, email, password string) error {
	_, err := uc.create(ctx, RegisterUserInput{Email: email, Password: password}, entity.RoleAdmin)
	if errors.Is(err, entity.ErrEmailAlreadyExists) {
		return nil
	}
	if err == nil {
		uc.Logger.Info("admin account created", zap.String("email", entity.NormalizeEmail(email)))
	}
	return err
}

func (uc *RegisterUserUseCase) create(ctx context.Context, input RegisterUserInput, role entity.Role) (*entity.User, error) {
	if errs := ValidateRegisterUserInput(input); len(errs) > 0 {
		return nil, validationError(errs)
	}

	hash, err := uc.Hasher.Hash(input.Password)
	if err != nil {
		return nil, &TechnicalError{Code: "HASH_ERROR", Message: "could not hash password", Err: err}
	}

	user, err := entity.NewUser(input.Email, hash, role)
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error(), Err: err}
	}

	if err := uc.Repo.Create(ctx, user); err != nil {
		return nil, classify(err)
	}
	return user, nil
}
