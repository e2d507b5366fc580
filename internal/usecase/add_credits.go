package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/reverio/leadgen/internal/entity"
)

// AddCreditsUseCase is the administrative top-up. Payments are settled out of
// band; this only records the result.
type AddCreditsUseCase struct {
	Ledger LedgerInterface
	Logger *zap.Logger
}

func NewAddCreditsUseCase(ledger LedgerInterface, logger *zap.Logger) *AddCreditsUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AddCreditsUseCase{Ledger: ledger, Logger: logger}
}

func (uc *AddCreditsUseCase) Execute(ctx context.Context, input AddCreditsInput) (*AddCreditsOutput, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, validationError([]ValidationError{{"user_id", "is required"}})
	}
	if input.Credits <= 0 {
		return nil, classify(entity.ErrInvalidAmount)
	}

	balance, err := uc.Ledger.Credit(ctx, input.UserID, input.Credits)
	if err != nil {
		return nil, classify(err)
	}

	uc.Logger.Info("credits added",
		zap.String("user_id", input.UserID),
		zap.Int("added", input.Credits),
		zap.Int("balance", balance),
	)

	return &AddCreditsOutput{UserID: input.UserID, Added: input.Credits, Credits: balance}, nil
}
