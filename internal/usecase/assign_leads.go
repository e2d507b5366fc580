package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/reverio/leadgen/internal/entity"
)

const (
	DefaultAssignAttempts = 3
	DefaultMaxPerRequest  = 100
	DefaultLockDuration   = 180 * 24 * time.Hour
	DefaultRetryDelay     = 25 * time.Millisecond
)

// AssignLeadsUseCase hands pool leads to a user in exchange for credits.
// Debit, selection and assignment share one transaction: either the user
// pays and owns every requested lead, or nothing changes.
type AssignLeadsUseCase struct {
	Tx            Transactor
	Leads         LeadRepositoryInterface
	Ledger        LedgerInterface
	LockFor       time.Duration
	MaxAttempts   int
	MaxPerRequest int
	// RetryDelay is multiplied by the attempt number before each retry.
	RetryDelay    time.Duration
	Now           func() time.Time
	Logger        *zap.Logger
}

func NewAssignLeadsUseCase(
	tx Transactor,
	leads LeadRepositoryInterface,
	ledger LedgerInterface,
	logger *zap.Logger,
) *AssignLeadsUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignLeadsUseCase{
		Tx:            tx,
		Leads:         leads,
		Ledger:        ledger,
		LockFor:       DefaultLockDuration,
		MaxAttempts:   DefaultAssignAttempts,
		MaxPerRequest: DefaultMaxPerRequest,
		RetryDelay:    DefaultRetryDelay,
		Now:           func() time.Time { return time.Now().UTC() },
		Logger:        logger,
	}
}

// AssignNext is the single-lead form: one credit for the lowest-id free lead.
func (uc *AssignLeadsUseCase) AssignNext(ctx context.Context, userID string) (*entity.Lead, error) {
	out, err := uc.Execute(ctx, AssignLeadsInput{UserID: userID, Count: 1})
	if err != nil {
		return nil, err
	}
	return &out.Leads[0], nil
}

func (uc *AssignLeadsUseCase) Execute(ctx context.Context, input AssignLeadsInput) (*AssignLeadsOutput, error) {
	if errs := ValidateAssignLeadsInput(input, uc.MaxPerRequest); len(errs) > 0 {
		return nil, validationError(errs)
	}

	attempts := uc.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := uc.attempt(ctx, input)
		if err == nil {
			uc.Logger.Info("leads assigned",
				zap.String("user_id", input.UserID),
				zap.Int64s("lead_ids", out.LeadIDs()),
				zap.Int("credits_remaining", out.CreditsRemaining),
			)
			return out, nil
		}
		if !errors.Is(err, entity.ErrConcurrencyConflict) {
			return nil, classify(err)
		}
		uc.Logger.Debug("assignment conflict, retrying",
			zap.String("user_id", input.UserID),
			zap.Int("attempt", attempt),
		)
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, classify(ctx.Err())
		case <-time.After(uc.RetryDelay * time.Duration(attempt)):
		}
	}

	return nil, classify(fmt.Errorf("%w: gave up after %d conflicting attempts", entity.ErrNoLeadsAvailable, attempts))
}

func (uc *AssignLeadsUseCase) attempt(ctx context.Context, input AssignLeadsInput) (*AssignLeadsOutput, error) {
	var out *AssignLeadsOutput

	err := uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		now := uc.Now()

		// Debit first so a request that cannot pay never holds pool rows.
		if err := uc.Ledger.Debit(ctx, input.UserID, input.Count); err != nil {
			return err
		}

		leads, err := uc.Leads.LockAvailable(ctx, input.Count)
		if err != nil {
			return err
		}
		if len(leads) < input.Count {
			return uc.shortfall(ctx, len(leads), input.Count)
		}

		for i := range leads {
			if err := leads[i].Assign(input.UserID, now, uc.LockFor); err != nil {
				return err
			}
			if err := uc.Leads.Assign(ctx, &leads[i]); err != nil {
				return err
			}
		}

		balance, err := uc.Ledger.Balance(ctx, input.UserID)
		if err != nil {
			return err
		}

		out = &AssignLeadsOutput{
			Leads:            leads,
			CreditsRemaining: balance,
			LockedUntil:      now.Add(uc.LockFor),
		}
		return nil
	})

	return out, err
}

// shortfall tells rows held by a concurrent transaction apart from a pool
// that really is too small. Held rows may come free, so they count as a
// conflict and go through the retry loop.
func (uc *AssignLeadsUseCase) shortfall(ctx context.Context, locked, want int) error {
	free, err := uc.Leads.CountAvailable(ctx)
	if err != nil {
		return err
	}
	if free >= want {
		return fmt.Errorf("%w: %d of %d free leads held by another transaction", entity.ErrConcurrencyConflict, want-locked, free)
	}
	return fmt.Errorf("%w: only %d of %d requested", entity.ErrNoLeadsAvailable, free, want)
}
