package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/reverio/leadgen/internal/entity"
)

type UpdateLeadStatusUseCase struct {
	Tx     Transactor
	Leads  LeadRepositoryInterface
	Now    func() time.Time
	Logger *zap.Logger
}

func NewUpdateLeadStatusUseCase(tx Transactor, leads LeadRepositoryInterface, logger *zap.Logger) *UpdateLeadStatusUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpdateLeadStatusUseCase{
		Tx:     tx,
		Leads:  leads,
		Now:    func() time.Time { return time.Now().UTC() },
		Logger: logger,
	}
}

func (uc *UpdateLeadStatusUseCase) Execute(ctx context.Context, input UpdateLeadStatusInput) (*entity.Lead, error) {
	if input.LeadID <= 0 {
		return nil, validationError([]ValidationError{{"lead_id", "is required"}})
	}

	next, err := entity.ParseStatus(input.Status)
	if err != nil {
		return nil, classify(err)
	}

	var lead *entity.Lead
	var from entity.LeadStatus
	err = uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		l, err := uc.Leads.FindByIDForUpdate(ctx, input.LeadID)
		if err != nil {
			return err
		}
		from = l.Status
		if err := l.TransitionTo(input.UserID, next, uc.Now()); err != nil {
			return err
		}
		if err := uc.Leads.UpdateStatus(ctx, l); err != nil {
			return err
		}
		lead = l
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	uc.Logger.Info("lead status changed",
		zap.Int64("lead_id", lead.ID),
		zap.String("user_id", input.UserID),
		zap.String("from", string(from)),
		zap.String("to", string(lead.Status)),
	)
	return lead, nil
}
