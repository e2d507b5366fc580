package usecase

import (
	"context"
	"time"

	"github.com/reverio/leadgen/internal/entity"
)

const DefaultListLimit = 100

// QueryLeadsUseCase is the read side: a user's own leads, their dashboard
// numbers, and the pool overview for administrators.
type QueryLeadsUseCase struct {
	Leads  LeadRepositoryInterface
	Ledger LedgerInterface
	Now    func() time.Time
}

func NewQueryLeadsUseCase(leads LeadRepositoryInterface, ledger LedgerInterface) *QueryLeadsUseCase {
	return &QueryLeadsUseCase{
		Leads:  leads,
		Ledger: ledger,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

func (uc *QueryLeadsUseCase) Get(ctx context.Context, userID string, leadID int64) (*entity.Lead, error) {
	lead, err := uc.Leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, classify(err)
	}
	if !lead.OwnedBy(userID) {
		return nil, classify(entity.ErrNotOwner)
	}
	return lead, nil
}

// List returns the caller's leads, most recently assigned first. An empty
// status means every status.
func (uc *QueryLeadsUseCase) List(ctx context.Context, userID, status string) ([]entity.Lead, error) {
	filter := entity.LeadFilter{Limit: DefaultListLimit}
	if status != "" {
		s, err := entity.ParseStatus(status)
		if err != nil {
			return nil, classify(err)
		}
		filter.Status = s
	}

	leads, err := uc.Leads.ListByOwner(ctx, userID, filter)
	if err != nil {
		return nil, classify(err)
	}
	if leads == nil {
		leads = []entity.Lead{}
	}
	return leads, nil
}

func (uc *QueryLeadsUseCase) Stats(ctx context.Context, userID string) (*entity.LeadStats, error) {
	now := uc.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats, err := uc.Leads.OwnerStats(ctx, userID, startOfDay)
	if err != nil {
		return nil, classify(err)
	}
	credits, err := uc.Ledger.Balance(ctx, userID)
	if err != nil {
		return nil, classify(err)
	}
	stats.Credits = credits
	return stats, nil
}

func (uc *QueryLeadsUseCase) Pool(ctx context.Context) (*entity.PoolStats, error) {
	stats, err := uc.Leads.PoolStats(ctx, uc.Now())
	if err != nil {
		return nil, classify(err)
	}
	return stats, nil
}
