package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/reverio/leadgen/internal/entity"
)

type IngestResult int

const (
	IngestCreated IngestResult = iota
	IngestDuplicate
	IngestRejected
)

func (r IngestResult) String() string {
	switch r {
	case IngestCreated:
		return "created"
	case IngestDuplicate:
		return "duplicate"
	default:
		return "rejected"
	}
}

// IngestRecordsUseCase adds source records to the unassigned pool. It only
// ever inserts, so it cannot race with assignment.
type IngestRecordsUseCase struct {
	Leads  LeadRepositoryInterface
	Now    func() time.Time
	Logger *zap.Logger
}

func NewIngestRecordsUseCase(leads LeadRepositoryInterface, logger *zap.Logger) *IngestRecordsUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestRecordsUseCase{
		Leads:  leads,
		Now:    func() time.Time { return time.Now().UTC() },
		Logger: logger,
	}
}

// Ingest stores one record. Replaying a record with a known external key is
// a no-op reported as IngestDuplicate.
func (uc *IngestRecordsUseCase) Ingest(ctx context.Context, record entity.SourceRecord) (IngestResult, error) {
	normalized, err := record.Normalize()
	if err != nil {
		return IngestRejected, classify(err)
	}

	created, err := uc.Leads.InsertIfAbsent(ctx, normalized.ToLead(uc.Now()))
	if err != nil {
		return IngestRejected, classify(err)
	}
	if !created {
		return IngestDuplicate, nil
	}
	return IngestCreated, nil
}

// Execute ingests a batch. Invalid records are counted and skipped; a
// storage failure stops the batch and is returned with the partial report.
func (uc *IngestRecordsUseCase) Execute(ctx context.Context, records []entity.SourceRecord) (IngestReport, error) {
	report := IngestReport{Received: len(records)}

	for _, rec := range records {
		result, err := uc.Ingest(ctx, rec)
		switch {
		case err == nil && result == IngestCreated:
			report.Created++
		case err == nil:
			report.Duplicates++
		case errors.Is(err, entity.ErrInvalidRecord):
			report.Rejected++
			uc.Logger.Debug("source record rejected", zap.String("company", rec.CompanyName), zap.Error(err))
		default:
			return report, err
		}
	}

	return report, nil
}
