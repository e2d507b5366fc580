package handlers

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/reverio/leadgen/internal/entity"
	"github.com/reverio/leadgen/internal/usecase"
)

// MockRegisterer
type MockRegisterer struct {
	mock.Mock
}

func (m *MockRegisterer) Execute(ctx context.Context, input usecase.RegisterUserInput) (*usecase.UserOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UserOutput), args.Error(1)
}

// MockAuthenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Execute(ctx context.Context, input usecase.AuthenticateUserInput) (*usecase.UserOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UserOutput), args.Error(1)
}

func (m *MockAuthenticator) FindUser(ctx context.Context, id string) (*usecase.UserOutput, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UserOutput), args.Error(1)
}

func (m *MockAuthenticator) FindUserByEmail(ctx context.Context, email string) (*usecase.UserOutput, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UserOutput), args.Error(1)
}

// MockLeadAssigner
type MockLeadAssigner struct {
	mock.Mock
}

func (m *MockLeadAssigner) Execute(ctx context.Context, input usecase.AssignLeadsInput) (*usecase.AssignLeadsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AssignLeadsOutput), args.Error(1)
}

// MockStatusUpdater
type MockStatusUpdater struct {
	mock.Mock
}

func (m *MockStatusUpdater) Execute(ctx context.Context, input usecase.UpdateLeadStatusInput) (*entity.Lead, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

// MockLeadQuerier
type MockLeadQuerier struct {
	mock.Mock
}

func (m *MockLeadQuerier) Get(ctx context.Context, userID string, leadID int64) (*entity.Lead, error) {
	args := m.Called(ctx, userID, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadQuerier) List(ctx context.Context, userID, status string) ([]entity.Lead, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

func (m *MockLeadQuerier) Stats(ctx context.Context, userID string) (*entity.LeadStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LeadStats), args.Error(1)
}

func (m *MockLeadQuerier) Pool(ctx context.Context) (*entity.PoolStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PoolStats), args.Error(1)
}

// MockCreditAdder
type MockCreditAdder struct {
	mock.Mock
}

func (m *MockCreditAdder) Execute(ctx context.Context, input usecase.AddCreditsInput) (*usecase.AddCreditsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AddCreditsOutput), args.Error(1)
}

// MockFeedRunner
type MockFeedRunner struct {
	mock.Mock
}

func (m *MockFeedRunner) RunOnce(ctx context.Context) (usecase.IngestReport, error) {
	args := m.Called(ctx)
	return args.Get(0).(usecase.IngestReport), args.Error(1)
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type fakeConn struct{ closed bool }

func (c fakeConn) IsClosed() bool { return c.closed }

func ownedLead(id int64, owner string, status entity.LeadStatus) *entity.Lead {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	until := now.Add(180 * 24 * time.Hour)
	return &entity.Lead{
		ID:          id,
		CompanyName: "Test AB",
		Phone:       "0812345678",
		Status:      status,
		OwnerID:     &owner,
		AssignedAt:  &now,
		LockedUntil: &until,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
