package entity

import (
	"context"
	"time"
)

type Lead struct {
	ID          int64      `json:"id" db:"id"`
	ExternalKey string     `json:"-" db:"external_key"`
	CompanyName string     `json:"company_name" db:"company_name"`
	Industry    string     `json:"industry" db:"industry"`
	Location    string     `json:"location" db:"location"`
	Website     *string    `json:"website,omitempty" db:"website"`
	Email       *string    `json:"email,omitempty" db:"email"`
	Phone       string     `json:"phone" db:"phone"`
	Description string     `json:"description" db:"description"`
	Source      string     `json:"source" db:"source"`
	Status      LeadStatus `json:"status" db:"status"`
	OwnerID     *string    `json:"-" db:"owner_id"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty" db:"assigned_at"`
	LockedUntil *time.Time `json:"locked_until,omitempty" db:"locked_until"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

func (l *Lead) Assigned() bool {
	return l.OwnerID != nil && *l.OwnerID != ""
}

func (l *Lead) OwnedBy(userID string) bool {
	return l.Assigned() && *l.OwnerID == userID
}

// Assign binds the lead to its owner. Ownership is final, so a lead that
// already has an owner reports a conflict.
func (l *Lead) Assign(userID string, at time.Time, lockFor time.Duration) error {
	if l.Assigned() {
		return ErrConcurrencyConflict
	}
	until := at.Add(lockFor)
	l.OwnerID = &userID
	l.AssignedAt = &at
	l.LockedUntil = &until
	l.Status = StatusNew
	l.UpdatedAt = at
	return nil
}

// TransitionTo moves the lead along the status workflow on behalf of userID.
func (l *Lead) TransitionTo(userID string, next LeadStatus, at time.Time) error {
	if !l.OwnedBy(userID) {
		return ErrNotOwner
	}
	if !next.Valid() {
		return ErrInvalidStatus
	}
	if !l.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	l.Status = next
	l.UpdatedAt = at
	return nil
}

type LeadFilter struct {
	Status LeadStatus
	Limit  int
}

type LeadStats struct {
	Total       int                `json:"total_leads"`
	Today       int                `json:"leads_today"`
	ByStatus    map[LeadStatus]int `json:"status_counts"`
	RecentLeads []Lead             `json:"recent_leads"`
	Credits     int                `json:"credits"`
}

type PoolStats struct {
	Total     int                `json:"total_leads"`
	Available int                `json:"available_leads"`
	Assigned  int                `json:"assigned_leads"`
	Locked    int                `json:"locked_leads"`
	ByStatus  map[LeadStatus]int `json:"status_counts"`
}

type LeadRepositoryInterface interface {
	// InsertIfAbsent stores an unassigned lead unless its external key is already known.
	InsertIfAbsent(ctx context.Context, lead *Lead) (bool, error)
	// LockAvailable row-locks up to limit unassigned leads, lowest id first,
	// skipping rows another transaction already holds.
	LockAvailable(ctx context.Context, limit int) ([]Lead, error)
	// CountAvailable counts unassigned leads without taking any locks.
	CountAvailable(ctx context.Context) (int, error)
	// Assign sets the owner of an unassigned lead; ErrConcurrencyConflict if it is taken.
	Assign(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id int64) (*Lead, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*Lead, error)
	UpdateStatus(ctx context.Context, lead *Lead) error
	ListByOwner(ctx context.Context, ownerID string, filter LeadFilter) ([]Lead, error)
	OwnerStats(ctx context.Context, ownerID string, since time.Time) (*LeadStats, error)
	PoolStats(ctx context.Context, now time.Time) (*PoolStats, error)
}
