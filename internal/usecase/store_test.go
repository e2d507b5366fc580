package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reverio/leadgen/internal/entity"
	"github.com/reverio/leadgen/internal/usecase"
)

// memStore is a serialisable in-memory database. WithinTx holds the store
// lock for the whole callback and restores a snapshot if it fails.
type memStore struct {
	mu     sync.Mutex
	users  map[string]entity.User
	leads  map[int64]entity.Lead
	keys   map[string]int64
	nextID int64
}

type inTxKey struct{}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[string]entity.User),
		leads: make(map[int64]entity.Lead),
		keys:  make(map[string]int64),
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(inTxKey{}) != nil {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	users, leads, keys, nextID := s.snapshot()
	if err := fn(context.WithValue(ctx, inTxKey{}, true)); err != nil {
		s.users, s.leads, s.keys, s.nextID = users, leads, keys, nextID
		return err
	}
	return nil
}

func (s *memStore) snapshot() (map[string]entity.User, map[int64]entity.Lead, map[string]int64, int64) {
	users := make(map[string]entity.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	leads := make(map[int64]entity.Lead, len(s.leads))
	for k, v := range s.leads {
		leads[k] = v
	}
	keys := make(map[string]int64, len(s.keys))
	for k, v := range s.keys {
		keys[k] = v
	}
	return users, leads, keys, s.nextID
}

func (s *memStore) run(ctx context.Context, fn func()) {
	if ctx.Value(inTxKey{}) != nil {
		fn()
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *memStore) addUser(t *testing.T, email string, credits int) string {
	t.Helper()
	u, err := entity.NewUser(email, "hash:password", entity.RoleCustomer)
	require.NoError(t, err)
	u.Credits = credits
	s.mu.Lock()
	s.users[u.ID] = *u
	s.mu.Unlock()
	return u.ID
}

func (s *memStore) addLeads(t *testing.T, n int) []int64 {
	t.Helper()
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		rec, err := entity.SourceRecord{
			CompanyName: fmt.Sprintf("Företag %d AB", i),
			Phone:       fmt.Sprintf("08-555 %05d", i),
			Source:      "test",
		}.Normalize()
		require.NoError(t, err)

		created, err := memLeads{s}.InsertIfAbsent(context.Background(), rec.ToLead(now))
		require.NoError(t, err)
		require.True(t, created)
		ids = append(ids, s.nextID)
	}
	return ids
}

func (s *memStore) credits(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id].Credits
}

func (s *memStore) lead(id int64) *entity.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.leads[id]
	return &l
}

// memUsers implements both the user repository and the credit ledger.
type memUsers struct{ *memStore }

func (r memUsers) Create(ctx context.Context, u *entity.User) error {
	var err error
	r.run(ctx, func() {
		for _, existing := range r.users {
			if existing.Email == u.Email {
				err = entity.ErrEmailAlreadyExists
				return
			}
		}
		r.users[u.ID] = *u
	})
	return err
}

func (r memUsers) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var out *entity.User
	r.run(ctx, func() {
		if u, ok := r.users[id]; ok {
			out = &u
		}
	})
	if out == nil {
		return nil, entity.ErrUserNotFound
	}
	return out, nil
}

func (r memUsers) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var out *entity.User
	r.run(ctx, func() {
		for _, u := range r.users {
			if u.Email == email {
				u := u
				out = &u
				return
			}
		}
	})
	if out == nil {
		return nil, entity.ErrUserNotFound
	}
	return out, nil
}

func (r memUsers) Debit(ctx context.Context, userID string, amount int) error {
	var err error
	r.run(ctx, func() {
		u, ok := r.users[userID]
		switch {
		case !ok:
			err = entity.ErrUserNotFound
		case u.Credits < amount:
			err = entity.ErrInsufficientCredit
		default:
			u.Credits -= amount
			r.users[userID] = u
		}
	})
	return err
}

func (r memUsers) Credit(ctx context.Context, userID string, amount int) (int, error) {
	var (
		balance int
		err     error
	)
	r.run(ctx, func() {
		u, ok := r.users[userID]
		if !ok {
			err = entity.ErrUserNotFound
			return
		}
		u.Credits += amount
		r.users[userID] = u
		balance = u.Credits
	})
	return balance, err
}

func (r memUsers) Balance(ctx context.Context, userID string) (int, error) {
	u, err := r.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.Credits, nil
}

type memLeads struct{ *memStore }

func (r memLeads) InsertIfAbsent(ctx context.Context, lead *entity.Lead) (bool, error) {
	created := false
	r.run(ctx, func() {
		if _, ok := r.keys[lead.ExternalKey]; ok {
			return
		}
		r.nextID++
		lead.ID = r.nextID
		r.leads[lead.ID] = *lead
		r.keys[lead.ExternalKey] = lead.ID
		created = true
	})
	return created, nil
}

func (r memLeads) LockAvailable(ctx context.Context, limit int) ([]entity.Lead, error) {
	var out []entity.Lead
	r.run(ctx, func() {
		for _, id := range r.sortedIDs() {
			if len(out) == limit {
				return
			}
			if l := r.leads[id]; !l.Assigned() {
				out = append(out, l)
			}
		}
	})
	return out, nil
}

func (r memLeads) CountAvailable(ctx context.Context) (int, error) {
	n := 0
	r.run(ctx, func() {
		for _, l := range r.leads {
			if !l.Assigned() {
				n++
			}
		}
	})
	return n, nil
}

func (r memLeads) Assign(ctx context.Context, lead *entity.Lead) error {
	var err error
	r.run(ctx, func() {
		stored, ok := r.leads[lead.ID]
		if !ok {
			err = entity.ErrLeadNotFound
			return
		}
		if stored.Assigned() {
			err = entity.ErrConcurrencyConflict
			return
		}
		r.leads[lead.ID] = *lead
	})
	return err
}

func (r memLeads) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	var out *entity.Lead
	r.run(ctx, func() {
		if l, ok := r.leads[id]; ok {
			out = &l
		}
	})
	if out == nil {
		return nil, entity.ErrLeadNotFound
	}
	return out, nil
}

func (r memLeads) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Lead, error) {
	return r.FindByID(ctx, id)
}

func (r memLeads) UpdateStatus(ctx context.Context, lead *entity.Lead) error {
	var err error
	r.run(ctx, func() {
		stored, ok := r.leads[lead.ID]
		if !ok {
			err = entity.ErrLeadNotFound
			return
		}
		stored.Status = lead.Status
		stored.UpdatedAt = lead.UpdatedAt
		r.leads[lead.ID] = stored
	})
	return err
}

func (r memLeads) ListByOwner(ctx context.Context, ownerID string, filter entity.LeadFilter) ([]entity.Lead, error) {
	var out []entity.Lead
	r.run(ctx, func() {
		out = r.owned(ownerID)
	})
	filtered := out[:0]
	for _, l := range out {
		if filter.Status == "" || l.Status == filter.Status {
			filtered = append(filtered, l)
		}
	}
	if filter.Limit > 0 && len(filtered) > filter.Limit {
		filtered = filtered[:filter.Limit]
	}
	return filtered, nil
}

func (r memLeads) OwnerStats(ctx context.Context, ownerID string, since time.Time) (*entity.LeadStats, error) {
	var owned []entity.Lead
	r.run(ctx, func() {
		owned = r.owned(ownerID)
	})
	stats := &entity.LeadStats{Total: len(owned), ByStatus: make(map[entity.LeadStatus]int)}
	for _, l := range owned {
		stats.ByStatus[l.Status]++
		if !l.AssignedAt.Before(since) {
			stats.Today++
		}
	}
	if len(owned) > 5 {
		owned = owned[:5]
	}
	stats.RecentLeads = owned
	return stats, nil
}

func (r memLeads) PoolStats(ctx context.Context, now time.Time) (*entity.PoolStats, error) {
	stats := &entity.PoolStats{ByStatus: make(map[entity.LeadStatus]int)}
	r.run(ctx, func() {
		for _, l := range r.leads {
			stats.Total++
			stats.ByStatus[l.Status]++
			if !l.Assigned() {
				stats.Available++
				continue
			}
			stats.Assigned++
			if l.LockedUntil != nil && l.LockedUntil.After(now) {
				stats.Locked++
			}
		}
	})
	return stats, nil
}

func (s *memStore) sortedIDs() []int64 {
	ids := make([]int64, 0, len(s.leads))
	for id := range s.leads {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// owned returns ownerID's leads, most recently assigned first.
func (s *memStore) owned(ownerID string) []entity.Lead {
	var out []entity.Lead
	for _, l := range s.leads {
		if l.OwnedBy(ownerID) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AssignedAt.Equal(*out[j].AssignedAt) {
			return out[i].AssignedAt.After(*out[j].AssignedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *usecase.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	assert.Equal(t, code, de.Code)
}
