// Package testutil holds in-memory fakes shared by the service and
// transport tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"user-directory-api/internal/domain"
)

// MemStore is an in-memory domain.UserStore with the same observable
// behavior as the gorm adapter: lowercase-unique email, createdAt-desc
// ordering, substring search, store-managed timestamps.
type MemStore struct {
	mu    sync.Mutex
	users map[string]domain.User
	clock time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{
		users: make(map[string]domain.User),
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps so ordering assertions are
// deterministic.
func (s *MemStore) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

func (s *MemStore) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if other.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := s.tick()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = *u
	return nil
}

func (s *MemStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *MemStore) FindByEmail(_ context.Context, email, excludeID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email && u.ID != excludeID {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s *MemStore) List(_ context.Context, q domain.ListQuery) ([]domain.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := s.match(q.Search, false)
	total := int64(len(matched))

	start := (q.Page - 1) * q.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *MemStore) FindAllForExport(_ context.Context, search string) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match(search, true), nil
}

func (s *MemStore) Save(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if other.Email == u.Email && other.ID != u.ID {
			return domain.ErrDuplicateEmail
		}
	}
	u.UpdatedAt = s.tick()
	s.users[u.ID] = *u
	return nil
}

func (s *MemStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemStore) match(search string, includeMobile bool) []domain.User {
	needle := strings.ToLower(strings.TrimSpace(search))
	var out []domain.User
	for _, u := range s.users {
		if needle == "" || contains(u, needle, includeMobile) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func contains(u domain.User, needle string, includeMobile bool) bool {
	fields := []string{u.FirstName, u.LastName, u.Email, u.Location}
	if includeMobile {
		fields = append(fields, u.Mobile)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
