package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/teamflow/auth-service/internal/domain"
	"github.com/teamflow/auth-service/internal/repository"
	"github.com/teamflow/auth-service/internal/store"
	"github.com/teamflow/auth-service/pkg/database"
)

// fakeUserRepo is an in-memory UserRepository for service tests.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == strings.ToLower(user.Email) {
			return repository.ErrDuplicateEmail
		}
		if existing.Username == user.Username {
			return repository.ErrDuplicateUsername
		}
	}

	r.nextID++
	user.ID = r.nextID
	user.Email = strings.ToLower(user.Email)
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = "user"
	}
	if user.PreferredLocale == "" {
		user.PreferredLocale = "en"
	}

	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == strings.ToLower(email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("email %s: %w", email, repository.ErrNotFound)
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("username %s: %w", username, repository.ErrNotFound)
}

func (r *fakeUserRepo) GetByProvider(_ context.Context, provider, providerID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Provider != nil && *user.Provider == provider &&
			user.ProviderID != nil && *user.ProviderID == providerID {
			clone := *user
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("provider %s/%s: %w", provider, providerID, repository.ErrNotFound)
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	user.LastLoginAt = &now
	return nil
}

// fakeVerificationRepo is an in-memory EmailVerificationRepository.
type fakeVerificationRepo struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]*domain.EmailVerification
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{records: make(map[int64]*domain.EmailVerification)}
}

func (r *fakeVerificationRepo) Create(_ context.Context, v *domain.EmailVerification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	v.ID = r.nextID
	v.CreatedAt = time.Now()
	clone := *v
	r.records[v.ID] = &clone
	return nil
}

func (r *fakeVerificationRepo) GetByToken(_ context.Context, token string) (*domain.EmailVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range r.records {
		if v.Token == token {
			clone := *v
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeVerificationRepo) MarkVerified(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.records[id]
	if !ok {
		return repository.ErrNotFound
	}
	v.Verified = true
	return nil
}

// recordingEventSink captures published events for assertions.
type recordingEventSink struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (s *recordingEventSink) Publish(_ context.Context, event domain.AuthEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingEventSink) byType(eventType string) []domain.AuthEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.AuthEvent
	for _, e := range s.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// newMiniredisStore spins up a miniredis-backed StateStore plus the
// miniredis handle for TTL manipulation.
func newMiniredisStore(t *testing.T) (store.StateStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return store.NewRedisStore(&database.Redis{Client: client}), mr
}
