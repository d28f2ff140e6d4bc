package usermock

import (
	"context"
	"errors"
	"sync"

	"arthalend-backend/internal/domain/user"
)

// Ensure compile-time compliance
var (
	_ user.Repository        = (*Repository)(nil)
	_ user.SessionRepository = (*SessionRepository)(nil)
)

var errUnimplemented = errors.New("usermock: method not implemented")

// Repository is a function-backed mock that satisfies user.Repository.
// Fill in the function fields you need in a test; unfilled ones return
// errUnimplemented.
type Repository struct {
	CreateFn     func(ctx context.Context, u *user.User) error
	SaveFn       func(ctx context.Context, u *user.User) error
	GetByPhoneFn func(ctx context.Context, phone string) (*user.User, error)
}

func New() *Repository { return &Repository{} }

// Seeded returns a repository backed by a fixed phone-keyed map, which covers
// the common lookup-only cases.
func Seeded(users ...*user.User) *Repository {
	byPhone := make(map[string]*user.User, len(users))
	for _, u := range users {
		byPhone[u.Phone] = u
	}
	var mu sync.Mutex
	return &Repository{
		GetByPhoneFn: func(_ context.Context, phone string) (*user.User, error) {
			mu.Lock()
			defer mu.Unlock()
			u, ok := byPhone[phone]
			if !ok {
				return nil, user.ErrNotFound
			}
			cp := *u
			return &cp, nil
		},
		CreateFn: func(_ context.Context, u *user.User) error {
			mu.Lock()
			defer mu.Unlock()
			cp := *u
			byPhone[u.Phone] = &cp
			return nil
		},
		SaveFn: func(_ context.Context, u *user.User) error {
			mu.Lock()
			defer mu.Unlock()
			cp := *u
			byPhone[u.Phone] = &cp
			return nil
		},
	}
}

func (m *Repository) Create(ctx context.Context, u *user.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return errUnimplemented
}

func (m *Repository) Save(ctx context.Context, u *user.User) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, u)
	}
	return errUnimplemented
}

func (m *Repository) GetByPhone(ctx context.Context, phone string) (*user.User, error) {
	if m.GetByPhoneFn != nil {
		return m.GetByPhoneFn(ctx, phone)
	}
	return nil, errUnimplemented
}

// SessionRepository is a function-backed mock for user.SessionRepository.
type SessionRepository struct {
	CreateFn        func(ctx context.Context, s *user.Session) error
	GetByTokenFn    func(ctx context.Context, token string) (*user.Session, error)
	DeleteByTokenFn func(ctx context.Context, token string) error
}

func (m *SessionRepository) Create(ctx context.Context, s *user.Session) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, s)
	}
	return errUnimplemented
}

func (m *SessionRepository) GetByToken(ctx context.Context, token string) (*user.Session, error) {
	if m.GetByTokenFn != nil {
		return m.GetByTokenFn(ctx, token)
	}
	return nil, errUnimplemented
}

func (m *SessionRepository) DeleteByToken(ctx context.Context, token string) error {
	if m.DeleteByTokenFn != nil {
		return m.DeleteByTokenFn(ctx, token)
	}
	return errUnimplemented
}
