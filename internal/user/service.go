package user

import (
	"context"
	"errors"
	"strings"
)

// Common errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrPhoneAlreadyInUse = errors.New("phone already in use")
)

// SelfRelationCreator creates the mandatory self contact relation for a new user.
type SelfRelationCreator interface {
	CreateSelf(ctx context.Context, ownerID int64, name, phone string) error
}

// Service handles user business logic
type Service struct {
	repo      *Repository
	relations SelfRelationCreator
}

// NewService creates a new user service with repository dependency injected
func NewService(repo *Repository, relations SelfRelationCreator) *Service {
	return &Service{repo: repo, relations: relations}
}

// Create registers a user and its self relation
func (s *Service) Create(ctx context.Context, req *CreateUserRequest) (*User, error) {
	req.Phone = strings.TrimSpace(req.Phone)

	existing, err := s.repo.GetByPhone(ctx, req.Phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPhoneAlreadyInUse
	}

	u, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.relations.CreateSelf(ctx, u.ID, u.Username, u.Phone); err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// UpdatePreferences changes the acting user's language or push token
func (s *Service) UpdatePreferences(ctx context.Context, id int64, req *UpdatePreferencesRequest) (*User, error) {
	if req.Language != nil {
		lang := strings.ToLower(strings.TrimSpace(*req.Language))
		req.Language = &lang
	}

	u, err := s.repo.UpdatePreferences(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
