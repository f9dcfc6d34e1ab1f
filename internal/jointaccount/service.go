package jointaccount

import (
	"context"
	"strings"
)

// Service manages joint accounts and their subscribers
type Service struct {
	repo *Repository
}

// NewService creates a new joint account service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a joint account owned and subscribed by ownerID
func (s *Service) Create(ctx context.Context, ownerID int64, req *CreateJointAccountRequest) (*JointAccount, error) {
	return s.repo.Create(ctx, ownerID, strings.TrimSpace(req.Name))
}

// Get returns a joint account visible to userID
func (s *Service) Get(ctx context.Context, userID, id int64) (*JointAccount, error) {
	ja, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ja == nil {
		return nil, ErrJointAccountNotFound
	}

	ok, err := s.repo.IsActiveSubscriber(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrJointAccountNotFound
	}
	return ja, nil
}

// List returns the joint accounts userID is subscribed to
func (s *Service) List(ctx context.Context, userID int64) ([]*JointAccount, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Subscribe adds req.UserID to the account. Only the owner may do this.
func (s *Service) Subscribe(ctx context.Context, actorID, id int64, req *SubscribeRequest) (*Subscription, error) {
	ja, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ja == nil {
		return nil, ErrJointAccountNotFound
	}
	if ja.OwnerID != actorID {
		return nil, ErrNotOwner
	}
	return s.repo.Subscribe(ctx, id, req.UserID)
}

// Leave ends userID's subscription. The owner stays subscribed.
func (s *Service) Leave(ctx context.Context, userID, id int64) error {
	ja, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ja == nil {
		return ErrJointAccountNotFound
	}
	if ja.OwnerID == userID {
		return ErrOwnerCannotLeave
	}
	return s.repo.Unsubscribe(ctx, id, userID)
}

// IsActiveSubscriber reports whether userID may record dongs on the account
func (s *Service) IsActiveSubscriber(ctx context.Context, jointAccountID, userID int64) (bool, error) {
	return s.repo.IsActiveSubscriber(ctx, jointAccountID, userID)
}
