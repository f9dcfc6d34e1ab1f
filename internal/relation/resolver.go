package relation

import (
	"context"
	"errors"
	"strings"
)

// Common errors
var (
	ErrSelfRelationNotFound = errors.New("self relation not found")
	ErrInvalidContact       = errors.New("contact name and phone are required")
	ErrInvalidType          = errors.New("invalid relation type")
)

// UserLookup finds registered users by phone
type UserLookup interface {
	UserIDByPhone(ctx context.Context, phone string) (int64, bool, error)
}

// Resolver answers contact-book questions for one owner at a time
type Resolver struct {
	repo  *Repository
	users UserLookup
}

// NewResolver creates a new relation resolver
func NewResolver(repo *Repository, users UserLookup) *Resolver {
	return &Resolver{repo: repo, users: users}
}

// ResolveForUser returns the relations among ids that belong to ownerID, keyed by id.
// Ids owned by someone else are simply absent from the result.
func (s *Resolver) ResolveForUser(ctx context.Context, ownerID int64, ids []int64) (map[int64]*ContactRelation, error) {
	rels, err := s.repo.GetByIDs(ctx, ownerID, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]*ContactRelation, len(rels))
	for _, rel := range rels {
		out[rel.ID] = rel
	}
	return out, nil
}

// SelfRelation returns the owner's self relation
func (s *Resolver) SelfRelation(ctx context.Context, ownerID int64) (*ContactRelation, error) {
	rel, err := s.repo.GetSelf(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, ErrSelfRelationNotFound
	}
	return rel, nil
}

// ByPhones maps each phone to the owner's first relation with that phone.
// The self relation wins when the phone is the owner's own.
func (s *Resolver) ByPhones(ctx context.Context, ownerID int64, phones []string) (map[string]*ContactRelation, error) {
	rels, err := s.repo.ListByPhones(ctx, ownerID, phones)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*ContactRelation, len(rels))
	for _, rel := range rels {
		existing, ok := out[rel.Phone]
		if !ok || (rel.Type == TypeSelf && existing.Type != TypeSelf) {
			out[rel.Phone] = rel
		}
	}
	return out, nil
}

// Mutuals returns one entry per registered user who is mutual with the owner
// through one of the relations in ids
func (s *Resolver) Mutuals(ctx context.Context, ownerID int64, ids []int64) ([]Mutual, error) {
	all, err := s.repo.ListMutuals(ctx, ownerID, ids)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(all))
	out := make([]Mutual, 0, len(all))
	for _, m := range all {
		if seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true
		out = append(out, m)
	}
	return out, nil
}

// CreateSelf creates the owner's self relation
func (s *Resolver) CreateSelf(ctx context.Context, ownerID int64, name, phone string) error {
	_, err := s.repo.Create(ctx, &ContactRelation{
		OwnerID: ownerID,
		Name:    name,
		Phone:   phone,
		Type:    TypeSelf,
	})
	return err
}

// List returns the owner's contact book
func (s *Resolver) List(ctx context.Context, ownerID int64) ([]*ContactRelation, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// AddContact stores a new contact for ownerID. When the phone belongs to a
// registered user who already has the owner in their book, both entries are
// linked through mutual_relation_id.
func (s *Resolver) AddContact(ctx context.Context, ownerID int64, req *AddContactRequest) (*ContactRelation, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || phone == "" {
		return nil, ErrInvalidContact
	}
	if req.Type != nil && (!req.Type.Valid() || *req.Type == TypeSelf) {
		return nil, ErrInvalidType
	}

	self, err := s.SelfRelation(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	userID, registered, err := s.users.UserIDByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	typ := TypeVirtual
	if registered {
		typ = TypeReal
	}
	if req.Type != nil {
		typ = *req.Type
	}

	var back *ContactRelation
	if registered && userID != ownerID {
		backs, err := s.repo.ListByPhones(ctx, userID, []string{self.Phone})
		if err != nil {
			return nil, err
		}
		if len(backs) > 0 {
			back = backs[0]
		}
	}

	rel := &ContactRelation{OwnerID: ownerID, Name: name, Phone: phone, Type: typ}
	if back != nil {
		rel.MutualRelationID = &back.ID
	}

	created, err := s.repo.Create(ctx, rel)
	if err != nil {
		return nil, err
	}

	if back != nil && back.MutualRelationID == nil {
		if err := s.repo.SetMutual(ctx, back.ID, created.ID); err != nil {
			return nil, err
		}
	}
	return created, nil
}
