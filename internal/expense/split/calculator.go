package split

import (
	"context"

	"github.com/fkhayef/dongsplit/internal/relation"
)

// Relations resolves an owner's contact relations by id
type Relations interface {
	ResolveForUser(ctx context.Context, ownerID int64, ids []int64) (map[int64]*relation.ContactRelation, error)
}

// Categories checks category ownership
type Categories interface {
	Owns(ctx context.Context, ownerID, categoryID int64) (bool, error)
}

// Subscriptions checks joint account membership
type Subscriptions interface {
	IsActiveSubscriber(ctx context.Context, jointAccountID, userID int64) (bool, error)
}

// Request is a split to be admitted for the acting user
type Request struct {
	ActorID        int64
	CategoryID     int64
	Currency       string
	Pong           int64
	JointAccountID *int64
	Mode           Mode
	Debtors        []Share
	Payers         []Share
}

// Admission is an accepted split with final amounts and the relations it references
type Admission struct {
	Debtors   []Share
	Payers    []Share
	Relations map[int64]*relation.ContactRelation
}

// Calculator performs admission control for split requests. Nothing is
// written; a nil error means the split may be persisted as returned.
type Calculator struct {
	factory       *Factory
	relations     Relations
	categories    Categories
	subscriptions Subscriptions
}

// NewCalculator creates a new split calculator
func NewCalculator(factory *Factory, relations Relations, categories Categories, subscriptions Subscriptions) *Calculator {
	return &Calculator{
		factory:       factory,
		relations:     relations,
		categories:    categories,
		subscriptions: subscriptions,
	}
}

// Validate checks req and returns the admitted split
func (c *Calculator) Validate(ctx context.Context, req *Request) (*Admission, error) {
	if req.Pong <= 0 {
		return nil, ErrNonPositivePong
	}
	if len(req.Debtors) == 0 || len(req.Payers) == 0 {
		return nil, ErrNoParticipants
	}

	strategy, err := c.factory.Create(req.Mode)
	if err != nil {
		return nil, err
	}

	debtors, err := strategy.Allocate(req.Pong, req.Debtors)
	if err != nil {
		return nil, err
	}
	payers, err := AmountStrategy{}.Allocate(req.Pong, req.Payers)
	if err != nil {
		return nil, err
	}

	if !addsUp(debtors, req.Pong) || !addsUp(payers, req.Pong) {
		return nil, ErrAmountMismatch
	}

	ids, err := relationIDs(debtors, payers)
	if err != nil {
		return nil, err
	}

	owned, err := c.relations.ResolveForUser(ctx, req.ActorID, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := owned[id]; !ok {
			return nil, ErrInvalidRelation
		}
	}

	ok, err := c.categories.Owns(ctx, req.ActorID, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCategory
	}

	if req.JointAccountID != nil {
		ok, err := c.subscriptions.IsActiveSubscriber(ctx, *req.JointAccountID, req.ActorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInvalidJointAccount
		}
	}

	return &Admission{Debtors: debtors, Payers: payers, Relations: owned}, nil
}

// relationIDs returns the distinct relation ids of both lists. A relation
// repeated inside one list is rejected.
func relationIDs(debtors, payers []Share) ([]int64, error) {
	seen := make(map[int64]bool, len(debtors)+len(payers))
	var ids []int64

	for _, list := range [][]Share{debtors, payers} {
		inList := make(map[int64]bool, len(list))
		for _, s := range list {
			if inList[s.RelationID] {
				return nil, ErrInvalidRelation
			}
			inList[s.RelationID] = true
			if !seen[s.RelationID] {
				seen[s.RelationID] = true
				ids = append(ids, s.RelationID)
			}
		}
	}
	return ids, nil
}
