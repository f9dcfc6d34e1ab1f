package category

import (
	"context"
	"errors"
	"strings"

	"github.com/fkhayef/dongsplit/internal/i18n"
)

// ErrCategoryNotFound is returned when a category does not exist for its owner
var ErrCategoryNotFound = errors.New("category not found")

// MatchKind names the branch that produced a target category
type MatchKind string

const (
	MatchExact      MatchKind = "exact"
	MatchTranslated MatchKind = "translated"
	MatchCreated    MatchKind = "created"
)

// Match is the outcome of finding a category in another user's taxonomy
type Match struct {
	Category *Category
	Kind     MatchKind
}

// Translations is the category-title translation table
type Translations interface {
	LookupCategory(title string) (i18n.CategoryKey, bool)
}

// Matcher finds or creates the equivalent of a category in another user's set
type Matcher struct {
	repo         *Repository
	translations Translations
}

// NewMatcher creates a new category matcher
func NewMatcher(repo *Repository, translations Translations) *Matcher {
	return &Matcher{repo: repo, translations: translations}
}

// Get returns ownerID's category id or ErrCategoryNotFound
func (m *Matcher) Get(ctx context.Context, ownerID, id int64) (*Category, error) {
	c, err := m.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

// Owns reports whether categoryID belongs to ownerID
func (m *Matcher) Owns(ctx context.Context, ownerID, categoryID int64) (bool, error) {
	c, err := m.repo.GetByID(ctx, ownerID, categoryID)
	if err != nil {
		return false, err
	}
	return c != nil, nil
}

// List returns ownerID's categories
func (m *Matcher) List(ctx context.Context, ownerID int64) ([]*Category, error) {
	return m.repo.ListByOwner(ctx, ownerID)
}

// Create adds a category for ownerID
func (m *Matcher) Create(ctx context.Context, ownerID int64, req *CreateCategoryRequest) (*Category, error) {
	return m.repo.Create(ctx, ownerID, strings.TrimSpace(req.Title), req.Icon)
}

// Resolve finds the category in targetUserID's set equivalent to origin.
// Matching order is exact title, then any translation of origin's title,
// then a new category cloned from origin.
func (m *Matcher) Resolve(ctx context.Context, targetUserID int64, origin *Category) (*Match, error) {
	existing, err := m.repo.ListByOwner(ctx, targetUserID)
	if err != nil {
		return nil, err
	}

	for _, c := range existing {
		if c.Title == origin.Title {
			return &Match{Category: c, Kind: MatchExact}, nil
		}
	}

	if key, ok := m.translations.LookupCategory(origin.Title); ok {
		wanted := make(map[string]bool, len(key.Titles))
		for _, title := range key.Titles {
			wanted[normalize(title)] = true
		}
		for _, c := range existing {
			if wanted[normalize(c.Title)] {
				return &Match{Category: c, Kind: MatchTranslated}, nil
			}
		}
	}

	created, err := m.repo.Create(ctx, targetUserID, origin.Title, origin.Icon)
	if err != nil {
		return nil, err
	}
	return &Match{Category: created, Kind: MatchCreated}, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
