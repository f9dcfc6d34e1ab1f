package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const categoryColumns = `id, owner_id, title, icon, created_at`

// Repository handles category persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new category repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a category for ownerID
func (r *Repository) Create(ctx context.Context, ownerID int64, title, icon string) (*Category, error) {
	query := `
		INSERT INTO categories (owner_id, title, icon)
		VALUES ($1, $2, $3)
		RETURNING ` + categoryColumns

	c := &Category{}
	err := r.db.QueryRowContext(ctx, query, ownerID, title, icon).
		Scan(&c.ID, &c.OwnerID, &c.Title, &c.Icon, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return c, nil
}

// GetByID returns the category only when it belongs to ownerID
func (r *Repository) GetByID(ctx context.Context, ownerID, id int64) (*Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 AND owner_id = $2`

	c := &Category{}
	err := r.db.QueryRowContext(ctx, query, id, ownerID).
		Scan(&c.ID, &c.OwnerID, &c.Title, &c.Icon, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// ListByOwner returns every category of ownerID
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]*Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE owner_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var out []*Category
	for rows.Next() {
		c := &Category{}
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Title, &c.Icon, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return out, nil
}
