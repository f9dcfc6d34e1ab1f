package relation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const relationColumns = `id, owner_id, name, phone, type, mutual_relation_id, created_at`

// Repository handles contact relation persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new relation repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRelation(row scanner) (*ContactRelation, error) {
	rel := &ContactRelation{}
	err := row.Scan(&rel.ID, &rel.OwnerID, &rel.Name, &rel.Phone, &rel.Type, &rel.MutualRelationID, &rel.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rel, nil
}

func collect(rows *sql.Rows) ([]*ContactRelation, error) {
	defer rows.Close()

	var out []*ContactRelation
	for rows.Next() {
		rel, err := scanRelation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan relation: %w", err)
		}
		out = append(out, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate relations: %w", err)
	}
	return out, nil
}

// Create inserts a relation
func (r *Repository) Create(ctx context.Context, rel *ContactRelation) (*ContactRelation, error) {
	query := `
		INSERT INTO users_rel (owner_id, name, phone, type, mutual_relation_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + relationColumns

	created, err := scanRelation(r.db.QueryRowContext(ctx, query,
		rel.OwnerID, rel.Name, rel.Phone, rel.Type, rel.MutualRelationID))
	if err != nil {
		return nil, fmt.Errorf("failed to create relation: %w", err)
	}
	return created, nil
}

// SetMutual points relation id at its reciprocal entry
func (r *Repository) SetMutual(ctx context.Context, id, mutualID int64) error {
	query := `UPDATE users_rel SET mutual_relation_id = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, mutualID); err != nil {
		return fmt.Errorf("failed to link mutual relation: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's whole contact book
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]*ContactRelation, error) {
	query := `SELECT ` + relationColumns + ` FROM users_rel WHERE owner_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list relations: %w", err)
	}
	return collect(rows)
}

// GetByIDs returns the subset of ids owned by ownerID
func (r *Repository) GetByIDs(ctx context.Context, ownerID int64, ids []int64) ([]*ContactRelation, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + relationColumns + ` FROM users_rel WHERE owner_id = $1 AND id = ANY($2)`
	rows, err := r.db.QueryContext(ctx, query, ownerID, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get relations: %w", err)
	}
	return collect(rows)
}

// GetSelf returns the owner's self relation
func (r *Repository) GetSelf(ctx context.Context, ownerID int64) (*ContactRelation, error) {
	query := `SELECT ` + relationColumns + ` FROM users_rel WHERE owner_id = $1 AND type = 'self'`

	rel, err := scanRelation(r.db.QueryRowContext(ctx, query, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get self relation: %w", err)
	}
	return rel, nil
}

// ListByPhones returns the owner's relations whose phone is in phones
func (r *Repository) ListByPhones(ctx context.Context, ownerID int64, phones []string) ([]*ContactRelation, error) {
	if len(phones) == 0 {
		return nil, nil
	}

	query := `SELECT ` + relationColumns + ` FROM users_rel WHERE owner_id = $1 AND phone = ANY($2) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, ownerID, pq.Array(phones))
	if err != nil {
		return nil, fmt.Errorf("failed to get relations by phone: %w", err)
	}
	return collect(rows)
}

// ListMutuals finds which of the owner's relations ids point at a registered
// user who holds a relation back to the owner's phone.
func (r *Repository) ListMutuals(ctx context.Context, ownerID int64, ids []int64) ([]Mutual, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT r.id, u.id, back.id, back.name
		FROM users_rel r
		JOIN users me ON me.id = r.owner_id
		JOIN users u ON u.phone = r.phone AND u.id <> me.id
		JOIN users_rel back ON back.owner_id = u.id AND back.phone = me.phone
		WHERE r.owner_id = $1 AND r.id = ANY($2) AND r.type <> 'self'
		ORDER BY r.id, back.id
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list mutual relations: %w", err)
	}
	defer rows.Close()

	var out []Mutual
	for rows.Next() {
		var m Mutual
		if err := rows.Scan(&m.RelationID, &m.UserID, &m.BackRelationID, &m.BackName); err != nil {
			return nil, fmt.Errorf("failed to scan mutual relation: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mutual relations: %w", err)
	}
	return out, nil
}
