package balance

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository computes balances from the dong share tables
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new balance repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// NetBalances returns the non-zero net balance of every participant across
// ownerID's live dongs. An empty currency means all currencies.
func (r *Repository) NetBalances(ctx context.Context, ownerID int64, currency string) ([]*NetBalance, error) {
	query := `
		WITH shares AS (
			SELECT p.relation_id, p.display_name, d.currency, p.amount
			FROM payer_list p
			JOIN dongs d ON d.id = p.dong_id
			WHERE d.owner_id = $1 AND d.is_deleted = FALSE
			UNION ALL
			SELECT b.relation_id, b.display_name, d.currency, -b.amount
			FROM bill_list b
			JOIN dongs d ON d.id = b.dong_id
			WHERE d.owner_id = $1 AND d.is_deleted = FALSE
		)
		SELECT s.relation_id, COALESCE(MAX(r.name), MIN(s.display_name)), s.currency, SUM(s.amount)
		FROM shares s
		LEFT JOIN users_rel r ON r.id = s.relation_id
		WHERE $2 = '' OR s.currency = $2
		GROUP BY s.relation_id, CASE WHEN s.relation_id IS NULL THEN s.display_name END, s.currency
		HAVING SUM(s.amount) <> 0
		ORDER BY s.currency, SUM(s.amount) DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to get net balances: %w", err)
	}
	defer rows.Close()

	var out []*NetBalance
	for rows.Next() {
		b := &NetBalance{}
		if err := rows.Scan(&b.RelationID, &b.DisplayName, &b.Currency, &b.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan net balance: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
