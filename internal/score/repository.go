package score

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles score persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new score repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create appends a score entry
func (r *Repository) Create(ctx context.Context, s *Score) (*Score, error) {
	query := `
		INSERT INTO scores (user_id, dong_id, base, bonus, mutual_count, total)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	out := *s
	err := r.db.QueryRowContext(ctx, query, s.UserID, s.DongID, s.Base, s.Bonus, s.MutualCount, s.Total).
		Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create score: %w", err)
	}
	return &out, nil
}

// Summary sums every entry of userID
func (r *Repository) Summary(ctx context.Context, userID int64) (*SummaryResponse, error) {
	query := `SELECT COALESCE(SUM(total), 0), COUNT(*) FROM scores WHERE user_id = $1`

	out := &SummaryResponse{UserID: userID}
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&out.Total, &out.Count); err != nil {
		return nil, fmt.Errorf("failed to sum scores: %w", err)
	}
	return out, nil
}
