package jointaccount

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fkhayef/dongsplit/internal/database"
)

// Repository handles joint account and subscription persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new joint account repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a joint account and subscribes its owner in one transaction
func (r *Repository) Create(ctx context.Context, ownerID int64, name string) (*JointAccount, error) {
	ja := &JointAccount{}

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO joint_accounts (owner_id, name)
			VALUES ($1, $2)
			RETURNING id, owner_id, name, created_at`,
			ownerID, name,
		).Scan(&ja.ID, &ja.OwnerID, &ja.Name, &ja.CreatedAt)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO joint_account_subscriptions (joint_account_id, user_id)
			VALUES ($1, $2)`,
			ja.ID, ownerID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create joint account: %w", err)
	}

	return ja, nil
}

// GetByID retrieves a joint account by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*JointAccount, error) {
	query := `
		SELECT id, owner_id, name, created_at
		FROM joint_accounts
		WHERE id = $1
	`

	ja := &JointAccount{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&ja.ID, &ja.OwnerID, &ja.Name, &ja.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get joint account: %w", err)
	}

	return ja, nil
}

// ListByUser returns the joint accounts userID is actively subscribed to
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]*JointAccount, error) {
	query := `
		SELECT ja.id, ja.owner_id, ja.name, ja.created_at
		FROM joint_accounts ja
		JOIN joint_account_subscriptions s ON s.joint_account_id = ja.id
		WHERE s.user_id = $1 AND s.is_active = TRUE
		ORDER BY ja.created_at DESC, ja.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list joint accounts: %w", err)
	}
	defer rows.Close()

	var out []*JointAccount
	for rows.Next() {
		ja := &JointAccount{}
		if err := rows.Scan(&ja.ID, &ja.OwnerID, &ja.Name, &ja.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan joint account: %w", err)
		}
		out = append(out, ja)
	}
	return out, rows.Err()
}

// Subscribe activates userID's subscription, creating it if needed
func (r *Repository) Subscribe(ctx context.Context, jointAccountID, userID int64) (*Subscription, error) {
	query := `
		INSERT INTO joint_account_subscriptions (joint_account_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (joint_account_id, user_id) DO UPDATE SET is_active = TRUE
		RETURNING id, joint_account_id, user_id, is_active, created_at
	`

	s := &Subscription{}
	err := r.db.QueryRowContext(ctx, query, jointAccountID, userID).
		Scan(&s.ID, &s.JointAccountID, &s.UserID, &s.IsActive, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return s, nil
}

// Unsubscribe deactivates userID's subscription
func (r *Repository) Unsubscribe(ctx context.Context, jointAccountID, userID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE joint_account_subscriptions SET is_active = FALSE
		WHERE joint_account_id = $1 AND user_id = $2 AND is_active = TRUE`,
		jointAccountID, userID)
	if err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	if n == 0 {
		return ErrNotSubscribed
	}
	return nil
}

// ListActiveSubscribers returns the active subscriptions of a joint account,
// leaving out excludeUserID
func (r *Repository) ListActiveSubscribers(ctx context.Context, jointAccountID, excludeUserID int64) ([]*Subscription, error) {
	query := `
		SELECT id, joint_account_id, user_id, is_active, created_at
		FROM joint_account_subscriptions
		WHERE joint_account_id = $1 AND is_active = TRUE AND user_id <> $2
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, jointAccountID, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	defer rows.Close()

	var out []*Subscription
	for rows.Next() {
		s := &Subscription{}
		if err := rows.Scan(&s.ID, &s.JointAccountID, &s.UserID, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// IsActiveSubscriber reports whether userID holds an active subscription
func (r *Repository) IsActiveSubscriber(ctx context.Context, jointAccountID, userID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM joint_account_subscriptions
			WHERE joint_account_id = $1 AND user_id = $2 AND is_active = TRUE
		)`, jointAccountID, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return ok, nil
}
