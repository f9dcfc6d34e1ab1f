package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fkhayef/dongsplit/internal/database"
)

const dongColumns = `id, owner_id, title, description, category_id, pong, currency, joint_account_id,
	wallet_id, is_income, include_in_budget, receipt_id, origin_dong_id, is_deleted, created_at`

// Repository persists dongs and their share rows. Every write is scoped to one owner.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new dong repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDong(row scanner) (*Dong, error) {
	d := &Dong{}
	err := row.Scan(
		&d.ID,
		&d.OwnerID,
		&d.Title,
		&d.Description,
		&d.CategoryID,
		&d.Pong,
		&d.Currency,
		&d.JointAccountID,
		&d.WalletID,
		&d.IsIncome,
		&d.IncludeInBudget,
		&d.ReceiptID,
		&d.OriginDongID,
		&d.IsDeleted,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Persist writes d and its shares for ownerID in one transaction. Shares get
// the dong's category, currency and timestamp. On failure nothing is written
// and the error wraps ErrPersistenceFailed.
func (r *Repository) Persist(ctx context.Context, ownerID int64, d *Dong, debtors []*DebtorShare, payers []*PayerShare) (*PersistedDong, error) {
	d.OwnerID = ownerID
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO dongs (owner_id, title, description, category_id, pong, currency, joint_account_id,
				wallet_id, is_income, include_in_budget, receipt_id, origin_dong_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING id`,
			d.OwnerID, d.Title, d.Description, d.CategoryID, d.Pong, d.Currency, d.JointAccountID,
			d.WalletID, d.IsIncome, d.IncludeInBudget, d.ReceiptID, d.OriginDongID, d.CreatedAt,
		).Scan(&d.ID)
		if err != nil {
			return fmt.Errorf("insert dong: %w", err)
		}

		for _, s := range debtors {
			s.DongID, s.CategoryID, s.Currency, s.CreatedAt = d.ID, d.CategoryID, d.Currency, d.CreatedAt
			err := tx.QueryRowContext(ctx, `
				INSERT INTO bill_list (dong_id, relation_id, display_name, amount, category_id, currency, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id`,
				s.DongID, s.RelationID, s.DisplayName, s.Amount, s.CategoryID, s.Currency, s.CreatedAt,
			).Scan(&s.ID)
			if err != nil {
				return fmt.Errorf("insert debtor share: %w", err)
			}
		}

		for _, s := range payers {
			s.DongID = d.ID
			err := tx.QueryRowContext(ctx, `
				INSERT INTO payer_list (dong_id, relation_id, display_name, amount)
				VALUES ($1, $2, $3, $4)
				RETURNING id`,
				s.DongID, s.RelationID, s.DisplayName, s.Amount,
			).Scan(&s.ID)
			if err != nil {
				return fmt.Errorf("insert payer share: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	return &PersistedDong{Dong: d, Debtors: debtors, Payers: payers}, nil
}

// GetByID loads a non-deleted dong of ownerID with its shares
func (r *Repository) GetByID(ctx context.Context, ownerID, id int64) (*PersistedDong, error) {
	query := `SELECT ` + dongColumns + ` FROM dongs WHERE id = $1 AND owner_id = $2 AND is_deleted = FALSE`

	d, err := scanDong(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get dong: %w", err)
	}

	debtors, err := r.debtors(ctx, id)
	if err != nil {
		return nil, err
	}
	payers, err := r.payers(ctx, id)
	if err != nil {
		return nil, err
	}

	return &PersistedDong{Dong: d, Debtors: debtors, Payers: payers}, nil
}

func (r *Repository) debtors(ctx context.Context, dongID int64) ([]*DebtorShare, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, dong_id, relation_id, display_name, amount, category_id, currency, created_at
		FROM bill_list
		WHERE dong_id = $1
		ORDER BY id`, dongID)
	if err != nil {
		return nil, fmt.Errorf("failed to get debtor shares: %w", err)
	}
	defer rows.Close()

	var out []*DebtorShare
	for rows.Next() {
		s := &DebtorShare{}
		if err := rows.Scan(&s.ID, &s.DongID, &s.RelationID, &s.DisplayName, &s.Amount, &s.CategoryID, &s.Currency, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan debtor share: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) payers(ctx context.Context, dongID int64) ([]*PayerShare, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, dong_id, relation_id, display_name, amount
		FROM payer_list
		WHERE dong_id = $1
		ORDER BY id`, dongID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payer shares: %w", err)
	}
	defer rows.Close()

	var out []*PayerShare
	for rows.Next() {
		s := &PayerShare{}
		if err := rows.Scan(&s.ID, &s.DongID, &s.RelationID, &s.DisplayName, &s.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan payer share: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// List returns a page of ownerID's non-deleted dongs, newest first
func (r *Repository) List(ctx context.Context, ownerID int64, limit, offset int) ([]*Dong, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM dongs WHERE owner_id = $1 AND is_deleted = FALSE`
	if err := r.db.QueryRowContext(ctx, countQuery, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count dongs: %w", err)
	}

	query := `SELECT ` + dongColumns + ` FROM dongs
		WHERE owner_id = $1 AND is_deleted = FALSE
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list dongs: %w", err)
	}
	defer rows.Close()

	var out []*Dong
	for rows.Next() {
		d, err := scanDong(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan dong: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate dongs: %w", err)
	}
	return out, total, nil
}

// UpdatePong sets pong on a solo dong, its single share rows and its
// replicas' rows, which are solo as well.
func (r *Repository) UpdatePong(ctx context.Context, id, pong int64) error {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE dongs SET pong = $2 WHERE (id = $1 OR origin_dong_id = $1) AND is_deleted = FALSE`,
			id, pong); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE bill_list SET amount = $2 WHERE dong_id IN (SELECT id FROM dongs WHERE (id = $1 OR origin_dong_id = $1) AND is_deleted = FALSE)`,
			id, pong); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE payer_list SET amount = $2 WHERE dong_id IN (SELECT id FROM dongs WHERE (id = $1 OR origin_dong_id = $1) AND is_deleted = FALSE)`,
			id, pong)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update pong: %w", err)
	}
	return nil
}

// SoftDelete marks ownerID's dong deleted along with every replica whose
// origin it is, and returns how many replicas were marked. A replica never
// marks its origin.
func (r *Repository) SoftDelete(ctx context.Context, ownerID, id int64) (int64, error) {
	var replicas int64

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE dongs SET is_deleted = TRUE WHERE id = $1 AND owner_id = $2 AND is_deleted = FALSE`,
			id, ownerID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrDongNotFound
		}

		res, err = tx.ExecContext(ctx,
			`UPDATE dongs SET is_deleted = TRUE WHERE origin_dong_id = $1 AND is_deleted = FALSE`, id)
		if err != nil {
			return err
		}
		replicas, err = res.RowsAffected()
		return err
	})
	if err != nil {
		if errors.Is(err, ErrDongNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to delete dong: %w", err)
	}
	return replicas, nil
}
