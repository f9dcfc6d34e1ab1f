package expense

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrDongNotFound      = errors.New("dong not found")
	ErrPersistenceFailed = errors.New("failed to persist dong")
	ErrSplitImmutable    = errors.New("only a dong without other participants can change its pong")
	ErrInvalidPong       = errors.New("pong must be positive")
)

// Dong is one expense or income event owned by exactly one user. Joint
// account replicas are separate dongs pointing back through OriginDongID.
type Dong struct {
	ID              int64     `json:"id"`
	OwnerID         int64     `json:"owner_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CategoryID      int64     `json:"category_id"`
	Pong            int64     `json:"pong"` // minor currency units
	Currency        string    `json:"currency"`
	JointAccountID  *int64    `json:"joint_account_id,omitempty"`
	WalletID        *int64    `json:"wallet_id,omitempty"`
	IsIncome        bool      `json:"is_income"`
	IncludeInBudget bool      `json:"include_in_budget"`
	ReceiptID       *int64    `json:"receipt_id,omitempty"`
	OriginDongID    *int64    `json:"origin_dong_id,omitempty"`
	IsDeleted       bool      `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}

// DebtorShare is what one participant owes on a dong. Category, currency and
// timestamp are copied from the dong.
type DebtorShare struct {
	ID          int64     `json:"id"`
	DongID      int64     `json:"dong_id"`
	RelationID  *int64    `json:"relation_id"` // nil on replicas with no matching contact
	DisplayName string    `json:"display_name"`
	Amount      int64     `json:"amount"`
	CategoryID  int64     `json:"category_id"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
}

// PayerShare is what one participant actually paid on a dong
type PayerShare struct {
	ID          int64  `json:"id"`
	DongID      int64  `json:"dong_id"`
	RelationID  *int64 `json:"relation_id"`
	DisplayName string `json:"display_name"`
	Amount      int64  `json:"amount"`
}

// PersistedDong is a dong with its share rows
type PersistedDong struct {
	Dong    *Dong          `json:"dong"`
	Debtors []*DebtorShare `json:"debtors"`
	Payers  []*PayerShare  `json:"payers"`
}

// Solo reports whether d has a single debtor and a single payer, both selfID
func (d *PersistedDong) Solo(selfID int64) bool {
	if len(d.Debtors) != 1 || len(d.Payers) != 1 {
		return false
	}
	debtor, payer := d.Debtors[0].RelationID, d.Payers[0].RelationID
	return debtor != nil && payer != nil && *debtor == selfID && *payer == selfID
}
