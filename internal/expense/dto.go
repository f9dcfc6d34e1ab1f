package expense

import (
	"github.com/fkhayef/dongsplit/internal/expense/split"
	"github.com/fkhayef/dongsplit/internal/score"
)

// CreateDongRequest is the "create dong" command
type CreateDongRequest struct {
	Title           string        `json:"title" validate:"required,max=255"`
	Description     string        `json:"description"`
	CategoryID      int64         `json:"category_id" validate:"required"`
	Pong            int64         `json:"pong" validate:"gt=0"`
	Currency        string        `json:"currency" validate:"required,len=3"`
	JointAccountID  *int64        `json:"joint_account_id,omitempty"`
	WalletID        *int64        `json:"wallet_id,omitempty"`
	IsIncome        bool          `json:"is_income"`
	IncludeInBudget *bool         `json:"include_in_budget,omitempty"`
	ReceiptID       *int64        `json:"receipt_id,omitempty"`
	SplitMode       split.Mode    `json:"split_mode,omitempty" validate:"omitempty,oneof=amount coefficient even"`
	Debtors         []split.Share `json:"debtors" validate:"required,min=1"`
	Payers          []split.Share `json:"payers" validate:"required,min=1"`
	SendNotify      bool          `json:"send_notify"`
}

// UpdatePongRequest changes the total of a solo dong
type UpdatePongRequest struct {
	Pong int64 `json:"pong" validate:"gt=0"`
}

// CreateDongResponse is the synchronous result of creating a dong
type CreateDongResponse struct {
	*PersistedDong
	Score *score.Score `json:"score"`
}
