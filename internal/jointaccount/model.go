package jointaccount

import (
	"errors"
	"time"

	"github.com/fkhayef/dongsplit/internal/notification"
)

// Common errors
var (
	ErrJointAccountNotFound = errors.New("joint account not found")
	ErrNotOwner             = errors.New("only the joint account owner can manage subscribers")
	ErrNotSubscribed        = errors.New("user is not subscribed to the joint account")
	ErrOwnerCannotLeave     = errors.New("the owner cannot leave the joint account")
)

// JointAccount is a shared ledger whose dongs are mirrored to every subscriber
type JointAccount struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Subscription links a user to a joint account
type Subscription struct {
	ID             int64     `json:"id"`
	JointAccountID int64     `json:"joint_account_id"`
	UserID         int64     `json:"user_id"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// Report summarizes one propagation run
type Report struct {
	JointAccountID int64                        `json:"joint_account_id"`
	OriginDongID   int64                        `json:"origin_dong_id"`
	Targets        int                          `json:"targets"`
	Replicated     int                          `json:"replicated"`
	Failed         int                          `json:"failed"`
	Replicas       map[int64]int64              `json:"replicas"` // target user -> replica dong
	Notifications  *notification.DispatchReport `json:"notifications,omitempty"`
	Err            error                        `json:"-"` // per-target failures
}
