package user

import "time"

// User is a registered account. Language and PushToken drive notification delivery.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Phone     string    `json:"phone"`
	Language  *string   `json:"language,omitempty"`
	PushToken *string   `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// PreferredLanguage returns the stored language or fallback when unset.
func (u *User) PreferredLanguage(fallback string) string {
	if u.Language == nil || *u.Language == "" {
		return fallback
	}
	return *u.Language
}
