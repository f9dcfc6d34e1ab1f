package score

import "time"

// Score is one append-only gamification entry for a user and dong
type Score struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	DongID      int64     `json:"dong_id"`
	Base        int64     `json:"base"`
	Bonus       int64     `json:"bonus"`
	MutualCount int       `json:"mutual_count"`
	Total       int64     `json:"total"`
	CreatedAt   time.Time `json:"created_at"`
}

// SummaryResponse is a user's running total
type SummaryResponse struct {
	UserID int64 `json:"user_id"`
	Total  int64 `json:"total"`
	Count  int   `json:"count"`
}
