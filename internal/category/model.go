package category

import "time"

// Category is a per-user taxonomy leaf. Categories are never shared between users.
type Category struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Title     string    `json:"title"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCategoryRequest represents the request body for creating a category
type CreateCategoryRequest struct {
	Title string `json:"title" validate:"required"`
	Icon  string `json:"icon"`
}
