package user

// CreateUserRequest represents the request body for registering a user
type CreateUserRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Phone    string  `json:"phone" validate:"required"`
	Language *string `json:"language,omitempty"`
}

// UpdatePreferencesRequest changes the language and/or push token of the acting user
type UpdatePreferencesRequest struct {
	Language  *string `json:"language,omitempty"`
	PushToken *string `json:"push_token,omitempty"`
}

// UserResponse represents the response for a single user
type UserResponse struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Phone     string  `json:"phone"`
	Language  *string `json:"language,omitempty"`
	HasPush   bool    `json:"has_push"`
	CreatedAt string  `json:"created_at"`
}

// ToResponse converts a User model to a UserResponse DTO
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Phone:     u.Phone,
		Language:  u.Language,
		HasPush:   u.PushToken != nil && *u.PushToken != "",
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
