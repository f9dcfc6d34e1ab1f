package jointaccount

// CreateJointAccountRequest represents the request to create a joint account
type CreateJointAccountRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// SubscribeRequest adds a user to a joint account
type SubscribeRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}
