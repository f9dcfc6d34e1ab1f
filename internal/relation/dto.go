package relation

// AddContactRequest represents the request body for adding a contact
type AddContactRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	// Type defaults to real or virtual depending on whether the phone is registered
	Type *Type `json:"type,omitempty"`
}
