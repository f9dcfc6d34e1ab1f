package relation

import "time"

// Type tags a contact-book entry
type Type string

const (
	TypeSelf     Type = "self"
	TypeReal     Type = "real"     // phone belongs to a registered user
	TypeVirtual  Type = "virtual"  // contact without an account
	TypeExternal Type = "external" // imported from outside the app
)

// Valid reports whether t is a known relation type
func (t Type) Valid() bool {
	switch t {
	case TypeSelf, TypeReal, TypeVirtual, TypeExternal:
		return true
	}
	return false
}

// ContactRelation is one entry of a user's private contact book
type ContactRelation struct {
	ID               int64     `json:"id"`
	OwnerID          int64     `json:"owner_id"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone"`
	Type             Type      `json:"type"`
	MutualRelationID *int64    `json:"mutual_relation_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Mutual links one of the owner's relations to the registered user behind it
// and the reciprocal relation that user holds for the owner.
type Mutual struct {
	RelationID     int64
	UserID         int64
	BackRelationID int64
	BackName       string // how the other user names the owner
}
