package balance

// NetBalance is one contact's position in the owner's ledger for a currency.
// Positive means the contact paid more than their shares, negative that
// they owe.
type NetBalance struct {
	RelationID  *int64 `json:"relation_id"` // nil for replica shares without a contact
	DisplayName string `json:"display_name"`
	Currency    string `json:"currency"`
	Amount      int64  `json:"amount"`
}
