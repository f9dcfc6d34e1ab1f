package notification

import (
	"encoding/json"
	"time"
)

// Notification is the in-app record of something that happened to a user.
// It is the source of truth regardless of push delivery.
type Notification struct {
	ID                int64           `json:"id"`
	RecipientID       int64           `json:"recipient_id"`
	Title             string          `json:"title"`
	Message           string          `json:"message"`
	Data              json.RawMessage `json:"data,omitempty"`
	IsRead            bool            `json:"is_read"`
	RelatedEntityType *string         `json:"related_entity_type,omitempty"` // e.g. "DONG"
	RelatedEntityID   *int64          `json:"related_entity_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// EntityDong is the related entity type of dong notifications
const EntityDong = "DONG"

// Kind values carried in Item.Data["type"]
const (
	KindDongCreated      = "DONG_CREATED"
	KindJointDongCreated = "JOINT_DONG_CREATED"
)

// Item is one notification to build for one recipient. Title and body are
// message keys rendered in the recipient's language at dispatch time.
type Item struct {
	UserID     int64
	TitleKey   string
	BodyKey    string
	Vars       map[string]string
	Data       map[string]string
	EntityType string
	EntityID   int64
}

// DispatchReport summarizes one Dispatch call
type DispatchReport struct {
	BatchID     string `json:"batch_id"`
	Persisted   int    `json:"persisted"`
	PushSent    int    `json:"push_sent"`
	PushFailed  int    `json:"push_failed"`
	PushSkipped int    `json:"push_skipped"` // recipients without a push token
	Chunks      int    `json:"chunks"`
}
