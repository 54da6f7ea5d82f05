package db

import (
	"time"
)

// User table. DistanceKm is the viewer-relative distance precomputed by the
// external location service; this service treats it as a plain attribute.
type User struct {
	ID              uint64 `gorm:"primaryKey;autoIncrement"`
	Username        string `gorm:"uniqueIndex;size:64;not null"`
	Email           string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash    string `gorm:"size:255;not null"`
	Gender          string `gorm:"size:16;not null"`
	Age             int    `gorm:"not null"`
	Location        string `gorm:"size:128"`
	DistanceKm      float64
	PopularityScore int      `gorm:"default:0"` // 0-100
	MatchCount      int64    `gorm:"default:0"`
	Interests       []string `gorm:"serializer:json"`
	LastActiveAt    time.Time
	JoinedAt        time.Time
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

// Like represents an actor's like on a target.
//
// Composite PK: (ActorID, TargetID) — a single row per direction, so
// redelivered like events overwrite instead of duplicating.
//
// Index idx_like_target_actor(target_id, actor_id) gives the O(1) reverse-like
// lookup inside the match transaction.
type Like struct {
	ActorID     uint64    `gorm:"primaryKey"`
	TargetID    uint64    `gorm:"primaryKey;index:idx_like_target_actor,priority:1"`
	IsSuperLike bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// ReceivedLike is the notice stored for the target of a like. Best-effort
// bookkeeping for the "who liked you" screen; not part of the match guarantee.
//
// Index idx_received_updated_actor(recipient_id, updated_at DESC, actor_id)
// backs the paginated listing.
type ReceivedLike struct {
	RecipientID uint64    `gorm:"primaryKey;index:idx_received_updated_actor,priority:1"`
	ActorID     uint64    `gorm:"primaryKey;index:idx_received_updated_actor,priority:3"`
	IsSuperLike bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime;index:idx_received_updated_actor,priority:2,sort:desc"`
}

// Match is created at most once per unordered user pair. PairKey is the
// canonical key: the two ids sorted ascending, joined with "_".
type Match struct {
	PairKey   string    `gorm:"primaryKey;size:48"`
	UserA     uint64    `gorm:"not null;index"`
	UserB     uint64    `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// ChatThread is 1:1 with Match, sharing its pair key.
type ChatThread struct {
	PairKey       string `gorm:"primaryKey;size:48"`
	UserA         uint64 `gorm:"not null;index"`
	UserB         uint64 `gorm:"not null;index"`
	LastMessage   string `gorm:"size:512"`
	LastMessageAt time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

// ChatMessage belongs to a thread via PairKey.
type ChatMessage struct {
	ID        string    `gorm:"primaryKey;size:36"`
	PairKey   string    `gorm:"size:48;not null;index:idx_message_thread_created,priority:1"`
	SenderID  uint64    `gorm:"not null"`
	Text      string    `gorm:"size:2048;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_message_thread_created,priority:2"`
}

// Device is a registered push endpoint for a user. Tokens are opaque.
type Device struct {
	UserID    uint64    `gorm:"primaryKey"`
	Token     string    `gorm:"primaryKey;size:255"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// SponsoredCard is an ad slotted into the feed by the sequencer.
type SponsoredCard struct {
	ID          string `gorm:"primaryKey;size:36"`
	Title       string `gorm:"size:128;not null"`
	CTAText     string `gorm:"size:64"`
	ImageURL    string `gorm:"size:512"`
	LinkURL     string `gorm:"size:512"`
	Description string    `gorm:"size:512"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}
