package db

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
	// GenderAny is only valid as a preference.
	GenderAny = "any"
)

const (
	ConversationPending = "pending"
	ConversationActive  = "active"
	ConversationDeleted = "deleted"
)

const (
	MessageSent      = "sent"
	MessageDelivered = "delivered"
	MessageRead      = "read"
)

// MaxGalleryImages caps the number of profile images a user keeps.
const MaxGalleryImages = 9

// ErrGalleryTooLarge is returned when saving a user with more than
// MaxGalleryImages gallery entries.
var ErrGalleryTooLarge = fmt.Errorf("gallery holds at most %d images", MaxGalleryImages)

// Preference is the matching filter a user browses with.
// Embedded into users with the pref_ column prefix.
type Preference struct {
	Gender      string `gorm:"size:16;not null;default:any" json:"gender"`
	MaxDistance int    `gorm:"not null;default:50" json:"maxDistance"` // km
	MinAge      int    `gorm:"not null;default:18" json:"minAge"`
	MaxAge      int    `gorm:"not null;default:99" json:"maxAge"`
}

// DefaultPreference is applied to newly registered users.
func DefaultPreference() Preference {
	return Preference{Gender: GenderAny, MaxDistance: 50, MinAge: 18, MaxAge: 99}
}

// User table.
//
// Longitude/Latitude form the user's geographic point; the composite
// index serves the bounding-box prefilter of the candidate query.
type User struct {
	ID           uint64                     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string                     `gorm:"uniqueIndex;size:128;not null" json:"email"`
	PasswordHash string                     `gorm:"size:255;not null" json:"-"`
	Name         string                     `gorm:"size:128;not null" json:"name"`
	Birthday     time.Time                  `gorm:"not null;index" json:"birthday"`
	Longitude    float64                    `gorm:"not null;default:0;index:idx_users_location,priority:2" json:"longitude"`
	Latitude     float64                    `gorm:"not null;default:0;index:idx_users_location,priority:1" json:"latitude"`
	Gender       string                     `gorm:"size:16;not null;index" json:"gender"`
	Avatar       string                     `gorm:"size:512" json:"avatar"`
	Gallery      datatypes.JSONSlice[string] `json:"gallery"`
	Description  string                     `gorm:"type:text" json:"description"`
	Preference   Preference                 `gorm:"embedded;embeddedPrefix:pref_" json:"preference"`
	Hobbies      []UserHobby                `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time                  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time                  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// HobbyNames flattens the loaded hobby rows.
func (u *User) HobbyNames() []string {
	out := make([]string, 0, len(u.Hobbies))
	for _, h := range u.Hobbies {
		out = append(out, h.Hobby)
	}
	return out
}

// BeforeSave rejects oversized galleries.
func (u *User) BeforeSave(*gorm.DB) error {
	if len(u.Gallery) > MaxGalleryImages {
		return ErrGalleryTooLarge
	}
	return nil
}

// UserHobby is one hobby tag of a user. Composite PK keeps tags distinct
// per user so the candidate query can test intersection with EXISTS.
type UserHobby struct {
	UserID uint64 `gorm:"primaryKey"`
	Hobby  string `gorm:"primaryKey;size:64;index"`
}

// Skip records that Actor suppressed Target from their feed.
//
// Composite PK: (ActorID, TargetID)
//   - inserts use ON CONFLICT DO NOTHING, so adding a skip is an atomic
//     set-insert and concurrent skips of different targets never clobber
//     each other.
type Skip struct {
	ActorID   uint64    `gorm:"primaryKey"`
	TargetID  uint64    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Conversation is the pairwise record between two users. It doubles as
// the like signal (pending: sender liked receiver) and the match (active).
//
// PairLow/PairHigh hold the normalized (min, max) user ids. Live is true
// while the conversation is not deleted and NULL afterwards, so the unique
// index idx_conversation_pair(pair_low, pair_high, live) allows exactly one
// live conversation per unordered pair while keeping deleted history.
type Conversation struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID    uint64    `gorm:"not null;index" json:"senderId"`
	ReceiverID  uint64    `gorm:"not null;index:idx_conversation_receiver_status,priority:1" json:"receiverId"`
	PairLow     uint64    `gorm:"not null;uniqueIndex:idx_conversation_pair,priority:1" json:"-"`
	PairHigh    uint64    `gorm:"not null;uniqueIndex:idx_conversation_pair,priority:2" json:"-"`
	Live        *bool     `gorm:"uniqueIndex:idx_conversation_pair,priority:3" json:"-"`
	Status      string    `gorm:"size:16;not null;default:pending;index:idx_conversation_receiver_status,priority:2" json:"status"`
	LastMessage string    `gorm:"type:text" json:"lastMessage"`
	BlockedBy   *uint64   `json:"blockedBy,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Involves reports whether userID is one of the two participants.
func (c *Conversation) Involves(userID uint64) bool {
	return c.SenderID == userID || c.ReceiverID == userID
}

// Other returns the participant that is not userID.
func (c *Conversation) Other(userID uint64) uint64 {
	if c.SenderID == userID {
		return c.ReceiverID
	}
	return c.SenderID
}

// PairKey normalizes an unordered pair of user ids.
func PairKey(a, b uint64) (low, high uint64) {
	if a < b {
		return a, b
	}
	return b, a
}

// Message is a single chat utterance inside a conversation.
type Message struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64    `gorm:"not null;index" json:"conversationId"`
	SenderID       uint64    `gorm:"not null" json:"senderId"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Status         string    `gorm:"size:16;not null;default:sent" json:"status"`
	Deleted        bool      `gorm:"not null;default:false" json:"deleted"`
	Edited         bool      `gorm:"not null;default:false" json:"edited"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Notification is a durable in-app alert.
type Notification struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint64    `gorm:"not null;index:idx_notification_user_read,priority:1" json:"userId"`
	Content        string    `gorm:"size:512;not null" json:"content"`
	ConversationID *uint64   `json:"conversationId,omitempty"`
	PostID         *uint64   `json:"postId,omitempty"`
	Read           bool      `gorm:"column:is_read;not null;default:false;index:idx_notification_user_read,priority:2" json:"read"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// Post is a user-authored feed item. Only its recency matters to matching.
type Post struct {
	ID        uint64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64                      `gorm:"not null;index:idx_post_user_created,priority:1" json:"userId"`
	Content   string                      `gorm:"type:text" json:"content"`
	Images    datatypes.JSONSlice[string] `json:"images"`
	CreatedAt time.Time                   `gorm:"autoCreateTime;index:idx_post_user_created,priority:2" json:"createdAt"`
}

// Models lists every table for AutoMigrate.
func Models() []any {
	return []any{
		&User{}, &UserHobby{}, &Skip{}, &Conversation{},
		&Message{}, &Notification{}, &Post{},
	}
}
