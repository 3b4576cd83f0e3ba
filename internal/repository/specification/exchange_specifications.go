package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type ByConversationID struct {
	ConversationID string
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

// VisibleTo restricts exchanges to what the caller may see: their own
// rows when authenticated, anonymous rows of their session otherwise.
type VisibleTo struct {
	UserID    *uuid.UUID
	SessionID string
}

func (s VisibleTo) Apply(db *gorm.DB) *gorm.DB {
	if s.UserID != nil {
		return db.Where("user_id = ?", *s.UserID)
	}
	return db.Where("user_id IS NULL AND session_id = ?", s.SessionID)
}

type RatedOnly struct{}

func (s RatedOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("rating IS NOT NULL")
}

type Since struct {
	Time time.Time
}

func (s Since) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("timestamp >= ?", s.Time)
}

// Activity event specs

type ByEventType struct {
	Type string
}

func (s ByEventType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("type = ?", s.Type)
}

type CreatedSince struct {
	Time time.Time
}

func (s CreatedSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ?", s.Time)
}
