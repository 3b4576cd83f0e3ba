package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Exchange struct {
	Id             int64      `gorm:"primaryKey;autoIncrement"`
	SessionId      string     `gorm:"type:varchar(64);not null;index"`
	ConversationId string     `gorm:"type:varchar(64);not null;index"`
	UserId         *uuid.UUID `gorm:"type:uuid;index"`
	Question       string     `gorm:"type:text;not null"`
	Response       string     `gorm:"type:text;not null"`
	Sources        datatypes.JSON
	Rating         *int   `gorm:"type:smallint"`
	AgeGroup       string `gorm:"type:varchar(20)"`
	KnowledgeLevel string `gorm:"type:varchar(20)"`
	ResponseLength string `gorm:"type:varchar(20)"`
	Model          string `gorm:"type:varchar(100)"`
	ResponseTimeMs int    `gorm:"default:0"`
	Status         string `gorm:"type:varchar(20);not null;default:'complete'"`
	Timestamp      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (Exchange) TableName() string {
	return "exchanges"
}
