package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ActivityEvent struct {
	Id        int64      `gorm:"primaryKey;autoIncrement"`
	Type      string     `gorm:"type:varchar(50);not null;index"`
	SessionId string     `gorm:"type:varchar(64);index"`
	UserId    *uuid.UUID `gorm:"type:uuid;index"`
	Payload   datatypes.JSON
	IpAddress string    `gorm:"type:varchar(45)"`
	Country   string    `gorm:"type:varchar(100)"`
	City      string    `gorm:"type:varchar(100)"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (ActivityEvent) TableName() string {
	return "activity_events"
}
