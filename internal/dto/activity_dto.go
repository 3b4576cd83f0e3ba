package dto

import (
	"time"

	"github.com/google/uuid"
)

// ActivityMessage is the wire form of one activity event on the
// in-process bus.
type ActivityMessage struct {
	Type       string                 `json:"type"`
	SessionId  string                 `json:"session_id,omitempty"`
	UserId     *uuid.UUID             `json:"user_id,omitempty"`
	IpAddress  string                 `json:"ip_address,omitempty"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}
