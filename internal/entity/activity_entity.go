package entity

import (
	"time"

	"github.com/google/uuid"
)

// ActivityEvent is one usage event recorded for the admin analytics:
// a question asked, a rating given, a login, a document opened.
type ActivityEvent struct {
	Id        int64
	Type      string
	SessionId string
	UserId    *uuid.UUID
	Payload   map[string]interface{}
	IpAddress string
	Country   string
	City      string
	CreatedAt time.Time
}

const (
	ActivityQuestionAsked  = "question_asked"
	ActivityAnswerRated    = "answer_rated"
	ActivityUserRegistered = "user_registered"
	ActivityUserLoggedIn   = "user_logged_in"
	ActivityDocumentOpened = "document_opened"
)
