package models

import (
	"database/sql"
	"time"
)

// Conversation is one timed session owned by a single user. A NULL EndTime
// marks the session as open; at most one open conversation may exist per
// user (enforced by a partial unique index and the lifecycle service).
type Conversation struct {
	ID         int64
	UserID     int64
	TopicID    int64
	QuestionID int64
	StartTime  time.Time
	EndTime    sql.NullTime
	// Web-accessible URL of the uploaded audio artifact, if any.
	AudioFilePath sql.NullString
	// Free-text analysis field, unused by core logic.
	Analysis  sql.NullString
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open reports whether the conversation is still in progress.
func (c *Conversation) Open() bool {
	return !c.EndTime.Valid
}

// ConversationSummary is the display-ready projection returned by the list
// endpoint. Timestamps are preformatted, missing catalog rows and missing
// audio are replaced with placeholders.
type ConversationSummary struct {
	ID        int64  `json:"id"`
	Topic     string `json:"topic"`
	Question  string `json:"question"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime,omitempty"`
	Audio     string `json:"audio"`
}
