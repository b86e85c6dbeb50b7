package models

// Question and Topic are immutable catalog entries, read-only to this
// subsystem.

type Question struct {
	ID      int64
	TopicID int64
	Text    string
}

type Topic struct {
	ID         int64
	CategoryID int64
	Name       string
}
