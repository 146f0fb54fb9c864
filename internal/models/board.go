package models

import "time"

// BoardEntry is one bulletin-board post.
type BoardEntry struct {
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// BoardOwner identifies a board partition: a user's own board or the
// board of a shared scope.
type BoardOwner struct {
	Kind string `json:"kind"` // "user" | "group" | "space"
	ID   string `json:"id"`
}
