package models

import "time"

// Mode is the conversation state machine's current expectation for the
// user's next message. Empty means idle. All modes are one-shot except
// ModeChecklistItems, which stays active until the terminator keyword.
type Mode string

const (
	ModeAddTask        Mode = "add_task"
	ModeAddShared      Mode = "add_shared"
	ModeComplete       Mode = "complete"
	ModeDelete         Mode = "delete"
	ModeChecklistTitle Mode = "checklist_title"
	ModeChecklistItems Mode = "checklist_items"
	ModeJoinSpace      Mode = "join_space"
	ModeBoardPost      Mode = "board_post"
)

// ViewMap translates displayed ordinals back to real storage indices.
// It is rebuilt on every list render and is only valid until the next
// mutation of the underlying collection: consumers treat it as single-use.
type ViewMap struct {
	Personal  map[int]int `json:"personal,omitempty"`
	Shared    map[int]int `json:"shared,omitempty"`
	ScopeKind ScopeKind   `json:"scope_kind,omitempty"`
	ScopeID   string      `json:"scope_id,omitempty"`
}

// SharedScope returns the scope the shared half of the map was rendered
// against, so a later "complete"/"delete" hits the same list.
func (v ViewMap) SharedScope() Scope {
	return Scope{Kind: v.ScopeKind, ID: v.ScopeID}
}

// Session is the per-user conversation context, passed explicitly
// through the router rather than held in a process-wide table.
type Session struct {
	Mode        Mode       `json:"mode,omitempty"`
	View        ViewMap    `json:"view"`
	Draft       *Checklist `json:"draft,omitempty"`        // checklist under construction
	BoardTarget string     `json:"board_target,omitempty"` // "user" | "shared"
	UpdatedAt   time.Time  `json:"updated_at"`
}
