package models

// TaskStatus defines the possible statuses for a personal task.
type TaskStatus string

const (
	StatusPending TaskStatus = "pending"
	StatusDone    TaskStatus = "done"
)

// PersonalTask is one entry of a user's own task list.
type PersonalTask struct {
	Text     string     `json:"text"`
	Status   TaskStatus `json:"status"`
	Deadline *string    `json:"deadline,omitempty"` // YYYY-MM-DD
}

// SharedTask is visible to every member of its scope. Completion is
// per-viewer: a task disappears from a viewer's list once their id is in
// DoneBy, but stays visible to everyone else.
type SharedTask struct {
	Text    string   `json:"text"`
	Creator string   `json:"creator,omitempty"`
	DoneBy  []string `json:"done_by"`
}

// DoneFor reports whether viewer already completed the task.
func (t *SharedTask) DoneFor(viewer string) bool {
	for _, id := range t.DoneBy {
		if id == viewer {
			return true
		}
	}
	return false
}
