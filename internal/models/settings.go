package models

// Settings holds per-user UI toggles. OpenChecklist is the index of the
// single expanded checklist card (-1 when none): a single-focus UI
// state, not list data.
type Settings struct {
	ShowEdit      bool `json:"show_edit"`
	OpenChecklist int  `json:"open_checklist"`
}

// DefaultSettings is the backfill shape for users without stored settings.
func DefaultSettings() Settings {
	return Settings{ShowEdit: false, OpenChecklist: -1}
}
