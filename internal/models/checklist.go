package models

type ChecklistItem struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Checklist is an ordered list of items with per-item done flags.
// Items are addressed by stored index; the renderer shows one stable
// index per card, so there is no ordinal indirection here.
type Checklist struct {
	Title string          `json:"title"`
	Items []ChecklistItem `json:"items"`
}
