package bot

import (
	"fmt"
	"strings"

	"taskbot/internal/models"
	"taskbot/internal/services"
)

const noItemsPlaceholder = "No items yet."

// quickMenu is attached to every text reply, mirroring the persistent
// menu of the original rich menu setup.
var quickMenuItems = []struct{ Label, Text string }{
	{"📋 List", "list"},
	{"➕ Add", "add"},
	{"🌍 Add shared", "add shared"},
	{"✅ Complete", "complete"},
	{"❌ Delete", "delete"},
	{"📝 Checklists", "checklists"},
	{"📌 Board", "board"},
}

func textWithMenu(text string) services.Message {
	items := make([]map[string]any, 0, len(quickMenuItems))
	for _, it := range quickMenuItems {
		items = append(items, map[string]any{
			"type": "action",
			"action": map[string]any{
				"type":  "message",
				"label": it.Label,
				"text":  it.Text,
			},
		})
	}
	return services.Message{
		"type":       "text",
		"text":       text,
		"quickReply": map[string]any{"items": items},
	}
}

// renderList builds the combined task view for one viewer and, as a
// side effect, the view-index map for the viewer's next numeric
// message. Personal and shared entries number independently; entries
// already completed from this viewer's perspective are hidden.
func renderList(viewer string, personal []models.PersonalTask, shared []models.SharedTask, scope models.Scope) (string, models.ViewMap) {
	view := models.ViewMap{
		Personal:  map[int]int{},
		Shared:    map[int]int{},
		ScopeKind: scope.Kind,
		ScopeID:   scope.ID,
	}
	var lines []string

	ord := 0
	for i, t := range personal {
		if t.Status == models.StatusDone {
			continue
		}
		ord++
		view.Personal[ord] = i
		line := fmt.Sprintf("%d. ⬜ %s", ord, t.Text)
		if t.Deadline != nil {
			line += " 📅" + *t.Deadline
		}
		lines = append(lines, line)
	}
	if ord > 0 {
		lines = append([]string{"🗓 Your tasks"}, lines...)
	}

	var sharedLines []string
	ord = 0
	for i, t := range shared {
		if t.DoneFor(viewer) {
			continue
		}
		ord++
		view.Shared[ord] = i
		sharedLines = append(sharedLines, fmt.Sprintf("G%d. ⬜ %s", ord, t.Text))
	}
	if ord > 0 {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, "🌍 Shared tasks")
		lines = append(lines, sharedLines...)
	}

	if len(lines) == 0 {
		return noItemsPlaceholder, view
	}
	return strings.Join(lines, "\n"), view
}

// renderChecklists builds the flex carousel of checklist cards. At most
// one card (settings.OpenChecklist) is expanded with item-level detail;
// edit controls appear only when settings.ShowEdit is on.
func renderChecklists(lists []models.Checklist, st models.Settings) services.Message {
	bubbles := make([]map[string]any, 0, len(lists))
	for i, cl := range lists {
		if len(bubbles) >= 10 { // carousel limit
			break
		}
		bubbles = append(bubbles, checklistBubble(i, cl, i == st.OpenChecklist, st.ShowEdit))
	}
	return services.Message{
		"type":    "flex",
		"altText": "Your checklists",
		"contents": map[string]any{
			"type":     "carousel",
			"contents": bubbles,
		},
	}
}

func checklistBubble(index int, cl models.Checklist, expanded, showEdit bool) map[string]any {
	done := 0
	for _, it := range cl.Items {
		if it.Done {
			done++
		}
	}

	body := []any{
		flexText(cl.Title, "bold", "lg"),
		flexText(fmt.Sprintf("%d/%d done", done, len(cl.Items)), "none", "sm"),
	}
	if expanded {
		for j, it := range cl.Items {
			mark := "⬜"
			if it.Done {
				mark = "✅"
			}
			row := []any{
				postbackButton(mark+" "+it.Text, fmt.Sprintf("cl:toggle:%d:%d", index, j)),
			}
			if showEdit {
				row = append(row,
					postbackButton("🔼", fmt.Sprintf("cl:up:%d:%d", index, j)),
					postbackButton("🔽", fmt.Sprintf("cl:down:%d:%d", index, j)),
					postbackButton("🗑", fmt.Sprintf("cl:delitem:%d:%d", index, j)),
				)
			}
			body = append(body, map[string]any{
				"type":     "box",
				"layout":   "horizontal",
				"contents": row,
			})
		}
	}

	var footer []any
	if expanded {
		footer = append(footer, postbackButton("Close", "cl:close"))
	} else {
		footer = append(footer, postbackButton("Open", fmt.Sprintf("cl:open:%d", index)))
	}
	if showEdit {
		footer = append(footer, postbackButton("Delete list", fmt.Sprintf("cl:dellist:%d", index)))
	}

	return map[string]any{
		"type": "bubble",
		"body": map[string]any{
			"type":     "box",
			"layout":   "vertical",
			"spacing":  "sm",
			"contents": body,
		},
		"footer": map[string]any{
			"type":     "box",
			"layout":   "horizontal",
			"spacing":  "sm",
			"contents": footer,
		},
	}
}

// renderBoard shows entries newest first. When edit controls are on, a
// flex card with per-entry delete buttons is appended.
func renderBoard(title string, entries []models.BoardEntry, shared, showEdit bool) []services.Message {
	if len(entries) == 0 {
		return []services.Message{textWithMenu(noItemsPlaceholder)}
	}
	var lines []string
	lines = append(lines, "📌 "+title)
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", e.CreatedAt.Format("2006-01-02"), e.Author, e.Text))
	}
	msgs := []services.Message{textWithMenu(strings.Join(lines, "\n"))}

	if showEdit {
		kind := "user"
		if shared {
			kind = "shared"
		}
		var rows []any
		for i := len(entries) - 1; i >= 0 && len(rows) < 10; i-- {
			label := []rune(entries[i].Text)
			if len(label) > 30 {
				label = label[:30]
			}
			rows = append(rows, postbackButton("🗑 "+string(label), fmt.Sprintf("board:del:%s:%d", kind, i)))
		}
		msgs = append(msgs, services.Message{
			"type":    "flex",
			"altText": "Board entries",
			"contents": map[string]any{
				"type": "bubble",
				"body": map[string]any{
					"type":     "box",
					"layout":   "vertical",
					"spacing":  "sm",
					"contents": rows,
				},
			},
		})
	}
	return msgs
}

func flexText(text, weight, size string) map[string]any {
	t := map[string]any{
		"type": "text",
		"text": text,
		"wrap": true,
		"size": size,
	}
	if weight != "none" {
		t["weight"] = weight
	}
	return t
}

func postbackButton(label, data string) map[string]any {
	return map[string]any{
		"type":   "button",
		"height": "sm",
		"action": map[string]any{
			"type":  "postback",
			"label": label,
			"data":  data,
		},
	}
}
