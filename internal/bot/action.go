package bot

import (
	"strconv"
	"strings"
)

// Action kinds. Postback data is decoded into a tagged Action exactly
// once, at the router boundary; handlers never see raw token strings.
const (
	ActionUnknown           = ""
	ActionChecklistOpen     = "cl_open"
	ActionChecklistClose    = "cl_close"
	ActionChecklistToggle   = "cl_toggle"
	ActionChecklistMoveUp   = "cl_up"
	ActionChecklistMoveDown = "cl_down"
	ActionChecklistDelItem  = "cl_delitem"
	ActionChecklistDelList  = "cl_dellist"
	ActionBoardDelete       = "board_del"
	ActionSettingsEdit      = "settings_edit"
)

type Action struct {
	Kind   string
	List   int // checklist index
	Item   int // item index within the checklist
	Index  int // board entry index
	Shared bool
}

// DecodeAction parses a postback payload such as "cl:toggle:2:0" or
// "board:del:shared:3". Anything malformed decodes to ActionUnknown and
// falls through to the generic menu reply.
func DecodeAction(data string) Action {
	parts := strings.Split(data, ":")
	switch parts[0] {
	case "cl":
		return decodeChecklist(parts)
	case "board":
		if len(parts) == 4 && parts[1] == "del" {
			idx, err := strconv.Atoi(parts[3])
			if err != nil {
				break
			}
			switch parts[2] {
			case "user":
				return Action{Kind: ActionBoardDelete, Index: idx}
			case "shared":
				return Action{Kind: ActionBoardDelete, Index: idx, Shared: true}
			}
		}
	case "settings":
		if len(parts) == 2 && parts[1] == "edit" {
			return Action{Kind: ActionSettingsEdit}
		}
	}
	return Action{Kind: ActionUnknown}
}

func decodeChecklist(parts []string) Action {
	if len(parts) < 2 {
		return Action{Kind: ActionUnknown}
	}
	switch parts[1] {
	case "close":
		if len(parts) == 2 {
			return Action{Kind: ActionChecklistClose}
		}
	case "open", "dellist":
		if len(parts) != 3 {
			break
		}
		list, err := strconv.Atoi(parts[2])
		if err != nil {
			break
		}
		kind := ActionChecklistOpen
		if parts[1] == "dellist" {
			kind = ActionChecklistDelList
		}
		return Action{Kind: kind, List: list}
	case "toggle", "up", "down", "delitem":
		if len(parts) != 4 {
			break
		}
		list, err1 := strconv.Atoi(parts[2])
		item, err2 := strconv.Atoi(parts[3])
		if err1 != nil || err2 != nil {
			break
		}
		kind := map[string]string{
			"toggle":  ActionChecklistToggle,
			"up":      ActionChecklistMoveUp,
			"down":    ActionChecklistMoveDown,
			"delitem": ActionChecklistDelItem,
		}[parts[1]]
		return Action{Kind: kind, List: list, Item: item}
	}
	return Action{Kind: ActionUnknown}
}
