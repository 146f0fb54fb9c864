package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"taskbot/internal/authz"
	"taskbot/internal/models"
	"taskbot/internal/repositories"
	"taskbot/internal/services"
)

// Gateway is the outbound messaging contract the router needs. It is
// satisfied by services.LineService.
type Gateway interface {
	Reply(replyToken string, messages []services.Message) error
	Push(to string, messages []services.Message) error
}

// Event is one inbound webhook event after decoding.
type Event struct {
	Type       string // "message" | "postback"
	ReplyToken string
	UserID     string
	GroupID    string
	Text       string
	Postback   string
}

const (
	replyFallback     = "Use the menu below 👇"
	replyStorageError = "Something went wrong, please try again later."
	replyNotAllowed   = "You are not allowed to do that."
	itemsTerminator   = "done"
)

// Router owns event dispatch: postbacks go through the decoded Action,
// plain messages first through the user's active mode, then through the
// keyword commands, and finally to the generic fallback.
type Router struct {
	gw         Gateway
	tasks      services.TaskService
	checklists services.ChecklistService
	boards     services.BoardService
	spaces     services.SpaceService
	export     services.ExportService
	sessions   repositories.SessionRepository
	settings   repositories.SettingsRepository
	admins     *authz.Admins
}

func NewRouter(
	gw Gateway,
	tasks services.TaskService,
	checklists services.ChecklistService,
	boards services.BoardService,
	spaces services.SpaceService,
	export services.ExportService,
	sessions repositories.SessionRepository,
	settings repositories.SettingsRepository,
	admins *authz.Admins,
) *Router {
	return &Router{
		gw:         gw,
		tasks:      tasks,
		checklists: checklists,
		boards:     boards,
		spaces:     spaces,
		export:     export,
		sessions:   sessions,
		settings:   settings,
		admins:     admins,
	}
}

// Dispatch handles one event to completion. Every failure path still
// answers the user; storage trouble gets the generic retry reply.
func (r *Router) Dispatch(ctx context.Context, ev Event) {
	if ev.UserID == "" {
		log.Printf("[router][skip] event without user id")
		return
	}

	sess, err := r.sessions.Get(ctx, ev.UserID)
	if err != nil {
		log.Printf("[router][err] load session user=%s: %v", ev.UserID, err)
		r.reply(ev, replyStorageError)
		return
	}

	switch ev.Type {
	case "postback":
		r.handleAction(ctx, ev, DecodeAction(ev.Postback))
	case "message":
		r.handleText(ctx, ev, sess)
	default:
		log.Printf("[router][skip] event type=%q", ev.Type)
	}
}

func (r *Router) reply(ev Event, text string) {
	_ = r.gw.Reply(ev.ReplyToken, []services.Message{textWithMenu(text)})
}

func (r *Router) replyMessages(ev Event, msgs []services.Message) {
	_ = r.gw.Reply(ev.ReplyToken, msgs)
}

func (r *Router) putSession(ctx context.Context, ev Event, sess models.Session) bool {
	if err := r.sessions.Put(ctx, ev.UserID, sess); err != nil {
		log.Printf("[router][err] save session user=%s: %v", ev.UserID, err)
		r.reply(ev, replyStorageError)
		return false
	}
	return true
}

// ---- plain text ----

func (r *Router) handleText(ctx context.Context, ev Event, sess models.Session) {
	text := strings.TrimSpace(ev.Text)

	if sess.Mode != "" {
		r.handleMode(ctx, ev, sess, text)
		return
	}

	switch strings.ToLower(text) {
	case "list":
		r.sendList(ctx, ev, sess)
	case "add":
		sess.Mode = models.ModeAddTask
		if r.putSession(ctx, ev, sess) {
			r.reply(ev, "Send the task to add! Start with YYYY-MM-DD for a deadline, e.g. 2026-02-10 dentist.")
		}
	case "add shared":
		scope, err := r.spaces.ActiveScope(ctx, ev.UserID, ev.GroupID)
		if err != nil {
			log.Printf("[router][err] active scope user=%s: %v", ev.UserID, err)
			r.reply(ev, replyStorageError)
			return
		}
		if scope.IsZero() {
			r.reply(ev, "No shared scope yet. Send 'join' to join or create a space first.")
			return
		}
		sess.Mode = models.ModeAddShared
		if r.putSession(ctx, ev, sess) {
			r.reply(ev, "Send the shared task to add!")
		}
	case "complete":
		r.enterNumbersMode(ctx, ev, sess, models.ModeComplete,
			"Send the numbers to complete, space separated (e.g. 1 3 G2).")
	case "delete":
		r.enterNumbersMode(ctx, ev, sess, models.ModeDelete,
			"Send the numbers to delete, space separated (e.g. 1 3 G2).")
	case "checklist":
		sess.Mode = models.ModeChecklistTitle
		if r.putSession(ctx, ev, sess) {
			r.reply(ev, "Send a title for the new checklist.")
		}
	case "checklists":
		r.sendChecklists(ctx, ev)
	case "board":
		r.sendBoard(ctx, ev, false)
	case "board shared":
		r.sendBoard(ctx, ev, true)
	case "post":
		r.enterBoardPost(ctx, ev, sess, "user")
	case "post shared":
		r.enterBoardPost(ctx, ev, sess, "shared")
	case "join":
		sess.Mode = models.ModeJoinSpace
		if r.putSession(ctx, ev, sess) {
			r.reply(ev, "Send the passphrase of the space to join. A new space is created if none matches.")
		}
	case "settings":
		r.toggleEdit(ctx, ev)
	case "export":
		r.sendExportLink(ev)
	case "help":
		r.reply(ev, "I keep your tasks, shared tasks, checklists and board. "+replyFallback)
	default:
		r.reply(ev, replyFallback)
	}
}

// enterNumbersMode re-renders the list first so the view map the
// numbers will resolve against is fresh.
func (r *Router) enterNumbersMode(ctx context.Context, ev Event, sess models.Session, mode models.Mode, prompt string) {
	listText, view, err := r.buildList(ctx, ev)
	if err != nil {
		log.Printf("[router][err] render list user=%s: %v", ev.UserID, err)
		r.reply(ev, replyStorageError)
		return
	}
	sess.Mode = mode
	sess.View = view
	if !r.putSession(ctx, ev, sess) {
		return
	}
	r.replyMessages(ev, []services.Message{
		textWithMenu(listText),
		textWithMenu(prompt),
	})
}

func (r *Router) enterBoardPost(ctx context.Context, ev Event, sess models.Session, target string) {
	if target == "shared" {
		scope, err := r.spaces.ActiveScope(ctx, ev.UserID, ev.GroupID)
		if err != nil {
			r.reply(ev, replyStorageError)
			return
		}
		if scope.IsZero() {
			r.reply(ev, "No shared scope yet. Send 'join' to join or create a space first.")
			return
		}
	}
	sess.Mode = models.ModeBoardPost
	sess.BoardTarget = target
	if r.putSession(ctx, ev, sess) {
		r.reply(ev, "Send the text to post on the board.")
	}
}

// ---- mode handlers ----

func (r *Router) handleMode(ctx context.Context, ev Event, sess models.Session, text string) {
	switch sess.Mode {
	case models.ModeAddTask:
		r.modeAddTask(ctx, ev, sess, text)
	case models.ModeAddShared:
		r.modeAddShared(ctx, ev, sess, text)
	case models.ModeComplete, models.ModeDelete:
		r.modeNumbers(ctx, ev, sess, text)
	case models.ModeChecklistTitle:
		r.modeChecklistTitle(ctx, ev, sess, text)
	case models.ModeChecklistItems:
		r.modeChecklistItems(ctx, ev, sess, text)
	case models.ModeJoinSpace:
		r.modeJoinSpace(ctx, ev, sess, text)
	case models.ModeBoardPost:
		r.modeBoardPost(ctx, ev, sess, text)
	default:
		// Unknown stored mode (old deploy): reset to idle.
		sess.Mode = ""
		if r.putSession(ctx, ev, sess) {
			r.reply(ev, replyFallback)
		}
	}
}

// parseDeadline splits an optional leading ISO date from the task text.
// ok=false means the first token looked like a date but did not parse.
func parseDeadline(text string) (taskText string, deadline *string, ok bool) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return text, nil, true
	}
	first := fields[0]
	if len(first) != 10 || strings.Count(first, "-") != 2 {
		return text, nil, true
	}
	t, err := time.Parse("2006-01-02", first)
	if err != nil {
		return "", nil, false
	}
	d := t.Format("2006-01-02")
	return strings.Join(fields[1:], " "), &d, true
}

func (r *Router) modeAddTask(ctx context.Context, ev Event, sess models.Session, text string) {
	if text == "" {
		r.reply(ev, "Send the task text, or a date plus text like: 2026-02-10 dentist.")
		return // mode stays
	}
	taskText, deadline, ok := parseDeadline(text)
	sess.Mode = ""
	sess.View = models.ViewMap{}
	if !ok {
		if r.putSession(ctx, ev, sess) {
			r.reply(ev, "Send the date as YYYY-MM-DD, e.g. 2026-02-10 dentist.")
		}
		return
	}
	if err := r.tasks.AddPersonal(ctx, ev.UserID, taskText, deadline); err != nil {
		log.Printf("[router][err] add personal user=%s: %v", ev.UserID, err)
		r.reply(ev, replyStorageError)
		return
	}
	if !r.putSession(ctx, ev, sess) {
		return
	}
	msg := "Added '" + taskText + "'!"
	if deadline != nil {
		msg += " 📅 due " + *deadline
	}
	r.reply(ev, msg)
}

func (r *Router) modeAddShared(ctx context.Context, ev Event, sess models.Session, text string) {
	if text == "" {
		r.reply(ev, "Send the shared task text.")
		return
	}
	scope, err := r.spaces.ActiveScope(ctx, ev.UserID, ev.GroupID)
	if err != nil {
		r.reply(ev, replyStorageError)
		return
	}
	sess.Mode = ""
	sess.View = models.ViewMap{}
	if scope.IsZero() {
		if r.putSession(ctx, ev, sess) {
			r.reply(ev, "No shared scope yet. Send 'join' to join or create a space first.")
		}
		return
	}
	if err := r.tasks.AddShared(ctx, scope, ev.UserID, text); err != nil {
		log.Printf("[router][err] add shared user=%s: %v", ev.UserID, err)
		r.reply(ev, replyStorageError)
		return
	}
	if r.putSession(ctx, ev, sess) {
		r.reply(ev, "🌍 Added shared task '"+text+"'!")
	}
}

func (r *Router) modeNumbers(ctx context.Context, ev Event, sess models.Session, text string) {
	tokens := strings.Fields(text)
	mode := sess.Mode
	view := sess.View

	// The view map is single-use: consume it along with the mode.
	sess.Mode = ""
	sess.View = models.ViewMap{}

	var msg string
	switch mode {
	case models.ModeComplete:
		n, err := r.tasks.Complete(ctx, ev.UserID, tokens, view)
		if err != nil {
			log.Printf("[router][err] complete user=%s: %v", ev.UserID, err)
			r.reply(ev, replyStorageError)
			return
		}
		if n == 0 {
			msg = "Nothing matched those numbers. Send 'list' and try again."
		} else {
			msg = "Marked as done! ✅"
		}
	case models.ModeDelete:
		n, deniedShared, err := r.tasks.Delete(ctx, ev.UserID, tokens, view, r.admins.IsAdmin(ev.UserID))
		if err != nil {
			log.Printf("[router][err] delete user=%s: %v", ev.UserID, err)
			r.reply(ev, replyStorageError)
			return
		}
		switch {
		case deniedShared:
			msg = "Only the creator or an admin can delete shared tasks."
			if n > 0 {
				msg = fmt.Sprintf("Deleted %d. ", n) + msg
			}
		case n == 0:
			msg = "Nothing matched those numbers. Send 'list' and try again."
		default:
			msg = "Deleted! 🗑"
		}
	}
	if r.putSession(ctx, ev, sess) {
		r.reply(ev, msg)
	}
}

func (r *Router) modeChecklistTitle(ctx context.Context, ev Event, sess models.Session, text string) {
	if text == "" {
		r.reply(ev, "Send a title for the new checklist.")
		return // mode stays
	}
	sess.Mode = models.ModeChecklistItems
	sess.Draft = &models.Checklist{Title: text, Items: []models.ChecklistItem{}}
	if r.putSession(ctx, ev, sess) {
		r.reply(ev, "Now send the items, one per message. Send '"+itemsTerminator+"' to finish.")
	}
}

func (r *Router) modeChecklistItems(ctx context.Context, ev Event, sess models.Session, text string) {
	if sess.Draft == nil {
		sess.Mode = ""
		if r.putSession(ctx, ev, sess) {
			r.reply(ev, replyFallback)
		}
		return
	}
	if !strings.EqualFold(text, itemsTerminator) {
		if text != "" {
			sess.Draft.Items = append(sess.Draft.Items, models.ChecklistItem{Text: text})
		}
		if r.putSession(ctx, ev, sess) {
			r.reply(ev, "Added ✏️ Send '"+itemsTerminator+"' to finish.")
		}
		return // sticky: mode survives until the terminator
	}

	draft := *sess.Draft
	sess.Mode = ""
	sess.Draft = nil
	if err := r.checklists.Create(ctx, ev.UserID, draft); err != nil {
		log.Printf("[router][err] create checklist user=%s: %v", ev.UserID, err)
		r.reply(ev, replyStorageError)
		return
	}
	if r.putSession(ctx, ev, sess) {
		r.reply(ev, fmt.Sprintf("Checklist '%s' created with %d items. Send 'checklists' to view.", draft.Title, len(draft.Items)))
	}
}

func (r *Router) modeJoinSpace(ctx context.Context, ev Event, sess models.Session, text string) {
	if services.NormalizePassphrase(text) == "" {
		r.reply(ev, "Send a non-empty passphrase.")
		return // mode stays
	}
	sess.Mode = ""
	sp, created, err := r.spaces.Join(ctx, ev.UserID, text)
	if err != nil {
		log.Printf("[router][err] join space user=%s: %v", ev.UserID, err)
		r.reply(ev, replyStorageError)
		return
	}
	if !r.putSession(ctx, ev, sess) {
		return
	}
	if created {
		r.reply(ev, "Created space "+sp.Name+" and made it your active shared scope. 🌍")
	} else {
		r.reply(ev, "Joined space "+sp.Name+". It is now your active shared scope. 🌍")
	}
}

func (r *Router) modeBoardPost(ctx context.Context, ev Event, sess models.Session, text string) {
	if text == "" {
		r.reply(ev, "Send the text to post on the board.")
		return // mode stays
	}
	target := sess.BoardTarget
	sess.Mode = ""
	sess.BoardTarget = ""

	owner, err := r.boardOwner(ctx, ev, target == "shared")
	if err != nil {
		r.reply(ev, replyStorageError)
		return
	}
	if owner.ID == "" {
		if r.putSession(ctx, ev, sess) {
			r.reply(ev, "No shared scope yet. Send 'join' to join or create a space first.")
		}
		return
	}
	if err := r.boards.Post(ctx, owner, ev.UserID, text); err != nil {
		log.Printf("[router][err] board post user=%s: %v", ev.UserID, err)
		r.reply(ev, replyStorageError)
		return
	}
	if r.putSession(ctx, ev, sess) {
		r.reply(ev, "📌 Posted to the board!")
	}
}

// ---- views ----

func (r *Router) buildList(ctx context.Context, ev Event) (string, models.ViewMap, error) {
	personal, err := r.tasks.ListPersonal(ctx, ev.UserID)
	if err != nil {
		return "", models.ViewMap{}, err
	}
	scope, err := r.spaces.ActiveScope(ctx, ev.UserID, ev.GroupID)
	if err != nil {
		return "", models.ViewMap{}, err
	}
	var shared []models.SharedTask
	if !scope.IsZero() {
		if shared, err = r.tasks.ListShared(ctx, scope); err != nil {
			return "", models.ViewMap{}, err
		}
	}
	text, view := renderList(ev.UserID, personal, shared, scope)
	return text, view, nil
}

func (r *Router) sendList(ctx context.Context, ev Event, sess models.Session) {
	text, view, err := r.buildList(ctx, ev)
	if err != nil {
		log.Printf("[router][err] render list user=%s: %v", ev.UserID, err)
		r.reply(ev, replyStorageError)
		return
	}
	sess.View = view
	if r.putSession(ctx, ev, sess) {
		r.reply(ev, text)
	}
}

func (r *Router) sendChecklists(ctx context.Context, ev Event) {
	lists, err := r.checklists.List(ctx, ev.UserID)
	if err != nil {
		log.Printf("[router][err] list checklists user=%s: %v", ev.UserID, err)
		r.reply(ev, replyStorageError)
		return
	}
	if len(lists) == 0 {
		r.reply(ev, "No checklists yet. Send 'checklist' to create one.")
		return
	}
	st, err := r.settings.Get(ctx, ev.UserID)
	if err != nil {
		log.Printf("[router][err] load settings user=%s: %v", ev.UserID, err)
		r.reply(ev, replyStorageError)
		return
	}
	r.replyMessages(ev, []services.Message{renderChecklists(lists, st)})
}

func (r *Router) boardOwner(ctx context.Context, ev Event, shared bool) (models.BoardOwner, error) {
	if !shared {
		return models.BoardOwner{Kind: "user", ID: ev.UserID}, nil
	}
	scope, err := r.spaces.ActiveScope(ctx, ev.UserID, ev.GroupID)
	if err != nil {
		return models.BoardOwner{}, err
	}
	if scope.IsZero() {
		return models.BoardOwner{}, nil
	}
	return models.BoardOwner{Kind: string(scope.Kind), ID: scope.ID}, nil
}

func (r *Router) sendBoard(ctx context.Context, ev Event, shared bool) {
	owner, err := r.boardOwner(ctx, ev, shared)
	if err != nil {
		r.reply(ev, replyStorageError)
		return
	}
	if owner.ID == "" {
		r.reply(ev, "No shared scope yet. Send 'join' to join or create a space first.")
		return
	}
	entries, err := r.boards.List(ctx, owner)
	if err != nil {
		log.Printf("[router][err] list board user=%s: %v", ev.UserID, err)
		r.reply(ev, replyStorageError)
		return
	}
	st, err := r.settings.Get(ctx, ev.UserID)
	if err != nil {
		st = models.DefaultSettings()
	}
	title := "Your board"
	if shared {
		title = "Shared board"
	}
	r.replyMessages(ev, renderBoard(title, entries, shared, st.ShowEdit))
}

func (r *Router) toggleEdit(ctx context.Context, ev Event) {
	st, err := r.settings.Get(ctx, ev.UserID)
	if err != nil {
		r.reply(ev, replyStorageError)
		return
	}
	st.ShowEdit = !st.ShowEdit
	if err := r.settings.Put(ctx, ev.UserID, st); err != nil {
		r.reply(ev, replyStorageError)
		return
	}
	if st.ShowEdit {
		r.reply(ev, "Edit controls are now shown. 🛠")
	} else {
		r.reply(ev, "Edit controls are now hidden.")
	}
}

func (r *Router) sendExportLink(ev Event) {
	if !r.admins.IsAdmin(ev.UserID) {
		r.reply(ev, replyNotAllowed)
		return
	}
	link, err := r.export.CreateLink(ev.UserID)
	if err != nil {
		log.Printf("[router][err] export link user=%s: %v", ev.UserID, err)
		r.reply(ev, replyStorageError)
		return
	}
	r.reply(ev, "Your digest is ready (link valid 30 minutes):\n"+link)
}

// ---- postbacks ----

func (r *Router) handleAction(ctx context.Context, ev Event, a Action) {
	switch a.Kind {
	case ActionChecklistToggle:
		r.afterChecklistMutation(ctx, ev, r.checklists.ToggleItem(ctx, ev.UserID, a.List, a.Item))
	case ActionChecklistMoveUp:
		r.afterChecklistMutation(ctx, ev, r.checklists.MoveItem(ctx, ev.UserID, a.List, a.Item, true))
	case ActionChecklistMoveDown:
		r.afterChecklistMutation(ctx, ev, r.checklists.MoveItem(ctx, ev.UserID, a.List, a.Item, false))
	case ActionChecklistDelItem:
		r.afterChecklistMutation(ctx, ev, r.checklists.DeleteItem(ctx, ev.UserID, a.List, a.Item))
	case ActionChecklistDelList:
		if err := r.checklists.DeleteList(ctx, ev.UserID, a.List); err != nil {
			r.reply(ev, replyStorageError)
			return
		}
		r.closeChecklist(ctx, ev)
		r.sendChecklistsOrEmpty(ctx, ev)
	case ActionChecklistOpen:
		r.setOpenChecklist(ctx, ev, a.List)
	case ActionChecklistClose:
		r.closeChecklist(ctx, ev)
		r.sendChecklistsOrEmpty(ctx, ev)
	case ActionBoardDelete:
		r.actionBoardDelete(ctx, ev, a)
	case ActionSettingsEdit:
		r.toggleEdit(ctx, ev)
	default:
		r.reply(ev, replyFallback)
	}
}

func (r *Router) afterChecklistMutation(ctx context.Context, ev Event, err error) {
	if err != nil {
		log.Printf("[router][err] checklist mutation user=%s: %v", ev.UserID, err)
		r.reply(ev, replyStorageError)
		return
	}
	r.sendChecklistsOrEmpty(ctx, ev)
}

func (r *Router) sendChecklistsOrEmpty(ctx context.Context, ev Event) {
	lists, err := r.checklists.List(ctx, ev.UserID)
	if err != nil {
		r.reply(ev, replyStorageError)
		return
	}
	if len(lists) == 0 {
		r.reply(ev, "No checklists yet. Send 'checklist' to create one.")
		return
	}
	st, err := r.settings.Get(ctx, ev.UserID)
	if err != nil {
		st = models.DefaultSettings()
	}
	r.replyMessages(ev, []services.Message{renderChecklists(lists, st)})
}

// setOpenChecklist expands one card; opening a card closes the
// previously open one (single-focus UI state).
func (r *Router) setOpenChecklist(ctx context.Context, ev Event, list int) {
	st, err := r.settings.Get(ctx, ev.UserID)
	if err != nil {
		r.reply(ev, replyStorageError)
		return
	}
	st.OpenChecklist = list
	if err := r.settings.Put(ctx, ev.UserID, st); err != nil {
		r.reply(ev, replyStorageError)
		return
	}
	r.sendChecklistsOrEmpty(ctx, ev)
}

func (r *Router) closeChecklist(ctx context.Context, ev Event) {
	st, err := r.settings.Get(ctx, ev.UserID)
	if err != nil {
		return
	}
	st.OpenChecklist = -1
	if err := r.settings.Put(ctx, ev.UserID, st); err != nil {
		log.Printf("[router][err] save settings user=%s: %v", ev.UserID, err)
	}
}

func (r *Router) actionBoardDelete(ctx context.Context, ev Event, a Action) {
	owner, err := r.boardOwner(ctx, ev, a.Shared)
	if err != nil || owner.ID == "" {
		r.reply(ev, replyStorageError)
		return
	}
	ok, err := r.boards.Delete(ctx, owner, a.Index, ev.UserID, r.admins.IsAdmin(ev.UserID))
	if err != nil {
		r.reply(ev, replyStorageError)
		return
	}
	if !ok {
		r.reply(ev, "Only the author or an admin can remove board entries.")
		return
	}
	r.reply(ev, "Removed from the board. 🗑")
}
