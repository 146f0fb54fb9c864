package bot

import (
	"context"
	"strings"
	"testing"

	"taskbot/internal/authz"
	"taskbot/internal/models"
	"taskbot/internal/pdf"
	"taskbot/internal/repositories"
	"taskbot/internal/services"
)

type fakeGateway struct {
	replies [][]services.Message
}

func (g *fakeGateway) Reply(replyToken string, msgs []services.Message) error {
	g.replies = append(g.replies, msgs)
	return nil
}

func (g *fakeGateway) Push(to string, msgs []services.Message) error {
	return nil
}

// lastText returns the text of the final message of the final reply.
func (g *fakeGateway) lastText(t *testing.T) string {
	t.Helper()
	if len(g.replies) == 0 {
		t.Fatal("no replies sent")
	}
	last := g.replies[len(g.replies)-1]
	if len(last) == 0 {
		t.Fatal("empty reply")
	}
	text, ok := last[len(last)-1]["text"].(string)
	if !ok {
		t.Fatalf("last message has no text: %+v", last[len(last)-1])
	}
	return text
}

type nopGenerator struct{}

func (nopGenerator) GenerateDigest(pdf.DigestData) (string, error) { return "digest.pdf", nil }

type routerFixture struct {
	gw         *fakeGateway
	router     *Router
	tasks      services.TaskService
	checklists services.ChecklistService
	boards     services.BoardService
	sessions   repositories.SessionRepository
}

func newRouterFixture(adminIDs ...string) *routerFixture {
	backend := repositories.NewMemoryBackend()
	tasks := services.NewTaskService(repositories.NewTaskRepository(backend))
	checklists := services.NewChecklistService(repositories.NewChecklistRepository(backend))
	boards := services.NewBoardService(repositories.NewBoardRepository(backend))
	spaces := services.NewSpaceService(repositories.NewSpaceRepository(backend))
	export := services.NewExportService("test-secret", "http://localhost:10000", nopGenerator{}, tasks, boards, spaces)
	sessions := repositories.NewSessionRepository(backend)
	settings := repositories.NewSettingsRepository(backend)

	gw := &fakeGateway{}
	return &routerFixture{
		gw:         gw,
		router:     NewRouter(gw, tasks, checklists, boards, spaces, export, sessions, settings, authz.NewAdmins(adminIDs)),
		tasks:      tasks,
		checklists: checklists,
		boards:     boards,
		sessions:   sessions,
	}
}

func (fx *routerFixture) send(userID, text string) {
	fx.router.Dispatch(context.Background(), Event{
		Type:       "message",
		ReplyToken: "rt",
		UserID:     userID,
		Text:       text,
	})
}

func (fx *routerFixture) postback(userID, data string) {
	fx.router.Dispatch(context.Background(), Event{
		Type:       "postback",
		ReplyToken: "rt",
		UserID:     userID,
		Postback:   data,
	})
}

func TestDispatchFallback(t *testing.T) {
	fx := newRouterFixture()
	fx.send("U1", "what's up")
	if got := fx.gw.lastText(t); got != replyFallback {
		t.Errorf("expected fallback reply, got %q", got)
	}
}

func TestAddTaskWithDeadline(t *testing.T) {
	fx := newRouterFixture()
	fx.send("U1", "add")
	if !strings.Contains(fx.gw.lastText(t), "task to add") {
		t.Errorf("expected add prompt, got %q", fx.gw.lastText(t))
	}

	fx.send("U1", "2026-02-10 dentist")
	reply := fx.gw.lastText(t)
	if !strings.Contains(reply, "dentist") || !strings.Contains(reply, "2026-02-10") {
		t.Errorf("expected confirmation with deadline, got %q", reply)
	}

	tasks, err := fx.tasks.ListPersonal(context.Background(), "U1")
	if err != nil {
		t.Fatalf("ListPersonal: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Text != "dentist" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
	if tasks[0].Deadline == nil || *tasks[0].Deadline != "2026-02-10" {
		t.Errorf("deadline not stored: %v", tasks[0].Deadline)
	}

	// Mode is one-shot: the next message routes as a command again.
	fx.send("U1", "no such command")
	if got := fx.gw.lastText(t); got != replyFallback {
		t.Errorf("mode should be cleared, got %q", got)
	}
}

func TestAddTaskRejectsBadDate(t *testing.T) {
	fx := newRouterFixture()
	fx.send("U1", "add")
	fx.send("U1", "2026-13-99 dentist")
	if !strings.Contains(fx.gw.lastText(t), "YYYY-MM-DD") {
		t.Errorf("expected corrective reply, got %q", fx.gw.lastText(t))
	}
	if tasks, _ := fx.tasks.ListPersonal(context.Background(), "U1"); len(tasks) != 0 {
		t.Errorf("nothing should be stored, got %+v", tasks)
	}
}

func TestChecklistFlowIsStickyUntilDone(t *testing.T) {
	fx := newRouterFixture()
	fx.send("U1", "checklist")
	fx.send("U1", "Packing")
	fx.send("U1", "passport")
	fx.send("U1", "charger")
	fx.send("U1", "DONE") // terminator is case-insensitive

	reply := fx.gw.lastText(t)
	if !strings.Contains(reply, "Packing") || !strings.Contains(reply, "2 items") {
		t.Errorf("expected creation summary, got %q", reply)
	}

	lists, err := fx.checklists.List(context.Background(), "U1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(lists) != 1 || lists[0].Title != "Packing" || len(lists[0].Items) != 2 {
		t.Fatalf("unexpected checklists: %+v", lists)
	}
}

func TestCompleteFlowUsesFreshView(t *testing.T) {
	fx := newRouterFixture()
	ctx := context.Background()
	if err := fx.tasks.AddPersonal(ctx, "U1", "a", nil); err != nil {
		t.Fatal(err)
	}
	if err := fx.tasks.AddPersonal(ctx, "U1", "b", nil); err != nil {
		t.Fatal(err)
	}

	fx.send("U1", "complete")
	// The command replies with the current list plus the prompt.
	last := fx.gw.replies[len(fx.gw.replies)-1]
	if len(last) != 2 {
		t.Fatalf("expected list+prompt reply, got %d messages", len(last))
	}

	fx.send("U1", "2")
	if !strings.Contains(fx.gw.lastText(t), "done") {
		t.Errorf("expected completion reply, got %q", fx.gw.lastText(t))
	}

	tasks, _ := fx.tasks.ListPersonal(ctx, "U1")
	if tasks[0].Status != models.StatusPending || tasks[1].Status != models.StatusDone {
		t.Errorf("unexpected statuses: %q, %q", tasks[0].Status, tasks[1].Status)
	}
}

func TestDeleteNothingMatched(t *testing.T) {
	fx := newRouterFixture()
	if err := fx.tasks.AddPersonal(context.Background(), "U1", "a", nil); err != nil {
		t.Fatal(err)
	}
	fx.send("U1", "delete")
	fx.send("U1", "99")
	if !strings.Contains(fx.gw.lastText(t), "Nothing matched") {
		t.Errorf("expected nothing-matched reply, got %q", fx.gw.lastText(t))
	}
	if tasks, _ := fx.tasks.ListPersonal(context.Background(), "U1"); len(tasks) != 1 {
		t.Error("task should survive an unmatched delete")
	}
}

func TestJoinSpaceThenAddShared(t *testing.T) {
	fx := newRouterFixture()
	fx.send("U1", "join")
	fx.send("U1", "winter trip")
	if !strings.Contains(fx.gw.lastText(t), "Created space") {
		t.Errorf("expected creation reply, got %q", fx.gw.lastText(t))
	}

	fx.send("U1", "add shared")
	fx.send("U1", "book cabin")
	if !strings.Contains(fx.gw.lastText(t), "book cabin") {
		t.Errorf("expected confirmation, got %q", fx.gw.lastText(t))
	}

	fx.send("U1", "list")
	if !strings.Contains(fx.gw.lastText(t), "G1. ⬜ book cabin") {
		t.Errorf("shared task missing from list:\n%s", fx.gw.lastText(t))
	}
}

func TestAddSharedWithoutScope(t *testing.T) {
	fx := newRouterFixture()
	fx.send("U1", "add shared")
	if !strings.Contains(fx.gw.lastText(t), "No shared scope") {
		t.Errorf("expected scope hint, got %q", fx.gw.lastText(t))
	}
}

func TestExportIsAdminOnly(t *testing.T) {
	fx := newRouterFixture("Uadmin")

	fx.send("U1", "export")
	if got := fx.gw.lastText(t); got != replyNotAllowed {
		t.Errorf("expected denial, got %q", got)
	}

	fx.send("Uadmin", "export")
	if !strings.Contains(fx.gw.lastText(t), "http://localhost:10000/export?token=") {
		t.Errorf("expected signed link, got %q", fx.gw.lastText(t))
	}
}

func TestPostbackTogglesChecklistItem(t *testing.T) {
	fx := newRouterFixture()
	ctx := context.Background()
	if err := fx.checklists.Create(ctx, "U1", models.Checklist{
		Title: "Packing",
		Items: []models.ChecklistItem{{Text: "passport"}},
	}); err != nil {
		t.Fatal(err)
	}

	fx.postback("U1", "cl:toggle:0:0")

	lists, _ := fx.checklists.List(ctx, "U1")
	if !lists[0].Items[0].Done {
		t.Error("item should be toggled done")
	}
	// The reply is the re-rendered carousel.
	last := fx.gw.replies[len(fx.gw.replies)-1]
	if last[0]["type"] != "flex" {
		t.Errorf("expected flex reply, got %v", last[0]["type"])
	}
}

func TestPostbackBoardDeleteDenied(t *testing.T) {
	fx := newRouterFixture()
	ctx := context.Background()
	owner := models.BoardOwner{Kind: "user", ID: "U1"}
	if err := fx.boards.Post(ctx, owner, "someone-else", "note"); err != nil {
		t.Fatal(err)
	}

	fx.postback("U1", "board:del:user:0")
	if !strings.Contains(fx.gw.lastText(t), "author or an admin") {
		t.Errorf("expected denial, got %q", fx.gw.lastText(t))
	}
	if entries, _ := fx.boards.List(ctx, owner); len(entries) != 1 {
		t.Error("denied entry must stay")
	}
}

func TestUnknownStoredModeResets(t *testing.T) {
	fx := newRouterFixture()
	if err := fx.sessions.Put(context.Background(), "U1", models.Session{Mode: "legacy_mode"}); err != nil {
		t.Fatal(err)
	}
	fx.send("U1", "anything")
	if got := fx.gw.lastText(t); got != replyFallback {
		t.Errorf("expected fallback after reset, got %q", got)
	}

	sess, err := fx.sessions.Get(context.Background(), "U1")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Mode != "" {
		t.Errorf("mode should be cleared, got %q", sess.Mode)
	}
}
