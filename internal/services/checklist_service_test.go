package services

import (
	"context"
	"testing"

	"taskbot/internal/models"
	"taskbot/internal/repositories"
)

func newTestChecklistService(t *testing.T, lists ...models.Checklist) ChecklistService {
	t.Helper()
	svc := NewChecklistService(repositories.NewChecklistRepository(repositories.NewMemoryBackend()))
	for _, cl := range lists {
		if err := svc.Create(context.Background(), "U1", cl); err != nil {
			t.Fatalf("Create(%q): %v", cl.Title, err)
		}
	}
	return svc
}

func packingList() models.Checklist {
	return models.Checklist{
		Title: "Packing",
		Items: []models.ChecklistItem{
			{Text: "passport"},
			{Text: "charger"},
			{Text: "socks"},
		},
	}
}

func TestToggleItemRoundTrip(t *testing.T) {
	svc := newTestChecklistService(t, packingList())
	ctx := context.Background()

	if err := svc.ToggleItem(ctx, "U1", 0, 1); err != nil {
		t.Fatalf("ToggleItem: %v", err)
	}
	lists, _ := svc.List(ctx, "U1")
	if !lists[0].Items[1].Done {
		t.Error("item 1 should be done after toggle")
	}

	if err := svc.ToggleItem(ctx, "U1", 0, 1); err != nil {
		t.Fatalf("ToggleItem: %v", err)
	}
	lists, _ = svc.List(ctx, "U1")
	if lists[0].Items[1].Done {
		t.Error("item 1 should be open again after second toggle")
	}
}

func TestMoveItemSwapsNeighbors(t *testing.T) {
	svc := newTestChecklistService(t, packingList())
	ctx := context.Background()

	if err := svc.MoveItem(ctx, "U1", 0, 1, true); err != nil {
		t.Fatalf("MoveItem up: %v", err)
	}
	lists, _ := svc.List(ctx, "U1")
	if lists[0].Items[0].Text != "charger" || lists[0].Items[1].Text != "passport" {
		t.Errorf("expected [charger passport socks], got %+v", lists[0].Items)
	}

	// Moving the top item further up is a no-op.
	if err := svc.MoveItem(ctx, "U1", 0, 0, true); err != nil {
		t.Fatalf("MoveItem at edge: %v", err)
	}
	lists, _ = svc.List(ctx, "U1")
	if lists[0].Items[0].Text != "charger" {
		t.Errorf("edge move must not change order, got %+v", lists[0].Items)
	}
}

func TestDeleteItemAndList(t *testing.T) {
	svc := newTestChecklistService(t, packingList(), models.Checklist{Title: "Other"})
	ctx := context.Background()

	if err := svc.DeleteItem(ctx, "U1", 0, 0); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	lists, _ := svc.List(ctx, "U1")
	if len(lists[0].Items) != 2 || lists[0].Items[0].Text != "charger" {
		t.Errorf("expected [charger socks], got %+v", lists[0].Items)
	}

	if err := svc.DeleteList(ctx, "U1", 0); err != nil {
		t.Fatalf("DeleteList: %v", err)
	}
	lists, _ = svc.List(ctx, "U1")
	if len(lists) != 1 || lists[0].Title != "Other" {
		t.Errorf("expected only 'Other' to survive, got %+v", lists)
	}
}

func TestOutOfRangeMutationsAreIgnored(t *testing.T) {
	svc := newTestChecklistService(t, packingList())
	ctx := context.Background()

	// Stale card indices log and skip, never error or corrupt.
	if err := svc.ToggleItem(ctx, "U1", 5, 0); err != nil {
		t.Fatalf("ToggleItem out of range: %v", err)
	}
	if err := svc.DeleteItem(ctx, "U1", 0, 99); err != nil {
		t.Fatalf("DeleteItem out of range: %v", err)
	}
	if err := svc.DeleteList(ctx, "U1", -1); err != nil {
		t.Fatalf("DeleteList out of range: %v", err)
	}

	lists, _ := svc.List(ctx, "U1")
	if len(lists) != 1 || len(lists[0].Items) != 3 {
		t.Errorf("store must be untouched, got %+v", lists)
	}
}
