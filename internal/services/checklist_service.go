package services

import (
	"context"
	"log"

	"taskbot/internal/models"
	"taskbot/internal/repositories"
)

// ChecklistService mutates checklists by stored index. Indices come
// straight from the rendered card, so out-of-range references (stale
// cards) are logged and ignored rather than failing the exchange.
type ChecklistService interface {
	List(ctx context.Context, userID string) ([]models.Checklist, error)
	Create(ctx context.Context, userID string, cl models.Checklist) error
	ToggleItem(ctx context.Context, userID string, list, item int) error
	MoveItem(ctx context.Context, userID string, list, item int, up bool) error
	DeleteItem(ctx context.Context, userID string, list, item int) error
	DeleteList(ctx context.Context, userID string, list int) error
}

type checklistService struct {
	repo repositories.ChecklistRepository
}

func NewChecklistService(repo repositories.ChecklistRepository) ChecklistService {
	return &checklistService{repo: repo}
}

func (s *checklistService) List(ctx context.Context, userID string) ([]models.Checklist, error) {
	return s.repo.List(ctx, userID)
}

func (s *checklistService) Create(ctx context.Context, userID string, cl models.Checklist) error {
	lists, err := s.repo.List(ctx, userID)
	if err != nil {
		return err
	}
	if cl.Items == nil {
		cl.Items = []models.ChecklistItem{}
	}
	lists = append(lists, cl)
	return s.repo.Save(ctx, userID, lists)
}

func (s *checklistService) ToggleItem(ctx context.Context, userID string, list, item int) error {
	lists, err := s.repo.List(ctx, userID)
	if err != nil {
		return err
	}
	if !itemInRange(lists, list, item) {
		log.Printf("[checklist][toggle][skip] user=%s list=%d item=%d out of range", userID, list, item)
		return nil
	}
	lists[list].Items[item].Done = !lists[list].Items[item].Done
	return s.repo.Save(ctx, userID, lists)
}

// MoveItem swaps the item with its neighbor above or below.
func (s *checklistService) MoveItem(ctx context.Context, userID string, list, item int, up bool) error {
	lists, err := s.repo.List(ctx, userID)
	if err != nil {
		return err
	}
	if !itemInRange(lists, list, item) {
		log.Printf("[checklist][move][skip] user=%s list=%d item=%d out of range", userID, list, item)
		return nil
	}
	other := item + 1
	if up {
		other = item - 1
	}
	if other < 0 || other >= len(lists[list].Items) {
		return nil
	}
	items := lists[list].Items
	items[item], items[other] = items[other], items[item]
	return s.repo.Save(ctx, userID, lists)
}

func (s *checklistService) DeleteItem(ctx context.Context, userID string, list, item int) error {
	lists, err := s.repo.List(ctx, userID)
	if err != nil {
		return err
	}
	if !itemInRange(lists, list, item) {
		log.Printf("[checklist][delitem][skip] user=%s list=%d item=%d out of range", userID, list, item)
		return nil
	}
	items := lists[list].Items
	lists[list].Items = append(items[:item], items[item+1:]...)
	return s.repo.Save(ctx, userID, lists)
}

func (s *checklistService) DeleteList(ctx context.Context, userID string, list int) error {
	lists, err := s.repo.List(ctx, userID)
	if err != nil {
		return err
	}
	if list < 0 || list >= len(lists) {
		log.Printf("[checklist][dellist][skip] user=%s list=%d out of range", userID, list)
		return nil
	}
	lists = append(lists[:list], lists[list+1:]...)
	return s.repo.Save(ctx, userID, lists)
}

func itemInRange(lists []models.Checklist, list, item int) bool {
	return list >= 0 && list < len(lists) && item >= 0 && item < len(lists[list].Items)
}
