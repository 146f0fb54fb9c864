package repositories

import (
	"context"

	"taskbot/internal/models"
)

type ChecklistRepository interface {
	List(ctx context.Context, userID string) ([]models.Checklist, error)
	Save(ctx context.Context, userID string, lists []models.Checklist) error
}

type checklistRepository struct {
	backend Backend
}

func NewChecklistRepository(backend Backend) ChecklistRepository {
	return &checklistRepository{backend: backend}
}

func checklistsKey(userID string) string {
	return "user/" + userID + "/checklists"
}

func (r *checklistRepository) List(ctx context.Context, userID string) ([]models.Checklist, error) {
	var lists []models.Checklist
	if err := readJSON(ctx, r.backend, checklistsKey(userID), &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *checklistRepository) Save(ctx context.Context, userID string, lists []models.Checklist) error {
	return writeJSON(ctx, r.backend, checklistsKey(userID), lists)
}
