package repositories

import (
	"context"
	"fmt"

	"taskbot/internal/models"
)

type TaskRepository interface {
	ListPersonal(ctx context.Context, userID string) ([]models.PersonalTask, error)
	SavePersonal(ctx context.Context, userID string, tasks []models.PersonalTask) error
	ListShared(ctx context.Context, scope models.Scope) ([]models.SharedTask, error)
	SaveShared(ctx context.Context, scope models.Scope, tasks []models.SharedTask) error
}

type taskRepository struct {
	backend Backend
}

func NewTaskRepository(backend Backend) TaskRepository {
	return &taskRepository{backend: backend}
}

func personalTasksKey(userID string) string {
	return "user/" + userID + "/tasks"
}

func sharedTasksKey(scope models.Scope) string {
	return fmt.Sprintf("%s/%s/tasks", scope.Kind, scope.ID)
}

func (r *taskRepository) ListPersonal(ctx context.Context, userID string) ([]models.PersonalTask, error) {
	var tasks []models.PersonalTask
	if err := readJSON(ctx, r.backend, personalTasksKey(userID), &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) SavePersonal(ctx context.Context, userID string, tasks []models.PersonalTask) error {
	return writeJSON(ctx, r.backend, personalTasksKey(userID), tasks)
}

func (r *taskRepository) ListShared(ctx context.Context, scope models.Scope) ([]models.SharedTask, error) {
	var tasks []models.SharedTask
	if err := readJSON(ctx, r.backend, sharedTasksKey(scope), &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) SaveShared(ctx context.Context, scope models.Scope, tasks []models.SharedTask) error {
	return writeJSON(ctx, r.backend, sharedTasksKey(scope), tasks)
}
