package services

import (
	"context"
	"log"
	"sort"
	"strconv"
	"strings"

	"taskbot/internal/models"
	"taskbot/internal/repositories"
)

// TaskService owns personal and shared task lists. Ordinal-based
// operations resolve through the caller's last-rendered view map and
// silently skip tokens that do not resolve: a deliberate best-effort
// policy, not a failure.
type TaskService interface {
	ListPersonal(ctx context.Context, userID string) ([]models.PersonalTask, error)
	ListShared(ctx context.Context, scope models.Scope) ([]models.SharedTask, error)
	AddPersonal(ctx context.Context, userID, text string, deadline *string) error
	AddShared(ctx context.Context, scope models.Scope, userID, text string) error
	Complete(ctx context.Context, userID string, tokens []string, view models.ViewMap) (int, error)
	Delete(ctx context.Context, userID string, tokens []string, view models.ViewMap, isAdmin bool) (int, bool, error)
}

type taskService struct {
	repo repositories.TaskRepository
}

func NewTaskService(repo repositories.TaskRepository) TaskService {
	return &taskService{repo: repo}
}

func (s *taskService) ListPersonal(ctx context.Context, userID string) ([]models.PersonalTask, error) {
	return s.repo.ListPersonal(ctx, userID)
}

func (s *taskService) ListShared(ctx context.Context, scope models.Scope) ([]models.SharedTask, error) {
	if scope.IsZero() {
		return nil, nil
	}
	return s.repo.ListShared(ctx, scope)
}

func (s *taskService) AddPersonal(ctx context.Context, userID, text string, deadline *string) error {
	tasks, err := s.repo.ListPersonal(ctx, userID)
	if err != nil {
		return err
	}
	tasks = append(tasks, models.PersonalTask{
		Text:     text,
		Status:   models.StatusPending,
		Deadline: deadline,
	})
	return s.repo.SavePersonal(ctx, userID, tasks)
}

func (s *taskService) AddShared(ctx context.Context, scope models.Scope, userID, text string) error {
	tasks, err := s.repo.ListShared(ctx, scope)
	if err != nil {
		return err
	}
	tasks = append(tasks, models.SharedTask{
		Text:    text,
		Creator: userID,
		DoneBy:  []string{},
	})
	return s.repo.SaveShared(ctx, scope, tasks)
}

// resolveTokens splits the view-map lookup: plain numbers go through the
// personal half, G-prefixed numbers through the shared half. Anything
// else, and ordinals missing from the map, are dropped.
func resolveTokens(tokens []string, view models.ViewMap) (personal, shared []int) {
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(tok, "G"); ok {
			ord, err := strconv.Atoi(rest)
			if err != nil {
				continue
			}
			if idx, ok := view.Shared[ord]; ok {
				shared = append(shared, idx)
			}
			continue
		}
		ord, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		if idx, ok := view.Personal[ord]; ok {
			personal = append(personal, idx)
		}
	}
	return dedupe(personal), dedupe(shared)
}

func dedupe(idxs []int) []int {
	seen := make(map[int]struct{}, len(idxs))
	out := idxs[:0]
	for _, i := range idxs {
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	return out
}

// Complete marks resolved personal tasks done and appends the viewer to
// the done_by set of resolved shared tasks. Both are idempotent.
func (s *taskService) Complete(ctx context.Context, userID string, tokens []string, view models.ViewMap) (int, error) {
	personal, shared := resolveTokens(tokens, view)
	n := 0

	if len(personal) > 0 {
		tasks, err := s.repo.ListPersonal(ctx, userID)
		if err != nil {
			return 0, err
		}
		changed := false
		for _, idx := range personal {
			if idx < 0 || idx >= len(tasks) {
				continue
			}
			if tasks[idx].Status != models.StatusDone {
				tasks[idx].Status = models.StatusDone
				changed = true
				n++
			}
		}
		if changed {
			if err := s.repo.SavePersonal(ctx, userID, tasks); err != nil {
				return n, err
			}
		}
	}

	scope := view.SharedScope()
	if len(shared) > 0 && !scope.IsZero() {
		tasks, err := s.repo.ListShared(ctx, scope)
		if err != nil {
			return n, err
		}
		changed := false
		for _, idx := range shared {
			if idx < 0 || idx >= len(tasks) {
				continue
			}
			if !tasks[idx].DoneFor(userID) {
				tasks[idx].DoneBy = append(tasks[idx].DoneBy, userID)
				changed = true
				n++
			}
		}
		if changed {
			if err := s.repo.SaveShared(ctx, scope, tasks); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// Delete removes resolved tasks. Deletions happen in descending real
// index order so earlier removals cannot shift the indices of later
// ones within the same batch. A shared task may only be removed by its
// creator or an allow-listed admin; a blocked entry stays and the
// denied flag is set so the caller can reply accordingly.
func (s *taskService) Delete(ctx context.Context, userID string, tokens []string, view models.ViewMap, isAdmin bool) (int, bool, error) {
	personal, shared := resolveTokens(tokens, view)
	n := 0
	denied := false

	if len(personal) > 0 {
		tasks, err := s.repo.ListPersonal(ctx, userID)
		if err != nil {
			return 0, false, err
		}
		sort.Sort(sort.Reverse(sort.IntSlice(personal)))
		changed := false
		for _, idx := range personal {
			if idx < 0 || idx >= len(tasks) {
				continue
			}
			tasks = append(tasks[:idx], tasks[idx+1:]...)
			changed = true
			n++
		}
		if changed {
			if err := s.repo.SavePersonal(ctx, userID, tasks); err != nil {
				return n, denied, err
			}
		}
	}

	scope := view.SharedScope()
	if len(shared) > 0 && !scope.IsZero() {
		tasks, err := s.repo.ListShared(ctx, scope)
		if err != nil {
			return n, denied, err
		}
		sort.Sort(sort.Reverse(sort.IntSlice(shared)))
		changed := false
		for _, idx := range shared {
			if idx < 0 || idx >= len(tasks) {
				continue
			}
			if tasks[idx].Creator != userID && !isAdmin {
				log.Printf("[task][delete][deny] user=%s creator=%s idx=%d", userID, tasks[idx].Creator, idx)
				denied = true
				continue
			}
			tasks = append(tasks[:idx], tasks[idx+1:]...)
			changed = true
			n++
		}
		if changed {
			if err := s.repo.SaveShared(ctx, scope, tasks); err != nil {
				return n, denied, err
			}
		}
	}
	return n, denied, nil
}
