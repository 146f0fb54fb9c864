package services

import (
	"context"
	"log"
	"time"

	"taskbot/internal/models"
	"taskbot/internal/repositories"
)

type BoardService interface {
	List(ctx context.Context, owner models.BoardOwner) ([]models.BoardEntry, error)
	Post(ctx context.Context, owner models.BoardOwner, author, text string) error
	// Delete removes the entry at the stored index. Only the author or
	// an admin may remove an entry; ok=false reports a denied attempt.
	Delete(ctx context.Context, owner models.BoardOwner, index int, requester string, isAdmin bool) (bool, error)
}

type boardService struct {
	repo repositories.BoardRepository
}

func NewBoardService(repo repositories.BoardRepository) BoardService {
	return &boardService{repo: repo}
}

func (s *boardService) List(ctx context.Context, owner models.BoardOwner) ([]models.BoardEntry, error) {
	return s.repo.List(ctx, owner)
}

func (s *boardService) Post(ctx context.Context, owner models.BoardOwner, author, text string) error {
	entries, err := s.repo.List(ctx, owner)
	if err != nil {
		return err
	}
	entries = append(entries, models.BoardEntry{
		Text:      text,
		Author:    author,
		CreatedAt: time.Now(),
	})
	return s.repo.Save(ctx, owner, entries)
}

func (s *boardService) Delete(ctx context.Context, owner models.BoardOwner, index int, requester string, isAdmin bool) (bool, error) {
	entries, err := s.repo.List(ctx, owner)
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(entries) {
		log.Printf("[board][delete][skip] owner=%s/%s index=%d out of range", owner.Kind, owner.ID, index)
		return true, nil
	}
	if entries[index].Author != requester && !isAdmin {
		log.Printf("[board][delete][deny] owner=%s/%s index=%d requester=%s", owner.Kind, owner.ID, index, requester)
		return false, nil
	}
	entries = append(entries[:index], entries[index+1:]...)
	return true, s.repo.Save(ctx, owner, entries)
}
