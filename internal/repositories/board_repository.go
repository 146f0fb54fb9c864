package repositories

import (
	"context"
	"fmt"

	"taskbot/internal/models"
)

type BoardRepository interface {
	List(ctx context.Context, owner models.BoardOwner) ([]models.BoardEntry, error)
	Save(ctx context.Context, owner models.BoardOwner, entries []models.BoardEntry) error
}

type boardRepository struct {
	backend Backend
}

func NewBoardRepository(backend Backend) BoardRepository {
	return &boardRepository{backend: backend}
}

func boardKey(owner models.BoardOwner) string {
	return fmt.Sprintf("board/%s/%s", owner.Kind, owner.ID)
}

func (r *boardRepository) List(ctx context.Context, owner models.BoardOwner) ([]models.BoardEntry, error) {
	var entries []models.BoardEntry
	if err := readJSON(ctx, r.backend, boardKey(owner), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *boardRepository) Save(ctx context.Context, owner models.BoardOwner, entries []models.BoardEntry) error {
	return writeJSON(ctx, r.backend, boardKey(owner), entries)
}
