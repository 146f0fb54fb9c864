package repositories

import (
	"context"
	"strings"

	"taskbot/internal/models"
)

type SpaceRepository interface {
	List(ctx context.Context) ([]models.Space, error)
	Save(ctx context.Context, space *models.Space) error
	Membership(ctx context.Context, userID string) (models.Membership, error)
	SaveMembership(ctx context.Context, userID string, m models.Membership) error
}

type spaceRepository struct {
	backend Backend
}

func NewSpaceRepository(backend Backend) SpaceRepository {
	return &spaceRepository{backend: backend}
}

// Space meta lives beside the space's task list:
// space/<key>/meta and space/<key>/tasks.
func spaceMetaKey(key string) string {
	return "space/" + key + "/meta"
}

func membershipKey(userID string) string {
	return "user/" + userID + "/spaces"
}

func (r *spaceRepository) List(ctx context.Context) ([]models.Space, error) {
	keys, err := r.backend.KeysPrefix(ctx, "space/")
	if err != nil {
		return nil, err
	}
	var spaces []models.Space
	for _, key := range keys {
		if !strings.HasSuffix(key, "/meta") {
			continue
		}
		var s models.Space
		if err := readJSON(ctx, r.backend, key, &s); err != nil {
			return nil, err
		}
		if s.Key == "" {
			continue
		}
		spaces = append(spaces, s)
	}
	return spaces, nil
}

func (r *spaceRepository) Save(ctx context.Context, space *models.Space) error {
	return writeJSON(ctx, r.backend, spaceMetaKey(space.Key), space)
}

func (r *spaceRepository) Membership(ctx context.Context, userID string) (models.Membership, error) {
	var m models.Membership
	if err := readJSON(ctx, r.backend, membershipKey(userID), &m); err != nil {
		return models.Membership{}, err
	}
	return m, nil
}

func (r *spaceRepository) SaveMembership(ctx context.Context, userID string, m models.Membership) error {
	return writeJSON(ctx, r.backend, membershipKey(userID), m)
}
