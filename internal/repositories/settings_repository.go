package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"taskbot/internal/models"
)

type SettingsRepository interface {
	Get(ctx context.Context, userID string) (models.Settings, error)
	Put(ctx context.Context, userID string, st models.Settings) error
}

type settingsRepository struct {
	backend Backend
}

func NewSettingsRepository(backend Backend) SettingsRepository {
	return &settingsRepository{backend: backend}
}

func settingsKey(userID string) string {
	return "settings/" + userID
}

func (r *settingsRepository) Get(ctx context.Context, userID string) (models.Settings, error) {
	data, err := r.backend.Read(ctx, settingsKey(userID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.DefaultSettings(), nil
		}
		return models.DefaultSettings(), err
	}
	st := models.DefaultSettings()
	if err := json.Unmarshal(data, &st); err != nil {
		return models.DefaultSettings(), fmt.Errorf("decode %s: %w", settingsKey(userID), err)
	}
	return st, nil
}

func (r *settingsRepository) Put(ctx context.Context, userID string, st models.Settings) error {
	return writeJSON(ctx, r.backend, settingsKey(userID), st)
}
