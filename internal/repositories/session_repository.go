package repositories

import (
	"context"
	"time"

	"taskbot/internal/models"
)

type SessionRepository interface {
	Get(ctx context.Context, userID string) (models.Session, error)
	Put(ctx context.Context, userID string, sess models.Session) error
}

type sessionRepository struct {
	backend Backend
}

func NewSessionRepository(backend Backend) SessionRepository {
	return &sessionRepository{backend: backend}
}

func sessionKey(userID string) string {
	return "session/" + userID
}

// Get returns the idle zero session for users without one.
func (r *sessionRepository) Get(ctx context.Context, userID string) (models.Session, error) {
	var sess models.Session
	if err := readJSON(ctx, r.backend, sessionKey(userID), &sess); err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

func (r *sessionRepository) Put(ctx context.Context, userID string, sess models.Session) error {
	sess.UpdatedAt = time.Now()
	return writeJSON(ctx, r.backend, sessionKey(userID), sess)
}
