package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"taskbot/internal/models"
	"taskbot/internal/repositories"
)

// SpaceService manages passphrase-joined spaces. The passphrase never
// hits the store; only its bcrypt hash does, so joining means comparing
// the normalized phrase against every space's hash.
type SpaceService interface {
	// Join enrolls the user in the space matching the passphrase,
	// creating the space when no match exists. The created flag tells
	// the two cases apart.
	Join(ctx context.Context, userID, passphrase string) (*models.Space, bool, error)
	// ActiveScope picks the shared-task scope for an event: the native
	// chat group wins, then the user's active space, else none.
	ActiveScope(ctx context.Context, userID, groupID string) (models.Scope, error)
}

type spaceService struct {
	repo repositories.SpaceRepository
}

func NewSpaceService(repo repositories.SpaceRepository) SpaceService {
	return &spaceService{repo: repo}
}

// NormalizePassphrase trims and collapses inner whitespace so spacing
// differences cannot split one space into two.
func NormalizePassphrase(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (s *spaceService) Join(ctx context.Context, userID, passphrase string) (*models.Space, bool, error) {
	norm := NormalizePassphrase(passphrase)
	if norm == "" {
		return nil, false, fmt.Errorf("empty passphrase")
	}

	spaces, err := s.repo.List(ctx)
	if err != nil {
		return nil, false, err
	}
	for i := range spaces {
		sp := &spaces[i]
		if bcrypt.CompareHashAndPassword([]byte(sp.PassphraseHash), []byte(norm)) == nil {
			if !sp.HasMember(userID) {
				sp.Members = append(sp.Members, userID)
				if err := s.repo.Save(ctx, sp); err != nil {
					return nil, false, err
				}
			}
			if err := s.activate(ctx, userID, sp.Key); err != nil {
				return nil, false, err
			}
			log.Printf("[space][join][ok] user=%s space=%s", userID, sp.Key)
			return sp, false, nil
		}
	}

	// No match: create a fresh space keyed by a random id.
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return nil, false, fmt.Errorf("rng failed: %w", err)
	}
	key := hex.EncodeToString(buf)
	hash, err := bcrypt.GenerateFromPassword([]byte(norm), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("bcrypt generate: %w", err)
	}
	sp := &models.Space{
		Key:            key,
		Name:           "Space-" + key[:6],
		PassphraseHash: string(hash),
		Members:        []string{userID},
	}
	if err := s.repo.Save(ctx, sp); err != nil {
		return nil, false, err
	}
	if err := s.activate(ctx, userID, key); err != nil {
		return nil, false, err
	}
	log.Printf("[space][create][ok] user=%s space=%s", userID, key)
	return sp, true, nil
}

func (s *spaceService) activate(ctx context.Context, userID, key string) error {
	m, err := s.repo.Membership(ctx, userID)
	if err != nil {
		return err
	}
	joined := false
	for _, k := range m.Joined {
		if k == key {
			joined = true
			break
		}
	}
	if !joined {
		m.Joined = append(m.Joined, key)
	}
	m.Active = key
	return s.repo.SaveMembership(ctx, userID, m)
}

func (s *spaceService) ActiveScope(ctx context.Context, userID, groupID string) (models.Scope, error) {
	if groupID != "" {
		return models.Scope{Kind: models.ScopeGroup, ID: groupID}, nil
	}
	m, err := s.repo.Membership(ctx, userID)
	if err != nil {
		return models.Scope{}, err
	}
	if m.Active != "" {
		return models.Scope{Kind: models.ScopeSpace, ID: m.Active}, nil
	}
	return models.Scope{}, nil
}
