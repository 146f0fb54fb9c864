package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskbot/internal/models"
	"taskbot/internal/pdf"
)

// ExportService mints short-lived signed download links and renders the
// digest PDF when a link is redeemed. Chat messages can only carry
// URLs, so the file itself is served over HTTP.
type ExportService interface {
	CreateLink(userID string) (string, error)
	Generate(ctx context.Context, token string) (string, error)
}

type exportClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type exportService struct {
	secret  []byte
	baseURL string
	gen     pdf.Generator
	tasks   TaskService
	boards  BoardService
	spaces  SpaceService
}

func NewExportService(secret, baseURL string, gen pdf.Generator, tasks TaskService, boards BoardService, spaces SpaceService) ExportService {
	return &exportService{
		secret:  []byte(secret),
		baseURL: baseURL,
		gen:     gen,
		tasks:   tasks,
		boards:  boards,
		spaces:  spaces,
	}
}

const linkTTL = 30 * time.Minute

func (s *exportService) CreateLink(userID string) (string, error) {
	claims := &exportClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(linkTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign export token: %w", err)
	}
	return s.baseURL + "/export?token=" + tok, nil
}

func (s *exportService) Generate(ctx context.Context, tokenStr string) (string, error) {
	claims := &exportClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid or expired token")
	}
	const leeway = 2 * time.Minute
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(time.Now().Add(-leeway)) {
		return "", fmt.Errorf("invalid or expired token")
	}
	uid := claims.UserID

	personal, err := s.tasks.ListPersonal(ctx, uid)
	if err != nil {
		return "", err
	}
	scope, err := s.spaces.ActiveScope(ctx, uid, "")
	if err != nil {
		return "", err
	}
	var shared []models.SharedTask
	var board []models.BoardEntry
	if !scope.IsZero() {
		if shared, err = s.tasks.ListShared(ctx, scope); err != nil {
			return "", err
		}
		owner := models.BoardOwner{Kind: string(scope.Kind), ID: scope.ID}
		if board, err = s.boards.List(ctx, owner); err != nil {
			return "", err
		}
	}

	return s.gen.GenerateDigest(pdf.DigestData{
		UserID:    uid,
		Personal:  personal,
		Shared:    shared,
		Board:     board,
		CreatedAt: time.Now(),
	})
}
