package services

import (
	"context"
	"strings"
	"testing"

	"taskbot/internal/pdf"
	"taskbot/internal/repositories"
)

type fakeGenerator struct {
	calls int
	last  pdf.DigestData
}

func (g *fakeGenerator) GenerateDigest(data pdf.DigestData) (string, error) {
	g.calls++
	g.last = data
	return "/exports/out.pdf", nil
}

func newTestExportService(gen pdf.Generator, secret string) ExportService {
	backend := repositories.NewMemoryBackend()
	tasks := NewTaskService(repositories.NewTaskRepository(backend))
	boards := NewBoardService(repositories.NewBoardRepository(backend))
	spaces := NewSpaceService(repositories.NewSpaceRepository(backend))
	return NewExportService(secret, "http://localhost:10000", gen, tasks, boards, spaces)
}

func TestCreateLinkThenGenerate(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newTestExportService(gen, "test-secret")

	link, err := svc.CreateLink("U1")
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	prefix := "http://localhost:10000/export?token="
	if !strings.HasPrefix(link, prefix) {
		t.Fatalf("unexpected link shape: %q", link)
	}
	token := strings.TrimPrefix(link, prefix)

	path, err := svc.Generate(context.Background(), token)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if path != "/exports/out.pdf" {
		t.Errorf("unexpected path %q", path)
	}
	if gen.calls != 1 {
		t.Errorf("expected 1 generator call, got %d", gen.calls)
	}
	if gen.last.UserID != "U1" {
		t.Errorf("digest minted for %q, want U1", gen.last.UserID)
	}
}

func TestGenerateRejectsTamperedToken(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newTestExportService(gen, "test-secret")

	link, err := svc.CreateLink("U1")
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	token := strings.TrimPrefix(link, "http://localhost:10000/export?token=")

	if _, err := svc.Generate(context.Background(), token+"x"); err == nil {
		t.Error("expected error for tampered token")
	}
	if gen.calls != 0 {
		t.Errorf("generator must not run for bad tokens, got %d calls", gen.calls)
	}
}

func TestGenerateRejectsForeignSecret(t *testing.T) {
	gen := &fakeGenerator{}
	minter := newTestExportService(&fakeGenerator{}, "other-secret")
	svc := newTestExportService(gen, "test-secret")

	link, err := minter.CreateLink("U1")
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	token := strings.TrimPrefix(link, "http://localhost:10000/export?token=")

	if _, err := svc.Generate(context.Background(), token); err == nil {
		t.Error("expected error for token signed with a different secret")
	}
}
