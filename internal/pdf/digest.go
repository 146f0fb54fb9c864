package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskbot/internal/models"
)

// Generator is an interface so handlers and services can be tested with
// a fake.
type Generator interface {
	GenerateDigest(data DigestData) (string, error)
}

// DigestGenerator renders a task/board digest PDF into RootDir.
type DigestGenerator struct {
	RootDir string
}

type DigestData struct {
	UserID    string
	Personal  []models.PersonalTask
	Shared    []models.SharedTask
	Board     []models.BoardEntry
	CreatedAt time.Time
	Filename  string // without path; generated when empty
}

func NewDigestGenerator(rootDir string) *DigestGenerator {
	return &DigestGenerator{RootDir: filepath.Clean(rootDir)}
}

func (g *DigestGenerator) GenerateDigest(data DigestData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("digest_%s_%s.pdf", data.UserID, data.CreatedAt.Format("20060102_150405"))
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Task digest", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "TASK DIGEST", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, data.CreatedAt.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	g.hr(pdf)

	g.section(pdf, "Personal tasks")
	if len(data.Personal) == 0 {
		g.line(pdf, "(none)")
	}
	for i, t := range data.Personal {
		mark := "[ ]"
		if t.Status == models.StatusDone {
			mark = "[x]"
		}
		row := fmt.Sprintf("%d. %s %s", i+1, mark, t.Text)
		if t.Deadline != nil {
			row += " (due " + *t.Deadline + ")"
		}
		g.line(pdf, row)
	}

	g.section(pdf, "Shared tasks")
	if len(data.Shared) == 0 {
		g.line(pdf, "(none)")
	}
	for i, t := range data.Shared {
		g.line(pdf, fmt.Sprintf("G%d. %s (done by %d)", i+1, t.Text, len(t.DoneBy)))
	}

	g.section(pdf, "Board")
	if len(data.Board) == 0 {
		g.line(pdf, "(none)")
	}
	for i := len(data.Board) - 1; i >= 0; i-- {
		e := data.Board[i]
		g.line(pdf, fmt.Sprintf("[%s] %s: %s", e.CreatedAt.Format("2006-01-02"), e.Author, e.Text))
	}

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return absPath, nil
}

func (g *DigestGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure export dir: %w", err)
	}
	return filepath.Join(g.RootDir, filepath.Base(filename)), nil
}

func (g *DigestGenerator) section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
}

func (g *DigestGenerator) line(pdf *gofpdf.Fpdf, text string) {
	pdf.MultiCell(0, 6, text, "", "L", false)
}

func (g *DigestGenerator) hr(pdf *gofpdf.Fpdf) {
	x, y := pdf.GetXY()
	pdf.SetDrawColor(150, 150, 150)
	pdf.Line(20, y+2, 190, y+2)
	pdf.SetXY(x, y+6)
}
