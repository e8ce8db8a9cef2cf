package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmrzaf/empgen/internal/domain"
	"github.com/mmrzaf/empgen/internal/exporter"
	"github.com/mmrzaf/empgen/internal/validation"
)

var (
	ErrNoData   = errors.New("Please generate data first.")
	ErrNoFolder = errors.New("Please select a folder first.")
)

// Session holds what one interactive user has generated and chosen so far.
// It is not safe for concurrent use.
type Session struct {
	svc      *ExportService
	folder   string
	batch    *domain.Batch
	provider string
	profile  string
	seed     *int64
}

func NewSession(svc *ExportService) *Session {
	return &Session{svc: svc}
}

func (s *Session) SetProvider(name string) { s.provider = name }
func (s *Session) SetProfile(ref string)   { s.profile = ref }
func (s *Session) SetSeed(seed *int64)     { s.seed = seed }

// SelectFolder sets the export folder. The folder must already exist.
func (s *Session) SelectFolder(folder string) error {
	folder = strings.TrimSpace(folder)
	if folder == "" {
		return ErrNoFolder
	}
	info, err := os.Stat(folder)
	if err != nil {
		return fmt.Errorf("select folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("select folder: %s is not a directory", folder)
	}
	s.folder = folder
	return nil
}

func (s *Session) Folder() string       { return s.folder }
func (s *Session) Batch() *domain.Batch { return s.batch }

// CanExport reports whether both a batch and a folder are present.
func (s *Session) CanExport() bool {
	return s.batch != nil && s.folder != ""
}

// Generate parses input as a record count and replaces the current batch.
// On error the previous batch is kept.
func (s *Session) Generate(input string) (*domain.Batch, error) {
	count, err := validation.ParseCount(input)
	if err != nil {
		return nil, err
	}
	batch, err := s.svc.Generate(&domain.GenerateRequest{
		Count:    count,
		Provider: s.provider,
		Seed:     s.seed,
		Profile:  s.profile,
	})
	if err != nil {
		return nil, err
	}
	s.batch = batch
	return batch, nil
}

// Export writes the current batch to <folder>/employees.xlsx. The batch is
// kept whatever the outcome.
func (s *Session) Export() (*domain.ExportRun, error) {
	if s.batch == nil {
		return nil, ErrNoData
	}
	if s.folder == "" {
		return nil, ErrNoFolder
	}
	return s.svc.Export(s.batch, filepath.Join(s.folder, exporter.DefaultFileName))
}

func SuccessMessage(path string) string {
	return "File saved at: " + path
}

func FailureMessage(err error) string {
	return "Failed to export file: " + strings.TrimPrefix(err.Error(), "failed to export file: ")
}
