package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmrzaf/empgen/internal/domain"
	"github.com/mmrzaf/empgen/internal/exporter"
	"github.com/mmrzaf/empgen/internal/validation"
)

func TestSessionExportRequiresDataAndFolder(t *testing.T) {
	svc, _, _ := newTestService(t)
	s := NewSession(svc)

	if s.CanExport() {
		t.Fatal("fresh session must not be exportable")
	}
	if _, err := s.Export(); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}

	if _, err := s.Generate("3"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := s.Export(); !errors.Is(err, ErrNoFolder) {
		t.Fatalf("expected ErrNoFolder, got %v", err)
	}
	if ErrNoData.Error() != "Please generate data first." || ErrNoFolder.Error() != "Please select a folder first." {
		t.Fatal("unexpected warning text")
	}
}

func TestSessionGenerateRejectsBadInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	s := NewSession(svc)

	first, err := s.Generate("2")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for _, input := range []string{"", "abc", "0", "-4", "1.5"} {
		if _, err := s.Generate(input); !errors.Is(err, validation.ErrInvalidCount) {
			t.Fatalf("input %q: expected ErrInvalidCount, got %v", input, err)
		}
		if s.Batch() != first {
			t.Fatalf("input %q replaced the previous batch", input)
		}
	}
}

func TestSessionSelectFolder(t *testing.T) {
	svc, _, _ := newTestService(t)
	s := NewSession(svc)

	if err := s.SelectFolder(""); !errors.Is(err, ErrNoFolder) {
		t.Fatalf("expected ErrNoFolder, got %v", err)
	}
	if err := s.SelectFolder(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected missing folder to be rejected")
	}

	file := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.SelectFolder(file); err == nil {
		t.Fatal("expected a regular file to be rejected")
	}

	dir := t.TempDir()
	if err := s.SelectFolder(dir); err != nil {
		t.Fatalf("select folder: %v", err)
	}
	if s.Folder() != dir {
		t.Fatalf("expected folder %s, got %s", dir, s.Folder())
	}
}

func TestSessionExportWritesDefaultFile(t *testing.T) {
	svc, _, _ := newTestService(t)
	s := NewSession(svc)
	seed := int64(3)
	s.SetSeed(&seed)

	dir := t.TempDir()
	if err := s.SelectFolder(dir); err != nil {
		t.Fatalf("select folder: %v", err)
	}
	if _, err := s.Generate("10"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	run, err := s.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := filepath.Join(dir, exporter.DefaultFileName)
	if run.Path != want {
		t.Fatalf("expected %s, got %s", want, run.Path)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
	if got := SuccessMessage(run.Path); got != "File saved at: "+want {
		t.Fatalf("unexpected success message %q", got)
	}
}

func TestSessionKeepsBatchAfterFailedExport(t *testing.T) {
	svc, _, _ := newTestService(t)
	s := NewSession(svc)

	dir := t.TempDir()
	if err := s.SelectFolder(dir); err != nil {
		t.Fatalf("select folder: %v", err)
	}
	batch, err := s.Generate("5")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// The folder disappears between selection and export.
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("remove: %v", err)
	}
	run, err := s.Export()
	if err == nil {
		t.Fatal("expected export to fail")
	}
	if run.Status != domain.ExportStatusFailed {
		t.Fatalf("expected failed run, got %s", run.Status)
	}
	if msg := FailureMessage(err); !strings.HasPrefix(msg, "Failed to export file: ") || strings.Contains(msg, "failed to export file") {
		t.Fatalf("unexpected failure message %q", msg)
	}
	if s.Batch() != batch {
		t.Fatal("batch must survive a failed export")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	run, err = s.Export()
	if err != nil {
		t.Fatalf("retry export: %v", err)
	}
	if run.Status != domain.ExportStatusSuccess || run.BatchID != batch.ID {
		t.Fatalf("unexpected retry run: %+v", run)
	}
}
