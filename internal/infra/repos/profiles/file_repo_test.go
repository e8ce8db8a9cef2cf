package profiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mmrzaf/empgen/internal/domain"
)

const smallProfile = `name: Small shop
departments: [Sales, Support]
salary_min: 30000
salary_max: 40000
hire_date_from: "2022-01-01"
`

func TestGetByPath_RejectsPathTraversal(t *testing.T) {
	base := t.TempDir()
	repo := NewFileRepository(base)

	if err := os.WriteFile(filepath.Join(base, "small.yaml"), []byte(smallProfile), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := repo.GetByPath("small.yaml")
	if err != nil {
		t.Fatalf("expected profile load inside base dir, got %v", err)
	}
	if p.ID != "small" || p.SalaryMax != 40000 || len(p.Departments) != 2 {
		t.Fatalf("unexpected profile: %#v", p)
	}

	outsideFile := filepath.Join(t.TempDir(), "outside.yaml")
	if err := os.WriteFile(outsideFile, []byte("id: bad"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetByPath(outsideFile); err == nil {
		t.Fatal("expected traversal rejection for outside absolute path")
	}
	if _, err := repo.GetByPath("../outside.yaml"); err == nil {
		t.Fatal("expected traversal rejection for relative path escape")
	}
}

func TestListAndGet(t *testing.T) {
	base := t.TempDir()
	repo := NewFileRepository(base)

	if err := os.WriteFile(filepath.Join(base, "small.yaml"), []byte(smallProfile), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "wide.json"), []byte(`{"id":"wide","salary_min":1,"salary_max":999999}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "broken.yaml"), []byte("salary_min: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	list, err := repo.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("expected default + 2 profiles, got %d", len(list))
	}
	if list[0].ID != domain.DefaultProfileID {
		t.Fatalf("expected default profile first, got %q", list[0].ID)
	}

	if p, err := repo.Get("Small shop"); err != nil || p.ID != "small" {
		t.Fatalf("lookup by name failed: %v %#v", err, p)
	}
	if p, err := repo.Get("wide"); err != nil || p.SalaryMax != 999999 {
		t.Fatalf("lookup by id failed: %v %#v", err, p)
	}
	if _, err := repo.Get("missing"); err == nil {
		t.Fatal("expected not found")
	}
}

func TestList_MissingDirYieldsDefault(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "absent"))
	p, err := repo.Get(domain.DefaultProfileID)
	if err != nil {
		t.Fatal(err)
	}
	if p.SalaryMin != domain.SalaryMin || p.SalaryMax != domain.SalaryMax {
		t.Fatalf("unexpected default profile: %#v", p)
	}
}
