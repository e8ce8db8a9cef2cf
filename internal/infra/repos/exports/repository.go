package exports

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mmrzaf/empgen/internal/domain"
)

var ErrNotFound = errors.New("export not found")

// Repository stores one row per export attempt.
type Repository interface {
	Init() error
	Create(run *domain.ExportRun) error
	Update(run *domain.ExportRun) error
	Get(id string) (*domain.ExportRun, error)
	List(limit int, status string) ([]*domain.ExportRun, error)
	Close() error
}

// Open picks a backend from the DSN: postgres URLs or keyword DSNs go to
// PostgreSQL, an empty DSN disables history, anything else is a SQLite path.
func Open(dsn string) (Repository, error) {
	dsn = strings.TrimSpace(dsn)
	var repo Repository
	switch {
	case dsn == "":
		repo = NopRepository{}
	case isPostgresDSN(dsn):
		repo = NewPostgresRepository(dsn)
	default:
		repo = NewSQLiteRepository(strings.TrimPrefix(dsn, "sqlite://"))
	}
	if err := repo.Init(); err != nil {
		return nil, fmt.Errorf("init export history: %w", err)
	}
	return repo, nil
}

func isPostgresDSN(dsn string) bool {
	l := strings.ToLower(dsn)
	return strings.HasPrefix(l, "postgres://") ||
		strings.HasPrefix(l, "postgresql://") ||
		strings.Contains(l, "host=") && strings.Contains(l, "dbname=")
}

const selectColumns = `id, batch_id, path, rows_written, provider, profile_hash, status, error, started_at, completed_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s rowScanner) (*domain.ExportRun, error) {
	var run domain.ExportRun
	var errorStr sql.NullString
	var completedAt sql.NullTime

	err := s.Scan(
		&run.ID, &run.BatchID, &run.Path, &run.Rows, &run.Provider, &run.ProfileHash,
		&run.Status, &errorStr, &run.StartedAt, &completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if errorStr.Valid {
		run.Error = errorStr.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return &run, nil
}

func scanRuns(rows *sql.Rows) ([]*domain.ExportRun, error) {
	defer rows.Close()
	runs := make([]*domain.ExportRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// NopRepository backs runs with history disabled.
type NopRepository struct{}

func (NopRepository) Init() error                           { return nil }
func (NopRepository) Create(*domain.ExportRun) error        { return nil }
func (NopRepository) Update(*domain.ExportRun) error        { return nil }
func (NopRepository) Get(string) (*domain.ExportRun, error) { return nil, ErrNotFound }
func (NopRepository) List(int, string) ([]*domain.ExportRun, error) {
	return []*domain.ExportRun{}, nil
}
func (NopRepository) Close() error { return nil }
