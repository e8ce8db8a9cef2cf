package exports

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mmrzaf/empgen/internal/domain"
)

type SQLiteRepository struct {
	dbPath string
	db     *sql.DB
}

func NewSQLiteRepository(dbPath string) *SQLiteRepository {
	return &SQLiteRepository{dbPath: dbPath}
}

func (r *SQLiteRepository) Init() error {
	if dir := filepath.Dir(r.dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", r.dbPath+"?_busy_timeout=5000&_loc=auto")
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return err
	}
	r.db = db
	return r.applyMigrations()
}

func (r *SQLiteRepository) applyMigrations() error {
	if _, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return err
	}
	var cur int
	if err := r.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&cur); err != nil {
		return err
	}

	migs := []struct {
		v   int
		sql string
	}{
		{1, `
		CREATE TABLE IF NOT EXISTS exports (
			id TEXT PRIMARY KEY,
			batch_id TEXT NOT NULL,
			path TEXT NOT NULL,
			rows_written INTEGER NOT NULL,
			provider TEXT NOT NULL,
			profile_hash TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP
		)`},
		{2, `CREATE INDEX IF NOT EXISTS idx_exports_started_at ON exports(started_at)`},
	}

	for _, m := range migs {
		if cur >= m.v {
			continue
		}
		if _, err := r.db.Exec(m.sql); err != nil {
			return fmt.Errorf("migration %d failed: %w", m.v, err)
		}
		if _, err := r.db.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, m.v); err != nil {
			return err
		}
		cur = m.v
	}
	return nil
}

func (r *SQLiteRepository) Create(run *domain.ExportRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	_, err := r.db.Exec(`
		INSERT INTO exports (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.BatchID, run.Path, run.Rows, run.Provider, run.ProfileHash,
		run.Status, nullString(run.Error), run.StartedAt.UTC(), nullTime(run.CompletedAt),
	)
	return err
}

func (r *SQLiteRepository) Update(run *domain.ExportRun) error {
	res, err := r.db.Exec(`
		UPDATE exports SET
			path = ?, rows_written = ?, status = ?, error = ?, completed_at = ?
		WHERE id = ?`,
		run.Path, run.Rows, run.Status, nullString(run.Error), nullTime(run.CompletedAt), run.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) Get(id string) (*domain.ExportRun, error) {
	return scanRun(r.db.QueryRow(`SELECT `+selectColumns+` FROM exports WHERE id = ?`, id))
}

func (r *SQLiteRepository) List(limit int, status string) ([]*domain.ExportRun, error) {
	query := `SELECT ` + selectColumns + ` FROM exports`

	args := make([]interface{}, 0)
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}

	query += " ORDER BY started_at DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return scanRuns(rows)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
