package exports

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/mmrzaf/empgen/internal/domain"
)

type PostgresRepository struct {
	dsn string
	db  *sql.DB
}

func NewPostgresRepository(dsn string) *PostgresRepository {
	return &PostgresRepository{dsn: strings.TrimSpace(dsn)}
}

func (r *PostgresRepository) Init() error {
	if r.dsn == "" {
		return fmt.Errorf("history db dsn is required")
	}
	db, err := sql.Open("postgres", r.dsn)
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

func (r *PostgresRepository) applyMigrations() error {
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
			started_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ
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
		if _, err := r.db.Exec(`INSERT INTO schema_migrations(version) VALUES ($1)`, m.v); err != nil {
			return err
		}
		cur = m.v
	}
	return nil
}

func (r *PostgresRepository) Create(run *domain.ExportRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	_, err := r.db.Exec(`
		INSERT INTO exports (`+selectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		run.ID, run.BatchID, run.Path, run.Rows, run.Provider, run.ProfileHash,
		run.Status, nullString(run.Error), run.StartedAt.UTC(), nullTime(run.CompletedAt),
	)
	return err
}

func (r *PostgresRepository) Update(run *domain.ExportRun) error {
	res, err := r.db.Exec(`
		UPDATE exports SET
			path = $1, rows_written = $2, status = $3, error = $4, completed_at = $5
		WHERE id = $6`,
		run.Path, run.Rows, run.Status, nullString(run.Error), nullTime(run.CompletedAt), run.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *PostgresRepository) Get(id string) (*domain.ExportRun, error) {
	return scanRun(r.db.QueryRow(`SELECT `+selectColumns+` FROM exports WHERE id = $1`, id))
}

func (r *PostgresRepository) List(limit int, status string) ([]*domain.ExportRun, error) {
	query := `SELECT ` + selectColumns + ` FROM exports`

	args := make([]interface{}, 0)
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" WHERE status = $%d", len(args))
	}

	query += " ORDER BY started_at DESC"

	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return scanRuns(rows)
}

func (r *PostgresRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
