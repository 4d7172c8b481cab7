package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/seomentor/seomentor-api/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS projects (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	url        TEXT NOT NULL,
	request    TEXT NOT NULL,
	result     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS day_details (
	project_id INTEGER NOT NULL REFERENCES projects(id),
	day        INTEGER NOT NULL,
	detail     TEXT NOT NULL,
	fallback   INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (project_id, day)
);

CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateProject(ctx context.Context, req model.AnalysisRequest, result *model.AnalysisResult) (int64, error) {
	requestJSON, err := json.Marshal(req)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: marshal request")
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: marshal result")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (url, request, result, created_at) VALUES (?, ?, ?, ?)`,
		req.URL, string(requestJSON), string(resultJSON), time.Now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: insert project")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: last insert id")
	}
	return id, nil
}

func (s *SQLiteStore) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	var p model.Project
	var requestJSON, resultJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, url, request, result, created_at FROM projects WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.URL, &requestJSON, &resultJSON, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get project %d", id)
	}

	if err := json.Unmarshal([]byte(requestJSON), &p.Request); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal request")
	}
	if err := json.Unmarshal([]byte(resultJSON), &p.Result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal result")
	}
	return &p, nil
}

func (s *SQLiteStore) ListProjects(ctx context.Context) ([]model.ProjectSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, created_at FROM projects ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list projects")
	}
	defer rows.Close()

	var projects []model.ProjectSummary
	for rows.Next() {
		var p model.ProjectSummary
		if err := rows.Scan(&p.ID, &p.URL, &p.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan project")
		}
		projects = append(projects, p)
	}
	return projects, eris.Wrap(rows.Err(), "sqlite: iterate projects")
}

func (s *SQLiteStore) GetDayDetail(ctx context.Context, projectID int64, day int) (*model.DayTaskDetail, bool, error) {
	var detailJSON string
	var fallback bool

	err := s.db.QueryRowContext(ctx,
		`SELECT detail, fallback FROM day_details WHERE project_id = ? AND day = ?`,
		projectID, day,
	).Scan(&detailJSON, &fallback)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "sqlite: get day detail %d/%d", projectID, day)
	}

	var detail model.DayTaskDetail
	if err := json.Unmarshal([]byte(detailJSON), &detail); err != nil {
		return nil, false, eris.Wrap(err, "sqlite: unmarshal day detail")
	}
	return &detail, fallback, nil
}

func (s *SQLiteStore) PutDayDetail(ctx context.Context, projectID int64, day int, detail *model.DayTaskDetail, fallback bool) error {
	detailJSON, err := json.Marshal(detail)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal day detail")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO day_details (project_id, day, detail, fallback, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (project_id, day) DO UPDATE SET
		   detail = excluded.detail,
		   fallback = excluded.fallback,
		   created_at = excluded.created_at`,
		projectID, day, string(detailJSON), fallback, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: put day detail %d/%d", projectID, day)
}
