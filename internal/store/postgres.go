package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/seomentor/seomentor-api/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. Satisfied by
// *pgxpool.Pool and by pgxmock pools in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the hot request paths.
var preparedStatements = map[string]string{
	"insert_project": `INSERT INTO projects (url, request, result, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
	"get_project":    `SELECT id, url, request, result, created_at FROM projects WHERE id = $1`,
	"get_day_detail": `SELECT detail, fallback FROM day_details WHERE project_id = $1 AND day = $2`,
	"put_day_detail": `INSERT INTO day_details (project_id, day, detail, fallback, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (project_id, day) DO UPDATE SET
		  detail = excluded.detail,
		  fallback = excluded.fallback,
		  created_at = excluded.created_at`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS projects (
	id         BIGSERIAL PRIMARY KEY,
	url        TEXT NOT NULL,
	request    JSONB NOT NULL,
	result     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS day_details (
	project_id BIGINT NOT NULL REFERENCES projects(id),
	day        INTEGER NOT NULL,
	detail     JSONB NOT NULL,
	fallback   BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (project_id, day)
);

CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects(created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateProject(ctx context.Context, req model.AnalysisRequest, result *model.AnalysisResult) (int64, error) {
	requestJSON, err := json.Marshal(req)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: marshal request")
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: marshal result")
	}

	var id int64
	err = s.pool.QueryRow(ctx,
		`INSERT INTO projects (url, request, result, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		req.URL, requestJSON, resultJSON, time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert project")
	}
	return id, nil
}

func (s *PostgresStore) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	var p model.Project
	var requestJSON, resultJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, url, request, result, created_at FROM projects WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.URL, &requestJSON, &resultJSON, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get project %d", id)
	}

	if err := json.Unmarshal(requestJSON, &p.Request); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal request")
	}
	if err := json.Unmarshal(resultJSON, &p.Result); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal result")
	}
	return &p, nil
}

func (s *PostgresStore) ListProjects(ctx context.Context) ([]model.ProjectSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, url, created_at FROM projects ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list projects")
	}
	defer rows.Close()

	var projects []model.ProjectSummary
	for rows.Next() {
		var p model.ProjectSummary
		if err := rows.Scan(&p.ID, &p.URL, &p.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan project")
		}
		projects = append(projects, p)
	}
	return projects, eris.Wrap(rows.Err(), "postgres: iterate projects")
}

func (s *PostgresStore) GetDayDetail(ctx context.Context, projectID int64, day int) (*model.DayTaskDetail, bool, error) {
	var detailJSON []byte
	var fallback bool

	err := s.pool.QueryRow(ctx,
		`SELECT detail, fallback FROM day_details WHERE project_id = $1 AND day = $2`,
		projectID, day,
	).Scan(&detailJSON, &fallback)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "postgres: get day detail %d/%d", projectID, day)
	}

	var detail model.DayTaskDetail
	if err := json.Unmarshal(detailJSON, &detail); err != nil {
		return nil, false, eris.Wrap(err, "postgres: unmarshal day detail")
	}
	return &detail, fallback, nil
}

func (s *PostgresStore) PutDayDetail(ctx context.Context, projectID int64, day int, detail *model.DayTaskDetail, fallback bool) error {
	detailJSON, err := json.Marshal(detail)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal day detail")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO day_details (project_id, day, detail, fallback, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (project_id, day) DO UPDATE SET
		   detail = excluded.detail,
		   fallback = excluded.fallback,
		   created_at = excluded.created_at`,
		projectID, day, detailJSON, fallback, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: put day detail %d/%d", projectID, day)
}
