// Package store persists audit projects and cached day-task details.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/seomentor/seomentor-api/internal/model"
)

// ErrNotFound is returned when a project or cached detail does not exist.
var ErrNotFound = eris.New("store: not found")

// Store defines persistence for audit projects.
type Store interface {
	// Projects
	CreateProject(ctx context.Context, req model.AnalysisRequest, result *model.AnalysisResult) (int64, error)
	GetProject(ctx context.Context, id int64) (*model.Project, error)
	ListProjects(ctx context.Context) ([]model.ProjectSummary, error)

	// Day detail cache. The fallback flag marks canned details so callers
	// can regenerate them once a model becomes available.
	GetDayDetail(ctx context.Context, projectID int64, day int) (*model.DayTaskDetail, bool, error)
	PutDayDetail(ctx context.Context, projectID int64, day int, detail *model.DayTaskDetail, fallback bool) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
