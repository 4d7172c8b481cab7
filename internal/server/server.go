// Package server exposes the audit pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/seomentor/seomentor-api/internal/model"
	"github.com/seomentor/seomentor-api/internal/store"
)

// Auditor runs the full analysis pipeline for one request.
type Auditor interface {
	Run(ctx context.Context, req model.AnalysisRequest, metrics *model.ScrapedMetrics) *model.AnalysisResult
}

// DetailGenerator expands one roadmap task into an actionable brief.
// The second return marks a canned fallback detail.
type DetailGenerator interface {
	Generate(ctx context.Context, req model.AnalysisRequest, result *model.AnalysisResult, task model.RoadmapTask) (model.DayTaskDetail, bool)
}

// HomepageScraper collects on-page metrics for a URL.
type HomepageScraper interface {
	ScrapeHomepage(ctx context.Context, url string) *model.ScrapedMetrics
}

// Server wires the HTTP API together.
type Server struct {
	store   store.Store
	scraper HomepageScraper
	auditor Auditor
	details DetailGenerator
	log     *zap.Logger
	router  chi.Router
}

// New creates a Server with all routes registered.
func New(st store.Store, sc HomepageScraper, auditor Auditor, details DetailGenerator, log *zap.Logger) *Server {
	if log == nil {
		log = zap.L()
	}
	s := &Server{
		store:   st,
		scraper: sc,
		auditor: auditor,
		details: details,
		log:     log,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/analyze", s.handleAnalyze)
	r.Get("/projects", s.handleListProjects)
	r.Get("/project/{id}", s.handleGetProject)
	r.Get("/project/{id}/day/{day}/detail", s.handleDayDetail)
	return r
}

// requestLogger logs one line per request with method, path, status and
// duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// analyzeResponse is the POST /analyze payload.
type analyzeResponse struct {
	ProjectID int64                 `json:"project_id"`
	Result    *model.AnalysisResult `json:"result"`
	Scraped   *model.ScrapedMetrics `json:"scraped"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req model.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	req = req.Sanitized()
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required.")
		return
	}

	ctx := r.Context()
	scraped := s.scraper.ScrapeHomepage(ctx, req.URL)
	result := s.auditor.Run(ctx, req, scraped)

	id, err := s.store.CreateProject(ctx, req, result)
	if err != nil {
		s.log.Error("store project failed", zap.String("url", req.URL), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Could not store analysis.")
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		ProjectID: id,
		Result:    result,
		Scraped:   scraped,
	})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer.")
			return
		}
		limit = n
	}

	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		s.log.Error("list projects failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Could not list projects.")
		return
	}
	if len(projects) > limit {
		projects = projects[:limit]
	}
	if projects == nil {
		projects = []model.ProjectSummary{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	p, err := s.store.GetProject(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		s.log.Error("get project failed", zap.Int64("project_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Could not load project.")
		return
	}
	writeJSON(w, http.StatusOK, &p.Result)
}

// dayDetailResponse is the GET /project/{id}/day/{day}/detail payload.
type dayDetailResponse struct {
	Day         int      `json:"day"`
	Task        string   `json:"task"`
	Description string   `json:"description"`
	Checklist   []string `json:"checklist"`
	KPI         string   `json:"kpi"`
	Fallback    bool     `json:"fallback"`
	Cached      bool     `json:"cached"`
}

func (s *Server) handleDayDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil || day < 1 || day > model.MaxPlanDays {
		writeError(w, http.StatusBadRequest, "Day must be between 1 and 30.")
		return
	}
	refresh := r.URL.Query().Get("refresh") == "true"

	ctx := r.Context()
	p, err := s.store.GetProject(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		s.log.Error("get project failed", zap.Int64("project_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Could not load project.")
		return
	}

	task, found := p.Result.TaskForDay(day)
	if !found {
		writeError(w, http.StatusNotFound, "Roadmap day not found")
		return
	}

	// Cached details are reused unless they were canned fallbacks or the
	// caller forces regeneration.
	if !refresh {
		cached, fallback, err := s.store.GetDayDetail(ctx, id, day)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			s.log.Error("get day detail failed",
				zap.Int64("project_id", id),
				zap.Int("day", day),
				zap.Error(err))
		}
		if err == nil && !fallback {
			writeJSON(w, http.StatusOK, dayDetailResponse{
				Day:         day,
				Task:        task.Task,
				Description: cached.Description,
				Checklist:   cached.Checklist,
				KPI:         cached.KPI,
				Fallback:    false,
				Cached:      true,
			})
			return
		}
	}

	detail, fallback := s.details.Generate(ctx, p.Request, &p.Result, task)
	if err := s.store.PutDayDetail(ctx, id, day, &detail, fallback); err != nil {
		s.log.Error("put day detail failed",
			zap.Int64("project_id", id),
			zap.Int("day", day),
			zap.Error(err))
	}

	writeJSON(w, http.StatusOK, dayDetailResponse{
		Day:         day,
		Task:        task.Task,
		Description: detail.Description,
		Checklist:   detail.Checklist,
		KPI:         detail.KPI,
		Fallback:    fallback,
		Cached:      false,
	})
}

func pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v < 1 {
		writeError(w, http.StatusBadRequest, "Invalid "+name+".")
		return 0, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
