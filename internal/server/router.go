package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smukkama/aquasure-server/internal/database"
	"github.com/smukkama/aquasure-server/internal/logger"
	"github.com/smukkama/aquasure-server/internal/standards"
)

// Store is the persistence the handlers need. *database.DB implements it.
type Store interface {
	CreateProject(ctx context.Context, p *database.Project) error
	UpdateProject(ctx context.Context, p *database.Project) error
	GetProject(ctx context.Context, id uuid.UUID) (*database.Project, error)
	ListProjects(ctx context.Context) ([]*database.Project, error)
	ListProjectDailySummaries(ctx context.Context, projectID uuid.UUID, since time.Time) ([]*database.ProjectDailySummary, error)

	InsertSamples(ctx context.Context, samples []*database.Sample) error
	ListSamples(ctx context.Context, filter database.SampleFilter) ([]*database.Sample, error)
	GetSample(ctx context.Context, id uuid.UUID) (*database.Sample, error)

	GetAlert(ctx context.Context, id uuid.UUID) (*database.Alert, error)
	ListAlerts(ctx context.Context, filter database.AlertFilter) ([]*database.AlertDetail, error)
	UpdateAlertStatus(ctx context.Context, id uuid.UUID, from, to string) (*database.Alert, error)
	AcknowledgeActive(ctx context.Context, priority string) (int64, error)
	GetAlertStats(ctx context.Context) (*database.AlertStats, error)
}

// SampleEvents announces committed samples
type SampleEvents interface {
	Submit(samples []*database.Sample, projects map[uuid.UUID]*database.Project)
}

// Handler holds the dependencies shared by every route
type Handler struct {
	store          Store
	events         SampleEvents
	standards      *standards.Registry
	log            *logger.Logger
	maxUploadBytes int64
	now            func() time.Time
}

// RouterConfig wires the API
type RouterConfig struct {
	Store          Store
	Events         SampleEvents
	Verifier       TokenVerifier
	Standards      *standards.Registry
	Log            *logger.Logger
	AllowedOrigins []string
	MaxUploadBytes int64
}

// NewRouter builds the gin engine with every route registered
func NewRouter(cfg RouterConfig) *gin.Engine {
	h := &Handler{
		store:          cfg.Store,
		events:         cfg.Events,
		standards:      cfg.Standards,
		log:            cfg.Log.With("component", "http"),
		maxUploadBytes: cfg.MaxUploadBytes,
		now:            func() time.Time { return time.Now().UTC() },
	}
	if h.standards == nil {
		h.standards = standards.Default()
	}
	if h.maxUploadBytes <= 0 {
		h.maxUploadBytes = 10 << 20
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(h.log))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(CORS(cfg.AllowedOrigins))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := r.Group("/api")
	api.Use(RequireAuth(cfg.Verifier))
	write := RequireMutate()

	projects := api.Group("/projects")
	{
		projects.GET("", h.ListProjects)
		projects.POST("", write, h.CreateProject)
		projects.GET("/:id", h.GetProject)
		projects.PUT("/:id", write, h.UpdateProject)
		projects.GET("/:id/history", h.ProjectHistory)
	}

	samples := api.Group("/samples")
	{
		samples.GET("", h.ListSamples)
		samples.POST("", write, h.CreateSample)
		samples.POST("/bulk", write, h.BulkCreateSamples)
		samples.POST("/upload", write, h.UploadSamples)
		samples.GET("/template", h.SampleTemplate)
		samples.GET("/geojson", h.SamplesGeoJSON)
		samples.GET("/:id", h.GetSample)
	}

	alerts := api.Group("/alerts")
	{
		alerts.GET("", h.ListAlerts)
		alerts.GET("/stats", h.AlertStats)
		alerts.POST("/acknowledge-all", write, h.AcknowledgeAll)
		alerts.POST("/:id/acknowledge", write, h.AcknowledgeAlert)
		alerts.POST("/:id/resolve", write, h.ResolveAlert)
	}

	reports := api.Group("/reports")
	{
		reports.GET("/summary", h.ReportSummary)
		reports.GET("/export", h.ExportReport)
	}

	return r
}

// pathID parses the :id route parameter, answering 400 when malformed
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// queryProjectID parses the optional project_id query parameter
func queryProjectID(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("project_id")
	if raw == "" || raw == "all" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "invalid project_id")
		return nil, false
	}
	return &id, true
}

// projectIndex loads every project keyed by id
func (h *Handler) projectIndex(ctx context.Context) (map[uuid.UUID]*database.Project, error) {
	projects, err := h.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[uuid.UUID]*database.Project, len(projects))
	for _, p := range projects {
		index[p.ID] = p
	}
	return index, nil
}
