package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smukkama/aquasure-server/internal/database"
	"github.com/smukkama/aquasure-server/internal/export"
	"github.com/smukkama/aquasure-server/internal/report"
)

func (h *Handler) ReportSummary(c *gin.Context) {
	r, ok := h.buildReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"title":         r.Title,
		"project":       r.Project,
		"project_count": r.ProjectCount,
		"generated_at":  r.GeneratedAt,
		"summary":       r.Summary,
		"standards":     r.Standards,
		"compliance":    r.Compliance,
	})
}

func (h *Handler) ExportReport(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	r, ok := h.buildReport(c)
	if !ok {
		return
	}

	data, err := export.Render(format, r)
	if err != nil {
		h.respondError(c, err)
		return
	}
	attachment(c, export.Filename(r, format), format.ContentType(), data)
}

// buildReport loads the samples in scope of the project_id query and builds
// the report over them
func (h *Handler) buildReport(c *gin.Context) (*report.Report, bool) {
	projectID, ok := queryProjectID(c)
	if !ok {
		return nil, false
	}
	ctx := c.Request.Context()

	projects, err := h.projectIndex(ctx)
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}

	var project *database.Project
	if projectID != nil {
		project, ok = projects[*projectID]
		if !ok {
			h.respondError(c, database.ErrNotFound)
			return nil, false
		}
	}

	samples, err := h.store.ListSamples(ctx, database.SampleFilter{ProjectID: projectID})
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	return report.Build(project, samples, projects, h.standards, h.now()), true
}
