package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/smukkama/aquasure-server/internal/database"
	"github.com/smukkama/aquasure-server/internal/export"
	"github.com/smukkama/aquasure-server/internal/hmpi"
	"github.com/smukkama/aquasure-server/internal/ingest"
)

func (h *Handler) ListSamples(c *gin.Context) {
	filter, ok := sampleFilter(c)
	if !ok {
		return
	}

	samples, err := h.store.ListSamples(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if samples == nil {
		samples = []*database.Sample{}
	}
	c.JSON(http.StatusOK, gin.H{"samples": samples})
}

func (h *Handler) GetSample(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	sample, err := h.store.GetSample(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sample)
}

func sampleFilter(c *gin.Context) (database.SampleFilter, bool) {
	var filter database.SampleFilter

	projectID, ok := queryProjectID(c)
	if !ok {
		return filter, false
	}
	filter.ProjectID = projectID
	filter.Metal = hmpi.Metal(c.Query("metal"))

	if raw := c.Query("risk_level"); raw != "" {
		tier := hmpi.RiskTier(raw)
		if !tier.Valid() {
			badRequest(c, "invalid risk_level")
			return filter, false
		}
		filter.RiskLevel = tier
	}
	return filter, true
}

func (h *Handler) CreateSample(c *gin.Context) {
	var in ingest.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	in.Row = 1

	samples, ok := h.saveSamples(c, []*ingest.Input{&in})
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, samples[0])
}

func (h *Handler) BulkCreateSamples(c *gin.Context) {
	var inputs []*ingest.Input
	if err := json.NewDecoder(c.Request.Body).Decode(&inputs); err != nil {
		badRequest(c, "body must be a JSON array of samples")
		return
	}
	for i, in := range inputs {
		if in == nil {
			badRequest(c, "body must not contain null samples")
			return
		}
		in.Row = i + 1
	}

	samples, ok := h.saveSamples(c, inputs)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"count": len(samples), "samples": samples})
}

func (h *Handler) UploadSamples(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "multipart field \"file\" is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "failed to read upload")
		return
	}
	defer file.Close()

	inputs, err := ingest.Parse(fileHeader.Filename, file)
	if err != nil {
		h.respondError(c, err)
		return
	}

	samples, ok := h.saveSamples(c, inputs)
	if !ok {
		return
	}
	h.log.Info("samples uploaded", "file", fileHeader.Filename, "count", len(samples))
	c.JSON(http.StatusCreated, gin.H{"count": len(samples), "samples": samples})
}

// saveSamples validates, evaluates and stores a batch as one unit, then
// hands the stored samples to the event dispatcher
func (h *Handler) saveSamples(c *gin.Context, inputs []*ingest.Input) ([]*database.Sample, bool) {
	ctx := c.Request.Context()

	projects, err := h.projectIndex(ctx)
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	known := func(id uuid.UUID) bool {
		_, ok := projects[id]
		return ok
	}

	samples, err := ingest.Prepare(ctx, inputs, known)
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	if err := h.store.InsertSamples(ctx, samples); err != nil {
		h.respondError(c, err)
		return nil, false
	}

	if h.events != nil {
		h.events.Submit(samples, projects)
	}
	return samples, true
}

func (h *Handler) SampleTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	var (
		data []byte
		err  error
		name string
	)
	switch format {
	case "csv":
		data, err = ingest.TemplateCSV()
		name = "AquaSure_Sample_Template.csv"
	case "xlsx":
		data, err = ingest.TemplateXLSX()
		name = "AquaSure_Sample_Template.xlsx"
	default:
		badRequest(c, "format must be csv or xlsx")
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	contentType := export.FormatCSV.ContentType()
	if format == "xlsx" {
		contentType = export.FormatXLSX.ContentType()
	}
	attachment(c, name, contentType, data)
}

func (h *Handler) SamplesGeoJSON(c *gin.Context) {
	filter, ok := sampleFilter(c)
	if !ok {
		return
	}

	var bound *orb.Bound
	if raw := c.Query("bbox"); raw != "" {
		b, err := export.ParseBBox(raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		bound = &b
	}

	ctx := c.Request.Context()
	samples, projects, err := h.samplesWithProjects(ctx, filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, export.FeatureCollection(samples, projects, bound))
}

func (h *Handler) samplesWithProjects(ctx context.Context, filter database.SampleFilter) ([]*database.Sample, map[uuid.UUID]*database.Project, error) {
	samples, err := h.store.ListSamples(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	projects, err := h.projectIndex(ctx)
	if err != nil {
		return nil, nil, err
	}
	return samples, projects, nil
}

func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
