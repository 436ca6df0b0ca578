package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smukkama/aquasure-server/internal/database"
)

// projectRequest is the body of project create and update
type projectRequest struct {
	Name        string  `json:"name"`
	District    string  `json:"location_district"`
	City        string  `json:"location_city"`
	State       string  `json:"location_state"`
	Description *string `json:"description"`
}

func (r *projectRequest) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	r.District = strings.TrimSpace(r.District)
	r.City = strings.TrimSpace(r.City)
	r.State = strings.TrimSpace(r.State)
	switch {
	case r.Name == "":
		return "name is required"
	case r.District == "":
		return "location_district is required"
	case r.City == "":
		return "location_city is required"
	}
	return ""
}

func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.store.ListProjects(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if projects == nil {
		projects = []*database.Project{}
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *Handler) CreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	if msg := req.validate(); msg != "" {
		badRequest(c, msg)
		return
	}

	identity := currentIdentity(c)
	project := &database.Project{
		Name:        req.Name,
		District:    req.District,
		City:        req.City,
		State:       req.State,
		Description: req.Description,
		CreatedBy:   &identity.UserID,
	}
	if err := h.store.CreateProject(c.Request.Context(), project); err != nil {
		h.respondError(c, err)
		return
	}

	h.log.Info("project created", "project_id", project.ID, "name", project.Name)
	c.JSON(http.StatusCreated, project)
}

func (h *Handler) GetProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	project, err := h.store.GetProject(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handler) UpdateProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	if msg := req.validate(); msg != "" {
		badRequest(c, msg)
		return
	}

	project := &database.Project{
		ID:          id,
		Name:        req.Name,
		District:    req.District,
		City:        req.City,
		State:       req.State,
		Description: req.Description,
	}
	if err := h.store.UpdateProject(c.Request.Context(), project); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// ProjectHistory returns the daily rollups of a project. days limits how
// far back to look (default 30, 0 for everything).
func (h *Handler) ProjectHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	days := 30
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "days must be a non-negative integer")
			return
		}
		days = n
	}

	ctx := c.Request.Context()
	if _, err := h.store.GetProject(ctx, id); err != nil {
		h.respondError(c, err)
		return
	}

	var since time.Time
	if days > 0 {
		since = h.now().AddDate(0, 0, -days)
	}
	history, err := h.store.ListProjectDailySummaries(ctx, id, since)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if history == nil {
		history = []*database.ProjectDailySummary{}
	}
	c.JSON(http.StatusOK, gin.H{"project_id": id, "history": history})
}
