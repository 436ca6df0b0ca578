package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smukkama/aquasure-server/internal/alerting"
	"github.com/smukkama/aquasure-server/internal/database"
)

func (h *Handler) ListAlerts(c *gin.Context) {
	filter := database.AlertFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
	}
	if filter.Status != "" && !alerting.ValidStatus(filter.Status) {
		badRequest(c, "invalid status")
		return
	}
	if filter.Priority != "" && !alerting.ValidPriority(filter.Priority) {
		badRequest(c, "invalid priority")
		return
	}

	alerts, err := h.store.ListAlerts(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if alerts == nil {
		alerts = []*database.AlertDetail{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (h *Handler) AlertStats(c *gin.Context) {
	stats, err := h.store.GetAlertStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) AcknowledgeAlert(c *gin.Context) {
	h.transitionAlert(c, database.AlertStatusAcknowledged)
}

func (h *Handler) ResolveAlert(c *gin.Context) {
	h.transitionAlert(c, database.AlertStatusResolved)
}

// transitionAlert moves an alert forward one step. Re-applying the current
// status returns the alert unchanged.
func (h *Handler) transitionAlert(c *gin.Context, to string) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	alert, err := h.store.GetAlert(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if alert.Status == to {
		c.JSON(http.StatusOK, alert)
		return
	}
	if err := alerting.CheckTransition(alert.Status, to); err != nil {
		h.respondError(c, err)
		return
	}

	updated, err := h.store.UpdateAlertStatus(ctx, id, alert.Status, to)
	if err != nil {
		h.respondError(c, err)
		return
	}

	identity := currentIdentity(c)
	h.log.Info("alert status changed", "alert_id", id, "from", alert.Status, "to", to, "user_id", identity.UserID)
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) AcknowledgeAll(c *gin.Context) {
	priority := c.Query("priority")
	if priority != "" && !alerting.ValidPriority(priority) {
		badRequest(c, "invalid priority")
		return
	}

	n, err := h.store.AcknowledgeActive(c.Request.Context(), priority)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.log.Info("alerts acknowledged", "count", n, "priority", priority)
	c.JSON(http.StatusOK, gin.H{"acknowledged": n})
}
