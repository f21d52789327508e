package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/treadlinehq/treadline-backend/internal/engine"
	"github.com/treadlinehq/treadline-backend/internal/service"
)

type AnalysisHandler struct {
	service *service.AnalysisService
}

func NewAnalysisHandler(service *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

// Health reports liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AnalysisHandler) GetInventoryRisk(c *gin.Context) {
	opts := engine.RiskOptions{
		StoreID: strings.TrimSpace(c.Query("store_id")),
	}

	if raw := strings.TrimSpace(c.Query("outlook_days")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "outlook_days must be a non-negative integer"})
			return
		}
		opts.OutlookDays = days
	}

	if raw := strings.TrimSpace(c.Query("oos_threshold")); raw != "" {
		threshold, err := strconv.Atoi(raw)
		if err != nil || threshold < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "oos_threshold must be a non-negative integer"})
			return
		}
		opts.OOSThreshold = threshold
	}

	report, err := h.service.InventoryRisk(c.Request.Context(), opts)
	if err != nil {
		respondAnalysisError(c, "failed to analyze inventory risk", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *AnalysisHandler) GetTransferOpportunities(c *gin.Context) {
	storeID := strings.TrimSpace(c.Query("store_id"))

	report, err := h.service.TransferOpportunities(c.Request.Context(), storeID)
	if err != nil {
		respondAnalysisError(c, "failed to find transfer opportunities", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *AnalysisHandler) GetDeadStock(c *gin.Context) {
	storeID := strings.TrimSpace(c.Query("store_id"))

	items, err := h.service.DeadStock(c.Request.Context(), storeID)
	if err != nil {
		respondAnalysisError(c, "failed to detect dead stock", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *AnalysisHandler) GetMarginLeakage(c *gin.Context) {
	storeID := strings.TrimSpace(c.Query("store_id"))

	report, err := h.service.MarginLeakage(c.Request.Context(), storeID)
	if err != nil {
		respondAnalysisError(c, "failed to compute margin leakage", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *AnalysisHandler) GetAttachmentRate(c *gin.Context) {
	storeID := strings.TrimSpace(c.Query("store_id"))

	report, err := h.service.AttachmentRate(c.Request.Context(), storeID)
	if err != nil {
		respondAnalysisError(c, "failed to compute attachment rate", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *AnalysisHandler) InvalidateCache(c *gin.Context) {
	if err := h.service.InvalidateCache(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to invalidate cache", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "invalidated"})
}

// respondAnalysisError maps engine failures to status codes. A report that
// cannot be computed because the datastore is unreachable is 503; parameter
// problems surface as 400.
func respondAnalysisError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, engine.ErrAnalysisUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": message, "details": err.Error()})
	case strings.Contains(err.Error(), "must not be negative"):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": message, "details": err.Error()})
	}
}
