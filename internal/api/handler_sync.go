package api

import (
	"net/http"
	"time"

	"github.com/cleanflow/bedsync/internal/store"
	"github.com/cleanflow/bedsync/internal/syncer"
	"github.com/cleanflow/bedsync/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

const statisticsWindow = 24 * time.Hour

func (h *Handler) GetSyncStatus(c *gin.Context) {
	status, err := h.Sync.SyncStatus(c.Request.Context())
	if err != nil {
		logger.Errorf("sync status: %v", err)
		Err(c, http.StatusInternalServerError, "Failed to load sync status.")
		return
	}
	Ok(c, status)
}

func (h *Handler) ForceSync(c *gin.Context) {
	res, err := h.Sync.ForceSync(c.Request.Context())
	if errors.Is(err, syncer.ErrSyncInProgress) {
		c.JSON(http.StatusConflict, Response{Success: false, Message: res.Message, Data: res})
		return
	}
	c.JSON(http.StatusOK, Response{Success: res.Success, Message: res.Message, Data: res})
}

func (h *Handler) GetSyncHistory(c *gin.Context) {
	limit := cast.ToInt64(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > store.DefaultHistoryLimit {
		limit = store.DefaultHistoryLimit
	}
	entries, err := h.History.Recent(c.Request.Context(), limit)
	if err != nil {
		logger.Errorf("sync history: %v", err)
		Err(c, http.StatusInternalServerError, "Failed to load sync history.")
		return
	}
	Ok(c, entries)
}

func (h *Handler) GetSyncStatistics(c *gin.Context) {
	stats, err := h.History.Statistics(c.Request.Context(), time.Now().Add(-statisticsWindow))
	if err != nil {
		logger.Errorf("sync statistics: %v", err)
		Err(c, http.StatusInternalServerError, "Failed to load sync statistics.")
		return
	}
	Ok(c, stats)
}
