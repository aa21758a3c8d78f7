package api

import (
	"net/http"

	"github.com/cleanflow/bedsync/internal/etl"
	"github.com/cleanflow/bedsync/pkg/logger"
	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/gin-gonic/gin"
)

func (h *Handler) GetIntegrationConfig(c *gin.Context) {
	cfg, err := h.Integration.Get(c.Request.Context())
	if err != nil {
		logger.Errorf("load integration config: %v", err)
		Err(c, http.StatusInternalServerError, "Failed to load integration config.")
		return
	}
	Ok(c, cfg.Redacted())
}

func (h *Handler) SaveIntegrationConfig(c *gin.Context) {
	var patch models.IntegrationConfigPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		Err(c, http.StatusBadRequest, "invalid request")
		return
	}

	cfg, err := h.Integration.Save(c.Request.Context(), patch)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			Err(c, http.StatusBadRequest, msg)
			return
		}
		logger.Errorf("save integration config: %v", err)
		Err(c, http.StatusInternalServerError, "Failed to save integration config.")
		return
	}

	h.Sync.CheckAndSchedule(c.Request.Context())
	OkMessage(c, "Configuration saved.", cfg.Redacted())
}

// draftConfig overlays an optional request body on the stored config
// without saving it.
func (h *Handler) draftConfig(c *gin.Context) (models.IntegrationConfig, bool) {
	cfg, err := h.Integration.Get(c.Request.Context())
	if err != nil {
		logger.Errorf("load integration config: %v", err)
		Err(c, http.StatusInternalServerError, "Failed to load integration config.")
		return cfg, false
	}
	if c.Request.ContentLength == 0 {
		return cfg, true
	}
	var patch models.IntegrationConfigPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		Err(c, http.StatusBadRequest, "invalid request")
		return cfg, false
	}
	return patch.Apply(cfg), true
}

func (h *Handler) TestConnection(c *gin.Context) {
	cfg, ok := h.draftConfig(c)
	if !ok {
		return
	}
	res := h.Connections.TestConnection(c.Request.Context(), cfg)
	c.JSON(http.StatusOK, Response{Success: res.Success, Message: res.Message})
}

func (h *Handler) TestTransformation(c *gin.Context) {
	cfg, ok := h.draftConfig(c)
	if !ok {
		return
	}
	mappings, err := h.Mappings.ListActive(c.Request.Context())
	if err != nil {
		logger.Errorf("load mappings: %v", err)
		Err(c, http.StatusInternalServerError, "Failed to load location mappings.")
		return
	}
	preview := etl.TestTransformation(cfg, mappings)
	c.JSON(http.StatusOK, Response{Success: preview.Success, Message: preview.Message, Data: preview})
}
