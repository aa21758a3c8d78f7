package api

import (
	"net/http"

	"github.com/cleanflow/bedsync/pkg/logger"
	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/gin-gonic/gin"
)

func (h *Handler) GetCleaningSettings(c *gin.Context) {
	s, err := h.Settings.Settings(c.Request.Context())
	if err != nil {
		logger.Errorf("cleaning settings: %v", err)
		Err(c, http.StatusInternalServerError, "Failed to load cleaning settings.")
		return
	}
	Ok(c, s)
}

func (h *Handler) SaveCleaningSettings(c *gin.Context) {
	var s models.CleaningSettings
	if err := c.ShouldBindJSON(&s); err != nil {
		Err(c, http.StatusBadRequest, "invalid request")
		return
	}
	if err := h.Settings.SaveSettings(c.Request.Context(), s); err != nil {
		if msg, ok := validationMessage(err); ok {
			Err(c, http.StatusBadRequest, msg)
			return
		}
		logger.Errorf("save cleaning settings: %v", err)
		Err(c, http.StatusInternalServerError, "Failed to save cleaning settings.")
		return
	}
	OkMessage(c, "Cleaning times updated.", s)
}

func (h *Handler) ListOccurrences(c *gin.Context) {
	occ, err := h.Settings.Occurrences(c.Request.Context())
	if err != nil {
		logger.Errorf("cleaning occurrences: %v", err)
		Err(c, http.StatusInternalServerError, "Failed to load occurrences.")
		return
	}
	Ok(c, occ)
}
