package api

import (
	"net/http"

	"github.com/cleanflow/bedsync/internal/cleaning"
	"github.com/cleanflow/bedsync/pkg/logger"
	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ListLocations returns every location with its sector taken from the
// active mapping for its external code.
func (h *Handler) ListLocations(c *gin.Context) {
	ctx := c.Request.Context()
	locs, err := h.Locations.List(ctx)
	if err != nil {
		logger.Errorf("list locations: %v", err)
		Err(c, http.StatusInternalServerError, "Failed to load locations.")
		return
	}
	mappings, err := h.Mappings.ListActive(ctx)
	if err != nil {
		logger.Errorf("load mappings: %v", err)
		Err(c, http.StatusInternalServerError, "Failed to load location mappings.")
		return
	}

	byCode := lo.KeyBy(mappings, func(m models.LocationMapping) string { return m.ExternalCode })
	for i := range locs {
		if m, ok := byCode[locs[i].ExternalCode]; ok && locs[i].ExternalCode != "" {
			locs[i].Setor = m.Setor
		}
	}
	Ok(c, locs)
}

type startCleaningRequest struct {
	Type     models.CleaningType `json:"type" binding:"required"`
	UserID   string              `json:"userId"`
	UserName string              `json:"userName" binding:"required"`
}

func (h *Handler) StartCleaning(c *gin.Context) {
	var req startCleaningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Err(c, http.StatusBadRequest, "invalid request")
		return
	}
	loc, err := h.Cleaning.Start(c.Request.Context(), c.Param("id"), req.Type, req.UserID, req.UserName)
	if err != nil {
		cleaningError(c, err)
		return
	}
	OkMessage(c, "Cleaning started.", loc)
}

func (h *Handler) FinishCleaning(c *gin.Context) {
	rec, err := h.Cleaning.Finish(c.Request.Context(), c.Param("id"))
	if err != nil {
		cleaningError(c, err)
		return
	}
	msg := "Cleaning finished."
	if rec.Delayed {
		msg = "Cleaning finished after the expected time."
	}
	OkMessage(c, msg, rec)
}

func cleaningError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cleaning.ErrInvalidType), errors.Is(err, cleaning.ErrMissingUser):
		Err(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, cleaning.ErrLocationNotFound):
		Err(c, http.StatusNotFound, err.Error())
	case errors.Is(err, cleaning.ErrAlreadyCleaning), errors.Is(err, cleaning.ErrNotCleaning):
		Err(c, http.StatusConflict, err.Error())
	default:
		logger.Errorf("cleaning: %v", err)
		Err(c, http.StatusInternalServerError, "Cleaning operation failed.")
	}
}
