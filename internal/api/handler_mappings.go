package api

import (
	"net/http"

	"github.com/cleanflow/bedsync/internal/store"
	"github.com/cleanflow/bedsync/pkg/logger"
	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func objectIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		Err(c, http.StatusBadRequest, "invalid id")
		return id, false
	}
	return id, true
}

func (h *Handler) ListMappings(c *gin.Context) {
	mappings, err := h.Mappings.List(c.Request.Context())
	if err != nil {
		logger.Errorf("list mappings: %v", err)
		Err(c, http.StatusInternalServerError, "Failed to load location mappings.")
		return
	}
	Ok(c, mappings)
}

func (h *Handler) CreateMapping(c *gin.Context) {
	var m models.LocationMapping
	if err := c.ShouldBindJSON(&m); err != nil {
		Err(c, http.StatusBadRequest, "invalid request")
		return
	}
	if err := h.Mappings.Create(c.Request.Context(), &m); err != nil {
		mappingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Message: "Mapping created.", Data: m})
}

func (h *Handler) UpdateMapping(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	var m models.LocationMapping
	if err := c.ShouldBindJSON(&m); err != nil {
		Err(c, http.StatusBadRequest, "invalid request")
		return
	}
	if err := h.Mappings.Update(c.Request.Context(), id, &m); err != nil {
		mappingError(c, err)
		return
	}
	OkMessage(c, "Mapping updated.", m)
}

type setActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

func (h *Handler) SetMappingActive(c *gin.Context) {
	id, ok := objectIDParam(c)
	if !ok {
		return
	}
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Err(c, http.StatusBadRequest, "invalid request")
		return
	}
	if err := h.Mappings.SetActive(c.Request.Context(), id, *req.IsActive); err != nil {
		mappingError(c, err)
		return
	}
	OkMessage(c, "Mapping updated.", gin.H{"id": id.Hex(), "isActive": *req.IsActive})
}

func mappingError(c *gin.Context, err error) {
	if msg, ok := validationMessage(err); ok {
		Err(c, http.StatusBadRequest, msg)
		return
	}
	switch {
	case errors.Is(err, store.ErrDuplicateMapping):
		Err(c, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotFound):
		Err(c, http.StatusNotFound, "mapping not found")
	default:
		logger.Errorf("mapping: %v", err)
		Err(c, http.StatusInternalServerError, "Failed to save location mapping.")
	}
}
