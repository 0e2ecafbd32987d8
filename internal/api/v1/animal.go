package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kennelworks/kennelworks/internal/api/dto"
	ierr "github.com/kennelworks/kennelworks/internal/errors"
	"github.com/kennelworks/kennelworks/internal/logger"
	"github.com/kennelworks/kennelworks/internal/service"
	"github.com/kennelworks/kennelworks/internal/types"
)

// AnimalHandler exposes animal CRUD, care operations, and the
// incremental changes feed.
type AnimalHandler struct {
	service service.AnimalService
	logger  *logger.Logger
}

func NewAnimalHandler(service service.AnimalService, logger *logger.Logger) *AnimalHandler {
	return &AnimalHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AnimalHandler) CreateAnimal(c *gin.Context) {
	var req dto.CreateAnimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateAnimal(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AnimalHandler) GetAnimal(c *gin.Context) {
	resp, err := h.service.GetAnimal(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnimalHandler) ListAnimals(c *gin.Context) {
	filter := types.NewAnimalFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListAnimals(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnimalHandler) UpdateAnimal(c *gin.Context) {
	var req dto.UpdateAnimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateAnimal(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnimalHandler) DeleteAnimal(c *gin.Context) {
	if err := h.service.DeleteAnimal(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *AnimalHandler) CheckIn(c *gin.Context) {
	resp, err := h.service.CheckIn(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnimalHandler) CheckOut(c *gin.Context) {
	resp, err := h.service.CheckOut(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnimalHandler) BeginBoarding(c *gin.Context) {
	var req dto.BeginBoardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.BeginBoarding(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnimalHandler) SetDeparture(c *gin.Context) {
	var req dto.SetDepartureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.SetDeparture(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListChanges serves replica sync: all records, tombstones included,
// modified strictly after the `since` watermark.
func (h *AnimalHandler) ListChanges(c *gin.Context) {
	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			c.Error(ierr.WithError(err).
				WithHint("since must be an RFC 3339 timestamp").
				Mark(ierr.ErrValidation))
			return
		}
		since = &parsed
	}

	resp, err := h.service.ListChanges(c.Request.Context(), since)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnimalHandler) PurgeTombstones(c *gin.Context) {
	var req dto.PurgeTombstonesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.PurgeTombstones(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
