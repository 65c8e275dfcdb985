package v1

import (
	"net/http"

	"github.com/agencyops/agencyops/internal/api/dto"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/agencyops/agencyops/internal/service"
	"github.com/gin-gonic/gin"
)

type SubEntityHandler struct {
	service service.SubEntityService
	logger  *logger.Logger
}

func NewSubEntityHandler(service service.SubEntityService, logger *logger.Logger) *SubEntityHandler {
	return &SubEntityHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Create a sub-entity
// @Tags SubEntities
// @Accept json
// @Produce json
// @Param sub_entity body dto.CreateSubEntityRequest true "Sub-entity"
// @Success 201 {object} dto.SubEntityResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /sub-entities [post]
func (h *SubEntityHandler) CreateSubEntity(c *gin.Context) {
	var req dto.CreateSubEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateSubEntity(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a sub-entity
// @Tags SubEntities
// @Produce json
// @Param id path string true "Sub-entity ID"
// @Success 200 {object} dto.SubEntityResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sub-entities/{id} [get]
func (h *SubEntityHandler) GetSubEntity(c *gin.Context) {
	resp, err := h.service.GetSubEntity(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List sub-entities
// @Tags SubEntities
// @Produce json
// @Success 200 {object} dto.ListSubEntitiesResponse
// @Router /sub-entities [get]
func (h *SubEntityHandler) ListSubEntities(c *gin.Context) {
	resp, err := h.service.ListSubEntities(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
