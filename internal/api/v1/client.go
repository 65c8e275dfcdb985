package v1

import (
	"net/http"

	"github.com/agencyops/agencyops/internal/api/dto"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/agencyops/agencyops/internal/service"
	"github.com/gin-gonic/gin"
)

type ClientHandler struct {
	service service.ClientService
	logger  *logger.Logger
}

func NewClientHandler(service service.ClientService, logger *logger.Logger) *ClientHandler {
	return &ClientHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Create a client
// @Tags Clients
// @Accept json
// @Produce json
// @Param client body dto.CreateClientRequest true "Client"
// @Success 201 {object} dto.ClientResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateClient(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a client
// @Description Look a client up by id, client code or email
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID, code or email"
// @Success 200 {object} dto.ClientResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	resp, err := h.service.ResolveClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
