package v1

import (
	"net/http"

	"github.com/agencyops/agencyops/internal/config"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/agencyops/agencyops/internal/storage"
	"github.com/gin-gonic/gin"
)

// healthProbe is looked up in the invoices folder to prove the document
// store is readable. It never exists.
const healthProbe = ".health-probe.pdf"

type HealthHandler struct {
	store  storage.Store
	config *config.Configuration
	logger *logger.Logger
}

func NewHealthHandler(store storage.Store, cfg *config.Configuration, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		config: cfg,
		logger: logger,
	}
}

// @Summary Health check
// @Description Reports whether the service can reach its document store
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	if _, err := h.store.Exists(c.Request.Context(), storage.KindInvoices, healthProbe); err != nil {
		h.logger.Errorw("document store unavailable", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"mode":   h.config.Deployment.Mode,
		"store":  h.config.Store.Backend,
	})
}
