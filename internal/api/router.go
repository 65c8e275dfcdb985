package api

import (
	v1 "github.com/agencyops/agencyops/internal/api/v1"
	"github.com/agencyops/agencyops/internal/config"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/agencyops/agencyops/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health    *v1.HealthHandler
	Invoice   *v1.InvoiceHandler
	Receipt   *v1.ReceiptHandler
	Client    *v1.ClientHandler
	SubEntity *v1.SubEntityHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware(cfg),
		middleware.SentryMiddleware(cfg),
		middleware.SentryTags,
		middleware.RequestLogger(logger),
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	invoices := router.Group("/invoices")
	{
		invoices.POST("/generate", handlers.Invoice.GenerateInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/file/:name", handlers.Invoice.ServeInvoiceFile)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.GET("/:id/download", handlers.Invoice.DownloadInvoice)
		invoices.PUT("/:id/status", handlers.Invoice.UpdateInvoiceStatus)
		invoices.DELETE("/:id", handlers.Invoice.DeleteInvoice)
	}

	receipts := router.Group("/receipts")
	{
		receipts.POST("/generate", handlers.Receipt.GenerateReceipt)
		receipts.GET("", handlers.Receipt.ListReceipts)
		receipts.GET("/file/:name", handlers.Receipt.ServeReceiptFile)
		receipts.GET("/:id", handlers.Receipt.GetReceipt)
		receipts.DELETE("/:id", handlers.Receipt.DeleteReceipt)
	}

	clients := router.Group("/clients")
	{
		clients.POST("", handlers.Client.CreateClient)
		clients.GET("/:id", handlers.Client.GetClient)
	}

	subEntities := router.Group("/sub-entities")
	{
		subEntities.POST("", handlers.SubEntity.CreateSubEntity)
		subEntities.GET("", handlers.SubEntity.ListSubEntities)
		subEntities.GET("/:id", handlers.SubEntity.GetSubEntity)
	}
}
