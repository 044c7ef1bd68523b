package api

import (
	"github.com/gin-gonic/gin"

	"autochase/internal/config"
	"autochase/internal/logging"
)

func NewRouter(h *Handler, logger *logging.Logger, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLoggingMiddleware(logger))

	api := r.Group(cfg.API.BasePath)
	{
		// Invoices
		api.GET("/invoices", h.GetInvoices)
		api.POST("/invoices", h.CreateInvoice)
		api.PUT("/invoices/:id/paid", h.SetInvoicePaid)

		// Workspace settings
		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.UpdateSettings)

		// Outbox
		api.GET("/outbox", h.GetOutbox)
		api.POST("/outbox/regenerate", h.RegenerateOutbox)
		api.POST("/outbox/:id/sent", h.MarkOutboxSent)
		api.GET("/outbox/ws", h.OutboxFeed)

		// Reminder preview
		api.POST("/reminders/preview", h.PreviewReminder)

		// PayFast
		api.POST("/payfast/subscribe", h.Subscribe)
		api.POST("/payfast/notify", h.Notify)
		api.GET("/payfast/status", h.GatewayStatus)
	}
	return r
}
