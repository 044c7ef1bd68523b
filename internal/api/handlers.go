package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"autochase/internal/config"
	"autochase/internal/logging"
	"autochase/internal/models"
	"autochase/internal/outbox"
	"autochase/internal/payfast"
	"autochase/internal/schedule"
)

// Store is the persistence surface the handlers need; *db.DB satisfies it
// and tests substitute an in-memory fake.
type Store interface {
	GetInvoices(ctx context.Context, workspace string) ([]models.Invoice, error)
	CreateInvoice(ctx context.Context, workspace string, inv models.Invoice) error
	SetInvoicePaid(ctx context.Context, workspace, id string, paid bool) error
	GetSettings(ctx context.Context, workspace string) (models.Settings, error)
	UpsertSettings(ctx context.Context, workspace string, s models.Settings) error
	ActivatePlan(ctx context.Context, workspace string, plan models.PlanTier) error
	ListOutbox(ctx context.Context, workspace string) ([]models.ReminderEvent, error)
	MarkSent(ctx context.Context, workspace, id string, at time.Time) error
	InsertITNLog(ctx context.Context, log models.ITNLog) error
}

// Regenerator recomputes and persists the reminder schedule.
type Regenerator interface {
	Regenerate(ctx context.Context, workspace string) ([]models.ReminderEvent, error)
}

type Handler struct {
	store    Store
	regen    Regenerator
	verifier *payfast.Verifier
	ws       *outbox.WSManager
	logger   *logging.Logger
	cfg      config.Config
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func NewHandler(store Store, regen Regenerator, verifier *payfast.Verifier, ws *outbox.WSManager, logger *logging.Logger, cfg config.Config) *Handler {
	if verifier == nil {
		verifier = payfast.NewVerifier(GatewayConfig(cfg), &http.Client{Timeout: 10 * time.Second})
	}
	return &Handler{store: store, regen: regen, verifier: verifier, ws: ws, logger: logger, cfg: cfg}
}

// GatewayConfig maps application configuration onto the gateway package.
func GatewayConfig(cfg config.Config) payfast.Config {
	return payfast.Config{
		MerchantID:  cfg.PayFast.MerchantID,
		MerchantKey: cfg.PayFast.MerchantKey,
		Passphrase:  cfg.PayFast.Passphrase,
		Sandbox:     cfg.PayFast.Sandbox,
		AllowedIPs:  cfg.PayFast.AllowedIPs,
	}
}

type invoiceView struct {
	models.Invoice
	NextReminder *models.ReminderEvent `json:"next_reminder,omitempty"`
}

func (h *Handler) GetInvoices(c *gin.Context) {
	invoices, err := h.store.GetInvoices(c.Request.Context(), h.cfg.Workspace)
	if err != nil {
		h.logger.Errorf("Failed to get invoices: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get invoices"})
		return
	}
	settings, err := h.store.GetSettings(c.Request.Context(), h.cfg.Workspace)
	if err != nil {
		h.logger.Errorf("Failed to get settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get settings"})
		return
	}

	now := time.Now().UTC()
	views := make([]invoiceView, 0, len(invoices))
	for _, inv := range invoices {
		next, err := schedule.NextReminder(inv, settings.Rules, settings.Template, now)
		if err != nil {
			h.logger.Warnf("Skipping next-reminder for invoice %s: %v", inv.ID, err)
		}
		views = append(views, invoiceView{Invoice: inv, NextReminder: next})
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) CreateInvoice(c *gin.Context) {
	var in models.InvoiceCreate
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Errorf("Invalid request body for invoice: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if _, err := time.Parse("2006-01-02", in.DueDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "due_date must be YYYY-MM-DD"})
		return
	}

	inv := models.Invoice{
		ID:            uuid.NewString(),
		ClientName:    in.ClientName,
		ClientEmail:   in.ClientEmail,
		InvoiceNumber: in.InvoiceNumber,
		AmountCents:   in.AmountCents,
		Currency:      in.Currency,
		DueDate:       in.DueDate,
		PaymentLink:   in.PaymentLink,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.store.CreateInvoice(c.Request.Context(), h.cfg.Workspace, inv); err != nil {
		h.logger.Errorf("Failed to create invoice: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invoice"})
		return
	}

	h.logger.Infof("Created invoice: %s", inv.ID)
	c.JSON(http.StatusCreated, inv)
}

func (h *Handler) SetInvoicePaid(c *gin.Context) {
	id := c.Param("id")
	var body struct {
		Paid *bool `json:"paid" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.store.SetInvoicePaid(c.Request.Context(), h.cfg.Workspace, id, *body.Paid); err != nil {
		h.logger.Errorf("Failed to update invoice %s: %v", id, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "paid": *body.Paid})
}

func (h *Handler) GetSettings(c *gin.Context) {
	s, err := h.store.GetSettings(c.Request.Context(), h.cfg.Workspace)
	if err != nil {
		h.logger.Errorf("Failed to get settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get settings"})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var s models.Settings
	if err := c.ShouldBindJSON(&s); err != nil {
		h.logger.Errorf("Invalid request body for settings: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := validateRules(s.Rules); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.UpsertSettings(c.Request.Context(), h.cfg.Workspace, s); err != nil {
		h.logger.Errorf("Failed to save settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}
	c.JSON(http.StatusOK, s)
}

// validateRules rejects malformed cadence policies at the boundary, so the
// scheduler itself never has to.
func validateRules(rules models.CadencePolicy) error {
	for _, d := range rules.BeforeDays {
		if d < 0 {
			return fmt.Errorf("before_days contains negative offset %d", d)
		}
	}
	for _, d := range rules.AfterDays {
		if d < 0 {
			return fmt.Errorf("after_days contains negative offset %d", d)
		}
	}
	return nil
}

func (h *Handler) GetOutbox(c *gin.Context) {
	events, err := h.store.ListOutbox(c.Request.Context(), h.cfg.Workspace)
	if err != nil {
		h.logger.Errorf("Failed to get outbox: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get outbox"})
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) RegenerateOutbox(c *gin.Context) {
	events, err := h.regen.Regenerate(c.Request.Context(), h.cfg.Workspace)
	if err != nil {
		h.logger.Errorf("Failed to regenerate outbox: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to regenerate outbox"})
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) MarkOutboxSent(c *gin.Context) {
	id := c.Param("id")
	sentAt := time.Now().UTC()
	if err := h.store.MarkSent(c.Request.Context(), h.cfg.Workspace, id, sentAt); err != nil {
		h.logger.Errorf("Failed to mark reminder %s sent: %v", id, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found or already sent"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "sent_at": sentAt})
}

// OutboxFeed upgrades to a websocket pushing outbox activity.
func (h *Handler) OutboxFeed(c *gin.Context) {
	if h.ws == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Feed not available"})
		return
	}
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}
	h.ws.Register(conn)
	// reads are discarded; the feed is one-way
	go func() {
		defer h.ws.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

type previewRequest struct {
	Invoice   models.Invoice         `json:"invoice" binding:"required"`
	Template  models.MessageTemplate `json:"template"`
	WhenLabel string                 `json:"when_label"`
}

// PreviewReminder renders a test message without touching the outbox.
func (h *Handler) PreviewReminder(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.WhenLabel == "" {
		req.WhenLabel = "on the due date"
	}
	c.JSON(http.StatusOK, gin.H{
		"subject": schedule.Render(req.Template.Subject, req.Invoice, req.Template, req.WhenLabel),
		"body":    schedule.Render(req.Template.Body, req.Invoice, req.Template, req.WhenLabel),
	})
}

type subscribeRequest struct {
	Plan  models.PlanTier `json:"plan" binding:"required"`
	Email string          `json:"email" binding:"required,email"`
}

func (h *Handler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing plan or email"})
		return
	}

	origin := requestOrigin(c)
	urls := payfast.CallbackURLs{
		ReturnURL: fmt.Sprintf("%s/autochase/return?plan=%s", origin, req.Plan),
		CancelURL: origin + "/autochase/return?cancel=1",
		NotifyURL: origin + h.cfg.API.BasePath + "/payfast/notify",
	}

	sub, err := payfast.BuildSubscription(GatewayConfig(h.cfg), req.Plan, req.Email, urls, "")
	if err != nil {
		h.logger.Errorf("Failed to build subscription: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sub)
}

// Notify is the gateway's ITN webhook. It always answers 200 so the gateway
// stops retrying; the verdict decides what happens, not the status code.
func (h *Handler) Notify(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		h.logger.Errorf("Failed to parse ITN form: %v", err)
		c.String(http.StatusOK, "OK")
		return
	}
	payload := make(map[string]string, len(c.Request.PostForm))
	for k, vs := range c.Request.PostForm {
		if len(vs) > 0 {
			payload[k] = vs[0]
		}
	}

	sourceIP := c.GetHeader("X-Forwarded-For")
	if sourceIP == "" {
		sourceIP = c.ClientIP()
	}

	verdict := h.verifier.Verify(c.Request.Context(), payload, sourceIP)
	h.logger.Infof("ITN received: sig=%v ip=%v postback=%v status=%s ref=%s",
		verdict.SignatureOK, verdict.SourceIPOK, verdict.PostbackOK, verdict.PaymentStatus, verdict.Reference)

	if verdict.Complete() {
		if plan, ok := models.PlanFromReference(verdict.Reference); ok {
			if err := h.store.ActivatePlan(c.Request.Context(), h.cfg.Workspace, plan); err != nil {
				h.logger.Errorf("Failed to activate plan %s: %v", plan, err)
			} else {
				h.logger.Infof("Activated plan %s for workspace %s", plan, h.cfg.Workspace)
			}
		} else {
			h.logger.Warnf("Complete payment with unrecognized reference %q", verdict.Reference)
		}
	}

	logEntry := models.ITNLog{
		ID:            uuid.NewString(),
		ReceivedAt:    time.Now().UTC(),
		SourceIP:      sourceIP,
		SignatureOK:   verdict.SignatureOK,
		SourceIPOK:    verdict.SourceIPOK,
		PostbackOK:    verdict.PostbackOK,
		PaymentStatus: verdict.PaymentStatus,
		Reference:     verdict.Reference,
		Payload:       payload,
	}
	if err := h.store.InsertITNLog(c.Request.Context(), logEntry); err != nil {
		h.logger.Errorf("Failed to log ITN: %v", err)
	}

	c.String(http.StatusOK, "OK")
}

func (h *Handler) GatewayStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"configured": GatewayConfig(h.cfg).Configured(),
		"sandbox":    h.cfg.PayFast.Sandbox,
	})
}

func requestOrigin(c *gin.Context) string {
	proto := c.GetHeader("X-Forwarded-Proto")
	if proto == "" {
		proto = "https"
	}
	return fmt.Sprintf("%s://%s", proto, c.Request.Host)
}
