// Package outbox orchestrates the reminder lifecycle around the pure
// scheduling core: regenerating the stored schedule and dispatching due
// reminders through the configured delivery channels.
package outbox

import (
	"context"
	"sync"
	"time"

	"autochase/internal/config"
	"autochase/internal/logging"
	"autochase/internal/models"
	"autochase/internal/schedule"
	"autochase/internal/utils"
)

// Store is the persistence surface the service needs.
type Store interface {
	GetInvoices(ctx context.Context, workspace string) ([]models.Invoice, error)
	GetSettings(ctx context.Context, workspace string) (models.Settings, error)
	ReplaceOutbox(ctx context.Context, workspace string, events []models.ReminderEvent) error
	ListDue(ctx context.Context, workspace string, now time.Time) ([]models.ReminderEvent, error)
	MarkSent(ctx context.Context, workspace, id string, at time.Time) error
}

// Sender delivers one reminder over a channel (email, telegram, ...).
type Sender interface {
	Name() string
	Send(ctx context.Context, ev models.ReminderEvent) error
}

// Service regenerates schedules and runs the dispatch worker pool.
type Service struct {
	store   Store
	logger  *logging.Logger
	config  config.Config
	tasks   chan models.ReminderEvent
	ctx     context.Context
	cancel  context.CancelFunc
	wg      *sync.WaitGroup
	senders []Sender
	ws      *WSManager

	retryAttempts int
	retryDelay    time.Duration
}

// New constructs an outbox Service.
func New(store Store, logger *logging.Logger, cfg config.Config, senders ...Sender) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		store:   store,
		logger:  logger,
		config:  cfg,
		tasks:   make(chan models.ReminderEvent, cfg.Outbox.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
		senders: senders,
		ws:      NewWSManager(logger),

		retryAttempts: 3,
		retryDelay:    2 * time.Second,
	}
}

// WS exposes the websocket manager for the API layer.
func (s *Service) WS() *WSManager {
	return s.ws
}

// Regenerate recomputes the full reminder schedule for the workspace and
// makes it the authoritative outbox. The run is a pure function of the
// stored invoices and settings at this instant.
func (s *Service) Regenerate(ctx context.Context, workspace string) ([]models.ReminderEvent, error) {
	settings, err := s.store.GetSettings(ctx, workspace)
	if err != nil {
		return nil, err
	}
	invoices, err := s.store.GetInvoices(ctx, workspace)
	if err != nil {
		return nil, err
	}

	events, err := schedule.Schedule(invoices, settings.Rules, settings.Template, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplaceOutbox(ctx, workspace, events); err != nil {
		return nil, err
	}

	s.logger.Infof("Regenerated outbox for workspace %s: %d events", workspace, len(events))
	s.ws.Broadcast(wsMessage{Type: "outbox.regenerated", Workspace: workspace, Count: len(events)})
	return events, nil
}

// Start launches the worker pool and the due-reminder scan loop.
func (s *Service) Start(wg *sync.WaitGroup) {
	s.wg = wg
	for i := 0; i < s.config.Outbox.MaxWorkers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
	s.wg.Add(1)
	go s.scanLoop()
}

// Stop cancels workers and the scan loop.
func (s *Service) Stop() {
	s.cancel()
}

// QueueEvent enqueues a due reminder for dispatch.
func (s *Service) QueueEvent(ev models.ReminderEvent) {
	select {
	case s.tasks <- ev:
		s.logger.Infof("Queued reminder: id=%s", ev.ID)
	default:
		s.logger.Errorf("Queue full, dropping reminder: id=%s", ev.ID)
	}
}

func (s *Service) scanLoop() {
	defer s.wg.Done()
	interval := time.Duration(s.config.Outbox.DispatchInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Infof("Dispatch scan loop stopped")
			return
		case <-ticker.C:
			s.scanDue()
		}
	}
}

func (s *Service) scanDue() {
	due, err := s.store.ListDue(s.ctx, s.config.Workspace, time.Now().UTC())
	if err != nil {
		s.logger.Errorf("Failed to list due reminders: %v", err)
		return
	}
	for _, ev := range due {
		s.QueueEvent(ev)
	}
}

func (s *Service) worker(id int) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Infof("Worker %d stopped", id)
			return
		case ev := <-s.tasks:
			s.handleEvent(ev)
		}
	}
}

// handleEvent delivers one reminder. The first sender is the delivery
// channel of record; the rest are best-effort copies.
func (s *Service) handleEvent(ev models.ReminderEvent) {
	if len(s.senders) == 0 {
		s.logger.Warnf("No senders configured, leaving reminder %s unsent", ev.ID)
		return
	}

	primary := s.senders[0]
	err := utils.Retry(s.logger, s.retryAttempts, s.retryDelay, func() error {
		return primary.Send(s.ctx, ev)
	})
	if err != nil {
		s.logger.Errorf("Failed to send reminder %s via %s: %v", ev.ID, primary.Name(), err)
		return
	}

	sentAt := time.Now().UTC()
	if err := s.store.MarkSent(s.ctx, s.config.Workspace, ev.ID, sentAt); err != nil {
		s.logger.Errorf("Sent reminder %s but failed to mark it: %v", ev.ID, err)
	}
	s.logger.Infof("Sent reminder %s to %s via %s", ev.ID, ev.To, primary.Name())
	s.ws.Broadcast(wsMessage{Type: "reminder.sent", Workspace: s.config.Workspace, EventID: ev.ID})

	for _, copyTo := range s.senders[1:] {
		if err := copyTo.Send(s.ctx, ev); err != nil {
			s.logger.Warnf("Copy channel %s failed for reminder %s: %v", copyTo.Name(), ev.ID, err)
		}
	}
}
