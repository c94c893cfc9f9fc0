// Package notification maintains the admin notification live view: a
// feed seeded from the moderation backlog, kept current by row changes
// and order events, filtered per admin by their dismissals.
package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	domain "github.com/keyvault/backend/internal/domain/notification"
	"github.com/keyvault/backend/internal/domain/order"
	"github.com/keyvault/backend/internal/domain/payment"
	"github.com/keyvault/backend/internal/domain/shared"
	"github.com/keyvault/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultSubscriberBuffer is the per-subscriber update queue length
const DefaultSubscriberBuffer = 64

// ErrUnknownNotification is returned when dismissing an id the feed does not hold
var ErrUnknownNotification = errors.New("notification not found")

// Update is one change delivered to a live subscriber
type Update struct {
	Op           domain.ChangeOp     `json:"op"`
	Notification domain.Notification `json:"notification"`
}

// Subscription receives the updates visible to one admin.
// Updates is closed on Unsubscribe.
type Subscription struct {
	ID      string
	AdminID uuid.UUID
	Updates <-chan Update

	updates chan Update
}

// ServiceConfig holds the dependencies of AdminFeedService
type ServiceConfig struct {
	Backlog      domain.BacklogReader
	Dismissals   domain.DismissalStore
	Capacity     int
	BacklogLimit int
	Buffer       int
	Logger       *zap.Logger
}

// AdminFeedService owns the shared notification feed and its live subscribers
type AdminFeedService struct {
	feed         *domain.Feed
	backlog      domain.BacklogReader
	dismissals   domain.DismissalStore
	backlogLimit int
	buffer       int
	logger       *zap.Logger
	metrics      *telemetry.MarketMetrics

	setsMu sync.Mutex
	sets   map[uuid.UUID]*domain.DismissalSet

	subsMu sync.RWMutex
	subs   map[string]*Subscription
}

// NewAdminFeedService creates the service. Call Seed before serving traffic.
func NewAdminFeedService(cfg ServiceConfig) *AdminFeedService {
	s := &AdminFeedService{
		feed:         domain.NewFeed(cfg.Capacity),
		backlog:      cfg.Backlog,
		dismissals:   cfg.Dismissals,
		backlogLimit: cfg.BacklogLimit,
		buffer:       cfg.Buffer,
		logger:       cfg.Logger,
		sets:         make(map[uuid.UUID]*domain.DismissalSet),
		subs:         make(map[string]*Subscription),
	}
	if s.backlogLimit <= 0 {
		s.backlogLimit = domain.DefaultCapacity
	}
	if s.buffer <= 0 {
		s.buffer = DefaultSubscriberBuffer
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// SetMarketMetrics sets the business metrics collector
func (s *AdminFeedService) SetMarketMetrics(m *telemetry.MarketMetrics) {
	s.metrics = m
}

// Seed loads the moderation backlog into the feed
func (s *AdminFeedService) Seed(ctx context.Context) error {
	if s.backlog == nil {
		return nil
	}
	items, err := s.backlog.Backlog(ctx, s.backlogLimit)
	if err != nil {
		return fmt.Errorf("load notification backlog: %w", err)
	}
	applied := 0
	for _, n := range items {
		if s.apply(ctx, domain.Change{Op: domain.OpUpdate, Notification: n}) {
			applied++
		}
	}
	s.logger.Info("Notification feed seeded",
		zap.Int("backlog", len(items)),
		zap.Int("applied", applied))
	return nil
}

// Reseed reconciles the feed with the backlog after the change feed lost
// its connection. Moderation items that left the backlog are removed;
// paid-order notifications only come from events and are kept.
func (s *AdminFeedService) Reseed(ctx context.Context) {
	if s.backlog == nil {
		return
	}
	items, err := s.backlog.Backlog(ctx, s.backlogLimit)
	if err != nil {
		s.logger.Warn("Failed to reseed notification feed", zap.Error(err))
		return
	}

	present := make(map[string]struct{}, len(items))
	for _, n := range items {
		present[n.ID] = struct{}{}
		s.apply(ctx, domain.Change{Op: domain.OpUpdate, Notification: n})
	}
	for _, n := range s.feed.Items() {
		if _, ok := present[n.ID]; ok || n.Kind == domain.KindOrderPaid {
			continue
		}
		s.apply(ctx, domain.Change{Op: domain.OpDelete, Notification: n})
	}
}

// HandleRowChange applies a change-feed row event
func (s *AdminFeedService) HandleRowChange(ctx context.Context, rc domain.RowChange) {
	change, ok := domain.FromRow(rc)
	if !ok {
		return
	}
	s.apply(ctx, change)
}

// Handle implements shared.EventHandler for order status events
func (s *AdminFeedService) Handle(ctx context.Context, event shared.DomainEvent) error {
	evt, ok := event.(*order.StatusChangedEvent)
	if !ok {
		return nil
	}
	if !payment.IsApproved(evt.Status) || payment.IsApproved(evt.PreviousStatus) {
		return nil
	}
	n := domain.NewOrderPaid(evt.OrderID.String(), evt.Amount.StringFixed(2), evt.OccurredAt())
	s.apply(ctx, domain.Change{Op: domain.OpInsert, Notification: n})
	return nil
}

// EventTypes implements shared.EventHandler
func (s *AdminFeedService) EventTypes() []string {
	return []string{order.EventTypeStatusChanged}
}

// List returns the notifications adminID has not dismissed, newest first
func (s *AdminFeedService) List(ctx context.Context, adminID uuid.UUID) ([]domain.Notification, error) {
	set, err := s.dismissalSet(ctx, adminID)
	if err != nil {
		return nil, err
	}
	return set.Filter(s.feed.Items()), nil
}

// Dismiss hides one notification for adminID
func (s *AdminFeedService) Dismiss(ctx context.Context, adminID uuid.UUID, id string) error {
	if _, ok := s.feed.Get(id); !ok {
		return ErrUnknownNotification
	}
	_, err := s.dismiss(ctx, adminID, []string{id})
	return err
}

// DismissAll hides every notification currently visible to adminID and
// returns how many were dismissed
func (s *AdminFeedService) DismissAll(ctx context.Context, adminID uuid.UUID) (int, error) {
	visible, err := s.List(ctx, adminID)
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(visible))
	for _, n := range visible {
		ids = append(ids, n.ID)
	}
	return s.dismiss(ctx, adminID, ids)
}

// Subscribe registers a live subscriber for adminID
func (s *AdminFeedService) Subscribe(ctx context.Context, adminID uuid.UUID) (*Subscription, error) {
	if _, err := s.dismissalSet(ctx, adminID); err != nil {
		return nil, err
	}
	ch := make(chan Update, s.buffer)
	sub := &Subscription{
		ID:      uuid.NewString(),
		AdminID: adminID,
		Updates: ch,
		updates: ch,
	}

	s.subsMu.Lock()
	s.subs[sub.ID] = sub
	s.subsMu.Unlock()

	s.metrics.AddFeedSubscribers(ctx, 1)
	s.logger.Debug("Notification subscriber added",
		zap.String("subscription_id", sub.ID),
		zap.String("admin_id", adminID.String()))
	return sub, nil
}

// Unsubscribe removes sub and closes its channel. Safe to call twice.
func (s *AdminFeedService) Unsubscribe(sub *Subscription) {
	s.subsMu.Lock()
	_, ok := s.subs[sub.ID]
	if ok {
		delete(s.subs, sub.ID)
		close(sub.updates)
	}
	s.subsMu.Unlock()

	if ok {
		s.metrics.AddFeedSubscribers(context.Background(), -1)
	}
}

// SubscriberCount returns the number of live subscribers
func (s *AdminFeedService) SubscriberCount() int {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	return len(s.subs)
}

func (s *AdminFeedService) apply(ctx context.Context, change domain.Change) bool {
	if !s.feed.Apply(change) {
		return false
	}
	s.metrics.RecordNotificationEvent(ctx)
	s.broadcast(Update{Op: change.Op, Notification: change.Notification})
	return true
}

func (s *AdminFeedService) broadcast(u Update) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()

	for _, sub := range s.subs {
		if u.Op != domain.OpDelete && s.isDismissed(sub.AdminID, u.Notification.ID) {
			continue
		}
		select {
		case sub.updates <- u:
		default:
			s.logger.Warn("Notification subscriber is slow, dropping update",
				zap.String("subscription_id", sub.ID),
				zap.String("notification_id", u.Notification.ID))
		}
	}
}

func (s *AdminFeedService) isDismissed(adminID uuid.UUID, id string) bool {
	s.setsMu.Lock()
	set := s.sets[adminID]
	s.setsMu.Unlock()
	return set != nil && set.Contains(id)
}

func (s *AdminFeedService) dismiss(ctx context.Context, adminID uuid.UUID, ids []string) (int, error) {
	set, err := s.dismissalSet(ctx, adminID)
	if err != nil {
		return 0, err
	}

	fresh := make([]string, 0, len(ids))
	for _, id := range ids {
		if !set.Contains(id) {
			fresh = append(fresh, id)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	if s.dismissals != nil {
		if err := s.dismissals.Dismiss(ctx, adminID, fresh...); err != nil {
			return 0, fmt.Errorf("persist dismissals: %w", err)
		}
	}
	added := set.Add(fresh...)

	for _, id := range added {
		s.notifyAdmin(adminID, Update{Op: domain.OpDelete, Notification: domain.Notification{ID: id}})
	}
	return len(added), nil
}

// notifyAdmin tells adminID's other sessions that an item disappeared
func (s *AdminFeedService) notifyAdmin(adminID uuid.UUID, u Update) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		if sub.AdminID != adminID {
			continue
		}
		select {
		case sub.updates <- u:
		default:
		}
	}
}

func (s *AdminFeedService) dismissalSet(ctx context.Context, adminID uuid.UUID) (*domain.DismissalSet, error) {
	s.setsMu.Lock()
	set, ok := s.sets[adminID]
	s.setsMu.Unlock()
	if ok {
		return set, nil
	}

	var ids []string
	if s.dismissals != nil {
		var err error
		ids, err = s.dismissals.List(ctx, adminID)
		if err != nil {
			return nil, fmt.Errorf("load dismissals: %w", err)
		}
	}

	s.setsMu.Lock()
	defer s.setsMu.Unlock()
	if existing, ok := s.sets[adminID]; ok {
		return existing, nil
	}
	set = domain.NewDismissalSet(ids...)
	s.sets[adminID] = set
	return set, nil
}
