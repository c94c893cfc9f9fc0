// Package changefeed streams row changes out of PostgreSQL using
// LISTEN/NOTIFY. A trigger on the watched tables publishes one JSON
// payload per changed row on a single channel.
package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/keyvault/backend/internal/domain/notification"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// DefaultChannel is the NOTIFY channel the migration trigger publishes on
const DefaultChannel = "table_changes"

// ErrEmptyPayload is returned for a notification without a body
var ErrEmptyPayload = errors.New("changefeed: empty payload")

// Handler receives decoded row changes
type Handler func(ctx context.Context, change notification.RowChange)

// Config configures a Listener
type Config struct {
	DSN          string
	Channel      string
	ReconnectMin time.Duration
	ReconnectMax time.Duration
	// PingInterval is how long the listener waits without traffic before
	// pinging the connection
	PingInterval time.Duration
}

// Listener subscribes to a NOTIFY channel and decodes its payloads
type Listener struct {
	cfg         Config
	handler     Handler
	onReconnect func(ctx context.Context)
	logger      *zap.Logger
}

// NewListener creates a listener. onReconnect, when set, runs after the
// connection is re-established because notifications sent while the
// connection was down are lost.
func NewListener(cfg Config, handler Handler, onReconnect func(ctx context.Context), logger *zap.Logger) *Listener {
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.ReconnectMin <= 0 {
		cfg.ReconnectMin = time.Second
	}
	if cfg.ReconnectMax < cfg.ReconnectMin {
		cfg.ReconnectMax = 30 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 90 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{cfg: cfg, handler: handler, onReconnect: onReconnect, logger: logger}
}

// Run listens until ctx is cancelled
func (l *Listener) Run(ctx context.Context) error {
	log := l.logger.With(zap.String("channel", l.cfg.Channel))

	pl := pq.NewListener(l.cfg.DSN, l.cfg.ReconnectMin, l.cfg.ReconnectMax, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			log.Info("Change feed connected")
		case pq.ListenerEventDisconnected:
			log.Warn("Change feed disconnected", zap.Error(err))
		case pq.ListenerEventReconnected:
			log.Info("Change feed reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			log.Warn("Change feed connection attempt failed", zap.Error(err))
		}
	})
	defer pl.Close()

	if err := pl.Listen(l.cfg.Channel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.cfg.Channel, err)
	}

	return l.loop(ctx, pl, log)
}

// notificationSource is the part of *pq.Listener the receive loop uses
type notificationSource interface {
	NotificationChannel() <-chan *pq.Notification
	Ping() error
}

// loop owns the connection until ctx is done. Pings run inline so none is
// in flight once loop returns and the caller closes the connection.
func (l *Listener) loop(ctx context.Context, src notificationSource, log *zap.Logger) error {
	notifications := src.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-notifications:
			if n == nil {
				// pq sends nil after a reconnect
				if l.onReconnect != nil {
					l.onReconnect(ctx)
				}
				continue
			}
			l.dispatch(ctx, n.Extra, log)
		case <-time.After(l.cfg.PingInterval):
			if err := src.Ping(); err != nil {
				log.Warn("Change feed ping failed", zap.Error(err))
			}
		}
	}
}

func (l *Listener) dispatch(ctx context.Context, payload string, log *zap.Logger) {
	change, err := Parse(payload)
	if err != nil {
		log.Warn("Dropping malformed change payload", zap.Error(err))
		return
	}
	l.handler(ctx, change)
}

// Parse decodes a trigger payload into a RowChange
func Parse(payload string) (notification.RowChange, error) {
	var rc notification.RowChange
	if strings.TrimSpace(payload) == "" {
		return rc, ErrEmptyPayload
	}
	if err := json.Unmarshal([]byte(payload), &rc); err != nil {
		return rc, fmt.Errorf("changefeed: invalid payload: %w", err)
	}
	if rc.Table == "" {
		return rc, errors.New("changefeed: payload has no table")
	}
	rc.Op = notification.ChangeOp(strings.ToUpper(string(rc.Op)))
	switch rc.Op {
	case notification.OpInsert, notification.OpUpdate, notification.OpDelete:
	default:
		return rc, fmt.Errorf("changefeed: unknown operation %q", rc.Op)
	}
	return rc, nil
}
