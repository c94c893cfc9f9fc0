package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// MarketMetrics records marketplace business metrics. A nil *MarketMetrics
// is valid and drops every observation, so services can hold one unconditionally.
type MarketMetrics struct {
	searchTotal        *Counter
	searchDuration     *Histogram
	assistFailures     *Counter
	paymentsCreated    *Counter
	webhooksTotal      *Counter
	statusSyncs        *Counter
	feedRequests       *Counter
	notificationLive   *UpDownCounter
	notificationEvents *Counter
}

// NewMarketMetrics registers the marketplace instruments on meter
func NewMarketMetrics(meter metric.Meter) (*MarketMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		m   MarketMetrics
		err error
	)
	if m.searchTotal, err = NewCounter(meter, "keyvault_search_total", "Smart search requests", "{requests}"); err != nil {
		return nil, err
	}
	if m.searchDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "keyvault_search_duration_seconds",
		Description: "Smart search latency",
		Unit:        "s",
		Boundaries:  HTTPDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.assistFailures, err = NewCounter(meter, "keyvault_search_assist_failures_total", "Query assistant failures or timeouts", "{failures}"); err != nil {
		return nil, err
	}
	if m.paymentsCreated, err = NewCounter(meter, "keyvault_payment_created_total", "Payments created at the gateway", "{payments}"); err != nil {
		return nil, err
	}
	if m.webhooksTotal, err = NewCounter(meter, "keyvault_payment_webhook_total", "Payment webhooks received by outcome", "{webhooks}"); err != nil {
		return nil, err
	}
	if m.statusSyncs, err = NewCounter(meter, "keyvault_payment_status_sync_total", "Payment status checks", "{checks}"); err != nil {
		return nil, err
	}
	if m.feedRequests, err = NewCounter(meter, "keyvault_catalog_feed_requests_total", "Catalog feed requests", "{requests}"); err != nil {
		return nil, err
	}
	if m.notificationLive, err = NewUpDownCounter(meter, "keyvault_admin_notification_subscribers", "Connected admin notification streams", "{subscribers}"); err != nil {
		return nil, err
	}
	if m.notificationEvents, err = NewCounter(meter, "keyvault_admin_notification_events_total", "Admin notification feed changes applied", "{events}"); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *MarketMetrics) RecordSearch(ctx context.Context, corrected bool, d time.Duration) {
	if m == nil {
		return
	}
	m.searchTotal.Inc(ctx, AttrSearchCorrected.Bool(corrected))
	m.searchDuration.RecordDuration(ctx, d, AttrSearchCorrected.Bool(corrected))
}

func (m *MarketMetrics) RecordAssistFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.assistFailures.Inc(ctx)
}

func (m *MarketMetrics) RecordPaymentCreated(ctx context.Context, method, status string) {
	if m == nil {
		return
	}
	m.paymentsCreated.Inc(ctx, AttrPaymentMethod.String(method), AttrPaymentStatus.String(status))
}

// RecordWebhook counts a webhook delivery, outcome is e.g. "updated", "ignored", "duplicate"
func (m *MarketMetrics) RecordWebhook(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.webhooksTotal.Inc(ctx, AttrWebhookOutcome.String(outcome))
}

func (m *MarketMetrics) RecordStatusSync(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.statusSyncs.Inc(ctx, AttrPaymentStatus.String(status))
}

func (m *MarketMetrics) RecordFeedRequest(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.feedRequests.Inc(ctx, AttrFeedSource.String(source))
}

// AddFeedSubscribers adjusts the live SSE subscriber gauge by delta
func (m *MarketMetrics) AddFeedSubscribers(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.notificationLive.Add(ctx, delta)
}

func (m *MarketMetrics) RecordNotificationEvent(ctx context.Context) {
	if m == nil {
		return
	}
	m.notificationEvents.Inc(ctx)
}
