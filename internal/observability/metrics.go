package observability

import (
	"context"
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every custom metric the api and worker processes export
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Marketplace Metrics
	TasksPostedTotal      *prometheus.CounterVec
	TasksCompletedTotal   *prometheus.CounterVec
	BidsSubmittedTotal    *prometheus.CounterVec
	BidsAcceptedTotal     *prometheus.CounterVec
	TransitionConflicts   *prometheus.CounterVec
	MessagesSentTotal     prometheus.Counter
	ReviewsSubmittedTotal *prometheus.CounterVec

	// Realtime Metrics
	RealtimeConnections     prometheus.Gauge
	RealtimeEventsPublished *prometheus.CounterVec

	// Notification Metrics
	NotificationsProcessedTotal *prometheus.CounterVec
	NotificationDeliveryLatency *prometheus.HistogramVec
	NotificationsFailedTotal    *prometheus.CounterVec

	// Database Metrics
	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge

	// Cache (Redis) Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Queue (RabbitMQ) Metrics
	QueueMessagesPublished *prometheus.CounterVec
	QueueMessagesConsumed  *prometheus.CounterVec
}

// NewMetrics registers all metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		// Marketplace Metrics
		TasksPostedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketplace_tasks_posted_total",
				Help: "Total number of tasks posted by customers",
			},
			[]string{"category"},
		),

		TasksCompletedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketplace_tasks_completed_total",
				Help: "Total number of tasks moved to completed",
			},
			[]string{"category"},
		),

		BidsSubmittedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketplace_bids_submitted_total",
				Help: "Total number of bids submitted by workers",
			},
			[]string{"category"},
		),

		BidsAcceptedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketplace_bids_accepted_total",
				Help: "Total number of bids accepted by customers",
			},
			[]string{"category"},
		),

		TransitionConflicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketplace_transition_conflicts_total",
				Help: "Status transitions rejected because the task was no longer in the expected state",
			},
			[]string{"transition"}, // accept, complete
		),

		MessagesSentTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "marketplace_messages_sent_total",
				Help: "Total number of chat messages stored",
			},
		),

		ReviewsSubmittedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketplace_reviews_submitted_total",
				Help: "Total number of reviews submitted",
			},
			[]string{"rating"},
		),

		// Realtime Metrics
		RealtimeConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "realtime_connections",
				Help: "Number of open websocket subscriptions",
			},
		),

		RealtimeEventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "realtime_events_published_total",
				Help: "Total number of events published to realtime topics",
			},
			[]string{"topic_type"}, // chat, location, task
		),

		// Notification Metrics
		NotificationsProcessedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_processed_total",
				Help: "Total number of notification events handled by workers",
			},
			[]string{"event_type", "status"}, // status: sent, skipped, failed
		),

		NotificationDeliveryLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "notification_delivery_duration_seconds",
				Help:    "Duration of push relay calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"event_type"},
		),

		NotificationsFailedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_failed_total",
				Help: "Total number of notification events that failed processing",
			},
			[]string{"event_type", "error_type"},
		),

		// Database Metrics
		DBConnectionsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_open",
				Help: "Number of open database connections",
			},
		),

		DBConnectionsInUse: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_in_use",
				Help: "Number of database connections currently in use",
			},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"key_type"},
		),

		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"key_type"},
		),

		// Queue Metrics
		QueueMessagesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queue_messages_published_total",
				Help: "Total number of messages published to the queue",
			},
			[]string{"queue_name"},
		),

		QueueMessagesConsumed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queue_messages_consumed_total",
				Help: "Total number of messages consumed from the queue",
			},
			[]string{"queue_name"},
		),
	}
}

// GlobalMetrics is registered on the default registry so any package can
// record without wiring.
var GlobalMetrics = NewMetrics(prometheus.DefaultRegisterer)

// WatchDBStats samples connection pool stats until ctx is done.
func WatchDBStats(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		stats := db.Stats()
		GlobalMetrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
		GlobalMetrics.DBConnectionsInUse.Set(float64(stats.InUse))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
