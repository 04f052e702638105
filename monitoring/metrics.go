// Package monitoring exposes prometheus metrics for the booking engine.
package monitoring

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_operations_total",
			Help: "Total booking operations by outcome",
		},
		[]string{"operation", "status"},
	)

	messagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_processed_total",
			Help: "Total event messages processed by handler outcome",
		},
		[]string{"event", "status"},
	)

	pendingReservations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pending_reservations_total",
			Help: "Current number of reservations awaiting confirmation",
		},
	)

	confirmedBookings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "confirmed_bookings_total",
			Help: "Current number of confirmed bookings held in memory",
		},
	)
)

// BookingStats is the subset of the booking service the collector reads.
type BookingStats interface {
	PendingCount() int
	ConfirmedCount() int
}

type Monitor struct {
	interval time.Duration
}

func New() *Monitor {
	return &Monitor{interval: 30 * time.Second}
}

func (m *Monitor) TrackOperation(operation, status string) {
	bookingOperations.WithLabelValues(operation, status).Inc()
}

func (m *Monitor) TrackMessage(eventName, status string) {
	messagesProcessed.WithLabelValues(eventName, status).Inc()
}

// Collect samples booking gauges until the context is cancelled.
func (m *Monitor) Collect(ctx context.Context, stats BookingStats) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pendingReservations.Set(float64(stats.PendingCount()))
			confirmedBookings.Set(float64(stats.ConfirmedCount()))
		}
	}
}
