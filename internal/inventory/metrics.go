package inventory

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts allocation engine activity.
type Metrics struct {
	adjustments  *prometheus.CounterVec
	reservations prometheus.Counter
	releases     prometheus.Counter
	overcommits  prometheus.Counter
}

// NewMetrics registers engine counters on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meridian_inventory_adjustments_total",
			Help: "Accepted stock adjustments by tracking method.",
		}, []string{"method"}),
		reservations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meridian_inventory_reservations_total",
			Help: "Completed multi-warehouse reservations.",
		}),
		releases: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meridian_inventory_releases_total",
			Help: "Completed reservation releases.",
		}),
		overcommits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meridian_inventory_overcommits_total",
			Help: "Reservations that exceeded total availability.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.adjustments, m.reservations, m.releases, m.overcommits)
	}
	return m
}

// IncAdjustment counts an accepted adjustment for a tracking method.
func (m *Metrics) IncAdjustment(method string) {
	if m == nil {
		return
	}
	m.adjustments.WithLabelValues(method).Inc()
}

// IncReservation counts a completed reservation.
func (m *Metrics) IncReservation() {
	if m == nil {
		return
	}
	m.reservations.Inc()
}

// IncRelease counts a completed release.
func (m *Metrics) IncRelease() {
	if m == nil {
		return
	}
	m.releases.Inc()
}

// IncOvercommit counts a reservation that overcommitted a warehouse.
func (m *Metrics) IncOvercommit() {
	if m == nil {
		return
	}
	m.overcommits.Inc()
}
