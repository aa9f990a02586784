package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BackfillMetrics records per-run generation and landing activity.
type BackfillMetrics struct {
	daysProcessed   prometheus.Counter
	daysFailed      prometheus.Counter
	ordersGenerated prometheus.Counter
	defectsInjected *prometheus.CounterVec
	sinkFailures    prometheus.Counter
	dayDuration     prometheus.Histogram
}

// NewBackfillMetrics registers the backfill metrics on the provided registerer.
func NewBackfillMetrics(reg prometheus.Registerer) *BackfillMetrics {
	if reg == nil {
		return &BackfillMetrics{}
	}
	daysProcessed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backfill_days_processed",
		Help: "Calendar days fully generated and persisted.",
	})
	daysFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backfill_days_failed",
		Help: "Calendar days that failed generation or local persistence.",
	})
	ordersGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backfill_orders_generated",
		Help: "Order rows generated, duplicates included.",
	})
	defectsInjected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backfill_defects_injected",
		Help: "Defects injected by the chaos engine.",
	}, []string{"category"})
	sinkFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backfill_sink_failures",
		Help: "Landing-sink uploads that failed after retry.",
	})
	dayDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "backfill_day_duration_seconds",
		Help:    "Duration of one day's generate-corrupt-persist cycle.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(daysProcessed, daysFailed, ordersGenerated, defectsInjected, sinkFailures, dayDuration)
	return &BackfillMetrics{
		daysProcessed:   daysProcessed,
		daysFailed:      daysFailed,
		ordersGenerated: ordersGenerated,
		defectsInjected: defectsInjected,
		sinkFailures:    sinkFailures,
		dayDuration:     dayDuration,
	}
}

// IncDayProcessed records one fully persisted day.
func (m *BackfillMetrics) IncDayProcessed() {
	if m == nil || m.daysProcessed == nil {
		return
	}
	m.daysProcessed.Inc()
}

// IncDayFailed records one failed day.
func (m *BackfillMetrics) IncDayFailed() {
	if m == nil || m.daysFailed == nil {
		return
	}
	m.daysFailed.Inc()
}

// AddOrdersGenerated records generated order rows.
func (m *BackfillMetrics) AddOrdersGenerated(count int) {
	if m == nil || m.ordersGenerated == nil {
		return
	}
	m.ordersGenerated.Add(float64(count))
}

// IncDefectInjected records one injected defect for the named category.
func (m *BackfillMetrics) IncDefectInjected(category string) {
	if m == nil || m.defectsInjected == nil {
		return
	}
	if category == "" {
		category = "unknown"
	}
	m.defectsInjected.WithLabelValues(category).Inc()
}

// IncSinkFailure records an upload that failed after its retry.
func (m *BackfillMetrics) IncSinkFailure() {
	if m == nil || m.sinkFailures == nil {
		return
	}
	m.sinkFailures.Inc()
}

// ObserveDayDuration records the duration of one day's cycle.
func (m *BackfillMetrics) ObserveDayDuration(duration time.Duration) {
	if m == nil || m.dayDuration == nil {
		return
	}
	m.dayDuration.Observe(duration.Seconds())
}
