package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "maintenance_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	consolidateTotal   *prometheus.CounterVec
	consolidateLatency *prometheus.HistogramVec
	droppedRows        *prometheus.CounterVec
	historyEvents      prometheus.Gauge

	planningTotal   *prometheus.CounterVec
	planningLatency *prometheus.HistogramVec
	plannedRows     *prometheus.GaugeVec

	reconcileLatency *prometheus.HistogramVec

	importTotal *prometheus.CounterVec
	exportTotal *prometheus.CounterVec

	alertPushTotal *prometheus.CounterVec
)

// Init registers the engine metrics with the default registry.
func Init() {
	registerOnce.Do(func() {
		consolidateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "history_consolidate_total",
				Help: "Total history consolidation runs by result",
			},
			[]string{"result"},
		)
		consolidateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "history_consolidate_latency_seconds",
				Help:    "History consolidation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		droppedRows = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "history_dropped_rows_total",
				Help: "Source rows skipped during consolidation by reason",
			},
			[]string{"reason"},
		)
		historyEvents = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "history_events",
				Help: "Events in the current history generation",
			},
		)

		planningTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "planning_generate_total",
				Help: "Total planning generations by result",
			},
			[]string{"result"},
		)
		planningLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "planning_generate_latency_seconds",
				Help:    "Planning generation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		plannedRows = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "planned_interventions",
				Help: "Planned interventions in the current plan by year",
			},
			[]string{"year"},
		)

		reconcileLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "reconcile_latency_seconds",
				Help:    "Plan and history reconciliation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		importTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "workbook_import_total",
				Help: "Total workbook imports by result",
			},
			[]string{"result"},
		)
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "matrix_export_total",
				Help: "Total matrix exports by kind and result",
			},
			[]string{"kind", "result"},
		)

		alertPushTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alert_push_total",
				Help: "Alert push notifications by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			consolidateTotal,
			consolidateLatency,
			droppedRows,
			historyEvents,
			planningTotal,
			planningLatency,
			plannedRows,
			reconcileLatency,
			importTotal,
			exportTotal,
			alertPushTotal,
		)
	})
}

// ObserveConsolidate records a consolidation run.
func ObserveConsolidate(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if consolidateTotal != nil {
		consolidateTotal.WithLabelValues(result).Inc()
	}
	if consolidateLatency != nil {
		consolidateLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// AddDroppedRows counts source rows skipped for reason.
func AddDroppedRows(reason string, count int) {
	if count <= 0 {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	if droppedRows != nil {
		droppedRows.WithLabelValues(reason).Add(float64(count))
	}
}

// SetHistoryEvents sets the size of the current history.
func SetHistoryEvents(n int) {
	if historyEvents != nil {
		historyEvents.Set(float64(n))
	}
}

// ObservePlanning records a planning generation.
func ObservePlanning(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if planningTotal != nil {
		planningTotal.WithLabelValues(result).Inc()
	}
	if planningLatency != nil {
		planningLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// SetPlannedRows sets the size of the plan of year.
func SetPlannedRows(year string, n int) {
	if plannedRows != nil {
		plannedRows.WithLabelValues(year).Set(float64(n))
	}
}

// ResetPlannedRows forgets every per-year plan size.
func ResetPlannedRows() {
	if plannedRows != nil {
		plannedRows.Reset()
	}
}

// ObserveReconcile records a reconciliation.
func ObserveReconcile(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if reconcileLatency != nil {
		reconcileLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncImport counts a workbook import.
func IncImport(result string) {
	if result == "" {
		result = resultSuccess
	}
	if importTotal != nil {
		importTotal.WithLabelValues(result).Inc()
	}
}

// IncExport counts a matrix export.
func IncExport(kind, result string) {
	if kind == "" {
		kind = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(kind, result).Inc()
	}
}

// IncAlertPush counts a push notification attempt.
func IncAlertPush(result string) {
	if result == "" {
		result = "unknown"
	}
	if alertPushTotal != nil {
		alertPushTotal.WithLabelValues(result).Inc()
	}
}

// Result returns the result label for err.
func Result(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	PushResultSent    = "sent"
	PushResultExpired = "expired"
	PushResultFailed  = "failed"
)
