// Package metrics exposes Prometheus counters for report requests and data refreshes.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "powercurve_"

	ResultSuccess = "success"
	ResultError   = "error"

	RefreshFresh   = "fresh"
	RefreshFetched = "fetched"
	RefreshSkipped = "skipped"
	RefreshFailed  = "failed"
)

var (
	registerOnce sync.Once

	reportRequests *prometheus.CounterVec
	reportLatency  *prometheus.HistogramVec
	exportTotal    *prometheus.CounterVec

	refreshTotal   *prometheus.CounterVec
	dataAge        prometheus.Gauge
	datasetRecords prometheus.Gauge
	storeBuilds    *prometheus.CounterVec
)

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		reportRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_requests_total",
				Help: "Total report requests by report and result",
			},
			[]string{"report", "result"},
		)
		reportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_latency_seconds",
				Help:    "Report build latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"report"},
		)
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		refreshTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "refresh_total",
				Help: "Total refresh checks by outcome",
			},
			[]string{"outcome"},
		)
		dataAge = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "data_age_seconds",
				Help: "Age of the newest record at the last refresh check",
			},
		)
		datasetRecords = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "dataset_records",
				Help: "Number of cleaned records in the loaded data set",
			},
		)
		storeBuilds = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "store_builds_total",
				Help: "Total data set builds by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			reportRequests,
			reportLatency,
			exportTotal,
			refreshTotal,
			dataAge,
			datasetRecords,
			storeBuilds,
		)
	})
}

// ObserveReport records one report request
func ObserveReport(report, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if reportRequests != nil {
		reportRequests.WithLabelValues(report, result).Inc()
	}
	if reportLatency != nil && result == ResultSuccess {
		reportLatency.WithLabelValues(report).Observe(duration.Seconds())
	}
}

// IncExport counts one export
func IncExport(format, result string) {
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
}

// ObserveRefresh records the outcome of a refresh check and the data age it saw
func ObserveRefresh(outcome string, age time.Duration) {
	if refreshTotal != nil {
		refreshTotal.WithLabelValues(outcome).Inc()
	}
	if dataAge != nil && age > 0 {
		dataAge.Set(age.Seconds())
	}
}

// ObserveStoreBuild records a data set build and its size
func ObserveStoreBuild(result string, records int) {
	if storeBuilds != nil {
		storeBuilds.WithLabelValues(result).Inc()
	}
	if datasetRecords != nil && result == ResultSuccess {
		datasetRecords.Set(float64(records))
	}
}
