package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

type StoreMetrics struct {
	OpDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	OriginationsTotal *prometheus.CounterVec
	RepaymentsTotal   *prometheus.CounterVec
	LoanEditsTotal    *prometheus.CounterVec
	OverdueLoans      prometheus.Gauge
}

var (
	HTTP = HTTPMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_portal_http_requests_total",
				Help: "Total number of HTTP requests received.",
			},
			[]string{"method", "path", "code"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credit_portal_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "code"},
		),
	}

	Store = StoreMetrics{
		OpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credit_portal_store_op_duration_seconds",
				Help:    "Histogram of document store round-trip latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"op", "status"},
		),
	}

	Business = BusinessMetrics{
		OriginationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_portal_loan_originations_total",
				Help: "Loan origination attempts by outcome.",
			},
			[]string{"status"},
		),
		RepaymentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_portal_loan_repayments_total",
				Help: "Early repayment attempts by outcome.",
			},
			[]string{"status"},
		),
		LoanEditsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_portal_loan_edits_total",
				Help: "Loan term edits by outcome.",
			},
			[]string{"status"},
		),
		OverdueLoans: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "credit_portal_overdue_loans",
				Help: "Overdue loans found by the last overdue scan.",
			},
		),
	}
)

func RecordHTTPRequest(method, path, code string, duration time.Duration) {
	HTTP.RequestsTotal.WithLabelValues(method, path, code).Inc()
	HTTP.RequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

func RecordStoreOp(op, status string, duration time.Duration) {
	Store.OpDuration.WithLabelValues(op, status).Observe(duration.Seconds())
}

func RecordOrigination(status string) {
	Business.OriginationsTotal.WithLabelValues(status).Inc()
}

func RecordRepayment(status string) {
	Business.RepaymentsTotal.WithLabelValues(status).Inc()
}

func RecordLoanEdit(status string) {
	Business.LoanEditsTotal.WithLabelValues(status).Inc()
}

func SetOverdueLoans(count int) {
	Business.OverdueLoans.Set(float64(count))
}
