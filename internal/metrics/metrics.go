package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pos_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Billing metrics
	SalesCommittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pos_sales_committed_total",
			Help: "Total number of successfully committed sales",
		},
	)

	SalesFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_sales_failed_total",
			Help: "Total number of failed sale attempts",
		},
		[]string{"reason"},
	)

	SaleAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pos_sale_amount",
			Help:    "Distribution of committed sale totals",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// Catalog metrics
	ProductOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_product_operations_total",
			Help: "Total number of product catalog operations",
		},
		[]string{"operation"},
	)

	CategoryOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_category_operations_total",
			Help: "Total number of category operations",
		},
		[]string{"operation"},
	)

	ProductStockGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pos_product_stock",
			Help: "Current stock level per product",
		},
		[]string{"product_id"},
	)

	// Reporting metrics
	ReportExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_report_exports_total",
			Help: "Total number of report exports",
		},
		[]string{"granularity", "format"},
	)
)

// RecordProductOperation increments the counter for catalog operations.
func RecordProductOperation(operation string) {
	ProductOperationsTotal.WithLabelValues(operation).Inc()
}

// RecordCategoryOperation increments the counter for category operations.
func RecordCategoryOperation(operation string) {
	CategoryOperationsTotal.WithLabelValues(operation).Inc()
}

// UpdateProductStock updates the stock gauge for a product. The gauge is
// keyed by id alone so renaming a product does not leave a stale series.
func UpdateProductStock(productID string, stock float64) {
	ProductStockGauge.WithLabelValues(productID).Set(stock)
}
