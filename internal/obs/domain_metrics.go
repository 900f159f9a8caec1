package obs

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	domainOnce sync.Once

	// BudgetQuotesTotal counts engine evaluations by pricing mode and outcome.
	BudgetQuotesTotal *prometheus.CounterVec
	// BudgetsCreatedTotal counts persisted budgets by pricing mode.
	BudgetsCreatedTotal *prometheus.CounterVec
	// BudgetPDFRenderedTotal counts rendered budget documents by source and outcome.
	BudgetPDFRenderedTotal *prometheus.CounterVec
	// BudgetStatsCacheTotal counts stats cache lookups by result (hit, miss).
	BudgetStatsCacheTotal *prometheus.CounterVec

	quoteCounterOnce sync.Once
	quoteCounter     metric.Int64Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		BudgetQuotesTotal = registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "budget_quotes_total",
			Help:      "Count of budget pricing evaluations by mode and result.",
		}, []string{"mode", "result"}))
		BudgetsCreatedTotal = registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "budgets_created_total",
			Help:      "Count of persisted budgets by pricing mode.",
		}, []string{"mode"}))
		BudgetPDFRenderedTotal = registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "budget_pdf_rendered_total",
			Help:      "Count of rendered budget PDFs by source and result.",
		}, []string{"source", "result"}))
		BudgetStatsCacheTotal = registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "budget_stats_cache_total",
			Help:      "Count of budget stats cache lookups by result.",
		}, []string{"result"}))
	})
}

// ObserveQuote records a pricing evaluation on both the Prometheus counter and the
// OpenTelemetry meter.
func ObserveQuote(ctx context.Context, mode, result string) {
	if BudgetQuotesTotal != nil {
		BudgetQuotesTotal.WithLabelValues(mode, result).Inc()
	}
	quoteCounterOnce.Do(func() {
		c, err := otel.Meter("presupuesto/budget").Int64Counter("budget.quotes",
			metric.WithDescription("Budget pricing evaluations."))
		if err == nil {
			quoteCounter = c
		}
	})
	if quoteCounter != nil {
		quoteCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("mode", mode),
			attribute.String("result", result),
		))
	}
}

// ObserveBudgetCreated increments the persisted budgets counter.
func ObserveBudgetCreated(mode string) {
	if BudgetsCreatedTotal != nil {
		BudgetsCreatedTotal.WithLabelValues(mode).Inc()
	}
}

// ObservePDF increments the rendered documents counter.
func ObservePDF(source, result string) {
	if BudgetPDFRenderedTotal != nil {
		BudgetPDFRenderedTotal.WithLabelValues(source, result).Inc()
	}
}

// ObserveStatsCache increments the stats cache counter.
func ObserveStatsCache(result string) {
	if BudgetStatsCacheTotal != nil {
		BudgetStatsCacheTotal.WithLabelValues(result).Inc()
	}
}
