package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal      metric.Int64Counter
	HTTPRequestDuration    metric.Float64Histogram
	FetchErrorsTotal       metric.Int64Counter
	TabSwitchesTotal       metric.Int64Counter
	BoundaryCapturesTotal  metric.Int64Counter
	DBQueryDurationSeconds metric.Float64Histogram
	ActiveWorkspaces       metric.Int64UpDownCounter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments from the global MeterProvider. Only
// the first call has an effect.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("greengrove-accounts")
		m := &AppMetrics{}
		var errs []error
		record := func(err error) {
			if err != nil {
				errs = append(errs, err)
			}
		}

		var err error
		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		record(err)

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		record(err)

		m.FetchErrorsTotal, err = meter.Int64Counter(
			"account_fetch_errors_total",
			metric.WithDescription("Failed data-access calls by domain"),
			metric.WithUnit("{error}"),
		)
		record(err)

		m.TabSwitchesTotal, err = meter.Int64Counter(
			"account_tab_switches_total",
			metric.WithDescription("Tab selections made on the account page"),
			metric.WithUnit("{switch}"),
		)
		record(err)

		m.BoundaryCapturesTotal, err = meter.Int64Counter(
			"account_boundary_captures_total",
			metric.WithDescription("Render failures caught by a panel boundary"),
			metric.WithUnit("{error}"),
		)
		record(err)

		m.DBQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		record(err)

		m.ActiveWorkspaces, err = meter.Int64UpDownCounter(
			"account_active_workspaces",
			metric.WithDescription("Browser workspaces currently held in memory"),
			metric.WithUnit("{workspace}"),
		)
		record(err)

		for _, err := range errs {
			zap.L().Error("Metrics: failed to create instrument", zap.Error(err))
		}
		appMetrics = m
	})
}

// Get returns the instruments, creating them on first use. Instruments made
// before a MeterProvider is installed record to the global no-op provider.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

// FetchFailed counts a failed data-access call of domain.
func FetchFailed(ctx context.Context, domain string) {
	Get().FetchErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("domain", domain)))
}

// ObserveQuery records the time since start for a query against table.
func ObserveQuery(ctx context.Context, table string, start time.Time) {
	Get().DBQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("db.sql.table", table)))
}
