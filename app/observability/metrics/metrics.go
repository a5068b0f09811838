package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	POIMutationsTotal        metric.Int64Counter
	DeleteNotificationsTotal metric.Int64Counter
	StoreSaveDurationSeconds metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments only once. It
// gets the Meter from the globally configured MeterProvider; before a
// provider is set this yields no-op instruments, which keeps tests quiet.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("CityInfoAPI")
		var err error
		m := &AppMetrics{}

		m.POIMutationsTotal, err = meter.Int64Counter(
			"poi_mutations_total",
			metric.WithDescription("Total number of committed point of interest mutations"),
			metric.WithUnit("{mutation}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create poi_mutations_total: %v", err)
		}

		m.DeleteNotificationsTotal, err = meter.Int64Counter(
			"delete_notifications_total",
			metric.WithDescription("Total number of deletion notifications dispatched"),
			metric.WithUnit("{notification}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create delete_notifications_total: %v", err)
		}

		m.StoreSaveDurationSeconds, err = meter.Float64Histogram(
			"store_save_duration_seconds",
			metric.WithDescription("Duration of repository save flushes in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create store_save_duration_seconds: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
