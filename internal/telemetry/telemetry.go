// Package telemetry provides OpenTelemetry metrics functionality for the
// mcpbridge server. Metrics are exported in prometheus format.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Config holds the configuration for initializing telemetry providers.
type Config struct {
	ServiceName string
	Enabled     bool
}

// Providers bundles the OpenTelemetry providers used by the server.
// When telemetry is disabled, Init returns a Providers whose methods are
// all safe no-ops, so callers never need nil checks.
type Providers struct {
	serviceName string
	enabled     bool

	meterProvider *sdkmetric.MeterProvider

	// Meter is the meter all custom metrics are created from.
	Meter metric.Meter
}

// Init sets up the OpenTelemetry metric pipeline with a prometheus exporter.
func Init(_ context.Context, c *Config) (*Providers, error) {
	p := &Providers{
		serviceName: c.ServiceName,
		enabled:     c.Enabled,
	}
	if !c.Enabled {
		return p, nil
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", c.ServiceName),
	)
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	p.Meter = p.meterProvider.Meter(c.ServiceName)

	return p, nil
}

// IsEnabled returns true if telemetry is enabled.
func (p *Providers) IsEnabled() bool {
	return p != nil && p.enabled
}

// ServiceName returns the configured service name.
func (p *Providers) ServiceName() string {
	return p.serviceName
}

// Shutdown flushes and stops the metric pipeline.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil || p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}
