package observability

import (
	"context"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// EventTracker records analytics events as structured log lines and counters.
type EventTracker struct {
	metrics *Metrics
	logger  *zap.Logger
}

// NewEventTracker creates the tracker used by the session workflows.
func NewEventTracker(metrics *Metrics, logger *zap.Logger) *EventTracker {
	return &EventTracker{metrics: metrics, logger: logger}
}

// Track implements port.Tracker.
func (t *EventTracker) Track(ctx context.Context, event string, props map[string]string) {
	fields := make([]zap.Field, 0, len(props)+2)
	fields = append(fields, zap.String("event", event))
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
	}
	for k, v := range props {
		fields = append(fields, zap.String(k, v))
	}
	t.logger.Info("tracking event", fields...)
	t.metrics.IncrEvent(event)
}

// AlertLogger is the shared user alert channel. Alerts are logged and
// counted per component. They are not echoed in HTTP responses; the
// failing request still gets its mapped error status.
type AlertLogger struct {
	metrics *Metrics
	logger  *zap.Logger
}

// NewAlertLogger creates the alert dispatcher.
func NewAlertLogger(metrics *Metrics, logger *zap.Logger) *AlertLogger {
	return &AlertLogger{metrics: metrics, logger: logger}
}

// Dispatch implements port.AlertDispatcher.
func (a *AlertLogger) Dispatch(_ context.Context, alert domain.Alert) {
	fields := []zap.Field{
		zap.String("alert_id", alert.ID),
		zap.String("component", alert.Component),
		zap.Bool("blocking", alert.Blocking),
	}
	if alert.Err != nil {
		fields = append(fields, zap.Error(alert.Err))
	}
	a.logger.Warn("user alert", fields...)
	a.metrics.IncrAlert(alert.Component)
}
