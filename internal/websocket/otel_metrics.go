package websocket

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "tabclean.websocket"

// Metrics records hub activity through the global OpenTelemetry meter. It
// is a no-op until a meter provider is installed.
type Metrics struct {
	connectionsTotal   metric.Int64Counter
	connectionsActive  metric.Int64UpDownCounter
	connectionDuration metric.Float64Histogram
	messagesSent       metric.Int64Counter
	messageBytes       metric.Int64Counter
	droppedMessages    metric.Int64Counter
}

// NewMetrics creates the websocket instruments
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	connectionsTotal, err := meter.Int64Counter("websocket_connections_total",
		metric.WithDescription("Total number of WebSocket connections"))
	if err != nil {
		return nil, err
	}
	connectionsActive, err := meter.Int64UpDownCounter("websocket_connections_active",
		metric.WithDescription("Number of active WebSocket connections"))
	if err != nil {
		return nil, err
	}
	connectionDuration, err := meter.Float64Histogram("websocket_connection_duration_seconds",
		metric.WithDescription("Duration of WebSocket connections"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	messagesSent, err := meter.Int64Counter("websocket_messages_sent_total",
		metric.WithDescription("Event messages queued to clients, by type"))
	if err != nil {
		return nil, err
	}
	messageBytes, err := meter.Int64Counter("websocket_message_bytes_total",
		metric.WithDescription("Bytes queued to clients"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, err
	}
	droppedMessages, err := meter.Int64Counter("websocket_dropped_messages_total",
		metric.WithDescription("Event messages dropped because a buffer was full"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		connectionsTotal:   connectionsTotal,
		connectionsActive:  connectionsActive,
		connectionDuration: connectionDuration,
		messagesSent:       messagesSent,
		messageBytes:       messageBytes,
		droppedMessages:    droppedMessages,
	}, nil
}

// RecordConnection counts a new client
func (m *Metrics) RecordConnection(ctx context.Context) {
	if m == nil {
		return
	}
	m.connectionsTotal.Add(ctx, 1)
	m.connectionsActive.Add(ctx, 1)
}

// RecordDisconnection counts a departed client and its connection time
func (m *Metrics) RecordDisconnection(ctx context.Context, duration time.Duration, reason string) {
	if m == nil {
		return
	}
	m.connectionsActive.Add(ctx, -1)
	m.connectionDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordBroadcast counts one message fanned out to clients
func (m *Metrics) RecordBroadcast(ctx context.Context, messageType string, clients, size int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("message_type", messageType))
	m.messagesSent.Add(ctx, int64(clients), attrs)
	m.messageBytes.Add(ctx, int64(clients*size), attrs)
}

// RecordDropped counts a message that could not be queued
func (m *Metrics) RecordDropped(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.droppedMessages.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
