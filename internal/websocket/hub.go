package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"tabclean/internal/infrastructure"
	"tabclean/internal/operations"
	"tabclean/pkg/contracts/events"
)

// broadcastBuffer bounds the events waiting for the hub loop. Publishers never
// wait: once the buffer is full new events are dropped.
const broadcastBuffer = 256

// Hub maintains the set of active clients and fans event messages out to
// them. It implements operations.Reporter and operations.JobObserver so
// operations can publish without knowing about connections.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan events.Message
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *Metrics

	totalConnections int64
	messagesSent     atomic.Int64
	messagesDropped  atomic.Int64

	quit    chan struct{}
	running bool
}

var (
	_ operations.Reporter    = (*Hub)(nil)
	_ operations.JobObserver = (*Hub)(nil)
)

// NewHub creates a new Hub instance with dependency injection
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = logger.With(slog.String("component", "websocket.hub"))

	metrics, err := NewMetrics()
	if err != nil {
		logger.Warn("WebSocket metrics unavailable", slog.String("error", err.Error()))
	}

	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan events.Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
		metrics:    metrics,
		quit:       make(chan struct{}),
	}
}

// Start runs the hub loop on its own goroutine
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client, "normal")

		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.totalConnections++
	h.mu.Unlock()

	ctx := client.context()
	h.logger.InfoContext(ctx, "Client registered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr))
	h.metrics.RecordConnection(ctx)

	hello := events.NewMessage(events.TypeConnection, map[string]string{
		"status":    "connected",
		"client_id": client.id,
	})
	hello.TraceID = client.traceID
	data, err := json.Marshal(hello)
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
		h.logger.WarnContext(ctx, "Failed to send connection message - client buffer full",
			slog.String("client_id", client.id))
	}
}

func (h *Hub) removeClient(client *Client, reason string) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	h.logger.InfoContext(ctx, "Client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("reason", reason),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
	h.metrics.RecordDisconnection(ctx, time.Since(client.connectedAt), reason)
}

// fanOut writes one message to every client. A client whose buffer is full
// is disconnected rather than allowed to stall the others.
func (h *Hub) fanOut(msg events.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", string(msg.Type)))
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, client := range clients {
		select {
		case client.send <- data:
			delivered++
		default:
			h.logger.Warn("Client send buffer full, disconnecting",
				slog.String("client_id", client.id))
			h.removeClient(client, "slow_consumer")
		}
	}
	h.messagesSent.Add(int64(delivered))
	h.metrics.RecordBroadcast(context.Background(), string(msg.Type), delivered, len(data))
}

// Publish queues msg for every connected client without blocking
func (h *Hub) Publish(msg events.Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.messagesDropped.Add(1)
		h.metrics.RecordDropped(context.Background(), "hub_buffer_full")
		h.logger.Warn("Broadcast buffer full, dropping message",
			slog.String("message_type", string(msg.Type)))
	}
}

// Log implements operations.Logger
func (h *Hub) Log(message string) {
	h.Publish(events.NewMessage(events.TypeLog, events.LogData{Message: message}))
}

// ReportProgress implements operations.ProgressReporter
func (h *Hub) ReportProgress(percent int, channel string) {
	h.Publish(events.NewMessage(events.TypeProgress, events.ProgressData{
		Percent: percent,
		Channel: channel,
	}))
}

// JobChanged implements operations.JobObserver
func (h *Hub) JobChanged(snapshot operations.JobSnapshot) {
	data := events.TaskData{
		ID:     snapshot.ID,
		Kind:   snapshot.Kind,
		Status: string(snapshot.Status),
	}
	if snapshot.Err != nil {
		data.Error = snapshot.Err.Error()
	}
	h.Publish(events.NewMessage(events.TypeTask, data))
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop ends the hub loop and disconnects every client
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.quit)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()
}

// GetHubMetrics returns current hub counters
func (h *Hub) GetHubMetrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"messages_sent":     h.messagesSent.Load(),
		"messages_dropped":  h.messagesDropped.Load(),
		"queued":            len(h.broadcast),
	}
}
