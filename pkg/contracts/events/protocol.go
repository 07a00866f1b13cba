// Package events contains the event contracts pushed to the interactive
// surface over WebSocket while cleaning and splitting operations run.
package events

import (
	"time"
)

// Protocol version
const (
	ProtocolVersion = "1.0"
	ProtocolName    = "tabclean-events"
)

// MessageType identifies the payload carried by a Message
type MessageType string

const (
	TypeConnection MessageType = "connection"
	TypeLog        MessageType = "log"
	TypeProgress   MessageType = "progress"
	TypeTask       MessageType = "task"
)

// Progress channels. Each long running workflow reports on its own channel so
// the surface can colour or place the indicator independently.
const (
	ChannelLoad      = "load"
	ChannelSplit     = "split"
	ChannelTransform = "transform"
)

// Message is the envelope written to every connected client
type Message struct {
	Version   string      `json:"version"`
	Type      MessageType `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// LogData is the payload of a log message
type LogData struct {
	Message string `json:"message"`
}

// ProgressData is the payload of a progress message
type ProgressData struct {
	Percent int    `json:"percent"`
	Channel string `json:"channel"`
}

// TaskData is the payload of a task state change
type TaskData struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// NewMessage wraps data in a versioned envelope
func NewMessage(t MessageType, data interface{}) Message {
	return Message{
		Version:   ProtocolVersion,
		Type:      t,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}
