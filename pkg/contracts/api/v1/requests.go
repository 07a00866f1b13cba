// Package api contains the HTTP response contracts of the tabclean server.
// Request bodies are the domain request structs.
package api

import (
	"time"

	"tabclean/pkg/contracts/domain"
)

// TaskAccepted is returned when an operation has been queued
type TaskAccepted struct {
	TaskID string `json:"task_id"`
	Kind   string `json:"kind"`
	Status string `json:"status"`
}

// TaskStatusResponse reports the state of a queued operation
type TaskStatusResponse struct {
	TaskID      string              `json:"task_id"`
	Kind        string              `json:"kind"`
	Status      string              `json:"status"`
	Error       string              `json:"error,omitempty"`
	Cancelled   bool                `json:"cancelled,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	Split       *domain.SplitResult `json:"split,omitempty"`
	Output      string              `json:"output,omitempty"`
	Result      interface{}         `json:"result,omitempty"`
}

// DatasetResponse describes the table of record
type DatasetResponse struct {
	Source  string         `json:"source"`
	Loaded  bool           `json:"loaded"`
	Preview domain.Preview `json:"preview"`
}

// SplitSourceResponse lists the grouping columns of the loaded split source
type SplitSourceResponse struct {
	Source  string   `json:"source"`
	Loaded  bool     `json:"loaded"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}
