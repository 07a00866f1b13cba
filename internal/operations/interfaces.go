package operations

import (
	"log/slog"
	"sync"
)

// Logger receives human readable operation messages
type Logger interface {
	Log(message string)
}

// ProgressReporter receives integer percentages on a named channel.
// Implementations must return promptly and never block the caller.
type ProgressReporter interface {
	ReportProgress(percent int, channel string)
}

// Reporter is the log and progress surface handed to every operation
type Reporter interface {
	Logger
	ProgressReporter
}

// NopReporter discards everything
type NopReporter struct{}

func (NopReporter) Log(string)                 {}
func (NopReporter) ReportProgress(int, string) {}

// SlogReporter forwards operation messages to a structured logger
type SlogReporter struct {
	logger *slog.Logger
}

// NewSlogReporter creates a reporter writing to logger
func NewSlogReporter(logger *slog.Logger) *SlogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogReporter{logger: logger.With(slog.String("component", "reporter"))}
}

// Log implements Logger
func (r *SlogReporter) Log(message string) {
	r.logger.Info(message)
}

// ReportProgress implements ProgressReporter
func (r *SlogReporter) ReportProgress(percent int, channel string) {
	r.logger.Debug("progress",
		slog.Int("percent", percent),
		slog.String("channel", channel))
}

// MultiReporter fans out to several reporters in order
type MultiReporter []Reporter

// Log implements Logger
func (m MultiReporter) Log(message string) {
	for _, r := range m {
		r.Log(message)
	}
}

// ReportProgress implements ProgressReporter
func (m MultiReporter) ReportProgress(percent int, channel string) {
	for _, r := range m {
		r.ReportProgress(percent, channel)
	}
}

// RecordingReporter keeps every message and progress value. It is safe for
// concurrent use and is meant for tests and the CLI summary.
type RecordingReporter struct {
	mu       sync.Mutex
	messages []string
	progress map[string][]int
}

// NewRecordingReporter creates an empty recording reporter
func NewRecordingReporter() *RecordingReporter {
	return &RecordingReporter{progress: make(map[string][]int)}
}

// Log implements Logger
func (r *RecordingReporter) Log(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

// ReportProgress implements ProgressReporter
func (r *RecordingReporter) ReportProgress(percent int, channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress[channel] = append(r.progress[channel], percent)
}

// Messages returns a copy of the logged messages
func (r *RecordingReporter) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}

// Progress returns a copy of the values reported on channel
func (r *RecordingReporter) Progress(channel string) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.progress[channel]))
	copy(out, r.progress[channel])
	return out
}

// LastProgress returns the most recent value on channel, or -1
func (r *RecordingReporter) LastProgress(channel string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	values := r.progress[channel]
	if len(values) == 0 {
		return -1
	}
	return values[len(values)-1]
}
