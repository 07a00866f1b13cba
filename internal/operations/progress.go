package operations

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// ProgressTracker counts finished parts of a long-running operation and
// reports a rounded percentage after each one
type ProgressTracker struct {
	Step      string
	Channel   string
	Total     int
	Current   int
	StartTime time.Time
	reporter  ProgressReporter
	mu        sync.Mutex
}

// NewProgressTracker creates a tracker and reports 0 on its channel
func NewProgressTracker(step, channel string, total int, reporter ProgressReporter) *ProgressTracker {
	if reporter == nil {
		reporter = NopReporter{}
	}
	p := &ProgressTracker{
		Step:      step,
		Channel:   channel,
		Total:     total,
		StartTime: time.Now(),
		reporter:  reporter,
	}
	reporter.ReportProgress(0, channel)
	return p
}

// Increment marks one more part finished and reports the new percentage
func (p *ProgressTracker) Increment() int {
	p.mu.Lock()
	p.Current++
	pct := Percent(p.Current, p.Total)
	p.mu.Unlock()

	p.reporter.ReportProgress(pct, p.Channel)
	return pct
}

// Complete reports 100 regardless of the counted parts
func (p *ProgressTracker) Complete() {
	p.mu.Lock()
	p.Current = p.Total
	p.mu.Unlock()
	p.reporter.ReportProgress(100, p.Channel)
}

// Reset puts the indicator back to zero after a failure
func (p *ProgressTracker) Reset() {
	p.mu.Lock()
	p.Current = 0
	p.mu.Unlock()
	p.reporter.ReportProgress(0, p.Channel)
}

// GetProgress returns the current progress state
func (p *ProgressTracker) GetProgress() (current, total, percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Current, p.Total, Percent(p.Current, p.Total)
}

// IsComplete returns true if every part is finished
func (p *ProgressTracker) IsComplete() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Current >= p.Total
}

// GetElapsedTimeString returns a formatted elapsed time string
func (p *ProgressTracker) GetElapsedTimeString() string {
	elapsed := time.Since(p.StartTime)

	if elapsed < time.Minute {
		return fmt.Sprintf("%.0f seconds", elapsed.Seconds())
	} else if elapsed < time.Hour {
		return fmt.Sprintf("%.1f minutes", elapsed.Minutes())
	}
	return fmt.Sprintf("%.1f hours", elapsed.Hours())
}

// Percent returns round(done/total*100) clamped to [0,100]. An empty total
// counts as complete.
func Percent(done, total int) int {
	if total <= 0 {
		return 100
	}
	pct := int(math.Round(float64(done) / float64(total) * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
