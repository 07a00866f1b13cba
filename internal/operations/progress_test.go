package operations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tabclean/internal/operations"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name  string
		done  int
		total int
		want  int
	}{
		{"zero of three", 0, 3, 0},
		{"one of three rounds down", 1, 3, 33},
		{"two of three rounds up", 2, 3, 67},
		{"all", 3, 3, 100},
		{"half", 1, 2, 50},
		{"empty total", 0, 0, 100},
		{"overflow clamps", 5, 3, 100},
		{"negative clamps", -1, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, operations.Percent(tt.done, tt.total))
		})
	}
}

func TestProgressTrackerReports(t *testing.T) {
	rec := operations.NewRecordingReporter()
	tracker := operations.NewProgressTracker("split", "split", 3, rec)

	assert.Equal(t, 33, tracker.Increment())
	assert.Equal(t, 67, tracker.Increment())
	assert.Equal(t, 100, tracker.Increment())
	assert.True(t, tracker.IsComplete())

	assert.Equal(t, []int{0, 33, 67, 100}, rec.Progress("split"))
	assert.Empty(t, rec.Progress("load"))
}

func TestProgressTrackerReset(t *testing.T) {
	rec := operations.NewRecordingReporter()
	tracker := operations.NewProgressTracker("split", "split", 4, rec)

	tracker.Increment()
	tracker.Reset()

	current, total, pct := tracker.GetProgress()
	assert.Equal(t, 0, current)
	assert.Equal(t, 4, total)
	assert.Equal(t, 0, pct)
	assert.Equal(t, 0, rec.LastProgress("split"))
}

func TestProgressTrackerComplete(t *testing.T) {
	rec := operations.NewRecordingReporter()
	tracker := operations.NewProgressTracker("split", "split", 0, rec)
	tracker.Complete()

	assert.Equal(t, 100, rec.LastProgress("split"))
	assert.True(t, tracker.IsComplete())
	assert.NotEmpty(t, tracker.GetElapsedTimeString())
}

func TestProgressTrackerNilReporter(t *testing.T) {
	tracker := operations.NewProgressTracker("split", "split", 2, nil)
	assert.NotPanics(t, func() {
		tracker.Increment()
		tracker.Reset()
	})
}

func TestMultiReporter(t *testing.T) {
	a := operations.NewRecordingReporter()
	b := operations.NewRecordingReporter()
	multi := operations.MultiReporter{a, b, operations.NopReporter{}}

	multi.Log("Data updated successfully.")
	multi.ReportProgress(50, "load")

	for _, rec := range []*operations.RecordingReporter{a, b} {
		assert.Equal(t, []string{"Data updated successfully."}, rec.Messages())
		assert.Equal(t, 50, rec.LastProgress("load"))
	}
	assert.Equal(t, -1, a.LastProgress("split"))
}
