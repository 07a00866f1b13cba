// Package operations provides the shared plumbing every cleaning and splitting
// workflow runs on.
//
// Core Components:
//
// Reporter: the log and progress surface. Operations call Log with a human
// readable line and ReportProgress with an integer percentage on a named
// channel. Implementations never block the caller.
//
// ProgressTracker: counts finished parts and reports round(i*100/n) after each
// one, 0 on creation and after a failure.
//
// JobQueue: runs one operation at a time off the caller's goroutine so the
// interactive surface stays responsive. A second submit while one is running
// is rejected with a busy error.
//
// OperationError: typed failures (validation, io, cancelled, busy, not_loaded,
// not_found) mapped onto exit codes by the CLI and onto problem responses by
// the HTTP surface.
//
// Example usage:
//
//	queue := operations.NewJobQueue(logger, nil)
//	job, err := queue.Submit(ctx, "split", func(ctx context.Context) (interface{}, error) {
//		return splitter.SplitByRows(ctx, table, req)
//	})
package operations
