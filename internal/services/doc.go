// Package services holds the application logic between the transports and
// the data packages.
//
// WorkspaceService owns the table of record. Every operation is validated on
// the caller's goroutine and then submitted to an operations.JobQueue, so at
// most one operation touches the table at a time and a second request gets a
// busy error instead of waiting. Transforms run on a private copy that
// replaces the table of record only on success:
//
//	job, err := ws.FixCoordinates(ctx, domain.CoordinateRequest{
//	    LatColumn: "Latitude",
//	    LonColumn: "Longitude",
//	})
//	result, err := services.Await(job, err)
//
// Splits read an all-text copy of the source file so outputs keep the source
// representation of every value.
//
// HealthService reports liveness, readiness and runtime statistics.
package services
