// Package app wires tabclean's server together.
//
// NewApplication builds, in order: OpenTelemetry providers, the websocket
// hub, the job queue (observed by the hub), the persistence manager, the
// splitter, the workspace service and the health service, then the chi
// router and the http.Server. Operation log and progress lines are fanned
// out to both the structured log and the websocket hub.
//
// Run blocks until SIGINT or SIGTERM, then shuts the server down, lets a
// running operation finish and flushes telemetry.
package app
