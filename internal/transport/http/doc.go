// Package http implements the HTTP+JSON surface of tabclean.
//
// Handlers stay thin: they decode the request body into a domain request
// struct, hand it to services.WorkspaceService and render the outcome. Every
// operation that touches the dataset runs as a task, so the endpoints answer
// 202 Accepted with a task ID and the caller polls /api/tasks/{id} or
// watches the websocket stream for log, progress and task events.
//
// # Routes
//
//	GET  /api/dataset                 table of record preview
//	POST /api/dataset/load            load a CSV or XLSX file
//	POST /api/dataset/fix-coordinates mean-fill latitude/longitude
//	POST /api/dataset/geocode         synthesise CODE1/CODE2/GEOCODE
//	POST /api/dataset/replace-nulls   replace null-like cells and save
//	POST /api/dataset/save            save the table as .csv or .xlsx
//	GET  /api/split/source            grouping columns of the split source
//	POST /api/split/source            load the split source as text
//	POST /api/split/column            partition by column value
//	POST /api/split/rows              partition into row chunks
//	GET  /api/tasks/{id}              task status and result
//	GET  /api/files                   source files in a directory
//
// # Errors
//
// Errors are rendered as RFC 7807 problem details by
// internal/errors.ErrorHandler. A dismissed destination is not an error: the
// task completes with cancelled=true.
package http
