// Package config loads the tabclean configuration.
//
// Values are layered, later sources winning:
//
//	1. Default()
//	2. an optional YAML file
//	3. environment variables prefixed TABCLEAN_
//
// Environment names follow the struct nesting, for example
//
//	TABCLEAN_SERVER_PORT=9090
//	TABCLEAN_SERVER_RATE_LIMIT_RPS=20
//	TABCLEAN_OUTPUT_CSV_BOM=true
//	TABCLEAN_TELEMETRY_TRACE_EXPORTER=stdout
//
// The result is checked with go-playground/validator before use.
package config
