// Package observability provides Prometheus metrics, health probes, and
// logger construction for the service binaries.
package observability
