// Package metrics defines the Prometheus metrics exposed by the service.
//
// All metrics are registered at package init via promauto and share the
// gif_player_ name prefix. The /metrics endpoint is served from a
// dedicated listener configured in main.
package metrics
