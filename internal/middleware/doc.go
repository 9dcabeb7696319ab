// Package middleware provides HTTP middleware for request logging and
// Prometheus metrics. Logging uses W3C Extended Log Format with field
// sanitization against log injection; metrics label requests by the
// matched route template to keep cardinality bounded.
package middleware
