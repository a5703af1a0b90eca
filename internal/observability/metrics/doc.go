// Package metrics declares the Prometheus collectors for editorial activity.
// Collectors register with the default registry and are served on /metrics.
package metrics
