// Package metrics defines the Prometheus metrics exported by the archive
// server. All metrics are registered at package load via promauto.
package metrics
