// Package otel bridges goSession's snapshot metrics into OpenTelemetry
// observable instruments. Counters and cumulative histogram buckets are read
// from the Manager on each collection callback.
package otel
