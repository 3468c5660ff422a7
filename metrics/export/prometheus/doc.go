// Package prometheus renders goSession metrics in Prometheus text exposition
// format, dependency-free, suitable for mounting on a scrape endpoint.
package prometheus
