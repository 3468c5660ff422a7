// Package internaldefs holds the shared metric name/help tables consumed by the
// Prometheus and OpenTelemetry exporters. It exists so both exporters expose an
// identical metric surface from one definition.
package internaldefs
