package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef defines a public type used by goSession APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goSession APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session manager.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricSessionLoaded, Name: "gosession_session_loaded_total", Help: "Loads that recovered a stored session."},
	{ID: goSession.MetricSessionEmpty, Name: "gosession_session_empty_total", Help: "Loads that resolved to an empty session."},
	{ID: goSession.MetricSessionSaved, Name: "gosession_session_saved_total", Help: "Saves that wrote a payload to the store."},
	{ID: goSession.MetricSessionCreated, Name: "gosession_session_created_total", Help: "Saves that minted a new session id."},
	{ID: goSession.MetricSessionDestroyed, Name: "gosession_session_destroyed_total", Help: "Explicit session destructions."},
	{ID: goSession.MetricNoopSave, Name: "gosession_noop_save_total", Help: "Saves skipped because the session was unchanged."},
	{ID: goSession.MetricTokenRejected, Name: "gosession_token_rejected_total", Help: "Cookies that failed authentication or decryption."},
	{ID: goSession.MetricStoreMiss, Name: "gosession_store_miss_total", Help: "Authentic tokens whose store entry was gone."},
	{ID: goSession.MetricStoreError, Name: "gosession_store_error_total", Help: "Store operations that failed hard."},
	{ID: goSession.MetricPayloadCorrupt, Name: "gosession_payload_corrupt_total", Help: "Stored payloads that failed decryption or decoding."},
}

// HistogramDefs is an exported constant or variable used by the session manager.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricLoadLatency, Name: "gosession_load_latency_seconds", Help: "Load latency histogram."},
	{ID: goSession.MetricSaveLatency, Name: "gosession_save_latency_seconds", Help: "Save latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session manager.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session manager.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form both
// exposition formats expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
