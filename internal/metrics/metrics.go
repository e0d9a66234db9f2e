// Package metrics holds the process-wide counters the pipeline increments
// as events flow through it. Per §5/§9, this is the one process-wide
// mutable singleton the design allows, and it is append-only/read-mostly.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// Counters is a fixed set of named counters, each independently atomic.
type Counters struct {
	EventsReceived           atomic.Int64
	EventsAccepted           atomic.Int64
	EventsRejectedValidation atomic.Int64
	EventsRejectedRouting    atomic.Int64
	HandlerErrors            atomic.Int64
	ChatCallFailures         atomic.Int64
	StructuredParseFailures  atomic.Int64
	VTSnapshotsConsumed      atomic.Int64
}

// Default is the process-wide counters instance.
var Default = &Counters{}

// snapshot is the JSON shape served by the debug endpoint.
type snapshot struct {
	EventsReceived           int64 `json:"eventsReceived"`
	EventsAccepted           int64 `json:"eventsAccepted"`
	EventsRejectedValidation int64 `json:"eventsRejectedValidation"`
	EventsRejectedRouting    int64 `json:"eventsRejectedRouting"`
	HandlerErrors            int64 `json:"handlerErrors"`
	ChatCallFailures         int64 `json:"chatCallFailures"`
	StructuredParseFailures  int64 `json:"structuredParseFailures"`
	VTSnapshotsConsumed      int64 `json:"vtSnapshotsConsumed"`
}

func (c *Counters) snapshot() snapshot {
	return snapshot{
		EventsReceived:           c.EventsReceived.Load(),
		EventsAccepted:           c.EventsAccepted.Load(),
		EventsRejectedValidation: c.EventsRejectedValidation.Load(),
		EventsRejectedRouting:    c.EventsRejectedRouting.Load(),
		HandlerErrors:            c.HandlerErrors.Load(),
		ChatCallFailures:         c.ChatCallFailures.Load(),
		StructuredParseFailures:  c.StructuredParseFailures.Load(),
		VTSnapshotsConsumed:      c.VTSnapshotsConsumed.Load(),
	}
}

// Handler serves the counters as JSON for local debugging.
func (c *Counters) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(c.snapshot())
	}
}
