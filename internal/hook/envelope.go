// Package hook validates the JSON envelope posted to the hook HTTP server
// (C9) before it is handed to the routing resolver and event pipeline.
package hook

import (
	"encoding/json"
	"fmt"
)

// Envelope is one hook event. Fields beyond the documented set pass through
// unchanged in Raw, per the validation contract's "unknown fields pass
// through unchanged" rule.
type Envelope struct {
	Type        string `json:"type"`
	ProjectName string `json:"projectName"`
	AgentType   string `json:"agentType,omitempty"`
	InstanceID  string `json:"instanceId,omitempty"`
	Text        string `json:"text,omitempty"`
	Message     string `json:"message,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
	TurnID      string `json:"turnId,omitempty"`

	// Domain-specific fields used by individual handlers (§4.5). They are
	// all optional strings at the envelope level; handlers that need a
	// specific type (e.g. taskId as a number) parse Raw themselves.
	ToolName  string `json:"toolName,omitempty"`
	ToolInput string `json:"toolInput,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Teammate  string `json:"teammate,omitempty"`

	Raw map[string]interface{} `json:"-"`
}

// ValidationError describes one field that failed validation.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Result is the outcome of Validate: either Ok with a Value, or not-Ok with
// a list of field Errors.
type Result struct {
	Ok     bool
	Value  *Envelope
	Errors []ValidationError
}

// optionalStringFields are validated as "string if present" only; their
// absence is never an error.
var optionalStringFields = []string{"agentType", "instanceId", "text", "message", "timestamp", "turnId"}

// Validate parses and validates a raw JSON hook payload. Unknown `type`
// values are accepted here — the pipeline's dispatcher is what rejects
// them (§4.3).
func Validate(body []byte) Result {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Result{Ok: false, Errors: []ValidationError{{Field: "$", Reason: "payload must be a JSON object"}}}
	}

	var errs []ValidationError

	typ, ok := requireNonEmptyString(raw, "type", &errs)
	projectName, ok2 := requireNonEmptyString(raw, "projectName", &errs)

	for _, field := range optionalStringFields {
		v, present := raw[field]
		if !present || v == nil {
			continue
		}
		if _, isString := v.(string); !isString {
			errs = append(errs, ValidationError{Field: field, Reason: "must be a string when present"})
		}
	}

	if !ok || !ok2 || len(errs) > 0 {
		return Result{Ok: false, Errors: errs}
	}

	env := &Envelope{
		Type:        typ,
		ProjectName: projectName,
		AgentType:   optString(raw, "agentType"),
		InstanceID:  optString(raw, "instanceId"),
		Text:        optString(raw, "text"),
		Message:     optString(raw, "message"),
		Timestamp:   optString(raw, "timestamp"),
		TurnID:      optString(raw, "turnId"),
		ToolName:    optString(raw, "toolName"),
		ToolInput:   optString(raw, "toolInput"),
		Subject:     optString(raw, "subject"),
		Teammate:    optString(raw, "teammate"),
		Raw:         raw,
	}

	return Result{Ok: true, Value: env}
}

func requireNonEmptyString(raw map[string]interface{}, field string, errs *[]ValidationError) (string, bool) {
	v, present := raw[field]
	if !present {
		*errs = append(*errs, ValidationError{Field: field, Reason: "required"})
		return "", false
	}
	s, isString := v.(string)
	if !isString || s == "" {
		*errs = append(*errs, ValidationError{Field: field, Reason: "must be a non-empty string"})
		return "", false
	}
	return s, true
}

func optString(raw map[string]interface{}, field string) string {
	if v, ok := raw[field]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// KnownEventTypes is the closed set of event types the pipeline dispatches
// on (§4.5). Validate does not check membership — unknown types are
// accepted here and rejected only at dispatch, per §4.3.
var KnownEventTypes = map[string]bool{
	"session.start":        true,
	"session.end":          true,
	"session.error":        true,
	"session.notification": true,
	"session.idle":         true,
	"thinking.start":       true,
	"thinking.stop":        true,
	"tool.activity":        true,
	"tool.failure":         true,
	"permission.request":   true,
	"task.completed":       true,
	"prompt.submit":        true,
	"teammate.idle":        true,
}
