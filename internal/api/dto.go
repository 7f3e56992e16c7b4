package api

import (
	"time"

	"scenario-analysis/web/internal/analysis"
	"scenario-analysis/web/internal/form"
)

// AnalyzeRequest is the JSON relay body; constraints arrive already split.
type AnalyzeRequest struct {
	Scenario    string   `json:"scenario"`
	Constraints []string `json:"constraints"`
}

// ConfigResponse reports the effective backend settings.
type ConfigResponse struct {
	Endpoint       string   `json:"endpoint"`
	TimeoutSeconds float64  `json:"timeout_seconds"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// SessionRequest is one submission over the WebSocket session. Fields carry
// the raw form inputs, so constraints is the unsplit comma separated text.
type SessionRequest struct {
	Scenario    string `json:"scenario"`
	Constraints string `json:"constraints"`
}

// SessionEvent describes websocket payloads emitted while a submission runs.
type SessionEvent struct {
	Type      string             `json:"type"`
	ID        string             `json:"id,omitempty"`
	Phase     form.Phase         `json:"phase"`
	Busy      bool               `json:"busy"`
	Label     string             `json:"label"`
	Message   string             `json:"message,omitempty"`
	Result    *analysis.Response `json:"result,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

const (
	EventState   = "state"
	EventInvalid = "invalid"
)

// EventFromView converts a form snapshot into a session event.
func EventFromView(v form.View) SessionEvent {
	event := SessionEvent{
		Type:      EventState,
		ID:        v.ID,
		Phase:     v.Phase,
		Busy:      v.Busy(),
		Label:     v.SubmitLabel(),
		Result:    v.Result,
		Timestamp: time.Now().UTC(),
	}
	switch {
	case v.Error != "":
		event.Message = v.Error
	case v.Notice != "":
		event.Type = EventInvalid
		event.Message = v.Notice
	}
	return event
}
