// Package hooks implements the checks the Claude Code host runs at tool
// lifecycle points. Each hook reads one JSON event from stdin and writes a
// permission decision to stdout; guards take their configuration as an
// argument and hold no state across invocations.
package hooks

import (
	"encoding/json"
	"fmt"
	"io"
)

// Event is the payload the host pipes to a hook command.
type Event struct {
	SessionID string    `json:"session_id"`
	ToolName  string    `json:"tool_name"`
	ToolInput ToolInput `json:"tool_input"`
}

type ToolInput struct {
	FilePath string `json:"file_path"`
	Command  string `json:"command"`
}

// ReadEvent decodes a single event. An empty or malformed payload is an
// error; callers decide whether that blocks the action.
func ReadEvent(r io.Reader) (Event, error) {
	var ev Event
	if err := json.NewDecoder(r).Decode(&ev); err != nil {
		return Event{}, fmt.Errorf("decode hook event: %w", err)
	}
	return ev, nil
}

// Decision is the hook's answer, in the shape the host expects under
// hookSpecificOutput.
type Decision struct {
	Permission string `json:"permissionDecision"`
	Reason     string `json:"permissionDecisionReason,omitempty"`
}

func Allow() Decision {
	return Decision{Permission: "allow"}
}

func Deny(reason string) Decision {
	return Decision{Permission: "deny", Reason: reason}
}

// Denied reports whether the decision blocks the action.
func (d Decision) Denied() bool {
	return d.Permission == "deny"
}

// Write emits the decision envelope to w.
func (d Decision) Write(w io.Writer) error {
	out := struct {
		HookSpecificOutput Decision `json:"hookSpecificOutput"`
	}{d}
	return json.NewEncoder(w).Encode(out)
}
