// Package results forwards completed-match signals to durable storage and
// downstream consumers. The hub hands results over verbatim; nothing here
// interprets game semantics.
package results

import (
	"context"
	"encoding/json"
	"time"
)

// Match is one completed match as reported by game logic.
type Match struct {
	UserID  string          `json:"user_id"`
	Pin     string          `json:"pin"`
	Mode    string          `json:"mode"`
	Outcome string          `json:"outcome"`
	Winner  string          `json:"winner,omitempty"`
	Score   float64         `json:"score"`
	Details json.RawMessage `json:"details,omitempty"`
	PlayedAt time.Time      `json:"played_at"`
}

// Recorder durably records a completed match.
type Recorder interface {
	Record(ctx context.Context, match Match) error
}

type discard struct{}

func (discard) Record(context.Context, Match) error { return nil }

// Discard drops every match; used when no persistence is configured.
var Discard Recorder = discard{}
