package state

import (
	"encoding/json"
	"time"
)

// Field names inside the snapshot that the hub interprets. Everything else
// is carried opaquely.
const (
	ownerField      = "ownerId"
	playersField    = "players"
	terminatorField = "terminatorMode"
)

// Outcome describes how an update was applied to a track.
type Outcome int

const (
	// Dropped means the update was structurally unusable and ignored.
	Dropped Outcome = iota
	// Replaced means the owner refreshed the snapshot wholesale.
	Replaced
	// Claimed means the snapshot was accepted wholesale and ownership
	// was assigned or reassigned: first write, lapsed-lease takeover,
	// or the merge fallback path.
	Claimed
	// Merged means a non-owner update was reconciled field by field
	// into the owner's snapshot.
	Merged
)

func (o Outcome) String() string {
	switch o {
	case Replaced:
		return "replaced"
	case Claimed:
		return "claimed"
	case Merged:
		return "merged"
	default:
		return "dropped"
	}
}

// Track is the authoritative shared snapshot for one (room, mode) pair.
//
// At most one owner holds the write lease at a time. The owner replaces the
// snapshot wholesale; anyone else either takes the lease over once it has
// lapsed, or gets the cosmetic merge treatment. Callers serialize access;
// Track itself is not safe for concurrent use.
type Track struct {
	owner     string
	snapshot  map[string]json.RawMessage
	updatedAt time.Time
}

// Apply runs the replication transition rules for one candidate snapshot
// and returns the bytes to broadcast to the room. The broadcast payload is
// the candidate verbatim on wholesale accepts and the reconciled snapshot
// on merges. A Dropped outcome means nothing should be broadcast.
func (t *Track) Apply(now time.Time, threshold time.Duration, senderID string, candidate []byte) ([]byte, Outcome) {
	if len(candidate) == 0 {
		return nil, Dropped
	}

	var incoming map[string]json.RawMessage
	if err := json.Unmarshal(candidate, &incoming); err != nil {
		return nil, Dropped
	}

	declared := stringField(incoming, ownerField)
	if declared == "" {
		declared = senderID
	}

	// First writer becomes owner.
	if t.snapshot == nil {
		t.accept(now, declared, incoming)
		return candidate, Claimed
	}

	// The owner's updates always replace the snapshot wholesale.
	if declared == t.owner {
		t.accept(now, declared, incoming)
		return candidate, Replaced
	}

	// A silent owner's lease lapses; the challenger takes over.
	if now.Sub(t.updatedAt) > threshold {
		t.accept(now, declared, incoming)
		return candidate, Claimed
	}

	merged, err := t.merge(senderID, incoming)
	if err != nil {
		// Never lose an update: fall back to wholesale acceptance.
		t.accept(now, declared, incoming)
		return candidate, Claimed
	}
	return merged, Merged
}

// accept replaces the snapshot and refreshes the lease.
func (t *Track) accept(now time.Time, owner string, snapshot map[string]json.RawMessage) {
	t.owner = owner
	t.snapshot = snapshot
	t.updatedAt = now
}

// Snapshot returns the current snapshot as JSON, or nil for an unclaimed
// track. It never mutates the track.
func (t *Track) Snapshot() []byte {
	if t.snapshot == nil {
		return nil
	}
	data, err := json.Marshal(t.snapshot)
	if err != nil {
		return nil
	}
	return data
}

// Owner returns the connection tag currently holding the write lease.
func (t *Track) Owner() string {
	return t.owner
}

// TerminatorActive reports whether the snapshot carries the meme-dash
// exclusivity flag, evaluated against the current snapshot only.
func (t *Track) TerminatorActive() bool {
	if t.snapshot == nil {
		return false
	}
	raw, ok := t.snapshot[terminatorField]
	if !ok {
		return false
	}
	var active bool
	if err := json.Unmarshal(raw, &active); err != nil {
		return false
	}
	return active
}

func stringField(obj map[string]json.RawMessage, key string) string {
	raw, ok := obj[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
