package state

import (
	"encoding/json"
	"fmt"
)

// cosmeticFields is the allow-list a non-owner may change on an existing
// player entry. Simulation fields stay exactly as the owner wrote them.
var cosmeticFields = []string{"name", "color"}

// merge reconciles a non-owner candidate into the current snapshot.
//
// Only the sender's own entry in the players mapping is touched: a new
// entry is inserted as sent, an existing one has its cosmetic fields
// refreshed. Everything else in the snapshot is kept verbatim. The merged
// snapshot replaces t.snapshot but does not move the lease timestamp, so a
// chatty spectator cannot keep a dead owner's lease alive.
func (t *Track) merge(senderID string, incoming map[string]json.RawMessage) ([]byte, error) {
	players, err := objectField(t.snapshot, playersField)
	if err != nil {
		return nil, err
	}

	incomingPlayers, err := objectField(incoming, playersField)
	if err != nil {
		return nil, err
	}

	if entry, ok := incomingPlayers[senderID]; ok {
		current, exists := players[senderID]
		if !exists {
			players[senderID] = entry
		} else {
			updated, err := mergeCosmetics(current, entry)
			if err != nil {
				return nil, err
			}
			players[senderID] = updated
		}
	}

	rawPlayers, err := json.Marshal(players)
	if err != nil {
		return nil, err
	}
	t.snapshot[playersField] = rawPlayers

	return json.Marshal(t.snapshot)
}

// mergeCosmetics copies the allow-listed fields from the candidate player
// entry into the existing one.
func mergeCosmetics(current, candidate json.RawMessage) (json.RawMessage, error) {
	var currentEntry map[string]json.RawMessage
	if err := json.Unmarshal(current, &currentEntry); err != nil {
		return nil, fmt.Errorf("player entry is not an object: %w", err)
	}

	var candidateEntry map[string]json.RawMessage
	if err := json.Unmarshal(candidate, &candidateEntry); err != nil {
		return nil, fmt.Errorf("candidate player entry is not an object: %w", err)
	}

	for _, field := range cosmeticFields {
		if value, ok := candidateEntry[field]; ok {
			currentEntry[field] = value
		}
	}

	return json.Marshal(currentEntry)
}

// objectField unmarshals a nested JSON object field, returning an empty map
// when the field is absent.
func objectField(obj map[string]json.RawMessage, key string) (map[string]json.RawMessage, error) {
	raw, ok := obj[key]
	if !ok {
		return map[string]json.RawMessage{}, nil
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, fmt.Errorf("field %q is not an object: %w", key, err)
	}
	if nested == nil {
		nested = map[string]json.RawMessage{}
	}
	return nested, nil
}
