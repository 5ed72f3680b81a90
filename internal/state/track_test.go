package state

import (
	"encoding/json"
	"testing"
	"time"
)

const threshold = 2 * time.Second

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		t.Fatalf("invalid snapshot json: %v", err)
	}
	return obj
}

func TestFirstWriterBecomesOwner(t *testing.T) {
	track := &Track{}
	now := time.Now()

	candidate := []byte(`{"ownerId":"A","players":{}}`)
	payload, outcome := track.Apply(now, threshold, "A", candidate)

	if outcome != Claimed {
		t.Fatalf("outcome = %v, want Claimed", outcome)
	}
	if track.Owner() != "A" {
		t.Errorf("owner = %q, want A", track.Owner())
	}
	if string(payload) != string(candidate) {
		t.Errorf("broadcast payload should be the candidate verbatim")
	}
}

func TestOwnerUpdateReplacesWholesale(t *testing.T) {
	track := &Track{}
	now := time.Now()

	track.Apply(now, threshold, "A", []byte(`{"ownerId":"A","players":{},"round":1}`))
	payload, outcome := track.Apply(now.Add(500*time.Millisecond), threshold, "A", []byte(`{"ownerId":"A","players":{},"round":2}`))

	if outcome != Replaced {
		t.Fatalf("outcome = %v, want Replaced", outcome)
	}
	obj := decode(t, payload)
	if obj["round"].(float64) != 2 {
		t.Errorf("round = %v, want 2", obj["round"])
	}
}

func TestNonOwnerUpdateBeforeThresholdMerges(t *testing.T) {
	track := &Track{}
	now := time.Now()

	track.Apply(now, threshold, "A", []byte(`{"ownerId":"A","players":{},"memes":[1,2,3]}`))

	candidate := []byte(`{"ownerId":"B","players":{"B":{"name":"Bob"}},"memes":[9]}`)
	payload, outcome := track.Apply(now.Add(300*time.Millisecond), threshold, "B", candidate)

	if outcome != Merged {
		t.Fatalf("outcome = %v, want Merged", outcome)
	}
	if track.Owner() != "A" {
		t.Errorf("owner = %q, want A after merge", track.Owner())
	}

	obj := decode(t, payload)
	if obj["ownerId"] != "A" {
		t.Errorf("merged ownerId = %v, want A", obj["ownerId"])
	}
	players := obj["players"].(map[string]any)
	bob := players["B"].(map[string]any)
	if bob["name"] != "Bob" {
		t.Errorf("players.B.name = %v, want Bob", bob["name"])
	}
	memes := obj["memes"].([]any)
	if len(memes) != 3 {
		t.Errorf("memes = %v, want the owner's [1,2,3]", memes)
	}
}

func TestNonOwnerUpdateAfterThresholdTakesOver(t *testing.T) {
	track := &Track{}
	now := time.Now()

	track.Apply(now, threshold, "A", []byte(`{"ownerId":"A","players":{},"memes":[1,2,3]}`))

	candidate := []byte(`{"ownerId":"B","players":{"B":{"name":"Bob"}}}`)
	payload, outcome := track.Apply(now.Add(2500*time.Millisecond), threshold, "B", candidate)

	if outcome != Claimed {
		t.Fatalf("outcome = %v, want Claimed", outcome)
	}
	if track.Owner() != "B" {
		t.Errorf("owner = %q, want B after takeover", track.Owner())
	}
	if string(payload) != string(candidate) {
		t.Errorf("takeover should broadcast the candidate verbatim")
	}
}

func TestMergeOnlyTouchesSendersCosmeticFields(t *testing.T) {
	track := &Track{}
	now := time.Now()

	track.Apply(now, threshold, "A", []byte(`{
		"ownerId": "A",
		"players": {
			"A": {"name":"Alice","color":"#f00","x":10,"total":5},
			"B": {"name":"Old","color":"#00f","x":20,"total":7}
		},
		"round": 4
	}`))

	// B tries to rewrite everything: its own simulation fields, A's
	// entry, and a shared field.
	candidate := []byte(`{
		"ownerId": "B",
		"players": {
			"A": {"name":"Hacked","x":999},
			"B": {"name":"Bob","color":"#0f0","x":999,"total":100}
		},
		"round": 99
	}`)
	payload, outcome := track.Apply(now.Add(time.Second), threshold, "B", candidate)

	if outcome != Merged {
		t.Fatalf("outcome = %v, want Merged", outcome)
	}

	obj := decode(t, payload)
	players := obj["players"].(map[string]any)

	alice := players["A"].(map[string]any)
	if alice["name"] != "Alice" || alice["x"].(float64) != 10 {
		t.Errorf("another client's entry changed: %v", alice)
	}

	bob := players["B"].(map[string]any)
	if bob["name"] != "Bob" || bob["color"] != "#0f0" {
		t.Errorf("cosmetic fields not updated: %v", bob)
	}
	if bob["x"].(float64) != 20 || bob["total"].(float64) != 7 {
		t.Errorf("simulation fields changed on merge: %v", bob)
	}

	if obj["round"].(float64) != 4 {
		t.Errorf("field outside players changed: round = %v", obj["round"])
	}
}

func TestMergeInsertsUnknownPlayerEntry(t *testing.T) {
	track := &Track{}
	now := time.Now()

	track.Apply(now, threshold, "A", []byte(`{"ownerId":"A","players":{}}`))

	candidate := []byte(`{"ownerId":"B","players":{"B":{"name":"Bob","x":50}}}`)
	payload, outcome := track.Apply(now.Add(300*time.Millisecond), threshold, "B", candidate)

	if outcome != Merged {
		t.Fatalf("outcome = %v, want Merged", outcome)
	}

	obj := decode(t, payload)
	players := obj["players"].(map[string]any)
	bob := players["B"].(map[string]any)
	// A fresh entry is copied as sent, simulation fields included.
	if bob["name"] != "Bob" || bob["x"].(float64) != 50 {
		t.Errorf("inserted entry = %v, want the candidate's entry", bob)
	}
}

func TestMergeDoesNotRefreshLease(t *testing.T) {
	track := &Track{}
	now := time.Now()

	track.Apply(now, threshold, "A", []byte(`{"ownerId":"A","players":{}}`))

	// A stream of merges from B during the owner's silence must not
	// push the takeover horizon out.
	for i := 1; i <= 4; i++ {
		_, outcome := track.Apply(now.Add(time.Duration(i)*600*time.Millisecond), threshold, "B", []byte(`{"ownerId":"B","players":{"B":{"name":"Bob"}}}`))
		if i <= 3 {
			if outcome != Merged {
				t.Fatalf("update %d: outcome = %v, want Merged", i, outcome)
			}
		} else {
			if outcome != Claimed {
				t.Fatalf("update %d: outcome = %v, want Claimed after lease lapse", i, outcome)
			}
		}
	}
	if track.Owner() != "B" {
		t.Errorf("owner = %q, want B", track.Owner())
	}
}

func TestMergeFailureFallsBackToWholesaleAccept(t *testing.T) {
	track := &Track{}
	now := time.Now()

	// players is not an object, so the merge path cannot proceed.
	track.Apply(now, threshold, "A", []byte(`{"ownerId":"A","players":"corrupt"}`))

	candidate := []byte(`{"ownerId":"B","players":{"B":{"name":"Bob"}}}`)
	payload, outcome := track.Apply(now.Add(300*time.Millisecond), threshold, "B", candidate)

	if outcome != Claimed {
		t.Fatalf("outcome = %v, want Claimed fallback", outcome)
	}
	if track.Owner() != "B" {
		t.Errorf("owner = %q, want B after fallback", track.Owner())
	}
	if string(payload) != string(candidate) {
		t.Errorf("fallback should broadcast the candidate verbatim")
	}
}

func TestMalformedCandidateIsDropped(t *testing.T) {
	track := &Track{}
	now := time.Now()

	cases := []struct {
		name      string
		candidate []byte
	}{
		{"empty", nil},
		{"not json", []byte(`{{{`)},
		{"not an object", []byte(`[1,2,3]`)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload, outcome := track.Apply(now, threshold, "A", tc.candidate)
			if outcome != Dropped {
				t.Errorf("outcome = %v, want Dropped", outcome)
			}
			if payload != nil {
				t.Errorf("payload = %s, want nil", payload)
			}
		})
	}

	if track.Snapshot() != nil {
		t.Errorf("dropped updates must not create a snapshot")
	}
}

func TestSnapshotUnclaimedIsNil(t *testing.T) {
	track := &Track{}
	if track.Snapshot() != nil {
		t.Errorf("unclaimed track should report a nil snapshot")
	}
	if track.Owner() != "" {
		t.Errorf("unclaimed track should have no owner")
	}
}

func TestMissingOwnerTagFallsBackToSender(t *testing.T) {
	track := &Track{}
	now := time.Now()

	track.Apply(now, threshold, "A", []byte(`{"players":{}}`))
	if track.Owner() != "A" {
		t.Errorf("owner = %q, want the sender A", track.Owner())
	}

	// The same sender keeps wholesale-replace rights.
	_, outcome := track.Apply(now.Add(time.Second), threshold, "A", []byte(`{"players":{}}`))
	if outcome != Replaced {
		t.Errorf("outcome = %v, want Replaced", outcome)
	}
}

func TestTerminatorActive(t *testing.T) {
	track := &Track{}
	now := time.Now()

	if track.TerminatorActive() {
		t.Fatal("unclaimed track cannot have terminator active")
	}

	track.Apply(now, threshold, "A", []byte(`{"ownerId":"A","players":{},"terminatorMode":true}`))
	if !track.TerminatorActive() {
		t.Error("terminator flag should be read from the current snapshot")
	}

	track.Apply(now.Add(time.Second), threshold, "A", []byte(`{"ownerId":"A","players":{},"terminatorMode":false}`))
	if track.TerminatorActive() {
		t.Error("terminator flag should clear with the owner's next snapshot")
	}
}
