package hub

import (
	"context"
	"sync"
	"time"

	"github.com/tbraam/gamehub-server/internal/results"
	"github.com/tbraam/gamehub-server/internal/state"
	"github.com/tbraam/gamehub-server/pkg/metrics"
)

// Role is an exclusive team slot within a room.
type Role string

const (
	RoleA Role = "A"
	RoleB Role = "B"
)

// roleOrder is the assignment preference on join.
var roleOrder = [...]Role{RoleA, RoleB}

// Room groups the connections sharing one PIN, with one state track per
// mode, the membership set, and the team role table.
//
// Every operation against a room runs under its mutex, so membership, roles
// and tracks change atomically relative to each other. Rooms are fully
// independent; nothing is held across two rooms at once.
type Room struct {
	ID  string
	hub *Hub

	mu         sync.Mutex
	members    map[string]*Client
	roles      map[Role]string
	tracks     map[state.Mode]*state.Track
	emptySince time.Time
}

func newRoom(id string, h *Hub) *Room {
	return &Room{
		ID:         id,
		hub:        h,
		members:    make(map[string]*Client),
		roles:      make(map[Role]string),
		tracks:     make(map[state.Mode]*state.Track),
		emptySince: time.Now(),
	}
}

// Join admits a connection to the room. Rejoining is idempotent: the
// membership count does not change and an already-held role slot is kept.
//
// After admission the joiner privately receives its role (null for
// spectators and non-team modes), then the whole room gets the new presence
// count, then the joiner privately receives the current snapshot if one
// exists for the mode.
func (r *Room) Join(c *Client, mode state.Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Admission control specific to meme-dash: while the current snapshot
	// flags terminator mode, new joiners are turned away.
	if mode == state.ModeMemeDash {
		if track, ok := r.tracks[mode]; ok && track.TerminatorActive() {
			c.enqueue(encode(EventJoinDenied, JoinDeniedPayload{
				Room:   r.ID,
				Mode:   mode.String(),
				Reason: "terminator mode active",
			}))
			return
		}
	}

	if _, member := r.members[c.ID]; !member {
		r.members[c.ID] = c
		r.emptySince = time.Time{}
		c.addRoom(r)
	}

	var assigned *string
	if mode.HasTeams() {
		if role, ok := r.assignRole(c.ID); ok {
			name := string(role)
			assigned = &name
		}
	}

	c.enqueue(encode(EventRole, RolePayload{Room: r.ID, Role: assigned}))
	r.broadcastPresenceLocked()

	if track, ok := r.tracks[mode]; ok {
		if snapshot := track.Snapshot(); snapshot != nil {
			c.enqueue(encode(EventState, StatePayload{
				Room:  r.ID,
				Mode:  mode.String(),
				State: snapshot,
			}))
		}
	}
}

// assignRole gives the connection the first free slot, or reports the slot
// it already holds. A connection never holds two slots in one room.
func (r *Room) assignRole(connID string) (Role, bool) {
	for _, role := range roleOrder {
		if r.roles[role] == connID {
			return role, true
		}
	}
	for _, role := range roleOrder {
		if r.roles[role] == "" {
			r.roles[role] = connID
			return role, true
		}
	}
	return "", false
}

// Leave removes the connection from the room, vacates any role slot it
// held, and announces the new presence count.
func (r *Room) Leave(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(c)
}

// Disconnect runs the same cleanup as Leave; it exists as a separate entry
// point so connection teardown reads naturally at the call site.
func (r *Room) Disconnect(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(c)
}

func (r *Room) removeLocked(c *Client) {
	if _, member := r.members[c.ID]; !member {
		return
	}
	delete(r.members, c.ID)
	c.removeRoom(r.ID)

	for role, holder := range r.roles {
		if holder == c.ID {
			delete(r.roles, role)
		}
	}

	if len(r.members) == 0 {
		r.emptySince = time.Now()
	}
	r.broadcastPresenceLocked()
}

// ApplyUpdate feeds a candidate snapshot through the replication protocol
// and fans the accepted result out to every member but the sender. A
// structurally unusable update is a silent no-op.
func (r *Room) ApplyUpdate(c *Client, mode state.Mode, clientID string, candidate []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	track, ok := r.tracks[mode]
	if !ok {
		track = &state.Track{}
	}

	payload, outcome := track.Apply(time.Now(), r.hub.takeover, clientID, candidate)
	metrics.StateUpdates.WithLabelValues(outcome.String()).Inc()
	if outcome == state.Dropped {
		return
	}
	if !ok {
		// Tracks come into being on the first accepted write.
		r.tracks[mode] = track
	}

	r.broadcastExceptLocked(c.ID, encode(EventStateUpdate, StateUpdatePayload{
		Room:     r.ID,
		Mode:     mode.String(),
		ClientID: clientID,
		State:    payload,
	}))
}

// RequestState sends the current snapshot, or an explicit null, to the
// requester only.
func (r *Room) RequestState(c *Client, mode state.Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var snapshot []byte
	if track, ok := r.tracks[mode]; ok {
		snapshot = track.Snapshot()
	}
	c.enqueue(encode(EventState, StatePayload{
		Room:  r.ID,
		Mode:  mode.String(),
		State: snapshot,
	}))
}

// RelayInput fans a transient input event out to every other member.
// Nothing is stored and drops are not an error.
func (r *Room) RelayInput(c *Client, payload InputUpdatePayload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	metrics.InputsRelayed.Inc()
	r.broadcastExceptLocked(c.ID, encode(EventInputUpdate, payload))
}

// GameOver relays the terminal notification to the rest of the room and
// forwards the result to the persistence collaborator. Recording happens
// off the room's critical path; a failed write never affects the room.
func (r *Room) GameOver(c *Client, payload GameOverPayload) {
	r.mu.Lock()
	r.broadcastExceptLocked(c.ID, encode(EventGameOver, payload))
	r.mu.Unlock()

	userID := c.Identity.UserID
	if userID == "" {
		userID = payload.ClientID
	}
	outcome := payload.Outcome
	if outcome == "" {
		outcome = "completed"
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := r.hub.recorder.Record(ctx, results.Match{
			UserID:  userID,
			Pin:     r.ID,
			Mode:    payload.Mode,
			Outcome: outcome,
			Winner:  payload.Winner,
			Score:   payload.Score,
			Details: payload.Details,
		})
		if err != nil {
			log.Error().Err(err).Str("room", r.ID).Str("mode", payload.Mode).Msg("error recording match result")
		}
	}()
}

// MemberCount returns the current cardinality of the membership set.
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// idleSince reports when the room last became empty; ok is false while it
// has members.
func (r *Room) idleSince() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.members) > 0 {
		return time.Time{}, false
	}
	return r.emptySince, true
}

func (r *Room) broadcastPresenceLocked() {
	r.broadcastLocked(encode(EventPresence, PresencePayload{
		Room:  r.ID,
		Count: len(r.members),
	}))
}

func (r *Room) broadcastLocked(message []byte) {
	for _, member := range r.members {
		member.enqueue(message)
	}
}

func (r *Room) broadcastExceptLocked(senderID string, message []byte) {
	for id, member := range r.members {
		if id == senderID {
			continue
		}
		member.enqueue(message)
	}
}
