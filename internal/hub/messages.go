package hub

import "encoding/json"

// Envelope frames every message on the wire, in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Inbound event names.
const (
	EventJoin         = "join"
	EventLeave        = "leave"
	EventRequestState = "request_state"
	EventStateUpdate  = "state_update"
	EventInputUpdate  = "input_update"
	EventGameOver     = "game_over"
)

// Outbound event names.
const (
	EventPresence   = "presence"
	EventRole       = "role"
	EventState      = "state"
	EventJoinDenied = "join_denied"
)

type JoinPayload struct {
	Room string `json:"room"`
	Mode string `json:"mode"`
}

type LeavePayload struct {
	Room string `json:"room"`
	Mode string `json:"mode"`
}

type RequestStatePayload struct {
	Room string `json:"room"`
	Mode string `json:"mode"`
}

type StateUpdatePayload struct {
	Room     string          `json:"room"`
	Mode     string          `json:"mode"`
	ClientID string          `json:"clientId"`
	State    json.RawMessage `json:"state,omitempty"`
}

type InputUpdatePayload struct {
	Room     string          `json:"room"`
	Mode     string          `json:"mode"`
	ClientID string          `json:"clientId"`
	Input    json.RawMessage `json:"input,omitempty"`
}

// GameOverPayload is relayed to the room verbatim and forwarded to the
// results recorder; the hub does not interpret it beyond that.
type GameOverPayload struct {
	Room     string          `json:"room"`
	Mode     string          `json:"mode"`
	ClientID string          `json:"clientId"`
	Winner   string          `json:"winner"`
	Outcome  string          `json:"outcome,omitempty"`
	Score    float64         `json:"score"`
	Details  json.RawMessage `json:"details,omitempty"`
}

type PresencePayload struct {
	Room  string `json:"room"`
	Count int    `json:"count"`
}

// RolePayload carries the assigned team slot; Role is null for spectators
// and non-team modes.
type RolePayload struct {
	Room string  `json:"room"`
	Role *string `json:"role"`
}

type StatePayload struct {
	Room  string          `json:"room"`
	Mode  string          `json:"mode"`
	State json.RawMessage `json:"state"`
}

type JoinDeniedPayload struct {
	Room   string `json:"room"`
	Mode   string `json:"mode"`
	Reason string `json:"reason"`
}

// encode frames an outbound event. Marshal failures are programming errors
// on our own payload types; they are logged and yield nil, which senders
// skip.
func encode(event string, data any) []byte {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("error marshalling event payload")
		return nil
	}
	envelope, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("error marshalling envelope")
		return nil
	}
	return envelope
}
