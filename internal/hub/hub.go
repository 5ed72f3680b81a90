// Package hub implements the room session hub: room and membership
// lifecycle, team role assignment, the authoritative-state replication
// protocol, and the ephemeral input relay.
package hub

import (
	"context"
	"sync"
	"time"

	"github.com/tbraam/gamehub-server/internal/configuration"
	"github.com/tbraam/gamehub-server/internal/logger"
	"github.com/tbraam/gamehub-server/internal/pin"
	"github.com/tbraam/gamehub-server/internal/results"
	"github.com/tbraam/gamehub-server/pkg/metrics"
)

var log = logger.Get()

// Hub is the registry of live rooms. It owns room creation, PIN
// allocation, and the reclamation of rooms that have sat empty past the
// idle TTL.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	pins     *pin.Generator
	takeover time.Duration
	idleTtl  time.Duration
	sendBuf  int
	recorder results.Recorder
}

// New builds a hub from settings. The recorder receives completed match
// results; pass results.Discard when no persistence is configured.
func New(settings configuration.HubSettings, recorder results.Recorder) *Hub {
	if recorder == nil {
		recorder = results.Discard
	}
	if settings.TakeoverThresholdMs <= 0 {
		settings.TakeoverThresholdMs = 2000
	}
	if settings.PinLength <= 0 {
		settings.PinLength = 6
	}
	if settings.PinMaxAttempts <= 0 {
		settings.PinMaxAttempts = 10000
	}
	if settings.RoomIdleTtlSeconds <= 0 {
		settings.RoomIdleTtlSeconds = 300
	}
	if settings.SendBufferSize <= 0 {
		settings.SendBufferSize = 256
	}
	return &Hub{
		rooms:    make(map[string]*Room),
		pins:     pin.NewGenerator(settings.PinLength, settings.PinMaxAttempts),
		takeover: settings.TakeoverThreshold(),
		idleTtl:  settings.RoomIdleTtl(),
		sendBuf:  settings.SendBufferSize,
		recorder: recorder,
	}
}

// NewRoom allocates a fresh PIN, registers an empty room under it, and
// returns the PIN. The generator checks candidates against the live
// registry, so a PIN is never reused while its room is tracked.
func (h *Hub) NewRoom() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	code, err := h.pins.Generate(func(candidate string) bool {
		_, taken := h.rooms[candidate]
		return taken
	})
	if err != nil {
		return "", err
	}

	h.rooms[code] = newRoom(code, h)
	metrics.RoomsActive.Set(float64(len(h.rooms)))
	return code, nil
}

// GetOrCreateRoom returns the room for an identifier, creating it on first
// use. Joins address rooms by whatever identifier the client presents;
// only NewRoom hands out generated PINs.
func (h *Hub) GetOrCreateRoom(id string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[id]
	if !ok {
		room = newRoom(id, h)
		h.rooms[id] = room
		metrics.RoomsActive.Set(float64(len(h.rooms)))
	}
	return room
}

// Room returns the tracked room for an identifier, or nil.
func (h *Hub) Room(id string) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[id]
}

// Run sweeps rooms that have been empty past the idle TTL until the
// context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.sweepIdle(time.Now())
		}
	}
}

func (h *Hub) sweepIdle(now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, room := range h.rooms {
		since, empty := room.idleSince()
		if empty && now.Sub(since) > h.idleTtl {
			delete(h.rooms, id)
			log.Debug().Str("room", id).Msg("reclaimed idle room")
		}
	}
	metrics.RoomsActive.Set(float64(len(h.rooms)))
}
