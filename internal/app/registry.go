package app

import (
	"context"
	"sync"

	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	Room   domain.RoomID
	Signal core.SignalConnection
	Token  string
	Cancel context.CancelFunc
}

type connSet map[domain.ConnID]struct{}

// Registry is the process-wide transient session state: live connections,
// the room membership index used for fan-out, and per-room mute sets. None
// of it is persisted.
type Registry struct {
	mu        sync.RWMutex
	conns     map[domain.ConnID]*connEntry
	rooms     map[domain.RoomID]connSet
	muted     map[domain.RoomID]connSet
	selfMuted map[domain.RoomID]connSet
}

func NewRegistry() *Registry {
	return &Registry{
		conns:     make(map[domain.ConnID]*connEntry),
		rooms:     make(map[domain.RoomID]connSet),
		muted:     make(map[domain.RoomID]connSet),
		selfMuted: make(map[domain.RoomID]connSet),
	}
}

// Member is a snapshot of one attached connection.
type Member struct {
	ID     domain.ConnID
	Signal core.SignalConnection
}

func (r *Registry) Bind(id domain.ConnID, sig core.SignalConnection, token string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connEntry{Signal: sig, Token: token, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("bound connection")
}

// Unbind forgets the connection entirely, including its room and mute state.
func (r *Registry) Unbind(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detachLocked(id)
	r.clearConnLocked(id)
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unbind connection")
}

func (r *Registry) Signal(id domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return e.Signal, true
}

func (r *Registry) Token(id domain.ConnID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.Token
	}
	return ""
}

// Attach associates a bound connection with a room, leaving any previous room.
func (r *Registry) Attach(id domain.ConnID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return false
	}
	if e.Room != "" && e.Room != room {
		r.detachLocked(id)
	}
	e.Room = room
	set, ok := r.rooms[room]
	if !ok {
		set = make(connSet)
		r.rooms[room] = set
	}
	set[id] = struct{}{}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("room", string(room)).Msg("attached")
	return true
}

// Detach removes the room association and the connection's mute state in
// that room. The connection itself stays bound.
func (r *Registry) Detach(id domain.ConnID) (domain.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.detachLocked(id)
}

func (r *Registry) detachLocked(id domain.ConnID) (domain.RoomID, bool) {
	e, ok := r.conns[id]
	if !ok || e.Room == "" {
		return "", false
	}
	room := e.Room
	e.Room = ""
	if set, ok := r.rooms[room]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(r.rooms, room)
		}
	}
	removeFrom(r.muted, room, id)
	removeFrom(r.selfMuted, room, id)
	return room, true
}

func (r *Registry) RoomOf(id domain.ConnID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok || e.Room == "" {
		return "", false
	}
	return e.Room, true
}

func (r *Registry) InRoom(id domain.ConnID, room domain.RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[room][id]
	return ok
}

// MembersOfRoom snapshots the connections attached to room.
func (r *Registry) MembersOfRoom(room domain.RoomID) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.rooms[room]
	out := make([]Member, 0, len(set))
	for id := range set {
		if e, ok := r.conns[id]; ok {
			out = append(out, Member{ID: id, Signal: e.Signal})
		}
	}
	return out
}

// ActiveRooms lists rooms with at least one attached connection.
func (r *Registry) ActiveRooms() []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RoomID, 0, len(r.rooms))
	for room := range r.rooms {
		out = append(out, room)
	}
	return out
}

// ClearRoom drops every association and mute entry of a room that no longer
// exists.
func (r *Registry) ClearRoom(room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.rooms[room] {
		if e, ok := r.conns[id]; ok && e.Room == room {
			e.Room = ""
		}
	}
	delete(r.rooms, room)
	delete(r.muted, room)
	delete(r.selfMuted, room)
	log.Info().Str("module", "app.registry").Str("room", string(room)).Msg("cleared room")
}

func (r *Registry) SetMuted(room domain.RoomID, id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	addTo(r.muted, room, id)
}

func (r *Registry) SetUnmuted(room domain.RoomID, id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removeFrom(r.muted, room, id)
}

// IsMuted reports host-mute state.
func (r *Registry) IsMuted(room domain.RoomID, id domain.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.muted[room][id]
	return ok
}

func (r *Registry) SetSelfMuted(room domain.RoomID, id domain.ConnID, muted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if muted {
		addTo(r.selfMuted, room, id)
	} else {
		removeFrom(r.selfMuted, room, id)
	}
}

func (r *Registry) IsSelfMuted(room domain.RoomID, id domain.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.selfMuted[room][id]
	return ok
}

// ClearConnection removes id from every room's mute sets.
func (r *Registry) ClearConnection(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearConnLocked(id)
}

func (r *Registry) clearConnLocked(id domain.ConnID) {
	for room := range r.muted {
		removeFrom(r.muted, room, id)
	}
	for room := range r.selfMuted {
		removeFrom(r.selfMuted, room, id)
	}
}

// Cancel stops the connection's pumps; the gateway then runs disconnect.
func (r *Registry) Cancel(id domain.ConnID) bool {
	r.mu.RLock()
	e, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("canceled connection")
	return true
}

// Counts returns the number of bound connections and active rooms.
func (r *Registry) Counts() (conns, rooms int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns), len(r.rooms)
}

func addTo(m map[domain.RoomID]connSet, room domain.RoomID, id domain.ConnID) {
	set, ok := m[room]
	if !ok {
		set = make(connSet)
		m[room] = set
	}
	set[id] = struct{}{}
}

func removeFrom(m map[domain.RoomID]connSet, room domain.RoomID, id domain.ConnID) {
	set, ok := m[room]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(m, room)
	}
}
