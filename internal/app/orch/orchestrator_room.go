package orch

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/coderoom/internal/domain"
	"github.com/dkeye/coderoom/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) CreateRoom(ctx context.Context, conn domain.ConnID, m protocol.CreateRoom) {
	if o.inOtherRoom(ctx, conn, m.RoomID) {
		o.Reject(conn, "You are already in a room.")
		return
	}
	host, err := domain.NewParticipant(conn, m.HostName, o.Registry.Token(conn), true)
	if err != nil {
		o.Reject(conn, "Invalid host name.")
		return
	}
	room, err := domain.NewRoom(m.RoomID, m.RoomName, m.Subject, host, time.Now())
	if err != nil {
		o.Reject(conn, "Room name and subject are required.")
		return
	}

	unlock := o.locks.lock(m.RoomID)
	defer unlock()

	sctx, cancel := o.storeCtx(ctx)
	defer cancel()
	created, err := o.Rooms.CreateRoom(sctx, room)
	if err != nil {
		o.fail(conn, m.RoomID, "create-room", err, "Could not create room.")
		return
	}
	o.Registry.Attach(conn, created.ID)
	log.Info().Str("module", "orch").Str("conn", string(conn)).Str("room", string(created.ID)).Msg("room created")
	o.send(conn, protocol.RoomCreated(created))
}

func (o *Orchestrator) JoinRoom(ctx context.Context, conn domain.ConnID, m protocol.JoinRoom) {
	if o.inOtherRoom(ctx, conn, m.RoomID) {
		o.Reject(conn, "You are already in a room.")
		return
	}
	p, err := domain.NewParticipant(conn, m.UserName, o.Registry.Token(conn), m.WasHost)
	if err != nil {
		o.Reject(conn, "Invalid display name.")
		return
	}

	unlock := o.locks.lock(m.RoomID)
	defer unlock()

	sctx, cancel := o.storeCtx(ctx)
	defer cancel()
	room, rejoin, err := o.Rooms.ReconcileParticipant(sctx, m.RoomID, p)
	if err != nil {
		o.fail(conn, m.RoomID, "join-room", err, "Could not join room.")
		return
	}
	o.Registry.Attach(conn, room.ID)

	if rejoin.Rejoined {
		o.carryOver(room.ID, rejoin.PrevConn, conn)
		log.Info().Str("module", "orch").Str("conn", string(conn)).Str("prev", string(rejoin.PrevConn)).Str("room", string(room.ID)).Str("name", rejoin.Participant.Name).Msg("participant rejoined")
		o.send(conn, protocol.RoomJoined(room))
		o.broadcastRoom(room.ID, protocol.SyncParticipants(room.Participants))
		return
	}

	log.Info().Str("module", "orch").Str("conn", string(conn)).Str("room", string(room.ID)).Str("name", p.Name).Msg("participant joined")
	o.broadcastRoom(room.ID, protocol.ParticipantJoined(room, rejoin.Participant))
	o.broadcastRoom(room.ID, protocol.SyncParticipants(room.Participants))
	o.send(conn, protocol.RoomJoined(room))
}

// inOtherRoom reports whether conn is attached to a room other than target.
// An attachment to a room the store no longer has is dropped on the spot.
func (o *Orchestrator) inOtherRoom(ctx context.Context, conn domain.ConnID, target domain.RoomID) bool {
	cur, ok := o.Registry.RoomOf(conn)
	if !ok || cur == target {
		return false
	}
	sctx, cancel := o.storeCtx(ctx)
	defer cancel()
	if _, err := o.Rooms.GetRoom(sctx, cur); !errors.Is(err, domain.ErrNotFound) {
		return true
	}
	o.Registry.Detach(conn)
	log.Info().Str("module", "orch").Str("conn", string(conn)).Str("room", string(cur)).Msg("dropped stale room")
	return false
}

// carryOver moves the transient state of a replaced connection onto its
// successor. A host mute survives the reconnect.
func (o *Orchestrator) carryOver(room domain.RoomID, prev, next domain.ConnID) {
	if prev == "" || prev == next {
		return
	}
	wasMuted := o.Registry.IsMuted(room, prev)
	if o.Registry.InRoom(prev, room) {
		o.Registry.Detach(prev)
	}
	o.Registry.SetUnmuted(room, prev)
	o.Registry.SetSelfMuted(room, prev, false)
	if wasMuted {
		o.Registry.SetMuted(room, next)
		o.send(next, protocol.YouWereMuted())
	}
}

func (o *Orchestrator) RemoveParticipant(ctx context.Context, conn domain.ConnID, m protocol.RemoveParticipant) {
	unlock := o.locks.lock(m.RoomID)
	defer unlock()

	sctx, cancel := o.storeCtx(ctx)
	defer cancel()
	if _, err := o.Rooms.GetRoom(sctx, m.RoomID); err != nil {
		o.fail(conn, m.RoomID, "remove-participant", err, "Could not remove participant.")
		return
	}
	room, removed, err := o.Rooms.RemoveParticipant(sctx, m.RoomID, m.SocketID)
	if errors.Is(err, domain.ErrNotFound) {
		o.Reject(conn, msgParticipantNotFound)
		return
	}
	if err != nil {
		o.fail(conn, m.RoomID, "remove-participant", err, "Could not remove participant.")
		return
	}

	o.send(m.SocketID, protocol.YouWereRemoved())
	if cur, ok := o.Registry.RoomOf(m.SocketID); ok && cur == m.RoomID {
		o.Registry.Detach(m.SocketID)
	}
	log.Info().Str("module", "orch").Str("conn", string(conn)).Str("target", string(m.SocketID)).Str("room", string(m.RoomID)).Msg("participant removed")
	o.broadcastRoom(room.ID, protocol.ParticipantLeft(room, removed))
	o.broadcastRoom(room.ID, protocol.SyncParticipants(room.Participants))
}

// LeaveRoom removes the requester. A leaving host ends the session for
// everyone: session-ended goes out before the record is deleted.
func (o *Orchestrator) LeaveRoom(ctx context.Context, conn domain.ConnID, m protocol.LeaveRoom) {
	unlock := o.locks.lock(m.RoomID)
	defer unlock()

	sctx, cancel := o.storeCtx(ctx)
	defer cancel()
	room, removed, err := o.Rooms.RemoveParticipant(sctx, m.RoomID, conn)
	if err != nil {
		o.fail(conn, m.RoomID, "leave-room", err, "Could not leave room.")
		return
	}

	if removed.IsHost {
		o.broadcastRoom(room.ID, protocol.SessionEnded(protocol.ReasonHostEnded))
		if err := o.Rooms.DeleteRoom(sctx, room.ID); err != nil {
			log.Error().Err(err).Str("module", "orch").Str("room", string(room.ID)).Msg("delete room after host left")
		}
		o.Registry.ClearRoom(room.ID)
		log.Info().Str("module", "orch").Str("conn", string(conn)).Str("room", string(room.ID)).Msg("session ended by host")
		return
	}

	o.Registry.Detach(conn)
	log.Info().Str("module", "orch").Str("conn", string(conn)).Str("room", string(room.ID)).Msg("participant left")
	o.broadcastRoom(room.ID, protocol.ParticipantLeft(room, removed))
	o.broadcastRoom(room.ID, protocol.SyncParticipants(room.Participants))
}

// Disconnect runs when the transport drops. It is a no-op for a connection
// that already left or was replaced by a rejoin.
func (o *Orchestrator) Disconnect(ctx context.Context, conn domain.ConnID) {
	defer o.Registry.ClearConnection(conn)

	sctx, cancel := o.storeCtx(ctx)
	defer cancel()
	found, _, err := o.Rooms.FindParticipantByConnection(sctx, conn)
	if errors.Is(err, domain.ErrNotFound) {
		o.Registry.Detach(conn)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("conn", string(conn)).Msg("disconnect lookup")
		o.Registry.Detach(conn)
		return
	}

	unlock := o.locks.lock(found.ID)
	defer unlock()

	room, removed, err := o.Rooms.RemoveParticipant(sctx, found.ID, conn)
	o.Registry.Detach(conn)
	if errors.Is(err, domain.ErrNotFound) {
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("conn", string(conn)).Str("room", string(found.ID)).Msg("disconnect remove")
		return
	}
	log.Info().Str("module", "orch").Str("conn", string(conn)).Str("room", string(room.ID)).Str("name", removed.Name).Msg("participant disconnected")
	o.broadcastRoom(room.ID, protocol.ParticipantLeft(room, removed))
	o.broadcastRoom(room.ID, protocol.SyncParticipants(room.Participants))
}

func (o *Orchestrator) RequestRoomState(ctx context.Context, conn domain.ConnID, m protocol.RequestRoomState) {
	sctx, cancel := o.storeCtx(ctx)
	defer cancel()
	room, err := o.Rooms.GetRoom(sctx, m.RoomID)
	if err != nil {
		o.fail(conn, m.RoomID, "request-room-state", err, "Could not load room.")
		return
	}
	o.send(conn, protocol.RoomState(room))
}

// ReapExpired ends the session for every active room the store no longer
// has, which is how TTL expiry reaches connected clients.
func (o *Orchestrator) ReapExpired(ctx context.Context) int {
	reaped := 0
	for _, id := range o.Registry.ActiveRooms() {
		if ctx.Err() != nil {
			return reaped
		}
		sctx, cancel := o.storeCtx(ctx)
		_, err := o.Rooms.GetRoom(sctx, id)
		cancel()
		if !errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if !o.reapLocked(ctx, id) {
			continue
		}
		reaped++
		log.Info().Str("module", "orch").Str("room", string(id)).Msg("room expired")
	}
	return reaped
}

// reapLocked repeats the lookup under the room lock so a room created under
// the same id after the first lookup is left alone.
func (o *Orchestrator) reapLocked(ctx context.Context, id domain.RoomID) bool {
	unlock := o.locks.lock(id)
	defer unlock()
	sctx, cancel := o.storeCtx(ctx)
	defer cancel()
	if _, err := o.Rooms.GetRoom(sctx, id); !errors.Is(err, domain.ErrNotFound) {
		return false
	}
	o.broadcastRoom(id, protocol.SessionEnded(protocol.ReasonExpired))
	o.Registry.ClearRoom(id)
	return true
}

// RunReaper calls ReapExpired every interval until ctx is done.
func (o *Orchestrator) RunReaper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			o.ReapExpired(ctx)
		}
	}
}
