package orch

import (
	"context"

	"github.com/dkeye/coderoom/internal/domain"
	"github.com/dkeye/coderoom/internal/protocol"
	"github.com/rs/zerolog/log"
)

// MuteParticipant host-mutes target. Repeating it is harmless and re-emits
// the notifications.
func (o *Orchestrator) MuteParticipant(ctx context.Context, conn domain.ConnID, room domain.RoomID, target domain.ConnID) {
	unlock := o.locks.lock(room)
	defer unlock()

	if !o.roomExists(ctx, conn, room, "mute-participant") {
		return
	}
	o.Registry.SetMuted(room, target)
	log.Info().Str("module", "orch").Str("conn", string(conn)).Str("target", string(target)).Str("room", string(room)).Msg("muted")
	o.send(target, protocol.YouWereMuted())
	o.broadcastRoom(room, protocol.ParticipantMuted(target))
}

// UnmuteParticipant is the only way to clear a host mute.
func (o *Orchestrator) UnmuteParticipant(ctx context.Context, conn domain.ConnID, room domain.RoomID, target domain.ConnID) {
	unlock := o.locks.lock(room)
	defer unlock()

	if !o.roomExists(ctx, conn, room, "unmute-participant") {
		return
	}
	o.Registry.SetUnmuted(room, target)
	log.Info().Str("module", "orch").Str("conn", string(conn)).Str("target", string(target)).Str("room", string(room)).Msg("unmuted")
	o.send(target, protocol.YouWereUnmuted(o.Registry.IsSelfMuted(room, target)))
	o.broadcastRoom(room, protocol.ParticipantUnmuted(target))
}

// SelfMuted records the participant's own toggle and echoes the confirmed
// state to the whole room, sender included. It never clears a host mute.
func (o *Orchestrator) SelfMuted(ctx context.Context, conn domain.ConnID, m protocol.SelfMuted) {
	if !o.roomExists(ctx, conn, m.RoomID, "participant-self-muted") {
		return
	}
	o.Registry.SetSelfMuted(m.RoomID, conn, m.IsMuted)
	hostMuted := o.Registry.IsMuted(m.RoomID, conn)
	o.broadcastRoom(m.RoomID, protocol.ParticipantMuteStatus(conn, m.IsMuted, m.IsMuted || hostMuted))
}

// AudioChunk relays an opaque audio payload to the other participants.
// Chunks from a host-muted connection are dropped without notice.
func (o *Orchestrator) AudioChunk(conn domain.ConnID, m protocol.AudioChunk) {
	if !o.Registry.InRoom(conn, m.RoomID) {
		o.Reject(conn, msgRoomNotFound)
		return
	}
	if o.Registry.IsMuted(m.RoomID, conn) {
		return
	}
	o.broadcastFrom(m.RoomID, conn, protocol.AudioStream(conn, m.AudioData, m.Timestamp))
}

// SpeakerStatus mirrors the speaking indicator to the whole room.
func (o *Orchestrator) SpeakerStatus(conn domain.ConnID, m protocol.SpeakerStatus) {
	if !o.Registry.InRoom(conn, m.RoomID) {
		o.Reject(conn, msgRoomNotFound)
		return
	}
	o.broadcastRoom(m.RoomID, protocol.ParticipantSpeaking(conn, m.IsSpeaking))
}

func (o *Orchestrator) roomExists(ctx context.Context, conn domain.ConnID, room domain.RoomID, op string) bool {
	sctx, cancel := o.storeCtx(ctx)
	defer cancel()
	if _, err := o.Rooms.GetRoom(sctx, room); err != nil {
		o.fail(conn, room, op, err, "Could not load room.")
		return false
	}
	return true
}
