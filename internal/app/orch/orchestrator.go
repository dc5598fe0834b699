package orch

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/dkeye/coderoom/internal/app"
	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
	"github.com/dkeye/coderoom/internal/protocol"
	"github.com/rs/zerolog/log"
)

const defaultStoreTimeout = 5 * time.Second

// User-facing error messages.
const (
	msgRoomNotFound        = "Room not found."
	msgRoomExists          = "Room already exists."
	msgParticipantNotFound = "Participant not found."
	msgStoreUnavailable    = "Session store unavailable."
	msgBadPayload          = "bad_payload"
	msgInternal            = "Internal error."
)

// Orchestrator runs the room session protocol: it validates each inbound
// event against the store and registry, applies the mutation and fans the
// resulting events out through the registry's connections.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomStore
	Policy   app.Policy
	// StoreTimeout bounds every store round trip.
	StoreTimeout time.Duration

	locks roomLocks
}

// Handle dispatches one decoded inbound event from conn.
func (o *Orchestrator) Handle(ctx context.Context, conn domain.ConnID, msg protocol.Inbound) {
	switch m := msg.(type) {
	case protocol.CreateRoom:
		o.CreateRoom(ctx, conn, m)
	case protocol.JoinRoom:
		o.JoinRoom(ctx, conn, m)
	case protocol.CodeUpdate:
		o.CodeUpdate(ctx, conn, m)
	case protocol.LanguageChange:
		o.LanguageChange(ctx, conn, m)
	case protocol.CursorMove:
		o.CursorMove(conn, m)
	case protocol.MuteParticipant:
		o.MuteParticipant(ctx, conn, m.RoomID, m.SocketID)
	case protocol.UnmuteParticipant:
		o.UnmuteParticipant(ctx, conn, m.RoomID, m.SocketID)
	case protocol.SelfMuted:
		o.SelfMuted(ctx, conn, m)
	case protocol.AudioChunk:
		o.AudioChunk(conn, m)
	case protocol.SpeakerStatus:
		o.SpeakerStatus(conn, m)
	case protocol.RemoveParticipant:
		o.RemoveParticipant(ctx, conn, m)
	case protocol.LeaveRoom:
		o.LeaveRoom(ctx, conn, m)
	case protocol.RequestRoomState:
		o.RequestRoomState(ctx, conn, m)
	default:
		log.Warn().Str("module", "orch").Str("conn", string(conn)).Msg("unhandled event")
		o.Reject(conn, msgBadPayload)
	}
}

// storeCtx detaches from the connection's cancellation so a started
// mutation always completes, and bounds it by the store timeout.
func (o *Orchestrator) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := o.StoreTimeout
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

// Reject sends an error event to one connection.
func (o *Orchestrator) Reject(conn domain.ConnID, message string) {
	o.send(conn, protocol.Error(message))
}

// fail logs store failures and reports err to the requester.
func (o *Orchestrator) fail(conn domain.ConnID, room domain.RoomID, op string, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		o.Reject(conn, msgRoomNotFound)
	case errors.Is(err, domain.ErrAlreadyExists):
		o.Reject(conn, msgRoomExists)
	case errors.Is(err, domain.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		log.Error().Err(err).Str("module", "orch").Str("op", op).Str("room", string(room)).Msg("store unavailable")
		o.Reject(conn, msgStoreUnavailable)
	default:
		log.Error().Err(err).Str("module", "orch").Str("op", op).Str("room", string(room)).Msg("handler failed")
		o.Reject(conn, fallback)
	}
}

func (o *Orchestrator) send(to domain.ConnID, ev protocol.Event) {
	sig, ok := o.Registry.Signal(to)
	if !ok {
		return
	}
	frame, err := protocol.Encode(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode")
		return
	}
	if err := sig.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(to)).Str("type", string(ev.Type)).Msg("send failed")
	}
}

// broadcastRoom delivers ev to every connection attached to room.
func (o *Orchestrator) broadcastRoom(room domain.RoomID, ev protocol.Event) int {
	return o.broadcast(room, "", ev)
}

// broadcastFrom delivers ev to every connection in room except from.
func (o *Orchestrator) broadcastFrom(room domain.RoomID, from domain.ConnID, ev protocol.Event) int {
	return o.broadcast(room, from, ev)
}

func (o *Orchestrator) broadcast(room domain.RoomID, skip domain.ConnID, ev protocol.Event) int {
	frame, err := protocol.Encode(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode")
		return 0
	}
	sent := 0
	var slow []domain.ConnID
	for _, m := range o.Registry.MembersOfRoom(room) {
		if m.ID == skip {
			continue
		}
		if err := m.Signal.TrySend(core.Frame(frame)); err != nil {
			if errors.Is(err, core.ErrBackpressure) {
				slow = append(slow, m.ID)
			}
			continue
		}
		sent++
	}
	log.Debug().Str("module", "orch").Str("room", string(room)).Str("type", string(ev.Type)).Int("sent_to", sent).Int("dropped", len(slow)).Msg("broadcast result")
	if o.Policy == nil {
		return sent
	}
	for _, id := range slow {
		switch o.Policy.OnBackPressure(room, id) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("room", string(room)).Str("conn", string(id)).Msg("kicking slow member")
			o.Registry.Cancel(id)
		case app.NoAction:
		}
	}
	return sent
}

// roomLocks serializes roster and document mutations per room so that a
// store write and the broadcast describing it are never reordered.
type roomLocks struct {
	stripes [64]sync.Mutex
}

func (l *roomLocks) lock(room domain.RoomID) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(room))
	mu := &l.stripes[h.Sum32()%uint32(len(l.stripes))]
	mu.Lock()
	return mu.Unlock
}
