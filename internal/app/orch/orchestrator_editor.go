package orch

import (
	"context"

	"github.com/dkeye/coderoom/internal/domain"
	"github.com/dkeye/coderoom/internal/protocol"
	"github.com/rs/zerolog/log"
)

// CodeUpdate overwrites the shared buffer (last write wins) and mirrors it to
// everyone else in the room.
func (o *Orchestrator) CodeUpdate(ctx context.Context, conn domain.ConnID, m protocol.CodeUpdate) {
	unlock := o.locks.lock(m.RoomID)
	defer unlock()

	sctx, cancel := o.storeCtx(ctx)
	defer cancel()
	if err := o.Rooms.UpdateDocument(sctx, m.RoomID, m.Content); err != nil {
		o.fail(conn, m.RoomID, "code-update", err, "Could not update code.")
		return
	}
	o.broadcastFrom(m.RoomID, conn, protocol.CodeMirrored(m.Content))
}

// LanguageChange switches the room language. An untouched buffer is swapped
// for the language's starter snippet and the whole room, sender included,
// converges on it.
func (o *Orchestrator) LanguageChange(ctx context.Context, conn domain.ConnID, m protocol.LanguageChange) {
	unlock := o.locks.lock(m.RoomID)
	defer unlock()

	sctx, cancel := o.storeCtx(ctx)
	defer cancel()

	var (
		replaced bool
		err      error
	)
	snippet, ok := domain.StarterSnippet(m.Language)
	if ok {
		replaced, err = o.Rooms.SwitchLanguage(sctx, m.RoomID, m.Language, snippet)
	} else {
		err = o.Rooms.UpdateLanguage(sctx, m.RoomID, m.Language)
	}
	if err != nil {
		o.fail(conn, m.RoomID, "language-change", err, "Could not change language.")
		return
	}
	o.broadcastFrom(m.RoomID, conn, protocol.LanguageUpdated(m.Language))
	if replaced {
		log.Debug().Str("module", "orch").Str("room", string(m.RoomID)).Str("language", m.Language).Msg("starter snippet applied")
		o.broadcastRoom(m.RoomID, protocol.LanguageChanged(m.Language, snippet))
		o.broadcastRoom(m.RoomID, protocol.CodeMirrored(snippet))
	}
}

// CursorMove is a stateless relay.
func (o *Orchestrator) CursorMove(conn domain.ConnID, m protocol.CursorMove) {
	if !o.Registry.InRoom(conn, m.RoomID) {
		o.Reject(conn, msgRoomNotFound)
		return
	}
	o.broadcastFrom(m.RoomID, conn, protocol.CursorMirrored(conn, m.Label, m.Selection.Position()))
}
