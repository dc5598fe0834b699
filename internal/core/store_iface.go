package core

import (
	"context"

	"github.com/dkeye/coderoom/internal/domain"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks . RoomStore

// RoomStore is the durable room record. Every mutation is atomic per room and
// a room deleted or expired mid-update yields domain.ErrNotFound instead of a
// partial write. Timeouts and connection failures wrap domain.ErrStoreUnavailable.
type RoomStore interface {
	// CreateRoom fails with domain.ErrAlreadyExists when the id is live.
	CreateRoom(ctx context.Context, room *domain.Room) (*domain.Room, error)
	GetRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error)

	// UpdateDocument overwrites the buffer unconditionally (last write wins).
	UpdateDocument(ctx context.Context, id domain.RoomID, content string) error
	UpdateLanguage(ctx context.Context, id domain.RoomID, language string) error
	// SwitchLanguage sets the language and, when the current buffer is a
	// placeholder and snippet is non-empty, replaces the buffer with snippet
	// in the same atomic step. It reports whether the buffer was replaced.
	SwitchLanguage(ctx context.Context, id domain.RoomID, language, snippet string) (bool, error)

	AddParticipant(ctx context.Context, id domain.RoomID, p domain.Participant) (*domain.Room, error)
	// ReconcileParticipant runs domain.Room.Reconcile atomically.
	ReconcileParticipant(ctx context.Context, id domain.RoomID, p domain.Participant) (*domain.Room, domain.Rejoin, error)
	// RemoveParticipant returns domain.ErrNotFound when either the room or the
	// connection's roster entry is missing.
	RemoveParticipant(ctx context.Context, id domain.RoomID, conn domain.ConnID) (*domain.Room, domain.Participant, error)
	// FindParticipantByConnection scans every live room.
	FindParticipantByConnection(ctx context.Context, conn domain.ConnID) (*domain.Room, domain.Participant, error)

	DeleteRoom(ctx context.Context, id domain.RoomID) error
	Ping(ctx context.Context) error
}
