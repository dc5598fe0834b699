package memory

import (
	"context"
	"testing"
	"time"

	"github.com/dkeye/coderoom/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newRoom(t *testing.T, id string, now time.Time) *domain.Room {
	t.Helper()
	host, err := domain.NewParticipant("s-host", "Ada", "tok-ada", true)
	require.NoError(t, err)
	r, err := domain.NewRoom(domain.RoomID(id), "Pairing", "Go", host, now)
	require.NoError(t, err)
	return r
}

func TestCreateRoomTwice(t *testing.T) {
	ctx := context.Background()
	s := New(time.Hour, time.Minute)
	r := newRoom(t, "r1", time.Now())

	_, err := s.CreateRoom(ctx, r)
	require.NoError(t, err)
	require.NoError(t, s.UpdateDocument(ctx, "r1", "x := 1"))

	_, err = s.CreateRoom(ctx, newRoom(t, "r1", time.Now()))
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	got, err := s.GetRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "x := 1", got.Content)
}

func TestGetRoomReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New(time.Hour, time.Minute)
	_, err := s.CreateRoom(ctx, newRoom(t, "r1", time.Now()))
	require.NoError(t, err)

	got, err := s.GetRoom(ctx, "r1")
	require.NoError(t, err)
	got.Participants[0].Name = "mutated"

	again, err := s.GetRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", again.Participants[0].Name)
}

func TestMissingRoom(t *testing.T) {
	ctx := context.Background()
	s := New(time.Hour, time.Minute)

	_, err := s.GetRoom(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.UpdateDocument(ctx, "nope", "x"), domain.ErrNotFound)
	assert.ErrorIs(t, s.UpdateLanguage(ctx, "nope", "go"), domain.ErrNotFound)
	_, _, err = s.ReconcileParticipant(ctx, "nope", domain.Participant{ConnID: "a", Name: "A"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, s.DeleteRoom(ctx, "nope"))
}

func TestReconcileParticipant(t *testing.T) {
	ctx := context.Background()
	s := New(time.Hour, time.Minute)
	_, err := s.CreateRoom(ctx, newRoom(t, "r1", time.Now()))
	require.NoError(t, err)

	room, rj, err := s.ReconcileParticipant(ctx, "r1", domain.Participant{ConnID: "s-bo", Name: "Bo"})
	require.NoError(t, err)
	assert.False(t, rj.Rejoined)
	assert.Len(t, room.Participants, 2)

	room, rj, err = s.ReconcileParticipant(ctx, "r1", domain.Participant{ConnID: "s-bo2", Name: "Bo"})
	require.NoError(t, err)
	assert.True(t, rj.Rejoined)
	assert.Equal(t, domain.ConnID("s-bo"), rj.PrevConn)
	assert.Len(t, room.Participants, 2)

	_, _, err = s.FindParticipantByConnection(ctx, "s-bo")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	found, p, err := s.FindParticipantByConnection(ctx, "s-bo2")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomID("r1"), found.ID)
	assert.Equal(t, "Bo", p.Name)
}

func TestRemoveParticipant(t *testing.T) {
	ctx := context.Background()
	s := New(time.Hour, time.Minute)
	_, err := s.CreateRoom(ctx, newRoom(t, "r1", time.Now()))
	require.NoError(t, err)
	_, err = s.AddParticipant(ctx, "r1", domain.Participant{ConnID: "s-bo", Name: "Bo"})
	require.NoError(t, err)

	room, removed, err := s.RemoveParticipant(ctx, "r1", "s-bo")
	require.NoError(t, err)
	assert.Equal(t, "Bo", removed.Name)
	assert.Len(t, room.Participants, 1)

	_, _, err = s.RemoveParticipant(ctx, "r1", "s-bo")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSwitchLanguage(t *testing.T) {
	ctx := context.Background()
	s := New(time.Hour, time.Minute)
	_, err := s.CreateRoom(ctx, newRoom(t, "r1", time.Now()))
	require.NoError(t, err)

	snippet, ok := domain.StarterSnippet("python")
	require.True(t, ok)
	replaced, err := s.SwitchLanguage(ctx, "r1", "python", snippet)
	require.NoError(t, err)
	assert.True(t, replaced)

	require.NoError(t, s.UpdateDocument(ctx, "r1", "print('mine')"))
	goSnippet, _ := domain.StarterSnippet("go")
	replaced, err = s.SwitchLanguage(ctx, "r1", "go", goSnippet)
	require.NoError(t, err)
	assert.False(t, replaced)

	got, err := s.GetRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "go", got.Language)
	assert.Equal(t, "print('mine')", got.Content)
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := New(time.Hour, time.Minute).WithClock(c.now)
	_, err := s.CreateRoom(ctx, newRoom(t, "r1", c.t))
	require.NoError(t, err)

	c.t = c.t.Add(59 * time.Minute)
	require.NoError(t, s.UpdateDocument(ctx, "r1", "still here"))
	assert.Equal(t, 1, s.Len())

	c.t = c.t.Add(time.Minute)
	_, err = s.GetRoom(ctx, "r1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// an expired id can be created again
	_, err = s.CreateRoom(ctx, newRoom(t, "r1", c.t))
	assert.NoError(t, err)
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := New(time.Hour, time.Minute).WithClock(c.now)
	_, err := s.CreateRoom(ctx, newRoom(t, "old", c.t))
	require.NoError(t, err)
	_, err = s.CreateRoom(ctx, newRoom(t, "new", c.t.Add(30*time.Minute)))
	require.NoError(t, err)

	c.t = c.t.Add(time.Hour)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New(time.Hour, time.Minute)
	_, err := s.GetRoom(ctx, "r1")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, s.Ping(ctx), domain.ErrStoreUnavailable)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(time.Hour, 5*time.Millisecond)
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
