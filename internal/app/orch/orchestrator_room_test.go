package orch

import (
	"testing"
	"time"

	"github.com/dkeye/coderoom/internal/domain"
	"github.com/dkeye/coderoom/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlgoClassSession(t *testing.T) {
	h := newHarness(t)
	ada := h.connect("s-ada", "tok-ada")
	bo := h.connect("s-bo", "tok-bo")

	h.send("s-ada", `{"type":"create-room","data":{"roomId":"R1","roomName":"Algo Class","subject":"Algorithms","hostName":"Ada"}}`)
	var created domain.Room
	require.True(t, find(t, ada.take(), protocol.KindRoomCreated, &created))
	require.Len(t, created.Participants, 1)
	assert.Equal(t, "Ada", created.Participants[0].Name)
	assert.True(t, created.Participants[0].IsHost)

	h.send("s-bo", `{"type":"join-room","data":{"roomId":"R1","userName":"Bo"}}`)
	roster := h.room("R1").Participants
	require.Len(t, roster, 2)
	assert.Equal(t, "Bo", roster[1].Name)
	assert.False(t, roster[1].IsHost)
	var joined protocol.ParticipantJoinedData
	require.True(t, find(t, ada.take(), protocol.KindParticipantJoined, &joined))
	assert.Equal(t, "Bo", joined.NewParticipant.Name)
	assert.True(t, find(t, bo.take(), protocol.KindRoomJoined, nil))

	h.send("s-ada", `{"type":"code-update","data":{"roomId":"R1","content":"print(1)"}}`)
	var mirrored protocol.ContentData
	require.True(t, find(t, bo.take(), protocol.KindCodeMirrored, &mirrored))
	assert.Equal(t, "print(1)", mirrored.Content)
	assert.Empty(t, ada.take(), "sender does not get its own edit back")

	h.send("s-ada", `{"type":"leave-room","data":{"roomId":"R1"}}`)
	var ended protocol.ReasonData
	require.True(t, find(t, bo.take(), protocol.KindSessionEnded, &ended))
	assert.Equal(t, protocol.ReasonHostEnded, ended.Reason)
	assert.True(t, find(t, ada.take(), protocol.KindSessionEnded, nil))

	_, err := h.store.GetRoom(h.ctx, "R1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cy := h.connect("s-cy", "")
	h.send("s-cy", `{"type":"join-room","data":{"roomId":"R1","userName":"Cy"}}`)
	assert.Equal(t, "Room not found.", errorMessage(t, cy.take()))
}

func TestCreateRoomTwice(t *testing.T) {
	h := newHarness(t)
	h.createAlgoRoom()
	before := h.room("R1")

	cy := h.connect("s-cy", "")
	h.send("s-cy", `{"type":"create-room","data":{"roomId":"R1","roomName":"Other","subject":"Other","hostName":"Cy"}}`)
	assert.Equal(t, "Room already exists.", errorMessage(t, cy.take()))
	assert.Equal(t, before, h.room("R1"))
	_, attached := h.o.Registry.RoomOf("s-cy")
	assert.False(t, attached)
}

func TestCreateRoomValidation(t *testing.T) {
	h := newHarness(t)
	h.createAlgoRoom()

	h.send("s-bo", `{"type":"create-room","data":{"roomId":"R2","roomName":"x","subject":"y","hostName":"Bo"}}`)
	assert.Equal(t, "You are already in a room.", errorMessage(t, h.conns["s-bo"].take()))

	cy := h.connect("s-cy", "")
	h.send("s-cy", `{"type":"create-room","data":{"roomId":"R3","roomName":"  ","subject":"y","hostName":"Cy"}}`)
	assert.Equal(t, "Room name and subject are required.", errorMessage(t, cy.take()))
}

func TestRejoinByNameSwapsConnection(t *testing.T) {
	h := newHarness(t)
	h.createAlgoRoom()

	bo2 := h.connect("s-bo2", "")
	h.send("s-bo2", `{"type":"join-room","data":{"roomId":"R1","userName":"Bo"}}`)

	roster := h.room("R1").Participants
	require.Len(t, roster, 2)
	assert.Equal(t, domain.ConnID("s-bo2"), roster[1].ConnID)
	assert.False(t, h.o.Registry.InRoom("s-bo", "R1"))
	assert.True(t, h.o.Registry.InRoom("s-bo2", "R1"))

	assert.True(t, find(t, bo2.take(), protocol.KindRoomJoined, nil))
	adaEvents := h.conns["s-ada"].take()
	assert.True(t, find(t, adaEvents, protocol.KindSyncParticipants, nil))
	assert.False(t, find(t, adaEvents, protocol.KindParticipantJoined, nil))
}

func TestSharedBrowserTokenNewNameJoinsAsGuest(t *testing.T) {
	h := newHarness(t)
	tab1 := h.connect("s-tab1", "tok-browser")
	h.connect("s-tab2", "tok-browser")
	h.send("s-tab1", `{"type":"create-room","data":{"roomId":"R1","roomName":"Algo Class","subject":"Algorithms","hostName":"Ada"}}`)
	h.drain()

	h.send("s-tab2", `{"type":"join-room","data":{"roomId":"R1","userName":"Bo"}}`)

	roster := h.room("R1").Participants
	require.Len(t, roster, 2)
	assert.Equal(t, domain.Participant{ConnID: "s-tab1", Name: "Ada", IsHost: true, ClientToken: "tok-browser"}, roster[0])
	assert.Equal(t, "Bo", roster[1].Name)
	assert.Equal(t, domain.ConnID("s-tab2"), roster[1].ConnID)
	assert.False(t, roster[1].IsHost)

	assert.True(t, h.o.Registry.InRoom("s-tab1", "R1"))
	assert.True(t, h.o.Registry.InRoom("s-tab2", "R1"))
	assert.True(t, find(t, tab1.take(), protocol.KindParticipantJoined, nil))
}

func TestJoinNewNameTakesAssertedHostFlag(t *testing.T) {
	h := newHarness(t)
	h.createAlgoRoom()

	h.connect("s-ada2", "tok-ada")
	h.send("s-ada2", `{"type":"join-room","data":{"roomId":"R1","userName":"Ada L.","wasHost":true}}`)

	roster := h.room("R1").Participants
	require.Len(t, roster, 3)
	assert.Equal(t, domain.ConnID("s-ada"), roster[0].ConnID)
	assert.Equal(t, "Ada L.", roster[2].Name)
	assert.True(t, roster[2].IsHost)
	assert.True(t, h.o.Registry.InRoom("s-ada", "R1"))
}

func TestJoinNovelNameGrowsRoster(t *testing.T) {
	h := newHarness(t)
	h.createAlgoRoom()

	h.connect("s-cy", "")
	h.send("s-cy", `{"type":"join-room","data":{"roomId":"R1","userName":"Cy"}}`)
	assert.Len(t, h.room("R1").Participants, 3)
	assert.True(t, find(t, h.conns["s-ada"].take(), protocol.KindParticipantJoined, nil))
	assert.True(t, find(t, h.conns["s-bo"].take(), protocol.KindParticipantJoined, nil))
}

func TestHostMuteSurvivesRejoin(t *testing.T) {
	h := newHarness(t)
	h.createAlgoRoom()
	h.send("s-ada", `{"type":"mute-participant","data":{"roomId":"R1","socketId":"s-bo"}}`)
	h.drain()

	bo2 := h.connect("s-bo2", "")
	h.send("s-bo2", `{"type":"join-room","data":{"roomId":"R1","userName":"Bo"}}`)

	assert.True(t, h.o.Registry.IsMuted("R1", "s-bo2"))
	assert.False(t, h.o.Registry.IsMuted("R1", "s-bo"))
	assert.True(t, find(t, bo2.take(), protocol.KindYouWereMuted, nil))
}

func TestDisconnectPurgesParticipant(t *testing.T) {
	h := newHarness(t)
	h.createAlgoRoom()
	h.send("s-ada", `{"type":"mute-participant","data":{"roomId":"R1","socketId":"s-bo"}}`)
	h.drain()

	h.o.Disconnect(h.ctx, "s-bo")

	var left protocol.ParticipantLeftData
	require.True(t, find(t, h.conns["s-ada"].take(), protocol.KindParticipantLeft, &left))
	assert.Equal(t, "Bo", left.ParticipantName)
	assert.Equal(t, domain.ConnID("s-bo"), left.ParticipantID)
	assert.Len(t, h.room("R1").Participants, 1)
	assert.False(t, h.o.Registry.IsMuted("R1", "s-bo"))
	assert.False(t, h.o.Registry.InRoom("s-bo", "R1"))
}

func TestLeaveThenDisconnectBroadcastsOnce(t *testing.T) {
	h := newHarness(t)
	h.createAlgoRoom()

	h.send("s-bo", `{"type":"leave-room","data":{"roomId":"R1"}}`)
	assert.True(t, find(t, h.conns["s-ada"].take(), protocol.KindParticipantLeft, nil))

	h.o.Disconnect(h.ctx, "s-bo")
	assert.Empty(t, h.conns["s-ada"].take())
}

func TestHostDisconnectKeepsSession(t *testing.T) {
	h := newHarness(t)
	h.createAlgoRoom()

	h.o.Disconnect(h.ctx, "s-ada")

	bo := h.conns["s-bo"].take()
	assert.True(t, find(t, bo, protocol.KindParticipantLeft, nil))
	assert.False(t, find(t, bo, protocol.KindSessionEnded, nil))
	assert.Len(t, h.room("R1").Participants, 1)
}

func TestRemoveParticipant(t *testing.T) {
	h := newHarness(t)
	h.createAlgoRoom()

	h.send("s-ada", `{"type":"remove-participant","data":{"roomId":"R1","socketId":"s-bo"}}`)

	var reason protocol.ReasonData
	require.True(t, find(t, h.conns["s-bo"].take(), protocol.KindYouWereRemoved, &reason))
	assert.Equal(t, protocol.ReasonRemovedByHost, reason.Reason)
	assert.True(t, find(t, h.conns["s-ada"].take(), protocol.KindParticipantLeft, nil))
	assert.False(t, h.o.Registry.InRoom("s-bo", "R1"))
	assert.Len(t, h.room("R1").Participants, 1)

	h.send("s-ada", `{"type":"remove-participant","data":{"roomId":"R1","socketId":"s-bo"}}`)
	assert.Equal(t, "Participant not found.", errorMessage(t, h.conns["s-ada"].take()))
}

func TestRequestRoomState(t *testing.T) {
	h := newHarness(t)
	h.createAlgoRoom()
	h.send("s-ada", `{"type":"code-update","data":{"roomId":"R1","content":"x = 1"}}`)
	h.drain()

	h.send("s-bo", `{"type":"request-room-state","data":{"roomId":"R1"}}`)
	var st protocol.RoomStateData
	require.True(t, find(t, h.conns["s-bo"].take(), protocol.KindRoomState, &st))
	assert.Equal(t, "x = 1", st.CodeContent)
	assert.Equal(t, domain.DefaultLanguage, st.Language)
}

func TestReapExpired(t *testing.T) {
	h := newHarness(t)
	h.createAlgoRoom()

	assert.Equal(t, 0, h.o.ReapExpired(h.ctx))

	later := time.Now().Add(2 * time.Hour)
	h.store.WithClock(func() time.Time { return later })
	assert.Equal(t, 1, h.o.ReapExpired(h.ctx))

	var ended protocol.ReasonData
	require.True(t, find(t, h.conns["s-bo"].take(), protocol.KindSessionEnded, &ended))
	assert.Equal(t, protocol.ReasonExpired, ended.Reason)
	assert.True(t, find(t, h.conns["s-ada"].take(), protocol.KindSessionEnded, nil))
	assert.Empty(t, h.o.Registry.ActiveRooms())
}

func TestCreateAfterRoomVanishedFromStore(t *testing.T) {
	h := newHarness(t)
	h.createAlgoRoom()
	require.NoError(t, h.store.DeleteRoom(h.ctx, "R1"))

	ada := h.conns["s-ada"]
	h.send("s-ada", `{"type":"create-room","data":{"roomId":"R2","roomName":"Graphs","subject":"Algorithms","hostName":"Ada"}}`)
	assert.True(t, find(t, ada.take(), protocol.KindRoomCreated, nil))
	cur, ok := h.o.Registry.RoomOf("s-ada")
	require.True(t, ok)
	assert.Equal(t, domain.RoomID("R2"), cur)

	h.send("s-bo", `{"type":"join-room","data":{"roomId":"R2","userName":"Bo"}}`)
	assert.True(t, find(t, h.conns["s-bo"].take(), protocol.KindRoomJoined, nil))
	assert.True(t, h.o.Registry.InRoom("s-bo", "R2"))
	assert.Len(t, h.room("R2").Participants, 2)
}
