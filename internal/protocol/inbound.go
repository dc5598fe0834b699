package protocol

import "github.com/dkeye/coderoom/internal/domain"

// Inbound is implemented only by the message types in this file.
type Inbound interface {
	Kind() Kind
	Room() domain.RoomID
	inbound()
}

// RoomRef carries the target room of every inbound event.
type RoomRef struct {
	RoomID domain.RoomID `json:"roomId" validate:"required,max=128"`
}

func (r RoomRef) Room() domain.RoomID { return r.RoomID }
func (RoomRef) inbound()              {}

type CreateRoom struct {
	RoomRef
	RoomName string `json:"roomName" validate:"required,max=128"`
	Subject  string `json:"subject" validate:"required,max=256"`
	HostName string `json:"hostName" validate:"required,max=36"`
}

type JoinRoom struct {
	RoomRef
	UserName string `json:"userName" validate:"required,max=36"`
	WasHost  bool   `json:"wasHost"`
}

type CodeUpdate struct {
	RoomRef
	Content string `json:"content"`
}

type LanguageChange struct {
	RoomRef
	Language string `json:"language" validate:"required,max=32"`
}

// Selection is the subset of the editor selection the server relays.
type Selection struct {
	EndLineNumber int `json:"endLineNumber"`
	EndColumn     int `json:"endColumn"`
}

type CursorMove struct {
	RoomRef
	Selection *Selection `json:"selection"`
	Label     string     `json:"label" validate:"max=64"`
}

type MuteParticipant struct {
	RoomRef
	SocketID domain.ConnID `json:"socketId" validate:"required"`
}

type UnmuteParticipant struct {
	RoomRef
	SocketID domain.ConnID `json:"socketId" validate:"required"`
}

type SelfMuted struct {
	RoomRef
	IsMuted bool `json:"isMuted"`
}

// AudioChunk payload is opaque to the server and relayed unaltered.
type AudioChunk struct {
	RoomRef
	AudioData string `json:"audioData" validate:"required"`
	Timestamp int64  `json:"timestamp"`
}

type SpeakerStatus struct {
	RoomRef
	IsSpeaking bool `json:"isSpeaking"`
}

type RemoveParticipant struct {
	RoomRef
	SocketID domain.ConnID `json:"socketId" validate:"required"`
}

type LeaveRoom struct {
	RoomRef
}

type RequestRoomState struct {
	RoomRef
}

func (CreateRoom) Kind() Kind        { return KindCreateRoom }
func (JoinRoom) Kind() Kind          { return KindJoinRoom }
func (CodeUpdate) Kind() Kind        { return KindCodeUpdate }
func (LanguageChange) Kind() Kind    { return KindLanguageChange }
func (CursorMove) Kind() Kind        { return KindCursorMove }
func (MuteParticipant) Kind() Kind   { return KindMuteParticipant }
func (UnmuteParticipant) Kind() Kind { return KindUnmuteParticipant }
func (SelfMuted) Kind() Kind         { return KindSelfMuted }
func (AudioChunk) Kind() Kind        { return KindAudioChunk }
func (SpeakerStatus) Kind() Kind     { return KindSpeakerStatus }
func (RemoveParticipant) Kind() Kind { return KindRemoveParticipant }
func (LeaveRoom) Kind() Kind         { return KindLeaveRoom }
func (RequestRoomState) Kind() Kind  { return KindRequestRoomState }

// Position is the cursor location relayed to peers.
func (s *Selection) Position() *Position {
	if s == nil || s.EndLineNumber <= 0 {
		return nil
	}
	return &Position{Line: s.EndLineNumber, Column: s.EndColumn}
}
