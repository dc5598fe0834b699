// Package protocol defines the closed set of events exchanged over the
// signal connection and their wire encoding.
package protocol

// Kind names an event on the wire.
type Kind string

// Inbound kinds (client -> server).
const (
	KindCreateRoom        Kind = "create-room"
	KindJoinRoom          Kind = "join-room"
	KindCodeUpdate        Kind = "code-update"
	KindLanguageChange    Kind = "language-change"
	KindCursorMove        Kind = "cursor-move"
	KindMuteParticipant   Kind = "mute-participant"
	KindUnmuteParticipant Kind = "unmute-participant"
	KindSelfMuted         Kind = "participant-self-muted"
	KindAudioChunk        Kind = "audio-chunk"
	KindSpeakerStatus     Kind = "speaker-status"
	KindRemoveParticipant Kind = "remove-participant"
	KindLeaveRoom         Kind = "leave-room"
	KindRequestRoomState  Kind = "request-room-state"
)

// Outbound kinds (server -> client).
const (
	KindRoomCreated           Kind = "room-created"
	KindRoomJoined            Kind = "room-joined"
	KindParticipantJoined     Kind = "participant-joined"
	KindSyncParticipants      Kind = "sync-participants"
	KindParticipantLeft       Kind = "participant-left"
	KindCodeMirrored          Kind = "code-mirrored"
	KindLanguageUpdated       Kind = "language-updated"
	KindLanguageChanged       Kind = "language-changed"
	KindCursorMirrored        Kind = "cursor-mirrored"
	KindYouWereMuted          Kind = "you-were-muted"
	KindYouWereUnmuted        Kind = "you-were-unmuted"
	KindParticipantMuted      Kind = "participant-muted"
	KindParticipantUnmuted    Kind = "participant-unmuted"
	KindParticipantMuteStatus Kind = "participant-mute-status"
	KindAudioStream           Kind = "audio-stream"
	KindParticipantSpeaking   Kind = "participant-speaking"
	KindYouWereRemoved        Kind = "you-were-removed"
	KindSessionEnded          Kind = "session-ended"
	KindRoomState             Kind = "room-state"
	KindError                 Kind = "error"
)
