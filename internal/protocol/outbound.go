package protocol

import "github.com/dkeye/coderoom/internal/domain"

// Event is one outbound message.
type Event struct {
	Type Kind `json:"type"`
	Data any  `json:"data,omitempty"`
}

// Reasons carried by terminal and moderation events.
const (
	ReasonHostEnded     = "host-ended"
	ReasonExpired       = "expired"
	ReasonRemovedByHost = "removed-by-host"
	ReasonMutedByHost   = "muted-by-host"
	ReasonUnmutedByHost = "unmuted-by-host"
)

type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type ParticipantJoinedData struct {
	Room           *domain.Room       `json:"room"`
	NewParticipant domain.Participant `json:"newParticipant"`
}

type SyncParticipantsData struct {
	Participants []domain.Participant `json:"participants"`
}

type ParticipantLeftData struct {
	Room            *domain.Room  `json:"room"`
	ParticipantName string        `json:"participantName"`
	ParticipantID   domain.ConnID `json:"participantId"`
}

type ContentData struct {
	Content string `json:"content"`
}

type LanguageData struct {
	Language string `json:"language"`
}

type LanguageChangedData struct {
	Language string `json:"language"`
	Snippet  string `json:"snippet"`
}

type CursorData struct {
	ParticipantID   domain.ConnID `json:"participantId"`
	ParticipantName string        `json:"participantName"`
	Position        *Position     `json:"position"`
}

type ReasonData struct {
	Reason string `json:"reason"`
}

type UnmutedData struct {
	Reason      string `json:"reason"`
	IsSelfMuted bool   `json:"isSelfMuted"`
}

type SocketData struct {
	SocketID domain.ConnID `json:"socketId"`
}

type MuteStatusData struct {
	ParticipantID domain.ConnID `json:"participantId"`
	IsSelfMuted   bool          `json:"isSelfMuted"`
	IsMuted       bool          `json:"isMuted"`
}

type AudioData struct {
	ParticipantID domain.ConnID `json:"participantId"`
	AudioData     string        `json:"audioData"`
	Timestamp     int64         `json:"timestamp"`
}

type SpeakingData struct {
	ParticipantID domain.ConnID `json:"participantId"`
	IsSpeaking    bool          `json:"isSpeaking"`
}

type RoomStateData struct {
	CodeContent string `json:"codeContent"`
	Language    string `json:"language"`
}

type ErrorData struct {
	Message string `json:"message"`
}

func RoomCreated(r *domain.Room) Event { return Event{Type: KindRoomCreated, Data: r} }
func RoomJoined(r *domain.Room) Event  { return Event{Type: KindRoomJoined, Data: r} }

func ParticipantJoined(r *domain.Room, p domain.Participant) Event {
	return Event{Type: KindParticipantJoined, Data: ParticipantJoinedData{Room: r, NewParticipant: p}}
}

func SyncParticipants(ps []domain.Participant) Event {
	if ps == nil {
		ps = []domain.Participant{}
	}
	return Event{Type: KindSyncParticipants, Data: SyncParticipantsData{Participants: ps}}
}

func ParticipantLeft(r *domain.Room, p domain.Participant) Event {
	return Event{Type: KindParticipantLeft, Data: ParticipantLeftData{Room: r, ParticipantName: p.Name, ParticipantID: p.ConnID}}
}

func CodeMirrored(content string) Event {
	return Event{Type: KindCodeMirrored, Data: ContentData{Content: content}}
}

func LanguageUpdated(language string) Event {
	return Event{Type: KindLanguageUpdated, Data: LanguageData{Language: language}}
}

func LanguageChanged(language, snippet string) Event {
	return Event{Type: KindLanguageChanged, Data: LanguageChangedData{Language: language, Snippet: snippet}}
}

func CursorMirrored(from domain.ConnID, label string, pos *Position) Event {
	return Event{Type: KindCursorMirrored, Data: CursorData{ParticipantID: from, ParticipantName: label, Position: pos}}
}

func YouWereMuted() Event {
	return Event{Type: KindYouWereMuted, Data: ReasonData{Reason: ReasonMutedByHost}}
}

func YouWereUnmuted(selfMuted bool) Event {
	return Event{Type: KindYouWereUnmuted, Data: UnmutedData{Reason: ReasonUnmutedByHost, IsSelfMuted: selfMuted}}
}

func ParticipantMuted(target domain.ConnID) Event {
	return Event{Type: KindParticipantMuted, Data: SocketData{SocketID: target}}
}

func ParticipantUnmuted(target domain.ConnID) Event {
	return Event{Type: KindParticipantUnmuted, Data: SocketData{SocketID: target}}
}

func ParticipantMuteStatus(from domain.ConnID, selfMuted, muted bool) Event {
	return Event{Type: KindParticipantMuteStatus, Data: MuteStatusData{ParticipantID: from, IsSelfMuted: selfMuted, IsMuted: muted}}
}

func AudioStream(from domain.ConnID, payload string, ts int64) Event {
	return Event{Type: KindAudioStream, Data: AudioData{ParticipantID: from, AudioData: payload, Timestamp: ts}}
}

func ParticipantSpeaking(from domain.ConnID, speaking bool) Event {
	return Event{Type: KindParticipantSpeaking, Data: SpeakingData{ParticipantID: from, IsSpeaking: speaking}}
}

func YouWereRemoved() Event {
	return Event{Type: KindYouWereRemoved, Data: ReasonData{Reason: ReasonRemovedByHost}}
}

func SessionEnded(reason string) Event {
	return Event{Type: KindSessionEnded, Data: ReasonData{Reason: reason}}
}

func RoomState(r *domain.Room) Event {
	return Event{Type: KindRoomState, Data: RoomStateData{CodeContent: r.Content, Language: r.Language}}
}

func Error(message string) Event {
	return Event{Type: KindError, Data: ErrorData{Message: message}}
}
