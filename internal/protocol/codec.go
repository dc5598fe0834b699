package protocol

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var (
	ErrBadPayload  = errors.New("bad_payload")
	ErrUnknownKind = errors.New("unknown_event")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type envelope struct {
	Type Kind            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Decode parses and validates one inbound frame.
func Decode(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	msg, err := newInbound(env.Type)
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("%w: missing data", ErrBadPayload)
	}
	if err := json.Unmarshal(env.Data, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if err := validate.Struct(msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return deref(msg), nil
}

func newInbound(k Kind) (any, error) {
	switch k {
	case KindCreateRoom:
		return &CreateRoom{}, nil
	case KindJoinRoom:
		return &JoinRoom{}, nil
	case KindCodeUpdate:
		return &CodeUpdate{}, nil
	case KindLanguageChange:
		return &LanguageChange{}, nil
	case KindCursorMove:
		return &CursorMove{}, nil
	case KindMuteParticipant:
		return &MuteParticipant{}, nil
	case KindUnmuteParticipant:
		return &UnmuteParticipant{}, nil
	case KindSelfMuted:
		return &SelfMuted{}, nil
	case KindAudioChunk:
		return &AudioChunk{}, nil
	case KindSpeakerStatus:
		return &SpeakerStatus{}, nil
	case KindRemoveParticipant:
		return &RemoveParticipant{}, nil
	case KindLeaveRoom:
		return &LeaveRoom{}, nil
	case KindRequestRoomState:
		return &RequestRoomState{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
}

func deref(msg any) Inbound {
	switch m := msg.(type) {
	case *CreateRoom:
		return *m
	case *JoinRoom:
		return *m
	case *CodeUpdate:
		return *m
	case *LanguageChange:
		return *m
	case *CursorMove:
		return *m
	case *MuteParticipant:
		return *m
	case *UnmuteParticipant:
		return *m
	case *SelfMuted:
		return *m
	case *AudioChunk:
		return *m
	case *SpeakerStatus:
		return *m
	case *RemoveParticipant:
		return *m
	case *LeaveRoom:
		return *m
	case *RequestRoomState:
		return *m
	}
	return nil
}

// Encode renders an outbound event as a frame.
func Encode(ev Event) ([]byte, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ev.Type, err)
	}
	return b, nil
}
