package domain

import (
	"strings"
	"unicode/utf8"
)

const MaxUsernameLen = 36

// ConnID identifies one live transport connection.
type ConnID string

// Participant is one roster entry. ConnID changes on rejoin; Name is the
// reconciliation key. ClientToken is the per-browser token recorded at join
// and never leaves the server.
type Participant struct {
	ConnID      ConnID `json:"socketId" bson:"socketId"`
	Name        string `json:"name" bson:"name"`
	IsHost      bool   `json:"isHost" bson:"isHost"`
	ClientToken string `json:"-" bson:"clientToken,omitempty"`
}

// NewParticipant avoids raw literals in adapters and validates the display name.
func NewParticipant(conn ConnID, name, token string, isHost bool) (Participant, error) {
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return Participant{}, ErrUsernameEmpty
	}
	if utf8.RuneCountInString(name) > MaxUsernameLen {
		return Participant{}, ErrUsernameTooLong
	}
	return Participant{ConnID: conn, Name: name, IsHost: isHost, ClientToken: token}, nil
}
