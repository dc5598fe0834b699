// Package domain holds the room document and its roster rules. No transport
// or persistence here.
package domain

import (
	"strings"
	"time"
)

type RoomID string

const (
	DefaultLanguage = "javascript"
	DefaultContent  = "// Welcome to CodexView\nconsole.log(\"Hello, World!\");"
	RoomTTL         = 24 * time.Hour
)

// Room is the durable session record. CreatedAt anchors the TTL and is never
// refreshed by activity.
type Room struct {
	ID           RoomID        `json:"roomId" bson:"roomId"`
	Name         string        `json:"roomName" bson:"roomName"`
	Subject      string        `json:"subject" bson:"subject"`
	Content      string        `json:"codeContent" bson:"codeContent"`
	Language     string        `json:"language" bson:"language"`
	Participants []Participant `json:"participants" bson:"participants"`
	CreatedAt    time.Time     `json:"createdAt" bson:"createdAt"`
}

// NewRoom builds a room whose only participant is the host.
func NewRoom(id RoomID, name, subject string, host Participant, now time.Time) (*Room, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, ErrRoomIDEmpty
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrRoomNameEmpty
	}
	if strings.TrimSpace(subject) == "" {
		return nil, ErrSubjectEmpty
	}
	host.IsHost = true
	return &Room{
		ID:           id,
		Name:         name,
		Subject:      subject,
		Content:      DefaultContent,
		Language:     DefaultLanguage,
		Participants: []Participant{host},
		CreatedAt:    now.UTC(),
	}, nil
}

// Clone returns a deep copy safe to hand out of a store.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	c := *r
	c.Participants = append([]Participant(nil), r.Participants...)
	return &c
}

func (r *Room) Expired(now time.Time, ttl time.Duration) bool {
	return !now.Before(r.CreatedAt.Add(ttl))
}

func (r *Room) ParticipantByConn(conn ConnID) (Participant, bool) {
	for _, p := range r.Participants {
		if p.ConnID == conn {
			return p, true
		}
	}
	return Participant{}, false
}

// RemoveConn drops the participant bound to conn, keeping join order.
func (r *Room) RemoveConn(conn ConnID) (Participant, bool) {
	for i, p := range r.Participants {
		if p.ConnID == conn {
			r.Participants = append(r.Participants[:i], r.Participants[i+1:]...)
			return p, true
		}
	}
	return Participant{}, false
}

// Rejoin is the outcome of Reconcile.
type Rejoin struct {
	Participant Participant
	PrevConn    ConnID
	Rejoined    bool
}

// Reconcile maps p onto the roster entry with the same display name by
// swapping its connection id; otherwise p is appended with its own host flag.
// A matched entry keeps its stored host flag. The client token is recorded on
// the entry but never selects one.
func (r *Room) Reconcile(p Participant) Rejoin {
	idx := -1
	for i, cur := range r.Participants {
		if cur.Name == p.Name {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.Participants = append(r.Participants, p)
		return Rejoin{Participant: p}
	}
	cur := &r.Participants[idx]
	prev := cur.ConnID
	cur.ConnID = p.ConnID
	if cur.ClientToken == "" {
		cur.ClientToken = p.ClientToken
	}
	return Rejoin{Participant: *cur, PrevConn: prev, Rejoined: true}
}
