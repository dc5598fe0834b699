// Package redisstore keeps each room as one JSON value in Redis. The key's
// TTL is set once at creation and preserved by every later write.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
)

const (
	defaultPrefix = "coderoom:"
	maxTxRetries  = 16
	scanCount     = 100
)

var _ core.RoomStore = (*Store)(nil)

type Store struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func New(client *redis.Client, keyPrefix string, ttl time.Duration) *Store {
	if client == nil {
		panic("redisstore: nil client")
	}
	if keyPrefix == "" {
		keyPrefix = defaultPrefix
	}
	if ttl <= 0 {
		ttl = domain.RoomTTL
	}
	return &Store{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *Store) roomKey(id domain.RoomID) string {
	return fmt.Sprintf("%sroom:%s", s.keyPrefix, id)
}

func (s *Store) roomPattern() string {
	return s.keyPrefix + "room:*"
}

// record is the stored shape. Unlike the wire shape it keeps client tokens.
type record struct {
	ID           domain.RoomID       `json:"roomId"`
	Name         string              `json:"roomName"`
	Subject      string              `json:"subject"`
	Content      string              `json:"codeContent"`
	Language     string              `json:"language"`
	Participants []participantRecord `json:"participants"`
	CreatedAt    time.Time           `json:"createdAt"`
}

type participantRecord struct {
	ConnID      domain.ConnID `json:"socketId"`
	Name        string        `json:"name"`
	IsHost      bool          `json:"isHost"`
	ClientToken string        `json:"clientToken,omitempty"`
}

func encode(r *domain.Room) ([]byte, error) {
	rec := record{
		ID:           r.ID,
		Name:         r.Name,
		Subject:      r.Subject,
		Content:      r.Content,
		Language:     r.Language,
		Participants: make([]participantRecord, 0, len(r.Participants)),
		CreatedAt:    r.CreatedAt,
	}
	for _, p := range r.Participants {
		rec.Participants = append(rec.Participants, participantRecord(p))
	}
	return json.Marshal(rec)
}

func decode(raw []byte) (*domain.Room, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("redis: decode room: %w", err)
	}
	r := &domain.Room{
		ID:           rec.ID,
		Name:         rec.Name,
		Subject:      rec.Subject,
		Content:      rec.Content,
		Language:     rec.Language,
		Participants: make([]domain.Participant, 0, len(rec.Participants)),
		CreatedAt:    rec.CreatedAt,
	}
	for _, p := range rec.Participants {
		r.Participants = append(r.Participants, domain.Participant(p))
	}
	return r, nil
}

// mapErr turns driver errors into domain sentinels. Sentinels returned by
// mutation callbacks pass through unchanged.
func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.Nil):
		return domain.ErrNotFound
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrAlreadyExists):
		return err
	default:
		return fmt.Errorf("redis: %s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
}

func (s *Store) CreateRoom(ctx context.Context, room *domain.Room) (*domain.Room, error) {
	data, err := encode(room)
	if err != nil {
		return nil, err
	}
	ok, err := s.client.SetNX(ctx, s.roomKey(room.ID), data, s.ttl).Result()
	if err != nil {
		return nil, mapErr("create room", err)
	}
	if !ok {
		return nil, domain.ErrAlreadyExists
	}
	return room.Clone(), nil
}

func (s *Store) GetRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	raw, err := s.client.Get(ctx, s.roomKey(id)).Bytes()
	if err != nil {
		return nil, mapErr("get room", err)
	}
	return decode(raw)
}

// update runs fn against the current value inside a WATCH/MULTI
// transaction and writes the result back with KEEPTTL. Conflicting writers
// are retried.
func (s *Store) update(ctx context.Context, op string, id domain.RoomID, fn func(r *domain.Room) error) (*domain.Room, error) {
	key := s.roomKey(id)
	var out *domain.Room
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			return err
		}
		room, err := decode(raw)
		if err != nil {
			return err
		}
		if err := fn(room); err != nil {
			return err
		}
		data, err := encode(room)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, data, redis.SetArgs{Mode: "XX", KeepTTL: true})
			return nil
		})
		if err != nil {
			return err
		}
		out = room
		return nil
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, mapErr(op, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("redis: %s: %w: transaction retries exhausted", op, domain.ErrStoreUnavailable)
}

func (s *Store) UpdateDocument(ctx context.Context, id domain.RoomID, content string) error {
	_, err := s.update(ctx, "update document", id, func(r *domain.Room) error {
		r.Content = content
		return nil
	})
	return err
}

func (s *Store) UpdateLanguage(ctx context.Context, id domain.RoomID, language string) error {
	_, err := s.update(ctx, "update language", id, func(r *domain.Room) error {
		r.Language = language
		return nil
	})
	return err
}

func (s *Store) SwitchLanguage(ctx context.Context, id domain.RoomID, language, snippet string) (bool, error) {
	replaced := false
	_, err := s.update(ctx, "switch language", id, func(r *domain.Room) error {
		replaced = false
		r.Language = language
		if snippet != "" && domain.IsPlaceholder(r.Content) {
			r.Content = snippet
			replaced = true
		}
		return nil
	})
	return replaced, err
}

func (s *Store) AddParticipant(ctx context.Context, id domain.RoomID, p domain.Participant) (*domain.Room, error) {
	return s.update(ctx, "add participant", id, func(r *domain.Room) error {
		r.Participants = append(r.Participants, p)
		return nil
	})
}

func (s *Store) ReconcileParticipant(ctx context.Context, id domain.RoomID, p domain.Participant) (*domain.Room, domain.Rejoin, error) {
	var rejoin domain.Rejoin
	r, err := s.update(ctx, "reconcile participant", id, func(r *domain.Room) error {
		rejoin = r.Reconcile(p)
		return nil
	})
	return r, rejoin, err
}

func (s *Store) RemoveParticipant(ctx context.Context, id domain.RoomID, conn domain.ConnID) (*domain.Room, domain.Participant, error) {
	var removed domain.Participant
	r, err := s.update(ctx, "remove participant", id, func(r *domain.Room) error {
		p, ok := r.RemoveConn(conn)
		if !ok {
			return domain.ErrNotFound
		}
		removed = p
		return nil
	})
	return r, removed, err
}

// FindParticipantByConnection scans every room key. Rooms are few and
// short-lived so a SCAN is acceptable here.
func (s *Store) FindParticipantByConnection(ctx context.Context, conn domain.ConnID) (*domain.Room, domain.Participant, error) {
	iter := s.client.Scan(ctx, 0, s.roomPattern(), scanCount).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, domain.Participant{}, mapErr("find participant", err)
		}
		room, err := decode(raw)
		if err != nil {
			continue
		}
		if p, ok := room.ParticipantByConn(conn); ok {
			return room, p, nil
		}
	}
	if err := iter.Err(); err != nil {
		return nil, domain.Participant{}, mapErr("find participant", err)
	}
	return nil, domain.Participant{}, domain.ErrNotFound
}

func (s *Store) DeleteRoom(ctx context.Context, id domain.RoomID) error {
	return mapErr("delete room", s.client.Del(ctx, s.roomKey(id)).Err())
}

func (s *Store) Ping(ctx context.Context) error {
	return mapErr("ping", s.client.Ping(ctx).Err())
}

func (s *Store) Close() error {
	return s.client.Close()
}
