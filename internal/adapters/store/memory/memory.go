// Package memory is an in-process RoomStore. Expiry is enforced by the store
// itself: expired rooms are invisible to every call and a janitor removes
// them in the background.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
	"github.com/rs/zerolog/log"
)

var _ core.RoomStore = (*Store)(nil)

type Store struct {
	mu    sync.Mutex
	rooms map[domain.RoomID]*domain.Room
	ttl   time.Duration
	every time.Duration
	now   func() time.Time
}

func New(ttl, janitorInterval time.Duration) *Store {
	if ttl <= 0 {
		ttl = domain.RoomTTL
	}
	if janitorInterval <= 0 {
		janitorInterval = time.Minute
	}
	return &Store{
		rooms: make(map[domain.RoomID]*domain.Room),
		ttl:   ttl,
		every: janitorInterval,
		now:   time.Now,
	}
}

// WithClock replaces the time source; tests use it to drive expiry.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("memory: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// liveLocked returns the room if present and not expired; expired rooms are
// deleted on sight.
func (s *Store) liveLocked(id domain.RoomID) (*domain.Room, bool) {
	r, ok := s.rooms[id]
	if !ok {
		return nil, false
	}
	if r.Expired(s.now(), s.ttl) {
		delete(s.rooms, id)
		return nil, false
	}
	return r, true
}

func (s *Store) CreateRoom(ctx context.Context, room *domain.Room) (*domain.Room, error) {
	if err := check(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.liveLocked(room.ID); ok {
		return nil, domain.ErrAlreadyExists
	}
	stored := room.Clone()
	s.rooms[room.ID] = stored
	return stored.Clone(), nil
}

func (s *Store) GetRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	if err := check(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.liveLocked(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.Clone(), nil
}

// mutate applies fn to the live room under the store lock; fn sees the
// stored value and must leave it consistent when returning nil.
func (s *Store) mutate(ctx context.Context, id domain.RoomID, fn func(r *domain.Room) error) (*domain.Room, error) {
	if err := check(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.liveLocked(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	work := r.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	s.rooms[id] = work
	return work.Clone(), nil
}

func (s *Store) UpdateDocument(ctx context.Context, id domain.RoomID, content string) error {
	_, err := s.mutate(ctx, id, func(r *domain.Room) error {
		r.Content = content
		return nil
	})
	return err
}

func (s *Store) UpdateLanguage(ctx context.Context, id domain.RoomID, language string) error {
	_, err := s.mutate(ctx, id, func(r *domain.Room) error {
		r.Language = language
		return nil
	})
	return err
}

func (s *Store) SwitchLanguage(ctx context.Context, id domain.RoomID, language, snippet string) (bool, error) {
	replaced := false
	_, err := s.mutate(ctx, id, func(r *domain.Room) error {
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
	return s.mutate(ctx, id, func(r *domain.Room) error {
		r.Participants = append(r.Participants, p)
		return nil
	})
}

func (s *Store) ReconcileParticipant(ctx context.Context, id domain.RoomID, p domain.Participant) (*domain.Room, domain.Rejoin, error) {
	var rejoin domain.Rejoin
	r, err := s.mutate(ctx, id, func(r *domain.Room) error {
		rejoin = r.Reconcile(p)
		return nil
	})
	return r, rejoin, err
}

func (s *Store) RemoveParticipant(ctx context.Context, id domain.RoomID, conn domain.ConnID) (*domain.Room, domain.Participant, error) {
	var removed domain.Participant
	r, err := s.mutate(ctx, id, func(r *domain.Room) error {
		p, ok := r.RemoveConn(conn)
		if !ok {
			return domain.ErrNotFound
		}
		removed = p
		return nil
	})
	return r, removed, err
}

func (s *Store) FindParticipantByConnection(ctx context.Context, conn domain.ConnID) (*domain.Room, domain.Participant, error) {
	if err := check(ctx); err != nil {
		return nil, domain.Participant{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.rooms {
		r, ok := s.liveLocked(id)
		if !ok {
			continue
		}
		if p, ok := r.ParticipantByConn(conn); ok {
			return r.Clone(), p, nil
		}
	}
	return nil, domain.Participant{}, domain.ErrNotFound
}

func (s *Store) DeleteRoom(ctx context.Context, id domain.RoomID) error {
	if err := check(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return check(ctx)
}

// Len counts live rooms.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id := range s.rooms {
		if _, ok := s.liveLocked(id); ok {
			n++
		}
	}
	return n
}

// Sweep deletes every expired room and returns how many it removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	now := s.now()
	for id, r := range s.rooms {
		if r.Expired(now, s.ttl) {
			delete(s.rooms, id)
			n++
		}
	}
	return n
}

// Run is the janitor loop; it returns when ctx is done.
func (s *Store) Run(ctx context.Context) error {
	logger := log.With().Str("module", "store.memory").Logger()
	t := time.NewTicker(s.every)
	defer t.Stop()
	logger.Info().Dur("ttl", s.ttl).Dur("interval", s.every).Msg("janitor started")
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("janitor stopped")
			return nil
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				logger.Info().Int("expired", n).Msg("expired rooms removed")
			}
		}
	}
}
