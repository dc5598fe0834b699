// Package mongostore keeps rooms as documents in one MongoDB collection.
//
// A TTL index on createdAt deletes expired rooms, but the TTL monitor only
// runs about once a minute, so every read and write also filters on
// createdAt to hide rooms that are expired but not yet reaped.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const maxReconcileAttempts = 8

var _ core.RoomStore = (*Store)(nil)

type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	ttl    time.Duration
	now    func() time.Time
}

// Open connects to uri and makes sure the collection's indexes exist.
func Open(ctx context.Context, uri, database, collection string, ttl time.Duration) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w: %w", domain.ErrStoreUnavailable, err)
	}
	s := New(client, client.Database(database).Collection(collection), ttl)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	return s, nil
}

func New(client *mongo.Client, coll *mongo.Collection, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = domain.RoomTTL
	}
	return &Store{client: client, coll: coll, ttl: ttl, now: time.Now}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "roomId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(s.ttl / time.Second)),
		},
		{
			Keys: bson.D{{Key: "participants.socketId", Value: 1}},
		},
	})
	return mapErr("ensure indexes", err)
}

func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return domain.ErrAlreadyExists
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrAlreadyExists):
		return err
	default:
		return fmt.Errorf("mongo: %s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
}

func (s *Store) cutoff() time.Time {
	return s.now().UTC().Add(-s.ttl)
}

// live matches room id only while it is unexpired, merged with extra.
func (s *Store) live(id domain.RoomID, extra ...bson.E) bson.D {
	f := bson.D{
		{Key: "roomId", Value: id},
		{Key: "createdAt", Value: bson.M{"$gt": s.cutoff()}},
	}
	return append(f, extra...)
}

func (s *Store) CreateRoom(ctx context.Context, room *domain.Room) (*domain.Room, error) {
	// An expired document the TTL monitor has not reaped yet would trip the
	// unique index.
	_, err := s.coll.DeleteOne(ctx, bson.D{
		{Key: "roomId", Value: room.ID},
		{Key: "createdAt", Value: bson.M{"$lte": s.cutoff()}},
	})
	if err != nil {
		return nil, mapErr("create room", err)
	}
	if _, err := s.coll.InsertOne(ctx, room); err != nil {
		return nil, mapErr("create room", err)
	}
	return room.Clone(), nil
}

func (s *Store) GetRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	var r domain.Room
	if err := s.coll.FindOne(ctx, s.live(id)).Decode(&r); err != nil {
		return nil, mapErr("get room", err)
	}
	return &r, nil
}

func (s *Store) set(ctx context.Context, op string, id domain.RoomID, fields bson.D) error {
	res, err := s.coll.UpdateOne(ctx, s.live(id), bson.D{{Key: "$set", Value: fields}})
	if err != nil {
		return mapErr(op, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateDocument(ctx context.Context, id domain.RoomID, content string) error {
	return s.set(ctx, "update document", id, bson.D{{Key: "codeContent", Value: content}})
}

func (s *Store) UpdateLanguage(ctx context.Context, id domain.RoomID, language string) error {
	return s.set(ctx, "update language", id, bson.D{{Key: "language", Value: language}})
}

// SwitchLanguage replaces the buffer only when the stored content is still
// replaceable; the check and the write happen in one update.
func (s *Store) SwitchLanguage(ctx context.Context, id domain.RoomID, language, snippet string) (bool, error) {
	if snippet != "" {
		replaceable := bson.E{Key: "$or", Value: bson.A{
			bson.M{"codeContent": bson.M{"$in": domain.ReplaceableContents()}},
			bson.M{"codeContent": bson.M{"$regex": `^\s*$`}},
		}}
		res, err := s.coll.UpdateOne(ctx, s.live(id, replaceable), bson.D{{Key: "$set", Value: bson.D{
			{Key: "language", Value: language},
			{Key: "codeContent", Value: snippet},
		}}})
		if err != nil {
			return false, mapErr("switch language", err)
		}
		if res.MatchedCount > 0 {
			return true, nil
		}
	}
	return false, s.UpdateLanguage(ctx, id, language)
}

func (s *Store) AddParticipant(ctx context.Context, id domain.RoomID, p domain.Participant) (*domain.Room, error) {
	var r domain.Room
	err := s.coll.FindOneAndUpdate(ctx, s.live(id),
		bson.D{{Key: "$push", Value: bson.M{"participants": p}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&r)
	if err != nil {
		return nil, mapErr("add participant", err)
	}
	return &r, nil
}

// swapConn points the first roster entry matching match at p's connection.
// It returns the document as it was before the write.
func (s *Store) swapConn(ctx context.Context, id domain.RoomID, match bson.E, conn domain.ConnID) (*domain.Room, error) {
	var before domain.Room
	err := s.coll.FindOneAndUpdate(ctx, s.live(id, match),
		bson.D{{Key: "$set", Value: bson.M{"participants.$.socketId": conn}}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if err != nil {
		return nil, err
	}
	return &before, nil
}

// ReconcileParticipant swaps the connection of the entry with the same
// display name and only then appends. The append is guarded on the name so
// two concurrent joins under one name cannot both add an entry.
func (s *Store) ReconcileParticipant(ctx context.Context, id domain.RoomID, p domain.Participant) (*domain.Room, domain.Rejoin, error) {
	for attempt := 0; attempt < maxReconcileAttempts; attempt++ {
		before, err := s.swapConn(ctx, id, bson.E{Key: "participants.name", Value: p.Name}, p.ConnID)
		if err == nil {
			rejoin := before.Reconcile(p)
			if p.ClientToken != "" && rejoin.Participant.ClientToken == p.ClientToken {
				_, err := s.coll.UpdateOne(ctx,
					s.live(id, bson.E{Key: "participants", Value: bson.M{"$elemMatch": bson.M{"socketId": p.ConnID, "clientToken": bson.M{"$in": bson.A{nil, ""}}}}}),
					bson.D{{Key: "$set", Value: bson.M{"participants.$.clientToken": p.ClientToken}}},
				)
				if err != nil {
					return nil, domain.Rejoin{}, mapErr("reconcile participant", err)
				}
			}
			return before, rejoin, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.Rejoin{}, mapErr("reconcile participant", err)
		}

		var after domain.Room
		err = s.coll.FindOneAndUpdate(ctx,
			s.live(id, bson.E{Key: "participants.name", Value: bson.M{"$ne": p.Name}}),
			bson.D{{Key: "$push", Value: bson.M{"participants": p}}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&after)
		if err == nil {
			return &after, domain.Rejoin{Participant: p}, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.Rejoin{}, mapErr("reconcile participant", err)
		}
		// Either the room is gone or the name appeared since the swap
		// attempt; only the first case is final.
		if _, err := s.GetRoom(ctx, id); err != nil {
			return nil, domain.Rejoin{}, err
		}
	}
	return nil, domain.Rejoin{}, fmt.Errorf("mongo: reconcile participant: %w: too much contention", domain.ErrStoreUnavailable)
}

func (s *Store) RemoveParticipant(ctx context.Context, id domain.RoomID, conn domain.ConnID) (*domain.Room, domain.Participant, error) {
	var before domain.Room
	err := s.coll.FindOneAndUpdate(ctx,
		s.live(id, bson.E{Key: "participants.socketId", Value: conn}),
		bson.D{{Key: "$pull", Value: bson.M{"participants": bson.M{"socketId": conn}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if err != nil {
		return nil, domain.Participant{}, mapErr("remove participant", err)
	}
	removed, _ := before.RemoveConn(conn)
	return &before, removed, nil
}

func (s *Store) FindParticipantByConnection(ctx context.Context, conn domain.ConnID) (*domain.Room, domain.Participant, error) {
	var r domain.Room
	err := s.coll.FindOne(ctx, bson.D{
		{Key: "participants.socketId", Value: conn},
		{Key: "createdAt", Value: bson.M{"$gt": s.cutoff()}},
	}).Decode(&r)
	if err != nil {
		return nil, domain.Participant{}, mapErr("find participant", err)
	}
	p, ok := r.ParticipantByConn(conn)
	if !ok {
		return nil, domain.Participant{}, domain.ErrNotFound
	}
	return &r, p, nil
}

func (s *Store) DeleteRoom(ctx context.Context, id domain.RoomID) error {
	_, err := s.coll.DeleteOne(ctx, bson.D{{Key: "roomId", Value: id}})
	return mapErr("delete room", err)
}

func (s *Store) Ping(ctx context.Context) error {
	return mapErr("ping", s.client.Ping(ctx, readpref.Primary()))
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
