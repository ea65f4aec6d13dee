// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ik5/moodmix/internal/model"
)

const (
	usersCollection      = "users"
	mediaCollection      = "media"
	recordingsCollection = "recordings"
)

// Mongo stores documents in a MongoDB database.
type Mongo struct {
	client     *mongo.Client
	users      *mongo.Collection
	media      *mongo.Collection
	recordings *mongo.Collection
	now        func() time.Time
}

// NewMongo connects to uri, pings the server and creates the indexes.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &Mongo{
		client:     client,
		users:      db.Collection(usersCollection),
		media:      db.Collection(mediaCollection),
		recordings: db.Collection(recordingsCollection),
		now:        time.Now,
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return s, nil
}

func (s *Mongo) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.users, mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}}},
		{s.media, mongo.IndexModel{
			Keys:    bson.D{{Key: "filename", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.media, mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}, {Key: "createdAt", Value: 1}}}},
		{s.recordings, mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}, {Key: "createdAt", Value: 1}}}},
	}

	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll.Name(), err)
		}
	}

	return nil
}

func (s *Mongo) CreateUser(ctx context.Context, u *model.User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	stamp(&u.ID, &u.CreatedAt, &u.UpdatedAt, s.now())

	return insert(ctx, s.users, u, "user "+u.Email)
}

func (s *Mongo) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := findOne(ctx, s.users, bson.M{"email": email}, &u, "user with email "+email); err != nil {
		return nil, err
	}

	return &u, nil
}

func (s *Mongo) UserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := findOne(ctx, s.users, bson.M{"_id": id}, &u, "user "+id); err != nil {
		return nil, err
	}

	return &u, nil
}

func (s *Mongo) UserExists(ctx context.Context, username, email string) (bool, bool, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}
	opts := options.Find().SetProjection(bson.M{"username": 1, "email": 1})

	var found []model.User
	if err := findAll(ctx, s.users, filter, opts, &found); err != nil {
		return false, false, err
	}

	var usernameTaken, emailTaken bool
	for _, u := range found {
		usernameTaken = usernameTaken || u.Username == username
		emailTaken = emailTaken || u.Email == email
	}

	return usernameTaken, emailTaken, nil
}

func (s *Mongo) CreateMedia(ctx context.Context, m *model.Media) error {
	if err := m.Validate(); err != nil {
		return err
	}

	stamp(&m.ID, &m.CreatedAt, &m.UpdatedAt, s.now())

	return insert(ctx, s.media, m, "media "+m.Filename)
}

func (s *Mongo) MediaByID(ctx context.Context, id string) (*model.Media, error) {
	var m model.Media
	if err := findOne(ctx, s.media, bson.M{"_id": id}, &m, "media "+id); err != nil {
		return nil, err
	}

	return &m, nil
}

func (s *Mongo) MediaByUsername(ctx context.Context, username string) ([]model.Media, error) {
	var out []model.Media
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	if err := findAll(ctx, s.media, bson.M{"username": username}, opts, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Mongo) CreateRecording(ctx context.Context, r *model.Recording) error {
	if err := r.Validate(); err != nil {
		return err
	}

	stamp(&r.ID, &r.CreatedAt, nil, s.now())

	return insert(ctx, s.recordings, r, "recording "+r.Name)
}

func (s *Mongo) RecordingsByUsername(ctx context.Context, username string) ([]model.Recording, error) {
	var out []model.Recording
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	if err := findAll(ctx, s.recordings, bson.M{"username": username}, opts, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Mongo) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func insert(ctx context.Context, coll *mongo.Collection, doc any, what string) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicate, what)
		}
		return fmt.Errorf("insert %s: %w", what, err)
	}

	return nil
}

func findOne(ctx context.Context, coll *mongo.Collection, filter bson.M, dst any, what string) error {
	err := coll.FindOne(ctx, filter).Decode(dst)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	if err != nil {
		return fmt.Errorf("find %s: %w", what, err)
	}

	return nil
}

func findAll(ctx context.Context, coll *mongo.Collection, filter bson.M, opts *options.FindOptions, dst any) error {
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("find in %s: %w", coll.Name(), err)
	}
	if err := cur.All(ctx, dst); err != nil {
		return fmt.Errorf("read %s: %w", coll.Name(), err)
	}

	return nil
}
