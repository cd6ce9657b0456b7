package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const clientStorageCollection = "client_storage"

// ClientStorage stores one document per (sid, key). A TTL index on expires_at
// lets MongoDB reap abandoned sessions.
type ClientStorage struct {
	col *mongo.Collection
	ttl time.Duration
	now func() time.Time
}

func NewClientStorage(db *mongo.Database, ttl time.Duration) *ClientStorage {
	return &ClientStorage{col: db.Collection(clientStorageCollection), ttl: ttl, now: time.Now}
}

type storageDoc struct {
	SID       string    `bson:"sid"`
	Key       string    `bson:"key"`
	Value     string    `bson:"value"`
	ExpiresAt time.Time `bson:"expires_at,omitempty"`
}

func (s *ClientStorage) Get(ctx context.Context, sid, key string) (string, bool, error) {
	var doc storageDoc
	err := s.col.FindOne(ctx, bson.M{"sid": sid, "key": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find %s: %w", key, err)
	}
	// the TTL monitor runs about once a minute
	if !doc.ExpiresAt.IsZero() && !doc.ExpiresAt.After(s.now()) {
		return "", false, nil
	}
	return doc.Value, true, nil
}

func (s *ClientStorage) Set(ctx context.Context, sid, key, value string) error {
	doc := storageDoc{SID: sid, Key: key, Value: value}
	if s.ttl > 0 {
		doc.ExpiresAt = s.now().Add(s.ttl).UTC()
	}
	_, err := s.col.ReplaceOne(ctx,
		bson.M{"sid": sid, "key": key},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *ClientStorage) Remove(ctx context.Context, sid, key string) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"sid": sid, "key": key}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *ClientStorage) Ping(ctx context.Context) error {
	return s.col.Database().Client().Ping(ctx, nil)
}

// EnsureIndexes creates the unique (sid, key) index and the expiry TTL index.
func (s *ClientStorage) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sid", Value: 1}, {Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	_, err := s.col.Indexes().CreateMany(ctx, indexes)
	return err
}
