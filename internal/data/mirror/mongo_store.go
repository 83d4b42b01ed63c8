package mirror

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var collectionIndexes = map[Collection][]mongo.IndexModel{
	CollectionBookings: {
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "booking_reference", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	},
	CollectionDestinations: {
		{Keys: bson.D{{Key: "country", Value: 1}, {Key: "city", Value: 1}}},
	},
	CollectionHotels: {
		{Keys: bson.D{{Key: "destination_id", Value: 1}}},
	},
	CollectionCabs: {
		{Keys: bson.D{{Key: "vehicle_type", Value: 1}}},
	},
}

type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{db: client.Database(database)}
}

func (s *MongoStore) collection(c Collection) *mongo.Collection {
	return s.db.Collection(string(c))
}

// Upsert replaces the document only while the stored version is lower. When a newer
// version is present the filter misses, the upsert collides on _id and the write is stale.
func (s *MongoStore) Upsert(ctx context.Context, rec Record) error {
	filter := bson.M{
		"_id":     rec.ID,
		"version": bson.M{"$lt": rec.Version},
	}

	_, err := s.collection(rec.Collection).ReplaceOne(ctx, filter, rec.Document(), options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return ErrStale
	}
	if err != nil {
		return fmt.Errorf("upsert %s %s v%d: %w", rec.Collection, rec.ID, rec.Version, err)
	}

	return nil
}

func (s *MongoStore) ClearLive(ctx context.Context, c Collection) error {
	if _, err := s.collection(c).DeleteMany(ctx, bson.M{"deleted": bson.M{"$ne": true}}); err != nil {
		return fmt.Errorf("clear %s: %w", c, err)
	}
	return s.ensureIndexes(ctx, c)
}

func (s *MongoStore) InsertMany(ctx context.Context, c Collection, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}

	docs := make([]any, len(recs))
	for i, rec := range recs {
		docs[i] = rec.Document()
	}

	if _, err := s.collection(c).InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		return fmt.Errorf("insert %d %s: %w", len(recs), c, err)
	}
	return nil
}

// EnsureIndexes creates the read-side indexes of every collection. It is idempotent.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	for _, c := range Collections {
		if err := s.ensureIndexes(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context, c Collection) error {
	models := collectionIndexes[c]
	if len(models) == 0 {
		return nil
	}
	if _, err := s.collection(c).Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create %s indexes: %w", c, err)
	}
	return nil
}
