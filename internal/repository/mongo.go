package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const stateCollection = "app_state"

type stateDocument struct {
	Key  string `bson:"_id"`
	Blob string `bson:"blob"`
}

// MongoBlobStore implements BlobStore with one document per key
type MongoBlobStore struct {
	coll *mongo.Collection
}

// ConnectMongo opens a client, pings it and returns a store on dbName
func ConnectMongo(ctx context.Context, uri, dbName string) (*MongoBlobStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}
	log.Printf("✅ Connected to MongoDB database %s", dbName)
	return NewMongoBlobStore(client.Database(dbName)), nil
}

func NewMongoBlobStore(db *mongo.Database) *MongoBlobStore {
	return &MongoBlobStore{coll: db.Collection(stateCollection)}
}

func (s *MongoBlobStore) Load(ctx context.Context, key string) ([]byte, error) {
	var doc stateDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc.Blob), nil
}

func (s *MongoBlobStore) Save(ctx context.Context, key string, blob []byte) error {
	opts := options.Update().SetUpsert(true)
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"blob": string(blob)}},
		opts,
	)
	return err
}

func (s *MongoBlobStore) Delete(ctx context.Context, key string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Close disconnects the underlying client
func (s *MongoBlobStore) Close(ctx context.Context) error {
	return s.coll.Database().Client().Disconnect(ctx)
}
