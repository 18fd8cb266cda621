package mongo

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	usersCollection     = "users"
	cartItemsCollection = "cart_items"
	ordersCollection    = "orders"
	countersCollection  = "counters"
)

// Store keeps users, cart items and orders (with embedded items) in MongoDB.
// Checkout uses a multi-document transaction, so the server must run as a
// replica set.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func GetMongoClient(uri string) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)

	clientOptions := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)
	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return nil, fmt.Errorf("create MongoDB client: %w", err)
	}
	return client, nil
}

// Open connects, pings and ensures indexes.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := GetMongoClient(uri)
	if err != nil {
		return nil, err
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	log.Println("Connected to MongoDB successfully")
	return s, nil
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
