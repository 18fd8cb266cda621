package mongo

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type IndexConfig struct {
	CollectionName string
	IndexModel     mongo.IndexModel
}

var requiredIndexes = []IndexConfig{
	// Users Collection Indexes
	{
		CollectionName: usersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_user_username_unique"),
		},
	},
	{
		CollectionName: usersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_user_email_unique"),
		},
	},

	// Cart Items Collection Indexes
	// One line per (user, product); AddCartItem upserts against it
	{
		CollectionName: cartItemsCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "product_id", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("idx_cart_user_product"),
		},
	},

	// Orders Collection Indexes
	// Compound index for customer order history
	{
		CollectionName: ordersCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_user_orders"),
		},
	},
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	for _, idxConfig := range requiredIndexes {
		collection := s.collection(idxConfig.CollectionName)

		indexName, err := collection.Indexes().CreateOne(ctx, idxConfig.IndexModel)
		if err != nil {
			log.Printf("Error creating index on collection %s: %v",
				idxConfig.CollectionName, err)
			return err
		}

		log.Printf("Created index '%s' on collection '%s'", indexName, idxConfig.CollectionName)
	}
	return nil
}
