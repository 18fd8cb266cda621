package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/shopa-beauty/storefront-api/pkg/models"
	"github.com/shopa-beauty/storefront-api/pkg/shop"
)

var _ shop.Store = (*Store)(nil)

// nextID hands out numeric ids from the counters collection so documents
// carry the same integer ids as the relational store.
func (s *Store) nextID(ctx context.Context, sequence string, n int) (uint, error) {
	var counter struct {
		Value int64 `bson:"value"`
	}
	err := s.collection(countersCollection).FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: sequence}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "value", Value: int64(n)}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", sequence, err)
	}
	// First id of the reserved block.
	return uint(counter.Value) - uint(n) + 1, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	id, err := s.nextID(ctx, usersCollection, 1)
	if err != nil {
		return err
	}
	user.ID = id

	if _, err := s.collection(usersCollection).InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return shop.ErrDuplicateUser
		}
		return err
	}
	return nil
}

func (s *Store) findUser(ctx context.Context, filter bson.D) (*models.User, error) {
	var user models.User
	err := s.collection(usersCollection).FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, shop.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.findUser(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, bson.D{{Key: "username", Value: username}})
}

func (s *Store) AddCartItem(ctx context.Context, userID uint, productID string, quantity int, addedAt time.Time) (*models.CartItem, error) {
	coll := s.collection(cartItemsCollection)
	filter := bson.D{
		{Key: "user_id", Value: userID},
		{Key: "product_id", Value: productID},
	}

	var item models.CartItem
	err := coll.FindOneAndUpdate(ctx, filter,
		bson.D{{Key: "$inc", Value: bson.D{{Key: "quantity", Value: quantity}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&item)
	if err == nil {
		return &item, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	id, err := s.nextID(ctx, cartItemsCollection, 1)
	if err != nil {
		return nil, err
	}
	item = models.CartItem{
		ID:        id,
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   addedAt,
	}
	if _, err := coll.InsertOne(ctx, item); err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
		// Lost the race to a concurrent insert of the same pair.
		return s.AddCartItem(ctx, userID, productID, quantity, addedAt)
	}
	return &item, nil
}

func (s *Store) SetCartItemQuantity(ctx context.Context, id uint, quantity int) error {
	result, err := s.collection(cartItemsCollection).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "quantity", Value: quantity}}}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return shop.ErrCartItemNotFound
	}
	return nil
}

func (s *Store) DeleteCartItem(ctx context.Context, id uint) error {
	result, err := s.collection(cartItemsCollection).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return shop.ErrCartItemNotFound
	}
	return nil
}

func (s *Store) ListCartItems(ctx context.Context, userID uint) ([]models.CartItem, error) {
	cursor, err := s.collection(cartItemsCollection).Find(ctx,
		bson.D{{Key: "user_id", Value: userID}},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.CartItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// PlaceOrder inserts the order document and deletes the consumed cart lines
// inside one session transaction.
func (s *Store) PlaceOrder(ctx context.Context, order *models.Order, clearCartItemIDs []uint) error {
	orderID, err := s.nextID(ctx, ordersCollection, 1)
	if err != nil {
		return err
	}
	if n := len(order.Items); n > 0 {
		firstItemID, err := s.nextID(ctx, "order_items", n)
		if err != nil {
			return err
		}
		for i := range order.Items {
			order.Items[i].ID = firstItemID + uint(i)
			order.Items[i].OrderID = orderID
		}
	}
	order.ID = orderID

	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		if _, err := s.collection(ordersCollection).InsertOne(ctx, order); err != nil {
			return nil, err
		}
		if len(clearCartItemIDs) == 0 {
			return nil, nil
		}
		_, err := s.collection(cartItemsCollection).DeleteMany(ctx,
			bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: clearCartItemIDs}}}},
		)
		return nil, err
	})
	if err != nil {
		order.ID = 0
		return fmt.Errorf("order transaction: %w", err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.collection(ordersCollection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, shop.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	return &order, nil
}

func (s *Store) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	cursor, err := s.collection(ordersCollection).Find(ctx,
		bson.D{{Key: "user_id", Value: userID}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	for i := range orders {
		for j := range orders[i].Items {
			orders[i].Items[j].OrderID = orders[i].ID
		}
	}
	return orders, nil
}
