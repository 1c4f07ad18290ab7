package database

import (
	"context"
	"fmt"
	"time"

	"go-food-ordering/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type OrderStore struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{collection: db.Collection(OrderCollection), now: time.Now}
}

func (s *OrderStore) Insert(ctx context.Context, order *models.Order) error {
	if _, err := s.collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("insert order %s: %w", order.ID.Hex(), err)
	}
	return nil
}

func (s *OrderStore) FindByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var order models.Order
	if err := s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&order); err != nil {
		return nil, notFoundOr(err)
	}
	return &order, nil
}

// MarkPaid moves a placed order to paid and records the charged amount in one
// conditional update. It reports false when no placed order matched, which
// covers both a missing order and one that is already paid.
func (s *OrderStore) MarkPaid(ctx context.Context, id string, amountTotal int64) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, ErrNotFound
	}
	filter := bson.M{"_id": oid, "status": models.OrderStatusPlaced}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: models.OrderStatusPaid},
		{Key: "totalAmount", Value: amountTotal},
		{Key: "updatedAt", Value: s.now().UTC()},
	}}}
	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("mark order %s paid: %w", id, err)
	}
	return result.MatchedCount == 1, nil
}

// UpdateStatus sets the status and updatedAt only if the order is still in the
// status the caller read, so two concurrent transitions cannot both win.
func (s *OrderStore) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, at time.Time) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, ErrNotFound
	}
	filter := bson.M{"_id": oid, "status": from}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: to},
		{Key: "updatedAt", Value: at},
	}}}
	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("update order %s status: %w", id, err)
	}
	return result.MatchedCount == 1, nil
}

func (s *OrderStore) ListByUser(ctx context.Context, userID string) ([]models.OrderDetails, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.listDetails(ctx, bson.D{{Key: "user", Value: oid}})
}

func (s *OrderStore) ListByRestaurant(ctx context.Context, restaurantID string) ([]models.OrderDetails, error) {
	oid, err := primitive.ObjectIDFromHex(restaurantID)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.listDetails(ctx, bson.D{{Key: "restaurant", Value: oid}})
}

func (s *OrderStore) listDetails(ctx context.Context, match bson.D) ([]models.OrderDetails, error) {
	cursor, err := s.collection.Aggregate(ctx, orderDetailsPipeline(match))
	if err != nil {
		return nil, fmt.Errorf("aggregate orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []models.OrderDetails{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

// orderDetailsPipeline joins each matched order with its restaurant and its
// customer, newest order first.
func orderDetailsPipeline(match bson.D) mongo.Pipeline {
	lookupRestaurant := bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: RestaurantCollection},
		{Key: "localField", Value: "restaurant"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "restaurantDetails"},
	}}}
	unwindRestaurant := bson.D{{Key: "$unwind", Value: bson.D{
		{Key: "path", Value: "$restaurantDetails"},
		{Key: "preserveNullAndEmptyArrays", Value: true},
	}}}
	lookupUser := bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: UserCollection},
		{Key: "localField", Value: "user"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "userDetails"},
	}}}
	unwindUser := bson.D{{Key: "$unwind", Value: bson.D{
		{Key: "path", Value: "$userDetails"},
		{Key: "preserveNullAndEmptyArrays", Value: true},
	}}}

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		lookupRestaurant,
		unwindRestaurant,
		lookupUser,
		unwindUser,
	}
}
