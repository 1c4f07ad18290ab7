package database

import (
	"context"
	"fmt"
	"regexp"

	"go-food-ordering/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultPageSize = 10

type RestaurantStore struct {
	collection *mongo.Collection
}

func NewRestaurantStore(db *mongo.Database) *RestaurantStore {
	return &RestaurantStore{collection: db.Collection(RestaurantCollection)}
}

func (s *RestaurantStore) FindByID(ctx context.Context, id string) (*models.Restaurant, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *RestaurantStore) FindByOwner(ctx context.Context, userID string) (*models.Restaurant, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"user": oid})
}

func (s *RestaurantStore) findOne(ctx context.Context, filter bson.M) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := s.collection.FindOne(ctx, filter).Decode(&restaurant); err != nil {
		return nil, notFoundOr(err)
	}
	return &restaurant, nil
}

func (s *RestaurantStore) Create(ctx context.Context, restaurant *models.Restaurant) error {
	if _, err := s.collection.InsertOne(ctx, restaurant); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert restaurant: %w", err)
	}
	return nil
}

// Update replaces the restaurant document. The owner is part of the filter so
// a document can only be replaced by the user it belongs to.
func (s *RestaurantStore) Update(ctx context.Context, restaurant *models.Restaurant) error {
	filter := bson.M{"_id": restaurant.ID, "user": restaurant.User}
	result, err := s.collection.ReplaceOne(ctx, filter, restaurant)
	if err != nil {
		return fmt.Errorf("replace restaurant %s: %w", restaurant.ID.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RestaurantStore) Search(ctx context.Context, search models.RestaurantSearch) (*models.RestaurantSearchResult, error) {
	pageSize := search.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := search.Page
	if page < 1 {
		page = 1
	}

	filter := searchFilter(search)
	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count restaurants: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortField(search.SortOption), Value: 1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find restaurants: %w", err)
	}
	defer cursor.Close(ctx)

	restaurants := []models.Restaurant{}
	if err := cursor.All(ctx, &restaurants); err != nil {
		return nil, fmt.Errorf("decode restaurants: %w", err)
	}

	pages := (total + int64(pageSize) - 1) / int64(pageSize)
	return &models.RestaurantSearchResult{
		Data:       restaurants,
		Pagination: models.Pagination{Total: total, Page: page, Pages: pages},
	}, nil
}

func searchFilter(search models.RestaurantSearch) bson.M {
	filter := bson.M{"city": exactInsensitive(search.City)}

	if len(search.SelectedCuisines) > 0 {
		cuisines := make(bson.A, 0, len(search.SelectedCuisines))
		for _, cuisine := range search.SelectedCuisines {
			cuisines = append(cuisines, exactInsensitive(cuisine))
		}
		filter["cuisines"] = bson.M{"$all": cuisines}
	}

	if search.SearchQuery != "" {
		query := primitive.Regex{Pattern: regexp.QuoteMeta(search.SearchQuery), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"restaurantName": query},
			bson.M{"cuisines": bson.M{"$in": bson.A{query}}},
		}
	}
	return filter
}

func exactInsensitive(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}

func sortField(option string) string {
	switch option {
	case models.SortByDeliveryPrice, models.SortByEstimatedDeliveryTime:
		return option
	}
	return models.SortByLastUpdated
}
