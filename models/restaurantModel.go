package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MenuItem struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Price int64              `bson:"price" json:"price"` // minor currency units
}

type Restaurant struct {
	ID                    primitive.ObjectID `bson:"_id" json:"_id"`
	User                  primitive.ObjectID `bson:"user" json:"user"`
	RestaurantName        string             `bson:"restaurantName" json:"restaurantName"`
	City                  string             `bson:"city" json:"city"`
	Country               string             `bson:"country" json:"country"`
	DeliveryPrice         int64              `bson:"deliveryPrice" json:"deliveryPrice"`
	EstimatedDeliveryTime int                `bson:"estimatedDeliveryTime" json:"estimatedDeliveryTime"`
	Cuisines              []string           `bson:"cuisines" json:"cuisines"`
	MenuItems             []MenuItem         `bson:"menuItems" json:"menuItems"`
	ImageURL              string             `bson:"imageUrl" json:"imageUrl"`
	LastUpdated           time.Time          `bson:"lastUpdated" json:"lastUpdated"`
}

type MenuItemRequest struct {
	ID    string `json:"_id"`
	Name  string `json:"name" validate:"required"`
	Price int64  `json:"price" validate:"min=0"`
}

// RestaurantRequest is the editable part of a restaurant, as submitted by its operator.
type RestaurantRequest struct {
	RestaurantName        string            `json:"restaurantName" validate:"required"`
	City                  string            `json:"city" validate:"required"`
	Country               string            `json:"country" validate:"required"`
	DeliveryPrice         int64             `json:"deliveryPrice" validate:"min=0"`
	EstimatedDeliveryTime int               `json:"estimatedDeliveryTime" validate:"min=0"`
	Cuisines              []string          `json:"cuisines" validate:"required,min=1"`
	MenuItems             []MenuItemRequest `json:"menuItems" validate:"dive"`
}

// ApplyTo copies the request onto r. Menu items keep a submitted id so cart
// references stay valid across menu edits; new items get a fresh id.
func (req RestaurantRequest) ApplyTo(r *Restaurant) {
	r.RestaurantName = req.RestaurantName
	r.City = req.City
	r.Country = req.Country
	r.DeliveryPrice = req.DeliveryPrice
	r.EstimatedDeliveryTime = req.EstimatedDeliveryTime
	r.Cuisines = req.Cuisines

	items := make([]MenuItem, 0, len(req.MenuItems))
	for _, in := range req.MenuItems {
		id, err := primitive.ObjectIDFromHex(in.ID)
		if err != nil {
			id = primitive.NewObjectID()
		}
		items = append(items, MenuItem{ID: id, Name: in.Name, Price: in.Price})
	}
	r.MenuItems = items
}

const (
	SortByLastUpdated           = "lastUpdated"
	SortByDeliveryPrice         = "deliveryPrice"
	SortByEstimatedDeliveryTime = "estimatedDeliveryTime"
)

type RestaurantSearch struct {
	City             string
	SearchQuery      string
	SelectedCuisines []string
	SortOption       string
	Page             int
	PageSize         int
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int64 `json:"pages"`
}

type RestaurantSearchResult struct {
	Data       []Restaurant `json:"data"`
	Pagination Pagination   `json:"pagination"`
}
