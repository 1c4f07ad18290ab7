package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go-food-ordering/database"
	"go-food-ordering/helpers"
	"go-food-ordering/media"
	"go-food-ordering/middleware"
	"go-food-ordering/models"
	"go-food-ordering/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	restaurantFormField = "restaurant"
	imageFormField      = "imageFile"
)

var errImageRequired = errors.New("imageFile is required")

type RestaurantRepository interface {
	FindByID(ctx context.Context, id string) (*models.Restaurant, error)
	FindByOwner(ctx context.Context, userID string) (*models.Restaurant, error)
	Create(ctx context.Context, restaurant *models.Restaurant) error
	Update(ctx context.Context, restaurant *models.Restaurant) error
	Search(ctx context.Context, search models.RestaurantSearch) (*models.RestaurantSearchResult, error)
}

type MyRestaurantController struct {
	restaurants RestaurantRepository
	images      media.ImageUploader
	logger      *slog.Logger
	now         func() time.Time
}

func NewMyRestaurantController(restaurants RestaurantRepository, images media.ImageUploader, logger *slog.Logger) *MyRestaurantController {
	return &MyRestaurantController{
		restaurants: restaurants,
		images:      images,
		logger:      logger,
		now:         time.Now,
	}
}

func (mc *MyRestaurantController) GetMyRestaurant() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		restaurant, err := mc.restaurants.FindByOwner(ctx, c.GetString(middleware.UserIDKey))
		if err != nil {
			helpers.RespondError(c, mc.logger, restaurantErr(err))
			return
		}
		c.JSON(http.StatusOK, restaurant)
	}
}

func (mc *MyRestaurantController) CreateMyRestaurant() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		userID := c.GetString(middleware.UserIDKey)
		owner, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		_, err = mc.restaurants.FindByOwner(ctx, userID)
		if err == nil {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": "User already has a restaurant"})
			return
		}
		if !errors.Is(err, database.ErrNotFound) {
			helpers.RespondError(c, mc.logger, err)
			return
		}

		req, ok := bindRestaurantForm(c)
		if !ok {
			return
		}
		imageURL, err := mc.uploadImage(ctx, c)
		if errors.Is(err, errImageRequired) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		if err != nil {
			helpers.RespondError(c, mc.logger, err)
			return
		}

		restaurant := &models.Restaurant{
			ID:          primitive.NewObjectID(),
			User:        owner,
			ImageURL:    imageURL,
			LastUpdated: mc.now().UTC(),
		}
		req.ApplyTo(restaurant)

		if err := mc.restaurants.Create(ctx, restaurant); err != nil {
			helpers.RespondError(c, mc.logger, err)
			return
		}
		c.JSON(http.StatusCreated, restaurant)
	}
}

// UpdateMyRestaurant replaces the editable fields. The image is kept unless a
// new one is uploaded.
func (mc *MyRestaurantController) UpdateMyRestaurant() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		restaurant, err := mc.restaurants.FindByOwner(ctx, c.GetString(middleware.UserIDKey))
		if err != nil {
			helpers.RespondError(c, mc.logger, restaurantErr(err))
			return
		}

		req, ok := bindRestaurantForm(c)
		if !ok {
			return
		}
		imageURL, err := mc.uploadImage(ctx, c)
		switch {
		case err == nil:
			restaurant.ImageURL = imageURL
		case errors.Is(err, errImageRequired):
		default:
			helpers.RespondError(c, mc.logger, err)
			return
		}

		req.ApplyTo(restaurant)
		restaurant.LastUpdated = mc.now().UTC()

		if err := mc.restaurants.Update(ctx, restaurant); err != nil {
			helpers.RespondError(c, mc.logger, restaurantErr(err))
			return
		}
		c.JSON(http.StatusOK, restaurant)
	}
}

// bindRestaurantForm decodes the JSON document carried in the "restaurant"
// multipart field and validates it.
func bindRestaurantForm(c *gin.Context) (models.RestaurantRequest, bool) {
	var req models.RestaurantRequest
	raw := c.PostForm(restaurantFormField)
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "restaurant is required"})
		return req, false
	}
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return req, false
	}
	return req, helpers.Validate(c, req)
}

func (mc *MyRestaurantController) uploadImage(ctx context.Context, c *gin.Context) (string, error) {
	header, err := c.FormFile(imageFormField)
	if err != nil {
		return "", errImageRequired
	}
	if header.Size > media.MaxImageSize {
		return "", media.ErrImageTooLarge
	}
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	return mc.images.Upload(ctx, file)
}

func restaurantErr(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return services.ErrRestaurantNotFound
	}
	return err
}
