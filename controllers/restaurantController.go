package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-food-ordering/database"
	"go-food-ordering/helpers"
	"go-food-ordering/models"

	"github.com/gin-gonic/gin"
)

type RestaurantController struct {
	restaurants RestaurantRepository
	logger      *slog.Logger
}

func NewRestaurantController(restaurants RestaurantRepository, logger *slog.Logger) *RestaurantController {
	return &RestaurantController{restaurants: restaurants, logger: logger}
}

func (rc *RestaurantController) GetRestaurant() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		restaurant, err := rc.restaurants.FindByID(ctx, c.Param("restaurantId"))
		if err != nil {
			helpers.RespondError(c, rc.logger, restaurantErr(err))
			return
		}
		c.JSON(http.StatusOK, restaurant)
	}
}

func (rc *RestaurantController) SearchRestaurants() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}

		result, err := rc.restaurants.Search(ctx, models.RestaurantSearch{
			City:             c.Param("city"),
			SearchQuery:      strings.TrimSpace(c.Query("searchQuery")),
			SelectedCuisines: splitCuisines(c.Query("selectedCuisines")),
			SortOption:       c.DefaultQuery("sortOption", models.SortByLastUpdated),
			Page:             page,
			PageSize:         database.DefaultPageSize,
		})
		if err != nil {
			helpers.RespondError(c, rc.logger, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func splitCuisines(raw string) []string {
	var cuisines []string
	for _, cuisine := range strings.Split(raw, ",") {
		if cuisine = strings.TrimSpace(cuisine); cuisine != "" {
			cuisines = append(cuisines, cuisine)
		}
	}
	return cuisines
}
