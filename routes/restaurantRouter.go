package routes

import (
	"go-food-ordering/controllers"

	"github.com/gin-gonic/gin"
)

func RestaurantRoutes(incomingRoutes *gin.Engine, restaurants *controllers.RestaurantController) {
	incomingRoutes.GET("/restaurant/search/:city", restaurants.SearchRestaurants())
	incomingRoutes.GET("/restaurant/:restaurantId", restaurants.GetRestaurant())
}

func MyRestaurantRoutes(incomingRoutes *gin.Engine, guards Guards, myRestaurant *controllers.MyRestaurantController) {
	mine := incomingRoutes.Group("/my/restaurant", guards.User...)
	mine.GET("", myRestaurant.GetMyRestaurant())
	mine.POST("", myRestaurant.CreateMyRestaurant())
	mine.PUT("", myRestaurant.UpdateMyRestaurant())
}
