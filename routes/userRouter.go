package routes

import (
	"go-food-ordering/controllers"

	"github.com/gin-gonic/gin"
)

// UserRoutes only needs a verified identity: the first POST is what creates
// the stored user.
func UserRoutes(incomingRoutes *gin.Engine, guards Guards, users *controllers.UserController) {
	me := incomingRoutes.Group("/my/user", guards.Identity...)
	me.GET("", users.GetCurrentUser())
	me.POST("", users.CreateCurrentUser())
	me.PUT("", users.UpdateCurrentUser())
}
