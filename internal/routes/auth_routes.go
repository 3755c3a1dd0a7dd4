package routes

import (
	"github.com/gin-gonic/gin"

	"tour_ops/internal/controllers"
)

func AuthRoutes(r *gin.Engine, ac *controllers.AuthController) {
	auth := r.Group("/auth")
	{
		auth.POST("/signup", ac.Signup)
		auth.POST("/login", ac.Login)
	}
}
