package routes

import (
	"github.com/gin-gonic/gin"

	"tour_ops/internal/controllers"
)

func AccountRoutes(api *gin.RouterGroup, ac *controllers.AccountController) {
	accounts := api.Group("/accounts")
	{
		accounts.POST("", ac.CreateAccount)
		accounts.GET("", ac.ListAccounts)
		accounts.GET("/primary", ac.PrimaryAccount)
		accounts.GET("/:id", ac.GetAccount)
		accounts.PUT("/:id", ac.UpdateAccount)
		accounts.DELETE("/:id", ac.DeleteAccount)
		accounts.POST("/:id/transactions", ac.RecordTransaction)
		accounts.GET("/:id/transactions", ac.ListTransactions)
	}
}
