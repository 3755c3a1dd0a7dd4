package routes

import (
	"github.com/gin-gonic/gin"

	"tour_ops/internal/controllers"
	"tour_ops/internal/models"
	"tour_ops/internal/services"
)

func registerEntity[T models.Entity](g *gin.RouterGroup, path string, store *services.EntityStore) {
	ec := controllers.NewEntityController[T](store)
	group := g.Group(path)
	{
		group.POST("", ec.Create)
		group.GET("", ec.List)
		group.GET("/:id", ec.Get)
		group.PUT("/:id", ec.Update)
		group.DELETE("/:id", ec.Delete)
	}
}

// EntityRoutes mounts CRUD for every reference table under /entities.
func EntityRoutes(api *gin.RouterGroup, store *services.EntityStore) {
	entities := api.Group("/entities")
	registerEntity[models.Client](entities, "/clients", store)
	registerEntity[models.Location](entities, "/locations", store)
	registerEntity[models.Hotel](entities, "/hotels", store)
	registerEntity[models.Staff](entities, "/staff", store)
	registerEntity[models.Vehicle](entities, "/vehicles", store)
	registerEntity[models.ThirdParty](entities, "/third-parties", store)
	registerEntity[models.Caterer](entities, "/caterers", store)
}
