package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tour_ops/internal/models"
	"tour_ops/internal/services"
)

// EntityController serves CRUD for one reference table.
type EntityController[T models.Entity] struct {
	store *services.EntityStore
}

func NewEntityController[T models.Entity](store *services.EntityStore) *EntityController[T] {
	return &EntityController[T]{store: store}
}

func (ec *EntityController[T]) Create(c *gin.Context) {
	var input T
	if !bind(c, "CreateEntity", &input) {
		return
	}
	if err := services.CreateEntity(c.Request.Context(), ec.store, &input); err != nil {
		respondError(c, "CreateEntity", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": input})
}

func (ec *EntityController[T]) List(c *gin.Context) {
	items, err := services.ListEntities[T](c.Request.Context(), ec.store)
	if err != nil {
		respondError(c, "ListEntities", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (ec *EntityController[T]) Get(c *gin.Context) {
	item, err := services.GetEntity[T](c.Request.Context(), ec.store, c.Param("id"))
	if err != nil {
		respondError(c, "GetEntity", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (ec *EntityController[T]) Update(c *gin.Context) {
	var input T
	if !bind(c, "UpdateEntity", &input) {
		return
	}
	item, err := services.UpdateEntity(c.Request.Context(), ec.store, c.Param("id"), &input)
	if err != nil {
		respondError(c, "UpdateEntity", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (ec *EntityController[T]) Delete(c *gin.Context) {
	if err := services.DeleteEntity[T](c.Request.Context(), ec.store, c.Param("id")); err != nil {
		respondError(c, "DeleteEntity", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
