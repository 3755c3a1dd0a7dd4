package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tour_ops/internal/models"
	"tour_ops/internal/services"
)

type RouteController struct {
	routes *services.RouteService
}

func NewRouteController(routes *services.RouteService) *RouteController {
	return &RouteController{routes: routes}
}

type routeInput struct {
	Name          string             `json:"name" binding:"required"`
	Description   string             `json:"description"`
	StartDate     *string            `json:"start_date"`
	Status        models.RouteStatus `json:"status"`
	Currency      string             `json:"currency"`
	EstimatedCost decimal.Decimal    `json:"estimated_cost"`
	ActualCost    decimal.Decimal    `json:"actual_cost"`
	Notes         string             `json:"notes"`
}

func (in routeInput) toService() (services.RouteInput, error) {
	start, err := parseDate("start_date", in.StartDate)
	if err != nil {
		return services.RouteInput{}, err
	}
	return services.RouteInput{
		Name:          in.Name,
		Description:   in.Description,
		StartDate:     start,
		Status:        in.Status,
		Currency:      in.Currency,
		EstimatedCost: in.EstimatedCost,
		ActualCost:    in.ActualCost,
		Notes:         in.Notes,
	}, nil
}

// CreateRoute creates a draft route unless another status is given.
func (rc *RouteController) CreateRoute(c *gin.Context) {
	var input routeInput
	if !bind(c, "CreateRoute", &input) {
		return
	}
	in, err := input.toService()
	if err != nil {
		respondError(c, "CreateRoute", err)
		return
	}
	route, err := rc.routes.CreateRoute(c.Request.Context(), in)
	if err != nil {
		respondError(c, "CreateRoute", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"route": route})
}

// ListRoutes returns all routes, optionally filtered by ?status=.
func (rc *RouteController) ListRoutes(c *gin.Context) {
	routes, err := rc.routes.ListRoutes(c.Request.Context(), models.RouteStatus(c.Query("status")))
	if err != nil {
		respondError(c, "ListRoutes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

func (rc *RouteController) GetRoute(c *gin.Context) {
	route, err := rc.routes.GetRoute(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "GetRoute", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

// GetRouteSummary returns the route with its derived dates, distance and costs.
func (rc *RouteController) GetRouteSummary(c *gin.Context) {
	summary, err := rc.routes.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "GetRouteSummary", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (rc *RouteController) UpdateRoute(c *gin.Context) {
	var input routeInput
	if !bind(c, "UpdateRoute", &input) {
		return
	}
	in, err := input.toService()
	if err != nil {
		respondError(c, "UpdateRoute", err)
		return
	}
	route, err := rc.routes.UpdateRoute(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, "UpdateRoute", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

// DeleteRoute removes a route with its segments, logistics, transfers and participants.
func (rc *RouteController) DeleteRoute(c *gin.Context) {
	if err := rc.routes.DeleteRoute(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "DeleteRoute", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route deleted successfully"})
}
