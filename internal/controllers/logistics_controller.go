package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tour_ops/internal/models"
	"tour_ops/internal/services"
)

type LogisticsController struct {
	logistics *services.LogisticsAttacher
}

func NewLogisticsController(logistics *services.LogisticsAttacher) *LogisticsController {
	return &LogisticsController{logistics: logistics}
}

type logisticsInput struct {
	SegmentID       *string              `json:"segment_id"`
	LogisticsType   models.LogisticsType `json:"logistics_type" binding:"required"`
	EntityType      *models.EntityKind   `json:"entity_type"`
	EntityID        *string              `json:"entity_id"`
	ItemName        string               `json:"item_name"`
	Quantity        *int                 `json:"quantity"`
	Cost            decimal.Decimal      `json:"cost"`
	DriverPilotName string               `json:"driver_pilot_name"`
	Notes           string               `json:"notes"`
}

func (in logisticsInput) toService() services.LogisticsInput {
	return services.LogisticsInput{
		SegmentID:       in.SegmentID,
		LogisticsType:   in.LogisticsType,
		EntityType:      in.EntityType,
		EntityID:        in.EntityID,
		ItemName:        in.ItemName,
		Quantity:        in.Quantity,
		Cost:            in.Cost,
		DriverPilotName: in.DriverPilotName,
		Notes:           in.Notes,
	}
}

func (lc *LogisticsController) CreateLogistics(c *gin.Context) {
	var input logisticsInput
	if !bind(c, "CreateLogistics", &input) {
		return
	}
	item, err := lc.logistics.CreateLogistics(c.Request.Context(), c.Param("id"), input.toService())
	if err != nil {
		respondError(c, "CreateLogistics", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"logistics": item})
}

// ListLogistics lists a route's items with the route-level cost breakdown.
func (lc *LogisticsController) ListLogistics(c *gin.Context) {
	items, err := lc.logistics.ListByRoute(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "ListLogistics", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"logistics": items,
		"costs":     services.BuildCostBreakdown(items, nil),
	})
}

// GetLogistics returns the item and its provider's name, null when the item
// has no provider or the provider was deleted.
func (lc *LogisticsController) GetLogistics(c *gin.Context) {
	ctx := c.Request.Context()
	item, err := lc.logistics.GetLogistics(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "GetLogistics", err)
		return
	}
	name, err := lc.logistics.ResolveEntityName(ctx, item)
	if err != nil {
		respondError(c, "GetLogistics", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logistics": item, "entity_name": name})
}

func (lc *LogisticsController) UpdateLogistics(c *gin.Context) {
	var input logisticsInput
	if !bind(c, "UpdateLogistics", &input) {
		return
	}
	item, err := lc.logistics.UpdateLogistics(c.Request.Context(), c.Param("id"), input.toService())
	if err != nil {
		respondError(c, "UpdateLogistics", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logistics": item})
}

func (lc *LogisticsController) DeleteLogistics(c *gin.Context) {
	if err := lc.logistics.DeleteLogistics(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "DeleteLogistics", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logistics item deleted"})
}

// ListSegmentLogistics lists one segment's items with their summed cost.
func (lc *LogisticsController) ListSegmentLogistics(c *gin.Context) {
	segmentID := c.Param("id")
	items, err := lc.logistics.ListBySegment(c.Request.Context(), segmentID)
	if err != nil {
		respondError(c, "ListSegmentLogistics", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"logistics": items,
		"cost":      services.SegmentCost(items, segmentID),
	})
}
