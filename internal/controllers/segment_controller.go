package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tour_ops/internal/services"
)

type SegmentController struct {
	segments *services.SegmentSequencer
}

func NewSegmentController(segments *services.SegmentSequencer) *SegmentController {
	return &SegmentController{segments: segments}
}

type segmentInput struct {
	DayNumber           int     `json:"day_number" binding:"required"`
	SegmentOrder        int     `json:"segment_order"`
	FromLocationID      *string `json:"from_location_id"`
	ToLocationID        *string `json:"to_location_id"`
	OvernightLocationID *string `json:"overnight_location_id"`
	Distance            float64 `json:"distance"`
	Notes               string  `json:"notes"`
}

func (in segmentInput) toService() services.SegmentInput {
	return services.SegmentInput{
		DayNumber:           in.DayNumber,
		SegmentOrder:        in.SegmentOrder,
		FromLocationID:      in.FromLocationID,
		ToLocationID:        in.ToLocationID,
		OvernightLocationID: in.OvernightLocationID,
		Distance:            in.Distance,
		Notes:               in.Notes,
	}
}

type moveInput struct {
	Direction services.Direction `json:"direction" binding:"required"`
}

func (sc *SegmentController) CreateSegment(c *gin.Context) {
	var input segmentInput
	if !bind(c, "CreateSegment", &input) {
		return
	}
	seg, err := sc.segments.CreateSegment(c.Request.Context(), c.Param("id"), input.toService())
	if err != nil {
		respondError(c, "CreateSegment", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"segment": seg})
}

func (sc *SegmentController) ListSegments(c *gin.Context) {
	segs, err := sc.segments.ListSegments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "ListSegments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"segments": segs})
}

func (sc *SegmentController) UpdateSegment(c *gin.Context) {
	var input segmentInput
	if !bind(c, "UpdateSegment", &input) {
		return
	}
	seg, err := sc.segments.UpdateSegment(c.Request.Context(), c.Param("id"), input.toService())
	if err != nil {
		respondError(c, "UpdateSegment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"segment": seg})
}

func (sc *SegmentController) DeleteSegment(c *gin.Context) {
	if err := sc.segments.DeleteSegment(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "DeleteSegment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Segment deleted"})
}

func (sc *SegmentController) MoveSegment(c *gin.Context) {
	var input moveInput
	if !bind(c, "MoveSegment", &input) {
		return
	}
	segs, err := sc.segments.MoveSegment(c.Request.Context(), c.Param("id"), input.Direction)
	if err != nil {
		respondError(c, "MoveSegment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"segments": segs})
}

func (sc *SegmentController) AddStop(c *gin.Context) {
	var input struct {
		LocationID string `json:"location_id" binding:"required"`
		Notes      string `json:"notes"`
		Position   *int   `json:"position"`
	}
	if !bind(c, "AddStop", &input) {
		return
	}
	stops, err := sc.segments.AddStop(c.Request.Context(), c.Param("id"), input.LocationID, input.Notes, input.Position)
	if err != nil {
		respondError(c, "AddStop", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stops": stops})
}

func (sc *SegmentController) ListStops(c *gin.Context) {
	stops, err := sc.segments.ListStops(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "ListStops", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stops": stops})
}

func (sc *SegmentController) ReorderStops(c *gin.Context) {
	var input struct {
		StopIDs []string `json:"stop_ids" binding:"required"`
	}
	if !bind(c, "ReorderStops", &input) {
		return
	}
	stops, err := sc.segments.ReorderStops(c.Request.Context(), c.Param("id"), input.StopIDs)
	if err != nil {
		respondError(c, "ReorderStops", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stops": stops})
}

func (sc *SegmentController) RemoveStop(c *gin.Context) {
	stops, err := sc.segments.RemoveStop(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "RemoveStop", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stops": stops})
}

func (sc *SegmentController) MoveStop(c *gin.Context) {
	var input moveInput
	if !bind(c, "MoveStop", &input) {
		return
	}
	stops, err := sc.segments.MoveStop(c.Request.Context(), c.Param("id"), input.Direction)
	if err != nil {
		respondError(c, "MoveStop", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stops": stops})
}

func (sc *SegmentController) GetSegment(c *gin.Context) {
	seg, err := sc.segments.GetSegment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "GetSegment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"segment": seg})
}
