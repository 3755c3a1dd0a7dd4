package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"tour_ops/internal/models"
	"tour_ops/internal/services"
)

type ParticipantController struct {
	participants *services.ParticipantAssignment
	segments     *services.SegmentSequencer
}

func NewParticipantController(participants *services.ParticipantAssignment, segments *services.SegmentSequencer) *ParticipantController {
	return &ParticipantController{participants: participants, segments: segments}
}

// participantView adds the printable name and the segment ids that still
// exist on the route.
type participantView struct {
	models.RouteParticipant
	Name             string   `json:"name"`
	ActiveSegmentIDs []string `json:"active_segment_ids"`
}

func (pc *ParticipantController) view(ctx context.Context, part *models.RouteParticipant, segs []models.RouteSegment) (participantView, error) {
	name, err := pc.participants.ParticipantName(ctx, part)
	if err != nil {
		return participantView{}, err
	}
	return participantView{
		RouteParticipant: *part,
		Name:             name,
		ActiveSegmentIDs: services.ActiveSegmentIDs(part, segs),
	}, nil
}

func (pc *ParticipantController) respondOne(c *gin.Context, op string, status int, part *models.RouteParticipant) {
	ctx := c.Request.Context()
	segs, err := pc.segments.ListSegments(ctx, part.RouteID)
	if err != nil {
		respondError(c, op, err)
		return
	}
	v, err := pc.view(ctx, part, segs)
	if err != nil {
		respondError(c, op, err)
		return
	}
	c.JSON(status, gin.H{"participant": v})
}

func (pc *ParticipantController) AddParticipant(c *gin.Context) {
	var input struct {
		Role       models.ParticipantRole `json:"role" binding:"required"`
		ClientID   *string                `json:"client_id"`
		GuideID    *string                `json:"guide_id"`
		Notes      string                 `json:"notes"`
		SegmentIDs []string               `json:"segment_ids"`
	}
	if !bind(c, "AddParticipant", &input) {
		return
	}
	part, err := pc.participants.AddParticipant(c.Request.Context(), c.Param("id"), services.ParticipantInput{
		Role:       input.Role,
		ClientID:   input.ClientID,
		GuideID:    input.GuideID,
		Notes:      input.Notes,
		SegmentIDs: input.SegmentIDs,
	})
	if err != nil {
		respondError(c, "AddParticipant", err)
		return
	}
	pc.respondOne(c, "AddParticipant", http.StatusCreated, part)
}

func (pc *ParticipantController) ListParticipants(c *gin.Context) {
	ctx := c.Request.Context()
	routeID := c.Param("id")
	parts, err := pc.participants.ListParticipants(ctx, routeID)
	if err != nil {
		respondError(c, "ListParticipants", err)
		return
	}
	segs, err := pc.segments.ListSegments(ctx, routeID)
	if err != nil {
		respondError(c, "ListParticipants", err)
		return
	}
	views := make([]participantView, 0, len(parts))
	for i := range parts {
		v, err := pc.view(ctx, &parts[i], segs)
		if err != nil {
			respondError(c, "ListParticipants", err)
			return
		}
		views = append(views, v)
	}
	c.JSON(http.StatusOK, gin.H{"participants": views})
}

// UpdateSegments replaces the participant's segment set. An empty list is
// valid and means the participant is on no specific segment.
func (pc *ParticipantController) UpdateSegments(c *gin.Context) {
	var input struct {
		SegmentIDs []string `json:"segment_ids"`
	}
	if !bind(c, "UpdateSegments", &input) {
		return
	}
	part, err := pc.participants.UpdateSegmentAssignment(c.Request.Context(), c.Param("id"), input.SegmentIDs)
	if err != nil {
		respondError(c, "UpdateSegments", err)
		return
	}
	pc.respondOne(c, "UpdateSegments", http.StatusOK, part)
}

func (pc *ParticipantController) UpdateNotes(c *gin.Context) {
	var input struct {
		Notes string `json:"notes"`
	}
	if !bind(c, "UpdateNotes", &input) {
		return
	}
	part, err := pc.participants.UpdateNotes(c.Request.Context(), c.Param("id"), input.Notes)
	if err != nil {
		respondError(c, "UpdateNotes", err)
		return
	}
	pc.respondOne(c, "UpdateNotes", http.StatusOK, part)
}

func (pc *ParticipantController) RemoveParticipant(c *gin.Context) {
	if err := pc.participants.RemoveParticipant(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "RemoveParticipant", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Participant removed"})
}
