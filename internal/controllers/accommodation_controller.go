package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tour_ops/internal/models"
	"tour_ops/internal/services"
)

type AccommodationController struct {
	accommodations *services.AccommodationManager
}

func NewAccommodationController(accommodations *services.AccommodationManager) *AccommodationController {
	return &AccommodationController{accommodations: accommodations}
}

type accommodationInput struct {
	HotelID   string           `json:"hotel_id" binding:"required"`
	GroupType models.GroupType `json:"group_type" binding:"required"`
	Notes     string           `json:"notes"`
}

type roomInput struct {
	RoomType       models.RoomType `json:"room_type" binding:"required"`
	RoomLabel      string          `json:"room_label"`
	ParticipantIDs []string        `json:"participant_ids"`
	IsCouple       bool            `json:"is_couple"`
	Notes          string          `json:"notes"`
}

func (in roomInput) toService() services.RoomInput {
	return services.RoomInput{
		RoomType:       in.RoomType,
		RoomLabel:      in.RoomLabel,
		ParticipantIDs: in.ParticipantIDs,
		IsCouple:       in.IsCouple,
		Notes:          in.Notes,
	}
}

func (ac *AccommodationController) AddHotel(c *gin.Context) {
	var input accommodationInput
	if !bind(c, "AddHotel", &input) {
		return
	}
	acc, err := ac.accommodations.AddHotel(c.Request.Context(), c.Param("id"), input.HotelID, input.GroupType, input.Notes)
	if err != nil {
		respondError(c, "AddHotel", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"accommodation": acc})
}

func (ac *AccommodationController) ListAccommodations(c *gin.Context) {
	accs, err := ac.accommodations.ListAccommodations(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "ListAccommodations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accommodations": accs})
}

func (ac *AccommodationController) GetAccommodation(c *gin.Context) {
	acc, err := ac.accommodations.GetAccommodation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "GetAccommodation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accommodation": acc})
}

func (ac *AccommodationController) UpdateHotel(c *gin.Context) {
	var input accommodationInput
	if !bind(c, "UpdateHotel", &input) {
		return
	}
	acc, err := ac.accommodations.UpdateHotel(c.Request.Context(), c.Param("id"), input.HotelID, input.GroupType, input.Notes)
	if err != nil {
		respondError(c, "UpdateHotel", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accommodation": acc})
}

func (ac *AccommodationController) RemoveHotel(c *gin.Context) {
	if err := ac.accommodations.RemoveHotel(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "RemoveHotel", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Accommodation removed"})
}

func (ac *AccommodationController) AddRoom(c *gin.Context) {
	var input roomInput
	if !bind(c, "AddRoom", &input) {
		return
	}
	room, err := ac.accommodations.AddRoom(c.Request.Context(), c.Param("id"), input.toService())
	if err != nil {
		respondError(c, "AddRoom", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"room": room})
}

func (ac *AccommodationController) UpdateRoom(c *gin.Context) {
	var input roomInput
	if !bind(c, "UpdateRoom", &input) {
		return
	}
	room, err := ac.accommodations.UpdateRoom(c.Request.Context(), c.Param("id"), input.toService())
	if err != nil {
		respondError(c, "UpdateRoom", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

func (ac *AccommodationController) RemoveRoom(c *gin.Context) {
	if err := ac.accommodations.RemoveRoom(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "RemoveRoom", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Room removed"})
}

// RemoveRoomParticipant drops one occupant; the couple flag is cleared when
// fewer than two remain.
func (ac *AccommodationController) RemoveRoomParticipant(c *gin.Context) {
	room, err := ac.accommodations.RemoveRoomParticipant(c.Request.Context(), c.Param("id"), c.Param("pid"))
	if err != nil {
		respondError(c, "RemoveRoomParticipant", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

func (ac *AccommodationController) RoomOccupancy(c *gin.Context) {
	occupants, err := ac.accommodations.RoomOccupancy(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "RoomOccupancy", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"occupants": occupants})
}

func (ac *AccommodationController) GetRoom(c *gin.Context) {
	room, err := ac.accommodations.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "GetRoom", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}
