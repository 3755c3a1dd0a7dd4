package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tour_ops/internal/models"
)

func newAccommodation(t *testing.T, f *fixture) (*models.Route, *models.RouteSegmentAccommodation) {
	t.Helper()
	route := f.route(t, nil)
	seg := f.segment(t, route.ID, 1, 0)
	acc, err := f.accommodations.AddHotel(f.ctx, seg.ID, f.hotel(t, "Kasbah du Toubkal"), models.GroupClient, "")
	require.NoError(t, err)
	return route, acc
}

func TestAddHotel_Validation(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, nil)
	seg := f.segment(t, route.ID, 1, 0)

	_, err := f.accommodations.AddHotel(f.ctx, seg.ID, f.hotel(t, "Riad"), "family", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.accommodations.AddHotel(f.ctx, seg.ID, "no-hotel", models.GroupStaff, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.accommodations.AddHotel(f.ctx, "no-segment", f.hotel(t, "Riad"), models.GroupStaff, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddRoom_CoupleNeedsTwoOccupants(t *testing.T) {
	f := newFixture(t)
	route, acc := newAccommodation(t, f)
	ana := f.clientParticipant(t, route.ID, "Ana")

	_, err := f.accommodations.AddRoom(f.ctx, acc.ID, RoomInput{
		RoomType:       models.RoomDouble,
		ParticipantIDs: []string{ana.ID},
		IsCouple:       true,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.accommodations.AddRoom(f.ctx, acc.ID, RoomInput{RoomType: "suite"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.accommodations.AddRoom(f.ctx, acc.ID, RoomInput{
		RoomType:       models.RoomTwin,
		ParticipantIDs: []string{ana.ID, ana.ID},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddRoom_ParticipantsMustBeOnRoute(t *testing.T) {
	f := newFixture(t)
	_, acc := newAccommodation(t, f)
	other := f.route(t, nil)
	stranger := f.clientParticipant(t, other.ID, "Zoe")

	_, err := f.accommodations.AddRoom(f.ctx, acc.ID, RoomInput{
		RoomType:       models.RoomSingle,
		ParticipantIDs: []string{stranger.ID},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveRoomParticipant_ClearsCoupleFlag(t *testing.T) {
	f := newFixture(t)
	route, acc := newAccommodation(t, f)
	ana := f.clientParticipant(t, route.ID, "Ana")
	ben := f.clientParticipant(t, route.ID, "Ben")

	room, err := f.accommodations.AddRoom(f.ctx, acc.ID, RoomInput{
		RoomType:       models.RoomDouble,
		RoomLabel:      "101",
		ParticipantIDs: []string{ana.ID, ben.ID},
		IsCouple:       true,
	})
	require.NoError(t, err)
	assert.True(t, room.IsCouple)

	room, err = f.accommodations.RemoveRoomParticipant(f.ctx, room.ID, ben.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{ana.ID}, room.ParticipantIDs)
	assert.False(t, room.IsCouple)

	var stored models.Room
	require.NoError(t, f.db.First(&stored, "id = ?", room.ID).Error)
	assert.False(t, stored.IsCouple)

	_, err = f.accommodations.RemoveRoomParticipant(f.ctx, room.ID, ben.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRoom_ReplacesOccupants(t *testing.T) {
	f := newFixture(t)
	route, acc := newAccommodation(t, f)
	ana := f.clientParticipant(t, route.ID, "Ana")
	ben := f.clientParticipant(t, route.ID, "Ben")

	room, err := f.accommodations.AddRoom(f.ctx, acc.ID, RoomInput{RoomType: models.RoomSingle, ParticipantIDs: []string{ana.ID}})
	require.NoError(t, err)

	room, err = f.accommodations.UpdateRoom(f.ctx, room.ID, RoomInput{RoomType: models.RoomSingle, ParticipantIDs: []string{ben.ID}})
	require.NoError(t, err)
	assert.Equal(t, []string{ben.ID}, room.ParticipantIDs)

	occupants, err := f.accommodations.RoomOccupancy(f.ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, occupants, 1)
	assert.Equal(t, "Ben", occupants[0].Name)
}

// Placing one participant in two rooms of the same night is not checked.
func TestAddRoom_CrossRoomDuplicateAccepted(t *testing.T) {
	f := newFixture(t)
	route, acc := newAccommodation(t, f)
	ana := f.clientParticipant(t, route.ID, "Ana")

	_, err := f.accommodations.AddRoom(f.ctx, acc.ID, RoomInput{RoomType: models.RoomSingle, ParticipantIDs: []string{ana.ID}})
	require.NoError(t, err)
	_, err = f.accommodations.AddRoom(f.ctx, acc.ID, RoomInput{RoomType: models.RoomSingle, ParticipantIDs: []string{ana.ID}})
	require.NoError(t, err)

	got, err := f.accommodations.GetAccommodation(f.ctx, acc.ID)
	require.NoError(t, err)
	assert.Len(t, got.Rooms, 2)
}

func TestRemoveHotel_DeletesRooms(t *testing.T) {
	f := newFixture(t)
	route, acc := newAccommodation(t, f)
	ana := f.clientParticipant(t, route.ID, "Ana")
	room, err := f.accommodations.AddRoom(f.ctx, acc.ID, RoomInput{RoomType: models.RoomSingle, ParticipantIDs: []string{ana.ID}})
	require.NoError(t, err)

	require.NoError(t, f.accommodations.RemoveHotel(f.ctx, acc.ID))

	_, err = f.accommodations.GetRoom(f.ctx, room.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.accommodations.RemoveHotel(f.ctx, acc.ID), ErrNotFound)
}
