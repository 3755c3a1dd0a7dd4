package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tour_ops/internal/models"
)

type RoomInput struct {
	RoomType       models.RoomType
	RoomLabel      string
	ParticipantIDs []string
	IsCouple       bool
	Notes          string
}

// Occupant is a room participant with a printable name.
type Occupant struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
}

// AccommodationManager manages hotel bookings per segment and their rooms.
//
// A participant may be placed in two rooms of the same night. That is
// accepted here and left to data-entry checks.
type AccommodationManager struct {
	db           *gorm.DB
	lookup       EntityLookup
	participants *ParticipantAssignment
}

func NewAccommodationManager(db *gorm.DB, lookup EntityLookup, participants *ParticipantAssignment) *AccommodationManager {
	return &AccommodationManager{db: db, lookup: lookup, participants: participants}
}

func validGroup(g models.GroupType) bool {
	return g == models.GroupClient || g == models.GroupStaff
}

// AddHotel creates an empty booking container on a segment.
func (m *AccommodationManager) AddHotel(ctx context.Context, segmentID, hotelID string, group models.GroupType, notes string) (*models.RouteSegmentAccommodation, error) {
	if !validGroup(group) {
		return nil, invalid("group_type", "must be client or staff")
	}
	var seg models.RouteSegment
	if err := m.db.WithContext(ctx).First(&seg, "id = ?", segmentID).Error; err != nil {
		return nil, storageErr("get segment", "segment", segmentID, err)
	}
	if _, err := requireEntity(ctx, m.lookup, models.KindHotel, hotelID); err != nil {
		return nil, err
	}
	acc := models.RouteSegmentAccommodation{SegmentID: segmentID, HotelID: hotelID, GroupType: group, Notes: notes}
	if err := m.db.WithContext(ctx).Create(&acc).Error; err != nil {
		return nil, storageErr("add hotel", "accommodation", "", err)
	}
	acc.Rooms = []models.Room{}
	logrus.WithFields(logrus.Fields{"segment_id": segmentID, "accommodation_id": acc.ID}).Info("hotel added")
	return &acc, nil
}

func (m *AccommodationManager) UpdateHotel(ctx context.Context, id, hotelID string, group models.GroupType, notes string) (*models.RouteSegmentAccommodation, error) {
	if !validGroup(group) {
		return nil, invalid("group_type", "must be client or staff")
	}
	if _, err := m.getAccommodationRow(ctx, id); err != nil {
		return nil, err
	}
	if _, err := requireEntity(ctx, m.lookup, models.KindHotel, hotelID); err != nil {
		return nil, err
	}
	err := m.db.WithContext(ctx).Model(&models.RouteSegmentAccommodation{}).Where("id = ?", id).
		Updates(map[string]any{"hotel_id": hotelID, "group_type": group, "notes": notes}).Error
	if err != nil {
		return nil, storageErr("update hotel", "accommodation", id, err)
	}
	return m.GetAccommodation(ctx, id)
}

// RemoveHotel deletes the booking and every room under it.
func (m *AccommodationManager) RemoveHotel(ctx context.Context, id string) error {
	if _, err := m.getAccommodationRow(ctx, id); err != nil {
		return err
	}
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteAccommodationsCascade(tx, []string{id})
	})
	if err != nil {
		return storageErr("remove hotel", "accommodation", id, err)
	}
	logrus.WithField("accommodation_id", id).Info("hotel removed")
	return nil
}

func deleteAccommodationsCascade(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	var roomIDs []string
	if err := tx.Model(&models.Room{}).Where("accommodation_id IN ?", ids).Pluck("id", &roomIDs).Error; err != nil {
		return err
	}
	if len(roomIDs) > 0 {
		if err := tx.Where("room_id IN ?", roomIDs).Delete(&models.RoomOccupant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", roomIDs).Delete(&models.Room{}).Error; err != nil {
			return err
		}
	}
	return tx.Where("id IN ?", ids).Delete(&models.RouteSegmentAccommodation{}).Error
}

func (m *AccommodationManager) GetAccommodation(ctx context.Context, id string) (*models.RouteSegmentAccommodation, error) {
	acc, err := m.getAccommodationRow(ctx, id)
	if err != nil {
		return nil, err
	}
	rooms, err := loadRooms(m.db.WithContext(ctx), []string{id})
	if err != nil {
		return nil, err
	}
	acc.Rooms = rooms[id]
	if acc.Rooms == nil {
		acc.Rooms = []models.Room{}
	}
	return acc, nil
}

func (m *AccommodationManager) ListAccommodations(ctx context.Context, segmentID string) ([]models.RouteSegmentAccommodation, error) {
	accs := []models.RouteSegmentAccommodation{}
	if err := m.db.WithContext(ctx).Where("segment_id = ?", segmentID).Order("created_at").Find(&accs).Error; err != nil {
		return nil, storageErr("list accommodations", "accommodation", "", err)
	}
	ids := make([]string, len(accs))
	for i := range accs {
		ids[i] = accs[i].ID
	}
	rooms, err := loadRooms(m.db.WithContext(ctx), ids)
	if err != nil {
		return nil, err
	}
	for i := range accs {
		accs[i].Rooms = rooms[accs[i].ID]
		if accs[i].Rooms == nil {
			accs[i].Rooms = []models.Room{}
		}
	}
	return accs, nil
}

// loadRooms fetches rooms with their occupants, grouped by accommodation.
// The couple flag is normalised on the way out.
func loadRooms(db *gorm.DB, accommodationIDs []string) (map[string][]models.Room, error) {
	out := make(map[string][]models.Room)
	if len(accommodationIDs) == 0 {
		return out, nil
	}
	var rooms []models.Room
	if err := db.Where("accommodation_id IN ?", accommodationIDs).Order("created_at").Find(&rooms).Error; err != nil {
		return nil, storageErr("list rooms", "room", "", err)
	}
	if len(rooms) == 0 {
		return out, nil
	}
	roomIDs := make([]string, len(rooms))
	for i := range rooms {
		roomIDs[i] = rooms[i].ID
	}
	var occ []models.RoomOccupant
	if err := db.Where("room_id IN ?", roomIDs).Order("participant_id").Find(&occ).Error; err != nil {
		return nil, storageErr("list rooms", "room", "", err)
	}
	byRoom := make(map[string][]string)
	for _, o := range occ {
		byRoom[o.RoomID] = append(byRoom[o.RoomID], o.ParticipantID)
	}
	for _, r := range rooms {
		r.ParticipantIDs = byRoom[r.ID]
		if r.ParticipantIDs == nil {
			r.ParticipantIDs = []string{}
		}
		normalizeRoom(&r)
		out[r.AccommodationID] = append(out[r.AccommodationID], r)
	}
	return out, nil
}

// normalizeRoom forces IsCouple off when fewer than two people share the room.
func normalizeRoom(r *models.Room) {
	if len(r.ParticipantIDs) < 2 {
		r.IsCouple = false
	}
}

// validateRoom checks the room rules and that every occupant is a
// participant of the route owning the accommodation.
func (m *AccommodationManager) validateRoom(ctx context.Context, acc *models.RouteSegmentAccommodation, in RoomInput) error {
	if !in.RoomType.Valid() {
		return invalid("room_type", "must be one of single, double, twin, triple")
	}
	if in.IsCouple && len(in.ParticipantIDs) < 2 {
		return invalid("is_couple", "a couple room needs at least two participants")
	}
	if len(in.ParticipantIDs) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in.ParticipantIDs))
	for _, id := range in.ParticipantIDs {
		if seen[id] {
			return invalid("participant_ids", "participant "+id+" is listed twice")
		}
		seen[id] = true
	}
	var seg models.RouteSegment
	if err := m.db.WithContext(ctx).First(&seg, "id = ?", acc.SegmentID).Error; err != nil {
		return storageErr("get segment", "segment", acc.SegmentID, err)
	}
	var onRoute []string
	err := m.db.WithContext(ctx).Model(&models.RouteParticipant{}).
		Where("route_id = ? AND id IN ?", seg.RouteID, in.ParticipantIDs).
		Pluck("id", &onRoute).Error
	if err != nil {
		return storageErr("check participants", "participant", "", err)
	}
	found := make(map[string]bool, len(onRoute))
	for _, id := range onRoute {
		found[id] = true
	}
	for _, id := range in.ParticipantIDs {
		if !found[id] {
			return notFound("participant", id)
		}
	}
	return nil
}

func (m *AccommodationManager) AddRoom(ctx context.Context, accommodationID string, in RoomInput) (*models.Room, error) {
	acc, err := m.getAccommodationRow(ctx, accommodationID)
	if err != nil {
		return nil, err
	}
	if err := m.validateRoom(ctx, acc, in); err != nil {
		return nil, err
	}
	room := models.Room{
		AccommodationID: accommodationID,
		RoomType:        in.RoomType,
		RoomLabel:       in.RoomLabel,
		IsCouple:        in.IsCouple,
		Notes:           in.Notes,
	}
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		return writeOccupants(tx, room.ID, in.ParticipantIDs)
	})
	if err != nil {
		return nil, storageErr("add room", "room", "", err)
	}
	return m.GetRoom(ctx, room.ID)
}

// UpdateRoom replaces type, label, couple flag and the full occupant list.
func (m *AccommodationManager) UpdateRoom(ctx context.Context, roomID string, in RoomInput) (*models.Room, error) {
	room, err := m.getRoomRow(ctx, roomID)
	if err != nil {
		return nil, err
	}
	acc, err := m.getAccommodationRow(ctx, room.AccommodationID)
	if err != nil {
		return nil, err
	}
	if err := m.validateRoom(ctx, acc, in); err != nil {
		return nil, err
	}
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Room{}).Where("id = ?", roomID).Updates(map[string]any{
			"room_type":  in.RoomType,
			"room_label": in.RoomLabel,
			"is_couple":  in.IsCouple,
			"notes":      in.Notes,
		}).Error
		if err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&models.RoomOccupant{}).Error; err != nil {
			return err
		}
		return writeOccupants(tx, roomID, in.ParticipantIDs)
	})
	if err != nil {
		return nil, storageErr("update room", "room", roomID, err)
	}
	return m.GetRoom(ctx, roomID)
}

// RemoveRoomParticipant takes one occupant out of a room. When fewer than
// two remain the couple flag is cleared in the same transaction.
func (m *AccommodationManager) RemoveRoomParticipant(ctx context.Context, roomID, participantID string) (*models.Room, error) {
	if _, err := m.getRoomRow(ctx, roomID); err != nil {
		return nil, err
	}
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("room_id = ? AND participant_id = ?", roomID, participantID).Delete(&models.RoomOccupant{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("room occupant", participantID)
		}
		return clearCoupleFlags(tx, []string{roomID})
	})
	if err != nil {
		return nil, storageErr("remove room participant", "room", roomID, err)
	}
	return m.GetRoom(ctx, roomID)
}

// clearCoupleFlags sets is_couple=false on any of the rooms left with
// fewer than two occupants.
func clearCoupleFlags(tx *gorm.DB, roomIDs []string) error {
	for _, id := range roomIDs {
		var n int64
		if err := tx.Model(&models.RoomOccupant{}).Where("room_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n >= 2 {
			continue
		}
		if err := tx.Model(&models.Room{}).Where("id = ?", id).Update("is_couple", false).Error; err != nil {
			return err
		}
	}
	return nil
}

func (m *AccommodationManager) RemoveRoom(ctx context.Context, roomID string) error {
	if _, err := m.getRoomRow(ctx, roomID); err != nil {
		return err
	}
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&models.RoomOccupant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Room{}, "id = ?", roomID).Error
	})
	if err != nil {
		return storageErr("remove room", "room", roomID, err)
	}
	return nil
}

func (m *AccommodationManager) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	room, err := m.getRoomRow(ctx, roomID)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	if err := m.db.WithContext(ctx).Model(&models.RoomOccupant{}).Where("room_id = ?", roomID).Order("participant_id").Pluck("participant_id", &ids).Error; err != nil {
		return nil, storageErr("get room", "room", roomID, err)
	}
	if ids == nil {
		ids = []string{}
	}
	room.ParticipantIDs = ids
	normalizeRoom(room)
	return room, nil
}

// RoomOccupancy lists the occupants of a room with display names.
func (m *AccommodationManager) RoomOccupancy(ctx context.Context, roomID string) ([]Occupant, error) {
	room, err := m.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	out := make([]Occupant, 0, len(room.ParticipantIDs))
	for _, pid := range room.ParticipantIDs {
		name := fallbackStaffName
		part, err := m.participants.GetParticipant(ctx, pid)
		switch {
		case err == nil:
			if name, err = m.participants.ParticipantName(ctx, part); err != nil {
				return nil, err
			}
		case !IsNotFound(err):
			return nil, err
		}
		out = append(out, Occupant{ParticipantID: pid, Name: name})
	}
	return out, nil
}

func writeOccupants(tx *gorm.DB, roomID string, participantIDs []string) error {
	if len(participantIDs) == 0 {
		return nil
	}
	rows := make([]models.RoomOccupant, len(participantIDs))
	for i, pid := range participantIDs {
		rows[i] = models.RoomOccupant{RoomID: roomID, ParticipantID: pid}
	}
	return tx.Create(&rows).Error
}

func (m *AccommodationManager) getAccommodationRow(ctx context.Context, id string) (*models.RouteSegmentAccommodation, error) {
	var acc models.RouteSegmentAccommodation
	if err := m.db.WithContext(ctx).First(&acc, "id = ?", id).Error; err != nil {
		return nil, storageErr("get accommodation", "accommodation", id, err)
	}
	return &acc, nil
}

func (m *AccommodationManager) getRoomRow(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := m.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		return nil, storageErr("get room", "room", id, err)
	}
	return &room, nil
}
