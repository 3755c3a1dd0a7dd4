package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tour_ops/internal/models"
)

const (
	fallbackClientName = "Client"
	fallbackStaffName  = "Staff Member"
)

type ParticipantInput struct {
	Role     models.ParticipantRole
	ClientID *string
	GuideID  *string
	Notes    string
	// SegmentIDs nil and empty both mean "on no specific segment".
	SegmentIDs []string
}

// ParticipantAssignment links clients and staff to a route and to a subset
// of its segments.
type ParticipantAssignment struct {
	db     *gorm.DB
	lookup EntityLookup
}

func NewParticipantAssignment(db *gorm.DB, lookup EntityLookup) *ParticipantAssignment {
	return &ParticipantAssignment{db: db, lookup: lookup}
}

// validateReference enforces that exactly one of client/guide is set and
// that it matches the role.
func (p *ParticipantAssignment) validateReference(ctx context.Context, in ParticipantInput) error {
	if !in.Role.Valid() {
		return invalid("role", "must be one of client, guide-captain, guide-tail, staff")
	}
	if in.Role.IsClient() {
		if in.ClientID == nil || *in.ClientID == "" {
			return invalid("client_id", "is required for role client")
		}
		if in.GuideID != nil {
			return invalid("guide_id", "must be empty for role client")
		}
		_, err := requireEntity(ctx, p.lookup, models.KindClient, *in.ClientID)
		return err
	}
	if in.GuideID == nil || *in.GuideID == "" {
		return invalid("guide_id", "is required for role "+string(in.Role))
	}
	if in.ClientID != nil {
		return invalid("client_id", "must be empty for role "+string(in.Role))
	}
	_, err := requireEntity(ctx, p.lookup, models.KindStaff, *in.GuideID)
	return err
}

// checkSegments verifies every id belongs to the route and returns the ids
// deduplicated, never nil.
func checkSegments(db *gorm.DB, routeID string, segmentIDs []string) ([]string, error) {
	out := []string{}
	if len(segmentIDs) == 0 {
		return out, nil
	}
	var known []string
	if err := db.Model(&models.RouteSegment{}).Where("route_id = ?", routeID).Pluck("id", &known).Error; err != nil {
		return nil, storageErr("list segments", "segment", "", err)
	}
	onRoute := make(map[string]bool, len(known))
	for _, id := range known {
		onRoute[id] = true
	}
	seen := make(map[string]bool, len(segmentIDs))
	for _, id := range segmentIDs {
		if !onRoute[id] {
			return nil, invalid("segment_ids", "segment "+id+" is not part of this route")
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

func (p *ParticipantAssignment) AddParticipant(ctx context.Context, routeID string, in ParticipantInput) (*models.RouteParticipant, error) {
	if err := requireRoute(ctx, p.db, routeID); err != nil {
		return nil, err
	}
	if err := p.validateReference(ctx, in); err != nil {
		return nil, err
	}
	segmentIDs, err := checkSegments(p.db.WithContext(ctx), routeID, in.SegmentIDs)
	if err != nil {
		return nil, err
	}
	part := models.RouteParticipant{
		RouteID:  routeID,
		Role:     in.Role,
		ClientID: in.ClientID,
		GuideID:  in.GuideID,
		Notes:    in.Notes,
	}
	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&part).Error; err != nil {
			return err
		}
		return writeSegmentLinks(tx, part.ID, segmentIDs)
	})
	if err != nil {
		return nil, storageErr("add participant", "participant", "", err)
	}
	part.SegmentIDs = segmentIDs
	logrus.WithFields(logrus.Fields{"route_id": routeID, "participant_id": part.ID, "role": part.Role}).Info("participant added")
	return &part, nil
}

func writeSegmentLinks(tx *gorm.DB, participantID string, segmentIDs []string) error {
	if len(segmentIDs) == 0 {
		return nil
	}
	links := make([]models.ParticipantSegment, len(segmentIDs))
	for i, id := range segmentIDs {
		links[i] = models.ParticipantSegment{ParticipantID: participantID, SegmentID: id}
	}
	return tx.Create(&links).Error
}

// UpdateSegmentAssignment replaces the participant's whole segment set. An
// empty slice is a valid state: assigned to no segment.
func (p *ParticipantAssignment) UpdateSegmentAssignment(ctx context.Context, participantID string, segmentIDs []string) (*models.RouteParticipant, error) {
	part, err := p.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	ids, err := checkSegments(p.db.WithContext(ctx), part.RouteID, segmentIDs)
	if err != nil {
		return nil, err
	}
	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("participant_id = ?", participantID).Delete(&models.ParticipantSegment{}).Error; err != nil {
			return err
		}
		return writeSegmentLinks(tx, participantID, ids)
	})
	if err != nil {
		return nil, storageErr("assign segments", "participant", participantID, err)
	}
	part.SegmentIDs = ids
	return part, nil
}

func (p *ParticipantAssignment) UpdateNotes(ctx context.Context, participantID, notes string) (*models.RouteParticipant, error) {
	part, err := p.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if err := p.db.WithContext(ctx).Model(&models.RouteParticipant{}).Where("id = ?", participantID).Update("notes", notes).Error; err != nil {
		return nil, storageErr("update participant", "participant", participantID, err)
	}
	part.Notes = notes
	return part, nil
}

func (p *ParticipantAssignment) GetParticipant(ctx context.Context, id string) (*models.RouteParticipant, error) {
	var part models.RouteParticipant
	if err := p.db.WithContext(ctx).First(&part, "id = ?", id).Error; err != nil {
		return nil, storageErr("get participant", "participant", id, err)
	}
	ids := []string{}
	if err := p.db.WithContext(ctx).Model(&models.ParticipantSegment{}).Where("participant_id = ?", id).Order("segment_id").Pluck("segment_id", &ids).Error; err != nil {
		return nil, storageErr("get participant", "participant", id, err)
	}
	if ids == nil {
		ids = []string{}
	}
	part.SegmentIDs = ids
	return &part, nil
}

func (p *ParticipantAssignment) ListParticipants(ctx context.Context, routeID string) ([]models.RouteParticipant, error) {
	parts := []models.RouteParticipant{}
	if err := p.db.WithContext(ctx).Where("route_id = ?", routeID).Order("created_at").Find(&parts).Error; err != nil {
		return nil, storageErr("list participants", "participant", "", err)
	}
	if len(parts) == 0 {
		return parts, nil
	}
	ids := make([]string, len(parts))
	for i := range parts {
		ids[i] = parts[i].ID
	}
	var links []models.ParticipantSegment
	if err := p.db.WithContext(ctx).Where("participant_id IN ?", ids).Order("segment_id").Find(&links).Error; err != nil {
		return nil, storageErr("list participants", "participant", "", err)
	}
	byPart := make(map[string][]string, len(parts))
	for _, l := range links {
		byPart[l.ParticipantID] = append(byPart[l.ParticipantID], l.SegmentID)
	}
	for i := range parts {
		parts[i].SegmentIDs = byPart[parts[i].ID]
		if parts[i].SegmentIDs == nil {
			parts[i].SegmentIDs = []string{}
		}
	}
	return parts, nil
}

// RemoveParticipant deletes the participant with its room occupancy,
// transfer links and segment links.
func (p *ParticipantAssignment) RemoveParticipant(ctx context.Context, id string) error {
	if _, err := p.GetParticipant(ctx, id); err != nil {
		return err
	}
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var roomIDs []string
		if err := tx.Model(&models.RoomOccupant{}).Where("participant_id = ?", id).Pluck("room_id", &roomIDs).Error; err != nil {
			return err
		}
		if err := deleteParticipantsCascade(tx, []string{id}); err != nil {
			return err
		}
		return clearCoupleFlags(tx, roomIDs)
	})
	if err != nil {
		return storageErr("remove participant", "participant", id, err)
	}
	logrus.WithField("participant_id", id).Info("participant removed")
	return nil
}

func deleteParticipantsCascade(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	steps := []struct {
		model any
		where string
	}{
		{&models.RoomOccupant{}, "participant_id IN ?"},
		{&models.TransferParticipant{}, "participant_id IN ?"},
		{&models.ParticipantSegment{}, "participant_id IN ?"},
		{&models.RouteParticipant{}, "id IN ?"},
	}
	for _, step := range steps {
		if err := tx.Where(step.where, ids).Delete(step.model).Error; err != nil {
			return err
		}
	}
	return nil
}

// ActiveSegmentIDs drops assignment ids that no longer match a segment of
// the route. Stale ids are not an error.
func ActiveSegmentIDs(part *models.RouteParticipant, segments []models.RouteSegment) []string {
	current := make(map[string]bool, len(segments))
	for _, s := range segments {
		current[s.ID] = true
	}
	out := []string{}
	for _, id := range part.SegmentIDs {
		if current[id] {
			out = append(out, id)
		}
	}
	return out
}

// ParticipantName resolves the client or staff name, falling back to a
// generic label when the referenced entity is gone.
func (p *ParticipantAssignment) ParticipantName(ctx context.Context, part *models.RouteParticipant) (string, error) {
	kind, id, fallback := models.KindStaff, part.GuideID, fallbackStaffName
	if part.Role.IsClient() {
		kind, id, fallback = models.KindClient, part.ClientID, fallbackClientName
	}
	if id == nil {
		return fallback, nil
	}
	name, err := resolveName(ctx, p.lookup, kind, *id)
	if err != nil {
		return "", err
	}
	if name == nil || *name == "" {
		return fallback, nil
	}
	return *name, nil
}
