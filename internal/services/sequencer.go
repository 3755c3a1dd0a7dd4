package services

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tour_ops/internal/models"
)

// MaxSegmentDistance is the soft per-day distance limit in km. Segments
// above it are accepted and logged.
const MaxSegmentDistance = 60.0

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

func (d Direction) valid() bool { return d == DirectionUp || d == DirectionDown }

type SegmentInput struct {
	DayNumber           int
	SegmentOrder        int
	FromLocationID      *string
	ToLocationID        *string
	OvernightLocationID *string
	Distance            float64
	Notes               string
}

// SortSegments orders segments by SegmentOrder, breaking ties by DayNumber.
// This ordering is the single source of truth for date derivation.
func SortSegments(segments []models.RouteSegment) {
	sort.SliceStable(segments, func(i, j int) bool {
		if segments[i].SegmentOrder != segments[j].SegmentOrder {
			return segments[i].SegmentOrder < segments[j].SegmentOrder
		}
		return segments[i].DayNumber < segments[j].DayNumber
	})
}

// DeriveSegmentDates maps segment id to its calendar date: the segment at
// sorted position i falls on startDate + i days. It returns nil when the
// route has no start date.
func DeriveSegmentDates(route *models.Route, segments []models.RouteSegment) map[string]time.Time {
	if route == nil || route.StartDate == nil {
		return nil
	}
	ordered := append([]models.RouteSegment(nil), segments...)
	SortSegments(ordered)
	start := truncateDay(*route.StartDate)
	dates := make(map[string]time.Time, len(ordered))
	for i, seg := range ordered {
		dates[seg.ID] = start.AddDate(0, 0, i)
	}
	return dates
}

// DeriveEndDateAndDuration returns the date of the last segment and the
// number of segments. With no segments it returns nil and 0; with no start
// date the end date is nil but the duration still counts segments.
func DeriveEndDateAndDuration(route *models.Route, segments []models.RouteSegment) (*time.Time, int) {
	if len(segments) == 0 {
		return nil, 0
	}
	if route == nil || route.StartDate == nil {
		return nil, len(segments)
	}
	end := truncateDay(*route.StartDate).AddDate(0, 0, len(segments)-1)
	return &end, len(segments)
}

func TotalDistance(segments []models.RouteSegment) float64 {
	var total float64
	for _, s := range segments {
		total += s.Distance
	}
	return total
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SegmentSequencer owns segments and their stops.
type SegmentSequencer struct {
	db     *gorm.DB
	lookup EntityLookup
}

func NewSegmentSequencer(db *gorm.DB, lookup EntityLookup) *SegmentSequencer {
	return &SegmentSequencer{db: db, lookup: lookup}
}

func (s *SegmentSequencer) validate(ctx context.Context, in SegmentInput) error {
	if in.DayNumber < 1 {
		return invalid("day_number", "must be a positive integer")
	}
	if in.SegmentOrder < 0 {
		return invalid("segment_order", "cannot be negative")
	}
	if in.Distance < 0 {
		return invalid("distance", "cannot be negative")
	}
	for _, id := range []*string{in.FromLocationID, in.ToLocationID, in.OvernightLocationID} {
		if id == nil {
			continue
		}
		if _, err := requireEntity(ctx, s.lookup, models.KindLocation, *id); err != nil {
			return err
		}
	}
	return nil
}

func warnDistance(seg *models.RouteSegment) {
	if seg.Distance > MaxSegmentDistance {
		logrus.WithFields(logrus.Fields{
			"segment_id": seg.ID,
			"distance":   seg.Distance,
		}).Warn("segment distance above daily limit")
	}
}

// CreateSegment inserts a segment at the given order. Other segments are
// not shifted; keeping orders distinct is up to the caller.
func (s *SegmentSequencer) CreateSegment(ctx context.Context, routeID string, in SegmentInput) (*models.RouteSegment, error) {
	if err := requireRoute(ctx, s.db, routeID); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}
	seg := models.RouteSegment{
		RouteID:             routeID,
		DayNumber:           in.DayNumber,
		SegmentOrder:        in.SegmentOrder,
		FromLocationID:      in.FromLocationID,
		ToLocationID:        in.ToLocationID,
		OvernightLocationID: in.OvernightLocationID,
		Distance:            in.Distance,
		Notes:               in.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&seg).Error; err != nil {
		return nil, storageErr("create segment", "segment", "", err)
	}
	warnDistance(&seg)
	logrus.WithFields(logrus.Fields{"route_id": routeID, "segment_id": seg.ID, "order": seg.SegmentOrder}).Info("segment created")
	return &seg, nil
}

func (s *SegmentSequencer) UpdateSegment(ctx context.Context, id string, in SegmentInput) (*models.RouteSegment, error) {
	seg, err := s.GetSegment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}
	seg.DayNumber = in.DayNumber
	seg.SegmentOrder = in.SegmentOrder
	seg.FromLocationID = in.FromLocationID
	seg.ToLocationID = in.ToLocationID
	seg.OvernightLocationID = in.OvernightLocationID
	seg.Distance = in.Distance
	seg.Notes = in.Notes
	if err := s.db.WithContext(ctx).Save(seg).Error; err != nil {
		return nil, storageErr("update segment", "segment", id, err)
	}
	warnDistance(seg)
	return seg, nil
}

func (s *SegmentSequencer) GetSegment(ctx context.Context, id string) (*models.RouteSegment, error) {
	var seg models.RouteSegment
	if err := s.db.WithContext(ctx).First(&seg, "id = ?", id).Error; err != nil {
		return nil, storageErr("get segment", "segment", id, err)
	}
	stops, err := s.ListStops(ctx, id)
	if err != nil {
		return nil, err
	}
	seg.Stops = stops
	return &seg, nil
}

// ListSegments returns the route's segments in date order.
func (s *SegmentSequencer) ListSegments(ctx context.Context, routeID string) ([]models.RouteSegment, error) {
	segments, err := listSegments(s.db.WithContext(ctx), routeID)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return segments, nil
	}
	ids := make([]string, len(segments))
	for i := range segments {
		ids[i] = segments[i].ID
	}
	var stops []models.RouteSegmentStop
	if err := s.db.WithContext(ctx).Where("segment_id IN ?", ids).Order("stop_order").Find(&stops).Error; err != nil {
		return nil, storageErr("list stops", "stop", "", err)
	}
	bySegment := make(map[string][]models.RouteSegmentStop)
	for _, st := range stops {
		bySegment[st.SegmentID] = append(bySegment[st.SegmentID], st)
	}
	for i := range segments {
		segments[i].Stops = bySegment[segments[i].ID]
	}
	return segments, nil
}

func listSegments(db *gorm.DB, routeID string) ([]models.RouteSegment, error) {
	segments := []models.RouteSegment{}
	if err := db.Where("route_id = ?", routeID).Find(&segments).Error; err != nil {
		return nil, storageErr("list segments", "segment", "", err)
	}
	SortSegments(segments)
	return segments, nil
}

// DeleteSegment removes the segment together with its stops, logistics,
// accommodations (rooms and occupants included) and participant links.
func (s *SegmentSequencer) DeleteSegment(ctx context.Context, id string) error {
	if _, err := s.GetSegment(ctx, id); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteSegmentsCascade(tx, []string{id})
	})
	if err != nil {
		return storageErr("delete segment", "segment", id, err)
	}
	logrus.WithField("segment_id", id).Info("segment deleted")
	return nil
}

func deleteSegmentsCascade(tx *gorm.DB, segmentIDs []string) error {
	if len(segmentIDs) == 0 {
		return nil
	}
	var accIDs []string
	if err := tx.Model(&models.RouteSegmentAccommodation{}).Where("segment_id IN ?", segmentIDs).Pluck("id", &accIDs).Error; err != nil {
		return err
	}
	if err := deleteAccommodationsCascade(tx, accIDs); err != nil {
		return err
	}
	steps := []struct {
		model any
		where string
	}{
		{&models.RouteSegmentStop{}, "segment_id IN ?"},
		{&models.RouteLogistics{}, "segment_id IN ?"},
		{&models.ParticipantSegment{}, "segment_id IN ?"},
		{&models.RouteSegment{}, "id IN ?"},
	}
	for _, step := range steps {
		if err := tx.Where(step.where, segmentIDs).Delete(step.model).Error; err != nil {
			return err
		}
	}
	return nil
}

// MoveSegment swaps a segment with its neighbour in date order. Orders are
// renumbered to 0..N-1 in the same transaction so duplicate orders left by
// callers cannot make the swap a no-op.
func (s *SegmentSequencer) MoveSegment(ctx context.Context, id string, dir Direction) ([]models.RouteSegment, error) {
	if !dir.valid() {
		return nil, invalid("direction", "must be up or down")
	}
	seg, err := s.GetSegment(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("route_id = ?", seg.RouteID)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var segments []models.RouteSegment
		if err := q.Find(&segments).Error; err != nil {
			return err
		}
		SortSegments(segments)
		pos := -1
		for i := range segments {
			if segments[i].ID == id {
				pos = i
				break
			}
		}
		if pos < 0 {
			return notFound("segment", id)
		}
		target := pos - 1
		if dir == DirectionDown {
			target = pos + 1
		}
		if target < 0 || target >= len(segments) {
			edge := "first"
			if dir == DirectionDown {
				edge = "last"
			}
			return invalid("direction", "segment is already "+edge)
		}
		segments[pos], segments[target] = segments[target], segments[pos]
		for i := range segments {
			if segments[i].SegmentOrder == i {
				continue
			}
			if err := tx.Model(&models.RouteSegment{}).Where("id = ?", segments[i].ID).Update("segment_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("move segment", "segment", id, err)
	}
	logrus.WithFields(logrus.Fields{"segment_id": id, "direction": dir}).Info("segment moved")
	return s.ListSegments(ctx, seg.RouteID)
}

// Stops

func (s *SegmentSequencer) ListStops(ctx context.Context, segmentID string) ([]models.RouteSegmentStop, error) {
	return listStops(s.db.WithContext(ctx), segmentID)
}

func listStops(db *gorm.DB, segmentID string) ([]models.RouteSegmentStop, error) {
	stops := []models.RouteSegmentStop{}
	if err := db.Where("segment_id = ?", segmentID).Order("stop_order").Order("created_at").Find(&stops).Error; err != nil {
		return nil, storageErr("list stops", "stop", "", err)
	}
	return stops, nil
}

// AddStop inserts a stop at the 1-based position, or appends it when
// position is nil or past the end.
func (s *SegmentSequencer) AddStop(ctx context.Context, segmentID, locationID, notes string, position *int) ([]models.RouteSegmentStop, error) {
	if _, err := s.getSegmentRow(ctx, segmentID); err != nil {
		return nil, err
	}
	if _, err := requireEntity(ctx, s.lookup, models.KindLocation, locationID); err != nil {
		return nil, err
	}
	if position != nil && *position < 1 {
		return nil, invalid("position", "must be 1 or greater")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stops, err := listStops(tx, segmentID)
		if err != nil {
			return err
		}
		stop := models.RouteSegmentStop{SegmentID: segmentID, LocationID: locationID, Notes: notes}
		if err := tx.Create(&stop).Error; err != nil {
			return err
		}
		at := len(stops)
		if position != nil && *position-1 < at {
			at = *position - 1
		}
		stops = append(stops[:at], append([]models.RouteSegmentStop{stop}, stops[at:]...)...)
		return compactStops(tx, stops)
	})
	if err != nil {
		return nil, storageErr("add stop", "stop", "", err)
	}
	return s.ListStops(ctx, segmentID)
}

func (s *SegmentSequencer) RemoveStop(ctx context.Context, stopID string) ([]models.RouteSegmentStop, error) {
	stop, err := s.getStop(ctx, stopID)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.RouteSegmentStop{}, "id = ?", stopID).Error; err != nil {
			return err
		}
		stops, err := listStops(tx, stop.SegmentID)
		if err != nil {
			return err
		}
		return compactStops(tx, stops)
	})
	if err != nil {
		return nil, storageErr("remove stop", "stop", stopID, err)
	}
	return s.ListStops(ctx, stop.SegmentID)
}

func (s *SegmentSequencer) MoveStop(ctx context.Context, stopID string, dir Direction) ([]models.RouteSegmentStop, error) {
	if !dir.valid() {
		return nil, invalid("direction", "must be up or down")
	}
	stop, err := s.getStop(ctx, stopID)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stops, err := listStops(tx, stop.SegmentID)
		if err != nil {
			return err
		}
		pos := indexOfStop(stops, stopID)
		target := pos - 1
		if dir == DirectionDown {
			target = pos + 1
		}
		if pos < 0 || target < 0 || target >= len(stops) {
			return invalid("direction", "stop cannot move further "+string(dir))
		}
		stops[pos], stops[target] = stops[target], stops[pos]
		return compactStops(tx, stops)
	})
	if err != nil {
		return nil, storageErr("move stop", "stop", stopID, err)
	}
	return s.ListStops(ctx, stop.SegmentID)
}

// ReorderStops applies a full ordering. orderedIDs must be a permutation of
// the segment's current stop ids.
func (s *SegmentSequencer) ReorderStops(ctx context.Context, segmentID string, orderedIDs []string) ([]models.RouteSegmentStop, error) {
	if _, err := s.getSegmentRow(ctx, segmentID); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stops, err := listStops(tx, segmentID)
		if err != nil {
			return err
		}
		if len(orderedIDs) != len(stops) {
			return invalid("stop_ids", "must list every stop of the segment exactly once")
		}
		reordered := make([]models.RouteSegmentStop, 0, len(stops))
		seen := make(map[string]bool, len(orderedIDs))
		for _, id := range orderedIDs {
			pos := indexOfStop(stops, id)
			if pos < 0 || seen[id] {
				return invalid("stop_ids", "must list every stop of the segment exactly once")
			}
			seen[id] = true
			reordered = append(reordered, stops[pos])
		}
		return compactStops(tx, reordered)
	})
	if err != nil {
		return nil, storageErr("reorder stops", "stop", "", err)
	}
	return s.ListStops(ctx, segmentID)
}

// compactStops writes StopOrder = position+1 for every stop whose stored
// order differs.
func compactStops(tx *gorm.DB, stops []models.RouteSegmentStop) error {
	for i := range stops {
		want := i + 1
		if stops[i].StopOrder == want {
			continue
		}
		if err := tx.Model(&models.RouteSegmentStop{}).Where("id = ?", stops[i].ID).Update("stop_order", want).Error; err != nil {
			return err
		}
		stops[i].StopOrder = want
	}
	return nil
}

func indexOfStop(stops []models.RouteSegmentStop, id string) int {
	for i := range stops {
		if stops[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *SegmentSequencer) getSegmentRow(ctx context.Context, id string) (*models.RouteSegment, error) {
	var seg models.RouteSegment
	if err := s.db.WithContext(ctx).First(&seg, "id = ?", id).Error; err != nil {
		return nil, storageErr("get segment", "segment", id, err)
	}
	return &seg, nil
}

func (s *SegmentSequencer) getStop(ctx context.Context, id string) (*models.RouteSegmentStop, error) {
	var stop models.RouteSegmentStop
	if err := s.db.WithContext(ctx).First(&stop, "id = ?", id).Error; err != nil {
		return nil, storageErr("get stop", "stop", id, err)
	}
	return &stop, nil
}

func requireRoute(ctx context.Context, db *gorm.DB, routeID string) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Route{}).Where("id = ?", routeID).Count(&count).Error; err != nil {
		return storageErr("get route", "route", routeID, err)
	}
	if count == 0 {
		return notFound("route", routeID)
	}
	return nil
}
