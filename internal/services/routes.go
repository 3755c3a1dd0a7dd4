package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tour_ops/internal/models"
)

type RouteInput struct {
	Name          string
	Description   string
	StartDate     *time.Time
	Status        models.RouteStatus
	Currency      string
	EstimatedCost decimal.Decimal
	ActualCost    decimal.Decimal
	Notes         string
}

// DatedSegment is a segment with its derived calendar date and cost.
type DatedSegment struct {
	models.RouteSegment
	SegmentDate *time.Time      `json:"segment_date"`
	Cost        decimal.Decimal `json:"cost"`
}

// RouteSummary is a route with every derived field filled in.
type RouteSummary struct {
	Route         models.Route   `json:"route"`
	EndDate       *time.Time     `json:"end_date"`
	Duration      int            `json:"duration"`
	TotalDistance float64        `json:"total_distance"`
	Segments      []DatedSegment `json:"segments"`
	Costs         CostBreakdown  `json:"costs"`
}

// RouteService is the route aggregate: route CRUD, derived fields and
// cascade deletes across the sub-managers' tables.
type RouteService struct {
	db              *gorm.DB
	segments        *SegmentSequencer
	logistics       *LogisticsAttacher
	transfers       *TransferManager
	defaultCurrency string
}

func NewRouteService(db *gorm.DB, segments *SegmentSequencer, logistics *LogisticsAttacher, transfers *TransferManager, defaultCurrency string) *RouteService {
	return &RouteService{
		db:              db,
		segments:        segments,
		logistics:       logistics,
		transfers:       transfers,
		defaultCurrency: defaultCurrency,
	}
}

func (s *RouteService) normalize(in RouteInput) (RouteInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, invalid("name", "is required")
	}
	if in.Status == "" {
		in.Status = models.RouteDraft
	}
	if !in.Status.Valid() {
		return in, invalid("status", "must be one of draft, confirmed, in-progress, completed, cancelled")
	}
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = s.defaultCurrency
	}
	if len(in.Currency) != 3 {
		return in, invalid("currency", "must be a three-letter code")
	}
	if in.EstimatedCost.IsNegative() || in.ActualCost.IsNegative() {
		return in, invalid("cost", "cannot be negative")
	}
	if in.StartDate != nil {
		d := truncateDay(*in.StartDate)
		in.StartDate = &d
	}
	return in, nil
}

func applyRoute(r *models.Route, in RouteInput) {
	r.Name = in.Name
	r.Description = in.Description
	r.StartDate = in.StartDate
	r.Status = in.Status
	r.Currency = in.Currency
	r.EstimatedCost = in.EstimatedCost
	r.ActualCost = in.ActualCost
	r.Notes = in.Notes
}

func (s *RouteService) CreateRoute(ctx context.Context, in RouteInput) (*models.Route, error) {
	in, err := s.normalize(in)
	if err != nil {
		return nil, err
	}
	var route models.Route
	applyRoute(&route, in)
	if err := s.db.WithContext(ctx).Create(&route).Error; err != nil {
		return nil, storageErr("create route", "route", "", err)
	}
	logrus.WithFields(logrus.Fields{"route_id": route.ID, "name": route.Name}).Info("route created")
	return &route, nil
}

func (s *RouteService) UpdateRoute(ctx context.Context, id string, in RouteInput) (*models.Route, error) {
	route, err := s.GetRoute(ctx, id)
	if err != nil {
		return nil, err
	}
	if in, err = s.normalize(in); err != nil {
		return nil, err
	}
	applyRoute(route, in)
	if err := s.db.WithContext(ctx).Save(route).Error; err != nil {
		return nil, storageErr("update route", "route", id, err)
	}
	return route, nil
}

func (s *RouteService) GetRoute(ctx context.Context, id string) (*models.Route, error) {
	var route models.Route
	if err := s.db.WithContext(ctx).First(&route, "id = ?", id).Error; err != nil {
		return nil, storageErr("get route", "route", id, err)
	}
	return &route, nil
}

func (s *RouteService) ListRoutes(ctx context.Context, status models.RouteStatus) ([]models.Route, error) {
	routes := []models.Route{}
	q := s.db.WithContext(ctx).Order("start_date").Order("name")
	if status != "" {
		if !status.Valid() {
			return nil, invalid("status", "unknown route status "+string(status))
		}
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&routes).Error; err != nil {
		return nil, storageErr("list routes", "route", "", err)
	}
	return routes, nil
}

// Summary computes end date, duration, distance, per-segment dates and
// costs, and the route cost breakdown.
func (s *RouteService) Summary(ctx context.Context, id string) (*RouteSummary, error) {
	route, err := s.GetRoute(ctx, id)
	if err != nil {
		return nil, err
	}
	segments, err := s.segments.ListSegments(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.logistics.ListByRoute(ctx, id)
	if err != nil {
		return nil, err
	}
	transfers, err := s.transfers.ListTransfers(ctx, id)
	if err != nil {
		return nil, err
	}
	dates := DeriveSegmentDates(route, segments)
	dated := make([]DatedSegment, len(segments))
	for i, seg := range segments {
		dated[i] = DatedSegment{RouteSegment: seg, Cost: SegmentCost(items, seg.ID)}
		if d, ok := dates[seg.ID]; ok {
			dated[i].SegmentDate = &d
		}
	}
	end, duration := DeriveEndDateAndDuration(route, segments)
	return &RouteSummary{
		Route:         *route,
		EndDate:       end,
		Duration:      duration,
		TotalDistance: TotalDistance(segments),
		Segments:      dated,
		Costs:         BuildCostBreakdown(items, transfers),
	}, nil
}

// DeleteRoute removes the route and everything hanging off it in one
// transaction.
func (s *RouteService) DeleteRoute(ctx context.Context, id string) error {
	if _, err := s.GetRoute(ctx, id); err != nil {
		return err
	}
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return storageErr("delete route", "route", id, tx.Error)
	}
	if err := deleteRouteCascade(tx, id); err != nil {
		tx.Rollback()
		return storageErr("delete route", "route", id, err)
	}
	if err := tx.Commit().Error; err != nil {
		return storageErr("delete route", "route", id, err)
	}
	logrus.WithField("route_id", id).Info("route deleted")
	return nil
}

func deleteRouteCascade(tx *gorm.DB, routeID string) error {
	var segmentIDs, transferIDs, participantIDs []string
	if err := tx.Model(&models.RouteSegment{}).Where("route_id = ?", routeID).Pluck("id", &segmentIDs).Error; err != nil {
		return err
	}
	if err := deleteSegmentsCascade(tx, segmentIDs); err != nil {
		return err
	}
	if err := tx.Model(&models.RouteTransfer{}).Where("route_id = ?", routeID).Pluck("id", &transferIDs).Error; err != nil {
		return err
	}
	if err := deleteTransfersCascade(tx, transferIDs); err != nil {
		return err
	}
	if err := tx.Model(&models.RouteParticipant{}).Where("route_id = ?", routeID).Pluck("id", &participantIDs).Error; err != nil {
		return err
	}
	if err := deleteParticipantsCascade(tx, participantIDs); err != nil {
		return err
	}
	// route-level logistics have no segment and survive the segment cascade
	if err := tx.Where("route_id = ?", routeID).Delete(&models.RouteLogistics{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Route{}, "id = ?", routeID).Error
}
