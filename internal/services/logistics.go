package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tour_ops/internal/models"
)

// logisticsRule describes which provider kinds a logistics type accepts.
type logisticsRule struct {
	kinds          []models.EntityKind
	entityRequired bool
	singleUnit     bool
	hasDriver      bool
	hasItemName    bool
}

var logisticsRules = map[models.LogisticsType]logisticsRule{
	models.LogisticsAirportTransfer: {kinds: []models.EntityKind{models.KindLocation}, entityRequired: true},
	models.LogisticsSupportVehicle:  {kinds: []models.EntityKind{models.KindVehicle}, entityRequired: true, singleUnit: true, hasDriver: true},
	models.LogisticsHotelClient:     {kinds: []models.EntityKind{models.KindHotel}, entityRequired: true},
	models.LogisticsHotelStaff:      {kinds: []models.EntityKind{models.KindHotel}, entityRequired: true},
	models.LogisticsLunch:           {kinds: []models.EntityKind{models.KindHotel, models.KindThirdParty}, hasItemName: true},
	models.LogisticsThirdParty:      {kinds: []models.EntityKind{models.KindHotel, models.KindThirdParty}, entityRequired: true},
	models.LogisticsExtraCost:       {kinds: []models.EntityKind{models.KindHotel, models.KindThirdParty}, hasItemName: true},
}

func (r logisticsRule) accepts(kind models.EntityKind) bool {
	for _, k := range r.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

type LogisticsInput struct {
	SegmentID       *string
	LogisticsType   models.LogisticsType
	EntityType      *models.EntityKind
	EntityID        *string
	ItemName        string
	Quantity        *int // nil means one unit
	Cost            decimal.Decimal
	DriverPilotName string
	Notes           string
}

// normalizeLogistics validates the input against its type's rule and
// clears fields the type does not use. When the type accepts a single
// provider kind the entity type is inferred.
func normalizeLogistics(in LogisticsInput) (LogisticsInput, error) {
	rule, ok := logisticsRules[in.LogisticsType]
	if !ok {
		return in, invalid("logistics_type", "unknown logistics type "+string(in.LogisticsType))
	}
	if in.EntityID != nil && strings.TrimSpace(*in.EntityID) == "" {
		in.EntityID = nil
	}
	if in.EntityID == nil {
		if rule.entityRequired {
			return in, invalid("entity_id", "is required for "+string(in.LogisticsType))
		}
		// self-purchase / no provider
		in.EntityType = nil
	} else {
		if in.EntityType == nil && len(rule.kinds) == 1 {
			kind := rule.kinds[0]
			in.EntityType = &kind
		}
		if in.EntityType == nil {
			return in, invalid("entity_type", "is required for "+string(in.LogisticsType))
		}
		if !rule.accepts(*in.EntityType) {
			return in, invalid("entity_type", string(*in.EntityType)+" is not valid for "+string(in.LogisticsType))
		}
	}
	switch {
	case in.Quantity == nil || rule.singleUnit:
		one := 1
		in.Quantity = &one
	case *in.Quantity < 1:
		return in, invalid("quantity", "must be at least 1")
	}
	if in.Cost.IsNegative() {
		return in, invalid("cost", "cannot be negative")
	}
	if !rule.hasItemName {
		in.ItemName = ""
	}
	if !rule.hasDriver {
		in.DriverPilotName = ""
	}
	return in, nil
}

// LogisticsAttacher manages cost-bearing items on segments.
type LogisticsAttacher struct {
	db     *gorm.DB
	lookup EntityLookup
}

func NewLogisticsAttacher(db *gorm.DB, lookup EntityLookup) *LogisticsAttacher {
	return &LogisticsAttacher{db: db, lookup: lookup}
}

// prepare validates the input and returns the vehicle type snapshot for
// support vehicles.
func (a *LogisticsAttacher) prepare(ctx context.Context, routeID string, in LogisticsInput) (LogisticsInput, string, error) {
	in, err := normalizeLogistics(in)
	if err != nil {
		return in, "", err
	}
	if in.SegmentID != nil {
		var seg models.RouteSegment
		if err := a.db.WithContext(ctx).First(&seg, "id = ?", *in.SegmentID).Error; err != nil {
			return in, "", storageErr("get segment", "segment", *in.SegmentID, err)
		}
		if seg.RouteID != routeID {
			return in, "", invalid("segment_id", "segment belongs to another route")
		}
	}
	var vehicleType string
	if in.EntityID != nil {
		ref, err := a.lookup.GetByID(ctx, *in.EntityType, *in.EntityID)
		if err != nil {
			return in, "", err
		}
		vehicleType = ref.VehicleType
	}
	return in, vehicleType, nil
}

func (a *LogisticsAttacher) CreateLogistics(ctx context.Context, routeID string, in LogisticsInput) (*models.RouteLogistics, error) {
	if err := requireRoute(ctx, a.db, routeID); err != nil {
		return nil, err
	}
	in, vehicleType, err := a.prepare(ctx, routeID, in)
	if err != nil {
		return nil, err
	}
	item := models.RouteLogistics{RouteID: routeID}
	applyLogistics(&item, in, vehicleType)
	if err := a.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, storageErr("create logistics", "logistics", "", err)
	}
	logrus.WithFields(logrus.Fields{
		"route_id":       routeID,
		"logistics_id":   item.ID,
		"logistics_type": item.LogisticsType,
	}).Info("logistics item created")
	return &item, nil
}

func (a *LogisticsAttacher) UpdateLogistics(ctx context.Context, id string, in LogisticsInput) (*models.RouteLogistics, error) {
	item, err := a.GetLogistics(ctx, id)
	if err != nil {
		return nil, err
	}
	in, vehicleType, err := a.prepare(ctx, item.RouteID, in)
	if err != nil {
		return nil, err
	}
	applyLogistics(item, in, vehicleType)
	if err := a.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, storageErr("update logistics", "logistics", id, err)
	}
	return item, nil
}

func applyLogistics(item *models.RouteLogistics, in LogisticsInput, vehicleType string) {
	item.SegmentID = in.SegmentID
	item.LogisticsType = in.LogisticsType
	item.EntityType = in.EntityType
	item.EntityID = in.EntityID
	item.ItemName = in.ItemName
	item.Quantity = *in.Quantity
	item.Cost = in.Cost
	item.DriverPilotName = in.DriverPilotName
	item.VehicleType = ""
	if in.LogisticsType == models.LogisticsSupportVehicle {
		item.VehicleType = vehicleType
	}
	item.Notes = in.Notes
}

func (a *LogisticsAttacher) GetLogistics(ctx context.Context, id string) (*models.RouteLogistics, error) {
	var item models.RouteLogistics
	if err := a.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, storageErr("get logistics", "logistics", id, err)
	}
	return &item, nil
}

func (a *LogisticsAttacher) DeleteLogistics(ctx context.Context, id string) error {
	res := a.db.WithContext(ctx).Delete(&models.RouteLogistics{}, "id = ?", id)
	if res.Error != nil {
		return storageErr("delete logistics", "logistics", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("logistics", id)
	}
	return nil
}

func (a *LogisticsAttacher) ListByRoute(ctx context.Context, routeID string) ([]models.RouteLogistics, error) {
	return a.list(ctx, "route_id = ?", routeID)
}

func (a *LogisticsAttacher) ListBySegment(ctx context.Context, segmentID string) ([]models.RouteLogistics, error) {
	return a.list(ctx, "segment_id = ?", segmentID)
}

func (a *LogisticsAttacher) list(ctx context.Context, where string, arg string) ([]models.RouteLogistics, error) {
	items := []models.RouteLogistics{}
	if err := a.db.WithContext(ctx).Where(where, arg).Order("created_at").Find(&items).Error; err != nil {
		return nil, storageErr("list logistics", "logistics", "", err)
	}
	return items, nil
}

// ResolveEntityName looks up the provider's display name. It returns nil
// for provider-less items and for providers deleted after the item was
// created.
func (a *LogisticsAttacher) ResolveEntityName(ctx context.Context, item *models.RouteLogistics) (*string, error) {
	if item.EntityID == nil || item.EntityType == nil {
		return nil, nil
	}
	return resolveName(ctx, a.lookup, *item.EntityType, *item.EntityID)
}
