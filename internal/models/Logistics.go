package models

import "github.com/shopspring/decimal"

type LogisticsType string

const (
	LogisticsAirportTransfer LogisticsType = "airport-transfer"
	LogisticsSupportVehicle  LogisticsType = "support-vehicle"
	LogisticsHotelClient     LogisticsType = "hotel-client"
	LogisticsHotelStaff      LogisticsType = "hotel-staff"
	LogisticsLunch           LogisticsType = "lunch"
	LogisticsThirdParty      LogisticsType = "third-party"
	LogisticsExtraCost       LogisticsType = "extra-cost"
)

// RouteLogistics is a cost-bearing item attached to a segment. EntityType
// and EntityID form a tagged reference; both are nil for self-purchased
// lunches and provider-less extra costs.
type RouteLogistics struct {
	Base
	RouteID         string          `json:"route_id" gorm:"type:varchar(36);index;not null"`
	SegmentID       *string         `json:"segment_id" gorm:"type:varchar(36);index"`
	LogisticsType   LogisticsType   `json:"logistics_type" gorm:"type:varchar(32);not null"`
	EntityType      *EntityKind     `json:"entity_type" gorm:"type:varchar(16)"`
	EntityID        *string         `json:"entity_id" gorm:"type:varchar(36)"`
	ItemName        string          `json:"item_name"`
	Quantity        int             `json:"quantity" gorm:"default:1"`
	Cost            decimal.Decimal `json:"cost" gorm:"type:numeric(12,2)"`
	DriverPilotName string          `json:"driver_pilot_name"`
	VehicleType     string          `json:"vehicle_type"`
	Notes           string          `json:"notes"`
}

func (RouteLogistics) TableName() string { return "route_logistics" }

// LineTotal is the per-unit cost times quantity.
func (l RouteLogistics) LineTotal() decimal.Decimal {
	return l.Cost.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
