package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RouteStatus string

const (
	RouteDraft      RouteStatus = "draft"
	RouteConfirmed  RouteStatus = "confirmed"
	RouteInProgress RouteStatus = "in-progress"
	RouteCompleted  RouteStatus = "completed"
	RouteCancelled  RouteStatus = "cancelled"
)

func (s RouteStatus) Valid() bool {
	switch s {
	case RouteDraft, RouteConfirmed, RouteInProgress, RouteCompleted, RouteCancelled:
		return true
	}
	return false
}

// Route is a multi-day trip. End date, duration and distance are not
// stored; they are derived from the route's segments on read.
type Route struct {
	Base
	Name          string          `json:"name" gorm:"not null"`
	Description   string          `json:"description"`
	StartDate     *time.Time      `json:"start_date" gorm:"type:date"`
	Status        RouteStatus     `json:"status" gorm:"type:varchar(16);default:'draft'"`
	Currency      string          `json:"currency" gorm:"type:varchar(3)"`
	EstimatedCost decimal.Decimal `json:"estimated_cost" gorm:"type:numeric(12,2)"`
	ActualCost    decimal.Decimal `json:"actual_cost" gorm:"type:numeric(12,2)"`
	Notes         string          `json:"notes"`
}

// RouteSegment is one day-leg of a route. SegmentOrder drives date
// derivation; DayNumber is free-form and is never inferred from it.
type RouteSegment struct {
	Base
	RouteID             string  `json:"route_id" gorm:"type:varchar(36);index;not null"`
	DayNumber           int     `json:"day_number"`
	SegmentOrder        int     `json:"segment_order"`
	FromLocationID      *string `json:"from_location_id" gorm:"type:varchar(36)"`
	ToLocationID        *string `json:"to_location_id" gorm:"type:varchar(36)"`
	OvernightLocationID *string `json:"overnight_location_id" gorm:"type:varchar(36)"`
	Distance            float64 `json:"distance"`
	Notes               string  `json:"notes"`

	Stops []RouteSegmentStop `json:"stops,omitempty" gorm:"-"`
}

// RouteSegmentStop is an intermediate stop; StopOrder is kept contiguous 1..N.
type RouteSegmentStop struct {
	Base
	SegmentID  string `json:"segment_id" gorm:"type:varchar(36);index;not null"`
	LocationID string `json:"location_id" gorm:"type:varchar(36);not null"`
	StopOrder  int    `json:"stop_order"`
	Notes      string `json:"notes"`
}
