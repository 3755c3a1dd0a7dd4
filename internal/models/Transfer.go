package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RouteTransfer is a point-to-point movement (airport runs and the like)
// that is not tied to a day segment.
type RouteTransfer struct {
	Base
	RouteID        string    `json:"route_id" gorm:"type:varchar(36);index;not null"`
	TransferDate   time.Time `json:"transfer_date" gorm:"type:date"`
	FromLocationID string    `json:"from_location_id" gorm:"type:varchar(36);not null"`
	ToLocationID   string    `json:"to_location_id" gorm:"type:varchar(36);not null"`
	Notes          string    `json:"notes"`

	Vehicles       []RouteTransferVehicle `json:"vehicles" gorm:"-"`
	ParticipantIDs []string               `json:"participant_ids" gorm:"-"`
	TotalCost      decimal.Decimal        `json:"total_cost" gorm:"-"`
}

// RouteTransferVehicle is one vehicle line. Quantity is always 1; several
// vehicles of the same kind are separate lines so each keeps its own
// driver and cost.
type RouteTransferVehicle struct {
	Base
	TransferID      string          `json:"transfer_id" gorm:"type:varchar(36);index;not null"`
	VehicleID       string          `json:"vehicle_id" gorm:"type:varchar(36);not null"`
	DriverPilotName string          `json:"driver_pilot_name"`
	Quantity        int             `json:"quantity" gorm:"default:1"`
	Cost            decimal.Decimal `json:"cost" gorm:"type:numeric(12,2)"`
	IsOwnVehicle    bool            `json:"is_own_vehicle"`
}

func (l RouteTransferVehicle) LineTotal() decimal.Decimal {
	return l.Cost.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type TransferParticipant struct {
	TransferID    string `gorm:"type:varchar(36);primaryKey"`
	ParticipantID string `gorm:"type:varchar(36);primaryKey;index"`
}
