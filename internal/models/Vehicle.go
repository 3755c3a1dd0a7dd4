// internal/models/vehicle.go
package models

import "errors"

type VehicleOwnership string

const (
	OwnershipCompany    VehicleOwnership = "company"
	OwnershipThirdParty VehicleOwnership = "third-party"
)

type Vehicle struct {
	Base
	Name        string           `json:"name" gorm:"not null"`
	VehicleType string           `json:"vehicle_type"`
	PlateNumber string           `json:"plate_number"`
	Capacity    int              `json:"capacity"`
	Ownership   VehicleOwnership `json:"ownership" gorm:"type:varchar(16);default:'company'"`
	Notes       string           `json:"notes"`
}

func (Vehicle) EntityKind() EntityKind { return KindVehicle }
func (v Vehicle) DisplayName() string  { return v.Name }

func (v Vehicle) Validate() error {
	if err := requireName(v.Name); err != nil {
		return err
	}
	if v.Capacity < 0 {
		return errors.New("capacity cannot be negative")
	}
	switch v.Ownership {
	case "", OwnershipCompany, OwnershipThirdParty:
		return nil
	}
	return errors.New("ownership must be company or third-party")
}

// IsCompany reports whether the operator owns the vehicle. Rows written
// before ownership existed count as company vehicles.
func (o VehicleOwnership) IsCompany() bool {
	return o == "" || o == OwnershipCompany
}

func (v *Vehicle) ApplyDefaults() {
	if v.Ownership == "" {
		v.Ownership = OwnershipCompany
	}
}
