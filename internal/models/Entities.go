// internal/models/entities.go
package models

import (
	"errors"
	"strings"
)

// EntityKind tags the reference tables that other records point at
// polymorphically (logistics providers, account owners, participants).
type EntityKind string

const (
	KindClient     EntityKind = "client"
	KindLocation   EntityKind = "location"
	KindHotel      EntityKind = "hotel"
	KindStaff      EntityKind = "staff"
	KindVehicle    EntityKind = "vehicle"
	KindThirdParty EntityKind = "third-party"
	KindCaterer    EntityKind = "caterer"
)

// Entity is implemented by every reference table managed by the entity store.
type Entity interface {
	EntityKind() EntityKind
	DisplayName() string
	Validate() error
}

var errNameRequired = errors.New("name is required")

type Client struct {
	Base
	Name        string `json:"name" gorm:"not null"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Nationality string `json:"nationality"`
	Notes       string `json:"notes"`
}

func (Client) EntityKind() EntityKind { return KindClient }
func (c Client) DisplayName() string  { return c.Name }
func (c Client) Validate() error      { return requireName(c.Name) }

type Location struct {
	Base
	Name   string `json:"name" gorm:"not null"`
	Region string `json:"region"`
	Notes  string `json:"notes"`
}

func (Location) EntityKind() EntityKind { return KindLocation }
func (l Location) DisplayName() string  { return l.Name }
func (l Location) Validate() error      { return requireName(l.Name) }

type Hotel struct {
	Base
	Name       string  `json:"name" gorm:"not null"`
	LocationID *string `json:"location_id" gorm:"type:varchar(36);index"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email"`
	Notes      string  `json:"notes"`
}

func (Hotel) EntityKind() EntityKind { return KindHotel }
func (h Hotel) DisplayName() string  { return h.Name }
func (h Hotel) Validate() error      { return requireName(h.Name) }

type StaffType string

const (
	StaffGuide  StaffType = "guide"
	StaffDriver StaffType = "driver"
	StaffOther  StaffType = "other"
)

// Staff covers guides, drivers and any other crew a route can carry.
type Staff struct {
	Base
	Name      string    `json:"name" gorm:"not null"`
	StaffType StaffType `json:"staff_type" gorm:"type:varchar(16);default:'guide'"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Notes     string    `json:"notes"`
}

func (Staff) TableName() string      { return "staff" }
func (Staff) EntityKind() EntityKind { return KindStaff }
func (s Staff) DisplayName() string  { return s.Name }
func (s Staff) Validate() error {
	if err := requireName(s.Name); err != nil {
		return err
	}
	switch s.StaffType {
	case "", StaffGuide, StaffDriver, StaffOther:
		return nil
	}
	return errors.New("staff_type must be one of guide, driver, other")
}

func (s *Staff) ApplyDefaults() {
	if s.StaffType == "" {
		s.StaffType = StaffGuide
	}
}

type ThirdParty struct {
	Base
	Name        string `json:"name" gorm:"not null"`
	ServiceType string `json:"service_type"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Notes       string `json:"notes"`
}

func (ThirdParty) EntityKind() EntityKind { return KindThirdParty }
func (t ThirdParty) DisplayName() string  { return t.Name }
func (t ThirdParty) Validate() error      { return requireName(t.Name) }

type Caterer struct {
	Base
	Name  string `json:"name" gorm:"not null"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

func (Caterer) EntityKind() EntityKind { return KindCaterer }
func (c Caterer) DisplayName() string  { return c.Name }
func (c Caterer) Validate() error      { return requireName(c.Name) }

func requireName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errNameRequired
	}
	return nil
}
