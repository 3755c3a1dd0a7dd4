package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tour_ops/internal/models"
)

// EntityRef is the slice of a reference entity the itinerary core needs:
// enough to print a name, derive vehicle ownership and tell drivers from
// other staff.
type EntityRef struct {
	Kind        models.EntityKind
	ID          string
	Name        string
	Ownership   models.VehicleOwnership
	VehicleType string
	StaffType   models.StaffType
}

// EntityLookup is the contract the itinerary managers consume from the
// entity store.
type EntityLookup interface {
	GetByID(ctx context.Context, kind models.EntityKind, id string) (*EntityRef, error)
}

type resolver func(db *gorm.DB, id string) (*EntityRef, error)

var resolvers = map[models.EntityKind]resolver{
	models.KindClient:     loadRef[models.Client],
	models.KindLocation:   loadRef[models.Location],
	models.KindHotel:      loadRef[models.Hotel],
	models.KindStaff:      loadStaffRef,
	models.KindThirdParty: loadRef[models.ThirdParty],
	models.KindCaterer:    loadRef[models.Caterer],
	models.KindVehicle:    loadVehicleRef,
}

func loadRef[T models.Entity](db *gorm.DB, id string) (*EntityRef, error) {
	var e T
	if err := db.First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &EntityRef{Kind: e.EntityKind(), ID: id, Name: e.DisplayName()}, nil
}

func loadStaffRef(db *gorm.DB, id string) (*EntityRef, error) {
	var s models.Staff
	if err := db.First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &EntityRef{Kind: models.KindStaff, ID: id, Name: s.Name, StaffType: s.StaffType}, nil
}

func loadVehicleRef(db *gorm.DB, id string) (*EntityRef, error) {
	var v models.Vehicle
	if err := db.First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &EntityRef{
		Kind:        models.KindVehicle,
		ID:          id,
		Name:        v.Name,
		Ownership:   v.Ownership,
		VehicleType: v.VehicleType,
	}, nil
}

// EntityStore provides CRUD over the reference tables and implements
// EntityLookup.
type EntityStore struct {
	db *gorm.DB
}

func NewEntityStore(db *gorm.DB) *EntityStore {
	return &EntityStore{db: db}
}

func (s *EntityStore) GetByID(ctx context.Context, kind models.EntityKind, id string) (*EntityRef, error) {
	resolve, ok := resolvers[kind]
	if !ok {
		return nil, invalid("entity_type", "unknown entity kind "+string(kind))
	}
	ref, err := resolve(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, storageErr("lookup", string(kind), id, err)
	}
	return ref, nil
}

// resolveName returns nil when the entity no longer exists. Only storage
// failures are reported.
func resolveName(ctx context.Context, lookup EntityLookup, kind models.EntityKind, id string) (*string, error) {
	ref, err := lookup.GetByID(ctx, kind, id)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref.Name, nil
}

// requireEntity checks that a referenced entity exists.
func requireEntity(ctx context.Context, lookup EntityLookup, kind models.EntityKind, id string) (*EntityRef, error) {
	if id == "" {
		return nil, invalid(string(kind)+"_id", "is required")
	}
	return lookup.GetByID(ctx, kind, id)
}

type defaulter interface {
	ApplyDefaults()
}

func kindOf[T models.Entity]() string {
	var zero T
	return string(zero.EntityKind())
}

func CreateEntity[T models.Entity](ctx context.Context, s *EntityStore, e *T) error {
	if d, ok := any(e).(defaulter); ok {
		d.ApplyDefaults()
	}
	if err := (*e).Validate(); err != nil {
		return invalid("", err.Error())
	}
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return storageErr("create entity", kindOf[T](), "", err)
	}
	logrus.WithField("kind", kindOf[T]()).Info("entity created")
	return nil
}

func GetEntity[T models.Entity](ctx context.Context, s *EntityStore, id string) (*T, error) {
	var e T
	if err := s.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, storageErr("get entity", kindOf[T](), id, err)
	}
	return &e, nil
}

func ListEntities[T models.Entity](ctx context.Context, s *EntityStore) ([]T, error) {
	out := []T{}
	if err := s.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, storageErr("list entities", kindOf[T](), "", err)
	}
	return out, nil
}

// UpdateEntity overwrites every column but the key and creation time.
func UpdateEntity[T models.Entity](ctx context.Context, s *EntityStore, id string, e *T) (*T, error) {
	existing, err := GetEntity[T](ctx, s, id)
	if err != nil {
		return nil, err
	}
	if d, ok := any(e).(defaulter); ok {
		d.ApplyDefaults()
	}
	if err := (*e).Validate(); err != nil {
		return nil, invalid("", err.Error())
	}
	err = s.db.WithContext(ctx).Model(existing).
		Select("*").Omit("id", "created_at").
		Updates(e).Error
	if err != nil {
		return nil, storageErr("update entity", kindOf[T](), id, err)
	}
	return GetEntity[T](ctx, s, id)
}

// DeleteEntity removes the row. References held by routes and accounts are
// left dangling on purpose; readers resolve them to a nil name.
func DeleteEntity[T models.Entity](ctx context.Context, s *EntityStore, id string) error {
	res := s.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return storageErr("delete entity", kindOf[T](), id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(kindOf[T](), id)
	}
	logrus.WithFields(logrus.Fields{"kind": kindOf[T](), "id": id}).Info("entity deleted")
	return nil
}
