package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"tour_ops/internal/config"
	"tour_ops/internal/models"
)

// newTestDB opens a private in-memory sqlite database with the full schema.
// One connection keeps the memory database alive and serialises writers.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, config.Migrate(db))
	return db
}

type fixture struct {
	ctx            context.Context
	db             *gorm.DB
	entities       *EntityStore
	segments       *SegmentSequencer
	logistics      *LogisticsAttacher
	transfers      *TransferManager
	participants   *ParticipantAssignment
	accommodations *AccommodationManager
	accounts       *AccountLedger
	routes         *RouteService
}

func newFixture(t *testing.T) *fixture {
	db := newTestDB(t)
	entities := NewEntityStore(db)
	segments := NewSegmentSequencer(db, entities)
	logistics := NewLogisticsAttacher(db, entities)
	transfers := NewTransferManager(db, entities)
	participants := NewParticipantAssignment(db, entities)
	return &fixture{
		ctx:            context.Background(),
		db:             db,
		entities:       entities,
		segments:       segments,
		logistics:      logistics,
		transfers:      transfers,
		participants:   participants,
		accommodations: NewAccommodationManager(db, entities, participants),
		accounts:       NewAccountLedger(db, entities, "EUR"),
		routes:         NewRouteService(db, segments, logistics, transfers, "EUR"),
	}
}

func ptr[T any](v T) *T { return &v }

func mustDecimal(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) location(t *testing.T, name string) string {
	t.Helper()
	loc := models.Location{Name: name}
	require.NoError(t, CreateEntity(f.ctx, f.entities, &loc))
	return loc.ID
}

func (f *fixture) hotel(t *testing.T, name string) string {
	t.Helper()
	h := models.Hotel{Name: name}
	require.NoError(t, CreateEntity(f.ctx, f.entities, &h))
	return h.ID
}

func (f *fixture) client(t *testing.T, name string) string {
	t.Helper()
	c := models.Client{Name: name}
	require.NoError(t, CreateEntity(f.ctx, f.entities, &c))
	return c.ID
}

func (f *fixture) staff(t *testing.T, name string) string {
	t.Helper()
	s := models.Staff{Name: name}
	require.NoError(t, CreateEntity(f.ctx, f.entities, &s))
	return s.ID
}

func (f *fixture) vehicle(t *testing.T, name string, ownership models.VehicleOwnership) string {
	t.Helper()
	v := models.Vehicle{Name: name, VehicleType: "4x4", Ownership: ownership}
	require.NoError(t, CreateEntity(f.ctx, f.entities, &v))
	return v.ID
}

func (f *fixture) thirdParty(t *testing.T, name string) string {
	t.Helper()
	tp := models.ThirdParty{Name: name}
	require.NoError(t, CreateEntity(f.ctx, f.entities, &tp))
	return tp.ID
}

func (f *fixture) route(t *testing.T, start *time.Time) *models.Route {
	t.Helper()
	r, err := f.routes.CreateRoute(f.ctx, RouteInput{Name: "Atlas Trek", StartDate: start})
	require.NoError(t, err)
	return r
}

func (f *fixture) segment(t *testing.T, routeID string, dayNumber, order int) *models.RouteSegment {
	t.Helper()
	seg, err := f.segments.CreateSegment(f.ctx, routeID, SegmentInput{DayNumber: dayNumber, SegmentOrder: order, Distance: 20})
	require.NoError(t, err)
	return seg
}

func (f *fixture) clientParticipant(t *testing.T, routeID, name string, segmentIDs ...string) *models.RouteParticipant {
	t.Helper()
	p, err := f.participants.AddParticipant(f.ctx, routeID, ParticipantInput{
		Role:       models.RoleClient,
		ClientID:   ptr(f.client(t, name)),
		SegmentIDs: segmentIDs,
	})
	require.NoError(t, err)
	return p
}
