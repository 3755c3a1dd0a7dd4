package config

import (
	"fmt"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tour_ops/internal/logger"
	"tour_ops/internal/models"
)

// OpenDB creates the connection pool. It is opened once in main and
// passed to every service.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        cfg.DSN(),
	}), &gorm.Config{
		Logger:         logger.NewGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("verify database connection: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table and the primary-account index.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Location{},
		&models.Hotel{},
		&models.Staff{},
		&models.Vehicle{},
		&models.ThirdParty{},
		&models.Caterer{},
		&models.Route{},
		&models.RouteSegment{},
		&models.RouteSegmentStop{},
		&models.RouteLogistics{},
		&models.RouteSegmentAccommodation{},
		&models.Room{},
		&models.RoomOccupant{},
		&models.RouteParticipant{},
		&models.ParticipantSegment{},
		&models.RouteTransfer{},
		&models.RouteTransferVehicle{},
		&models.TransferParticipant{},
		&models.Account{},
		&models.Transaction{},
	)
	if err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	// At most one primary account per (entity_type, entity_id); company
	// accounts share the NULL id, hence the COALESCE.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_accounts_primary_scope
		ON accounts (entity_type, COALESCE(entity_id, ''))
		WHERE is_primary`).Error
	if err != nil {
		return fmt.Errorf("create primary account index: %w", err)
	}
	return nil
}
