package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tour_ops/internal/models"
)

type TransferVehicleInput struct {
	VehicleID       string
	DriverPilotName string
	Cost            decimal.Decimal
}

type TransferInput struct {
	TransferDate   time.Time
	FromLocationID string
	ToLocationID   string
	Notes          string
	Vehicles       []TransferVehicleInput
	ParticipantIDs []string
}

// ComputeTotalCost sums cost x quantity over the transfer's vehicle lines.
func ComputeTotalCost(t *models.RouteTransfer) decimal.Decimal {
	total := decimal.Zero
	for _, v := range t.Vehicles {
		total = total.Add(v.LineTotal())
	}
	return total
}

// TransferManager manages transfers and their vehicle and participant lines.
type TransferManager struct {
	db     *gorm.DB
	lookup EntityLookup
}

func NewTransferManager(db *gorm.DB, lookup EntityLookup) *TransferManager {
	return &TransferManager{db: db, lookup: lookup}
}

// buildLines validates the input and turns it into vehicle lines. The
// own-vehicle flag comes from the vehicle's ownership, never from input.
func (m *TransferManager) buildLines(ctx context.Context, routeID string, in TransferInput) ([]models.RouteTransferVehicle, []string, error) {
	if in.TransferDate.IsZero() {
		return nil, nil, invalid("transfer_date", "is required")
	}
	if in.FromLocationID == "" || in.ToLocationID == "" {
		return nil, nil, invalid("location", "from and to locations are required")
	}
	if in.FromLocationID == in.ToLocationID {
		return nil, nil, invalid("to_location_id", "must differ from the origin")
	}
	if len(in.Vehicles) == 0 {
		return nil, nil, invalid("vehicles", "a transfer needs at least one vehicle")
	}
	for _, id := range []string{in.FromLocationID, in.ToLocationID} {
		if _, err := requireEntity(ctx, m.lookup, models.KindLocation, id); err != nil {
			return nil, nil, err
		}
	}
	lines := make([]models.RouteTransferVehicle, 0, len(in.Vehicles))
	for _, v := range in.Vehicles {
		if v.Cost.IsNegative() {
			return nil, nil, invalid("cost", "cannot be negative")
		}
		ref, err := requireEntity(ctx, m.lookup, models.KindVehicle, v.VehicleID)
		if err != nil {
			return nil, nil, err
		}
		lines = append(lines, models.RouteTransferVehicle{
			VehicleID:       v.VehicleID,
			DriverPilotName: v.DriverPilotName,
			Quantity:        1,
			Cost:            v.Cost,
			IsOwnVehicle:    ref.Ownership.IsCompany(),
		})
	}
	participantIDs, err := m.checkParticipants(ctx, routeID, in.ParticipantIDs)
	if err != nil {
		return nil, nil, err
	}
	return lines, participantIDs, nil
}

func (m *TransferManager) checkParticipants(ctx context.Context, routeID string, ids []string) ([]string, error) {
	out := []string{}
	if len(ids) == 0 {
		return out, nil
	}
	var onRoute []string
	if err := m.db.WithContext(ctx).Model(&models.RouteParticipant{}).Where("route_id = ? AND id IN ?", routeID, ids).Pluck("id", &onRoute).Error; err != nil {
		return nil, storageErr("check participants", "participant", "", err)
	}
	found := make(map[string]bool, len(onRoute))
	for _, id := range onRoute {
		found[id] = true
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !found[id] {
			return nil, notFound("participant", id)
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *TransferManager) CreateTransfer(ctx context.Context, routeID string, in TransferInput) (*models.RouteTransfer, error) {
	if err := requireRoute(ctx, m.db, routeID); err != nil {
		return nil, err
	}
	lines, participantIDs, err := m.buildLines(ctx, routeID, in)
	if err != nil {
		return nil, err
	}
	t := models.RouteTransfer{
		RouteID:        routeID,
		TransferDate:   truncateDay(in.TransferDate),
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		Notes:          in.Notes,
	}
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&t).Error; err != nil {
			return err
		}
		return writeTransferLines(tx, t.ID, lines, participantIDs)
	})
	if err != nil {
		return nil, storageErr("create transfer", "transfer", "", err)
	}
	logrus.WithFields(logrus.Fields{"route_id": routeID, "transfer_id": t.ID, "vehicles": len(lines)}).Info("transfer created")
	return m.GetTransfer(ctx, t.ID)
}

// UpdateTransfer rewrites the transfer and replaces all of its vehicle
// lines and participant links.
func (m *TransferManager) UpdateTransfer(ctx context.Context, id string, in TransferInput) (*models.RouteTransfer, error) {
	t, err := m.getRow(ctx, id)
	if err != nil {
		return nil, err
	}
	lines, participantIDs, err := m.buildLines(ctx, t.RouteID, in)
	if err != nil {
		return nil, err
	}
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.RouteTransfer{}).Where("id = ?", id).Updates(map[string]any{
			"transfer_date":    truncateDay(in.TransferDate),
			"from_location_id": in.FromLocationID,
			"to_location_id":   in.ToLocationID,
			"notes":            in.Notes,
		}).Error
		if err != nil {
			return err
		}
		if err := clearTransferLines(tx, []string{id}); err != nil {
			return err
		}
		return writeTransferLines(tx, id, lines, participantIDs)
	})
	if err != nil {
		return nil, storageErr("update transfer", "transfer", id, err)
	}
	return m.GetTransfer(ctx, id)
}

func (m *TransferManager) DeleteTransfer(ctx context.Context, id string) error {
	if _, err := m.getRow(ctx, id); err != nil {
		return err
	}
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteTransfersCascade(tx, []string{id})
	})
	if err != nil {
		return storageErr("delete transfer", "transfer", id, err)
	}
	logrus.WithField("transfer_id", id).Info("transfer deleted")
	return nil
}

func (m *TransferManager) GetTransfer(ctx context.Context, id string) (*models.RouteTransfer, error) {
	t, err := m.getRow(ctx, id)
	if err != nil {
		return nil, err
	}
	list := []models.RouteTransfer{*t}
	if err := loadTransferLines(m.db.WithContext(ctx), list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (m *TransferManager) ListTransfers(ctx context.Context, routeID string) ([]models.RouteTransfer, error) {
	return listTransfers(m.db.WithContext(ctx), routeID)
}

func listTransfers(db *gorm.DB, routeID string) ([]models.RouteTransfer, error) {
	transfers := []models.RouteTransfer{}
	if err := db.Where("route_id = ?", routeID).Order("transfer_date").Order("created_at").Find(&transfers).Error; err != nil {
		return nil, storageErr("list transfers", "transfer", "", err)
	}
	if err := loadTransferLines(db, transfers); err != nil {
		return nil, err
	}
	return transfers, nil
}

// loadTransferLines fills vehicles, participant ids and total cost in place.
func loadTransferLines(db *gorm.DB, transfers []models.RouteTransfer) error {
	if len(transfers) == 0 {
		return nil
	}
	ids := make([]string, len(transfers))
	for i := range transfers {
		ids[i] = transfers[i].ID
	}
	var vehicles []models.RouteTransferVehicle
	if err := db.Where("transfer_id IN ?", ids).Order("created_at").Find(&vehicles).Error; err != nil {
		return storageErr("list transfer vehicles", "transfer", "", err)
	}
	var links []models.TransferParticipant
	if err := db.Where("transfer_id IN ?", ids).Order("participant_id").Find(&links).Error; err != nil {
		return storageErr("list transfer participants", "transfer", "", err)
	}
	byTransfer := make(map[string][]models.RouteTransferVehicle)
	for _, v := range vehicles {
		byTransfer[v.TransferID] = append(byTransfer[v.TransferID], v)
	}
	parts := make(map[string][]string)
	for _, l := range links {
		parts[l.TransferID] = append(parts[l.TransferID], l.ParticipantID)
	}
	for i := range transfers {
		t := &transfers[i]
		t.Vehicles = byTransfer[t.ID]
		if t.Vehicles == nil {
			t.Vehicles = []models.RouteTransferVehicle{}
		}
		t.ParticipantIDs = parts[t.ID]
		if t.ParticipantIDs == nil {
			t.ParticipantIDs = []string{}
		}
		t.TotalCost = ComputeTotalCost(t)
	}
	return nil
}

func writeTransferLines(tx *gorm.DB, transferID string, lines []models.RouteTransferVehicle, participantIDs []string) error {
	for i := range lines {
		lines[i].ID = ""
		lines[i].TransferID = transferID
	}
	if err := tx.Create(&lines).Error; err != nil {
		return err
	}
	if len(participantIDs) == 0 {
		return nil
	}
	links := make([]models.TransferParticipant, len(participantIDs))
	for i, pid := range participantIDs {
		links[i] = models.TransferParticipant{TransferID: transferID, ParticipantID: pid}
	}
	return tx.Create(&links).Error
}

func clearTransferLines(tx *gorm.DB, transferIDs []string) error {
	if err := tx.Where("transfer_id IN ?", transferIDs).Delete(&models.RouteTransferVehicle{}).Error; err != nil {
		return err
	}
	return tx.Where("transfer_id IN ?", transferIDs).Delete(&models.TransferParticipant{}).Error
}

func deleteTransfersCascade(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := clearTransferLines(tx, ids); err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.RouteTransfer{}).Error
}

func (m *TransferManager) getRow(ctx context.Context, id string) (*models.RouteTransfer, error) {
	var t models.RouteTransfer
	if err := m.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, storageErr("get transfer", "transfer", id, err)
	}
	return &t, nil
}
