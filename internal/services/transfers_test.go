package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tour_ops/internal/models"
)

func TestCreateTransfer_TotalsAndOwnership(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, nil)
	from, to := f.location(t, "RAK airport"), f.location(t, "Imlil")
	own := f.vehicle(t, "Company van", models.OwnershipCompany)
	hired := f.vehicle(t, "Hired minibus", models.OwnershipThirdParty)

	transfer, err := f.transfers.CreateTransfer(f.ctx, route.ID, TransferInput{
		TransferDate:   day(2024, 6, 1),
		FromLocationID: from,
		ToLocationID:   to,
		Vehicles: []TransferVehicleInput{
			{VehicleID: own, DriverPilotName: "Said", Cost: mustDecimal("50")},
			{VehicleID: hired, Cost: mustDecimal("75.25")},
		},
	})
	require.NoError(t, err)
	require.Len(t, transfer.Vehicles, 2)

	byVehicle := map[string]models.RouteTransferVehicle{}
	for _, v := range transfer.Vehicles {
		byVehicle[v.VehicleID] = v
		assert.Equal(t, 1, v.Quantity)
	}
	assert.True(t, byVehicle[own].IsOwnVehicle)
	assert.False(t, byVehicle[hired].IsOwnVehicle)
	assert.True(t, transfer.TotalCost.Equal(mustDecimal("125.25")))
	assert.Equal(t, []string{}, transfer.ParticipantIDs)
}

func TestCreateTransfer_BlankOwnershipIsCompanyVehicle(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, nil)
	legacy := f.vehicle(t, "Old Land Rover", models.OwnershipCompany)
	require.NoError(t, f.db.Model(&models.Vehicle{}).Where("id = ?", legacy).Update("ownership", "").Error)

	transfer, err := f.transfers.CreateTransfer(f.ctx, route.ID, TransferInput{
		TransferDate:   day(2024, 6, 1),
		FromLocationID: f.location(t, "RAK airport"),
		ToLocationID:   f.location(t, "Imlil"),
		Vehicles:       []TransferVehicleInput{{VehicleID: legacy, Cost: mustDecimal("40")}},
	})
	require.NoError(t, err)
	require.Len(t, transfer.Vehicles, 1)
	assert.True(t, transfer.Vehicles[0].IsOwnVehicle)
}

func TestCreateTransfer_Validation(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, nil)
	from, to := f.location(t, "RAK airport"), f.location(t, "Imlil")
	van := f.vehicle(t, "Van", models.OwnershipCompany)

	base := func() TransferInput {
		return TransferInput{
			TransferDate:   day(2024, 6, 1),
			FromLocationID: from,
			ToLocationID:   to,
			Vehicles:       []TransferVehicleInput{{VehicleID: van}},
		}
	}

	in := base()
	in.Vehicles = nil
	_, err := f.transfers.CreateTransfer(f.ctx, route.ID, in)
	assert.ErrorIs(t, err, ErrValidation)

	in = base()
	in.ToLocationID = from
	_, err = f.transfers.CreateTransfer(f.ctx, route.ID, in)
	assert.ErrorIs(t, err, ErrValidation)

	in = base()
	in.TransferDate = time.Time{}
	_, err = f.transfers.CreateTransfer(f.ctx, route.ID, in)
	assert.ErrorIs(t, err, ErrValidation)

	in = base()
	in.Vehicles[0].Cost = mustDecimal("-1")
	_, err = f.transfers.CreateTransfer(f.ctx, route.ID, in)
	assert.ErrorIs(t, err, ErrValidation)

	in = base()
	in.Vehicles[0].VehicleID = "no-such-vehicle"
	_, err = f.transfers.CreateTransfer(f.ctx, route.ID, in)
	assert.ErrorIs(t, err, ErrNotFound)

	in = base()
	in.ParticipantIDs = []string{"nobody"}
	_, err = f.transfers.CreateTransfer(f.ctx, route.ID, in)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTransfer_ReplacesLines(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, nil)
	from, to := f.location(t, "RAK airport"), f.location(t, "Imlil")
	van := f.vehicle(t, "Van", models.OwnershipCompany)
	bus := f.vehicle(t, "Bus", models.OwnershipThirdParty)
	ana := f.clientParticipant(t, route.ID, "Ana")

	transfer, err := f.transfers.CreateTransfer(f.ctx, route.ID, TransferInput{
		TransferDate:   day(2024, 6, 1),
		FromLocationID: from,
		ToLocationID:   to,
		Vehicles:       []TransferVehicleInput{{VehicleID: van, Cost: mustDecimal("40")}},
		ParticipantIDs: []string{ana.ID},
	})
	require.NoError(t, err)

	transfer, err = f.transfers.UpdateTransfer(f.ctx, transfer.ID, TransferInput{
		TransferDate:   day(2024, 6, 8),
		FromLocationID: to,
		ToLocationID:   from,
		Vehicles:       []TransferVehicleInput{{VehicleID: bus, Cost: mustDecimal("90")}},
	})
	require.NoError(t, err)
	require.Len(t, transfer.Vehicles, 1)
	assert.Equal(t, bus, transfer.Vehicles[0].VehicleID)
	assert.Empty(t, transfer.ParticipantIDs)
	assert.True(t, transfer.TotalCost.Equal(mustDecimal("90")))
	assert.True(t, day(2024, 6, 8).Equal(transfer.TransferDate))

	list, err := f.transfers.ListTransfers(f.ctx, route.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.transfers.DeleteTransfer(f.ctx, transfer.ID))
	_, err = f.transfers.GetTransfer(f.ctx, transfer.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
