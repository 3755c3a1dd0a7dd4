package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tour_ops/internal/services"
)

type TransferController struct {
	transfers *services.TransferManager
}

func NewTransferController(transfers *services.TransferManager) *TransferController {
	return &TransferController{transfers: transfers}
}

type transferVehicleInput struct {
	VehicleID       string          `json:"vehicle_id" binding:"required"`
	DriverPilotName string          `json:"driver_pilot_name"`
	Cost            decimal.Decimal `json:"cost"`
}

type transferInput struct {
	TransferDate   string                 `json:"transfer_date" binding:"required"`
	FromLocationID string                 `json:"from_location_id" binding:"required"`
	ToLocationID   string                 `json:"to_location_id" binding:"required"`
	Notes          string                 `json:"notes"`
	Vehicles       []transferVehicleInput `json:"vehicles"`
	ParticipantIDs []string               `json:"participant_ids"`
}

func (in transferInput) toService() (services.TransferInput, error) {
	date, err := parseDate("transfer_date", &in.TransferDate)
	if err != nil {
		return services.TransferInput{}, err
	}
	out := services.TransferInput{
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		Notes:          in.Notes,
		ParticipantIDs: in.ParticipantIDs,
	}
	if date != nil {
		out.TransferDate = *date
	}
	for _, v := range in.Vehicles {
		out.Vehicles = append(out.Vehicles, services.TransferVehicleInput{
			VehicleID:       v.VehicleID,
			DriverPilotName: v.DriverPilotName,
			Cost:            v.Cost,
		})
	}
	return out, nil
}

func (tc *TransferController) CreateTransfer(c *gin.Context) {
	var input transferInput
	if !bind(c, "CreateTransfer", &input) {
		return
	}
	in, err := input.toService()
	if err != nil {
		respondError(c, "CreateTransfer", err)
		return
	}
	transfer, err := tc.transfers.CreateTransfer(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, "CreateTransfer", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transfer": transfer})
}

func (tc *TransferController) ListTransfers(c *gin.Context) {
	transfers, err := tc.transfers.ListTransfers(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "ListTransfers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfers": transfers})
}

func (tc *TransferController) GetTransfer(c *gin.Context) {
	transfer, err := tc.transfers.GetTransfer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "GetTransfer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfer": transfer})
}

func (tc *TransferController) UpdateTransfer(c *gin.Context) {
	var input transferInput
	if !bind(c, "UpdateTransfer", &input) {
		return
	}
	in, err := input.toService()
	if err != nil {
		respondError(c, "UpdateTransfer", err)
		return
	}
	transfer, err := tc.transfers.UpdateTransfer(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, "UpdateTransfer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfer": transfer})
}

func (tc *TransferController) DeleteTransfer(c *gin.Context) {
	if err := tc.transfers.DeleteTransfer(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "DeleteTransfer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transfer deleted"})
}
