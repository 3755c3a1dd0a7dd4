package services

import (
	"github.com/shopspring/decimal"

	"tour_ops/internal/models"
)

// CostBreakdown carries two views of the same logistics lines. ByType is
// the detailed view with every logistics type in its own bucket. The
// summary buckets merge third-party and extra-cost into Extras. Both views
// are kept because different screens group differently.
type CostBreakdown struct {
	ByType map[models.LogisticsType]decimal.Decimal `json:"by_type"`

	Vehicles      decimal.Decimal `json:"vehicles"`
	Accommodation decimal.Decimal `json:"accommodation"`
	Catering      decimal.Decimal `json:"catering"`
	Extras        decimal.Decimal `json:"extras"`

	Logistics decimal.Decimal `json:"logistics"`
	Transfers decimal.Decimal `json:"transfers"`
	Total     decimal.Decimal `json:"total"`
}

func BuildCostBreakdown(items []models.RouteLogistics, transfers []models.RouteTransfer) CostBreakdown {
	b := CostBreakdown{ByType: make(map[models.LogisticsType]decimal.Decimal)}
	for _, item := range items {
		line := item.LineTotal()
		b.ByType[item.LogisticsType] = b.ByType[item.LogisticsType].Add(line)
		b.Logistics = b.Logistics.Add(line)
		switch item.LogisticsType {
		case models.LogisticsAirportTransfer, models.LogisticsSupportVehicle:
			b.Vehicles = b.Vehicles.Add(line)
		case models.LogisticsHotelClient, models.LogisticsHotelStaff:
			b.Accommodation = b.Accommodation.Add(line)
		case models.LogisticsLunch:
			b.Catering = b.Catering.Add(line)
		case models.LogisticsThirdParty, models.LogisticsExtraCost:
			b.Extras = b.Extras.Add(line)
		}
	}
	for i := range transfers {
		b.Transfers = b.Transfers.Add(ComputeTotalCost(&transfers[i]))
	}
	b.Total = b.Logistics.Add(b.Transfers)
	return b
}

// SegmentCost sums the line totals of the items attached to one segment.
func SegmentCost(items []models.RouteLogistics, segmentID string) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.SegmentID != nil && *item.SegmentID == segmentID {
			total = total.Add(item.LineTotal())
		}
	}
	return total
}
