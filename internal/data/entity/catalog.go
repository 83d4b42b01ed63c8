package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Destination struct {
	Model
	Name            string          `db:"name"`
	Description     string          `db:"description"`
	City            string          `db:"city"`
	State           string          `db:"state"`
	Country         string          `db:"country"`
	BestTimeToVisit string          `db:"best_time_to_visit"`
	Attractions     []string        `db:"attractions"`
	AverageCost     decimal.Decimal `db:"average_cost"`
	Rating          float64         `db:"rating"`
}

type Hotel struct {
	Model
	Name           string          `db:"name"`
	Location       string          `db:"location"`
	DestinationID  *uuid.UUID      `db:"destination_id"`
	Description    string          `db:"description"`
	PricePerNight  decimal.Decimal `db:"price_per_night"`
	Rating         float64         `db:"rating"`
	Amenities      []string        `db:"amenities"`
	AvailableRooms int             `db:"available_rooms"`
	TotalRooms     int             `db:"total_rooms"`
	Phone          string          `db:"phone"`
	Email          string          `db:"email"`
}

type VehicleType string

const (
	VehicleEconomy VehicleType = "economy"
	VehiclePremium VehicleType = "premium"
	VehicleLuxury  VehicleType = "luxury"
	VehicleVan     VehicleType = "van"
)

type Cab struct {
	Model
	CompanyName   string          `db:"company_name"`
	VehicleType   VehicleType     `db:"vehicle_type"`
	PricePerKm    decimal.Decimal `db:"price_per_km"`
	PricePerHour  decimal.Decimal `db:"price_per_hour"`
	Capacity      int             `db:"capacity"`
	Rating        float64         `db:"rating"`
	AvailableCars int             `db:"available_cars"`
	Description   string          `db:"description"`
	Phone         string          `db:"phone"`
	Email         string          `db:"email"`
}
