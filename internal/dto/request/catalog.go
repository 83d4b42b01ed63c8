package request

import "github.com/shopspring/decimal"

type CreateDestinationRequest struct {
	Name            string           `json:"name" validate:"required,max=100"`
	Description     string           `json:"description" validate:"required"`
	City            string           `json:"city" validate:"required,max=50"`
	State           string           `json:"state" validate:"required,max=50"`
	Country         string           `json:"country" validate:"required,max=50"`
	BestTimeToVisit string           `json:"best_time_to_visit" validate:"max=100"`
	Attractions     []string         `json:"attractions" validate:"omitempty,dive,required,max=100"`
	AverageCost     *decimal.Decimal `json:"average_cost" validate:"required"`
	Rating          float64          `json:"rating" validate:"gte=0,lte=5"`
}

type CreateHotelRequest struct {
	Name           string           `json:"name" validate:"required,max=100"`
	Location       string           `json:"location" validate:"required,max=100"`
	DestinationID  *string          `json:"destination_id,omitempty" validate:"omitempty,uuid"`
	Description    string           `json:"description" validate:"required"`
	PricePerNight  *decimal.Decimal `json:"price_per_night" validate:"required"`
	Rating         float64          `json:"rating" validate:"gte=0,lte=5"`
	Amenities      []string         `json:"amenities" validate:"omitempty,dive,required,max=100"`
	AvailableRooms int              `json:"available_rooms" validate:"gte=0"`
	TotalRooms     int              `json:"total_rooms" validate:"gte=0,gtefield=AvailableRooms"`
	Phone          string           `json:"phone" validate:"omitempty,max=20"`
	Email          string           `json:"email" validate:"omitempty,email"`
}

type CreateCabRequest struct {
	CompanyName   string           `json:"company_name" validate:"required,max=100"`
	VehicleType   string           `json:"vehicle_type" validate:"required,oneof=economy premium luxury van"`
	PricePerKm    *decimal.Decimal `json:"price_per_km" validate:"required"`
	PricePerHour  *decimal.Decimal `json:"price_per_hour" validate:"required"`
	Capacity      int              `json:"capacity" validate:"required,gte=1,lte=50"`
	Rating        float64          `json:"rating" validate:"gte=0,lte=5"`
	AvailableCars int              `json:"available_cars" validate:"gte=0"`
	Description   string           `json:"description"`
	Phone         string           `json:"phone" validate:"omitempty,max=20"`
	Email         string           `json:"email" validate:"omitempty,email"`
}
