package response

import (
	"time"

	"travel-booking/internal/data/entity"
)

type DestinationResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	City            string    `json:"city"`
	State           string    `json:"state"`
	Country         string    `json:"country"`
	BestTimeToVisit string    `json:"best_time_to_visit"`
	Attractions     []string  `json:"attractions"`
	AverageCost     string    `json:"average_cost"`
	Rating          float64   `json:"rating"`
	CreatedAt       time.Time `json:"created_at"`
}

type HotelResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Location       string    `json:"location"`
	DestinationID  *string   `json:"destination_id,omitempty"`
	Description    string    `json:"description"`
	PricePerNight  string    `json:"price_per_night"`
	Rating         float64   `json:"rating"`
	Amenities      []string  `json:"amenities"`
	AvailableRooms int       `json:"available_rooms"`
	TotalRooms     int       `json:"total_rooms"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type CabResponse struct {
	ID            string             `json:"id"`
	CompanyName   string             `json:"company_name"`
	VehicleType   entity.VehicleType `json:"vehicle_type"`
	PricePerKm    string             `json:"price_per_km"`
	PricePerHour  string             `json:"price_per_hour"`
	Capacity      int                `json:"capacity"`
	Rating        float64            `json:"rating"`
	AvailableCars int                `json:"available_cars"`
	Description   string             `json:"description,omitempty"`
	Phone         string             `json:"phone,omitempty"`
	Email         string             `json:"email,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

func DestinationToResponse(d *entity.Destination) DestinationResponse {
	return DestinationResponse{
		ID:              d.ID.String(),
		Name:            d.Name,
		Description:     d.Description,
		City:            d.City,
		State:           d.State,
		Country:         d.Country,
		BestTimeToVisit: d.BestTimeToVisit,
		Attractions:     d.Attractions,
		AverageCost:     d.AverageCost.StringFixed(2),
		Rating:          d.Rating,
		CreatedAt:       d.CreatedAt,
	}
}

func HotelToResponse(h *entity.Hotel) HotelResponse {
	return HotelResponse{
		ID:             h.ID.String(),
		Name:           h.Name,
		Location:       h.Location,
		DestinationID:  idString(h.DestinationID),
		Description:    h.Description,
		PricePerNight:  h.PricePerNight.StringFixed(2),
		Rating:         h.Rating,
		Amenities:      h.Amenities,
		AvailableRooms: h.AvailableRooms,
		TotalRooms:     h.TotalRooms,
		Phone:          h.Phone,
		Email:          h.Email,
		CreatedAt:      h.CreatedAt,
	}
}

func CabToResponse(c *entity.Cab) CabResponse {
	return CabResponse{
		ID:            c.ID.String(),
		CompanyName:   c.CompanyName,
		VehicleType:   c.VehicleType,
		PricePerKm:    c.PricePerKm.StringFixed(2),
		PricePerHour:  c.PricePerHour.StringFixed(2),
		Capacity:      c.Capacity,
		Rating:        c.Rating,
		AvailableCars: c.AvailableCars,
		Description:   c.Description,
		Phone:         c.Phone,
		Email:         c.Email,
		CreatedAt:     c.CreatedAt,
	}
}
