// Package mirror keeps the MongoDB read model in step with the PostgreSQL rows it projects.
//
// Every record carries the version of the primary row it was built from. Stores apply a
// record only when it is newer than what they hold, so the mirror never moves backwards and
// never shows a state the primary store did not have.
package mirror

import (
	"time"

	"travel-booking/internal/data/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

type Collection string

const (
	CollectionBookings     Collection = "bookings"
	CollectionDestinations Collection = "destinations"
	CollectionHotels       Collection = "hotels"
	CollectionCabs         Collection = "cabs"
)

// Collections lists every mirrored collection in rebuild order.
var Collections = []Collection{
	CollectionDestinations,
	CollectionHotels,
	CollectionCabs,
	CollectionBookings,
}

// Record is the projection of one primary row.
type Record struct {
	Collection Collection
	ID         string
	Version    int64
	Deleted    bool
	Fields     bson.M
}

// Document is the stored form of the record, keyed by the primary id.
func (r Record) Document() bson.M {
	doc := bson.M{
		"_id":     r.ID,
		"version": r.Version,
		"deleted": r.Deleted,
	}
	for k, v := range r.Fields {
		doc[k] = v
	}
	return doc
}

// Tombstone marks a deleted primary row. It must carry a version above the row's last one.
func Tombstone(collection Collection, id uuid.UUID, version int64) Record {
	return Record{
		Collection: collection,
		ID:         id.String(),
		Version:    version,
		Deleted:    true,
	}
}

// mongo keeps milliseconds
func mirrorTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func optionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return mirrorTime(*t)
}

func optionalDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.DateOnly)
}

func optionalInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// BookingRecord is the single projection used by both the live sync and the rebuild.
func BookingRecord(b *entity.Booking) Record {
	return Record{
		Collection: CollectionBookings,
		ID:         b.ID.String(),
		Version:    b.Version,
		Fields: bson.M{
			"user_id":           b.UserID.String(),
			"booking_reference": b.Reference,
			"booking_type":      string(b.Target.Type),
			"target_id":         b.Target.ID.String(),
			"check_in_date":     optionalDate(b.CheckInDate),
			"check_out_date":    optionalDate(b.CheckOutDate),
			"number_of_guests":  optionalInt(b.NumberOfGuests),
			"number_of_rooms":   optionalInt(b.NumberOfRooms),
			"total_price":       b.TotalPrice.StringFixed(2),
			"discount":          b.Discount.StringFixed(2),
			"tax_amount":        b.TaxAmount.StringFixed(2),
			"final_amount":      b.FinalAmount.StringFixed(2),
			"status":            string(b.Status),
			"payment_status":    string(b.PaymentStatus),
			"created_at":        mirrorTime(b.CreatedAt),
			"updated_at":        mirrorTime(b.UpdatedAt),
			"confirmed_at":      optionalTime(b.ConfirmedAt),
			"cancelled_at":      optionalTime(b.CancelledAt),
			"completed_at":      optionalTime(b.CompletedAt),
		},
	}
}

// Catalog rows have no version column; updated_at orders their writes.
func catalogVersion(updatedAt time.Time) int64 {
	return updatedAt.UnixMicro()
}

// CatalogTombstone marks a deleted catalog row. Its version is deletedAt, moved past the row's
// last update when the clocks disagree.
func CatalogTombstone(collection Collection, id uuid.UUID, updatedAt, deletedAt time.Time) Record {
	version := catalogVersion(deletedAt)
	if last := catalogVersion(updatedAt); version <= last {
		version = last + 1
	}
	return Tombstone(collection, id, version)
}

func DestinationRecord(d *entity.Destination) Record {
	return Record{
		Collection: CollectionDestinations,
		ID:         d.ID.String(),
		Version:    catalogVersion(d.UpdatedAt),
		Fields: bson.M{
			"name":               d.Name,
			"description":        d.Description,
			"city":               d.City,
			"state":              d.State,
			"country":            d.Country,
			"best_time_to_visit": d.BestTimeToVisit,
			"attractions":        append([]string{}, d.Attractions...),
			"average_cost":       d.AverageCost.StringFixed(2),
			"rating":             d.Rating,
			"created_at":         mirrorTime(d.CreatedAt),
			"updated_at":         mirrorTime(d.UpdatedAt),
		},
	}
}

func HotelRecord(h *entity.Hotel) Record {
	var destinationID any
	if h.DestinationID != nil {
		destinationID = h.DestinationID.String()
	}

	return Record{
		Collection: CollectionHotels,
		ID:         h.ID.String(),
		Version:    catalogVersion(h.UpdatedAt),
		Fields: bson.M{
			"name":            h.Name,
			"location":        h.Location,
			"destination_id":  destinationID,
			"description":     h.Description,
			"price_per_night": h.PricePerNight.StringFixed(2),
			"rating":          h.Rating,
			"amenities":       append([]string{}, h.Amenities...),
			"available_rooms": h.AvailableRooms,
			"total_rooms":     h.TotalRooms,
			"created_at":      mirrorTime(h.CreatedAt),
			"updated_at":      mirrorTime(h.UpdatedAt),
		},
	}
}

func CabRecord(c *entity.Cab) Record {
	return Record{
		Collection: CollectionCabs,
		ID:         c.ID.String(),
		Version:    catalogVersion(c.UpdatedAt),
		Fields: bson.M{
			"company_name":   c.CompanyName,
			"vehicle_type":   string(c.VehicleType),
			"price_per_km":   c.PricePerKm.StringFixed(2),
			"price_per_hour": c.PricePerHour.StringFixed(2),
			"capacity":       c.Capacity,
			"rating":         c.Rating,
			"available_cars": c.AvailableCars,
			"created_at":     mirrorTime(c.CreatedAt),
			"updated_at":     mirrorTime(c.UpdatedAt),
		},
	}
}
