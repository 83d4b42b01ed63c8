package entity

import (
	"github.com/google/uuid"
)

type BookingType string

const (
	BookingTypeHotel       BookingType = "hotel"
	BookingTypeCab         BookingType = "cab"
	BookingTypeDestination BookingType = "destination"
)

func (t BookingType) IsValid() bool {
	switch t {
	case BookingTypeHotel, BookingTypeCab, BookingTypeDestination:
		return true
	}
	return false
}

// TargetField is the request/column name carrying the id for a booking type.
func (t BookingType) TargetField() string {
	return string(t) + "_id"
}

// Target is the single catalog item a booking points at.
type Target struct {
	Type BookingType
	ID   uuid.UUID
}

// TargetFromRefs builds a Target from the three optional references of a request or row.
// Exactly one must be set and it must match bookingType; otherwise the field errors say why.
func TargetFromRefs(bookingType BookingType, hotelID, cabID, destinationID *uuid.UUID) (Target, map[string]string) {
	errs := make(map[string]string)
	if !bookingType.IsValid() {
		errs["booking_type"] = "Must be one of: hotel, cab, destination"
		return Target{}, errs
	}

	refs := map[BookingType]*uuid.UUID{
		BookingTypeHotel:       hotelID,
		BookingTypeCab:         cabID,
		BookingTypeDestination: destinationID,
	}

	for kind, ref := range refs {
		if kind != bookingType && ref != nil {
			errs[kind.TargetField()] = "Must be empty for " + string(bookingType) + " bookings"
		}
	}

	ref := refs[bookingType]
	if ref == nil || *ref == uuid.Nil {
		errs[bookingType.TargetField()] = "Required for " + string(bookingType) + " bookings"
	}

	if len(errs) > 0 {
		return Target{}, errs
	}
	return Target{Type: bookingType, ID: *ref}, nil
}

// Refs splits the target back into the three nullable references.
func (t Target) Refs() (hotelID, cabID, destinationID *uuid.UUID) {
	id := t.ID
	switch t.Type {
	case BookingTypeHotel:
		hotelID = &id
	case BookingTypeCab:
		cabID = &id
	case BookingTypeDestination:
		destinationID = &id
	}
	return
}

func (t Target) Validate() map[string]string {
	hotelID, cabID, destinationID := t.Refs()
	_, errs := TargetFromRefs(t.Type, hotelID, cabID, destinationID)
	return errs
}
