package model

import (
	"slices"
	"time"

	"pms/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID                 = "id"
	FieldRoomID             = "room_id"
	FieldGuestID            = "guest_id"
	FieldCheckIn            = "check_in"
	FieldCheckOut           = "check_out"
	FieldStatus             = "status"
	FieldPaymentStatus      = "payment_status"
	FieldConfirmationNumber = "confirmation_number"
	FieldGroupBookingID     = "group_booking_id"
	FieldCreatedBy          = "created_by"
)

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusCheckedIn  = "checked-in"
	StatusCheckedOut = "checked-out"
	StatusCancelled  = "cancelled"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

const (
	SourceDirect       = "direct"
	SourceGroupBooking = "group-booking"
)

var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn: {StatusCheckedOut},
}

// Booking occupies RoomID for the half-open stay [CheckIn, CheckOut).
type Booking struct {
	ID                 string    `db:"id"`
	RoomID             string    `db:"room_id"`
	GuestID            string    `db:"guest_id"`
	CheckIn            time.Time `db:"check_in"`
	CheckOut           time.Time `db:"check_out"`
	Status             string    `db:"status"`
	TotalAmount        float64   `db:"total_amount"`
	Currency           string    `db:"currency"`
	Adults             int       `db:"adults"`
	Children           int       `db:"children"`
	Source             string    `db:"source"`
	PaymentStatus      string    `db:"payment_status"`
	ConfirmationNumber string    `db:"confirmation_number"`
	GroupBookingID     *string   `db:"group_booking_id"`
	model.Metadata
}

// Blocking reports whether the booking still holds its room.
func (b Booking) Blocking() bool {
	return b.Status != StatusCancelled
}

// Overlaps reports whether the stay intersects [checkIn, checkOut). Back-to-back
// stays sharing a turnover day do not overlap.
func (b Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return !(!b.CheckOut.After(checkIn) || !b.CheckIn.Before(checkOut))
}

// CanTransition reports whether the booking may move to status.
func (b Booking) CanTransition(status string) bool {
	return slices.Contains(transitions[b.Status], status)
}
