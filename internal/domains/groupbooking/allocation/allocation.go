// Package allocation places the guests of a group booking into rooms and turns
// a finished allocation into per-room bookings.
//
// Every function here works on an in-memory snapshot and has no side effects.
// Loading the snapshot and persisting the outcome atomically is the job of the
// group booking service.
package allocation

import (
	"fmt"
	"math"
	"net/http"
	"slices"
	"time"

	bookingModel "pms/internal/domains/booking/model"
	"pms/internal/domains/groupbooking/model"
	roomModel "pms/internal/domains/room/model"
	"pms/shared/failure"
)

const DefaultMaxOccupancy = 2

var (
	ErrInvalidRequest    = &failure.Failure{Code: http.StatusBadRequest, Message: "invalid group booking request"}
	ErrNotAllocated      = &failure.Failure{Code: http.StatusUnprocessableEntity, Message: "group booking has no room allocation, allocate rooms first"}
	ErrAlreadyConfirmed  = &failure.Failure{Code: http.StatusConflict, Message: "group booking is already confirmed"}
	ErrInvalidTransition = &failure.Failure{Code: http.StatusConflict, Message: "group booking status transition is not allowed"}
	ErrRoomUnavailable   = &failure.Failure{Code: http.StatusConflict, Message: "allocated room is no longer available"}
	ErrOverAllocated     = &failure.Failure{Code: http.StatusBadRequest, Message: "room allocation is invalid"}
)

// Request is the part of a group booking the allocator needs.
type Request struct {
	TotalGuests int
	CheckIn     time.Time
	CheckOut    time.Time
}

func RequestFromGroup(group model.GroupBooking) Request {
	return Request{
		TotalGuests: group.TotalGuests,
		CheckIn:     group.CheckIn,
		CheckOut:    group.CheckOut,
	}
}

func (r Request) Validate() error {
	if r.TotalGuests <= 0 {
		return fmt.Errorf("%w: total guests must be greater than zero", ErrInvalidRequest)
	}

	if !r.CheckIn.Before(r.CheckOut) {
		return fmt.Errorf("%w: check-in must be before check-out", ErrInvalidRequest)
	}

	return nil
}

type Options struct {
	// DefaultMaxOccupancy replaces a missing or non-positive room capacity.
	DefaultMaxOccupancy int
}

// Capacity is the number of guests room can take.
func (o Options) Capacity(room roomModel.Room) int {
	if room.MaxOccupancy > 0 {
		return room.MaxOccupancy
	}

	if o.DefaultMaxOccupancy > 0 {
		return o.DefaultMaxOccupancy
	}

	return DefaultMaxOccupancy
}

// Overlaps reports whether the half-open stays [aIn, aOut) and [bIn, bOut)
// share at least one night.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return !(!aOut.After(bIn) || !aIn.Before(bOut))
}

// BusyRooms returns the rooms held by a non-cancelled booking overlapping the
// requested stay.
func BusyRooms(bookings []bookingModel.Booking, checkIn, checkOut time.Time) map[string]struct{} {
	busy := make(map[string]struct{})

	for _, booking := range bookings {
		if !booking.Blocking() {
			continue
		}

		if booking.Overlaps(checkIn, checkOut) {
			busy[booking.RoomID] = struct{}{}
		}
	}

	return busy
}

// IsAllocable reports whether room can take guests for the stay busy was
// computed for.
func IsAllocable(room roomModel.Room, busy map[string]struct{}) bool {
	if !room.Allocable() {
		return false
	}

	_, taken := busy[room.ID]

	return !taken
}

// Allocate assigns guests to rooms largest capacity first. Rooms of equal
// capacity keep their inventory order. When the candidates cannot hold every
// guest the partial allocation is returned without an error.
func Allocate(req Request, rooms []roomModel.Room, bookings []bookingModel.Booking, opts Options) (model.Allocation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	busy := BusyRooms(bookings, req.CheckIn, req.CheckOut)
	seen := make(map[string]struct{}, len(rooms))

	candidates := make([]roomModel.Room, 0, len(rooms))
	for _, room := range rooms {
		if _, dup := seen[room.ID]; dup {
			continue
		}

		seen[room.ID] = struct{}{}

		if IsAllocable(room, busy) {
			candidates = append(candidates, room)
		}
	}

	slices.SortStableFunc(candidates, func(a, b roomModel.Room) int {
		return opts.Capacity(b) - opts.Capacity(a)
	})

	entries := model.Allocation{}
	remaining := req.TotalGuests

	for _, room := range candidates {
		if remaining <= 0 {
			break
		}

		capacity := opts.Capacity(room)
		assigned := min(remaining, capacity)

		entries = append(entries, model.RoomAllocationEntry{
			RoomID:         room.ID,
			RoomNumber:     room.Number,
			RoomType:       room.Type,
			MaxOccupancy:   capacity,
			AssignedGuests: assigned,
			GuestNames:     []string{},
		})

		remaining -= assigned
	}

	return entries, nil
}

type Summary struct {
	TotalGuests    int  `json:"total_guests"`
	AssignedGuests int  `json:"assigned_guests"`
	Shortfall      int  `json:"shortfall"`
	TotalRooms     int  `json:"total_rooms"`
	Partial        bool `json:"partial"`
}

func Summarize(entries model.Allocation, totalGuests int) Summary {
	assigned := entries.AssignedGuests()
	shortfall := max(totalGuests-assigned, 0)

	return Summary{
		TotalGuests:    totalGuests,
		AssignedGuests: assigned,
		Shortfall:      shortfall,
		TotalRooms:     len(entries),
		Partial:        shortfall > 0,
	}
}

// Validate checks an allocation edited by hand. Room availability is checked
// separately against the live inventory.
func Validate(entries model.Allocation, totalGuests int) error {
	seen := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		if entry.RoomID == "" {
			return fmt.Errorf("%w: room id is required", ErrOverAllocated)
		}

		if _, dup := seen[entry.RoomID]; dup {
			return fmt.Errorf("%w: room %s is allocated more than once", ErrOverAllocated, entry.RoomID)
		}

		seen[entry.RoomID] = struct{}{}

		if entry.AssignedGuests < 1 || entry.AssignedGuests > entry.MaxOccupancy {
			return fmt.Errorf("%w: room %s must hold between 1 and %d guests", ErrOverAllocated, entry.RoomNumber, entry.MaxOccupancy)
		}

		if len(entry.GuestNames) > entry.AssignedGuests {
			return fmt.Errorf("%w: room %s has more names than assigned guests", ErrOverAllocated, entry.RoomNumber)
		}
	}

	if assigned := entries.AssignedGuests(); assigned > totalGuests {
		return fmt.Errorf("%w: %d guests assigned for a group of %d", ErrOverAllocated, assigned, totalGuests)
	}

	return nil
}

var transitions = map[string][]string{
	model.StatusInquiry: {model.StatusQuoted, model.StatusConfirmed, model.StatusCancelled},
	model.StatusQuoted:  {model.StatusConfirmed, model.StatusCancelled},
}

// Transition validates a status change. Confirmed and cancelled groups are final.
func Transition(from, to string) error {
	if from == model.StatusConfirmed && to == model.StatusConfirmed {
		return ErrAlreadyConfirmed
	}

	if !slices.Contains(transitions[from], to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}

	return nil
}

// SplitAmount divides total into n shares at cent precision, the precision
// booking amounts are stored at. Shares are equal and the last one absorbs
// the rounding remainder, so they always sum back to total.
func SplitAmount(total float64, n int) []float64 {
	if n <= 0 {
		return nil
	}

	cents := int64(math.Round(total * 100))
	share := cents / int64(n)

	amounts := make([]float64, n)
	for i := range amounts {
		amounts[i] = float64(share) / 100
	}

	amounts[n-1] = float64(cents-share*int64(n-1)) / 100

	return amounts
}

// Confirm synthesizes one confirmed booking per allocation entry, in order. The
// group total is split evenly across the rooms; see SplitAmount.
func Confirm(group model.GroupBooking) ([]bookingModel.Booking, error) {
	if err := Transition(group.Status, model.StatusConfirmed); err != nil {
		return nil, err
	}

	if len(group.RoomAllocation) == 0 {
		return nil, ErrNotAllocated
	}

	paymentStatus := bookingModel.PaymentStatusPending
	if group.DepositPaid {
		paymentStatus = bookingModel.PaymentStatusPartial
	}

	amounts := SplitAmount(group.TotalAmount, len(group.RoomAllocation))
	groupID := group.ID

	bookings := make([]bookingModel.Booking, len(group.RoomAllocation))
	for i, entry := range group.RoomAllocation {
		bookings[i] = bookingModel.Booking{
			ID:                 fmt.Sprintf("%s-room-%d", group.ID, i+1),
			RoomID:             entry.RoomID,
			GuestID:            group.Guest(),
			CheckIn:            group.CheckIn,
			CheckOut:           group.CheckOut,
			Status:             bookingModel.StatusConfirmed,
			TotalAmount:        amounts[i],
			Currency:           group.Currency,
			Adults:             entry.AssignedGuests,
			Children:           0,
			Source:             bookingModel.SourceGroupBooking,
			PaymentStatus:      paymentStatus,
			ConfirmationNumber: fmt.Sprintf("%s-%s", group.BlockCode, entry.RoomNumber),
			GroupBookingID:     &groupID,
		}
	}

	return bookings, nil
}
