package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pms/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "group_bookings"
	EntityName = "group_booking"

	FieldID             = "id"
	FieldGroupName      = "group_name"
	FieldGroupType      = "group_type"
	FieldTotalGuests    = "total_guests"
	FieldTotalRooms     = "total_rooms"
	FieldCheckIn        = "check_in"
	FieldCheckOut       = "check_out"
	FieldStatus         = "status"
	FieldBlockCode      = "block_code"
	FieldRoomsBlocked   = "rooms_blocked"
	FieldRoomsBooked    = "rooms_booked"
	FieldRoomAllocation = "room_allocation"
	FieldRoomingListURL = "rooming_list_url"
)

const (
	StatusInquiry   = "inquiry"
	StatusQuoted    = "quoted"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

const (
	TypeCorporate  = "corporate"
	TypeWedding    = "wedding"
	TypeConference = "conference"
	TypeTour       = "tour"
	TypeOther      = "other"
)

var errUnsupportedScan = errors.New("unsupported room allocation source")

// RoomAllocationEntry records how many guests of a group are placed in one room.
// MaxOccupancy is the room capacity at the time the entry was produced.
type RoomAllocationEntry struct {
	RoomID         string   `json:"room_id"`
	RoomNumber     string   `json:"room_number"`
	RoomType       string   `json:"room_type"`
	MaxOccupancy   int      `json:"max_occupancy"`
	AssignedGuests int      `json:"assigned_guests"`
	GuestNames     []string `json:"guest_names"`
}

// Allocation is the ordered room plan of a group, stored as a JSONB column.
type Allocation []RoomAllocationEntry

func (a Allocation) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}

	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to encode room allocation: %w", err)
	}

	return raw, nil
}

func (a *Allocation) Scan(src any) error {
	var raw []byte

	switch v := src.(type) {
	case nil:
		*a = Allocation{}

		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("%w: %T", errUnsupportedScan, src)
	}

	entries := Allocation{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("failed to decode room allocation: %w", err)
	}

	*a = entries

	return nil
}

// RoomIDs lists the allocated rooms in allocation order.
func (a Allocation) RoomIDs() []string {
	ids := make([]string, len(a))
	for i, entry := range a {
		ids[i] = entry.RoomID
	}

	return ids
}

// AssignedGuests sums the guests placed across all entries.
func (a Allocation) AssignedGuests() int {
	total := 0
	for _, entry := range a {
		total += entry.AssignedGuests
	}

	return total
}

type GroupBooking struct {
	ID              string         `db:"id"`
	GroupName       string         `db:"group_name"`
	GroupType       string         `db:"group_type"`
	ContactPerson   string         `db:"contact_person"`
	ContactEmail    string         `db:"contact_email"`
	ContactPhone    string         `db:"contact_phone"`
	GroupLeaderName string         `db:"group_leader_name"`
	TotalGuests     int            `db:"total_guests"`
	TotalRooms      int            `db:"total_rooms"`
	CheckIn         time.Time      `db:"check_in"`
	CheckOut        time.Time      `db:"check_out"`
	Status          string         `db:"status"`
	TotalAmount     float64        `db:"total_amount"`
	Currency        string         `db:"currency"`
	DepositAmount   float64        `db:"deposit_amount"`
	DepositPaid     bool           `db:"deposit_paid"`
	BlockCode       string         `db:"block_code"`
	RoomsBlocked    pq.StringArray `db:"rooms_blocked"`
	RoomsBooked     pq.StringArray `db:"rooms_booked"`
	RoomAllocation  Allocation     `db:"room_allocation"`
	MealPlan        string         `db:"meal_plan"`
	Notes           string         `db:"notes"`
	RoomingListURL  string         `db:"rooming_list_url"`
	model.Metadata
}

// Guest returns the name bookings of this group are registered under.
func (g GroupBooking) Guest() string {
	if g.GroupLeaderName != "" {
		return g.GroupLeaderName
	}

	return g.ContactPerson
}
