package dto

import (
	"fmt"
	"strings"

	bookingDto "pms/internal/domains/booking/model/dto"
	"pms/internal/domains/groupbooking/allocation"
	"pms/internal/domains/groupbooking/model"
	"pms/shared"
	"pms/shared/constant"
	gDto "pms/shared/dto"
	gModel "pms/shared/model"
	"pms/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const blockCodeLength = 6

type CreateGroupBookingRequest struct {
	GroupName       string  `json:"group_name"        validate:"required,max=150"`
	GroupType       string  `json:"group_type"        validate:"omitempty,oneof=corporate wedding conference tour other"`
	ContactPerson   string  `json:"contact_person"    validate:"required,max=100"`
	ContactEmail    string  `json:"contact_email"     validate:"omitempty,email,max=100"`
	ContactPhone    string  `json:"contact_phone"     validate:"omitempty,max=30"`
	GroupLeaderName string  `json:"group_leader_name" validate:"omitempty,max=100"`
	TotalGuests     int     `json:"total_guests"      validate:"required,min=1"`
	CheckIn         string  `json:"check_in"          validate:"required,day"`
	CheckOut        string  `json:"check_out"         validate:"required,day"`
	TotalAmount     float64 `json:"total_amount"      validate:"omitempty,min=0"`
	Currency        string  `json:"currency"          validate:"omitempty,len=3"`
	DepositAmount   float64 `json:"deposit_amount"    validate:"omitempty,min=0"`
	DepositPaid     bool    `json:"deposit_paid"`
	BlockCode       string  `json:"block_code"        validate:"omitempty,max=30"`
	MealPlan        string  `json:"meal_plan"         validate:"omitempty,oneof=room-only breakfast half-board full-board all-inclusive"`
	Notes           string  `json:"notes"             validate:"omitempty,max=2000"`
}

// NewBlockCode derives a short human readable block code.
func NewBlockCode(prefix string) string {
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:blockCodeLength]
	if prefix == constant.Empty {
		return code
	}

	return fmt.Sprintf("%s-%s", strings.ToUpper(prefix), code)
}

func (c *CreateGroupBookingRequest) ToModel(user, blockCodePrefix string) model.GroupBooking {
	checkIn, _ := timezone.ParseDay(c.CheckIn)
	checkOut, _ := timezone.ParseDay(c.CheckOut)

	groupType := model.TypeOther
	if c.GroupType != constant.Empty {
		groupType = c.GroupType
	}

	blockCode := strings.ToUpper(c.BlockCode)
	if blockCode == constant.Empty {
		blockCode = NewBlockCode(blockCodePrefix)
	}

	return model.GroupBooking{
		ID:              uuid.NewString(),
		GroupName:       c.GroupName,
		GroupType:       groupType,
		ContactPerson:   c.ContactPerson,
		ContactEmail:    c.ContactEmail,
		ContactPhone:    c.ContactPhone,
		GroupLeaderName: c.GroupLeaderName,
		TotalGuests:     c.TotalGuests,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Status:          model.StatusInquiry,
		TotalAmount:     c.TotalAmount,
		Currency:        strings.ToUpper(c.Currency),
		DepositAmount:   c.DepositAmount,
		DepositPaid:     c.DepositPaid,
		BlockCode:       blockCode,
		RoomsBlocked:    pq.StringArray{},
		RoomsBooked:     pq.StringArray{},
		RoomAllocation:  model.Allocation{},
		MealPlan:        c.MealPlan,
		Notes:           c.Notes,
		Metadata:        gModel.NewMetadata(user, timezone.Now()),
	}
}

type UpdateGroupBookingRequest struct {
	GroupName       string   `db:"group_name"        json:"group_name"        validate:"omitempty,max=150"`
	GroupType       string   `db:"group_type"        json:"group_type"        validate:"omitempty,oneof=corporate wedding conference tour other"`
	ContactPerson   string   `db:"contact_person"    json:"contact_person"    validate:"omitempty,max=100"`
	ContactEmail    string   `db:"contact_email"     json:"contact_email"     validate:"omitempty,email,max=100"`
	ContactPhone    string   `db:"contact_phone"     json:"contact_phone"     validate:"omitempty,max=30"`
	GroupLeaderName string   `db:"group_leader_name" json:"group_leader_name" validate:"omitempty,max=100"`
	TotalGuests     *int     `db:"total_guests"      json:"total_guests"      validate:"omitempty,min=1"`
	CheckIn         string   `json:"check_in"        validate:"omitempty,day"`
	CheckOut        string   `json:"check_out"       validate:"omitempty,day"`
	TotalAmount     *float64 `db:"total_amount"      json:"total_amount"      validate:"omitempty,min=0"`
	Currency        string   `db:"currency"          json:"currency"          validate:"omitempty,len=3"`
	DepositAmount   *float64 `db:"deposit_amount"    json:"deposit_amount"    validate:"omitempty,min=0"`
	DepositPaid     *bool    `db:"deposit_paid"      json:"deposit_paid"`
	MealPlan        string   `db:"meal_plan"         json:"meal_plan"         validate:"omitempty,oneof=room-only breakfast half-board full-board all-inclusive"`
	Notes           string   `db:"notes"             json:"notes"             validate:"omitempty,max=2000"`
}

// Apply returns the group as it would look after the update, and whether the
// stay or the head count changed.
func (u *UpdateGroupBookingRequest) Apply(group model.GroupBooking) (model.GroupBooking, bool) {
	updated := group
	rescheduled := false

	setString(&updated.GroupName, u.GroupName)
	setString(&updated.GroupType, u.GroupType)
	setString(&updated.ContactPerson, u.ContactPerson)
	setString(&updated.ContactEmail, u.ContactEmail)
	setString(&updated.ContactPhone, u.ContactPhone)
	setString(&updated.GroupLeaderName, u.GroupLeaderName)
	setString(&updated.Currency, strings.ToUpper(u.Currency))
	setString(&updated.MealPlan, u.MealPlan)
	setString(&updated.Notes, u.Notes)

	if u.TotalAmount != nil {
		updated.TotalAmount = *u.TotalAmount
	}

	if u.DepositAmount != nil {
		updated.DepositAmount = *u.DepositAmount
	}

	if u.DepositPaid != nil {
		updated.DepositPaid = *u.DepositPaid
	}

	if u.TotalGuests != nil && *u.TotalGuests != group.TotalGuests {
		updated.TotalGuests = *u.TotalGuests
		rescheduled = true
	}

	if u.CheckIn != constant.Empty {
		checkIn, _ := timezone.ParseDay(u.CheckIn)
		if !checkIn.Equal(group.CheckIn) {
			updated.CheckIn = checkIn
			rescheduled = true
		}
	}

	if u.CheckOut != constant.Empty {
		checkOut, _ := timezone.ParseDay(u.CheckOut)
		if !checkOut.Equal(group.CheckOut) {
			updated.CheckOut = checkOut
			rescheduled = true
		}
	}

	return updated, rescheduled
}

func setString(dst *string, value string) {
	if value != constant.Empty {
		*dst = value
	}
}

// Fields lists the columns to write for the update.
func (u *UpdateGroupBookingRequest) Fields(updated model.GroupBooking, user string) map[string]any {
	fields := shared.TransformFields(*u, user)

	if currency, ok := fields["currency"].(string); ok {
		fields["currency"] = strings.ToUpper(currency)
	}

	if u.CheckIn != constant.Empty {
		fields[model.FieldCheckIn] = updated.CheckIn
	}

	if u.CheckOut != constant.Empty {
		fields[model.FieldCheckOut] = updated.CheckOut
	}

	return fields
}

type UpdateGroupBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=quoted cancelled"`
}

type AllocationEntryRequest struct {
	RoomID         string   `json:"room_id"         validate:"required"`
	AssignedGuests int      `json:"assigned_guests" validate:"required,min=1"`
	GuestNames     []string `json:"guest_names"     validate:"omitempty,dive,required,max=100"`
}

type UpdateAllocationRequest struct {
	Rooms []AllocationEntryRequest `json:"rooms" validate:"dive"`
}

type AssignGuestsRequest struct {
	GuestNames []string `json:"guest_names" validate:"dive,required,max=100"`
}

type RoomAllocationResponse struct {
	RoomID         string   `json:"room_id"`
	RoomNumber     string   `json:"room_number"`
	RoomType       string   `json:"room_type"`
	MaxOccupancy   int      `json:"max_occupancy"`
	AssignedGuests int      `json:"assigned_guests"`
	GuestNames     []string `json:"guest_names"`
}

func fromAllocation(entries model.Allocation) []RoomAllocationResponse {
	res := make([]RoomAllocationResponse, len(entries))
	for i, entry := range entries {
		names := entry.GuestNames
		if names == nil {
			names = []string{}
		}

		res[i] = RoomAllocationResponse{
			RoomID:         entry.RoomID,
			RoomNumber:     entry.RoomNumber,
			RoomType:       entry.RoomType,
			MaxOccupancy:   entry.MaxOccupancy,
			AssignedGuests: entry.AssignedGuests,
			GuestNames:     names,
		}
	}

	return res
}

type AllocationResponse struct {
	GroupBookingID string                   `json:"group_booking_id"`
	Rooms          []RoomAllocationResponse `json:"rooms"`
	Summary        allocation.Summary       `json:"summary"`
}

func (r *AllocationResponse) FromModel(group model.GroupBooking) {
	r.GroupBookingID = group.ID
	r.Rooms = fromAllocation(group.RoomAllocation)
	r.Summary = allocation.Summarize(group.RoomAllocation, group.TotalGuests)
}

type GroupBookingResponse struct {
	ID              string                   `json:"id"`
	GroupName       string                   `json:"group_name"`
	GroupType       string                   `json:"group_type"`
	ContactPerson   string                   `json:"contact_person"`
	ContactEmail    string                   `json:"contact_email"`
	ContactPhone    string                   `json:"contact_phone"`
	GroupLeaderName string                   `json:"group_leader_name"`
	TotalGuests     int                      `json:"total_guests"`
	TotalRooms      int                      `json:"total_rooms"`
	CheckIn         string                   `json:"check_in"`
	CheckOut        string                   `json:"check_out"`
	Status          string                   `json:"status"`
	TotalAmount     float64                  `json:"total_amount"`
	Currency        string                   `json:"currency"`
	DepositAmount   float64                  `json:"deposit_amount"`
	DepositPaid     bool                     `json:"deposit_paid"`
	BlockCode       string                   `json:"block_code"`
	RoomsBlocked    []string                 `json:"rooms_blocked"`
	RoomsBooked     []string                 `json:"rooms_booked"`
	RoomAllocation  []RoomAllocationResponse `json:"room_allocation"`
	Summary         allocation.Summary       `json:"allocation_summary"`
	MealPlan        string                   `json:"meal_plan"`
	Notes           string                   `json:"notes"`
	RoomingListURL  string                   `json:"rooming_list_url"`
	gDto.Metadata
}

func (r *GroupBookingResponse) FromModel(model model.GroupBooking) {
	r.ID = model.ID
	r.GroupName = model.GroupName
	r.GroupType = model.GroupType
	r.ContactPerson = model.ContactPerson
	r.ContactEmail = model.ContactEmail
	r.ContactPhone = model.ContactPhone
	r.GroupLeaderName = model.GroupLeaderName
	r.TotalGuests = model.TotalGuests
	r.TotalRooms = model.TotalRooms
	r.CheckIn = model.CheckIn.Format(constant.DayFormat)
	r.CheckOut = model.CheckOut.Format(constant.DayFormat)
	r.Status = model.Status
	r.TotalAmount = model.TotalAmount
	r.Currency = model.Currency
	r.DepositAmount = model.DepositAmount
	r.DepositPaid = model.DepositPaid
	r.BlockCode = model.BlockCode
	r.RoomsBlocked = append([]string{}, model.RoomsBlocked...)
	r.RoomsBooked = append([]string{}, model.RoomsBooked...)
	r.RoomAllocation = fromAllocation(model.RoomAllocation)
	r.Summary = allocation.Summarize(model.RoomAllocation, model.TotalGuests)
	r.MealPlan = model.MealPlan
	r.Notes = model.Notes
	r.RoomingListURL = model.RoomingListURL
	r.Metadata.FromModel(model.Metadata)
}

type GetGroupBookingsResponse struct {
	GroupBookings []GroupBookingResponse `json:"group_bookings"`
	TotalPage     int                    `json:"total_page"`
	TotalData     int                    `json:"total_data"`
}

func (r *GetGroupBookingsResponse) FromModels(models []model.GroupBooking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.GroupBookings = make([]GroupBookingResponse, len(models))
	for i, mod := range models {
		r.GroupBookings[i].FromModel(mod)
	}
}

type ConfirmationResponse struct {
	GroupBookingID string                       `json:"group_booking_id"`
	Status         string                       `json:"status"`
	Bookings       []bookingDto.BookingResponse `json:"bookings"`
}

type RoomingListResponse struct {
	GroupBookingID string `json:"group_booking_id"`
	URL            string `json:"url"`
}
