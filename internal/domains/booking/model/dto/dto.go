package dto

import (
	"strings"
	"time"

	"pms/internal/domains/booking/model"
	"pms/shared"
	"pms/shared/constant"
	gDto "pms/shared/dto"
	gModel "pms/shared/model"
	"pms/shared/timezone"

	"github.com/google/uuid"
)

const confirmationPrefix = "BK-"

type CreateBookingRequest struct {
	RoomID        string  `json:"room_id"        validate:"required"`
	GuestID       string  `json:"guest_id"       validate:"required,max=100"`
	CheckIn       string  `json:"check_in"       validate:"required,day"`
	CheckOut      string  `json:"check_out"      validate:"required,day"`
	Status        string  `json:"status"         validate:"omitempty,oneof=pending confirmed"`
	TotalAmount   float64 `json:"total_amount"   validate:"omitempty,min=0"`
	Currency      string  `json:"currency"       validate:"omitempty,len=3"`
	Adults        int     `json:"adults"         validate:"required,min=1"`
	Children      int     `json:"children"       validate:"omitempty,min=0"`
	Source        string  `json:"source"         validate:"omitempty,max=50"`
	PaymentStatus string  `json:"payment_status" validate:"omitempty,oneof=pending partial paid"`
}

// Stay parses the requested dates. Callers validate the format first.
func (c *CreateBookingRequest) Stay() (checkIn, checkOut time.Time) {
	checkIn, _ = timezone.ParseDay(c.CheckIn)
	checkOut, _ = timezone.ParseDay(c.CheckOut)

	return checkIn, checkOut
}

func (c *CreateBookingRequest) ToModel(user string) model.Booking {
	checkIn, checkOut := c.Stay()

	status := model.StatusPending
	if c.Status != constant.Empty {
		status = c.Status
	}

	source := model.SourceDirect
	if c.Source != constant.Empty {
		source = c.Source
	}

	paymentStatus := model.PaymentStatusPending
	if c.PaymentStatus != constant.Empty {
		paymentStatus = c.PaymentStatus
	}

	id := uuid.NewString()

	return model.Booking{
		ID:                 id,
		RoomID:             c.RoomID,
		GuestID:            c.GuestID,
		CheckIn:            checkIn,
		CheckOut:           checkOut,
		Status:             status,
		TotalAmount:        c.TotalAmount,
		Currency:           strings.ToUpper(c.Currency),
		Adults:             c.Adults,
		Children:           c.Children,
		Source:             source,
		PaymentStatus:      paymentStatus,
		ConfirmationNumber: confirmationPrefix + strings.ToUpper(id[:8]),
		Metadata:           gModel.NewMetadata(user, timezone.Now()),
	}
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed checked-in checked-out cancelled"`
}

type BookingResponse struct {
	ID                 string  `json:"id"`
	RoomID             string  `json:"room_id"`
	GuestID            string  `json:"guest_id"`
	CheckIn            string  `json:"check_in"`
	CheckOut           string  `json:"check_out"`
	Status             string  `json:"status"`
	TotalAmount        float64 `json:"total_amount"`
	Currency           string  `json:"currency"`
	Adults             int     `json:"adults"`
	Children           int     `json:"children"`
	Source             string  `json:"source"`
	PaymentStatus      string  `json:"payment_status"`
	ConfirmationNumber string  `json:"confirmation_number"`
	GroupBookingID     *string `json:"group_booking_id,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.RoomID = model.RoomID
	r.GuestID = model.GuestID
	r.CheckIn = model.CheckIn.Format(constant.DayFormat)
	r.CheckOut = model.CheckOut.Format(constant.DayFormat)
	r.Status = model.Status
	r.TotalAmount = model.TotalAmount
	r.Currency = model.Currency
	r.Adults = model.Adults
	r.Children = model.Children
	r.Source = model.Source
	r.PaymentStatus = model.PaymentStatus
	r.ConfirmationNumber = model.ConfirmationNumber
	r.GroupBookingID = model.GroupBookingID
	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}
