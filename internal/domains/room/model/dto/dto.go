package dto

import (
	"pms/internal/domains/room/model"
	"pms/shared"
	gDto "pms/shared/dto"
	gModel "pms/shared/model"
	"pms/shared/timezone"

	"github.com/google/uuid"
)

type CreateRoomRequest struct {
	Number       string  `json:"number"        validate:"required,max=20"`
	Type         string  `json:"type"          validate:"required,oneof=single double deluxe suite"`
	Status       string  `json:"status"        validate:"omitempty,oneof=clean dirty inspected occupied maintenance out-of-order"`
	MaxOccupancy int     `json:"max_occupancy" validate:"required,min=1,max=20"`
	Floor        int     `json:"floor"         validate:"omitempty,min=0"`
	Rate         float64 `json:"rate"          validate:"omitempty,min=0"`
}

func (c *CreateRoomRequest) ToModel(user string) model.Room {
	status := model.StatusClean
	if c.Status != "" {
		status = c.Status
	}

	return model.Room{
		ID:           uuid.NewString(),
		Number:       c.Number,
		Type:         c.Type,
		Status:       status,
		MaxOccupancy: c.MaxOccupancy,
		Floor:        c.Floor,
		Rate:         c.Rate,
		Metadata:     gModel.NewMetadata(user, timezone.Now()),
	}
}

type UpdateRoomRequest struct {
	Number       string   `db:"number"        json:"number"        validate:"omitempty,max=20"`
	Type         string   `db:"type"          json:"type"          validate:"omitempty,oneof=single double deluxe suite"`
	MaxOccupancy *int     `db:"max_occupancy" json:"max_occupancy" validate:"omitempty,min=1,max=20"`
	Floor        *int     `db:"floor"         json:"floor"         validate:"omitempty,min=0"`
	Rate         *float64 `db:"rate"          json:"rate"          validate:"omitempty,min=0"`
}

type UpdateRoomStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=clean dirty inspected occupied maintenance out-of-order"`
}

type RoomResponse struct {
	ID           string  `json:"id"`
	Number       string  `json:"number"`
	Type         string  `json:"type"`
	Status       string  `json:"status"`
	MaxOccupancy int     `json:"max_occupancy"`
	Floor        int     `json:"floor"`
	Rate         float64 `json:"rate"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Number = model.Number
	r.Type = model.Type
	r.Status = model.Status
	r.MaxOccupancy = model.MaxOccupancy
	r.Floor = model.Floor
	r.Rate = model.Rate
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
