package model

import (
	"slices"

	"pms/shared/model"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID           = "id"
	FieldNumber       = "number"
	FieldType         = "type"
	FieldStatus       = "status"
	FieldMaxOccupancy = "max_occupancy"
	FieldFloor        = "floor"
	FieldRate         = "rate"
)

const (
	TypeSingle = "single"
	TypeDouble = "double"
	TypeDeluxe = "deluxe"
	TypeSuite  = "suite"
)

// Housekeeping states keep a room allocable; operational states do not.
const (
	StatusClean       = "clean"
	StatusDirty       = "dirty"
	StatusInspected   = "inspected"
	StatusOccupied    = "occupied"
	StatusMaintenance = "maintenance"
	StatusOutOfOrder  = "out-of-order"
)

var unavailableStatuses = []string{StatusOccupied, StatusMaintenance, StatusOutOfOrder}

type Room struct {
	ID           string  `db:"id"`
	Number       string  `db:"number"`
	Type         string  `db:"type"`
	Status       string  `db:"status"`
	MaxOccupancy int     `db:"max_occupancy"`
	Floor        int     `db:"floor"`
	Rate         float64 `db:"rate"`
	model.Metadata
}

// Allocable reports whether the room may be handed out for a future stay.
func (r Room) Allocable() bool {
	return !slices.Contains(unavailableStatuses, r.Status)
}
