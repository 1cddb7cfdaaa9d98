// Package roominglist renders the rooming list of a group booking as an XLSX
// workbook for the front desk.
package roominglist

import (
	"bytes"
	"fmt"
	"strings"

	"pms/internal/domains/groupbooking/model"
	"pms/shared/constant"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName     = "Rooming List"
	ContentType   = constant.ContentTypeXLSX
	fileExtension = ".xlsx"
	headerRow     = 4
	summaryRows   = 3
)

var headers = []string{"#", "Room", "Type", "Capacity", "Guests", "Guest names", "Confirmation"}

// FileName is the object name a group's rooming list is stored under.
func FileName(group model.GroupBooking) string {
	code := group.BlockCode
	if code == constant.Empty {
		code = group.ID
	}

	return fmt.Sprintf("%s-rooming-list%s", strings.ToLower(code), fileExtension)
}

// Build writes one row per allocated room, in allocation order, below a short
// group summary.
func Build(group model.GroupBooking) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	summary := [summaryRows][2]any{
		{"Group", group.GroupName},
		{"Block code", group.BlockCode},
		{"Stay", fmt.Sprintf("%s to %s", group.CheckIn.Format(constant.DayFormat), group.CheckOut.Format(constant.DayFormat))},
	}

	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetName, cell, &[]any{row[0], row[1]}); err != nil {
			return nil, fmt.Errorf("failed to write summary: %w", err)
		}
	}

	headerCell, _ := excelize.CoordinatesToCellName(1, headerRow)
	if err := f.SetSheetRow(SheetName, headerCell, &headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		lastCell, _ := excelize.CoordinatesToCellName(len(headers), headerRow)
		_ = f.SetCellStyle(SheetName, headerCell, lastCell, style)
	}

	for i, entry := range group.RoomAllocation {
		cell, _ := excelize.CoordinatesToCellName(1, headerRow+i+1)

		row := []any{
			i + 1,
			entry.RoomNumber,
			entry.RoomType,
			entry.MaxOccupancy,
			entry.AssignedGuests,
			strings.Join(entry.GuestNames, ", "),
			fmt.Sprintf("%s-%s", group.BlockCode, entry.RoomNumber),
		}

		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write room %s: %w", entry.RoomNumber, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 14)
	_ = f.SetColWidth(SheetName, "B", "E", 12)
	_ = f.SetColWidth(SheetName, "F", "F", 40)
	_ = f.SetColWidth(SheetName, "G", "G", 24)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	return buf.Bytes(), nil
}
