package utils

import (
	"bytes"
	"fmt"

	"classroom-booking/models"

	"github.com/xuri/excelize/v2"
)

const RoomsSheet = "Rooms"

// RoomsExportHeader is the first row of the rooms sheet.
var RoomsExportHeader = []string{"Room", "Building", "Capacity", "Booked Hours", "Free Hours"}

// GenerateRoomsExport renders rooms as an xlsx workbook with one row per room.
func GenerateRoomsExport(rooms []models.Room) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(RoomsSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	// indexes shift once Sheet1 is gone
	index, err := f.GetSheetIndex(RoomsSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range RoomsExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(RoomsSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(RoomsSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	widths := []float64{14, 10, 10, 40, 12}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(RoomsSheet, col, col, w); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	sorted := make([]models.Room, len(rooms))
	copy(sorted, rooms)
	models.SortRooms(sorted)

	for i, r := range sorted {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			r.RoomNo,
			r.Building,
			r.Capacity,
			FormatHours(r.BookedHours, ", "),
			LastHour + 1 - len(r.BookedHours),
		}
		if err := f.SetSheetRow(RoomsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row for %s: %w", r.RoomNo, err)
		}
	}

	if err := f.SetPanes(RoomsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
