package stores

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"classroom-booking/models"
	"classroom-booking/utils"
)

// Header is the first row of the bookings file.
var Header = []string{"room_no", "building", "capacity", "booked_hours"}

// SkippedRow describes a data row DecodeRooms could not use.
type SkippedRow struct {
	Line   int
	Reason string
}

// DecodeRooms reads the bookings file format. Malformed rows are skipped and
// reported rather than failing the whole read; only I/O errors are returned.
// When an identifier repeats, the later row wins.
func DecodeRooms(r io.Reader) ([]models.Room, []SkippedRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		order   []string
		byID    = map[string]models.Room{}
		skipped []SkippedRow
		header  bool
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				skipped = append(skipped, SkippedRow{Line: pe.Line, Reason: pe.Err.Error()})
				continue
			}
			return nil, skipped, err
		}
		line, _ := reader.FieldPos(0)

		if isBlankRow(row) {
			continue
		}
		if !header && strings.EqualFold(strings.TrimSpace(row[0]), Header[0]) {
			header = true
			continue
		}

		room, err := decodeRow(row)
		if err != nil {
			skipped = append(skipped, SkippedRow{Line: line, Reason: err.Error()})
			continue
		}
		if _, seen := byID[room.RoomNo]; !seen {
			order = append(order, room.RoomNo)
		}
		byID[room.RoomNo] = room
	}

	rooms := make([]models.Room, 0, len(order))
	for _, id := range order {
		rooms = append(rooms, byID[id])
	}
	return rooms, skipped, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func decodeRow(row []string) (models.Room, error) {
	if len(row) < 2 {
		return models.Room{}, fmt.Errorf("expected at least 2 fields, got %d", len(row))
	}
	room := models.Room{
		RoomNo:   models.NormalizeRoomID(row[0]),
		Building: strings.ToUpper(strings.TrimSpace(row[1])),
	}
	if room.RoomNo == "" {
		return models.Room{}, errors.New("empty room_no")
	}
	if len(row) > 2 {
		if n, err := strconv.Atoi(strings.TrimSpace(row[2])); err == nil && n > 0 {
			room.Capacity = n
		}
	}

	var hours []int
	if len(row) > 3 {
		for _, part := range strings.Split(strings.TrimSpace(row[3]), ";") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			h, err := strconv.Atoi(part)
			if err != nil {
				return models.Room{}, fmt.Errorf("bad booked hour %q", part)
			}
			hours = append(hours, h)
		}
	}
	room.SetBookedHours(hours)
	return room, nil
}

// EncodeRooms writes the header then one row per room in identifier order.
func EncodeRooms(w io.Writer, rooms []models.Room) error {
	sorted := make([]models.Room, len(rooms))
	copy(sorted, rooms)
	models.SortRooms(sorted)

	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, r := range sorted {
		record := []string{
			r.RoomNo,
			r.Building,
			strconv.Itoa(r.Capacity),
			utils.FormatHours(r.BookedHours, ";"),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
