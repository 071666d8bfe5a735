package models

import (
	"sort"
	"strings"
)

// Bookable hours of the repeating day.
const (
	FirstHour = 0
	LastHour  = 23
)

// Room is one bookable room. BookedHours is kept sorted ascending with no duplicates.
type Room struct {
	RoomNo      string `json:"roomNo"`
	Building    string `json:"building"`
	Capacity    int    `json:"capacity"`
	BookedHours []int  `json:"bookedHours"`
}

// RoomID builds the canonical identifier for a building and room number.
func RoomID(building, number string) string {
	return strings.ToUpper(strings.TrimSpace(building) + "-" + strings.TrimSpace(number))
}

// NormalizeRoomID makes a user-typed identifier comparable with stored ones.
func NormalizeRoomID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// IsBooked reports whether hour is reserved.
func (r Room) IsBooked(hour int) bool {
	i := sort.SearchInts(r.BookedHours, hour)
	return i < len(r.BookedHours) && r.BookedHours[i] == hour
}

// Clone returns a copy that shares no memory with r.
func (r Room) Clone() Room {
	out := r
	out.BookedHours = append([]int{}, r.BookedHours...)
	return out
}

// SetBookedHours replaces the booked hours with the sorted, deduplicated set of hours in 0-23.
func (r *Room) SetBookedHours(hours []int) {
	seen := make(map[int]bool, len(hours))
	out := make([]int, 0, len(hours))
	for _, h := range hours {
		if h < FirstHour || h > LastHour || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	sort.Ints(out)
	r.BookedHours = out
}

// SortRooms orders rooms by identifier ascending.
func SortRooms(rooms []Room) {
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].RoomNo < rooms[j].RoomNo })
}
