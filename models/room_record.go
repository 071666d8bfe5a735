package models

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

// RoomRecord is the rooms table row used by the MySQL store.
type RoomRecord struct {
	RoomNo      string         `gorm:"column:room_no;primaryKey;type:varchar(32)"`
	Building    string         `gorm:"column:building;type:varchar(8);index"`
	Capacity    int            `gorm:"column:capacity"`
	BookedHours datatypes.JSON `gorm:"column:booked_hours"`
}

func (RoomRecord) TableName() string {
	return "rooms"
}

// NewRoomRecord converts a room into its table row.
func NewRoomRecord(r Room) (RoomRecord, error) {
	hours := r.BookedHours
	if hours == nil {
		hours = []int{}
	}
	raw, err := json.Marshal(hours)
	if err != nil {
		return RoomRecord{}, err
	}
	return RoomRecord{
		RoomNo:      r.RoomNo,
		Building:    r.Building,
		Capacity:    r.Capacity,
		BookedHours: datatypes.JSON(raw),
	}, nil
}

// ToRoom converts a table row back into a room. An empty or NULL column means no bookings.
func (rec RoomRecord) ToRoom() (Room, error) {
	room := Room{
		RoomNo:   NormalizeRoomID(rec.RoomNo),
		Building: strings.ToUpper(strings.TrimSpace(rec.Building)),
		Capacity: rec.Capacity,
	}
	var hours []int
	if len(rec.BookedHours) > 0 && string(rec.BookedHours) != "null" {
		if err := json.Unmarshal(rec.BookedHours, &hours); err != nil {
			return Room{}, err
		}
	}
	if room.Capacity < 0 {
		room.Capacity = 0
	}
	room.SetBookedHours(hours)
	return room, nil
}
