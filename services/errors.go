package services

import (
	"errors"
	"fmt"
)

var (
	ErrRoomAlreadyExists     = errors.New("room already exists")
	ErrRoomNotFound          = errors.New("room not found")
	ErrTimeslotAlreadyBooked = errors.New("timeslot already booked")
	ErrTimeslotNotBooked     = errors.New("timeslot not booked")

	ErrInvalidBuilding   = errors.New("invalid building")
	ErrInvalidRoomNumber = errors.New("invalid room number")
	// ErrNoValidHours means the hour spec parsed to nothing; callers treat it as a no-op.
	ErrNoValidHours = errors.New("no valid hours entered")
)

// RoomError names the room a lookup or create failed on.
type RoomError struct {
	Kind   error
	RoomNo string
}

func (e *RoomError) Error() string {
	switch e.Kind {
	case ErrRoomAlreadyExists:
		return fmt.Sprintf("Room '%s' already exists.", e.RoomNo)
	case ErrRoomNotFound:
		return fmt.Sprintf("Room '%s' not found.", e.RoomNo)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.RoomNo)
}

func (e *RoomError) Unwrap() error { return e.Kind }

// TimeslotError names the hour that made a book or unbook batch fail.
type TimeslotError struct {
	Kind   error
	RoomNo string
	Hour   int
}

func (e *TimeslotError) Error() string {
	switch e.Kind {
	case ErrTimeslotAlreadyBooked:
		return fmt.Sprintf("Hour %d already booked for room %s.", e.Hour, e.RoomNo)
	case ErrTimeslotNotBooked:
		return fmt.Sprintf("Hour %d is not currently booked for room %s.", e.Hour, e.RoomNo)
	}
	return fmt.Sprintf("%v: hour %d room %s", e.Kind, e.Hour, e.RoomNo)
}

func (e *TimeslotError) Unwrap() error { return e.Kind }
