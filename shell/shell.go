// Package shell is the interactive menu of the booking tool.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"classroom-booking/models"
	"classroom-booking/services"
	"classroom-booking/utils"

	"go.uber.org/zap"
)

const (
	choiceCreate = iota + 1
	choiceShowAll
	choiceBook
	choiceUnbook
	choiceView
	choiceFind
	choiceExit
)

// Shell reads menu choices from in and writes prompts and results to out.
type Shell struct {
	svc      *services.RoomService
	in       *bufio.Scanner
	lines    chan string
	out      io.Writer
	dataFile string
	logger   *zap.Logger
}

func New(svc *services.RoomService, in io.Reader, out io.Writer, dataFile string, logger *zap.Logger) *Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shell{
		svc:      svc,
		in:       bufio.NewScanner(in),
		out:      out,
		dataFile: dataFile,
		logger:   logger,
	}
}

// Run loops until the user exits, input ends or ctx is cancelled; every path saves the registry.
func (s *Shell) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	s.startReader(done)

	s.printf("\n***** Classroom Booking System *****\n")
	s.printf("\nCommand-line application\n")
	s.printf("\nData file: %s\n", s.dataFile)
	s.printf("\nPress Enter to continue ")
	if _, ok := s.readLine(ctx); !ok {
		return s.exit(ctx)
	}

	for {
		if ctx.Err() != nil {
			return s.exit(ctx)
		}
		s.printMenu()

		s.printf("\nEnter Choice: ")
		line, ok := s.readLine(ctx)
		if !ok {
			return s.exit(ctx)
		}
		choice, err := strconv.Atoi(line)
		if err != nil {
			s.printf("\nEnter a valid numeric choice.\n")
			continue
		}
		if choice < choiceCreate || choice > choiceExit {
			s.printf("\nEnter Valid Input\n")
			continue
		}
		if choice == choiceExit {
			return s.exit(ctx)
		}

		if err := s.dispatch(ctx, choice); err != nil {
			s.report(err)
		}
	}
}

func (s *Shell) printMenu() {
	s.printf("\nMAIN MENU\n\n")
	s.printf("01. Create New Room\n")
	s.printf("02. Show All Rooms\n")
	s.printf("03. Book a Room (single or multiple hours)\n")
	s.printf("04. Unbook a Room (single or multiple hours)\n")
	s.printf("05. View Room Bookings\n")
	s.printf("06. Find Rooms (filters)\n")
	s.printf("07. Exit\n")
}

func (s *Shell) dispatch(ctx context.Context, choice int) error {
	switch choice {
	case choiceCreate:
		return s.createRoom(ctx)
	case choiceShowAll:
		s.showAllRooms()
	case choiceBook:
		return s.changeHours(ctx, "book", s.svc.Book)
	case choiceUnbook:
		return s.changeHours(ctx, "unbook", s.svc.Unbook)
	case choiceView:
		return s.viewRoomBookings(ctx)
	case choiceFind:
		s.findRooms(ctx)
	}
	return nil
}

// report renders a failed command. Domain errors carry their own message.
func (s *Shell) report(err error) {
	switch {
	case errors.Is(err, services.ErrRoomAlreadyExists),
		errors.Is(err, services.ErrRoomNotFound),
		errors.Is(err, services.ErrTimeslotAlreadyBooked),
		errors.Is(err, services.ErrTimeslotNotBooked):
		s.printf("\nError: %s\n", err)
	default:
		s.logger.Error("command failed", zap.Error(err))
		s.printf("\nAn unexpected error occurred: %s\n", err)
	}
}

// exit saves even when ctx is already cancelled.
func (s *Shell) exit(ctx context.Context) error {
	if err := s.svc.Flush(context.WithoutCancel(ctx)); err != nil {
		s.printf("\nAn unexpected error occurred: %s\n", err)
		return err
	}
	s.printf("Data saved to: %s\n", s.dataFile)
	s.printf("\nData saved. Exiting.\n")
	return nil
}

func (s *Shell) createRoom(ctx context.Context) error {
	s.printf("\nEnter Building name %s: ", models.BuildingList())
	raw, ok := s.readLine(ctx)
	if !ok {
		return nil
	}
	building, valid := models.NormalizeBuilding(raw)
	if !valid {
		s.printf("Invalid building. Please choose from %s.\n", models.BuildingList())
		return nil
	}

	s.printf("\nEnter Room Number (e.g., 1227): ")
	number, ok := s.readLine(ctx)
	if !ok {
		return nil
	}
	if !services.ValidRoomNumber(number) {
		s.printf("Room number must be alphanumeric (no spaces or special characters).\n")
		return nil
	}

	// reject duplicates before asking for capacity
	if _, err := s.svc.Find(models.RoomID(building, number)); err == nil {
		return &services.RoomError{Kind: services.ErrRoomAlreadyExists, RoomNo: models.RoomID(building, number)}
	}

	s.printf("\nEnter Capacity (integer): ")
	rawCap, ok := s.readLine(ctx)
	if !ok {
		return nil
	}
	capacity, err := strconv.Atoi(rawCap)
	if err != nil {
		s.printf("Invalid capacity input. Setting to 0.\n")
		capacity = 0
	}

	room, coerced, err := s.svc.Create(ctx, building, number, capacity)
	if err != nil {
		return err
	}
	if coerced {
		s.printf("Capacity cannot be negative. Setting to 0.\n")
	}
	s.printf("\nNew room '%s' added successfully (Building: %s, Capacity: %d).\n", room.RoomNo, room.Building, room.Capacity)
	s.printf("Data saved to: %s\n", s.dataFile)
	return nil
}

func (s *Shell) showAllRooms() {
	s.printf("\nALL ROOMS\n\n")
	rooms := s.svc.ListAll()
	if len(rooms) == 0 {
		s.printf("No rooms available.\n")
		return
	}
	for _, r := range rooms {
		s.printf("%s : Building=%s, Capacity=%d, Booked Hours=%s\n", r.RoomNo, r.Building, r.Capacity, bookedOrNone(r.BookedHours, ","))
	}
}

type hoursOp func(ctx context.Context, id, spec string) (models.Room, []int, error)

func (s *Shell) changeHours(ctx context.Context, verb string, op hoursOp) error {
	s.printf("\nEnter Room ID to %s (e.g., FD1-1227): ", verb)
	id, ok := s.readLine(ctx)
	if !ok {
		return nil
	}
	if _, err := s.svc.Find(id); err != nil {
		return err
	}

	s.printf("\nEnter hour(s) to %s (0-23, comma separated or range like 8-10): ", verb)
	spec, ok := s.readLine(ctx)
	if !ok {
		return nil
	}

	room, hours, err := op(ctx, id, spec)
	if errors.Is(err, services.ErrNoValidHours) {
		s.printf("No valid hours entered.\n")
		return nil
	}
	if err != nil {
		return err
	}
	s.printf("\nRoom %s successfully %sed for hours: %s.\n", room.RoomNo, verb, utils.FormatHours(hours, ", "))
	s.printf("Data saved to: %s\n", s.dataFile)
	return nil
}

func (s *Shell) viewRoomBookings(ctx context.Context) error {
	s.printf("\nEnter Room ID to view bookings (e.g., FD1-1227): ")
	id, ok := s.readLine(ctx)
	if !ok {
		return nil
	}
	room, err := s.svc.Find(id)
	if err != nil {
		return err
	}

	s.printf("\nRoom: %s\n", room.RoomNo)
	s.printf("Building: %s\n", room.Building)
	s.printf("Capacity: %d\n", room.Capacity)
	s.printf("Booked Hours: %s\n", bookedOrNone(room.BookedHours, ", "))
	return nil
}

func (s *Shell) findRooms(ctx context.Context) {
	var filter services.RoomFilter

	s.printf("\nFilter by building? (leave blank to skip): ")
	raw, ok := s.readLine(ctx)
	if !ok {
		return
	}
	if raw != "" {
		if code, valid := models.NormalizeBuilding(raw); valid {
			filter.Building = code
		} else {
			s.printf("Invalid building. Valid options: %s\n", models.BuildingList())
		}
	}

	s.printf("\nFilter by minimum capacity? (leave blank to skip): ")
	raw, ok = s.readLine(ctx)
	if !ok {
		return
	}
	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filter.MinCapacity = &n
		} else {
			s.printf("Invalid capacity filter. Ignoring.\n")
		}
	}

	s.printf("\nFilter by free at hour? (0-23) - leave blank to skip: ")
	raw, ok = s.readLine(ctx)
	if !ok {
		return
	}
	if raw != "" {
		h, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			s.printf("Invalid hour filter. Ignoring.\n")
		case !utils.ValidHour(h):
			s.printf("Hour must be 0-23. Ignoring hour filter.\n")
		default:
			filter.FreeAtHour = &h
		}
	}

	results := s.svc.Query(filter)
	s.printf("\nFOUND ROOMS\n\n")
	if len(results) == 0 {
		s.printf("No rooms match the given criteria.\n")
		return
	}
	for _, r := range results {
		s.printf("%s | Building: %s | Capacity: %d | Booked Hours: %s\n", r.RoomNo, r.Building, r.Capacity, bookedOrNone(r.BookedHours, ","))
	}
}

func bookedOrNone(hours []int, sep string) string {
	if len(hours) == 0 {
		return "None"
	}
	return utils.FormatHours(hours, sep)
}

// startReader moves the blocking Scan off the command loop so readLine can give up on cancel.
func (s *Shell) startReader(done <-chan struct{}) {
	s.lines = make(chan string)
	go func() {
		defer close(s.lines)
		for s.in.Scan() {
			select {
			case s.lines <- strings.TrimSpace(s.in.Text()):
			case <-done:
				return
			}
		}
	}()
}

// readLine returns false at end of input or once ctx is done.
func (s *Shell) readLine(ctx context.Context) (string, bool) {
	select {
	case line, ok := <-s.lines:
		if ctx.Err() != nil {
			return "", false
		}
		return line, ok
	case <-ctx.Done():
		return "", false
	}
}

func (s *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}
