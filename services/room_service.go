package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"classroom-booking/models"
	"classroom-booking/utils"

	"go.uber.org/zap"
)

// Store persists the whole registry. Load on missing storage returns no rooms and no error.
type Store interface {
	Load(ctx context.Context) ([]models.Room, error)
	Save(ctx context.Context, rooms []models.Room) error
}

// RoomFilter narrows Query. Zero values impose no constraint.
type RoomFilter struct {
	Building    string
	MinCapacity *int
	FreeAtHour  *int
}

// RoomService owns the in-memory room registry and writes it to the store after every mutation.
type RoomService struct {
	mu     sync.Mutex
	rooms  map[string]*models.Room
	store  Store
	logger *zap.Logger
}

func NewRoomService(store Store, logger *zap.Logger) *RoomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{
		rooms:  map[string]*models.Room{},
		store:  store,
		logger: logger,
	}
}

// Bootstrap replaces the registry with what the store holds.
func (s *RoomService) Bootstrap(ctx context.Context) error {
	rooms, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rooms: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms = make(map[string]*models.Room, len(rooms))
	for _, r := range rooms {
		room := r.Clone()
		room.RoomNo = models.NormalizeRoomID(room.RoomNo)
		room.SetBookedHours(room.BookedHours)
		s.rooms[room.RoomNo] = &room
	}
	s.logger.Info("bootstrapped rooms", zap.Int("count", len(s.rooms)))
	return nil
}

// ValidRoomNumber reports whether number is non-empty and made of letters and digits only.
func ValidRoomNumber(number string) bool {
	if number == "" {
		return false
	}
	for _, r := range number {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Create adds an unbooked room. A negative capacity is stored as 0 and reported through coerced.
func (s *RoomService) Create(ctx context.Context, building, number string, capacity int) (room models.Room, coerced bool, err error) {
	code, ok := models.NormalizeBuilding(building)
	if !ok {
		return models.Room{}, false, fmt.Errorf("%w %q: choose from %s", ErrInvalidBuilding, code, models.BuildingList())
	}
	number = strings.TrimSpace(number)
	if !ValidRoomNumber(number) {
		return models.Room{}, false, fmt.Errorf("%w %q: must be alphanumeric (no spaces or special characters)", ErrInvalidRoomNumber, number)
	}
	if capacity < 0 {
		s.logger.Warn("negative capacity coerced to 0", zap.String("building", code), zap.String("number", number), zap.Int("capacity", capacity))
		capacity = 0
		coerced = true
	}

	id := models.RoomID(code, number)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[id]; exists {
		return models.Room{}, false, &RoomError{Kind: ErrRoomAlreadyExists, RoomNo: id}
	}

	created := &models.Room{RoomNo: id, Building: code, Capacity: capacity, BookedHours: []int{}}
	s.rooms[id] = created
	if err := s.saveLocked(ctx); err != nil {
		delete(s.rooms, id)
		return models.Room{}, false, err
	}

	s.logger.Info("room created", zap.String("room_no", id), zap.Int("capacity", capacity))
	return created.Clone(), coerced, nil
}

// Find looks a room up by identifier, ignoring case and surrounding spaces.
func (s *RoomService) Find(id string) (models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.findLocked(id)
	if err != nil {
		return models.Room{}, err
	}
	return room.Clone(), nil
}

// Book reserves every hour in spec or none of them.
// It returns the updated room and the hours that were added.
func (s *RoomService) Book(ctx context.Context, id, spec string) (models.Room, []int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.findLocked(id)
	if err != nil {
		return models.Room{}, nil, err
	}
	hours := utils.ParseHours(spec)
	if len(hours) == 0 {
		return room.Clone(), nil, ErrNoValidHours
	}

	for _, h := range hours {
		if room.IsBooked(h) {
			return room.Clone(), nil, &TimeslotError{Kind: ErrTimeslotAlreadyBooked, RoomNo: room.RoomNo, Hour: h}
		}
	}

	previous := room.BookedHours
	room.SetBookedHours(append(append([]int{}, previous...), hours...))
	if err := s.saveLocked(ctx); err != nil {
		room.BookedHours = previous
		return room.Clone(), nil, err
	}

	s.logger.Info("room booked", zap.String("room_no", room.RoomNo), zap.Ints("hours", hours))
	return room.Clone(), hours, nil
}

// Unbook releases every hour in spec or none of them.
func (s *RoomService) Unbook(ctx context.Context, id, spec string) (models.Room, []int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.findLocked(id)
	if err != nil {
		return models.Room{}, nil, err
	}
	hours := utils.ParseHours(spec)
	if len(hours) == 0 {
		return room.Clone(), nil, ErrNoValidHours
	}

	release := make(map[int]bool, len(hours))
	for _, h := range hours {
		if !room.IsBooked(h) {
			return room.Clone(), nil, &TimeslotError{Kind: ErrTimeslotNotBooked, RoomNo: room.RoomNo, Hour: h}
		}
		release[h] = true
	}

	previous := room.BookedHours
	kept := make([]int, 0, len(previous))
	for _, h := range previous {
		if !release[h] {
			kept = append(kept, h)
		}
	}
	room.BookedHours = kept
	if err := s.saveLocked(ctx); err != nil {
		room.BookedHours = previous
		return room.Clone(), nil, err
	}

	s.logger.Info("room unbooked", zap.String("room_no", room.RoomNo), zap.Ints("hours", hours))
	return room.Clone(), hours, nil
}

// Query returns the rooms matching every filter that is set, ordered by identifier.
func (s *RoomService) Query(f RoomFilter) []models.Room {
	building := strings.ToUpper(strings.TrimSpace(f.Building))

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		if building != "" && strings.ToUpper(r.Building) != building {
			continue
		}
		if f.MinCapacity != nil && r.Capacity < *f.MinCapacity {
			continue
		}
		if f.FreeAtHour != nil && r.IsBooked(*f.FreeAtHour) {
			continue
		}
		out = append(out, r.Clone())
	}
	models.SortRooms(out)
	return out
}

// ListAll returns every room ordered by identifier.
func (s *RoomService) ListAll() []models.Room {
	return s.Query(RoomFilter{})
}

// Flush writes the registry to the store regardless of whether anything changed.
func (s *RoomService) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *RoomService) findLocked(id string) (*models.Room, error) {
	key := models.NormalizeRoomID(id)
	room, ok := s.rooms[key]
	if !ok {
		return nil, &RoomError{Kind: ErrRoomNotFound, RoomNo: key}
	}
	return room, nil
}

func (s *RoomService) saveLocked(ctx context.Context) error {
	snapshot := make([]models.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		snapshot = append(snapshot, r.Clone())
	}
	models.SortRooms(snapshot)

	if err := s.store.Save(ctx, snapshot); err != nil {
		s.logger.Error("failed to save rooms", zap.Error(err))
		return fmt.Errorf("failed to save rooms: %w", err)
	}
	return nil
}
