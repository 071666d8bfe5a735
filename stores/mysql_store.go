package stores

import (
	"context"
	"fmt"

	"classroom-booking/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MySQLStore keeps the registry in the rooms table.
type MySQLStore struct {
	DB     *gorm.DB
	logger *zap.Logger
}

func NewMySQLStore(db *gorm.DB, logger *zap.Logger) *MySQLStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MySQLStore{DB: db, logger: logger}
}

func (s *MySQLStore) Describe() string {
	return "mysql table " + models.RoomRecord{}.TableName()
}

// Load returns every room; rows whose booked_hours column cannot be decoded are skipped.
func (s *MySQLStore) Load(ctx context.Context) ([]models.Room, error) {
	var records []models.RoomRecord
	if err := s.DB.WithContext(ctx).Order("room_no").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}

	rooms := make([]models.Room, 0, len(records))
	for _, rec := range records {
		room, err := rec.ToRoom()
		if err != nil {
			s.logger.Warn("skipped malformed room row", zap.String("room_no", rec.RoomNo), zap.Error(err))
			continue
		}
		if room.RoomNo == "" {
			continue
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// Save replaces the table content with rooms in a single transaction.
func (s *MySQLStore) Save(ctx context.Context, rooms []models.Room) error {
	records := make([]models.RoomRecord, 0, len(rooms))
	for _, r := range rooms {
		rec, err := models.NewRoomRecord(r)
		if err != nil {
			return fmt.Errorf("encode room %s: %w", r.RoomNo, err)
		}
		records = append(records, rec)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.RoomRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, 100).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save rooms: %w", err)
	}
	s.logger.Debug("rooms saved", zap.Int("count", len(records)))
	return nil
}
