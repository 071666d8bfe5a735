package stores

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"classroom-booking/models"

	"go.uber.org/zap"
)

// CSVStore keeps the registry in a single delimited file.
type CSVStore struct {
	Path   string
	logger *zap.Logger
}

func NewCSVStore(path string, logger *zap.Logger) *CSVStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVStore{Path: path, logger: logger}
}

func (s *CSVStore) Describe() string {
	if abs, err := filepath.Abs(s.Path); err == nil {
		return abs
	}
	return s.Path
}

// Load reads the file. A missing file is an empty registry, not an error.
func (s *CSVStore) Load(ctx context.Context) ([]models.Room, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("data file does not exist, starting with empty system", zap.String("path", s.Path))
		return []models.Room{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()

	rooms, skipped, err := DecodeRooms(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	for _, row := range skipped {
		s.logger.Warn("skipped malformed row", zap.String("path", s.Path), zap.Int("line", row.Line), zap.String("reason", row.Reason))
	}
	s.logger.Debug("loaded rooms", zap.String("path", s.Path), zap.Int("count", len(rooms)))
	return rooms, nil
}

// Save rewrites the whole file through a temp file and rename so a crash never leaves it half written.
func (s *CSVStore) Save(ctx context.Context, rooms []models.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := EncodeRooms(tmp, rooms); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("encode rooms: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", s.Path, err)
	}

	s.logger.Debug("data saved", zap.String("path", s.Describe()), zap.Int("rooms", len(rooms)))
	return nil
}
