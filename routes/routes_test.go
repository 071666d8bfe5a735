package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"classroom-booking/controllers"
	"classroom-booking/models"
	"classroom-booking/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type memoryStore struct {
	rooms   []models.Room
	saveErr error
}

func (m *memoryStore) Load(ctx context.Context) ([]models.Room, error) { return m.rooms, nil }

func (m *memoryStore) Save(ctx context.Context, rooms []models.Room) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.rooms = rooms
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func setupRouter(t *testing.T) (*gin.Engine, *memoryStore) {
	gin.SetMode(gin.TestMode)
	store := &memoryStore{}
	svc := services.NewRoomService(store, zap.NewNop())
	require.NoError(t, svc.Bootstrap(context.Background()))
	rc := controllers.NewRoomController(svc, zap.NewNop())
	return SetupRouter(rc, nil, zap.NewNop()), store
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestHealth(t *testing.T) {
	r, _ := setupRouter(t)
	w, _ := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRoomLifecycle(t *testing.T) {
	r, store := setupRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/rooms", gin.H{"building": "fd1", "number": "1227", "capacity": 30})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)

	w, env = do(t, r, http.MethodPost, "/api/rooms/fd1-1227/book", gin.H{"hours": "8-10"})
	require.Equal(t, http.StatusOK, w.Code)
	var booked struct {
		Room  models.Room `json:"room"`
		Hours []int       `json:"hours"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &booked))
	assert.Equal(t, []int{8, 9, 10}, booked.Hours)
	assert.Equal(t, []int{8, 9, 10}, store.rooms[0].BookedHours)

	w, env = do(t, r, http.MethodPost, "/api/rooms/FD1-1227/book", gin.H{"hours": "7,8"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Hour 8 already booked for room FD1-1227.", env.Error)

	w, _ = do(t, r, http.MethodPost, "/api/rooms/FD1-1227/unbook", gin.H{"hours": "9"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, r, http.MethodGet, "/api/rooms/FD1-1227", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var room models.Room
	require.NoError(t, json.Unmarshal(env.Data, &room))
	assert.Equal(t, []int{8, 10}, room.BookedHours)

	w, env = do(t, r, http.MethodPost, "/api/rooms/FD1-1227/unbook", gin.H{"hours": "9"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, env.Error, "not currently booked")
}

func TestCreateRoom_Errors(t *testing.T) {
	r, _ := setupRouter(t)

	w, _ := do(t, r, http.MethodPost, "/api/rooms", gin.H{"building": "FD1", "number": "1"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := do(t, r, http.MethodPost, "/api/rooms", gin.H{"building": "FD1", "number": "1"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)

	w, _ = do(t, r, http.MethodPost, "/api/rooms", gin.H{"building": "ABC", "number": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/rooms", gin.H{"building": "FD1", "number": "1 2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/rooms", gin.H{"building": "FD1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, r, http.MethodPost, "/api/rooms", gin.H{"building": "NAB", "number": "2", "capacity": -5})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Room            models.Room `json:"room"`
		CapacityCoerced bool        `json:"capacityCoerced"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.True(t, created.CapacityCoerced)
	assert.Equal(t, 0, created.Room.Capacity)
}

func TestCreateRoom_CapacityText(t *testing.T) {
	r, _ := setupRouter(t)

	type createdRoom struct {
		Room            models.Room `json:"room"`
		CapacityCoerced bool        `json:"capacityCoerced"`
		Message         string      `json:"message"`
	}

	w, env := do(t, r, http.MethodPost, "/api/rooms", gin.H{"building": "LTC", "number": "7", "capacity": "many"})
	require.Equal(t, http.StatusCreated, w.Code)
	var invalid createdRoom
	require.NoError(t, json.Unmarshal(env.Data, &invalid))
	assert.Equal(t, 0, invalid.Room.Capacity)
	assert.True(t, invalid.CapacityCoerced)
	assert.Equal(t, "Invalid capacity input. Setting to 0.", invalid.Message)

	w, env = do(t, r, http.MethodPost, "/api/rooms", gin.H{"building": "LTC", "number": "8", "capacity": " 40 "})
	require.Equal(t, http.StatusCreated, w.Code)
	var numeric createdRoom
	require.NoError(t, json.Unmarshal(env.Data, &numeric))
	assert.Equal(t, 40, numeric.Room.Capacity)
	assert.False(t, numeric.CapacityCoerced)
	assert.Empty(t, numeric.Message)
}

func TestRoomNotFound(t *testing.T) {
	r, _ := setupRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/rooms/FD9-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Room 'FD9-1' not found.", env.Error)

	w, _ = do(t, r, http.MethodPost, "/api/rooms/FD9-1/book", gin.H{"hours": "8"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBook_NoValidHours(t *testing.T) {
	r, _ := setupRouter(t)
	do(t, r, http.MethodPost, "/api/rooms", gin.H{"building": "LTC", "number": "5"})

	w, env := do(t, r, http.MethodPost, "/api/rooms/LTC-5/book", gin.H{"hours": "99"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "No valid hours entered.")
}

func TestSaveFailureIs500(t *testing.T) {
	r, store := setupRouter(t)
	store.saveErr = errors.New("disk full")

	w, env := do(t, r, http.MethodPost, "/api/rooms", gin.H{"building": "LTC", "number": "5"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "An unexpected error occurred.", env.Error)
}

func TestGetRooms_Filters(t *testing.T) {
	r, _ := setupRouter(t)
	do(t, r, http.MethodPost, "/api/rooms", gin.H{"building": "FD1", "number": "1227", "capacity": 30})
	do(t, r, http.MethodPost, "/api/rooms", gin.H{"building": "LTC", "number": "1", "capacity": 80})
	do(t, r, http.MethodPost, "/api/rooms/FD1-1227/book", gin.H{"hours": "8"})

	list := func(query string) []string {
		w, env := do(t, r, http.MethodGet, "/api/rooms"+query, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var rooms []models.Room
		require.NoError(t, json.Unmarshal(env.Data, &rooms))
		ids := []string{}
		for _, room := range rooms {
			ids = append(ids, room.RoomNo)
		}
		return ids
	}

	assert.Equal(t, []string{"FD1-1227", "LTC-1"}, list(""))
	assert.Equal(t, []string{"FD1-1227"}, list("?building=fd1"))
	assert.Equal(t, []string{"LTC-1"}, list("?min_capacity=50"))
	assert.Equal(t, []string{"LTC-1"}, list("?free_at=8"))
	assert.Equal(t, []string{}, list("?building=FD1&free_at=8"))

	w, _ := do(t, r, http.MethodGet, "/api/rooms?free_at=24", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, r, http.MethodGet, "/api/rooms?building=XX", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, r, http.MethodGet, "/api/rooms?min_capacity=lots", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportRooms(t *testing.T) {
	r, _ := setupRouter(t)
	do(t, r, http.MethodPost, "/api/rooms", gin.H{"building": "FD2", "number": "3", "capacity": 4})

	w, _ := do(t, r, http.MethodGet, "/api/rooms/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "rooms.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Rooms")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "FD2-3", rows[1][0])
}
