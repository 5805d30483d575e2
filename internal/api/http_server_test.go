package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fomeninja/internal/calendar"
	"fomeninja/internal/config"
	"fomeninja/internal/models"
	"fomeninja/internal/schedule"
	"fomeninja/internal/service"
	"fomeninja/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExporter struct {
	calls int
	err   error
}

func (f *fakeExporter) Reservations(reservations []models.Reservation, startDate, endDate string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("exports/reservas_%s_a_%s.xlsx", startDate, endDate), nil
}

func newTestServer(t *testing.T, cfg config.APIConfig, seed []models.Reservation) (*HTTPServer, *store.ReservationStore) {
	t.Helper()

	logger := zerolog.New(io.Discard)
	repo := store.New(seed)
	grid := schedule.NewGrid(11, 22, 20, nil)
	svc := service.NewReservationService(repo, grid, nil, nil, nil, &logger)
	projector := calendar.NewProjector(grid)

	srv := NewHTTPServer(cfg, repo, svc, projector, grid, &fakeExporter{}, &logger)
	srv.now = func() time.Time {
		return time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	}
	return srv, repo
}

func doJSON(t *testing.T, handler http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGetReservation(t *testing.T) {
	srv, _ := newTestServer(t, config.APIConfig{}, nil)
	handler := srv.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/reservations", map[string]any{
		"name":       "João Silva",
		"phone":      "(11) 98765-4321",
		"date":       "2025-06-20",
		"time":       "19:00",
		"party_size": 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, models.StatusPending, created.Status)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reservations/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "João Silva", got.Name)
}

func TestCreateReservationValidation(t *testing.T) {
	srv, repo := newTestServer(t, config.APIConfig{}, nil)
	handler := srv.Handler()

	t.Run("MissingPhone", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/reservations", map[string]any{
			"name":       "João Silva",
			"date":       "2025-06-20",
			"time":       "19:00",
			"party_size": 4,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "phone", body["field"])
		assert.Zero(t, repo.Len())
	})

	t.Run("UnknownSlot", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/reservations", map[string]any{
			"name":       "João Silva",
			"phone":      "(11) 98765-4321",
			"date":       "2025-06-20",
			"time":       "19:15",
			"party_size": 4,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "time", body["field"])
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", bytes.NewReader([]byte("{nope")))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListReservations(t *testing.T) {
	seed := []models.Reservation{
		{ID: 1, Name: "a", Phone: "x", Date: "2025-06-20", Time: "19:00", PartySize: 2, Status: models.StatusConfirmed},
		{ID: 2, Name: "b", Phone: "x", Date: "2025-06-21", Time: "20:00", PartySize: 4, Status: models.StatusPending},
	}
	srv, _ := newTestServer(t, config.APIConfig{}, seed)
	handler := srv.Handler()

	t.Run("All", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/v1/reservations", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Reservations []models.Reservation `json:"reservations"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Len(t, body.Reservations, 2)
	})

	t.Run("ByDate", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/v1/reservations?date=2025-06-20", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Reservations []models.Reservation `json:"reservations"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Reservations, 1)
		assert.Equal(t, int64(1), body.Reservations[0].ID)
	})

	t.Run("BadDate", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/v1/reservations?date=20-06-2025", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStatusTransitionEndpoint(t *testing.T) {
	seed := []models.Reservation{
		{ID: 1, Name: "a", Phone: "x", Date: "2025-06-20", Time: "19:00", PartySize: 2, Status: models.StatusPending},
	}
	srv, _ := newTestServer(t, config.APIConfig{}, seed)
	handler := srv.Handler()

	t.Run("Confirm", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/reservations/1/status", map[string]string{
			"status": models.StatusConfirmed,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var got models.Reservation
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, models.StatusConfirmed, got.Status)
	})

	t.Run("IllegalTransitionConflict", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/reservations/1/status", map[string]string{
			"status": models.StatusPending,
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("UnknownReservation", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/reservations/9999/status", map[string]string{
			"status": models.StatusConfirmed,
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("MissingStatus", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/reservations/1/status", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("BadID", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/v1/reservations/abc", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCalendarEndpoints(t *testing.T) {
	seed := []models.Reservation{
		{ID: 1, Name: "a", Phone: "x", Date: "2025-06-15", Time: "19:00", PartySize: 2, Status: models.StatusConfirmed},
	}
	srv, _ := newTestServer(t, config.APIConfig{}, seed)
	handler := srv.Handler()

	t.Run("Day", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/v1/calendar/day?anchor=2025-06-15", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var view calendar.DayView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.Equal(t, "2025-06-15", view.Date)
		assert.Len(t, view.Reservations, 1)
	})

	t.Run("WeekWithDelta", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/v1/calendar/week?anchor=2025-06-15&delta=1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var view calendar.WeekView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.Equal(t, "2025-06-22", view.Start)
		assert.Len(t, view.Days, 7)
	})

	t.Run("MonthDefaultsToToday", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/v1/calendar/month", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var view calendar.MonthView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.Equal(t, 2025, view.Year)
		assert.Equal(t, 6, view.Month)
		assert.Zero(t, len(view.Cells)%7)
	})

	t.Run("DeltaOutOfRange", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/v1/calendar/day?delta=2", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UnknownView", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/v1/calendar/year", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestOccupancyEndpoint(t *testing.T) {
	seed := []models.Reservation{
		{ID: 1, Name: "a", Phone: "x", Date: "2025-06-20", Time: "19:00", PartySize: 4, Status: models.StatusConfirmed},
		{ID: 2, Name: "b", Phone: "x", Date: "2025-06-20", Time: "19:00", PartySize: 16, Status: models.StatusPending},
		{ID: 3, Name: "c", Phone: "x", Date: "2025-06-20", Time: "19:00", PartySize: 8, Status: models.StatusCancelled},
	}
	srv, _ := newTestServer(t, config.APIConfig{}, seed)
	handler := srv.Handler()

	t.Run("Snapshot", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/v1/occupancy?date=2025-06-20&slot=19:00", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var snapshot models.Occupancy
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
		assert.Equal(t, 3, snapshot.ReservationCount)
		assert.Equal(t, 20, snapshot.TotalPeople)
		assert.Equal(t, 100, snapshot.Percentage)
		assert.Equal(t, models.BandHigh, snapshot.Band)
	})

	t.Run("MissingParams", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/v1/occupancy?date=2025-06-20", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("SlotOffGrid", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/v1/occupancy?date=2025-06-20&slot=23:00", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSlotsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, config.APIConfig{}, nil)
	handler := srv.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/slots", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Slots []struct {
			Label    string `json:"label"`
			Capacity int    `json:"capacity"`
		} `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Slots, 24)
	assert.Equal(t, "11:00", body.Slots[0].Label)
	assert.Equal(t, "22:30", body.Slots[23].Label)
	assert.Equal(t, 20, body.Slots[0].Capacity)
}

func TestExportEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, config.APIConfig{}, nil)
	handler := srv.Handler()

	t.Run("OK", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/export?start=2025-06-01&end=2025-06-30", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body["file"], "reservas_2025-06-01_a_2025-06-30")
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/export?start=2025-06-30&end=2025-06-01", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("GetNotAllowed", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/v1/export?start=2025-06-01&end=2025-06-30", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestAuth(t *testing.T) {
	cfg := config.APIConfig{
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			APIKeys:      []config.APIClientKey{{Key: "secret-key", Name: "frontdesk"}},
		},
	}
	srv, _ := newTestServer(t, cfg, nil)
	handler := srv.Handler()

	t.Run("MissingKey", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/v1/slots", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("WrongKey", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/slots", nil)
		req.Header.Set("x-api-key", "wrong")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ValidKey", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/slots", nil)
		req.Header.Set("x-api-key", "secret-key")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("HealthzBypassesAuth", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/healthz", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRateLimit(t *testing.T) {
	cfg := config.APIConfig{
		RateLimit: config.APIRateLimitConfig{RPS: 1, Burst: 2},
	}
	srv, _ := newTestServer(t, cfg, nil)
	handler := srv.Handler()

	allowed := 0
	limited := 0
	for i := 0; i < 5; i++ {
		rec := doJSON(t, handler, http.MethodGet, "/api/v1/slots", nil)
		switch rec.Code {
		case http.StatusOK:
			allowed++
		case http.StatusTooManyRequests:
			limited++
		}
	}

	assert.Equal(t, 2, allowed)
	assert.Equal(t, 3, limited)
}
