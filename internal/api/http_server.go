package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fomeninja/internal/calendar"
	"fomeninja/internal/config"
	"fomeninja/internal/domain"
	"fomeninja/internal/metrics"
	"fomeninja/internal/models"
	"fomeninja/internal/occupancy"
	"fomeninja/internal/schedule"
	"fomeninja/internal/service"
	"fomeninja/internal/store"

	"github.com/rs/zerolog"
)

// Exporter writes a reservations report and returns the file path.
type Exporter interface {
	Reservations(reservations []models.Reservation, startDate, endDate string) (string, error)
}

// HTTPServer exposes the reservation engine to the presentation layer.
type HTTPServer struct {
	cfg       config.APIConfig
	repo      domain.ReservationStore
	svc       *service.ReservationService
	projector *calendar.Projector
	grid      *schedule.Grid
	exporter  Exporter
	server    *http.Server
	auth      *HTTPAuth
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewHTTPServer(
	cfg config.APIConfig,
	repo domain.ReservationStore,
	svc *service.ReservationService,
	projector *calendar.Projector,
	grid *schedule.Grid,
	exporter Exporter,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:       cfg,
		repo:      repo,
		svc:       svc,
		projector: projector,
		grid:      grid,
		exporter:  exporter,
		logger:    logger,
		now:       time.Now,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/reservations", srv.handleReservations)
	mux.HandleFunc("/api/v1/reservations/", srv.handleReservationByID)
	mux.HandleFunc("/api/v1/calendar/", srv.handleCalendar)
	mux.HandleFunc("/api/v1/occupancy", srv.handleOccupancy)
	mux.HandleFunc("/api/v1/slots", srv.handleSlots)
	mux.HandleFunc("/api/v1/export", srv.handleExport)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the configured handler chain for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) handleReservations(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations")

	switch r.Method {
	case http.MethodGet:
		date := strings.TrimSpace(r.URL.Query().Get("date"))
		var reservations []models.Reservation
		if date == "" {
			reservations = s.repo.All()
		} else {
			if _, err := time.Parse(models.DateLayout, date); err != nil {
				writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
				return
			}
			reservations = s.repo.ByDate(date)
		}
		writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})

	case http.MethodPost:
		var req service.CreateRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		reservation, err := s.svc.CreateReservation(r.Context(), req)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, reservation)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleReservationByID(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservation")

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/reservations/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		reservation, err := s.repo.Get(id)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reservation)

	case len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPost:
		var body struct {
			Status    string `json:"status"`
			ChangedBy string `json:"changed_by"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if body.Status == "" {
			writeError(w, http.StatusBadRequest, "status is required")
			return
		}

		reservation, err := s.svc.Transition(r.Context(), id, body.Status, body.ChangedBy)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reservation)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("calendar")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	unit := calendar.Unit(strings.TrimPrefix(r.URL.Path, "/api/v1/calendar/"))
	if unit != calendar.UnitDay && unit != calendar.UnitWeek && unit != calendar.UnitMonth {
		writeError(w, http.StatusNotFound, "unknown calendar view")
		return
	}

	now := s.now()
	anchor := now
	if raw := strings.TrimSpace(r.URL.Query().Get("anchor")); raw != "" {
		parsed, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid anchor date; expected YYYY-MM-DD")
			return
		}
		anchor = parsed
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("delta")); raw != "" {
		delta, err := strconv.Atoi(raw)
		if err != nil || delta < -1 || delta > 1 {
			writeError(w, http.StatusBadRequest, "delta must be -1, 0 or 1")
			return
		}
		anchor = calendar.Advance(anchor, unit, delta, now)
	}

	reservations := s.repo.All()
	switch unit {
	case calendar.UnitDay:
		writeJSON(w, http.StatusOK, s.projector.Day(anchor, reservations))
	case calendar.UnitWeek:
		writeJSON(w, http.StatusOK, s.projector.Week(anchor, reservations, now))
	case calendar.UnitMonth:
		writeJSON(w, http.StatusOK, s.projector.Month(anchor, reservations, now))
	}
}

func (s *HTTPServer) handleOccupancy(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("occupancy")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	slot := strings.TrimSpace(r.URL.Query().Get("slot"))
	if date == "" || slot == "" {
		writeError(w, http.StatusBadRequest, "date and slot are required")
		return
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}
	if !s.grid.HasSlot(slot) {
		writeError(w, http.StatusBadRequest, "slot is not part of the opening hours grid")
		return
	}

	snapshot := occupancy.Calculate(date, slot, s.repo.ByDate(date), s.grid.Capacity(slot))
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("slots")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	type slotInfo struct {
		Label    string `json:"label"`
		Capacity int    `json:"capacity"`
	}

	slots := make([]slotInfo, 0, len(s.grid.Slots()))
	for _, label := range s.grid.Slots() {
		slots = append(slots, slotInfo{Label: label, Capacity: s.grid.Capacity(label)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "export is not configured")
		return
	}

	start := strings.TrimSpace(r.URL.Query().Get("start"))
	end := strings.TrimSpace(r.URL.Query().Get("end"))
	if start == "" || end == "" {
		writeError(w, http.StatusBadRequest, "start and end are required")
		return
	}
	for _, d := range []string{start, end} {
		if _, err := time.Parse(models.DateLayout, d); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date format: %s", d))
			return
		}
	}
	if end < start {
		writeError(w, http.StatusBadRequest, "end must not be before start")
		return
	}

	filePath, err := s.exporter.Reservations(s.repo.All(), start, end)
	if err != nil {
		s.logger.Error().Err(err).Msg("export error")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file": filePath})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) writeDomainError(w http.ResponseWriter, err error) {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "reservation not found")
	case errors.Is(err, service.ErrIllegalTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
