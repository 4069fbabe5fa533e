package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-calendar/internal/audit"
	"github.com/BruksfildServices01/barber-calendar/internal/cache"
	"github.com/BruksfildServices01/barber-calendar/internal/config"
	"github.com/BruksfildServices01/barber-calendar/internal/domain/booking"
	"github.com/BruksfildServices01/barber-calendar/internal/infra/repository"
	"github.com/BruksfildServices01/barber-calendar/internal/metrics"
	"github.com/BruksfildServices01/barber-calendar/internal/session"
)

// syncAudit writes events inline so tests can read them back at once.
type syncAudit struct {
	logger *audit.Logger
}

func (s syncAudit) Dispatch(ev audit.Event) {
	_ = s.logger.Log(context.Background(), ev)
}

type server struct {
	t      *testing.T
	engine *gin.Engine
	repo   *repository.BookingMemoryRepository
	token  string
}

func newServer(t *testing.T, loginRate int) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// 2024-03-04 is a Monday
	now := func() time.Time { return time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC) }

	hash, err := session.HashPassword("admin111")
	require.NoError(t, err)

	repo := repository.NewBookingMemoryRepository()
	m := metrics.New("test")

	r := gin.New()
	r.Use(m.Middleware())
	RegisterRoutes(r, Dependencies{
		Config:     &config.Config{LoginRatePerMin: loginRate},
		Repo:       repo,
		Cache:      cache.NewMemory(),
		TTLs:       cache.DefaultTTLs(),
		Audit:      syncAudit{logger: audit.New(repo)},
		Metrics:    m,
		Sessions:   session.NewManager("test-secret", time.Hour, session.Credentials{Email: "admin@admin.com", Name: "Administrator", PasswordHash: hash}, now),
		Normalizer: booking.NewNormalizer(booking.DayFirst, nil),
		Now:        now,
	})

	return &server{t: t, engine: r, repo: repo}
}

func (s *server) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *server) login() {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "admin@admin.com", "password": "admin111"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var sess session.Session
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &sess))
	require.NotEmpty(s.t, sess.Token)
	s.token = sess.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
	TakenBy string `json:"taken_by"`
}

// ======================================================
// AUTH
// ======================================================

func TestAuth(t *testing.T) {
	s := newServer(t, 100)

	w := s.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "admin@admin.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", decode[errorBody](t, w).Code)

	w = s.do(http.MethodGet, "/api/reservations", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	s.token = "garbage"
	w = s.do(http.MethodGet, "/api/reservations", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_token", decode[errorBody](t, w).Code)

	s.token = ""
	s.login()
	w = s.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]map[string]string](t, w)
	assert.Equal(t, "admin@admin.com", me["user"]["email"])
	assert.Equal(t, "Administrator", me["user"]["name"])
}

func TestLoginRateLimit(t *testing.T) {
	s := newServer(t, 2)
	creds := map[string]string{"email": "admin@admin.com", "password": "wrong"}

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/auth/login", creds).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/auth/login", creds).Code)

	w := s.do(http.MethodPost, "/api/auth/login", creds)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", decode[errorBody](t, w).Code)
}

// ======================================================
// RESERVATIONS
// ======================================================

func TestReservations_BookingRules(t *testing.T) {
	s := newServer(t, 100)
	s.login()

	w := s.do(http.MethodPost, "/api/reservations", map[string]string{
		"clientName": "John", "service": "Haircut", "date": "04/03/2024", "time": "10:00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	assert.Equal(t, "2024-03-04", created["date"])
	assert.Equal(t, "10:00 AM", created["time"])

	w = s.do(http.MethodPost, "/api/reservations", map[string]string{
		"clientName": "Ana", "date": "2024-03-04", "time": "10:00 am",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "slot_taken", body.Code)
	assert.Equal(t, "John", body.TakenBy)

	w = s.do(http.MethodPost, "/api/reservations", map[string]string{
		"clientName": "Ana", "date": "2024-03-10", "time": "10:00",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "non_working_day", decode[errorBody](t, w).Code)

	w = s.do(http.MethodPost, "/api/reservations", map[string]string{
		"clientName": "Ana", "date": "someday", "time": "10:00",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "parse_failure", decode[errorBody](t, w).Code)

	w = s.do(http.MethodPost, "/api/reservations", map[string]string{
		"clientName": "Ana", "date": "2024-03-04", "time": "08:00",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "past_slot", decode[errorBody](t, w).Code)

	w = s.do(http.MethodPost, "/api/reservations", map[string]string{"date": "2024-03-05"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decode[errorBody](t, w).Code)

	w = s.do(http.MethodGet, "/api/reservations?date=2024-03-04", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Data  []map[string]any `json:"data"`
		Total int              `json:"total"`
	}](t, w)
	assert.Equal(t, 1, list.Total)
}

func TestReservations_UpdateAndDelete(t *testing.T) {
	s := newServer(t, 100)
	s.login()

	w := s.do(http.MethodPost, "/api/reservations", map[string]string{"clientName": "John", "date": "2024-03-04", "time": "10:00"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[map[string]any](t, w)["id"].(string)

	w = s.do(http.MethodPost, "/api/reservations", map[string]string{"clientName": "Ana", "date": "2024-03-04", "time": "11:00"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPut, "/api/reservations/"+id, map[string]string{"time": "11:00"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPut, "/api/reservations/"+id, map[string]string{"time": "12:30", "notes": "late"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "12:30 PM", decode[map[string]any](t, w)["time"])

	w = s.do(http.MethodPut, "/api/reservations/not-a-uuid", map[string]string{"time": "12:30"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_id", decode[errorBody](t, w).Code)

	w = s.do(http.MethodDelete, "/api/reservations/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "reservation_not_found", decode[errorBody](t, w).Code)

	w = s.do(http.MethodDelete, "/api/reservations/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSchedule(t *testing.T) {
	s := newServer(t, 100)
	s.login()

	require.Equal(t, http.StatusCreated,
		s.do(http.MethodPost, "/api/reservations", map[string]string{"clientName": "John", "date": "2024-03-04", "time": "9:30"}).Code)

	w := s.do(http.MethodGet, "/api/schedule?date=2024-03-04", nil)
	require.Equal(t, http.StatusOK, w.Code)

	day := decode[struct {
		WorkingDay bool `json:"workingDay"`
		Slots      []struct {
			Time        string         `json:"time"`
			Booked      bool           `json:"booked"`
			Reservation map[string]any `json:"reservation"`
		} `json:"slots"`
	}](t, w)

	assert.True(t, day.WorkingDay)
	require.Len(t, day.Slots, 18)
	assert.Equal(t, "9:30 AM", day.Slots[1].Time)
	assert.True(t, day.Slots[1].Booked)
	assert.Equal(t, "John", day.Slots[1].Reservation["clientName"])
	assert.False(t, day.Slots[0].Booked)
}

// ======================================================
// CLIENTS + SETTINGS
// ======================================================

func TestClients(t *testing.T) {
	s := newServer(t, 100)
	s.login()

	require.Equal(t, http.StatusCreated,
		s.do(http.MethodPost, "/api/reservations", map[string]string{"clientName": "John Smith", "clientPhone": "555", "date": "2024-03-04", "time": "10:00"}).Code)

	w := s.do(http.MethodPost, "/api/clients", map[string]string{"name": "john smith"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "client_name_taken", decode[errorBody](t, w).Code)

	w = s.do(http.MethodGet, "/api/clients?query=smith", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Data []map[string]any `json:"data"`
	}](t, w)
	require.Len(t, list.Data, 1)
	id := list.Data[0]["id"].(string)

	w = s.do(http.MethodGet, "/api/clients/"+id+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	hist := decode[struct {
		Reservations []map[string]any `json:"reservations"`
	}](t, w)
	assert.Len(t, hist.Reservations, 1)

	w = s.do(http.MethodPut, "/api/clients/"+uuid.NewString(), map[string]string{"phone": "1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSettings(t *testing.T) {
	s := newServer(t, 100)
	s.login()

	w := s.do(http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(9), decode[map[string]any](t, w)["startHour"])

	w = s.do(http.MethodPut, "/api/settings", map[string]any{"startHour": 10, "endHour": 9})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "invalid_settings", decode[errorBody](t, w).Code)

	w = s.do(http.MethodPut, "/api/settings", map[string]any{"startHour": 10})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/schedule?date=2024-03-04", nil)
	require.Equal(t, http.StatusOK, w.Code)
	day := decode[struct {
		Slots []struct {
			Time string `json:"time"`
		} `json:"slots"`
	}](t, w)
	require.NotEmpty(t, day.Slots)
	assert.Equal(t, "10:00 AM", day.Slots[0].Time)
}

// ======================================================
// IMPORT + AUDIT + INFRA
// ======================================================

func TestImport(t *testing.T) {
	s := newServer(t, 100)
	s.login()

	w := s.do(http.MethodPost, "/api/import", map[string]string{
		"csv": "Emri,Dita,Ora\nJohn,05/03/2024,10:00\nAna,,11:00\n",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[map[string]any](t, w)
	assert.Equal(t, float64(1), res["created"])
	assert.Equal(t, float64(1), res["skipped"])

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "Oraret.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("name,date,time\nJohn,05/03/2024,10:00\nJohn,06/03/2024,10:00\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res = decode[map[string]any](t, rec)
	assert.Equal(t, float64(1), res["created"])
	assert.Equal(t, float64(1), res["skipped"])

	w = s.do(http.MethodPost, "/api/import", map[string]string{"csv": "a,b,c\n1,2,3\n"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "csv_missing_headers", decode[errorBody](t, w).Code)

	w = s.do(http.MethodPost, "/api/import", map[string]string{})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "csv_source_unavailable", decode[errorBody](t, w).Code)
}

func TestAuditLogs(t *testing.T) {
	s := newServer(t, 100)
	s.login()

	require.Equal(t, http.StatusCreated,
		s.do(http.MethodPost, "/api/reservations", map[string]string{"clientName": "John", "date": "2024-03-04", "time": "10:00"}).Code)
	require.Equal(t, http.StatusCreated,
		s.do(http.MethodPost, "/api/clients", map[string]string{"name": "Ana"}).Code)

	w := s.do(http.MethodGet, "/api/audit-logs?action=reservation_created", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[struct {
		Data  []map[string]any `json:"data"`
		Page  int              `json:"page"`
		Limit int              `json:"limit"`
		Total int64            `json:"total"`
	}](t, w)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 50, page.Limit)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "admin@admin.com", page.Data[0]["actor"])

	w = s.do(http.MethodGet, "/api/audit-logs?limit=1000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(50), decode[map[string]any](t, w)["limit"])
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t, 100)

	w := s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
}
