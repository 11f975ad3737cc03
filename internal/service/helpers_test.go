package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"

	"github.com/30-dung/salon-web/internal/domain"
	redisrepo "github.com/30-dung/salon-web/internal/repository/redis"
	"github.com/30-dung/salon-web/internal/salonapi"
	"github.com/30-dung/salon-web/pkg/httpclient"
)

// --- Mock Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishAppointmentCreated(ctx context.Context, sessionID string, appt *domain.Appointment) error {
	args := m.Called(ctx, sessionID, appt)
	return args.Error(0)
}

func (m *mockPublisher) PublishAppointmentCanceled(ctx context.Context, sessionID string, appointmentID, userID int64) error {
	args := m.Called(ctx, sessionID, appointmentID, userID)
	return args.Error(0)
}

func (m *mockPublisher) PublishReviewCreated(ctx context.Context, req domain.ReviewRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *mockPublisher) PublishReplyCreated(ctx context.Context, reviewID int64, req domain.ReplyRequest) error {
	args := m.Called(ctx, reviewID, req)
	return args.Error(0)
}

// --- Fake salon API ---

type fakeSalon struct {
	mux   *http.ServeMux
	srv   *httptest.Server
	mu    sync.Mutex
	calls map[string]int
}

func newFakeSalon(t *testing.T) *fakeSalon {
	t.Helper()
	f := &fakeSalon{mux: http.NewServeMux(), calls: make(map[string]int)}
	f.srv = httptest.NewServer(f.mux)
	t.Cleanup(f.srv.Close)
	return f
}

// handle registers h for "METHOD /path" below /api and counts its calls.
func (f *fakeSalon) handle(pattern string, h http.HandlerFunc) {
	method, path, _ := strings.Cut(pattern, " ")
	f.mux.HandleFunc(method+" /api"+path, func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[pattern]++
		f.mu.Unlock()
		h(w, r)
	})
}

func (f *fakeSalon) count(pattern string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[pattern]
}

func (f *fakeSalon) client() *salonapi.Client {
	return salonapi.NewClient(httpclient.New(httpclient.DefaultConfig()), f.srv.URL+"/api", newTestLogger())
}

func respond(v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, v)
	}
}

func fail(status int, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, map[string]string{"message": message})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func newTestSessions(t *testing.T, client *goredis.Client) *SessionService {
	t.Helper()
	return NewSessionService(redisrepo.NewSessionRepository(client, 24*time.Hour), 24*time.Hour, newTestLogger())
}

func signedInSession(id string) *domain.Session {
	s := domain.NewSession(id, time.Now().UTC())
	s.AccessToken = "tok"
	s.UserRole = "CUSTOMER"
	s.User = &domain.User{ID: 3, Name: "Lan", Email: "lan@example.com", Phone: "0901234567"}
	return s
}

var (
	store12 = domain.Store{ID: 12, Name: "Salon Hai Ba Trung", CityProvince: "Ha Noi", District: "Hai Ba Trung"}
	cut45   = domain.StoreService{ID: 45, Service: domain.ParentService{ID: 1, Name: "Cut", DurationMinutes: 30}, Price: 150000}
	an7     = domain.Employee{ID: 7, FullName: "An"}
)
