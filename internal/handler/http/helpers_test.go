package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/30-dung/salon-web/internal/domain"
	"github.com/30-dung/salon-web/internal/event"
	redisrepo "github.com/30-dung/salon-web/internal/repository/redis"
	"github.com/30-dung/salon-web/internal/salonapi"
	"github.com/30-dung/salon-web/internal/service"
	"github.com/30-dung/salon-web/pkg/httpclient"
	"github.com/30-dung/salon-web/pkg/httputil"
)

// ============================================================================
// Fake salon API
// ============================================================================

type fakeSalon struct {
	mux   *http.ServeMux
	srv   *httptest.Server
	mu    sync.Mutex
	calls map[string]int
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

func respond(v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeBody(w, http.StatusOK, v)
	}
}

func fail(status int, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeBody(w, status, map[string]string{"message": message})
	}
}

func writeBody(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ============================================================================
// Test harness
// ============================================================================

var (
	store12 = domain.Store{ID: 12, Name: "Salon Hai Ba Trung", CityProvince: "Ha Noi", District: "Hai Ba Trung"}
	cut45   = domain.StoreService{ID: 45, Service: domain.ParentService{ID: 1, Name: "Cut", DurationMinutes: 30}, Price: 150000}
	an7     = domain.Employee{ID: 7, FullName: "An"}
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testServer struct {
	t        *testing.T
	mr       *miniredis.Miniredis
	upstream *fakeSalon
	sessions *service.SessionService
	handler  http.Handler
}

// newTestServer mounts the /api/v1 routes over real services talking to a
// fake salon API. routes are registered on the fake as "METHOD /path".
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) *testServer {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	upstream := &fakeSalon{mux: http.NewServeMux(), calls: make(map[string]int)}
	upstream.srv = httptest.NewServer(upstream.mux)
	t.Cleanup(upstream.srv.Close)
	for pattern, h := range routes {
		upstream.handle(pattern, h)
	}

	logger := testLogger()
	api := salonapi.NewClient(httpclient.New(httpclient.DefaultConfig()), upstream.srv.URL+"/api", logger)
	publisher := event.NewLogPublisher(logger)

	sessions := service.NewSessionService(redisrepo.NewSessionRepository(rdb, time.Hour), time.Hour, logger)
	catalog := service.NewCatalogService(api, redisrepo.NewCache(rdb), 0, logger)
	svc := Services{
		Sessions: sessions,
		Auth:     service.NewAuthService(api, sessions, logger),
		Catalog:  catalog,
		Booking:  service.NewBookingService(catalog, api, sessions, redisrepo.NewSubmitGuard(rdb), publisher, time.UTC, logger),
		Reviews:  service.NewReviewService(api, api, publisher, 5, logger),
		History:  service.NewHistoryService(api, api, api, publisher, logger),
		Feedback: service.NewFeedbackService(api, logger),
	}

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(Session(sessions, CookieConfig{TTL: time.Hour}, logger))
		mountRoutes(r, routeHandlers{
			auth:     NewAuthHandler(svc.Auth, sessions, logger),
			catalog:  NewCatalogHandler(svc.Catalog, sessions, logger),
			booking:  NewBookingHandler(svc.Booking, sessions, logger),
			reviews:  NewReviewHandler(svc.Reviews, sessions, logger),
			history:  NewHistoryHandler(svc.History, sessions, logger),
			feedback: NewFeedbackHandler(svc.Feedback, sessions, logger),
		}, logger)
	})

	return &testServer{t: t, mr: mr, upstream: upstream, sessions: sessions, handler: r}
}

// signIn stores a signed-in session and returns its id.
func (s *testServer) signIn(id string) string {
	s.t.Helper()
	sess := domain.NewSession(id, time.Now().UTC())
	sess.AccessToken = "tok"
	sess.UserRole = "CUSTOMER"
	sess.User = &domain.User{ID: 3, Name: "Lan", Email: "lan@example.com", Phone: "0901234567"}
	require.NoError(s.t, s.sessions.Save(s.t.Context(), sess))
	return id
}

// do sends a request carrying the session cookie sid (when set).
func (s *testServer) do(method, target, sid string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sid})
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// decodeResponse reads the response body into the standard Response struct.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// decodeData decodes the data member of the envelope into dst.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}
