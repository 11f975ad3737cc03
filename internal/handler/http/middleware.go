package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/30-dung/salon-web/internal/domain"
	"github.com/30-dung/salon-web/internal/salonapi"
	"github.com/30-dung/salon-web/internal/service"
	apperrors "github.com/30-dung/salon-web/pkg/errors"
	"github.com/30-dung/salon-web/pkg/httputil"
	"github.com/30-dung/salon-web/pkg/logger"
	"github.com/30-dung/salon-web/pkg/middleware"
)

// SessionCookieName names the cookie carrying the visitor's session id.
const SessionCookieName = "salon_sid"

// pageLocationHeader carries the browser page (path and query) a call was
// made from, so an auth redirect can bring the user back to it.
const pageLocationHeader = "X-Page-Location"

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const sessionKey contextKey = "session"

// CookieConfig controls the session cookie.
type CookieConfig struct {
	TTL    time.Duration
	Secure bool
}

// sessionFromContext returns the session loaded by the Session middleware.
func sessionFromContext(ctx context.Context) (*domain.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*domain.Session)
	return sess, ok && sess != nil
}

func withSession(ctx context.Context, sess *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// setSessionCookie (re)issues the session cookie for id.
func setSessionCookie(w http.ResponseWriter, id string, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Session loads the visitor session named by the salon_sid cookie, or starts
// a new one, and stores it in the request context. The upstream bearer token
// and the session/user log fields come from the session.
func Session(sessions *service.SessionService, cfg CookieConfig, base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(SessionCookieName); err == nil {
				id = c.Value
			}

			sess, err := sessions.Load(r.Context(), id)
			if err != nil {
				base.ErrorContext(r.Context(), "failed to load session", slog.String("error", err.Error()))
				httputil.WriteError(w, r, apperrors.ServiceUnavailable("session store unavailable"), base)
				return
			}
			if sess.ID != id {
				setSessionCookie(w, sess.ID, cfg)
			}

			ctx := withSession(r.Context(), sess)
			ctx = logger.WithSessionID(ctx, sess.ID)
			if uid := sess.UserID(); uid > 0 {
				ctx = logger.WithUserID(ctx, strconv.FormatInt(uid, 10))
			}
			if sess.AccessToken != "" {
				ctx = salonapi.WithToken(ctx, sess.AccessToken)
			}
			next.ServeHTTP(w, middleware.Enrich(r.WithContext(ctx), base))
		})
	}
}

// RequireAuth rejects requests whose session holds no usable access token
// with 401 and a login redirect.
func RequireAuth(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := sessionFromContext(r.Context())
			if !ok || !sess.Authenticated(time.Now().UTC()) {
				httputil.WriteError(w, r, authRequired(r, apperrors.Unauthorized("please sign in to continue")), base)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authRequiredError sends the browser to the login page.
type authRequiredError struct {
	redirect string
	err      error
}

func (e *authRequiredError) Error() string      { return e.err.Error() }
func (e *authRequiredError) Unwrap() error      { return e.err }
func (e *authRequiredError) RedirectTo() string { return e.redirect }

func authRequired(r *http.Request, err error) error {
	return &authRequiredError{redirect: loginRedirect(returnTo(r)), err: err}
}

func loginRedirect(returnTo string) string {
	return "/login?returnTo=" + url.QueryEscape(returnTo)
}

// returnTo is the page to come back to after signing in: the page location
// reported by the browser, else the request path and query.
func returnTo(r *http.Request) string {
	if loc := r.Header.Get(pageLocationHeader); isLocalPath(loc) {
		return loc
	}
	return r.URL.RequestURI()
}

// isLocalPath reports whether p is a same-origin absolute path.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// errorWriter turns service errors into the JSON envelope. An upstream 401
// means the stored token is no longer accepted, so the session is signed out
// and the browser is sent to the login page.
type errorWriter struct {
	sessions *service.SessionService
	logger   *slog.Logger
}

func (e errorWriter) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var redirector httputil.Redirector
	if errors.Is(err, apperrors.ErrUnauthorized) && !errors.As(err, &redirector) {
		if sess, ok := sessionFromContext(r.Context()); ok {
			if sess.AccessToken != "" {
				if soErr := e.sessions.SignOut(r.Context(), sess); soErr != nil {
					e.logger.WarnContext(r.Context(), "failed to clear rejected credentials",
						slog.String("error", soErr.Error()),
					)
				}
			}
		}
		err = authRequired(r, err)
	}
	httputil.WriteError(w, r, err, e.logger)
}

// session returns the request's session. It is always present behind the
// Session middleware; the error case covers misrouted handlers.
func (e errorWriter) session(w http.ResponseWriter, r *http.Request) (*domain.Session, bool) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Internal(errors.New("session missing from request")), e.logger)
		return nil, false
	}
	return sess, true
}
