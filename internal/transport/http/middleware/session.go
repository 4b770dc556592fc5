package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/course-agent-api/internal/config"
	"github.com/course-agent-api/internal/domain"
	jwtinfra "github.com/course-agent-api/internal/infrastructure/jwt"
	"github.com/course-agent-api/internal/pkg/id"
)

type contextKey string

const SessionKey contextKey = "session"

// SessionStore is the minimal interface the session middleware
// requires from the session backend.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Put(ctx context.Context, s *domain.Session) error
}

// Session returns middleware that resolves the flow session for every
// request. The cookie carries only a signed session id; the document
// lives in the store. Requests without a usable cookie get a fresh
// anonymous session. The cookie is issued before the handler writes
// headers; the mutated session is persisted after the handler returns.
func Session(cfg *config.Config, provider *jwtinfra.Provider, store SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := resolve(r, cfg.SessionCookieName, provider, store)

			token, err := provider.Sign(sess.SessionID)
			if err != nil {
				slog.Error("session cookie signing failed", "session_id", sess.SessionID, "err", err)
				http.Error(w, `{"success":false,"errors":["Something went wrong. Please try again in a few moments."]}`, http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     cfg.SessionCookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(cfg.SessionTTL / time.Second),
				HttpOnly: true,
				Secure:   cfg.AppEnv == "production",
				SameSite: http.SameSiteLaxMode,
			})

			ctx := context.WithValue(r.Context(), SessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))

			now := time.Now().UTC()
			sess.UpdatedAt = now
			sess.ExpiresAt = now.Add(cfg.SessionTTL).Unix()
			if err := store.Put(r.Context(), sess); err != nil {
				slog.Error("session persist failed", "session_id", sess.SessionID, "err", err)
			}
		})
	}
}

func resolve(r *http.Request, cookieName string, provider *jwtinfra.Provider, store SessionStore) *domain.Session {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		if claims, err := provider.Verify(c.Value); err == nil {
			sess, err := store.Get(r.Context(), claims.SessionID)
			if err == nil {
				return sess
			}
			// Expired via TTL or never persisted; fall through to a
			// fresh session rather than failing the request.
			slog.Debug("session lookup failed", "session_id", claims.SessionID, "err", err)
		}
	}
	now := time.Now().UTC()
	return &domain.Session{
		SessionID: id.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SessionFromContext extracts the flow session placed by the Session
// middleware.
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	s, ok := ctx.Value(SessionKey).(*domain.Session)
	return s, ok
}

// RequireAuth rejects requests whose session is not bound to an
// account.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok || !sess.Authenticated() {
			http.Error(w, `{"success":false,"errors":["Please sign in to access this page."]}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
