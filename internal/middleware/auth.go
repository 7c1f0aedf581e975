package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vicare/internal/config"
	"github.com/iliyamo/vicare/internal/utils"
)

// SessionResolver resolves an opaque session identifier to the owning
// user id. Implemented by session.Store; tests substitute a fake.
type SessionResolver interface {
	Resolve(ctx context.Context, id string) (uint64, error)
}

// UserChecker reports whether a user row still exists. Implemented by
// repository.UserRepo. The verifier consults it so that a deleted account
// invalidates every assertion previously issued for its id, including
// bearer tokens that remain cryptographically valid until expiry.
type UserChecker interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

// Context keys written by RequireAuth and read via CurrentUserID /
// CurrentSessionID.
const (
	ctxUserID    = "user_id"
	ctxSessionID = "session_id"
)

// notAuthorized is the single response body for every resolution failure:
// missing assertion, malformed, bad signature, expired, revoked, or a
// since-deleted user. One body means a probing client cannot tell which
// check rejected it.
func notAuthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authorized"})
}

// RequireAuth returns the identity verifier for the configured auth mode.
// In token mode it validates the Authorization bearer JWT; in session mode
// it resolves the session cookie against the shared store. On success the
// resolved user id is attached to the request context as an immutable
// value; handlers must use CurrentUserID and never a client-supplied id.
func RequireAuth(cfg config.Config, sessions SessionResolver, users UserChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var uid uint64

			switch cfg.AuthMode {
			case config.AuthModeSession:
				cookie, err := c.Cookie(cfg.CookieName)
				if err != nil || cookie.Value == "" {
					return notAuthorized(c)
				}
				uid, err = sessions.Resolve(c.Request().Context(), cookie.Value)
				if err != nil {
					return notAuthorized(c)
				}
				c.Set(ctxSessionID, cookie.Value)
			default: // token mode
				auth := c.Request().Header.Get("Authorization")
				if !strings.HasPrefix(auth, "Bearer ") {
					return notAuthorized(c)
				}
				raw := strings.TrimPrefix(auth, "Bearer ")
				var err error
				uid, err = utils.ParseAccessToken(cfg.JWTSecret, raw)
				if err != nil {
					return notAuthorized(c)
				}
			}

			// An assertion for a deleted account must not resolve.
			ok, err := users.Exists(c.Request().Context(), uid)
			if err != nil || !ok {
				return notAuthorized(c)
			}

			c.Set(ctxUserID, uid)
			return next(c)
		}
	}
}

// CurrentUserID returns the user id resolved by RequireAuth, or 0 when the
// request never passed through it.
func CurrentUserID(c echo.Context) uint64 {
	if v, ok := c.Get(ctxUserID).(uint64); ok {
		return v
	}
	return 0
}

// CurrentSessionID returns the session identifier the request presented,
// or "" in token mode. Logout uses it to revoke the exact session.
func CurrentSessionID(c echo.Context) string {
	if v, ok := c.Get(ctxSessionID).(string); ok {
		return v
	}
	return ""
}
