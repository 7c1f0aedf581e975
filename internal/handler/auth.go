package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vicare/internal/config"
	"github.com/iliyamo/vicare/internal/middleware"
	"github.com/iliyamo/vicare/internal/model"
	"github.com/iliyamo/vicare/internal/repository"
	"github.com/iliyamo/vicare/internal/service"
	"github.com/iliyamo/vicare/internal/utils"
)

// SessionManager creates and revokes server-side sessions. Implemented by
// session.Store; nil in token mode.
type SessionManager interface {
	Create(ctx context.Context, userID uint64) (string, error)
	Delete(ctx context.Context, id string) error
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions SessionManager
	Verifier *service.EmailVerifier
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s SessionManager, v *service.EmailVerifier) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s, Verifier: v}
}

// ----- DTOs -----

type signupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Signup: validate, verify deliverability, create user, issue assertion.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = utils.NormalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}
	if !utils.ValidEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "please provide a valid email address"})
	}
	if !utils.ValidPassword(req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be 8-128 characters with an uppercase letter, a lowercase letter and a number"})
	}
	if len(req.Name) > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must be less than 100 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ok, err := h.Verifier.Verify(ctx, req.Email)
	if err != nil {
		c.Logger().Warnf("email verification unavailable for %s: %v", req.Email, err)
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email could not be verified"})
	}

	uid, err := h.Users.Create(ctx, req.Email, req.Password, req.Name, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email is already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error during signup"})
	}

	return h.respondWithAssertion(c, ctx, "Signup successful", userPart{ID: uid, Email: req.Email, Name: req.Name})
}

// Login: verify credentials and issue a fresh assertion.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = utils.NormalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn a bcrypt comparison so an unknown email costs the
			// same as a wrong password, then answer identically.
			utils.VerifyPassword(utils.DummyHash, req.Password)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error during login"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	return h.respondWithAssertion(c, ctx, "Login successful", userPart{ID: u.ID, Email: u.Email, Name: u.Name})
}

// respondWithAssertion mints the assertion for the configured mode. Token
// mode returns the JWT in the body; session mode sets the cookie. In
// session mode any session id the request already carries is destroyed
// first, so authentication never adopts a pre-set identifier.
func (h *AuthHandler) respondWithAssertion(c echo.Context, ctx context.Context, msg string, user userPart) error {
	if h.Cfg.AuthMode == config.AuthModeSession {
		if old, err := c.Cookie(h.Cfg.CookieName); err == nil && old.Value != "" {
			_ = h.Sessions.Delete(ctx, old.Value)
		}
		sid, err := h.Sessions.Create(ctx, user.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error creating session"})
		}
		c.SetCookie(sessionCookie(h.Cfg, sid, time.Duration(h.Cfg.SessionTTLMin)*time.Minute))
		return c.JSON(http.StatusOK, echo.Map{"message": msg, "user": user})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, user.ID, h.Cfg.TokenTTLHours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error issuing token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": msg,
		"user":    user,
		"token":   tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout terminates the current assertion. Session mode deletes the
// server-side record and tells the browser to drop the cookie. Token mode
// has nothing to revoke server-side; the client discards its copy and the
// token dies at its natural expiry.
func (h *AuthHandler) Logout(c echo.Context) error {
	if h.Cfg.AuthMode == config.AuthModeSession {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if sid := middleware.CurrentSessionID(c); sid != "" {
			if err := h.Sessions.Delete(ctx, sid); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error logging out"})
			}
		}
		c.SetCookie(sessionCookie(h.Cfg, "", -time.Hour))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Deleted between assertion resolution and this query.
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error loading profile"})
	}
	return c.JSON(http.StatusOK, profileJSON(u))
}

func profileJSON(u model.User) echo.Map {
	return echo.Map{
		"id":                   u.ID,
		"email":                u.Email,
		"name":                 u.Name,
		"avatarUrl":            u.AvatarURL,
		"emergencyContact":     u.EmergencyContact,
		"primaryDoctorContact": u.PrimaryDoctorContact,
	}
}

// sessionCookie builds the session cookie with the hardening attributes
// the deployment calls for. HttpOnly always; Secure per config (forced on
// for SameSite=None, which browsers refuse otherwise); a negative maxAge
// expires the cookie immediately.
func sessionCookie(cfg config.Config, value string, maxAge time.Duration) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	switch cfg.CookieSameSite {
	case "strict":
		sameSite = http.SameSiteStrictMode
	case "none":
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     cfg.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   cfg.CookieSecure || sameSite == http.SameSiteNoneMode,
		SameSite: sameSite,
	}
}
