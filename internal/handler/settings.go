package handler

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vicare/internal/config"
	"github.com/iliyamo/vicare/internal/middleware"
	"github.com/iliyamo/vicare/internal/queue"
	"github.com/iliyamo/vicare/internal/repository"
	"github.com/iliyamo/vicare/internal/service"
	"github.com/iliyamo/vicare/internal/storage"
)

// SettingsHandler serves profile updates, avatar storage, support
// messages and account deletion.
type SettingsHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Support  *repository.SupportRepo
	Sessions SessionManager
	Avatars  *storage.AvatarStore // nil when object storage is not configured
}

func NewSettingsHandler(cfg config.Config, u *repository.UserRepo, s *repository.SupportRepo, sm SessionManager, av *storage.AvatarStore) *SettingsHandler {
	return &SettingsHandler{Cfg: cfg, Users: u, Support: s, Sessions: sm, Avatars: av}
}

// UpdateProfile handles the multipart settings form: an optional avatar
// file plus the emergency and doctor contact fields. Contacts are always
// written; an omitted file clears the stored avatar reference, matching a
// form that posts its full state on every save.
func (h *SettingsHandler) UpdateProfile(c echo.Context) error {
	uid := middleware.CurrentUserID(c)
	emergency := strings.TrimSpace(c.FormValue("emergencyContact"))
	doctor := strings.TrimSpace(c.FormValue("primaryDoctorContact"))
	if len(emergency) > 255 || len(doctor) > 255 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "contact must be less than 255 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	avatarURL := ""
	if file, err := c.FormFile("avatarFile"); err == nil && file != nil {
		if h.Avatars == nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "avatar storage unavailable"})
		}
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if ext == "" {
			ext = ".jpg"
		}
		src, err := file.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not read avatar file"})
		}
		defer src.Close()

		object := fmt.Sprintf("avatar-%d%s", uid, ext)
		contentType := file.Header.Get("Content-Type")
		if err := h.Avatars.Put(ctx, object, src, file.Size, contentType); err != nil {
			c.Logger().Errorf("avatar upload failed for user %d: %v", uid, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error storing avatar"})
		}
		avatarURL = h.Cfg.AvatarBaseURL + "/" + object
	}

	if err := h.Users.UpdateProfile(ctx, uid, avatarURL, emergency, doctor); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error updating profile"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated."})
}

// ServeAvatar streams a stored avatar object. The :name parameter cannot
// contain a path separator, so objects outside the bucket namespace are
// unreachable.
func (h *SettingsHandler) ServeAvatar(c echo.Context) error {
	if h.Avatars == nil {
		return c.NoContent(http.StatusNotFound)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	obj, contentType, err := h.Avatars.Get(ctx, c.Param("name"))
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}
	defer obj.Close()
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return c.Stream(http.StatusOK, contentType, obj)
}

type supportReq struct {
	Message string `json:"message"`
}

// CreateSupportMessage stores the message and publishes an event for the
// support tooling. The row is the source of truth; the publish is
// best-effort and a broker outage never fails the request.
func (h *SettingsHandler) CreateSupportMessage(c echo.Context) error {
	var req supportReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "support message is required"})
	}
	uid := middleware.CurrentUserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	msg := strings.TrimSpace(req.Message)
	id, err := h.Support.Create(ctx, uid, msg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error sending support message"})
	}

	email := ""
	if u, err := h.Users.GetByID(ctx, uid); err == nil {
		email = u.Email
	}
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		_ = service.PublishSupportMessage(pubCtx, queue.SupportMessageEvent{
			MessageID:  id,
			UserID:     uid,
			Email:      email,
			Message:    msg,
			ReceivedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusOK, echo.Map{"message": "Support message received."})
}

// DeleteAccount removes the user and every owned record in one
// transaction, then kills the current session so the cookie cannot be
// replayed. Bearer tokens for the deleted id are dead regardless: the
// verifier re-checks user existence on every request.
func (h *SettingsHandler) DeleteAccount(c echo.Context) error {
	uid := middleware.CurrentUserID(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Users.DeleteCascade(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error deleting account"})
	}

	if h.Cfg.AuthMode == config.AuthModeSession {
		if sid := middleware.CurrentSessionID(c); sid != "" {
			_ = h.Sessions.Delete(ctx, sid)
		}
		c.SetCookie(sessionCookie(h.Cfg, "", -time.Hour))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Account and data deleted."})
}
