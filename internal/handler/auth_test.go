package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/vicare/internal/config"
	"github.com/iliyamo/vicare/internal/repository"
	"github.com/iliyamo/vicare/internal/service"
	"github.com/iliyamo/vicare/internal/utils"
)

const userColumns = "id,email,password_hash,name,avatar_url,emergency_contact,primary_doctor_contact,created_at"

func sqlmockTime() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

func tokenCfg() config.Config {
	return config.Config{
		AuthMode:      config.AuthModeToken,
		JWTSecret:     "test-secret",
		TokenTTLHours: 24,
		BcryptCost:    bcrypt.MinCost,
		CookieName:    "vicare_session",
	}
}

func sessionCfg() config.Config {
	cfg := tokenCfg()
	cfg.AuthMode = config.AuthModeSession
	cfg.SessionTTLMin = 720
	return cfg
}

// recordingSessions is a SessionManager that remembers what was created
// and deleted.
type recordingSessions struct {
	created []uint64
	deleted []string
	nextID  string
	err     error
}

func (r *recordingSessions) Create(_ context.Context, userID uint64) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.created = append(r.created, userID)
	return r.nextID, nil
}

func (r *recordingSessions) Delete(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func newAuthHandler(t *testing.T, cfg config.Config, sessions SessionManager) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	// No access key configured: verification is skipped.
	verifier := service.NewEmailVerifier("", false)
	return NewAuthHandler(cfg, repository.NewUserRepo(db), sessions, verifier), mock
}

func jsonCtx(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSignup_TokenMode(t *testing.T) {
	h, mock := newAuthHandler(t, tokenCfg(), nil)

	mock.ExpectExec("INSERT INTO users (email, password_hash, name) VALUES (?,?,?)").
		WithArgs("a@x.com", sqlmock.AnyArg(), "Ada").
		WillReturnResult(sqlmock.NewResult(7, 1))

	c, rec := jsonCtx(http.MethodPost, "/api/auth/signup",
		`{"email":"A@x.com","password":"Abcd1234","name":"Ada"}`)
	require.NoError(t, h.Signup(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		User  userPart  `json:"user"`
		Token tokenPart `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(7), resp.User.ID)
	assert.Equal(t, "a@x.com", resp.User.Email)
	require.NotEmpty(t, resp.Token.Token)

	// The issued assertion resolves back to the same user id.
	uid, err := utils.ParseAccessToken("test-secret", resp.Token.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), uid)

	// The password hash never appears in the response.
	assert.NotContains(t, rec.Body.String(), "$2a$")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	h, mock := newAuthHandler(t, tokenCfg(), nil)

	mock.ExpectExec("INSERT INTO users (email, password_hash, name) VALUES (?,?,?)").
		WithArgs("a@x.com", sqlmock.AnyArg(), "").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry"))

	c, rec := jsonCtx(http.MethodPost, "/api/auth/signup",
		`{"email":"a@x.com","password":"Abcd1234"}`)
	require.NoError(t, h.Signup(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignup_Validation(t *testing.T) {
	h, _ := newAuthHandler(t, tokenCfg(), nil)

	cases := map[string]string{
		"missing email":    `{"password":"Abcd1234"}`,
		"missing password": `{"email":"a@x.com"}`,
		"bad email":        `{"email":"not-an-email","password":"Abcd1234"}`,
		"weak password":    `{"email":"a@x.com","password":"password"}`,
		"short password":   `{"email":"a@x.com","password":"Ab1"}`,
		"long name":        `{"email":"a@x.com","password":"Abcd1234","name":"` + strings.Repeat("n", 101) + `"}`,
	}
	for name, body := range cases {
		c, rec := jsonCtx(http.MethodPost, "/api/auth/signup", body)
		require.NoError(t, h.Signup(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestSignup_SessionMode_SetsCookie(t *testing.T) {
	sessions := &recordingSessions{nextID: "sid-new"}
	h, mock := newAuthHandler(t, sessionCfg(), sessions)

	mock.ExpectExec("INSERT INTO users (email, password_hash, name) VALUES (?,?,?)").
		WithArgs("a@x.com", sqlmock.AnyArg(), "").
		WillReturnResult(sqlmock.NewResult(7, 1))

	c, rec := jsonCtx(http.MethodPost, "/api/auth/signup",
		`{"email":"a@x.com","password":"Abcd1234"}`)
	require.NoError(t, h.Signup(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint64{7}, sessions.created)
	// No token in the body in session mode.
	assert.NotContains(t, rec.Body.String(), "token")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "vicare_session", cookies[0].Name)
	assert.Equal(t, "sid-new", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLogin_TokenMode(t *testing.T) {
	h, mock := newAuthHandler(t, tokenCfg(), nil)

	hash, err := utils.HashPassword("Abcd1234", bcrypt.MinCost)
	require.NoError(t, err)
	rows := sqlmock.NewRows(strings.Split(userColumns, ",")).
		AddRow(7, "a@x.com", hash, "Ada", "", "", "", sqlmockTime())

	mock.ExpectQuery("SELECT " + userColumns + " FROM users WHERE email=? LIMIT 1").
		WithArgs("a@x.com").
		WillReturnRows(rows)

	c, rec := jsonCtx(http.MethodPost, "/api/auth/login",
		`{"email":"a@x.com","password":"Abcd1234"}`)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token tokenPart `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	uid, err := utils.ParseAccessToken("test-secret", resp.Token.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), uid)
}

func TestLogin_InvalidCredentials_Indistinguishable(t *testing.T) {
	h, mock := newAuthHandler(t, tokenCfg(), nil)

	// Unknown email.
	mock.ExpectQuery("SELECT " + userColumns + " FROM users WHERE email=? LIMIT 1").
		WithArgs("nobody@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	c1, rec1 := jsonCtx(http.MethodPost, "/api/auth/login",
		`{"email":"nobody@x.com","password":"Abcd1234"}`)
	require.NoError(t, h.Login(c1))

	// Known email, wrong password.
	hash, err := utils.HashPassword("Different1", bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT " + userColumns + " FROM users WHERE email=? LIMIT 1").
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(strings.Split(userColumns, ",")).
			AddRow(7, "a@x.com", hash, "", "", "", "", sqlmockTime()))
	c2, rec2 := jsonCtx(http.MethodPost, "/api/auth/login",
		`{"email":"a@x.com","password":"Abcd1234"}`)
	require.NoError(t, h.Login(c2))

	assert.Equal(t, http.StatusUnauthorized, rec1.Code)
	assert.Equal(t, http.StatusUnauthorized, rec2.Code)
	// Identical bodies: no account enumeration.
	assert.Equal(t, rec1.Body.String(), rec2.Body.String())
}

func TestLogin_SessionMode_RegeneratesSession(t *testing.T) {
	sessions := &recordingSessions{nextID: "sid-new"}
	h, mock := newAuthHandler(t, sessionCfg(), sessions)

	hash, err := utils.HashPassword("Abcd1234", bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT " + userColumns + " FROM users WHERE email=? LIMIT 1").
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(strings.Split(userColumns, ",")).
			AddRow(7, "a@x.com", hash, "", "", "", "", sqlmockTime()))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"a@x.com","password":"Abcd1234"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	// A pre-set session id must not survive authentication.
	req.AddCookie(&http.Cookie{Name: "vicare_session", Value: "sid-fixated"})
	rec := httptest.NewRecorder()
	require.NoError(t, h.Login(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"sid-fixated"}, sessions.deleted)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid-new", cookies[0].Value)
}

func TestLogout_SessionMode(t *testing.T) {
	sessions := &recordingSessions{}
	h, _ := newAuthHandler(t, sessionCfg(), sessions)

	c, rec := jsonCtx(http.MethodPost, "/api/auth/logout", "")
	c.Set("user_id", uint64(7))
	c.Set("session_id", "sid-1")
	require.NoError(t, h.Logout(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"sid-1"}, sessions.deleted)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestLogout_TokenMode(t *testing.T) {
	h, _ := newAuthHandler(t, tokenCfg(), nil)

	c, rec := jsonCtx(http.MethodPost, "/api/auth/logout", "")
	c.Set("user_id", uint64(7))
	require.NoError(t, h.Logout(c))

	// Nothing to revoke server-side; the client discards its copy.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestMe(t *testing.T) {
	h, mock := newAuthHandler(t, tokenCfg(), nil)

	mock.ExpectQuery("SELECT " + userColumns + " FROM users WHERE id=? LIMIT 1").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(strings.Split(userColumns, ",")).
			AddRow(7, "a@x.com", "$2a$04$hash", "Ada", "/uploads/avatar-7.png", "Bob 123", "Dr. Lee", sqlmockTime()))

	c, rec := jsonCtx(http.MethodGet, "/api/auth/me", "")
	c.Set("user_id", uint64(7))
	require.NoError(t, h.Me(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "a@x.com", resp["email"])
	assert.Equal(t, "/uploads/avatar-7.png", resp["avatarUrl"])
	assert.Equal(t, "Bob 123", resp["emergencyContact"])
	assert.NotContains(t, resp, "password_hash")
}

func TestMe_DeletedUser(t *testing.T) {
	h, mock := newAuthHandler(t, tokenCfg(), nil)

	mock.ExpectQuery("SELECT " + userColumns + " FROM users WHERE id=? LIMIT 1").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, rec := jsonCtx(http.MethodGet, "/api/auth/me", "")
	c.Set("user_id", uint64(7))
	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
