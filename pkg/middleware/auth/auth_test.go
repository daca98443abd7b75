package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvcu04/fashion_shop/pkg/tokens"
)

var secret = []byte("test-jwt-secret")

func sign(t *testing.T, id uint, role string) string {
	t.Helper()
	tok, err := tokens.SignAccess(id, role, time.Now().Add(time.Hour), secret)
	require.NoError(t, err)
	return tok
}

func run(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, uint, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen uint
	err := mw(func(c echo.Context) error {
		seen, _ = UserID(c)
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, seen, err
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	return he.Code
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()
	m := NewAuth(secret)

	tests := []struct {
		name     string
		setup    func(r *http.Request)
		wantCode int
		wantUser uint
	}{
		{name: "missing", setup: func(*http.Request) {}, wantCode: http.StatusUnauthorized},
		{name: "garbage", setup: func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer nope") }, wantCode: http.StatusUnauthorized},
		{name: "bearer", setup: func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+sign(t, 5, "user")) }, wantCode: http.StatusOK, wantUser: 5},
		{name: "cookie", setup: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AccessCookie, Value: sign(t, 9, "user")}) }, wantCode: http.StatusOK, wantUser: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)

			rec, uid, err := run(t, m.RequireAuth, req)
			if tt.wantCode == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.Equal(t, tt.wantUser, uid)
				return
			}
			assert.Equal(t, tt.wantCode, httpCode(t, err))
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()
	m := NewAuth(secret)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+sign(t, 2, "user"))
	_, _, err := run(t, m.RequireAdmin, req)
	assert.Equal(t, http.StatusForbidden, httpCode(t, err))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+sign(t, 1, "admin"))
	rec, uid, err := run(t, m.RequireAdmin, req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(1), uid)
}
