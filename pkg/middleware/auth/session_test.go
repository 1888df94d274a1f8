package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/product_dashboard/pkg/tokens"
)

var secret = []byte("test-session-secret")

func newCtx(cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func cookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookie {
			return ck
		}
	}
	t.Fatalf("no %s cookie set", SessionCookie)
	return nil
}

func TestSessionManager_LoadWithoutCookie(t *testing.T) {
	m := NewSessionManager(secret, time.Hour, false, "LOGIN")
	c, _ := newCtx()

	claims := m.Load(c)
	assert.Equal(t, "LOGIN", claims.Step)
	assert.Empty(t, claims.Identifier)
}

func TestSessionManager_SaveThenLoad(t *testing.T) {
	m := NewSessionManager(secret, time.Hour, true, "LOGIN")
	c, rec := newCtx()
	require.NoError(t, m.Save(c, &tokens.SessionClaims{Step: "OTP", Identifier: "a@b.co", Tab: "Unpublished"}))

	ck := cookieFrom(t, rec)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)

	c2, _ := newCtx(&http.Cookie{Name: SessionCookie, Value: ck.Value})
	claims := m.Load(c2)
	assert.Equal(t, "OTP", claims.Step)
	assert.Equal(t, "a@b.co", claims.Identifier)
	assert.Equal(t, "Unpublished", claims.Tab)
}

func TestSessionManager_TamperedCookieIsFresh(t *testing.T) {
	m := NewSessionManager(secret, time.Hour, false, "LOGIN")
	other := NewSessionManager([]byte("other"), time.Hour, false, "LOGIN")
	c, rec := newCtx()
	require.NoError(t, other.Save(c, &tokens.SessionClaims{Step: "DASHBOARD"}))

	c2, rec2 := newCtx(&http.Cookie{Name: SessionCookie, Value: cookieFrom(t, rec).Value})
	assert.Equal(t, "LOGIN", m.Load(c2).Step)
	assert.Equal(t, -1, cookieFrom(t, rec2).MaxAge, "bad cookie is cleared")
}

func TestSessionManager_RequireStep(t *testing.T) {
	m := NewSessionManager(secret, time.Hour, false, "LOGIN")
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	c, _ := newCtx()
	err := m.RequireStep("DASHBOARD")(ok)(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)

	saveCtx, saveRec := newCtx()
	require.NoError(t, m.Save(saveCtx, &tokens.SessionClaims{Step: "DASHBOARD"}))
	c2, rec2 := newCtx(&http.Cookie{Name: SessionCookie, Value: cookieFrom(t, saveRec).Value})
	require.NoError(t, m.RequireStep("DASHBOARD")(ok)(c2))
	assert.Equal(t, http.StatusOK, rec2.Code)
	assert.Empty(t, rec2.Result().Cookies(), "fresh session is not renewed")
}

func TestSessionManager_RequireStepRenewsOldSession(t *testing.T) {
	m := NewSessionManager(secret, time.Hour, false, "LOGIN")
	saveCtx, saveRec := newCtx()
	require.NoError(t, m.Save(saveCtx, &tokens.SessionClaims{Step: "DASHBOARD"}))

	m.Now = func() time.Time { return time.Now().Add(40 * time.Minute) }
	c, rec := newCtx(&http.Cookie{Name: SessionCookie, Value: cookieFrom(t, saveRec).Value})
	require.NoError(t, m.RequireStep("DASHBOARD")(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c))

	renewed := cookieFrom(t, rec)
	assert.NotEmpty(t, renewed.Value)
}

func TestSessionManager_Clear(t *testing.T) {
	m := NewSessionManager(secret, time.Hour, false, "LOGIN")
	c, rec := newCtx()
	m.Clear(c)
	assert.Equal(t, -1, cookieFrom(t, rec).MaxAge)
	assert.Equal(t, "LOGIN", m.Load(c).Step)
}
