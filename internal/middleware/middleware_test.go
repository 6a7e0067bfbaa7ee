package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritik/event-backend/internal/config"
	"github.com/ritik/event-backend/internal/utils"

	"github.com/google/uuid"
)

func doRequest(e *echo.Echo, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	e := echo.New()
	e.GET("/p", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, JWTAuth("secret"))

	rec := doRequest(e, http.MethodGet, "/p", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsBadSignature(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", uuid.New(), "ATTENDEE", 5)
	require.NoError(t, err)

	e := echo.New()
	e.GET("/p", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, JWTAuth("secret"))

	rec := doRequest(e, http.MethodGet, "/p", tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthInjectsClaims(t *testing.T) {
	userID := uuid.New()
	tok, err := utils.NewAccessToken("secret", userID, "STAFF", 5)
	require.NoError(t, err)

	e := echo.New()
	e.GET("/p", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"uid": c.Get("user_id"), "role": c.Get("role")})
	}, JWTAuth("secret"))

	rec := doRequest(e, http.MethodGet, "/p", tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), userID.String())
	assert.Contains(t, rec.Body.String(), "STAFF")
}

func TestRequireRole(t *testing.T) {
	userID := uuid.New()
	tok, err := utils.NewAccessToken("secret", userID, "ATTENDEE", 5)
	require.NoError(t, err)

	e := echo.New()
	h := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/staff", h, JWTAuth("secret"), RequireRole("STAFF"))
	e.GET("/any", h, JWTAuth("secret"), RequireRole("STAFF", "ATTENDEE"))

	assert.Equal(t, http.StatusForbidden, doRequest(e, http.MethodGet, "/staff", tok.Token).Code)
	assert.Equal(t, http.StatusOK, doRequest(e, http.MethodGet, "/any", tok.Token).Code)
}

func TestCachePayloadRoundTrip(t *testing.T) {
	body := []byte(`{"items":[]}`)
	raw := encodePayload(http.StatusOK, echo.MIMEApplicationJSON, body)

	status, contentType, got, err := decodePayload(raw)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, echo.MIMEApplicationJSON, contentType)
	assert.Equal(t, body, got)
}

func TestDecodePayloadRejectsTruncated(t *testing.T) {
	_, _, _, err := decodePayload([]byte{0x01})
	assert.Error(t, err)

	// Header claims a longer content type than the payload carries.
	raw := encodePayload(http.StatusOK, "application/json", nil)
	_, _, _, err = decodePayload(raw[:5])
	assert.Error(t, err)
}

func TestBuildRateKeyStrategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/events?q=rock", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/events")
	c.Set("user_id", "u-1")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}
	key := buildRateKey(cfg, c)
	assert.Contains(t, key, "rl:")
	assert.Contains(t, key, "user:u-1")
	assert.Contains(t, key, "GET /v1/events")

	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:u-1", buildRateKey(cfg, c))
}

func TestBuildRateKeyAnonymous(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}
	assert.Equal(t, "rl:user:anon", buildRateKey(cfg, c))
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(7), asInt64(int64(7)))
	assert.Equal(t, int64(7), asInt64(7))
	assert.Equal(t, int64(7), asInt64(float64(7)))
	assert.Equal(t, int64(7), asInt64("7"))
	assert.Equal(t, int64(0), asInt64("nope"))
	assert.Equal(t, int64(0), asInt64(nil))
}
