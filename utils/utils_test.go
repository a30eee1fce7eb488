package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCents(t *testing.T) {
	cases := map[int64]string{
		0:          "$0.00",
		5:          "$0.05",
		1999:       "$19.99",
		100000:     "$1,000.00",
		1234550:    "$12,345.50",
		-250:       "-$2.50",
		1000000000: "$10,000,000.00",
	}
	for cents, want := range cases {
		assert.Equal(t, want, FormatCents(cents), "%d", cents)
	}
}

func TestStaffToken(t *testing.T) {
	branch := uint(2)
	token, err := GenerateToken(10, "WAITER", &branch, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(10), claims.UserID)
	assert.Equal(t, "WAITER", claims.Role)
	require.NotNil(t, claims.BranchID)
	assert.Equal(t, branch, *claims.BranchID)
}

func TestTokensDoNotCrossScopes(t *testing.T) {
	session := uint(5)
	tableToken, _, err := GenerateTableToken(3, 1, &session, time.Hour)
	require.NoError(t, err)
	trackToken, err := GenerateTrackingToken(9, "ABCD1234", time.Hour)
	require.NoError(t, err)
	staffToken, err := GenerateToken(1, "ADMIN", nil, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tableToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = ParseTableToken(staffToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = ParseTrackingToken(tableToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	tc, err := ParseTableToken(tableToken)
	require.NoError(t, err)
	assert.Equal(t, uint(3), tc.TableID)
	require.NotNil(t, tc.SessionID)
	assert.Equal(t, session, *tc.SessionID)

	oc, err := ParseTrackingToken(trackToken)
	require.NoError(t, err)
	assert.Equal(t, "ABCD1234", oc.PublicCode)
}

func TestExpiredAndForgedTokens(t *testing.T) {
	expired, err := GenerateToken(1, "ADMIN", nil, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	good, err := GenerateToken(1, "ADMIN", nil, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(good + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = ParseToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBlacklistedTokenIsRejected(t *testing.T) {
	token, err := GenerateToken(4, "KITCHEN", nil, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(token)
	require.NoError(t, err)

	BlacklistToken(token, time.Now().Add(time.Hour))
	assert.True(t, IsTokenBlacklisted(token))
	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	BlacklistToken("stale", time.Now().Add(-time.Second))
	assert.False(t, IsTokenBlacklisted("stale"))
}

func TestAppErrorStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation("x").StatusCode())
	assert.Equal(t, http.StatusBadRequest, Conflict("x").StatusCode())
	assert.Equal(t, http.StatusNotFound, NotFound("x").StatusCode())
	assert.Equal(t, http.StatusForbidden, Forbidden("x").StatusCode())
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("x").StatusCode())
	assert.Equal(t, http.StatusTooManyRequests, TooManyRequests("x").StatusCode())

	wrapped := fmt.Errorf("close: %w", Conflict("table %d busy", 4))
	assert.True(t, IsKind(wrapped, KindConflict))
	assert.False(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(errors.New("plain"), KindConflict))
	assert.Equal(t, "table 4 busy", Conflict("table %d busy", 4).Error())
}

func TestRespondAppError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	InitLoggerWithLevel("error")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	RespondAppError(c, NotFound("order not found"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status":false,"message":"order not found"}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	RespondAppError(c, errors.New("db exploded"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
	assert.NotContains(t, w.Body.String(), "exploded")
}
