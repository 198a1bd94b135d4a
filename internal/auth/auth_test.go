package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "operator-secret"

func TestIssueParse(t *testing.T) {
	tok, exp, err := Issue("alice", RoleOperator, testKey, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := Parse(tok, testKey)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, RoleOperator, claims.Role)

	_, err = Parse(tok, "other-key")
	assert.Error(t, err)
}

func TestIssue_RequiresKey(t *testing.T) {
	_, _, err := Issue("alice", RoleOperator, "", time.Hour)
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	tok, _, err := Issue("alice", RoleOperator, testKey, -time.Minute)
	require.NoError(t, err)
	_, err = Parse(tok, testKey)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParse_WrongIssuer(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: RoleOperator,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testKey))
	require.NoError(t, err)

	_, err = Parse(tok, testKey)
	assert.Error(t, err)
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireRole(testKey, RoleOperator), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	operator, _, err := Issue("alice", RoleOperator, testKey, time.Hour)
	require.NoError(t, err)
	viewer, _, err := Issue("bob", "viewer", testKey, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer " + viewer, http.StatusForbidden},
		{"operator", "Bearer " + operator, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
