package middleware

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

var testSecret = []byte("test-jwt-secret-key-32-characters")

func signed(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod, key any) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"uid":  "42",
		"role": "user",
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}
}

func newAuthRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", mw, func(c *gin.Context) {
		userID, _ := c.Get(UserIDKey)
		role, _ := c.Get(UserRoleKey)
		c.JSON(http.StatusOK, gin.H{"uid": userID, "role": role})
	})
	return r
}

func probe(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()
	noExp := validClaims()
	delete(noExp, "exp")
	future := validClaims()
	future["iat"] = time.Now().Add(time.Hour).Unix()
	numericUID := validClaims()
	numericUID["uid"] = 7
	noUID := validClaims()
	delete(noUID, "uid")
	badRole := validClaims()
	badRole["role"] = "chef"
	noRole := validClaims()
	delete(noRole, "role")
	zeroUID := validClaims()
	zeroUID["uid"] = "0"

	testCases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"valid token", "Bearer " + signed(t, validClaims(), jwt.SigningMethodHS256, testSecret), http.StatusOK},
		{"numeric uid", "Bearer " + signed(t, numericUID, jwt.SigningMethodHS256, testSecret), http.StatusOK},
		{"wrong secret", "Bearer " + signed(t, validClaims(), jwt.SigningMethodHS256, []byte("other")), http.StatusUnauthorized},
		{"expired", "Bearer " + signed(t, expired, jwt.SigningMethodHS256, testSecret), http.StatusUnauthorized},
		{"no expiry", "Bearer " + signed(t, noExp, jwt.SigningMethodHS256, testSecret), http.StatusUnauthorized},
		{"issued in future", "Bearer " + signed(t, future, jwt.SigningMethodHS256, testSecret), http.StatusUnauthorized},
		{"none algorithm", "Bearer " + signed(t, validClaims(), jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType), http.StatusUnauthorized},
		{"missing uid", "Bearer " + signed(t, noUID, jwt.SigningMethodHS256, testSecret), http.StatusUnauthorized},
		{"zero uid", "Bearer " + signed(t, zeroUID, jwt.SigningMethodHS256, testSecret), http.StatusUnauthorized},
		{"unknown role", "Bearer " + signed(t, badRole, jwt.SigningMethodHS256, testSecret), http.StatusUnauthorized},
		{"missing role", "Bearer " + signed(t, noRole, jwt.SigningMethodHS256, testSecret), http.StatusUnauthorized},
	}

	r := newAuthRouter(JWTAuth(testSecret))
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			w := probe(r, tt.header)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), `"code"`)
				assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestJWTAuthSetsContext(t *testing.T) {
	r := newAuthRouter(JWTAuth(testSecret))
	w := probe(r, "Bearer "+signed(t, validClaims(), jwt.SigningMethodHS256, testSecret))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":42,"role":"user"}`, w.Body.String())
}

func TestOptionalJWTAuth(t *testing.T) {
	r := newAuthRouter(OptionalJWTAuth(testSecret))

	anon := probe(r, "")
	require.Equal(t, http.StatusOK, anon.Code)
	assert.JSONEq(t, `{"uid":null,"role":null}`, anon.Body.String())

	assert.Equal(t, http.StatusUnauthorized, probe(r, "Bearer broken").Code)
	assert.Equal(t, http.StatusOK, probe(r, "Bearer "+signed(t, validClaims(), jwt.SigningMethodHS256, testSecret)).Code)
}

func TestNewAccessTokenRoundTrip(t *testing.T) {
	token, err := NewAccessToken(9, "admin", time.Minute, testSecret)
	require.NoError(t, err)

	userID, role, err := ParseAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(9), userID)
	assert.Equal(t, "admin", role)

	_, _, err = ParseAccessToken(token, []byte("another-secret"))
	assert.Error(t, err)
}
