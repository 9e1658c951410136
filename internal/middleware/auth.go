package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by the auth middleware
const (
	UserIDKey   = "userID"
	UserRoleKey = "userRole"
)

// AccessClaims is the bearer token payload. UID may be encoded as a
// numeric string or a JSON number.
type AccessClaims struct {
	UID  any    `json:"uid"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuth requires a valid HMAC-signed Bearer token carrying uid and role
// claims, and stores them on the gin context.
func JWTAuth(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			respondWithAuthError(c, models.ErrUnauthorized,
				"Missing Authorization header. A valid Bearer token is required.")
			return
		}
		authenticate(c, jwtSecret)
	}
}

// OptionalJWTAuth lets anonymous requests through but still rejects a
// token that is present and invalid.
func OptionalJWTAuth(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		authenticate(c, jwtSecret)
	}
}

func authenticate(c *gin.Context, jwtSecret []byte) {
	// RFC 6750: Bearer scheme only
	scheme, tokenString, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || scheme != "Bearer" {
		respondWithAuthError(c, models.ErrInvalidRequest,
			"Authorization header must use Bearer scheme. Format: 'Bearer <token>'")
		return
	}
	if tokenString = strings.TrimSpace(tokenString); tokenString == "" {
		respondWithAuthError(c, models.ErrInvalidToken, "Bearer token is empty")
		return
	}

	userID, role, err := ParseAccessToken(tokenString, jwtSecret)
	if err != nil {
		respondWithAuthError(c, models.ErrInvalidToken, err.Error())
		return
	}

	c.Set(UserIDKey, userID)
	c.Set(UserRoleKey, role)
	c.Next()
}

func respondWithAuthError(c *gin.Context, code, description string) {
	c.Header("WWW-Authenticate", `Bearer realm="foodgram"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewAPIError(code, description))
}

// ParseAccessToken verifies the signature and time claims of tokenString
// and returns the user id and role it carries.
func ParseAccessToken(tokenString string, jwtSecret []byte) (uint, string, error) {
	var claims AccessClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		// Reject anything but HMAC to prevent algorithm confusion
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v. Expected HMAC", token.Header["alg"])
		}
		return jwtSecret, nil
	}, jwt.WithExpirationRequired(), jwt.WithIssuedAt(), jwt.WithLeeway(5*time.Second))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, "", errors.New("token has expired")
		case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
			return 0, "", errors.New("token not yet valid")
		}
		return 0, "", fmt.Errorf("token parsing failed: %w", err)
	}

	userID, err := extractUserID(claims.UID)
	if err != nil {
		return 0, "", err
	}
	role, err := extractRole(claims.Role)
	if err != nil {
		return 0, "", err
	}
	return userID, role, nil
}

// NewAccessToken signs a token in the format ParseAccessToken accepts
func NewAccessToken(userID uint, role string, ttl time.Duration, jwtSecret []byte) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UID:  strconv.FormatUint(uint64(userID), 10),
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

func extractUserID(uid any) (uint, error) {
	switch v := uid.(type) {
	case string:
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid uid claim format: must be a numeric string, got: %s", v)
		}
		if parsed == 0 {
			return 0, errors.New("invalid user identifier: cannot be zero")
		}
		return uint(parsed), nil
	case float64:
		if v <= 0 || v != float64(uint32(v)) {
			return 0, fmt.Errorf("invalid uid claim: must be a positive integer, got: %v", v)
		}
		return uint(v), nil
	case nil:
		return 0, errors.New("token missing required 'uid' claim. This token is not valid for this API")
	default:
		return 0, fmt.Errorf("invalid uid claim type %T", uid)
	}
}

// extractRole requires an explicit role; there is no default
func extractRole(role string) (string, error) {
	switch role {
	case models.RoleAdmin, models.RoleUser:
		return role, nil
	case "":
		return "", errors.New("token missing required 'role' claim. Tokens must explicitly specify user roles")
	default:
		return "", fmt.Errorf("invalid role '%s'. Allowed roles: admin, user", role)
	}
}
