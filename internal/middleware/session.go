package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SergeiKhy/golink/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionCookie = "golink_session"
	stateCookie   = "golink_oauth_state"
	stateTTL      = 10 * time.Minute
)

var ErrNoSession = errors.New("no session")

// SessionClaims is the signed content of the session cookie. The subject is
// the Discord user id.
type SessionClaims struct {
	AccessToken string `json:"tok"`
	jwt.RegisteredClaims
}

// Sessions issues and reads the HS256 session cookie and the OAuth state cookie.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewSessions(cfg config.AuthConfig) *Sessions {
	return &Sessions{
		secret: []byte(cfg.SessionSecret),
		ttl:    cfg.SessionTTL,
		secure: cfg.SecureCookies,
	}
}

func (s *Sessions) Issue(c *gin.Context, userID, accessToken string) error {
	now := time.Now()
	claims := &SessionClaims{
		AccessToken: accessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	s.setCookie(c, SessionCookie, signed, s.ttl)
	return nil
}

// Read returns the claims of a valid, unexpired session cookie.
func (s *Sessions) Read(c *gin.Context) (*SessionClaims, error) {
	raw, err := c.Cookie(SessionCookie)
	if err != nil || raw == "" {
		return nil, ErrNoSession
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid session: %w", err)
	}
	if claims.Subject == "" || claims.AccessToken == "" {
		return nil, ErrNoSession
	}

	return claims, nil
}

func (s *Sessions) Clear(c *gin.Context) {
	s.setCookie(c, SessionCookie, "", -1)
}

// NewState stores a random OAuth state in a short-lived cookie and returns it.
func (s *Sessions) NewState(c *gin.Context) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(b)
	s.setCookie(c, stateCookie, state, stateTTL)
	return state, nil
}

// CheckState consumes the state cookie and compares it with state.
func (s *Sessions) CheckState(c *gin.Context, state string) bool {
	expected, err := c.Cookie(stateCookie)
	s.setCookie(c, stateCookie, "", -1)
	if err != nil || expected == "" || state == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(state)) == 1
}

func (s *Sessions) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	maxAge := int(ttl / time.Second)
	if ttl < 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", s.secure, true)
}
