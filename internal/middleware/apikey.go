package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	apiKeyValidatedKey = "api_key_validated"
	apiKeyNameKey      = "api_key_name"
)

type APIKeyConfig struct {
	// ValidKeys maps API keys to the name of their owner.
	ValidKeys  map[string]string
	HeaderName string
}

// APIKey recognises programmatic admin clients. A request without a key
// passes through untouched so the session gate can still authenticate it;
// a request with an unknown key is rejected with an empty 401.
type APIKey struct {
	config APIKeyConfig
}

func NewAPIKey(config APIKeyConfig) *APIKey {
	if config.HeaderName == "" {
		config.HeaderName = "X-API-Key"
	}
	return &APIKey{config: config}
}

func (ak *APIKey) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(ak.config.HeaderName)
		if apiKey == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				apiKey = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if apiKey == "" {
			c.Set(apiKeyValidatedKey, false)
			c.Next()
			return
		}

		name, ok := ak.lookup(apiKey)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(apiKeyValidatedKey, true)
		c.Set(apiKeyNameKey, name)
		c.Next()
	}
}

func (ak *APIKey) lookup(apiKey string) (string, bool) {
	for key, name := range ak.config.ValidKeys {
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
			return name, true
		}
	}
	return "", false
}

// IsAPIKeyValidated reports whether the request presented a known API key.
func IsAPIKeyValidated(c *gin.Context) bool {
	return c.GetBool(apiKeyValidatedKey)
}

// APIKeyName returns the owner of the validated API key.
func APIKeyName(c *gin.Context) string {
	return c.GetString(apiKeyNameKey)
}
