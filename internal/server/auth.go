package server

import (
	"net/http"
	"strings"

	"ghpool-go/internal/config"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig holds the management key material. A plain key and a bcrypt
// hash may both be set; either grants access.
type AuthConfig struct {
	Key     string
	KeyHash string
}

// NewAuthConfig extracts the management auth settings from the runtime config.
func NewAuthConfig(cfg *config.Config) *AuthConfig {
	return &AuthConfig{
		Key:     cfg.ManagementKey,
		KeyHash: cfg.ManagementKeyHash,
	}
}

// Enabled reports whether any key material is configured. With none set the
// management routes refuse all access rather than running open.
func (a *AuthConfig) Enabled() bool {
	return a.Key != "" || a.KeyHash != ""
}

// Validate checks a presented key against the plain key and the bcrypt hash.
func (a *AuthConfig) Validate(key string) bool {
	if key == "" {
		return false
	}
	if a.Key != "" && key == a.Key {
		return true
	}
	if a.KeyHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(a.KeyHash), []byte(key)); err == nil {
			return true
		}
	}
	return false
}

// extractKey pulls the management key from the request: Bearer header,
// x-api-key header, or key query parameter, in that order.
func extractKey(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if apiKey := c.GetHeader("x-api-key"); apiKey != "" {
		return apiKey
	}
	return c.Query("key")
}

// RequireAuth guards the management routes.
func RequireAuth(auth *AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.Enabled() {
			log.Warn("management request rejected: no management key configured")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "management access disabled: no key configured",
			})
			return
		}
		if !auth.Validate(extractKey(c)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid management key",
			})
			return
		}
		c.Next()
	}
}
