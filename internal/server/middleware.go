package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/smukkama/aquasure-server/internal/auth"
	"github.com/smukkama/aquasure-server/internal/logger"
)

const identityKey = "identity"

// TokenVerifier turns a bearer token into an identity
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// CORS allows the dashboard origins to call the API with credentials
func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's identity on the context
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			abortError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireMutate lets through only roles allowed to change records
func RequireMutate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var role auth.Role
		if identity := currentIdentity(c); identity != nil {
			role = identity.Role
		}
		if err := auth.Authorize(role); err != nil {
			abortError(c, http.StatusForbidden, "forbidden", err.Error())
			return
		}
		c.Next()
	}
}

// RequestLogger logs one line per request, at a level matching the status
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if identity := currentIdentity(c); identity != nil {
			fields = append(fields, "user_id", identity.UserID.String(), "role", string(identity.Role))
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func currentIdentity(c *gin.Context) *auth.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*auth.Identity)
	return identity
}
