package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"agency-portal/internal/config"
	"agency-portal/internal/identity"
	"agency-portal/internal/models"
)

const (
	UserIDKey      = "user_id"
	IdentityKey    = "identity"
	AccessTokenKey = "access_token"
)

// IdentityResolver turns a verified token subject into a portal identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID, email string) (identity.Identity, error)
}

// AuthMiddleware verifies the Supabase access token (HS256, signed with the
// project JWT secret) and stores the resolved identity on the context. The
// token is read from the Authorization header only.
func AuthMiddleware(cfg *config.Config, resolver IdentityResolver) gin.HandlerFunc {
	return authenticate(cfg, resolver, false)
}

// StreamAuthMiddleware is AuthMiddleware for server-sent event routes.
// Browsers cannot set headers on EventSource requests, so the token may
// also arrive as ?access_token=.
func StreamAuthMiddleware(cfg *config.Config, resolver IdentityResolver) gin.HandlerFunc {
	return authenticate(cfg, resolver, true)
}

func authenticate(cfg *config.Config, resolver IdentityResolver, allowQueryToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c, allowQueryToken)
		if err != nil {
			abort(c, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			if cfg.SupabaseJWTSecret == "" {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.SupabaseJWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			var message string
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				message = "token has expired"
			case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
				message = "token signature is invalid"
			case errors.Is(err, jwt.ErrTokenMalformed):
				message = "token is malformed"
			default:
				message = "token is invalid"
			}
			abort(c, http.StatusUnauthorized, "invalid token", message)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			abort(c, http.StatusUnauthorized, "invalid token", "token claims are invalid")
			return
		}

		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid token", "missing user id in token")
			return
		}
		email, _ := claims["email"].(string)

		id, err := resolver.Resolve(c.Request.Context(), userID, email)
		if err != nil {
			abort(c, http.StatusInternalServerError, "internal error", "failed to load user profile")
			return
		}

		c.Set(UserIDKey, sub)
		c.Set(IdentityKey, id)
		c.Set(AccessTokenKey, tokenString)
		c.Next()
	}
}

func bearerToken(c *gin.Context, allowQueryToken bool) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if q := c.Query("access_token"); allowQueryToken && q != "" {
			return q, nil
		}
		return "", errors.New("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return "", errors.New("empty token")
	}

	// Some clients URL-encode the token.
	if decoded, err := url.QueryUnescape(tokenString); err == nil {
		tokenString = decoded
	}
	return tokenString, nil
}

// CurrentIdentity returns the identity stored by AuthMiddleware.
func CurrentIdentity(c *gin.Context) (identity.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return identity.Identity{}, false
	}
	id, ok := v.(identity.Identity)
	return id, ok
}

func abort(c *gin.Context, status int, errText, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: errText, Message: message})
}
