// Package middleware provides authentication and request-scoped middleware for the application.
package middleware

import (
	"context"
	"errors"
	"strings"

	"knowhere/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// LocalIdentity is the fiber locals key holding the verified *Identity.
const LocalIdentity = "identity"

var (
	errMissingSubject = errors.New("missing subject claim")
	errTokenInvalid   = errors.New("invalid or expired token")
)

// Identity is the caller resolved from a verified identity-provider token.
// UserID is the provider's stable subject and doubles as the profile id.
type Identity struct {
	UserID    string
	Username  string
	FullName  string
	AvatarURL string
	TokenID   string
}

// TokenVerifier validates HMAC-signed bearer tokens.
type TokenVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewTokenVerifier creates a verifier. Empty issuer or audience disables that check.
func NewTokenVerifier(secret, issuer, audience string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), issuer: issuer, audience: audience}
}

// Verify parses tokenString and returns the identity it carries.
func (v *TokenVerifier) Verify(tokenString string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, errTokenInvalid
	}

	sub, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return nil, errMissingSubject
	}

	id := &Identity{UserID: sub}
	id.Username = firstClaim(claims, "username", "preferred_username")
	id.FullName = firstClaim(claims, "name", "full_name")
	id.AvatarURL = firstClaim(claims, "picture", "image_url")
	id.TokenID, _ = claims["jti"].(string)
	return id, nil
}

func firstClaim(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if v, ok := claims[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) string {
	parts := strings.Split(c.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// AuthRequired rejects requests without a valid bearer token. Tokens whose jti
// is present under "blacklist:<jti>" in Redis are treated as revoked.
func AuthRequired(v *TokenVerifier, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := BearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		id, err := v.Verify(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		if id.TokenID != "" && rdb != nil {
			revoked, err := rdb.Exists(c.UserContext(), "blacklist:"+id.TokenID).Result()
			if err == nil && revoked > 0 {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		SetIdentity(c, id)
		return c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid bearer token is
// present and lets anonymous or badly authenticated requests through as anonymous.
func OptionalAuth(v *TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString := BearerToken(c); tokenString != "" {
			if id, err := v.Verify(tokenString); err == nil {
				SetIdentity(c, id)
			}
		}
		return c.Next()
	}
}

// CallerID returns the authenticated subject, or "" for anonymous callers.
func CallerID(c *fiber.Ctx) string {
	if id, ok := CurrentIdentity(c); ok {
		return id.UserID
	}
	return ""
}

// SetIdentity stores id in fiber locals and in the user context for logging.
func SetIdentity(c *fiber.Ctx, id *Identity) {
	c.Locals(LocalIdentity, id)
	c.Locals(LocalUserID, id.UserID)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, id.UserID))
}

// CurrentIdentity returns the identity set by AuthRequired, if any.
func CurrentIdentity(c *fiber.Ctx) (*Identity, bool) {
	id, ok := c.Locals(LocalIdentity).(*Identity)
	return id, ok && id != nil
}
