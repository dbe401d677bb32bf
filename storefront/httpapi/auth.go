package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/AntonStoeckl/storefront-orders/storefront/core"
)

const actorContextKey = "storefront.actor"

var (
	// ErrInvalidToken is returned for tokens that fail signature, expiry, or claim checks.
	ErrInvalidToken = errors.New("invalid bearer token")

	// ErrUnauthenticated is returned when a route requires an identity and none was presented.
	ErrUnauthenticated = errors.New("authentication required")
)

// Claims is the token payload issued by the auth service.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenVerifier checks HS256 bearer tokens.
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a verifier; an empty issuer skips the issuer check.
func NewTokenVerifier(secret, issuer string) TokenVerifier {
	return TokenVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify returns the actor the token identifies.
func (v TokenVerifier) Verify(raw string) (core.Actor, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}

	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}

	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return core.Actor{}, errors.Join(ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return core.Actor{}, errors.Join(ErrInvalidToken, errors.New("missing subject"))
	}

	switch core.Role(claims.Role) {
	case core.RoleAdmin:
		return core.AdminActor(claims.Subject), nil
	case core.RoleCustomer, "":
		return core.CustomerActor(claims.Subject), nil
	default:
		return core.Actor{}, errors.Join(ErrInvalidToken, errors.New("unknown role "+claims.Role))
	}
}

// Sign issues a token for the actor. The auth service owns token issuance in production;
// this exists for local tooling and tests.
func (v TokenVerifier) Sign(actor core.Actor, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// authenticate resolves the request's actor. A missing header means guest; a malformed or
// invalid token is rejected with 401 rather than silently downgraded.
func authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Set(actorContextKey, core.GuestActor())
			c.Next()

			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			abortWithError(c, http.StatusUnauthorized, ErrInvalidToken)
			return
		}

		actor, err := verifier.Verify(token)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, err)
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

func actorFrom(c *gin.Context) core.Actor {
	if v, ok := c.Get(actorContextKey); ok {
		if actor, isActor := v.(core.Actor); isActor {
			return actor
		}
	}

	return core.GuestActor()
}
