package httpapi_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/httpapi"
)

func Test_RoutePolicy_Allows(t *testing.T) {
	// setup
	policy, err := httpapi.NewRoutePolicy()
	require.NoError(t, err)

	guest := core.GuestActor()
	customer := core.CustomerActor("cust-1")
	admin := core.AdminActor("admin-1")

	testCases := []struct {
		name     string
		actor    core.Actor
		path     string
		method   string
		expected bool
	}{
		{name: "guest places an order", actor: guest, path: "/api/commandes", method: "POST", expected: true},
		{name: "guest reads an order", actor: guest, path: "/api/commandes/5b0e", method: "GET", expected: true},
		{name: "guest downloads an invoice", actor: guest, path: "/factures/5b0e.pdf", method: "GET", expected: true},
		{name: "guest checks an invoice with HEAD", actor: guest, path: "/factures/5b0e.pdf", method: "HEAD", expected: true},
		{name: "guest deletes an invoice", actor: guest, path: "/factures/5b0e.pdf", method: "DELETE", expected: false},
		{name: "guest lists own orders", actor: guest, path: "/api/commandes", method: "GET", expected: false},
		{name: "guest changes a status", actor: guest, path: "/api/commandes/5b0e/statut", method: "PATCH", expected: false},
		{name: "customer lists own orders", actor: customer, path: "/api/commandes", method: "GET", expected: true},
		{name: "customer inherits guest routes", actor: customer, path: "/api/livraison/tarifs", method: "GET", expected: true},
		{name: "customer lists all orders", actor: customer, path: "/api/admin/commandes", method: "GET", expected: false},
		{name: "customer removes an order", actor: customer, path: "/api/admin/commandes/5b0e", method: "DELETE", expected: false},
		{name: "admin removes an order", actor: admin, path: "/api/admin/commandes/5b0e", method: "DELETE", expected: true},
		{name: "admin quick-confirms", actor: admin, path: "/api/admin/commandes/5b0e/confirmer", method: "POST", expected: true},
		{name: "admin inherits customer routes", actor: admin, path: "/api/commandes/5b0e/statut", method: "PATCH", expected: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			allowed, allowErr := policy.Allows(tc.actor, tc.path, tc.method)

			// assert
			require.NoError(t, allowErr)
			assert.Equal(t, tc.expected, allowed)
		})
	}
}

func Test_TokenVerifier_RoundTripsActors(t *testing.T) {
	// setup
	verifier := httpapi.NewTokenVerifier("secret", "storefront")

	for _, actor := range []core.Actor{core.CustomerActor("cust-1"), core.AdminActor("admin-1")} {
		// arrange
		token, err := verifier.Sign(actor, time.Hour)
		require.NoError(t, err)

		// act
		verified, verifyErr := verifier.Verify(token)

		// assert
		require.NoError(t, verifyErr)
		assert.Equal(t, actor, verified)
	}
}

func Test_TokenVerifier_Rejects(t *testing.T) {
	// setup
	verifier := httpapi.NewTokenVerifier("secret", "storefront")

	sign := func(claims jwt.Claims, method jwt.SigningMethod, key any) string {
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err, "error in arranging test data")

		return token
	}

	expiresAt := jwt.NewNumericDate(time.Now().Add(time.Hour))

	testCases := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{
			name:  "unknown role",
			token: sign(httpapi.Claims{Role: "superuser", RegisteredClaims: jwt.RegisteredClaims{Subject: "x", Issuer: "storefront", ExpiresAt: expiresAt}}, jwt.SigningMethodHS256, []byte("secret")),
		},
		{
			name:  "missing expiration",
			token: sign(httpapi.Claims{Role: "client", RegisteredClaims: jwt.RegisteredClaims{Subject: "x", Issuer: "storefront"}}, jwt.SigningMethodHS256, []byte("secret")),
		},
		{
			name:  "wrong issuer",
			token: sign(httpapi.Claims{Role: "client", RegisteredClaims: jwt.RegisteredClaims{Subject: "x", Issuer: "elsewhere", ExpiresAt: expiresAt}}, jwt.SigningMethodHS256, []byte("secret")),
		},
		{
			name:  "other HMAC algorithm",
			token: sign(httpapi.Claims{Role: "client", RegisteredClaims: jwt.RegisteredClaims{Subject: "x", Issuer: "storefront", ExpiresAt: expiresAt}}, jwt.SigningMethodHS512, []byte("secret")),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := verifier.Verify(tc.token)

			// assert
			assert.ErrorIs(t, err, httpapi.ErrInvalidToken)
		})
	}
}
