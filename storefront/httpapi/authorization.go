package httpapi

import (
	_ "embed"
	"errors"
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/gin-gonic/gin"

	"github.com/AntonStoeckl/storefront-orders/storefront/core"
)

const roleGuest = "guest"

//go:embed policy/model.conf
var policyModel string

//go:embed policy/policy.csv
var policyRules string

var ErrLoadingPolicyFailed = errors.New("loading the route policy failed")

// RoutePolicy decides which role may call which route.
type RoutePolicy struct {
	enforcer *casbin.Enforcer
}

// NewRoutePolicy builds the enforcer from the embedded model and the embedded CSV policy.
func NewRoutePolicy() (*RoutePolicy, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, errors.Join(ErrLoadingPolicyFailed, err)
	}

	enforcer, err := casbin.NewEnforcer(m, stringadapter.NewAdapter(policyRules))
	if err != nil {
		return nil, errors.Join(ErrLoadingPolicyFailed, err)
	}

	return &RoutePolicy{enforcer: enforcer}, nil
}

// Allows reports whether the actor's role may call method on path.
func (p *RoutePolicy) Allows(actor core.Actor, path, method string) (bool, error) {
	return p.enforcer.Enforce(subjectOf(actor), path, method)
}

func subjectOf(actor core.Actor) string {
	if actor.IsGuest() {
		return roleGuest
	}

	return string(actor.Role)
}

// authorize rejects requests the route policy does not allow: 401 for guests, 403 for everyone else.
func authorize(policy *RoutePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		// unmatched routes fall through to the 404 handler
		if c.FullPath() == "" {
			c.Next()
			return
		}

		actor := actorFrom(c)

		allowed, err := policy.Allows(actor, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, err)
			return
		}

		if allowed {
			c.Next()
			return
		}

		if actor.IsGuest() {
			abortWithError(c, http.StatusUnauthorized, ErrUnauthenticated)
			return
		}

		abortWithError(c, http.StatusForbidden, core.ErrAdminOnly)
	}
}
