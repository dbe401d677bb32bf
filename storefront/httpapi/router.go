package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/command/changeorderstatus"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/command/confirmorder"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/command/placeorder"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/command/removecancelledorder"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/query/allorders"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/query/customerorders"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/query/orderbyid"
	"github.com/AntonStoeckl/storefront-orders/storefront/pricing"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell"
)

const (
	defaultMaxUploadBytes = 10 << 20
	multipartMemory       = 1 << 20
	healthCheckTimeout    = 2 * time.Second
	invoiceRoute          = "/factures"

	logMsgRequest = "http request"

	logAttrMethod   = "method"
	logAttrPath     = "path"
	logAttrStatus   = "status"
	logAttrDuration = "duration_ms"
	logAttrErrors   = "errors"
)

// Handlers are the operations the API exposes, usually wrapped by the observable wrappers.
type Handlers struct {
	PlaceOrder           shell.CommandHandler[placeorder.Command, core.Order]
	ChangeOrderStatus    shell.CommandHandler[changeorderstatus.Command, core.Order]
	ConfirmOrder         shell.CommandHandler[confirmorder.Command, core.Order]
	RemoveCancelledOrder shell.CommandHandler[removecancelledorder.Command, core.Order]
	OrderByID            shell.QueryHandler[orderbyid.Query, core.Order]
	CustomerOrders       shell.QueryHandler[customerorders.Query, shell.OrderList]
	AllOrders            shell.QueryHandler[allorders.Query, shell.OrderList]
}

// TariffLister provides the selectable regions for the client region list.
type TariffLister interface {
	AvailableRegions() []pricing.Tariff
}

type server struct {
	handlers       Handlers
	tariffs        TariffLister
	verifier       TokenVerifier
	policy         *RoutePolicy
	metrics        *HTTPMetrics
	metricsHandler http.Handler
	healthCheck    func(ctx context.Context) error
	maxUploadBytes int64
	invoiceDir     string
	now            func() time.Time
	logger         shell.Logger
}

// Option configures the router.
type Option func(*server)

// WithHTTPMetrics records request metrics.
func WithHTTPMetrics(metrics *HTTPMetrics) Option {
	return func(s *server) {
		s.metrics = metrics
	}
}

// WithMetricsHandler serves handler on GET /metrics, typically promhttp.HandlerFor(registry, ...).
func WithMetricsHandler(handler http.Handler) Option {
	return func(s *server) {
		s.metricsHandler = handler
	}
}

// WithHealthCheck makes GET /healthz report 503 when check fails.
func WithHealthCheck(check func(ctx context.Context) error) Option {
	return func(s *server) {
		s.healthCheck = check
	}
}

// WithMaxUploadBytes limits the size of an order submission including its invoice.
func WithMaxUploadBytes(n int64) Option {
	return func(s *server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithInvoiceFiles serves the stored invoice documents of dir under /factures.
func WithInvoiceFiles(dir string) Option {
	return func(s *server) {
		s.invoiceDir = dir
	}
}

// WithClock replaces time.Now as the source of command timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *server) {
		s.now = now
	}
}

// WithLogger logs one line per request.
func WithLogger(logger shell.Logger) Option {
	return func(s *server) {
		s.logger = logger
	}
}

// NewRouter builds the gin engine with all routes.
func NewRouter(handlers Handlers, tariffs TariffLister, verifier TokenVerifier, policy *RoutePolicy, opts ...Option) *gin.Engine {
	s := &server{
		handlers:       handlers,
		tariffs:        tariffs,
		verifier:       verifier,
		policy:         policy,
		maxUploadBytes: defaultMaxUploadBytes,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.MaxMultipartMemory = multipartMemory
	engine.Use(gin.Recovery())

	if s.logger != nil {
		engine.Use(s.logRequests())
	}

	if s.metrics != nil {
		engine.Use(s.metrics.middleware())
	}

	engine.Use(authenticate(s.verifier), authorize(s.policy))

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, envelope{Success: false, Message: "route introuvable"})
	})

	engine.GET("/healthz", s.health)

	if s.metricsHandler != nil {
		engine.GET("/metrics", gin.WrapH(s.metricsHandler))
	}

	if s.invoiceDir != "" {
		engine.Static(invoiceRoute, s.invoiceDir)
	}

	api := engine.Group("/api")
	api.GET("/livraison/tarifs", s.listTariffs)

	orders := api.Group("/commandes")
	orders.POST("", s.placeOrder)
	orders.GET("", s.listCustomerOrders)
	orders.GET("/:id", s.getOrder)
	orders.PATCH("/:id/statut", s.changeStatusAsCustomer)

	admin := api.Group("/admin/commandes")
	admin.GET("", s.listAllOrders)
	admin.PATCH("/:id/statut", s.changeStatusAsAdmin)
	admin.POST("/:id/confirmer", s.confirmOrder)
	admin.DELETE("/:id", s.removeCancelledOrder)

	return engine
}

func (s *server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			logAttrMethod, c.Request.Method,
			logAttrPath, c.Request.URL.Path,
			logAttrStatus, c.Writer.Status(),
			logAttrDuration, time.Since(start).Milliseconds(),
		}

		if len(c.Errors) > 0 {
			args = append(args, logAttrErrors, c.Errors.String())
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			s.logger.Error(logMsgRequest, args...)
		case c.Writer.Status() >= http.StatusBadRequest:
			s.logger.Warn(logMsgRequest, args...)
		default:
			s.logger.Debug(logMsgRequest, args...)
		}
	}
}

func (s *server) health(c *gin.Context) {
	if s.healthCheck != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		if err := s.healthCheck(ctx); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, envelope{Success: false, Message: "unavailable"})

			return
		}
	}

	respond(c, http.StatusOK, gin.H{"status": "ok"})
}

func (s *server) listTariffs(c *gin.Context) {
	respond(c, http.StatusOK, tariffResponsesFrom(s.tariffs.AvailableRegions()))
}
