package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/joxgallardo/sparkchat-sub001/internal/api/handler"
	"github.com/joxgallardo/sparkchat-sub001/internal/api/middleware"
	"github.com/joxgallardo/sparkchat-sub001/internal/core/ports"
)

// Deps carries everything the router needs. Mongo/Redis handles may be nil
// when the in-memory stores are in use; they only feed the readiness probe.
type Deps struct {
	Identity      ports.IdentityService
	Sessions      ports.SessionService
	Wallet        ports.WalletService
	Dispatcher    handler.MessageDispatcher
	SessionWindow time.Duration
	WebhookSecret string
	Mongo         *mongo.Database
	Redis         *redis.Client
	Logger        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("sparkchat"))

	// --- Handlers ---
	messageHandler := handler.NewMessageHandler(deps.Dispatcher)
	walletHandler := handler.NewWalletHandler(deps.Wallet)
	sessionHandler := handler.NewSessionHandler(deps.Sessions, deps.SessionWindow)
	accountHandler := handler.NewAccountHandler(deps.Identity)
	auth := middleware.Auth(deps.WebhookSecret)

	// --- API routes (machine callers: the bot and provisioning jobs) ---
	v1 := e.Group("/v1", auth)
	v1.POST("/messages", messageHandler.Receive)
	v1.POST("/wallet/invoices", walletHandler.CreateInvoice)
	v1.GET("/wallet/nodes", walletHandler.GetNodeStatus)
	v1.GET("/sessions/:platform_id", sessionHandler.Get)
	v1.PUT("/sessions/:platform_id/preferences", sessionHandler.SetPreference)
	v1.POST("/sessions/:platform_id/authenticate", sessionHandler.Authenticate)
	v1.POST("/accounts/:platform_id/register", accountHandler.Register)
	v1.PUT("/accounts/:account_id/wallet", accountHandler.ProvisionWallet)
	v1.GET("/accounts/:account_id/wallet", accountHandler.GetWalletConfig)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
