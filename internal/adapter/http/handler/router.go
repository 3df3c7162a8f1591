package handler

import (
	"qrpay-gateway/internal/adapter/http/middleware"
	redisStore "qrpay-gateway/internal/adapter/storage/redis"
	"qrpay-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	OrderSvc       ports.OrderService
	ReconcileSvc   ports.ReconcileService
	CallbackSvc    ports.CallbackService
	AdminSvc       ports.AdminService
	CredResolver   ports.CredentialResolver
	TokenSvc       ports.TokenService
	Pollers        ports.PollerRegistry
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// --- Merchant protocol (MD5-signed form requests) ---
	paymentHandler := NewPaymentHandler(deps.OrderSvc, deps.ReconcileSvc, deps.CallbackSvc, deps.CredResolver, deps.Pollers)
	pay := r.Group("/pay")
	{
		pay.POST("/create", rl("pay_create"), paymentHandler.Create)
		pay.GET("/query", rl("pay_query"), paymentHandler.Query)
		pay.GET("/status/:trade_no", paymentHandler.Status)
		pay.GET("/page/:trade_no", paymentHandler.Page)
	}

	// --- Ops API (JWT-authenticated) ---
	adminHandler := NewAdminHandler(deps.AdminSvc, deps.OrderSvc, deps.CallbackSvc, deps.ReconcileSvc, deps.Pollers)
	admin := r.Group("/admin")
	{
		admin.POST("/login", rl("admin_login"), adminHandler.Login)

		jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
		protected := admin.Group("", jwtAuth)
		{
			protected.POST("/merchants", adminHandler.CreateMerchant)
			protected.GET("/merchants", adminHandler.ListMerchants)
			protected.POST("/merchants/:pid/rotate-key", adminHandler.RotateKey)
			protected.POST("/merchants/:pid/active", adminHandler.SetActive)
			protected.POST("/credentials", adminHandler.CreateCredential)
			protected.GET("/credentials", adminHandler.ListCredentials)
			protected.POST("/orders/:trade_no/notify", adminHandler.Renotify)
			protected.POST("/orders/:trade_no/cancel", adminHandler.CancelOrder)
			protected.GET("/balance-logs", adminHandler.BalanceLogs)
		}
	}

	return r
}
