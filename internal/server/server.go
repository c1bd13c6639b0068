package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"homeserve/internal/auth"
	"homeserve/internal/booking"
	"homeserve/internal/config"
	"homeserve/internal/gateway"
	"homeserve/internal/notify"
	"homeserve/internal/payment"
	"homeserve/internal/provider"
	"homeserve/internal/review"
	"homeserve/internal/user"
	"homeserve/internal/wallet"
)

type Server struct {
	router   *gin.Engine
	http     *http.Server
	db       *sqlx.DB
	config   *config.Config
	Payments payment.Service
	Wallets  wallet.Service
}

// New wires repositories, services and routes. The cross-package seams
// (booking notifications, earnings crediting, payment settlement) are the
// narrow interfaces each consumer package declares.
func New(db *sqlx.DB, cfg *config.Config, notifier *notify.Service, rails map[string]gateway.Rail) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	userRepo := user.NewRepository(db)
	providerRepo := provider.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	reviewRepo := review.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	paymentRepo := payment.NewRepository(db)

	userService := user.NewService(userRepo, cfg.JWTSecret)
	providerService := provider.NewService(providerRepo, userRepo)
	bookingService := booking.NewService(bookingRepo, providerRepo, userRepo, notifier)
	walletService := wallet.NewService(walletRepo, bookingRepo)
	paymentService := payment.NewService(paymentRepo, rails, bookingService, walletService, userRepo, notifier, cfg.CallbackBaseURL)

	userHandler := user.NewHandler(userService)
	providerHandler := provider.NewHandler(providerService)
	bookingHandler := booking.NewHandler(bookingService)
	reviewHandler := review.NewHandler(reviewRepo, bookingRepo)
	walletHandler := wallet.NewHandler(walletService, providerRepo, notifier)
	paymentHandler := payment.NewHandler(paymentService)

	v1 := router.Group("/api/v1")

	public := v1.Group("/")
	public.Use(RateLimitMiddleware(10, 20))
	{
		public.POST("/auth/register", userHandler.Register)
		public.POST("/auth/login", userHandler.Login)
		public.POST("/auth/refresh", userHandler.RefreshToken)

		public.GET("/providers", providerHandler.ListProviders)
		public.GET("/providers/:providerID/reviews", reviewHandler.ListByProvider)
		public.GET("/providers/:providerID/stats", reviewHandler.ProviderStats)
	}

	// Vendor callbacks authenticate by reference, not by session.
	webhooks := v1.Group("/payments/webhook")
	webhooks.Use(WebhookRateLimitMiddleware())
	{
		webhooks.POST("/momo", paymentHandler.WebhookMomo)
		webhooks.POST("/orange", paymentHandler.WebhookOrange)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := v1.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.PUT("/me", userHandler.UpdateMe)

		protected.POST("/providers/onboard", providerHandler.Onboard)

		protected.POST("/bookings", bookingHandler.Create)
		protected.GET("/bookings", bookingHandler.ListMine)
		protected.GET("/bookings/:bookingID", bookingHandler.Get)
		protected.POST("/bookings/:bookingID/cancel", bookingHandler.Cancel)
		protected.POST("/bookings/:bookingID/review", reviewHandler.Create)

		protected.POST("/payments/initiate", paymentHandler.Initiate)
		protected.GET("/payments/status/:reference", paymentHandler.Status)
		protected.POST("/payments/cancel/:reference", paymentHandler.Cancel)
		protected.GET("/payments/history", paymentHandler.History)
	}

	providerOnly := v1.Group("/provider")
	providerOnly.Use(authMiddleware, auth.RequireRole(auth.RoleProvider, auth.RoleAdmin))
	{
		providerOnly.GET("/profile", providerHandler.GetMyProfile)
		providerOnly.PATCH("/availability", providerHandler.SetAvailability)
		providerOnly.GET("/jobs", bookingHandler.ListForProvider)
		providerOnly.POST("/jobs/:bookingID/accept", bookingHandler.Accept)
		providerOnly.POST("/jobs/:bookingID/start", bookingHandler.Start)
		providerOnly.POST("/jobs/:bookingID/complete", bookingHandler.Complete)

		providerOnly.GET("/wallet/balance", walletHandler.GetBalance)
		providerOnly.GET("/wallet/earnings", walletHandler.GetEarnings)
		providerOnly.GET("/wallet/transactions", walletHandler.ListTransactions)
		providerOnly.GET("/wallet/withdrawals", walletHandler.ListWithdrawals)
		providerOnly.POST("/wallet/withdraw", walletHandler.Withdraw)
	}

	admin := v1.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/providers/pending", providerHandler.ListPending)
		admin.POST("/providers/:providerID/approve", providerHandler.Approve)
		admin.POST("/providers/:providerID/reject", providerHandler.Reject)

		admin.GET("/bookings", bookingHandler.ListByStatus)
		admin.POST("/bookings/:bookingID/assign", bookingHandler.Assign)

		admin.GET("/notifications/queue", NotificationQueue(notifier))
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router:   router,
		db:       db,
		config:   cfg,
		Payments: paymentService,
		Wallets:  walletService,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
