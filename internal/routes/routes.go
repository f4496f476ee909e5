package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/storefront/internal/audit"
	"github.com/BruksfildServices01/storefront/internal/auth"
	"github.com/BruksfildServices01/storefront/internal/cache"
	"github.com/BruksfildServices01/storefront/internal/config"
	"github.com/BruksfildServices01/storefront/internal/geo"
	"github.com/BruksfildServices01/storefront/internal/handlers"
	infraRepo "github.com/BruksfildServices01/storefront/internal/infra/repository"
	"github.com/BruksfildServices01/storefront/internal/mail"
	"github.com/BruksfildServices01/storefront/internal/metrics"
	"github.com/BruksfildServices01/storefront/internal/middleware"
	"github.com/BruksfildServices01/storefront/internal/models"
	"github.com/BruksfildServices01/storefront/internal/payment"
	"github.com/BruksfildServices01/storefront/internal/storage"
	ucAccount "github.com/BruksfildServices01/storefront/internal/usecase/account"
	ucOrder "github.com/BruksfildServices01/storefront/internal/usecase/order"
	"github.com/BruksfildServices01/storefront/internal/validators"
)

// Services are the outside collaborators the router wires into handlers.
// Nil fields fall back to no-op or disabled implementations.
type Services struct {
	Logger   *slog.Logger
	Audit    audit.Recorder
	Mail     ucOrder.MailQueue
	Cache    cache.Cache
	Storage  storage.Storage
	Geocoder geo.Geocoder
	Payments payment.Gateway

	// Google is nil when Google sign-in is not configured.
	Google auth.IDTokenVerifier

	// CheckEmailDomain, when set, rejects registrations whose domain has no mail servers.
	CheckEmailDomain ucAccount.EmailChecker
}

func (s *Services) defaults(db *gorm.DB, cfg *config.Config) {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	if s.Audit == nil {
		s.Audit = audit.Sync{Logger: audit.New(db)}
	}
	if s.Mail == nil {
		s.Mail = mail.Inline{Mailer: mail.Log{Logger: s.Logger}}
	}
	if s.Cache == nil {
		s.Cache = cache.Nop{}
	}
	if s.Storage == nil {
		s.Storage = storage.NewLocal(cfg.StorageLocalRoot, cfg.AppURL)
	}
	if s.Geocoder == nil {
		s.Geocoder = geo.Disabled{}
	}
	if s.Payments == nil {
		s.Payments = payment.Disabled{}
	}
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, svc Services) {
	svc.defaults(db, cfg)
	validators.Register()

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(
		middleware.RequestID(svc.Logger),
		middleware.RequestLogger(),
		metrics.Middleware(),
		middleware.CORSMiddleware(cfg.CORSOrigins),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if local, ok := svc.Storage.(*storage.Local); ok {
		r.Static(storage.PublicPath, local.Root)
	}

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	orderRepo := infraRepo.NewOrderGormRepository(db)
	accountRepo := infraRepo.NewAccountGormRepository(db)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	cookie := auth.SessionCookie{
		Name:   cfg.SessionCookie,
		Secure: cfg.CookieSecure,
		MaxAge: int(tokens.TTL().Seconds()),
	}
	authRequired := middleware.AuthMiddleware(db, tokens, cookie)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	// ======================================================
	// USE CASES
	// ======================================================
	verification := ucAccount.NewVerification(tokens, svc.Mail, cfg.AppURL)
	registerUC := ucAccount.NewRegister(accountRepo, verification, svc.Audit, svc.CheckEmailDomain)
	loginUC := ucAccount.NewLogin(accountRepo)
	verifyUC := ucAccount.NewVerifyEmail(accountRepo, tokens, svc.Audit)
	googleUC := ucAccount.NewGoogleSignIn(accountRepo, svc.Google, svc.Audit)

	placeOrderUC := ucOrder.NewPlaceOrder(orderRepo, svc.Audit, svc.Mail)
	updateStatusUC := ucOrder.NewUpdateStatus(orderRepo, svc.Audit, svc.Mail)
	checkoutUC := ucOrder.NewCheckout(orderRepo, svc.Payments, svc.Audit, ucOrder.CheckoutURLs{
		AppURL:   cfg.AppURL,
		Currency: cfg.PaymentCurrency,
	})
	reconcileUC := ucOrder.NewReconcilePayment(orderRepo, svc.Payments, svc.Audit)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(registerUC, loginUC, verifyUC, googleUC, verification, tokens, cookie)
	meHandler := handlers.NewMeHandler()

	categoryHandler := handlers.NewCategoryHandler(db, svc.Cache, svc.Audit, svc.Storage, cfg.CacheTTL)
	sizeHandler := handlers.NewSizeHandler(db, svc.Cache, svc.Audit)
	productHandler := handlers.NewProductHandler(db, svc.Cache, svc.Audit, svc.Storage)
	variantHandler := handlers.NewVariantHandler(db, svc.Audit)

	addressHandler := handlers.NewAddressHandler(db, svc.Geocoder, svc.Audit)
	orderHandler := handlers.NewOrderHandler(db, cfg.Timezone, placeOrderUC, updateStatusUC, checkoutUC)
	paymentHandler := handlers.NewPaymentHandler(reconcileUC)
	wishlistHandler := handlers.NewWishlistHandler(db)

	adminUserHandler := handlers.NewAdminUserHandler(db, svc.Audit)
	dashboardHandler := handlers.NewDashboardHandler(db, cfg.Timezone)
	auditLogsHandler := handlers.NewAuditLogsHandler(db, cfg.Timezone)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// CATALOG (public)
		// ------------------------------
		v1 := api.Group("/v1")
		{
			v1.GET("/categories", categoryHandler.List)
			v1.GET("/categories/menu", categoryHandler.Menu)
			v1.GET("/categories/:slug", categoryHandler.Show)

			v1.GET("/sizes", sizeHandler.List)

			v1.GET("/products", productHandler.List)
			v1.GET("/products/:slug", productHandler.Show)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)
		api.POST("/auth/google", authHandler.Google)
		api.GET("/auth/verify-email", authHandler.VerifyEmail)
		api.POST("/auth/verify-email/resend", authRequired, authHandler.ResendVerification)

		api.POST("/payments/webhook", paymentHandler.Webhook)

		// ------------------------------
		// CUSTOMER
		// ------------------------------
		me := api.Group("/me")
		me.Use(authRequired)
		{
			me.GET("", meHandler.GetMe)

			me.GET("/addresses", addressHandler.List)
			me.POST("/addresses", addressHandler.Create)
			me.PUT("/addresses/:id", addressHandler.Update)
			me.DELETE("/addresses/:id", addressHandler.Delete)
			me.POST("/addresses/:id/default", addressHandler.SetDefault)

			me.GET("/orders", orderHandler.MyList)
			me.POST("/orders", middleware.RequireVerified(), orderHandler.Place)
			me.GET("/orders/:id", orderHandler.MyShow)
			me.PATCH("/orders/:id/cancel", orderHandler.Cancel)
			me.POST("/orders/:id/checkout", orderHandler.Checkout)

			me.GET("/wishlist", wishlistHandler.List)
			me.POST("/wishlist/:product_id", wishlistHandler.Add)
			me.DELETE("/wishlist/:product_id", wishlistHandler.Remove)
		}
	}

	// ======================================================
	// ADMIN
	// ======================================================
	admin := r.Group("/admin")
	admin.Use(authRequired, adminOnly)
	{
		admin.GET("/sizes", sizeHandler.List)
		admin.POST("/sizes", sizeHandler.Create)
		admin.PUT("/sizes/:id", sizeHandler.Update)
		admin.DELETE("/sizes/:id", sizeHandler.Delete)

		adminAPI := admin.Group("/api")
		{
			adminAPI.GET("/categories", categoryHandler.List)
			adminAPI.POST("/categories", categoryHandler.Create)
			adminAPI.PUT("/categories/:id", categoryHandler.Update)
			adminAPI.DELETE("/categories/:id", categoryHandler.Delete)
			adminAPI.POST("/categories/:id/image", categoryHandler.UploadImage)

			adminAPI.GET("/products", productHandler.AdminList)
			adminAPI.POST("/products", productHandler.Create)
			adminAPI.GET("/products/:id", productHandler.AdminShow)
			adminAPI.PUT("/products/:id", productHandler.Update)
			adminAPI.DELETE("/products/:id", productHandler.Delete)
			adminAPI.POST("/products/:id/image", productHandler.UploadImage)

			adminAPI.GET("/products/:id/variants", variantHandler.List)
			adminAPI.POST("/products/:id/variants", variantHandler.Create)
			adminAPI.PUT("/products/:id/variants/:variant_id", variantHandler.Update)
			adminAPI.DELETE("/products/:id/variants/:variant_id", variantHandler.Delete)

			adminAPI.GET("/users", adminUserHandler.List)
			adminAPI.PATCH("/users/:id/active", adminUserHandler.SetActive)

			adminAPI.GET("/orders", orderHandler.AdminList)
			adminAPI.GET("/orders/:id", orderHandler.AdminShow)
			adminAPI.PATCH("/orders/:id/status", orderHandler.UpdateStatus)

			adminAPI.GET("/dashboard", dashboardHandler.Show)
			adminAPI.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
