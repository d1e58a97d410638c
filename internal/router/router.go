package router

import (
	"net/http"
	"time"

	"coursio/config"
	"coursio/internal/domain"
	"coursio/internal/handler"
	"coursio/internal/middleware"
	"coursio/internal/repository"
	"coursio/internal/service"
	"coursio/pkg/gateway"
	"coursio/pkg/invoice"
	"coursio/pkg/mailer"
	"coursio/pkg/pixel"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	paymentRepo := repository.NewPaymentRepository(db)
	failedRepo := repository.NewFailedPaymentRepository(db)
	userRepo := repository.NewUserRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	bumpRepo := repository.NewOrderBumpRepository(db)
	contactRepo := repository.NewContactRepository(db)
	tagRepo := repository.NewTagRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// External collaborators
	gateways := map[string]gateway.Client{
		domain.GatewayRazorpay: gateway.NewRazorpayClient(cfg.Razorpay.BaseURL, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Checkout.GatewayTimeout),
		domain.GatewayCashfree: gateway.NewCashfreeClient(cfg.Cashfree.BaseURL, cfg.Cashfree.ClientID, cfg.Cashfree.ClientSecret, cfg.Cashfree.APIVersion, cfg.Checkout.GatewayTimeout),
	}
	mail := mailer.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.From)
	invoices := invoice.NewRenderer(cfg.Invoice.OutputDir)
	tracker := pixel.NewClient(cfg.Pixel.Endpoint, cfg.Pixel.AccessToken)

	// Services
	crmSvc := service.NewCRMService(contactRepo, tagRepo)
	tokenSvc := service.NewTokenService(userRepo, cfg.Checkout.ResetTokenTTL)
	fulfillSvc := service.NewFulfillmentService(
		paymentRepo, userRepo, catalogRepo, bumpRepo, failedRepo,
		crmSvc, tokenSvc, invoices, mail, tracker,
		cfg.Checkout.FrontendBaseURL,
	)
	paymentSvc := service.NewPaymentService(paymentRepo, catalogRepo, bumpRepo, fulfillSvc, gateways)
	reconSvc := service.NewReconciliationService(paymentRepo, failedRepo, fulfillSvc, gateways, cfg.Checkout.GatewayRetries)

	// Handlers
	checkoutHandler := handler.NewCheckoutHandler(paymentSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, auditRepo)
	reconHandler := handler.NewReconciliationHandler(reconSvc, paymentRepo, userRepo, auditRepo)
	failedHandler := handler.NewFailedPaymentHandler(failedRepo, reconSvc)
	passwordHandler := handler.NewPasswordHandler(tokenSvc)
	auditHandler := handler.NewAuditHandler(auditRepo)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", middleware.PrometheusHandler())

	v1 := r.Group("/api/v1")
	{
		v1.POST("/checkout/orders", checkoutHandler.CreateOrder)
		v1.POST("/payments/verify", paymentHandler.Verify)
		v1.POST("/password/reset", passwordHandler.SetPassword)

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(&cfg.JWT), middleware.RequireRole(domain.RoleAdmin))
		{
			admin.POST("/reconcile", reconHandler.Reconcile)
			admin.GET("/reconcile/candidates", reconHandler.Candidates)
			admin.GET("/audit-logs", auditHandler.List)
			admin.GET("/failed-payments", failedHandler.List)
			admin.POST("/failed-payments/:id/retry", failedHandler.Retry)
			admin.POST("/failed-payments/:id/resolve", failedHandler.Resolve)
		}
	}

	return r
}
