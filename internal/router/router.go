package router

import (
	"time"

	"mercury/internal/config"
	"mercury/internal/handler"
	"mercury/internal/infra"
	"mercury/internal/middleware"
	"mercury/internal/model"
	"mercury/internal/repository"
	"mercury/internal/service"
	"mercury/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, storage *infra.Storage, smtpCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	contractRepo := repository.NewContractRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	cashierRepo := repository.NewCashierRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	companySvc := service.NewCompanyService(companyRepo, auditRepo)
	requestSvc := service.NewRequestService(requestRepo, auditRepo, dispatcher)
	quotationSvc := service.NewQuotationService(quotationRepo, requestRepo, companyRepo, auditRepo, dispatcher, cfg)
	contractSvc := service.NewContractService(contractRepo, quotationRepo, requestRepo, auditRepo, dispatcher)
	paymentSvc := service.NewPaymentService(paymentRepo, contractRepo, requestRepo, documentRepo, auditRepo, storage, dispatcher, cfg)
	cashierSvc := service.NewCashierService(cashierRepo, quotationRepo, auditRepo)
	documentSvc := service.NewDocumentService(documentRepo, requestRepo, contractRepo, storage, cfg.MaxProviderUploadMB)
	notificationSvc := service.NewNotificationService(notificationRepo)
	auditSvc := service.NewAuditService(auditRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	companiesH := handler.NewCompaniesHandler(companySvc)
	requestsH := handler.NewRequestsHandler(requestSvc)
	quotationsH := handler.NewQuotationsHandler(quotationSvc)
	contractsH := handler.NewContractsHandler(contractSvc)
	paymentsH := handler.NewPaymentsHandler(paymentSvc)
	cashierH := handler.NewCashierHandler(cashierSvc)
	documentsH := handler.NewDocumentsHandler(documentSvc)
	notificationsH := handler.NewNotificationsHandler(notificationSvc, auditSvc)

	importador := string(model.RoleImportador)
	admin := string(model.RoleAdmin)
	cajero := string(model.RoleCajero)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpCB))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(cfg.LoginRateLimitPerMinute), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Requests — importers manage their own, admins review all
		v1.POST("/requests", middleware.RequireRole(importador), requestsH.Create)
		v1.GET("/requests", middleware.RequireRole(importador, admin), requestsH.List)
		v1.GET("/requests/:id", middleware.RequireRole(importador, admin), requestsH.Get)
		v1.PATCH("/requests/:id", middleware.RequireRole(importador), requestsH.Update)
		v1.POST("/requests/:id/submit", middleware.RequireRole(importador), requestsH.Submit)
		v1.PATCH("/requests/:id/admin", middleware.RequireRole(admin), requestsH.AdminUpdate)
		v1.DELETE("/requests/:id", middleware.RequireRole(importador, admin), requestsH.Delete)
		v1.GET("/requests/:id/quotations", middleware.RequireRole(importador, admin), quotationsH.ListByRequest)
		v1.POST("/requests/:id/documents", middleware.RequireRole(importador, admin), documentsH.UploadForRequest)
		v1.GET("/requests/:id/documents", middleware.RequireRole(importador, admin), documentsH.ListByRequest)

		// Quotations — issued by admins, answered by importers
		quotations := v1.Group("/quotations")
		{
			quotations.POST("", middleware.RequireRole(admin), quotationsH.Create)
			quotations.GET("/:id", middleware.RequireRole(importador, admin), quotationsH.Get)
			quotations.PATCH("/:id", middleware.RequireRole(admin), quotationsH.Update)
			quotations.DELETE("/:id", middleware.RequireRole(admin), quotationsH.Delete)
			quotations.POST("/:id/send", middleware.RequireRole(admin), quotationsH.Send)
			quotations.POST("/:id/respond", middleware.RequireRole(importador), quotationsH.Respond)
		}

		// Contracts and their payment pipeline
		contracts := v1.Group("/contracts")
		{
			contracts.POST("", middleware.RequireRole(admin), contractsH.Create)
			contracts.GET("", middleware.RequireRole(importador, admin), contractsH.List)
			contracts.GET("/:id", middleware.RequireRole(importador, admin), contractsH.Get)
			contracts.POST("/:id/sign", middleware.RequireRole(importador, admin), contractsH.Sign)
			contracts.POST("/:id/cancel", middleware.RequireRole(admin), contractsH.Cancel)
			contracts.POST("/:id/payments", middleware.RequireRole(importador), paymentsH.UploadProof)
			contracts.GET("/:id/payments", middleware.RequireRole(importador, admin), paymentsH.ListByContract)
			contracts.POST("/:id/final-payment", middleware.RequireRole(admin), paymentsH.RecordFinal)
			contracts.GET("/:id/documents", middleware.RequireRole(importador, admin), documentsH.ListByContract)
		}

		// Payments
		payments := v1.Group("/payments")
		{
			payments.GET("/pending", middleware.RequireRole(admin), paymentsH.ListPendingReview)
			payments.GET("/:id", middleware.RequireRole(importador, admin), paymentsH.Get)
			payments.POST("/:id/review", middleware.RequireRole(admin), paymentsH.Review)
			payments.POST("/:id/provider-proof", middleware.RequireRole(admin), paymentsH.UploadProviderProof)
		}

		// Cashier allocation
		cashier := v1.Group("/cashier", middleware.RequireRole(cajero))
		{
			cashier.GET("/quotations", cashierH.AvailableQuotations)
			cashier.POST("/quotations/:id/participate", cashierH.Participate)
			cashier.GET("/transactions", cashierH.ListMine)
			cashier.POST("/transactions/:id/start", cashierH.Start)
			cashier.POST("/transactions/:id/complete", cashierH.Complete)
			cashier.POST("/transactions/:id/cancel", cashierH.Cancel)
			cashier.GET("/daily-usage", cashierH.DailyUsage)
		}

		// Cashier account administration
		accounts := v1.Group("/cashier-accounts", middleware.RequireRole(admin))
		{
			accounts.POST("", cashierH.CreateAccount)
			accounts.GET("", cashierH.ListAccounts)
			accounts.POST("/:id/assign", cashierH.AssignAccount)
		}

		// Companies
		companies := v1.Group("/companies")
		{
			companies.POST("", middleware.RequireRole(admin), companiesH.Create)
			companies.GET("", middleware.RequireRole(admin), companiesH.List)
			companies.GET("/:id", middleware.RequireRole(importador, admin), companiesH.Get)
			companies.PUT("/:id", middleware.RequireRole(admin), companiesH.Update)
			companies.DELETE("/:id", middleware.RequireRole(admin), companiesH.Deactivate)
		}

		// Documents
		v1.GET("/documents/:id", middleware.RequireRole(importador, admin, cajero), documentsH.Get)

		// Users — admin only
		users := v1.Group("/users", middleware.RequireRole(admin))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}

		// Notifications — every authenticated user reads their own
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", notificationsH.ListMine)
			notifications.GET("/unread-count", notificationsH.CountUnread)
			notifications.PATCH("/:id/read", notificationsH.MarkRead)
			notifications.PATCH("/read-all", notificationsH.MarkAllRead)
		}

		// Audit trail — admin only
		v1.GET("/audit", middleware.RequireRole(admin), notificationsH.ListAudit)
		v1.GET("/audit/:entity/:id", middleware.RequireRole(admin), notificationsH.ListAuditByEntity)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
