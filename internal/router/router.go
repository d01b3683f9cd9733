package router

import (
	"feeportal/config"
	"feeportal/internal/domain"
	"feeportal/internal/handler"
	"feeportal/internal/logger"
	"feeportal/internal/middleware"
	"feeportal/internal/repository"
	"feeportal/internal/service"
	"feeportal/internal/ws"
	"feeportal/pkg/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stores groups the persistence the API is built on.
type Stores struct {
	Users    service.UserStore
	Schools  service.SchoolStore
	Orders   service.OrderStore
	Statuses service.OrderStatusStore
	Webhooks service.WebhookLogStore
	Audit    handler.AuditWriter
}

func GormStores(db *gorm.DB) Stores {
	return Stores{
		Users:    repository.NewUserRepository(db),
		Schools:  repository.NewSchoolRepository(db),
		Orders:   repository.NewOrderRepository(db),
		Statuses: repository.NewOrderStatusRepository(db),
		Webhooks: repository.NewWebhookLogRepository(db),
		Audit:    repository.NewAuditLogRepository(db),
	}
}

type Deps struct {
	Config   *config.Config
	Stores   Stores
	Provider payment.Provider
	Mailer   service.Mailer
	Hub      *ws.Hub
	Limiter  *middleware.InMemoryRateLimiter
	Log      *zap.Logger
}

// App is the HTTP engine plus the services background jobs need.
type App struct {
	Engine   *gin.Engine
	Payments *service.PaymentService
}

func Setup(d Deps) (*App, error) {
	cfg := d.Config
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery(), middleware.RequestID(), logger.GinMiddleware(d.Log))
	if d.Limiter != nil {
		r.Use(middleware.RateLimit(d.Limiter))
	}

	st := d.Stores
	reconciler := service.NewReconciler(st.Statuses, d.Mailer, d.Hub, d.Log)

	// Services
	authSvc := service.NewAuthService(cfg, st.Users, d.Mailer, d.Log)
	schoolSvc := service.NewSchoolService(st.Schools, st.Users)
	teacherSvc := service.NewTeacherService(st.Users, st.Schools, d.Mailer, d.Log)
	studentSvc := service.NewStudentService(st.Users, st.Schools, d.Mailer, d.Log)
	orderSvc := service.NewOrderService(st.Orders, st.Users)
	paymentSvc := service.NewPaymentService(cfg, d.Provider, st.Orders, st.Statuses, st.Users, reconciler, d.Log)
	txSvc := service.NewTransactionService(st.Statuses, st.Users, st.Schools)
	webhookSvc := service.NewWebhookService(st.Webhooks, st.Statuses, reconciler, d.Log)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, st.Audit, d.Log)
	userHandler := handler.NewUserHandler(authSvc, d.Log)
	schoolHandler := handler.NewSchoolHandler(schoolSvc, d.Log)
	teacherHandler := handler.NewTeacherHandler(teacherSvc, d.Log)
	studentHandler := handler.NewStudentHandler(studentSvc, d.Log)
	orderHandler := handler.NewOrderHandler(orderSvc, d.Log)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, d.Log)
	txHandler := handler.NewTransactionHandler(txSvc, d.Log)
	webhookHandler := handler.NewWebhookHandler(webhookSvc, cfg.Cashfree.WebhookSecret, cfg.Server.IsProduction(), d.Log)

	authMw := middleware.AuthRequired(&cfg.JWT)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)
	staff := middleware.RequireRole(domain.RoleAdmin, domain.RoleTeacher)
	anyRole := middleware.RequireRole(domain.RoleAdmin, domain.RoleTeacher, domain.RoleStudent)

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/verify-otp", authHandler.VerifyOTP)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/forgetPassword", authHandler.ForgetPassword)
			authGroup.POST("/resetPassword", authHandler.ResetPassword)
			authGroup.POST("/refresh-token", authHandler.RefreshToken)
		}

		api.GET("/user/health", userHandler.Health)
		api.GET("/user/me", authMw, userHandler.Me)

		orders := api.Group("/orders", authMw, staff)
		{
			orders.GET("", orderHandler.List)
			orders.POST("", orderHandler.Create)
			orders.GET("/:id", orderHandler.Get)
		}

		pay := api.Group("/payment", authMw, anyRole)
		{
			pay.POST("/create-payment", paymentHandler.Create)
			pay.GET("/checkStatus/:id", paymentHandler.CheckStatus)
			pay.GET("/:id", paymentHandler.Details)
		}

		api.GET("/transactions/:id/receipt", authMw, anyRole, txHandler.Receipt)
		txs := api.Group("/transactions", authMw, staff)
		{
			txs.GET("/all", txHandler.List)
			txs.GET("/summary", txHandler.Summary)
			txs.GET("/export", txHandler.Export)
		}

		api.GET("/school", authMw, adminOnly, schoolHandler.Get)
		api.PUT("/school", authMw, adminOnly, schoolHandler.UpdateOwn)
		api.GET("/school/select", authMw, staff, schoolHandler.Options)
		api.PUT("/school/update/:id", authMw, adminOnly, schoolHandler.Update)

		teachers := api.Group("/teachers", authMw, adminOnly)
		{
			teachers.GET("/all", teacherHandler.List)
			teachers.GET("/:id", teacherHandler.Get)
			teachers.POST("/create", teacherHandler.Create)
			teachers.PUT("/update/:id", teacherHandler.Update)
			teachers.DELETE("/delete/:id", teacherHandler.Delete)
		}

		students := api.Group("/students", authMw, staff)
		{
			students.GET("/all", studentHandler.List)
			students.GET("/option", studentHandler.Options)
			students.GET("/:id", studentHandler.Get)
			students.POST("/create", studentHandler.Create)
			students.PUT("/update/:id", studentHandler.Update)
			students.DELETE("/delete/:id", studentHandler.Delete)
		}

		api.POST("/webhook", webhookHandler.Handle)
		api.GET("/ws/transactions", ws.UpgradeTransactionsWS(&cfg.JWT, st.Users, d.Hub, d.Log))
	}

	return &App{Engine: r, Payments: paymentSvc}, nil
}
