package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nutridesk/nutridesk/internal/account"
	accountdomain "github.com/nutridesk/nutridesk/internal/account/domain"
	"github.com/nutridesk/nutridesk/internal/config"
	"github.com/nutridesk/nutridesk/internal/dailymetric"
	dailymetricdomain "github.com/nutridesk/nutridesk/internal/dailymetric/domain"
	"github.com/nutridesk/nutridesk/internal/observability"
	obsmiddleware "github.com/nutridesk/nutridesk/internal/observability/logger"
	obsmetrics "github.com/nutridesk/nutridesk/internal/observability/metrics"
	obstracing "github.com/nutridesk/nutridesk/internal/observability/tracing"
	"github.com/nutridesk/nutridesk/internal/payment"
	paymentdomain "github.com/nutridesk/nutridesk/internal/payment/domain"
	"github.com/nutridesk/nutridesk/internal/plan"
	plandomain "github.com/nutridesk/nutridesk/internal/plan/domain"
	"github.com/nutridesk/nutridesk/internal/ratelimit"
	"github.com/nutridesk/nutridesk/internal/reconciliation"
	reconciliationdomain "github.com/nutridesk/nutridesk/internal/reconciliation/domain"
	"github.com/nutridesk/nutridesk/internal/subscription"
	subscriptiondomain "github.com/nutridesk/nutridesk/internal/subscription/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	account.Module,
	plan.Module,
	payment.Module,
	subscription.Module,
	dailymetric.Module,
	reconciliation.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	accountSvc      accountdomain.Service
	planSvc         plandomain.Service
	paymentSvc      paymentdomain.Service
	subscriptionSvc subscriptiondomain.Service
	dailyMetricSvc  dailymetricdomain.Service
	reconcileSvc    reconciliationdomain.Service
	simulateLimiter *ratelimit.SimulateLimiter
	obsMetrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	AccountSvc      accountdomain.Service
	PlanSvc         plandomain.Service
	PaymentSvc      paymentdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	DailyMetricSvc  dailymetricdomain.Service
	ReconcileSvc    reconciliationdomain.Service
	SimulateLimiter *ratelimit.SimulateLimiter `optional:"true"`
	ObsMetrics      *obsmetrics.Metrics        `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		accountSvc:      p.AccountSvc,
		planSvc:         p.PlanSvc,
		paymentSvc:      p.PaymentSvc,
		subscriptionSvc: p.SubscriptionSvc,
		dailyMetricSvc:  p.DailyMetricSvc,
		reconcileSvc:    p.ReconcileSvc,
		simulateLimiter: p.SimulateLimiter,
		obsMetrics:      p.ObsMetrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Accounts --------
	api.POST("/accounts", s.CreateAccount)
	api.GET("/accounts/:id", s.GetAccountByID)
	api.GET("/accounts/:id/subscription", s.GetAccountSubscription)

	// -------- Plans --------
	api.GET("/plans", s.ListPlans)
	api.GET("/plans/active", s.ListActivePlans)
	api.POST("/plans", s.CreatePlan)
	api.GET("/plans/:id", s.GetPlanByID)
	api.PATCH("/plans/:id", s.UpdatePlan)
	api.DELETE("/plans/:id", s.DeletePlan)
	api.POST("/plans/:id/toggle", s.TogglePlan)

	// -------- Subscriptions --------
	api.GET("/subscriptions", s.ListSubscriptions)

	// -------- Payments --------
	api.POST("/payments", s.CreatePayment)
	api.GET("/payments", s.ListPayments)
	api.GET("/payments/recent", s.ListRecentPayments)
	api.GET("/payments/stats", s.GetPaymentStats)
	api.GET("/payments/:id", s.GetPaymentByID)
	api.POST("/payments/simulate", s.SimulateRateLimit(), s.SimulatePayment)

	// -------- Daily Metrics --------
	api.GET("/metrics/daily", s.ListDailyMetrics)
	api.GET("/metrics/daily/today", s.GetTodayMetric)
}
