package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pharmadesk/pharmadesk/internal/approval"
	"github.com/pharmadesk/pharmadesk/internal/clock"
	approvaldomain "github.com/pharmadesk/pharmadesk/internal/approval/domain"
	"github.com/pharmadesk/pharmadesk/internal/branch"
	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/dashboard"
	dashboarddomain "github.com/pharmadesk/pharmadesk/internal/dashboard/domain"
	"github.com/pharmadesk/pharmadesk/internal/dispenseid"
	"github.com/pharmadesk/pharmadesk/internal/dispensing"
	dispensingdomain "github.com/pharmadesk/pharmadesk/internal/dispensing/domain"
	"github.com/pharmadesk/pharmadesk/internal/events"
	"github.com/pharmadesk/pharmadesk/internal/finance"
	financedomain "github.com/pharmadesk/pharmadesk/internal/finance/domain"
	"github.com/pharmadesk/pharmadesk/internal/inventory"
	inventorydomain "github.com/pharmadesk/pharmadesk/internal/inventory/domain"
	"github.com/pharmadesk/pharmadesk/internal/providers/pdf"
	"github.com/pharmadesk/pharmadesk/internal/ratelimit"
	"github.com/pharmadesk/pharmadesk/internal/revenue"
	revenuedomain "github.com/pharmadesk/pharmadesk/internal/revenue/domain"
	"github.com/pharmadesk/pharmadesk/internal/salesperf"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(
		NewMetrics,
		registerGin,
	),
	dispenseid.Module,
	approval.Module,
	inventory.Module,
	finance.Module,
	salesperf.Module,
	branch.Module,
	events.Module,
	dispensing.Module,
	revenue.Module,
	dashboard.Module,
	ratelimit.Module,
	pdf.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, metrics *Metrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log.Named("http")))
	r.Use(MetricsMiddleware(metrics))
	r.Use(cors.New(corsConfig(cfg)))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func corsConfig(cfg config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", HeaderActingUser)
	if len(cfg.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORSAllowOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	return corsCfg
}

func registerGin(cfg config.Config, log *zap.Logger, metrics *Metrics) *gin.Engine {
	return NewEngine(cfg, log, metrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	db            *gorm.DB
	genID         *snowflake.Node
	approvalSvc   approvaldomain.Service
	dispensingSvc dispensingdomain.Service
	revenueSvc    revenuedomain.Service
	dashboardSvc  dashboarddomain.Service
	activities    financedomain.Repository
	medicines     inventorydomain.Repository
	eventsRepo    events.Repository
	receipts      pdf.Provider
	limiter       *ratelimit.TokenBucket
	locker        *ratelimit.Locker
	clk           clock.Clock
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	DB            *gorm.DB
	GenID         *snowflake.Node
	ApprovalSvc   approvaldomain.Service
	DispensingSvc dispensingdomain.Service
	RevenueSvc    revenuedomain.Service
	DashboardSvc  dashboarddomain.Service
	Activities    financedomain.Repository
	Medicines     inventorydomain.Repository
	EventsRepo    events.Repository
	Receipts      pdf.Provider
	Limiter       *ratelimit.TokenBucket `optional:"true"`
	Locker        *ratelimit.Locker      `optional:"true"`
	Clock         clock.Clock
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http.server"),
		db:            p.DB,
		genID:         p.GenID,
		approvalSvc:   p.ApprovalSvc,
		dispensingSvc: p.DispensingSvc,
		revenueSvc:    p.RevenueSvc,
		dashboardSvc:  p.DashboardSvc,
		activities:    p.Activities,
		medicines:     p.Medicines,
		eventsRepo:    p.EventsRepo,
		receipts:      p.Receipts,
		limiter:       p.Limiter,
		locker:        p.Locker,
		clk:           p.Clock,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.POST("/payment-approve", s.CreatePaymentApproval)
	api.GET("/payment-approve", s.ListPaymentApprovals)
	api.GET("/payment-approve/:id", s.GetPaymentApproval)
	api.POST("/payment-approve/:id/approve", s.ApprovePayment)
	api.POST("/payment-approve/:id/reject", s.RejectPayment)

	api.POST("/dispense/:id", s.DispenseRateLimit(), s.Dispense)
	api.GET("/dispense/:id/receipt", s.DispenseReceipt)

	api.GET("/financial-activities", s.ListFinancialActivities)
	api.GET("/financial-activities/summary", s.FinancialSummary)

	api.GET("/dashboard/overview", s.DashboardOverview)
	api.GET("/cashier-dashboard", s.CashierDashboard)
}
