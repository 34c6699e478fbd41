package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/carewise/escortcare/internal/campaign"
	"github.com/carewise/escortcare/internal/catalog"
	"github.com/carewise/escortcare/internal/config"
	"github.com/carewise/escortcare/internal/coupon"
	"github.com/carewise/escortcare/internal/escort"
	"github.com/carewise/escortcare/internal/membership"
	"github.com/carewise/escortcare/internal/observability/metrics"
	"github.com/carewise/escortcare/internal/order"
	orderdomain "github.com/carewise/escortcare/internal/order/domain"
	"github.com/carewise/escortcare/internal/patient"
	"github.com/carewise/escortcare/internal/points"
	"github.com/carewise/escortcare/internal/pricing"
	pricingdomain "github.com/carewise/escortcare/internal/pricing/domain"
	"github.com/carewise/escortcare/internal/referral"
	"github.com/carewise/escortcare/internal/review"
	reviewdomain "github.com/carewise/escortcare/internal/review/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	catalog.Module,
	campaign.Module,
	coupon.Module,
	points.Module,
	membership.Module,
	escort.Module,
	patient.Module,
	referral.Module,
	pricing.Module,
	order.Module,
	review.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	return r
}

func registerGin(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	return NewEngine(log, m)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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
	db            *gorm.DB
	genID         *snowflake.Node
	metrics       *metrics.Metrics
	pricingSvc    pricingdomain.Service
	pricingCfgSvc pricingdomain.ConfigService
	orderSvc      orderdomain.Service
	reviewSvc     reviewdomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	Metrics       *metrics.Metrics `optional:"true"`
	PricingSvc    pricingdomain.Service
	PricingCfgSvc pricingdomain.ConfigService
	OrderSvc      orderdomain.Service
	ReviewSvc     reviewdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		metrics:       p.Metrics,
		pricingSvc:    p.PricingSvc,
		pricingCfgSvc: p.PricingCfgSvc,
		orderSvc:      p.OrderSvc,
		reviewSvc:     p.ReviewSvc,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()
	svc.registerCallbackRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1", UserContext())

	api.POST("/pricing/quote", s.Quote)

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:order_no", s.GetOrder)
	api.GET("/orders/:order_no/snapshot", s.GetOrderSnapshot)
	api.POST("/orders/:order_no/cancel", s.CancelOrder)

	api.POST("/reviews", s.CreateReview)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin/v1")

	admin.GET("/pricing/config", s.GetPricingConfig)
	admin.PUT("/pricing/config", s.UpdatePricingConfig)

	admin.POST("/orders/:order_no/complete", s.CompleteOrder)
}

func (s *Server) registerCallbackRoutes() {
	cb := s.engine.Group("/callbacks/v1")

	cb.POST("/payments", s.PaymentCallback)
}
