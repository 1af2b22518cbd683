package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/glazier/internal/audit"
	auditdomain "github.com/smallbiznis/glazier/internal/audit/domain"
	"github.com/smallbiznis/glazier/internal/catalog"
	catalogdomain "github.com/smallbiznis/glazier/internal/catalog/domain"
	"github.com/smallbiznis/glazier/internal/catalog/snapshot"
	"github.com/smallbiznis/glazier/internal/config"
	"github.com/smallbiznis/glazier/internal/customer"
	customerdomain "github.com/smallbiznis/glazier/internal/customer/domain"
	"github.com/smallbiznis/glazier/internal/document"
	"github.com/smallbiznis/glazier/internal/events"
	"github.com/smallbiznis/glazier/internal/observability"
	obsmiddleware "github.com/smallbiznis/glazier/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/glazier/internal/observability/metrics"
	obstracing "github.com/smallbiznis/glazier/internal/observability/tracing"
	"github.com/smallbiznis/glazier/internal/ratelimit"
	"github.com/smallbiznis/glazier/internal/workorder"
	workorderdomain "github.com/smallbiznis/glazier/internal/workorder/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	audit.Module,
	events.Module,
	customer.Module,
	catalog.Module,
	workorder.Module,
	document.Module,
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
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
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
	engine         *gin.Engine
	cfg            config.Config
	auditSvc       auditdomain.Service
	customerSvc    customerdomain.Service
	catalogSvc     catalogdomain.Service
	snapshots      *snapshot.Service
	workOrderSvc   workorderdomain.Service
	documentSvc    *document.Service
	pricingCfg     *config.PricingConfigHolder
	previewLimiter *ratelimit.PreviewLimiter
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	AuditSvc       auditdomain.Service
	CustomerSvc    customerdomain.Service
	CatalogSvc     catalogdomain.Service
	Snapshots      *snapshot.Service
	WorkOrderSvc   workorderdomain.Service
	DocumentSvc    *document.Service
	PricingCfg     *config.PricingConfigHolder
	PreviewLimiter *ratelimit.PreviewLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		auditSvc:       p.AuditSvc,
		customerSvc:    p.CustomerSvc,
		catalogSvc:     p.CatalogSvc,
		snapshots:      p.Snapshots,
		workOrderSvc:   p.WorkOrderSvc,
		documentSvc:    p.DocumentSvc,
		pricingCfg:     p.PricingCfg,
		previewLimiter: p.PreviewLimiter,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.OrgContext())

	// -------- Customers --------
	api.GET("/customers", s.ListCustomers)
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers/:id", s.GetCustomerByID)
	api.PATCH("/customers/:id", s.UpdateCustomer)

	// -------- Catalog --------
	api.GET("/catalog/items", s.ListCatalogItems)
	api.POST("/catalog/items", s.CreateCatalogItem)
	api.GET("/catalog/items/:id", s.GetCatalogItem)
	api.PATCH("/catalog/items/:id", s.UpdateCatalogItem)
	api.POST("/catalog/items/:id/archive", s.ArchiveCatalogItem)
	api.POST("/catalog/snapshots", s.CreateCatalogSnapshot)
	api.GET("/catalog/snapshots/:id", s.GetCatalogSnapshot)

	// -------- Work orders --------
	api.GET("/work_orders", s.ListWorkOrders)
	api.POST("/work_orders", s.CreateWorkOrder)
	api.GET("/work_orders/:id", s.GetWorkOrder)
	api.PUT("/work_orders/:id", s.UpdateWorkOrder)
	api.POST("/work_orders/:id/status", s.UpdateWorkOrderStatus)
	api.GET("/work_orders/:id/summary", s.GetWorkOrderSummary)
	api.GET("/work_orders/:id/document.pdf", s.GetWorkOrderDocument)

	// -------- Pricing --------
	api.POST("/pricing/preview", s.PreviewRateLimit(), s.PreviewPricing)
	api.GET("/pricing/settings", s.GetPricingSettings)

	api.GET("/audit_logs", s.ListAuditLogs)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
