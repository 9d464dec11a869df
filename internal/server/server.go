// Package server exposes the HTTP API: job and source reads, source
// registration, on-demand runs, health and metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/openhire/jobfeed/internal/config"
	ingestdomain "github.com/openhire/jobfeed/internal/ingest/domain"
	jobdomain "github.com/openhire/jobfeed/internal/job/domain"
	sourcedomain "github.com/openhire/jobfeed/internal/source/domain"
)

var Module = fx.Module("server",
	fx.Provide(NewRouter),
	fx.Invoke(register),
)

type Param struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Config   config.Config
	Registry *prometheus.Registry
	Jobs     jobdomain.Repository
	Sources  sourcedomain.Service
	Ingest   ingestdomain.Service
}

type handler struct {
	db      *gorm.DB
	log     *zap.Logger
	jobs    jobdomain.Repository
	sources sourcedomain.Service
	ingest  ingestdomain.Service
}

func NewRouter(p Param) *gin.Engine {
	h := &handler{
		db:      p.DB,
		log:     p.Log.Named("http"),
		jobs:    p.Jobs,
		sources: p.Sources,
		ingest:  p.Ingest,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/jobs", h.listJobs)
		v1.GET("/jobs/:uid", h.getJob)
		v1.GET("/sources", h.listSources)
		v1.POST("/sources", h.createSource)
		v1.POST("/sources/verify", h.verifySources)
		v1.POST("/runs", h.triggerRun)
	}
	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func register(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: srv.Shutdown,
	})
}
