package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	v1 "assetreport/internal/api/v1"
	"assetreport/internal/config"
	"assetreport/internal/derived"
	"assetreport/internal/importer"
	"assetreport/internal/logging"
	"assetreport/internal/store"
)

// Server HTTP服务器
type Server struct {
	router    *gin.Engine
	store     *store.Store
	rebuilder *derived.Rebuilder
	http      *http.Server
	log       *logrus.Entry
}

// NewServer 创建服务器，store 由调用方负责关闭
func NewServer(cfg *config.AppConfig, dataDir string, st *store.Store, rebuilder *derived.Rebuilder, logger logrus.FieldLogger) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	coordinator := importer.NewCoordinator(st,
		importer.WithLogger(logger),
		importer.WithOnCommit(rebuilder.Trigger),
	)

	handler := v1.NewHandler(v1.Deps{
		Store:          st,
		Importer:       coordinator,
		Rebuilder:      rebuilder,
		UploadDir:      config.UploadDir(dataDir),
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
		Logger:         logger,
	})

	s := &Server{
		router:    gin.New(),
		store:     st,
		rebuilder: rebuilder,
		log:       logging.Component(logger, "server"),
	}
	if cfg.Server.MaxUploadMB > 0 {
		s.router.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20
	}

	s.setupRoutes(cfg, handler, logger)
	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(cfg *config.AppConfig, handler *v1.Handler, logger logrus.FieldLogger) {
	s.router.Use(gin.Recovery())
	s.router.Use(logging.GinLogger(logger))
	s.router.Use(corsMiddleware(cfg.CORS.AllowedOrigins))

	// V1 API 路由
	api := s.router.Group("/api")
	{
		handler.RegisterRoutes(api)
	}

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "接口不存在: " + c.Request.URL.Path})
	})
}

// corsMiddleware 跨域处理，预检请求直接返回 204
func corsMiddleware(origins []string) gin.HandlerFunc {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
	})
	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)
		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}

// Handler 返回 http.Handler（测试使用）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 监听 addr 并提供服务，Shutdown 后返回 nil（包括 Shutdown 先于 Run 的情况）
func (s *Server) Run(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.log.WithField("addr", ln.Addr().String()).Info("server listening")
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 停止接收请求并等待进行中的请求和派生表重建结束
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if s.rebuilder != nil {
		if werr := s.rebuilder.Wait(ctx); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
