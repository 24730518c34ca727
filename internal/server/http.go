package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/doc-qa-backend/internal/conf"
	kbservice "github.com/lk2023060901/doc-qa-backend/internal/knowledge/service"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	pkgredis "github.com/lk2023060901/doc-qa-backend/internal/pkg/redis"
	"github.com/lk2023060901/doc-qa-backend/internal/server/middleware"
	"go.uber.org/zap"
)

const readyTimeout = 3 * time.Second

// ReadinessChecker 检查外部依赖，返回失败项及原因
type ReadinessChecker interface {
	Check(ctx context.Context) map[string]string
}

type HTTPServer struct {
	server *http.Server
	router *gin.Engine
	logger *logger.Logger
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	redisClient *pkgredis.Client,
	readiness ReadinessChecker,
	documentService *kbservice.DocumentService,
	chatService *kbservice.ChatService,
) *HTTPServer {
	if config.Server.Mode != "" {
		gin.SetMode(config.Server.Mode)
	}
	log = logger.OrDefault(log).Named("http")

	router := gin.New()
	router.Use(logger.GinRecovery(log))
	router.Use(logger.GinLogger(log, logger.MiddlewareOptions{SkipPaths: []string{"/health", "/ready"}}))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Readiness check, 依赖不可用时返回 503
	router.GET("/ready", func(c *gin.Context) {
		if readiness == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()
		if failed := readiness.Check(ctx); len(failed) > 0 {
			log.Warn("readiness check failed", zap.Any("failed", failed))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failed": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 上传和问答会调用模型，单独限流
	limited := []gin.HandlerFunc{}
	if config.RateLimit.Enabled && redisClient != nil {
		limited = append(limited, middleware.RateLimiter(redisClient, middleware.RateLimiterConfig{
			MaxRequests: config.RateLimit.MaxRequests,
			Window:      config.RateLimit.Window,
		}, log))
	}

	// API routes
	v1 := router.Group("/api/v1")
	{
		documents := v1.Group("/documents")
		{
			documents.POST("", append(limited, documentService.UploadDocument)...)
			documents.GET("", documentService.ListDocuments)
			documents.GET("/:id", documentService.GetDocument)
			documents.DELETE("/:id", documentService.DeleteDocument)
		}

		v1.POST("/chat", append(limited, chatService.Chat)...)
		v1.POST("/chunk", chatService.PreviewChunks)
	}

	srv := &http.Server{
		Addr:         config.Server.Addr(),
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}

	return &HTTPServer{
		server: srv,
		router: router,
		logger: log,
	}
}

// Handler 返回路由，供测试直接调用
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Start 阻塞监听，正常关闭时返回 nil
func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}
