package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatlink/config"
	"chatlink/internal/handler"
	"chatlink/internal/middleware"
	"chatlink/internal/redis"
	"chatlink/internal/services"
	"chatlink/internal/transport/httpdto"
	"chatlink/pkg/database"
	"chatlink/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Chat    *handler.ChatHandler
	Message *handler.MessageHandler
	User    *handler.UserHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// SetupRoutes wires the middleware chain and the route table. The chat and
// message paths keep their historical shapes for client compatibility.
func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	authGuard := middleware.AuthMiddleware(authService)

	auth := s.engine.Group("/auth")
	if limiter != nil {
		auth.Use(middleware.AuthRateLimitMiddleware(limiter))
	}
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/refresh", handlers.Auth.Refresh)
		auth.POST("/logout", handlers.Auth.Logout)
	}

	users := s.engine.Group("/users", authGuard)
	{
		users.GET("", handlers.Chat.FetchChats)
		users.GET("/me", handlers.User.Me)
		users.POST("/avatar", handlers.User.Avatar)
	}

	chat := s.engine.Group("/chat", authGuard)
	{
		chat.POST("", handlers.Chat.CreateChat)
		chat.POST("/add/group/:chatId", handlers.Chat.AddUserToGroup)
		chat.POST("/rename/:chatId", handlers.Chat.RenameGroup)
		chat.POST("/remove", handlers.Chat.RemoveFromChat)
		chat.POST("/exit", handlers.Chat.ExitChat)
		chat.PUT("/admin/:userId/:chatId", handlers.Chat.AddAdmin)
		chat.POST("/create-link/:chatId", handlers.Chat.CreateGroupLink)
	}

	message := s.engine.Group("/message", authGuard)
	{
		send := message.Group("")
		if limiter != nil {
			send.Use(middleware.MessageRateLimitMiddleware(limiter))
		}
		send.POST("/send/:chatId", handlers.Message.Send)

		message.GET("/:chatId", handlers.Message.GetMessages)
		message.PUT("/read", handlers.Message.MarkRead)
	}
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
