// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"ragbot-go/internal/config"
	"ragbot-go/internal/handler"
	"ragbot-go/internal/middleware"
	"ragbot-go/internal/repository"
	"ragbot-go/internal/service"
	"ragbot-go/pkg/database"
	"ragbot-go/pkg/index"
	"ragbot-go/pkg/kafka"
	"ragbot-go/pkg/log"
	"ragbot-go/pkg/storage"
	"ragbot-go/pkg/token"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis 与对象存储
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	store, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		log.Fatal("对象存储初始化失败", err)
	}

	// 4. 初始化外部客户端
	indexClient := index.NewClient(cfg.Index)
	publisher := kafka.NewPublisher(cfg.Kafka)

	// 5. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	chatbotRepo := repository.NewChatbotRepository(database.DB)
	docRepo := repository.NewDocumentRepository(database.DB)
	convRepo := repository.NewConversationRepository(database.RDB)

	// 6. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TokenExpireHours)
	userService := service.NewUserService(userRepo, jwtManager)
	chatbotService := service.NewChatbotService(chatbotRepo, docRepo, convRepo, store, indexClient, publisher)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 8. 注册路由
	authHandler := handler.NewAuthHandler(userService)
	chatbotHandler := handler.NewChatbotHandler(chatbotService)

	apiV1 := r.Group("/api/v1")
	{
		// Auth 路由组 (公开访问)
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Chatbot 路由组，需要认证
		chatbots := apiV1.Group("/chatbots")
		chatbots.Use(middleware.AuthMiddleware(jwtManager))
		{
			chatbots.POST("/create", chatbotHandler.Create)
			chatbots.GET("", chatbotHandler.List)
			chatbots.POST("/query", chatbotHandler.Query)
			chatbots.POST("/:id/documents", chatbotHandler.AddDocuments)
			chatbots.GET("/:id/documents", chatbotHandler.ListDocuments)
			chatbots.GET("/:id/conversations", chatbotHandler.Conversations)
			chatbots.DELETE("/:id", chatbotHandler.Delete)
		}
	}

	// 9. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
