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

	"smart-chat-go/internal/config"
	"smart-chat-go/internal/handler"
	"smart-chat-go/internal/middleware"
	"smart-chat-go/internal/repository"
	"smart-chat-go/internal/service"
	"smart-chat-go/internal/tool"
	"smart-chat-go/pkg/database"
	"smart-chat-go/pkg/embedding"
	"smart-chat-go/pkg/es"
	"smart-chat-go/pkg/llm"
	"smart-chat-go/pkg/log"
	"smart-chat-go/pkg/storage"
	"smart-chat-go/pkg/tika"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	cfg, err := config.Load("./configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis、对象存储与向量索引
	db, err := database.OpenSQLite(cfg.Database.SQLite.Path)
	if err != nil {
		log.Fatalf("SQLite 初始化失败: %v", err)
	}
	rdb, err := database.OpenRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	if err != nil {
		log.Fatalf("Redis 初始化失败: %v", err)
	}
	objectStore, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		log.Fatalf("MinIO 初始化失败: %v", err)
	}
	indexStore, err := es.NewClient(cfg.Elasticsearch, cfg.Embedding.Dimensions)
	if err != nil {
		log.Fatalf("Elasticsearch 初始化失败: %v", err)
	}

	// 4. 初始化 Repository
	threadRepo, err := repository.NewThreadRepository(db)
	if err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	turnLocker := repository.NewTurnLocker(rdb)

	// 5. 初始化 Service (依赖注入)
	tikaClient := tika.NewClient(cfg.Tika)
	embeddingClient := embedding.NewClient(cfg.Embedding)
	llmClient := llm.NewClient(cfg.LLM)
	registry := tool.NewRegistry(embeddingClient, indexStore)
	documentService := service.NewDocumentService(tikaClient, embeddingClient, indexStore, objectStore)
	threadService := service.NewThreadService(threadRepo, documentService)
	chatService := service.NewChatService(threadRepo, turnLocker, llmClient, registry)

	// 6. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	// 添加我们自定义的日志中间件和 Gin 的 Recovery 中间件
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 7. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		chat := apiV1.Group("/chat")
		{
			chat.POST("/send", handler.NewChatHandler(chatService).Send)
			chat.GET("/ws", handler.NewChatHandler(chatService).HandleWS)
		}

		threads := apiV1.Group("/thread")
		{
			threads.POST("/create", handler.NewThreadHandler(threadService).Create)
			threads.GET("/all", handler.NewThreadHandler(threadService).List)
			threads.GET("/:id/messages", handler.NewThreadHandler(threadService).Messages)
			threads.DELETE("/:id", handler.NewThreadHandler(threadService).Delete)
		}

		documents := apiV1.Group("/documents")
		{
			documents.POST("/upload", handler.NewDocumentHandler(documentService, threadService).Upload)
			documents.DELETE("/thread/:id", handler.NewDocumentHandler(documentService, threadService).DeleteByThread)
			documents.GET("/list", handler.NewDocumentHandler(documentService, threadService).List)
		}
	}

	// 8. 启动 HTTP 服务器并实现优雅停机
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

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
