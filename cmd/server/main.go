package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/CtrlC703/himamikuji-bot/api"
	"github.com/CtrlC703/himamikuji-bot/internal/fortune"
	"github.com/CtrlC703/himamikuji-bot/internal/platform/backup"
	"github.com/CtrlC703/himamikuji-bot/internal/platform/config"
	"github.com/CtrlC703/himamikuji-bot/internal/platform/database"
	"github.com/CtrlC703/himamikuji-bot/internal/platform/health"
	"github.com/CtrlC703/himamikuji-bot/internal/platform/shutdown"
	"github.com/CtrlC703/himamikuji-bot/internal/platform/startup"
	"github.com/CtrlC703/himamikuji-bot/internal/record"
	"github.com/CtrlC703/himamikuji-bot/internal/streak"
	"github.com/CtrlC703/himamikuji-bot/pkg/lifecycle"
	"github.com/CtrlC703/himamikuji-bot/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env 可以覆盖配置文件中的敏感项（例如管理密钥）
	if err := godotenv.Load(); err == nil {
		fmt.Println(".env 文件已加载。")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("无法加载配置: %v", err))
	}

	if err := token.SetSecret(cfg.Admin.Secret); err != nil {
		panic(fmt.Sprintf("管理密钥配置非法: %v", err))
	}

	loc, err := cfg.Location()
	if err != nil {
		panic(err.Error())
	}

	database.InitDB(cfg.Database.Sqlite)
	database.InitRedis(cfg.Database.Redis)
	fmt.Println("Redis 连接成功！")

	// 阻塞式获取初始Run ID
	health.InitializeRunID()

	// 执行应用首次启动初始化流程
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 签表和抽签引擎
	table := fortune.DefaultTable()
	fortune.SetGlobalTable(table)
	streak.InitEngine(record.NewRedisStore(), table, loc)

	// 阻塞式执行一次启动后健康检查
	fmt.Println("正在执行启动后健康检查...")
	health.PerformCheck()

	// 异步启动后台的持续健康检查器
	go health.StartRedisHealthCheck()

	// 生命周期管理与后台服务
	gracefulManager := lifecycle.NewManager()
	forcefulManager := lifecycle.NewManager()

	backupHandle, err := gracefulManager.NewServiceHandle("backup-scheduler")
	if err != nil {
		panic(fmt.Sprintf("无法注册备份调度器: %v", err))
	}
	go backup.StartBackupScheduler(backupHandle)

	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("Failed to start server: " + err.Error())
		}
	}()

	// 阻塞等待停机信号并编排优雅停机
	coordinator := shutdown.NewCoordinator(gracefulManager, forcefulManager)
	coordinator.ListenForSignalsAndShutdown(server)
}
