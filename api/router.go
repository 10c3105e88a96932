package api

import (
	"net/http"

	"github.com/CtrlC703/himamikuji-bot/internal/admin"
	"github.com/CtrlC703/himamikuji-bot/internal/fortune"
	"github.com/CtrlC703/himamikuji-bot/internal/leaderboard"
	"github.com/CtrlC703/himamikuji-bot/internal/streak"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	// 保活端点，给外部探活服务用
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Bot is running!")
	})

	api := router.Group("/api")
	{
		// 抽签相关的路由组 /api/fortune
		fortuneRoutes := api.Group("/fortune")
		{
			fortuneRoutes.POST("/draw", streak.DrawFortune)
			fortuneRoutes.GET("/record/:id", streak.GetRecord)
			fortuneRoutes.GET("/ranking", leaderboard.GetRanking)
			fortuneRoutes.GET("/outcomes", fortune.GetOutcomes)
		}

		// 管理相关的路由组 /api/admin，全部要求HMAC签名
		adminRoutes := api.Group("/admin")
		{
			adminRoutes.POST("/reset", admin.RequireSignature(admin.ActionResetAll), admin.ResetAll)
			adminRoutes.POST("/export", admin.RequireSignature(admin.ActionExportSheet), admin.ExportSheet)
		}
	}
}
