package streak

import (
	"errors"
	"net/http"
	"time"

	"github.com/CtrlC703/himamikuji-bot/internal/record"
	"github.com/gin-gonic/gin"
)

// DrawRequestBody 定义了抽签接口请求体的JSON结构
type DrawRequestBody struct {
	UserID      string `json:"user_id" binding:"required"`
	DisplayName string `json:"display_name"`
}

// DrawFortune 处理一次抽签请求。
// 面向用户的文案（表情、消息格式）由聊天网关负责，这里只返回结构化结果；
// 网关必须区分“今天已经抽过”（不是错误）和“系统没能记录这次抽签”（是错误）。
func DrawFortune(c *gin.Context) {
	var body DrawRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	// 每用户互斥由这里提供：引擎要求同一用户至多一次在途的抽签
	record.LockUser(body.UserID)
	defer record.UnlockUser(body.UserID)

	result, err := globalEngine.AttemptDraw(c.Request.Context(), DrawRequest{
		UserID:      body.UserID,
		DisplayName: body.DisplayName,
		Now:         time.Now(),
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, record.ErrStoreUnavailable) || errors.Is(err, record.ErrStoreConflict) {
			status = http.StatusServiceUnavailable
		}
		// 不向网关声称抽签发生过
		c.JSON(status, gin.H{"error": "处理抽签失败: " + err.Error()})
		return
	}

	rec := result.Record
	c.JSON(http.StatusOK, gin.H{
		"already_drawn":  result.AlreadyDrawn,
		"outcome":        result.Outcome,
		"display_name":   rec.DisplayName,
		"current_streak": rec.CurrentStreak,
		"total_draws":    rec.TotalDraws,
		"best_streak":    rec.BestStreak,
		"last_draw_date": rec.LastDrawDate,
		"last_draw_time": rec.LastDrawTime,
	})
}

// GetRecord 返回单个用户的当前记录。
func GetRecord(c *gin.Context) {
	userID := c.Param("id")

	rec, err := globalStore.Load(c.Request.Context(), userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, record.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": "读取用户记录失败: " + err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "用户不存在"})
		return
	}

	c.JSON(http.StatusOK, rec)
}
