package admin

import (
	"fmt"
	"net/http"

	"github.com/CtrlC703/himamikuji-bot/internal/fortune"
	"github.com/CtrlC703/himamikuji-bot/internal/platform/backup"
	"github.com/CtrlC703/himamikuji-bot/internal/platform/config"
	"github.com/CtrlC703/himamikuji-bot/internal/sheet"
	"github.com/CtrlC703/himamikuji-bot/internal/streak"
	"github.com/gin-gonic/gin"
)

// 管理动作名，签名必须与动作绑定
const (
	ActionResetAll    = "reset_all"
	ActionExportSheet = "export_sheet"
)

// ResetAll 对所有用户执行批量重置：清空连续天数和最近的签，
// 保留累计次数、最高连续天数和各签统计。
// 这是一个不经过抽签引擎的带外批量操作。
func ResetAll(c *gin.Context) {
	count, err := streak.GlobalStore().ResetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "批量重置失败: " + err.Error()})
		return
	}

	// 重置后立刻触发一次快照，让SQLite跟上权威状态
	if err := backup.CreateConsistentSnapshotInDB(c.Request.Context()); err != nil {
		fmt.Printf("警告: 批量重置后的快照创建失败: %v\n", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "批量重置完成",
		"reset_count": count,
	})
}

// ExportSheet 把全部用户记录导出为CSV表格镜像。
func ExportSheet(c *gin.Context) {
	path := config.Cfg.App.ExportPath
	count, err := sheet.ExportCSV(c.Request.Context(), streak.GlobalStore(), fortune.GlobalTable(), path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导出表格镜像失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "表格镜像导出完成",
		"path":      path,
		"row_count": count,
	})
}
