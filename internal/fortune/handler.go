package fortune

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// globalTable 是应用运行时使用的签表，由main在启动时注入。
var globalTable *Table

// SetGlobalTable 注入应用运行时使用的签表。
func SetGlobalTable(t *Table) {
	globalTable = t
}

// GlobalTable 返回应用运行时使用的签表。
func GlobalTable() *Table {
	return globalTable
}

// GetOutcomes 返回签表的全部内容，供前端展示各签的权重。
func GetOutcomes(c *gin.Context) {
	if globalTable == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "签表尚未初始化"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"outcomes":     globalTable.Outcomes(),
		"total_weight": globalTable.TotalWeight(),
	})
}
