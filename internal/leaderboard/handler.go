package leaderboard

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultRankingLimit = 20

// GetRanking 返回当前连续天数排行榜。
func GetRanking(c *gin.Context) {
	limit := defaultRankingLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit参数必须是正整数"})
			return
		}
		limit = parsed
	}

	ranked, err := GetStreakRanking(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取排行榜失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ranking": ranked})
}
