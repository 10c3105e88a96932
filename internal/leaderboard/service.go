package leaderboard

import (
	"encoding/json"
	"fmt"

	"github.com/CtrlC703/himamikuji-bot/internal/platform/database"
	"github.com/CtrlC703/himamikuji-bot/internal/record"
)

// RankedUserDTO 包含了排行榜API所需的单个用户数据
type RankedUserDTO struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"user_id"`
	DisplayName   string `json:"display_name"`
	CurrentStreak int    `json:"current_streak"`
	BestStreak    int    `json:"best_streak"`
	TotalDraws    int    `json:"total_draws"`
}

// GetStreakRanking 从Redis中获取按当前连续天数排序的用户列表。
// limit <= 0 表示不限制条数。
func GetStreakRanking(limit int) ([]RankedUserDTO, error) {
	record.RLockRepository()
	defer record.RUnlockRepository()

	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	// 1. 从Sorted Set获取用户ID，按连续天数从高到低排序
	userIDs, err := database.RDB.ZRevRange(database.Ctx, record.RankingKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("无法从Redis获取排行榜ID: %w", err)
	}
	if len(userIDs) == 0 {
		return []RankedUserDTO{}, nil
	}

	// 2. 一次性获取所有上榜用户的完整记录
	recJSONs, err := database.RDB.HMGet(database.Ctx, record.StatsKey, userIDs...).Result()
	if err != nil {
		return nil, fmt.Errorf("无法从Redis批量获取用户记录: %w", err)
	}

	// 3. 组合成DTO列表
	ranked := make([]RankedUserDTO, 0, len(userIDs))
	for i, id := range userIDs {
		if recJSONs[i] == nil {
			continue // 排名和记录之间出现裂缝，跳过这一条
		}
		var rec record.UserRecord
		if err := json.Unmarshal([]byte(recJSONs[i].(string)), &rec); err != nil {
			return nil, fmt.Errorf("无法解析用户 %s 的记录: %w", id, err)
		}
		ranked = append(ranked, RankedUserDTO{
			Rank:          i + 1,
			UserID:        id,
			DisplayName:   rec.DisplayName,
			CurrentStreak: rec.CurrentStreak,
			BestStreak:    rec.BestStreak,
			TotalDraws:    rec.TotalDraws,
		})
	}
	return ranked, nil
}
