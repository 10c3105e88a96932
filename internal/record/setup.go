package record

import (
	"encoding/json"
	"fmt"

	"github.com/CtrlC703/himamikuji-bot/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&UserRecord{}); err != nil {
		return fmt.Errorf("无法迁移user_records表: %w", err)
	}
	fmt.Println("UserRecord数据库表迁移成功。")
	return nil
}

// WarmupCache 从SQLite加载所有用户记录，并预热到Redis中。
// 调用方负责在需要时持有模块写锁。
func WarmupCache() error {
	var records []UserRecord
	if err := database.DB.Find(&records).Error; err != nil {
		return fmt.Errorf("无法从SQLite读取用户记录: %w", err)
	}

	// 先清空旧的缓存键，确保数据一致性
	pipe := database.RDB.Pipeline()
	pipe.Del(database.Ctx, StatsKey, RankingKey, DirtySetKey, ProcessingDirtySetKey)

	for i := range records {
		rec := &records[i]
		if rec.OutcomeCounts == nil {
			rec.OutcomeCounts = make(map[string]int)
		}
		recJSON, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("无法序列化用户 %s 的记录: %w", rec.UserID, err)
		}
		pipe.HSet(database.Ctx, StatsKey, rec.UserID, recJSON)
		pipe.ZAdd(database.Ctx, RankingKey, redis.Z{Score: float64(rec.CurrentStreak), Member: rec.UserID})
	}

	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热用户记录到Redis失败: %w", err)
	}

	if len(records) > 0 {
		fmt.Printf("成功预热 %d 条用户记录到Redis。\n", len(records))
	} else {
		fmt.Println("无现有用户记录，无需预热缓存。")
	}
	return nil
}

// PrimeCachedDB 是record模块的初始化总入口
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}
