package record

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/CtrlC703/himamikuji-bot/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

// RedisStore 是权威的记录存储后端。
// 记录以JSON形式存在 record:stats 哈希表中，连续天数进入排名Sorted Set，
// 发生变化的用户进入脏集合等待快照备份到SQLite。
type RedisStore struct{}

// NewRedisStore 构造Redis后端。
func NewRedisStore() *RedisStore {
	return &RedisStore{}
}

// Load 按用户标识从Redis哈希表加载记录。
func (s *RedisStore) Load(ctx context.Context, userID string) (*UserRecord, error) {
	RLockRepository()
	defer RUnlockRepository()

	recJSON, err := database.RDB.HGet(ctx, StatsKey, userID).Result()
	if err == redis.Nil {
		return nil, nil // 真正的新用户
	}
	if err != nil {
		return nil, fmt.Errorf("%w: 无法从Redis读取用户 %s 的记录: %v", ErrStoreUnavailable, userID, err)
	}

	var rec UserRecord
	if err := json.Unmarshal([]byte(recJSON), &rec); err != nil {
		return nil, fmt.Errorf("%w: 用户 %s 的记录JSON无法解析: %v", ErrInvalidRecordState, userID, err)
	}
	if rec.OutcomeCounts == nil {
		rec.OutcomeCounts = make(map[string]int)
	}
	return &rec, nil
}

// Save 持久化完整的记录。
// 哈希写入、排名更新和脏标记在同一个事务Pipeline中完成；
// 相同内容的重复保存只会把同样的值再写一遍，对外部可见状态没有影响。
func (s *RedisStore) Save(ctx context.Context, rec *UserRecord) error {
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("无法序列化用户 %s 的记录: %w", rec.UserID, err)
	}

	RLockRepository()
	defer RUnlockRepository()

	pipe := database.RDB.TxPipeline()
	pipe.HSet(ctx, StatsKey, rec.UserID, recJSON)
	pipe.ZAdd(ctx, RankingKey, redis.Z{Score: float64(rec.CurrentStreak), Member: rec.UserID})
	pipe.SAdd(ctx, DirtySetKey, rec.UserID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: 无法将用户 %s 的记录写入Redis: %v", ErrStoreUnavailable, rec.UserID, err)
	}
	return nil
}

// All 返回全部用户记录。
func (s *RedisStore) All(ctx context.Context) ([]UserRecord, error) {
	RLockRepository()
	defer RUnlockRepository()

	statsMap, err := database.RDB.HGetAll(ctx, StatsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: 无法从Redis读取全部记录: %v", ErrStoreUnavailable, err)
	}

	records := make([]UserRecord, 0, len(statsMap))
	for userID, recJSON := range statsMap {
		var rec UserRecord
		if err := json.Unmarshal([]byte(recJSON), &rec); err != nil {
			return nil, fmt.Errorf("%w: 用户 %s 的记录JSON无法解析: %v", ErrInvalidRecordState, userID, err)
		}
		if rec.OutcomeCounts == nil {
			rec.OutcomeCounts = make(map[string]int)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ResetAll 对每个现有记录执行管理重置。
// 整个模块在重置期间保持写锁定，保证快照备份不会读到半新半旧的状态。
func (s *RedisStore) ResetAll(ctx context.Context) (int, error) {
	LockRepository()
	defer UnlockRepository()

	statsMap, err := database.RDB.HGetAll(ctx, StatsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: 无法从Redis读取全部记录: %v", ErrStoreUnavailable, err)
	}
	if len(statsMap) == 0 {
		return 0, nil
	}

	pipe := database.RDB.TxPipeline()
	count := 0
	for userID, recJSON := range statsMap {
		var rec UserRecord
		if err := json.Unmarshal([]byte(recJSON), &rec); err != nil {
			return 0, fmt.Errorf("%w: 用户 %s 的记录JSON无法解析: %v", ErrInvalidRecordState, userID, err)
		}
		rec.ApplyReset()

		newJSON, err := json.Marshal(&rec)
		if err != nil {
			return 0, fmt.Errorf("无法序列化用户 %s 的记录: %w", userID, err)
		}
		pipe.HSet(ctx, StatsKey, userID, newJSON)
		pipe.ZAdd(ctx, RankingKey, redis.Z{Score: 0, Member: userID})
		pipe.SAdd(ctx, DirtySetKey, userID)
		count++
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: 批量重置写入Redis失败: %v", ErrStoreUnavailable, err)
	}
	return count, nil
}
