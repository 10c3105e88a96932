package streak

import (
	"context"
	"fmt"
	"strconv"

	"github.com/CtrlC703/himamikuji-bot/internal/platform/database"
	"github.com/CtrlC703/himamikuji-bot/internal/platform/metadata"
)

// liveEventSink 是生产环境的EventSink实现：
// 把每次成功抽签追加到SQLite事件日志，并递增Redis中的全站实时计数器。
// 两者都是由权威记录喂数据的镜像目标，失败只告警，不影响已完成的抽签。
type liveEventSink struct{}

// NewLiveEventSink 构造生产环境的事件接收方。
func NewLiveEventSink() EventSink {
	return &liveEventSink{}
}

func (s *liveEventSink) RecordDraw(ctx context.Context, event DrawEvent) {
	if err := database.DB.Create(&event).Error; err != nil {
		fmt.Printf("警告: 无法写入抽签事件日志 (用户 %s): %v\n", event.UserID, err)
	}

	if err := database.RDB.Incr(ctx, metadata.RedisTotalDrawsKey).Err(); err != nil {
		fmt.Printf("警告: 无法递增全站抽签计数器: %v\n", err)
	}
}

// TotalDrawCount 返回全站实时累计抽签次数。
func TotalDrawCount(ctx context.Context) (int64, error) {
	valueStr, err := database.RDB.Get(ctx, metadata.RedisTotalDrawsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("无法读取全站抽签计数器: %w", err)
	}
	count, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("全站抽签计数器的值无法解析: %w", err)
	}
	return count, nil
}
