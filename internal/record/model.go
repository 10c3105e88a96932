package record

import (
	"fmt"
	"time"
)

// ResetSentinelDate 是批量重置时写入 LastDrawDate 的哨兵日期。
// 它远在过去，保证重置后的第一次抽签一定按“断签”处理。
const ResetSentinelDate = "2000-01-01"

// UserRecord 定义了每个用户在SQLite数据库中的持久化模型。
// Redis中缓存的是同一结构体的JSON序列化。
type UserRecord struct {
	// UserID 是用户的主键，来自聊天平台的用户标识。
	UserID string `gorm:"primarykey;type:varchar(32)" json:"user_id"`

	// DisplayName 是用户当前的显示名，仅用于对外展示和表格镜像。
	DisplayName string `json:"display_name"`

	// LastDrawDate 是最近一次成功抽签的日历日（参照时区），"2006-01-02"格式。
	// 空串表示从未抽过签。
	LastDrawDate string `json:"last_draw_date"`

	// LastDrawTime 是最近一次成功抽签的钟表时刻，仅用于展示。
	LastDrawTime string `json:"last_draw_time"`

	// LastOutcome 是最近一次抽到的签的标识，空串表示无。
	LastOutcome string `json:"last_outcome"`

	// CurrentStreak 是以 LastDrawDate 结尾的连续抽签天数。
	CurrentStreak int `json:"current_streak"`

	// TotalDraws 是累计成功抽签次数。
	TotalDraws int `json:"total_draws"`

	// BestStreak 是历史最高连续天数。
	BestStreak int `json:"best_streak"`

	// OutcomeCounts 记录每种签被抽中的次数。
	OutcomeCounts map[string]int `gorm:"serializer:json" json:"outcome_counts"`

	// 由GORM自动管理
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// NewUserRecord 为一个首次出现的用户构造全零记录。
func NewUserRecord(userID, displayName string) *UserRecord {
	return &UserRecord{
		UserID:        userID,
		DisplayName:   displayName,
		OutcomeCounts: make(map[string]int),
	}
}

// LastDay 返回最近一次抽签的日历日。
// 第二个返回值为false表示该用户从未抽过签。
func (r *UserRecord) LastDay() (Day, bool) {
	if r.LastDrawDate == "" {
		return Day{}, false
	}
	day, err := ParseDay(r.LastDrawDate)
	if err != nil {
		return Day{}, false
	}
	return day, true
}

// CountsSum 返回各签次数之和。
func (r *UserRecord) CountsSum() int {
	sum := 0
	for _, c := range r.OutcomeCounts {
		sum += c
	}
	return sum
}

// Validate 对从存储读回的记录做自检。
// 检查失败意味着存储中的数据已经损坏，调用方应当拒绝继续计算而不是猜测修复值。
func (r *UserRecord) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("%w: 记录缺少用户标识", ErrInvalidRecordState)
	}
	if r.CurrentStreak < 0 || r.TotalDraws < 0 || r.BestStreak < 0 {
		return fmt.Errorf("%w: 用户 %s 的计数出现负值", ErrInvalidRecordState, r.UserID)
	}
	if r.BestStreak < r.CurrentStreak {
		return fmt.Errorf("%w: 用户 %s 的最高连续天数 %d 小于当前连续天数 %d", ErrInvalidRecordState, r.UserID, r.BestStreak, r.CurrentStreak)
	}
	for id, c := range r.OutcomeCounts {
		if c < 0 {
			return fmt.Errorf("%w: 用户 %s 的签 '%s' 次数为负", ErrInvalidRecordState, r.UserID, id)
		}
	}
	if sum := r.CountsSum(); sum != r.TotalDraws {
		return fmt.Errorf("%w: 用户 %s 的各签次数之和 %d 与累计次数 %d 不一致", ErrInvalidRecordState, r.UserID, sum, r.TotalDraws)
	}
	if r.LastDrawDate == "" {
		if r.CurrentStreak != 0 || r.TotalDraws != 0 {
			return fmt.Errorf("%w: 用户 %s 从未抽签但计数非零", ErrInvalidRecordState, r.UserID)
		}
	} else {
		if _, err := ParseDay(r.LastDrawDate); err != nil {
			return fmt.Errorf("%w: 用户 %s 的抽签日期无法解析: %v", ErrInvalidRecordState, r.UserID, err)
		}
	}
	return nil
}

// ApplyReset 对记录执行管理重置：清空当前连续天数和最近一次的签，
// 保留累计次数、最高连续天数和各签统计。
// 抽过签的用户写入哨兵日期而不是空串，以维持“无日期即全零”的不变量。
func (r *UserRecord) ApplyReset() {
	if r.TotalDraws > 0 {
		r.LastDrawDate = ResetSentinelDate
	} else {
		r.LastDrawDate = ""
	}
	r.LastDrawTime = ""
	r.LastOutcome = ""
	r.CurrentStreak = 0
}

// Clone 返回记录的深拷贝，避免调用方共享计数map。
func (r *UserRecord) Clone() *UserRecord {
	clone := *r
	clone.OutcomeCounts = make(map[string]int, len(r.OutcomeCounts))
	for id, c := range r.OutcomeCounts {
		clone.OutcomeCounts[id] = c
	}
	return &clone
}
