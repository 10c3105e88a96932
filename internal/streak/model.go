package streak

import (
	"gorm.io/gorm"
)

// DrawEvent 定义了单次成功抽签的追加式日志记录。
// 它是由权威记录喂数据的历史镜像，只写不读。
type DrawEvent struct {
	gorm.Model

	// UserID 是抽签用户的标识
	UserID string `gorm:"index" json:"user_id"`

	// DrawDate 是抽签的日历日（参照时区），"2006-01-02"格式
	DrawDate string `json:"draw_date"`

	// DrawTime 是抽签的钟表时刻，仅用于展示
	DrawTime string `json:"draw_time"`

	// Outcome 是本次抽到的签
	Outcome string `json:"outcome"`

	// StreakAfter 是本次抽签后的连续天数
	StreakAfter int `json:"streak_after"`
}
