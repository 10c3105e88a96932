package record

import (
	"fmt"
	"time"
)

// DayFormat 是日历日的序列化格式。
const DayFormat = "2006-01-02"

// Day 表示参照时区下的一个日历日（不含时刻）。
// 所有“今天/昨天”的判定都通过整数日差完成，避免字符串比较带来的隐性错误。
type Day struct {
	Year  int
	Month time.Month
	Date  int
}

// DayOf 取出一个时间点所在的日历日。
// 调用方必须先把时间换算到参照时区再调用。
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Date: d}
}

// ParseDay 解析 "2006-01-02" 格式的日历日。
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return Day{}, fmt.Errorf("无法解析日历日 '%s': %w", s, err)
	}
	return DayOf(t), nil
}

// String 返回 "2006-01-02" 格式的字符串。
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Date)
}

// IsZero 判断是否为零值。
func (d Day) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Date == 0
}

// Number 返回该日距1970-01-01的天数，可为负。
// 采用纯日历算法，与时区和夏令时无关。
func (d Day) Number() int {
	y := d.Year
	m := int(d.Month)
	if m <= 2 {
		y--
	}
	era := y / 400
	if y < 0 && y%400 != 0 {
		era--
	}
	yoe := y - era*400 // [0, 399]
	var doy int       // [0, 365]
	if m > 2 {
		doy = (153*(m-3)+2)/5 + d.Date - 1
	} else {
		doy = (153*(m+9)+2)/5 + d.Date - 1
	}
	doe := yoe*365 + yoe/4 - yoe/100 + doy // [0, 146096]
	return era*146097 + doe - 719468
}

// Sub 返回两个日历日之间的整数日差 (d - other)。
func (d Day) Sub(other Day) int {
	return d.Number() - other.Number()
}
