package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDayOfUsesCalendarDate(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	// JST的2024-01-10凌晨0:30，对应UTC还是1月9日
	moment := time.Date(2024, 1, 10, 0, 30, 0, 0, jst)

	day := DayOf(moment)
	require.Equal(t, "2024-01-10", day.String())

	utcDay := DayOf(moment.UTC())
	require.Equal(t, "2024-01-09", utcDay.String())
}

func TestParseDayRoundTrip(t *testing.T) {
	day, err := ParseDay("2024-01-10")
	require.NoError(t, err)
	require.Equal(t, "2024-01-10", day.String())

	_, err = ParseDay("2024/01/10")
	require.Error(t, err)
	_, err = ParseDay("")
	require.Error(t, err)
}

func TestDaySub(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"2024-01-11", "2024-01-10", 1},
		{"2024-01-10", "2024-01-10", 0},
		{"2024-01-15", "2024-01-11", 4},
		{"2024-03-01", "2024-02-28", 2},  // 2024是闰年
		{"2023-03-01", "2023-02-28", 1},  // 2023不是
		{"2024-01-01", "2023-12-31", 1},  // 跨年
		{"2024-01-10", "2000-01-01", 8775},
		{"2024-01-10", "2024-01-11", -1},
	}
	for _, c := range cases {
		a, err := ParseDay(c.a)
		require.NoError(t, err)
		b, err := ParseDay(c.b)
		require.NoError(t, err)
		require.Equal(t, c.want, a.Sub(b), "%s - %s", c.a, c.b)
	}
}

func TestDayNumberEpoch(t *testing.T) {
	day, err := ParseDay("1970-01-01")
	require.NoError(t, err)
	require.Equal(t, 0, day.Number())
}
