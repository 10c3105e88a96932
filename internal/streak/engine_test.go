package streak

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/CtrlC703/himamikuji-bot/internal/fortune"
	"github.com/CtrlC703/himamikuji-bot/internal/record"
	"github.com/stretchr/testify/require"
)

// mockStore 是内存中的Store实现，支持注入保存失败和人为延迟。
type mockStore struct {
	mu        sync.Mutex
	records   map[string]*record.UserRecord
	saveCount int
	saveErr   error
	loadDelay time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{records: make(map[string]*record.UserRecord)}
}

func (s *mockStore) Load(ctx context.Context, userID string) (*record.UserRecord, error) {
	if s.loadDelay > 0 {
		time.Sleep(s.loadDelay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

func (s *mockStore) Save(ctx context.Context, rec *record.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saveCount++
	s.records[rec.UserID] = rec.Clone()
	return nil
}

var testZone = time.FixedZone("JST", 9*3600)

func newTestEngine(store record.Store) *Engine {
	return NewEngineWithRand(store, fortune.DefaultTable(), testZone, rand.New(rand.NewSource(1)))
}

func at(date string, hour, min int) time.Time {
	day, err := time.ParseInLocation("2006-01-02", date, testZone)
	if err != nil {
		panic(err)
	}
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func TestAttemptDrawFullScenario(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(store)
	ctx := context.Background()
	req := func(now time.Time) DrawRequest {
		return DrawRequest{UserID: "42", DisplayName: "ひま", Now: now}
	}

	// 没有任何历史记录的首次抽签
	result, err := engine.AttemptDraw(ctx, req(at("2024-01-10", 9, 30)))
	require.NoError(t, err)
	require.False(t, result.AlreadyDrawn)
	require.NotEmpty(t, result.Outcome)
	require.Equal(t, 1, result.Record.CurrentStreak)
	require.Equal(t, 1, result.Record.TotalDraws)
	require.Equal(t, 1, result.Record.BestStreak)
	require.Equal(t, "2024-01-10", result.Record.LastDrawDate)
	require.Equal(t, "09:30", result.Record.LastDrawTime)
	require.Equal(t, 1, result.Record.OutcomeCounts[result.Outcome])
	require.Equal(t, 1, result.Record.CountsSum())
	require.Equal(t, 1, store.saveCount)
	firstOutcome := result.Outcome

	// 同日重复调用：返回当时的状态，不再写入
	result, err = engine.AttemptDraw(ctx, req(at("2024-01-10", 23, 59)))
	require.NoError(t, err)
	require.True(t, result.AlreadyDrawn)
	require.Equal(t, firstOutcome, result.Outcome)
	require.Equal(t, 1, result.Record.CurrentStreak)
	require.Equal(t, "09:30", result.Record.LastDrawTime)
	require.Equal(t, 1, store.saveCount) // 没有第二次save

	// 第二天：连续天数延续
	result, err = engine.AttemptDraw(ctx, req(at("2024-01-11", 8, 0)))
	require.NoError(t, err)
	require.False(t, result.AlreadyDrawn)
	require.Equal(t, 2, result.Record.CurrentStreak)
	require.Equal(t, 2, result.Record.TotalDraws)
	require.Equal(t, 2, result.Record.BestStreak)

	// 隔了4天：断签，从1重来，最高纪录保持
	result, err = engine.AttemptDraw(ctx, req(at("2024-01-15", 8, 0)))
	require.NoError(t, err)
	require.False(t, result.AlreadyDrawn)
	require.Equal(t, 1, result.Record.CurrentStreak)
	require.Equal(t, 3, result.Record.TotalDraws)
	require.Equal(t, 2, result.Record.BestStreak)
	require.Equal(t, 3, result.Record.CountsSum())
}

func TestAttemptDrawContinuationUpdatesBest(t *testing.T) {
	store := newMockStore()
	store.records["42"] = &record.UserRecord{
		UserID:        "42",
		LastDrawDate:  "2024-01-09",
		LastDrawTime:  "10:00",
		LastOutcome:   "吉",
		CurrentStreak: 7,
		TotalDraws:    20,
		BestStreak:    7,
		OutcomeCounts: map[string]int{"吉": 20},
	}
	engine := newTestEngine(store)

	result, err := engine.AttemptDraw(context.Background(), DrawRequest{
		UserID: "42", Now: at("2024-01-10", 12, 0),
	})
	require.NoError(t, err)
	require.Equal(t, 8, result.Record.CurrentStreak)
	require.Equal(t, 8, result.Record.BestStreak)
	require.Equal(t, 21, result.Record.TotalDraws)
}

func TestAttemptDrawDayBoundary(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(store)
	ctx := context.Background()
	req := func(now time.Time) DrawRequest {
		return DrawRequest{UserID: "42", Now: now}
	}

	// 23:59抽签后，第二天0:01就是新的一天
	_, err := engine.AttemptDraw(ctx, req(at("2024-01-10", 23, 59)))
	require.NoError(t, err)

	result, err := engine.AttemptDraw(ctx, req(at("2024-01-11", 0, 1)))
	require.NoError(t, err)
	require.False(t, result.AlreadyDrawn)
	require.Equal(t, 2, result.Record.CurrentStreak)
}

func TestAttemptDrawSimulatedMonth(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	// 1月里隔天抽签：每次都断签，但累计次数等于抽签天数
	days := []string{
		"2024-01-01", "2024-01-03", "2024-01-05", "2024-01-07",
		"2024-01-09", "2024-01-11", "2024-01-13", "2024-01-15",
	}
	for _, d := range days {
		result, err := engine.AttemptDraw(ctx, DrawRequest{UserID: "42", Now: at(d, 12, 0)})
		require.NoError(t, err)
		require.Equal(t, 1, result.Record.CurrentStreak)
	}

	rec := store.records["42"]
	require.Equal(t, len(days), rec.TotalDraws)
	require.Equal(t, len(days), rec.CountsSum())
	require.Equal(t, 1, rec.BestStreak)
}

func TestAttemptDrawSaveFailureSurfaces(t *testing.T) {
	store := newMockStore()
	store.saveErr = record.ErrStoreUnavailable
	engine := newTestEngine(store)

	_, err := engine.AttemptDraw(context.Background(), DrawRequest{
		UserID: "42", Now: at("2024-01-10", 12, 0),
	})
	// 保存失败必须向上冒泡，而不是被当成抽签成功
	require.ErrorIs(t, err, record.ErrStoreUnavailable)
	require.Empty(t, store.records)

	// 失败之后同一天重试仍然是一次全新的抽签
	store.saveErr = nil
	result, err := engine.AttemptDraw(context.Background(), DrawRequest{
		UserID: "42", Now: at("2024-01-10", 12, 5),
	})
	require.NoError(t, err)
	require.False(t, result.AlreadyDrawn)
	require.Equal(t, 1, result.Record.TotalDraws)
}

func TestAttemptDrawRejectsCorruptRecord(t *testing.T) {
	store := newMockStore()
	store.records["42"] = &record.UserRecord{
		UserID:        "42",
		LastDrawDate:  "2024-01-09",
		CurrentStreak: 5,
		TotalDraws:    3,
		BestStreak:    2, // best < current：存储已损坏
		OutcomeCounts: map[string]int{"吉": 3},
	}
	engine := newTestEngine(store)

	_, err := engine.AttemptDraw(context.Background(), DrawRequest{
		UserID: "42", Now: at("2024-01-10", 12, 0),
	})
	require.ErrorIs(t, err, record.ErrInvalidRecordState)
	require.Equal(t, 0, store.saveCount)
}

func TestAttemptDrawAfterReset(t *testing.T) {
	store := newMockStore()
	rec := &record.UserRecord{
		UserID:        "42",
		LastDrawDate:  "2024-01-09",
		LastOutcome:   "吉",
		CurrentStreak: 6,
		TotalDraws:    30,
		BestStreak:    9,
		OutcomeCounts: map[string]int{"吉": 30},
	}
	rec.ApplyReset()
	store.records["42"] = rec
	engine := newTestEngine(store)

	// 重置后的第一次抽签按断签处理，历史统计继续累加
	result, err := engine.AttemptDraw(context.Background(), DrawRequest{
		UserID: "42", Now: at("2024-01-10", 12, 0),
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Record.CurrentStreak)
	require.Equal(t, 31, result.Record.TotalDraws)
	require.Equal(t, 9, result.Record.BestStreak)
}

func TestConcurrentDrawsOnlyOneWins(t *testing.T) {
	store := newMockStore()
	store.loadDelay = 20 * time.Millisecond // 拉开load和save的窗口，放大竞态
	engine := newTestEngine(store)

	// 引擎依赖调用方提供的每用户互斥（与handler相同的加锁方式）。
	// 两个几乎同时的抽签中必须恰好一个抽出新签，另一个观察到“已抽过”。
	attempt := func() *Result {
		record.LockUser("42")
		defer record.UnlockUser("42")
		result, err := engine.AttemptDraw(context.Background(), DrawRequest{
			UserID: "42", Now: at("2024-01-10", 12, 0),
		})
		require.NoError(t, err)
		return result
	}

	results := make(chan *Result, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- attempt()
		}()
	}
	wg.Wait()
	close(results)

	newDraws, alreadyDrawn := 0, 0
	for result := range results {
		if result.AlreadyDrawn {
			alreadyDrawn++
		} else {
			newDraws++
		}
	}
	require.Equal(t, 1, newDraws)
	require.Equal(t, 1, alreadyDrawn)
	require.Equal(t, 1, store.saveCount)
	require.Equal(t, 1, store.records["42"].TotalDraws)
}

func TestEventSinkReceivesNewDrawsOnly(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(store)

	var events []DrawEvent
	engine.SetEventSink(eventSinkFunc(func(ctx context.Context, event DrawEvent) {
		events = append(events, event)
	}))

	ctx := context.Background()
	_, err := engine.AttemptDraw(ctx, DrawRequest{UserID: "42", Now: at("2024-01-10", 12, 0)})
	require.NoError(t, err)
	_, err = engine.AttemptDraw(ctx, DrawRequest{UserID: "42", Now: at("2024-01-10", 13, 0)})
	require.NoError(t, err)

	// 只有第一次成功抽签产生事件
	require.Len(t, events, 1)
	require.Equal(t, "42", events[0].UserID)
	require.Equal(t, "2024-01-10", events[0].DrawDate)
	require.Equal(t, 1, events[0].StreakAfter)
}

// eventSinkFunc 让普通函数实现EventSink接口。
type eventSinkFunc func(ctx context.Context, event DrawEvent)

func (f eventSinkFunc) RecordDraw(ctx context.Context, event DrawEvent) {
	f(ctx, event)
}
