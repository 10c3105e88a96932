package streak

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/CtrlC703/himamikuji-bot/internal/fortune"
	"github.com/CtrlC703/himamikuji-bot/internal/record"
)

// timeOfDayFormat 是 LastDrawTime 的展示格式。
const timeOfDayFormat = "15:04"

// DrawRequest 是一次抽签请求。
// DisplayName 由调用方透传，核心逻辑不解释它，只随记录保存以供镜像展示。
type DrawRequest struct {
	UserID      string
	DisplayName string
	Now         time.Time
}

// Result 是一次抽签尝试的结果。
//
// AlreadyDrawn 为true时表示该用户今天已经抽过签：Outcome/Record反映的是
// 今天早些时候那次抽签的状态，本次调用没有产生任何写入。
// 为false时表示本次成功抽出了新签，Record是已经持久化的最新记录。
type Result struct {
	AlreadyDrawn bool
	Outcome      string
	Record       *record.UserRecord
}

// EventSink 接收每次成功抽签的通知，用于喂事件日志等镜像目标。
// 镜像失败不影响抽签本身的成败。
type EventSink interface {
	RecordDraw(ctx context.Context, event DrawEvent)
}

// Engine 是每日抽签的规则求值器。
//
// 它自己不做任何加锁：同一用户同一时刻至多一次在途的AttemptDraw，
// 由调用方通过 record.LockUser 提供（见handler）。没有这个保证，
// 两次几乎同时的抽签可能都观察到“今天还没抽”，导致计数翻倍。
type Engine struct {
	store  record.Store
	table  *fortune.Table
	loc    *time.Location
	events EventSink

	// *rand.Rand 不是并发安全的，不同用户的抽签会并发到达
	randMu sync.Mutex
	rng    *rand.Rand
}

// NewEngine 构造使用非确定性随机源的引擎。
func NewEngine(store record.Store, table *fortune.Table, loc *time.Location) *Engine {
	return NewEngineWithRand(store, table, loc, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewEngineWithRand 构造使用注入随机源的引擎，测试用它获得可复现的抽签序列。
func NewEngineWithRand(store record.Store, table *fortune.Table, loc *time.Location, rng *rand.Rand) *Engine {
	return &Engine{
		store: store,
		table: table,
		loc:   loc,
		rng:   rng,
	}
}

// SetEventSink 注入成功抽签的通知接收方。
func (e *Engine) SetEventSink(sink EventSink) {
	e.events = sink
}

// draw 加权抽取一支签。
func (e *Engine) draw() string {
	e.randMu.Lock()
	defer e.randMu.Unlock()
	return e.table.Draw(e.rng)
}

// AttemptDraw 对一个用户执行一次抽签尝试。
//
// 流程固定为 加载 -> 计算 -> 保存：要么完整的新记录被成功持久化并返回新签，
// 要么什么都不写入并向上返回错误。引擎内部不做重试，重试策略属于存储
// 适配器或更上层的调用方。
func (e *Engine) AttemptDraw(ctx context.Context, req DrawRequest) (*Result, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("抽签请求缺少用户标识")
	}

	rec, err := e.store.Load(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = record.NewUserRecord(req.UserID, req.DisplayName)
	}
	// 读回的记录必须先通过自检，发现损坏就拒绝计算，绝不猜测修复值
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	now := req.Now.In(e.loc)
	today := record.DayOf(now)

	// 同日幂等保护：今天已经抽过，直接返回当时的状态，不产生任何写入
	if last, ok := rec.LastDay(); ok && today.Sub(last) == 0 {
		return &Result{
			AlreadyDrawn: true,
			Outcome:      rec.LastOutcome,
			Record:       rec,
		}, nil
	}

	outcome := e.draw()

	updated := rec.Clone()
	if last, ok := rec.LastDay(); ok && today.Sub(last) == 1 {
		// 昨天也抽了，连续天数延续
		updated.CurrentStreak = rec.CurrentStreak + 1
	} else {
		// 断签（含第一次抽签）：从1重新开始
		updated.CurrentStreak = 1
	}
	updated.TotalDraws = rec.TotalDraws + 1
	if updated.CurrentStreak > updated.BestStreak {
		updated.BestStreak = updated.CurrentStreak
	}
	updated.OutcomeCounts[outcome]++
	updated.LastDrawDate = today.String()
	updated.LastDrawTime = now.Format(timeOfDayFormat)
	updated.LastOutcome = outcome
	if req.DisplayName != "" {
		updated.DisplayName = req.DisplayName
	}

	// 保存成功之前不向调用方报告任何新签
	if err := e.store.Save(ctx, updated); err != nil {
		return nil, err
	}

	// 持久化已经完成，镜像通知只是尽力而为
	if e.events != nil {
		e.events.RecordDraw(ctx, DrawEvent{
			UserID:      updated.UserID,
			DrawDate:    updated.LastDrawDate,
			DrawTime:    updated.LastDrawTime,
			Outcome:     outcome,
			StreakAfter: updated.CurrentStreak,
		})
	}

	return &Result{
		AlreadyDrawn: false,
		Outcome:      outcome,
		Record:       updated,
	}, nil
}
