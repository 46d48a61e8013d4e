package utils

import (
	"sync"
	"time"
)

// DayLayout 是每日額度使用的日期格式，日界以 UTC 午夜為準
const DayLayout = "2006-01-02"

// Clock 讓需要時間的元件可以在測試中注入固定時間
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock 回傳 UTC 的系統時間
func SystemClock() Clock { return systemClock{} }

// Day 回傳 t 所在的 UTC 日期
func Day(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// ManualClock 是手動推進的時鐘，Now 每次呼叫會自動前進 Step
type ManualClock struct {
	mu   sync.Mutex
	now  time.Time
	Step time.Duration
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start.UTC()}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.Step)
	return now
}

// Advance 將時鐘往前推 d
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
