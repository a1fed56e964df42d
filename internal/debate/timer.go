package debate

import (
	"context"
	"sync"
	"time"
)

// Timer 發言倒數計時器。
// 每次 (輪次, 順序) 改變時依每位發言時間重設，每秒遞減一次，歸零時只觸發一次到期通知。
// 到期不會阻擋發言，只用來提示。
type Timer struct {
	mu        sync.Mutex
	budget    int // 每次發言的分鐘數，只在第一次取得時設定
	hasBudget bool
	position  Position
	remaining *int
	expired   bool
	stopped   bool
	onExpire  func(Position)
}

// NewTimer 建立計時器，onExpire 可以為 nil
func NewTimer(onExpire func(Position)) *Timer {
	return &Timer{onExpire: onExpire}
}

// SetBudget 記錄每次發言的分鐘數，之後的呼叫不會改變已記錄的值
func (t *Timer) SetBudget(minutes int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hasBudget || minutes <= 0 {
		return false
	}
	t.budget = minutes
	t.hasBudget = true
	return true
}

// Sync 輪次或順序改變時重設剩餘秒數，回傳是否有重設
func (t *Timer) Sync(pos Position) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped || !t.hasBudget {
		return false
	}
	if t.remaining != nil && pos == t.position {
		return false
	}

	seconds := t.budget * 60
	t.position = pos
	t.remaining = &seconds
	t.expired = false
	return true
}

// Tick 遞減一秒，最低到 0
func (t *Timer) Tick() {
	t.mu.Lock()
	if t.stopped || t.remaining == nil {
		t.mu.Unlock()
		return
	}
	if *t.remaining > 0 {
		*t.remaining--
	}
	fire := *t.remaining == 0 && !t.expired
	if fire {
		t.expired = true
	}
	pos := t.position
	cb := t.onExpire
	t.mu.Unlock()

	if fire && cb != nil {
		cb(pos)
	}
}

// Remaining 剩餘秒數，尚未開始計時時 ok 為 false
func (t *Timer) Remaining() (seconds int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.remaining == nil {
		return 0, false
	}
	return *t.remaining, true
}

// Expired 目前這次發言是否已經超時
func (t *Timer) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}

// Stop 停止計時，之後的 Tick 與 Sync 都不再生效
func (t *Timer) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

// Run 每秒呼叫 Tick，直到 ctx 結束或 Stop 被呼叫
func (t *Timer) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.mu.Lock()
			stopped := t.stopped
			t.mu.Unlock()
			if stopped {
				return
			}
			t.Tick()
		}
	}
}
