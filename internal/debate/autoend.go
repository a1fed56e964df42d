package debate

import (
	"sync"

	"debate_arena/internal/models"
)

// Decision 自動結束判斷結果
type Decision int

const (
	DecisionNone Decision = iota
	// DecisionEnd 主持人：通知伺服器結束並計算最終分數
	DecisionEnd
	// DecisionWait 非主持人：顯示等待訊息，不做任何寫入
	DecisionWait
)

func (d Decision) String() string {
	switch d {
	case DecisionEnd:
		return "end"
	case DecisionWait:
		return "wait"
	default:
		return "none"
	}
}

// Observation 每次逐字稿刷新後的觀察值
type Observation struct {
	TotalTurns   int
	MaxRounds    int
	DebaterCount int
	Status       models.RoomStatus
	IsHost       bool
}

// AutoEnd 偵測所有輪次已完成。觸發一次後就鎖定，重複刷新不會再次觸發。
type AutoEnd struct {
	mu    sync.Mutex
	fired bool
}

// Observe 判斷這次刷新是否需要結束辯論
func (a *AutoEnd) Observe(o Observation) Decision {
	debaters := o.DebaterCount
	if debaters <= 0 {
		debaters = DefaultDebaterCount
	}
	if o.Status != models.RoomStatusOngoing || o.TotalTurns < ExpectedTotalTurns(o.MaxRounds, debaters) {
		return DecisionNone
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fired {
		return DecisionNone
	}
	a.fired = true

	if o.IsHost {
		return DecisionEnd
	}
	return DecisionWait
}

// Fired 是否已經觸發過
func (a *AutoEnd) Fired() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fired
}
