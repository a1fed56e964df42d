package service

import "sync"

// roomLocks 同一房間的寫入依序處理，加入、離開、發言與結束共用同一把鎖
type roomLocks struct {
	m sync.Map // roomID -> *sync.Mutex
}

func newRoomLocks() *roomLocks {
	return &roomLocks{}
}

func (l *roomLocks) lock(roomID uint) func() {
	v, _ := l.m.LoadOrStore(roomID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
