// Package session 保存登入 token 的生命週期。
//
// Session 由呼叫端建立並以指標傳給需要 token 的元件，不使用全域狀態。
// 伺服器回覆 401/403 時由 client 呼叫 Invalidate，清除 token 並通知訂閱者重新登入。
package session

import (
	"sync"

	"go.uber.org/zap"
)

// TokenStore 持久化 token
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

type Session struct {
	mu             sync.RWMutex
	token          string
	store          TokenStore
	onUnauthorized []func()
	closed         bool
	logger         *zap.Logger
}

// New 建立 Session，store 為 nil 時 token 只存在記憶體
func New(store TokenStore, logger *zap.Logger) *Session {
	return &Session{store: store, logger: logger}
}

// Init 從 store 載入先前保存的 token
func (s *Session) Init() error {
	if s.store == nil {
		return nil
	}
	token, err := s.store.Load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.closed = false
	s.mu.Unlock()
	return nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// SetToken 更新並保存 token
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.Save(token)
}

// OnUnauthorized 註冊 token 失效時的回呼
func (s *Session) OnUnauthorized(fn func()) {
	s.mu.Lock()
	s.onUnauthorized = append(s.onUnauthorized, fn)
	s.mu.Unlock()
}

// Invalidate 清除 token 並通知所有回呼。已經沒有 token 時不會重複通知。
func (s *Session) Invalidate() {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return
	}
	s.token = ""
	var callbacks []func()
	if !s.closed {
		callbacks = append(callbacks, s.onUnauthorized...)
	}
	s.mu.Unlock()

	s.clearStore()
	s.logger.Warn("session invalidated, please log in again")
	for _, fn := range callbacks {
		fn()
	}
}

// Logout 清除 token，不觸發回呼
func (s *Session) Logout() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	s.clearStore()
}

// Teardown 結束 Session，移除所有回呼
func (s *Session) Teardown() {
	s.mu.Lock()
	s.closed = true
	s.onUnauthorized = nil
	s.mu.Unlock()
}

func (s *Session) clearStore() {
	if s.store == nil {
		return
	}
	if err := s.store.Clear(); err != nil {
		s.logger.Warn("failed to clear stored token", zap.Error(err))
	}
}
