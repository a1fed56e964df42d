// Package debateview 保存辯論畫面的本地狀態：房間、名單、逐字稿，
// 並依此推算輪次、發言資格與倒數時間。
//
// 伺服器才是權威資料來源。View 透過輪詢與提交後的樂觀更新維持本地副本，
// 下一次刷新會修正任何偏差。
package debateview

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"debate_arena/internal/client"
	"debate_arena/internal/debate"
	"debate_arena/internal/models"
)

const (
	DefaultPollInterval   = 5 * time.Second
	DefaultReconcileDelay = time.Second
	DefaultEndSettleDelay = 3 * time.Second
)

var (
	ErrNotLoaded       = errors.New("room is not loaded")
	ErrEmptySubmission = errors.New("argument content or audio is required")
	ErrAudioNotAllowed = errors.New("this room does not accept audio arguments")
	ErrTextNotAllowed  = errors.New("this room only accepts audio arguments")
	ErrAlreadyEnded    = errors.New("debate has already ended")
	ErrEndInProgress   = errors.New("debate is already being ended")
)

// Backend 是 View 需要的遠端操作，*client.Client 實作了這個介面
type Backend interface {
	RoomByCode(ctx context.Context, code string) (*models.Room, error)
	Status(ctx context.Context, roomID uint) (*client.Status, error)
	Transcript(ctx context.Context, roomID uint) ([]models.Turn, error)
	SubmitTurn(ctx context.Context, roomID uint, in client.TurnRequest) (*models.Turn, error)
	SubmitAudio(ctx context.Context, roomID uint, in client.TurnRequest, filename string, audio io.Reader) (*models.Turn, error)
	EndDebate(ctx context.Context, roomID uint) error
	FinalScore(ctx context.Context, roomID uint) (map[uint]models.ScoreCard, error)
}

type Options struct {
	UserID         uint
	PollInterval   time.Duration
	ReconcileDelay time.Duration // 提交成功後重新同步的延遲
	EndSettleDelay time.Duration // 自動結束前等待最後一次評分完成
}

// Hooks 狀態變化的通知，全部可以為 nil
type Hooks struct {
	Updated      func(State)
	TimerExpired func(debate.Position)
	Waiting      func()
	Ended        func(scores map[uint]models.ScoreCard)
	Error        func(error)
}

// Audio 語音發言
type Audio struct {
	Filename string
	Data     io.Reader
}

// State 畫面需要的唯讀快照
type State struct {
	Room         models.Room
	Participants []models.Participant
	Transcript   []models.Turn
	TurnCount    int
	Position     debate.Position
	Verdict      debate.Verdict
	Remaining    int
	TimerActive  bool
	TimerExpired bool
	Draft        string
	Waiting      bool
	Ended        bool
	Scores       map[uint]models.ScoreCard
	LastError    string
}

type View struct {
	backend Backend
	opts    Options
	hooks   Hooks
	logger  *zap.Logger

	mu           sync.Mutex
	room         *models.Room
	participants []models.Participant
	transcript   []models.Turn
	turnCount    int
	position     debate.Position
	verdict      debate.Verdict
	draft        string
	lastErr      string
	waiting      bool
	ending       bool
	ended        bool
	scores       map[uint]models.ScoreCard
	visible      bool
	closed       bool
	pending      []*time.Timer

	timer   *debate.Timer
	autoEnd debate.AutoEnd

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

func New(backend Backend, opts Options, hooks Hooks, logger *zap.Logger) *View {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.ReconcileDelay <= 0 {
		opts.ReconcileDelay = DefaultReconcileDelay
	}
	if opts.EndSettleDelay <= 0 {
		opts.EndSettleDelay = DefaultEndSettleDelay
	}

	ctx, cancel := context.WithCancel(context.Background())
	v := &View{
		backend: backend,
		opts:    opts,
		hooks:   hooks,
		logger:  logger,
		visible: true,
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
	v.timer = debate.NewTimer(func(pos debate.Position) {
		v.logger.Info("turn time is up", zap.Int("round", pos.Round), zap.Int("turn", pos.Turn))
		if v.hooks.TimerExpired != nil {
			v.hooks.TimerExpired(pos)
		}
	})
	return v
}

// Load 讀取房間資料，記錄每次發言的時間，然後做第一次刷新
func (v *View) Load(ctx context.Context, roomCode string) error {
	room, err := v.backend.RoomByCode(ctx, roomCode)
	if err != nil {
		v.fail(err)
		return err
	}

	v.mu.Lock()
	v.room = room
	v.mu.Unlock()
	v.timer.SetBudget(room.TimePerTurn)

	if err := v.Refresh(ctx); err != nil && client.IsUnauthorized(err) {
		return err
	}
	return nil
}

// Refresh 同時抓取狀態與逐字稿，兩者都完成後才重新計算。
// 背景抓取失敗只記錄，保留舊資料；授權失敗會透過 Error hook 回報。
func (v *View) Refresh(ctx context.Context) error {
	roomID, err := v.roomID()
	if err != nil {
		return err
	}

	var (
		status *client.Status
		turns  []models.Turn
		g      errgroup.Group
	)
	g.Go(func() error {
		s, err := v.backend.Status(ctx, roomID)
		if err != nil {
			return err
		}
		status = s
		return nil
	})
	g.Go(func() error {
		t, err := v.backend.Transcript(ctx, roomID)
		if err != nil {
			return err
		}
		turns = t
		return nil
	})
	fetchErr := g.Wait()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	if status != nil {
		v.applyStatus(status)
	}
	if turns != nil {
		v.transcript = turns
	}
	decision := v.recompute()
	v.mu.Unlock()

	if fetchErr != nil {
		if client.IsUnauthorized(fetchErr) {
			v.fail(fetchErr)
		} else {
			v.logger.Warn("refresh failed, keeping previous state", zap.Uint("room_id", roomID), zap.Error(fetchErr))
		}
	}

	v.handleDecision(decision)
	v.notify()
	return fetchErr
}

func (v *View) applyStatus(status *client.Status) {
	if status.Room.ID != 0 {
		room := status.Room
		v.room = &room
	} else if status.Status != "" {
		v.room.Status = status.Status
	}
	v.participants = status.Participants
	v.turnCount = status.TurnCount
}

// recompute 由目前的資料推算輪次、發言資格與計時器，呼叫時需持有 v.mu
func (v *View) recompute() debate.Decision {
	total := v.turnCount
	if len(v.transcript) > total {
		total = len(v.transcript)
	}

	debaters := debate.DebaterCountOrDefault(v.participants)
	v.position = debate.Progress(total, debaters, v.room.Rounds)
	v.verdict = debate.CheckSubmission(debate.GateInput{
		Participants: v.participants,
		UserID:       v.opts.UserID,
		CurrentRound: v.position.Round,
		MaxRounds:    v.room.Rounds,
		Turns:        v.transcript,
		SeatCount:    v.room.SeatCount(),
	})

	if v.room.Status == models.RoomStatusCompleted {
		v.timer.Stop()
	} else if v.room.Status == models.RoomStatusOngoing {
		v.timer.Sync(v.position)
	}

	return v.autoEnd.Observe(debate.Observation{
		TotalTurns:   total,
		MaxRounds:    v.room.Rounds,
		DebaterCount: debaters,
		Status:       v.room.Status,
		IsHost:       v.room.HostID == v.opts.UserID,
	})
}

func (v *View) handleDecision(d debate.Decision) {
	switch d {
	case debate.DecisionEnd:
		v.logger.Info("all rounds finished, ending debate")
		v.schedule(v.opts.EndSettleDelay, func() {
			// 失敗時已透過 Error hook 回報，不自動重試
			_ = v.EndDebate(v.ctx)
		})
	case debate.DecisionWait:
		v.mu.Lock()
		v.waiting = true
		v.mu.Unlock()
		if v.hooks.Waiting != nil {
			v.hooks.Waiting()
		}
	}
}

// SetDraft 更新輸入框內容
func (v *View) SetDraft(text string) {
	v.mu.Lock()
	v.draft = text
	v.mu.Unlock()
}

// Submit 提交一次發言。內容與資格檢查在送出請求前完成；
// 成功後把回傳的發言加入逐字稿並清空輸入框，失敗時本地狀態不變。
func (v *View) Submit(ctx context.Context, content string, audio *Audio) (*models.Turn, error) {
	content = strings.TrimSpace(content)
	if content == "" && audio == nil {
		return nil, v.reject(ErrEmptySubmission)
	}

	v.mu.Lock()
	if v.room == nil {
		v.mu.Unlock()
		return nil, ErrNotLoaded
	}
	roomID := v.room.ID
	allowsAudio, allowsText := v.room.AllowsAudio(), v.room.AllowsText()
	verdict := v.verdict
	pos := v.position
	v.mu.Unlock()

	switch {
	case audio != nil && !allowsAudio:
		return nil, v.reject(ErrAudioNotAllowed)
	case audio == nil && !allowsText:
		return nil, v.reject(ErrTextNotAllowed)
	case !verdict.CanSubmit:
		return nil, v.reject(verdict.Err())
	}

	req := client.TurnRequest{Content: content, RoundNumber: pos.Round, TurnNumber: pos.Turn}
	var (
		turn *models.Turn
		err  error
	)
	if audio != nil {
		turn, err = v.backend.SubmitAudio(ctx, roomID, req, audio.Filename, audio.Data)
	} else {
		turn, err = v.backend.SubmitTurn(ctx, roomID, req)
	}
	if err != nil {
		v.fail(err)
		return nil, err
	}

	v.mu.Lock()
	if !containsTurn(v.transcript, turn.ID) {
		v.transcript = append(v.transcript, *turn)
	}
	if v.turnCount < len(v.transcript) {
		v.turnCount = len(v.transcript)
	}
	v.draft = ""
	v.lastErr = ""
	decision := v.recompute()
	v.mu.Unlock()

	v.logger.Info("argument submitted",
		zap.Uint("room_id", roomID), zap.Int("round", turn.RoundNumber), zap.Int("turn", turn.TurnNumber))

	v.handleDecision(decision)
	v.notify()
	v.schedule(v.opts.ReconcileDelay, func() {
		_ = v.Refresh(v.ctx)
	})
	return turn, nil
}

func containsTurn(turns []models.Turn, id uint) bool {
	if id == 0 {
		return false
	}
	for _, t := range turns {
		if t.ID == id {
			return true
		}
	}
	return false
}

// EndDebate 結束辯論並要求最終評分。自動結束失敗後主持人可以手動再呼叫一次。
func (v *View) EndDebate(ctx context.Context) error {
	v.mu.Lock()
	if v.room == nil {
		v.mu.Unlock()
		return ErrNotLoaded
	}
	if v.ended {
		v.mu.Unlock()
		return ErrAlreadyEnded
	}
	if v.ending {
		v.mu.Unlock()
		return ErrEndInProgress
	}
	v.ending = true
	roomID := v.room.ID
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.ending = false
		v.mu.Unlock()
	}()

	if err := v.backend.EndDebate(ctx, roomID); err != nil {
		v.fail(err)
		return err
	}

	scores, err := v.backend.FinalScore(ctx, roomID)
	if err != nil {
		// 辯論已經結束，分數可以在結果頁重新取得
		v.fail(err)
	}

	v.mu.Lock()
	v.ended = true
	v.waiting = false
	v.scores = scores
	v.room.Status = models.RoomStatusCompleted
	v.mu.Unlock()
	v.timer.Stop()

	v.logger.Info("debate ended", zap.Uint("room_id", roomID))
	if v.hooks.Ended != nil {
		v.hooks.Ended(scores)
	}
	v.notify()
	return nil
}

// Run 依固定間隔輪詢並每秒推進計時器，直到 ctx 結束或 Close。
// 畫面隱藏時暫停輪詢，重新顯示時立即刷新。
func (v *View) Run(ctx context.Context) {
	poll := time.NewTicker(v.opts.PollInterval)
	defer poll.Stop()
	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-v.ctx.Done():
			return
		case <-tick.C:
			v.timer.Tick()
		case <-poll.C:
			if v.isVisible() {
				_ = v.Refresh(ctx)
			}
		case <-v.wake:
			if v.isVisible() {
				_ = v.Refresh(ctx)
			}
		}
	}
}

// SetVisible 切換畫面是否可見，由隱藏變為可見時立即刷新
func (v *View) SetVisible(visible bool) {
	v.mu.Lock()
	regained := visible && !v.visible
	v.visible = visible
	v.mu.Unlock()

	if regained {
		v.Nudge()
	}
}

// Nudge 要求 Run 盡快刷新一次，例如收到即時事件時
func (v *View) Nudge() {
	select {
	case v.wake <- struct{}{}:
	default:
	}
}

func (v *View) isVisible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

// Close 停止所有計時器與排程中的刷新
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	for _, t := range v.pending {
		t.Stop()
	}
	v.pending = nil
	v.mu.Unlock()

	v.timer.Stop()
	v.cancel()
}

func (v *View) schedule(d time.Duration, fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.pending = append(v.pending, time.AfterFunc(d, func() {
		if v.ctx.Err() != nil {
			return
		}
		fn()
	}))
}

// State 回傳目前狀態的複本
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := State{
		Participants: append([]models.Participant(nil), v.participants...),
		Transcript:   append([]models.Turn(nil), v.transcript...),
		TurnCount:    v.turnCount,
		Position:     v.position,
		Verdict:      v.verdict,
		Draft:        v.draft,
		Waiting:      v.waiting,
		Ended:        v.ended,
		Scores:       v.scores,
		LastError:    v.lastErr,
	}
	if v.room != nil {
		s.Room = *v.room
	}
	s.Remaining, s.TimerActive = v.timer.Remaining()
	s.TimerExpired = v.timer.Expired()
	return s
}

func (v *View) roomID() (uint, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.room == nil {
		return 0, ErrNotLoaded
	}
	return v.room.ID, nil
}

// reject 本地驗證失敗，不發出請求
func (v *View) reject(err error) error {
	v.mu.Lock()
	v.lastErr = err.Error()
	v.mu.Unlock()
	return err
}

func (v *View) fail(err error) {
	v.mu.Lock()
	v.lastErr = err.Error()
	v.mu.Unlock()
	if v.hooks.Error != nil {
		v.hooks.Error(err)
	}
}

func (v *View) notify() {
	if v.hooks.Updated != nil {
		v.hooks.Updated(v.State())
	}
}
