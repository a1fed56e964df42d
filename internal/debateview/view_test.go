package debateview

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"debate_arena/internal/client"
	"debate_arena/internal/debate"
	"debate_arena/internal/models"
)

func newTestView(t *testing.T, backend Backend, userID uint, hooks Hooks) *View {
	t.Helper()
	v := New(backend, Options{
		UserID:         userID,
		PollInterval:   10 * time.Millisecond,
		ReconcileDelay: 20 * time.Millisecond,
		EndSettleDelay: 10 * time.Millisecond,
	}, hooks, zap.NewNop())
	t.Cleanup(v.Close)
	return v
}

func TestLoadComputesProgress(t *testing.T) {
	backend := newFakeBackend(3)
	backend.addTurns(5)

	v := newTestView(t, backend, 2, Hooks{})
	require.NoError(t, v.Load(context.Background(), "ABC123"))

	state := v.State()
	assert.Equal(t, debate.Position{Round: 3, Turn: 2}, state.Position)
	assert.True(t, state.Verdict.CanSubmit)
	assert.Equal(t, uint(12), state.Verdict.ParticipantID)
	assert.Len(t, state.Transcript, 5)
	assert.True(t, state.TimerActive)
	assert.Equal(t, 120, state.Remaining)
}

func TestSubmitValidatesBeforeNetwork(t *testing.T) {
	backend := newFakeBackend(3)

	t.Run("empty content", func(t *testing.T) {
		v := newTestView(t, backend, 1, Hooks{})
		require.NoError(t, v.Load(context.Background(), "ABC123"))

		_, err := v.Submit(context.Background(), "   ", nil)
		assert.ErrorIs(t, err, ErrEmptySubmission)
		assert.Equal(t, ErrEmptySubmission.Error(), v.State().LastError)
	})

	t.Run("spectator", func(t *testing.T) {
		v := newTestView(t, backend, 3, Hooks{})
		require.NoError(t, v.Load(context.Background(), "ABC123"))

		_, err := v.Submit(context.Background(), "let me speak", nil)
		assert.ErrorIs(t, err, debate.ErrNotParticipant)
	})

	t.Run("audio in text room", func(t *testing.T) {
		textOnly := newFakeBackend(3)
		textOnly.room.Mode = models.ModeText
		v := newTestView(t, textOnly, 1, Hooks{})
		require.NoError(t, v.Load(context.Background(), "ABC123"))

		_, err := v.Submit(context.Background(), "", &Audio{Filename: "a.webm", Data: strings.NewReader("x")})
		assert.ErrorIs(t, err, ErrAudioNotAllowed)
	})

	_, submit, audio, _, _ := backend.counts()
	assert.Zero(t, submit)
	assert.Zero(t, audio)
}

func TestSubmitAppendsAndRecomputes(t *testing.T) {
	backend := newFakeBackend(3)
	v := newTestView(t, backend, 1, Hooks{})
	require.NoError(t, v.Load(context.Background(), "ABC123"))
	v.SetDraft("Homework crowds out sleep.")

	turn, err := v.Submit(context.Background(), "Homework crowds out sleep.", nil)
	require.NoError(t, err)
	assert.Equal(t, uint(1), turn.ID)
	assert.Equal(t, client.TurnRequest{Content: "Homework crowds out sleep.", RoundNumber: 1, TurnNumber: 1}, backend.lastRequest)

	state := v.State()
	assert.Len(t, state.Transcript, 1)
	assert.Empty(t, state.Draft)
	assert.Empty(t, state.Transcript[0].AIFeedback.Feedback)
	assert.Equal(t, debate.Position{Round: 1, Turn: 2}, state.Position)
	assert.False(t, state.Verdict.CanSubmit)
	assert.Equal(t, debate.ReasonAlreadySubmittedThisRound, state.Verdict.Reason)
	assert.Equal(t, 120, state.Remaining)

	_, err = v.Submit(context.Background(), "again", nil)
	assert.ErrorIs(t, err, debate.ErrAlreadySubmitted)
	_, submit, _, _, _ := backend.counts()
	assert.Equal(t, 1, submit)
}

func TestSubmitReconcilesAfterDelay(t *testing.T) {
	backend := newFakeBackend(3)
	v := newTestView(t, backend, 1, Hooks{})
	require.NoError(t, v.Load(context.Background(), "ABC123"))

	_, err := v.Submit(context.Background(), "first", nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		status, _, _, _, _ := backend.counts()
		return status >= 2
	}, time.Second, 5*time.Millisecond)
	assert.Len(t, v.State().Transcript, 1)
}

func TestSubmitFailureLeavesStateUnchanged(t *testing.T) {
	backend := newFakeBackend(3)
	backend.submitErr = &client.APIError{Status: http.StatusUnprocessableEntity, Message: "already submitted this round"}

	var surfaced atomic.Int32
	v := newTestView(t, backend, 1, Hooks{Error: func(error) { surfaced.Add(1) }})
	require.NoError(t, v.Load(context.Background(), "ABC123"))
	v.SetDraft("keep me")

	_, err := v.Submit(context.Background(), "keep me", nil)
	require.Error(t, err)

	state := v.State()
	assert.Empty(t, state.Transcript)
	assert.Equal(t, "keep me", state.Draft)
	assert.Equal(t, "already submitted this round", state.LastError)
	assert.Equal(t, debate.Position{Round: 1, Turn: 1}, state.Position)
	assert.Equal(t, int32(1), surfaced.Load())
}

func TestSubmitAudio(t *testing.T) {
	backend := newFakeBackend(3)
	v := newTestView(t, backend, 1, Hooks{})
	require.NoError(t, v.Load(context.Background(), "ABC123"))

	turn, err := v.Submit(context.Background(), "see attached", &Audio{Filename: "arg.webm", Data: strings.NewReader("voice")})
	require.NoError(t, err)
	require.NotNil(t, turn.AudioURL)

	_, submit, audio, _, _ := backend.counts()
	assert.Zero(t, submit)
	assert.Equal(t, 1, audio)
	assert.Equal(t, "voice", backend.lastAudio)
	assert.Equal(t, "see attached", backend.lastRequest.Content)
}

func TestAutoEndHostEndsOnce(t *testing.T) {
	backend := newFakeBackend(1)
	backend.addTurns(2)

	var ended atomic.Int32
	v := newTestView(t, backend, 1, Hooks{Ended: func(map[uint]models.ScoreCard) { ended.Add(1) }})
	require.NoError(t, v.Load(context.Background(), "ABC123"))

	require.Eventually(t, func() bool { return ended.Load() == 1 }, time.Second, 5*time.Millisecond)

	for i := 0; i < 3; i++ {
		_ = v.Refresh(context.Background())
	}
	time.Sleep(30 * time.Millisecond)

	_, _, _, end, score := backend.counts()
	assert.Equal(t, 1, end)
	assert.Equal(t, 1, score)
	assert.Equal(t, int32(1), ended.Load())

	state := v.State()
	assert.True(t, state.Ended)
	assert.Len(t, state.Scores, 2)
}

func TestAutoEndNonHostWaits(t *testing.T) {
	backend := newFakeBackend(1)
	backend.addTurns(2)

	var waiting atomic.Int32
	v := newTestView(t, backend, 2, Hooks{Waiting: func() { waiting.Add(1) }})
	require.NoError(t, v.Load(context.Background(), "ABC123"))
	_ = v.Refresh(context.Background())
	time.Sleep(30 * time.Millisecond)

	_, _, _, end, _ := backend.counts()
	assert.Zero(t, end)
	assert.Equal(t, int32(1), waiting.Load())
	assert.True(t, v.State().Waiting)
}

func TestAutoEndFailureIsNotRetried(t *testing.T) {
	backend := newFakeBackend(1)
	backend.addTurns(2)
	backend.endErr = errors.New("server unavailable")

	var errs atomic.Int32
	v := newTestView(t, backend, 1, Hooks{Error: func(error) { errs.Add(1) }})
	require.NoError(t, v.Load(context.Background(), "ABC123"))

	require.Eventually(t, func() bool { return errs.Load() == 1 }, time.Second, 5*time.Millisecond)
	_ = v.Refresh(context.Background())
	time.Sleep(30 * time.Millisecond)

	_, _, _, end, _ := backend.counts()
	assert.Equal(t, 1, end)
	assert.False(t, v.State().Ended)

	// 主持人手動重試
	backend.set(func(f *fakeBackend) { f.endErr = nil })
	require.NoError(t, v.EndDebate(context.Background()))
	assert.True(t, v.State().Ended)
	assert.ErrorIs(t, v.EndDebate(context.Background()), ErrAlreadyEnded)
}

func TestRefreshErrors(t *testing.T) {
	t.Run("transient errors keep stale data", func(t *testing.T) {
		backend := newFakeBackend(3)
		backend.addTurns(1)

		var errs atomic.Int32
		v := newTestView(t, backend, 1, Hooks{Error: func(error) { errs.Add(1) }})
		require.NoError(t, v.Load(context.Background(), "ABC123"))

		backend.set(func(f *fakeBackend) { f.statusErr = errors.New("connection reset") })
		err := v.Refresh(context.Background())
		require.Error(t, err)
		assert.Zero(t, errs.Load())
		assert.Len(t, v.State().Participants, 3)
	})

	t.Run("authorization errors are surfaced", func(t *testing.T) {
		backend := newFakeBackend(3)
		var errs atomic.Int32
		v := newTestView(t, backend, 1, Hooks{Error: func(error) { errs.Add(1) }})
		require.NoError(t, v.Load(context.Background(), "ABC123"))

		backend.set(func(f *fakeBackend) { f.statusErr = &client.APIError{Status: http.StatusUnauthorized} })
		err := v.Refresh(context.Background())
		assert.True(t, client.IsUnauthorized(err))
		assert.Equal(t, int32(1), errs.Load())
	})
}

func TestRunPausesWhileHidden(t *testing.T) {
	backend := newFakeBackend(3)
	v := newTestView(t, backend, 1, Hooks{})
	require.NoError(t, v.Load(context.Background(), "ABC123"))
	v.SetVisible(false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		v.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	status, _, _, _, _ := backend.counts()
	assert.Equal(t, 1, status)

	v.SetVisible(true)
	require.Eventually(t, func() bool {
		status, _, _, _, _ := backend.counts()
		return status >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestCloseStopsPendingWork(t *testing.T) {
	backend := newFakeBackend(3)
	v := New(backend, Options{UserID: 1, ReconcileDelay: 30 * time.Millisecond}, Hooks{}, zap.NewNop())
	require.NoError(t, v.Load(context.Background(), "ABC123"))

	_, err := v.Submit(context.Background(), "last words", nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		v.Run(context.Background())
		close(done)
	}()
	v.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}

	time.Sleep(60 * time.Millisecond)
	status, _, _, _, _ := backend.counts()
	assert.Equal(t, 1, status)
}

// overlapBackend 讓狀態與逐字稿的請求互相等待，確認兩者是同時送出的
type overlapBackend struct {
	*fakeBackend
	armed        atomic.Bool
	statusIn     chan struct{}
	transcriptIn chan struct{}
	release      chan struct{}
}

func newOverlapBackend(rounds int) *overlapBackend {
	return &overlapBackend{
		fakeBackend:  newFakeBackend(rounds),
		statusIn:     make(chan struct{}),
		transcriptIn: make(chan struct{}),
		release:      make(chan struct{}),
	}
}

func (b *overlapBackend) await(ctx context.Context, entered, other chan struct{}) error {
	close(entered)
	select {
	case <-other:
	case <-time.After(time.Second):
		return errors.New("fetches were not issued concurrently")
	case <-ctx.Done():
		return ctx.Err()
	}
	<-b.release
	return nil
}

func (b *overlapBackend) Status(ctx context.Context, roomID uint) (*client.Status, error) {
	if b.armed.Load() {
		if err := b.await(ctx, b.statusIn, b.transcriptIn); err != nil {
			return nil, err
		}
	}
	return b.fakeBackend.Status(ctx, roomID)
}

func (b *overlapBackend) Transcript(ctx context.Context, roomID uint) ([]models.Turn, error) {
	if b.armed.Load() {
		if err := b.await(ctx, b.transcriptIn, b.statusIn); err != nil {
			return nil, err
		}
	}
	return b.fakeBackend.Transcript(ctx, roomID)
}

func TestRefreshFetchesConcurrentlyAndAppliesTogether(t *testing.T) {
	backend := newOverlapBackend(3)
	backend.addTurns(2)

	v := newTestView(t, backend, 1, Hooks{})
	require.NoError(t, v.Load(context.Background(), "ABC123"))
	before := v.State()
	require.Len(t, before.Transcript, 2)
	require.Equal(t, 2, before.TurnCount)

	backend.addTurns(2)
	backend.armed.Store(true)

	done := make(chan error, 1)
	go func() { done <- v.Refresh(context.Background()) }()

	for _, entered := range []chan struct{}{backend.statusIn, backend.transcriptIn} {
		select {
		case <-entered:
		case <-time.After(time.Second):
			t.Fatal("refresh did not issue both fetches")
		}
	}

	// 兩個請求都還沒回來，畫面維持舊資料
	mid := v.State()
	assert.Len(t, mid.Transcript, 2)
	assert.Equal(t, 2, mid.TurnCount)
	assert.Equal(t, before.Position, mid.Position)

	close(backend.release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("refresh did not return")
	}

	after := v.State()
	assert.Len(t, after.Transcript, 4)
	assert.Equal(t, 4, after.TurnCount)
	assert.Equal(t, debate.Position{Round: 3, Turn: 1}, after.Position)
}
