package debateview

import (
	"context"
	"io"
	"sync"

	"debate_arena/internal/client"
	"debate_arena/internal/models"
)

// fakeBackend 模擬伺服器，提交的發言會出現在下一次逐字稿中
type fakeBackend struct {
	mu           sync.Mutex
	room         models.Room
	participants []models.Participant
	turns        []models.Turn
	speakerID    uint

	statusErr error
	submitErr error
	endErr    error

	statusCalls int
	submitCalls int
	audioCalls  int
	endCalls    int
	scoreCalls  int
	lastRequest client.TurnRequest
	lastAudio   string
}

func newFakeBackend(rounds int) *fakeBackend {
	forTeam, againstTeam := models.TeamFor, models.TeamAgainst
	return &fakeBackend{
		room: models.Room{
			ID:          1,
			RoomCode:    "ABC123",
			Topic:       "Homework should be optional",
			Mode:        models.ModeBoth,
			Type:        models.TypeIndividual,
			Rounds:      rounds,
			TimePerTurn: 2,
			HostID:      1,
			Status:      models.RoomStatusOngoing,
		},
		participants: []models.Participant{
			{ID: 11, RoomID: 1, UserID: 1, Role: models.RoleDebater, Team: &forTeam},
			{ID: 12, RoomID: 1, UserID: 2, Role: models.RoleDebater, Team: &againstTeam},
			{ID: 13, RoomID: 1, UserID: 3, Role: models.RoleSpectator},
		},
		speakerID: 11,
	}
}

// addTurns 依發言順序加入 n 則發言，11 與 12 輪流
func (f *fakeBackend) addTurns(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < n; i++ {
		idx := len(f.turns)
		speaker := uint(11)
		if idx%2 == 1 {
			speaker = 12
		}
		f.turns = append(f.turns, models.Turn{
			ID:          uint(idx + 1),
			RoomID:      1,
			SpeakerID:   speaker,
			Content:     "argument",
			RoundNumber: idx/2 + 1,
			TurnNumber:  idx%2 + 1,
		})
	}
}

func (f *fakeBackend) RoomByCode(ctx context.Context, code string) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room := f.room
	return &room, nil
}

func (f *fakeBackend) Status(ctx context.Context, roomID uint) (*client.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &client.Status{
		Room:         f.room,
		Participants: append([]models.Participant(nil), f.participants...),
		TurnCount:    len(f.turns),
		Status:       f.room.Status,
	}, nil
}

func (f *fakeBackend) Transcript(ctx context.Context, roomID uint) ([]models.Turn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Turn{}, f.turns...), nil
}

func (f *fakeBackend) SubmitTurn(ctx context.Context, roomID uint, in client.TurnRequest) (*models.Turn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitCalls++
	f.lastRequest = in
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.appendTurn(in, nil), nil
}

func (f *fakeBackend) SubmitAudio(ctx context.Context, roomID uint, in client.TurnRequest, filename string, audio io.Reader) (*models.Turn, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.audioCalls++
	f.lastRequest = in
	f.lastAudio = string(data)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	url := "/uploads/audio/" + filename
	return f.appendTurn(in, &url), nil
}

func (f *fakeBackend) appendTurn(in client.TurnRequest, audioURL *string) *models.Turn {
	turn := models.Turn{
		ID:          uint(len(f.turns) + 1),
		RoomID:      1,
		SpeakerID:   f.speakerID,
		Content:     in.Content,
		AudioURL:    audioURL,
		RoundNumber: in.RoundNumber,
		TurnNumber:  in.TurnNumber,
	}
	f.turns = append(f.turns, turn)
	return &turn
}

func (f *fakeBackend) EndDebate(ctx context.Context, roomID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endCalls++
	return f.endErr
}

func (f *fakeBackend) FinalScore(ctx context.Context, roomID uint) (map[uint]models.ScoreCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scoreCalls++
	return map[uint]models.ScoreCard{11: {WeightedTotal: 70}, 12: {WeightedTotal: 60}}, nil
}

func (f *fakeBackend) counts() (status, submit, audio, end, score int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls, f.submitCalls, f.audioCalls, f.endCalls, f.scoreCalls
}

func (f *fakeBackend) set(fn func(f *fakeBackend)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}
