package service

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"debate_arena/internal/debate"
	"debate_arena/internal/models"
	"debate_arena/internal/repository"
	"debate_arena/internal/storage"
)

// DebateStatus 房間目前狀態，含伺服器計算的輪次位置
type DebateStatus struct {
	Room         models.Room          `json:"room"`
	Participants []models.Participant `json:"participants"`
	TurnCount    int                  `json:"turn_count"`
	Status       models.RoomStatus    `json:"status"`
	debate.Position
}

// TurnInput 提交發言的參數。輪次與順序由伺服器決定，客戶端送來的值只用來比對。
type TurnInput struct {
	Content     string
	RoundNumber int
	TurnNumber  int
}

type DebateService struct {
	rooms        repository.RoomRepository
	participants repository.ParticipantRepository
	turns        repository.TurnRepository
	votes        repository.VoteRepository
	results      repository.ResultRepository
	hub          *Hub
	cache        *statusCache
	files        *storage.FileStore
	judge        Judge
	locks        *roomLocks
	logger       *zap.Logger
}

func NewDebateService(repos *repository.Repositories, hub *Hub, cache *statusCache, locks *roomLocks, files *storage.FileStore, judge Judge, logger *zap.Logger) *DebateService {
	return &DebateService{
		rooms:        repos.Room,
		participants: repos.Participant,
		turns:        repos.Turn,
		votes:        repos.Vote,
		results:      repos.Result,
		hub:          hub,
		cache:        cache,
		files:        files,
		judge:        judge,
		locks:        locks,
		logger:       logger,
	}
}

func (s *DebateService) room(roomID uint) (*models.Room, error) {
	room, err := s.rooms.FindByID(roomID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	return room, err
}

// Status 回傳參與者名單與發言數，結果會短暫快取
func (s *DebateService) Status(roomID uint) (*DebateStatus, error) {
	if st, ok := s.cache.get(roomID); ok {
		return st, nil
	}

	room, err := s.room(roomID)
	if err != nil {
		return nil, err
	}
	participants, err := s.participants.FindByRoom(roomID)
	if err != nil {
		return nil, err
	}
	count, err := s.turns.CountByRoom(roomID)
	if err != nil {
		return nil, err
	}
	if participants == nil {
		participants = []models.Participant{}
	}

	st := &DebateStatus{
		Room:         *room,
		Participants: participants,
		TurnCount:    count,
		Status:       room.Status,
		Position:     debate.Progress(count, debate.DebaterCountOrDefault(participants), room.Rounds),
	}
	s.cache.set(roomID, st)
	return st, nil
}

// Transcript 依 (輪次, 順序) 排序的完整發言紀錄
func (s *DebateService) Transcript(roomID uint) ([]models.Turn, error) {
	if _, err := s.room(roomID); err != nil {
		return nil, err
	}
	turns, err := s.turns.FindByRoom(roomID)
	if err != nil {
		return nil, err
	}
	if turns == nil {
		turns = []models.Turn{}
	}
	return turns, nil
}

// SubmitTurn 提交文字發言
func (s *DebateService) SubmitTurn(roomID, userID uint, in TurnInput) (*models.Turn, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, ErrEmptyArgument
	}
	return s.submit(roomID, userID, in, nil, func(room *models.Room) error {
		if !room.AllowsText() {
			return ErrModeNotAllowed
		}
		return nil
	})
}

// SubmitAudio 提交語音發言，content 為可選的文字補充
func (s *DebateService) SubmitAudio(roomID, userID uint, in TurnInput, filename string, audio io.Reader) (*models.Turn, error) {
	if audio == nil {
		return nil, ErrEmptyArgument
	}
	return s.submit(roomID, userID, in, func() (string, error) {
		return s.files.Save("audio", filename, audio)
	}, func(room *models.Room) error {
		if !room.AllowsAudio() {
			return ErrModeNotAllowed
		}
		return nil
	})
}

func (s *DebateService) submit(roomID, userID uint, in TurnInput, saveAudio func() (string, error), checkMode func(*models.Room) error) (*models.Turn, error) {
	unlock := s.locks.lock(roomID)
	defer unlock()

	room, err := s.room(roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != models.RoomStatusOngoing {
		return nil, ErrDebateNotOngoing
	}
	if err := checkMode(room); err != nil {
		return nil, err
	}

	participants, err := s.participants.FindByRoom(roomID)
	if err != nil {
		return nil, err
	}
	turns, err := s.turns.FindByRoom(roomID)
	if err != nil {
		return nil, err
	}

	pos := debate.Progress(len(turns), debate.DebaterCountOrDefault(participants), room.Rounds)
	verdict := debate.CheckSubmission(debate.GateInput{
		Participants: participants,
		UserID:       userID,
		CurrentRound: pos.Round,
		MaxRounds:    room.Rounds,
		Turns:        turns,
		SeatCount:    room.SeatCount(),
	})
	if !verdict.CanSubmit {
		return nil, verdict.Err()
	}

	if (in.RoundNumber != 0 && in.RoundNumber != pos.Round) || (in.TurnNumber != 0 && in.TurnNumber != pos.Turn) {
		s.logger.Debug("client turn position differs from server",
			zap.Uint("room_id", roomID),
			zap.Int("client_round", in.RoundNumber), zap.Int("client_turn", in.TurnNumber),
			zap.Int("round", pos.Round), zap.Int("turn", pos.Turn))
	}

	var (
		audioURL  *string
		audioPath string
	)
	if saveAudio != nil {
		audioPath, err = saveAudio()
		if err != nil {
			return nil, fmt.Errorf("save audio: %w", err)
		}
		url := "/uploads/" + audioPath
		audioURL = &url
	}

	previous := make([]string, 0, len(turns))
	for _, t := range turns {
		previous = append(previous, t.Content)
	}

	turn := &models.Turn{
		RoomID:      roomID,
		SpeakerID:   verdict.ParticipantID,
		Content:     strings.TrimSpace(in.Content),
		AudioURL:    audioURL,
		RoundNumber: pos.Round,
		TurnNumber:  pos.Turn,
		AIFeedback:  s.judge.Score(room.Topic, in.Content, previous),
		Timestamp:   time.Now(),
	}
	if err := s.turns.Create(turn); err != nil {
		if audioPath != "" {
			if rmErr := s.files.Remove(audioPath); rmErr != nil {
				s.logger.Warn("failed to remove orphaned audio", zap.String("path", audioPath), zap.Error(rmErr))
			}
		}
		return nil, fmt.Errorf("create turn: %w", err)
	}
	s.cache.invalidate(roomID)

	s.logger.Info("turn submitted",
		zap.Uint("room_id", roomID), zap.Uint("speaker_id", turn.SpeakerID),
		zap.Int("round", turn.RoundNumber), zap.Int("turn", turn.TurnNumber))
	s.hub.Broadcast(models.Event{Type: models.EventTurnSubmitted, RoomID: roomID, UserID: userID, Data: turn})

	return turn, nil
}

// FinalScore 計算每位辯手的平均分數並寫回參與者
func (s *DebateService) FinalScore(roomID uint) (map[uint]models.ScoreCard, error) {
	if _, err := s.room(roomID); err != nil {
		return nil, err
	}
	participants, err := s.participants.FindByRoom(roomID)
	if err != nil {
		return nil, err
	}
	turns, err := s.turns.FindByRoom(roomID)
	if err != nil {
		return nil, err
	}

	cards := ScoreCards(participants, turns)
	for i := range participants {
		p := &participants[i]
		card, ok := cards[p.ID]
		if !ok {
			continue
		}
		p.Score = card.Scores
		if err := s.participants.Update(p); err != nil {
			return nil, fmt.Errorf("update participant score: %w", err)
		}
	}
	s.cache.invalidate(roomID)
	return cards, nil
}

// ScoreCards 依發言的 AI 評分計算每位辯手的平均與加權總分，沒有發言的辯手不列入
func ScoreCards(participants []models.Participant, turns []models.Turn) map[uint]models.ScoreCard {
	cards := make(map[uint]models.ScoreCard)
	for _, p := range models.Debaters(participants) {
		var sum models.Scores
		count := 0
		for _, t := range turns {
			if t.SpeakerID != p.ID {
				continue
			}
			sum.Logic += t.AIFeedback.Logic
			sum.Credibility += t.AIFeedback.Credibility
			sum.Rhetoric += t.AIFeedback.Rhetoric
			count++
		}
		if count == 0 {
			continue
		}
		avg := models.Scores{
			Logic:       sum.Logic / float64(count),
			Credibility: sum.Credibility / float64(count),
			Rhetoric:    sum.Rhetoric / float64(count),
		}
		cards[p.ID] = models.ScoreCard{Scores: avg, WeightedTotal: WeightedTotal(avg), TurnCount: count}
	}
	return cards
}

// EndDebate 主持人結束辯論，產生結果
func (s *DebateService) EndDebate(roomID, userID uint) (*models.Result, error) {
	unlock := s.locks.lock(roomID)
	defer unlock()

	room, err := s.room(roomID)
	if err != nil {
		return nil, err
	}
	if room.HostID != userID {
		return nil, ErrNotHost
	}
	if room.Status != models.RoomStatusOngoing {
		return nil, ErrDebateNotOngoing
	}

	participants, err := s.participants.FindByRoom(roomID)
	if err != nil {
		return nil, err
	}
	turns, err := s.turns.FindByRoom(roomID)
	if err != nil {
		return nil, err
	}
	votes, err := s.votes.FindByRoom(roomID)
	if err != nil {
		return nil, err
	}

	cards := ScoreCards(participants, turns)
	influence := make(map[uint]int)
	for _, v := range votes {
		influence[v.TargetID]++
	}

	result := &models.Result{
		RoomID:             roomID,
		WinnerID:           winner(cards, influence),
		Scores:             cards,
		Summary:            summarize(room, participants, cards, influence, len(turns)),
		SpectatorInfluence: influence,
	}
	// 先寫入結果再改狀態；前次結束時狀態更新失敗，重試沿用已存的結果
	if existing, err := s.results.FindByRoom(roomID); err == nil {
		result = existing
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	} else if err := s.results.Create(result); err != nil {
		return nil, fmt.Errorf("create result: %w", err)
	}

	room.Status = models.RoomStatusCompleted
	if err := s.rooms.Update(room); err != nil {
		return nil, fmt.Errorf("complete room: %w", err)
	}
	s.cache.invalidate(roomID)

	s.logger.Info("debate ended", zap.Uint("room_id", roomID), zap.Int("turns", len(turns)))
	s.hub.Broadcast(models.Event{Type: models.EventDebateEnded, RoomID: roomID, Data: result})
	return result, nil
}

// Result 查詢已結束辯論的結果
func (s *DebateService) Result(roomID uint) (*models.Result, error) {
	result, err := s.results.FindByRoom(roomID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrResultNotFound
	}
	return result, err
}

// winner 加權總分最高者勝，同分時觀眾反應多者勝，再同分則無勝者
func winner(cards map[uint]models.ScoreCard, influence map[uint]int) *uint {
	ids := make([]uint, 0, len(cards))
	for id := range cards {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := cards[ids[i]], cards[ids[j]]
		if a.WeightedTotal != b.WeightedTotal {
			return a.WeightedTotal > b.WeightedTotal
		}
		if influence[ids[i]] != influence[ids[j]] {
			return influence[ids[i]] > influence[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > 1 {
		a, b := ids[0], ids[1]
		if cards[a].WeightedTotal == cards[b].WeightedTotal && influence[a] == influence[b] {
			return nil
		}
	}
	id := ids[0]
	return &id
}

func summarize(room *models.Room, participants []models.Participant, cards map[uint]models.ScoreCard, influence map[uint]int, turnCount int) string {
	if len(cards) == 0 {
		return fmt.Sprintf("Debate on %q concluded without scored arguments.", room.Topic)
	}

	names := make(map[uint]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.DisplayName
	}

	id := winner(cards, influence)
	if id == nil {
		return fmt.Sprintf("Debate on %q concluded after %d turns with a tie.", room.Topic, turnCount)
	}
	return fmt.Sprintf("Debate on %q concluded after %d turns. %s won with a weighted score of %.1f.",
		room.Topic, turnCount, names[*id], cards[*id].WeightedTotal)
}
