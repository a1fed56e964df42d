package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"debate_arena/internal/models"
	"debate_arena/internal/repository"
)

const (
	defaultRounds      = 3
	defaultTimePerTurn = 3
	defaultDuration    = 30
	roomCodeAttempts   = 10
)

// RoomInput 建立房間的參數，零值欄位使用預設值
type RoomInput struct {
	Topic           string
	Description     string
	ScheduledTime   time.Time
	DurationMinutes int
	Mode            models.DebateMode
	Type            models.DebateType
	Visibility      models.Visibility
	Rounds          int
	TimePerTurn     int
	MaxParticipants int
	Resources       []string
}

type RoomService struct {
	rooms        repository.RoomRepository
	participants repository.ParticipantRepository
	users        repository.UserRepository
	hub          *Hub
	cache        *statusCache
	locks        *roomLocks
	logger       *zap.Logger
}

func NewRoomService(repos *repository.Repositories, hub *Hub, cache *statusCache, locks *roomLocks, logger *zap.Logger) *RoomService {
	return &RoomService{
		rooms:        repos.Room,
		participants: repos.Participant,
		users:        repos.User,
		hub:          hub,
		cache:        cache,
		locks:        locks,
		logger:       logger,
	}
}

// CreateRoom 建立房間，呼叫者成為主持人
func (s *RoomService) CreateRoom(hostID uint, in RoomInput) (*models.Room, error) {
	in.Topic = strings.TrimSpace(in.Topic)
	if in.Topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrInvalidInput)
	}

	room := &models.Room{
		Topic:           in.Topic,
		Description:     in.Description,
		ScheduledTime:   in.ScheduledTime,
		DurationMinutes: orDefault(in.DurationMinutes, defaultDuration),
		Mode:            in.Mode,
		Type:            in.Type,
		Visibility:      in.Visibility,
		Rounds:          orDefault(in.Rounds, defaultRounds),
		TimePerTurn:     orDefault(in.TimePerTurn, defaultTimePerTurn),
		MaxParticipants: in.MaxParticipants,
		Resources:       in.Resources,
		HostID:          hostID,
		Status:          models.RoomStatusWaiting,
	}
	if room.Mode == "" {
		room.Mode = models.ModeText
	}
	if room.Type == "" {
		room.Type = models.TypeIndividual
	}
	if room.Visibility == "" {
		room.Visibility = models.VisibilityPublic
	}
	if room.ScheduledTime.IsZero() {
		room.ScheduledTime = time.Now()
	}
	if room.Resources == nil {
		room.Resources = []string{}
	}
	if err := validateRoom(room); err != nil {
		return nil, err
	}
	room.MaxParticipants = room.SeatCount()

	for attempt := 0; attempt < roomCodeAttempts; attempt++ {
		code, err := generateRoomCode()
		if err != nil {
			return nil, err
		}
		if _, err := s.rooms.FindByCode(code); err == nil {
			continue
		}
		room.RoomCode = code

		if err := s.rooms.Create(room); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			return nil, fmt.Errorf("create room: %w", err)
		}
		s.logger.Info("room created", zap.Uint("room_id", room.ID), zap.String("code", room.RoomCode))
		return room, nil
	}
	return nil, errors.New("could not allocate a unique room code")
}

func validateRoom(room *models.Room) error {
	switch room.Mode {
	case models.ModeText, models.ModeAudio, models.ModeBoth:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, room.Mode)
	}
	switch room.Type {
	case models.TypeIndividual, models.TypeTeam:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidInput, room.Type)
	}
	if room.Rounds < 1 || room.TimePerTurn < 1 {
		return fmt.Errorf("%w: rounds and time_per_turn must be positive", ErrInvalidInput)
	}
	if room.MaxParticipants < 0 || room.MaxParticipants == 1 {
		return fmt.Errorf("%w: max_participants must be at least 2", ErrInvalidInput)
	}
	if room.Type == models.TypeTeam && room.MaxParticipants%2 != 0 {
		return fmt.Errorf("%w: team rooms need an even number of seats", ErrInvalidInput)
	}
	return nil
}

// generateRoomCode 產生 6 位大寫十六進位房間代碼
func generateRoomCode() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func (s *RoomService) GetRoom(roomID uint) (*models.Room, error) {
	room, err := s.rooms.FindByID(roomID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	return room, err
}

func (s *RoomService) GetRoomByCode(code string) (*models.Room, error) {
	room, err := s.rooms.FindByCode(strings.ToUpper(strings.TrimSpace(code)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	return room, err
}

// ListRooms 列出公開房間，可以依狀態過濾
func (s *RoomService) ListRooms(status models.RoomStatus, limit int) ([]models.Room, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.rooms.FindAll(repository.RoomFilter{
		Visibility: models.VisibilityPublic,
		Status:     status,
		Limit:      limit,
	})
}

// JoinAsDebater 以辯手身份加入房間。重複加入會回傳原本的參與者。
// 辯手席位坐滿時房間自動進入 ongoing。
func (s *RoomService) JoinAsDebater(userID uint, code string, team *models.Team) (*models.Participant, error) {
	found, err := s.GetRoomByCode(code)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(found.ID)
	defer unlock()

	// 取得鎖後重新讀取，席位與狀態以鎖內的資料為準
	room, err := s.GetRoom(found.ID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.participants.FindByUserAndRoom(userID, room.ID); err == nil {
		return existing, nil
	}

	if room.Status != models.RoomStatusWaiting {
		return nil, ErrRoomNotOpen
	}

	participants, err := s.participants.FindByRoom(room.ID)
	if err != nil {
		return nil, err
	}
	debaters := models.Debaters(participants)
	seats := room.SeatCount()
	if len(debaters) >= seats {
		return nil, ErrRoomFull
	}

	if room.Type == models.TypeTeam {
		if team == nil || (*team != models.TeamFor && *team != models.TeamAgainst) {
			return nil, ErrInvalidTeam
		}
		onTeam := 0
		for _, d := range debaters {
			if d.Team != nil && *d.Team == *team {
				onTeam++
			}
		}
		if onTeam >= seats/2 {
			return nil, ErrTeamFull
		}
	} else {
		// 個人賽依加入順序分配正反方
		side := models.TeamFor
		if len(debaters)%2 == 1 {
			side = models.TeamAgainst
		}
		team = &side
	}

	p := &models.Participant{
		RoomID:      room.ID,
		UserID:      userID,
		DisplayName: s.displayName(userID),
		Role:        models.RoleDebater,
		Team:        team,
	}
	if err := s.participants.Create(p); err != nil {
		return nil, fmt.Errorf("create participant: %w", err)
	}
	s.cache.invalidate(room.ID)

	s.hub.Broadcast(models.Event{Type: models.EventParticipantJoined, RoomID: room.ID, UserID: userID, Data: p})

	if len(debaters)+1 >= seats {
		room.Status = models.RoomStatusOngoing
		if err := s.rooms.Update(room); err != nil {
			return nil, fmt.Errorf("start debate: %w", err)
		}
		s.cache.invalidate(room.ID)
		s.logger.Info("debate started", zap.Uint("room_id", room.ID))
		s.hub.BroadcastSystemMessage(room.ID, "All seats filled, the debate has started")
	}

	return p, nil
}

// JoinAsSpectator 以觀眾身份加入房間，任何狀態都可以加入
func (s *RoomService) JoinAsSpectator(userID uint, code string) (*models.Participant, error) {
	room, err := s.GetRoomByCode(code)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(room.ID)
	defer unlock()

	if existing, err := s.participants.FindByUserAndRoom(userID, room.ID); err == nil {
		return existing, nil
	}

	p := &models.Participant{
		RoomID:      room.ID,
		UserID:      userID,
		DisplayName: s.displayName(userID),
		Role:        models.RoleSpectator,
		IsReady:     true,
	}
	if err := s.participants.Create(p); err != nil {
		return nil, fmt.Errorf("create spectator: %w", err)
	}
	s.cache.invalidate(room.ID)
	s.hub.Broadcast(models.Event{Type: models.EventParticipantJoined, RoomID: room.ID, UserID: userID, Data: p})
	return p, nil
}

// Leave 離開房間。辯論開始後辯手不能離開。
func (s *RoomService) Leave(participantID, userID uint) error {
	p, err := s.participants.FindByID(participantID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrParticipantNotFound
	}
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return ErrNotAuthorized
	}

	unlock := s.locks.lock(p.RoomID)
	defer unlock()

	if p.IsDebater() {
		room, err := s.GetRoom(p.RoomID)
		if err != nil {
			return err
		}
		if room.Status != models.RoomStatusWaiting {
			return ErrRoomNotOpen
		}
	}

	if err := s.participants.Delete(p.ID); err != nil {
		return err
	}
	s.cache.invalidate(p.RoomID)
	return nil
}

// Participant 查詢參與者。用於 WebSocket 連線時確認身份
func (s *RoomService) Participant(userID, roomID uint) (*models.Participant, error) {
	p, err := s.participants.FindByUserAndRoom(userID, roomID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrParticipantNotFound
	}
	return p, err
}

func (s *RoomService) displayName(userID uint) string {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return fmt.Sprintf("user-%d", userID)
	}
	return user.Username
}
