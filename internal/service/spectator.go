package service

import (
	"errors"
	"fmt"
	"strings"

	"debate_arena/internal/models"
	"debate_arena/internal/repository"
)

// SpectatorStats 觀眾反應統計
type SpectatorStats struct {
	RoomID             uint              `json:"room_id"`
	TotalSpectators    int               `json:"total_spectators"`
	Reactions          map[uint][]string `json:"reactions"`
	SupportPercentages map[uint]float64  `json:"support_percentages"`
}

type SpectatorService struct {
	rooms        repository.RoomRepository
	participants repository.ParticipantRepository
	votes        repository.VoteRepository
	hub          *Hub
}

func NewSpectatorService(repos *repository.Repositories, hub *Hub) *SpectatorService {
	return &SpectatorService{
		rooms:        repos.Room,
		participants: repos.Participant,
		votes:        repos.Vote,
		hub:          hub,
	}
}

// Reward 觀眾對辯手送出反應
func (s *SpectatorService) Reward(roomID, userID, targetID uint, reaction string) (*models.SpectatorVote, error) {
	reaction = strings.TrimSpace(reaction)
	if reaction == "" {
		return nil, fmt.Errorf("%w: reaction_type is required", ErrInvalidInput)
	}

	if _, err := s.rooms.FindByID(roomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	target, err := s.participants.FindByID(targetID)
	if err != nil || target.RoomID != roomID || !target.IsDebater() {
		return nil, ErrParticipantNotFound
	}

	vote := &models.SpectatorVote{
		RoomID:       roomID,
		SpectatorID:  userID,
		TargetID:     targetID,
		ReactionType: reaction,
	}
	if err := s.votes.Create(vote); err != nil {
		return nil, fmt.Errorf("create vote: %w", err)
	}

	s.hub.Broadcast(models.Event{Type: models.EventSystem, RoomID: roomID, UserID: userID, Content: reaction, Data: vote})
	return vote, nil
}

// Stats 各辯手收到的反應與支持比例
func (s *SpectatorService) Stats(roomID uint) (*SpectatorStats, error) {
	if _, err := s.rooms.FindByID(roomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	participants, err := s.participants.FindByRoom(roomID)
	if err != nil {
		return nil, err
	}
	votes, err := s.votes.FindByRoom(roomID)
	if err != nil {
		return nil, err
	}

	stats := &SpectatorStats{
		RoomID:             roomID,
		Reactions:          make(map[uint][]string),
		SupportPercentages: make(map[uint]float64),
	}
	for _, p := range participants {
		if p.Role == models.RoleSpectator {
			stats.TotalSpectators++
		}
	}
	for _, v := range votes {
		stats.Reactions[v.TargetID] = append(stats.Reactions[v.TargetID], v.ReactionType)
	}
	if len(votes) > 0 {
		for target, list := range stats.Reactions {
			stats.SupportPercentages[target] = float64(len(list)) / float64(len(votes)) * 100
		}
	}
	return stats, nil
}
