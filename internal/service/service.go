package service

import (
	"go.uber.org/zap"

	"debate_arena/internal/repository"
	"debate_arena/internal/storage"
	"debate_arena/internal/utils"
)

type Services struct {
	User      *UserService
	Room      *RoomService
	Debate    *DebateService
	Spectator *SpectatorService
	Hub       *Hub
}

func NewServices(repos *repository.Repositories, files *storage.FileStore, tokens *utils.TokenManager, logger *zap.Logger) *Services {
	hub := NewHub(logger)
	cache := newStatusCache(statusCacheTTL)
	locks := newRoomLocks()

	userService := NewUserService(repos.User, tokens)
	roomService := NewRoomService(repos, hub, cache, locks, logger)
	debateService := NewDebateService(repos, hub, cache, locks, files, HeuristicJudge{}, logger)
	spectatorService := NewSpectatorService(repos, hub)

	return &Services{
		User:      userService,
		Room:      roomService,
		Debate:    debateService,
		Spectator: spectatorService,
		Hub:       hub,
	}
}
