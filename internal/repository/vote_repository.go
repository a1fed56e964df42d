package repository

import (
	"debate_arena/internal/models"
	"debate_arena/internal/storage"
)

type VoteRepository interface {
	Create(vote *models.SpectatorVote) error
	FindByRoom(roomID uint) ([]models.SpectatorVote, error)
}

type voteRepository struct {
	db *storage.PostgresDB
}

func NewVoteRepository(db *storage.PostgresDB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Create(vote *models.SpectatorVote) error {
	return r.db.Create(vote).Error
}

func (r *voteRepository) FindByRoom(roomID uint) ([]models.SpectatorVote, error) {
	var votes []models.SpectatorVote
	err := r.db.Where("room_id = ?", roomID).Order("id asc").Find(&votes).Error
	return votes, err
}

type ResultRepository interface {
	Create(result *models.Result) error
	FindByRoom(roomID uint) (*models.Result, error)
}

type resultRepository struct {
	db *storage.PostgresDB
}

func NewResultRepository(db *storage.PostgresDB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) Create(result *models.Result) error {
	return r.db.Create(result).Error
}

func (r *resultRepository) FindByRoom(roomID uint) (*models.Result, error) {
	var result models.Result
	if err := r.db.Where("room_id = ?", roomID).First(&result).Error; err != nil {
		return nil, notFound(err)
	}
	return &result, nil
}
