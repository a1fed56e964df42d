package repository

import (
	"debate_arena/internal/models"
	"debate_arena/internal/storage"
)

type ParticipantRepository interface {
	Create(p *models.Participant) error
	FindByID(id uint) (*models.Participant, error)
	FindByRoom(roomID uint) ([]models.Participant, error)
	FindByUserAndRoom(userID, roomID uint) (*models.Participant, error)
	Update(p *models.Participant) error
	Delete(id uint) error
}

type participantRepository struct {
	db *storage.PostgresDB
}

func NewParticipantRepository(db *storage.PostgresDB) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Create(p *models.Participant) error {
	return r.db.Create(p).Error
}

func (r *participantRepository) FindByID(id uint) (*models.Participant, error) {
	var p models.Participant
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// FindByRoom 依加入順序回傳房間內所有參與者
func (r *participantRepository) FindByRoom(roomID uint) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.db.Where("room_id = ?", roomID).Order("id asc").Find(&participants).Error
	return participants, err
}

func (r *participantRepository) FindByUserAndRoom(userID, roomID uint) (*models.Participant, error) {
	var p models.Participant
	if err := r.db.Where("user_id = ? AND room_id = ?", userID, roomID).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *participantRepository) Update(p *models.Participant) error {
	return r.db.Save(p).Error
}

func (r *participantRepository) Delete(id uint) error {
	return r.db.Delete(&models.Participant{}, id).Error
}
