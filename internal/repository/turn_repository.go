package repository

import (
	"debate_arena/internal/models"
	"debate_arena/internal/storage"
)

// TurnRepository 發言紀錄只能新增，沒有更新與刪除
type TurnRepository interface {
	Create(turn *models.Turn) error
	FindByRoom(roomID uint) ([]models.Turn, error)
	CountByRoom(roomID uint) (int, error)
}

type turnRepository struct {
	db *storage.PostgresDB
}

func NewTurnRepository(db *storage.PostgresDB) TurnRepository {
	return &turnRepository{db: db}
}

func (r *turnRepository) Create(turn *models.Turn) error {
	return r.db.Create(turn).Error
}

// FindByRoom 依 (輪次, 順序) 排序
func (r *turnRepository) FindByRoom(roomID uint) ([]models.Turn, error) {
	var turns []models.Turn
	err := r.db.Where("room_id = ?", roomID).
		Order("round_number asc").
		Order("turn_number asc").
		Order("id asc").
		Find(&turns).Error
	return turns, err
}

func (r *turnRepository) CountByRoom(roomID uint) (int, error) {
	var n int64
	err := r.db.Model(&models.Turn{}).Where("room_id = ?", roomID).Count(&n).Error
	return int(n), err
}
