package repository

import (
	"debate_arena/internal/models"
	"debate_arena/internal/storage"
)

// RoomFilter 房間列表的查詢條件，零值欄位不過濾
type RoomFilter struct {
	Visibility models.Visibility
	Status     models.RoomStatus
	Limit      int
}

type RoomRepository interface {
	Create(room *models.Room) error
	FindByID(id uint) (*models.Room, error)
	FindByCode(code string) (*models.Room, error)
	Update(room *models.Room) error
	Delete(id uint) error
	FindAll(filter RoomFilter) ([]models.Room, error)
}

type roomRepository struct {
	db *storage.PostgresDB
}

func NewRoomRepository(db *storage.PostgresDB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(room *models.Room) error {
	return r.db.Create(room).Error
}

func (r *roomRepository) FindByID(id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.First(&room, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

func (r *roomRepository) FindByCode(code string) (*models.Room, error) {
	var room models.Room
	if err := r.db.Where("room_code = ?", code).First(&room).Error; err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

func (r *roomRepository) Update(room *models.Room) error {
	return r.db.Save(room).Error
}

func (r *roomRepository) Delete(id uint) error {
	return r.db.Delete(&models.Room{}, id).Error
}

// FindAll 依條件查詢房間，新建立的排在前面
func (r *roomRepository) FindAll(filter RoomFilter) ([]models.Room, error) {
	q := r.db.Order("created_at DESC")
	if filter.Visibility != "" {
		q = q.Where("visibility = ?", filter.Visibility)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rooms []models.Room
	err := q.Find(&rooms).Error
	return rooms, err
}
