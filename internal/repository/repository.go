package repository

import (
	"errors"

	"gorm.io/gorm"

	"debate_arena/internal/storage"
)

// ErrNotFound 查無資料，gorm 與記憶體實作都回傳這個錯誤
var ErrNotFound = errors.New("record not found")

type Repositories struct {
	User        UserRepository
	Room        RoomRepository
	Participant ParticipantRepository
	Turn        TurnRepository
	Vote        VoteRepository
	Result      ResultRepository
}

func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Room:        NewRoomRepository(db),
		Participant: NewParticipantRepository(db),
		Turn:        NewTurnRepository(db),
		Vote:        NewVoteRepository(db),
		Result:      NewResultRepository(db),
	}
}

// notFound 把 gorm 的查無資料錯誤轉成 ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
