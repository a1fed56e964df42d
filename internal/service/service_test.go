package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"debate_arena/internal/models"
	"debate_arena/internal/repository"
	"debate_arena/internal/storage"
	"debate_arena/internal/utils"
)

type fixture struct {
	repos     *repository.Repositories
	services  *Services
	uploadDir string
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, nil)
}

// newFixtureWith 允許在建立服務前替換 repository，用於模擬寫入失敗
func newFixtureWith(t *testing.T, wrap func(*repository.Repositories)) *fixture {
	t.Helper()
	repos := repository.NewMemoryRepositories()
	if wrap != nil {
		wrap(repos)
	}
	dir := t.TempDir()
	files, err := storage.NewFileStore(dir, 1)
	require.NoError(t, err)
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	return &fixture{
		repos:     repos,
		services:  NewServices(repos, files, tokens, zap.NewNop()),
		uploadDir: dir,
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	_, u, err := f.services.User.Register(name+"@example.com", name, "password")
	require.NoError(t, err)
	return u
}

// ongoingRoom 建立一個已坐滿的個人賽房間，回傳房間與兩位辯手
func (f *fixture) ongoingRoom(t *testing.T, rounds int) (*models.Room, *models.User, *models.User) {
	t.Helper()
	host := f.user(t, "host")
	guest := f.user(t, "guest")

	room, err := f.services.Room.CreateRoom(host.ID, RoomInput{Topic: "Cities should ban cars", Rounds: rounds, Mode: models.ModeBoth})
	require.NoError(t, err)

	_, err = f.services.Room.JoinAsDebater(host.ID, room.RoomCode, nil)
	require.NoError(t, err)
	_, err = f.services.Room.JoinAsDebater(guest.ID, room.RoomCode, nil)
	require.NoError(t, err)

	room, err = f.services.Room.GetRoom(room.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoomStatusOngoing, room.Status)
	return room, host, guest
}

// hookedRooms 可以讓 Update 失敗，或在寫入前插入其他讀取
type hookedRooms struct {
	repository.RoomRepository
	updateErr    error
	beforeUpdate func(*models.Room)
}

func (r *hookedRooms) Update(room *models.Room) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate(room)
	}
	if r.updateErr != nil {
		return r.updateErr
	}
	return r.RoomRepository.Update(room)
}

type failingResults struct {
	repository.ResultRepository
	err error
}

func (r *failingResults) Create(result *models.Result) error {
	if r.err != nil {
		return r.err
	}
	return r.ResultRepository.Create(result)
}

type failingTurns struct {
	repository.TurnRepository
	err error
}

func (r *failingTurns) Create(turn *models.Turn) error {
	if r.err != nil {
		return r.err
	}
	return r.TurnRepository.Create(turn)
}
