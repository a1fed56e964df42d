package repository

import (
	"errors"
	"sort"
	"sync"
	"time"

	"debate_arena/internal/models"
)

var ErrDuplicate = errors.New("duplicate record")

// memoryStore 不依賴資料庫的實作，用於本機執行 (db.driver=memory) 與測試
type memoryStore struct {
	mu           sync.RWMutex
	nextID       uint
	users        map[uint]models.User
	rooms        map[uint]models.Room
	participants map[uint]models.Participant
	turns        map[uint]models.Turn
	votes        map[uint]models.SpectatorVote
	results      map[uint]models.Result
}

func (s *memoryStore) id() uint {
	s.nextID++
	return s.nextID
}

// NewMemoryRepositories 建立共用同一份記憶體資料的 repositories
func NewMemoryRepositories() *Repositories {
	s := &memoryStore{
		users:        make(map[uint]models.User),
		rooms:        make(map[uint]models.Room),
		participants: make(map[uint]models.Participant),
		turns:        make(map[uint]models.Turn),
		votes:        make(map[uint]models.SpectatorVote),
		results:      make(map[uint]models.Result),
	}
	return &Repositories{
		User:        &memoryUsers{s},
		Room:        &memoryRooms{s},
		Participant: &memoryParticipants{s},
		Turn:        &memoryTurns{s},
		Vote:        &memoryVotes{s},
		Result:      &memoryResults{s},
	}
}

type memoryUsers struct{ s *memoryStore }

func (r *memoryUsers) Create(user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return ErrDuplicate
		}
	}
	user.ID = r.s.id()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *memoryUsers) FindByID(id uint) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *memoryUsers) FindByEmail(email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *memoryUsers) FindByUsername(username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *memoryUsers) find(match func(models.User) bool) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

type memoryRooms struct{ s *memoryStore }

func (r *memoryRooms) Create(room *models.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.rooms {
		if existing.RoomCode == room.RoomCode {
			return ErrDuplicate
		}
	}
	room.ID = r.s.id()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	r.s.rooms[room.ID] = cloneRoom(*room)
	return nil
}

func (r *memoryRooms) FindByID(id uint) (*models.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	room, ok := r.s.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	room = cloneRoom(room)
	return &room, nil
}

func (r *memoryRooms) FindByCode(code string) (*models.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, room := range r.s.rooms {
		if room.RoomCode == code {
			room = cloneRoom(room)
			return &room, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRooms) Update(room *models.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.rooms[room.ID]; !ok {
		return ErrNotFound
	}
	r.s.rooms[room.ID] = cloneRoom(*room)
	return nil
}

func (r *memoryRooms) Delete(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.rooms, id)
	return nil
}

func (r *memoryRooms) FindAll(filter RoomFilter) ([]models.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rooms := make([]models.Room, 0, len(r.s.rooms))
	for _, room := range r.s.rooms {
		if filter.Visibility != "" && room.Visibility != filter.Visibility {
			continue
		}
		if filter.Status != "" && room.Status != filter.Status {
			continue
		}
		rooms = append(rooms, cloneRoom(room))
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID > rooms[j].ID
		}
		return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
	})
	if filter.Limit > 0 && len(rooms) > filter.Limit {
		rooms = rooms[:filter.Limit]
	}
	return rooms, nil
}

func cloneRoom(room models.Room) models.Room {
	room.Resources = append([]string(nil), room.Resources...)
	return room
}

type memoryParticipants struct{ s *memoryStore }

func (r *memoryParticipants) Create(p *models.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.participants {
		if existing.UserID == p.UserID && existing.RoomID == p.RoomID {
			return ErrDuplicate
		}
	}
	p.ID = r.s.id()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.s.participants[p.ID] = *p
	return nil
}

func (r *memoryParticipants) FindByID(id uint) (*models.Participant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.participants[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *memoryParticipants) FindByRoom(roomID uint) ([]models.Participant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Participant
	for _, p := range r.s.participants {
		if p.RoomID == roomID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryParticipants) FindByUserAndRoom(userID, roomID uint) (*models.Participant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.participants {
		if p.UserID == userID && p.RoomID == roomID {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryParticipants) Update(p *models.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.participants[p.ID]; !ok {
		return ErrNotFound
	}
	r.s.participants[p.ID] = *p
	return nil
}

func (r *memoryParticipants) Delete(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.participants, id)
	return nil
}

type memoryTurns struct{ s *memoryStore }

func (r *memoryTurns) Create(turn *models.Turn) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	turn.ID = r.s.id()
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}
	r.s.turns[turn.ID] = *turn
	return nil
}

func (r *memoryTurns) FindByRoom(roomID uint) ([]models.Turn, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Turn
	for _, t := range r.s.turns {
		if t.RoomID == roomID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.RoundNumber != b.RoundNumber {
			return a.RoundNumber < b.RoundNumber
		}
		if a.TurnNumber != b.TurnNumber {
			return a.TurnNumber < b.TurnNumber
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r *memoryTurns) CountByRoom(roomID uint) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, t := range r.s.turns {
		if t.RoomID == roomID {
			n++
		}
	}
	return n, nil
}

type memoryVotes struct{ s *memoryStore }

func (r *memoryVotes) Create(vote *models.SpectatorVote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	vote.ID = r.s.id()
	if vote.CreatedAt.IsZero() {
		vote.CreatedAt = time.Now()
	}
	r.s.votes[vote.ID] = *vote
	return nil
}

func (r *memoryVotes) FindByRoom(roomID uint) ([]models.SpectatorVote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.SpectatorVote
	for _, v := range r.s.votes {
		if v.RoomID == roomID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memoryResults struct{ s *memoryStore }

func (r *memoryResults) Create(result *models.Result) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.results {
		if existing.RoomID == result.RoomID {
			return ErrDuplicate
		}
	}
	result.ID = r.s.id()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}
	r.s.results[result.ID] = *result
	return nil
}

func (r *memoryResults) FindByRoom(roomID uint) (*models.Result, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, result := range r.s.results {
		if result.RoomID == roomID {
			return &result, nil
		}
	}
	return nil, ErrNotFound
}
