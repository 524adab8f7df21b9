package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryState struct {
	mu           sync.Mutex
	nextID       uint
	rooms        map[uint]Room
	participants map[uint]Participant
	bans         map[uint]BannedUser
	questions    map[uint]Question
	answers      map[uint]Answer
	results      map[uint]GameResult
	profiles     map[string]Profile
}

// MemoryRepository keeps every collection in process. Transactions hold the
// repository lock and roll back by restoring a copy of the maps.
type MemoryRepository struct {
	state *memoryState
	inTx  bool
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		state: &memoryState{
			nextID:       1,
			rooms:        make(map[uint]Room),
			participants: make(map[uint]Participant),
			bans:         make(map[uint]BannedUser),
			questions:    make(map[uint]Question),
			answers:      make(map[uint]Answer),
			results:      make(map[uint]GameResult),
			profiles:     make(map[string]Profile),
		},
		now: timeNowUTC,
	}
}

func (m *MemoryRepository) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.state.mu.Lock()
	return m.state.mu.Unlock
}

func (m *MemoryRepository) allocID() uint {
	id := m.state.nextID
	m.state.nextID++
	return id
}

func (m *MemoryRepository) InTx(ctx context.Context, fn func(repo Repository) error) error {
	if m.inTx {
		return fn(m)
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	backup := m.state.clone()
	tx := &MemoryRepository{state: m.state, inTx: true, now: m.now}
	if err := fn(tx); err != nil {
		m.state.restore(backup)
		return err
	}
	return nil
}

func (m *MemoryRepository) CreateRoom(ctx context.Context, room *Room) error {
	defer m.lock()()
	now := m.now()
	room.ID = m.allocID()
	room.CreatedAt = now
	room.UpdatedAt = now
	m.state.rooms[room.ID] = *room
	return nil
}

func (m *MemoryRepository) GetRoom(ctx context.Context, id uint) (Room, error) {
	defer m.lock()()
	room, ok := m.state.rooms[id]
	if !ok {
		return Room{}, ErrNotFound
	}
	return room, nil
}

func (m *MemoryRepository) FindActiveRoomByCode(ctx context.Context, code string) (Room, error) {
	defer m.lock()()
	var found *Room
	for _, room := range m.state.rooms {
		if room.Status == StatusEnded || !strings.EqualFold(room.Code, code) {
			continue
		}
		if found == nil || room.ID > found.ID {
			candidate := room
			found = &candidate
		}
	}
	if found == nil {
		return Room{}, ErrNotFound
	}
	return *found, nil
}

func (m *MemoryRepository) ListRoomsByHost(ctx context.Context, hostUID string) ([]Room, error) {
	defer m.lock()()
	list := make([]Room, 0)
	for _, room := range m.state.rooms {
		if room.HostUID == hostUID {
			list = append(list, room)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (m *MemoryRepository) UpdateRoom(ctx context.Context, id uint, update func(room *Room) error) (Room, error) {
	defer m.lock()()
	room, ok := m.state.rooms[id]
	if !ok {
		return Room{}, ErrNotFound
	}
	if err := update(&room); err != nil {
		return Room{}, err
	}
	room.ID = id
	room.UpdatedAt = m.now()
	m.state.rooms[id] = room
	return room, nil
}

func (m *MemoryRepository) DeleteRoom(ctx context.Context, id uint) error {
	defer m.lock()()
	if _, ok := m.state.rooms[id]; !ok {
		return ErrNotFound
	}
	delete(m.state.rooms, id)
	for key, p := range m.state.participants {
		if p.RoomID == id {
			delete(m.state.participants, key)
		}
	}
	for key, b := range m.state.bans {
		if b.RoomID == id {
			delete(m.state.bans, key)
		}
	}
	for key, q := range m.state.questions {
		if q.RoomID == id {
			delete(m.state.questions, key)
		}
	}
	for key, a := range m.state.answers {
		if a.RoomID == id {
			delete(m.state.answers, key)
		}
	}
	return nil
}

func (m *MemoryRepository) CreateParticipant(ctx context.Context, participant *Participant) error {
	defer m.lock()()
	for _, existing := range m.state.participants {
		if existing.RoomID == participant.RoomID && existing.UID == participant.UID {
			return ErrDuplicate
		}
	}
	participant.ID = m.allocID()
	if participant.JoinedAt.IsZero() {
		participant.JoinedAt = m.now()
	}
	m.state.participants[participant.ID] = *participant
	return nil
}

func (m *MemoryRepository) findParticipant(roomID uint, uid string) (Participant, bool) {
	for _, p := range m.state.participants {
		if p.RoomID == roomID && p.UID == uid {
			return p, true
		}
	}
	return Participant{}, false
}

func (m *MemoryRepository) GetParticipant(ctx context.Context, roomID uint, uid string) (Participant, error) {
	defer m.lock()()
	p, ok := m.findParticipant(roomID, uid)
	if !ok {
		return Participant{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryRepository) ListParticipants(ctx context.Context, roomID uint) ([]Participant, error) {
	defer m.lock()()
	list := make([]Participant, 0)
	for _, p := range m.state.participants {
		if p.RoomID == roomID {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *MemoryRepository) CountActiveParticipants(ctx context.Context, roomID uint) (int, error) {
	defer m.lock()()
	count := 0
	for _, p := range m.state.participants {
		if p.RoomID == roomID && p.Status != ParticipantLeft {
			count++
		}
	}
	return count, nil
}

func (m *MemoryRepository) UpdateParticipantStatus(ctx context.Context, roomID uint, uid string, status ParticipantStatus) (Participant, error) {
	defer m.lock()()
	p, ok := m.findParticipant(roomID, uid)
	if !ok {
		return Participant{}, ErrNotFound
	}
	p.Status = status
	m.state.participants[p.ID] = p
	return p, nil
}

func (m *MemoryRepository) DeleteParticipant(ctx context.Context, roomID uint, uid string) error {
	defer m.lock()()
	p, ok := m.findParticipant(roomID, uid)
	if !ok {
		return ErrNotFound
	}
	delete(m.state.participants, p.ID)
	return nil
}

func (m *MemoryRepository) CreateBan(ctx context.Context, ban *BannedUser) error {
	defer m.lock()()
	ban.ID = m.allocID()
	ban.CreatedAt = m.now()
	m.state.bans[ban.ID] = *ban
	return nil
}

func (m *MemoryRepository) CountBans(ctx context.Context, roomID uint, uid string) (int, error) {
	defer m.lock()()
	count := 0
	for _, b := range m.state.bans {
		if b.RoomID == roomID && b.UID == uid {
			count++
		}
	}
	return count, nil
}

func (m *MemoryRepository) ListBans(ctx context.Context, roomID uint) ([]BannedUser, error) {
	defer m.lock()()
	list := make([]BannedUser, 0)
	for _, b := range m.state.bans {
		if b.RoomID == roomID {
			list = append(list, b)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *MemoryRepository) DeleteBans(ctx context.Context, roomID uint, uid string) (int, error) {
	defer m.lock()()
	removed := 0
	for key, b := range m.state.bans {
		if b.RoomID == roomID && b.UID == uid {
			delete(m.state.bans, key)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryRepository) CreateQuestion(ctx context.Context, question *Question) error {
	defer m.lock()()
	question.ID = m.allocID()
	question.CreatedAt = m.now()
	m.state.questions[question.ID] = *question
	return nil
}

func (m *MemoryRepository) GetQuestion(ctx context.Context, id uint) (Question, error) {
	defer m.lock()()
	q, ok := m.state.questions[id]
	if !ok {
		return Question{}, ErrNotFound
	}
	return q, nil
}

func (m *MemoryRepository) ListQuestions(ctx context.Context, roomID uint) ([]Question, error) {
	defer m.lock()()
	list := make([]Question, 0)
	for _, q := range m.state.questions {
		if q.RoomID == roomID {
			list = append(list, q)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Position != list[j].Position {
			return list[i].Position < list[j].Position
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (m *MemoryRepository) UpdateQuestion(ctx context.Context, id uint, update func(question *Question) error) (Question, error) {
	defer m.lock()()
	q, ok := m.state.questions[id]
	if !ok {
		return Question{}, ErrNotFound
	}
	if err := update(&q); err != nil {
		return Question{}, err
	}
	q.ID = id
	m.state.questions[id] = q
	return q, nil
}

func (m *MemoryRepository) UpsertAnswer(ctx context.Context, answer *Answer) error {
	defer m.lock()()
	now := m.now()
	for key, existing := range m.state.answers {
		if existing.QuestionID == answer.QuestionID && existing.UID == answer.UID {
			existing.ImageData = answer.ImageData
			existing.DisplayName = answer.DisplayName
			existing.UpdatedAt = now
			m.state.answers[key] = existing
			*answer = existing
			return nil
		}
	}
	answer.ID = m.allocID()
	answer.IsCorrect = false
	answer.IsRevealed = false
	answer.CreatedAt = now
	answer.UpdatedAt = now
	m.state.answers[answer.ID] = *answer
	return nil
}

func (m *MemoryRepository) GetAnswer(ctx context.Context, id uint) (Answer, error) {
	defer m.lock()()
	a, ok := m.state.answers[id]
	if !ok {
		return Answer{}, ErrNotFound
	}
	return a, nil
}

func (m *MemoryRepository) ListAnswers(ctx context.Context, roomID, questionID uint) ([]Answer, error) {
	defer m.lock()()
	list := make([]Answer, 0)
	for _, a := range m.state.answers {
		if a.RoomID == roomID && a.QuestionID == questionID {
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *MemoryRepository) UpdateAnswer(ctx context.Context, id uint, update func(answer *Answer) error) (Answer, error) {
	defer m.lock()()
	a, ok := m.state.answers[id]
	if !ok {
		return Answer{}, ErrNotFound
	}
	if err := update(&a); err != nil {
		return Answer{}, err
	}
	a.ID = id
	a.UpdatedAt = m.now()
	m.state.answers[id] = a
	return a, nil
}

func (m *MemoryRepository) CreateGameResult(ctx context.Context, result *GameResult) error {
	defer m.lock()()
	result.ID = m.allocID()
	if result.ClosedAt.IsZero() {
		result.ClosedAt = m.now()
	}
	answers := make([]ResultAnswer, len(result.Answers))
	copy(answers, result.Answers)
	stored := *result
	stored.Answers = answers
	m.state.results[result.ID] = stored
	return nil
}

func (m *MemoryRepository) GetGameResult(ctx context.Context, id uint) (GameResult, error) {
	defer m.lock()()
	r, ok := m.state.results[id]
	if !ok {
		return GameResult{}, ErrNotFound
	}
	return r, nil
}

func (m *MemoryRepository) ListGameResults(ctx context.Context, roomID uint) ([]GameResult, error) {
	defer m.lock()()
	return m.filterResults(func(r GameResult) bool { return r.RoomID == roomID }), nil
}

func (m *MemoryRepository) ListGameResultsByHost(ctx context.Context, hostUID string) ([]GameResult, error) {
	defer m.lock()()
	return m.filterResults(func(r GameResult) bool { return r.HostUID == hostUID }), nil
}

func (m *MemoryRepository) filterResults(keep func(GameResult) bool) []GameResult {
	list := make([]GameResult, 0)
	for _, r := range m.state.results {
		if keep(r) {
			list = append(list, r)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].ClosedAt.Equal(list[j].ClosedAt) {
			return list[i].ClosedAt.Before(list[j].ClosedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func (m *MemoryRepository) GetProfile(ctx context.Context, uid string) (Profile, error) {
	defer m.lock()()
	p, ok := m.state.profiles[uid]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryRepository) SaveProfile(ctx context.Context, profile *Profile) error {
	defer m.lock()()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = m.now()
	}
	m.state.profiles[profile.UID] = *profile
	return nil
}

type memoryBackup struct {
	nextID       uint
	rooms        map[uint]Room
	participants map[uint]Participant
	bans         map[uint]BannedUser
	questions    map[uint]Question
	answers      map[uint]Answer
	results      map[uint]GameResult
	profiles     map[string]Profile
}

func (s *memoryState) clone() memoryBackup {
	return memoryBackup{
		nextID:       s.nextID,
		rooms:        copyMap(s.rooms),
		participants: copyMap(s.participants),
		bans:         copyMap(s.bans),
		questions:    copyMap(s.questions),
		answers:      copyMap(s.answers),
		results:      copyMap(s.results),
		profiles:     copyMap(s.profiles),
	}
}

func (s *memoryState) restore(b memoryBackup) {
	s.nextID = b.nextID
	s.rooms = b.rooms
	s.participants = b.participants
	s.bans = b.bans
	s.questions = b.questions
	s.answers = b.answers
	s.results = b.results
	s.profiles = b.profiles
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
