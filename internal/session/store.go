package session

import (
	"errors"
	"sync"
	"time"

	"routinebot/internal/models"
)

// State состояние сессии чата
type State int

const (
	Idle State = iota
	Pending
	Confirmed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Cancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

var (
	// ErrAlreadyPending у чата уже есть рутина, ожидающая подтверждения
	ErrAlreadyPending = errors.New("ya hay una rutina pendiente")
	// ErrNoPending у чата нет рутины для подтверждения
	ErrNoPending = errors.New("no hay ninguna rutina pendiente")
)

// entry ожидающая рутина чата
type entry struct {
	days    models.RoutineSet
	created time.Time
}

// keyLock мьютекс чата со счётчиком ссылок
type keyLock struct {
	mu   sync.Mutex
	refs int
}

// Store сессии чатов в памяти процесса.
// Lock сериализует обновления одного чата; методы состояния потокобезопасны сами по себе.
type Store struct {
	mu      sync.RWMutex
	pending map[int64]entry

	locksMu sync.Mutex
	locks   map[int64]*keyLock

	now func() time.Time
}

// NewStore создаёт пустое хранилище
func NewStore() *Store {
	return &Store{
		pending: make(map[int64]entry),
		locks:   make(map[int64]*keyLock),
		now:     time.Now,
	}
}

// SetClock подменяет источник времени (для тестов)
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Lock захватывает мьютекс чата и возвращает функцию освобождения
func (s *Store) Lock(chatID int64) (unlock func()) {
	s.locksMu.Lock()
	l, ok := s.locks[chatID]
	if !ok {
		l = &keyLock{}
		s.locks[chatID] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			s.locksMu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(s.locks, chatID)
			}
			s.locksMu.Unlock()
		})
	}
}

// State текущее состояние чата: Pending или Idle
func (s *Store) State(chatID int64) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.pending[chatID]; ok {
		return Pending
	}
	return Idle
}

// Begin сохраняет копию рутины как ожидающую подтверждения
func (s *Store) Begin(chatID int64, days models.RoutineSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[chatID]; ok {
		return ErrAlreadyPending
	}
	s.pending[chatID] = entry{days: days.Clone(), created: s.now()}
	return nil
}

// Peek копия ожидающей рутины без изменения состояния
func (s *Store) Peek(chatID int64) (models.RoutineSet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.pending[chatID]
	if !ok {
		return nil, false
	}
	return e.days.Clone(), true
}

// Confirm забирает ожидающую рутину; чат возвращается в Idle
func (s *Store) Confirm(chatID int64) (models.RoutineSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.pending[chatID]
	if !ok {
		return nil, ErrNoPending
	}
	delete(s.pending, chatID)
	return e.days, nil
}

// Cancel отбрасывает ожидающую рутину; false, если её не было
func (s *Store) Cancel(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[chatID]
	delete(s.pending, chatID)
	return ok
}

// Sweep удаляет рутины старше olderThan и возвращает их количество
func (s *Store) Sweep(olderThan time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-olderThan)
	removed := 0
	for id, e := range s.pending {
		if e.created.Before(cutoff) {
			delete(s.pending, id)
			removed++
		}
	}
	return removed
}

// Len количество ожидающих рутин
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}
