// Package memory keeps funnel hits, known chats and broadcast stats in process memory.
package memory

import (
	"slices"
	"sync"
	"time"

	"github.com/dharmaRaavi/real-estate-chatbot/internal/usecase"
)

const maxKeptStats = 100

type Store struct {
	mu       sync.RWMutex
	visitors map[int64]time.Time
	funnel   map[usecase.Stage]map[int64]struct{}
	// newest last
	stats []usecase.BroadcastStat
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		visitors: make(map[int64]time.Time),
		funnel:   make(map[usecase.Stage]map[int64]struct{}),
		now:      time.Now,
	}
}

func (s *Store) SaveUser(chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.visitors[chatID]; !ok {
		s.visitors[chatID] = s.now()
	}
	return nil
}

func (s *Store) ListChatIDs() ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.visitors))
	for id := range s.visitors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *Store) Hit(stage usecase.Stage, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chats, ok := s.funnel[stage]
	if !ok {
		chats = make(map[int64]struct{})
		s.funnel[stage] = chats
	}
	chats[chatID] = struct{}{}
	return nil
}

// Counts returns the number of distinct chats per stage.
func (s *Store) Counts() (map[usecase.Stage]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[usecase.Stage]int, len(s.funnel))
	for stage, chats := range s.funnel {
		out[stage] = len(chats)
	}
	return out, nil
}

func (s *Store) Save(stat usecase.BroadcastStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stat.CreatedAt.IsZero() {
		stat.CreatedAt = s.now()
	}
	s.stats = append(s.stats, stat)
	if extra := len(s.stats) - maxKeptStats; extra > 0 {
		s.stats = slices.Delete(s.stats, 0, extra)
	}
	return nil
}

// ListRecent returns up to n stats, newest first; n <= 0 means all kept stats.
func (s *Store) ListRecent(n int) ([]usecase.BroadcastStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.stats) {
		n = len(s.stats)
	}
	out := slices.Clone(s.stats[len(s.stats)-n:])
	slices.Reverse(out)
	return out, nil
}
