package storage

import (
	"context"
	"sync"
	"time"

	"github.com/fixotrip/rescue-bot/internal/models"
)

type MemoryStorage struct {
	mu            sync.RWMutex
	conversations map[string]*models.Conversation
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		conversations: make(map[string]*models.Conversation),
	}
}

func (s *MemoryStorage) GetOrCreate(ctx context.Context, sender string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if conv, exists := s.conversations[sender]; exists {
		copied := *conv
		return &copied, nil
	}
	return &models.Conversation{
		Sender: sender,
		State:  models.StateNew,
	}, nil
}

func (s *MemoryStorage) Save(ctx context.Context, conv *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *conv
	s.conversations[conv.Sender] = &copied
	return nil
}

func (s *MemoryStorage) SweepExpired(ctx context.Context, maxAge time.Duration, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-maxAge)
	removed := 0
	for sender, conv := range s.conversations {
		if conv.LastMessageAt.Before(cutoff) {
			delete(s.conversations, sender)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStorage) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.conversations), nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
