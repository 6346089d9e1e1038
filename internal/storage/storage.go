package storage

import (
	"context"
	"time"

	"github.com/fixotrip/rescue-bot/internal/models"
)

// Storage keeps conversation records keyed by sender.
type Storage interface {
	// GetOrCreate returns the conversation for sender. Unknown senders get a
	// fresh record in state "new"; the record is not stored until Save.
	GetOrCreate(ctx context.Context, sender string) (*models.Conversation, error)
	// Save upserts the record under its sender key.
	Save(ctx context.Context, conv *models.Conversation) error
	// SweepExpired removes every conversation whose last message is older
	// than now-maxAge and returns how many were removed.
	SweepExpired(ctx context.Context, maxAge time.Duration, now time.Time) (int, error)
	// Count reports the number of tracked conversations.
	Count(ctx context.Context) (int, error)
	Close() error
}
