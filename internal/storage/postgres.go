package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/fixotrip/rescue-bot/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	return nil
}

func (s *PostgresStorage) GetOrCreate(ctx context.Context, sender string) (*models.Conversation, error) {
	query := `
		SELECT sender, state, category, message_count, last_message_at
		FROM conversations
		WHERE sender = $1`

	conv := &models.Conversation{}
	err := s.db.QueryRowContext(ctx, query, sender).Scan(
		&conv.Sender,
		&conv.State,
		&conv.Category,
		&conv.MessageCount,
		&conv.LastMessageAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.Conversation{
			Sender: sender,
			State:  models.StateNew,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying conversation: %w", err)
	}

	return conv, nil
}

func (s *PostgresStorage) Save(ctx context.Context, conv *models.Conversation) error {
	query := `
		INSERT INTO conversations (sender, state, category, message_count, last_message_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sender) DO UPDATE
		SET state = EXCLUDED.state,
		    category = EXCLUDED.category,
		    message_count = EXCLUDED.message_count,
		    last_message_at = EXCLUDED.last_message_at`

	if _, err := s.db.ExecContext(ctx, query,
		conv.Sender,
		conv.State,
		conv.Category,
		conv.MessageCount,
		conv.LastMessageAt,
	); err != nil {
		return fmt.Errorf("error saving conversation: %w", err)
	}

	return nil
}

func (s *PostgresStorage) SweepExpired(ctx context.Context, maxAge time.Duration, now time.Time) (int, error) {
	query := `DELETE FROM conversations WHERE last_message_at < $1`

	result, err := s.db.ExecContext(ctx, query, now.Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("error sweeping conversations: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error getting rows affected: %w", err)
	}

	return int(removed), nil
}

func (s *PostgresStorage) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM conversations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting conversations: %w", err)
	}
	return count, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
