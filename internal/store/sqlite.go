package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/voicebook/voicebook/internal/domain"
)

// SQLiteStore implements Store using SQLite. The default DSN is an
// in-memory database, so conversation state lives and dies with the
// process unless an operator points it at a file.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Shared-cache in-memory DSNs break under connection churn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			conversation_id TEXT PRIMARY KEY,
			state TEXT NOT NULL,
			attendee_name TEXT NOT NULL DEFAULT '',
			event_date TEXT NOT NULL DEFAULT '',
			event_time TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			confirmed INTEGER NOT NULL DEFAULT 0,
			event_id TEXT NOT NULL DEFAULT '',
			confirmation TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS turns (
			turn_id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			tool_payload TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (conversation_id) REFERENCES conversations(conversation_id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns(conversation_id, created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetConversation retrieves a conversation by id, (nil, nil) when absent.
func (s *SQLiteStore) GetConversation(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	var confirmed int
	err := s.db.QueryRowContext(ctx,
		`SELECT conversation_id, state, attendee_name, event_date, event_time, title,
		        confirmed, event_id, confirmation, created_at, updated_at
		 FROM conversations WHERE conversation_id = ?`, conversationID).
		Scan(&conv.ConversationID, &conv.State, &conv.Draft.AttendeeName,
			&conv.Draft.Date, &conv.Draft.Time, &conv.Draft.Title,
			&confirmed, &conv.EventID, &conv.Confirmation,
			&conv.CreatedAt, &conv.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	conv.Draft.Confirmed = confirmed != 0
	return &conv, nil
}

// CreateConversation inserts a new conversation record.
func (s *SQLiteStore) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (conversation_id, state, attendee_name, event_date,
		        event_time, title, confirmed, event_id, confirmation, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		conv.ConversationID, conv.State, conv.Draft.AttendeeName, conv.Draft.Date,
		conv.Draft.Time, conv.Draft.Title, boolToInt(conv.Draft.Confirmed),
		conv.EventID, conv.Confirmation, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

// UpdateConversation persists the current state and draft.
func (s *SQLiteStore) UpdateConversation(ctx context.Context, conv *domain.Conversation) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET state = ?, attendee_name = ?, event_date = ?,
		        event_time = ?, title = ?, confirmed = ?, event_id = ?,
		        confirmation = ?, updated_at = ?
		 WHERE conversation_id = ?`,
		conv.State, conv.Draft.AttendeeName, conv.Draft.Date, conv.Draft.Time,
		conv.Draft.Title, boolToInt(conv.Draft.Confirmed), conv.EventID,
		conv.Confirmation, conv.UpdatedAt, conv.ConversationID)
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conversation not found: %s", conv.ConversationID)
	}
	return nil
}

// DeleteConversation evicts the conversation and, via cascade, its turns.
func (s *SQLiteStore) DeleteConversation(ctx context.Context, conversationID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM conversations WHERE conversation_id = ?`, conversationID)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// AppendTurn records one transcript turn. Turns are never updated.
func (s *SQLiteStore) AppendTurn(ctx context.Context, turn *domain.Turn) error {
	var payload interface{}
	if len(turn.ToolPayload) > 0 {
		payload = string(turn.ToolPayload)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (turn_id, conversation_id, role, content, tool_payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		turn.TurnID, turn.ConversationID, turn.Role, turn.Content, payload, turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return nil
}

// GetTurns returns the oldest turns first, up to limit (0 means all).
func (s *SQLiteStore) GetTurns(ctx context.Context, conversationID string, limit int) ([]domain.Turn, error) {
	query := `SELECT turn_id, conversation_id, role, content, tool_payload, created_at
	          FROM turns WHERE conversation_id = ? ORDER BY created_at ASC`
	args := []interface{}{conversationID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.Turn
	for rows.Next() {
		var turn domain.Turn
		var payload sql.NullString
		if err := rows.Scan(&turn.TurnID, &turn.ConversationID, &turn.Role,
			&turn.Content, &payload, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		if payload.Valid {
			turn.ToolPayload = []byte(payload.String)
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
