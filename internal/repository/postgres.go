package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Nechnud/chat-app/internal/models"
)

// PostgresStore implements Store on a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection pool and verifies it with a ping.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateUser(ctx context.Context, username, passwordHash, role string) (*models.User, error) {
	const query = `
		INSERT INTO users (username, user_password, user_role)
		VALUES ($1, $2, $3)
		RETURNING id`

	var u models.User
	u.Username = username
	if err := s.db.QueryRowContext(ctx, query, username, passwordHash, role).Scan(&u.ID); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) GetCredentials(ctx context.Context, username string) (*Credential, error) {
	const query = `
		SELECT id, username, user_role, user_password
		FROM users
		WHERE username = $1`

	var c Credential
	err := s.db.QueryRowContext(ctx, query, username).
		Scan(&c.ID, &c.Username, &c.Role, &c.PasswordHash)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context, excludeID int64, limit int) ([]models.User, error) {
	const query = `
		SELECT id, username
		FROM users
		WHERE id != $1
		AND user_role = 'user'
		ORDER BY username ASC
		LIMIT $2`

	return s.queryUsers(ctx, query, excludeID, limit)
}

func (s *PostgresStore) SearchUsers(ctx context.Context, excludeID int64, search string) ([]models.User, error) {
	const query = `
		SELECT id, username
		FROM users
		WHERE id != $1
		AND user_role = 'user'
		AND username LIKE $2
		ORDER BY username ASC`

	return s.queryUsers(ctx, query, excludeID, "%"+search+"%")
}

func (s *PostgresStore) queryUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateChat inserts the chat together with an accepted membership row for
// the creator, so the eligibility check stays uniform for every sender.
func (s *PostgresStore) CreateChat(ctx context.Context, createdBy int64, subject string) (*models.Chat, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const insertChat = `
		INSERT INTO chats (created_by, chat_subject)
		VALUES ($1, $2)
		RETURNING id`

	chat := models.Chat{CreatedBy: createdBy, Subject: subject}
	if err := tx.QueryRowContext(ctx, insertChat, createdBy, subject).Scan(&chat.ID); err != nil {
		return nil, err
	}

	const insertMember = `
		INSERT INTO chat_users (chat_id, user_id, invitation_accepted)
		VALUES ($1, $2, true)`

	if _, err := tx.ExecContext(ctx, insertMember, chat.ID, createdBy); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &chat, nil
}

const chatSummarySelect = `
	SELECT c.id, c.created_by, c.chat_subject,
		last.last_message_timestamp,
		own.user_latest_message_timestamp`

func (s *PostgresStore) ListChats(ctx context.Context, userID int64) ([]models.ChatSummary, error) {
	query := chatSummarySelect + `
		FROM chats c
		JOIN chat_users cu ON cu.chat_id = c.id
		LEFT JOIN (
			SELECT chat_id, MAX(message_timestamp) AS last_message_timestamp
			FROM messages
			GROUP BY chat_id
		) last ON last.chat_id = c.id
		LEFT JOIN (
			SELECT chat_id, MAX(message_timestamp) AS user_latest_message_timestamp
			FROM messages
			WHERE from_id = $1
			GROUP BY chat_id
		) own ON own.chat_id = c.id
		WHERE cu.user_id = $1
		AND cu.invitation_accepted = true`

	return s.queryChatSummaries(ctx, query, userID)
}

func (s *PostgresStore) ListAllChats(ctx context.Context, userID int64) ([]models.ChatSummary, error) {
	query := chatSummarySelect + `
		FROM chats c
		LEFT JOIN (
			SELECT chat_id, MAX(message_timestamp) AS last_message_timestamp
			FROM messages
			GROUP BY chat_id
		) last ON last.chat_id = c.id
		LEFT JOIN (
			SELECT chat_id, MAX(message_timestamp) AS user_latest_message_timestamp
			FROM messages
			WHERE from_id = $1
			GROUP BY chat_id
		) own ON own.chat_id = c.id`

	return s.queryChatSummaries(ctx, query, userID)
}

func (s *PostgresStore) queryChatSummaries(ctx context.Context, query string, args ...any) ([]models.ChatSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []models.ChatSummary
	for rows.Next() {
		var (
			c         models.ChatSummary
			last, own sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.CreatedBy, &c.Subject, &last, &own); err != nil {
			return nil, err
		}
		if last.Valid {
			c.LastMessageAt = &last.Time
		}
		if own.Valid {
			c.OwnLastMessageAt = &own.Time
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

func (s *PostgresStore) ListInvitableUsers(ctx context.Context, chatID, excludeID int64, limit int) ([]models.User, error) {
	const query = `
		SELECT id, username
		FROM users
		WHERE id != $1
		AND user_role = 'user'
		AND id NOT IN (
			SELECT user_id
			FROM chat_users
			WHERE chat_id = $2
		)
		LIMIT $3`

	return s.queryUsers(ctx, query, excludeID, chatID, limit)
}

// InviteUser adds a membership row iff the inviter created the chat and no
// row exists yet for that user.
func (s *PostgresStore) InviteUser(ctx context.Context, chatID, userID, inviterID int64) error {
	const query = `
		INSERT INTO chat_users (chat_id, user_id)
		SELECT $1, $2
		WHERE NOT EXISTS (
			SELECT 1
			FROM chat_users
			WHERE chat_id = $1
			AND user_id = $2
		)
		AND EXISTS (
			SELECT 1
			FROM chats
			WHERE id = $1
			AND created_by = $3
		)`

	_, err := s.db.ExecContext(ctx, query, chatID, userID, inviterID)
	return err
}

func (s *PostgresStore) ListChatMembers(ctx context.Context, chatID, excludeID int64) ([]models.ChatMember, error) {
	const query = `
		SELECT u.id, u.username, cu.banned
		FROM users u
		JOIN chat_users cu ON cu.user_id = u.id
		WHERE cu.chat_id = $1
		AND u.id != $2`

	rows, err := s.db.QueryContext(ctx, query, chatID, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.ChatMember
	for rows.Next() {
		var m models.ChatMember
		if err := rows.Scan(&m.ID, &m.Username, &m.Banned); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *PostgresStore) ListInvites(ctx context.Context, userID int64) ([]models.Chat, error) {
	const query = `
		SELECT c.id, c.created_by, c.chat_subject
		FROM chats c
		JOIN chat_users cu ON cu.chat_id = c.id
		WHERE cu.user_id = $1
		AND cu.invitation_accepted = false`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		var c models.Chat
		if err := rows.Scan(&c.ID, &c.CreatedBy, &c.Subject); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

func (s *PostgresStore) AcceptInvite(ctx context.Context, chatID, userID int64) error {
	const query = `
		UPDATE chat_users
		SET invitation_accepted = true
		WHERE chat_id = $1
		AND user_id = $2`

	_, err := s.db.ExecContext(ctx, query, chatID, userID)
	return err
}

// ToggleBan flips the ban flag. Without the superadmin override the update
// only applies when byID created the chat. Reports whether a row changed.
func (s *PostgresStore) ToggleBan(ctx context.Context, chatID, userID, byID int64, superadmin bool) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if superadmin {
		const query = `
			UPDATE chat_users
			SET banned = NOT banned
			WHERE chat_id = $1
			AND user_id = $2`
		res, err = s.db.ExecContext(ctx, query, chatID, userID)
	} else {
		const query = `
			UPDATE chat_users
			SET banned = NOT banned
			WHERE chat_id = $1
			AND user_id = $2
			AND EXISTS (
				SELECT 1
				FROM chats
				WHERE id = $1
				AND created_by = $3
			)`
		res, err = s.db.ExecContext(ctx, query, chatID, userID, byID)
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// IsActiveMember reports whether the user holds a non-banned membership row
// for the chat. Superadmin bypass is decided by the caller, never here.
func (s *PostgresStore) IsActiveMember(ctx context.Context, chatID, userID int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM chat_users
			WHERE chat_id = $1
			AND user_id = $2
			AND banned != true
		)`

	var ok bool
	if err := s.db.QueryRowContext(ctx, query, chatID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (s *PostgresStore) IsSuperadmin(ctx context.Context, userID int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM users
			WHERE id = $1
			AND user_role = 'superadmin'
		)`

	var ok bool
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (s *PostgresStore) InsertMessage(ctx context.Context, chatID, fromID int64, content string, ts time.Time) (int64, error) {
	const query = `
		INSERT INTO messages (chat_id, from_id, content, message_timestamp)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id int64
	if err := s.db.QueryRowContext(ctx, query, chatID, fromID, content, ts).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, chatID int64) ([]models.Message, error) {
	const query = `
		SELECT m.id, m.chat_id, m.from_id, u.username, m.content, m.message_timestamp
		FROM messages m
		JOIN users u ON u.id = m.from_id
		WHERE m.chat_id = $1
		ORDER BY m.message_timestamp ASC`

	rows, err := s.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.FromID, &m.From, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *PostgresStore) DeleteMessage(ctx context.Context, id int64) error {
	const query = `
		DELETE FROM messages
		WHERE id = $1`

	_, err := s.db.ExecContext(ctx, query, id)
	return err
}
