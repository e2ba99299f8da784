package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Cyclone1070/fincoach/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	convoId   TEXT PRIMARY KEY,
	userId    TEXT NOT NULL,
	startedAt INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	msgId     TEXT PRIMARY KEY,
	convoId   TEXT NOT NULL,
	author    TEXT NOT NULL CHECK(author IN ('user','assistant')),
	content   TEXT NOT NULL,
	ts        INTEGER NOT NULL,
	FOREIGN KEY(convoId) REFERENCES conversations(convoId)
);
CREATE INDEX IF NOT EXISTS idx_msgs_convo ON messages(convoId, ts);

CREATE TABLE IF NOT EXISTS users (
	userId         TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	email          TEXT NOT NULL,
	password       TEXT NOT NULL,
	region         TEXT,
	language       TEXT,
	accessibility  TEXT,
	persona        TEXT
);

CREATE TABLE IF NOT EXISTS goals (
	goalId        TEXT PRIMARY KEY,
	userId        TEXT NOT NULL,
	goal_type     TEXT NOT NULL,
	target_amount REAL,
	deadline      INTEGER,
	progress      REAL,
	FOREIGN KEY(userId) REFERENCES users(userId)
);

CREATE TABLE IF NOT EXISTS badges (
	badgeId      TEXT PRIMARY KEY,
	userId       TEXT NOT NULL,
	badge_name   TEXT NOT NULL,
	date_awarded INTEGER,
	FOREIGN KEY(userId) REFERENCES users(userId)
);
`

// SQLite implements ConversationStore and UserStore over a local database
// file. database/sql serializes access; no additional locking is needed.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) the database at path and
// applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply store schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// StartConversation implements ConversationStore.
func (s *SQLite) StartConversation(ctx context.Context, convoID, userID string, startedAt int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO conversations (convoId, userId, startedAt) VALUES (?, ?, ?)",
		convoID, userID, startedAt)
	return err
}

// AppendMessage implements ConversationStore.
func (s *SQLite) AppendMessage(ctx context.Context, msg Message) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (msgId, convoId, author, content, ts) VALUES (?, ?, ?, ?, ?)",
		msg.ID, msg.ConvoID, msg.Author, msg.Content, msg.TS)
	return err
}

// Conversations implements ConversationStore, newest first.
func (s *SQLite) Conversations(ctx context.Context, userID string) ([]Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT convoId, userId, startedAt FROM conversations WHERE userId = ? ORDER BY startedAt DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convos []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ConvoID, &c.UserID, &c.StartedAt); err != nil {
			return nil, err
		}
		convos = append(convos, c)
	}
	return convos, rows.Err()
}

// Messages implements ConversationStore, oldest first.
func (s *SQLite) Messages(ctx context.Context, convoID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT msgId, convoId, author, content, ts FROM messages WHERE convoId = ? ORDER BY ts ASC",
		convoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConvoID, &m.Author, &m.Content, &m.TS); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Owner implements ConversationStore.
func (s *SQLite) Owner(ctx context.Context, convoID string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx,
		"SELECT userId FROM conversations WHERE convoId = ?", convoID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return userID, err
}

// CreateUser inserts a new user row.
func (s *SQLite) CreateUser(ctx context.Context, userID, name, email, password string, profile domain.UserProfile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (userId, name, email, password, region, language, accessibility, persona)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, name, email, password,
		nullable(profile.Region), nullable(profile.Language),
		nullable(profile.Accessibility), nullable(profile.Persona))
	return err
}

// Profile implements UserStore.
func (s *SQLite) Profile(ctx context.Context, userID string) (domain.UserProfile, error) {
	var (
		profile                                  domain.UserProfile
		region, language, accessibility, persona sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT name, region, language, accessibility, persona FROM users WHERE userId = ?",
		userID).Scan(&profile.Name, &region, &language, &accessibility, &persona)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserProfile{}, ErrNotFound
	}
	if err != nil {
		return domain.UserProfile{}, err
	}

	profile.Region = region.String
	profile.Language = language.String
	profile.Accessibility = accessibility.String
	profile.Persona = persona.String
	return profile, nil
}

// UpdateProfile updates the optional profile fields; empty values leave
// the stored value untouched.
func (s *SQLite) UpdateProfile(ctx context.Context, userID string, profile domain.UserProfile) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users
		 SET region = COALESCE(?, region),
		     language = COALESCE(?, language),
		     accessibility = COALESCE(?, accessibility),
		     persona = COALESCE(?, persona)
		 WHERE userId = ?`,
		nullable(profile.Region), nullable(profile.Language),
		nullable(profile.Accessibility), nullable(profile.Persona), userID)
	return err
}

// CreateGoal inserts a financial goal.
func (s *SQLite) CreateGoal(ctx context.Context, goal Goal) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goals (goalId, userId, goal_type, target_amount, deadline, progress)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		goal.GoalID, goal.UserID, goal.GoalType, goal.TargetAmount, goal.Deadline, goal.Progress)
	return err
}

// Goals lists a user's goals ordered by deadline.
func (s *SQLite) Goals(ctx context.Context, userID string) ([]Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT goalId, userId, goal_type, target_amount, deadline, progress FROM goals WHERE userId = ? ORDER BY deadline ASC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.GoalID, &g.UserID, &g.GoalType, &g.TargetAmount, &g.Deadline, &g.Progress); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// UpdateGoalProgress sets a goal's progress.
func (s *SQLite) UpdateGoalProgress(ctx context.Context, goalID string, progress float64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE goals SET progress = ? WHERE goalId = ?", progress, goalID)
	return err
}

// AwardBadge records an achievement.
func (s *SQLite) AwardBadge(ctx context.Context, badge Badge) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO badges (badgeId, userId, badge_name, date_awarded) VALUES (?, ?, ?, ?)",
		badge.BadgeID, badge.UserID, badge.BadgeName, badge.DateAwarded)
	return err
}

// Badges lists a user's badges, most recent first.
func (s *SQLite) Badges(ctx context.Context, userID string) ([]Badge, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT badgeId, userId, badge_name, date_awarded FROM badges WHERE userId = ? ORDER BY date_awarded DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []Badge
	for rows.Next() {
		var b Badge
		if err := rows.Scan(&b.BadgeID, &b.UserID, &b.BadgeName, &b.DateAwarded); err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// nullable maps "" to NULL so COALESCE-based updates and optional columns
// behave like the original schema expects.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
