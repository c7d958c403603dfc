// Package store backs the service with a single SQLite database: user
// profiles, bearer tokens, the per-day quota ledger and the usage log.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var (
	ErrTokenUnknown = errors.New("unknown token")
	ErrUserUnknown  = errors.New("unknown user")
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	premium    INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS tokens (
	token      TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id),
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS ai_usage (
	user_id    TEXT NOT NULL,
	day        TEXT NOT NULL,
	used       INTEGER NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (user_id, day)
);
CREATE TABLE IF NOT EXISTS ai_usage_log (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id           TEXT NOT NULL,
	feature           TEXT NOT NULL,
	model             TEXT NOT NULL,
	prompt_chars      INTEGER NOT NULL,
	context_chars     INTEGER NOT NULL,
	prompt_tokens     INTEGER NOT NULL,
	completion_tokens INTEGER NOT NULL,
	created_at        TIMESTAMP NOT NULL
);
`

// Store wraps the database handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. A single connection serializes writers, which the quota ledger
// relies on.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Day formats a timestamp as the ledger's calendar-day key (UTC).
func Day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// User is the profile the service reads; premium drives quota and model
// class.
type User struct {
	ID        string
	Email     string
	Premium   bool
	CreatedAt time.Time
}

// CreateUser registers a user and issues a bearer token for it.
func (s *Store) CreateUser(ctx context.Context, email string, premium bool) (User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, "", errors.New("valid email required")
	}
	u := User{
		ID:        uuid.NewString(),
		Email:     email,
		Premium:   premium,
		CreatedAt: time.Now().UTC(),
	}
	token := uuid.NewString()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, "", err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, email, premium, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, boolInt(u.Premium), u.CreatedAt); err != nil {
		return User{}, "", fmt.Errorf("insert user: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO tokens (token, user_id, created_at) VALUES (?, ?, ?)`,
		token, u.ID, u.CreatedAt); err != nil {
		return User{}, "", fmt.Errorf("insert token: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return User{}, "", err
	}
	return u, token, nil
}

// UserByToken resolves a bearer token to its user profile.
func (s *Store) UserByToken(ctx context.Context, token string) (User, error) {
	var (
		u       User
		premium int
	)
	err := s.db.QueryRowContext(ctx, `
SELECT u.id, u.email, u.premium, u.created_at
FROM tokens t JOIN users u ON u.id = t.user_id
WHERE t.token = ?`, token).Scan(&u.ID, &u.Email, &premium, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrTokenUnknown
	}
	if err != nil {
		return User{}, err
	}
	u.Premium = premium != 0
	return u, nil
}

// SetPremium flips the premium flag of an existing user.
func (s *Store) SetPremium(ctx context.Context, userID string, premium bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET premium = ? WHERE id = ?`, boolInt(premium), userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserUnknown
	}
	return nil
}

// Admission is the outcome of one quota check.
type Admission struct {
	Allowed bool
	Used    int
}

// TryAdmit atomically admits one request against the (user, day) ledger row.
// The increment and the limit check happen in a single guarded upsert, so
// concurrent calls can never both be admitted past the limit. A denied call
// reports the current count without changing it.
func (s *Store) TryAdmit(ctx context.Context, userID, day string, limit int) (Admission, error) {
	if limit <= 0 {
		used, err := s.usedOn(ctx, userID, day)
		if err != nil {
			return Admission{}, err
		}
		return Admission{Allowed: false, Used: used}, nil
	}

	var used int
	err := s.db.QueryRowContext(ctx, `
INSERT INTO ai_usage (user_id, day, used, updated_at) VALUES (?, ?, 1, ?)
ON CONFLICT (user_id, day) DO UPDATE
	SET used = used + 1, updated_at = excluded.updated_at
	WHERE ai_usage.used < ?
RETURNING used`, userID, day, time.Now().UTC(), limit).Scan(&used)
	if errors.Is(err, sql.ErrNoRows) {
		cur, err := s.usedOn(ctx, userID, day)
		if err != nil {
			return Admission{}, err
		}
		return Admission{Allowed: false, Used: cur}, nil
	}
	if err != nil {
		return Admission{}, fmt.Errorf("admit transaction: %w", err)
	}
	return Admission{Allowed: true, Used: used}, nil
}

func (s *Store) usedOn(ctx context.Context, userID, day string) (int, error) {
	var used int
	err := s.db.QueryRowContext(ctx,
		`SELECT used FROM ai_usage WHERE user_id = ? AND day = ?`, userID, day).Scan(&used)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return used, err
}

// UsageEntry is one line of the append-only usage log.
type UsageEntry struct {
	UserID           string
	Feature          string
	Model            string
	PromptChars      int
	ContextChars     int
	PromptTokens     int64
	CompletionTokens int64
}

// AppendUsage records one model call for usage transparency. Callers treat
// it as best-effort.
func (s *Store) AppendUsage(ctx context.Context, e UsageEntry) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO ai_usage_log
	(user_id, feature, model, prompt_chars, context_chars, prompt_tokens, completion_tokens, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Feature, e.Model, e.PromptChars, e.ContextChars,
		e.PromptTokens, e.CompletionTokens, time.Now().UTC())
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
