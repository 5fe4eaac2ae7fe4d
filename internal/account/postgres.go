package account

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/logging"
)

// PostgresStore keeps candidate accounts in PostgreSQL. It implements the
// same contract as FileStore; the transcript is still replaced wholesale on
// save, so last-writer-wins semantics are unchanged.
type PostgresStore struct {
	pool         *pgxpool.Pool
	hash         HashFunc
	historyLimit int
	log          logging.Logger
}

func NewPostgresStore(ctx context.Context, databaseURL string, hash HashFunc, historyLimit int, log logging.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	s := &PostgresStore{
		pool:         pool,
		hash:         hash,
		historyLimit: historyLimit,
		log:          logging.OrNop(log),
	}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS candidates (
			email TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			age INT NOT NULL,
			gender TEXT NOT NULL,
			skills TEXT NOT NULL,
			experience TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			exams TEXT,
			highlights TEXT,
			chat_history JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Initialize(context.Context) error { return nil }

func (s *PostgresStore) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM candidates WHERE email = $1)`,
		strings.ToLower(email),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Create(ctx context.Context, in SignupInput) (UserRecord, error) {
	if err := validateSignup(in); err != nil {
		return UserRecord{}, err
	}

	exists, err := s.Exists(ctx, in.Email)
	if err != nil {
		return UserRecord{}, err
	}
	if exists {
		return UserRecord{}, ErrDuplicateEmail
	}

	rec := UserRecord{
		Name:         in.Name,
		Email:        strings.ToLower(in.Email),
		Age:          in.Age,
		Gender:       in.Gender,
		Skills:       in.Skills,
		Experience:   in.Experience,
		PasswordHash: s.hash(in.Password),
		ChatHistory:  []ConversationTurn{},
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO candidates (email, name, age, gender, skills, experience, password_hash, chat_history)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, '[]'::jsonb)`,
		rec.Email, rec.Name, rec.Age, rec.Gender, rec.Skills, rec.Experience, rec.PasswordHash,
	)
	if err != nil {
		return UserRecord{}, fmt.Errorf("insert candidate: %w", err)
	}
	s.log.Info(ctx, "account created", "email", rec.Email)
	return rec, nil
}

func (s *PostgresStore) FindByCredentials(ctx context.Context, email, secret string) (UserRecord, error) {
	var (
		rec        UserRecord
		historyRaw []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT email, name, age, gender, skills, experience, password_hash, exams, highlights, chat_history
		 FROM candidates WHERE email = $1`,
		strings.ToLower(email),
	).Scan(&rec.Email, &rec.Name, &rec.Age, &rec.Gender, &rec.Skills, &rec.Experience,
		&rec.PasswordHash, &rec.Exams, &rec.Highlights, &historyRaw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrNotFound
		}
		return UserRecord{}, fmt.Errorf("query candidate: %w", err)
	}

	digest := s.hash(secret)
	if subtle.ConstantTimeCompare([]byte(rec.PasswordHash), []byte(digest)) != 1 {
		return UserRecord{}, ErrNotFound
	}

	if len(historyRaw) > 0 {
		if err := json.Unmarshal(historyRaw, &rec.ChatHistory); err != nil {
			return UserRecord{}, fmt.Errorf("%w: chat_history for %s: %v", ErrStorageCorrupt, rec.Email, err)
		}
	}
	return rec, nil
}

func (s *PostgresStore) SaveChatHistory(ctx context.Context, email string, turns []ConversationTurn) error {
	raw, err := json.Marshal(truncateHistory(turns, s.historyLimit))
	if err != nil {
		return fmt.Errorf("encode chat history: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE candidates SET chat_history = $2 WHERE email = $1`,
		strings.ToLower(email), raw,
	)
	if err != nil {
		return fmt.Errorf("save chat history: %w", err)
	}
	if tag.RowsAffected() == 0 {
		s.log.Warn(ctx, "chat history dropped for unknown user", "email", strings.ToLower(email))
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
