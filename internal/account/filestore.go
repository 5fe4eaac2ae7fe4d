package account

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/logging"
)

// DefaultHistoryLimit caps a stored transcript at 100 turns (50 exchange
// pairs).
const DefaultHistoryLimit = 100

// FileStore keeps the whole collection in a single JSON file. Every mutation
// is read-entire-file, modify, write-entire-file. The mutex serializes
// writers within this process; there is no cross-process locking, so the
// single-writer assumption holds only per deployment.
type FileStore struct {
	mu           sync.Mutex
	path         string
	hash         HashFunc
	historyLimit int
	log          logging.Logger
}

func NewFileStore(path string, hash HashFunc, historyLimit int, log logging.Logger) *FileStore {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &FileStore{
		path:         path,
		hash:         hash,
		historyLimit: historyLimit,
		log:          logging.OrNop(log),
	}
}

func (s *FileStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	if err := s.write(collection{Users: []UserRecord{}}); err != nil {
		return err
	}
	s.log.Info(ctx, "initialized empty account store", "path", s.path)
	return nil
}

func (s *FileStore) Exists(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		// Corruption degrades to "not registered"; signup will rebuild.
		s.log.Warn(ctx, "account store unreadable during existence check", "path", s.path, "err", err)
		return false, nil
	}
	return findUser(c.Users, email) >= 0, nil
}

func (s *FileStore) Create(ctx context.Context, in SignupInput) (UserRecord, error) {
	if err := validateSignup(in); err != nil {
		return UserRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		// Matches the source behavior: an unreadable file is replaced by a
		// fresh collection rather than blocking new signups.
		s.log.Error(ctx, "account store unreadable, starting a new collection", "path", s.path, "err", err)
		c = collection{Users: []UserRecord{}}
	}

	if findUser(c.Users, in.Email) >= 0 {
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
	c.Users = append(c.Users, rec)

	if err := s.write(c); err != nil {
		return UserRecord{}, err
	}
	s.log.Info(ctx, "account created", "email", rec.Email)
	return rec, nil
}

func (s *FileStore) FindByCredentials(ctx context.Context, email, secret string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		s.log.Error(ctx, "account store unreadable during login", "path", s.path, "err", err)
		return UserRecord{}, err
	}

	digest := s.hash(secret)
	emailLower := strings.ToLower(email)
	for _, u := range c.Users {
		if strings.ToLower(u.Email) != emailLower {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(u.PasswordHash), []byte(digest)) == 1 {
			return u, nil
		}
		// Do not keep scanning: email is unique, so a digest mismatch here
		// is simply a failed login.
		break
	}
	return UserRecord{}, ErrNotFound
}

func (s *FileStore) SaveChatHistory(ctx context.Context, email string, turns []ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		s.log.Error(ctx, "cannot save chat history", "path", s.path, "err", err)
		return err
	}

	i := findUser(c.Users, email)
	if i < 0 {
		s.log.Warn(ctx, "chat history dropped for unknown user", "email", strings.ToLower(email))
		return nil
	}

	c.Users[i].ChatHistory = truncateHistory(turns, s.historyLimit)
	return s.write(c)
}

func (s *FileStore) Close() error { return nil }

// load reads the whole file. A missing or empty file is an empty collection;
// unparsable content is ErrStorageCorrupt.
func (s *FileStore) load() (collection, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return collection{}, nil
		}
		return collection{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(b) == 0 {
		return collection{}, nil
	}
	var c collection
	if err := json.Unmarshal(b, &c); err != nil {
		return collection{}, fmt.Errorf("%w: %s: %v", ErrStorageCorrupt, s.path, err)
	}
	return c, nil
}

func (s *FileStore) write(c collection) error {
	b, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

func findUser(users []UserRecord, email string) int {
	emailLower := strings.ToLower(email)
	for i, u := range users {
		if strings.ToLower(u.Email) == emailLower {
			return i
		}
	}
	return -1
}

// truncateHistory keeps the most recent limit turns, dropping the oldest.
func truncateHistory(turns []ConversationTurn, limit int) []ConversationTurn {
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]ConversationTurn, len(turns))
	copy(out, turns)
	return out
}
