// Package account owns the persisted candidate records: the flat-file user
// store, signup validation, and chat-history persistence.
package account

import (
	"context"
	"errors"
	"fmt"
)

// Conversation roles as stored and as sent to the completion provider.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Experience levels offered at signup.
const (
	ExperienceFresher     = "Fresher"
	ExperienceExperienced = "Experienced"
)

// ConversationTurn is one message of a screening transcript. Ordering is
// positional within the containing slice; there are no IDs or timestamps.
type ConversationTurn struct {
	Role  string   `json:"role"`
	Parts []string `json:"parts"`
}

// UserRecord is one candidate account. Email (lower-cased) is the only
// identity key. The JSON field names match the on-disk layout of the
// original data file, including "password" holding the digest.
type UserRecord struct {
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	Age          int                `json:"age"`
	Gender       string             `json:"gender"`
	Skills       string             `json:"skills"`
	Experience   string             `json:"experience"`
	PasswordHash string             `json:"password"`
	Exams        *string            `json:"exams"`
	Highlights   *string            `json:"highlights"`
	ChatHistory  []ConversationTurn `json:"chat_history"`
}

// Redacted returns a copy of the record safe to return to API callers.
func (u UserRecord) Redacted() UserRecord {
	c := u
	c.PasswordHash = ""
	return c
}

// collection is the whole persisted store: the durability unit is the file.
type collection struct {
	Users []UserRecord `json:"users"`
}

// SignupInput carries the raw signup form fields before validation.
type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Age             int    `json:"age"`
	Gender          string `json:"gender"`
	Skills          string `json:"skills"`
	Experience      string `json:"experience"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// HashFunc turns a plaintext secret into its stored digest.
type HashFunc func(secret string) string

var (
	// ErrDuplicateEmail rejects a signup for an already registered email.
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrNotFound covers both unknown emails and bad credentials so callers
	// can surface a single undifferentiated failure.
	ErrNotFound = errors.New("user not found")

	// ErrStorageCorrupt marks an unparsable backing file. Never fatal: the
	// operation is aborted and the process keeps running.
	ErrStorageCorrupt = errors.New("user data file is corrupted")
)

// ValidationError reports the first rejected signup field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Store is the persistence boundary for candidate accounts. The file-backed
// implementation is the default; a postgres one exists for deployments that
// already run a database.
type Store interface {
	// Initialize creates an empty collection when none exists. It is
	// idempotent and never overwrites existing data.
	Initialize(ctx context.Context) error

	// Exists reports whether an account with the given email is registered.
	// The comparison is case-insensitive. A missing, empty, or unreadable
	// backing store yields false, not an error.
	Exists(ctx context.Context, email string) (bool, error)

	// Create validates the input, appends a new record with a freshly
	// computed password digest, lower-cased email, and empty chat history,
	// and returns the stored record.
	Create(ctx context.Context, in SignupInput) (UserRecord, error)

	// FindByCredentials returns the record matching email (case-insensitive)
	// and secret, or ErrNotFound.
	FindByCredentials(ctx context.Context, email, secret string) (UserRecord, error)

	// SaveChatHistory replaces the user's stored transcript wholesale,
	// keeping only the most recent turns. An unknown email is a logged
	// no-op. Last writer wins; there is no merge.
	SaveChatHistory(ctx context.Context, email string, turns []ConversationTurn) error

	Close() error
}
