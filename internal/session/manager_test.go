package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/account"
)

func testUser() account.UserRecord {
	return account.UserRecord{
		Name:         "Asha Rao",
		Email:        "asha@example.com",
		PasswordHash: "should-never-leak",
		ChatHistory: []account.ConversationTurn{
			{Role: account.RoleUser, Parts: []string{"hello"}},
			{Role: account.RoleModel, Parts: []string{"hi there"}},
		},
	}
}

func TestManagerCreateGetEnd(t *testing.T) {
	m := NewManager(time.Minute)
	s := m.Create(testUser())
	if s.ID == "" {
		t.Fatalf("session ID should not be empty")
	}
	if s.User.PasswordHash != "" {
		t.Fatalf("session carries the password digest")
	}
	if s.User.ChatHistory != nil {
		t.Fatalf("session user should not duplicate the transcript")
	}
	if len(s.Transcript) != 2 {
		t.Fatalf("transcript seeded with %d turns, want 2", len(s.Transcript))
	}

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Email() != "asha@example.com" || got.Status != StatusActive {
		t.Fatalf("unexpected session state: %+v", got)
	}

	ended, err := m.End(s.ID)
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if ended.Status != StatusEnded {
		t.Fatalf("ended status = %q, want %q", ended.Status, StatusEnded)
	}
	if _, err := m.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() after End() error = %v, want ErrNotFound", err)
	}
}

func TestManagerOneSessionPerEmail(t *testing.T) {
	m := NewManager(time.Minute)
	first := m.Create(testUser())
	second := m.Create(testUser())

	if _, err := m.Get(first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("first session still live after re-login")
	}
	if _, err := m.Get(second.ID); err != nil {
		t.Fatalf("Get(second) error = %v", err)
	}
	if m.ActiveCount() != 1 {
		t.Fatalf("ActiveCount() = %d, want 1", m.ActiveCount())
	}
}

func TestManagerEndHookFiresOnceWithTranscript(t *testing.T) {
	m := NewManager(time.Minute)
	var calls []*Session
	m.SetEndHook(func(s *Session) { calls = append(calls, s) })

	s := m.Create(testUser())
	turns := append(s.Transcript, account.ConversationTurn{Role: account.RoleUser, Parts: []string{"bye"}})
	if err := m.SetTranscript(s.ID, turns); err != nil {
		t.Fatalf("SetTranscript() error = %v", err)
	}

	if _, err := m.End(s.ID); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if _, err := m.End(s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second End() error = %v, want ErrNotFound", err)
	}

	if len(calls) != 1 {
		t.Fatalf("end hook fired %d times, want 1", len(calls))
	}
	if len(calls[0].Transcript) != 3 {
		t.Fatalf("hook transcript has %d turns, want 3", len(calls[0].Transcript))
	}
}

func TestManagerTranscriptValueSemantics(t *testing.T) {
	m := NewManager(time.Minute)
	s := m.Create(testUser())

	turns, err := m.Transcript(s.ID)
	if err != nil {
		t.Fatalf("Transcript() error = %v", err)
	}
	turns[0].Parts = []string{"mutated"}

	again, err := m.Transcript(s.ID)
	if err != nil {
		t.Fatalf("Transcript() error = %v", err)
	}
	if again[0].Parts[0] != "hello" {
		t.Fatalf("caller mutation leaked into the session: %q", again[0].Parts[0])
	}
}

func TestManagerJanitorExpiresInactive(t *testing.T) {
	m := NewManager(30 * time.Millisecond)
	var expired []*Session
	done := make(chan struct{})
	m.SetEndHook(func(s *Session) {
		expired = append(expired, s)
		close(done)
	})
	s := m.Create(testUser())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartJanitor(ctx, 10*time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("janitor never expired the session")
	}

	if _, err := m.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() after expiry error = %v, want ErrNotFound", err)
	}
	if len(expired) != 1 || expired[0].Status != StatusEnded {
		t.Fatalf("expiry hook saw %+v", expired)
	}
	if len(expired[0].Transcript) != 2 {
		t.Fatalf("expiry hook lost the transcript: %d turns", len(expired[0].Transcript))
	}
}

func TestManagerTouchDelaysExpiry(t *testing.T) {
	m := NewManager(time.Minute)
	s := m.Create(testUser())

	before, _ := m.Get(s.ID)
	time.Sleep(5 * time.Millisecond)
	if err := m.Touch(s.ID); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	after, _ := m.Get(s.ID)
	if !after.LastActivityAt.After(before.LastActivityAt) {
		t.Fatalf("Touch() did not advance LastActivityAt")
	}
}
