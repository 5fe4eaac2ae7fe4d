package auth

import (
	"context"
	"errors"

	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/account"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/logging"
)

// ErrInvalidCredentials is the only failure a login ever reports. Whether the
// email is unregistered, the password is wrong, or the backing store is
// unreadable must not be distinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Authenticator verifies credentials against the account store.
type Authenticator struct {
	store account.Store
	log   logging.Logger
}

func NewAuthenticator(store account.Store, log logging.Logger) *Authenticator {
	return &Authenticator{store: store, log: logging.OrNop(log)}
}

// Login returns the full matching record on success. Every failure collapses
// to ErrInvalidCredentials; storage trouble is logged but not surfaced.
func (a *Authenticator) Login(ctx context.Context, email, password string) (account.UserRecord, error) {
	rec, err := a.store.FindByCredentials(ctx, email, password)
	if err != nil {
		if !errors.Is(err, account.ErrNotFound) {
			a.log.Error(ctx, "login lookup failed", "err", err)
		}
		return account.UserRecord{}, ErrInvalidCredentials
	}
	return rec, nil
}
