// Package session maintains the client-side identity: who is signed in,
// with which credential, persisted across restarts.
package session

import (
	"errors"
	"time"
)

// Subject is the authenticated user as the identity provider reports it.
type Subject struct {
	Email string `json:"email"`
	UID   string `json:"uid"`
}

// Session is the locally cached identity plus its bearer credential.
type Session struct {
	Subject    Subject   `json:"subject"`
	Credential string    `json:"credential"`
	IssuedAt   time.Time `json:"issuedAt"`
}

// State of the session manager.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	}
	return "unauthenticated"
}

var (
	// ErrNoSession means no usable session exists (store empty, signed out).
	ErrNoSession = errors.New("no session")
	// ErrBadCredentials is a rejected sign-in attempt.
	ErrBadCredentials = errors.New("invalid email or password")
	// ErrSignedOut is the provider reporting the session is no longer valid.
	ErrSignedOut = errors.New("signed out")
)
