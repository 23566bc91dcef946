package domain

import (
	"strings"
	"time"
)

type Identity struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
}

// Session is the authenticated state of the client. Credential is the bearer token sent on
// every authenticated request.
type Session struct {
	Credential string
	Identity   Identity
}

func (s Session) Valid() bool {
	return strings.TrimSpace(s.Credential) != ""
}

type Credentials struct {
	Email    string
	Password string
}

type Profile struct {
	Name     string
	Email    string
	Password string
}

// SessionRecord is the persisted form of a session. The credential itself lives in a
// credential store and is referenced by CredentialRef.
type SessionRecord struct {
	Identity      Identity
	CredentialRef string
	SavedAt       time.Time
}
