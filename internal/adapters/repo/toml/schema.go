package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int            `toml:"version"`
	Session *sessionSchema `toml:"session,omitempty"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported session schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type sessionSchema struct {
	CredentialRef string     `toml:"credential_ref"`
	SavedAt       string     `toml:"saved_at"`
	User          userSchema `toml:"user"`
}

type userSchema struct {
	ID        int64  `toml:"id"`
	Name      string `toml:"name"`
	Email     string `toml:"email"`
	CreatedAt string `toml:"created_at,omitempty"`
}
