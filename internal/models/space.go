package models

// ScopeKind discriminates where a shared task list lives.
type ScopeKind string

const (
	ScopeGroup ScopeKind = "group" // native chat group of the platform
	ScopeSpace ScopeKind = "space" // passphrase-joined space
)

// Scope points at one shared task list.
type Scope struct {
	Kind ScopeKind `json:"kind"`
	ID   string    `json:"id"`
}

func (s Scope) IsZero() bool {
	return s.Kind == "" || s.ID == ""
}

// Space is a passphrase-joined shared scope, independent of the
// platform's native group construct. Only the bcrypt hash of the
// passphrase is stored.
type Space struct {
	Key            string   `json:"key"`
	Name           string   `json:"name"`
	PassphraseHash string   `json:"passphrase_hash"`
	Members        []string `json:"members"`
}

func (s *Space) HasMember(uid string) bool {
	for _, id := range s.Members {
		if id == uid {
			return true
		}
	}
	return false
}

// Membership records which spaces a user joined and which one is active.
type Membership struct {
	Joined []string `json:"joined"`
	Active string   `json:"active,omitempty"`
}
