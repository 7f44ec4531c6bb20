package scores

import (
	"fmt"
	"regexp"
)

const maxIDLength = 64

var idPattern = regexp.MustCompile(`^[A-Za-z0-9.-]+$`)

// ScopeKey identifies one independent leaderboard.
type ScopeKey struct {
	Version string
	Level   string
}

// NewScopeKey validates both identifiers and returns the key.
func NewScopeKey(version, level string) (ScopeKey, error) {
	if err := validateID("version", version); err != nil {
		return ScopeKey{}, err
	}

	if err := validateID("level", level); err != nil {
		return ScopeKey{}, err
	}

	return ScopeKey{Version: version, Level: level}, nil
}

// Validate checks a key built without NewScopeKey.
func (k ScopeKey) Validate() error {
	_, err := NewScopeKey(k.Version, k.Level)
	return err
}

// Name maps the key onto a storage address under the given base:
// <base>_<version>_<level>.
func (k ScopeKey) Name(base string) string {
	return base + "_" + k.Version + "_" + k.Level
}

func (k ScopeKey) String() string {
	return fmt.Sprintf("version=%s level=%s", k.Version, k.Level)
}

// Identifiers end up in file names and storage keys, so separators and
// traversal sequences are rejected rather than escaped. '_' joins the parts
// of a name and is not allowed inside them.
func validateID(field, id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: %s is required", ErrInvalidArgument, field)
	case len(id) > maxIDLength:
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidArgument, field, maxIDLength)
	case id == "." || id == "..":
		return fmt.Errorf("%w: %s %q is reserved", ErrInvalidArgument, field, id)
	case !idPattern.MatchString(id):
		return fmt.Errorf("%w: %s may only contain letters, digits, '.' and '-'", ErrInvalidArgument, field)
	}

	return nil
}
