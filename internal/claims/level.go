package claims

import "fmt"

// AccessLevel is an ordered tier parsed from a claim value.
type AccessLevel int

// Access levels, lowest first. The order is significant: comparisons between
// levels use the underlying integer value.
const (
	None AccessLevel = iota
	UserBasic
	UserExtended
	Admin
	Owner
)

var levelNames = [...]string{
	None:         "NONE",
	UserBasic:    "USER_BASIC",
	UserExtended: "USER_EXTENDED",
	Admin:        "ADMIN",
	Owner:        "OWNER",
}

// ParseAccessLevel parses the canonical name of an access level.
// Anything else, including numeric strings and different casing, reports false.
func ParseAccessLevel(s string) (AccessLevel, bool) {
	for level, name := range levelNames {
		if name == s {
			return AccessLevel(level), true
		}
	}
	return None, false
}

// String returns the canonical name used in claim values.
func (l AccessLevel) String() string {
	if l < None || int(l) >= len(levelNames) {
		return fmt.Sprintf("AccessLevel(%d)", int(l))
	}
	return levelNames[l]
}

// Valid reports whether l is one of the declared levels.
func (l AccessLevel) Valid() bool {
	return l >= None && int(l) < len(levelNames)
}

// MarshalText encodes the level as its canonical name.
func (l AccessLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid access level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText decodes a canonical level name.
func (l *AccessLevel) UnmarshalText(text []byte) error {
	level, ok := ParseAccessLevel(string(text))
	if !ok {
		return fmt.Errorf("unknown access level %q", string(text))
	}
	*l = level
	return nil
}
