package config

import "fmt"

// Category names a program family that can be suppressed during startup
// replay. Values serialize in kebab-case.
type Category int

const (
	// CategoryNone marks handlers that are never suppressed.
	CategoryNone Category = iota
	// CategoryMetadata is the token metadata program family.
	CategoryMetadata
	// CategoryCandyMachine is the candy machine program family.
	CategoryCandyMachine
	// CategoryTokens is the SPL token program family.
	CategoryTokens
)

var categoryNames = map[Category]string{
	CategoryMetadata:     "metadata",
	CategoryCandyMachine: "candy-machine",
	CategoryTokens:       "tokens",
}

// String returns the kebab-case name, or "none".
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "none"
}

// ParseCategory parses a kebab-case category name.
func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if name == s {
			return c, nil
		}
	}
	return CategoryNone, fmt.Errorf("unknown ignore category %q", s)
}

// IgnoreSet is the set of categories suppressed for startup-replay
// account updates. It is built once at boot and read-only afterwards,
// so it is safe to share across concurrent message handlers.
type IgnoreSet struct {
	set map[Category]struct{}
}

// NewIgnoreSet builds an IgnoreSet from categories.
func NewIgnoreSet(cats ...Category) *IgnoreSet {
	set := make(map[Category]struct{}, len(cats))
	for _, c := range cats {
		if c != CategoryNone {
			set[c] = struct{}{}
		}
	}
	return &IgnoreSet{set: set}
}

// ParseIgnoreSet builds an IgnoreSet from kebab-case names.
func ParseIgnoreSet(names []string) (*IgnoreSet, error) {
	cats := make([]Category, 0, len(names))
	for _, name := range names {
		c, err := ParseCategory(name)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return NewIgnoreSet(cats...), nil
}

// Contains reports whether the category is suppressed.
func (s *IgnoreSet) Contains(c Category) bool {
	if s == nil || c == CategoryNone {
		return false
	}
	_, ok := s.set[c]
	return ok
}

// Names returns the kebab-case names in the set, for logging.
func (s *IgnoreSet) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.set))
	for c := range s.set {
		names = append(names, c.String())
	}
	return names
}
