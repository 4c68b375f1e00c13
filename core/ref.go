package core

import (
	"fmt"
	"strings"
	"unicode"
)

// Ref is a module-scoped identifier for a game mechanic (an ability,
// a condition, a GM move template). It's the toolkit pattern for
// avoiding magic strings while staying JSON-friendly: "module:type:value".
type Ref struct {
	Module string `json:"module"`
	Type   string `json:"type"`
	Value  string `json:"value"`
}

// String renders the canonical "module:type:value" form.
func (r *Ref) String() string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("%s:%s:%s", r.Module, r.Type, r.Value)
}

// Equals compares two refs field by field.
func (r *Ref) Equals(other *Ref) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Module == other.Module && r.Type == other.Type && r.Value == other.Value
}

// NewRef validates and constructs a Ref.
func NewRef(module, typ, value string) (*Ref, error) {
	r := &Ref{Module: module, Type: typ, Value: value}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// MustRef panics on an invalid ref; use only for compile-time constants.
func MustRef(module, typ, value string) *Ref {
	r, err := NewRef(module, typ, value)
	if err != nil {
		panic(err)
	}
	return r
}

// ParseRef parses the "module:type:value" string form.
func ParseRef(s string) (*Ref, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("core: ref %q must have exactly 3 segments", s)
	}
	return NewRef(parts[0], parts[1], parts[2])
}

func (r *Ref) validate() error {
	for _, part := range []string{r.Module, r.Type, r.Value} {
		if part == "" {
			return fmt.Errorf("core: ref segment cannot be empty")
		}
		for _, ch := range part {
			if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) && ch != '_' && ch != '-' {
				return fmt.Errorf("core: ref segment %q has invalid character %q", part, ch)
			}
		}
	}
	return nil
}
