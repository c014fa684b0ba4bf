// Package filter implements the blacklist predicate over pager records.
package filter

import "github.com/MalumAtire832/p2000/internal/pager"

// Set is a membership set with O(1) average lookup.
type Set map[string]struct{}

// NewSet builds a Set from a slice of values.
func NewSet(values []string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Contains reports whether v is a member of the set.
func (s Set) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// IsBlacklisted reports whether the record's monitor code is in codes or its
// message is in messages. Pure, no side effects.
func IsBlacklisted(rec pager.Record, messages, codes Set) bool {
	return codes.Contains(rec.MonitorCode) || messages.Contains(rec.Message)
}

// IsRawBlacklisted parses line and evaluates IsBlacklisted on the result.
// Prefer IsBlacklisted with an already-parsed record to avoid parsing twice.
func IsRawBlacklisted(line string, messages, codes Set) (bool, error) {
	rec, err := pager.Parse(line)
	if err != nil {
		return false, err
	}
	return IsBlacklisted(rec, messages, codes), nil
}
