package filterexpr

import (
	"errors"
	"fmt"
	"strings"
)

// OrderKey is one resolved ordering segment.
type OrderKey struct {
	Key  string
	Desc bool
}

// OrderSchema whitelists order keys and fixes the defaults. TieBreak is
// always appended (unless it duplicates the chosen primary) so listings
// stay deterministic across pages.
type OrderSchema struct {
	Default  OrderKey
	TieBreak OrderKey
	Allowed  []string
}

func (s OrderSchema) allows(key string) bool {
	for _, k := range s.Allowed {
		if k == key {
			return true
		}
	}
	return false
}

// parseOrderBy resolves a raw "key [asc|desc], key [asc|desc]" string
// against the schema. At most two explicit keys are accepted.
func parseOrderBy(raw string, schema OrderSchema) ([]OrderKey, error) {
	if schema.Default.Key == "" || schema.TieBreak.Key == "" {
		return nil, errors.New("order schema needs a default and a tie-break key")
	}
	if !schema.allows(schema.Default.Key) || !schema.allows(schema.TieBreak.Key) {
		return nil, errors.New("order schema defaults must be in the allowed set")
	}

	keys := []OrderKey{}
	seen := make(map[string]struct{})
	for _, seg := range strings.Split(raw, ",") {
		parts := strings.Fields(seg)
		if len(parts) == 0 {
			continue
		}
		if len(parts) > 2 {
			return nil, fmt.Errorf("invalid order segment %q", strings.TrimSpace(seg))
		}

		key := parts[0]
		if !schema.allows(key) {
			return nil, fmt.Errorf("field %q cannot be used for ordering", key)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate order key %q", key)
		}
		seen[key] = struct{}{}

		desc := false
		if len(parts) == 2 {
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				desc = true
			default:
				return nil, fmt.Errorf("invalid direction %q for field %q", parts[1], key)
			}
		}

		if len(keys) == 2 {
			return nil, errors.New("at most two order keys are supported")
		}
		keys = append(keys, OrderKey{Key: key, Desc: desc})
	}

	if len(keys) == 0 {
		keys = append(keys, schema.Default)
	}
	if keys[len(keys)-1].Key != schema.TieBreak.Key {
		keys = append(keys, schema.TieBreak)
	}
	return keys, nil
}
