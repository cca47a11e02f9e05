package attribute

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record holds the attribute values asserted for a verified member,
// keyed by provider-defined attribute name (e.g. an urn:oid:... key).
// Values preserve the provider's original casing and order.
type Record map[string][]string

// New builds a Record from a key to value-or-values map. Scalar values
// are coerced to one-element sequences; nil values are dropped.
func New(raw map[string]any) Record {
	record := make(Record, len(raw))
	for key, value := range raw {
		record[key] = coerce(value)
	}
	return record
}

// FromJSON parses a JSON attribute document as stored by the identity
// persistence layer. Scalars, strings and lists are all accepted.
func FromJSON(data []byte) (Record, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse attribute record: %w", err)
	}
	return New(raw), nil
}

// MarshalJSON renders the record in the canonical stored shape.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]string(r))
}

// Raw returns the values for key with their original casing, in
// asserted order. An absent key yields an empty slice.
func (r Record) Raw(key string) []string {
	values := r[key]
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// Values returns the values for key lower-cased for matching, in
// asserted order. An absent key yields an empty slice, never an error.
func (r Record) Values(key string) []string {
	values := r[key]
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

// Has reports whether the record carries any value for key.
func (r Record) Has(key string) bool {
	return len(r[key]) > 0
}

// Keys returns the attribute keys present in the record.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	return keys
}

func coerce(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, stringify(item))
		}
		return out
	default:
		return []string{stringify(v)}
	}
}

func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
