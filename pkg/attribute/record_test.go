package attribute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const affiliationKey = "urn:oid:1.3.6.1.4.1.5923.1.1.1.1"

func TestNew_CoercesScalars(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]any
		key      string
		expected []string
	}{
		{
			name:     "scalar string becomes one-element sequence",
			raw:      map[string]any{affiliationKey: "student"},
			key:      affiliationKey,
			expected: []string{"student"},
		},
		{
			name:     "list kept in order",
			raw:      map[string]any{affiliationKey: []any{"faculty", "staff"}},
			key:      affiliationKey,
			expected: []string{"faculty", "staff"},
		},
		{
			name:     "string slice kept as-is",
			raw:      map[string]any{"groups": []string{"admins", "ops"}},
			key:      "groups",
			expected: []string{"admins", "ops"},
		},
		{
			name:     "nil value dropped",
			raw:      map[string]any{affiliationKey: nil},
			key:      affiliationKey,
			expected: []string{},
		},
		{
			name:     "non-string scalar stringified",
			raw:      map[string]any{"level": 3},
			key:      "level",
			expected: []string{"3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := New(tt.raw)
			assert.Equal(t, tt.expected, record.Raw(tt.key))
		})
	}
}

func TestRecord_Values_Normalizes(t *testing.T) {
	record := New(map[string]any{
		affiliationKey: []any{"Student", "STAFF"},
	})

	assert.Equal(t, []string{"student", "staff"}, record.Values(affiliationKey))
	// Raw view keeps the provider's casing for display.
	assert.Equal(t, []string{"Student", "STAFF"}, record.Raw(affiliationKey))
}

func TestRecord_AbsentKey(t *testing.T) {
	record := New(nil)

	assert.Empty(t, record.Values("missing"))
	assert.Empty(t, record.Raw("missing"))
	assert.False(t, record.Has("missing"))
}

func TestFromJSON(t *testing.T) {
	data := []byte(`{
		"urn:oid:1.3.6.1.4.1.5923.1.1.1.1": ["Student", "member"],
		"displayName": "Alice Example"
	}`)

	record, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"student", "member"}, record.Values(affiliationKey))
	assert.Equal(t, []string{"Alice Example"}, record.Raw("displayName"))
	assert.ElementsMatch(t, []string{affiliationKey, "displayName"}, record.Keys())
}

func TestFromJSON_Invalid(t *testing.T) {
	_, err := FromJSON([]byte(`["not", "an", "object"]`))
	assert.Error(t, err)
}
