package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campuscord/rolesync/pkg/attribute"
)

const affiliationKey = "urn:oid:1.3.6.1.4.1.5923.1.1.1.1"

func testConfig() Config {
	return Config{
		ClassificationKey: affiliationKey,
		Priority: []Slot{
			{Name: "student", Triggers: []string{"student"}, RoleID: "role-student"},
			{Name: "faculty-staff", Triggers: []string{"faculty", "staff", "employee"}, RoleID: "role-faculty"},
			{Name: "alum", Triggers: []string{"alum"}, RoleID: "role-alum"},
		},
	}
}

func resolveAll(string) bool { return true }

func TestSelect_PrioritySlots(t *testing.T) {
	tests := []struct {
		name     string
		values   []any
		expected []string
	}{
		{
			name:     "student slot fires",
			values:   []any{"student"},
			expected: []string{"role-student"},
		},
		{
			name:     "faculty slot fires when student absent",
			values:   []any{"faculty", "staff"},
			expected: []string{"role-faculty"},
		},
		{
			name:     "employee triggers faculty slot",
			values:   []any{"employee"},
			expected: []string{"role-faculty"},
		},
		{
			name:     "alum slot is lowest priority",
			values:   []any{"alum"},
			expected: []string{"role-alum"},
		},
		{
			name:     "highest priority wins over later tiers",
			values:   []any{"alum", "student", "staff"},
			expected: []string{"role-student"},
		},
		{
			name:     "matching is case-insensitive",
			values:   []any{"STUDENT"},
			expected: []string{"role-student"},
		},
		{
			name:     "no trigger matches",
			values:   []any{"affiliate"},
			expected: []string{},
		},
		{
			name:     "classification attribute absent",
			values:   nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := attribute.New(map[string]any{affiliationKey: tt.values})
			desired := Select(record, testConfig(), resolveAll)
			assert.Equal(t, tt.expected, desired.Sorted())
		})
	}
}

func TestSelect_AtMostOnePriorityRole(t *testing.T) {
	// A record satisfying every tier still yields exactly one
	// priority role.
	record := attribute.New(map[string]any{
		affiliationKey: []any{"student", "faculty", "staff", "employee", "alum"},
	})

	desired := Select(record, testConfig(), resolveAll)
	assert.Equal(t, []string{"role-student"}, desired.Sorted())
}

func TestSelect_UnconfiguredSlotStillExcludesLowerTiers(t *testing.T) {
	cfg := testConfig()
	cfg.Priority[0].RoleID = ""

	record := attribute.New(map[string]any{
		affiliationKey: []any{"student", "alum"},
	})

	// The student slot fires with no role configured; the alum slot
	// must not be considered.
	desired := Select(record, cfg, resolveAll)
	assert.Empty(t, desired.Sorted())
}

func TestSelect_MappingTable(t *testing.T) {
	cfg := testConfig()
	cfg.Mappings = map[string]map[string]string{
		"groups": {
			"esports": "role-esports",
			"radio":   "role-radio",
		},
		affiliationKey: {
			"member": "role-member",
		},
	}

	record := attribute.New(map[string]any{
		affiliationKey: []any{"student", "member"},
		"groups":       []any{"Esports"},
	})

	desired := Select(record, cfg, resolveAll)
	assert.Equal(t, []string{"role-esports", "role-member", "role-student"}, desired.Sorted())
}

func TestSelect_MappingDeduplicatesAgainstPriority(t *testing.T) {
	cfg := testConfig()
	cfg.Mappings = map[string]map[string]string{
		affiliationKey: {"student": "role-student"},
	}

	record := attribute.New(map[string]any{affiliationKey: "student"})

	desired := Select(record, cfg, resolveAll)
	assert.Equal(t, []string{"role-student"}, desired.Sorted())
}

func TestSelect_DanglingRoleDropped(t *testing.T) {
	cfg := testConfig()
	cfg.Mappings = map[string]map[string]string{
		"groups": {"esports": "role-deleted"},
	}

	record := attribute.New(map[string]any{
		affiliationKey: "student",
		"groups":       "esports",
	})

	resolve := func(id string) bool { return id != "role-deleted" }

	desired := Select(record, cfg, resolve)
	assert.Equal(t, []string{"role-student"}, desired.Sorted())
}
