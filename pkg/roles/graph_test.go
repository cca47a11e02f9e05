package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_Validate(t *testing.T) {
	tests := []struct {
		name  string
		graph Graph
		cycle []string
	}{
		{
			name:  "empty graph",
			graph: Graph{},
		},
		{
			name: "chain",
			graph: Graph{
				"r3": {"r2"},
				"r2": {"r1"},
			},
		},
		{
			name: "diamond",
			graph: Graph{
				"r4": {"r2", "r3"},
				"r2": {"r1"},
				"r3": {"r1"},
			},
		},
		{
			name:  "self cycle",
			graph: Graph{"r1": {"r1"}},
			cycle: []string{"r1"},
		},
		{
			name: "two-role cycle",
			graph: Graph{
				"r1": {"r2"},
				"r2": {"r1"},
			},
			cycle: []string{"r1", "r2"},
		},
		{
			name: "cycle behind a chain",
			graph: Graph{
				"r1": {"r2"},
				"r2": {"r3"},
				"r3": {"r2"},
			},
			cycle: []string{"r2", "r3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.graph.Validate()
			if tt.cycle == nil {
				assert.NoError(t, err)
				return
			}

			var cycleErr *CycleError
			require.ErrorAs(t, err, &cycleErr)
			assert.Equal(t, tt.cycle, cycleErr.Roles)
		})
	}
}

func TestGraph_Dependents(t *testing.T) {
	graph := Graph{
		"r2": {"r1"},
		"r3": {"r1", "r2"},
		"r4": {"r3"},
	}

	assert.Equal(t, []string{"r2", "r3"}, graph.Dependents("r1"))
	assert.Equal(t, []string{"r3"}, graph.Dependents("r2"))
	assert.Empty(t, graph.Dependents("r4"))
}

func TestGraph_Requires(t *testing.T) {
	graph := Graph{"r2": {"r1"}}

	assert.True(t, graph.Requires("r2", "r1"))
	assert.False(t, graph.Requires("r1", "r2"))
	assert.False(t, graph.Requires("r3", "r1"))
}
