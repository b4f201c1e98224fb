package depgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goa.design/hierarchical-agents/internal/depgraph"
	"goa.design/hierarchical-agents/internal/errs"
)

func TestOrder_Linear(t *testing.T) {
	deps := map[string][]string{"B": {"A"}, "C": {"B"}}
	ids := []string{"A", "B", "C"}
	order, err := depgraph.Order(deps, ids)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestOrder_DeterministicTieBreak(t *testing.T) {
	deps := map[string][]string{}
	ids := []string{"C", "A", "B"}
	order, err := depgraph.Order(deps, ids)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestOrder_DoesNotMutateCallerMap(t *testing.T) {
	deps := map[string][]string{"B": {"A"}}
	before := len(deps)
	_, err := depgraph.Order(deps, []string{"A", "B"})
	require.NoError(t, err)
	assert.Len(t, deps, before)
}

func TestOrder_CycleDetected(t *testing.T) {
	deps := map[string][]string{"A": {"B"}, "B": {"A"}}
	_, err := depgraph.Order(deps, []string{"A", "B"})
	require.Error(t, err)
	assert.Equal(t, errs.KindDependencyError, errs.KindOf(err))
}

func TestValidate_UnknownKeyValueSelfDep(t *testing.T) {
	deps := map[string][]string{
		"A":       {"A"},
		"missing": {"A"},
		"B":       {"nope"},
	}
	problems := depgraph.Validate(deps, []string{"A", "B"})
	var kinds []string
	for _, p := range problems {
		kinds = append(kinds, p.Kind)
	}
	assert.Contains(t, kinds, "self-dependency")
	assert.Contains(t, kinds, "unknown-key")
	assert.Contains(t, kinds, "unknown-value")
}

func TestDetectCycles_DisconnectedComponents(t *testing.T) {
	deps := map[string][]string{
		"B": {"A"},
		"D": {"C"},
		"C": {"D"},
	}
	cycles := depgraph.DetectCycles(deps)
	require.Len(t, cycles, 1)
	assert.Contains(t, cycles[0], "C")
	assert.Contains(t, cycles[0], "D")
}

func TestDetectCycles_NoCycle(t *testing.T) {
	deps := map[string][]string{"B": {"A"}, "C": {"B"}}
	assert.Empty(t, depgraph.DetectCycles(deps))
}
