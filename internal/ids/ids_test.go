package ids_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"goa.design/hierarchical-agents/internal/ids"
)

func TestNewTeamID_MatchesValidator(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := ids.NewTeamID()
		assert.True(t, ids.ValidTeamID(id), "generated id %q must pass its own validator", id)
		assert.Len(t, id, 12)
	}
}

func TestNewExecutionID_MatchesValidator(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := ids.NewExecutionID()
		assert.True(t, ids.ValidExecutionID(id), "generated id %q must pass its own validator", id)
		assert.Len(t, id, 17)
	}
}

func TestNewExecutionID_Unique(t *testing.T) {
	a := ids.NewExecutionID()
	b := ids.NewExecutionID()
	assert.NotEqual(t, a, b)
}

func TestValidExecutionID_RejectsMalformed(t *testing.T) {
	for _, id := range []string{"", "exec_short", "exec_" + "zzzzzzzzzzzz", "exc_0123456789ab", "exec_0123456789abX"} {
		assert.False(t, ids.ValidExecutionID(id), "id %q should be invalid", id)
	}
}

func TestValidTeamID_RejectsMalformed(t *testing.T) {
	for _, id := range []string{"", "ht_short", "ht_" + "zzzzzzzzz", "team_012345678"} {
		assert.False(t, ids.ValidTeamID(id), "id %q should be invalid", id)
	}
}
