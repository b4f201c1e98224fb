package collaborators_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"goa.design/hierarchical-agents/internal/collaborators"
)

func TestClosestMatch_ExactCaseInsensitive(t *testing.T) {
	got := collaborators.ClosestMatch("researcher", []string{"Researcher", "Writer"})
	assert.Equal(t, "Researcher", got)
}

func TestClosestMatch_SubstringEitherDirection(t *testing.T) {
	got := collaborators.ClosestMatch("research", []string{"Researcher", "Writer"})
	assert.Equal(t, "Researcher", got)

	got = collaborators.ClosestMatch("the researcher agent", []string{"Researcher", "Writer"})
	assert.Equal(t, "Researcher", got)
}

func TestClosestMatch_DefaultsToFirst(t *testing.T) {
	got := collaborators.ClosestMatch("nonsense", []string{"Researcher", "Writer"})
	assert.Equal(t, "Researcher", got)
}

func TestParseStructuredRouting_WellFormed(t *testing.T) {
	content := "SELECTED: Writer\nREASONING: best suited for drafting"
	candidates := []collaborators.AgentDescriptor{{Name: "Researcher"}, {Name: "Writer"}}

	decision := collaborators.ParseStructuredRouting(content, candidates)
	assert.Equal(t, "Writer", decision.SelectedAgent)
	assert.Equal(t, "best suited for drafting", decision.Reasoning)
}

func TestParseStructuredRouting_FallsBackToMentionedName(t *testing.T) {
	content := "I think the Writer should handle this one."
	candidates := []collaborators.AgentDescriptor{{Name: "Researcher"}, {Name: "Writer"}}

	decision := collaborators.ParseStructuredRouting(content, candidates)
	assert.Equal(t, "Writer", decision.SelectedAgent)
}

func TestParseStructuredRouting_UnknownSelectionClosestMatches(t *testing.T) {
	content := "SELECTED: writer-agent\nREASONING: selection is not an exact candidate name"
	candidates := []collaborators.AgentDescriptor{{Name: "Researcher"}, {Name: "Writer"}}

	decision := collaborators.ParseStructuredRouting(content, candidates)
	assert.Equal(t, "Writer", decision.SelectedAgent)
}

func TestParseStructuredRouting_NoSelectionDefaultsFirstCandidate(t *testing.T) {
	content := "unparseable garbage"
	candidates := []collaborators.AgentDescriptor{{Name: "Researcher"}, {Name: "Writer"}}

	decision := collaborators.ParseStructuredRouting(content, candidates)
	assert.Equal(t, "Researcher", decision.SelectedAgent)
}

func TestStaticRouter_VisitsEachCandidateOnceThenDone(t *testing.T) {
	router := collaborators.NewStaticRouter()
	candidates := []collaborators.AgentDescriptor{{ID: "a1", Name: "Researcher"}, {ID: "a2", Name: "Writer"}}
	req := collaborators.RouteRequest{Candidates: candidates}

	first, err := router.Route(context.Background(), req)
	assert.NoError(t, err)
	assert.Equal(t, "Researcher", first.SelectedAgent)

	second, err := router.Route(context.Background(), req)
	assert.NoError(t, err)
	assert.Equal(t, "Writer", second.SelectedAgent)

	third, err := router.Route(context.Background(), req)
	assert.NoError(t, err)
	assert.True(t, third.Done)
}
