package tmpl_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goa.design/hierarchical-agents/internal/model"
	"goa.design/hierarchical-agents/internal/tmpl"
)

func sampleResults() model.StandardizedOutput {
	return model.StandardizedOutput{
		ExecutionID: "exec1",
		TeamResults: map[string]model.TeamResult{
			"research": {
				Status: model.TeamCompleted,
				Output: "Summary: the market shows strong growth trends this quarter.\nKey technologies include Go and Kubernetes.",
				Agents: map[string]model.WorkerResult{
					"analyst": {Status: model.TeamCompleted, Output: "Main challenges include regulatory risk and talent shortages."},
				},
			},
			"writer": {
				Status: model.TeamCompleted,
				Output: "We recommend investing in automation. Data sources: internal survey, public filings.",
			},
		},
	}
}

func TestParseTemplate_RejectsEmpty(t *testing.T) {
	_, err := tmpl.ParseTemplate(map[string]any{})
	require.Error(t, err)
}

func TestParseTemplate_ReturnsInputUnchanged(t *testing.T) {
	in := map[string]any{"title": "{summary}"}
	out, err := tmpl.ParseTemplate(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestValidateExtractionRules_RejectsEmptyFieldOrRule(t *testing.T) {
	require.Error(t, tmpl.ValidateExtractionRules(map[string]string{"": "summary"}))
	require.Error(t, tmpl.ValidateExtractionRules(map[string]string{"field": ""}))
	require.NoError(t, tmpl.ValidateExtractionRules(map[string]string{"field": "extract the summary"}))
}

func TestExtractInformation_RoutesSummaryTechnologiesTrendsChallenges(t *testing.T) {
	rules := map[string]string{
		"overview":     "executive summary",
		"stack":        "key technologies",
		"market":       "market trends",
		"risks":        "challenges",
		"next_steps":   "recommendations",
		"sources":      "data sources",
		"how":          "methodology",
		"unclassified": "something with no recognized keyword",
	}
	extracted := tmpl.ExtractInformation(rules, sampleResults())

	summary, ok := extracted["overview"].(string)
	require.True(t, ok)
	assert.Contains(t, summary, "growth trends")

	techs, ok := extracted["stack"].([]string)
	require.True(t, ok)
	assert.NotEmpty(t, techs)

	trends, ok := extracted["market"].([]string)
	require.True(t, ok)
	assert.NotEmpty(t, trends)

	challenges, ok := extracted["risks"].([]string)
	require.True(t, ok)
	assert.NotEmpty(t, challenges)

	recs, ok := extracted["next_steps"].([]string)
	require.True(t, ok)
	assert.NotEmpty(t, recs)

	sources, ok := extracted["sources"].([]string)
	require.True(t, ok)
	assert.NotEmpty(t, sources)

	unclassified, ok := extracted["unclassified"].(string)
	require.True(t, ok)
	assert.Contains(t, unclassified, "teams")
}

func TestExtractInformation_RuleBoundsClipSummaryAndLimitLists(t *testing.T) {
	results := model.StandardizedOutput{
		ExecutionID: "exec1",
		TeamResults: map[string]model.TeamResult{
			"research": {
				Status: model.TeamCompleted,
				Output: "Summary: the research covered a very long list of findings across multiple markets and sectors.\n" +
					"Key technologies include Go.\nKey technologies include Kubernetes.\nKey technologies include Redis.",
			},
		},
	}

	extracted := tmpl.ExtractInformation(map[string]string{
		"overview": "Summary; <= 50 chars",
		"stack":    "extract 2 key technologies",
	}, results)

	summary, ok := extracted["overview"].(string)
	require.True(t, ok)
	assert.LessOrEqual(t, len(summary), 53) // 50 chars + "..."
	assert.True(t, strings.HasSuffix(summary, "..."))

	techs, ok := extracted["stack"].([]string)
	require.True(t, ok)
	assert.Len(t, techs, 2)
}

func TestExtractInformation_NoMatchFallsBackToGeneric(t *testing.T) {
	extracted := tmpl.ExtractInformation(map[string]string{"whatever": "banana"}, sampleResults())
	s, ok := extracted["whatever"].(string)
	require.True(t, ok)
	assert.Contains(t, s, "2 teams")
}

func TestFormatOutput_SubstitutesSimpleAndDottedPlaceholders(t *testing.T) {
	extracted := map[string]any{
		"overview": "all good",
		"nested":   map[string]any{"inner": "value"},
		"list":     []string{"a", "b", "c"},
	}
	template := map[string]any{
		"title": "Report: {overview}",
		"deep":  "{nested.inner}",
		"items": "{list}",
		"child": map[string]any{"x": "{overview}"},
	}
	out := tmpl.FormatOutput(template, extracted)
	assert.Equal(t, "Report: all good", out["title"])
	assert.Equal(t, "value", out["deep"])
	assert.Equal(t, "a, b, c", out["items"])
	assert.Equal(t, map[string]any{"x": "all good"}, out["child"])
}

func TestFormatOutput_MissingAndInvalidPathSentinels(t *testing.T) {
	extracted := map[string]any{"present": "yes"}
	template := map[string]any{
		"a": "{absent}",
		"b": "{present.deeper}",
	}
	out := tmpl.FormatOutput(template, extracted)
	assert.Equal(t, "[Missing: absent]", out["a"])
	assert.Equal(t, "[Invalid path: present.deeper]", out["b"])
}

func TestFormatOutput_PassesThroughNonStringLeaves(t *testing.T) {
	template := map[string]any{"count": 3, "ok": true, "items": []any{"{present}"}}
	out := tmpl.FormatOutput(template, map[string]any{"present": "here"})
	assert.Equal(t, 3, out["count"])
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, []any{"here"}, out["items"])
}
