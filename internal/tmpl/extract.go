package tmpl

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"goa.design/hierarchical-agents/internal/model"
)

var ruleNumberPattern = regexp.MustCompile(`\d+`)

// parseRuleBound extracts the first integer literal mentioned in rule (a
// character bound for summaries, a match count for lists), falling back to
// def when the rule names no number.
func parseRuleBound(rule string, def int) int {
	match := ruleNumberPattern.FindString(rule)
	if match == "" {
		return def
	}
	n, err := strconv.Atoi(match)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func clipToChars(s string, bound int) string {
	if bound > 0 && len(s) > bound {
		return s[:bound] + "..."
	}
	return s
}

func limitMatches(items []string, limit int) []string {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// allOutputs collects every team's and worker's output text, in
// deterministic (sorted-key) order so extraction is reproducible.
func allOutputs(results model.StandardizedOutput) []string {
	teamIDs := make([]string, 0, len(results.TeamResults))
	for id := range results.TeamResults {
		teamIDs = append(teamIDs, id)
	}
	sort.Strings(teamIDs)

	var outputs []string
	for _, teamID := range teamIDs {
		team := results.TeamResults[teamID]
		if team.Output != "" {
			outputs = append(outputs, team.Output)
		}
		workerIDs := make([]string, 0, len(team.Agents))
		for id := range team.Agents {
			workerIDs = append(workerIDs, id)
		}
		sort.Strings(workerIDs)
		for _, wid := range workerIDs {
			if out := team.Agents[wid].Output; out != "" {
				outputs = append(outputs, out)
			}
		}
	}
	return outputs
}

// linesMatchingAny returns every line across outputs containing at least
// one of keywords (case-insensitive for ASCII, exact substring for CJK).
func linesMatchingAny(outputs []string, keywords []string) []string {
	var matches []string
	for _, out := range outputs {
		for _, line := range strings.Split(out, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			lower := strings.ToLower(trimmed)
			for _, kw := range keywords {
				if strings.Contains(lower, strings.ToLower(kw)) || strings.Contains(trimmed, kw) {
					matches = append(matches, trimmed)
					break
				}
			}
		}
	}
	return matches
}

var summaryKeywords = []string{"summary", "overview", "摘要", "概述", "总结"}
var technologyKeywords = []string{"technology", "technologies", "framework", "platform", "技术", "框架", "平台"}
var trendKeywords = []string{"trend", "growth", "market", "趋势", "增长", "市场"}
var challengeKeywords = []string{"challenge", "risk", "obstacle", "挑战", "风险", "障碍"}
var recommendationKeywords = []string{"recommend", "suggestion", "should", "建议", "推荐"}
var dataSourceKeywords = []string{"source", "dataset", "reference", "来源", "数据集", "参考"}
var methodologyKeywords = []string{"method", "approach", "methodology", "方法", "方法论"}

// extractSummary mirrors original_source's _extract_summary: the first
// matching line, falling back to the first non-empty output, clipped to
// any character bound mentioned in rule (default 280).
func extractSummary(results model.StandardizedOutput, rule string) string {
	bound := parseRuleBound(rule, 280)
	outputs := allOutputs(results)
	if matches := linesMatchingAny(outputs, summaryKeywords); len(matches) > 0 {
		return clipToChars(matches[0], bound)
	}
	for _, out := range outputs {
		trimmed := strings.TrimSpace(out)
		if trimmed == "" {
			continue
		}
		return clipToChars(trimmed, bound)
	}
	return fmt.Sprintf("[Failed to extract %s: no output available]", rule)
}

// extractTechnologies mirrors _extract_technologies: every matching line,
// deduplicated, limited to the first N (N parsed from rule, default 5).
func extractTechnologies(results model.StandardizedOutput, rule string) []string {
	limit := parseRuleBound(rule, 5)
	return limitMatches(dedupe(linesMatchingAny(allOutputs(results), technologyKeywords)), limit)
}

func extractTrends(results model.StandardizedOutput, rule string) []string {
	limit := parseRuleBound(rule, 5)
	return limitMatches(dedupe(linesMatchingAny(allOutputs(results), trendKeywords)), limit)
}

func extractChallenges(results model.StandardizedOutput, rule string) []string {
	limit := parseRuleBound(rule, 5)
	return limitMatches(dedupe(linesMatchingAny(allOutputs(results), challengeKeywords)), limit)
}

func extractRecommendations(results model.StandardizedOutput, rule string) []string {
	limit := parseRuleBound(rule, 5)
	return limitMatches(dedupe(linesMatchingAny(allOutputs(results), recommendationKeywords)), limit)
}

// extractDataSources mirrors _extract_data_sources: keyword-matched lines
// plus the ordered list of team IDs that actually produced output, since
// the original treats contributing sub-teams themselves as a data source.
func extractDataSources(results model.StandardizedOutput) []string {
	matches := dedupe(linesMatchingAny(allOutputs(results), dataSourceKeywords))

	teamIDs := make([]string, 0, len(results.TeamResults))
	for id, team := range results.TeamResults {
		if team.Output != "" {
			teamIDs = append(teamIDs, id)
		}
	}
	sort.Strings(teamIDs)
	return append(matches, teamIDs...)
}

func extractMethodology(results model.StandardizedOutput) string {
	if matches := linesMatchingAny(allOutputs(results), methodologyKeywords); len(matches) > 0 {
		return strings.Join(matches, " ")
	}
	return "[Failed to extract methodology: no matching content]"
}

// extractGeneric mirrors _extract_generic: when no keyword rule matches,
// fall back to reporting how many teams/agents contributed, since there is
// no principled way to guess what free-form field the caller wanted.
func extractGeneric(results model.StandardizedOutput, field string) string {
	agents := 0
	for _, team := range results.TeamResults {
		agents += len(team.Agents)
	}
	return "[" + field + ": " + strconv.Itoa(len(results.TeamResults)) + " teams, " + strconv.Itoa(agents) + " agents]"
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// toDisplayString stringifies a non-string, non-slice extracted value for
// placeholder substitution (numbers, bools, nil).
func toDisplayString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case fmt.Stringer:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
