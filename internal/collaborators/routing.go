package collaborators

import "strings"

// ClosestMatch finds the candidate name closest to selected: exact
// case-insensitive match first, then a substring match in either
// direction, defaulting to the first candidate when nothing matches.
// Grounded on original_source/.../agents.py's
// SupervisorAgent._find_closest_match.
func ClosestMatch(selected string, candidates []string) string {
	if len(candidates) == 0 {
		return selected
	}
	selectedLower := strings.ToLower(selected)

	for _, candidate := range candidates {
		if strings.ToLower(candidate) == selectedLower {
			return candidate
		}
	}
	for _, candidate := range candidates {
		candidateLower := strings.ToLower(candidate)
		if strings.Contains(selectedLower, candidateLower) || strings.Contains(candidateLower, selectedLower) {
			return candidate
		}
	}
	return candidates[0]
}

// ParseStructuredRouting parses a "SELECTED: x\nREASONING: y" formatted LLM
// response, falling back to scanning the raw content for a mentioned agent
// name, and finally to ClosestMatch / the first candidate. Grounded on
// original_source/.../agents.py's SupervisorAgent._parse_structured_response.
func ParseStructuredRouting(content string, candidates []AgentDescriptor) RouteDecision {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}

	var selected, reasoning string
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "SELECTED:"):
			selected = strings.TrimSpace(strings.TrimPrefix(line, "SELECTED:"))
		case strings.HasPrefix(line, "REASONING:"):
			reasoning = strings.TrimSpace(strings.TrimPrefix(line, "REASONING:"))
		}
	}

	if selected == "" {
		contentLower := strings.ToLower(content)
		for _, name := range names {
			if name != "" && strings.Contains(contentLower, strings.ToLower(name)) {
				selected = name
				break
			}
		}
	}

	if !containsName(names, selected) {
		if selected != "" {
			selected = ClosestMatch(selected, names)
		} else if len(names) > 0 {
			selected = names[0]
		} else {
			selected = "Unknown"
		}
	}

	return RouteDecision{SelectedAgent: selected, Reasoning: reasoning}
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
