// Package tmpl implements the user-defined JSON template engine: parsing
// a template tree, extracting fields from a StandardizedOutput via a
// bilingual (EN/中文) keyword-heuristic rule set, and substituting
// {field}/{a.b.c} placeholders. Grounded on
// original_source/.../output_formatter.py's TemplateProcessor.
package tmpl

import (
	"regexp"
	"strings"

	"goa.design/hierarchical-agents/internal/errs"
	"goa.design/hierarchical-agents/internal/model"
)

// Template is a parsed JSON-ish template tree: maps, slices, strings, and
// other JSON primitives, mirroring the shape decoded from a client's
// arbitrary JSON template body.
type Template = any

var placeholderPattern = regexp.MustCompile(`\{([^}]+)\}`)

// ParseTemplate validates template is non-empty and returns it unchanged;
// Go's json.Unmarshal into map[string]any already guarantees the
// structural shape the Python parser hand-validates recursively.
func ParseTemplate(template map[string]any) (map[string]any, error) {
	if len(template) == 0 {
		return nil, errs.New(errs.KindValidation, "template cannot be empty")
	}
	return template, nil
}

// ValidateExtractionRules rejects empty rule names/values, mirroring
// original_source's validate_extraction_rules.
func ValidateExtractionRules(rules map[string]string) error {
	for field, rule := range rules {
		if strings.TrimSpace(field) == "" {
			return errs.New(errs.KindValidation, "extraction rule field name cannot be empty")
		}
		if strings.TrimSpace(rule) == "" {
			return errs.Errorf(errs.KindValidation, "extraction rule for %q cannot be empty", field)
		}
	}
	return nil
}

// ExtractInformation applies every extraction rule to results, isolating
// per-field failures behind a "[Failed to extract x: reason]" sentinel so
// one bad rule cannot fail the whole template.
func ExtractInformation(rules map[string]string, results model.StandardizedOutput) map[string]any {
	extracted := make(map[string]any, len(rules))
	for field, rule := range rules {
		extracted[field] = applyExtractionRule(rule, results, field)
	}
	return extracted
}

// applyExtractionRule dispatches to a bilingual keyword-matched extractor,
// order mirroring original_source's _apply_extraction_rule (more specific
// patterns first).
func applyExtractionRule(rule string, results model.StandardizedOutput, field string) (out any) {
	defer func() {
		if r := recover(); r != nil {
			out = "[Failed to extract " + field + ": internal extractor error]"
		}
	}()

	ruleLower := strings.ToLower(rule)
	switch {
	case strings.Contains(ruleLower, "executive summary") || strings.Contains(ruleLower, "summary") || strings.Contains(rule, "摘要"):
		return extractSummary(results, rule)
	case strings.Contains(rule, "关键技术") ||
		((strings.Contains(ruleLower, "key technologies") || strings.Contains(ruleLower, "technologies")) && !strings.Contains(rule, "挑战")):
		return extractTechnologies(results, rule)
	case strings.Contains(rule, "市场趋势") || strings.Contains(rule, "趋势") || strings.Contains(ruleLower, "market trends") || strings.Contains(ruleLower, "trends"):
		return extractTrends(results, rule)
	case strings.Contains(rule, "挑战") || strings.Contains(ruleLower, "challenges"):
		return extractChallenges(results, rule)
	case strings.Contains(rule, "建议") || strings.Contains(ruleLower, "recommendations"):
		return extractRecommendations(results, rule)
	case strings.Contains(rule, "数据来源") || strings.Contains(rule, "来源") || strings.Contains(ruleLower, "data sources") || strings.Contains(ruleLower, "sources"):
		return extractDataSources(results)
	case strings.Contains(rule, "方法") || strings.Contains(ruleLower, "methodology"):
		return extractMethodology(results)
	default:
		return extractGeneric(results, field)
	}
}

// FormatOutput applies extracted to every string leaf of template,
// substituting placeholders, and returns primitives/maps/slices unchanged
// otherwise.
func FormatOutput(template map[string]any, extracted map[string]any) map[string]any {
	out := make(map[string]any, len(template))
	for k, v := range template {
		out[k] = applyTemplateRecursively(v, extracted)
	}
	return out
}

func applyTemplateRecursively(node any, extracted map[string]any) any {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[k] = applyTemplateRecursively(child, extracted)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = applyTemplateRecursively(item, extracted)
		}
		return out
	case string:
		return replacePlaceholders(v, extracted)
	default:
		return node
	}
}

// replacePlaceholders substitutes every {field} or {a.b.c} occurrence in
// s with its value from extracted, using the same sentinel strings as
// original_source's _replace_placeholders.
func replacePlaceholders(s string, extracted map[string]any) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		placeholder := strings.TrimSpace(match[1 : len(match)-1])
		value := resolvePlaceholder(placeholder, extracted)
		return stringifyValue(value)
	})
}

func resolvePlaceholder(placeholder string, extracted map[string]any) any {
	if !strings.Contains(placeholder, ".") {
		if v, ok := extracted[placeholder]; ok {
			return v
		}
		return "[Missing: " + placeholder + "]"
	}

	parts := strings.Split(placeholder, ".")
	var cur any = extracted
	for _, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return "[Invalid path: " + placeholder + "]"
		}
		v, present := m[part]
		if !present {
			return "[Missing: " + placeholder + "]"
		}
		cur = v
	}
	return cur
}

func stringifyValue(value any) string {
	switch v := value.(type) {
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = stringifyValue(item)
		}
		return strings.Join(parts, ", ")
	case string:
		return v
	default:
		return toDisplayString(v)
	}
}
