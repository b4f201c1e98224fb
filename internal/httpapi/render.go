package httpapi

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"goa.design/hierarchical-agents/internal/model"
)

// xmlOutput mirrors model.StandardizedOutput's shape for encoding/xml,
// since the JSON model's map fields have no direct XML representation.
type xmlOutput struct {
	XMLName     xml.Name       `xml:"execution_result"`
	ExecutionID string         `xml:"execution_id"`
	Summary     xmlSummary     `xml:"summary"`
	Teams       []xmlTeam      `xml:"team_results>team"`
	Errors      []xmlError     `xml:"errors>error"`
	Metrics     xmlMetrics     `xml:"metrics"`
}

type xmlSummary struct {
	OverallStatus  string `xml:"overall_status"`
	TeamsExecuted  int    `xml:"teams_executed"`
	AgentsInvolved int    `xml:"agents_involved"`
}

type xmlTeam struct {
	ID     string    `xml:"id,attr"`
	Status string    `xml:"status"`
	Output string    `xml:"output"`
	Agents []xmlAgent `xml:"agents>agent"`
}

type xmlAgent struct {
	ID     string `xml:"id,attr"`
	Status string `xml:"status"`
	Output string `xml:"output"`
}

type xmlError struct {
	Code    string `xml:"code,attr"`
	Message string `xml:",chardata"`
}

type xmlMetrics struct {
	TotalTokensUsed     int     `xml:"total_tokens_used"`
	APICallsMade        int     `xml:"api_calls_made"`
	SuccessRate         float64 `xml:"success_rate"`
	AverageResponseTime float64 `xml:"average_response_time_seconds"`
}

// RenderXML encodes out as the XML result document described in
// SPEC_FULL.md §12, deterministically ordering map-keyed fields.
func RenderXML(out model.StandardizedOutput) ([]byte, error) {
	x := xmlOutput{
		ExecutionID: out.ExecutionID,
		Summary: xmlSummary{
			OverallStatus:  out.Summary.OverallStatus,
			TeamsExecuted:  out.Summary.TeamsExecuted,
			AgentsInvolved: out.Summary.AgentsInvolved,
		},
		Metrics: xmlMetrics{
			TotalTokensUsed:     out.Metrics.TotalTokensUsed,
			APICallsMade:        out.Metrics.APICallsMade,
			SuccessRate:         out.Metrics.SuccessRate,
			AverageResponseTime: out.Metrics.AverageResponseTime,
		},
	}
	for _, teamID := range sortedKeys(out.TeamResults) {
		team := out.TeamResults[teamID]
		xt := xmlTeam{ID: teamID, Status: string(team.Status), Output: team.Output}
		for _, agentID := range sortedWorkerKeys(team.Agents) {
			agent := team.Agents[agentID]
			xt.Agents = append(xt.Agents, xmlAgent{ID: agentID, Status: string(agent.Status), Output: agent.Output})
		}
		x.Teams = append(x.Teams, xt)
	}
	for _, e := range out.Errors {
		x.Errors = append(x.Errors, xmlError{Code: e.Code, Message: e.Message})
	}

	payload, err := xml.MarshalIndent(x, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), payload...), nil
}

// RenderMarkdown renders out as a deterministic Markdown report: a heading
// per team, its agents' outputs, and a bullet list of errors.
func RenderMarkdown(out model.StandardizedOutput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Execution %s\n\n", out.ExecutionID)
	fmt.Fprintf(&b, "**Status:** %s  \n", out.Summary.OverallStatus)
	fmt.Fprintf(&b, "**Teams executed:** %d  \n", out.Summary.TeamsExecuted)
	fmt.Fprintf(&b, "**Agents involved:** %d\n\n", out.Summary.AgentsInvolved)

	for _, teamID := range sortedKeys(out.TeamResults) {
		team := out.TeamResults[teamID]
		fmt.Fprintf(&b, "## Team: %s (%s)\n\n", teamID, team.Status)
		if team.Output != "" {
			fmt.Fprintf(&b, "%s\n\n", team.Output)
		}
		for _, agentID := range sortedWorkerKeys(team.Agents) {
			agent := team.Agents[agentID]
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", agentID, agent.Status, agent.Output)
		}
		b.WriteString("\n")
	}

	if len(out.Errors) > 0 {
		b.WriteString("## Errors\n\n")
		for _, e := range out.Errors {
			fmt.Fprintf(&b, "- `%s`: %s\n", e.Code, e.Message)
		}
	}

	return b.String()
}

func sortedKeys(m map[string]model.TeamResult) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedWorkerKeys(m map[string]model.WorkerResult) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
