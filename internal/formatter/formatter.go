package formatter

import (
	"context"

	"goa.design/hierarchical-agents/internal/errs"
	"goa.design/hierarchical-agents/internal/model"
	"goa.design/hierarchical-agents/internal/statestore"
)

// Format reads executionID's persisted state and produces its
// StandardizedOutput, composing CalculateMetrics and GenerateSummary over
// the stored team results/events/errors. Grounded on
// original_source/.../output_formatter.py's
// OutputFormatter.format_execution_results.
func Format(ctx context.Context, store statestore.Store, executionID string) (model.StandardizedOutput, error) {
	state, err := store.Get(ctx, executionID)
	if err != nil {
		return model.StandardizedOutput{}, err
	}
	if state == nil {
		return model.StandardizedOutput{}, errs.Errorf(errs.KindNotFound, "execution %s not found", executionID)
	}

	metrics := CalculateMetrics(state.TeamResults, state.Events)
	summary := GenerateSummary(executionID, state.TeamResults, state.Events, state.Errors, state.Context.StartedAt)

	errorsOut := state.Errors
	if errorsOut == nil {
		errorsOut = []model.ErrorInfo{}
	}
	teamResults := state.TeamResults
	if teamResults == nil {
		teamResults = map[string]model.TeamResult{}
	}

	return model.StandardizedOutput{
		ExecutionID: executionID,
		Summary:     summary,
		TeamResults: teamResults,
		Errors:      errorsOut,
		Metrics:     metrics,
	}, nil
}
