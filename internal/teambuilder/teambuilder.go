// Package teambuilder validates submitted HierarchicalTeam specifications,
// computes their sub-team execution order, and owns the process-lifetime
// team registry. Grounded on original_source/.../team_builder.py's
// TeamBuilder.build/validate split and on SPEC_FULL.md §13's resolution
// of Open Question #3 (team specs persist in-memory only, behind a Store
// interface for future durability).
package teambuilder

import (
	"context"
	"sync"

	"goa.design/hierarchical-agents/internal/depgraph"
	"goa.design/hierarchical-agents/internal/errs"
	"goa.design/hierarchical-agents/internal/ids"
	"goa.design/hierarchical-agents/internal/model"
)

// BuiltTeam is a validated HierarchicalTeam plus its precomputed
// topological execution order over sub-team ids.
type BuiltTeam struct {
	ID    string
	Spec  model.HierarchicalTeam
	Order []string
}

// SubTeam returns the SubTeam with the given id, or false if unknown.
func (b BuiltTeam) SubTeam(teamID string) (model.SubTeam, bool) {
	for _, st := range b.Spec.SubTeams {
		if st.TeamID == teamID {
			return st, true
		}
	}
	return model.SubTeam{}, false
}

// Dependencies returns the prerequisite sub-team ids for teamID.
func (b BuiltTeam) Dependencies(teamID string) []string {
	return b.Spec.Dependencies[teamID]
}

// Build validates spec (field invariants, then dependency-graph structure)
// and computes its execution order. It does not register the team;
// Store.Create builds and registers in one step.
func Build(spec model.HierarchicalTeam) (BuiltTeam, error) {
	if err := spec.Validate(); err != nil {
		return BuiltTeam{}, err
	}
	subTeamIDs := spec.SubTeamIDs()
	order, err := depgraph.Order(spec.Dependencies, subTeamIDs)
	if err != nil {
		return BuiltTeam{}, err
	}
	return BuiltTeam{Spec: spec, Order: order}, nil
}

// Store is the process-lifetime registry of built teams, keyed by team id.
// Resolved as in-memory-only per SPEC_FULL.md §13 Open Question #3; the
// interface keeps a durable implementation swappable without touching
// callers.
type Store interface {
	// Create validates and registers spec under a freshly generated team
	// id, returning the built team.
	Create(ctx context.Context, spec model.HierarchicalTeam) (BuiltTeam, error)
	Get(ctx context.Context, teamID string) (BuiltTeam, bool, error)
	List(ctx context.Context) ([]BuiltTeam, error)
	Delete(ctx context.Context, teamID string) error
}

// InMemStore is the Store implementation backing single-process deployments.
type InMemStore struct {
	mu    sync.Mutex
	teams map[string]BuiltTeam
}

// NewInMemStore constructs an empty team registry.
func NewInMemStore() *InMemStore {
	return &InMemStore{teams: make(map[string]BuiltTeam)}
}

// Create implements Store.
func (s *InMemStore) Create(_ context.Context, spec model.HierarchicalTeam) (BuiltTeam, error) {
	built, err := Build(spec)
	if err != nil {
		return BuiltTeam{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	built.ID = ids.NewTeamID()
	for _, exists := s.teams[built.ID]; exists; _, exists = s.teams[built.ID] {
		built.ID = ids.NewTeamID()
	}
	s.teams[built.ID] = built
	return built, nil
}

// Get implements Store.
func (s *InMemStore) Get(_ context.Context, teamID string) (BuiltTeam, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	built, ok := s.teams[teamID]
	return built, ok, nil
}

// List implements Store.
func (s *InMemStore) List(_ context.Context) ([]BuiltTeam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]BuiltTeam, 0, len(s.teams))
	for _, built := range s.teams {
		out = append(out, built)
	}
	return out, nil
}

// Delete implements Store.
func (s *InMemStore) Delete(_ context.Context, teamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[teamID]; !ok {
		return errs.Errorf(errs.KindNotFound, "team %s not found", teamID)
	}
	delete(s.teams, teamID)
	return nil
}
