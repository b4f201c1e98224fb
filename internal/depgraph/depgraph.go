// Package depgraph validates and schedules the sub-team dependency DAG:
// unknown-reference validation, cycle detection via DFS with a recursion
// stack, and topological ordering via Kahn's algorithm with deterministic
// lexicographic tie-breaking.
package depgraph

import (
	"sort"

	"goa.design/hierarchical-agents/internal/errs"
)

// Problem describes one structural defect found by Validate.
type Problem struct {
	Kind  string // "unknown-key", "unknown-value", "self-dependency"
	Key   string
	Value string
}

// Validate returns every structural problem in deps against the known id
// set ids. An empty result means deps is safe to pass to DetectCycles/Order.
func Validate(deps map[string][]string, ids []string) []Problem {
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	var problems []Problem
	keys := sortedKeys(deps)
	for _, key := range keys {
		if _, ok := known[key]; !ok {
			problems = append(problems, Problem{Kind: "unknown-key", Key: key})
		}
		for _, v := range deps[key] {
			if v == key {
				problems = append(problems, Problem{Kind: "self-dependency", Key: key, Value: v})
				continue
			}
			if _, ok := known[v]; !ok {
				problems = append(problems, Problem{Kind: "unknown-value", Key: key, Value: v})
			}
		}
	}
	return problems
}

// DetectCycles runs DFS with a recursion-stack set over deps (interpreted as
// key depends-on each value) and returns every cycle found, each as an
// ordered list of node ids. Handles disconnected components.
func DetectCycles(deps map[string][]string) [][]string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var stack []string
	var cycles [][]string

	nodes := nodeSet(deps)

	var visit func(n string)
	visit = func(n string) {
		color[n] = gray
		stack = append(stack, n)
		// Sort prerequisites for deterministic cycle-reporting order.
		prereqs := append([]string(nil), deps[n]...)
		sort.Strings(prereqs)
		for _, p := range prereqs {
			switch color[p] {
			case white:
				visit(p)
			case gray:
				// Found a back-edge to p, still on the stack: emit the cycle
				// starting at p's position.
				for i, s := range stack {
					if s == p {
						cycle := append([]string(nil), stack[i:]...)
						cycle = append(cycle, p)
						cycles = append(cycles, cycle)
						break
					}
				}
			case black:
				// Already fully explored, not part of a new cycle via n.
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
	}

	sortedNodes := make([]string, 0, len(nodes))
	for n := range nodes {
		sortedNodes = append(sortedNodes, n)
	}
	sort.Strings(sortedNodes)
	for _, n := range sortedNodes {
		if color[n] == white {
			visit(n)
		}
	}
	return cycles
}

func nodeSet(deps map[string][]string) map[string]struct{} {
	nodes := make(map[string]struct{})
	for k, vs := range deps {
		nodes[k] = struct{}{}
		for _, v := range vs {
			nodes[v] = struct{}{}
		}
	}
	return nodes
}

func sortedKeys(deps map[string][]string) []string {
	keys := make([]string, 0, len(deps))
	for k := range deps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Order produces a total order over ids consistent with deps (every
// prerequisite of x precedes x), using Kahn's algorithm with deterministic
// lexicographic tie-breaking among ready nodes. Never mutates the caller's
// map. Fails with a dependency-error Kind if deps references unknown ids or
// contains a cycle.
func Order(deps map[string][]string, ids []string) ([]string, error) {
	if problems := Validate(deps, ids); len(problems) > 0 {
		return nil, errs.Errorf(errs.KindDependencyError, "invalid dependency graph: %d problem(s), first: %+v", len(problems), problems[0])
	}
	if cycles := DetectCycles(deps); len(cycles) > 0 {
		return nil, errs.Errorf(errs.KindDependencyError, "cycle detected: %v", cycles[0])
	}

	// Defensive copy of the adjacency (prerequisite -> dependents) and
	// in-degree (number of unmet prerequisites) built from a copy of deps.
	inDegree := make(map[string]int, len(ids))
	dependents := make(map[string][]string, len(ids))
	for _, id := range ids {
		inDegree[id] = 0
	}
	for key, prereqs := range deps {
		inDegree[key] = len(prereqs)
		for _, p := range prereqs {
			dependents[p] = append(dependents[p], key)
		}
	}

	ready := make([]string, 0, len(ids))
	for _, id := range ids {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(ids))
	for len(ready) > 0 {
		sort.Strings(ready)
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		next := append([]string(nil), dependents[n]...)
		sort.Strings(next)
		for _, d := range next {
			inDegree[d]--
			if inDegree[d] == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(order) != len(ids) {
		// Should be unreachable given the cycle check above, kept as a
		// defensive guard against an inconsistent ids/deps pairing.
		return nil, errs.New(errs.KindDependencyError, "dependency graph did not resolve to a total order")
	}
	return order, nil
}
