package decision

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed graphs.yaml
var defaultCatalogue []byte

// stageCategories maps a renovation stage to the graph category that
// receives a detection bonus when the caller supplies a stage hint.
var stageCategories = map[string]string{
	"准备": "whole_house",
	"设计": "whole_house",
	"施工": "construction",
	"软装": "materials",
}

// stageDetectBonus is added to a graph's trigger score when the stage
// hint maps to the graph's category.
const stageDetectBonus = 0.5

// Registry is the static catalogue of decision graphs. It is loaded once
// at startup and immutable afterwards, so lookups need no locking.
type Registry struct {
	graphs map[string]*Graph
	// order preserves registration order; ties in Detect keep the
	// earliest registered graph.
	order []string
}

// NewRegistry loads the embedded default graph catalogue.
func NewRegistry() (*Registry, error) {
	return NewRegistryFromBytes(defaultCatalogue)
}

// NewRegistryFromFile loads a graph catalogue from a YAML file,
// overriding the embedded defaults.
func NewRegistryFromFile(path string) (*Registry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph catalogue %s: %w", path, err)
	}
	return NewRegistryFromBytes(content)
}

// NewRegistryFromBytes parses and validates a YAML graph catalogue.
// Any structural defect is a fatal load-time error; a registry is never
// returned partially valid.
func NewRegistryFromBytes(content []byte) (*Registry, error) {
	var graphs []*Graph
	if err := yaml.Unmarshal(content, &graphs); err != nil {
		return nil, fmt.Errorf("failed to parse graph catalogue: %w", err)
	}
	if len(graphs) == 0 {
		return nil, ErrEmptyCatalogue
	}

	r := &Registry{
		graphs: make(map[string]*Graph, len(graphs)),
		order:  make([]string, 0, len(graphs)),
	}
	for _, g := range graphs {
		if err := g.validate(); err != nil {
			return nil, err
		}
		if _, ok := r.graphs[g.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateGraph, g.ID)
		}
		r.graphs[g.ID] = g
		r.order = append(r.order, g.ID)
	}
	return r, nil
}

// Get returns the graph with the given ID, or nil if unknown.
func (r *Registry) Get(graphID string) *Graph {
	return r.graphs[graphID]
}

// IDs returns all graph IDs in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Detect scores each graph by the count of its trigger keywords found as
// substrings of the message, plus a bonus when the stage hint maps to
// the graph's category. It returns the highest-scoring graph ID, or ""
// when nothing scores above zero. Ties keep the first graph registered.
func (r *Registry) Detect(message, stageHint string) string {
	lower := strings.ToLower(message)

	best := ""
	bestScore := 0.0
	for _, id := range r.order {
		g := r.graphs[id]
		score := 0.0
		for _, kw := range g.Triggers {
			if strings.Contains(lower, strings.ToLower(kw)) {
				score++
			}
		}
		if stageHint != "" && stageCategories[stageHint] == g.Category {
			score += stageDetectBonus
		}
		if score > bestScore {
			bestScore = score
			best = id
		}
	}
	if bestScore <= 0 {
		return ""
	}
	return best
}
