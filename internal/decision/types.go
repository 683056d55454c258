package decision

import (
	"errors"
	"fmt"
	"regexp"
)

// CompleteNode is the sentinel transition target marking the end of a graph.
const CompleteNode = "COMPLETE"

// Common errors for graph catalogue loading. All are load-time failures;
// request-time lookups never return errors, only nil/empty results.
var (
	ErrEmptyCatalogue     = errors.New("graph catalogue is empty")
	ErrDuplicateGraph     = errors.New("duplicate graph id")
	ErrMissingRoot        = errors.New("graph root node not found")
	ErrUnreachableNode    = errors.New("node not reachable from root")
	ErrDanglingTransition = errors.New("transition target is not a node in the graph")
	ErrAmbiguousFallback  = errors.New("node declares both default and all fallback transitions")
	ErrNoOptions          = errors.New("node has no options")
)

// Transition is the typed three-case answer-conditioned transition rule.
// Resolution priority is fixed: Exact match on the answer, then Default,
// then All, then COMPLETE. Default and All are mutually exclusive on one
// node; both present is a load-time validation error.
type Transition struct {
	Exact   map[string]string `yaml:"exact"`
	Default string            `yaml:"default"`
	All     string            `yaml:"all"`
}

// Next resolves the follow-up node ID for an answer.
func (t Transition) Next(answer string) string {
	if next, ok := t.Exact[answer]; ok {
		return next
	}
	if t.Default != "" {
		return t.Default
	}
	if t.All != "" {
		return t.All
	}
	return CompleteNode
}

// targets returns every node ID this transition can reach.
func (t Transition) targets() []string {
	out := make([]string, 0, len(t.Exact)+2)
	for _, next := range t.Exact {
		out = append(out, next)
	}
	if t.Default != "" {
		out = append(out, t.Default)
	}
	if t.All != "" {
		out = append(out, t.All)
	}
	return out
}

// Node is one question: its prompt, ordered options, transition rule,
// optional profile binding, and per-option keyword patterns for matching
// answers out of free text.
type Node struct {
	ID      string   `yaml:"id"`
	Prompt  string   `yaml:"prompt"`
	Options []string `yaml:"options"`
	// Affects lists what this answer influences; joined into the
	// question rationale and deduplicated into recommendation key factors.
	Affects []string   `yaml:"affects"`
	Next    Transition `yaml:"next"`
	// ProfileField optionally binds this node to a profile field so an
	// answer can be resolved without asking.
	ProfileField string `yaml:"profile_field"`
	// Keywords maps an option label to regex patterns that resolve it
	// from a user message when the label itself does not appear.
	Keywords map[string][]string `yaml:"keywords"`

	compiled map[string][]*regexp.Regexp
}

// compile precompiles keyword patterns. Invalid patterns fail loading.
func (n *Node) compile() error {
	if len(n.Keywords) == 0 {
		return nil
	}
	n.compiled = make(map[string][]*regexp.Regexp, len(n.Keywords))
	for option, patterns := range n.Keywords {
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return fmt.Errorf("node %s option %q: invalid keyword pattern %q: %w", n.ID, option, p, err)
			}
			n.compiled[option] = append(n.compiled[option], re)
		}
	}
	return nil
}

// Graph is one decision graph: a root and a set of nodes, all reachable.
type Graph struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Category string  `yaml:"category"`
	Triggers []string `yaml:"triggers"`
	Root     string  `yaml:"root"`
	Nodes    map[string]*Node `yaml:"nodes"`
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id string) *Node {
	return g.Nodes[id]
}

// validate checks structural invariants: root presence, reachability of
// every node, no dangling transition targets, no ambiguous fallbacks.
func (g *Graph) validate() error {
	if g.ID == "" {
		return errors.New("graph id cannot be empty")
	}
	root := g.Nodes[g.Root]
	if root == nil {
		return fmt.Errorf("graph %s: %w: %q", g.ID, ErrMissingRoot, g.Root)
	}

	for id, node := range g.Nodes {
		if node.ID == "" {
			node.ID = id
		} else if node.ID != id {
			return fmt.Errorf("graph %s: node key %q does not match node id %q", g.ID, id, node.ID)
		}
		if len(node.Options) == 0 {
			return fmt.Errorf("graph %s node %s: %w", g.ID, id, ErrNoOptions)
		}
		if node.Next.Default != "" && node.Next.All != "" {
			return fmt.Errorf("graph %s node %s: %w", g.ID, id, ErrAmbiguousFallback)
		}
		for _, target := range node.Next.targets() {
			if target == CompleteNode {
				continue
			}
			if _, ok := g.Nodes[target]; !ok {
				return fmt.Errorf("graph %s node %s: %w: %q", g.ID, id, ErrDanglingTransition, target)
			}
		}
		if err := node.compile(); err != nil {
			return fmt.Errorf("graph %s: %w", g.ID, err)
		}
	}

	// Breadth-first reachability from root.
	seen := map[string]bool{g.Root: true}
	queue := []string{g.Root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, target := range g.Nodes[current].Next.targets() {
			if target == CompleteNode || seen[target] {
				continue
			}
			seen[target] = true
			queue = append(queue, target)
		}
	}
	for id := range g.Nodes {
		if !seen[id] {
			return fmt.Errorf("graph %s: %w: %q", g.ID, ErrUnreachableNode, id)
		}
	}

	return nil
}

// Question describes the next unanswered node for a session, ready to be
// surfaced as a guided prompt with quick-reply options.
type Question struct {
	GraphID   string
	NodeID    string
	Prompt    string
	Options   []string
	Rationale string
	// Progress is answeredNodes / totalNodes over the whole graph.
	Progress float64
	Total    int
	Answered int
}

// AnswerPair is one resolved question/answer on the traversal path.
type AnswerPair struct {
	NodeID string
	Prompt string
	Answer string
}

// Recommendation is the fully-collected context for a completed graph,
// intended for direct inclusion in a generation prompt. It is only
// produced when every node on the root->COMPLETE path is answered.
type Recommendation struct {
	GraphID string
	// Answers are in traversal order from the root.
	Answers []AnswerPair
	// KeyFactors are the deduplicated affects tags along the path.
	KeyFactors []string
	// Context is the synthesized natural-language summary.
	Context string
}
