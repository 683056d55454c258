package decision

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// EngineOptions tune answer resolution.
type EngineOptions struct {
	// OverwriteOnRematch lets a later text match replace an already
	// recorded answer, supporting user corrections mid-session. When
	// false, the first recorded answer sticks.
	OverwriteOnRematch bool
}

// Engine walks decision graphs for user sessions. Session state is not
// stored as a cursor: the current node is derived each call by replaying
// recorded answers from the root, so overwritten answers reroute the
// walk naturally.
type Engine struct {
	registry *Registry
	store    SessionStore
	opts     EngineOptions
	log      *zap.Logger
}

// NewEngine returns an engine over the given registry and session store.
func NewEngine(registry *Registry, store SessionStore, opts EngineOptions, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{registry: registry, store: store, opts: opts, log: log}
}

// Detect reports which graph the message activates, if any.
func (e *Engine) Detect(message, stageHint string) string {
	return e.registry.Detect(message, stageHint)
}

// RecordAnswer writes or overwrites one answer. Unknown graphs and nodes
// are ignored rather than rejected: a stale quick-reply from a removed
// graph should not surface an error to the user.
func (e *Engine) RecordAnswer(userID, graphID, nodeID, answer string) {
	g := e.registry.Get(graphID)
	if g == nil {
		return
	}
	if _, ok := g.Nodes[nodeID]; !ok {
		return
	}
	e.store.Record(userID, graphID, nodeID, answer)
	e.log.Info("recorded graph answer",
		zap.String("user_id", userID),
		zap.String("graph_id", graphID),
		zap.String("node_id", nodeID),
		zap.String("answer", answer))
}

// ClearSession drops recorded answers for one graph, or all graphs when
// graphID is empty.
func (e *Engine) ClearSession(userID, graphID string) {
	e.store.Clear(userID, graphID)
}

// GetNextQuestion resolves what it can from the message and profile,
// records the resolved answers, then walks from the root and returns the
// first unanswered node as a question. A nil return means the walk
// reached COMPLETE (or the graph is unknown).
func (e *Engine) GetNextQuestion(graphID, userID string, profile ProfileSource, message string) *Question {
	g := e.registry.Get(graphID)
	if g == nil {
		return nil
	}

	known := e.store.Answers(userID, graphID)
	e.resolveAnswers(g, userID, known, profile, message)

	current := g.Root
	answered := 0
	total := len(g.Nodes)
	for current != CompleteNode {
		node, ok := g.Nodes[current]
		if !ok {
			return nil
		}
		answer, ok := known[current]
		if !ok {
			q := &Question{
				GraphID:   graphID,
				NodeID:    current,
				Prompt:    node.Prompt,
				Options:   node.Options,
				Rationale: fmt.Sprintf("这会影响：%s", strings.Join(node.Affects, "、")),
				Total:     total,
				Answered:  answered,
			}
			if total > 0 {
				q.Progress = float64(answered) / float64(total)
			}
			return q
		}
		answered++
		current = node.Next.Next(answer)
	}
	return nil
}

// resolveAnswers fills known from the message and profile, recording
// whatever it resolves. Text matching runs over every node so an answer
// volunteered ahead of its question still counts; profile matching only
// fills nodes with a bound field.
func (e *Engine) resolveAnswers(g *Graph, userID string, known map[string]string, profile ProfileSource, message string) {
	if message != "" {
		for nodeID, node := range g.Nodes {
			if _, ok := known[nodeID]; ok && !e.opts.OverwriteOnRematch {
				continue
			}
			answer, ok := MatchText(node, message)
			if !ok || known[nodeID] == answer {
				continue
			}
			known[nodeID] = answer
			e.store.Record(userID, g.ID, nodeID, answer)
			e.log.Debug("matched answer from message",
				zap.String("user_id", userID),
				zap.String("graph_id", g.ID),
				zap.String("node_id", nodeID),
				zap.String("answer", answer))
		}
	}
	if profile != nil {
		for nodeID, node := range g.Nodes {
			if _, ok := known[nodeID]; ok {
				continue
			}
			answer, ok := MatchProfile(node, profile)
			if !ok {
				continue
			}
			known[nodeID] = answer
			e.store.Record(userID, g.ID, nodeID, answer)
			e.log.Debug("matched answer from profile",
				zap.String("user_id", userID),
				zap.String("graph_id", g.ID),
				zap.String("node_id", nodeID),
				zap.String("answer", answer))
		}
	}
}

// RecommendationContext replays the session from the root and, only when
// every node on the path is answered, packages the answers for prompt
// injection. A partially answered graph returns nil.
func (e *Engine) RecommendationContext(graphID, userID string) *Recommendation {
	g := e.registry.Get(graphID)
	if g == nil {
		return nil
	}
	known := e.store.Answers(userID, graphID)

	var path []AnswerPair
	current := g.Root
	for current != CompleteNode {
		node, ok := g.Nodes[current]
		if !ok {
			return nil
		}
		answer, ok := known[current]
		if !ok {
			return nil
		}
		path = append(path, AnswerPair{NodeID: current, Prompt: node.Prompt, Answer: answer})
		current = node.Next.Next(answer)
	}

	lines := []string{fmt.Sprintf("【%s——用户已确认的信息】", g.Name)}
	var factors []string
	seen := make(map[string]bool)
	for _, pair := range path {
		lines = append(lines, fmt.Sprintf("- %s → %s", pair.Prompt, pair.Answer))
		for _, affect := range g.Nodes[pair.NodeID].Affects {
			if !seen[affect] {
				seen[affect] = true
				factors = append(factors, affect)
			}
		}
	}
	lines = append(lines, "",
		"请根据以上用户确认的信息，给出具体的、个性化的推荐。",
		"不要再反问以上已确认的问题，直接给建议。")

	return &Recommendation{
		GraphID:    graphID,
		Answers:    path,
		KeyFactors: factors,
		Context:    strings.Join(lines, "\n"),
	}
}
