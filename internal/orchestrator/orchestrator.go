// Package orchestrator sequences one conversation turn: quick-reply
// decoding, context assembly, retrieval, tools, decision-graph
// guidance, the research handshake, generation, and memory writes, in
// a fixed order. The ordering is a contract: steps 2-5 absorb their
// own failures, generation failure is the only terminal one, and the
// memory write runs regardless of how the earlier steps went.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/renovad/internal/decision"
	"github.com/fyrsmithlabs/renovad/internal/generation"
	"github.com/fyrsmithlabs/renovad/internal/memory"
	"github.com/fyrsmithlabs/renovad/internal/profile"
	"github.com/fyrsmithlabs/renovad/internal/research"
	"github.com/fyrsmithlabs/renovad/internal/retrieval"
	"github.com/fyrsmithlabs/renovad/internal/stage"
	"github.com/fyrsmithlabs/renovad/internal/tools"
)

// User classes. Decision-graph guidance and the research handshake are
// consumer features; business sessions get plain answers.
const (
	UserTypeConsumer = "c_end"
	UserTypeBusiness = "b_end"
	UserTypeBoth     = "both"
)

// Retriever is the knowledge-base lookup the orchestrator consumes.
// *retrieval.Store satisfies it.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]retrieval.Result, error)
}

// Options toggle the optional per-turn collaborators.
type Options struct {
	// UserType gates the consumer-only steps; see the UserType
	// constants. Empty means consumer.
	UserType        string
	DecisionEnabled bool
	ResearchEnabled bool
	ToolsEnabled    bool
	MemoryEnabled   bool
	RetrievalTopK   int
}

func (o Options) consumerFacing() bool {
	return o.UserType == "" || o.UserType == UserTypeConsumer || o.UserType == UserTypeBoth
}

// Config wires an orchestrator's collaborators.
type Config struct {
	Options Options
	// Rules defaults to the embedded guidance rules when nil.
	Rules       *RuleSet
	Profiles    *profile.Store
	Engine      *decision.Engine
	Coordinator *research.Coordinator
	Pipeline    *research.Pipeline
	Generator   generation.Generator
	// Retriever may be nil; retrieval is then skipped.
	Retriever Retriever
	Working   memory.WorkingStore
	ShortTerm *memory.ShortTerm
	LongTerm  *memory.LongTerm
	Logger    *zap.Logger
}

// TurnRequest is one inbound user message.
type TurnRequest struct {
	UserID    string
	SessionID string
	Message   string
}

// TurnContext is the ephemeral aggregate a turn builds up and the
// generation prompt draws on. Discarded after the turn.
type TurnContext struct {
	UserID     string
	SessionID  string
	RawMessage string
	Profile    *profile.Snapshot
	Stage      string
	History    []memory.Turn
	Recall     []memory.Record
	Knowledge  []retrieval.Result
	Tools      tools.Results

	// Question is a pending decision-graph question; its quick
	// replies are emitted at the end of the turn.
	Question       *decision.Question
	Recommendation *decision.Recommendation
}

// Orchestrator processes turns. Turns for the same session must be
// serialized by the caller; turns across sessions may run concurrently.
type Orchestrator struct {
	opts        Options
	rules       *RuleSet
	profiles    *profile.Store
	extractor   *profile.Extractor
	engine      *decision.Engine
	coordinator *research.Coordinator
	pipeline    *research.Pipeline
	gen         generation.Generator
	retriever   Retriever
	working     memory.WorkingStore
	shortTerm   *memory.ShortTerm
	longTerm    *memory.LongTerm
	log         *zap.Logger
}

// New validates the wiring and returns an orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Generator == nil {
		return nil, errors.New("orchestrator requires a generator")
	}
	if cfg.Profiles == nil {
		return nil, errors.New("orchestrator requires a profile store")
	}
	if cfg.Options.DecisionEnabled && cfg.Engine == nil {
		return nil, errors.New("decision step enabled without an engine")
	}
	if cfg.Options.ResearchEnabled && (cfg.Coordinator == nil || cfg.Pipeline == nil) {
		return nil, errors.New("research step enabled without coordinator and pipeline")
	}
	if (cfg.Options.DecisionEnabled || cfg.Options.ResearchEnabled) && cfg.Working == nil {
		return nil, errors.New("decision/research steps require a working store")
	}
	if cfg.Options.MemoryEnabled && (cfg.ShortTerm == nil || cfg.LongTerm == nil) {
		return nil, errors.New("memory enabled without short/long-term stores")
	}
	rules := cfg.Rules
	if rules == nil {
		var err error
		if rules, err = NewRuleSet(); err != nil {
			return nil, fmt.Errorf("loading guidance rules: %w", err)
		}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Options.RetrievalTopK <= 0 {
		cfg.Options.RetrievalTopK = maxKnowledgeDocs
	}
	return &Orchestrator{
		opts:        cfg.Options,
		rules:       rules,
		profiles:    cfg.Profiles,
		extractor:   profile.NewExtractor(log),
		engine:      cfg.Engine,
		coordinator: cfg.Coordinator,
		pipeline:    cfg.Pipeline,
		gen:         cfg.Generator,
		retriever:   cfg.Retriever,
		working:     cfg.Working,
		shortTerm:   cfg.ShortTerm,
		longTerm:    cfg.LongTerm,
		log:         log,
	}, nil
}

// ProcessTurn runs one turn, emitting events in render order. The
// returned error is terminal for the turn; a user-visible error event
// has already been emitted when it is non-nil.
func (o *Orchestrator) ProcessTurn(ctx context.Context, req TurnRequest, emit func(Event)) error {
	start := time.Now()
	defer func() {
		TurnDuration.Observe(time.Since(start).Seconds())
	}()

	// Step 1: quick-reply payload. The answer label stands in for the
	// message for the rest of the turn.
	message := req.Message
	payload, hasPayload := decision.ParsePayload(req.Message)
	if hasPayload {
		message = payload.Answer
	}

	// Step 2: turn context.
	tc := o.buildTurnContext(req, message)

	// Step 3: retrieval and tools, best-effort.
	if o.retriever != nil {
		results, err := o.retriever.Search(ctx, message, o.opts.RetrievalTopK)
		if err != nil {
			o.log.Warn("knowledge retrieval failed",
				zap.String("session_id", req.SessionID), zap.Error(err))
		} else {
			tc.Knowledge = results
		}
	}
	if o.opts.ToolsEnabled {
		tc.Tools = tools.Invoke(message, tc.Profile.HouseArea)
	}

	// Step 4: decision-graph guidance.
	if o.opts.DecisionEnabled && o.opts.consumerFacing() {
		o.decisionStep(ctx, tc, payload, hasPayload, message)
	}

	// Step 5: research handshake. Confirm and run short-circuit the
	// turn, but the memory write still happens.
	if o.opts.ResearchEnabled && o.opts.consumerFacing() {
		outcome, err := o.coordinator.Step(ctx, req.SessionID, message)
		if err != nil {
			o.log.Warn("research handshake failed",
				zap.String("session_id", req.SessionID), zap.Error(err))
		}
		if outcome != nil {
			ResearchOutcomes.WithLabelValues(string(outcome.Action)).Inc()
			switch outcome.Action {
			case research.ActionConfirm:
				emit(answerEvent(outcome.ConfirmationMsg))
				emit(Event{Type: EventQuickReplies, Replies: researchQuickReplies()})
				o.writeMemory(tc, message, outcome.ConfirmationMsg)
				TurnsTotal.WithLabelValues("ok").Inc()
				return nil
			case research.ActionRun:
				return o.runResearch(ctx, tc, outcome, emit)
			case research.ActionDecline:
				// Answer the stored question normally.
				message = outcome.OriginalQuery
			}
		}
	}

	// Step 6: generation. The only terminal step.
	prompt := buildPrompt(tc, o.rules, message)
	response, err := o.gen.Generate(ctx, prompt)
	if err != nil {
		emit(errorEvent("抱歉，生成回答时出了点问题，请稍后再试。"))
		o.writeMemory(tc, message, "")
		TurnsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("generating response: %w", err)
	}
	emit(answerEvent(response))

	// Step 7: memory write.
	o.writeMemory(tc, message, response)

	// Step 8: pending decision-graph quick replies.
	if tc.Question != nil {
		emit(Event{Type: EventQuickReplies, Replies: decisionQuickReplies(tc.Question)})
	}

	TurnsTotal.WithLabelValues("ok").Inc()
	return nil
}

func (o *Orchestrator) buildTurnContext(req TurnRequest, message string) *TurnContext {
	snap := o.profiles.GetOrCreate(req.UserID)
	st := stage.Detect(message)
	if st == "" {
		st = snap.Stage
	}
	tc := &TurnContext{
		UserID:     req.UserID,
		SessionID:  req.SessionID,
		RawMessage: req.Message,
		Profile:    snap,
		Stage:      st,
	}
	if o.opts.MemoryEnabled {
		tc.History = o.shortTerm.Recent(req.SessionID, maxHistoryTurns)
		tc.Recall = o.longTerm.Recall(req.UserID, maxMemoryItems)
	}
	return tc
}

// decisionStep resolves the active graph, records any answers the
// message carries, and leaves either the next question or the
// completed-graph recommendation on the turn context. Failures here
// never abort the turn.
func (o *Orchestrator) decisionStep(ctx context.Context, tc *TurnContext, payload decision.Payload, hasPayload bool, message string) {
	var graphID string
	if hasPayload {
		o.engine.RecordAnswer(tc.UserID, payload.GraphID, payload.NodeID, payload.Answer)
		graphID = payload.GraphID
	} else {
		graphID = o.engine.Detect(message, tc.Stage)
		if graphID == "" {
			stored, err := o.working.Get(ctx, tc.SessionID, memory.KeyActiveGraph)
			if err != nil {
				o.log.Warn("reading active graph failed",
					zap.String("session_id", tc.SessionID), zap.Error(err))
				return
			}
			graphID = stored
		}
		if graphID == "" {
			return
		}
	}

	if q := o.engine.GetNextQuestion(graphID, tc.UserID, tc.Profile, message); q != nil {
		tc.Question = q
		DecisionQuestionsTotal.Inc()
		o.setWorking(ctx, tc.SessionID, memory.KeyActiveGraph, graphID)
		return
	}
	if rec := o.engine.RecommendationContext(graphID, tc.UserID); rec != nil {
		tc.Recommendation = rec
	}
	o.setWorking(ctx, tc.SessionID, memory.KeyActiveGraph, "")
}

// runResearch streams a report and persists the stored original query
// with a bounded report summary. Cancellation takes effect between
// sections; whatever was produced is still written to memory.
func (o *Orchestrator) runResearch(ctx context.Context, tc *TurnContext, outcome *research.Outcome, emit func(Event)) error {
	in := research.Input{
		Query:          outcome.OriginalQuery,
		ResearchType:   outcome.ResearchType,
		ProfileSummary: tc.Profile.Summary(),
		Knowledge:      renderKnowledge(tc.Knowledge),
	}
	body, err := o.pipeline.Run(ctx, in, func(ev research.Event) {
		switch ev.Type {
		case research.EventProgress:
			emit(Event{Type: EventResearchProgress, Progress: ev.Progress})
		case research.EventReport:
			emit(Event{Type: EventResearchReport, Report: ev.Report})
		case research.EventAnswer:
			emit(answerEvent(ev.Text))
		}
	})

	summary := body
	if len([]rune(summary)) > 800 {
		summary = clipRunes(summary, 800) + "..."
	}
	o.writeMemory(tc, outcome.OriginalQuery, summary)

	if err != nil {
		TurnsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("research pipeline: %w", err)
	}
	TurnsTotal.WithLabelValues("ok").Inc()
	return nil
}

// writeMemory records the turn and folds profile signals from the user
// message back into the store.
func (o *Orchestrator) writeMemory(tc *TurnContext, message, response string) {
	if !o.opts.MemoryEnabled {
		return
	}
	o.shortTerm.Add(tc.SessionID, memory.RoleUser, message)
	if response != "" {
		o.shortTerm.Add(tc.SessionID, memory.RoleAssistant, response)
		o.longTerm.Add(tc.UserID, tc.SessionID, message, response)
	}
	o.profiles.Update(tc.UserID, func(s *profile.Snapshot) {
		o.extractor.Update(s, message)
		if st := stage.Detect(message); st != "" {
			s.SetStage(st)
		}
	})
}

func (o *Orchestrator) setWorking(ctx context.Context, sessionID, key, value string) {
	if err := o.working.Set(ctx, sessionID, key, value); err != nil {
		o.log.Warn("working memory write failed",
			zap.String("session_id", sessionID), zap.String("key", key), zap.Error(err))
	}
}
