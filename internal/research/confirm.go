package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/renovad/internal/memory"
)

// Actions emitted by the confirmation handshake.
type Action string

const (
	// ActionConfirm asks the user whether to run a report.
	ActionConfirm Action = "confirm"
	// ActionRun means the user accepted; run the stored query.
	ActionRun Action = "run"
	// ActionDecline means the user declined; answer the stored query
	// normally.
	ActionDecline Action = "decline"
)

// Exact phrase sets for the handshake. Matching is full-message
// equality after trimming trailing punctuation.
var (
	confirmPhrases = map[string]bool{
		"好的，帮我研究一下": true, "好的": true, "帮我研究一下": true,
		"帮我研究": true, "研究一下": true, "可以": true, "行": true,
		"嗯": true, "是的": true, "没问题": true, "好": true,
		"ok": true, "OK": true,
	}
	declinePhrases = map[string]bool{
		"不用了，简单回答就行": true, "不用了": true, "不需要": true,
		"算了": true, "简单回答就行": true, "简单回答": true,
		"不用": true, "别了": true,
	}
)

// PendingResearch is the serialized handshake state held in working
// memory between the confirm prompt and the user's next message.
type PendingResearch struct {
	OriginalQuery string `json:"original_query"`
	ResearchType  string `json:"research_type"`
}

// Outcome is the result of one handshake step.
type Outcome struct {
	Action          Action
	ConfirmationMsg string
	OriginalQuery   string
	ResearchType    string
}

// Coordinator drives the trigger/confirmation state machine. State
// lives entirely in the working store, so a NONE session has no record
// and PENDING is the presence of a serialized PendingResearch. Callers
// must serialize steps per session.
type Coordinator struct {
	working memory.WorkingStore
	log     *zap.Logger
}

// NewCoordinator returns a coordinator over the given working store.
func NewCoordinator(working memory.WorkingStore, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{working: working, log: log}
}

// Step advances the handshake for one user message. A nil outcome means
// the message is unrelated to research and normal processing should
// continue; whenever the session was PENDING, the pending record is
// cleared regardless of what the user said.
func (c *Coordinator) Step(ctx context.Context, sessionID, message string) (*Outcome, error) {
	raw, err := c.working.Get(ctx, sessionID, memory.KeyPendingResearch)
	if err != nil {
		return nil, fmt.Errorf("reading pending research: %w", err)
	}

	if raw != "" {
		return c.resolvePending(ctx, sessionID, raw, message)
	}

	detection := DetectTrigger(message)
	if detection == nil {
		return nil, nil
	}
	pending, err := json.Marshal(PendingResearch{
		OriginalQuery: detection.OriginalQuery,
		ResearchType:  detection.ResearchType,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding pending research: %w", err)
	}
	if err := c.working.Set(ctx, sessionID, memory.KeyPendingResearch, string(pending)); err != nil {
		return nil, fmt.Errorf("storing pending research: %w", err)
	}
	c.log.Info("research trigger detected",
		zap.String("session_id", sessionID),
		zap.String("research_type", detection.ResearchType))
	return &Outcome{
		Action:          ActionConfirm,
		ConfirmationMsg: detection.ConfirmationMsg,
		OriginalQuery:   detection.OriginalQuery,
		ResearchType:    detection.ResearchType,
	}, nil
}

func (c *Coordinator) resolvePending(ctx context.Context, sessionID, raw, message string) (*Outcome, error) {
	// Any answer resolves the handshake, so clear first.
	if err := c.working.Set(ctx, sessionID, memory.KeyPendingResearch, ""); err != nil {
		return nil, fmt.Errorf("clearing pending research: %w", err)
	}

	var pending PendingResearch
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		c.log.Warn("dropping malformed pending research",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, nil
	}

	normalized := strings.TrimRight(strings.TrimSpace(message), "。.！!~")
	switch {
	case confirmPhrases[normalized]:
		c.log.Info("research confirmed",
			zap.String("session_id", sessionID),
			zap.String("research_type", pending.ResearchType))
		return &Outcome{
			Action:        ActionRun,
			OriginalQuery: pending.OriginalQuery,
			ResearchType:  pending.ResearchType,
		}, nil
	case declinePhrases[normalized]:
		return &Outcome{
			Action:        ActionDecline,
			OriginalQuery: pending.OriginalQuery,
			ResearchType:  pending.ResearchType,
		}, nil
	default:
		// The user moved on; the message gets normal processing.
		return nil, nil
	}
}
