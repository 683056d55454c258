package orchestrator

import (
	"github.com/fyrsmithlabs/renovad/internal/research"
)

// Event types emitted during a turn, in the order the client should
// render them.
const (
	EventAnswer           = "answer"
	EventQuickReplies     = "quick_replies"
	EventResearchProgress = "research_progress"
	EventResearchReport   = "research_report"
	EventError            = "error"
)

// QuickReply is one tappable option shown under a response. Payload is
// what the client sends back when tapped; when empty, Text is sent.
type QuickReply struct {
	Text    string `json:"text"`
	Payload string `json:"payload,omitempty"`
}

// Event is one output of a turn. Exactly one of the optional fields is
// set, according to Type.
type Event struct {
	Type string `json:"type"`

	// Text carries answer and error content.
	Text string `json:"text,omitempty"`

	Replies  []QuickReply           `json:"replies,omitempty"`
	Progress *research.Progress     `json:"progress,omitempty"`
	Report   *research.ReportHeader `json:"report,omitempty"`
}

func answerEvent(text string) Event {
	return Event{Type: EventAnswer, Text: text}
}

func errorEvent(text string) Event {
	return Event{Type: EventError, Text: text}
}
