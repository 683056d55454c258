package decision

import (
	"strings"
)

const payloadPrefix = "dt:"

// Payload is a decoded quick-reply in the form dt:<graphId>:<nodeId>:<answer>.
// The answer segment may itself contain colons.
type Payload struct {
	GraphID string
	NodeID  string
	Answer  string
}

// ParsePayload decodes a quick-reply payload, reporting false for
// anything that is not a well-formed payload (such messages are treated
// as ordinary text).
func ParsePayload(message string) (Payload, bool) {
	if !strings.HasPrefix(message, payloadPrefix) {
		return Payload{}, false
	}
	parts := strings.SplitN(message, ":", 4)
	if len(parts) < 4 {
		return Payload{}, false
	}
	p := Payload{GraphID: parts[1], NodeID: parts[2], Answer: parts[3]}
	if p.GraphID == "" || p.NodeID == "" || p.Answer == "" {
		return Payload{}, false
	}
	return p, true
}

// QuickReplyPayload renders the payload a client should send back when
// the user taps an option.
func QuickReplyPayload(graphID, nodeID, answer string) string {
	return payloadPrefix + graphID + ":" + nodeID + ":" + answer
}
