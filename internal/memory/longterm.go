package memory

import (
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// LongTermThreshold is the minimum importance for a turn to be kept
// across sessions.
const LongTermThreshold = 0.5

var concreteNumbers = regexp.MustCompile(`\d+(?:平米|㎡|万|元|块)`)

var (
	decisionWords = []string{"选了", "定了", "买了", "订了", "决定", "确认", "签了"}
	needWords     = []string{"想要", "需要", "希望", "打算", "计划", "要求", "必须"}
	brandWords    = []string{
		"东鹏", "马可波罗", "诺贝尔", "大自然", "圣象", "索菲亚",
		"欧派", "TOTO", "科勒", "方太", "老板", "立邦", "多乐士",
	}
)

// AssessImportance scores a conversation turn for long-term retention.
// Concrete numbers, decisions, brands, and explicit needs score high;
// small talk stays below the threshold.
func AssessImportance(message, response string) float64 {
	score := 0.3

	if concreteNumbers.MatchString(message) {
		score += 0.2
	}
	for _, w := range decisionWords {
		if strings.Contains(message, w) {
			score += 0.3
			break
		}
	}
	for _, b := range brandWords {
		if strings.Contains(message, b) {
			score += 0.15
			break
		}
	}
	for _, w := range needWords {
		if strings.Contains(message, w) {
			score += 0.1
			break
		}
	}
	if utf8.RuneCountInString(message) > 50 {
		score += 0.1
	}
	if utf8.RuneCountInString(response) > 500 {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Record is one retained conversation turn.
type Record struct {
	UserID     string
	SessionID  string
	Message    string
	Response   string
	Summary    string
	Importance float64
	At         time.Time
}

// LongTerm keeps important turns per user. Recall returns the most
// recent records first.
type LongTerm struct {
	mu      sync.RWMutex
	records map[string][]Record
}

// NewLongTerm returns an empty long-term store.
func NewLongTerm() *LongTerm {
	return &LongTerm{records: make(map[string][]Record)}
}

// Add retains the turn if its importance clears the threshold and
// reports whether it was kept. Responses are truncated to keep records
// bounded.
func (l *LongTerm) Add(userID, sessionID, message, response string) bool {
	importance := AssessImportance(message, response)
	if importance < LongTermThreshold {
		return false
	}

	summary := message
	if runes := []rune(message); len(runes) > 100 {
		summary = string(runes[:100]) + "..."
	}
	if runes := []rune(response); len(runes) > 500 {
		response = string(runes[:500])
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[userID] = append(l.records[userID], Record{
		UserID:     userID,
		SessionID:  sessionID,
		Message:    message,
		Response:   response,
		Summary:    summary,
		Importance: importance,
		At:         time.Now(),
	})
	return true
}

// Recall returns up to n of the user's most recent records, newest
// first.
func (l *LongTerm) Recall(userID string, n int) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	records := l.records[userID]
	if n <= 0 || n > len(records) {
		n = len(records)
	}
	out := make([]Record, 0, n)
	for i := len(records) - 1; i >= len(records)-n; i-- {
		out = append(out, records[i])
	}
	return out
}
