package orchestrator

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/renovad/internal/decision"
	"github.com/fyrsmithlabs/renovad/internal/memory"
	"github.com/fyrsmithlabs/renovad/internal/retrieval"
)

const systemPrompt = `你是一位经验丰富的装修顾问，帮助普通业主做出靠谱的装修决策。
- 用口语化、像朋友聊天的方式回答，不要堆砌术语。
- 回答要具体可操作：给出价格区间、材料等级、施工顺序这类能直接用的信息。
- 不确定的事情直说不确定，不要编造数据。
- 用户已经确定的信息不要反复追问。`

// Limits on how much of each context source goes into the prompt.
const (
	maxKnowledgeDocs  = 5
	maxKnowledgeRunes = 800
	maxMemoryItems    = 3
	maxHistoryTurns   = 10
)

// buildPrompt composes the single generation prompt for a turn: system
// role and profile first, then supplementary context the model can
// cite, then recent history, then the user's message.
func buildPrompt(tc *TurnContext, rules *RuleSet, message string) string {
	var b strings.Builder
	b.WriteString(systemPrompt)

	if tc.Profile != nil {
		if summary := tc.Profile.Summary(); summary != "" {
			b.WriteString("\n\n## 当前用户信息（必须基于以下信息个性化回答，已知的不要再问）\n")
			b.WriteString(summary)
		}
	}

	if supplementary := buildSupplementary(tc, rules, message); supplementary != "" {
		b.WriteString("\n\n")
		b.WriteString(supplementary)
	}

	if history := renderHistory(tc.History); history != "" {
		b.WriteString("\n\n## 最近对话\n")
		b.WriteString(history)
	}

	b.WriteString("\n\n用户：")
	b.WriteString(message)
	return b.String()
}

// buildSupplementary collects the context sections the model should
// weave into its answer. Sections are ordered by how directly they
// shape the response: safety warnings and guidance first, then facts.
func buildSupplementary(tc *TurnContext, rules *RuleSet, message string) string {
	var parts []string

	if warnings := rules.PitfallWarnings(message); len(warnings) > 0 {
		PitfallWarningsTotal.Add(float64(len(warnings)))
		parts = append(parts,
			"【避坑预警——请在回答中自然地融入以下提醒，语气像朋友善意提醒，不要生硬罗列】\n"+
				strings.Join(warnings, "\n"))
	}

	if guidance := rules.ProactiveGuidance(tc.Profile, tc.Stage, message); guidance != "" {
		parts = append(parts, guidance)
	}

	if tc.Stage != "" {
		parts = append(parts, "当前装修阶段: "+tc.Stage)
	}

	if !tc.Tools.Empty() {
		parts = append(parts,
			"以下是根据用户情况计算的数据，请在回答中自然地引用这些数据：\n"+tc.Tools.Summary())
	}

	if tc.Recommendation != nil {
		parts = append(parts, tc.Recommendation.Context)
	}

	if tc.Question != nil {
		parts = append(parts, fmt.Sprintf(
			"【决策引导】请在回答中自然地引出以下问题（不要生硬地列选项，用对话的方式问）：\n"+
				"问题：%s\n原因：%s\n"+
				"（选项会以快捷按钮形式展示给用户，你只需在回答中自然提到这个问题即可）",
			tc.Question.Prompt, tc.Question.Rationale))
	}

	if knowledge := renderKnowledge(tc.Knowledge); knowledge != "" {
		parts = append(parts, "参考信息（请优先使用以下内容回答，不要编造）:\n"+knowledge)
	}

	if recalled := renderRecall(tc.Recall); recalled != "" {
		parts = append(parts, "历史对话记忆（用户之前聊过的内容，可自然引用）:\n"+recalled)
	}

	return strings.Join(parts, "\n\n")
}

func renderKnowledge(results []retrieval.Result) string {
	if len(results) == 0 {
		return ""
	}
	if len(results) > maxKnowledgeDocs {
		results = results[:maxKnowledgeDocs]
	}
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, "- "+clipRunes(r.Content, maxKnowledgeRunes))
	}
	return strings.Join(lines, "\n")
}

func renderRecall(records []memory.Record) string {
	if len(records) == 0 {
		return ""
	}
	if len(records) > maxMemoryItems {
		records = records[:maxMemoryItems]
	}
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, fmt.Sprintf("- 用户曾问：%s... → 回答要点：%s...",
			clipRunes(r.Message, 80), clipRunes(r.Response, 120)))
	}
	return strings.Join(lines, "\n")
}

func renderHistory(turns []memory.Turn) string {
	if len(turns) == 0 {
		return ""
	}
	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		role := "用户"
		if t.Role == memory.RoleAssistant {
			role = "助手"
		}
		lines = append(lines, role+"："+t.Content)
	}
	return strings.Join(lines, "\n")
}

// researchQuickReplies are the canned handshake options shown with a
// research confirmation prompt. The texts are members of the exact
// confirm/decline phrase sets, so tapping one resolves the handshake.
func researchQuickReplies() []QuickReply {
	return []QuickReply{
		{Text: "好的，帮我研究一下"},
		{Text: "不用了，简单回答就行"},
	}
}

// decisionQuickReplies renders a question's options as tappable
// payloads in the dt:<graph>:<node>:<answer> format.
func decisionQuickReplies(q *decision.Question) []QuickReply {
	replies := make([]QuickReply, 0, len(q.Options))
	for _, opt := range q.Options {
		replies = append(replies, QuickReply{
			Text:    opt,
			Payload: decision.QuickReplyPayload(q.GraphID, q.NodeID, opt),
		})
	}
	return replies
}

func clipRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
