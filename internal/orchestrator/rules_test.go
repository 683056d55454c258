package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/renovad/internal/profile"
)

func newTestRules(t *testing.T) *RuleSet {
	t.Helper()
	rs, err := NewRuleSet()
	require.NoError(t, err)
	return rs
}

func TestRuleSet_EmbeddedRulesLoad(t *testing.T) {
	t.Parallel()

	rs := newTestRules(t)
	assert.NotEmpty(t, rs.pitfalls)
	assert.NotEmpty(t, rs.deps)
	assert.Contains(t, rs.checklist, "准备")
	assert.Contains(t, rs.checklist, "施工")
}

func TestRuleSet_BadPatternFailsAtLoad(t *testing.T) {
	t.Parallel()

	_, err := NewRuleSetFromBytes([]byte("pitfalls:\n  - pattern: '(全包'\n    warning: w\n"))
	assert.Error(t, err)

	_, err = NewRuleSetFromBytes([]byte("topic_dependencies:\n  - trigger: '瓷砖'\n    requires:\n      - check: bogus\n        missing_hint: h\n"))
	assert.Error(t, err)
}

func TestRuleSet_PitfallWarnings(t *testing.T) {
	t.Parallel()

	rs := newTestRules(t)

	tests := []struct {
		name    string
		message string
		want    int
		excerpt string
	}{
		{
			name:    "acquaintance crew",
			message: "我想找熟人帮忙装修，便宜点",
			want:    1,
			excerpt: "熟人装修提醒",
		},
		{
			name:    "pay everything up front",
			message: "施工队说全款付清有优惠",
			want:    1,
			excerpt: "千万不要一次付清全款",
		},
		{
			name:    "skip waterproofing",
			message: "卫生间不做防水可以吗",
			want:    1,
			excerpt: "防水绝对不能省",
		},
		{
			name:    "harmless message",
			message: "客厅选什么颜色的窗帘好看",
			want:    0,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			warnings := rs.PitfallWarnings(tt.message)
			require.Len(t, warnings, tt.want)
			if tt.excerpt != "" {
				assert.Contains(t, warnings[0], tt.excerpt)
			}
		})
	}
}

func TestRuleSet_ProactiveGuidanceTopicHints(t *testing.T) {
	t.Parallel()

	rs := newTestRules(t)

	// Empty profile talking about tiles: budget, style, and
	// waterproofing prerequisites are all missing, capped at two.
	snap := profile.NewSnapshot("u1")
	guidance := rs.ProactiveGuidance(snap, "", "瓷砖应该怎么挑")
	require.NotEmpty(t, guidance)
	assert.Contains(t, guidance, "友情提醒")
	assert.Contains(t, guidance, "预算范围")
	assert.Contains(t, guidance, "整体风格")
	assert.NotContains(t, guidance, "闭水试验")
}

func TestRuleSet_ProactiveGuidanceSatisfiedPrereqsStayQuiet(t *testing.T) {
	t.Parallel()

	rs := newTestRules(t)

	snap := profile.NewSnapshot("u1")
	snap.SetBudgetRange(100000, 200000)
	snap.SetStyles("现代简约")
	snap.RecordDecision(profile.Decision{Text: "防水已经做完，闭水试验也过了"})

	guidance := rs.ProactiveGuidance(snap, "", "瓷砖应该怎么挑")
	assert.Empty(t, guidance)
}

func TestRuleSet_ProactiveGuidanceDecisionCheck(t *testing.T) {
	t.Parallel()

	rs := newTestRules(t)

	snap := profile.NewSnapshot("u1")
	snap.SetBudgetRange(100000, 200000)
	snap.SetStyles("现代简约")

	guidance := rs.ProactiveGuidance(snap, "", "准备贴瓷砖了")
	require.NotEmpty(t, guidance)
	assert.Contains(t, guidance, "闭水试验")
}

func TestRuleSet_ProactiveGuidanceStageFallback(t *testing.T) {
	t.Parallel()

	rs := newTestRules(t)

	// No topic rule fires, so the stage checklist supplies at most
	// one reminder.
	snap := profile.NewSnapshot("u1")
	guidance := rs.ProactiveGuidance(snap, "准备", "最近有点纠结")
	require.NotEmpty(t, guidance)
	assert.Contains(t, guidance, "阶段提醒")
	assert.Contains(t, guidance, "总预算")
	assert.NotContains(t, guidance, "装修方式")
}

func TestRuleSet_ProactiveGuidanceQuietCases(t *testing.T) {
	t.Parallel()

	rs := newTestRules(t)
	snap := profile.NewSnapshot("u1")

	assert.Empty(t, rs.ProactiveGuidance(snap, "", "嗯"), "short messages stay quiet")
	assert.Empty(t, rs.ProactiveGuidance(nil, "准备", "预算怎么定"), "nil profile stays quiet")
	assert.Empty(t, rs.ProactiveGuidance(snap, "入住", "最近有点纠结"), "stage without checklist stays quiet")
}
