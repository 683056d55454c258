package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkingStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := NewWorkingStore()

	v, err := w.Get(ctx, "s1", KeyPendingResearch)
	require.NoError(t, err)
	assert.Empty(t, v, "absent key reads as empty")

	require.NoError(t, w.Set(ctx, "s1", KeyPendingResearch, `{"q":"x"}`))
	v, err = w.Get(ctx, "s1", KeyPendingResearch)
	require.NoError(t, err)
	assert.Equal(t, `{"q":"x"}`, v)

	// Sessions are isolated.
	v, err = w.Get(ctx, "s2", KeyPendingResearch)
	require.NoError(t, err)
	assert.Empty(t, v)

	// Setting empty deletes.
	require.NoError(t, w.Set(ctx, "s1", KeyPendingResearch, ""))
	all, err := w.All(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestShortTerm_Eviction(t *testing.T) {
	t.Parallel()

	st := NewShortTerm(3)
	st.Add("s1", "user", "one")
	st.Add("s1", "assistant", "two")
	st.Add("s1", "user", "three")
	st.Add("s1", "assistant", "four")

	turns := st.Recent("s1", 0)
	require.Len(t, turns, 3)
	assert.Equal(t, "two", turns[0].Content)
	assert.Equal(t, "four", turns[2].Content)

	last := st.Recent("s1", 2)
	require.Len(t, last, 2)
	assert.Equal(t, "three", last[0].Content)
}

func TestAssessImportance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		atLeast float64
		below   float64
	}{
		{name: "small talk", message: "你好", below: LongTermThreshold},
		{name: "concrete numbers", message: "我家89平米预算15万", atLeast: LongTermThreshold},
		{name: "decision", message: "瓷砖定了东鹏", atLeast: 0.7},
		{name: "explicit need", message: "想要现代简约的风格", below: LongTermThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			score := AssessImportance(tt.message, "好的")
			if tt.atLeast > 0 {
				assert.GreaterOrEqual(t, score, tt.atLeast)
			}
			if tt.below > 0 {
				assert.Less(t, score, tt.below)
			}
		})
	}
}

func TestLongTerm_AddAndRecall(t *testing.T) {
	t.Parallel()

	lt := NewLongTerm()
	assert.False(t, lt.Add("u1", "s1", "你好", "你好，有什么可以帮你"))
	assert.True(t, lt.Add("u1", "s1", "我家89平米，预算15万，瓷砖定了东鹏", "好的，按这个预算..."))
	assert.True(t, lt.Add("u1", "s2", "地板买了圣象的", "圣象的复合地板..."))

	records := lt.Recall("u1", 10)
	require.Len(t, records, 2)
	assert.Equal(t, "s2", records[0].SessionID, "newest first")
	assert.Empty(t, lt.Recall("u2", 10))
}

func TestLongTerm_TruncatesSummary(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("预算15万装修计划", 30)
	lt := NewLongTerm()
	require.True(t, lt.Add("u1", "s1", long, "回复"))
	records := lt.Recall("u1", 1)
	require.Len(t, records, 1)
	assert.True(t, strings.HasSuffix(records[0].Summary, "..."))
	assert.Less(t, len([]rune(records[0].Summary)), len([]rune(long)))
}
