package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectTrigger_ProductComparison(t *testing.T) {
	t.Parallel()

	d := DetectTrigger("东鹏和马可波罗哪个好")
	require.NotNil(t, d)
	assert.Equal(t, TypeProductComparison, d.ResearchType)
	assert.Equal(t, []string{"东鹏", "马可波罗"}, d.Entities)
	assert.Contains(t, d.ConfirmationMsg, "东鹏 vs 马可波罗")
	assert.Equal(t, "东鹏和马可波罗哪个好", d.OriginalQuery)
}

func TestDetectTrigger_ComparisonExclusions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
	}{
		{name: "spatial nouns", message: "客厅和卧室哪个好"},
		{name: "contracting modes", message: "全包与半包怎么选"},
		{name: "ordering question", message: "瓷砖和地板哪个该先买"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := DetectTrigger(tt.message)
			if d != nil {
				assert.NotEqual(t, TypeProductComparison, d.ResearchType)
			}
		})
	}
}

func TestDetectTrigger_OtherTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{name: "budget sufficiency", message: "15万够不够装89平", want: TypeBudgetPlanning},
		{name: "budget allocation", message: "预算20万怎么分配合理", want: TypeBudgetPlanning},
		{name: "quote review", message: "帮我看看这份报价合不合理", want: TypeQuoteReview},
		{name: "design review", message: "这个设计方案怎么样", want: TypeDesignReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := DetectTrigger(tt.message)
			require.NotNil(t, d)
			assert.Equal(t, tt.want, d.ResearchType)
		})
	}
}

func TestDetectTrigger_NoMatch(t *testing.T) {
	t.Parallel()

	assert.Nil(t, DetectTrigger("瓷砖怎么贴才平整"))
	assert.Nil(t, DetectTrigger("你好"))
}
