package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestExtractor() *Extractor {
	return NewExtractor(zap.NewNop())
}

func TestExtractor_HouseArea(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		want    float64
		ok      bool
	}{
		{name: "plain sqm", message: "我家89平米，预算怎么分配", want: 89, ok: true},
		{name: "sqm symbol", message: "120㎡的新房", want: 120, ok: true},
		{name: "after keyword", message: "房子大概110左右", want: 110, ok: true},
		{name: "too small rejected", message: "阳台5平米怎么利用", ok: false},
		{name: "too large rejected", message: "小区一共9000平方", ok: false},
		{name: "no number", message: "想了解下瓷砖", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewSnapshot("u1")
			newTestExtractor().Update(s, tt.message)
			if !tt.ok {
				assert.Nil(t, s.HouseArea)
				return
			}
			require.NotNil(t, s.HouseArea)
			assert.Equal(t, tt.want, *s.HouseArea)
		})
	}
}

func TestExtractor_HouseAreaFillIfEmpty(t *testing.T) {
	t.Parallel()

	s := NewSnapshot("u1").SetHouseArea(95)
	newTestExtractor().Update(s, "朋友家120平米装得不错")
	require.NotNil(t, s.HouseArea)
	assert.Equal(t, 95.0, *s.HouseArea, "existing area must not be overwritten")
}

func TestExtractor_Budget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		message  string
		wantLow  float64
		wantHigh float64
		ok       bool
	}{
		{name: "explicit range", message: "预算大概15-20万", wantLow: 150000, wantHigh: 200000, ok: true},
		{name: "single value band", message: "预算20万", wantLow: 160000, wantHigh: 240000, ok: true},
		{name: "value before keyword", message: "30万的预算够吗", wantLow: 240000, wantHigh: 360000, ok: true},
		{name: "plan phrasing", message: "打算花25万装修", wantLow: 200000, wantHigh: 300000, ok: true},
		{name: "implausibly large", message: "预算8000万", ok: false},
		{name: "no budget", message: "瓷砖哪种好", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewSnapshot("u1")
			newTestExtractor().Update(s, tt.message)
			if !tt.ok {
				assert.Nil(t, s.BudgetRange)
				return
			}
			require.NotNil(t, s.BudgetRange)
			assert.InDelta(t, tt.wantLow, s.BudgetRange.Low, 0.01)
			assert.InDelta(t, tt.wantHigh, s.BudgetRange.High, 0.01)
		})
	}
}

func TestExtractor_Styles(t *testing.T) {
	t.Parallel()

	s := NewSnapshot("u1")
	newTestExtractor().Update(s, "喜欢现代简约，也看了些北欧风的案例")
	assert.Equal(t, []string{"现代简约", "北欧"}, s.PreferredStyles)

	// Fill-if-empty.
	newTestExtractor().Update(s, "日式原木也不错")
	assert.Equal(t, []string{"现代简约", "北欧"}, s.PreferredStyles)
}

func TestExtractor_Family(t *testing.T) {
	t.Parallel()

	s := NewSnapshot("u1")
	newTestExtractor().Update(s, "家里有个3岁的宝宝，还养了一只猫")
	assert.True(t, s.Family.HasChildren)
	assert.True(t, s.Family.HasPets)
	assert.False(t, s.Family.HasElderly)

	newTestExtractor().Update(s, "父母也会一起住")
	assert.True(t, s.Family.HasElderly)
}

func TestExtractor_BrandSentiment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		brand   string
		want    Sentiment
	}{
		{name: "positive cue", message: "邻居说东鹏不错", brand: "东鹏", want: SentimentPositive},
		{name: "negative cue", message: "马可波罗买了有点后悔", brand: "马可波罗", want: SentimentNegative},
		{name: "no cue", message: "去看了圣象的店", brand: "圣象", want: SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewSnapshot("u1")
			newTestExtractor().Update(s, tt.message)
			require.Len(t, s.BrandMentions, 1)
			assert.Equal(t, tt.brand, s.BrandMentions[0].Brand)
			assert.Equal(t, tt.want, s.BrandMentions[0].Sentiment)
		})
	}
}

func TestExtractor_BrandDedup(t *testing.T) {
	t.Parallel()

	s := NewSnapshot("u1")
	ex := newTestExtractor()
	ex.Update(s, "看了东鹏的砖")
	ex.Update(s, "东鹏到底怎么样")
	assert.Len(t, s.BrandMentions, 1)
}

func TestExtractor_Spending(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		message  string
		category string
		amount   float64
		isTotal  bool
	}{
		{name: "wan total", message: "瓷砖花了1.5万", category: "瓷砖", amount: 15000, isTotal: true},
		{name: "wan with trailing digit", message: "橱柜3万8定下来了", category: "橱柜", amount: 38000, isTotal: true},
		{name: "unit price", message: "地砖选的80元/片那款", category: "地砖", amount: 80, isTotal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewSnapshot("u1")
			newTestExtractor().Update(s, tt.message)
			require.NotEmpty(t, s.Spending)
			sp := s.Spending[0]
			assert.Equal(t, tt.category, sp.Category)
			assert.Equal(t, tt.amount, sp.Amount)
			assert.Equal(t, tt.isTotal, sp.IsTotal)
		})
	}
}

func TestExtractor_SpendingDoesNotCrossClause(t *testing.T) {
	t.Parallel()

	// The amount in the second clause belongs to the cabinet, not the tile.
	s := NewSnapshot("u1")
	newTestExtractor().Update(s, "瓷砖已经买好了，橱柜花了3万")
	for _, sp := range s.Spending {
		assert.NotEqual(t, "瓷砖", sp.Category)
	}
}

func TestExtractor_Decisions(t *testing.T) {
	t.Parallel()

	s := NewSnapshot("u1")
	newTestExtractor().Update(s, "地板选了大自然的")
	require.NotEmpty(t, s.Decisions)
	assert.Equal(t, "item_decided", s.Decisions[0].Kind)

	newTestExtractor().Update(s, "水电已经做完了")
	found := false
	for _, d := range s.Decisions {
		if d.Kind == "work_completed" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestExtractor_PainPoints(t *testing.T) {
	t.Parallel()

	s := NewSnapshot("u1")
	newTestExtractor().Update(s, "快超预算了，而且瓦工贴的砖有空鼓")
	require.Len(t, s.PainPoints, 2)
	kinds := map[string]float64{}
	for _, p := range s.PainPoints {
		kinds[p.Kind] = p.Severity
	}
	assert.Equal(t, 0.8, kinds["预算"])
	assert.Equal(t, 0.9, kinds["质量"])
}

func TestExtractor_UpdateReportsChange(t *testing.T) {
	t.Parallel()

	s := NewSnapshot("u1")
	ex := newTestExtractor()
	assert.True(t, ex.Update(s, "89平米，预算15万"))
	assert.False(t, ex.Update(s, "今天天气不错"))
}
