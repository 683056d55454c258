package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfile struct {
	numeric map[string]float64
	lists   map[string][]string
}

func (f fakeProfile) NumericField(name string) (float64, bool) {
	v, ok := f.numeric[name]
	return v, ok
}

func (f fakeProfile) ListField(name string) ([]string, bool) {
	v, ok := f.lists[name]
	return v, ok
}

func tileNode(t *testing.T, nodeID string) *Node {
	t.Helper()
	reg, err := NewRegistry()
	require.NoError(t, err)
	g := reg.Get("tile_selection")
	require.NotNil(t, g)
	node, ok := g.Nodes[nodeID]
	require.True(t, ok)
	return node
}

func TestMatchText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		nodeID  string
		message string
		want    string
		ok      bool
	}{
		{name: "exact option label", nodeID: "space_usage", message: "想给客厅选砖", want: "客厅", ok: true},
		{name: "keyword fallback", nodeID: "space_usage", message: "厕所的砖怎么选", want: "卫生间", ok: true},
		{name: "keyword for heating", nodeID: "has_floor_heating", message: "我们装了地暖", want: "有地暖", ok: true},
		{name: "no match", nodeID: "space_usage", message: "你好", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := MatchText(tileNode(t, tt.nodeID), tt.message)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchText_ExactLabelBeatsKeyword(t *testing.T) {
	t.Parallel()

	// 卧室 appears as a literal label while 房间 is a keyword for it;
	// a message holding both the 客厅 keyword and the 卧室 label must
	// resolve by label first.
	node := &Node{
		ID:      "n",
		Prompt:  "q",
		Options: []string{"卧室", "客厅"},
		Keywords: map[string][]string{
			"客厅": {"大厅"},
		},
	}
	require.NoError(t, node.compile())

	got, ok := MatchText(node, "大厅旁边的卧室")
	require.True(t, ok)
	assert.Equal(t, "卧室", got)
}

func TestMatchProfile_NumericRange(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry()
	require.NoError(t, err)
	node := reg.Get("budget_planning").Nodes["house_area"]

	tests := []struct {
		name string
		area float64
		want string
		ok   bool
	}{
		{name: "in range", area: 89, want: "80-100平", ok: true},
		{name: "boundary inclusive", area: 100, want: "80-100平", ok: true},
		{name: "open upper bucket", area: 200, want: "150平以上", ok: true},
		{name: "below all buckets", area: 30, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			profile := fakeProfile{numeric: map[string]float64{"house_area": tt.area}}
			got, ok := MatchProfile(node, profile)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchProfile_List(t *testing.T) {
	t.Parallel()

	node := tileNode(t, "style_preference")
	profile := fakeProfile{lists: map[string][]string{"preferred_styles": {"日式"}}}
	got, ok := MatchProfile(node, profile)
	require.True(t, ok)
	assert.Equal(t, "奶油风/日式", got)
}

func TestMatchProfile_NoBoundField(t *testing.T) {
	t.Parallel()

	node := tileNode(t, "space_usage")
	profile := fakeProfile{numeric: map[string]float64{"house_area": 89}}
	_, ok := MatchProfile(node, profile)
	assert.False(t, ok)
}

func TestParsePayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		want    Payload
		ok      bool
	}{
		{
			name:    "well formed",
			message: "dt:tile_selection:space_usage:客厅",
			want:    Payload{GraphID: "tile_selection", NodeID: "space_usage", Answer: "客厅"},
			ok:      true,
		},
		{
			name:    "answer keeps embedded colons",
			message: "dt:g:n:a:b:c",
			want:    Payload{GraphID: "g", NodeID: "n", Answer: "a:b:c"},
			ok:      true,
		},
		{name: "not a payload", message: "瓷砖怎么选"},
		{name: "missing segment", message: "dt:g:n"},
		{name: "empty answer", message: "dt:g:n:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParsePayload(tt.message)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuickReplyPayload_RoundTrip(t *testing.T) {
	t.Parallel()

	raw := QuickReplyPayload("tile_selection", "budget_level", "中档（80-200元/片）")
	p, ok := ParsePayload(raw)
	require.True(t, ok)
	assert.Equal(t, "tile_selection", p.GraphID)
	assert.Equal(t, "budget_level", p.NodeID)
	assert.Equal(t, "中档（80-200元/片）", p.Answer)

	// Answers may themselves contain colons; only the first three split.
	raw = QuickReplyPayload("tile_selection", "space_usage", "比例 1:2")
	p, ok = ParsePayload(raw)
	require.True(t, ok)
	assert.Equal(t, "比例 1:2", p.Answer)
}
