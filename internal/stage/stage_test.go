package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{name: "preparing", message: "刚买房，打算装修", want: "准备"},
		{name: "designing", message: "设计师出了效果图", want: "设计"},
		{name: "construction", message: "水电改造中，工人明天进场", want: "施工"},
		{name: "soft furnishing", message: "硬装完了，开始买家具", want: "软装"},
		{name: "moved in", message: "通风三个月了能入住吗", want: "入住"},
		{name: "earliest stage wins", message: "打算装修，先找设计师", want: "准备"},
		{name: "no signal", message: "瓷砖怎么选", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Detect(tt.message))
		})
	}
}

func TestValidAndNext(t *testing.T) {
	t.Parallel()

	assert.True(t, Valid("施工"))
	assert.False(t, Valid("完工"))
	assert.Equal(t, "设计", Next("准备"))
	assert.Equal(t, "", Next("入住"))
	assert.Equal(t, "", Next("不存在"))
}
