// Package stage classifies which renovation phase a user is in from
// conversational signals. The phases form a rough pipeline: 准备 (before
// anything starts), 设计, 施工, 软装, 入住.
package stage

import (
	"strings"
)

// Stages in pipeline order.
var Stages = []string{"准备", "设计", "施工", "软装", "入住"}

// stageKeywords holds recognition phrases per stage. Scanning honors
// pipeline order and the first stage with a hit wins, so an ambiguous
// message resolves to the earliest phase it could indicate.
var stageKeywords = []struct {
	Stage    string
	Keywords []string
}{
	{"准备", []string{"准备装修", "打算装修", "想装修", "要装修", "计划装修", "还没开始", "刚买房"}},
	{"设计", []string{"设计方案", "设计师", "效果图", "量房", "出图", "设计中", "在设计"}},
	{"施工", []string{"施工中", "在装修", "正在装", "水电", "贴砖", "刷漆", "吊顶", "工人"}},
	{"软装", []string{"软装", "买家具", "选家具", "窗帘", "灯具", "快完工", "硬装完"}},
	{"入住", []string{"入住", "搬家", "通风", "甲醛", "装完了", "已经装好"}},
}

// Detect returns the stage the message indicates, or "" when no signal
// is present.
func Detect(message string) string {
	for _, sk := range stageKeywords {
		for _, kw := range sk.Keywords {
			if strings.Contains(message, kw) {
				return sk.Stage
			}
		}
	}
	return ""
}

// Valid reports whether s names a known stage.
func Valid(s string) bool {
	for _, stage := range Stages {
		if stage == s {
			return true
		}
	}
	return false
}

// Next returns the phase after s, or "" for the last phase or an
// unknown stage.
func Next(s string) string {
	for i, stage := range Stages {
		if stage == s && i+1 < len(Stages) {
			return Stages[i+1]
		}
	}
	return ""
}
