package profile

import (
	"fmt"
	"sort"
	"strings"
)

var sentimentLabels = map[Sentiment]string{
	SentimentPositive: "好评",
	SentimentNegative: "差评",
	SentimentNeutral:  "提及",
}

// Summary renders the profile as a natural-language block for the system
// prompt. The hints in parentheses steer the model toward using the
// concrete values instead of generic assumptions.
func (s *Snapshot) Summary() string {
	var parts []string

	if s.HouseArea != nil {
		parts = append(parts, fmt.Sprintf("房屋面积：%g平米（请用此面积计算，不要用100㎡等假设值）", *s.HouseArea))
	}
	if s.BudgetRange != nil {
		low, high := s.BudgetRange.Low, s.BudgetRange.High
		switch {
		case low > 0 && high > 0:
			parts = append(parts, fmt.Sprintf("预算范围：%.0f-%.0f万元（请基于此预算给建议）", low/10000, high/10000))
		case high > 0:
			parts = append(parts, fmt.Sprintf("预算上限：%.0f万元", high/10000))
		}
	}
	if len(s.PreferredStyles) > 0 {
		styles := s.PreferredStyles
		if len(styles) > 3 {
			styles = styles[:3]
		}
		parts = append(parts, "偏好风格："+strings.Join(styles, "、"))
	}
	if s.Stage != "" {
		parts = append(parts, "当前阶段："+s.Stage)
	}
	if s.City != "" {
		parts = append(parts, "所在城市："+s.City)
	}

	if len(s.PainPoints) > 0 {
		pains := append([]PainPoint(nil), s.PainPoints...)
		sort.SliceStable(pains, func(i, j int) bool { return pains[i].Severity > pains[j].Severity })
		if len(pains) > 3 {
			pains = pains[:3]
		}
		descs := make([]string, 0, len(pains))
		for _, p := range pains {
			if p.Description != "" {
				descs = append(descs, p.Description)
			} else {
				descs = append(descs, p.Kind)
			}
		}
		parts = append(parts, "主要关注："+strings.Join(descs, "、"))
	}

	if s.Family.HasElderly {
		parts = append(parts, "家有老人（注意无障碍设计和防滑）")
	}
	if s.Family.HasChildren {
		parts = append(parts, "家有小孩（注意环保等级和安全防护）")
	}
	if s.Family.HasPets {
		parts = append(parts, "家有宠物（注意耐磨和易清洁材料）")
	}

	if len(s.Interests) > 0 {
		type weighted struct {
			topic  string
			weight float64
		}
		topics := make([]weighted, 0, len(s.Interests))
		for k, v := range s.Interests {
			topics = append(topics, weighted{k, v})
		}
		sort.SliceStable(topics, func(i, j int) bool {
			if topics[i].weight != topics[j].weight {
				return topics[i].weight > topics[j].weight
			}
			return topics[i].topic < topics[j].topic
		})
		if len(topics) > 5 {
			topics = topics[:5]
		}
		names := make([]string, len(topics))
		for i, t := range topics {
			names[i] = t.topic
		}
		parts = append(parts, "近期关注："+strings.Join(names, "、"))
	}

	if len(s.BrandMentions) > 0 {
		mentions := s.BrandMentions
		if len(mentions) > 5 {
			mentions = mentions[len(mentions)-5:]
		}
		labels := make([]string, len(mentions))
		for i, m := range mentions {
			label, ok := sentimentLabels[m.Sentiment]
			if !ok {
				label = "提及"
			}
			labels[i] = fmt.Sprintf("%s(%s)", m.Brand, label)
		}
		parts = append(parts, "品牌印象："+strings.Join(labels, "、"))
	}

	if len(s.Decisions) > 0 {
		decisions := s.Decisions
		if len(decisions) > 5 {
			decisions = decisions[len(decisions)-5:]
		}
		texts := make([]string, len(decisions))
		for i, d := range decisions {
			texts[i] = d.Text
		}
		parts = append(parts, "已做决策："+strings.Join(texts, "；")+"（已决定的不要再推荐替代方案）")
	}

	return strings.Join(parts, "\n")
}
