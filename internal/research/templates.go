package research

import (
	"strings"
)

// Section is one report chapter and its authoring hint.
type Section struct {
	Key   string
	Title string
	// Hint steers the section's generation call.
	Hint string
}

// Template defines a report's title and chapter layout.
type Template struct {
	// TitleFormat may embed {query}.
	TitleFormat string
	Sections    []Section
}

// Title renders the report title for a query.
func (t Template) Title(query string) string {
	return strings.ReplaceAll(t.TitleFormat, "{query}", query)
}

// ProgressSteps are the user-visible pipeline phases in order.
var ProgressSteps = []string{"理解需求", "收集信息", "专业分析", "撰写报告", "完成"}

// Templates maps research types to report layouts.
var Templates = map[string]Template{
	TypeProductComparison: {
		TitleFormat: "{query}——深度对比分析",
		Sections: []Section{
			{"conclusion", "结论先行", "用2-3句话直接给出推荐结论和理由，不要含糊，要有明确立场。"},
			{"specs", "核心参数对比", "用表格形式对比两款产品的核心参数（材质、规格、环保等级、价格区间、适用场景等）。"},
			{"reputation", "口碑分析", "从用户真实反馈角度分析两款产品的优缺点，引用常见的好评和差评。"},
			{"recommendation", "个性化推荐", "根据用户的预算、面积、风格偏好给出针对性推荐，说明为什么这个选择最适合用户。"},
			{"budget_calc", "用量与预算估算", "根据用户房屋面积估算用量和总花费，给出性价比最优的采购方案。"},
			{"pitfalls", "避坑指南", "列出购买和施工中的常见坑点，给出具体的验收标准和注意事项。"},
		},
	},
	TypeBudgetPlanning: {
		TitleFormat: "装修预算规划报告",
		Sections: []Section{
			{"overview", "预算总览", "根据用户的总预算和面积，给出整体预算分配建议和每平米造价参考。"},
			{"breakdown", "分项明细", "用表格形式列出各项费用（设计费、拆改、水电、防水、瓷砖、木工、油漆、安装、家具、家电、软装等），给出每项的预算范围。"},
			{"save_or_not", "能省 vs 不能省", "明确告诉用户哪些钱可以省（附具体省法），哪些钱绝对不能省（附原因）。"},
			{"timeline", "采购时间线", "按施工阶段列出材料采购时间节点，避免耽误工期。"},
			{"risk_reserve", "风险预留", "建议预留的机动资金比例，列出常见的超预算场景和应对策略。"},
		},
	},
	TypeQuoteReview: {
		TitleFormat: "装修报价审核报告",
		Sections: []Section{
			{"summary", "总评", "对这份报价给出整体评价：偏高/合理/偏低，以及主要问题点。"},
			{"item_analysis", "逐项价格分析", "用表格对比报价中各项目与市场参考价，标注偏高的项目。"},
			{"hidden_costs", "增项预警", "分析报价中可能故意遗漏的项目，提醒用户哪些地方后期可能加钱。"},
			{"negotiation", "砍价建议", "给出具体可操作的砍价策略和话术，标明每项可以砍掉多少。"},
		},
	},
	TypeDesignReview: {
		TitleFormat: "设计方案评审报告",
		Sections: []Section{
			{"summary", "总评", "对设计方案给出整体评价，打分（1-10），列出主要优点和问题。"},
			{"circulation", "动线分析", "分析生活动线（起居、家务、访客）是否合理，有没有交叉或浪费。"},
			{"storage", "收纳评估", "评估各区域的收纳空间是否充足，给出优化建议。"},
			{"improvements", "问题与改进建议", "列出具体问题和对应的改进方案，按优先级排序。"},
		},
	},
}
