package research

import (
	"regexp"
	"strings"
)

// Research types.
const (
	TypeProductComparison = "product_comparison"
	TypeBudgetPlanning    = "budget_planning"
	TypeQuoteReview       = "quote_review"
	TypeDesignReview      = "design_review"
)

// trigger is one detection rule. Rules are scanned in declaration
// order and the first surviving match wins.
type trigger struct {
	pattern      *regexp.Regexp
	researchType string
	confirmation string
}

// The comparison rule limits entities to CJK/alphanumeric runs so
// punctuation and spaces never leak into a captured "brand".
var triggers = []trigger{
	{
		pattern:      regexp.MustCompile(`(?i)([\x{4e00}-\x{9fa5}A-Za-z0-9]{2,10})[和与跟VS]([\x{4e00}-\x{9fa5}A-Za-z0-9]{2,10})(哪个好|怎么选|选哪个|对比|比较|区别)`),
		researchType: TypeProductComparison,
		confirmation: "我可以帮您做一份 **{brand_a} vs {brand_b}** 的详细对比分析报告，从参数、口碑、价格等多个维度深入比较。需要我深入研究一下吗？",
	},
	{
		pattern:      regexp.MustCompile(`(?i)(\d+)\s*万.*(够不够|能不能|装得了|够装|能装)|预算.*(\d+)\s*万.*(怎么分|怎么花|如何分配|够不够)`),
		researchType: TypeBudgetPlanning,
		confirmation: "我可以帮您做一份详细的 **预算规划报告**，包括分项明细、省钱策略和采购时间线。需要我深入研究一下吗？",
	},
	{
		pattern:      regexp.MustCompile(`(?i)报价.*(合理|贵不贵|高不高|怎么样|看看)|帮我.*(看看|审|分析).*报价`),
		researchType: TypeQuoteReview,
		confirmation: "我可以帮您做一份 **报价审核报告**，逐项分析价格合理性并给出砍价建议。需要我深入研究一下吗？",
	},
	{
		pattern:      regexp.MustCompile(`(?i)(方案|设计|布局|动线).*(怎么样|好不好|合理|看看|帮我看|评价)`),
		researchType: TypeDesignReview,
		confirmation: "我可以帮您做一份 **设计方案评审报告**，从动线、收纳、实用性等角度深入分析。需要我深入研究一下吗？",
	},
}

// nonProductEntities are captured "entities" that mark a comparison as
// not being about products: spaces, contracting modes, pronouns. A
// match against any of these skips the comparison rule and keeps
// scanning.
var nonProductEntities = map[string]bool{
	"客厅": true, "卧室": true, "厨房": true, "卫生间": true,
	"阳台": true, "书房": true, "玄关": true, "餐厅": true,
	"全包": true, "半包": true, "清包": true,
	"我": true, "你": true, "他": true, "她": true,
	"我们": true, "他们": true,
}

// Detection is a matched research trigger awaiting user confirmation.
type Detection struct {
	ResearchType    string
	ConfirmationMsg string
	OriginalQuery   string
	// Entities holds the two compared entities for product comparisons.
	Entities []string
}

// DetectTrigger scans the message against the trigger rules. A nil
// return means no rule matched (after exclusions).
func DetectTrigger(message string) *Detection {
	for _, tr := range triggers {
		m := tr.pattern.FindStringSubmatch(message)
		if m == nil {
			continue
		}

		confirmation := tr.confirmation
		var entities []string
		if tr.researchType == TypeProductComparison && len(m) >= 3 {
			a := strings.TrimSpace(m[1])
			b := strings.TrimSpace(m[2])
			if nonProductEntities[a] || nonProductEntities[b] {
				continue
			}
			entities = []string{a, b}
			confirmation = strings.NewReplacer(
				"{brand_a}", a,
				"{brand_b}", b,
			).Replace(confirmation)
		}

		return &Detection{
			ResearchType:    tr.researchType,
			ConfirmationMsg: confirmation,
			OriginalQuery:   message,
			Entities:        entities,
		}
	}
	return nil
}
