// Package tools holds the deterministic calculators the assistant can
// invoke during a turn: trade-in subsidy, ROI, price sanity check, and
// construction timeline. Invocation is rule-matched on the user message
// and always best-effort; a calculator that cannot find its inputs
// simply stays silent.
package tools

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Tool names.
const (
	ToolSubsidy  = "subsidy_calculator"
	ToolROI      = "roi_calculator"
	ToolPrice    = "price_evaluator"
	ToolTimeline = "decoration_timeline"
)

// SubsidyResult is a trade-in subsidy estimate.
type SubsidyResult struct {
	Category    string
	Amount      float64
	Rate        float64
	FinalAmount float64
	Capped      bool
}

// ROIResult is an investment-return calculation.
type ROIResult struct {
	Investment float64
	Revenue    float64
	ROIPercent float64
	Assessment string
}

// PriceResult is a price sanity assessment against market reference
// ranges.
type PriceResult struct {
	Category   string
	Price      float64
	Low        float64
	High       float64
	Evaluation string
}

// TimelinePhase is one construction stage and its expected duration.
type TimelinePhase struct {
	Name string
	Days int
}

// TimelineResult is a whole-project duration estimate.
type TimelineResult struct {
	HouseArea float64
	TotalDays int
	Phases    []TimelinePhase
}

// subsidyRates are per-category trade-in subsidy percentages with a
// per-order cap.
var subsidyRates = map[string]float64{
	"家具":   0.15,
	"建材":   0.10,
	"家电":   0.20,
	"软装":   0.10,
	"智能家居": 0.15,
}

const subsidyCap = 2000

// Subsidy estimates the trade-in subsidy for a purchase. Unknown
// categories report a zero rate.
func Subsidy(amount float64, category string) SubsidyResult {
	rate := subsidyRates[category]
	final := amount * rate
	capped := false
	if final > subsidyCap {
		final = subsidyCap
		capped = true
	}
	return SubsidyResult{
		Category:    category,
		Amount:      amount,
		Rate:        rate,
		FinalAmount: final,
		Capped:      capped,
	}
}

// ROI computes return on investment and a coarse verdict.
func ROI(investment, revenue float64) ROIResult {
	r := ROIResult{Investment: investment, Revenue: revenue}
	if investment <= 0 {
		r.Assessment = "无法评估"
		return r
	}
	r.ROIPercent = (revenue - investment) / investment * 100
	switch {
	case r.ROIPercent < 0:
		r.Assessment = "亏损"
	case r.ROIPercent < 50:
		r.Assessment = "一般"
	case r.ROIPercent < 100:
		r.Assessment = "良好"
	default:
		r.Assessment = "优秀"
	}
	return r
}

// priceRanges are market reference bands in yuan per category.
var priceRanges = map[string][2]float64{
	"家具":   {3000, 30000},
	"建材":   {5000, 50000},
	"家电":   {2000, 40000},
	"软装":   {2000, 20000},
	"智能家居": {1000, 15000},
}

// EvaluatePrice places a quoted price against the category's market
// band. An unknown category reports an unbounded check.
func EvaluatePrice(category string, price float64) PriceResult {
	r := PriceResult{Category: category, Price: price}
	band, ok := priceRanges[category]
	if !ok {
		r.Evaluation = "缺少该品类的参考价"
		return r
	}
	r.Low, r.High = band[0], band[1]
	switch {
	case price < band[0]:
		r.Evaluation = "低于市场参考区间，注意核实材料和服务是否缩水"
	case price > band[1]:
		r.Evaluation = "高于市场参考区间，建议多比几家"
	default:
		r.Evaluation = "在市场参考区间内，价格合理"
	}
	return r
}

// Timeline estimates the construction schedule for a house area. The
// baseline covers roughly 80 sqm; larger homes stretch the on-site
// phases.
func Timeline(houseArea float64) TimelineResult {
	scale := 1.0
	if houseArea > 80 {
		scale = 1 + (houseArea-80)/200
	}
	phases := []TimelinePhase{
		{"拆改", scaleDays(5, scale)},
		{"水电改造", scaleDays(10, scale)},
		{"防水与瓦工", scaleDays(15, scale)},
		{"木工与油漆", scaleDays(15, scale)},
		{"安装收尾", scaleDays(10, scale)},
	}
	total := 0
	for _, p := range phases {
		total += p.Days
	}
	return TimelineResult{HouseArea: houseArea, TotalDays: total, Phases: phases}
}

func scaleDays(base int, scale float64) int {
	return int(float64(base)*scale + 0.5)
}

// === rule-matched invocation ===

var (
	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[万w]`),
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[元块]`),
	}
	areaPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:平米|平方米|㎡|平方|平)`)

	subsidyKeywords  = []string{"补贴", "能补多少", "返多少"}
	roiKeywords      = []string{"ROI", "投入产出", "回报率"}
	priceKeywords    = []string{"贵不贵", "价格合理", "值不值"}
	timelineKeywords = []string{"多久", "工期", "多长时间"}

	categories = []string{"家具", "建材", "家电", "软装", "智能家居"}
)

// Results is the set of tool outputs for one message, keyed by tool
// name semantics rather than raw structs so the prompt summary can stay
// selective.
type Results struct {
	Subsidy  *SubsidyResult
	ROI      *ROIResult
	Price    *PriceResult
	Timeline *TimelineResult
}

// Empty reports whether no tool produced output.
func (r Results) Empty() bool {
	return r.Subsidy == nil && r.ROI == nil && r.Price == nil && r.Timeline == nil
}

// Invoke rule-matches the message against the calculators and runs
// whichever ones can extract their inputs. houseArea supplements the
// message for the timeline estimate when the profile already knows it.
func Invoke(message string, houseArea *float64) Results {
	var out Results

	if containsAny(message, subsidyKeywords) {
		amount, okAmt := extractAmount(message)
		category, okCat := extractCategory(message)
		if okAmt && okCat {
			r := Subsidy(amount, category)
			out.Subsidy = &r
		}
	}

	if containsAny(message, roiKeywords) {
		if investment, revenue, ok := extractInvestmentRevenue(message); ok {
			r := ROI(investment, revenue)
			out.ROI = &r
		}
	}

	if containsAny(message, priceKeywords) {
		price, okPrice := extractAmount(message)
		category, okCat := extractCategory(message)
		if okPrice && okCat {
			r := EvaluatePrice(category, price)
			out.Price = &r
		}
	}

	if containsAny(message, timelineKeywords) {
		area, ok := extractArea(message)
		if !ok && houseArea != nil {
			area, ok = *houseArea, true
		}
		if ok {
			r := Timeline(area)
			out.Timeline = &r
		}
	}

	return out
}

// Summary renders the results as a natural-language block for prompt
// injection, one line per tool.
func (r Results) Summary() string {
	var lines []string
	if s := r.Subsidy; s != nil {
		lines = append(lines, fmt.Sprintf("【补贴计算】%s补贴金额约%.0f元（补贴比例%.0f%%）",
			s.Category, s.FinalAmount, s.Rate*100))
	}
	if roi := r.ROI; roi != nil {
		lines = append(lines, fmt.Sprintf("【ROI分析】投资回报率%.1f%%，评估：%s",
			roi.ROIPercent, roi.Assessment))
	}
	if p := r.Price; p != nil {
		if p.High > 0 {
			lines = append(lines, fmt.Sprintf("【价格评估】%s，市场参考区间%.0f-%.0f元",
				p.Evaluation, p.Low, p.High))
		} else {
			lines = append(lines, fmt.Sprintf("【价格评估】%s", p.Evaluation))
		}
	}
	if tl := r.Timeline; tl != nil {
		lines = append(lines, fmt.Sprintf("【工期估算】预计总工期约%d天", tl.TotalDays))
	}
	return strings.Join(lines, "\n")
}

func containsAny(message string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(message, kw) {
			return true
		}
	}
	return false
}

// extractAmount pulls the first money figure, treating 万 as 10,000
// yuan.
func extractAmount(message string) (float64, bool) {
	for i, p := range amountPatterns {
		m := p.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if i == 0 {
			v *= 10000
		}
		return v, true
	}
	return 0, false
}

// extractInvestmentRevenue needs two money figures in order:
// investment then revenue.
func extractInvestmentRevenue(message string) (float64, float64, bool) {
	var amounts []float64
	for _, p := range amountPatterns {
		for _, m := range p.FindAllStringSubmatch(message, -1) {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			if strings.HasSuffix(m[0], "万") || strings.HasSuffix(m[0], "w") {
				v *= 10000
			}
			amounts = append(amounts, v)
		}
		if len(amounts) >= 2 {
			return amounts[0], amounts[1], true
		}
		amounts = amounts[:0]
	}
	return 0, 0, false
}

func extractArea(message string) (float64, bool) {
	m := areaPattern.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func extractCategory(message string) (string, bool) {
	for _, cat := range categories {
		if strings.Contains(message, cat) {
			return cat, true
		}
	}
	return "", false
}
