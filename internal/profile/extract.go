package profile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Extraction is fill-if-empty for the core fields (area, budget, styles)
// so a correction from the user never silently overwrites confirmed data,
// and append-with-dedup for the accumulating records (brands, spending,
// decisions).

var (
	areaPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:平米|平方米|㎡|平方|平)`),
		regexp.MustCompile(`(?:面积|房子|房屋|新房).*?(\d+(?:\.\d+)?)`),
	}

	budgetRangePattern = regexp.MustCompile(`预算.*?(\d+(?:\.\d+)?)\s*-\s*(\d+(?:\.\d+)?)\s*[万w]`)
	budgetPatterns     = []*regexp.Regexp{
		regexp.MustCompile(`预算.*?(\d+(?:\.\d+)?)\s*[万w]`),
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[万w].*?预算`),
		regexp.MustCompile(`(?:打算|准备|计划).*?花.*?(\d+(?:\.\d+)?)\s*[万w]`),
	}
)

// styleAliases maps canonical style names to the phrasings users reach
// for. Order matters only for output ordering.
var styleAliases = []struct {
	Name     string
	Keywords []string
}{
	{"现代简约", []string{"现代简约", "简约", "现代风"}},
	{"北欧", []string{"北欧", "北欧风"}},
	{"新中式", []string{"新中式", "中式", "中国风"}},
	{"轻奢", []string{"轻奢", "轻奢风"}},
	{"日式", []string{"日式", "日式原木", "原木风", "muji"}},
	{"美式", []string{"美式", "美式风"}},
	{"法式", []string{"法式", "法式风"}},
	{"奶油风", []string{"奶油风", "奶油"}},
	{"侘寂", []string{"侘寂", "侘寂风"}},
	{"工业风", []string{"工业风", "工业"}},
}

var familyPatterns = []struct {
	Field    string
	Patterns []*regexp.Regexp
}{
	{"elderly", []*regexp.Regexp{
		regexp.MustCompile(`老人`), regexp.MustCompile(`父母`), regexp.MustCompile(`爸妈`),
		regexp.MustCompile(`公婆`), regexp.MustCompile(`岳父`),
	}},
	{"children", []*regexp.Regexp{
		regexp.MustCompile(`孩子`), regexp.MustCompile(`小孩`), regexp.MustCompile(`宝宝`),
		regexp.MustCompile(`儿子`), regexp.MustCompile(`女儿`), regexp.MustCompile(`(\d+)\s*岁`),
	}},
	{"pets", []*regexp.Regexp{
		regexp.MustCompile(`猫`), regexp.MustCompile(`狗`), regexp.MustCompile(`宠物`),
	}},
}

var brandKeywords = []string{
	"东鹏", "马可波罗", "诺贝尔", "蒙娜丽莎", "冠珠",
	"大自然", "圣象", "德尔", "生活家", "安信",
	"索菲亚", "欧派", "尚品宅配", "好莱客", "维意",
	"TOTO", "科勒", "箭牌", "九牧", "恒洁",
	"方太", "老板", "华帝", "美的", "西门子",
	"立邦", "多乐士", "三棵树", "嘉宝莉",
	"公牛", "西蒙", "施耐德", "罗格朗",
}

var (
	positiveCues = []string{"不错", "好", "推荐", "选了", "定了", "喜欢", "满意", "靠谱"}
	negativeCues = []string{"差", "不好", "坑", "后悔", "不推荐", "别买", "垃圾"}
)

// Single-character categories like 门 or 床 false-positive too often, so
// every entry here is at least two runes.
var spendingCategories = []string{
	"瓷砖", "地砖", "墙砖", "地板", "橱柜", "衣柜", "全屋定制",
	"卫浴", "马桶", "花洒", "灯具", "窗帘", "沙发",
	"油烟机", "空调", "冰箱", "洗衣机", "热水器", "灶具",
	"乳胶漆", "涂料", "门窗", "窗户", "断桥铝", "家具", "家电",
	"水电", "防水", "设计费", "人工费", "拆改",
	"木门", "室内门", "入户门",
}

var decisionPatterns = []struct {
	Pattern *regexp.Regexp
	Kind    string
}{
	{regexp.MustCompile(`(瓷砖|地板|橱柜|衣柜|沙发|马桶|花洒|热水器|空调|油烟机|灶具|洗碗机|门|窗帘|灯具|乳胶漆|壁纸|吊顶).*?(?:选了|定了|买了|订了|用的?|签了)\s*(.{2,10})`), "item_decided"},
	{regexp.MustCompile(`(?:选了|定了|买了|订了|用的?|签了)\s*(.{2,10}?)\s*(?:的|家的)?\s*(瓷砖|地板|橱柜|衣柜|沙发|马桶|花洒|热水器|空调|油烟机|灶具|洗碗机|门|窗帘|灯具|乳胶漆|壁纸|吊顶)`), "brand_item_decided"},
	{regexp.MustCompile(`(设计师|工长|装修公司|施工队).*?(?:定了|签了|找好了|选了)`), "service_decided"},
	{regexp.MustCompile(`(水电).*?(?:做完|改完|改好|验收|完工|做好)`), "work_completed"},
	{regexp.MustCompile(`(防水).*?(?:做好|做完|验收|通过)`), "work_completed"},
	{regexp.MustCompile(`(?:闭水|闭水试验).*?(?:通过|没问题|合格)`), "work_completed"},
	{regexp.MustCompile(`(贴砖|瓦工).*?(?:完了|做完|完工|验收)`), "work_completed"},
	{regexp.MustCompile(`(木工|吊顶).*?(?:完了|做完|完工|验收)`), "work_completed"},
	{regexp.MustCompile(`(刷墙|油漆|墙面).*?(?:完了|做完|完工|验收|刷好)`), "work_completed"},
	{regexp.MustCompile(`(安装|灯|门|地板|橱柜).*?(?:装好|装完|安装完|铺好)`), "work_completed"},
}

var painRules = []struct {
	Kind     string
	Keywords []string
	Severity float64
}{
	{"预算", []string{"超预算", "预算不够", "太贵", "花太多", "控制预算", "省钱"}, 0.8},
	{"质量", []string{"质量差", "有问题", "不满意", "返工", "空鼓", "开裂", "漏水"}, 0.9},
	{"工期", []string{"太慢", "延期", "拖延", "什么时候完", "等太久"}, 0.6},
	{"选择困难", []string{"不知道选", "选哪个", "纠结", "怎么选", "哪个好"}, 0.5},
	{"沟通", []string{"沟通不畅", "不理人", "联系不上", "态度差"}, 0.7},
}

// Extractor mines user messages for profile signals.
type Extractor struct {
	log *zap.Logger
	now func() time.Time
}

// NewExtractor returns an extractor logging through the given logger.
func NewExtractor(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{log: log, now: time.Now}
}

// Update mutates the snapshot in place from one user message and reports
// whether anything changed.
func (e *Extractor) Update(s *Snapshot, message string) bool {
	changed := false
	if e.extractArea(s, message) {
		changed = true
	}
	if e.extractBudget(s, message) {
		changed = true
	}
	if e.extractStyles(s, message) {
		changed = true
	}
	if e.extractFamily(s, message) {
		changed = true
	}
	if e.extractBrands(s, message) {
		changed = true
	}
	if e.extractSpending(s, message) {
		changed = true
	}
	if e.extractDecisions(s, message) {
		changed = true
	}
	if e.extractPainPoints(s, message) {
		changed = true
	}
	return changed
}

func (e *Extractor) extractArea(s *Snapshot, message string) bool {
	if s.HouseArea != nil {
		return false
	}
	for _, p := range areaPatterns {
		m := p.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		area, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		// 20-500 sqm keeps out phone numbers and prices.
		if area < 20 || area > 500 {
			continue
		}
		s.SetHouseArea(area)
		e.log.Info("extracted house area", zap.String("user", s.UserID), zap.Float64("area", area))
		return true
	}
	return false
}

func (e *Extractor) extractBudget(s *Snapshot, message string) bool {
	if s.BudgetRange != nil {
		return false
	}
	var low, high float64
	if m := budgetRangePattern.FindStringSubmatch(message); m != nil {
		lo, err1 := strconv.ParseFloat(m[1], 64)
		hi, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			low, high = lo*10000, hi*10000
		}
	}
	if high == 0 {
		for _, p := range budgetPatterns {
			m := p.FindStringSubmatch(message)
			if m == nil {
				continue
			}
			val, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			// A single figure becomes a ±20% band.
			low, high = val*10000*0.8, val*10000*1.2
			break
		}
	}
	if high < 10000 || high > 5000000 {
		return false
	}
	s.SetBudgetRange(low, high)
	e.log.Info("extracted budget range", zap.String("user", s.UserID),
		zap.Float64("low", low), zap.Float64("high", high))
	return true
}

func (e *Extractor) extractStyles(s *Snapshot, message string) bool {
	if len(s.PreferredStyles) > 0 {
		return false
	}
	lower := strings.ToLower(message)
	var detected []string
	for _, style := range styleAliases {
		for _, kw := range style.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				detected = append(detected, style.Name)
				break
			}
		}
	}
	if len(detected) == 0 {
		return false
	}
	s.PreferredStyles = detected
	e.log.Info("extracted style preference", zap.String("user", s.UserID), zap.Strings("styles", detected))
	return true
}

func (e *Extractor) extractFamily(s *Snapshot, message string) bool {
	changed := false
	for _, fp := range familyPatterns {
		switch fp.Field {
		case "elderly":
			if s.Family.HasElderly {
				continue
			}
		case "children":
			if s.Family.HasChildren {
				continue
			}
		case "pets":
			if s.Family.HasPets {
				continue
			}
		}
		for _, p := range fp.Patterns {
			if !p.MatchString(message) {
				continue
			}
			switch fp.Field {
			case "elderly":
				s.Family.HasElderly = true
			case "children":
				s.Family.HasChildren = true
			case "pets":
				s.Family.HasPets = true
			}
			changed = true
			break
		}
	}
	return changed
}

func (e *Extractor) extractBrands(s *Snapshot, message string) bool {
	changed := false
	for _, brand := range brandKeywords {
		idx := strings.Index(message, brand)
		if idx < 0 {
			continue
		}
		// Sentiment cues only count inside a short window around the
		// brand, so 后悔 two sentences later does not taint it.
		start := idx - 30
		if start < 0 {
			start = 0
		}
		end := idx + len(brand) + 45
		if end > len(message) {
			end = len(message)
		}
		window := message[start:end]
		sentiment := SentimentNeutral
		for _, cue := range positiveCues {
			if strings.Contains(window, cue) {
				sentiment = SentimentPositive
				break
			}
		}
		for _, cue := range negativeCues {
			if strings.Contains(window, cue) {
				sentiment = SentimentNegative
				break
			}
		}
		ctx := message
		if runes := []rune(message); len(runes) > 80 {
			ctx = string(runes[:80])
		}
		before := len(s.BrandMentions)
		s.RecordBrandMention(BrandMention{Brand: brand, Sentiment: sentiment, Context: ctx, At: e.now()})
		if len(s.BrandMentions) > before {
			changed = true
			e.log.Info("extracted brand mention", zap.String("user", s.UserID),
				zap.String("brand", brand), zap.String("sentiment", string(sentiment)))
		}
	}
	return changed
}

func (e *Extractor) extractSpending(s *Snapshot, message string) bool {
	changed := false
	for _, cat := range spendingCategories {
		if !strings.Contains(message, cat) {
			continue
		}
		// Total: 橱柜3万8 means 38000. The non-greedy gap stops at
		// clause boundaries so the amount never crosses a sentence.
		totalRe := regexp.MustCompile(regexp.QuoteMeta(cat) + `[^，,。.；;\n]{0,45}?(\d+(?:\.\d+)?)\s*万(\d)?`)
		if m := totalRe.FindStringSubmatch(message); m != nil {
			base, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				amount := base * 10000
				if m[2] != "" {
					trailing, _ := strconv.Atoi(m[2])
					amount += float64(trailing) * 1000
				}
				before := len(s.Spending)
				s.RecordSpending(Spending{Category: cat, Amount: amount, IsTotal: true, At: e.now()})
				if len(s.Spending) > before {
					changed = true
					e.log.Info("extracted spending", zap.String("user", s.UserID),
						zap.String("category", cat), zap.Float64("amount", amount))
				}
			}
			continue
		}
		// Unit price: 瓷砖80元/片.
		unitRe := regexp.MustCompile(regexp.QuoteMeta(cat) + `[^，,。.；;\n]{0,45}?(\d+(?:\.\d+)?)\s*元[/每](?:片|块|平|米|个)`)
		if m := unitRe.FindStringSubmatch(message); m != nil {
			amount, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				before := len(s.Spending)
				s.RecordSpending(Spending{Category: cat, Amount: amount, IsTotal: false, At: e.now()})
				if len(s.Spending) > before {
					changed = true
				}
			}
		}
	}
	return changed
}

func (e *Extractor) extractDecisions(s *Snapshot, message string) bool {
	changed := false
	for _, dp := range decisionPatterns {
		m := dp.Pattern.FindString(message)
		if m == "" {
			continue
		}
		before := len(s.Decisions)
		s.RecordDecision(Decision{Text: m, Kind: dp.Kind, At: e.now()})
		if len(s.Decisions) > before {
			changed = true
			e.log.Info("extracted decision", zap.String("user", s.UserID),
				zap.String("kind", dp.Kind), zap.String("text", m))
		}
	}
	return changed
}

func (e *Extractor) extractPainPoints(s *Snapshot, message string) bool {
	changed := false
	for _, rule := range painRules {
		for _, kw := range rule.Keywords {
			if !strings.Contains(message, kw) {
				continue
			}
			already := false
			for _, p := range s.PainPoints {
				if p.Kind == rule.Kind {
					already = true
					break
				}
			}
			if !already {
				s.RecordPainPoint(rule.Kind, fmt.Sprintf("用户提到: %s", kw), rule.Severity)
				changed = true
			}
			break
		}
	}
	return changed
}
