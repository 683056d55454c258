package research

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/renovad/internal/generation"
)

// Event types streamed by the pipeline.
const (
	EventProgress = "research_progress"
	EventReport   = "research_report"
	EventAnswer   = "answer"
)

// Event is one streamed pipeline output.
type Event struct {
	Type string
	// Text carries answer/section content.
	Text string
	// Progress is set for EventProgress events.
	Progress *Progress
	// Report is set for the EventReport header event.
	Report *ReportHeader
}

// Progress reports which pipeline phase is running.
type Progress struct {
	Step  int
	Total int
	Label string
}

// ReportHeader announces the report's title and table of contents
// before sections stream in.
type ReportHeader struct {
	Title        string
	ResearchType string
	Sections     []string
}

// Input carries the per-turn context the report draws on.
type Input struct {
	Query          string
	ResearchType   string
	ProfileSummary string
	Knowledge      string
}

// Pipeline generates deep-research reports through multiple generation
// calls: one for the outline, one per section. Sections run strictly in
// sequence; cancellation takes effect at section boundaries only.
type Pipeline struct {
	gen generation.Generator
	log *zap.Logger
}

// NewPipeline returns a report pipeline over the generator.
func NewPipeline(gen generation.Generator, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{gen: gen, log: log}
}

// Run streams the report through emit and returns the concatenated body
// for persistence. An unknown research type emits exactly one fallback
// answer event and nothing else.
func (p *Pipeline) Run(ctx context.Context, in Input, emit func(Event)) (string, error) {
	template, ok := Templates[in.ResearchType]
	if !ok {
		emit(Event{Type: EventAnswer, Text: "暂不支持该类型的研究报告。"})
		return "", nil
	}

	progress := func(step int) {
		emit(Event{Type: EventProgress, Progress: &Progress{
			Step:  step,
			Total: len(ProgressSteps),
			Label: ProgressSteps[step-1],
		}})
	}

	progress(1)
	progress(2)
	progress(3)

	outline := p.generateOutline(ctx, in, template)

	titles := make([]string, len(template.Sections))
	for i, s := range template.Sections {
		titles[i] = s.Title
	}
	emit(Event{Type: EventReport, Report: &ReportHeader{
		Title:        template.Title(in.Query),
		ResearchType: in.ResearchType,
		Sections:     titles,
	}})

	progress(4)

	var body strings.Builder
	for _, section := range template.Sections {
		if err := ctx.Err(); err != nil {
			return body.String(), err
		}
		text := p.generateSection(ctx, in, section, outline)
		emit(Event{Type: EventAnswer, Text: text})
		body.WriteString(text)
	}

	progress(5)
	return body.String(), nil
}

// generateOutline produces the report outline. Failure degrades to an
// empty outline instead of failing the report.
func (p *Pipeline) generateOutline(ctx context.Context, in Input, template Template) string {
	var hints strings.Builder
	for _, s := range template.Sections {
		fmt.Fprintf(&hints, "- %s: %s\n", s.Title, s.Hint)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "你是一位资深的装修行业专家。用户问了以下问题：\n%q\n\n", in.Query)
	fmt.Fprintf(&b, "请为一份“%s”拟一个简要的大纲（每个章节1-2句话概括要点）。\n\n", template.Title(in.Query))
	fmt.Fprintf(&b, "报告章节：\n%s\n", hints.String())
	if in.ProfileSummary != "" {
		fmt.Fprintf(&b, "用户信息：%s\n", in.ProfileSummary)
	}
	if in.Knowledge != "" {
		fmt.Fprintf(&b, "参考资料：%s\n", truncateRunes(in.Knowledge, 1000))
	}
	b.WriteString("\n只输出大纲，不要输出完整报告。")

	outline, err := p.gen.Generate(ctx, b.String())
	if err != nil {
		p.log.Warn("outline generation failed", zap.Error(err))
		return ""
	}
	return outline
}

// generateSection produces one section. Failure yields a visible
// placeholder so the report structure stays intact.
func (p *Pipeline) generateSection(ctx context.Context, in Input, section Section, outline string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "你是一位资深的装修行业专家，正在为用户撰写深度研究报告的「%s」章节。\n\n", section.Title)
	fmt.Fprintf(&b, "用户问题：%q\n\n", in.Query)
	fmt.Fprintf(&b, "章节要求：%s\n\n", section.Hint)
	if outline != "" {
		fmt.Fprintf(&b, "报告大纲（请基于大纲展开）：%s\n", truncateRunes(outline, 800))
	}
	if in.ProfileSummary != "" {
		fmt.Fprintf(&b, "用户信息：%s\n", in.ProfileSummary)
	}
	if in.Knowledge != "" {
		fmt.Fprintf(&b, "参考资料（优先使用）：%s\n", truncateRunes(in.Knowledge, 800))
	}
	fmt.Fprintf(&b, `
写作要求：
1. 以 "### %s" 作为章节标题开头
2. 内容详实、有数据支撑，不要空泛
3. 如果需要表格对比，用 Markdown 表格格式
4. 语言专业但易懂，像一位有经验的朋友在认真分析
5. 字数控制在 200-400 字
6. 不要重复其他章节的内容`, section.Title)

	text, err := p.gen.Generate(ctx, b.String())
	if err != nil {
		p.log.Warn("section generation failed",
			zap.String("section", section.Key),
			zap.Error(err))
		return fmt.Sprintf("### %s\n\n（该章节生成失败，请重试）\n\n", section.Title)
	}
	return text + "\n\n"
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
