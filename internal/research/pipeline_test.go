package research

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/renovad/internal/generation"
)

func collectEvents(t *testing.T, gen generation.Generator, in Input) ([]Event, string, error) {
	t.Helper()
	var events []Event
	body, err := NewPipeline(gen, zap.NewNop()).Run(context.Background(), in, func(e Event) {
		events = append(events, e)
	})
	return events, body, err
}

func echoGenerator() generation.Generator {
	return generation.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "只输出大纲") {
			return "outline", nil
		}
		return "section text", nil
	})
}

func TestPipeline_UnknownTypeEmitsSingleFallback(t *testing.T) {
	t.Parallel()

	events, body, err := collectEvents(t, echoGenerator(), Input{Query: "q", ResearchType: "mystery"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventAnswer, events[0].Type)
	assert.NotEmpty(t, events[0].Text)
	assert.Empty(t, body)
}

func TestPipeline_EventOrdering(t *testing.T) {
	t.Parallel()

	events, body, err := collectEvents(t, echoGenerator(), Input{
		Query:        "东鹏和马可波罗哪个好",
		ResearchType: TypeProductComparison,
	})
	require.NoError(t, err)

	sections := len(Templates[TypeProductComparison].Sections)
	// 5 progress + 1 header + one answer per section.
	require.Len(t, events, 5+1+sections)

	assert.Equal(t, EventProgress, events[0].Type)
	assert.Equal(t, 1, events[0].Progress.Step)
	assert.Equal(t, "理解需求", events[0].Progress.Label)

	header := events[3]
	require.Equal(t, EventReport, header.Type)
	assert.Equal(t, "东鹏和马可波罗哪个好——深度对比分析", header.Report.Title)
	assert.Len(t, header.Report.Sections, sections)

	assert.Equal(t, EventProgress, events[4].Type)
	assert.Equal(t, 4, events[4].Progress.Step)

	last := events[len(events)-1]
	require.Equal(t, EventProgress, last.Type)
	assert.Equal(t, 5, last.Progress.Step)
	assert.Equal(t, "完成", last.Progress.Label)

	assert.Equal(t, strings.Repeat("section text\n\n", sections), body)
}

func TestPipeline_SectionFailureYieldsPlaceholder(t *testing.T) {
	t.Parallel()

	gen := generation.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "总评") {
			return "", errors.New("upstream 500")
		}
		return "ok", nil
	})
	events, body, err := collectEvents(t, gen, Input{Query: "q", ResearchType: TypeQuoteReview})
	require.NoError(t, err)
	assert.Contains(t, body, "该章节生成失败")

	var answers int
	for _, e := range events {
		if e.Type == EventAnswer {
			answers++
		}
	}
	assert.Equal(t, len(Templates[TypeQuoteReview].Sections), answers,
		"a failed section still occupies its slot")
}

func TestPipeline_OutlineFailureDegrades(t *testing.T) {
	t.Parallel()

	calls := 0
	gen := generation.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("outline failed")
		}
		return "ok", nil
	})
	_, body, err := collectEvents(t, gen, Input{Query: "q", ResearchType: TypeDesignReview})
	require.NoError(t, err)
	assert.NotContains(t, body, "生成失败")
}

func TestPipeline_CancellationBetweenSections(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	sectionCalls := 0
	gen := generation.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "只输出大纲") {
			return "outline", nil
		}
		sectionCalls++
		if sectionCalls == 1 {
			cancel()
		}
		return "section", nil
	})

	var events []Event
	_, err := NewPipeline(gen, zap.NewNop()).Run(ctx, Input{
		Query:        "q",
		ResearchType: TypeQuoteReview,
	}, func(e Event) {
		events = append(events, e)
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sectionCalls, "cancellation takes effect before the next section, not mid-call")
}
