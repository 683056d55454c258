package orchestrator

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/fyrsmithlabs/renovad/internal/profile"
)

//go:embed rules.yaml
var defaultRules []byte

// Caps on how much guidance one turn may inject. Topic hints are
// precise, so two are allowed; the stage fallback stays restrained.
const (
	maxTopicHints = 2
	maxStageHints = 1
)

type pitfallRule struct {
	Pattern string `yaml:"pattern"`
	Warning string `yaml:"warning"`

	re *regexp.Regexp
}

// dependencyCheck is one prerequisite of a topic. Check is either
// "profile.<field>" (satisfied when the profile field is populated) or
// "decision:<regexp>" (satisfied when a recorded decision matches).
type dependencyCheck struct {
	Check       string `yaml:"check"`
	MissingHint string `yaml:"missing_hint"`

	decisionRE *regexp.Regexp
	field      string
}

type dependencyRule struct {
	Trigger  string            `yaml:"trigger"`
	Requires []dependencyCheck `yaml:"requires"`

	re *regexp.Regexp
}

type checklistItem struct {
	Item            string `yaml:"item"`
	ProfileCheck    string `yaml:"profile_check"`
	DecisionKeyword string `yaml:"decision_keyword"`
	Hint            string `yaml:"hint"`

	decisionRE *regexp.Regexp
}

type rulesFile struct {
	Pitfalls          []pitfallRule              `yaml:"pitfalls"`
	TopicDependencies []dependencyRule           `yaml:"topic_dependencies"`
	StageChecklist    map[string][]checklistItem `yaml:"stage_checklist"`
}

// RuleSet holds the compiled guidance rules. Loaded once at startup;
// a malformed rule file is a fatal error, never a request-time one.
type RuleSet struct {
	pitfalls  []pitfallRule
	deps      []dependencyRule
	checklist map[string][]checklistItem
}

// NewRuleSet loads the embedded default rules.
func NewRuleSet() (*RuleSet, error) {
	return NewRuleSetFromBytes(defaultRules)
}

// NewRuleSetFromFile loads guidance rules from a YAML file, overriding
// the embedded defaults.
func NewRuleSetFromFile(path string) (*RuleSet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules %s: %w", path, err)
	}
	return NewRuleSetFromBytes(content)
}

// NewRuleSetFromBytes parses a rules document and compiles every
// pattern up front.
func NewRuleSetFromBytes(content []byte) (*RuleSet, error) {
	var file rulesFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	rs := &RuleSet{
		pitfalls:  file.Pitfalls,
		deps:      file.TopicDependencies,
		checklist: file.StageChecklist,
	}
	for i := range rs.pitfalls {
		rule := &rs.pitfalls[i]
		if rule.Pattern == "" || rule.Warning == "" {
			return nil, fmt.Errorf("pitfall rule %d: pattern and warning are required", i)
		}
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pitfall rule %d: %w", i, err)
		}
		rule.re = re
	}
	for i := range rs.deps {
		rule := &rs.deps[i]
		re, err := regexp.Compile("(?i)" + rule.Trigger)
		if err != nil {
			return nil, fmt.Errorf("topic dependency %d: %w", i, err)
		}
		rule.re = re
		for j := range rule.Requires {
			if err := compileCheck(&rule.Requires[j]); err != nil {
				return nil, fmt.Errorf("topic dependency %d check %d: %w", i, j, err)
			}
		}
	}
	for stage, items := range rs.checklist {
		for i := range items {
			item := &items[i]
			if item.DecisionKeyword == "" {
				continue
			}
			re, err := regexp.Compile("(?i)" + item.DecisionKeyword)
			if err != nil {
				return nil, fmt.Errorf("stage %s checklist %d: %w", stage, i, err)
			}
			item.decisionRE = re
		}
	}
	return rs, nil
}

func compileCheck(c *dependencyCheck) error {
	switch {
	case strings.HasPrefix(c.Check, "profile."):
		c.field = strings.TrimPrefix(c.Check, "profile.")
		return nil
	case strings.HasPrefix(c.Check, "decision:"):
		re, err := regexp.Compile("(?i)" + strings.TrimPrefix(c.Check, "decision:"))
		if err != nil {
			return err
		}
		c.decisionRE = re
		return nil
	default:
		return fmt.Errorf("unknown check kind %q", c.Check)
	}
}

// PitfallWarnings returns the warnings for every risky pattern the
// message matches, in rule order.
func (r *RuleSet) PitfallWarnings(message string) []string {
	var warnings []string
	for _, rule := range r.pitfalls {
		if rule.re.MatchString(message) {
			warnings = append(warnings, rule.Warning)
		}
	}
	return warnings
}

// ProactiveGuidance builds a prompt section reminding the user of
// prerequisites they have skipped. Topic dependencies take priority;
// the stage checklist fires only when no topic rule triggered. Returns
// "" when the turn should stay quiet.
func (r *RuleSet) ProactiveGuidance(snap *profile.Snapshot, stage, message string) string {
	if snap == nil || utf8.RuneCountInString(message) < 2 {
		return ""
	}

	var texts []string
	for _, d := range snap.Decisions {
		texts = append(texts, d.Text)
	}
	decisionTexts := strings.Join(texts, " ")

	var hints []string
	for _, rule := range r.deps {
		if !rule.re.MatchString(message) {
			continue
		}
		for _, req := range rule.Requires {
			if !req.satisfied(snap, decisionTexts) {
				hints = append(hints, req.MissingHint)
			}
		}
	}
	if len(hints) > 0 {
		hints = dedup(hints)
		if len(hints) > maxTopicHints {
			hints = hints[:maxTopicHints]
		}
		lines := []string{"【友情提醒——以下是跟用户当前话题相关的前置事项，如果用户还没做，请在回答中像朋友一样自然带一句，不要生硬罗列】"}
		for _, h := range hints {
			lines = append(lines, "- "+h)
		}
		return strings.Join(lines, "\n")
	}

	items, ok := r.checklist[stage]
	if !ok {
		return ""
	}
	var pending []checklistItem
	for _, item := range items {
		if item.ProfileCheck != "" && profileFieldSet(snap, item.ProfileCheck) {
			continue
		}
		if item.decisionRE != nil && item.decisionRE.MatchString(decisionTexts) {
			continue
		}
		pending = append(pending, item)
	}
	if len(pending) == 0 {
		return ""
	}
	if len(pending) > maxStageHints {
		pending = pending[:maxStageHints]
	}
	lines := []string{"【阶段提醒——当前「" + stage + "」阶段有事项未确定，如果和用户话题相关可以自然提一句，不相关就不用提】"}
	for _, item := range pending {
		lines = append(lines, "- "+item.Item+"："+item.Hint)
	}
	return strings.Join(lines, "\n")
}

func (c dependencyCheck) satisfied(snap *profile.Snapshot, decisionTexts string) bool {
	if c.decisionRE != nil {
		return c.decisionRE.MatchString(decisionTexts)
	}
	return profileFieldSet(snap, c.field)
}

func profileFieldSet(snap *profile.Snapshot, field string) bool {
	switch field {
	case "budget_range":
		return snap.BudgetRange != nil
	case "preferred_styles":
		return len(snap.PreferredStyles) > 0
	case "house_area":
		return snap.HouseArea != nil
	default:
		return false
	}
}

func dedup(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
