package decision

import (
	"regexp"
	"strconv"
	"strings"
)

var optionNumbers = regexp.MustCompile(`\d+`)

// ProfileSource exposes named profile fields to option matching. Numeric
// fields are matched against numbers embedded in option labels, list
// fields by substring in either direction.
type ProfileSource interface {
	NumericField(name string) (float64, bool)
	ListField(name string) ([]string, bool)
}

// MatchText resolves a node's answer from free text. Exact option-label
// substring wins over keyword patterns, and options are tried in
// declared order so the first label present in the message is the
// answer.
func MatchText(node *Node, message string) (string, bool) {
	if node == nil || message == "" {
		return "", false
	}
	for _, option := range node.Options {
		if strings.Contains(message, option) {
			return option, true
		}
	}
	for _, option := range node.Options {
		for _, re := range node.compiled[option] {
			if re.MatchString(message) {
				return option, true
			}
		}
	}
	return "", false
}

// MatchProfile resolves a node's answer from a profile field bound via
// profile_field. Numeric values match an option whose label embeds a
// [low,high] range containing the value, or a single number with a 以上
// suffix matched by >=. List values match when an element contains or is
// contained by an option label.
func MatchProfile(node *Node, profile ProfileSource) (string, bool) {
	if node == nil || profile == nil || node.ProfileField == "" {
		return "", false
	}
	if value, ok := profile.NumericField(node.ProfileField); ok {
		return matchNumeric(node.Options, value)
	}
	if values, ok := profile.ListField(node.ProfileField); ok {
		for _, v := range values {
			for _, option := range node.Options {
				if strings.Contains(option, v) || strings.Contains(v, option) {
					return option, true
				}
			}
		}
	}
	return "", false
}

func matchNumeric(options []string, value float64) (string, bool) {
	for _, option := range options {
		nums := optionNumbers.FindAllString(option, -1)
		switch {
		case len(nums) >= 2:
			low, err1 := strconv.ParseFloat(nums[0], 64)
			high, err2 := strconv.ParseFloat(nums[1], 64)
			if err1 == nil && err2 == nil && low <= value && value <= high {
				return option, true
			}
		case len(nums) == 1 && strings.Contains(option, "以上"):
			threshold, err := strconv.ParseFloat(nums[0], 64)
			if err == nil && value >= threshold {
				return option, true
			}
		}
	}
	return "", false
}
