// Package eval is the evaluation core: it assembles the goal-hierarchy
// context into a prompt, validates the model's JSON reply against the
// response contract, and maps the result into a persisted evaluation.
package eval

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Contract failures. Each one is fatal to the evaluation attempt: the
// contract is all-or-nothing, a malformed response is never partially
// accepted.
var (
	ErrEmptyResponse         = errors.New("empty response")
	ErrInvalidJSON           = errors.New("invalid json in response")
	ErrMissingField          = errors.New("missing required field")
	ErrInvalidScore          = errors.New("score out of range")
	ErrInvalidOverallScore   = errors.New("invalid overall score")
	ErrInvalidAlignmentShape = errors.New("invalid alignment shape")
)

// Alignment carries the six adjacent-pair narratives. Each narrative is
// free text that by contract ends with a trailing status keyword.
type Alignment struct {
	DayToWeek      string `json:"day_to_week"`
	WeekToMonth    string `json:"week_to_month"`
	MonthToQuarter string `json:"month_to_quarter"`
	QuarterToHalf  string `json:"quarter_to_half"`
	HalfToYear     string `json:"half_to_year"`
	YearToDream    string `json:"year_to_dream"`
}

// Response is a validated evaluation reply.
type Response struct {
	StrategyScore   int       `json:"strategy_score"`
	OperationsScore int       `json:"operations_score"`
	TeamScore       int       `json:"team_score"`
	EfficiencyScore int       `json:"efficiency_score"`
	OverallScore    float64   `json:"overall_score"`
	PlanVsFact      string    `json:"plan_vs_fact"`
	Feedback        string    `json:"feedback"`
	Alignment       Alignment `json:"alignment"`
	Recommendations string    `json:"recommendations"`
}

// requiredFields is the exact top-level field list of the contract. The
// prompt's closing block enumerates the same names; keep the two in sync.
var requiredFields = []string{
	"strategy_score",
	"operations_score",
	"team_score",
	"efficiency_score",
	"overall_score",
	"plan_vs_fact",
	"feedback",
	"alignment",
	"recommendations",
}

var scoreFields = []string{
	"strategy_score",
	"operations_score",
	"team_score",
	"efficiency_score",
}

var alignmentKeys = []string{
	"day_to_week",
	"week_to_month",
	"month_to_quarter",
	"quarter_to_half",
	"half_to_year",
	"year_to_dream",
}

// ParseResponse extracts the JSON object from a raw completion and
// validates it against the response contract. The overall score is taken
// as stated once range/step checked; its relation to the mean of the four
// category scores is deliberately not policed.
func ParseResponse(raw string) (*Response, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyResponse
	}

	jsonText := extractJSONObject(raw)
	if jsonText == "" {
		return nil, fmt.Errorf("%w: no object found", ErrInvalidJSON)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonText), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	for _, name := range requiredFields {
		if _, ok := fields[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, name)
		}
	}

	resp := &Response{}

	for _, name := range scoreFields {
		var v float64
		if err := json.Unmarshal(fields[name], &v); err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidScore, name)
		}
		if !isValidScore(v) {
			return nil, fmt.Errorf("%w: %q = %v", ErrInvalidScore, name, v)
		}
		switch name {
		case "strategy_score":
			resp.StrategyScore = int(v)
		case "operations_score":
			resp.OperationsScore = int(v)
		case "team_score":
			resp.TeamScore = int(v)
		case "efficiency_score":
			resp.EfficiencyScore = int(v)
		}
	}

	var overall float64
	if err := json.Unmarshal(fields["overall_score"], &overall); err != nil {
		return nil, fmt.Errorf("%w: not a number", ErrInvalidOverallScore)
	}
	if !isValidOverallScore(overall) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOverallScore, overall)
	}
	resp.OverallScore = overall

	for name, dst := range map[string]*string{
		"plan_vs_fact":    &resp.PlanVsFact,
		"feedback":        &resp.Feedback,
		"recommendations": &resp.Recommendations,
	} {
		if err := json.Unmarshal(fields[name], dst); err != nil {
			return nil, fmt.Errorf("%w: %q is not a string", ErrInvalidJSON, name)
		}
	}

	alignment, err := parseAlignment(fields["alignment"])
	if err != nil {
		return nil, err
	}
	resp.Alignment = alignment

	return resp, nil
}

func parseAlignment(raw json.RawMessage) (Alignment, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return Alignment{}, fmt.Errorf("%w: not an object", ErrInvalidAlignmentShape)
	}
	if len(entries) != len(alignmentKeys) {
		return Alignment{}, fmt.Errorf("%w: want %d keys, got %d",
			ErrInvalidAlignmentShape, len(alignmentKeys), len(entries))
	}

	var a Alignment
	targets := map[string]*string{
		"day_to_week":      &a.DayToWeek,
		"week_to_month":    &a.WeekToMonth,
		"month_to_quarter": &a.MonthToQuarter,
		"quarter_to_half":  &a.QuarterToHalf,
		"half_to_year":     &a.HalfToYear,
		"year_to_dream":    &a.YearToDream,
	}
	for _, key := range alignmentKeys {
		value, ok := entries[key]
		if !ok {
			return Alignment{}, fmt.Errorf("%w: missing key %q", ErrInvalidAlignmentShape, key)
		}
		var text string
		if err := json.Unmarshal(value, &text); err != nil {
			return Alignment{}, fmt.Errorf("%w: %q is not a string", ErrInvalidAlignmentShape, key)
		}
		if strings.TrimSpace(text) == "" {
			return Alignment{}, fmt.Errorf("%w: %q is empty", ErrInvalidAlignmentShape, key)
		}
		*targets[key] = text
	}
	return a, nil
}

// extractJSONObject returns the first balanced {...} span in s, looking
// inside a markdown fence first. Models often wrap the object in prose.
func extractJSONObject(s string) string {
	if fenced := extractFencedBlock(s); fenced != "" {
		s = fenced
	}

	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func extractFencedBlock(s string) string {
	open := strings.Index(s, "```")
	if open == -1 {
		return ""
	}
	rest := s[open+3:]
	nl := strings.Index(rest, "\n")
	if nl == -1 {
		return ""
	}
	rest = rest[nl+1:]
	end := strings.Index(rest, "```")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

// isValidScore reports whether v is an integer in [1,10].
func isValidScore(v float64) bool {
	return v == math.Trunc(v) && v >= 1 && v <= 10
}

// isValidOverallScore reports whether v is in [1,10] on a 0.5 step.
func isValidOverallScore(v float64) bool {
	if v < 1 || v > 10 {
		return false
	}
	doubled := v * 2
	return math.Abs(doubled-math.Round(doubled)) < 1e-9
}
