package eval

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wellFormedResponse() map[string]any {
	return map[string]any{
		"strategy_score":   7,
		"operations_score": 8,
		"team_score":       6,
		"efficiency_score": 7,
		"overall_score":    7.0,
		"plan_vs_fact":     "Planned feature X, shipped feature X.",
		"feedback":         "Too much time on review ping-pong.",
		"alignment": map[string]any{
			"day_to_week":      "Directly supports the weekly goal + works",
			"week_to_month":    "Week is on track for the month + works",
			"month_to_quarter": "Month contributes partially + partial",
			"quarter_to_half":  "Quarter is drifting + no",
			"half_to_year":     "Half-year pace is fine + works",
			"year_to_dream":    "Year theme matches the dream + works",
		},
		"recommendations": "Batch reviews into one slot.",
	}
}

func marshal(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestParseResponseRoundTrip(t *testing.T) {
	resp, err := ParseResponse(marshal(t, wellFormedResponse()))
	require.NoError(t, err)

	assert.Equal(t, 7, resp.StrategyScore)
	assert.Equal(t, 8, resp.OperationsScore)
	assert.Equal(t, 6, resp.TeamScore)
	assert.Equal(t, 7, resp.EfficiencyScore)
	assert.Equal(t, 7.0, resp.OverallScore)
	assert.Equal(t, "Planned feature X, shipped feature X.", resp.PlanVsFact)
	assert.Equal(t, "Too much time on review ping-pong.", resp.Feedback)
	assert.Equal(t, "Batch reviews into one slot.", resp.Recommendations)
	assert.Equal(t, "Directly supports the weekly goal + works", resp.Alignment.DayToWeek)
	assert.Equal(t, "Quarter is drifting + no", resp.Alignment.QuarterToHalf)
}

func TestParseResponseToleratesProseAndFences(t *testing.T) {
	obj := marshal(t, wellFormedResponse())

	cases := []struct {
		name string
		raw  string
	}{
		{"bare object", obj},
		{"leading prose", "Here is my evaluation of the day:\n" + obj},
		{"trailing prose", obj + "\nLet me know if you need more detail."},
		{"json fence", "```json\n" + obj + "\n```"},
		{"plain fence with prose", "Sure!\n```\n" + obj + "\n```\nDone."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := ParseResponse(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, 7.0, resp.OverallScore)
		})
	}
}

func TestParseResponseEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t\n"} {
		_, err := ParseResponse(raw)
		require.ErrorIs(t, err, ErrEmptyResponse)
	}
}

func TestParseResponseInvalidJSON(t *testing.T) {
	_, err := ParseResponse("I cannot evaluate this.")
	require.ErrorIs(t, err, ErrInvalidJSON)

	_, err = ParseResponse(`{"strategy_score": }`)
	require.ErrorIs(t, err, ErrInvalidJSON)
}

func TestParseResponseMissingFields(t *testing.T) {
	for _, field := range []string{
		"strategy_score", "operations_score", "team_score", "efficiency_score",
		"overall_score", "plan_vs_fact", "feedback", "alignment", "recommendations",
	} {
		t.Run(field, func(t *testing.T) {
			body := wellFormedResponse()
			delete(body, field)

			_, err := ParseResponse(marshal(t, body))
			require.ErrorIs(t, err, ErrMissingField)
			assert.Contains(t, err.Error(), field)
		})
	}
}

func TestParseResponseInvalidScores(t *testing.T) {
	cases := []any{0, 11, 15, -3, 7.5, "7"}
	for _, bad := range cases {
		t.Run(fmt.Sprintf("%v", bad), func(t *testing.T) {
			body := wellFormedResponse()
			body["strategy_score"] = bad

			_, err := ParseResponse(marshal(t, body))
			require.ErrorIs(t, err, ErrInvalidScore)
		})
	}
}

func TestParseResponseInvalidOverallScore(t *testing.T) {
	for _, bad := range []any{0.5, 10.5, 5.7, 1.3, "8"} {
		t.Run(fmt.Sprintf("%v", bad), func(t *testing.T) {
			body := wellFormedResponse()
			body["overall_score"] = bad

			_, err := ParseResponse(marshal(t, body))
			require.ErrorIs(t, err, ErrInvalidOverallScore)
		})
	}
}

func TestParseResponseValidOverallScores(t *testing.T) {
	for v := 1.0; v <= 10.0; v += 0.5 {
		body := wellFormedResponse()
		body["overall_score"] = v

		resp, err := ParseResponse(marshal(t, body))
		require.NoError(t, err, "overall_score=%v", v)
		assert.Equal(t, v, resp.OverallScore)
	}
}

func TestParseResponseAlignmentShape(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		body := wellFormedResponse()
		delete(body["alignment"].(map[string]any), "half_to_year")
		_, err := ParseResponse(marshal(t, body))
		require.ErrorIs(t, err, ErrInvalidAlignmentShape)
	})

	t.Run("extra key", func(t *testing.T) {
		body := wellFormedResponse()
		body["alignment"].(map[string]any)["dream_to_life"] = "extra + works"
		_, err := ParseResponse(marshal(t, body))
		require.ErrorIs(t, err, ErrInvalidAlignmentShape)
	})

	t.Run("empty narrative", func(t *testing.T) {
		body := wellFormedResponse()
		body["alignment"].(map[string]any)["day_to_week"] = "   "
		_, err := ParseResponse(marshal(t, body))
		require.ErrorIs(t, err, ErrInvalidAlignmentShape)
	})

	t.Run("non-string narrative", func(t *testing.T) {
		body := wellFormedResponse()
		body["alignment"].(map[string]any)["day_to_week"] = 3
		_, err := ParseResponse(marshal(t, body))
		require.ErrorIs(t, err, ErrInvalidAlignmentShape)
	})

	t.Run("not an object", func(t *testing.T) {
		body := wellFormedResponse()
		body["alignment"] = "all good"
		_, err := ParseResponse(marshal(t, body))
		require.ErrorIs(t, err, ErrInvalidAlignmentShape)
	})
}

func TestParseResponseDoesNotPoliceMean(t *testing.T) {
	body := wellFormedResponse()
	// Mean of the four categories is 7.0; the stated overall disagrees.
	body["overall_score"] = 2.5

	resp, err := ParseResponse(marshal(t, body))
	require.NoError(t, err)
	assert.Equal(t, 2.5, resp.OverallScore)
}

func TestExtractJSONObjectBracesInsideStrings(t *testing.T) {
	raw := `{"feedback": "use {braces} carefully", "x": 1}`
	assert.Equal(t, raw, extractJSONObject("noise "+raw+" noise"))
}

func TestIsValidScore(t *testing.T) {
	for v := 1; v <= 10; v++ {
		assert.True(t, isValidScore(float64(v)), "%d", v)
	}
	for _, v := range []float64{0, -1, 11, 100, 5.5, 9.999} {
		assert.False(t, isValidScore(v), "%v", v)
	}
}

func TestPromptContractMatchesValidator(t *testing.T) {
	// The prompt's closing block is the only upstream lever on output
	// shape; every field the validator requires must be named in it.
	for _, field := range requiredFields {
		assert.True(t, strings.Contains(promptContract, `"`+field+`"`), "field %q missing from contract block", field)
	}
	for _, key := range alignmentKeys {
		assert.True(t, strings.Contains(promptContract, `"`+key+`"`), "alignment key %q missing from contract block", key)
	}
}
