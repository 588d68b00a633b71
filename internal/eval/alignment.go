package eval

import (
	"strings"

	"dayscore-backend/internal/models"
)

// statusKeywords maps recognized trailing keywords to a status. The
// model writes Russian narratives with an appended keyword by contract,
// so both English and Russian forms are accepted.
var statusKeywords = map[string]models.AlignmentStatus{
	"works":    models.AlignmentWorks,
	"partial":  models.AlignmentPartial,
	"no":       models.AlignmentNo,
	"работает": models.AlignmentWorks,
	"частично": models.AlignmentPartial,
	"нет":      models.AlignmentNo,
}

// ParseAlignmentStatus extracts the trailing status keyword from an
// alignment narrative, case-insensitively. The keyword is expected as the
// last word of the text, optionally preceded by a "+" separator. Returns
// ok=false when no keyword is found; the caller picks the fallback.
func ParseAlignmentStatus(text string) (models.AlignmentStatus, bool) {
	trimmed := strings.TrimRightFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == ')' || r == '"' || r == '\'' || r == ' ' || r == '\t' || r == '\n'
	})
	if trimmed == "" {
		return "", false
	}

	words := strings.Fields(trimmed)
	last := strings.ToLower(words[len(words)-1])
	last = strings.TrimPrefix(last, "+")
	if last == "" {
		return "", false
	}

	status, ok := statusKeywords[last]
	return status, ok
}
