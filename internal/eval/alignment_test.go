package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dayscore-backend/internal/models"
)

func TestParseAlignmentStatus(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		want   models.AlignmentStatus
		wantOK bool
	}{
		{"works", "Some analysis + works", models.AlignmentWorks, true},
		{"partial", "Half of it landed + partial", models.AlignmentPartial, true},
		{"no", "Nothing moved + no", models.AlignmentNo, true},
		{"uppercase", "SOLID DAY + WORKS", models.AlignmentWorks, true},
		{"mixed case", "Good pace + Partial", models.AlignmentPartial, true},
		{"trailing period", "The day supports the week + works.", models.AlignmentWorks, true},
		{"trailing whitespace", "On track + works  \n", models.AlignmentWorks, true},
		{"no separator", "On track works", models.AlignmentWorks, true},
		{"glued plus", "On track +works", models.AlignmentWorks, true},
		{"russian works", "День поддерживает неделю + работает", models.AlignmentWorks, true},
		{"russian partial", "Сдвиг есть, но мало + частично", models.AlignmentPartial, true},
		{"russian no", "Связи с целью нет + нет", models.AlignmentNo, true},
		{"no keyword", "plain analysis with no trailing marker", "", false},
		{"keyword not trailing", "works was mentioned early, then drifted", "", false},
		{"empty", "", "", false},
		{"only punctuation", "...", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseAlignmentStatus(tc.text)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
