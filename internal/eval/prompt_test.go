package eval

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dayscore-backend/internal/models"
)

func testEntry() models.DailyEntry {
	return models.DailyEntry{
		ID:   1,
		Date: time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC),
		Plan: "Work on feature X",
		Fact: "Feature X shipped",
	}
}

func fullHierarchy() Hierarchy {
	return Hierarchy{
		Dream:    "Become a senior manager",
		Year:     []string{"Lead a team of five"},
		HalfYear: []string{"Own a product area"},
		Quarter:  []string{"Deliver the Q roadmap"},
		Month:    []string{"Close out the migration"},
		Week:     []string{"Ship feature X", "Unblock the intern"},
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	date := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	tasks := []models.OpenTask{
		{ID: 3, Text: "Write the postmortem", Type: models.TaskOperational, OriginDate: date.AddDate(0, 0, -2)},
	}

	a := BuildPrompt(fullHierarchy(), testEntry(), tasks, date)
	b := BuildPrompt(fullHierarchy(), testEntry(), tasks, date)
	assert.Equal(t, a, b)
}

func TestBuildPromptSectionOrder(t *testing.T) {
	date := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	p := BuildPrompt(fullHierarchy(), testEntry(), nil, date)

	sections := []string{
		"5-YEAR DREAM:",
		"YEAR GOALS:",
		"HALF-YEAR GOALS:",
		"QUARTER GOALS:",
		"MONTH GOALS:",
		"WEEK GOALS:",
		"PLAN FOR THE DAY:",
		"WHAT WAS ACTUALLY DONE:",
		"OPEN TASKS CARRIED OVER:",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(p, s)
		assert.Greater(t, idx, last, "section %q out of order", s)
		last = idx
	}

	assert.Contains(t, p, "1. Ship feature X")
	assert.Contains(t, p, "2. Unblock the intern")
	assert.Contains(t, p, "Work on feature X")
	assert.Contains(t, p, "Feature X shipped")
	assert.Contains(t, p, "2025-03-12")
}

func TestBuildPromptEmptyLevelsGetExplicitMarkers(t *testing.T) {
	date := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	p := BuildPrompt(Hierarchy{Dream: "Become a senior manager"}, testEntry(), nil, date)

	// Empty levels are rendered, not omitted.
	assert.Equal(t, 5, strings.Count(p, "none specified"))
	assert.Contains(t, p, "WEEK GOALS:\nnone specified")
	assert.Contains(t, p, "OPEN TASKS CARRIED OVER:\nnone\n")
}

func TestBuildPromptOpenTasksNumbered(t *testing.T) {
	date := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	tasks := []models.OpenTask{
		{Text: "Prepare quarterly review", Type: models.TaskStrategic, OriginDate: date.AddDate(0, 0, -7)},
		{Text: "Answer the vendor", Type: models.TaskOperational, OriginDate: date.AddDate(0, 0, -1)},
	}
	p := BuildPrompt(fullHierarchy(), testEntry(), tasks, date)

	assert.Contains(t, p, "1. [strategic, since 2025-03-05] Prepare quarterly review")
	assert.Contains(t, p, "2. [operational, since 2025-03-11] Answer the vendor")
}

func TestBuildPromptEndsWithContract(t *testing.T) {
	date := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	p := BuildPrompt(fullHierarchy(), testEntry(), nil, date)

	assert.True(t, strings.HasSuffix(p, promptContract))
	assert.Contains(t, p, "works, partial, no")
}
