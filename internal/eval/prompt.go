package eval

import (
	"fmt"
	"strings"
	"time"

	"dayscore-backend/internal/models"
)

const noneSpecified = "none specified"

const promptPersona = `You are a blunt, pragmatic performance coach. You evaluate one working day
of a single person against their hierarchy of goals, from the day up to a
5-year dream. You do not flatter, you do not soften, and you never invent
facts that are not in the input.`

const promptInstructions = `Evaluate the day. Compute exactly the following:

1. Four category scores, each an integer from 1 to 10:
   strategy_score    — did the day move the long-term direction,
   operations_score  — execution quality of the planned work,
   team_score        — interactions, delegation, communication,
   efficiency_score  — output relative to time and energy spent.
2. overall_score — the average of the four category scores, from 1 to 10,
   rounded to the nearest 0.5.
3. plan_vs_fact — a narrative comparing what was planned with what was
   actually done. Name concrete gaps.
4. feedback — blunt critique of the day. No praise padding.
5. alignment — six short narratives, one per adjacent pair of the goal
   chain: day to week, week to month, month to quarter, quarter to half
   year, half year to year, year to dream. Each narrative MUST end with
   exactly one of the keywords: works, partial, no.
6. recommendations — concrete forward-looking advice for tomorrow.`

// promptContract is the output-format block appended to every prompt.
// Its field list and nesting are the wire contract that ParseResponse
// enforces; the two must stay textually in sync.
const promptContract = `Reply with ONLY one JSON object, no prose before or after it, exactly this
shape:

{
  "strategy_score": <integer 1-10>,
  "operations_score": <integer 1-10>,
  "team_score": <integer 1-10>,
  "efficiency_score": <integer 1-10>,
  "overall_score": <number 1-10, step 0.5>,
  "plan_vs_fact": "<string>",
  "feedback": "<string>",
  "alignment": {
    "day_to_week": "<string ending with works|partial|no>",
    "week_to_month": "<string ending with works|partial|no>",
    "month_to_quarter": "<string ending with works|partial|no>",
    "quarter_to_half": "<string ending with works|partial|no>",
    "half_to_year": "<string ending with works|partial|no>",
    "year_to_dream": "<string ending with works|partial|no>"
  },
  "recommendations": "<string>"
}`

// Hierarchy is the full goal context for one date, as loaded for the
// prompt. Empty levels stay empty; the builder renders explicit markers.
type Hierarchy struct {
	Dream    string
	Year     []string
	HalfYear []string
	Quarter  []string
	Month    []string
	Week     []string
}

// BuildPrompt renders the hierarchy, the day's plan and fact, and the
// open tasks into the evaluation request. Pure and deterministic: the
// same input always produces the same string.
func BuildPrompt(h Hierarchy, entry models.DailyEntry, tasks []models.OpenTask, date time.Time) string {
	var b strings.Builder

	b.WriteString(promptPersona)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Date under evaluation: %s\n\n", date.Format("2006-01-02"))

	b.WriteString("5-YEAR DREAM:\n")
	if strings.TrimSpace(h.Dream) == "" {
		b.WriteString(noneSpecified + "\n")
	} else {
		b.WriteString(h.Dream + "\n")
	}

	writeGoalSection(&b, "YEAR GOALS", h.Year)
	writeGoalSection(&b, "HALF-YEAR GOALS", h.HalfYear)
	writeGoalSection(&b, "QUARTER GOALS", h.Quarter)
	writeGoalSection(&b, "MONTH GOALS", h.Month)
	writeGoalSection(&b, "WEEK GOALS", h.Week)

	b.WriteString("\nPLAN FOR THE DAY:\n")
	b.WriteString(entry.Plan + "\n")
	b.WriteString("\nWHAT WAS ACTUALLY DONE:\n")
	b.WriteString(entry.Fact + "\n")

	b.WriteString("\nOPEN TASKS CARRIED OVER:\n")
	if len(tasks) == 0 {
		b.WriteString("none\n")
	} else {
		for i, t := range tasks {
			fmt.Fprintf(&b, "%d. [%s, since %s] %s\n", i+1, t.Type, t.OriginDate.Format("2006-01-02"), t.Text)
		}
	}

	b.WriteString("\n")
	b.WriteString(promptInstructions)
	b.WriteString("\n\n")
	b.WriteString(promptContract)

	return b.String()
}

func writeGoalSection(b *strings.Builder, title string, goals []string) {
	b.WriteString("\n" + title + ":\n")
	if len(goals) == 0 {
		b.WriteString(noneSpecified + "\n")
		return
	}
	for i, g := range goals {
		fmt.Fprintf(b, "%d. %s\n", i+1, g)
	}
}
