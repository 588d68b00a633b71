package models

import "time"

// PeriodType identifies one level of the goal hierarchy between a single
// day and the dream goal.
type PeriodType string

const (
	PeriodWeek     PeriodType = "week"
	PeriodMonth    PeriodType = "month"
	PeriodQuarter  PeriodType = "quarter"
	PeriodHalfYear PeriodType = "half_year"
	PeriodYear     PeriodType = "year"
)

// PeriodTypes lists the period-scoped levels from shortest to longest.
// The dream goal sits above all of them and is not period-scoped.
var PeriodTypes = []PeriodType{
	PeriodWeek,
	PeriodMonth,
	PeriodQuarter,
	PeriodHalfYear,
	PeriodYear,
}

func (p PeriodType) Valid() bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodHalfYear, PeriodYear:
		return true
	}
	return false
}

// DreamGoal is the single long-term aspiration. One authoritative row.
type DreamGoal struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PeriodGoalSet is the ordered goal list declared for one calendar period.
type PeriodGoalSet struct {
	ID          int64      `json:"id"`
	PeriodType  PeriodType `json:"period_type"`
	PeriodStart time.Time  `json:"period_start"`
	PeriodEnd   time.Time  `json:"period_end"`
	Goals       []string   `json:"goals"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// DailyEntry pairs a calendar date with its plan and fact. At most one
// per date; plan and fact are settable independently.
type DailyEntry struct {
	ID        int64     `json:"id"`
	Date      time.Time `json:"date"`
	Plan      string    `json:"plan"`
	Fact      string    `json:"fact"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskType classifies an open task.
type TaskType string

const (
	TaskStrategic   TaskType = "strategic"
	TaskOperational TaskType = "operational"
)

func (t TaskType) Valid() bool {
	return t == TaskStrategic || t == TaskOperational
}

// OpenTask is a carried-over unit of incomplete work.
type OpenTask struct {
	ID         int64      `json:"id"`
	Text       string     `json:"text"`
	Type       TaskType   `json:"type"`
	OriginDate time.Time  `json:"origin_date"`
	Closed     bool       `json:"closed"`
	ClosedAt   *time.Time `json:"closed_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// AlignmentStatus is the tri-state verdict on whether effort at one level
// advances the next level up.
type AlignmentStatus string

const (
	AlignmentWorks   AlignmentStatus = "works"
	AlignmentPartial AlignmentStatus = "partial"
	AlignmentNo      AlignmentStatus = "no"
)

// AlignmentLevel holds the extracted status for one adjacent pair of the
// hierarchy chain, plus the narrative it was extracted from. Unparsed is
// set when no trailing status keyword was found and the conservative
// fallback was applied.
type AlignmentLevel struct {
	Status   AlignmentStatus `json:"status"`
	Analysis string          `json:"analysis"`
	Unparsed bool            `json:"unparsed"`
}

// Evaluation is the persisted, LLM-produced assessment of one DailyEntry.
type Evaluation struct {
	ID           int64 `json:"id"`
	DailyEntryID int64 `json:"daily_entry_id"`

	StrategyScore   int     `json:"strategy_score"`
	OperationsScore int     `json:"operations_score"`
	TeamScore       int     `json:"team_score"`
	EfficiencyScore int     `json:"efficiency_score"`
	OverallScore    float64 `json:"overall_score"`

	PlanVsFact      string `json:"plan_vs_fact"`
	Feedback        string `json:"feedback"`
	Recommendations string `json:"recommendations"`

	AlignmentDayWeek      AlignmentLevel `json:"alignment_day_week"`
	AlignmentWeekMonth    AlignmentLevel `json:"alignment_week_month"`
	AlignmentMonthQuarter AlignmentLevel `json:"alignment_month_quarter"`
	AlignmentQuarterHalf  AlignmentLevel `json:"alignment_quarter_half"`
	AlignmentHalfYear     AlignmentLevel `json:"alignment_half_year"`
	AlignmentYearDream    AlignmentLevel `json:"alignment_year_dream"`

	CreatedAt time.Time `json:"created_at"`
}
