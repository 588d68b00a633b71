// Package store is the PostgreSQL persistence layer. Reads use the
// most-recently-created row wherever legacy duplicates could exist;
// writes are upserts so each logical record has one authoritative row.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"dayscore-backend/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
)

type Store struct {
	DB *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

// ---------------------------------------------------------------------
// Dream goal
// ---------------------------------------------------------------------

func (s *Store) GetDreamGoal(ctx context.Context) (models.DreamGoal, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT id, text, created_at, updated_at
		FROM dream_goal
		ORDER BY id DESC
		LIMIT 1
	`)

	var g models.DreamGoal
	err := row.Scan(&g.ID, &g.Text, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DreamGoal{}, ErrNotFound
	}
	if err != nil {
		return models.DreamGoal{}, fmt.Errorf("get dream goal: %w", err)
	}
	return g, nil
}

// UpsertDreamGoal writes the single authoritative dream row in place.
func (s *Store) UpsertDreamGoal(ctx context.Context, text string) (models.DreamGoal, error) {
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO dream_goal (id, text)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			updated_at = now()
		RETURNING id, text, created_at, updated_at
	`, text)

	var g models.DreamGoal
	if err := row.Scan(&g.ID, &g.Text, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return models.DreamGoal{}, fmt.Errorf("upsert dream goal: %w", err)
	}
	return g, nil
}

// ---------------------------------------------------------------------
// Period goal sets
// ---------------------------------------------------------------------

// GetPeriodGoalSet returns the most recently created set of the given
// type whose range contains date.
func (s *Store) GetPeriodGoalSet(ctx context.Context, pt models.PeriodType, date time.Time) (models.PeriodGoalSet, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT id, period_type, period_start, period_end, goals, created_at, updated_at
		FROM period_goal_sets
		WHERE period_type = $1
		  AND period_start <= $2::date
		  AND period_end >= $2::date
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, string(pt), date)

	var set models.PeriodGoalSet
	err := row.Scan(
		&set.ID, &set.PeriodType, &set.PeriodStart, &set.PeriodEnd,
		pq.Array(&set.Goals), &set.CreatedAt, &set.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PeriodGoalSet{}, ErrNotFound
	}
	if err != nil {
		return models.PeriodGoalSet{}, fmt.Errorf("get %s goal set: %w", pt, err)
	}
	return set, nil
}

func (s *Store) UpsertPeriodGoalSet(ctx context.Context, pt models.PeriodType, start, end time.Time, goals []string) (models.PeriodGoalSet, error) {
	if goals == nil {
		goals = []string{}
	}
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO period_goal_sets (period_type, period_start, period_end, goals)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (period_type, period_start) DO UPDATE SET
			period_end = EXCLUDED.period_end,
			goals = EXCLUDED.goals,
			updated_at = now()
		RETURNING id, period_type, period_start, period_end, goals, created_at, updated_at
	`, string(pt), start, end, pq.Array(goals))

	var set models.PeriodGoalSet
	err := row.Scan(
		&set.ID, &set.PeriodType, &set.PeriodStart, &set.PeriodEnd,
		pq.Array(&set.Goals), &set.CreatedAt, &set.UpdatedAt,
	)
	if err != nil {
		return models.PeriodGoalSet{}, fmt.Errorf("upsert %s goal set: %w", pt, err)
	}
	return set, nil
}

// ---------------------------------------------------------------------
// Daily entries
// ---------------------------------------------------------------------

func (s *Store) GetDailyEntry(ctx context.Context, date time.Time) (models.DailyEntry, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT id, entry_date, plan, fact, created_at, updated_at
		FROM daily_entries
		WHERE entry_date = $1::date
	`, date)

	var e models.DailyEntry
	err := row.Scan(&e.ID, &e.Date, &e.Plan, &e.Fact, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DailyEntry{}, ErrNotFound
	}
	if err != nil {
		return models.DailyEntry{}, fmt.Errorf("get daily entry: %w", err)
	}
	return e, nil
}

// UpsertDailyEntry creates or partially updates the entry for date.
// A nil plan or fact leaves the stored field untouched.
func (s *Store) UpsertDailyEntry(ctx context.Context, date time.Time, plan, fact *string) (models.DailyEntry, error) {
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO daily_entries (entry_date, plan, fact)
		VALUES ($1::date, COALESCE($2, ''), COALESCE($3, ''))
		ON CONFLICT (entry_date) DO UPDATE SET
			plan = COALESCE($2, daily_entries.plan),
			fact = COALESCE($3, daily_entries.fact),
			updated_at = now()
		RETURNING id, entry_date, plan, fact, created_at, updated_at
	`, date, plan, fact)

	var e models.DailyEntry
	if err := row.Scan(&e.ID, &e.Date, &e.Plan, &e.Fact, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return models.DailyEntry{}, fmt.Errorf("upsert daily entry: %w", err)
	}
	return e, nil
}

// ---------------------------------------------------------------------
// Open tasks
// ---------------------------------------------------------------------

// ListOpenTasks returns every unclosed task regardless of origin date.
func (s *Store) ListOpenTasks(ctx context.Context) ([]models.OpenTask, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, text, task_type, origin_date, closed, closed_at, created_at
		FROM open_tasks
		WHERE NOT closed
		ORDER BY origin_date, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.OpenTask
	for rows.Next() {
		var t models.OpenTask
		if err := rows.Scan(&t.ID, &t.Text, &t.Type, &t.OriginDate, &t.Closed, &t.ClosedAt, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan open task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) CreateOpenTask(ctx context.Context, text string, taskType models.TaskType, originDate time.Time) (models.OpenTask, error) {
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO open_tasks (text, task_type, origin_date)
		VALUES ($1, $2, $3::date)
		RETURNING id, text, task_type, origin_date, closed, closed_at, created_at
	`, text, string(taskType), originDate)

	var t models.OpenTask
	err := row.Scan(&t.ID, &t.Text, &t.Type, &t.OriginDate, &t.Closed, &t.ClosedAt, &t.CreatedAt)
	if err != nil {
		return models.OpenTask{}, fmt.Errorf("create open task: %w", err)
	}
	return t, nil
}

// CloseOpenTask marks the task closed. Closing an already-closed task is
// a no-op success.
func (s *Store) CloseOpenTask(ctx context.Context, id int64) (models.OpenTask, error) {
	row := s.DB.QueryRowContext(ctx, `
		UPDATE open_tasks
		SET closed = TRUE,
		    closed_at = COALESCE(closed_at, now())
		WHERE id = $1
		RETURNING id, text, task_type, origin_date, closed, closed_at, created_at
	`, id)

	var t models.OpenTask
	err := row.Scan(&t.ID, &t.Text, &t.Type, &t.OriginDate, &t.Closed, &t.ClosedAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.OpenTask{}, ErrNotFound
	}
	if err != nil {
		return models.OpenTask{}, fmt.Errorf("close open task: %w", err)
	}
	return t, nil
}

// ---------------------------------------------------------------------
// Evaluations
// ---------------------------------------------------------------------

const evaluationColumns = `
	id, daily_entry_id,
	strategy_score, operations_score, team_score, efficiency_score, overall_score,
	plan_vs_fact, feedback, recommendations,
	align_day_week_status, align_day_week_text, align_day_week_unparsed,
	align_week_month_status, align_week_month_text, align_week_month_unparsed,
	align_month_quarter_status, align_month_quarter_text, align_month_quarter_unparsed,
	align_quarter_half_status, align_quarter_half_text, align_quarter_half_unparsed,
	align_half_year_status, align_half_year_text, align_half_year_unparsed,
	align_year_dream_status, align_year_dream_text, align_year_dream_unparsed,
	created_at`

// UpsertEvaluation stores the evaluation for its daily entry, replacing
// any previous one. One evaluation per entry is enforced by the unique
// constraint on daily_entry_id.
func (s *Store) UpsertEvaluation(ctx context.Context, e models.Evaluation) (models.Evaluation, error) {
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO evaluations (
			daily_entry_id,
			strategy_score, operations_score, team_score, efficiency_score, overall_score,
			plan_vs_fact, feedback, recommendations,
			align_day_week_status, align_day_week_text, align_day_week_unparsed,
			align_week_month_status, align_week_month_text, align_week_month_unparsed,
			align_month_quarter_status, align_month_quarter_text, align_month_quarter_unparsed,
			align_quarter_half_status, align_quarter_half_text, align_quarter_half_unparsed,
			align_half_year_status, align_half_year_text, align_half_year_unparsed,
			align_year_dream_status, align_year_dream_text, align_year_dream_unparsed
		)
		VALUES (
			$1,
			$2, $3, $4, $5, $6,
			$7, $8, $9,
			$10, $11, $12,
			$13, $14, $15,
			$16, $17, $18,
			$19, $20, $21,
			$22, $23, $24,
			$25, $26, $27
		)
		ON CONFLICT (daily_entry_id) DO UPDATE SET
			strategy_score = EXCLUDED.strategy_score,
			operations_score = EXCLUDED.operations_score,
			team_score = EXCLUDED.team_score,
			efficiency_score = EXCLUDED.efficiency_score,
			overall_score = EXCLUDED.overall_score,
			plan_vs_fact = EXCLUDED.plan_vs_fact,
			feedback = EXCLUDED.feedback,
			recommendations = EXCLUDED.recommendations,
			align_day_week_status = EXCLUDED.align_day_week_status,
			align_day_week_text = EXCLUDED.align_day_week_text,
			align_day_week_unparsed = EXCLUDED.align_day_week_unparsed,
			align_week_month_status = EXCLUDED.align_week_month_status,
			align_week_month_text = EXCLUDED.align_week_month_text,
			align_week_month_unparsed = EXCLUDED.align_week_month_unparsed,
			align_month_quarter_status = EXCLUDED.align_month_quarter_status,
			align_month_quarter_text = EXCLUDED.align_month_quarter_text,
			align_month_quarter_unparsed = EXCLUDED.align_month_quarter_unparsed,
			align_quarter_half_status = EXCLUDED.align_quarter_half_status,
			align_quarter_half_text = EXCLUDED.align_quarter_half_text,
			align_quarter_half_unparsed = EXCLUDED.align_quarter_half_unparsed,
			align_half_year_status = EXCLUDED.align_half_year_status,
			align_half_year_text = EXCLUDED.align_half_year_text,
			align_half_year_unparsed = EXCLUDED.align_half_year_unparsed,
			align_year_dream_status = EXCLUDED.align_year_dream_status,
			align_year_dream_text = EXCLUDED.align_year_dream_text,
			align_year_dream_unparsed = EXCLUDED.align_year_dream_unparsed,
			created_at = now()
		RETURNING `+evaluationColumns,
		e.DailyEntryID,
		e.StrategyScore, e.OperationsScore, e.TeamScore, e.EfficiencyScore, e.OverallScore,
		e.PlanVsFact, e.Feedback, e.Recommendations,
		string(e.AlignmentDayWeek.Status), e.AlignmentDayWeek.Analysis, e.AlignmentDayWeek.Unparsed,
		string(e.AlignmentWeekMonth.Status), e.AlignmentWeekMonth.Analysis, e.AlignmentWeekMonth.Unparsed,
		string(e.AlignmentMonthQuarter.Status), e.AlignmentMonthQuarter.Analysis, e.AlignmentMonthQuarter.Unparsed,
		string(e.AlignmentQuarterHalf.Status), e.AlignmentQuarterHalf.Analysis, e.AlignmentQuarterHalf.Unparsed,
		string(e.AlignmentHalfYear.Status), e.AlignmentHalfYear.Analysis, e.AlignmentHalfYear.Unparsed,
		string(e.AlignmentYearDream.Status), e.AlignmentYearDream.Analysis, e.AlignmentYearDream.Unparsed,
	)

	saved, err := scanEvaluation(row)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("upsert evaluation: %w", err)
	}
	return saved, nil
}

func (s *Store) GetEvaluationByDate(ctx context.Context, date time.Time) (models.Evaluation, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+qualifyEvaluationColumns("e")+`
		FROM evaluations e
		JOIN daily_entries d ON d.id = e.daily_entry_id
		WHERE d.entry_date = $1::date
	`, date)

	e, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Evaluation{}, ErrNotFound
	}
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("get evaluation: %w", err)
	}
	return e, nil
}

func qualifyEvaluationColumns(alias string) string {
	return alias + ".id, " + alias + ".daily_entry_id, " +
		alias + ".strategy_score, " + alias + ".operations_score, " +
		alias + ".team_score, " + alias + ".efficiency_score, " +
		alias + ".overall_score, " +
		alias + ".plan_vs_fact, " + alias + ".feedback, " + alias + ".recommendations, " +
		alias + ".align_day_week_status, " + alias + ".align_day_week_text, " + alias + ".align_day_week_unparsed, " +
		alias + ".align_week_month_status, " + alias + ".align_week_month_text, " + alias + ".align_week_month_unparsed, " +
		alias + ".align_month_quarter_status, " + alias + ".align_month_quarter_text, " + alias + ".align_month_quarter_unparsed, " +
		alias + ".align_quarter_half_status, " + alias + ".align_quarter_half_text, " + alias + ".align_quarter_half_unparsed, " +
		alias + ".align_half_year_status, " + alias + ".align_half_year_text, " + alias + ".align_half_year_unparsed, " +
		alias + ".align_year_dream_status, " + alias + ".align_year_dream_text, " + alias + ".align_year_dream_unparsed, " +
		alias + ".created_at"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row rowScanner) (models.Evaluation, error) {
	var e models.Evaluation
	err := row.Scan(
		&e.ID, &e.DailyEntryID,
		&e.StrategyScore, &e.OperationsScore, &e.TeamScore, &e.EfficiencyScore, &e.OverallScore,
		&e.PlanVsFact, &e.Feedback, &e.Recommendations,
		&e.AlignmentDayWeek.Status, &e.AlignmentDayWeek.Analysis, &e.AlignmentDayWeek.Unparsed,
		&e.AlignmentWeekMonth.Status, &e.AlignmentWeekMonth.Analysis, &e.AlignmentWeekMonth.Unparsed,
		&e.AlignmentMonthQuarter.Status, &e.AlignmentMonthQuarter.Analysis, &e.AlignmentMonthQuarter.Unparsed,
		&e.AlignmentQuarterHalf.Status, &e.AlignmentQuarterHalf.Analysis, &e.AlignmentQuarterHalf.Unparsed,
		&e.AlignmentHalfYear.Status, &e.AlignmentHalfYear.Analysis, &e.AlignmentHalfYear.Unparsed,
		&e.AlignmentYearDream.Status, &e.AlignmentYearDream.Analysis, &e.AlignmentYearDream.Unparsed,
		&e.CreatedAt,
	)
	return e, err
}
