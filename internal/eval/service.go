package eval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dayscore-backend/internal/models"
	"dayscore-backend/internal/store"
)

// Input errors: preconditions the caller must satisfy before requesting
// an evaluation. Never silently defaulted.
var (
	ErrNoDailyEntry = errors.New("no daily entry for date")
	ErrMissingPlan  = errors.New("daily entry has no plan")
	ErrMissingFact  = errors.New("daily entry has no fact")
)

// dreamPlaceholder stands in when no dream goal exists yet, so the
// prompt still carries an explicit top of the hierarchy.
const dreamPlaceholder = "The user has not formulated a long-term dream yet."

// Store is the persistence surface the evaluation flow consumes.
// *store.Store satisfies it; tests substitute fakes.
type Store interface {
	GetDreamGoal(ctx context.Context) (models.DreamGoal, error)
	GetPeriodGoalSet(ctx context.Context, pt models.PeriodType, date time.Time) (models.PeriodGoalSet, error)
	GetDailyEntry(ctx context.Context, date time.Time) (models.DailyEntry, error)
	ListOpenTasks(ctx context.Context) ([]models.OpenTask, error)
	UpsertEvaluation(ctx context.Context, e models.Evaluation) (models.Evaluation, error)
}

// LLM is the scoring oracle. One prompt in, one raw completion out.
type LLM interface {
	Evaluate(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	store Store
	llm   LLM
	log   *zap.Logger
}

func NewService(st Store, llm LLM, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, llm: llm, log: log}
}

// LoadHierarchy fetches the goal set in force at date for every level,
// plus the dream text. Missing levels come back empty; a store failure
// fails the whole load — scoring against partial context is worse than
// not scoring.
func (s *Service) LoadHierarchy(ctx context.Context, date time.Time) (Hierarchy, error) {
	var h Hierarchy

	dream, err := s.store.GetDreamGoal(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.Dream = dreamPlaceholder
	case err != nil:
		return Hierarchy{}, fmt.Errorf("load dream goal: %w", err)
	default:
		h.Dream = dream.Text
	}

	targets := map[models.PeriodType]*[]string{
		models.PeriodYear:     &h.Year,
		models.PeriodHalfYear: &h.HalfYear,
		models.PeriodQuarter:  &h.Quarter,
		models.PeriodMonth:    &h.Month,
		models.PeriodWeek:     &h.Week,
	}
	for _, pt := range models.PeriodTypes {
		set, err := s.store.GetPeriodGoalSet(ctx, pt, date)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return Hierarchy{}, fmt.Errorf("load %s goals: %w", pt, err)
		}
		*targets[pt] = set.Goals
	}

	return h, nil
}

// RunEvaluation scores one day end to end: load context, render the
// prompt, call the model once, validate the reply, persist the record.
// The sequence halts at the first failure; nothing is compensated or
// retried here — a failed attempt is re-triggered explicitly by the
// caller.
func (s *Service) RunEvaluation(ctx context.Context, date time.Time) (models.Evaluation, error) {
	var (
		hierarchy Hierarchy
		entry     models.DailyEntry
		tasks     []models.OpenTask
	)

	// The three loads are independent read-only lookups.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hierarchy, err = s.LoadHierarchy(gctx, date)
		return err
	})
	g.Go(func() error {
		e, err := s.store.GetDailyEntry(gctx, date)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNoDailyEntry, date.Format("2006-01-02"))
		}
		if err != nil {
			return fmt.Errorf("load daily entry: %w", err)
		}
		entry = e
		return nil
	})
	g.Go(func() error {
		t, err := s.store.ListOpenTasks(gctx)
		if err != nil {
			return fmt.Errorf("load open tasks: %w", err)
		}
		tasks = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.Evaluation{}, err
	}

	if strings.TrimSpace(entry.Plan) == "" {
		return models.Evaluation{}, ErrMissingPlan
	}
	if strings.TrimSpace(entry.Fact) == "" {
		return models.Evaluation{}, ErrMissingFact
	}

	prompt := BuildPrompt(hierarchy, entry, tasks, date)
	s.log.Debug("evaluation prompt built",
		zap.String("date", date.Format("2006-01-02")),
		zap.Int("prompt_len", len(prompt)),
		zap.Int("open_tasks", len(tasks)),
	)

	raw, err := s.llm.Evaluate(ctx, prompt)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("evaluate day: %w", err)
	}

	resp, err := ParseResponse(raw)
	if err != nil {
		s.log.Warn("model reply failed contract validation",
			zap.String("date", date.Format("2006-01-02")),
			zap.Error(err),
		)
		return models.Evaluation{}, err
	}

	record := MapToRecord(resp, entry.ID)
	saved, err := s.store.UpsertEvaluation(ctx, record)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("store evaluation: %w", err)
	}

	s.log.Info("day evaluated",
		zap.String("date", date.Format("2006-01-02")),
		zap.Float64("overall_score", saved.OverallScore),
	)
	return saved, nil
}
