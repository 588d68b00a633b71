package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dayscore-backend/internal/ai"
	"dayscore-backend/internal/eval"
	"dayscore-backend/internal/models"
	"dayscore-backend/internal/period"
	"dayscore-backend/internal/store"
)

const dateLayout = "2006-01-02"

func parseDateParam(r *http.Request, name string) (time.Time, error) {
	return time.Parse(dateLayout, chi.URLParam(r, name))
}

// ---------------------------------------------------------------------
// Dream goal
// ---------------------------------------------------------------------

func (a *API) handleGetDream(w http.ResponseWriter, r *http.Request) {
	g, err := a.Store.GetDreamGoal(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no dream goal set")
		return
	}
	if err != nil {
		a.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (a *API) handlePutDream(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "text is required")
		return
	}

	g, err := a.Store.UpsertDreamGoal(r.Context(), strings.TrimSpace(body.Text))
	if err != nil {
		a.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// ---------------------------------------------------------------------
// Period goal sets
// ---------------------------------------------------------------------

func (a *API) handleGetPeriodGoals(w http.ResponseWriter, r *http.Request) {
	pt := models.PeriodType(chi.URLParam(r, "period"))
	if !pt.Valid() {
		writeError(w, http.StatusBadRequest, "VALIDATION", "unknown period type")
		return
	}

	date := time.Now().UTC()
	if q := r.URL.Query().Get("date"); q != "" {
		parsed, err := time.Parse(dateLayout, q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	set, err := a.Store.GetPeriodGoalSet(r.Context(), pt, date)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no goal set covers this date")
		return
	}
	if err != nil {
		a.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (a *API) handlePutPeriodGoals(w http.ResponseWriter, r *http.Request) {
	pt := models.PeriodType(chi.URLParam(r, "period"))
	if !pt.Valid() {
		writeError(w, http.StatusBadRequest, "VALIDATION", "unknown period type")
		return
	}

	var body struct {
		Date  string   `json:"date"`
		Goals []string `json:"goals"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}

	date := time.Now().UTC()
	if body.Date != "" {
		parsed, err := time.Parse(dateLayout, body.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	rng, err := period.Dates(date, pt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	goals := make([]string, 0, len(body.Goals))
	for _, g := range body.Goals {
		if trimmed := strings.TrimSpace(g); trimmed != "" {
			goals = append(goals, trimmed)
		}
	}

	set, err := a.Store.UpsertPeriodGoalSet(r.Context(), pt, rng.Start, rng.End, goals)
	if err != nil {
		a.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

// ---------------------------------------------------------------------
// Daily entries
// ---------------------------------------------------------------------

func (a *API) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "date must be YYYY-MM-DD")
		return
	}

	e, err := a.Store.GetDailyEntry(r.Context(), date)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no entry for this date")
		return
	}
	if err != nil {
		a.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handlePutEntry is a partial upsert: absent fields keep their value, so
// plan and fact can be saved at different points of the day.
func (a *API) handlePutEntry(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "date must be YYYY-MM-DD")
		return
	}

	var body struct {
		Plan *string `json:"plan"`
		Fact *string `json:"fact"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if body.Plan == nil && body.Fact == nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "plan or fact is required")
		return
	}

	e, err := a.Store.UpsertDailyEntry(r.Context(), date, body.Plan, body.Fact)
	if err != nil {
		a.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// ---------------------------------------------------------------------
// Open tasks
// ---------------------------------------------------------------------

func (a *API) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.Store.ListOpenTasks(r.Context())
	if err != nil {
		a.serverError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.OpenTask{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (a *API) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text       string `json:"text"`
		Type       string `json:"type"`
		OriginDate string `json:"origin_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "text is required")
		return
	}

	taskType := models.TaskType(body.Type)
	if body.Type == "" {
		taskType = models.TaskOperational
	}
	if !taskType.Valid() {
		writeError(w, http.StatusBadRequest, "VALIDATION", "type must be strategic or operational")
		return
	}

	origin := time.Now().UTC()
	if body.OriginDate != "" {
		parsed, err := time.Parse(dateLayout, body.OriginDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "origin_date must be YYYY-MM-DD")
			return
		}
		origin = parsed
	}

	task, err := a.Store.CreateOpenTask(r.Context(), strings.TrimSpace(body.Text), taskType, origin)
	if err != nil {
		a.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (a *API) handleCloseTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id must be an integer")
		return
	}

	task, err := a.Store.CloseOpenTask(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "task not found")
		return
	}
	if err != nil {
		a.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// ---------------------------------------------------------------------
// Evaluations
// ---------------------------------------------------------------------

func (a *API) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "date must be YYYY-MM-DD")
		return
	}

	e, err := a.Store.GetEvaluationByDate(r.Context(), date)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no evaluation for this date")
		return
	}
	if err != nil {
		a.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleRunEvaluation triggers one full scoring pass. A repeated call
// replaces the stored evaluation; the UI confirms with the user before
// re-triggering, the backend never retries on its own.
func (a *API) handleRunEvaluation(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "date must be YYYY-MM-DD")
		return
	}

	e, err := a.Eval.RunEvaluation(r.Context(), date)
	if err != nil {
		a.writeEvaluationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (a *API) writeEvaluationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, eval.ErrNoDailyEntry):
		writeError(w, http.StatusUnprocessableEntity, "NO_ENTRY", err.Error())
	case errors.Is(err, eval.ErrMissingPlan), errors.Is(err, eval.ErrMissingFact):
		writeError(w, http.StatusUnprocessableEntity, "INCOMPLETE_ENTRY", err.Error())
	case errors.Is(err, ai.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, "AI_TIMEOUT", err.Error())
	case errors.Is(err, ai.ErrRateLimited):
		writeError(w, http.StatusBadGateway, "AI_RATE_LIMITED", err.Error())
	case errors.Is(err, ai.ErrUnauthorized), errors.Is(err, ai.ErrServiceUnavailable):
		writeError(w, http.StatusBadGateway, "AI_UNAVAILABLE", err.Error())
	case errors.Is(err, eval.ErrEmptyResponse),
		errors.Is(err, eval.ErrInvalidJSON),
		errors.Is(err, eval.ErrMissingField),
		errors.Is(err, eval.ErrInvalidScore),
		errors.Is(err, eval.ErrInvalidOverallScore),
		errors.Is(err, eval.ErrInvalidAlignmentShape):
		writeError(w, http.StatusBadGateway, "AI_CONTRACT", err.Error())
	default:
		a.serverError(w, err)
	}
}

func (a *API) serverError(w http.ResponseWriter, err error) {
	a.Log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}
