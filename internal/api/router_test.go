package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dayscore-backend/internal/ai"
	"dayscore-backend/internal/eval"
	"dayscore-backend/internal/models"
	"dayscore-backend/internal/store"
)

type fakeEvalStore struct {
	entry    models.DailyEntry
	entryErr error
}

func (f *fakeEvalStore) GetDreamGoal(ctx context.Context) (models.DreamGoal, error) {
	return models.DreamGoal{}, store.ErrNotFound
}

func (f *fakeEvalStore) GetPeriodGoalSet(ctx context.Context, pt models.PeriodType, date time.Time) (models.PeriodGoalSet, error) {
	return models.PeriodGoalSet{}, store.ErrNotFound
}

func (f *fakeEvalStore) GetDailyEntry(ctx context.Context, date time.Time) (models.DailyEntry, error) {
	return f.entry, f.entryErr
}

func (f *fakeEvalStore) ListOpenTasks(ctx context.Context) ([]models.OpenTask, error) {
	return nil, nil
}

func (f *fakeEvalStore) UpsertEvaluation(ctx context.Context, e models.Evaluation) (models.Evaluation, error) {
	return e, nil
}

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Evaluate(ctx context.Context, prompt string) (string, error) {
	return f.reply, f.err
}

func newTestAPI(st eval.Store, llm eval.LLM) *API {
	return &API{
		Eval: eval.NewService(st, llm, zap.NewNop()),
		Log:  zap.NewNop(),
	}
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestHealth(t *testing.T) {
	h := newTestAPI(&fakeEvalStore{}, &fakeLLM{}).Router()

	rec := doRequest(t, h, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestValidationErrors(t *testing.T) {
	h := newTestAPI(&fakeEvalStore{}, &fakeLLM{}).Router()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"bad entry date", http.MethodGet, "/entries/not-a-date", ""},
		{"bad evaluation date", http.MethodPost, "/evaluations/2026-13-40", ""},
		{"unknown period", http.MethodGet, "/goals/decade", ""},
		{"empty dream text", http.MethodPut, "/dream", `{"text":"  "}`},
		{"entry without fields", http.MethodPut, "/entries/2026-08-28", `{}`},
		{"task without text", http.MethodPost, "/tasks", `{"type":"operational"}`},
		{"task with bad type", http.MethodPost, "/tasks", `{"text":"x","type":"urgent"}`},
		{"close with bad id", http.MethodPost, "/tasks/abc/close", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRunEvaluationNoEntry(t *testing.T) {
	st := &fakeEvalStore{entryErr: store.ErrNotFound}
	h := newTestAPI(st, &fakeLLM{}).Router()

	rec := doRequest(t, h, http.MethodPost, "/evaluations/2026-08-28", "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "NO_ENTRY", errorCode(t, rec))
}

func TestRunEvaluationIncompleteEntry(t *testing.T) {
	st := &fakeEvalStore{entry: models.DailyEntry{ID: 1, Plan: "ship it", Fact: ""}}
	h := newTestAPI(st, &fakeLLM{}).Router()

	rec := doRequest(t, h, http.MethodPost, "/evaluations/2026-08-28", "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INCOMPLETE_ENTRY", errorCode(t, rec))
}

func TestRunEvaluationTransportErrors(t *testing.T) {
	st := &fakeEvalStore{entry: models.DailyEntry{ID: 1, Plan: "ship it", Fact: "shipped"}}

	tests := []struct {
		name     string
		llmErr   error
		wantCode int
		wantName string
	}{
		{"rate limited", ai.ErrRateLimited, http.StatusBadGateway, "AI_RATE_LIMITED"},
		{"timeout", ai.ErrTimeout, http.StatusGatewayTimeout, "AI_TIMEOUT"},
		{"unavailable", ai.ErrServiceUnavailable, http.StatusBadGateway, "AI_UNAVAILABLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestAPI(st, &fakeLLM{err: tt.llmErr}).Router()

			rec := doRequest(t, h, http.MethodPost, "/evaluations/2026-08-28", "")

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantName, errorCode(t, rec))
		})
	}
}

func TestRunEvaluationContractViolation(t *testing.T) {
	st := &fakeEvalStore{entry: models.DailyEntry{ID: 1, Plan: "ship it", Fact: "shipped"}}
	h := newTestAPI(st, &fakeLLM{reply: "sorry, I cannot help with that"}).Router()

	rec := doRequest(t, h, http.MethodPost, "/evaluations/2026-08-28", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "AI_CONTRACT", errorCode(t, rec))
}
