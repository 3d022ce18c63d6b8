package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	graderrors "github.com/lueurxax/answer-grader/internal/core/errors"
	"github.com/lueurxax/answer-grader/internal/grading"
)

const (
	methodEvaluate = "Evaluate"
	pathEvaluate   = "/evaluate"
	testOrigin     = "http://localhost:3000"
)

type mockGrader struct {
	mock.Mock
}

func (m *mockGrader) Evaluate(ctx context.Context, reference, candidate string) (grading.Result, error) {
	args := m.Called(ctx, reference, candidate)

	result, _ := args.Get(0).(grading.Result)

	return result, args.Error(1)
}

func newTestHandler(g Grader) http.Handler {
	logger := zerolog.Nop()

	return NewHandler(g, time.Second, &logger).Routes([]string{testOrigin})
}

func postEvaluate(t *testing.T, h http.Handler, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(contentTypeHeader, contentTypeJSON)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func sampleResult() grading.Result {
	return grading.Result{
		Score:    0.912,
		Feedback: grading.MsgExcellent,
		Breakdown: grading.Breakdown{
			Scores:           grading.Scores{Factual: 1, Semantic: 0.9, Completeness: 1},
			LengthRatio:      1,
			Weights:          grading.Weights{Factual: 0.5, Semantic: 0.3, Completeness: 0.2},
			Contradictions:   []grading.Contradiction{},
			ReferenceWords:   6,
			CandidateWords:   6,
			FeedbackCategory: grading.CategoryExcellent,
		},
	}
}

func TestEvaluate_Success(t *testing.T) {
	g := &mockGrader{}
	g.On(methodEvaluate, mock.Anything, "Paris is the capital", "paris is the capital").
		Return(sampleResult(), nil)

	rec := postEvaluate(t, newTestHandler(g), pathEvaluate,
		`{"actual_answer":"Paris is the capital","student_answer":"paris is the capital"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.InDelta(t, 0.912, body["score"], 1e-9)
	assert.Equal(t, grading.MsgExcellent, body["feedback"])
	assert.NotContains(t, body, "breakdown")
	g.AssertExpectations(t)
}

func TestEvaluate_Detail(t *testing.T) {
	g := &mockGrader{}
	g.On(methodEvaluate, mock.Anything, "a", "b").Return(sampleResult(), nil)

	rec := postEvaluate(t, newTestHandler(g), pathEvaluate+"?detail=true",
		`{"actual_answer":"a","student_answer":"b"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Breakdown map[string]any `json:"breakdown"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Breakdown)

	assert.InDelta(t, 1.0, body.Breakdown["factual_accuracy"], 1e-9)
	assert.InDelta(t, 0.9, body.Breakdown["semantic_similarity"], 1e-9)
	assert.Equal(t, grading.CategoryExcellent, body.Breakdown["feedback_category"])
	assert.Equal(t, []any{}, body.Breakdown["contradictions"])
}

func TestEvaluate_EmptyStringsAreValid(t *testing.T) {
	g := &mockGrader{}
	g.On(methodEvaluate, mock.Anything, "", "").Return(grading.Result{Score: 0, Feedback: grading.MsgTooBrief}, nil)

	rec := postEvaluate(t, newTestHandler(g), pathEvaluate, `{"actual_answer":"","student_answer":""}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	g.AssertExpectations(t)
}

func TestEvaluate_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing student answer", body: `{"actual_answer":"x"}`},
		{name: "missing actual answer", body: `{"student_answer":"x"}`},
		{name: "null field", body: `{"actual_answer":null,"student_answer":"x"}`},
		{name: "not json", body: `actual_answer=x`},
		{name: "wrong type", body: `{"actual_answer":1,"student_answer":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &mockGrader{}

			rec := postEvaluate(t, newTestHandler(g), pathEvaluate, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			g.AssertNotCalled(t, methodEvaluate, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestEvaluate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{
			name:   "inference failure",
			err:    fmt.Errorf("annotate reference: %w", graderrors.ErrInferenceFailed),
			status: http.StatusServiceUnavailable,
		},
		{
			name:   "invalid input",
			err:    fmt.Errorf("%w: unsupported answer", graderrors.ErrInvalidInput),
			status: http.StatusBadRequest,
		},
		{name: "deadline", err: context.DeadlineExceeded, status: http.StatusGatewayTimeout},
		{name: "canceled", err: context.Canceled, status: statusClientClosedRequest},
		{name: "unexpected", err: assert.AnError, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &mockGrader{}
			g.On(methodEvaluate, mock.Anything, "a", "b").Return(grading.Result{}, tt.err)

			rec := postEvaluate(t, newTestHandler(g), pathEvaluate, `{"actual_answer":"a","student_answer":"b"}`)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestEvaluate_AppliesTimeout(t *testing.T) {
	g := &mockGrader{}
	g.On(methodEvaluate, mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), "a", "b").Return(sampleResult(), nil)

	rec := postEvaluate(t, newTestHandler(g), pathEvaluate, `{"actual_answer":"a","student_answer":"b"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	g.AssertExpectations(t)
}

func TestRequestID_Propagated(t *testing.T) {
	g := &mockGrader{}
	g.On(methodEvaluate, mock.Anything, "a", "b").Return(sampleResult(), nil)

	req := httptest.NewRequest(http.MethodPost, pathEvaluate, strings.NewReader(`{"actual_answer":"a","student_answer":"b"}`))
	req.Header.Set(headerRequestID, "req-42")

	rec := httptest.NewRecorder()
	newTestHandler(g).ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(headerRequestID))
}

func TestCORS_Preflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, pathEvaluate, nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	newTestHandler(&mockGrader{}).ServeHTTP(rec, req)

	assert.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestEvaluate_MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, pathEvaluate, nil)
	rec := httptest.NewRecorder()

	newTestHandler(&mockGrader{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDecodeEvaluateRequest_WrapsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		missing bool
	}{
		{name: "malformed", body: `{"actual_answer":`},
		{name: "missing field", body: `{"actual_answer":"x"}`, missing: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, pathEvaluate, strings.NewReader(tt.body))

			_, err := decodeEvaluateRequest(httptest.NewRecorder(), req)

			require.ErrorIs(t, err, graderrors.ErrInvalidInput)
			assert.Equal(t, tt.missing, errors.Is(err, errMissingFields))
		})
	}
}
