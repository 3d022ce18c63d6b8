// Package api exposes the grader over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	graderrors "github.com/lueurxax/answer-grader/internal/core/errors"
	"github.com/lueurxax/answer-grader/internal/grading"
)

const (
	maxBodyBytes = 1 << 20

	routeEvaluate = "evaluate"

	headerRequestID   = "X-Request-ID"
	contentTypeHeader = "Content-Type"
	contentTypeJSON   = "application/json; charset=utf-8"

	queryDetail = "detail"

	corsMaxAge = 300

	// Error message constants.
	errMsgInvalidBody     = "request body must be a JSON object"
	errMsgMissingFields   = "actual_answer and student_answer are required"
	errMsgModelFailure    = "model inference failed, retry later"
	errMsgTimeout         = "evaluation timed out"
	errMsgInternal        = "internal error"
	errMsgRequestCanceled = "request canceled"

	// Log field names.
	logFieldRequestID = "request_id"
	logFieldRoute     = "route"
	logFieldStatus    = "status"
	logFieldDuration  = "duration"
)

// statusClientClosedRequest is the de facto status for requests the client abandoned.
const statusClientClosedRequest = 499

var errMissingFields = errors.New("missing answer fields")

// Grader scores one answer pair.
type Grader interface {
	Evaluate(ctx context.Context, reference, candidate string) (grading.Result, error)
}

// Handler serves the evaluation API.
type Handler struct {
	grader  Grader
	timeout time.Duration
	logger  *zerolog.Logger
}

type evaluateRequest struct {
	ActualAnswer  *string `json:"actual_answer"`
	StudentAnswer *string `json:"student_answer"`
}

type evaluateResponse struct {
	Score     float64            `json:"score"`
	Feedback  string             `json:"feedback"`
	Breakdown *grading.Breakdown `json:"breakdown,omitempty"`
}

// NewHandler creates a handler. A non-positive timeout disables the per-request deadline.
func NewHandler(grader Grader, timeout time.Duration, logger *zerolog.Logger) *Handler {
	return &Handler{
		grader:  grader,
		timeout: timeout,
		logger:  logger,
	}
}

// Routes builds the API router with CORS for the given origins.
func (h *Handler) Routes(origins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{contentTypeHeader, headerRequestID},
		ExposedHeaders: []string{headerRequestID},
		MaxAge:         corsMaxAge,
	}))
	r.Use(h.requestID)

	r.Post("/evaluate", h.handleEvaluate)

	return r
}

// requestID propagates or assigns a request id and attaches a request logger to the context.
func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(headerRequestID, id)

		logger := h.logger.With().Str(logFieldRequestID, id).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := h.evaluate(w, r)

	recordRequest(routeEvaluate, status, start)

	zerolog.Ctx(r.Context()).Debug().
		Str(logFieldRoute, routeEvaluate).
		Int(logFieldStatus, status).
		Dur(logFieldDuration, time.Since(start)).
		Msg("request served")
}

func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request) int {
	req, err := decodeEvaluateRequest(w, r)
	if err != nil {
		return h.writeEvaluateError(w, r, err)
	}

	ctx := r.Context()

	if h.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.grader.Evaluate(ctx, *req.ActualAnswer, *req.StudentAnswer)
	if err != nil {
		return h.writeEvaluateError(w, r, err)
	}

	resp := evaluateResponse{
		Score:    result.Score,
		Feedback: result.Feedback,
	}

	if wantsDetail(r) {
		resp.Breakdown = &result.Breakdown
	}

	return h.writeJSON(w, http.StatusOK, resp)
}

func decodeEvaluateRequest(w http.ResponseWriter, r *http.Request) (evaluateRequest, error) {
	var req evaluateRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("%w: %w", graderrors.ErrInvalidInput, err)
	}

	if req.ActualAnswer == nil || req.StudentAnswer == nil {
		return req, fmt.Errorf("%w: %w", graderrors.ErrInvalidInput, errMissingFields)
	}

	return req, nil
}

func (h *Handler) writeEvaluateError(w http.ResponseWriter, r *http.Request, err error) int {
	logger := zerolog.Ctx(r.Context())

	switch {
	case errors.Is(err, errMissingFields):
		return h.writeError(w, http.StatusBadRequest, errMsgMissingFields)
	case errors.Is(err, graderrors.ErrInvalidInput):
		logger.Debug().Err(err).Msg("invalid request body")
		return h.writeError(w, http.StatusBadRequest, errMsgInvalidBody)
	case errors.Is(err, graderrors.ErrInferenceFailed):
		logger.Warn().Err(err).Msg("evaluation failed")
		return h.writeError(w, http.StatusServiceUnavailable, errMsgModelFailure)
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn().Err(err).Msg("evaluation timed out")
		return h.writeError(w, http.StatusGatewayTimeout, errMsgTimeout)
	case errors.Is(err, context.Canceled):
		return h.writeError(w, statusClientClosedRequest, errMsgRequestCanceled)
	default:
		logger.Error().Err(err).Msg("evaluation failed")
		return h.writeError(w, http.StatusInternalServerError, errMsgInternal)
	}
}

func wantsDetail(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(queryDetail))

	return err == nil && v
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) int {
	w.Header().Set(contentTypeHeader, contentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("write json failed")
	}

	return status
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) int {
	return h.writeJSON(w, status, map[string]string{"error": message})
}
