// Package api serves the engine analyses over HTTP with gin.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/engine"
)

// MaxBatchTokens bounds the token list of one batch request.
const MaxBatchTokens = 100

// Analyzer is the subset of engine.Engine the handlers use.
type Analyzer interface {
	Now() time.Time
	AnalyzeTrend(ctx context.Context, token string, now time.Time, ageDays *float64) domain.TrendAnalysis
	AnalyzeTrendBatch(ctx context.Context, tokens []string, now time.Time) engine.BatchResult
	ConfirmUptrend(ctx context.Context, token string, now time.Time, ageDays *float64) (domain.TrendAnalysis, bool)
	AnalyzeMovements(ctx context.Context, token string, window domain.Window) domain.MovementAnalysis
	AnalyzeMomentum(ctx context.Context, token string, longWindow, shortWindow domain.Window) engine.MomentumReport
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// BatchRequest is the body of POST /v1/trend/batch.
type BatchRequest struct {
	Tokens []string `json:"tokens"`
}

// BatchResponse is the reply of POST /v1/trend/batch.
type BatchResponse struct {
	RunID   string                          `json:"run_id"`
	Results map[string]domain.TrendAnalysis `json:"results"`
}

// ConfirmationResponse is the reply of GET /v1/tokens/:address/confirmation.
type ConfirmationResponse struct {
	Confirmed bool                 `json:"confirmed"`
	Analysis  domain.TrendAnalysis `json:"analysis"`
}

// Handler handles analysis requests.
type Handler struct {
	an Analyzer
}

// NewHandler creates a new Handler.
func NewHandler(an Analyzer) *Handler {
	return &Handler{an: an}
}

// GetTrend returns the trend analysis of one token.
//
// GET /v1/tokens/:address/trend?age_days=2.5
func (h *Handler) GetTrend(c *gin.Context) {
	token, ok := addressParam(c)
	if !ok {
		return
	}
	ageDays, ok := ageDaysQuery(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.an.AnalyzeTrend(c.Request.Context(), token, h.an.Now(), ageDays))
}

// PostTrendBatch analyzes many tokens in one run.
//
// POST /v1/trend/batch {"tokens": ["...", "..."]}
func (h *Handler) PostTrendBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if len(req.Tokens) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "tokens must not be empty"})
		return
	}
	if len(req.Tokens) > MaxBatchTokens {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "too many tokens (max " + strconv.Itoa(MaxBatchTokens) + ")"})
		return
	}
	for _, t := range req.Tokens {
		if err := domain.ValidateAddress(t); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error() + ": " + t})
			return
		}
	}

	res := h.an.AnalyzeTrendBatch(c.Request.Context(), req.Tokens, h.an.Now())
	c.JSON(http.StatusOK, BatchResponse{RunID: res.RunID.String(), Results: res.Results})
}

// GetConfirmation reports whether the token is a confirmed uptrend for its age.
//
// GET /v1/tokens/:address/confirmation?age_days=2.5
func (h *Handler) GetConfirmation(c *gin.Context) {
	token, ok := addressParam(c)
	if !ok {
		return
	}
	ageDays, ok := ageDaysQuery(c)
	if !ok {
		return
	}

	analysis, confirmed := h.an.ConfirmUptrend(c.Request.Context(), token, h.an.Now(), ageDays)
	c.JSON(http.StatusOK, ConfirmationResponse{Confirmed: confirmed, Analysis: analysis})
}

// GetMovements returns the whale/shark analysis of one window.
//
// GET /v1/tokens/:address/movements?window=24h
func (h *Handler) GetMovements(c *gin.Context) {
	token, ok := addressParam(c)
	if !ok {
		return
	}
	window, ok := windowQuery(c, "window", domain.Window24h)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.an.AnalyzeMovements(c.Request.Context(), token, window))
}

// GetMomentum compares a long and a short window.
//
// GET /v1/tokens/:address/momentum?long=24h&short=6h
func (h *Handler) GetMomentum(c *gin.Context) {
	token, ok := addressParam(c)
	if !ok {
		return
	}
	long, ok := windowQuery(c, "long", domain.Window24h)
	if !ok {
		return
	}
	short, ok := windowQuery(c, "short", domain.Window6h)
	if !ok {
		return
	}
	if short.Duration() >= long.Duration() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "short window must be shorter than long window"})
		return
	}

	c.JSON(http.StatusOK, h.an.AnalyzeMomentum(c.Request.Context(), token, long, short))
}

func addressParam(c *gin.Context) (string, bool) {
	token := c.Param("address")
	if err := domain.ValidateAddress(token); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return "", false
	}
	return token, true
}

func ageDaysQuery(c *gin.Context) (*float64, bool) {
	raw, present := c.GetQuery("age_days")
	if !present {
		return nil, true
	}
	days, err := strconv.ParseFloat(raw, 64)
	if err != nil || days < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "age_days must be a non-negative number"})
		return nil, false
	}
	return &days, true
}

func windowQuery(c *gin.Context, key string, def domain.Window) (domain.Window, bool) {
	raw, present := c.GetQuery(key)
	if !present {
		return def, true
	}
	w, err := domain.ParseWindow(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return "", false
	}
	return w, true
}
