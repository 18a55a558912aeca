package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Kaosethi/MerchantApp-sub000/shared/cqrs"
	"github.com/Kaosethi/MerchantApp-sub000/shared/middleware"
	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
	"github.com/gin-gonic/gin"
)

// HistoryCommander defines the write-side operations used by HistoryHandler.
type HistoryCommander interface {
	OpenHistory(context.Context, cqrs.OpenHistoryCommand) (*models.HistoryView, error)
	ApplyFilters(context.Context, cqrs.ApplyHistoryFiltersCommand) (*models.HistoryView, error)
	SetDateRange(cqrs.SetHistoryDateRangeCommand) (*models.HistoryView, error)
	LoadMore(context.Context, cqrs.LoadMoreHistoryCommand) (*models.HistoryView, error)
	Refresh(context.Context, cqrs.RefreshHistoryCommand) (*models.HistoryView, error)
	CloseHistory(cqrs.CloseHistoryCommand) error
}

// HistoryQuerier defines the read-side operations used by HistoryHandler.
type HistoryQuerier interface {
	GetHistory(cqrs.GetHistoryQuery) (*models.HistoryView, error)
}

type HistoryHandler struct {
	commands HistoryCommander
	queries  HistoryQuerier
}

// DateRangeRequest holds calendar days as YYYY-MM-DD; either end may be open.
type DateRangeRequest struct {
	Start string `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `json:"end" validate:"omitempty,datetime=2006-01-02"`
}

type HistoryFiltersRequest struct {
	Status string `json:"status" validate:"max=16"`
	DateRangeRequest
}

func NewHistoryHandler(commands HistoryCommander, queries HistoryQuerier) *HistoryHandler {
	return &HistoryHandler{commands: commands, queries: queries}
}

func (h *HistoryHandler) OpenHistory(c *gin.Context) {
	merchantID, _ := middleware.GetMerchantID(c)

	var req HistoryFiltersRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	start, end := req.bounds()

	view, err := h.commands.OpenHistory(c.Request.Context(), cqrs.OpenHistoryCommand{
		MerchantID: merchantID,
		Status:     req.Status,
		Start:      start,
		End:        end,
	})
	if err != nil {
		respondWithError(c, err, "Failed to open history")
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *HistoryHandler) GetHistory(c *gin.Context) {
	merchantID, _ := middleware.GetMerchantID(c)

	view, err := h.queries.GetHistory(cqrs.GetHistoryQuery{
		SessionID:  c.Param("sessionId"),
		MerchantID: merchantID,
	})
	if err != nil {
		respondWithError(c, err, "Failed to get history")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *HistoryHandler) ApplyFilters(c *gin.Context) {
	merchantID, _ := middleware.GetMerchantID(c)

	var req HistoryFiltersRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	start, end := req.bounds()

	view, err := h.commands.ApplyFilters(c.Request.Context(), cqrs.ApplyHistoryFiltersCommand{
		SessionID:  c.Param("sessionId"),
		MerchantID: merchantID,
		Status:     req.Status,
		Start:      start,
		End:        end,
	})
	if err != nil {
		respondWithError(c, err, "Failed to apply filters")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *HistoryHandler) SetDateRange(c *gin.Context) {
	merchantID, _ := middleware.GetMerchantID(c)

	var req DateRangeRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	start, end := req.bounds()

	view, err := h.commands.SetDateRange(cqrs.SetHistoryDateRangeCommand{
		SessionID:  c.Param("sessionId"),
		MerchantID: merchantID,
		Start:      start,
		End:        end,
	})
	if err != nil {
		respondWithError(c, err, "Failed to set date range")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *HistoryHandler) LoadMore(c *gin.Context) {
	merchantID, _ := middleware.GetMerchantID(c)

	view, err := h.commands.LoadMore(c.Request.Context(), cqrs.LoadMoreHistoryCommand{
		SessionID:  c.Param("sessionId"),
		MerchantID: merchantID,
	})
	if err != nil {
		respondWithError(c, err, "Failed to load more history")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *HistoryHandler) Refresh(c *gin.Context) {
	merchantID, _ := middleware.GetMerchantID(c)

	view, err := h.commands.Refresh(c.Request.Context(), cqrs.RefreshHistoryCommand{
		SessionID:  c.Param("sessionId"),
		MerchantID: merchantID,
	})
	if err != nil {
		respondWithError(c, err, "Failed to refresh history")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *HistoryHandler) CloseHistory(c *gin.Context) {
	merchantID, _ := middleware.GetMerchantID(c)

	err := h.commands.CloseHistory(cqrs.CloseHistoryCommand{
		SessionID:  c.Param("sessionId"),
		MerchantID: merchantID,
	})
	if err != nil {
		respondWithError(c, err, "Failed to close history")
		return
	}

	c.Status(http.StatusNoContent)
}

// bindOptionalJSON binds and validates a body that may be empty. It writes the
// error response itself and reports whether the handler should continue.
func bindOptionalJSON(c *gin.Context, req any) bool {
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(req); err != nil {
			middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
			return false
		}
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return false
	}
	return true
}

// bounds parses the validated dates as UTC calendar days.
func (r DateRangeRequest) bounds() (start, end *time.Time) {
	return parseDay(r.Start), parseDay(r.End)
}

func parseDay(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}
	return &t
}
