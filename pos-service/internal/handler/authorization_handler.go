package handler

import (
	"context"
	"net/http"

	"github.com/Kaosethi/MerchantApp-sub000/shared/cqrs"
	"github.com/Kaosethi/MerchantApp-sub000/shared/middleware"
	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
	"github.com/gin-gonic/gin"
)

// AuthorizationCommander defines the write-side operations used by AuthorizationHandler.
type AuthorizationCommander interface {
	StartAuthorization(cqrs.StartAuthorizationCommand) (*models.AuthorizationView, error)
	SubmitPin(context.Context, cqrs.SubmitPinCommand) (*models.AuthorizationView, error)
	EnterDigit(context.Context, cqrs.EnterDigitCommand) (*models.AuthorizationView, error)
	DeleteDigit(cqrs.DeleteDigitCommand) (*models.AuthorizationView, error)
	TakeOutcome(cqrs.TakeOutcomeCommand) (*models.OutcomeView, error)
	EndAuthorization(cqrs.EndAuthorizationCommand) error
}

// AuthorizationQuerier defines the read-side operations used by AuthorizationHandler.
type AuthorizationQuerier interface {
	GetAuthorization(cqrs.GetAuthorizationQuery) (*models.AuthorizationView, error)
	GetReceipt(context.Context, cqrs.GetReceiptQuery) (*models.ReceiptView, error)
}

type AuthorizationHandler struct {
	commands AuthorizationCommander
	queries  AuthorizationQuerier
}

// StartAuthorizationRequest carries the navigation parameters. Amount and
// beneficiary are checked by the session itself and reported on the view.
type StartAuthorizationRequest struct {
	Amount          models.FlexString `json:"amount"`
	BeneficiaryID   string            `json:"beneficiaryId" validate:"max=64"`
	BeneficiaryName string            `json:"beneficiaryName" validate:"max=128"`
	Category        string            `json:"category" validate:"max=128"`
}

type SubmitPinRequest struct {
	Pin string `json:"pin" validate:"required"`
}

type EnterDigitRequest struct {
	Digit string `json:"digit" validate:"required,len=1,numeric"`
}

func NewAuthorizationHandler(commands AuthorizationCommander, queries AuthorizationQuerier) *AuthorizationHandler {
	return &AuthorizationHandler{commands: commands, queries: queries}
}

func (h *AuthorizationHandler) StartAuthorization(c *gin.Context) {
	merchantID, _ := middleware.GetMerchantID(c)

	var req StartAuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.StartAuthorization(cqrs.StartAuthorizationCommand{
		MerchantID:      merchantID,
		Amount:          string(req.Amount),
		BeneficiaryID:   req.BeneficiaryID,
		BeneficiaryName: req.BeneficiaryName,
		Category:        req.Category,
	})
	if err != nil {
		respondWithError(c, err, "Failed to start authorization")
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *AuthorizationHandler) GetAuthorization(c *gin.Context) {
	merchantID, _ := middleware.GetMerchantID(c)

	view, err := h.queries.GetAuthorization(cqrs.GetAuthorizationQuery{
		SessionID:  c.Param("sessionId"),
		MerchantID: merchantID,
	})
	if err != nil {
		respondWithError(c, err, "Failed to get authorization")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AuthorizationHandler) SubmitPin(c *gin.Context) {
	merchantID, _ := middleware.GetMerchantID(c)

	var req SubmitPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.SubmitPin(c.Request.Context(), cqrs.SubmitPinCommand{
		SessionID:  c.Param("sessionId"),
		MerchantID: merchantID,
		Pin:        req.Pin,
	})
	if err != nil {
		respondWithError(c, err, "Failed to submit PIN")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AuthorizationHandler) EnterDigit(c *gin.Context) {
	merchantID, _ := middleware.GetMerchantID(c)

	var req EnterDigitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.EnterDigit(c.Request.Context(), cqrs.EnterDigitCommand{
		SessionID:  c.Param("sessionId"),
		MerchantID: merchantID,
		Digit:      req.Digit,
	})
	if err != nil {
		respondWithError(c, err, "Failed to enter digit")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AuthorizationHandler) DeleteDigit(c *gin.Context) {
	merchantID, _ := middleware.GetMerchantID(c)

	view, err := h.commands.DeleteDigit(cqrs.DeleteDigitCommand{
		SessionID:  c.Param("sessionId"),
		MerchantID: merchantID,
	})
	if err != nil {
		respondWithError(c, err, "Failed to delete digit")
		return
	}

	c.JSON(http.StatusOK, view)
}

// TakeOutcome responds 204 when no outcome is pending.
func (h *AuthorizationHandler) TakeOutcome(c *gin.Context) {
	merchantID, _ := middleware.GetMerchantID(c)

	outcome, err := h.commands.TakeOutcome(cqrs.TakeOutcomeCommand{
		SessionID:  c.Param("sessionId"),
		MerchantID: merchantID,
	})
	if err != nil {
		respondWithError(c, err, "Failed to take outcome")
		return
	}
	if outcome == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

func (h *AuthorizationHandler) EndAuthorization(c *gin.Context) {
	merchantID, _ := middleware.GetMerchantID(c)

	err := h.commands.EndAuthorization(cqrs.EndAuthorizationCommand{
		SessionID:  c.Param("sessionId"),
		MerchantID: merchantID,
	})
	if err != nil {
		respondWithError(c, err, "Failed to end authorization")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AuthorizationHandler) GetReceipt(c *gin.Context) {
	merchantID, _ := middleware.GetMerchantID(c)

	view, err := h.queries.GetReceipt(c.Request.Context(), cqrs.GetReceiptQuery{
		TransactionID: c.Param("transactionId"),
		MerchantID:    merchantID,
	})
	if err != nil {
		respondWithError(c, err, "Failed to get receipt")
		return
	}

	c.JSON(http.StatusOK, view)
}
