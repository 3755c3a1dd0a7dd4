package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tour_ops/internal/models"
	"tour_ops/internal/services"
)

type AccountController struct {
	ledger *services.AccountLedger
}

func NewAccountController(ledger *services.AccountLedger) *AccountController {
	return &AccountController{ledger: ledger}
}

type accountInput struct {
	EntityType        models.AccountEntityType `json:"entity_type" binding:"required"`
	EntityID          *string                  `json:"entity_id"`
	AccountType       models.AccountType       `json:"account_type" binding:"required"`
	AccountHolderName string                   `json:"account_holder_name"`
	BankName          string                   `json:"bank_name"`
	AccountNumber     string                   `json:"account_number"`
	IBAN              string                   `json:"iban"`
	SwiftCode         string                   `json:"swift_code"`
	ServiceName       string                   `json:"service_name"`
	Currency          string                   `json:"currency"`
	IsPrimary         bool                     `json:"is_primary"`
	Notes             string                   `json:"notes"`
}

func (in accountInput) toService() services.AccountInput {
	return services.AccountInput{
		EntityType:        in.EntityType,
		EntityID:          in.EntityID,
		AccountType:       in.AccountType,
		AccountHolderName: in.AccountHolderName,
		BankName:          in.BankName,
		AccountNumber:     in.AccountNumber,
		IBAN:              in.IBAN,
		SwiftCode:         in.SwiftCode,
		ServiceName:       in.ServiceName,
		Currency:          in.Currency,
		IsPrimary:         in.IsPrimary,
		Notes:             in.Notes,
	}
}

func (ac *AccountController) CreateAccount(c *gin.Context) {
	var input accountInput
	if !bind(c, "CreateAccount", &input) {
		return
	}
	acct, err := ac.ledger.CreateAccount(c.Request.Context(), input.toService())
	if err != nil {
		respondError(c, "CreateAccount", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"account": acct})
}

// scopeFromQuery reads the owning scope from ?entity_type= and ?entity_id=.
func scopeFromQuery(c *gin.Context) (services.AccountScope, error) {
	entityType := models.AccountEntityType(c.Query("entity_type"))
	if entityType == "" {
		return services.AccountScope{}, &services.ValidationError{Field: "entity_type", Reason: "is required"}
	}
	var entityID *string
	if id := c.Query("entity_id"); id != "" {
		entityID = &id
	}
	return services.ScopeFor(entityType, entityID), nil
}

// ListAccounts lists one owner's accounts, primary first.
func (ac *AccountController) ListAccounts(c *gin.Context) {
	scope, err := scopeFromQuery(c)
	if err != nil {
		respondError(c, "ListAccounts", err)
		return
	}
	accounts, err := ac.ledger.ListAccounts(c.Request.Context(), scope)
	if err != nil {
		respondError(c, "ListAccounts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (ac *AccountController) PrimaryAccount(c *gin.Context) {
	scope, err := scopeFromQuery(c)
	if err != nil {
		respondError(c, "PrimaryAccount", err)
		return
	}
	acct, err := ac.ledger.PrimaryAccount(c.Request.Context(), scope)
	if err != nil {
		respondError(c, "PrimaryAccount", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": acct})
}

func (ac *AccountController) GetAccount(c *gin.Context) {
	acct, err := ac.ledger.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "GetAccount", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": acct})
}

func (ac *AccountController) UpdateAccount(c *gin.Context) {
	var input accountInput
	if !bind(c, "UpdateAccount", &input) {
		return
	}
	acct, err := ac.ledger.UpdateAccount(c.Request.Context(), c.Param("id"), input.toService())
	if err != nil {
		respondError(c, "UpdateAccount", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": acct})
}

func (ac *AccountController) DeleteAccount(c *gin.Context) {
	if err := ac.ledger.DeleteAccount(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "DeleteAccount", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

func (ac *AccountController) RecordTransaction(c *gin.Context) {
	var input struct {
		Direction   models.TransactionDirection `json:"direction" binding:"required"`
		Amount      decimal.Decimal             `json:"amount"`
		Currency    string                      `json:"currency"`
		Description string                      `json:"description"`
		OccurredAt  *time.Time                  `json:"occurred_at"`
		RouteID     *string                     `json:"route_id"`
	}
	if !bind(c, "RecordTransaction", &input) {
		return
	}
	in := services.TransactionInput{
		Direction:   input.Direction,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Description: input.Description,
		RouteID:     input.RouteID,
	}
	if input.OccurredAt != nil {
		in.OccurredAt = *input.OccurredAt
	}
	tx, err := ac.ledger.RecordTransaction(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, "RecordTransaction", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

func (ac *AccountController) ListTransactions(c *gin.Context) {
	txs, err := ac.ledger.ListTransactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "ListTransactions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}
