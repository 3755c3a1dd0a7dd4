package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountEntityType string

const (
	AccountClient  AccountEntityType = "client"
	AccountHotel   AccountEntityType = "hotel"
	AccountStaff   AccountEntityType = "staff"
	AccountDriver  AccountEntityType = "driver"
	AccountCaterer AccountEntityType = "caterer"
	AccountCompany AccountEntityType = "company"
)

type AccountType string

const (
	AccountBank   AccountType = "bank"
	AccountCash   AccountType = "cash"
	AccountOnline AccountType = "online"
	AccountOther  AccountType = "other"
)

// Account is a financial account owned by an entity, or by the company
// itself when EntityType is company (EntityID is then always nil).
type Account struct {
	Base
	EntityType        AccountEntityType `json:"entity_type" gorm:"type:varchar(16);index:idx_accounts_scope;not null"`
	EntityID          *string           `json:"entity_id" gorm:"type:varchar(36);index:idx_accounts_scope"`
	AccountType       AccountType       `json:"account_type" gorm:"type:varchar(16);not null"`
	AccountHolderName string            `json:"account_holder_name"`
	BankName          string            `json:"bank_name"`
	AccountNumber     string            `json:"account_number"`
	IBAN              string            `json:"iban"`
	SwiftCode         string            `json:"swift_code"`
	ServiceName       string            `json:"service_name"`
	Currency          string            `json:"currency" gorm:"type:varchar(3)"`
	IsPrimary         bool              `json:"is_primary"`
	Notes             string            `json:"notes"`
}

type TransactionDirection string

const (
	DirectionIncoming TransactionDirection = "incoming"
	DirectionOutgoing TransactionDirection = "outgoing"
)

// Transaction is a recorded snapshot of money moving through an account.
// Account naming fields are copied at recording time and are not updated
// when the account changes later.
type Transaction struct {
	Base
	AccountID         string               `json:"account_id" gorm:"type:varchar(36);index;not null"`
	RouteID           *string              `json:"route_id" gorm:"type:varchar(36);index"`
	Direction         TransactionDirection `json:"direction" gorm:"type:varchar(8);not null"`
	Amount            decimal.Decimal      `json:"amount" gorm:"type:numeric(12,2)"`
	Currency          string               `json:"currency" gorm:"type:varchar(3)"`
	Description       string               `json:"description"`
	OccurredAt        time.Time            `json:"occurred_at"`
	AccountHolderName string               `json:"account_holder_name"`
	BankName          string               `json:"bank_name"`
	ServiceName       string               `json:"service_name"`
}
