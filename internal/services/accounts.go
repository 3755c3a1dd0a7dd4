package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tour_ops/internal/models"
)

// accountOwners maps an account entity type to the reference table that
// owns it. Company accounts have no owner row.
var accountOwners = map[models.AccountEntityType]models.EntityKind{
	models.AccountClient:  models.KindClient,
	models.AccountHotel:   models.KindHotel,
	models.AccountStaff:   models.KindStaff,
	models.AccountDriver:  models.KindStaff,
	models.AccountCaterer: models.KindCaterer,
}

// AccountScope is the key under which at most one account may be primary.
type AccountScope struct {
	EntityType models.AccountEntityType
	EntityID   *string
}

// ScopeFor builds the scope key. Company accounts always have a nil id.
func ScopeFor(entityType models.AccountEntityType, entityID *string) AccountScope {
	if entityType == models.AccountCompany {
		return AccountScope{EntityType: entityType}
	}
	return AccountScope{EntityType: entityType, EntityID: entityID}
}

func (s AccountScope) key() string {
	if s.EntityID == nil {
		return string(s.EntityType) + ":"
	}
	return string(s.EntityType) + ":" + *s.EntityID
}

func (s AccountScope) apply(db *gorm.DB) *gorm.DB {
	if s.EntityID == nil {
		return db.Where("entity_type = ? AND entity_id IS NULL", s.EntityType)
	}
	return db.Where("entity_type = ? AND entity_id = ?", s.EntityType, *s.EntityID)
}

type AccountInput struct {
	EntityType        models.AccountEntityType
	EntityID          *string
	AccountType       models.AccountType
	AccountHolderName string
	BankName          string
	AccountNumber     string
	IBAN              string
	SwiftCode         string
	ServiceName       string
	Currency          string
	IsPrimary         bool
	Notes             string
}

type TransactionInput struct {
	Direction   models.TransactionDirection
	Amount      decimal.Decimal
	Currency    string
	Description string
	OccurredAt  time.Time
	RouteID     *string
}

// AccountLedger manages entity accounts and keeps one primary per scope.
type AccountLedger struct {
	db              *gorm.DB
	lookup          EntityLookup
	defaultCurrency string
}

func NewAccountLedger(db *gorm.DB, lookup EntityLookup, defaultCurrency string) *AccountLedger {
	return &AccountLedger{db: db, lookup: lookup, defaultCurrency: defaultCurrency}
}

func validateAccountFields(in AccountInput) error {
	if strings.TrimSpace(in.AccountHolderName) == "" {
		return invalid("account_holder_name", "is required")
	}
	switch in.AccountType {
	case models.AccountBank, models.AccountOther:
		if strings.TrimSpace(in.BankName) == "" {
			return invalid("bank_name", "is required for "+string(in.AccountType)+" accounts")
		}
	case models.AccountOnline:
		if strings.TrimSpace(in.ServiceName) == "" {
			return invalid("service_name", "is required for online accounts")
		}
	case models.AccountCash:
	default:
		return invalid("account_type", "must be one of bank, cash, online, other")
	}
	return nil
}

func (l *AccountLedger) validateOwner(ctx context.Context, scope AccountScope) error {
	if scope.EntityType == models.AccountCompany {
		return nil
	}
	kind, ok := accountOwners[scope.EntityType]
	if !ok {
		return invalid("entity_type", "must be one of client, hotel, staff, driver, caterer, company")
	}
	if scope.EntityID == nil || *scope.EntityID == "" {
		return invalid("entity_id", "is required for "+string(scope.EntityType)+" accounts")
	}
	ref, err := l.lookup.GetByID(ctx, kind, *scope.EntityID)
	if err != nil {
		return err
	}
	if scope.EntityType == models.AccountDriver && ref.StaffType != models.StaffDriver {
		return invalid("entity_id", "staff member "+ref.Name+" is not a driver")
	}
	return nil
}

// lockScope serialises writers on one account scope for the rest of the
// transaction. Only postgres needs it; sqlite already has a single writer.
func lockScope(tx *gorm.DB, scope AccountScope) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "accounts:"+scope.key()).Error
}

// demoteOthers clears is_primary on every account in the scope except keepID.
func demoteOthers(tx *gorm.DB, scope AccountScope, keepID string) error {
	q := scope.apply(tx.Model(&models.Account{})).Where("is_primary = ?", true)
	if keepID != "" {
		q = q.Where("id <> ?", keepID)
	}
	return q.Update("is_primary", false).Error
}

func (l *AccountLedger) CreateAccount(ctx context.Context, in AccountInput) (*models.Account, error) {
	scope := ScopeFor(in.EntityType, in.EntityID)
	if err := l.validateOwner(ctx, scope); err != nil {
		return nil, err
	}
	if err := validateAccountFields(in); err != nil {
		return nil, err
	}
	acct := models.Account{
		EntityType: scope.EntityType,
		EntityID:   scope.EntityID,
	}
	l.applyFields(&acct, in)

	tx := l.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, storageErr("create account", "account", "", tx.Error)
	}
	if err := lockScope(tx, scope); err != nil {
		tx.Rollback()
		return nil, storageErr("create account", "account", "", err)
	}
	if acct.IsPrimary {
		if err := demoteOthers(tx, scope, ""); err != nil {
			tx.Rollback()
			return nil, storageErr("create account", "account", "", err)
		}
	}
	if err := tx.Create(&acct).Error; err != nil {
		tx.Rollback()
		return nil, storageErr("create account", "primary account", "", err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, storageErr("create account", "account", "", err)
	}
	logrus.WithFields(logrus.Fields{
		"account_id": acct.ID,
		"scope":      scope.key(),
		"primary":    acct.IsPrimary,
	}).Info("account created")
	return &acct, nil
}

// UpdateAccount rewrites the account's own fields. The owning scope cannot
// change. Other accounts are demoted only when this one turns primary.
func (l *AccountLedger) UpdateAccount(ctx context.Context, id string, in AccountInput) (*models.Account, error) {
	existing, err := l.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	scope := ScopeFor(existing.EntityType, existing.EntityID)
	in.EntityType = existing.EntityType
	if err := validateAccountFields(in); err != nil {
		return nil, err
	}
	becomesPrimary := in.IsPrimary && !existing.IsPrimary
	l.applyFields(existing, in)

	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockScope(tx, scope); err != nil {
			return err
		}
		if becomesPrimary {
			if err := demoteOthers(tx, scope, id); err != nil {
				return err
			}
		}
		return tx.Save(existing).Error
	})
	if err != nil {
		return nil, storageErr("update account", "primary account", id, err)
	}
	if becomesPrimary {
		logrus.WithFields(logrus.Fields{"account_id": id, "scope": scope.key()}).Info("account promoted to primary")
	}
	return existing, nil
}

func (l *AccountLedger) applyFields(acct *models.Account, in AccountInput) {
	acct.AccountType = in.AccountType
	acct.AccountHolderName = strings.TrimSpace(in.AccountHolderName)
	acct.BankName = in.BankName
	acct.AccountNumber = in.AccountNumber
	acct.IBAN = in.IBAN
	acct.SwiftCode = in.SwiftCode
	acct.ServiceName = in.ServiceName
	acct.Currency = in.Currency
	if acct.Currency == "" {
		acct.Currency = l.defaultCurrency
	}
	acct.IsPrimary = in.IsPrimary
	acct.Notes = in.Notes
}

func (l *AccountLedger) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	var acct models.Account
	if err := l.db.WithContext(ctx).First(&acct, "id = ?", id).Error; err != nil {
		return nil, storageErr("get account", "account", id, err)
	}
	return &acct, nil
}

// ListAccounts returns the scope's accounts, primary first.
func (l *AccountLedger) ListAccounts(ctx context.Context, scope AccountScope) ([]models.Account, error) {
	scope = ScopeFor(scope.EntityType, scope.EntityID)
	accts := []models.Account{}
	if err := scope.apply(l.db.WithContext(ctx)).Order("is_primary DESC").Order("created_at").Find(&accts).Error; err != nil {
		return nil, storageErr("list accounts", "account", "", err)
	}
	return accts, nil
}

// PrimaryAccount returns the scope's primary account or a NotFoundError.
func (l *AccountLedger) PrimaryAccount(ctx context.Context, scope AccountScope) (*models.Account, error) {
	scope = ScopeFor(scope.EntityType, scope.EntityID)
	var acct models.Account
	if err := scope.apply(l.db.WithContext(ctx)).Where("is_primary = ?", true).First(&acct).Error; err != nil {
		return nil, storageErr("get primary account", "primary account", scope.key(), err)
	}
	return &acct, nil
}

// DeleteAccount removes the account. Recorded transactions keep their
// snapshot of it.
func (l *AccountLedger) DeleteAccount(ctx context.Context, id string) error {
	res := l.db.WithContext(ctx).Delete(&models.Account{}, "id = ?", id)
	if res.Error != nil {
		return storageErr("delete account", "account", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("account", id)
	}
	logrus.WithField("account_id", id).Info("account deleted")
	return nil
}

// RecordTransaction stores a snapshot of money moving through an account.
func (l *AccountLedger) RecordTransaction(ctx context.Context, accountID string, in TransactionInput) (*models.Transaction, error) {
	acct, err := l.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if in.Direction != models.DirectionIncoming && in.Direction != models.DirectionOutgoing {
		return nil, invalid("direction", "must be incoming or outgoing")
	}
	if !in.Amount.IsPositive() {
		return nil, invalid("amount", "must be greater than zero")
	}
	if in.RouteID != nil {
		if err := requireRoute(ctx, l.db, *in.RouteID); err != nil {
			return nil, err
		}
	}
	occurred := in.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	currency := in.Currency
	if currency == "" {
		currency = acct.Currency
	}
	txn := models.Transaction{
		AccountID:         acct.ID,
		RouteID:           in.RouteID,
		Direction:         in.Direction,
		Amount:            in.Amount,
		Currency:          currency,
		Description:       in.Description,
		OccurredAt:        occurred,
		AccountHolderName: acct.AccountHolderName,
		BankName:          acct.BankName,
		ServiceName:       acct.ServiceName,
	}
	if err := l.db.WithContext(ctx).Create(&txn).Error; err != nil {
		return nil, storageErr("record transaction", "transaction", "", err)
	}
	return &txn, nil
}

func (l *AccountLedger) ListTransactions(ctx context.Context, accountID string) ([]models.Transaction, error) {
	txns := []models.Transaction{}
	if err := l.db.WithContext(ctx).Where("account_id = ?", accountID).Order("occurred_at").Find(&txns).Error; err != nil {
		return nil, storageErr("list transactions", "transaction", "", err)
	}
	return txns, nil
}
