package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tour_ops/internal/models"
)

func bankAccount(entityType models.AccountEntityType, entityID *string, holder string, primary bool) AccountInput {
	return AccountInput{
		EntityType:        entityType,
		EntityID:          entityID,
		AccountType:       models.AccountBank,
		AccountHolderName: holder,
		BankName:          "Banque Populaire",
		IsPrimary:         primary,
	}
}

func TestCreateAccount_SecondPrimaryDemotesFirst(t *testing.T) {
	f := newFixture(t)
	hotelID := f.hotel(t, "Riad")

	first, err := f.accounts.CreateAccount(f.ctx, bankAccount(models.AccountHotel, &hotelID, "Riad SARL", true))
	require.NoError(t, err)
	second, err := f.accounts.CreateAccount(f.ctx, bankAccount(models.AccountHotel, &hotelID, "Riad Owner", true))
	require.NoError(t, err)

	first, err = f.accounts.GetAccount(f.ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, first.IsPrimary)

	primary, err := f.accounts.PrimaryAccount(f.ctx, ScopeFor(models.AccountHotel, &hotelID))
	require.NoError(t, err)
	assert.Equal(t, second.ID, primary.ID)

	list, err := f.accounts.ListAccounts(f.ctx, ScopeFor(models.AccountHotel, &hotelID))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, "EUR", list[0].Currency)
}

func TestCreateAccount_ScopesAreIndependent(t *testing.T) {
	f := newFixture(t)
	h1, h2 := f.hotel(t, "Riad"), f.hotel(t, "Kasbah")

	a, err := f.accounts.CreateAccount(f.ctx, bankAccount(models.AccountHotel, &h1, "Riad SARL", true))
	require.NoError(t, err)
	_, err = f.accounts.CreateAccount(f.ctx, bankAccount(models.AccountHotel, &h2, "Kasbah SARL", true))
	require.NoError(t, err)

	a, err = f.accounts.GetAccount(f.ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, a.IsPrimary)
}

func TestCreateAccount_CompanyScopeIgnoresEntityID(t *testing.T) {
	f := newFixture(t)

	first, err := f.accounts.CreateAccount(f.ctx, bankAccount(models.AccountCompany, nil, "Tour Ops Ltd", true))
	require.NoError(t, err)
	assert.Nil(t, first.EntityID)

	second, err := f.accounts.CreateAccount(f.ctx, bankAccount(models.AccountCompany, ptr("ignored"), "Tour Ops Ltd", true))
	require.NoError(t, err)
	assert.Nil(t, second.EntityID)

	primary, err := f.accounts.PrimaryAccount(f.ctx, ScopeFor(models.AccountCompany, nil))
	require.NoError(t, err)
	assert.Equal(t, second.ID, primary.ID)
}

func TestCreateAccount_Validation(t *testing.T) {
	f := newFixture(t)
	driverStaff := models.Staff{Name: "Hassan", StaffType: models.StaffDriver}
	require.NoError(t, CreateEntity(f.ctx, f.entities, &driverStaff))
	guideID := f.staff(t, "Brahim")

	tests := []struct {
		name string
		in   AccountInput
		want error
	}{
		{"missing holder", AccountInput{EntityType: models.AccountCompany, AccountType: models.AccountCash}, ErrValidation},
		{"bank without bank name", AccountInput{EntityType: models.AccountCompany, AccountType: models.AccountBank, AccountHolderName: "X"}, ErrValidation},
		{"online without service", AccountInput{EntityType: models.AccountCompany, AccountType: models.AccountOnline, AccountHolderName: "X"}, ErrValidation},
		{"unknown account type", AccountInput{EntityType: models.AccountCompany, AccountType: "crypto", AccountHolderName: "X"}, ErrValidation},
		{"unknown owner type", AccountInput{EntityType: "bank", AccountType: models.AccountCash, AccountHolderName: "X"}, ErrValidation},
		{"owner id required", AccountInput{EntityType: models.AccountStaff, AccountType: models.AccountCash, AccountHolderName: "X"}, ErrValidation},
		{"owner must exist", AccountInput{EntityType: models.AccountClient, EntityID: ptr("nobody"), AccountType: models.AccountCash, AccountHolderName: "X"}, ErrNotFound},
		{"driver account needs a driver", AccountInput{EntityType: models.AccountDriver, EntityID: &guideID, AccountType: models.AccountCash, AccountHolderName: "X"}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.accounts.CreateAccount(f.ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	driver, err := f.accounts.CreateAccount(f.ctx, AccountInput{
		EntityType:        models.AccountDriver,
		EntityID:          &driverStaff.ID,
		AccountType:       models.AccountOnline,
		AccountHolderName: "Hassan",
		ServiceName:       "Wise",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AccountDriver, driver.EntityType)
}

func TestUpdateAccount_PromotionDemotesOthers(t *testing.T) {
	f := newFixture(t)
	clientID := f.client(t, "Ana")

	a, err := f.accounts.CreateAccount(f.ctx, bankAccount(models.AccountClient, &clientID, "Ana", true))
	require.NoError(t, err)
	b, err := f.accounts.CreateAccount(f.ctx, bankAccount(models.AccountClient, &clientID, "Ana", false))
	require.NoError(t, err)

	in := bankAccount(models.AccountHotel, ptr("elsewhere"), "Ana Savings", true)
	b, err = f.accounts.UpdateAccount(f.ctx, b.ID, in)
	require.NoError(t, err)
	assert.True(t, b.IsPrimary)
	assert.Equal(t, models.AccountClient, b.EntityType)
	assert.Equal(t, clientID, *b.EntityID)

	a, err = f.accounts.GetAccount(f.ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, a.IsPrimary)
}

func TestRecordTransaction_SnapshotsAccount(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, nil)
	acct, err := f.accounts.CreateAccount(f.ctx, bankAccount(models.AccountCompany, nil, "Tour Ops Ltd", true))
	require.NoError(t, err)

	_, err = f.accounts.RecordTransaction(f.ctx, acct.ID, TransactionInput{Direction: models.DirectionIncoming, Amount: mustDecimal("0")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.accounts.RecordTransaction(f.ctx, acct.ID, TransactionInput{Direction: "sideways", Amount: mustDecimal("10")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.accounts.RecordTransaction(f.ctx, acct.ID, TransactionInput{Direction: models.DirectionIncoming, Amount: mustDecimal("10"), RouteID: ptr("missing")})
	assert.ErrorIs(t, err, ErrNotFound)

	txn, err := f.accounts.RecordTransaction(f.ctx, acct.ID, TransactionInput{
		Direction:  models.DirectionIncoming,
		Amount:     mustDecimal("1500"),
		RouteID:    &route.ID,
		OccurredAt: time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "Tour Ops Ltd", txn.AccountHolderName)
	assert.Equal(t, "Banque Populaire", txn.BankName)
	assert.Equal(t, "EUR", txn.Currency)

	in := bankAccount(models.AccountCompany, nil, "Renamed Ltd", true)
	_, err = f.accounts.UpdateAccount(f.ctx, acct.ID, in)
	require.NoError(t, err)

	txns, err := f.accounts.ListTransactions(f.ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "Tour Ops Ltd", txns[0].AccountHolderName)
	assert.True(t, txns[0].Amount.Equal(mustDecimal("1500")))

	require.NoError(t, f.accounts.DeleteAccount(f.ctx, acct.ID))
	txns, err = f.accounts.ListTransactions(f.ctx, acct.ID)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func countPrimaries(t *testing.T, f *fixture, scope AccountScope) int64 {
	t.Helper()
	var n int64
	require.NoError(t, scope.apply(f.db.Model(&models.Account{})).Where("is_primary = ?", true).Count(&n).Error)
	return n
}

func TestCreateAccount_ConcurrentPrimariesLeaveOne(t *testing.T) {
	f := newFixture(t)
	hotelID := f.hotel(t, "Riad")
	scope := ScopeFor(models.AccountHotel, &hotelID)

	const writers = 8
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.accounts.CreateAccount(f.ctx, bankAccount(models.AccountHotel, &hotelID, "Riad SARL", true))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	list, err := f.accounts.ListAccounts(f.ctx, scope)
	require.NoError(t, err)
	assert.Len(t, list, writers)
	assert.Equal(t, int64(1), countPrimaries(t, f, scope))
}

func TestUpdateAccount_ConcurrentPromotionsLeaveOne(t *testing.T) {
	f := newFixture(t)
	clientID := f.client(t, "Ana")
	scope := ScopeFor(models.AccountClient, &clientID)

	var ids []string
	for i := 0; i < 6; i++ {
		acct, err := f.accounts.CreateAccount(f.ctx, bankAccount(models.AccountClient, &clientID, "Ana", false))
		require.NoError(t, err)
		ids = append(ids, acct.ID)
	}

	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = f.accounts.UpdateAccount(f.ctx, id, bankAccount(models.AccountClient, &clientID, "Ana", true))
		}(i, id)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(1), countPrimaries(t, f, scope))
}

func TestAccountIndex_RejectsSecondPrimary(t *testing.T) {
	f := newFixture(t)
	hotelID := f.hotel(t, "Riad")

	_, err := f.accounts.CreateAccount(f.ctx, bankAccount(models.AccountHotel, &hotelID, "Riad SARL", true))
	require.NoError(t, err)

	// Bypasses the ledger's demotion so only the unique index stands in the way.
	raw := models.Account{
		EntityType:        models.AccountHotel,
		EntityID:          &hotelID,
		AccountType:       models.AccountCash,
		AccountHolderName: "Riad Owner",
		Currency:          "EUR",
		IsPrimary:         true,
	}
	err = storageErr("insert account", "account", "", f.db.Create(&raw).Error)
	assert.ErrorIs(t, err, ErrConflict)

	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)

	// A non-primary row in the same scope is fine.
	raw = models.Account{
		EntityType:        models.AccountHotel,
		EntityID:          &hotelID,
		AccountType:       models.AccountCash,
		AccountHolderName: "Riad Owner",
		Currency:          "EUR",
	}
	assert.NoError(t, f.db.Create(&raw).Error)
	assert.Equal(t, int64(1), countPrimaries(t, f, ScopeFor(models.AccountHotel, &hotelID)))
}

func TestAccountIndex_CompanyScopeHasOnePrimary(t *testing.T) {
	f := newFixture(t)

	_, err := f.accounts.CreateAccount(f.ctx, bankAccount(models.AccountCompany, nil, "Tour Ops Ltd", true))
	require.NoError(t, err)

	raw := models.Account{
		EntityType:        models.AccountCompany,
		AccountType:       models.AccountCash,
		AccountHolderName: "Petty cash",
		Currency:          "EUR",
		IsPrimary:         true,
	}
	err = storageErr("insert account", "account", "", f.db.Create(&raw).Error)
	assert.ErrorIs(t, err, ErrConflict)
}
