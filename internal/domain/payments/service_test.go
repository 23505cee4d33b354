package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khata/internal/core/apperror"
	"khata/internal/core/entity"
	"khata/internal/core/feature"
	"khata/internal/core/id"
	"khata/internal/core/types"
	"khata/internal/domain/registers/bankbalance"
	"khata/internal/domain/registers/partybalance"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePaymentRepo struct {
	payments map[id.ID]*Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[id.ID]*Payment)}
}

func (f *fakePaymentRepo) Create(ctx context.Context, p *Payment) error {
	copied := *p
	f.payments[p.ID] = &copied
	return nil
}

func (f *fakePaymentRepo) GetByID(ctx context.Context, firmID, paymentID id.ID) (*Payment, error) {
	p, ok := f.payments[paymentID]
	if !ok || p.FirmID != firmID {
		return nil, apperror.NewNotFound("payment", paymentID.String())
	}
	copied := *p
	return &copied, nil
}

func (f *fakePaymentRepo) Update(ctx context.Context, p *Payment) error {
	if _, ok := f.payments[p.ID]; !ok {
		return apperror.NewNotFound("payment", p.ID.String())
	}
	copied := *p
	f.payments[p.ID] = &copied
	return nil
}

func (f *fakePaymentRepo) Delete(ctx context.Context, firmID, paymentID id.ID) error {
	delete(f.payments, paymentID)
	return nil
}

func (f *fakePaymentRepo) List(ctx context.Context, firmID id.ID, filter ListFilter) ([]*Payment, error) {
	var out []*Payment
	for _, p := range f.payments {
		if p.FirmID == firmID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakePartyRepo struct {
	balances map[id.ID]partybalance.Balance
}

func (f *fakePartyRepo) GetBalance(ctx context.Context, firmID, partyID id.ID) (partybalance.Balance, error) {
	b, ok := f.balances[partyID]
	if !ok {
		return partybalance.Balance{}, apperror.NewNotFound("party", partyID.String())
	}
	return b, nil
}

func (f *fakePartyRepo) UpdateBalance(ctx context.Context, firmID, partyID id.ID, balance partybalance.Balance) error {
	f.balances[partyID] = balance
	return nil
}

type fakeBankRepo struct {
	balances map[id.ID]types.Money
}

func (f *fakeBankRepo) GetBalance(ctx context.Context, firmID, accountID id.ID) (types.Money, error) {
	b, ok := f.balances[accountID]
	if !ok {
		return types.Zero(), apperror.NewNotFound("bank account", accountID.String())
	}
	return b, nil
}

func (f *fakeBankRepo) UpdateBalance(ctx context.Context, firmID, accountID id.ID, balance types.Money) error {
	f.balances[accountID] = balance
	return nil
}

type fixture struct {
	svc     *Service
	repo    *fakePaymentRepo
	parties *fakePartyRepo
	banks   *fakeBankRepo
	flags   *feature.InMemoryFlags
	firmID  id.ID
}

func newFixture() *fixture {
	repo := newFakePaymentRepo()
	partyRepo := &fakePartyRepo{balances: make(map[id.ID]partybalance.Balance)}
	bankRepo := &fakeBankRepo{balances: make(map[id.ID]types.Money)}
	flags := feature.NewInMemoryFlags()

	svc := NewService(
		repo,
		partybalance.NewService(partyRepo),
		bankbalance.NewService(bankRepo),
		passthroughTx{},
		flags,
		nil,
	)

	return &fixture{
		svc:     svc,
		repo:    repo,
		parties: partyRepo,
		banks:   bankRepo,
		flags:   flags,
		firmID:  id.New(),
	}
}

func money(n int64) types.Money { return types.NewMoney(float64(n)) }

func (fx *fixture) bankPayment(accountID id.ID, direction entity.PaymentDirection, amount int64) *Payment {
	return &Payment{
		BaseEntity:    entity.BaseEntity{FirmID: fx.firmID},
		Amount:        money(amount),
		PaymentMethod: entity.PaymentMethodBank,
		PaymentDate:   time.Now(),
		Direction:     direction,
		BankAccountID: &accountID,
	}
}

func (fx *fixture) cashPayment(partyID id.ID, direction entity.PaymentDirection, amount int64) *Payment {
	return &Payment{
		BaseEntity:    entity.BaseEntity{FirmID: fx.firmID},
		Amount:        money(amount),
		PaymentMethod: entity.PaymentMethodCash,
		PaymentDate:   time.Now(),
		Direction:     direction,
		PartyID:       &partyID,
	}
}

func TestCreateBankInAddsToAccount(t *testing.T) {
	fx := newFixture()
	accountID := id.New()
	fx.banks.balances[accountID] = money(1000)

	created, err := fx.svc.Create(context.Background(), fx.bankPayment(accountID, entity.PaymentIn, 250))
	require.NoError(t, err)
	assert.False(t, created.IsReconciled)
	assert.True(t, fx.banks.balances[accountID].Equal(money(1250)))
}

func TestCreateBankOutSubtracts(t *testing.T) {
	fx := newFixture()
	accountID := id.New()
	fx.banks.balances[accountID] = money(1000)

	_, err := fx.svc.Create(context.Background(), fx.bankPayment(accountID, entity.PaymentOut, 300))
	require.NoError(t, err)
	assert.True(t, fx.banks.balances[accountID].Equal(money(700)))
}

func TestCreateBankMissingAccountFails(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.Create(context.Background(), fx.bankPayment(id.New(), entity.PaymentIn, 100))
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, fx.repo.payments, "nothing persisted on a failed create")
}

func TestCreateInReducesReceivable(t *testing.T) {
	fx := newFixture()
	partyID := id.New()
	fx.parties.balances[partyID] = partybalance.Balance{Amount: money(500), Type: entity.BalanceToReceive}

	_, err := fx.svc.Create(context.Background(), fx.cashPayment(partyID, entity.PaymentIn, 200))
	require.NoError(t, err)

	got := fx.parties.balances[partyID]
	assert.True(t, got.Amount.Equal(money(300)))
	assert.Equal(t, entity.BalanceToReceive, got.Type)
}

func TestCreateInOvershootFlipsToPayable(t *testing.T) {
	fx := newFixture()
	partyID := id.New()
	fx.parties.balances[partyID] = partybalance.Balance{Amount: money(100), Type: entity.BalanceToReceive}

	_, err := fx.svc.Create(context.Background(), fx.cashPayment(partyID, entity.PaymentIn, 150))
	require.NoError(t, err)

	got := fx.parties.balances[partyID]
	assert.True(t, got.Amount.Equal(money(50)))
	assert.Equal(t, entity.BalanceToPay, got.Type)
}

func TestCreateValidationRejectsZeroAmount(t *testing.T) {
	fx := newFixture()
	p := fx.cashPayment(id.New(), entity.PaymentIn, 0)

	_, err := fx.svc.Create(context.Background(), p)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCreateValidationRequiresChequeDetails(t *testing.T) {
	fx := newFixture()
	p := fx.cashPayment(id.New(), entity.PaymentIn, 50)
	p.PaymentMethod = entity.PaymentMethodCheque

	_, err := fx.svc.Create(context.Background(), p)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestUpdateRevertsBankButNotPartyByDefault(t *testing.T) {
	fx := newFixture()
	accountID := id.New()
	partyID := id.New()
	fx.banks.balances[accountID] = money(1000)
	fx.parties.balances[partyID] = partybalance.Balance{Amount: money(500), Type: entity.BalanceToReceive}

	p := fx.bankPayment(accountID, entity.PaymentIn, 200)
	p.PartyID = &partyID
	created, err := fx.svc.Create(context.Background(), p)
	require.NoError(t, err)
	require.True(t, fx.banks.balances[accountID].Equal(money(1200)))
	require.True(t, fx.parties.balances[partyID].Amount.Equal(money(300)))

	amended := fx.bankPayment(accountID, entity.PaymentIn, 50)
	amended.PartyID = &partyID
	_, err = fx.svc.Update(context.Background(), fx.firmID, created.ID, amended)
	require.NoError(t, err)

	// bank: -200 then +50
	assert.True(t, fx.banks.balances[accountID].Equal(money(1050)))
	// party untouched in historical mode
	assert.True(t, fx.parties.balances[partyID].Amount.Equal(money(300)))
}

func TestUpdatePartyReversalCorrectedMode(t *testing.T) {
	fx := newFixture()
	partyID := id.New()
	fx.parties.balances[partyID] = partybalance.Balance{Amount: money(500), Type: entity.BalanceToReceive}
	fx.flags.SetFlag(feature.FlagPaymentPartyReversal, true)

	created, err := fx.svc.Create(context.Background(), fx.cashPayment(partyID, entity.PaymentIn, 200))
	require.NoError(t, err)
	require.True(t, fx.parties.balances[partyID].Amount.Equal(money(300)))

	amended := fx.cashPayment(partyID, entity.PaymentIn, 50)
	_, err = fx.svc.Update(context.Background(), fx.firmID, created.ID, amended)
	require.NoError(t, err)

	// corrected mode: 300 +200 back, then -50
	got := fx.parties.balances[partyID]
	assert.True(t, got.Amount.Equal(money(450)), "balance: %s", got.Amount)
	assert.Equal(t, entity.BalanceToReceive, got.Type)
}

func TestUpdateMissingPaymentIsNotFound(t *testing.T) {
	fx := newFixture()
	_, err := fx.svc.Update(context.Background(), fx.firmID, id.New(), fx.cashPayment(id.New(), entity.PaymentIn, 10))
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteRevertsBankAndParty(t *testing.T) {
	fx := newFixture()
	accountID := id.New()
	partyID := id.New()
	fx.banks.balances[accountID] = money(1000)
	fx.parties.balances[partyID] = partybalance.Balance{Amount: money(500), Type: entity.BalanceToReceive}

	p := fx.bankPayment(accountID, entity.PaymentIn, 200)
	p.PartyID = &partyID
	created, err := fx.svc.Create(context.Background(), p)
	require.NoError(t, err)

	require.NoError(t, fx.svc.Delete(context.Background(), fx.firmID, created.ID))

	assert.True(t, fx.banks.balances[accountID].Equal(money(1000)))
	got := fx.parties.balances[partyID]
	assert.True(t, got.Amount.Equal(money(500)), "balance: %s", got.Amount)
	assert.Equal(t, entity.BalanceToReceive, got.Type)

	_, err = fx.svc.GetByID(context.Background(), fx.firmID, created.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteToleratesMissingBankAccount(t *testing.T) {
	fx := newFixture()
	accountID := id.New()
	fx.banks.balances[accountID] = money(1000)

	created, err := fx.svc.Create(context.Background(), fx.bankPayment(accountID, entity.PaymentIn, 200))
	require.NoError(t, err)

	// account removed between create and delete
	delete(fx.banks.balances, accountID)

	require.NoError(t, fx.svc.Delete(context.Background(), fx.firmID, created.ID))
	assert.Empty(t, fx.repo.payments)
}

func TestDeleteClampsPartyBalance(t *testing.T) {
	fx := newFixture()
	partyID := id.New()
	fx.parties.balances[partyID] = partybalance.Balance{Amount: money(100), Type: entity.BalanceToReceive}

	created, err := fx.svc.Create(context.Background(), fx.cashPayment(partyID, entity.PaymentIn, 40))
	require.NoError(t, err)
	require.True(t, fx.parties.balances[partyID].Amount.Equal(money(60)))

	// other activity moved the balance to the payable side before the delete
	fx.parties.balances[partyID] = partybalance.Balance{Amount: money(10), Type: entity.BalanceToPay}

	require.NoError(t, fx.svc.Delete(context.Background(), fx.firmID, created.ID))

	// 10 - 40 would be negative; the magnitude is kept and the type stays
	got := fx.parties.balances[partyID]
	assert.True(t, got.Amount.Equal(money(30)), "balance: %s", got.Amount)
	assert.Equal(t, entity.BalanceToPay, got.Type)
}
