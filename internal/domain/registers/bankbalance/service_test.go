package bankbalance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khata/internal/core/apperror"
	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/core/types"
)

type fakeRepo struct {
	balances map[id.ID]types.Money
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{balances: make(map[id.ID]types.Money)}
}

func (f *fakeRepo) GetBalance(ctx context.Context, firmID, accountID id.ID) (types.Money, error) {
	b, ok := f.balances[accountID]
	if !ok {
		return types.Zero(), apperror.NewNotFound("bank account", accountID.String())
	}
	return b, nil
}

func (f *fakeRepo) UpdateBalance(ctx context.Context, firmID, accountID id.ID, balance types.Money) error {
	f.balances[accountID] = balance
	return nil
}

func money(n int64) types.Money { return types.NewMoney(float64(n)) }

func bankEffect(accountID id.ID, docType entity.DocumentType, paid int64) DocumentEffect {
	return DocumentEffect{
		BankAccountID: &accountID,
		PaymentMethod: entity.PaymentMethodBank,
		Type:          docType,
		Paid:          money(paid),
	}
}

func TestApplyDocumentSaleAddsPurchaseSubtracts(t *testing.T) {
	repo := newFakeRepo()
	accountID := id.New()
	firmID := id.New()
	repo.balances[accountID] = money(1000)

	svc := NewService(repo)

	require.NoError(t, svc.ApplyDocument(context.Background(), firmID, bankEffect(accountID, entity.DocTypeSaleInvoice, 400), false))
	assert.True(t, repo.balances[accountID].Equal(money(1400)))

	require.NoError(t, svc.ApplyDocument(context.Background(), firmID, bankEffect(accountID, entity.DocTypePurchaseInvoice, 600), false))
	assert.True(t, repo.balances[accountID].Equal(money(800)))
}

func TestApplyDocumentReverseFlips(t *testing.T) {
	repo := newFakeRepo()
	accountID := id.New()
	firmID := id.New()
	repo.balances[accountID] = money(1000)

	svc := NewService(repo)
	eff := bankEffect(accountID, entity.DocTypeSaleInvoice, 400)
	require.NoError(t, svc.ApplyDocument(context.Background(), firmID, eff, false))
	require.NoError(t, svc.ApplyDocument(context.Background(), firmID, eff, true))

	assert.True(t, repo.balances[accountID].Equal(money(1000)))
}

func TestApplyDocumentAllowsNegative(t *testing.T) {
	repo := newFakeRepo()
	accountID := id.New()
	firmID := id.New()
	repo.balances[accountID] = money(100)

	svc := NewService(repo)
	require.NoError(t, svc.ApplyDocument(context.Background(), firmID, bankEffect(accountID, entity.DocTypePurchaseInvoice, 250), false))

	assert.True(t, repo.balances[accountID].Equal(money(-150)))
}

func TestApplyDocumentNonBankMediumIsNoop(t *testing.T) {
	repo := newFakeRepo()
	accountID := id.New()
	firmID := id.New()
	repo.balances[accountID] = money(100)

	svc := NewService(repo)
	eff := bankEffect(accountID, entity.DocTypeSaleInvoice, 50)
	eff.PaymentMethod = entity.PaymentMethodCash
	require.NoError(t, svc.ApplyDocument(context.Background(), firmID, eff, false))

	assert.True(t, repo.balances[accountID].Equal(money(100)))
}

func TestApplyDocumentZeroPaidIsNoop(t *testing.T) {
	repo := newFakeRepo()
	accountID := id.New()
	firmID := id.New()
	repo.balances[accountID] = money(100)

	svc := NewService(repo)
	require.NoError(t, svc.ApplyDocument(context.Background(), firmID, bankEffect(accountID, entity.DocTypeSaleInvoice, 0), false))

	assert.True(t, repo.balances[accountID].Equal(money(100)))
}

func TestApplyDocumentPlainPurchaseHasNoEffect(t *testing.T) {
	repo := newFakeRepo()
	accountID := id.New()
	firmID := id.New()
	repo.balances[accountID] = money(100)

	svc := NewService(repo)
	// a plain purchase order is neither sale-family nor a purchase_ subtype
	require.NoError(t, svc.ApplyDocument(context.Background(), firmID, bankEffect(accountID, entity.DocTypePurchase, 50), false))

	assert.True(t, repo.balances[accountID].Equal(money(100)))
}

func TestApplyDocumentMissingAccountSkipped(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	err := svc.ApplyDocument(context.Background(), id.New(), bankEffect(id.New(), entity.DocTypeSaleInvoice, 50), false)
	assert.NoError(t, err)
}

func TestApplyPaymentDirections(t *testing.T) {
	repo := newFakeRepo()
	accountID := id.New()
	firmID := id.New()
	repo.balances[accountID] = money(500)

	svc := NewService(repo)

	require.NoError(t, svc.ApplyPayment(context.Background(), firmID, accountID, entity.PaymentIn, money(200), false))
	assert.True(t, repo.balances[accountID].Equal(money(700)))

	require.NoError(t, svc.ApplyPayment(context.Background(), firmID, accountID, entity.PaymentOut, money(300), false))
	assert.True(t, repo.balances[accountID].Equal(money(400)))

	// reverse of the outbound payment adds the money back
	require.NoError(t, svc.ApplyPayment(context.Background(), firmID, accountID, entity.PaymentOut, money(300), true))
	assert.True(t, repo.balances[accountID].Equal(money(700)))
}

func TestApplyPaymentMissingAccountErrors(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	err := svc.ApplyPayment(context.Background(), id.New(), id.New(), entity.PaymentIn, money(10), false)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
