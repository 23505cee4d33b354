package partybalance

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
	balances map[id.ID]Balance
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{balances: make(map[id.ID]Balance)}
}

func (f *fakeRepo) GetBalance(ctx context.Context, firmID, partyID id.ID) (Balance, error) {
	b, ok := f.balances[partyID]
	if !ok {
		return Balance{}, apperror.NewNotFound("party", partyID.String())
	}
	return b, nil
}

func (f *fakeRepo) UpdateBalance(ctx context.Context, firmID, partyID id.ID, balance Balance) error {
	f.balances[partyID] = balance
	return nil
}

func money(n int64) types.Money { return types.NewMoney(float64(n)) }

func saleEffect(partyID id.ID, total, paid int64) DocumentEffect {
	return DocumentEffect{
		PartyID: &partyID,
		Type:    entity.DocTypeSaleInvoice,
		Total:   money(total),
		Paid:    money(paid),
	}
}

func TestApplyDocumentCustomerAccumulates(t *testing.T) {
	repo := newFakeRepo()
	partyID := id.New()
	firmID := id.New()
	repo.balances[partyID] = Balance{Amount: money(0), Type: entity.BalanceToPay}

	svc := NewService(repo)
	// sale_invoice: total 1000, paid 400 => party owes 600
	require.NoError(t, svc.ApplyDocument(context.Background(), firmID, saleEffect(partyID, 1000, 400), false))

	got := repo.balances[partyID]
	assert.True(t, got.Amount.Equal(money(600)), "balance: %s", got.Amount)
	assert.Equal(t, entity.BalanceToReceive, got.Type)
}

func TestApplyDocumentCrossingZeroFlips(t *testing.T) {
	repo := newFakeRepo()
	partyID := id.New()
	firmID := id.New()
	// firm owes the party 100
	repo.balances[partyID] = Balance{Amount: money(100), Type: entity.BalanceToPay}

	svc := NewService(repo)
	// sale delta of 150 crosses zero: 50 now owed to the firm
	require.NoError(t, svc.ApplyDocument(context.Background(), firmID, saleEffect(partyID, 150, 0), false))

	got := repo.balances[partyID]
	assert.True(t, got.Amount.Equal(money(50)))
	assert.Equal(t, entity.BalanceToReceive, got.Type)
}

func TestApplyDocumentExactZeroKeepsType(t *testing.T) {
	repo := newFakeRepo()
	partyID := id.New()
	firmID := id.New()
	repo.balances[partyID] = Balance{Amount: money(600), Type: entity.BalanceToReceive}

	svc := NewService(repo)
	// reversing a sale of exactly 600 lands on zero without overshoot,
	// so the side flag does not flip
	require.NoError(t, svc.ApplyDocument(context.Background(), firmID, saleEffect(partyID, 600, 0), true))

	got := repo.balances[partyID]
	assert.True(t, got.Amount.Equal(money(0)), "balance: %s", got.Amount)
	assert.Equal(t, entity.BalanceToReceive, got.Type)
}

func TestApplyDocumentReverseRestores(t *testing.T) {
	repo := newFakeRepo()
	partyID := id.New()
	firmID := id.New()
	repo.balances[partyID] = Balance{Amount: money(100), Type: entity.BalanceToPay}

	svc := NewService(repo)
	eff := saleEffect(partyID, 150, 0)
	require.NoError(t, svc.ApplyDocument(context.Background(), firmID, eff, false))
	require.NoError(t, svc.ApplyDocument(context.Background(), firmID, eff, true))

	got := repo.balances[partyID]
	assert.True(t, got.Amount.Equal(money(100)), "balance: %s", got.Amount)
	assert.Equal(t, entity.BalanceToPay, got.Type)
}

func TestApplyDocumentPurchaseSide(t *testing.T) {
	repo := newFakeRepo()
	partyID := id.New()
	firmID := id.New()
	// party owes the firm 30
	repo.balances[partyID] = Balance{Amount: money(30), Type: entity.BalanceToReceive}

	svc := NewService(repo)
	eff := DocumentEffect{
		PartyID: &partyID,
		Type:    entity.DocTypePurchaseInvoice,
		Total:   money(80),
	}
	require.NoError(t, svc.ApplyDocument(context.Background(), firmID, eff, false))

	// purchase of 80 pays down the 30 and flips: firm now owes 50
	got := repo.balances[partyID]
	assert.True(t, got.Amount.Equal(money(50)))
	assert.Equal(t, entity.BalanceToPay, got.Type)
}

func TestApplyDocumentSettledIsNoop(t *testing.T) {
	repo := newFakeRepo()
	partyID := id.New()
	firmID := id.New()
	repo.balances[partyID] = Balance{Amount: money(42), Type: entity.BalanceToReceive}

	svc := NewService(repo)
	require.NoError(t, svc.ApplyDocument(context.Background(), firmID, saleEffect(partyID, 500, 500), false))

	got := repo.balances[partyID]
	assert.True(t, got.Amount.Equal(money(42)))
	assert.Equal(t, entity.BalanceToReceive, got.Type)
}

func TestApplyDocumentNoPartyIsNoop(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	eff := DocumentEffect{Type: entity.DocTypeSaleInvoice, Total: money(100)}
	require.NoError(t, svc.ApplyDocument(context.Background(), id.New(), eff, false))
	assert.Empty(t, repo.balances)
}

func TestApplyDocumentNonPartyTypeIsNoop(t *testing.T) {
	repo := newFakeRepo()
	partyID := id.New()
	firmID := id.New()
	repo.balances[partyID] = Balance{Amount: money(10), Type: entity.BalanceToPay}

	svc := NewService(repo)
	eff := DocumentEffect{PartyID: &partyID, Type: entity.DocTypeDeliveryChallan, Total: money(100)}
	require.NoError(t, svc.ApplyDocument(context.Background(), firmID, eff, false))

	got := repo.balances[partyID]
	assert.True(t, got.Amount.Equal(money(10)))
	assert.Equal(t, entity.BalanceToPay, got.Type)
}

func TestApplyPaymentInReducesReceivable(t *testing.T) {
	repo := newFakeRepo()
	partyID := id.New()
	firmID := id.New()
	repo.balances[partyID] = Balance{Amount: money(100), Type: entity.BalanceToReceive}

	svc := NewService(repo)
	require.NoError(t, svc.ApplyPayment(context.Background(), firmID, partyID, entity.PaymentIn, money(40)))

	got := repo.balances[partyID]
	assert.True(t, got.Amount.Equal(money(60)))
	assert.Equal(t, entity.BalanceToReceive, got.Type)
}

func TestApplyPaymentInOvershootFlips(t *testing.T) {
	repo := newFakeRepo()
	partyID := id.New()
	firmID := id.New()
	repo.balances[partyID] = Balance{Amount: money(100), Type: entity.BalanceToReceive}

	svc := NewService(repo)
	require.NoError(t, svc.ApplyPayment(context.Background(), firmID, partyID, entity.PaymentIn, money(130)))

	got := repo.balances[partyID]
	assert.True(t, got.Amount.Equal(money(30)))
	assert.Equal(t, entity.BalanceToPay, got.Type)
}

func TestApplyPaymentWrongSideAccumulates(t *testing.T) {
	repo := newFakeRepo()
	partyID := id.New()
	firmID := id.New()
	repo.balances[partyID] = Balance{Amount: money(100), Type: entity.BalanceToPay}

	svc := NewService(repo)
	// money in while the firm owes the party just grows the magnitude
	require.NoError(t, svc.ApplyPayment(context.Background(), firmID, partyID, entity.PaymentIn, money(25)))

	got := repo.balances[partyID]
	assert.True(t, got.Amount.Equal(money(125)))
	assert.Equal(t, entity.BalanceToPay, got.Type)
}

func TestRevertPaymentClampsToMagnitude(t *testing.T) {
	repo := newFakeRepo()
	partyID := id.New()
	firmID := id.New()
	repo.balances[partyID] = Balance{Amount: money(10), Type: entity.BalanceToPay}

	svc := NewService(repo)
	// reverting an inbound payment of 40 against a to_pay balance
	// subtracts and clamps: |10 - 40| = 30, type untouched
	require.NoError(t, svc.RevertPayment(context.Background(), firmID, partyID, entity.PaymentIn, money(40)))

	got := repo.balances[partyID]
	assert.True(t, got.Amount.Equal(money(30)))
	assert.Equal(t, entity.BalanceToPay, got.Type)
}

func TestRevertPaymentAddsBack(t *testing.T) {
	repo := newFakeRepo()
	partyID := id.New()
	firmID := id.New()
	repo.balances[partyID] = Balance{Amount: money(60), Type: entity.BalanceToReceive}

	svc := NewService(repo)
	require.NoError(t, svc.RevertPayment(context.Background(), firmID, partyID, entity.PaymentIn, money(40)))

	got := repo.balances[partyID]
	assert.True(t, got.Amount.Equal(money(100)))
	assert.Equal(t, entity.BalanceToReceive, got.Type)
}
