package documents

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
	"khata/internal/domain/registers/stock"
)

// --- fakes ---

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeDocRepo struct {
	docs map[id.ID]*Document
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: make(map[id.ID]*Document)}
}

func (f *fakeDocRepo) Create(ctx context.Context, doc *Document) error {
	copied := *doc
	f.docs[doc.ID] = &copied
	return nil
}

func (f *fakeDocRepo) GetByID(ctx context.Context, firmID, docID id.ID) (*Document, error) {
	doc, ok := f.docs[docID]
	if !ok || doc.FirmID != firmID {
		return nil, apperror.NewNotFound("document", docID.String())
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocRepo) Update(ctx context.Context, doc *Document) error {
	if _, ok := f.docs[doc.ID]; !ok {
		return apperror.NewNotFound("document", doc.ID.String())
	}
	copied := *doc
	f.docs[doc.ID] = &copied
	return nil
}

func (f *fakeDocRepo) ReplaceChildren(ctx context.Context, doc *Document) error {
	stored, ok := f.docs[doc.ID]
	if !ok {
		return apperror.NewNotFound("document", doc.ID.String())
	}
	stored.Items = append([]DocumentItem(nil), doc.Items...)
	stored.Charges = append([]DocumentCharge(nil), doc.Charges...)
	stored.Transportation = append([]TransportationEntry(nil), doc.Transportation...)
	return nil
}

func (f *fakeDocRepo) Delete(ctx context.Context, firmID, docID id.ID) error {
	delete(f.docs, docID)
	return nil
}

func (f *fakeDocRepo) List(ctx context.Context, firmID id.ID, filter ListFilter) ([]*Document, error) {
	var out []*Document
	for _, d := range f.docs {
		if d.FirmID == firmID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocRepo) ExistsByNumber(ctx context.Context, firmID id.ID, docType entity.DocumentType, number string, excludeID *id.ID) (bool, error) {
	for _, d := range f.docs {
		if d.FirmID == firmID && d.DocumentType == docType && d.DocumentNumber == number {
			if excludeID != nil && d.ID == *excludeID {
				continue
			}
			return true, nil
		}
	}
	return false, nil
}

type fakeStockRepo struct {
	items     map[id.ID]stock.ItemStock
	movements []entity.StockMovement
}

func (f *fakeStockRepo) GetItemStock(ctx context.Context, firmID, itemID id.ID) (stock.ItemStock, error) {
	s, ok := f.items[itemID]
	if !ok {
		return stock.ItemStock{}, apperror.NewNotFound("item", itemID.String())
	}
	return s, nil
}

func (f *fakeStockRepo) UpdateItemStock(ctx context.Context, firmID, itemID id.ID, primary, secondary types.Quantity, touchSecondary bool) error {
	s := f.items[itemID]
	s.PrimaryQuantity = primary
	if touchSecondary {
		s.SecondaryQuantity = secondary
	}
	f.items[itemID] = s
	return nil
}

func (f *fakeStockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	f.movements = append(f.movements, movements...)
	return nil
}

func (f *fakeStockRepo) DeleteMovementsByRecorder(ctx context.Context, firmID, recorderID id.ID) error {
	kept := f.movements[:0]
	for _, m := range f.movements {
		if m.RecorderID != recorderID {
			kept = append(kept, m)
		}
	}
	f.movements = kept
	return nil
}

func (f *fakeStockRepo) GetMovementsByRecorder(ctx context.Context, firmID, recorderID id.ID) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range f.movements {
		if m.RecorderID == recorderID {
			out = append(out, m)
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

type captureNotifier struct {
	tables []string
}

func (c *captureNotifier) NotifyChange(ctx context.Context, firmID id.ID, table string) {
	c.tables = append(c.tables, table)
}

// --- fixture ---

type fixture struct {
	svc      *Service
	docs     *fakeDocRepo
	stock    *fakeStockRepo
	parties  *fakePartyRepo
	banks    *fakeBankRepo
	flags    *feature.InMemoryFlags
	notifier *captureNotifier
	firmID   id.ID
}

func newFixture() *fixture {
	docs := newFakeDocRepo()
	stockRepo := &fakeStockRepo{items: make(map[id.ID]stock.ItemStock)}
	partyRepo := &fakePartyRepo{balances: make(map[id.ID]partybalance.Balance)}
	bankRepo := &fakeBankRepo{balances: make(map[id.ID]types.Money)}
	flags := feature.NewInMemoryFlags()
	notifier := &captureNotifier{}

	svc := NewService(
		docs,
		stock.NewService(stockRepo),
		partybalance.NewService(partyRepo),
		bankbalance.NewService(bankRepo),
		passthroughTx{},
		flags,
		notifier,
	)

	return &fixture{
		svc:      svc,
		docs:     docs,
		stock:    stockRepo,
		parties:  partyRepo,
		banks:    bankRepo,
		flags:    flags,
		notifier: notifier,
		firmID:   id.New(),
	}
}

func money(n int64) types.Money  { return types.NewMoney(float64(n)) }
func qty(n int64) types.Quantity { return types.NewQuantity(n) }

func (fx *fixture) saleInvoice(itemID, partyID id.ID, total, paid int64) *Document {
	return &Document{
		BaseEntity:      entity.BaseEntity{FirmID: fx.firmID},
		DocumentType:    entity.DocTypeSaleInvoice,
		DocumentDate:    time.Now(),
		PartyID:         &partyID,
		PartyName:       "Acme Traders",
		PartyType:       "customer",
		TransactionType: "credit",
		Total:           money(total),
		PaidAmount:      money(paid),
		Items: []DocumentItem{{
			ItemID:          itemID,
			ItemName:        "Widget",
			PrimaryQuantity: qty(10),
			PricePerUnit:    money(total / 10),
			Amount:          money(total),
		}},
	}
}

// --- tests ---

func TestCreateSaleInvoiceAppliesLedgers(t *testing.T) {
	fx := newFixture()
	itemID := id.New()
	partyID := id.New()
	fx.stock.items[itemID] = stock.ItemStock{ItemID: itemID, PrimaryQuantity: qty(50)}
	fx.parties.balances[partyID] = partybalance.Balance{Amount: money(0), Type: entity.BalanceToPay}

	created, err := fx.svc.Create(context.Background(), fx.saleInvoice(itemID, partyID, 1000, 400))
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEmpty(t, created.DocumentNumber)
	assert.True(t, created.BalanceAmount.Equal(money(600)))

	assert.True(t, fx.stock.items[itemID].PrimaryQuantity.Equal(qty(40)))
	got := fx.parties.balances[partyID]
	assert.True(t, got.Amount.Equal(money(600)))
	assert.Equal(t, entity.BalanceToReceive, got.Type)
	assert.Contains(t, fx.notifier.tables, "documents")
}

func TestCreateDuplicateNumberConflictNoLedgerEffect(t *testing.T) {
	fx := newFixture()
	itemID := id.New()
	partyID := id.New()
	fx.stock.items[itemID] = stock.ItemStock{ItemID: itemID, PrimaryQuantity: qty(50)}
	fx.parties.balances[partyID] = partybalance.Balance{Amount: money(0), Type: entity.BalanceToPay}

	first := fx.saleInvoice(itemID, partyID, 1000, 400)
	first.DocumentNumber = "INV-1"
	_, err := fx.svc.Create(context.Background(), first)
	require.NoError(t, err)

	stockAfterFirst := fx.stock.items[itemID].PrimaryQuantity
	balanceAfterFirst := fx.parties.balances[partyID]

	dup := fx.saleInvoice(itemID, partyID, 500, 0)
	dup.DocumentNumber = "INV-1"
	_, err = fx.svc.Create(context.Background(), dup)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)

	assert.True(t, fx.stock.items[itemID].PrimaryQuantity.Equal(stockAfterFirst))
	assert.True(t, fx.parties.balances[partyID].Amount.Equal(balanceAfterFirst.Amount))
}

func TestCreateValidationRejected(t *testing.T) {
	fx := newFixture()

	doc := &Document{
		BaseEntity:   entity.BaseEntity{FirmID: fx.firmID},
		DocumentType: entity.DocTypeSaleInvoice,
		DocumentDate: time.Now(),
		// missing party name and transaction type
	}
	_, err := fx.svc.Create(context.Background(), doc)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestDeleteRestoresLedgers(t *testing.T) {
	fx := newFixture()
	itemID := id.New()
	partyID := id.New()
	fx.stock.items[itemID] = stock.ItemStock{ItemID: itemID, PrimaryQuantity: qty(50)}
	fx.parties.balances[partyID] = partybalance.Balance{Amount: money(0), Type: entity.BalanceToPay}

	created, err := fx.svc.Create(context.Background(), fx.saleInvoice(itemID, partyID, 1000, 400))
	require.NoError(t, err)

	require.NoError(t, fx.svc.Delete(context.Background(), fx.firmID, created.ID))

	assert.True(t, fx.stock.items[itemID].PrimaryQuantity.Equal(qty(50)))
	// Reversal pays the 600 to_receive position down to exactly zero.
	// The side flag flips only on an overshoot, so it stays to_receive.
	got := fx.parties.balances[partyID]
	assert.True(t, got.Amount.Equal(money(0)), "balance: %s", got.Amount)
	assert.Equal(t, entity.BalanceToReceive, got.Type)

	_, err = fx.svc.GetByID(context.Background(), fx.firmID, created.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteMissingDocumentIsNotFound(t *testing.T) {
	fx := newFixture()
	err := fx.svc.Delete(context.Background(), fx.firmID, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateRevertsOldAndAppliesNew(t *testing.T) {
	fx := newFixture()
	itemID := id.New()
	partyID := id.New()
	fx.stock.items[itemID] = stock.ItemStock{ItemID: itemID, PrimaryQuantity: qty(50)}
	fx.parties.balances[partyID] = partybalance.Balance{Amount: money(0), Type: entity.BalanceToPay}

	created, err := fx.svc.Create(context.Background(), fx.saleInvoice(itemID, partyID, 1000, 400))
	require.NoError(t, err)
	require.True(t, fx.stock.items[itemID].PrimaryQuantity.Equal(qty(40)))

	// amend: quantity 10 -> 5, total 1000 -> 500, fully unpaid
	amended := fx.saleInvoice(itemID, partyID, 500, 0)
	amended.DocumentNumber = created.DocumentNumber
	amended.Items[0].PrimaryQuantity = qty(5)

	updated, err := fx.svc.Update(context.Background(), fx.firmID, created.ID, amended)
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)

	// stock: 40 back to 50, then down 5
	assert.True(t, fx.stock.items[itemID].PrimaryQuantity.Equal(qty(45)))
	// party: 600 reverted, 500 applied
	got := fx.parties.balances[partyID]
	assert.True(t, got.Amount.Equal(money(500)), "balance: %s", got.Amount)
	assert.Equal(t, entity.BalanceToReceive, got.Type)
}

func TestUpdateBankAppliedWithoutReversalByDefault(t *testing.T) {
	fx := newFixture()
	itemID := id.New()
	bankID := id.New()
	fx.stock.items[itemID] = stock.ItemStock{ItemID: itemID, PrimaryQuantity: qty(50)}
	fx.banks.balances[bankID] = money(1000)

	doc := fx.saleInvoice(itemID, id.New(), 1000, 400)
	doc.PartyID = nil
	doc.PaymentMethod = entity.PaymentMethodBank
	doc.BankAccountID = &bankID

	created, err := fx.svc.Create(context.Background(), doc)
	require.NoError(t, err)
	require.True(t, fx.banks.balances[bankID].Equal(money(1400)))

	amended := fx.saleInvoice(itemID, id.New(), 1000, 300)
	amended.PartyID = nil
	amended.PaymentMethod = entity.PaymentMethodBank
	amended.BankAccountID = &bankID
	amended.DocumentNumber = created.DocumentNumber

	_, err = fx.svc.Update(context.Background(), fx.firmID, created.ID, amended)
	require.NoError(t, err)

	// historical mode: the old +400 is never reverted, the new +300 stacks
	assert.True(t, fx.banks.balances[bankID].Equal(money(1700)), "balance: %s", fx.banks.balances[bankID])
}

func TestUpdateBankReversalCorrectedMode(t *testing.T) {
	fx := newFixture()
	itemID := id.New()
	bankID := id.New()
	fx.stock.items[itemID] = stock.ItemStock{ItemID: itemID, PrimaryQuantity: qty(50)}
	fx.banks.balances[bankID] = money(1000)
	fx.flags.SetFlag(feature.FlagDocumentBankReversal, true)

	doc := fx.saleInvoice(itemID, id.New(), 1000, 400)
	doc.PartyID = nil
	doc.PaymentMethod = entity.PaymentMethodBank
	doc.BankAccountID = &bankID

	created, err := fx.svc.Create(context.Background(), doc)
	require.NoError(t, err)

	amended := fx.saleInvoice(itemID, id.New(), 1000, 300)
	amended.PartyID = nil
	amended.PaymentMethod = entity.PaymentMethodBank
	amended.BankAccountID = &bankID
	amended.DocumentNumber = created.DocumentNumber

	_, err = fx.svc.Update(context.Background(), fx.firmID, created.ID, amended)
	require.NoError(t, err)

	// corrected mode: -400 then +300
	assert.True(t, fx.banks.balances[bankID].Equal(money(1300)), "balance: %s", fx.banks.balances[bankID])
}

func TestUpdateDuplicateNumberRejected(t *testing.T) {
	fx := newFixture()
	itemID := id.New()
	fx.stock.items[itemID] = stock.ItemStock{ItemID: itemID, PrimaryQuantity: qty(100)}

	first := fx.saleInvoice(itemID, id.New(), 100, 0)
	first.PartyID = nil
	first.DocumentNumber = "INV-1"
	_, err := fx.svc.Create(context.Background(), first)
	require.NoError(t, err)

	second := fx.saleInvoice(itemID, id.New(), 200, 0)
	second.PartyID = nil
	second.DocumentNumber = "INV-2"
	created2, err := fx.svc.Create(context.Background(), second)
	require.NoError(t, err)

	amended := fx.saleInvoice(itemID, id.New(), 200, 0)
	amended.PartyID = nil
	amended.DocumentNumber = "INV-1"
	_, err = fx.svc.Update(context.Background(), fx.firmID, created2.ID, amended)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}
