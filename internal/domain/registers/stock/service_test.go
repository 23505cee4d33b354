package stock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khata/internal/core/apperror"
	"khata/internal/core/entity"
	"khata/internal/core/id"
	"khata/internal/core/types"
)

type fakeRepo struct {
	items     map[id.ID]ItemStock
	movements []entity.StockMovement
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[id.ID]ItemStock)}
}

func (f *fakeRepo) GetItemStock(ctx context.Context, firmID, itemID id.ID) (ItemStock, error) {
	s, ok := f.items[itemID]
	if !ok {
		return ItemStock{}, apperror.NewNotFound("item", itemID.String())
	}
	return s, nil
}

func (f *fakeRepo) UpdateItemStock(ctx context.Context, firmID, itemID id.ID, primary, secondary types.Quantity, touchSecondary bool) error {
	s := f.items[itemID]
	s.PrimaryQuantity = primary
	if touchSecondary {
		s.SecondaryQuantity = secondary
	}
	f.items[itemID] = s
	return nil
}

func (f *fakeRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	f.movements = append(f.movements, movements...)
	return nil
}

func (f *fakeRepo) DeleteMovementsByRecorder(ctx context.Context, firmID, recorderID id.ID) error {
	kept := f.movements[:0]
	for _, m := range f.movements {
		if m.RecorderID != recorderID {
			kept = append(kept, m)
		}
	}
	f.movements = kept
	return nil
}

func (f *fakeRepo) GetMovementsByRecorder(ctx context.Context, firmID, recorderID id.ID) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range f.movements {
		if m.RecorderID == recorderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func qty(n int64) types.Quantity { return types.NewQuantity(n) }

func TestApplyPrimaryOnlySale(t *testing.T) {
	repo := newFakeRepo()
	itemID := id.New()
	firmID := id.New()
	repo.items[itemID] = ItemStock{ItemID: itemID, PrimaryQuantity: qty(50)}

	svc := NewService(repo)
	lines := []Line{{ItemID: itemID, PrimaryQuantity: qty(10)}}

	err := svc.Apply(context.Background(), firmID, id.New(), entity.DocTypeSaleInvoice, time.Now(), lines, false)
	require.NoError(t, err)

	assert.True(t, repo.items[itemID].PrimaryQuantity.Equal(qty(40)))
}

func TestApplyRoundTripPrimaryOnly(t *testing.T) {
	repo := newFakeRepo()
	itemID := id.New()
	firmID := id.New()
	recorderID := id.New()
	repo.items[itemID] = ItemStock{ItemID: itemID, PrimaryQuantity: qty(50)}

	svc := NewService(repo)
	lines := []Line{{ItemID: itemID, PrimaryQuantity: qty(10)}}

	require.NoError(t, svc.Apply(context.Background(), firmID, recorderID, entity.DocTypeSale, time.Now(), lines, false))
	require.NoError(t, svc.Apply(context.Background(), firmID, recorderID, entity.DocTypeSale, time.Now(), lines, true))

	assert.True(t, repo.items[itemID].PrimaryQuantity.Equal(qty(50)))
	assert.Empty(t, repo.movements, "reverse pass must delete recorded movements")
}

func TestApplyCompositeInvariant(t *testing.T) {
	repo := newFakeRepo()
	itemID := id.New()
	firmID := id.New()
	secondaryUnit := id.New()
	conversion := id.New()
	// 5 boxes of 10 plus 3 loose = composite 53
	repo.items[itemID] = ItemStock{ItemID: itemID, PrimaryQuantity: qty(5), SecondaryQuantity: qty(3)}

	svc := NewService(repo)
	lines := []Line{{
		ItemID:            itemID,
		PrimaryQuantity:   qty(1),
		SecondaryQuantity: qty(5),
		SecondaryUnitID:   &secondaryUnit,
		UnitConversionID:  &conversion,
		ConversionRate:    qty(10),
	}}

	// purchase_invoice increases stock: 53 + 15 = 68 => 6 boxes, 8 loose
	require.NoError(t, svc.Apply(context.Background(), firmID, id.New(), entity.DocTypePurchaseInvoice, time.Now(), lines, false))
	got := repo.items[itemID]
	assert.True(t, got.PrimaryQuantity.Equal(qty(6)), "primary: %s", got.PrimaryQuantity)
	assert.True(t, got.SecondaryQuantity.Equal(qty(8)), "secondary: %s", got.SecondaryQuantity)

	// reverse restores the composite total exactly
	require.NoError(t, svc.Apply(context.Background(), firmID, id.New(), entity.DocTypePurchaseInvoice, time.Now(), lines, true))
	got = repo.items[itemID]
	assert.True(t, got.PrimaryQuantity.Equal(qty(5)))
	assert.True(t, got.SecondaryQuantity.Equal(qty(3)))
}

func TestApplyCompositeBoundaryCrossing(t *testing.T) {
	repo := newFakeRepo()
	itemID := id.New()
	firmID := id.New()
	secondaryUnit := id.New()
	conversion := id.New()
	// 2 boxes of 10, 1 loose = 21; selling 5 loose crosses the box boundary
	repo.items[itemID] = ItemStock{ItemID: itemID, PrimaryQuantity: qty(2), SecondaryQuantity: qty(1)}

	svc := NewService(repo)
	lines := []Line{{
		ItemID:            itemID,
		SecondaryQuantity: qty(5),
		SecondaryUnitID:   &secondaryUnit,
		UnitConversionID:  &conversion,
		ConversionRate:    qty(10),
	}}

	require.NoError(t, svc.Apply(context.Background(), firmID, id.New(), entity.DocTypeSale, time.Now(), lines, false))
	got := repo.items[itemID]
	// 21 - 5 = 16 => 1 box, 6 loose
	assert.True(t, got.PrimaryQuantity.Equal(qty(1)))
	assert.True(t, got.SecondaryQuantity.Equal(qty(6)))
}

func TestApplyNonStockTypeIsNoop(t *testing.T) {
	repo := newFakeRepo()
	itemID := id.New()
	firmID := id.New()
	repo.items[itemID] = ItemStock{ItemID: itemID, PrimaryQuantity: qty(50)}

	svc := NewService(repo)
	lines := []Line{{ItemID: itemID, PrimaryQuantity: qty(10)}}

	require.NoError(t, svc.Apply(context.Background(), firmID, id.New(), entity.DocTypeSaleQuotation, time.Now(), lines, false))
	assert.True(t, repo.items[itemID].PrimaryQuantity.Equal(qty(50)))
	assert.Empty(t, repo.movements)
}

func TestApplyMissingItemSkipped(t *testing.T) {
	repo := newFakeRepo()
	present := id.New()
	firmID := id.New()
	repo.items[present] = ItemStock{ItemID: present, PrimaryQuantity: qty(20)}

	svc := NewService(repo)
	lines := []Line{
		{ItemID: id.New(), PrimaryQuantity: qty(5)}, // not in inventory
		{ItemID: present, PrimaryQuantity: qty(5)},
	}

	require.NoError(t, svc.Apply(context.Background(), firmID, id.New(), entity.DocTypeSale, time.Now(), lines, false))
	assert.True(t, repo.items[present].PrimaryQuantity.Equal(qty(15)), "remaining lines must still apply")
}

func TestApplyNegativeStockAllowed(t *testing.T) {
	repo := newFakeRepo()
	itemID := id.New()
	firmID := id.New()
	repo.items[itemID] = ItemStock{ItemID: itemID, PrimaryQuantity: qty(3)}

	svc := NewService(repo)
	lines := []Line{{ItemID: itemID, PrimaryQuantity: qty(10)}}

	require.NoError(t, svc.Apply(context.Background(), firmID, id.New(), entity.DocTypeDeliveryChallan, time.Now(), lines, false))
	assert.True(t, repo.items[itemID].PrimaryQuantity.Equal(qty(-7)))
}

func TestApplyRecordsMovements(t *testing.T) {
	repo := newFakeRepo()
	itemID := id.New()
	firmID := id.New()
	recorderID := id.New()
	repo.items[itemID] = ItemStock{ItemID: itemID, PrimaryQuantity: qty(50)}

	svc := NewService(repo)
	lines := []Line{{ItemID: itemID, PrimaryQuantity: qty(10)}}

	require.NoError(t, svc.Apply(context.Background(), firmID, recorderID, entity.DocTypeSaleInvoice, time.Now(), lines, false))

	movements, err := svc.Movements(context.Background(), firmID, recorderID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, entity.RecordTypeExpense, movements[0].RecordType)
	assert.Equal(t, string(entity.DocTypeSaleInvoice), movements[0].RecorderType)
	assert.True(t, movements[0].Quantity.Equal(qty(10)))
}
