package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khata/internal/core/id"
	"khata/internal/core/types"
)

func TestCompositeTotal(t *testing.T) {
	// 3 boxes of 10 bottles plus 4 loose bottles = 34 bottles
	total := CompositeTotal(types.NewQuantity(3), types.NewQuantity(4), types.NewQuantity(10))
	assert.True(t, total.Equal(types.NewQuantity(34)))
}

func TestSplitComposite(t *testing.T) {
	primary, secondary, err := SplitComposite(types.NewQuantity(34), types.NewQuantity(10))
	require.NoError(t, err)
	assert.True(t, primary.Equal(types.NewQuantity(3)))
	assert.True(t, secondary.Equal(types.NewQuantity(4)))
}

func TestSplitCompositeExactMultiple(t *testing.T) {
	primary, secondary, err := SplitComposite(types.NewQuantity(30), types.NewQuantity(10))
	require.NoError(t, err)
	assert.True(t, primary.Equal(types.NewQuantity(3)))
	assert.True(t, secondary.IsZero())
}

func TestSplitCompositeInvalidRate(t *testing.T) {
	_, _, err := SplitComposite(types.NewQuantity(10), types.NewQuantity(0))
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, _, err = SplitComposite(types.NewQuantity(10), types.NewQuantity(-5))
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestSplitRoundTrip(t *testing.T) {
	rate := types.NewQuantity(12)
	for _, n := range []int64{0, 1, 11, 12, 13, 143, 144, 1000} {
		total := types.NewQuantity(n)
		primary, secondary, err := SplitComposite(total, rate)
		require.NoError(t, err)
		back := CompositeTotal(primary, secondary, rate)
		assert.True(t, back.Equal(total), "round trip for %d", n)
	}
}

func TestSplitCompositeNegativeTotal(t *testing.T) {
	// Negative totals keep the floor/mod pairing: the floored primary
	// and the dividend-signed remainder pull in the same direction, so
	// the pair does not recombine to the input. -5 over rate 2 splits
	// into (-3, -1), which recombines to -7.
	primary, secondary, err := SplitComposite(types.NewQuantity(-5), types.NewQuantity(2))
	require.NoError(t, err)
	assert.True(t, primary.Equal(types.NewQuantity(-3)), "primary: %s", primary)
	assert.True(t, secondary.Equal(types.NewQuantity(-1)), "secondary: %s", secondary)

	back := CompositeTotal(primary, secondary, types.NewQuantity(2))
	assert.True(t, back.Equal(types.NewQuantity(-7)), "recombined: %s", back)
}

func TestHasSecondaryUnit(t *testing.T) {
	su := id.New()
	conv := id.New()
	nilID := id.Nil()

	assert.True(t, HasSecondaryUnit(&su, &conv, types.NewQuantity(10)))
	assert.False(t, HasSecondaryUnit(nil, &conv, types.NewQuantity(10)))
	assert.False(t, HasSecondaryUnit(&su, nil, types.NewQuantity(10)))
	assert.False(t, HasSecondaryUnit(&su, &conv, types.NewQuantity(0)))
	assert.False(t, HasSecondaryUnit(&nilID, &conv, types.NewQuantity(10)))
}
