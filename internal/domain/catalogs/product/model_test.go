package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurotex/internal/core/types"
)

func TestProduct_Validate(t *testing.T) {
	ctx := context.Background()

	p := New("Polo Shirt")
	p.BasePrice = types.MustMoney("450")
	p.Sizes = []SizeConfig{
		{Size: "S", Ratio: 1, ThreadPerPieceKg: types.NewQuantityFromFloat64(0.12)},
		{Size: "M", Ratio: 2, ThreadPerPieceKg: types.NewQuantityFromFloat64(0.14)},
	}
	require.NoError(t, p.Validate(ctx))

	p.Sizes = append(p.Sizes, SizeConfig{Size: "M", Ratio: 1})
	require.Error(t, p.Validate(ctx), "duplicate size must be rejected")

	p.Sizes = []SizeConfig{{Size: "", Ratio: 1}}
	require.Error(t, p.Validate(ctx))

	p.Sizes = nil
	p.BasePrice = types.MustMoney("-1")
	require.Error(t, p.Validate(ctx))
}

func TestProduct_ThreadForQuantity(t *testing.T) {
	p := New("Polo Shirt")
	p.Sizes = []SizeConfig{
		{Size: "M", Ratio: 2, ThreadPerPieceKg: types.NewQuantityFromFloat64(0.14)},
	}

	assert.Equal(t, types.NewQuantityFromFloat64(7), p.ThreadForQuantity("M", 50))
	assert.Equal(t, types.Quantity(0), p.ThreadForQuantity("XXL", 50))
}
