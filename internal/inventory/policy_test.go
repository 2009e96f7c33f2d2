package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-commerce/meridian/internal/catalog/products"
)

func TestPolicyDisableBuyButton(t *testing.T) {
	state := ApplyLowStockPolicy(PolicyInput{
		Total:            5,
		MinStockQuantity: 10,
		Action:           products.LowStockActionDisableBuyButton,
		AllowRepublish:   true,
		Current:          StockState{Published: true},
	})
	require.True(t, state.BuyButtonDisabled)
	require.True(t, state.Published)
}

func TestPolicyDisableAtExactThreshold(t *testing.T) {
	state := ApplyLowStockPolicy(PolicyInput{
		Total:            10,
		MinStockQuantity: 10,
		Action:           products.LowStockActionDisableBuyButton,
		Current:          StockState{Published: true},
	})
	require.True(t, state.BuyButtonDisabled)
}

func TestPolicyRecoveryReenablesBuyButton(t *testing.T) {
	state := ApplyLowStockPolicy(PolicyInput{
		Total:            12,
		MinStockQuantity: 10,
		Action:           products.LowStockActionDisableBuyButton,
		AllowRepublish:   true,
		Current:          StockState{Published: true, BuyButtonDisabled: true},
	})
	require.False(t, state.BuyButtonDisabled)
}

func TestPolicyRecoveryGatedByAllowRepublish(t *testing.T) {
	state := ApplyLowStockPolicy(PolicyInput{
		Total:            12,
		MinStockQuantity: 10,
		Action:           products.LowStockActionUnpublish,
		AllowRepublish:   false,
		Current:          StockState{Published: false},
	})
	require.False(t, state.Published)
}

func TestPolicyUnpublishLeavesBuyButtonAlone(t *testing.T) {
	state := ApplyLowStockPolicy(PolicyInput{
		Total:            5,
		MinStockQuantity: 10,
		Action:           products.LowStockActionUnpublish,
		Current:          StockState{Published: true},
	})
	require.False(t, state.Published)
	require.False(t, state.BuyButtonDisabled)
}

func TestPolicyNothingIsInert(t *testing.T) {
	current := StockState{Published: true, BuyButtonDisabled: true}
	state := ApplyLowStockPolicy(PolicyInput{
		Total:            0,
		MinStockQuantity: 10,
		Action:           products.LowStockActionNothing,
		AllowRepublish:   true,
		Current:          current,
	})
	require.Equal(t, current, state)
}

func TestPolicyUnknownActionIsInert(t *testing.T) {
	current := StockState{Published: true}
	state := ApplyLowStockPolicy(PolicyInput{
		Total:            0,
		MinStockQuantity: 10,
		Action:           products.LowStockAction("SOMETHING_ELSE"),
		Current:          current,
	})
	require.Equal(t, current, state)
}
