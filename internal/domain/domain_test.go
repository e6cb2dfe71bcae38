package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStockPolicy(t *testing.T) {
	p, err := ParseStockPolicy("")
	require.NoError(t, err)
	assert.Equal(t, StockAllowNegative, p)

	p, err = ParseStockPolicy(" Clamp ")
	require.NoError(t, err)
	assert.Equal(t, StockClamp, p)

	_, err = ParseStockPolicy("floor")
	assert.Error(t, err)
}

func TestStockPolicy_ApplyDecrement(t *testing.T) {
	tests := []struct {
		name   string
		policy StockPolicy
		stock  int
		qty    int
		want   int
	}{
		{"within stock", StockAllowNegative, 10, 3, 7},
		{"oversell allowed", StockAllowNegative, 2, 5, -3},
		{"clamped at zero", StockClamp, 2, 5, 0},
		{"clamp leaves positive untouched", StockClamp, 10, 3, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.ApplyDecrement(tt.stock, tt.qty))
		})
	}
}

func TestNextOrderGroupID(t *testing.T) {
	assert.Equal(t, int64(1), NextOrderGroupID(0, 0))
	assert.Equal(t, int64(6), NextOrderGroupID(0, 5))
	assert.Equal(t, int64(8), NextOrderGroupID(7, 5))
}

func TestValidationError_MessageIsStable(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"customer.email": "must be a valid email",
		"cart":           "is required",
	}}
	assert.Equal(t, "validation failed: cart: is required; customer.email: must be a valid email", err.Error())
}

func TestStorageError_WrapsOnce(t *testing.T) {
	cause := errors.New("connection refused")

	err := NewStorageError("list products", cause)
	assert.ErrorIs(t, err, cause)

	again := NewStorageError("outer", err)
	var se *StorageError
	require.ErrorAs(t, again, &se)
	assert.Equal(t, "list products", se.Op)

	assert.NoError(t, NewStorageError("noop", nil))
}

func TestOrderResult_ExportRecords(t *testing.T) {
	res := &OrderResult{Lines: []AcceptedLine{
		{ProductID: 1, Name: "bulbasaur", Quantity: 2, Subtotal: decimal.NewFromInt(20)},
		{ProductID: 4, Name: "charmander", Quantity: 1, Subtotal: decimal.NewFromInt(10)},
	}}

	assert.Equal(t, []ExportRecord{
		{ID: 1, Name: "bulbasaur", Quantity: 2},
		{ID: 4, Name: "charmander", Quantity: 1},
	}, res.ExportRecords())
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(&NotFoundError{Entity: "product", Key: "mew"}))
	assert.False(t, IsNotFound(errors.New("boom")))
}
