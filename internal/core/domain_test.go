package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillID_Deterministic(t *testing.T) {
	a := NewBill("billing@on.is", "05.01.2024", decimal.NewNullDecimal(decimal.NewFromInt(100)), false)
	b := NewBill("billing@on.is", "05.01.2024", decimal.NewNullDecimal(decimal.NewFromInt(100)), false)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, BillID("billing@on.is", "05.01.2024"), a.ID)
	assert.Len(t, a.ID, 64)
}

func TestBillID_IgnoresAmountAndRecurring(t *testing.T) {
	a := NewBill("billing@on.is", "05.01.2024", decimal.NewNullDecimal(decimal.NewFromInt(100)), false)
	b := NewBill("billing@on.is", "05.01.2024", decimal.NewNullDecimal(decimal.NewFromInt(250)), true)
	c := NewBill("billing@on.is", "05.01.2024", decimal.NullDecimal{}, false)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, a.ID, c.ID)
}

func TestBillID_FieldOrderMatters(t *testing.T) {
	assert.NotEqual(t, BillID("a", "b"), BillID("b", "a"))
	assert.NotEqual(t, BillID("x", "05.01.2024"), BillID("x", "06.01.2024"))
}

func TestTransactionHash(t *testing.T) {
	cat := "Matvara"
	a := NewTransaction("2024-01-05", "Bonus", decimal.RequireFromString("-1234.50"), decimal.NewNullDecimal(decimal.NewFromInt(5000)), &cat)
	b := NewTransaction("2024-01-05", "Bonus", decimal.RequireFromString("-1234.5"), decimal.NullDecimal{}, nil)
	assert.Equal(t, a.Hash, b.Hash, "balance and category are not part of identity")

	c := NewTransaction("2024-01-05", "Bonus", decimal.RequireFromString("-1234.51"), decimal.NullDecimal{}, nil)
	assert.NotEqual(t, a.Hash, c.Hash)
}

func TestBillValidate(t *testing.T) {
	good := NewBill("Vodafone", "01.02.2024", decimal.NewNullDecimal(decimal.NewFromInt(4990)), true)
	require.NoError(t, good.Validate())

	bads := []Bill{
		NewBill("", "01.02.2024", decimal.NewNullDecimal(decimal.NewFromInt(1)), false),
		NewBill("x", "2024-02-01", decimal.NewNullDecimal(decimal.NewFromInt(1)), false),
		NewBill("x", "01.02.2024", decimal.NullDecimal{}, false),
		NewBill("x", "01.02.2024", decimal.NewNullDecimal(decimal.NewFromInt(-1)), false),
	}
	for i, b := range bads {
		assert.Error(t, b.Validate(), "case %d", i)
	}
}

func TestWithRecurringKeepsIdentity(t *testing.T) {
	b := NewBill("x", "01.02.2024", decimal.NullDecimal{}, false)
	r := b.WithRecurring(true)
	assert.True(t, r.Recurring)
	assert.Equal(t, b.ID, r.ID)
}

func TestTransactionCategoryOr(t *testing.T) {
	empty := ""
	cat := "Laun"
	assert.Equal(t, "none", Transaction{}.CategoryOr("none"))
	assert.Equal(t, "none", Transaction{Category: &empty}.CategoryOr("none"))
	assert.Equal(t, "Laun", Transaction{Category: &cat}.CategoryOr("none"))
}
