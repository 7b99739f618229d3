package classify

import (
	"testing"

	"github.com/pkearns/pay-the-piper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeForAmount(t *testing.T) {
	tests := []struct {
		name   string
		want   model.TransactionType
		amount float64
	}{
		{name: "positive is income", amount: 1250.00, want: model.TypeIncome},
		{name: "zero is income", amount: 0, want: model.TypeIncome},
		{name: "negative is expense", amount: -45.99, want: model.TypeExpense},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeForAmount(tt.amount))
		})
	}
}

func TestRulesApplySavingsFlip(t *testing.T) {
	rules := NewRules("6031")

	txns := []model.Transaction{
		{ID: "1", Description: "Online Transfer to SAV ...6031", Amount: -500.00},
		{ID: "2", Description: "GROCERY STORE", Amount: -45.00},
		{ID: "3", Description: "PAYROLL DEPOSIT", Amount: 2000.00},
	}

	got := rules.Apply(txns)
	require.Len(t, got, 3)

	assert.Equal(t, model.TypeSavings, got[0].Type)
	assert.Equal(t, 500.00, got[0].Amount, "savings transfer sign is flipped")
	assert.Equal(t, model.TypeExpense, got[1].Type)
	assert.Equal(t, -45.00, got[1].Amount)
	assert.Equal(t, model.TypeIncome, got[2].Type)

	// Input slice is not mutated.
	assert.Equal(t, -500.00, txns[0].Amount)
	assert.Empty(t, txns[0].Type)
}

func TestRulesDefaultToken(t *testing.T) {
	rules := NewRules("")
	assert.Equal(t, DefaultSavingsToken, rules.SavingsToken)
}
