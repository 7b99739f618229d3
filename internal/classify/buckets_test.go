package classify

import (
	"testing"

	"github.com/pkearns/pay-the-piper/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestBucketFor(t *testing.T) {
	tests := []struct {
		category string
		want     model.Bucket
	}{
		{category: "Rent/Mortgage", want: model.BucketNeeds},
		{category: "Groceries", want: model.BucketNeeds},
		{category: "Dining Out", want: model.BucketWants},
		{category: "Subscriptions", want: model.BucketWants},
		{category: "Debt Payments", want: model.BucketSavings},
		{category: "Savings", want: model.BucketSavings},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			got, ok := BucketFor(tt.category)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBucketForUnknownCategory(t *testing.T) {
	_, ok := BucketFor("Alpaca Grooming")
	assert.False(t, ok)
}

func TestVerifyBucketTable(t *testing.T) {
	// Every category in the fixed set must have a bucket.
	assert.NoError(t, VerifyBucketTable())
}
