package model

// Bucket is one leg of the 50/30/20 needs/wants/savings budget view.
type Bucket string

const (
	// BucketNeeds covers essential spending.
	BucketNeeds Bucket = "Needs"
	// BucketWants covers discretionary spending.
	BucketWants Bucket = "Wants"
	// BucketSavings covers savings and debt paydown.
	BucketSavings Bucket = "Savings"
)

// Categories is the fixed set the external categorizer may choose from.
// Every entry must appear in the bucket table in the classify package.
var Categories = []string{
	"Rent/Mortgage",
	"Transportation",
	"Groceries",
	"Dining Out",
	"Bills/Utilities",
	"Car Payment",
	"Gas",
	"Insurance",
	"Debt Payments",
	"Savings",
	"Shopping",
	"Entertainment",
	"Subscriptions",
	"Personal Care/Grooming",
	"Education/Project",
	"Miscellaneous",
}

// ValidCategory reports whether name is one of the fixed categories.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}
