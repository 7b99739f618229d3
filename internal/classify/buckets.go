package classify

import (
	"fmt"
	"sort"

	"github.com/pkearns/pay-the-piper/internal/model"
)

// bucketTable maps every spending category to exactly one needs/wants/savings
// bucket. Categories absent from this table are excluded from the 50/30/20
// split and surfaced as data-quality warnings.
var bucketTable = map[string]model.Bucket{
	"Rent/Mortgage":          model.BucketNeeds,
	"Transportation":         model.BucketNeeds,
	"Gas":                    model.BucketNeeds,
	"Car Payment":            model.BucketNeeds,
	"Insurance":              model.BucketNeeds,
	"Groceries":              model.BucketNeeds,
	"Bills/Utilities":        model.BucketNeeds,
	"Education/Project":      model.BucketNeeds,
	"Debt Payments":          model.BucketSavings,
	"Savings":                model.BucketSavings,
	"Dining Out":             model.BucketWants,
	"Shopping":               model.BucketWants,
	"Entertainment":          model.BucketWants,
	"Subscriptions":          model.BucketWants,
	"Personal Care/Grooming": model.BucketWants,
	"Miscellaneous":          model.BucketWants,
}

// BucketFor returns the bucket for a category, or false when the category has
// no bucket assignment.
func BucketFor(category string) (model.Bucket, bool) {
	b, ok := bucketTable[category]
	return b, ok
}

// VerifyBucketTable checks that every category in the fixed category set has
// a bucket. Run at startup so an unmapped category fails loudly instead of
// producing null buckets in reports.
func VerifyBucketTable() error {
	var missing []string
	for _, cat := range model.Categories {
		if _, ok := bucketTable[cat]; !ok {
			missing = append(missing, cat)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("categories without a needs/wants/savings bucket: %v", missing)
	}
	return nil
}
