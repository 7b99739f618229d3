// Package overrides corrects externally-assigned categories with user edits.
//
// Two kinds of override exist: permanent ones keyed by description, applied
// to every transaction sharing that description, and one-off ones keyed by
// transaction ID, applied to exactly one transaction. One-off overrides win
// when both could apply.
package overrides

import (
	"context"
	"fmt"

	"github.com/pkearns/pay-the-piper/internal/model"
	"github.com/pkearns/pay-the-piper/internal/service"
)

// Resolver applies override maps on top of base categories. The maps are
// loaded once at session start; durability is the storage layer's problem.
type Resolver struct {
	permanent map[string]string // description -> category
	oneOff    map[string]string // transaction ID -> category
}

// NewResolver creates a resolver over explicit override maps.
func NewResolver(permanent, oneOff map[string]string) *Resolver {
	if permanent == nil {
		permanent = make(map[string]string)
	}
	if oneOff == nil {
		oneOff = make(map[string]string)
	}
	return &Resolver{permanent: permanent, oneOff: oneOff}
}

// Load reads both override stores from storage and returns a resolver over
// them.
func Load(ctx context.Context, store service.Storage) (*Resolver, error) {
	permanent, err := store.GetPermanentOverrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load permanent overrides: %w", err)
	}

	oneOff, err := store.GetOneOffOverrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load one-off overrides: %w", err)
	}

	return NewResolver(permanent, oneOff), nil
}

// Resolve returns the effective category for a transaction: the one-off
// override by ID, else the permanent override by description, else the base
// category already on the transaction. The second return is false when none
// of the three exist; such transactions are uncategorized and must be
// surfaced, not defaulted.
func (r *Resolver) Resolve(txn model.Transaction) (string, bool) {
	if cat, ok := r.oneOff[txn.ID]; ok {
		return cat, true
	}
	if cat, ok := r.permanent[txn.Description]; ok {
		return cat, true
	}
	if txn.Category != "" {
		return txn.Category, true
	}
	return "", false
}

// Apply resolves every transaction's category in place on a copy of the
// slice. Uncategorized transactions are returned separately for the error
// report.
func (r *Resolver) Apply(transactions []model.Transaction) ([]model.Transaction, []model.Transaction) {
	out := make([]model.Transaction, len(transactions))
	var uncategorized []model.Transaction

	for i, txn := range transactions {
		if cat, ok := r.Resolve(txn); ok {
			txn.Category = cat
		} else {
			uncategorized = append(uncategorized, txn)
		}
		out[i] = txn
	}

	return out, uncategorized
}
