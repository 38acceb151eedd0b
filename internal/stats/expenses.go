// Package stats implements the monthly aggregation math: per-payer expense
// sums, shop and category groupings, cumulative daily series and duplicate
// receipt detection. All functions are pure and operate on receipts already
// loaded from storage.
package stats

import (
	"sort"

	"paragony/internal/core"
)

// PayerSum is the aggregated expense total attributed to one payer.
type PayerSum struct {
	PayerID     int64
	SumCents    int64
	ReceiptIDs  []int64
	TopOutliers []int64
}

// topOutlierCount is how many highest-value receipts are reported per payer.
const topOutlierCount = 3

// ExpensesByPayer computes the shared and not-own expense sums over the
// given receipts, optionally restricted to a category set.
//
// An item counts as shared when it has more than one owner and the receipt's
// payer is among them; its full value is attributed to the payer, without
// division by owner count. An item counts as not-own when the payer is not
// among its owners: the payer covered it for somebody else.
//
// Both result slices are sorted by sum descending; payers with equal sums
// keep their first-seen order.
func ExpensesByPayer(receipts []core.Receipt, categories []string) (shared, notOwn []PayerSum) {
	filter := newCategoryFilter(categories)
	sharedAcc := newPayerAccumulator()
	notOwnAcc := newPayerAccumulator()

	for _, r := range receipts {
		for _, it := range r.Items {
			if !filter.match(it.Category) {
				continue
			}
			payerOwns := containsID(it.OwnerIDs, r.PayerID)
			if len(it.OwnerIDs) > 1 && payerOwns {
				sharedAcc.add(r.PayerID, r.ID, it.ValueCents)
			}
			if !payerOwns {
				notOwnAcc.add(r.PayerID, r.ID, it.ValueCents)
			}
		}
	}

	totals := receiptTotals(receipts)
	shared = sharedAcc.sorted(totals)
	notOwn = notOwnAcc.sorted(totals)
	return shared, notOwn
}

// TopOutlierReceipts returns the ids of the top receipts by total item
// value, highest first. Ties keep their relative input order.
func TopOutlierReceipts(ids []int64, totals map[int64]int64) []int64 {
	ranked := make([]int64, len(ids))
	copy(ranked, ids)
	sort.SliceStable(ranked, func(i, j int) bool {
		return totals[ranked[i]] > totals[ranked[j]]
	})
	if len(ranked) > topOutlierCount {
		ranked = ranked[:topOutlierCount]
	}
	return ranked
}

// receiptTotals sums each receipt's item values, unfiltered: outlier ranking
// considers the whole receipt even when a category filter is active.
func receiptTotals(receipts []core.Receipt) map[int64]int64 {
	totals := make(map[int64]int64, len(receipts))
	for _, r := range receipts {
		var sum int64
		for _, it := range r.Items {
			sum += it.ValueCents
		}
		totals[r.ID] = sum
	}
	return totals
}

type payerAccumulator struct {
	order []int64
	sums  map[int64]*PayerSum
	seen  map[int64]map[int64]struct{} // payer -> receipt id set
}

func newPayerAccumulator() *payerAccumulator {
	return &payerAccumulator{
		sums: make(map[int64]*PayerSum),
		seen: make(map[int64]map[int64]struct{}),
	}
}

func (a *payerAccumulator) add(payerID, receiptID, cents int64) {
	ps, ok := a.sums[payerID]
	if !ok {
		ps = &PayerSum{PayerID: payerID}
		a.sums[payerID] = ps
		a.seen[payerID] = make(map[int64]struct{})
		a.order = append(a.order, payerID)
	}
	ps.SumCents += cents
	if _, dup := a.seen[payerID][receiptID]; !dup {
		a.seen[payerID][receiptID] = struct{}{}
		ps.ReceiptIDs = append(ps.ReceiptIDs, receiptID)
	}
}

func (a *payerAccumulator) sorted(totals map[int64]int64) []PayerSum {
	out := make([]PayerSum, 0, len(a.order))
	for _, id := range a.order {
		ps := *a.sums[id]
		ps.TopOutliers = TopOutlierReceipts(ps.ReceiptIDs, totals)
		out = append(out, ps)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SumCents > out[j].SumCents
	})
	return out
}

type categoryFilter map[string]struct{}

func newCategoryFilter(categories []string) categoryFilter {
	if len(categories) == 0 {
		return nil
	}
	f := make(categoryFilter, len(categories))
	for _, c := range categories {
		f[c] = struct{}{}
	}
	return f
}

// match reports whether the category passes the filter. A nil filter
// matches everything.
func (f categoryFilter) match(category string) bool {
	if f == nil {
		return true
	}
	_, ok := f[category]
	return ok
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
