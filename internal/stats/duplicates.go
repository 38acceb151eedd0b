package stats

import "paragony/internal/core"

// DuplicateGroup identifies receipts sharing the same identifying tuple.
type DuplicateGroup struct {
	PaymentDate     string               `json:"payment_date"`
	PayerID         int64                `json:"payer"`
	Shop            string               `json:"shop"`
	TransactionType core.TransactionType `json:"transaction_type"`
	Count           int                  `json:"count"`
}

type duplicateKey struct {
	date    string
	payerID int64
	shop    string
	txType  core.TransactionType
}

// FindDuplicates groups receipts by (payment date, payer, shop, transaction
// type) and returns every group with more than one member, in first-seen
// order. Shop names are case-folded for matching.
func FindDuplicates(receipts []core.Receipt) []DuplicateGroup {
	counts := make(map[duplicateKey]int)
	var order []duplicateKey

	for _, r := range receipts {
		key := duplicateKey{
			date:    r.PaymentDate.String(),
			payerID: r.PayerID,
			shop:    core.NormalizeName(r.Shop),
			txType:  r.TransactionType,
		}
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}

	var groups []DuplicateGroup
	for _, key := range order {
		if counts[key] > 1 {
			groups = append(groups, DuplicateGroup{
				PaymentDate:     key.date,
				PayerID:         key.payerID,
				Shop:            key.shop,
				TransactionType: key.txType,
				Count:           counts[key],
			})
		}
	}
	return groups
}
