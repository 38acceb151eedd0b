package http

import (
	"fmt"
	"strings"

	"paragony/internal/core"
)

// moneyValue accepts both JSON numbers and quoted decimal strings, since
// clients historically sent either.
type moneyValue string

func (v *moneyValue) UnmarshalJSON(data []byte) error {
	*v = moneyValue(strings.Trim(string(data), `"`))
	return nil
}

type ownerPayload struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Payer bool   `json:"payer"`
}

type itemPayload struct {
	ID          int64      `json:"id,omitempty"`
	Category    string     `json:"category"`
	Value       moneyValue `json:"value"`
	Description string     `json:"description"`
	Quantity    int64      `json:"quantity"`
	Owners      []int64    `json:"owners"`
}

type receiptPayload struct {
	ID              int64         `json:"id,omitempty"`
	Payer           int64         `json:"payer"`
	Shop            string        `json:"shop"`
	TransactionType string        `json:"transaction_type"`
	PaymentDate     string        `json:"payment_date"`
	Items           []itemPayload `json:"items"`
}

func (p itemPayload) toItem() (core.Item, error) {
	cents, err := core.ParseValueCents(string(p.Value))
	if err != nil {
		return core.Item{}, fmt.Errorf("item value: %w", err)
	}
	quantity := p.Quantity
	if quantity == 0 {
		quantity = 1
	}
	return core.Item{
		ID:          p.ID,
		Category:    p.Category,
		ValueCents:  cents,
		Description: p.Description,
		Quantity:    quantity,
		OwnerIDs:    p.Owners,
	}, nil
}

func (p receiptPayload) toReceipt() (*core.Receipt, error) {
	date, err := core.ParseDate(p.PaymentDate)
	if err != nil {
		return nil, fmt.Errorf("payment_date: %w", err)
	}
	rec := &core.Receipt{
		ID:              p.ID,
		PayerID:         p.Payer,
		Shop:            strings.TrimSpace(p.Shop),
		TransactionType: core.TransactionType(p.TransactionType),
		PaymentDate:     date,
	}
	for _, ip := range p.Items {
		it, err := ip.toItem()
		if err != nil {
			return nil, err
		}
		rec.Items = append(rec.Items, it)
	}
	return rec, nil
}

type itemResponse struct {
	ID          int64   `json:"id"`
	ReceiptID   int64   `json:"receipt_id,omitempty"`
	Category    string  `json:"category"`
	Value       float64 `json:"value"`
	Description string  `json:"description"`
	Quantity    int64   `json:"quantity"`
	SaveDate    string  `json:"save_date"`
	Owners      []int64 `json:"owners"`
}

type receiptResponse struct {
	ID              int64          `json:"id"`
	Payer           int64          `json:"payer"`
	Shop            string         `json:"shop"`
	TransactionType string         `json:"transaction_type"`
	PaymentDate     string         `json:"payment_date"`
	SaveDate        string         `json:"save_date"`
	Items           []itemResponse `json:"items"`
}

func toItemResponse(it core.Item) itemResponse {
	owners := it.OwnerIDs
	if owners == nil {
		owners = []int64{}
	}
	return itemResponse{
		ID:          it.ID,
		ReceiptID:   it.ReceiptID,
		Category:    it.Category,
		Value:       core.CentsToValue(it.ValueCents),
		Description: it.Description,
		Quantity:    it.Quantity,
		SaveDate:    it.SaveDate.String(),
		Owners:      owners,
	}
}

func toReceiptResponse(rec core.Receipt) receiptResponse {
	items := make([]itemResponse, 0, len(rec.Items))
	for _, it := range rec.Items {
		items = append(items, toItemResponse(it))
	}
	return receiptResponse{
		ID:              rec.ID,
		Payer:           rec.PayerID,
		Shop:            rec.Shop,
		TransactionType: string(rec.TransactionType),
		PaymentDate:     rec.PaymentDate.String(),
		SaveDate:        rec.SaveDate.String(),
		Items:           items,
	}
}

func toReceiptResponses(recs []core.Receipt) []receiptResponse {
	out := make([]receiptResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, toReceiptResponse(r))
	}
	return out
}
