package core

import (
	"errors"
	"testing"
)

func TestReceiptValidate(t *testing.T) {
	valid := Receipt{
		PayerID:         1,
		Shop:            "Lidl",
		TransactionType: Expense,
		PaymentDate:     NewDate(2025, 1, 15),
		Items: []Item{
			{Category: "food_drinks", ValueCents: 1299, OwnerIDs: []int64{1}},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid receipt rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(r *Receipt)
		wantErr error
	}{
		{"missing payer", func(r *Receipt) { r.PayerID = 0 }, ErrNoPayer},
		{"blank shop", func(r *Receipt) { r.Shop = "   " }, ErrEmptyShop},
		{"bad transaction type", func(r *Receipt) { r.TransactionType = "transfer" }, ErrInvalidTransaction},
		{"zero payment date", func(r *Receipt) { r.PaymentDate = Date{} }, ErrInvalidDate},
		{"bad item category", func(r *Receipt) { r.Items[0].Category = "snacks" }, ErrInvalidCategory},
		{"item without owners", func(r *Receipt) { r.Items[0].OwnerIDs = nil }, ErrNoOwners},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := valid
			r.Items = []Item{valid.Items[0]}
			c.mutate(&r)
			if err := r.Validate(); !errors.Is(err, c.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, c.wantErr)
			}
		})
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range Categories {
		if !ValidCategory(c) {
			t.Errorf("ValidCategory(%q) = false, want true", c)
		}
	}
	if ValidCategory("groceries") {
		t.Error(`ValidCategory("groceries") = true, want false`)
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  Lidl "); got != "lidl" {
		t.Errorf("NormalizeName = %q, want %q", got, "lidl")
	}
}
