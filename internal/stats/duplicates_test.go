package stats

import (
	"testing"

	"paragony/internal/core"
)

func TestFindDuplicates(t *testing.T) {
	t.Run("identical tuples form one group", func(t *testing.T) {
		receipts := []core.Receipt{
			receipt(1, 1),
			receipt(2, 1),
		}
		groups := FindDuplicates(receipts)
		if len(groups) != 1 {
			t.Fatalf("groups = %d, want 1", len(groups))
		}
		g := groups[0]
		if g.Count != 2 || g.PayerID != 1 || g.Shop != "lidl" || g.PaymentDate != "2025-01-15" {
			t.Fatalf("group = %+v", g)
		}
	})

	t.Run("distinct tuples report nothing", func(t *testing.T) {
		a := receipt(1, 1)
		b := receipt(2, 1)
		b.Shop = "biedronka"
		c := receipt(3, 2)
		if groups := FindDuplicates([]core.Receipt{a, b, c}); len(groups) != 0 {
			t.Fatalf("groups = %v, want none", groups)
		}
	})

	t.Run("shop matching is case-folded", func(t *testing.T) {
		a := receipt(1, 1)
		b := receipt(2, 1)
		b.Shop = "  LIDL "
		groups := FindDuplicates([]core.Receipt{a, b})
		if len(groups) != 1 || groups[0].Count != 2 {
			t.Fatalf("groups = %v, want one group of 2", groups)
		}
	})
}
