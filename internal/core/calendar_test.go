package core

import "testing"

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year, month, want int
	}{
		{2025, 1, 31},
		{2025, 2, 28},
		{2024, 2, 29}, // leap year
		{2000, 2, 29}, // leap century
		{1900, 2, 28}, // non-leap century
		{2025, 4, 30},
		{2025, 12, 31},
	}
	for _, c := range cases {
		if got := DaysInMonth(c.year, c.month); got != c.want {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", c.year, c.month, got, c.want)
		}
	}
}

func TestDatesInMonth(t *testing.T) {
	dates := DatesInMonth(2024, 2)
	if len(dates) != 29 {
		t.Fatalf("len = %d, want 29", len(dates))
	}
	if dates[0].String() != "2024-02-01" {
		t.Errorf("first = %s, want 2024-02-01", dates[0])
	}
	if dates[28].String() != "2024-02-29" {
		t.Errorf("last = %s, want 2024-02-29", dates[28])
	}
}
