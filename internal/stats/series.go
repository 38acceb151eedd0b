package stats

import "paragony/internal/core"

// DayPoint is one day of the cumulative expense/income series.
type DayPoint struct {
	Day     string  `json:"day"`
	Expense float64 `json:"expense"`
	Income  float64 `json:"income"`
}

// DailySeries builds the cumulative daily series for one owner across every
// calendar day of the month. Each item owned (wholly or partly) by the owner
// contributes its value divided by the item's owner count to the payment
// day's bucket; values then accumulate in calendar order. Days without
// activity still appear, carrying the running totals.
func DailySeries(receipts []core.Receipt, year, month int, ownerID int64) []DayPoint {
	dates := core.DatesInMonth(year, month)
	dailyExpense := make(map[string]float64, len(dates))
	dailyIncome := make(map[string]float64, len(dates))

	for _, r := range receipts {
		day := r.PaymentDate.String()
		for _, it := range r.Items {
			if !containsID(it.OwnerIDs, ownerID) {
				continue
			}
			share := core.CentsToValue(it.ValueCents) / float64(len(it.OwnerIDs))
			switch r.TransactionType {
			case core.Expense:
				dailyExpense[day] += share
			case core.Income:
				dailyIncome[day] += share
			}
		}
	}

	points := make([]DayPoint, 0, len(dates))
	var cumExpense, cumIncome float64
	for _, d := range dates {
		day := d.String()
		cumExpense += dailyExpense[day]
		cumIncome += dailyIncome[day]
		points = append(points, DayPoint{
			Day:     day,
			Expense: core.Round2(cumExpense),
			Income:  core.Round2(cumIncome),
		})
	}
	return points
}
