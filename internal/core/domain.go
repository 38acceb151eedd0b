package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

type (
	TransactionType string

	// Owner is a person that can be assigned to items. Owners with
	// Payer set may also pay receipts.
	Owner struct {
		ID    int64
		Name  string
		Payer bool
	}

	// Item is a single purchased or earned line entry. ReceiptID is zero
	// for standalone items not attached to any receipt.
	Item struct {
		ID          int64
		ReceiptID   int64
		Category    string
		ValueCents  int64
		Description string
		Quantity    int64
		SaveDate    Date
		OwnerIDs    []int64
	}

	// Receipt groups items under one payer, date and shop.
	Receipt struct {
		ID              int64
		PayerID         int64
		Shop            string
		TransactionType TransactionType
		PaymentDate     Date
		SaveDate        Date
		Items           []Item
	}

	// RecentShop is a deduplicated cache of previously used shop names.
	RecentShop struct {
		ID       int64
		Name     string
		LastUsed time.Time
	}

	// ItemPrediction counts how often an item description has been used,
	// for autocomplete.
	ItemPrediction struct {
		ID          int64
		Description string
		Frequency   int64
	}

	Date struct {
		time.Time
	}
)

// Categories lists every valid item category.
var Categories = []string{
	"fuel",
	"car_expenses",
	"fastfood",
	"alcohol",
	"food_drinks",
	"chemistry",
	"clothes",
	"electronics_games",
	"tickets_entrance",
	"delivery",
	"other_shopping",
	"flat_bills",
	"monthly_subscriptions",
	"other_cyclical_expenses",
	"investments_savings",
	"other",
	"for_study",
	"work_income",
	"family_income",
	"investments_income",
	"money_back",
	"last_month_balance",
}

// ShoppingCategories is the default category filter for shop aggregations.
var ShoppingCategories = []string{
	"fuel",
	"car_expenses",
	"fastfood",
	"alcohol",
	"food_drinks",
	"chemistry",
	"clothes",
	"electronics_games",
	"tickets_entrance",
	"other_shopping",
}

var categorySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		m[c] = struct{}{}
	}
	return m
}()

var (
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidValue       = errors.New("invalid value")
	ErrInvalidTransaction = errors.New("invalid transaction type")
	ErrEmptyShop          = errors.New("empty shop name")
	ErrNoPayer            = errors.New("missing payer")
	ErrNoOwners           = errors.New("item has no owners")
	ErrInvalidDate        = errors.New("invalid payment date")
	ErrDescriptionTooLong = errors.New("description too long (max 255 characters)")
)

// ValidCategory reports whether c is one of the fixed category values.
func ValidCategory(c string) bool {
	_, ok := categorySet[c]
	return ok
}

func (t TransactionType) Validate() error {
	switch t {
	case Expense, Income:
		return nil
	}
	return ErrInvalidTransaction
}

func (i Item) Validate() error {
	if !ValidCategory(i.Category) {
		return ErrInvalidCategory
	}
	if len(i.OwnerIDs) == 0 {
		return ErrNoOwners
	}
	if len(i.Description) > 255 {
		return ErrDescriptionTooLong
	}
	return nil
}

func (r Receipt) Validate() error {
	if r.PayerID == 0 {
		return ErrNoPayer
	}
	if strings.TrimSpace(r.Shop) == "" {
		return ErrEmptyShop
	}
	if err := r.TransactionType.Validate(); err != nil {
		return err
	}
	if r.PaymentDate.IsZero() {
		return ErrInvalidDate
	}
	for _, it := range r.Items {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeName trims and lowercases a shop name or item description for
// the recent-shop and prediction tables.
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}
