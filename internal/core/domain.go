package core

import (
	"errors"
	"strings"
	"time"
)

const (
	CategoryGroceries     Category = "Groceries"
	CategoryFood          Category = "Food"
	CategoryTravel        Category = "Travel"
	CategoryUtilities     Category = "Utilities"
	CategoryShopping      Category = "Shopping"
	CategoryHealth        Category = "Health"
	CategoryEntertainment Category = "Entertainment"
	CategoryOther         Category = "Other"
)

const (
	PayCash       PaymentMode = "cash"
	PayCard       PaymentMode = "card"
	PayUPI        PaymentMode = "upi"
	PayNetBanking PaymentMode = "netbanking"
)

type (
	Category    string
	PaymentMode string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Expense struct {
		ID          int64 // Database ID for operations
		Date        Date
		Description string
		Amount      Money
		Category    Category
		PaymentMode PaymentMode
		Notes       string
	}

	// MonthCategoryTotal is one pre-aggregated data point: the amount spent
	// on a category in a given month. Several entries may share the same
	// (year, month, category) and are summed during aggregation.
	MonthCategoryTotal struct {
		Year     int
		Month    int // 1-12
		Category Category
		Amount   Money
	}
)

// Categories is the closed, ordered set of expense categories. The order is
// load-bearing: it is the tie-break order for analytics rankings and the
// display order for selection lists.
var Categories = []Category{
	CategoryGroceries,
	CategoryFood,
	CategoryTravel,
	CategoryUtilities,
	CategoryShopping,
	CategoryHealth,
	CategoryEntertainment,
	CategoryOther,
}

// PaymentModes is the closed, ordered set of accepted payment modes.
var PaymentModes = []PaymentMode{PayCash, PayCard, PayUPI, PayNetBanking}

var (
	ErrInvalidDay         = errors.New("invalid day")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidYear        = errors.New("invalid year")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNegativeAmount     = errors.New("negative amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrUnknownPaymentMode = errors.New("unknown payment mode")
	ErrExpenseNotFound    = errors.New("expense not found")
)

// CategoryNames returns the category set as plain strings, preserving order.
func CategoryNames() []string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return names
}

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (p PaymentMode) IsValid() bool {
	for _, known := range PaymentModes {
		if p == known {
			return true
		}
	}
	return false
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.IsValid() {
		return ErrUnknownCategory
	}
	if !e.PaymentMode.IsValid() {
		return ErrUnknownPaymentMode
	}
	if len(e.Notes) > 500 {
		return errors.New("notes too long (max 500 characters)")
	}
	return nil
}

// Validate checks a single aggregate data point. Unlike Expense amounts,
// a zero total is acceptable here; only negative amounts are rejected.
func (t MonthCategoryTotal) Validate() error {
	if t.Year < 1 {
		return ErrInvalidYear
	}
	if t.Month < 1 || t.Month > 12 {
		return ErrInvalidMonth
	}
	if t.Amount.Cents < 0 {
		return ErrNegativeAmount
	}
	if !t.Category.IsValid() {
		return ErrUnknownCategory
	}
	return nil
}
