// Package forms models per-field validation state for expense input.
//
// Each field is an explicit record of value, touched flag, and optional
// error kind; validation is a pure function recomputed on every change
// instead of error messages accumulated in an ad-hoc map.
package forms

import (
	"strings"
	"time"

	"spendsight/internal/core"
)

// ErrorKind identifies why a field value is invalid. The empty kind means
// the value passed validation.
type ErrorKind string

const (
	ErrNone               ErrorKind = ""
	ErrRequired           ErrorKind = "required"
	ErrInvalidAmount      ErrorKind = "invalid_amount"
	ErrInvalidDate        ErrorKind = "invalid_date"
	ErrUnknownCategory    ErrorKind = "unknown_category"
	ErrUnknownPaymentMode ErrorKind = "unknown_payment_mode"
	ErrTooLong            ErrorKind = "too_long"
	ErrUnknownField       ErrorKind = "unknown_field"
)

// Known field names for an expense form.
const (
	FieldAmount      = "amount"
	FieldDate        = "date"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldPaymentMode = "payment_mode"
	FieldNotes       = "notes"
)

// Field is the validation state of one input field.
type Field struct {
	Value   string
	Touched bool
	Err     ErrorKind
}

// Valid reports whether the field currently holds an acceptable value.
func (f Field) Valid() bool {
	return f.Err == ErrNone
}

// State tracks every field of an expense form by name.
type State map[string]Field

// NewState returns an untouched state for all expense form fields.
func NewState() State {
	s := make(State, 6)
	for _, name := range []string{FieldAmount, FieldDate, FieldDescription, FieldCategory, FieldPaymentMode, FieldNotes} {
		s[name] = Field{Err: Validate(name, "")}
	}
	return s
}

// Apply records a new value for a field, marking it touched and revalidating.
func (s State) Apply(name, value string) {
	s[name] = Field{Value: value, Touched: true, Err: Validate(name, value)}
}

// Errors returns the error kind for every currently invalid field.
func (s State) Errors() map[string]ErrorKind {
	out := make(map[string]ErrorKind)
	for name, f := range s {
		if f.Err != ErrNone {
			out[name] = f.Err
		}
	}
	return out
}

// Valid reports whether every field holds an acceptable value.
func (s State) Valid() bool {
	for _, f := range s {
		if f.Err != ErrNone {
			return false
		}
	}
	return true
}

// Validate is the pure per-field rule check. It never mutates anything, so
// callers can probe hypothetical values without touching state.
func Validate(name, value string) ErrorKind {
	trimmed := strings.TrimSpace(value)
	switch name {
	case FieldAmount:
		if trimmed == "" {
			return ErrRequired
		}
		if _, err := core.ParseDecimalToCents(trimmed); err != nil {
			return ErrInvalidAmount
		}
	case FieldDate:
		if trimmed == "" {
			return ErrRequired
		}
		if _, err := time.Parse("2006-01-02", trimmed); err != nil {
			return ErrInvalidDate
		}
	case FieldDescription:
		if trimmed == "" {
			return ErrRequired
		}
		if len(trimmed) > 200 {
			return ErrTooLong
		}
	case FieldCategory:
		if trimmed == "" {
			return ErrRequired
		}
		if !core.Category(trimmed).IsValid() {
			return ErrUnknownCategory
		}
	case FieldPaymentMode:
		if trimmed == "" {
			return ErrRequired
		}
		if !core.PaymentMode(trimmed).IsValid() {
			return ErrUnknownPaymentMode
		}
	case FieldNotes:
		// Optional field, only bounded in length.
		if len(trimmed) > 500 {
			return ErrTooLong
		}
	default:
		return ErrUnknownField
	}
	return ErrNone
}
