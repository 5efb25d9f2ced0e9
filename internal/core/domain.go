package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Date is a calendar date. The time portion is always midnight UTC;
	// persistence and the wire format use the ISO form YYYY-MM-DD.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Employee is one member of the crew, paid Rate per worked day.
	Employee struct {
		ID   int64
		Name string
		Rate Money
	}

	// Entry records attendance and payment for one employee on one day.
	// At most one Entry exists per (EmployeeID, Date) pair; Payment is
	// independent of Present so advances and partial payments fit.
	Entry struct {
		ID         int64
		EmployeeID int64
		Date       Date
		Present    bool
		Payment    Money
	}
)

const isoDate = "2006-01-02"

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidMonth   = errors.New("invalid month")
	ErrEmptyName      = errors.New("empty employee name")
	ErrNegativeAmount = errors.New("negative amount")
)

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the ISO form YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(isoDate, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO renders the date as YYYY-MM-DD, the only serialized form.
func (d Date) ISO() string {
	return d.Format(isoDate)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// AddMonths moves the date by whole months, rolling over year
// boundaries (December plus one month lands in January of the next year).
func (d Date) AddMonths(n int) Date {
	return Date{Time: d.AddDate(0, n, 0)}
}

// AddYears moves the date by whole years.
func (d Date) AddYears(n int) Date {
	return Date{Time: d.AddDate(n, 0, 0)}
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// IsNegative reports whether the amount is below zero. Only derived
// open balances can be negative; stored rates and payments never are.
func (m Money) IsNegative() bool {
	return m.Cents < 0
}

func (e Employee) Validate() error {
	if len(strings.TrimSpace(e.Name)) == 0 {
		return ErrEmptyName
	}
	if err := e.Rate.Validate(); err != nil {
		return err
	}
	return nil
}

func (e Entry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	return e.Payment.Validate()
}
