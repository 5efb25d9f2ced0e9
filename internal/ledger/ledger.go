// Package ledger coordinates employee records and daily attendance
// entries on top of the persistent store, and derives the balances the
// presentation layer shows.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"anwesenheit/internal/core"
)

// Store is the persistence contract the service needs. The SQLite
// repository satisfies it; tests may substitute their own.
type Store interface {
	AddEmployee(ctx context.Context, name string, rate core.Money) (int64, error)
	ListEmployees(ctx context.Context) ([]core.Employee, error)
	GetEmployee(ctx context.Context, id int64) (core.Employee, bool, error)
	UpdateEmployee(ctx context.Context, e core.Employee) error
	DeleteEmployee(ctx context.Context, id int64) error
	CountEmployees(ctx context.Context) (int, error)
	FindEntry(ctx context.Context, employeeID int64, date core.Date) (core.Entry, bool, error)
	UpsertEntry(ctx context.Context, employeeID int64, date core.Date, present bool, payment core.Money) (int64, error)
	EntriesInRange(ctx context.Context, employeeID int64, start, end core.Date) ([]core.Entry, error)
}

// EmployeeBalance pairs an employee with their balance for a period.
type EmployeeBalance struct {
	Employee core.Employee
	Balance  core.Balance
}

// Overview holds per-employee balances for a period plus their
// elementwise sum, the data behind the dashboard and year views.
type Overview struct {
	Rows  []EmployeeBalance
	Total core.Balance
}

type Service struct {
	store     Store
	seedCount int
	seedRate  core.Money
}

func NewService(store Store, seedCount int, seedRate core.Money) *Service {
	return &Service{
		store:     store,
		seedCount: seedCount,
		seedRate:  seedRate,
	}
}

// SeedIfEmpty populates placeholder employees on first run. It is a
// one-time bootstrap: once any employee exists it never runs again.
func (s *Service) SeedIfEmpty(ctx context.Context) error {
	count, err := s.store.CountEmployees(ctx)
	if err != nil {
		return fmt.Errorf("count employees: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i := 1; i <= s.seedCount; i++ {
		name := fmt.Sprintf("Mitarbeiter %d", i)
		if _, err := s.store.AddEmployee(ctx, name, s.seedRate); err != nil {
			return fmt.Errorf("seed employee %d: %w", i, err)
		}
	}

	slog.InfoContext(ctx, "Seeded placeholder employees",
		"count", s.seedCount,
		"rate_cents", s.seedRate.Cents)

	return nil
}

func (s *Service) ListEmployees(ctx context.Context) ([]core.Employee, error) {
	return s.store.ListEmployees(ctx)
}

// GetEmployee returns the employee by id. Absence is an expected
// outcome ("not found, navigate away"), reported via the bool.
func (s *Service) GetEmployee(ctx context.Context, id int64) (core.Employee, bool, error) {
	return s.store.GetEmployee(ctx, id)
}

func (s *Service) AddEmployee(ctx context.Context, name string, rate core.Money) (int64, error) {
	e := core.Employee{Name: name, Rate: rate}
	if err := e.Validate(); err != nil {
		return 0, err
	}
	return s.store.AddEmployee(ctx, name, rate)
}

// UpdateEmployee overwrites the full record. An absent id is a no-op.
func (s *Service) UpdateEmployee(ctx context.Context, e core.Employee) error {
	if err := e.Validate(); err != nil {
		return err
	}
	return s.store.UpdateEmployee(ctx, e)
}

// DeleteEmployee removes the employee and, in the same transaction,
// every entry that references it.
func (s *Service) DeleteEmployee(ctx context.Context, id int64) error {
	return s.store.DeleteEmployee(ctx, id)
}

// UpsertEntry records attendance/payment for one day. Repeated upserts
// for the same (employee, date) mutate the existing entry in place and
// return its stable id.
func (s *Service) UpsertEntry(ctx context.Context, employeeID int64, dateISO string, present bool, payment core.Money) (int64, error) {
	date, err := core.ParseDate(dateISO)
	if err != nil {
		return 0, err
	}
	if err := payment.Validate(); err != nil {
		return 0, err
	}
	return s.store.UpsertEntry(ctx, employeeID, date, present, payment)
}

// EntriesForMonth returns the employee's entries in
// [first of month, first of next month), rolling over year boundaries.
func (s *Service) EntriesForMonth(ctx context.Context, employeeID int64, year, month int) ([]core.Entry, error) {
	start, end, err := monthWindow(year, month)
	if err != nil {
		return nil, err
	}
	return s.store.EntriesInRange(ctx, employeeID, start, end)
}

// EntriesForYear returns the employee's entries in
// [YYYY-01-01, (YYYY+1)-01-01).
func (s *Service) EntriesForYear(ctx context.Context, employeeID int64, year int) ([]core.Entry, error) {
	start := core.NewDate(year, 1, 1)
	return s.store.EntriesInRange(ctx, employeeID, start, start.AddYears(1))
}

// MonthBalance aggregates one employee's month. An unknown employee
// yields a zero balance, not an error.
func (s *Service) MonthBalance(ctx context.Context, employeeID int64, year, month int) (core.Balance, error) {
	entries, err := s.EntriesForMonth(ctx, employeeID, year, month)
	if err != nil {
		return core.Balance{}, err
	}
	return s.balanceFor(ctx, employeeID, entries)
}

// YearBalance aggregates one employee's year.
func (s *Service) YearBalance(ctx context.Context, employeeID int64, year int) (core.Balance, error) {
	entries, err := s.EntriesForYear(ctx, employeeID, year)
	if err != nil {
		return core.Balance{}, err
	}
	return s.balanceFor(ctx, employeeID, entries)
}

// MonthOverview builds the dashboard data: every employee's balance for
// the month plus the crew-wide total.
func (s *Service) MonthOverview(ctx context.Context, year, month int) (Overview, error) {
	if _, _, err := monthWindow(year, month); err != nil {
		return Overview{}, err
	}
	return s.overview(ctx, func(id int64) ([]core.Entry, error) {
		return s.EntriesForMonth(ctx, id, year, month)
	})
}

// YearOverview builds the year view data.
func (s *Service) YearOverview(ctx context.Context, year int) (Overview, error) {
	return s.overview(ctx, func(id int64) ([]core.Entry, error) {
		return s.EntriesForYear(ctx, id, year)
	})
}

func (s *Service) overview(ctx context.Context, entriesFor func(int64) ([]core.Entry, error)) (Overview, error) {
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("list employees: %w", err)
	}

	var ov Overview
	for _, e := range employees {
		entries, err := entriesFor(e.ID)
		if err != nil {
			return Overview{}, fmt.Errorf("entries for employee %d: %w", e.ID, err)
		}
		b := core.Aggregate(entries, e.Rate)
		ov.Rows = append(ov.Rows, EmployeeBalance{Employee: e, Balance: b})
		ov.Total = ov.Total.Add(b)
	}

	return ov, nil
}

func (s *Service) balanceFor(ctx context.Context, employeeID int64, entries []core.Entry) (core.Balance, error) {
	emp, found, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return core.Balance{}, fmt.Errorf("get employee %d: %w", employeeID, err)
	}
	if !found {
		return core.Balance{}, nil
	}
	return core.Aggregate(entries, emp.Rate), nil
}

func monthWindow(year, month int) (core.Date, core.Date, error) {
	if month < 1 || month > 12 {
		return core.Date{}, core.Date{}, core.ErrInvalidMonth
	}
	start := core.NewDate(year, month, 1)
	return start, start.AddMonths(1), nil
}
