// Package storage persists employees and attendance entries in SQLite.
//
// The schema carries a unique index on (employee_id, date) so at most
// one entry exists per employee per day, plus a non-unique index on
// employee_id for the range queries. All multi-statement writes run in
// a single SQL transaction; partial state is never observable.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"anwesenheit/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AddEmployee inserts a new employee and returns the assigned id.
func (r *SQLiteRepository) AddEmployee(ctx context.Context, name string, rate core.Money) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO employees (name, rate_cents) VALUES (?, ?)`,
		name, rate.Cents)
	if err != nil {
		return 0, fmt.Errorf("insert employee: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("employee insert id: %w", err)
	}

	slog.InfoContext(ctx, "Employee saved",
		"id", id,
		"name", name,
		"rate_cents", rate.Cents)

	return id, nil
}

// ListEmployees returns all employees in insertion (id) order.
func (r *SQLiteRepository) ListEmployees(ctx context.Context) ([]core.Employee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(rate_cents, 0) FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []core.Employee
	for rows.Next() {
		var e core.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Rate.Cents); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}

	return employees, nil
}

// GetEmployee returns the employee with the given id. Absence is an
// expected outcome, reported via the bool, not an error.
func (r *SQLiteRepository) GetEmployee(ctx context.Context, id int64) (core.Employee, bool, error) {
	var e core.Employee
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(rate_cents, 0) FROM employees WHERE id = ?`, id).
		Scan(&e.ID, &e.Name, &e.Rate.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Employee{}, false, nil
	}
	if err != nil {
		return core.Employee{}, false, fmt.Errorf("get employee: %w", err)
	}
	return e, true, nil
}

// UpdateEmployee overwrites the full record by id. Updating an absent
// id is a silent no-op; callers must not rely on an error for "not found".
func (r *SQLiteRepository) UpdateEmployee(ctx context.Context, e core.Employee) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE employees SET name = ?, rate_cents = ? WHERE id = ?`,
		e.Name, e.Rate.Cents, e.ID)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

// DeleteEmployee removes the employee and all its entries in one
// transaction. Deleting an absent id is a no-op.
func (r *SQLiteRepository) DeleteEmployee(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE employee_id = ?`, id); err != nil {
		return fmt.Errorf("delete entries for employee %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete employee %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Employee deleted with entries", "id", id)
	return nil
}

// CountEmployees reports how many employees exist (the seed gate).
func (r *SQLiteRepository) CountEmployees(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return n, nil
}

// FindEntry looks up the entry for one employee on one day.
func (r *SQLiteRepository) FindEntry(ctx context.Context, employeeID int64, date core.Date) (core.Entry, bool, error) {
	e, found, err := r.scanEntry(r.db.QueryRowContext(ctx,
		`SELECT id, employee_id, date, COALESCE(present, 0), COALESCE(payment_cents, 0)
		   FROM entries WHERE employee_id = ? AND date = ?`,
		employeeID, date.ISO()))
	if err != nil {
		return core.Entry{}, false, fmt.Errorf("find entry: %w", err)
	}
	return e, found, nil
}

// UpsertEntry writes the attendance/payment state for one employee and
// day. An existing (employee_id, date) row is updated in place and
// keeps its id across repeated upserts; otherwise a fresh row is
// inserted. The read and the write share one transaction, so the
// unique index is never raced.
func (r *SQLiteRepository) UpsertEntry(ctx context.Context, employeeID int64, date core.Date, present bool, payment core.Money) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM entries WHERE employee_id = ? AND date = ?`,
		employeeID, date.ISO()).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx,
			`INSERT INTO entries (employee_id, date, present, payment_cents) VALUES (?, ?, ?, ?)`,
			employeeID, date.ISO(), boolToInt(present), payment.Cents)
		if err != nil {
			return 0, fmt.Errorf("insert entry: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("entry insert id: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("lookup entry: %w", err)
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE entries SET present = ?, payment_cents = ? WHERE id = ?`,
			boolToInt(present), payment.Cents, id); err != nil {
			return 0, fmt.Errorf("update entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert transaction: %w", err)
	}

	slog.DebugContext(ctx, "Entry upserted",
		"id", id,
		"employee_id", employeeID,
		"date", date.ISO(),
		"present", present,
		"payment_cents", payment.Cents)

	return id, nil
}

// EntriesInRange returns one employee's entries with start ≤ date < end,
// ordered by date. ISO dates compare correctly as strings.
func (r *SQLiteRepository) EntriesInRange(ctx context.Context, employeeID int64, start, end core.Date) ([]core.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, employee_id, date, COALESCE(present, 0), COALESCE(payment_cents, 0)
		   FROM entries
		  WHERE employee_id = ? AND date >= ? AND date < ?
		  ORDER BY date`,
		employeeID, start.ISO(), end.ISO())
	if err != nil {
		return nil, fmt.Errorf("query entries in range: %w", err)
	}
	defer rows.Close()

	var entries []core.Entry
	for rows.Next() {
		var (
			e       core.Entry
			dateStr string
			present int
		)
		if err := rows.Scan(&e.ID, &e.EmployeeID, &dateStr, &present, &e.Payment.Cents); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Date, err = core.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("entry %d has malformed date %q: %w", e.ID, dateStr, err)
		}
		e.Present = present != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}

func (r *SQLiteRepository) scanEntry(row *sql.Row) (core.Entry, bool, error) {
	var (
		e       core.Entry
		dateStr string
		present int
	)
	err := row.Scan(&e.ID, &e.EmployeeID, &dateStr, &present, &e.Payment.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, false, nil
	}
	if err != nil {
		return core.Entry{}, false, err
	}
	e.Date, err = core.ParseDate(dateStr)
	if err != nil {
		return core.Entry{}, false, fmt.Errorf("entry %d has malformed date %q: %w", e.ID, dateStr, err)
	}
	e.Present = present != 0
	return e, true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
