package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"anwesenheit/internal/core"
	"anwesenheit/internal/ledger"
	applog "anwesenheit/internal/log"
)

// Money crosses the wire twice: inbound as the free-form string a user
// types ("1.234,56"), normalized through core.ParseMoney; outbound as
// cents plus the de-DE display form.
type moneyJSON struct {
	Cents   int64  `json:"cents"`
	Display string `json:"display"`
}

type employeeJSON struct {
	ID   int64     `json:"id"`
	Name string    `json:"name"`
	Rate moneyJSON `json:"rate"`
}

type entryJSON struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employeeId"`
	Date       string    `json:"date"`
	Present    bool      `json:"present"`
	Payment    moneyJSON `json:"payment"`
}

type balanceJSON struct {
	DaysPresent int       `json:"daysPresent"`
	Due         moneyJSON `json:"due"`
	Paid        moneyJSON `json:"paid"`
	Open        moneyJSON `json:"open"`
}

type overviewRowJSON struct {
	Employee employeeJSON `json:"employee"`
	Balance  balanceJSON  `json:"balance"`
}

type overviewJSON struct {
	Rows  []overviewRowJSON `json:"rows"`
	Total balanceJSON       `json:"total"`
}

func toMoneyJSON(m core.Money) moneyJSON {
	return moneyJSON{Cents: m.Cents, Display: m.Format()}
}

func toEmployeeJSON(e core.Employee) employeeJSON {
	return employeeJSON{ID: e.ID, Name: e.Name, Rate: toMoneyJSON(e.Rate)}
}

func toEntryJSON(e core.Entry) entryJSON {
	return entryJSON{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		Date:       e.Date.ISO(),
		Present:    e.Present,
		Payment:    toMoneyJSON(e.Payment),
	}
}

func toEntriesJSON(entries []core.Entry) []entryJSON {
	out := make([]entryJSON, len(entries))
	for i, e := range entries {
		out[i] = toEntryJSON(e)
	}
	return out
}

func toBalanceJSON(b core.Balance) balanceJSON {
	return balanceJSON{
		DaysPresent: b.DaysPresent,
		Due:         toMoneyJSON(b.Due),
		Paid:        toMoneyJSON(b.Paid),
		Open:        toMoneyJSON(b.Open),
	}
}

func toOverviewJSON(ov ledger.Overview) overviewJSON {
	out := overviewJSON{
		Rows:  make([]overviewRowJSON, len(ov.Rows)),
		Total: toBalanceJSON(ov.Total),
	}
	for i, row := range ov.Rows {
		out.Rows[i] = overviewRowJSON{
			Employee: toEmployeeJSON(row.Employee),
			Balance:  toBalanceJSON(row.Balance),
		}
	}
	return out
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := s.ledger.ListEmployees(r.Context())
	if err != nil {
		s.serverError(w, r, "list employees", err)
		return
	}

	out := make([]employeeJSON, len(employees))
	for i, e := range employees {
		out[i] = toEmployeeJSON(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Rate string `json:"rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	// Malformed rate input is not rejected; it parses to zero.
	id, err := s.ledger.AddEmployee(r.Context(), req.Name, core.ParseMoney(req.Rate))
	if errors.Is(err, core.ErrEmptyName) {
		writeError(w, http.StatusUnprocessableEntity, "employee name must not be empty")
		return
	}
	if err != nil {
		s.serverError(w, r, "add employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	e, found, err := s.ledger.GetEmployee(r.Context(), id)
	if err != nil {
		s.serverError(w, r, "get employee", err)
		return
	}
	if !found {
		// Expected outcome, the client navigates away.
		writeError(w, http.StatusNotFound, "employee not found")
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeJSON(e))
}

func (s *Server) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
		Rate string `json:"rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	err := s.ledger.UpdateEmployee(r.Context(), core.Employee{
		ID:   id,
		Name: req.Name,
		Rate: core.ParseMoney(req.Rate),
	})
	if errors.Is(err, core.ErrEmptyName) {
		writeError(w, http.StatusUnprocessableEntity, "employee name must not be empty")
		return
	}
	if err != nil {
		s.serverError(w, r, "update employee", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.ledger.DeleteEmployee(r.Context(), id); err != nil {
		s.serverError(w, r, "delete employee", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpsertEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req struct {
		Present bool   `json:"present"`
		Payment string `json:"payment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	entryID, err := s.ledger.UpsertEntry(r.Context(), id, r.PathValue("date"), req.Present, core.ParseMoney(req.Payment))
	if errors.Is(err, core.ErrInvalidDate) {
		writeError(w, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD")
		return
	}
	if err != nil {
		s.serverError(w, r, "upsert entry", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"id": entryID})
}

func (s *Server) handleMonthReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	year, ok := pathInt(w, r, "year")
	if !ok {
		return
	}
	month, ok := pathInt(w, r, "month")
	if !ok {
		return
	}

	entries, err := s.ledger.EntriesForMonth(r.Context(), id, year, month)
	if errors.Is(err, core.ErrInvalidMonth) {
		writeError(w, http.StatusUnprocessableEntity, "month must be between 1 and 12")
		return
	}
	if err != nil {
		s.serverError(w, r, "entries for month", err)
		return
	}

	balance, err := s.ledger.MonthBalance(r.Context(), id, year, month)
	if err != nil {
		s.serverError(w, r, "month balance", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": toEntriesJSON(entries),
		"balance": toBalanceJSON(balance),
	})
}

func (s *Server) handleYearReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	year, ok := pathInt(w, r, "year")
	if !ok {
		return
	}

	entries, err := s.ledger.EntriesForYear(r.Context(), id, year)
	if err != nil {
		s.serverError(w, r, "entries for year", err)
		return
	}

	balance, err := s.ledger.YearBalance(r.Context(), id, year)
	if err != nil {
		s.serverError(w, r, "year balance", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": toEntriesJSON(entries),
		"balance": toBalanceJSON(balance),
	})
}

func (s *Server) handleMonthOverview(w http.ResponseWriter, r *http.Request) {
	year, ok := pathInt(w, r, "year")
	if !ok {
		return
	}
	month, ok := pathInt(w, r, "month")
	if !ok {
		return
	}

	ov, err := s.ledger.MonthOverview(r.Context(), year, month)
	if errors.Is(err, core.ErrInvalidMonth) {
		writeError(w, http.StatusUnprocessableEntity, "month must be between 1 and 12")
		return
	}
	if err != nil {
		s.serverError(w, r, "month overview", err)
		return
	}

	writeJSON(w, http.StatusOK, toOverviewJSON(ov))
}

func (s *Server) handleYearOverview(w http.ResponseWriter, r *http.Request) {
	year, ok := pathInt(w, r, "year")
	if !ok {
		return
	}

	ov, err := s.ledger.YearOverview(r.Context(), year)
	if err != nil {
		s.serverError(w, r, "year overview", err)
		return
	}

	writeJSON(w, http.StatusOK, toOverviewJSON(ov))
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	applog.FromContext(r.Context()).ErrorContext(r.Context(), "Ledger operation failed",
		"operation", operation,
		"error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be numeric")
		return 0, false
	}
	return id, true
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be numeric")
		return 0, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
