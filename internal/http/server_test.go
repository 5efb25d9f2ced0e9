package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"anwesenheit/internal/core"
	"anwesenheit/internal/ledger"
	applog "anwesenheit/internal/log"
	"anwesenheit/internal/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	svc := ledger.NewService(repo, 0, core.Money{})
	srv := NewServer(":0", svc, applog.New(applog.DefaultConfig()))
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var payload map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp, payload
}

func createEmployee(t *testing.T, ts *httptest.Server, name, rate string) int64 {
	t.Helper()
	resp, payload := doJSON(t, http.MethodPost, ts.URL+"/api/employees",
		`{"name":"`+name+`","rate":"`+rate+`"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create employee: status %d", resp.StatusCode)
	}
	return int64(payload["id"].(float64))
}

func TestCreateAndGetEmployee(t *testing.T) {
	ts := newTestServer(t)

	id := createEmployee(t, ts, "Mitarbeiter 1", "120")

	resp, payload := doJSON(t, http.MethodGet, ts.URL+"/api/employees/"+itoa(id), "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get employee: status %d", resp.StatusCode)
	}
	if payload["name"] != "Mitarbeiter 1" {
		t.Fatalf("unexpected name %v", payload["name"])
	}
	rate := payload["rate"].(map[string]any)
	if rate["cents"].(float64) != 12000 || rate["display"] != "120,00 €" {
		t.Fatalf("unexpected rate %v", rate)
	}
}

func TestCreateEmployeeEmptyName(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/employees", `{"name":"  ","rate":"120"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestGetAbsentEmployeeIs404(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/employees/999", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUpsertEntryAndMonthReport(t *testing.T) {
	ts := newTestServer(t)
	id := createEmployee(t, ts, "Mitarbeiter 1", "120")

	resp, first := doJSON(t, http.MethodPut,
		ts.URL+"/api/employees/"+itoa(id)+"/entries/2026-02-03",
		`{"present":true,"payment":"50"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upsert: status %d", resp.StatusCode)
	}

	// Same day again: the entry id must be stable.
	resp, second := doJSON(t, http.MethodPut,
		ts.URL+"/api/employees/"+itoa(id)+"/entries/2026-02-03",
		`{"present":true,"payment":"70"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second upsert: status %d", resp.StatusCode)
	}
	if first["id"] != second["id"] {
		t.Fatalf("entry id changed: %v then %v", first["id"], second["id"])
	}

	resp, report := doJSON(t, http.MethodGet,
		ts.URL+"/api/employees/"+itoa(id)+"/months/2026/2", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("month report: status %d", resp.StatusCode)
	}

	entries := report["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	balance := report["balance"].(map[string]any)
	if balance["daysPresent"].(float64) != 1 {
		t.Fatalf("days present %v, want 1", balance["daysPresent"])
	}
	open := balance["open"].(map[string]any)
	if open["cents"].(float64) != 5000 || open["display"] != "50,00 €" {
		t.Fatalf("unexpected open balance %v", open)
	}
}

func TestUpsertEntryMalformedPaymentBecomesZero(t *testing.T) {
	ts := newTestServer(t)
	id := createEmployee(t, ts, "Mitarbeiter 1", "120")

	resp, _ := doJSON(t, http.MethodPut,
		ts.URL+"/api/employees/"+itoa(id)+"/entries/2026-02-03",
		`{"present":true,"payment":"abc"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("malformed payment must not be rejected, got %d", resp.StatusCode)
	}

	_, report := doJSON(t, http.MethodGet,
		ts.URL+"/api/employees/"+itoa(id)+"/months/2026/2", "")
	paid := report["balance"].(map[string]any)["paid"].(map[string]any)
	if paid["cents"].(float64) != 0 {
		t.Fatalf("malformed payment should parse to 0, got %v", paid)
	}
}

func TestUpsertEntryBadDate(t *testing.T) {
	ts := newTestServer(t)
	id := createEmployee(t, ts, "Mitarbeiter 1", "120")

	resp, _ := doJSON(t, http.MethodPut,
		ts.URL+"/api/employees/"+itoa(id)+"/entries/03.02.2026",
		`{"present":true,"payment":"0"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for malformed date, got %d", resp.StatusCode)
	}
}

func TestDeleteEmployeeCascade(t *testing.T) {
	ts := newTestServer(t)
	id := createEmployee(t, ts, "Mitarbeiter 1", "120")

	if resp, _ := doJSON(t, http.MethodPut,
		ts.URL+"/api/employees/"+itoa(id)+"/entries/2026-02-03",
		`{"present":true,"payment":"0"}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("upsert failed: %d", resp.StatusCode)
	}

	resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/api/employees/"+itoa(id), "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: status %d", resp.StatusCode)
	}

	resp, report := doJSON(t, http.MethodGet,
		ts.URL+"/api/employees/"+itoa(id)+"/months/2026/2", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("month report after delete: status %d", resp.StatusCode)
	}
	if entries := report["entries"].([]any); len(entries) != 0 {
		t.Fatalf("cascade left %d entries", len(entries))
	}
}

func TestMonthOverview(t *testing.T) {
	ts := newTestServer(t)
	first := createEmployee(t, ts, "Mitarbeiter 1", "100")
	second := createEmployee(t, ts, "Mitarbeiter 2", "200")

	doJSON(t, http.MethodPut, ts.URL+"/api/employees/"+itoa(first)+"/entries/2026-02-02",
		`{"present":true,"payment":"100"}`)
	doJSON(t, http.MethodPut, ts.URL+"/api/employees/"+itoa(second)+"/entries/2026-02-02",
		`{"present":true,"payment":"300"}`)

	resp, ov := doJSON(t, http.MethodGet, ts.URL+"/api/overview/2026/2", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("overview: status %d", resp.StatusCode)
	}
	if rows := ov["rows"].([]any); len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	total := ov["total"].(map[string]any)
	open := total["open"].(map[string]any)
	if open["cents"].(float64) != -10000 {
		t.Fatalf("total open %v, want -10000 (overpaid stays negative)", open)
	}
	if open["display"] != "-100,00 €" {
		t.Fatalf("unexpected display %v", open["display"])
	}
}

func TestMonthOverviewInvalidMonth(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/overview/2026/13", "")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
