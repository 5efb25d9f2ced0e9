package core

import "testing"

func entry(date string, present bool, paymentCents int64) Entry {
	d, _ := ParseDate(date)
	return Entry{Date: d, Present: present, Payment: Money{Cents: paymentCents}}
}

func TestAggregate(t *testing.T) {
	rate := Money{Cents: 12000} // 120 €/day

	entries := []Entry{
		entry("2026-02-02", true, 5000),
		entry("2026-02-03", true, 0),
		entry("2026-02-04", false, 10000), // advance on an absent day
		entry("2026-02-05", false, 0),     // explicitly recorded empty day
	}

	b := Aggregate(entries, rate)
	if b.DaysPresent != 2 {
		t.Fatalf("days present = %d, want 2", b.DaysPresent)
	}
	if b.Due.Cents != 24000 {
		t.Fatalf("due = %d, want 24000", b.Due.Cents)
	}
	if b.Paid.Cents != 15000 {
		t.Fatalf("paid = %d, want 15000", b.Paid.Cents)
	}
	if b.Open.Cents != 9000 {
		t.Fatalf("open = %d, want 9000", b.Open.Cents)
	}
}

func TestAggregateEmpty(t *testing.T) {
	b := Aggregate(nil, Money{Cents: 12000})
	if b.DaysPresent != 0 || b.Due.Cents != 0 || b.Paid.Cents != 0 || b.Open.Cents != 0 {
		t.Fatalf("empty aggregate should be all zero, got %+v", b)
	}
}

func TestAggregateOverpaid(t *testing.T) {
	rate := Money{Cents: 10000}
	entries := []Entry{
		entry("2026-03-02", true, 25000),
	}
	b := Aggregate(entries, rate)
	if b.Open.Cents != -15000 {
		t.Fatalf("open = %d, want -15000 (overpayment stays negative)", b.Open.Cents)
	}
	if !b.Open.IsNegative() {
		t.Fatalf("expected negative open balance")
	}
}

// Aggregating two disjoint entry sets and summing the results must equal
// aggregating their union.
func TestAggregateAdditive(t *testing.T) {
	rate := Money{Cents: 8000}
	first := []Entry{
		entry("2026-01-05", true, 4000),
		entry("2026-01-06", false, 2000),
	}
	second := []Entry{
		entry("2026-01-07", true, 0),
		entry("2026-01-08", true, 20000),
	}

	sum := Aggregate(first, rate).Add(Aggregate(second, rate))
	union := Aggregate(append(append([]Entry{}, first...), second...), rate)

	if sum != union {
		t.Fatalf("additivity violated: sum %+v, union %+v", sum, union)
	}
}
