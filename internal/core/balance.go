package core

// Balance is the derived settlement state for one employee and period.
// It is computed on demand and never stored.
type Balance struct {
	DaysPresent int
	Due         Money // rate × days present
	Paid        Money // sum of payments, present or not
	Open        Money // due − paid; negative when overpaid
}

// Aggregate reduces a period's entries to a Balance at the given daily
// rate. Payments count whether or not the day was marked present, so
// advances land in Paid. A zero-valued payment on a legacy or corrupt
// record simply contributes nothing.
func Aggregate(entries []Entry, rate Money) Balance {
	var b Balance
	for _, e := range entries {
		if e.Present {
			b.DaysPresent++
		}
		b.Paid.Cents += e.Payment.Cents
	}
	b.Due.Cents = rate.Cents * int64(b.DaysPresent)
	b.Open.Cents = b.Due.Cents - b.Paid.Cents
	return b
}

// Add sums two balances elementwise. Aggregate is additive over
// disjoint entry sets, so folding per-employee balances with Add yields
// the crew-wide total.
func (b Balance) Add(o Balance) Balance {
	return Balance{
		DaysPresent: b.DaysPresent + o.DaysPresent,
		Due:         Money{Cents: b.Due.Cents + o.Due.Cents},
		Paid:        Money{Cents: b.Paid.Cents + o.Paid.Cents},
		Open:        Money{Cents: b.Open.Cents + o.Open.Cents},
	}
}
