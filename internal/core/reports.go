package core

import (
	"sort"
	"time"
)

// CategoryAmount is an expense total aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthFlow holds income and expense totals for one calendar month.
type MonthFlow struct {
	Month   string // e.g. "Jan 24"
	Income  Money
	Expense Money
}

// ModeTotals is the gross transaction volume per payment channel.
type ModeTotals struct {
	Cash   Money
	Online Money
}

// SpendingByCategory sums expense amounts per category, largest first.
// Transactions without a category are skipped.
func SpendingByCategory(transactions []Transaction) []CategoryAmount {
	sums := make(map[string]int64)
	for _, t := range transactions {
		if t.Type != Expense || t.Category == "" {
			continue
		}
		sums[t.Category] += t.Amount.Cents
	}

	out := make([]CategoryAmount, 0, len(sums))
	for name, cents := range sums {
		out = append(out, CategoryAmount{Name: name, Amount: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MonthlyFlow buckets income and expense totals by calendar month in
// chronological order. Transactions whose date does not parse are skipped;
// dates are validated at insert time, so this only guards legacy rows.
func MonthlyFlow(transactions []Transaction) []MonthFlow {
	type bucket struct {
		when            time.Time
		income, expense int64
	}
	buckets := make(map[string]*bucket)
	for _, t := range transactions {
		d, err := time.Parse(DateLayout, t.Date)
		if err != nil {
			continue
		}
		key := d.Format("Jan 06")
		b, ok := buckets[key]
		if !ok {
			b = &bucket{when: time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)}
			buckets[key] = b
		}
		if t.Type == Income {
			b.income += t.Amount.Cents
		} else {
			b.expense += t.Amount.Cents
		}
	}

	out := make([]MonthFlow, 0, len(buckets))
	for key, b := range buckets {
		out = append(out, MonthFlow{
			Month:   key,
			Income:  Money{Cents: b.income},
			Expense: Money{Cents: b.expense},
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return buckets[out[i].Month].when.Before(buckets[out[j].Month].when)
	})
	return out
}

// VolumeByMode sums gross transaction amounts (income and expense alike)
// per payment channel.
func VolumeByMode(transactions []Transaction) ModeTotals {
	var totals ModeTotals
	for _, t := range transactions {
		if t.Mode == Cash {
			totals.Cash.Cents += t.Amount.Cents
		} else {
			totals.Online.Cents += t.Amount.Cents
		}
	}
	return totals
}
