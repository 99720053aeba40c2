package core

// Summary is the aggregate view of a user's finances. Balances come from
// the user record (they are the maintained cache), spending splits are
// folded over the transaction list.
//
// The *Left fields mirror the totals one-to-one; they are kept as aliases
// for presentation-layer compatibility rather than a net-of-spending figure.
type Summary struct {
	TotalAmount   Money
	TotalCash     Money
	TotalOnline   Money
	AmountSpent   Money
	CashSpent     Money
	OnlineSpent   Money
	AmountLeft    Money
	CashLeft      Money
	OnlineLeft    Money
	OnlineMoneyIn Money
}

// BuildSummary derives the financial summary for a user. Running balances
// are taken from the user record, never recomputed from the transactions.
func BuildSummary(user User, transactions []Transaction) Summary {
	var cashSpent, onlineSpent, onlineMoneyIn int64
	for _, t := range transactions {
		switch {
		case t.Type == Expense && t.Mode == Cash:
			cashSpent += t.Amount.Cents
		case t.Type == Expense && t.Mode == Online:
			onlineSpent += t.Amount.Cents
		case t.Type == Income && t.Mode == Online:
			onlineMoneyIn += t.Amount.Cents
		}
	}

	total := user.CashBalance.Cents + user.OnlineBalance.Cents

	return Summary{
		TotalAmount:   Money{Cents: total},
		TotalCash:     user.CashBalance,
		TotalOnline:   user.OnlineBalance,
		AmountSpent:   Money{Cents: cashSpent + onlineSpent},
		CashSpent:     Money{Cents: cashSpent},
		OnlineSpent:   Money{Cents: onlineSpent},
		AmountLeft:    Money{Cents: total},
		CashLeft:      user.CashBalance,
		OnlineLeft:    user.OnlineBalance,
		OnlineMoneyIn: Money{Cents: onlineMoneyIn},
	}
}
