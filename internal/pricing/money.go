package pricing

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimals kept for currency amounts.
const MoneyPlaces = 2

// RoundMoney rounds half away from zero to the smallest currency unit.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// SplitInstallments rounds the per-installment amount half up and restates the
// total as per * n, so every installment is equal and the identity holds exactly.
func SplitInstallments(total decimal.Decimal, n int) (per, restated decimal.Decimal) {
	if n < 1 {
		return decimal.Zero, decimal.Zero
	}
	count := decimal.NewFromInt(int64(n))
	per = total.DivRound(count, MoneyPlaces)
	return per, per.Mul(count)
}
