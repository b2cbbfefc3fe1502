package detector

// feeRateBps is the exchange taker fee rate in basis points of notional.
// Source: https://kalshi.com/docs/kalshi-fee-schedule.pdf
const feeRateBps = 7

// TakerFeeCents returns the exchange taker fee in cents for one leg of
// count contracts priced at priceCents. The schedule rounds each leg up
// to the next whole cent, so multi-leg totals must sum per-leg fees
// rather than apply the ceiling to aggregate notional.
func TakerFeeCents(count, priceCents int64) int64 {
	if priceCents <= 0 || priceCents >= 100 {
		return 0
	}
	numerator := feeRateBps * count * priceCents * (100 - priceCents)
	return (numerator + 9_999) / 10_000
}
