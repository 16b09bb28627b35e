package gridbot

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ladder is the computed set of price levels bracketing the current price,
// together with the balance each side of the grid requires.
type ladder struct {
	Buys  []decimal.Decimal
	Sells []decimal.Decimal

	// RequiredBase is the base-currency amount the sell side consumes.
	RequiredBase decimal.Decimal
	// RequiredQuote is the quote-currency amount the buy side consumes;
	// each buy order costs order amount times its price level.
	RequiredQuote decimal.Decimal
}

// computeLadder derives the grid levels for the given market price. The
// price is assumed to lie within [lower, upper]; the step between adjacent
// levels must come out positive.
func computeLadder(lower, upper, amount, price decimal.Decimal, grids int64) (ladder, error) {
	if grids <= 0 {
		return ladder{}, fmt.Errorf("number of grids must be positive, got %d", grids)
	}

	step := upper.Sub(lower).Div(decimal.NewFromInt(grids))
	if !step.IsPositive() {
		return ladder{}, fmt.Errorf("grid step must be positive, got %s", step)
	}

	numSells := upper.Sub(price).Div(step).Floor().IntPart()
	numBuys := price.Sub(lower).Div(step).Floor().IntPart()

	var lad ladder
	for i := int64(1); i <= numSells; i++ {
		lad.Sells = append(lad.Sells, price.Add(step.Mul(decimal.NewFromInt(i))))
	}
	for i := int64(1); i <= numBuys; i++ {
		lad.Buys = append(lad.Buys, price.Sub(step.Mul(decimal.NewFromInt(i))))
	}

	lad.RequiredBase = amount.Mul(decimal.NewFromInt(numSells))
	lad.RequiredQuote = decimal.Zero
	for _, level := range lad.Buys {
		lad.RequiredQuote = lad.RequiredQuote.Add(amount.Mul(level))
	}

	return lad, nil
}
