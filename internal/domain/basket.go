package domain

import "github.com/shopspring/decimal"

// BasketLine is one catalog item plus the quantity selected for it.
// The json names match the records written by the storefront front end.
type BasketLine struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	ImageRef string  `json:"imageUrl"`
}

func (l BasketLine) Subtotal() decimal.Decimal {
	return Money(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Basket is insertion ordered. Totals are always derived from the lines.
type Basket struct {
	Lines []BasketLine
}

type Summary struct {
	Total decimal.Decimal
	Count int
}

func (b Basket) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (b Basket) Count() int {
	count := 0
	for _, l := range b.Lines {
		count += l.Quantity
	}
	return count
}

func (b Basket) Summary() Summary {
	return Summary{Total: b.Total(), Count: b.Count()}
}

func (b Basket) IsEmpty() bool {
	return len(b.Lines) == 0
}
