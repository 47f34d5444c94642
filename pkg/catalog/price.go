package catalog

import "github.com/shopspring/decimal"

// TotalPrice sums the selected variant price of every part.
func TotalPrice(m *Model) decimal.Decimal {
	total := decimal.Zero
	for _, p := range m.parts {
		for _, v := range p.Variants {
			if v.Selected {
				total = total.Add(v.Price)
			}
		}
	}
	return total
}

// FormatPrice renders a price with a dollar sign and two decimals.
func FormatPrice(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
