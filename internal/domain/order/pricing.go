package order

import (
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/storefront/internal/models"
)

type Line struct {
	VariantID uint
	Quantity  int
}

// MergeLines sums quantities of repeated variants, keeping first-seen order.
func MergeLines(lines []Line) []Line {
	idx := make(map[uint]int, len(lines))
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if i, ok := idx[l.VariantID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		idx[l.VariantID] = len(out)
		out = append(out, l)
	}
	return out
}

func Subtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// NewDetail snapshots the variant price.
func NewDetail(v *models.ProductVariant, quantity int) models.OrderDetail {
	return models.OrderDetail{
		VariantID: v.ID,
		Quantity:  quantity,
		UnitPrice: v.Price,
		Subtotal:  Subtotal(v.Price, quantity),
	}
}

func Total(details []models.OrderDetail) decimal.Decimal {
	total := decimal.Zero
	for _, d := range details {
		total = total.Add(d.Subtotal)
	}
	return total
}
