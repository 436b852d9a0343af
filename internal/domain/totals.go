package domain

type Totals struct {
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"delivery_fee"`
	Total       int64 `json:"total"`
}

// ComputeTotals sums item prices and adds the delivery fee for area.
func ComputeTotals(items []Product, area Area) Totals {
	var subtotal int64
	for _, item := range items {
		subtotal += item.Amount()
	}
	fee := DeliveryFee(area)
	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal + fee,
	}
}
