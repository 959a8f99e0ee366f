package order

import "github.com/google/uuid"

// Item is an immutable order line. Equality is by value.
type Item struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
}

func (i Item) LineTotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

func TotalPrice(items []Item) float64 {
	var total float64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}
