package domain

import "time"

type OrderItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// OrderSnapshot is the point-in-time copy of a finalized order handed from
// checkout to confirmation. It is never modified after it is published.
type OrderSnapshot struct {
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone"`
	Address    string      `json:"address"`
	City       string      `json:"city"`
	PostalCode string      `json:"postalCode"`
	Items      []OrderItem `json:"items"`
	Total      float64     `json:"total"`
	OrderDate  string      `json:"orderDate"`
}

// OrderDateLayout is the ISO-8601 layout used for OrderSnapshot.OrderDate.
const OrderDateLayout = "2006-01-02T15:04:05.000Z07:00"

func (s OrderSnapshot) PlacedAt() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s.OrderDate)
}
