package handoff

import (
	"github.com/fjod/kasikota/internal/domain"
)

// ReceiptDateLayout matches the long en-ZA date, e.g. 14 March 2025.
const ReceiptDateLayout = "2 January 2006"

type ReceiptLine struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Subtotal string `json:"subtotal"`
}

// Receipt is the confirmation view model built from an order snapshot.
type Receipt struct {
	OrderNumber string        `json:"orderNumber"`
	OrderDate   string        `json:"orderDate"`
	Name        string        `json:"name"`
	Address     string        `json:"address"`
	City        string        `json:"city"`
	PostalCode  string        `json:"postalCode"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone"`
	Items       []ReceiptLine `json:"items"`
	Total       string        `json:"total"`
}

func NewReceipt(orderNumber string, s domain.OrderSnapshot) Receipt {
	date := s.OrderDate
	if at, err := s.PlacedAt(); err == nil {
		date = at.Format(ReceiptDateLayout)
	}

	items := make([]ReceiptLine, 0, len(s.Items))
	for _, it := range s.Items {
		line := domain.BasketLine{Price: it.Price, Quantity: it.Quantity}
		items = append(items, ReceiptLine{
			ID:       it.ID,
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    domain.FormatRand(domain.Money(it.Price)),
			Subtotal: domain.FormatRand(line.Subtotal()),
		})
	}

	return Receipt{
		OrderNumber: orderNumber,
		OrderDate:   date,
		Name:        s.Name,
		Address:     s.Address,
		City:        s.City,
		PostalCode:  s.PostalCode,
		Email:       s.Email,
		Phone:       s.Phone,
		Items:       items,
		Total:       domain.FormatRand(domain.Money(s.Total)),
	}
}
