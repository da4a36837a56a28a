package domain

// CatalogItem is a purchasable item as supplied by the catalog. It is never
// mutated once loaded.
type CatalogItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category,omitempty"`
	Brand       string  `json:"brand,omitempty"`
	ImageRef    string  `json:"imageUrl"`
}
