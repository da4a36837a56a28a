package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/fjod/kasikota/internal/domain"
)

//go:embed products.json
var embeddedProducts []byte

// JSONSource reads a catalog in the storefront's products.json format.
type JSONSource struct {
	data []byte
}

func NewJSONSource(data []byte) JSONSource {
	return JSONSource{data: data}
}

// Embedded returns the catalog compiled into the binary.
func Embedded() JSONSource {
	return NewJSONSource(embeddedProducts)
}

func (j JSONSource) Items(context.Context) ([]domain.CatalogItem, error) {
	var items []domain.CatalogItem
	if err := json.Unmarshal(j.data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal catalog failed: %w", err)
	}
	return items, nil
}
