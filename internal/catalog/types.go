package catalog

import (
	"encoding/json"
	"fmt"
)

// Item is one ingredient the store knows about.
type Item struct {
	IngredientID    string  `json:"ingredientId" jsonschema:"required"`
	Name            string  `json:"name" jsonschema:"required"`
	Unit            string  `json:"unit"`
	DefaultQuantity float64 `json:"defaultQuantity"`
	Aisle           string  `json:"aisle"`
	ImageURL        string  `json:"imageUrl"`
	DefaultOptionID string  `json:"defaultOptionId"`
	Category        string  `json:"category"`
}

// Option is a purchasable SKU for an ingredient. Size is the package spec,
// e.g. "16 oz".
type Option struct {
	IngredientID string  `json:"ingredientId" jsonschema:"required"`
	OptionID     string  `json:"optionId" jsonschema:"required"`
	DisplayName  string  `json:"displayName"`
	Size         string  `json:"size"`
	UnitPrice    float64 `json:"unitPrice"`
	IsOrganic    bool    `json:"isOrganic"`
	ImageURL     string  `json:"imageUrl"`
	Category     string  `json:"category"`
}

// ItemsDocument is the wrapped items payload.
type ItemsDocument struct {
	Items []Item `json:"items" jsonschema:"required"`
}

// OptionsDocument is the wrapped options payload.
type OptionsDocument struct {
	Options []Option `json:"options" jsonschema:"required"`
}

// ParseItems unmarshals items from wrapped or bare array shapes.
func ParseItems(data []byte) ([]Item, error) {
	var doc ItemsDocument
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc.Items, nil
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal items payload: %w", err)
	}
	return items, nil
}

// ParseOptions unmarshals options from wrapped or bare array shapes.
func ParseOptions(data []byte) ([]Option, error) {
	var doc OptionsDocument
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc.Options, nil
	}

	var options []Option
	if err := json.Unmarshal(data, &options); err != nil {
		return nil, fmt.Errorf("unmarshal options payload: %w", err)
	}
	return options, nil
}
