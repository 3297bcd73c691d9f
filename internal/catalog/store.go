// Package catalog indexes the product catalog: ingredient items and the SKUs
// (options) that can be bought for them.
package catalog

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"
)

// Match is a catalog hit for an ingredient. HasOption is false when the item
// has no purchasable SKU.
type Match struct {
	Item      Item
	Option    Option
	HasOption bool
}

// Price is the chosen SKU's unit price, zero without one.
func (m Match) Price() float64 {
	if !m.HasOption {
		return 0
	}
	return m.Option.UnitPrice
}

// Image prefers the SKU image over the item image.
func (m Match) Image() string {
	if m.HasOption && m.Option.ImageURL != "" {
		return m.Option.ImageURL
	}
	return m.Item.ImageURL
}

type optionRef struct {
	ingredientID string
	index        int
}

// Store is an immutable in-memory catalog. Safe for concurrent reads.
type Store struct {
	items   map[string]Item
	order   []string
	options map[string][]Option

	byName     map[string]string
	byCompact  map[string]string
	byDisplay  map[string]optionRef
	byCompactD map[string]optionRef
}

// NewStore indexes items and options. Options for unknown ingredients are kept
// out of the index and logged; the first item wins on duplicate ids.
func NewStore(items []Item, options []Option) *Store {
	s := &Store{
		items:      make(map[string]Item, len(items)),
		options:    make(map[string][]Option),
		byName:     make(map[string]string),
		byCompact:  make(map[string]string),
		byDisplay:  make(map[string]optionRef),
		byCompactD: make(map[string]optionRef),
	}
	for _, it := range items {
		if it.IngredientID == "" {
			slog.Warn("skipping catalog item without id", "name", it.Name)
			continue
		}
		if _, dup := s.items[it.IngredientID]; dup {
			slog.Warn("duplicate catalog item", "ingredientId", it.IngredientID)
			continue
		}
		s.items[it.IngredientID] = it
		s.order = append(s.order, it.IngredientID)
		indexOnce(s.byName, Normalize(it.Name), it.IngredientID)
		indexOnce(s.byCompact, Compact(it.Name), it.IngredientID)
	}
	for _, opt := range options {
		if _, ok := s.items[opt.IngredientID]; !ok {
			slog.Warn("option references unknown ingredient", "optionId", opt.OptionID, "ingredientId", opt.IngredientID)
			continue
		}
		ref := optionRef{ingredientID: opt.IngredientID, index: len(s.options[opt.IngredientID])}
		s.options[opt.IngredientID] = append(s.options[opt.IngredientID], opt)
		if opt.DisplayName == "" {
			continue
		}
		if _, ok := s.byDisplay[Normalize(opt.DisplayName)]; !ok {
			s.byDisplay[Normalize(opt.DisplayName)] = ref
		}
		if _, ok := s.byCompactD[Compact(opt.DisplayName)]; !ok {
			s.byCompactD[Compact(opt.DisplayName)] = ref
		}
	}
	return s
}

func indexOnce(m map[string]string, key, id string) {
	if key == "" {
		return
	}
	if _, ok := m[key]; !ok {
		m[key] = id
	}
}

// Load reads the items and options documents. options may be nil for a
// catalog without SKUs.
func Load(items, options io.Reader) (*Store, error) {
	itemData, err := io.ReadAll(items)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	parsedItems, err := ParseItems(itemData)
	if err != nil {
		return nil, err
	}
	if options == nil {
		return NewStore(parsedItems, nil), nil
	}
	optionData, err := io.ReadAll(options)
	if err != nil {
		return nil, fmt.Errorf("read options: %w", err)
	}
	parsedOptions, err := ParseOptions(optionData)
	if err != nil {
		return nil, err
	}
	return NewStore(parsedItems, parsedOptions), nil
}

// Items returns every item in load order.
func (s *Store) Items() []Item {
	out := make([]Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// Options returns all SKUs for an ingredient id.
func (s *Store) Options(id string) []Option {
	return append([]Option(nil), s.options[id]...)
}

// DefaultOption is the item's defaultOptionId SKU, falling back to its first SKU.
func (s *Store) DefaultOption(id string) (Option, bool) {
	opts := s.options[id]
	if len(opts) == 0 {
		return Option{}, false
	}
	if it, ok := s.items[id]; ok && it.DefaultOptionID != "" {
		for _, o := range opts {
			if o.OptionID == it.DefaultOptionID {
				return o, true
			}
		}
	}
	return opts[0], true
}

// Lookup resolves an ingredient id with its default SKU.
func (s *Store) Lookup(id string) (Match, bool) {
	it, ok := s.items[id]
	if !ok {
		return Match{}, false
	}
	opt, hasOpt := s.DefaultOption(id)
	return Match{Item: it, Option: opt, HasOption: hasOpt}, true
}

// Find resolves an ingredient by name: item name, whitespace-stripped item
// name, then SKU display name (which also selects that SKU).
func (s *Store) Find(name string) (Match, bool) {
	norm, compact := Normalize(name), Compact(name)
	if norm == "" {
		return Match{}, false
	}
	if id, ok := s.byName[norm]; ok {
		return s.Lookup(id)
	}
	if id, ok := s.byCompact[compact]; ok {
		return s.Lookup(id)
	}
	ref, ok := s.byDisplay[norm]
	if !ok {
		ref, ok = s.byCompactD[compact]
	}
	if !ok {
		return Match{}, false
	}
	return Match{
		Item:      s.items[ref.ingredientID],
		Option:    s.options[ref.ingredientID][ref.index],
		HasOption: true,
	}, true
}

// Normalize lowercases and trims a name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Compact is Normalize with all whitespace removed.
func Compact(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, Normalize(name))
}

// FallbackID derives a stable ingredient id for names the catalog doesn't know:
// lowercase, with runs of non-alphanumerics collapsed to '_'.
func FallbackID(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range Normalize(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

// ResolveID maps a name to the id the list builder would give it: the catalog
// id when Find succeeds, the fallback id otherwise.
func (s *Store) ResolveID(name string) string {
	if m, ok := s.Find(name); ok {
		return m.Item.IngredientID
	}
	return FallbackID(name)
}
