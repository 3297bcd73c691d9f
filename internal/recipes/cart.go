package recipes

import (
	"encoding/json"
	"slices"
)

type CartEntry struct {
	Title    string `json:"title"`
	Servings int    `json:"servings"`
}

// Cart maps recipe titles to servings, remembering insertion order. A title
// never holds zero servings; setting zero removes it.
type Cart struct {
	titles   []string
	servings map[string]int
}

func NewCart() *Cart {
	return &Cart{servings: make(map[string]int)}
}

// Set puts n servings of title in the cart, removing it when n <= 0.
func (c *Cart) Set(title string, n int) {
	if n <= 0 {
		c.remove(title)
		return
	}
	if _, ok := c.servings[title]; !ok {
		c.titles = append(c.titles, title)
	}
	c.servings[title] = n
}

// Add changes servings by delta and returns the new count.
func (c *Cart) Add(title string, delta int) int {
	n := c.servings[title] + delta
	c.Set(title, n)
	return max(n, 0)
}

func (c *Cart) remove(title string) {
	if _, ok := c.servings[title]; !ok {
		return
	}
	delete(c.servings, title)
	c.titles = slices.DeleteFunc(c.titles, func(t string) bool { return t == title })
}

func (c *Cart) Servings(title string) int {
	return c.servings[title]
}

func (c *Cart) Len() int {
	return len(c.titles)
}

// Entries lists the cart in insertion order.
func (c *Cart) Entries() []CartEntry {
	out := make([]CartEntry, 0, len(c.titles))
	for _, t := range c.titles {
		out = append(out, CartEntry{Title: t, Servings: c.servings[t]})
	}
	return out
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Entries())
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var entries []CartEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	c.titles = nil
	c.servings = make(map[string]int, len(entries))
	for _, e := range entries {
		c.Set(e.Title, e.Servings)
	}
	return nil
}

// TotalNutrition sums per-serving nutrition times servings for every recipe in
// the cart that the book knows.
func TotalNutrition(c *Cart, b *Book) Nutrition {
	var total Nutrition
	for _, e := range c.Entries() {
		r, ok := b.Recipe(e.Title)
		if !ok {
			continue
		}
		total = total.Add(r.Nutrition.Scale(float64(e.Servings)))
	}
	return total
}
