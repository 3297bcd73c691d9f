package diet

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"basket/internal/shopping"
	"basket/internal/substitutes"
)

// ConflictType is ordered by priority: lower values win.
type ConflictType int

const (
	AllergenConflict ConflictType = iota
	VeganConflict
	VegetarianConflict
	GlutenConflict
)

func (t ConflictType) String() string {
	switch t {
	case AllergenConflict:
		return "allergen"
	case VeganConflict:
		return "vegan"
	case VegetarianConflict:
		return "vegetarian"
	case GlutenConflict:
		return "gluten"
	default:
		return fmt.Sprintf("ConflictType(%d)", int(t))
	}
}

func (t ConflictType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ConflictType) UnmarshalText(b []byte) error {
	for _, c := range []ConflictType{AllergenConflict, VeganConflict, VegetarianConflict, GlutenConflict} {
		if c.String() == string(b) {
			*t = c
			return nil
		}
	}
	return fmt.Errorf("unknown conflict type %q", b)
}

// Conflict is a list entry that violates the profile.
type Conflict struct {
	ID           string                  `json:"id"`
	IngredientID string                  `json:"ingredientId"` // entry key
	Name         string                  `json:"name"`
	Type         ConflictType            `json:"type"`
	Reason       string                  `json:"reason"`
	Allergens    []Allergen              `json:"allergens,omitempty"`
	Resolved     bool                    `json:"resolved"`
	Candidates   []substitutes.Candidate `json:"candidates"`
}

// CanReplace is false when there is nothing to substitute, leaving zero-out
// as the only resolution.
func (c Conflict) CanReplace() bool {
	return len(c.Candidates) > 0
}

var conflictNamespace = uuid.MustParse("5b0f2a52-7c1e-4b8e-9a43-3d6f0e9c2a17")

func conflictID(key string, t ConflictType) string {
	return uuid.NewSHA1(conflictNamespace, []byte(key+"/"+t.String())).String()
}

// Substitutes supplies replacement candidates for a conflict.
type Substitutes interface {
	Lookup(kind substitutes.Kind, ingredientID string) []substitutes.Candidate
	ForAllergens(allergens []string, ingredientID string) []substitutes.Candidate
}

type Detector struct {
	subs Substitutes
}

// NewDetector returns a detector; subs may be nil, leaving conflicts without
// candidates.
func NewDetector(subs Substitutes) *Detector {
	return &Detector{subs: subs}
}

// Detect returns at most one conflict per entry, in entry order.
func (d *Detector) Detect(entries []shopping.Entry, p Profile) []Conflict {
	var out []Conflict
	for _, e := range entries {
		if c, ok := d.Check(e, p); ok {
			out = append(out, c)
		}
	}
	return out
}

// Check evaluates one entry: allergens, then vegan, vegetarian and gluten.
// The first violation found is the only one reported. A substituted entry is
// judged by the ingredient it replaced, so its conflict stays visible and can
// be re-substituted or zeroed.
func (d *Detector) Check(e shopping.Entry, p Profile) (Conflict, bool) {
	name := strings.ToLower(subject(e))

	if matched := matchedAllergens(name, p.Allergens); len(matched) > 0 {
		title := cases.Title(language.English)
		labels := lo.Map(matched, func(a Allergen, _ int) string { return title.String(string(a)) })
		c := d.conflict(e, AllergenConflict, "Contains "+strings.Join(labels, ", "))
		c.Allergens = matched
		if d.subs != nil {
			c.Candidates = d.subs.ForAllergens(lo.Map(matched, func(a Allergen, _ int) string { return string(a) }), e.Key())
		}
		return c, true
	}

	switch {
	case p.Vegan && containsAny(name, nonVeganKeywords):
		return d.withCandidates(d.conflict(e, VeganConflict, "Not vegan"), substitutes.Vegan, e), true
	case p.Vegetarian && containsAny(name, nonVegetarianKeywords):
		return d.withCandidates(d.conflict(e, VegetarianConflict, "Not vegetarian"), substitutes.Vegetarian, e), true
	case p.GlutenFree && containsAny(name, glutenKeywords):
		return d.withCandidates(d.conflict(e, GlutenConflict, "Contains gluten"), substitutes.GlutenFree, e), true
	}
	return Conflict{}, false
}

func (d *Detector) conflict(e shopping.Entry, t ConflictType, reason string) Conflict {
	return Conflict{
		ID:           conflictID(e.Key(), t),
		IngredientID: e.Key(),
		Name:         subject(e),
		Type:         t,
		Reason:       reason,
	}
}

func (d *Detector) withCandidates(c Conflict, kind substitutes.Kind, e shopping.Entry) Conflict {
	if d.subs != nil {
		c.Candidates = d.subs.Lookup(kind, e.Key())
	}
	return c
}

// subject is the name conflicts are checked against.
func subject(e shopping.Entry) string {
	if e.Substituted && e.OriginalName != "" {
		return e.OriginalName
	}
	return e.Name
}

func matchedAllergens(name string, allergens []Allergen) []Allergen {
	var out []Allergen
	for _, a := range lo.Uniq(allergens) {
		if containsAny(name, allergenKeywords[a]) {
			out = append(out, a)
		}
	}
	return out
}

func containsAny(name string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}
