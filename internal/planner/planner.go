// Package planner owns the cart, profile, mode and derived shopping list, and
// runs every user operation as one recompute-then-publish step.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"basket/internal/diet"
	"basket/internal/prefs"
	"basket/internal/recipes"
	"basket/internal/resolve"
	"basket/internal/shopping"
	"basket/internal/substitutes"
)

var (
	ErrUnknownIngredient = errors.New("ingredient not on the list")
	ErrUnknownRecipe     = errors.New("unknown recipe")
	ErrNoConflict        = errors.New("ingredient has no conflict")
	ErrUnknownCandidate  = errors.New("not a substitute for this conflict")
	ErrWrongMode         = errors.New("operation needs preference mode")
	ErrNotResolved       = errors.New("ingredient has no resolution")
	ErrInvalidQuantity   = errors.New("quantity must not be negative")
)

type Deps struct {
	Book        *recipes.Book
	Catalog     shopping.Catalog
	Substitutes diet.Substitutes
	Store       *prefs.Store
	Profile     diet.Profile
}

type Planner struct {
	mu sync.Mutex

	book     *recipes.Book
	builder  *shopping.Builder
	detector *diet.Detector
	resolver *resolve.Resolver
	store    *prefs.Store

	cart        *recipes.Cart
	profile     diet.Profile
	mode        prefs.Mode
	resolutions map[string]prefs.Resolution

	list      []shopping.Entry
	totals    shopping.Totals
	conflicts []diet.Conflict
}

// New restores saved cart, mode and resolutions and builds the list for the
// saved mode, including the quantities last saved for it.
func New(ctx context.Context, d Deps) *Planner {
	var subs diet.Substitutes
	if d.Substitutes != nil {
		subs = stocked{subs: d.Substitutes, catalog: d.Catalog}
	}
	p := &Planner{
		book:     d.Book,
		builder:  shopping.NewBuilder(d.Catalog, d.Book),
		detector: diet.NewDetector(subs),
		resolver: resolve.New(d.Catalog),
		store:    d.Store,
		profile:  d.Profile,
	}
	p.cart = p.store.LoadCart(ctx)
	p.mode = p.store.LoadMode(ctx)
	p.resolutions = p.store.Resolutions(ctx)

	p.rebuild(ctx)
	prefs.Overlay(p.list, p.store.Snapshot(ctx, p.mode))
	p.publish()
	slog.DebugContext(ctx, "planner ready", "mode", p.mode, "recipes", p.cart.Len(), "entries", len(p.list))
	return p
}

// rebuild derives a fresh list from the cart and brings it in line with the
// current mode.
func (p *Planner) rebuild(ctx context.Context) {
	reqs := shopping.Aggregate(ctx, p.cart, p.book)
	p.list = p.builder.Build(ctx, reqs)
	if p.mode == prefs.ModePreference {
		prefs.Replay(ctx, p.list, p.resolutions, p.resolver)
		return
	}
	for i := range p.list {
		if !p.list[i].Substituted {
			continue
		}
		if err := p.resolver.Revert(&p.list[i]); err != nil {
			slog.WarnContext(ctx, "failed to revert substitution", "ingredient", p.list[i].Key(), "error", err)
		}
	}
}

// publish recomputes totals then conflicts from the current list.
func (p *Planner) publish() {
	p.totals = shopping.Summarize(p.list, recipes.TotalNutrition(p.cart, p.book))
	if p.mode != prefs.ModePreference || p.profile.Empty() {
		p.conflicts = nil
		return
	}
	p.conflicts = p.detector.Detect(p.list, p.profile)
	for i := range p.conflicts {
		p.conflicts[i].Resolved = p.resolutions[p.conflicts[i].IngredientID].Active()
	}
}

// cartChanged persists the cart, rebuilds and saves the new quantities as
// the current mode's snapshot. Entries whose needed amount did not change
// keep the quantity they had, including manual overrides.
func (p *Planner) cartChanged(ctx context.Context) error {
	if err := p.store.SaveCart(ctx, p.cart); err != nil {
		return err
	}
	prev := lo.KeyBy(p.list, func(e shopping.Entry) string { return e.Key() })
	p.rebuild(ctx)
	kept := 0
	for i := range p.list {
		e := &p.list[i]
		old, ok := prev[e.Key()]
		if ok && old.IngredientID == e.IngredientID && old.NeededText == e.NeededText && old.Quantity != e.Quantity {
			e.Quantity = old.Quantity
			kept++
		}
	}
	if kept > 0 {
		slog.DebugContext(ctx, "kept quantities across cart change", "entries", kept)
	}
	p.publish()
	return p.store.SaveSnapshot(ctx, p.mode, p.list)
}

func (p *Planner) SetServings(ctx context.Context, title string, servings int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.book.Recipe(title); !ok {
		return fmt.Errorf("set servings of %q: %w", title, ErrUnknownRecipe)
	}
	p.cart.Set(title, servings)
	return p.cartChanged(ctx)
}

// AddRecipe adds one serving of title.
func (p *Planner) AddRecipe(ctx context.Context, title string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.book.Recipe(title); !ok {
		return fmt.Errorf("add %q: %w", title, ErrUnknownRecipe)
	}
	p.cart.Add(title, 1)
	return p.cartChanged(ctx)
}

func (p *Planner) RemoveRecipe(ctx context.Context, title string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cart.Servings(title) == 0 {
		return fmt.Errorf("remove %q: %w", title, ErrUnknownRecipe)
	}
	p.cart.Set(title, 0)
	return p.cartChanged(ctx)
}

func (p *Planner) SetProfile(_ context.Context, profile diet.Profile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profile = profile
	p.publish()
}

// SetMode switches to m; already being in m is a no-op.
func (p *Planner) SetMode(ctx context.Context, m prefs.Mode) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m == p.mode {
		return nil
	}
	return p.toggle(ctx)
}

func (p *Planner) ToggleMode(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.toggle(ctx)
}

func (p *Planner) toggle(ctx context.Context) error {
	if err := p.store.SaveSnapshot(ctx, p.mode, p.list); err != nil {
		return err
	}
	next := p.mode.Other()
	if err := p.store.SaveMode(ctx, next); err != nil {
		return err
	}
	p.mode = next
	p.rebuild(ctx)
	n := prefs.Overlay(p.list, p.store.Snapshot(ctx, next))
	p.publish()
	slog.InfoContext(ctx, "switched mode", "mode", next, "restoredQuantities", n)
	return nil
}

// SetQuantity overrides the purchase quantity of the entry with key and
// saves it for the current mode.
func (p *Planner) SetQuantity(ctx context.Context, key string, qty int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if qty < 0 {
		return fmt.Errorf("set %s to %d: %w", key, qty, ErrInvalidQuantity)
	}
	e, err := p.entry(key)
	if err != nil {
		return err
	}
	e.Quantity = qty
	p.publish()
	return p.store.SaveSnapshot(ctx, p.mode, p.list)
}

// Substitute replaces the conflicting entry with one of its candidates.
func (p *Planner) Substitute(ctx context.Context, key, candidateID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, c, err := p.conflictEntry(key)
	if err != nil {
		return err
	}
	cand, ok := lo.Find(c.Candidates, func(x substitutes.Candidate) bool { return x.ID == candidateID })
	if !ok {
		return fmt.Errorf("substitute %s with %s: %w", key, candidateID, ErrUnknownCandidate)
	}

	before := e.Quantity
	originalName := e.Name
	if e.OriginalName != "" {
		originalName = e.OriginalName
	}
	if prior := p.resolutions[e.Key()]; prior.Active() {
		before = prior.OriginalQuantity
	}
	if err := p.resolver.Apply(e, cand, cand.Ratio()); err != nil {
		return fmt.Errorf("substitute %s: %w", key, err)
	}
	return p.resolved(ctx, e.Key(), prefs.Resolution{
		Type:              prefs.Replaced,
		SubstituteID:      e.IngredientID,
		SubstituteName:    e.SubstituteName,
		OriginalQuantity:  before,
		SubstitutionRatio: e.SubstitutionRatio,
		OriginalName:      originalName,
	})
}

// Zero drops the conflicting entry from the purchase.
func (p *Planner) Zero(ctx context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, c, err := p.conflictEntry(key)
	if err != nil {
		return err
	}
	r := prefs.Resolution{Type: prefs.SetToZero, OriginalQuantity: e.Quantity}
	if prior := p.resolutions[e.Key()]; prior.Active() {
		r.OriginalQuantity = prior.OriginalQuantity
	}
	// a zeroed entry replays onto the original ingredient
	if e.Substituted {
		if err := p.resolver.Revert(e); err != nil {
			return fmt.Errorf("zero %s: %w", key, err)
		}
	}
	p.resolver.SetToZero(e, c)
	return p.resolved(ctx, e.Key(), r)
}

// Unresolve undoes the resolution recorded for key.
func (p *Planner) Unresolve(ctx context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != prefs.ModePreference {
		return fmt.Errorf("unresolve %s: %w", key, ErrWrongMode)
	}
	e, err := p.entry(key)
	if err != nil {
		return err
	}
	r, ok := p.resolutions[e.Key()]
	if !ok || !r.Active() {
		return fmt.Errorf("unresolve %s: %w", key, ErrNotResolved)
	}

	if e.Substituted {
		if err := p.resolver.Revert(e); err != nil {
			return fmt.Errorf("unresolve %s: %w", key, err)
		}
	}
	if r.Type == prefs.SetToZero && r.OriginalQuantity > 0 {
		e.Quantity = r.OriginalQuantity
	}
	if err := p.store.ClearResolution(ctx, e.Key()); err != nil {
		return err
	}
	delete(p.resolutions, e.Key())
	p.publish()
	return p.store.SaveSnapshot(ctx, p.mode, p.list)
}

// Reset wipes all saved state and starts over with an empty cart in default
// mode. The profile is kept.
func (p *Planner) Reset(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.store.Reset(ctx); err != nil {
		return err
	}
	p.cart = recipes.NewCart()
	p.mode = prefs.ModeDefault
	p.resolutions = map[string]prefs.Resolution{}
	p.rebuild(ctx)
	p.publish()
	return nil
}

func (p *Planner) resolved(ctx context.Context, key string, r prefs.Resolution) error {
	if err := p.store.RecordResolution(ctx, key, r); err != nil {
		return err
	}
	p.resolutions[key] = r
	p.publish()
	return p.store.SaveSnapshot(ctx, p.mode, p.list)
}

// entry finds a list entry by key, falling back to its current ingredient id.
func (p *Planner) entry(key string) (*shopping.Entry, error) {
	for i := range p.list {
		if p.list[i].Key() == key {
			return &p.list[i], nil
		}
	}
	for i := range p.list {
		if p.list[i].IngredientID == key {
			return &p.list[i], nil
		}
	}
	return nil, fmt.Errorf("%s: %w", key, ErrUnknownIngredient)
}

func (p *Planner) conflictEntry(key string) (*shopping.Entry, *diet.Conflict, error) {
	if p.mode != prefs.ModePreference {
		return nil, nil, fmt.Errorf("resolve %s: %w", key, ErrWrongMode)
	}
	e, err := p.entry(key)
	if err != nil {
		return nil, nil, err
	}
	for i := range p.conflicts {
		if p.conflicts[i].IngredientID == e.Key() {
			return e, &p.conflicts[i], nil
		}
	}
	return nil, nil, fmt.Errorf("resolve %s: %w", key, ErrNoConflict)
}

// List returns a copy of the current shopping list.
func (p *Planner) List() []shopping.Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return shopping.CloneAll(p.list)
}

func (p *Planner) Conflicts() []diet.Conflict {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]diet.Conflict, len(p.conflicts))
	copy(out, p.conflicts)
	return out
}

func (p *Planner) Totals() shopping.Totals {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totals
}

func (p *Planner) Mode() prefs.Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

func (p *Planner) Cart() []recipes.CartEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cart.Entries()
}

func (p *Planner) Profile() diet.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profile
}

// stocked offers only candidates the catalog can supply, so a conflict with
// none left can only be zeroed.
type stocked struct {
	subs    diet.Substitutes
	catalog shopping.Catalog
}

func (s stocked) Lookup(kind substitutes.Kind, ingredientID string) []substitutes.Candidate {
	return s.keep(s.subs.Lookup(kind, ingredientID))
}

func (s stocked) ForAllergens(allergens []string, ingredientID string) []substitutes.Candidate {
	return s.keep(s.subs.ForAllergens(allergens, ingredientID))
}

func (s stocked) keep(in []substitutes.Candidate) []substitutes.Candidate {
	return lo.Filter(in, func(c substitutes.Candidate, _ int) bool {
		_, ok := s.catalog.Lookup(c.ID)
		return ok
	})
}
