package prefs

import (
	"context"
	"slices"
	"testing"

	"basket/internal/cache"
	"basket/internal/recipes"
	"basket/internal/shopping"
)

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(cache.NewInMemoryCache(), "")

	entries := []shopping.Entry{
		{IngredientID: "ing_tofu", Quantity: 2},
		{IngredientID: "ing_tempeh", OriginalIngredientID: "ing_chicken", Quantity: 3},
	}
	if err := s.SaveSnapshot(ctx, ModePreference, entries); err != nil {
		t.Fatalf("save: %v", err)
	}

	snap := s.Snapshot(ctx, ModePreference)
	if snap["ing_tofu"] != 2 || snap["ing_chicken"] != 3 {
		t.Fatalf("unexpected snapshot %v", snap)
	}
	if _, ok := snap["ing_tempeh"]; ok {
		t.Fatal("snapshot should be keyed by original id")
	}
	if got := s.Snapshot(ctx, ModeDefault); len(got) != 0 {
		t.Fatalf("default snapshot should be independent, got %v", got)
	}
}

func TestCorruptStateReadsEmpty(t *testing.T) {
	ctx := context.Background()
	c := cache.NewInMemoryCache()
	for _, key := range []string{"default_quantities", "resolution_actions", "cart", "mode"} {
		if err := c.Put(ctx, key, "{not json", cache.Unconditional()); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}
	s := New(c, "")

	if snap := s.Snapshot(ctx, ModeDefault); snap == nil || len(snap) != 0 {
		t.Fatalf("expected empty snapshot, got %v", snap)
	}
	if res := s.Resolutions(ctx); res == nil || len(res) != 0 {
		t.Fatalf("expected empty resolutions, got %v", res)
	}
	if cart := s.LoadCart(ctx); cart.Len() != 0 {
		t.Fatalf("expected empty cart, got %v", cart.Entries())
	}
	if m := s.LoadMode(ctx); m != ModeDefault {
		t.Fatalf("expected default mode, got %q", m)
	}
}

func TestResolutions(t *testing.T) {
	ctx := context.Background()
	s := New(cache.NewInMemoryCache(), "alice")

	if err := s.RecordResolution(ctx, "ing_bacon", Resolution{Type: SetToZero, OriginalQuantity: 1}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.RecordResolution(ctx, "ing_chicken", Resolution{Type: Replaced, SubstituteID: "ing_tofu", SubstituteName: "Extra Firm Tofu", SubstitutionRatio: 1.25}); err != nil {
		t.Fatalf("record: %v", err)
	}
	res := s.Resolutions(ctx)
	if len(res) != 2 || res["ing_chicken"].SubstitutionRatio != 1.25 || !res["ing_bacon"].Active() {
		t.Fatalf("unexpected resolutions %+v", res)
	}

	if err := s.ClearResolution(ctx, "ing_bacon"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := s.ClearResolution(ctx, "ing_unknown"); err != nil {
		t.Fatalf("clear unknown: %v", err)
	}
	if _, ok := s.Resolutions(ctx)["ing_bacon"]; ok {
		t.Fatal("resolution not cleared")
	}

	if other := New(s.cache, "bob").Resolutions(ctx); len(other) != 0 {
		t.Fatalf("namespaces leaked: %v", other)
	}
}

func TestCartModeAndReset(t *testing.T) {
	ctx := context.Background()
	c := cache.NewInMemoryCache()
	s := New(c, "alice")

	cart := recipes.NewCart()
	cart.Set("Tofu Power Bowl", 2)
	cart.Set("Pancakes", 1)
	if err := s.SaveCart(ctx, cart); err != nil {
		t.Fatalf("save cart: %v", err)
	}
	if err := s.SaveMode(ctx, ModePreference); err != nil {
		t.Fatalf("save mode: %v", err)
	}
	if err := New(c, "bob").SaveMode(ctx, ModeDefault); err != nil {
		t.Fatalf("save bob mode: %v", err)
	}

	got := s.LoadCart(ctx).Entries()
	if len(got) != 2 || got[0].Title != "Tofu Power Bowl" || got[0].Servings != 2 {
		t.Fatalf("unexpected cart %v", got)
	}
	if s.LoadMode(ctx) != ModePreference {
		t.Fatal("mode not restored")
	}

	ns, err := s.Namespaces(ctx)
	if err != nil {
		t.Fatalf("namespaces: %v", err)
	}
	if !slices.Equal(ns, []string{"alice", "bob"}) {
		t.Fatalf("unexpected namespaces %v", ns)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if s.LoadCart(ctx).Len() != 0 || s.LoadMode(ctx) != ModeDefault {
		t.Fatal("reset left state behind")
	}
	if New(c, "bob").LoadMode(ctx) != ModeDefault {
		t.Fatal("reset touched another namespace")
	}
	if ok, _ := c.Exists(ctx, "bob/mode"); !ok {
		t.Fatal("reset deleted another namespace")
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	c := cache.NewInMemoryCache()
	s := New(c, "carol")

	created, err := s.Register(ctx)
	if err != nil || !created {
		t.Fatalf("first register: created=%v err=%v", created, err)
	}
	created, err = s.Register(ctx)
	if err != nil || created {
		t.Fatalf("second register: created=%v err=%v", created, err)
	}
	ns, err := s.Namespaces(ctx)
	if err != nil || !slices.Equal(ns, []string{"carol"}) {
		t.Fatalf("registered namespace not listed: %v %v", ns, err)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if created, err := s.Register(ctx); err != nil || !created {
		t.Fatalf("register after reset: created=%v err=%v", created, err)
	}
}

func TestOverlay(t *testing.T) {
	entries := []shopping.Entry{
		{IngredientID: "a", Quantity: 1},
		{IngredientID: "b", Quantity: 2},
		{IngredientID: "c", OriginalIngredientID: "x", Quantity: 1},
	}
	n := Overlay(entries, map[string]int{"a": 4, "b": 2, "x": 0, "gone": 9})
	if n != 2 {
		t.Fatalf("expected 2 changes, got %d", n)
	}
	if entries[0].Quantity != 4 || entries[1].Quantity != 2 || entries[2].Quantity != 0 {
		t.Fatalf("unexpected quantities %+v", entries)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(" Preference "); err != nil || m != ModePreference {
		t.Fatalf("got %q %v", m, err)
	}
	if _, err := ParseMode("strict"); err == nil {
		t.Fatal("expected error")
	}
	if ModeDefault.Other() != ModePreference || ModePreference.Other() != ModeDefault {
		t.Fatal("Other should flip modes")
	}
}
