// Package prefs persists per-mode quantity snapshots, resolution records, the
// cart and the active mode, and replays resolutions onto rebuilt lists.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"basket/internal/cache"
	"basket/internal/recipes"
	"basket/internal/shopping"
)

const (
	defaultQuantitiesKey    = "default_quantities"
	preferenceQuantitiesKey = "preference_quantities"
	resolutionsKey          = "resolution_actions"
	cartKey                 = "cart"
	modeKey                 = "mode"
	createdKey              = "created"
)

var allKeys = []string{defaultQuantitiesKey, preferenceQuantitiesKey, resolutionsKey, cartKey, modeKey, createdKey}

type Mode string

const (
	ModeDefault    Mode = "default"
	ModePreference Mode = "preference"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeDefault, ModePreference:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Other is the mode a toggle switches to.
func (m Mode) Other() Mode {
	if m == ModePreference {
		return ModeDefault
	}
	return ModePreference
}

type ResolutionType string

const (
	Unresolved ResolutionType = "unresolved"
	SetToZero  ResolutionType = "set_to_zero"
	Replaced   ResolutionType = "replaced"
)

// Resolution is the user's choice for one conflicting ingredient, keyed by
// the entry key in the resolution map.
type Resolution struct {
	Type              ResolutionType `json:"type"`
	SubstituteID      string         `json:"substituteId,omitempty"`
	SubstituteName    string         `json:"substituteName,omitempty"`
	OriginalQuantity  int            `json:"originalQuantity"`
	SubstitutionRatio float64        `json:"substitutionRatio,omitempty"`
	OriginalName      string         `json:"originalName,omitempty"`
}

// Active reports whether the resolution changes the list.
func (r Resolution) Active() bool {
	return r.Type == SetToZero || r.Type == Replaced
}

// Store reads and writes planner state through a cache. A non-empty namespace
// prefixes every key, giving each profile its own state.
type Store struct {
	cache     cache.ListCache
	namespace string
}

func New(c cache.ListCache, namespace string) *Store {
	return &Store{cache: c, namespace: namespace}
}

func (s *Store) key(name string) string {
	if s.namespace == "" {
		return name
	}
	return s.namespace + "/" + name
}

// load decodes key into v. Absent or corrupt data leaves v untouched and
// reports false.
func (s *Store) load(ctx context.Context, name string, v any) bool {
	rc, err := s.cache.Get(ctx, s.key(name))
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			slog.WarnContext(ctx, "failed to read saved state", "key", s.key(name), "error", err)
		}
		return false
	}
	defer func() {
		if err := rc.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close saved state", "key", s.key(name), "error", err)
		}
	}()
	if err := json.NewDecoder(rc).Decode(v); err != nil {
		slog.WarnContext(ctx, "ignoring corrupt saved state", "key", s.key(name), "error", err)
		return false
	}
	return true
}

func (s *Store) save(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := s.cache.Put(ctx, s.key(name), string(data), cache.Unconditional()); err != nil {
		return fmt.Errorf("save %s: %w", s.key(name), err)
	}
	return nil
}

func snapshotKey(m Mode) string {
	if m == ModePreference {
		return preferenceQuantitiesKey
	}
	return defaultQuantitiesKey
}

// SaveSnapshot records every entry's purchase quantity under mode, keyed by
// entry key so it survives substitution.
func (s *Store) SaveSnapshot(ctx context.Context, m Mode, entries []shopping.Entry) error {
	snap := make(map[string]int, len(entries))
	for _, e := range entries {
		snap[e.Key()] = e.Quantity
	}
	return s.save(ctx, snapshotKey(m), snap)
}

// Snapshot returns the saved quantities for mode; never nil.
func (s *Store) Snapshot(ctx context.Context, m Mode) map[string]int {
	var snap map[string]int
	if !s.load(ctx, snapshotKey(m), &snap) || snap == nil {
		return map[string]int{}
	}
	return snap
}

// Overlay copies saved quantities onto entries with a matching key and
// returns how many changed.
func Overlay(entries []shopping.Entry, snap map[string]int) int {
	n := 0
	for i := range entries {
		q, ok := snap[entries[i].Key()]
		if !ok || q < 0 || q == entries[i].Quantity {
			continue
		}
		entries[i].Quantity = q
		n++
	}
	return n
}

// Resolutions returns every recorded resolution; never nil.
func (s *Store) Resolutions(ctx context.Context) map[string]Resolution {
	var res map[string]Resolution
	if !s.load(ctx, resolutionsKey, &res) || res == nil {
		return map[string]Resolution{}
	}
	return res
}

func (s *Store) RecordResolution(ctx context.Context, key string, r Resolution) error {
	res := s.Resolutions(ctx)
	res[key] = r
	return s.save(ctx, resolutionsKey, res)
}

// ClearResolution forgets key. Clearing an unknown key is not an error.
func (s *Store) ClearResolution(ctx context.Context, key string) error {
	res := s.Resolutions(ctx)
	if _, ok := res[key]; !ok {
		return nil
	}
	delete(res, key)
	return s.save(ctx, resolutionsKey, res)
}

func (s *Store) SaveCart(ctx context.Context, c *recipes.Cart) error {
	return s.save(ctx, cartKey, c)
}

// LoadCart returns the saved cart or an empty one.
func (s *Store) LoadCart(ctx context.Context) *recipes.Cart {
	c := recipes.NewCart()
	if !s.load(ctx, cartKey, c) {
		return recipes.NewCart()
	}
	return c
}

func (s *Store) SaveMode(ctx context.Context, m Mode) error {
	return s.save(ctx, modeKey, m)
}

// LoadMode returns the saved mode, defaulting to ModeDefault.
func (s *Store) LoadMode(ctx context.Context) Mode {
	var raw string
	if !s.load(ctx, modeKey, &raw) {
		return ModeDefault
	}
	m, err := ParseMode(raw)
	if err != nil {
		slog.WarnContext(ctx, "ignoring saved mode", "key", s.key(modeKey), "error", err)
		return ModeDefault
	}
	return m
}

// Register records when the namespace was first used and reports whether
// this call was that first use. Later calls leave the record alone.
func (s *Store) Register(ctx context.Context) (bool, error) {
	err := s.cache.Put(ctx, s.key(createdKey), time.Now().UTC().Format(time.RFC3339), cache.IfNoneMatch())
	if errors.Is(err, cache.ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("register %s: %w", s.namespace, err)
	}
	return true, nil
}

// Reset deletes all state in the store's namespace.
func (s *Store) Reset(ctx context.Context) error {
	var errs []error
	for _, name := range allKeys {
		if err := s.cache.Delete(ctx, s.key(name)); err != nil && !errors.Is(err, cache.ErrNotFound) {
			errs = append(errs, fmt.Errorf("delete %s: %w", s.key(name), err))
		}
	}
	return errors.Join(errs...)
}

// Namespaces lists every namespace holding state, sorted.
func (s *Store) Namespaces(ctx context.Context) ([]string, error) {
	keys, err := s.cache.List(ctx, "", "")
	if err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}
	var out []string
	for _, k := range keys {
		ns, name, ok := strings.Cut(k, "/")
		if ok && ns != "" && slices.Contains(allKeys, name) {
			out = append(out, ns)
		}
	}
	out = lo.Uniq(out)
	slices.Sort(out)
	return out, nil
}
