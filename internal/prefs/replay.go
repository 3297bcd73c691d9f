package prefs

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/lo"

	"basket/internal/shopping"
	"basket/internal/substitutes"
)

// Applier carries out a replayed resolution.
type Applier interface {
	Apply(e *shopping.Entry, c substitutes.Candidate, ratio float64) error
	Link(e *shopping.Entry, originalID, originalName string)
}

type matchTier int

const (
	byIngredientID matchTier = iota
	byOriginalID
	bySubstituteName
)

func (t matchTier) String() string {
	switch t {
	case byIngredientID:
		return "ingredient id"
	case byOriginalID:
		return "original id"
	default:
		return "substitute name"
	}
}

type matcher struct {
	tier  matchTier
	match func(e shopping.Entry, key string, r Resolution) bool
}

// replayMatchers are tried in order; a rebuilt list has no memory of earlier
// substitutions, so the last tier recognises an entry that already is the
// recorded substitute.
var replayMatchers = []matcher{
	{byIngredientID, func(e shopping.Entry, key string, _ Resolution) bool {
		return e.IngredientID == key
	}},
	{byOriginalID, func(e shopping.Entry, key string, _ Resolution) bool {
		return e.OriginalIngredientID == key
	}},
	{bySubstituteName, func(e shopping.Entry, _ string, r Resolution) bool {
		return r.Type == Replaced && r.SubstituteName != "" && strings.EqualFold(strings.TrimSpace(e.Name), strings.TrimSpace(r.SubstituteName))
	}},
}

// Replay applies active resolutions onto entries. Each resolution lands on at
// most one entry and each entry takes at most one resolution. Failures are
// logged and leave the entry as it was. Returns the keys that were applied.
func Replay(ctx context.Context, entries []shopping.Entry, res map[string]Resolution, a Applier) []string {
	claimed := make([]bool, len(entries))
	var applied []string

	keys := lo.Keys(res)
	slices.Sort(keys)
	for _, key := range keys {
		r := res[key]
		if !r.Active() {
			continue
		}
		idx, tier, ok := find(entries, claimed, key, r)
		if !ok {
			slog.DebugContext(ctx, "no entry for saved resolution", "key", key, "type", r.Type)
			continue
		}
		e := &entries[idx]
		if err := replayOne(e, key, r, tier, a); err != nil {
			slog.WarnContext(ctx, "failed to replay resolution", "key", key, "type", r.Type, "match", tier.String(), "error", err)
			continue
		}
		claimed[idx] = true
		applied = append(applied, key)
	}
	return applied
}

func find(entries []shopping.Entry, claimed []bool, key string, r Resolution) (int, matchTier, bool) {
	for _, m := range replayMatchers {
		for i, e := range entries {
			if !claimed[i] && m.match(e, key, r) {
				return i, m.tier, true
			}
		}
	}
	return 0, 0, false
}

func replayOne(e *shopping.Entry, key string, r Resolution, tier matchTier, a Applier) error {
	switch r.Type {
	case SetToZero:
		e.Quantity = 0
	case Replaced:
		if tier == bySubstituteName {
			a.Link(e, key, r.OriginalName)
			return nil
		}
		ratio := r.SubstitutionRatio
		if ratio == 0 {
			ratio = 1
		}
		return a.Apply(e, substitutes.Candidate{ID: r.SubstituteID, Name: r.SubstituteName}, ratio)
	}
	return nil
}
