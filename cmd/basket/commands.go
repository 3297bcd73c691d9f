package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"

	"basket/internal/catalog"
	"basket/internal/config"
	"basket/internal/diet"
	"basket/internal/prefs"
	"basket/internal/quantity"
	"basket/internal/recipes"
	"basket/internal/shopping"
	"basket/internal/substitutes"
)

var errUsage = errors.New("usage error")

type output struct {
	w    io.Writer
	json bool
}

func (o output) emit(v any, text func(w io.Writer)) error {
	if o.json {
		enc := json.NewEncoder(o.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

func usage(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func want(args []string, n int, form string) error {
	if len(args) != n {
		return usage("expected %s", form)
	}
	return nil
}

// run executes one command against the saved state described by cfg.
func run(ctx context.Context, cfg *config.Config, args []string, out output) error {
	cmd, args := args[0], args[1:]

	// commands that need no planner
	if cmd == "schema" {
		if err := want(args, 1, "schema <items|options>"); err != nil {
			return err
		}
		data, err := catalog.Schema(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out.w, string(data))
		return err
	}

	a, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	p := a.planner

	switch cmd {
	case "recipes":
		titles := a.book.Titles()
		return out.emit(titles, func(w io.Writer) {
			for _, t := range titles {
				fmt.Fprintln(w, t)
			}
		})
	case "items":
		items := a.catalog.Items()
		return out.emit(items, func(w io.Writer) {
			fmt.Fprintln(w, "ID\tNAME\tUNIT\tAISLE")
			for _, it := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", it.IngredientID, it.Name, it.Unit, it.Aisle)
			}
		})
	case "add":
		if len(args) < 1 || len(args) > 2 {
			return usage("expected add <title> [servings]")
		}
		if len(args) == 1 {
			if err := p.AddRecipe(ctx, args[0]); err != nil {
				return err
			}
			return printCart(out, p.Cart())
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return usage("servings must be a positive integer")
		}
		servings := n
		for _, e := range p.Cart() {
			if e.Title == args[0] {
				servings += e.Servings
			}
		}
		if err := p.SetServings(ctx, args[0], servings); err != nil {
			return err
		}
		return printCart(out, p.Cart())
	case "remove":
		if err := want(args, 1, "remove <title>"); err != nil {
			return err
		}
		if err := p.RemoveRecipe(ctx, args[0]); err != nil {
			return err
		}
		return printCart(out, p.Cart())
	case "servings":
		if err := want(args, 2, "servings <title> <n>"); err != nil {
			return err
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			return usage("servings must be a non-negative integer")
		}
		if err := p.SetServings(ctx, args[0], n); err != nil {
			return err
		}
		return printCart(out, p.Cart())
	case "cart":
		return printCart(out, p.Cart())
	case "list":
		return printList(out, p.List(), p.Totals())
	case "conflicts":
		return printConflicts(out, p.Mode(), p.Conflicts())
	case "mode":
		if len(args) == 1 {
			m, err := prefs.ParseMode(args[0])
			if err != nil {
				return usage("%v", err)
			}
			if err := p.SetMode(ctx, m); err != nil {
				return err
			}
		} else if len(args) > 1 {
			return usage("expected mode [default|preference]")
		}
		return printMode(out, p.Mode())
	case "toggle":
		if err := p.ToggleMode(ctx); err != nil {
			return err
		}
		return printMode(out, p.Mode())
	case "qty":
		if err := want(args, 2, "qty <ingredient> <n>"); err != nil {
			return err
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return usage("quantity must be an integer")
		}
		if err := p.SetQuantity(ctx, args[0], n); err != nil {
			return err
		}
		return printList(out, p.List(), p.Totals())
	case "sub":
		if err := want(args, 2, "sub <ingredient> <substitute id>"); err != nil {
			return err
		}
		if err := p.Substitute(ctx, args[0], args[1]); err != nil {
			return err
		}
		return printList(out, p.List(), p.Totals())
	case "zero":
		if err := want(args, 1, "zero <ingredient>"); err != nil {
			return err
		}
		if err := p.Zero(ctx, args[0]); err != nil {
			return err
		}
		return printList(out, p.List(), p.Totals())
	case "unresolve":
		if err := want(args, 1, "unresolve <ingredient>"); err != nil {
			return err
		}
		if err := p.Unresolve(ctx, args[0]); err != nil {
			return err
		}
		return printList(out, p.List(), p.Totals())
	case "reset":
		if err := p.Reset(ctx); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out.w, "state cleared")
		return err
	case "namespaces":
		ns, err := a.store.Namespaces(ctx)
		if err != nil {
			return err
		}
		return out.emit(ns, func(w io.Writer) {
			for _, n := range ns {
				fmt.Fprintln(w, n)
			}
		})
	default:
		return usage("unknown command %q", cmd)
	}
}

func printMode(out output, m prefs.Mode) error {
	return out.emit(map[string]prefs.Mode{"mode": m}, func(w io.Writer) {
		fmt.Fprintf(w, "mode: %s\n", m)
	})
}

func printCart(out output, cart []recipes.CartEntry) error {
	return out.emit(cart, func(w io.Writer) {
		if len(cart) == 0 {
			fmt.Fprintln(w, "cart is empty")
			return
		}
		fmt.Fprintln(w, "RECIPE\tSERVINGS")
		for _, e := range cart {
			fmt.Fprintf(w, "%s\t%d\n", e.Title, e.Servings)
		}
	})
}

func printList(out output, entries []shopping.Entry, totals shopping.Totals) error {
	doc := struct {
		Entries []shopping.Entry `json:"entries"`
		Totals  shopping.Totals  `json:"totals"`
	}{entries, totals}
	return out.emit(doc, func(w io.Writer) {
		fmt.Fprintln(w, "INGREDIENT\tNAME\tNEEDED\tBUY\tSKU\tPRICE\tAISLE\tNOTE")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%.2f\t%s\t%s\n",
				e.Key(), e.Name, e.NeededText, e.Quantity, skuLabel(e), e.UnitPrice, e.Aisle, note(e))
		}
		fmt.Fprintf(w, "\n%d items, %d packages, $%.2f\n", totals.Entries, totals.Packages, totals.Cost)
		n := totals.Nutrition
		fmt.Fprintf(w, "nutrition: %s kcal, %sg protein, %sg carbs, %sg fat\n",
			quantity.FormatValue(n.Calories), quantity.FormatValue(n.Protein),
			quantity.FormatValue(n.Carbs), quantity.FormatValue(n.Fat))
	})
}

func skuLabel(e shopping.Entry) string {
	if e.SKUSpec == "" {
		return e.SKUName
	}
	return e.SKUName + " (" + e.SKUSpec + ")"
}

func note(e shopping.Entry) string {
	var notes []string
	if e.Substituted {
		notes = append(notes, "replaces "+e.OriginalName)
	}
	if !e.Matched {
		notes = append(notes, "not in catalog")
	}
	if e.UnitCheck == quantity.Mismatch {
		notes = append(notes, "unit mismatch")
	}
	return strings.Join(notes, "; ")
}

func printConflicts(out output, m prefs.Mode, conflicts []diet.Conflict) error {
	return out.emit(conflicts, func(w io.Writer) {
		if m != prefs.ModePreference {
			fmt.Fprintln(w, "conflicts are only checked in preference mode")
			return
		}
		if len(conflicts) == 0 {
			fmt.Fprintln(w, "no conflicts")
			return
		}
		fmt.Fprintln(w, "INGREDIENT\tNAME\tTYPE\tREASON\tSTATUS\tSUBSTITUTES")
		for _, c := range conflicts {
			status := "open"
			if c.Resolved {
				status = "resolved"
			}
			subs := lo.Map(c.Candidates, func(cand substitutes.Candidate, _ int) string {
				return cand.ID + "=" + cand.Name
			})
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", c.IngredientID, c.Name, c.Type, c.Reason, status, strings.Join(subs, ", "))
		}
	})
}
